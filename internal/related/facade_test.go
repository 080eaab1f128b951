package related

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourism-backend/internal/config"
	"tourism-backend/internal/metadata"
)

func newTestFacade(t *testing.T, ds Datastore) *Facade {
	t.Helper()
	f, err := NewFacade(newTestResolver(ds, Options{}), DefaultSourceTypes(), zap.NewNop())
	require.NoError(t, err)
	return f
}

func TestDefaultSourceTypes(t *testing.T) {
	types := DefaultSourceTypes()
	require.Len(t, types, 7)

	names := map[string]bool{}
	for _, st := range types {
		names[st.Name] = true
		assert.NotEmpty(t, st.Targets, st.Name)
	}
	for _, n := range []string{TypeDestination, TypeHomestay, TypeEvent, TypeThrill, TypeCafe, TypeItinerary, TypeRental} {
		assert.True(t, names[n], n)
	}
}

func TestFacade_NilRecordYieldsAllKeys(t *testing.T) {
	ds := newFakeDatastore()
	f := newTestFacade(t, ds)

	b := f.Destination(context.Background(), nil)
	assert.Equal(t, []string{
		metadata.Homestays, metadata.Events, metadata.Thrills, metadata.Cafes, metadata.Itineraries, metadata.Rentals,
	}, b.Keys())
	assert.Equal(t, 0, b.Total())
	assert.Equal(t, 0, ds.findCount())
	assert.Empty(t, ds.sampleCalls)
}

func TestFacade_ItineraryMapping(t *testing.T) {
	ds := newFakeDatastore()
	ds.samples[metadata.Destinations] = Record{"id": "d0", "district": "x"}
	ds.samples[metadata.Homestays] = Record{"id": "h0", "location": "x", "district": "x"}
	f := newTestFacade(t, ds)

	it, ok := f.SourceType(TypeItinerary)
	require.True(t, ok)
	fields := f.Fields(it, Record{"starting_point": "Guwahati", "regions_covered": []any{"Ri-Bhoi", "East Khasi Hills"}})
	assert.Equal(t, "Guwahati", fields.Location)
	assert.Equal(t, "Ri-Bhoi", fields.District)

	rec := Record{"id": "i1", "slug": "meghalaya-loop", "regions_covered": `["Ri-Bhoi"]`}
	b := f.Itinerary(context.Background(), rec)
	assert.Equal(t, it.Targets, b.Keys())

	calls := ds.findsFor(metadata.Destinations)
	require.Len(t, calls, 1)
	assert.Equal(t, "district", calls[0].filter.Field)
	assert.Equal(t, "Ri-Bhoi", calls[0].filter.Value)
	assert.Equal(t, []string{"i1", "meghalaya-loop"}, calls[0].filter.ExcludeKeys)
}

func TestFacade_NamedWrappers(t *testing.T) {
	f := newTestFacade(t, newFakeDatastore())
	ctx := context.Background()
	wrappers := map[string]func(context.Context, Record) *Bundle{
		TypeDestination: f.Destination,
		TypeHomestay:    f.Homestay,
		TypeEvent:       f.Event,
		TypeThrill:      f.Thrill,
		TypeCafe:        f.Cafe,
		TypeItinerary:   f.Itinerary,
		TypeRental:      f.Rental,
	}
	for name, fn := range wrappers {
		st, ok := f.SourceType(name)
		require.True(t, ok)
		assert.Equal(t, st.Targets, fn(ctx, Record{"id": "x"}).Keys(), name)
	}
}

func TestFacade_SourceTypeFor(t *testing.T) {
	f := newTestFacade(t, newFakeDatastore())
	st, ok := f.SourceTypeFor(metadata.Thrills)
	require.True(t, ok)
	assert.Equal(t, TypeThrill, st.Name)

	_, ok = f.SourceTypeFor(metadata.FAQs)
	assert.False(t, ok)
}

func TestFacade_UnknownType(t *testing.T) {
	f := newTestFacade(t, newFakeDatastore())
	b, _, err := f.Related(context.Background(), "blog", Record{"location": "Shillong"}, 0)
	assert.ErrorIs(t, err, ErrUnknownSourceType)
	assert.Equal(t, 0, b.Len())
}

func TestApplyOverrides(t *testing.T) {
	types, err := ApplyOverrides(DefaultSourceTypes(), map[string]config.SourceConfig{
		TypeEvent: {Targets: []string{"cafes"}, Location: "venue"},
	})
	require.NoError(t, err)

	for _, st := range types {
		if st.Name != TypeEvent {
			continue
		}
		assert.Equal(t, []string{"cafes"}, st.Targets)
		assert.Equal(t, "venue", st.LocationExpr)
		assert.Equal(t, "district", st.DistrictExpr)
	}
	// Defaults are untouched.
	for _, st := range DefaultSourceTypes() {
		if st.Name == TypeEvent {
			assert.Len(t, st.Targets, 4)
		}
	}

	_, err = ApplyOverrides(DefaultSourceTypes(), map[string]config.SourceConfig{"blog": {}})
	assert.ErrorIs(t, err, ErrUnknownSourceType)
}

func TestNewFacade_RejectsBadExpression(t *testing.T) {
	types := DefaultSourceTypes()
	types[0].LocationExpr = "location +"
	_, err := NewFacade(newTestResolver(newFakeDatastore(), Options{}), types, zap.NewNop())
	assert.Error(t, err)
}

func TestNew_FromConfig(t *testing.T) {
	cfg := config.RelatedConfig{
		DefaultLimit: 5, MaxLimit: 8, LookupTimeoutMs: 100,
		Strategies: []string{"district", "location"},
	}
	f, err := New(cfg, newFakeDatastore(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 5, f.Resolver().Limit(0))
	assert.Equal(t, 8, f.Resolver().Limit(99))

	cfg.Strategies = []string{"nearby"}
	_, err = New(cfg, newFakeDatastore(), zap.NewNop())
	assert.Error(t, err)
}
