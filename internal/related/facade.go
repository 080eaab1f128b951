package related

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"tourism-backend/internal/config"
	"tourism-backend/internal/metadata"
)

var ErrUnknownSourceType = errors.New("unknown source type")

// Source type names.
const (
	TypeDestination = "destination"
	TypeHomestay    = "homestay"
	TypeEvent       = "event"
	TypeThrill      = "thrill"
	TypeCafe        = "cafe"
	TypeItinerary   = "itinerary"
	TypeRental      = "rental"
)

// SourceType describes how to read match fields out of one kind of source
// record and which collections to look in. Expressions are evaluated with
// the record's columns as variables.
type SourceType struct {
	Name         string
	Collection   string
	Targets      []string
	LocationExpr string
	DistrictExpr string
	TagsExpr     string
	IDField      string
	SlugField    string
}

func sourceType(name, collection string, targets ...string) SourceType {
	return SourceType{
		Name:         name,
		Collection:   collection,
		Targets:      targets,
		LocationExpr: "location",
		DistrictExpr: "district",
		TagsExpr:     "listOf(tags)",
		IDField:      "id",
		SlugField:    "slug",
	}
}

// DefaultSourceTypes returns the built-in source types.
func DefaultSourceTypes() []SourceType {
	itinerary := sourceType(TypeItinerary, metadata.Itineraries,
		metadata.Destinations, metadata.Homestays, metadata.Thrills, metadata.Cafes, metadata.Rentals)
	itinerary.LocationExpr = "starting_point"
	itinerary.DistrictExpr = "firstOf(regions_covered)"

	return []SourceType{
		sourceType(TypeDestination, metadata.Destinations,
			metadata.Homestays, metadata.Events, metadata.Thrills, metadata.Cafes, metadata.Itineraries, metadata.Rentals),
		sourceType(TypeHomestay, metadata.Homestays,
			metadata.Destinations, metadata.Cafes, metadata.Thrills, metadata.Events, metadata.Rentals, metadata.Homestays),
		sourceType(TypeEvent, metadata.Events,
			metadata.Destinations, metadata.Homestays, metadata.Cafes, metadata.Events),
		sourceType(TypeThrill, metadata.Thrills,
			metadata.Destinations, metadata.Homestays, metadata.Cafes, metadata.Rentals, metadata.Thrills),
		sourceType(TypeCafe, metadata.Cafes,
			metadata.Destinations, metadata.Homestays, metadata.Events, metadata.Cafes),
		itinerary,
		sourceType(TypeRental, metadata.Rentals,
			metadata.Destinations, metadata.Homestays, metadata.Thrills, metadata.Itineraries),
	}
}

// ApplyOverrides returns a copy of types with configured overrides applied.
// Overrides are keyed by source type name.
func ApplyOverrides(types []SourceType, overrides map[string]config.SourceConfig) ([]SourceType, error) {
	out := make([]SourceType, len(types))
	copy(out, types)

	index := make(map[string]int, len(out))
	for i, t := range out {
		index[t.Name] = i
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSourceType, name)
		}
		o := overrides[name]
		if len(o.Targets) > 0 {
			out[i].Targets = append([]string(nil), o.Targets...)
		}
		if o.Location != "" {
			out[i].LocationExpr = o.Location
		}
		if o.District != "" {
			out[i].DistrictExpr = o.District
		}
		if o.Tags != "" {
			out[i].TagsExpr = o.Tags
		}
	}
	return out, nil
}

// Facade is the entry point for presentation code: given a loaded source
// record it returns the related bundle for that record's type.
type Facade struct {
	resolver     *Resolver
	extract      *Extractor
	types        map[string]SourceType
	byCollection map[string]string
	log          *zap.Logger
}

// NewFacade compiles every expression of types up front so that a bad
// override fails at startup.
func NewFacade(resolver *Resolver, types []SourceType, log *zap.Logger) (*Facade, error) {
	f := &Facade{
		resolver:     resolver,
		extract:      NewExtractor(),
		types:        make(map[string]SourceType, len(types)),
		byCollection: make(map[string]string, len(types)),
		log:          log,
	}
	for _, t := range types {
		for _, e := range []string{t.LocationExpr, t.DistrictExpr, t.TagsExpr} {
			if e == "" {
				continue
			}
			if _, err := f.extract.Compile(e); err != nil {
				return nil, fmt.Errorf("source type %s: %w", t.Name, err)
			}
		}
		f.types[t.Name] = t
		f.byCollection[t.Collection] = t.Name
	}
	return f, nil
}

// New wires a Facade from configuration.
func New(cfg config.RelatedConfig, ds Datastore, log *zap.Logger) (*Facade, error) {
	chain, err := StrategiesByName(cfg.Strategies)
	if err != nil {
		return nil, err
	}
	types, err := ApplyOverrides(DefaultSourceTypes(), cfg.Sources)
	if err != nil {
		return nil, err
	}
	resolver := NewResolver(ds, NewProber(ds, log).WithReadTimeout(cfg.LookupTimeout()), Options{
		DefaultLimit:  cfg.DefaultLimit,
		MaxLimit:      cfg.MaxLimit,
		LookupTimeout: cfg.LookupTimeout(),
		Strategies:    chain,
	}, log)
	return NewFacade(resolver, types, log)
}

// Resolver returns the underlying resolver.
func (f *Facade) Resolver() *Resolver { return f.resolver }

// SourceType returns the source type registered under name.
func (f *Facade) SourceType(name string) (SourceType, bool) {
	t, ok := f.types[name]
	return t, ok
}

// SourceTypeFor returns the source type whose records live in collection.
func (f *Facade) SourceTypeFor(collection string) (SourceType, bool) {
	name, ok := f.byCollection[collection]
	if !ok {
		return SourceType{}, false
	}
	return f.SourceType(name)
}

// Fields extracts the match fields of rec. A nil or partial record yields
// empty fields.
func (f *Facade) Fields(t SourceType, rec Record) SourceMatchFields {
	return SourceMatchFields{
		Location: f.extract.String(t.LocationExpr, rec),
		District: f.extract.String(t.DistrictExpr, rec),
		Tags:     f.extract.Strings(t.TagsExpr, rec),
	}
}

func (f *Facade) source(t SourceType, rec Record) Source {
	return Source{
		Collection: t.Collection,
		ID:         keyOf(rec, t.IDField),
		Slug:       keyOf(rec, t.SlugField),
		Fields:     f.Fields(t, rec),
	}
}

func keyOf(rec Record, field string) string {
	if rec == nil || field == "" {
		return ""
	}
	v, ok := rec[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Related resolves the bundle of rec, a record of the named source type.
// Records without any match field skip the datastore entirely.
func (f *Facade) Related(ctx context.Context, typeName string, rec Record, limit int) (*Bundle, []Warning, error) {
	t, ok := f.types[typeName]
	if !ok {
		return NewBundle(nil), nil, fmt.Errorf("%w: %s", ErrUnknownSourceType, typeName)
	}
	src := f.source(t, rec)
	if src.Fields.Empty() {
		return NewBundle(t.Targets), nil, nil
	}
	return f.resolver.Resolve(ctx, src, t.Targets, limit)
}

// related never fails: errors and warnings are logged and the bundle keeps
// every configured key.
func (f *Facade) related(ctx context.Context, typeName string, rec Record) *Bundle {
	b, warnings, err := f.Related(ctx, typeName, rec, 0)
	if err != nil {
		f.log.Warn("related content unavailable", zap.String("type", typeName), zap.Error(err))
	}
	if len(warnings) > 0 {
		f.log.Debug("related content degraded", zap.String("type", typeName), zap.Int("warnings", len(warnings)))
	}
	return b
}

func (f *Facade) Destination(ctx context.Context, rec Record) *Bundle {
	return f.related(ctx, TypeDestination, rec)
}

func (f *Facade) Homestay(ctx context.Context, rec Record) *Bundle {
	return f.related(ctx, TypeHomestay, rec)
}

func (f *Facade) Event(ctx context.Context, rec Record) *Bundle {
	return f.related(ctx, TypeEvent, rec)
}

func (f *Facade) Thrill(ctx context.Context, rec Record) *Bundle {
	return f.related(ctx, TypeThrill, rec)
}

func (f *Facade) Cafe(ctx context.Context, rec Record) *Bundle {
	return f.related(ctx, TypeCafe, rec)
}

func (f *Facade) Itinerary(ctx context.Context, rec Record) *Bundle {
	return f.related(ctx, TypeItinerary, rec)
}

func (f *Facade) Rental(ctx context.Context, rec Record) *Bundle {
	return f.related(ctx, TypeRental, rec)
}
