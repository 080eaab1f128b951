package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourism-backend/internal/config"
	"tourism-backend/internal/metadata"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Name:   "store_test",
		Path:   t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestBootstrap_CreatesCatalogTables(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.Bootstrap(ctx, metadata.DefaultCatalog(), zap.NewNop()))

	cols, err := s.Dialect.GetColumns(ctx, s.DB, "homestays")
	require.NoError(t, err)
	assert.Contains(t, cols, "location")
	assert.Contains(t, cols, "deleted_at")

	cols, err = s.Dialect.GetColumns(ctx, s.DB, "events")
	require.NoError(t, err)
	assert.NotContains(t, cols, "location")

	// Running again is a no-op.
	require.NoError(t, s.Bootstrap(ctx, metadata.DefaultCatalog(), zap.NewNop()))
}

func TestMigrate_AddsMissingColumns(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	_, err := s.DB.ExecContext(ctx, "CREATE TABLE cafes (id TEXT PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	cafes := metadata.NewDefaultRegistry().GetEntity(metadata.Cafes)
	require.NoError(t, NewMigrator(s).Migrate(ctx, cafes))

	cols, err := s.Dialect.GetColumns(ctx, s.DB, "cafes")
	require.NoError(t, err)
	assert.Contains(t, cols, "district")
	assert.Contains(t, cols, "slug")
}

func TestMigrate_RejectsBadIdentifiers(t *testing.T) {
	s := openSQLite(t)
	err := NewMigrator(s).Migrate(context.Background(), &metadata.Entity{Name: "x", Table: "x; DROP TABLE y"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestSampleRow(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	_, err := s.DB.ExecContext(ctx, "CREATE TABLE thrills (id TEXT PRIMARY KEY, name TEXT, location TEXT)")
	require.NoError(t, err)

	_, err = s.SampleRow(ctx, "thrills")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.DB.ExecContext(ctx, "INSERT INTO thrills (id, name, location) VALUES ('t1', 'Zipline', NULL)")
	require.NoError(t, err)

	row, err := s.SampleRow(ctx, "thrills")
	require.NoError(t, err)
	assert.Contains(t, row, "location", "null columns are still reported")
	assert.Nil(t, row["location"])

	_, err = s.SampleRow(ctx, "missing_table")
	assert.Error(t, err)

	_, err = s.SampleRow(ctx, "thrills WHERE 1=1")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestFetchRecord_ByIDThenSlug(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.Bootstrap(ctx, metadata.DefaultCatalog(), zap.NewNop()))
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO destinations (id, name, slug, location) VALUES ('d1', 'Shillong Peak', 'shillong-peak', 'Shillong')")
	require.NoError(t, err)

	row, err := s.FetchRecord(ctx, "destinations", "id", "slug", "d1")
	require.NoError(t, err)
	assert.Equal(t, "Shillong Peak", row["name"])

	row, err = s.FetchRecord(ctx, "destinations", "id", "slug", "shillong-peak")
	require.NoError(t, err)
	assert.Equal(t, "d1", row["id"])
	assert.IsType(t, time.Time{}, row["created_at"])

	_, err = s.FetchRecord(ctx, "destinations", "id", "", "shillong-peak")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidIdentifier(t *testing.T) {
	for _, ok := range []string{"homestays", "_entities", "table_2"} {
		assert.True(t, ValidIdentifier(ok), ok)
	}
	for _, bad := range []string{"", "2fast", "Homestays", "a-b", "a b", "a;b"} {
		assert.False(t, ValidIdentifier(bad), bad)
	}
}

func TestParseArray(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseArray([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "1"}, ParseArray([]any{"a", nil, 1}))
	assert.Equal(t, []string{"East Khasi Hills", "Ri Bhoi"}, ParseArray(`["East Khasi Hills","Ri Bhoi"]`))
	assert.Equal(t, []string{"x", "y"}, ParseArray([]byte("{x,y}")))
	assert.Equal(t, []string{"solo"}, ParseArray("solo"))
	assert.Empty(t, ParseArray("[]"))
	assert.Nil(t, ParseArray(`["broken`))
	assert.Nil(t, ParseArray(42))
}
