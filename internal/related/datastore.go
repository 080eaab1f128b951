package related

import (
	"context"
	"errors"
	"fmt"

	"tourism-backend/internal/metadata"
	"tourism-backend/internal/store"
)

// Record is one row of a content collection.
type Record = map[string]any

var ErrUnknownCollection = errors.New("unknown collection")

// Datastore is the resolver's only external boundary.
type Datastore interface {
	// SampleRow returns one arbitrary row, or store.ErrNotFound when the
	// collection is empty.
	SampleRow(ctx context.Context, collection string) (Record, error)

	// FindRelated returns up to limit rows of collection matching f.
	FindRelated(ctx context.Context, collection string, f RelationFilter, c CollectionCapability, limit int) ([]Record, error)
}

// SQLDatastore serves lookups from a store, resolving collection names to
// tables through the registry.
type SQLDatastore struct {
	store    *store.Store
	registry *metadata.Registry
}

func NewSQLDatastore(s *store.Store, reg *metadata.Registry) *SQLDatastore {
	return &SQLDatastore{store: s, registry: reg}
}

func (d *SQLDatastore) table(collection string) (string, error) {
	e := d.registry.GetEntity(collection)
	if e == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if !store.ValidIdentifier(e.Table) {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidIdentifier, e.Table)
	}
	return e.Table, nil
}

func (d *SQLDatastore) SampleRow(ctx context.Context, collection string) (Record, error) {
	table, err := d.table(collection)
	if err != nil {
		return nil, err
	}
	return d.store.SampleRow(ctx, table)
}

func (d *SQLDatastore) FindRelated(ctx context.Context, collection string, f RelationFilter, c CollectionCapability, limit int) ([]Record, error) {
	table, err := d.table(collection)
	if err != nil {
		return nil, err
	}
	q := BuildSQL(d.store.Dialect, table, f, c, limit)
	rows, err := store.QueryRows(ctx, d.store.DB, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("find related %s: %w", collection, store.MapError(d.store.Dialect, err))
	}
	return rows, nil
}
