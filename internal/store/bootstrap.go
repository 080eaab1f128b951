package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tourism-backend/internal/metadata"
)

// Bootstrap creates or widens the table of every given entity.
func (s *Store) Bootstrap(ctx context.Context, entities []*metadata.Entity, log *zap.Logger) error {
	migrator := NewMigrator(s)
	for _, e := range entities {
		if err := migrator.Migrate(ctx, e); err != nil {
			return fmt.Errorf("bootstrap %s: %w", e.Name, err)
		}
	}
	log.Info("content tables ready", zap.Int("collections", len(entities)), zap.String("dialect", s.Dialect.Name()))
	return nil
}
