package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tourism-backend/internal/logger"
	"tourism-backend/internal/metadata"
	"tourism-backend/internal/related"
	"tourism-backend/internal/store"
)

// WarningsHeader carries the number of related lookups that degraded.
const WarningsHeader = "X-Related-Warnings"

type Handler struct {
	store    *store.Store
	registry *metadata.Registry
	facade   *related.Facade
}

func NewHandler(s *store.Store, reg *metadata.Registry, facade *related.Facade) *Handler {
	return &Handler{store: s, registry: reg, facade: facade}
}

// GetRecord handles GET /api/:collection/:ref
func (h *Handler) GetRecord(c *fiber.Ctx) error {
	entity, err := h.resolveEntity(c)
	if err != nil {
		return err
	}

	row, err := h.fetch(c, entity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": row})
}

// Related handles GET /api/:collection/:ref/related
func (h *Handler) Related(c *fiber.Ctx) error {
	entity, err := h.resolveEntity(c)
	if err != nil {
		return err
	}
	st, ok := h.facade.SourceTypeFor(entity.Name)
	if !ok {
		return NoRelatedContentError(entity.Name)
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return BadRequestError("limit must be a non-negative integer")
		}
		limit = n
	}

	row, err := h.fetch(c, entity)
	if err != nil {
		return err
	}

	// fasthttp never cancels this on client disconnect; lookups are bounded
	// by the resolver's per-lookup timeout.
	ctx := c.UserContext()
	bundle, warnings, err := h.facade.Related(ctx, st.Name, row, limit)
	if err != nil {
		// The bundle is all-empty here; the caller still gets every key.
		logger.FromContext(ctx).Warn("related resolution incomplete",
			zap.String("collection", entity.Name), zap.Error(err))
	}

	c.Set(WarningsHeader, strconv.Itoa(len(warnings)))
	return c.JSON(fiber.Map{
		"data": bundle,
		"meta": fiber.Map{
			"type":     st.Name,
			"limit":    h.facade.Resolver().Limit(limit),
			"warnings": len(warnings),
		},
	})
}

func (h *Handler) fetch(c *fiber.Ctx, entity *metadata.Entity) (map[string]any, error) {
	ref := c.Params("ref")
	row, err := h.store.FetchRecord(c.UserContext(), entity.Table, entity.PrimaryKey.Field, entity.SlugField(), ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError(entity.Name, ref)
		}
		return nil, fmt.Errorf("get %s/%s: %w", entity.Name, ref, err)
	}
	if entity.SoftDelete && row["deleted_at"] != nil {
		return nil, NotFoundError(entity.Name, ref)
	}
	return row, nil
}

func (h *Handler) resolveEntity(c *fiber.Ctx) (*metadata.Entity, error) {
	name := c.Params("collection")
	entity := h.registry.GetEntity(name)
	if entity == nil {
		return nil, UnknownCollectionError(name)
	}
	return entity, nil
}
