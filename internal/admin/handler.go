package admin

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tourism-backend/internal/engine"
	"tourism-backend/internal/logger"
	"tourism-backend/internal/metadata"
	"tourism-backend/internal/related"
)

// Handler exposes the capability memo to operators. Dropping an entry makes
// the next lookup sample the collection again, which is how a schema change
// is picked up without a restart.
type Handler struct {
	prober   *related.Prober
	registry *metadata.Registry
}

func NewHandler(prober *related.Prober, reg *metadata.Registry) *Handler {
	return &Handler{prober: prober, registry: reg}
}

func RegisterAdminRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	admin := app.Group("/api/_admin", middleware...)

	admin.Get("/collections", h.ListCollections)
	admin.Get("/capabilities", h.ListCapabilities)
	admin.Delete("/capabilities", h.ResetCapabilities)
	admin.Delete("/capabilities/:collection", h.ForgetCapability)
}

type collectionInfo struct {
	Name       string   `json:"name"`
	Table      string   `json:"table"`
	SlugField  string   `json:"slug_field,omitempty"`
	SoftDelete bool     `json:"soft_delete"`
	Fields     []string `json:"fields"`
}

func (h *Handler) ListCollections(c *fiber.Ctx) error {
	entities := h.registry.AllEntities()
	out := make([]collectionInfo, 0, len(entities))
	for _, e := range entities {
		out = append(out, collectionInfo{
			Name:       e.Name,
			Table:      e.Table,
			SlugField:  e.SlugField(),
			SoftDelete: e.SoftDelete,
			Fields:     e.FieldNames(),
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

type capabilityInfo struct {
	Collection string                        `json:"collection"`
	Probed     bool                          `json:"probed"`
	Capability *related.CollectionCapability `json:"capability,omitempty"`
}

// ListCapabilities lists every catalog collection with its memoized
// capability, if any.
func (h *Handler) ListCapabilities(c *fiber.Ctx) error {
	snap := h.prober.Snapshot()
	entities := h.registry.AllEntities()
	out := make([]capabilityInfo, 0, len(entities))
	for _, e := range entities {
		info := capabilityInfo{Collection: e.Name}
		if capability, ok := snap[e.Name]; ok {
			info.Probed = true
			info.Capability = &capability
		}
		out = append(out, info)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) ResetCapabilities(c *fiber.Ctx) error {
	h.prober.Reset()
	logger.FromContext(c.UserContext()).Info("capability memo reset")
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ForgetCapability(c *fiber.Ctx) error {
	name := c.Params("collection")
	if h.registry.GetEntity(name) == nil {
		return engine.UnknownCollectionError(name)
	}
	h.prober.Forget(name)
	logger.FromContext(c.UserContext()).Info("capability forgotten", zap.String("collection", name))
	return c.SendStatus(fiber.StatusNoContent)
}
