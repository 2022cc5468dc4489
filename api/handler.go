// Package api serves normalized timeline records over HTTP. The /api routes
// fetch from the timeline server, normalize, store and answer with the
// batch; the /store routes answer from the store alone.
package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/normalize"
	"github.com/meikuraledutech/timeline/timelineclient"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// IngestIDHeader carries the ingest id of the save that stored a response.
const IngestIDHeader = "X-Ingest-Id"

// Fetcher reads raw payloads from the timeline server.
type Fetcher interface {
	Get(ctx context.Context, kind timeline.Kind, id string) ([]byte, error)
	List(ctx context.Context, kind timeline.Kind, q timelineclient.Query) ([]byte, error)
}

// Handler wires the timeline fetcher, the router and the store together.
type Handler struct {
	fetcher Fetcher
	router  *normalize.Router
	store   timeline.Store
}

func New(fetcher Fetcher, router *normalize.Router, store timeline.Store) *Handler {
	return &Handler{fetcher: fetcher, router: router, store: store}
}

// Register mounts every route of h on app.
func (h *Handler) Register(app *fiber.App) {
	app.Use(countRequests)

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", h.createSchema)
	app.Delete("/schema", h.dropSchema)

	// ── Timeline ──────────────────────────────────────────────────────
	app.Get("/api/v1/:kind", h.listEntities)
	app.Get("/api/v1/:kind/:id", h.getEntity)

	// ── Store ─────────────────────────────────────────────────────────
	app.Get("/store/v1/dags/:id", h.getDag)
	app.Get("/store/v1/dags/:id/vertices", h.listVertices)
	app.Get("/store/v1/vertices/:id/inputs", h.listVertexInputs)
	app.Get("/store/v1/vertices/:id/tasks", h.listTasks)
	app.Get("/store/v1/tasks/:id/attempts", h.listTaskAttempts)
	app.Get("/store/v1/applications/:id/configs", h.listConfigs)
	app.Get("/store/v1/counters/:kind/:id", h.listCounters)
}

func (h *Handler) createSchema(c fiber.Ctx) error {
	if err := h.store.CreateSchema(c.Context()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (h *Handler) dropSchema(c fiber.Ctx) error {
	if err := h.store.DropSchema(c.Context()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}

func (h *Handler) listEntities(c fiber.Ctx) error {
	kind, err := timeline.ParseKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}

	q := timelineclient.Query{
		PrimaryFilter:   c.Query("primaryFilter"),
		SecondaryFilter: c.Query("secondaryFilter"),
		Limit:           fiber.Query[int](c, "limit"),
		FromID:          c.Query("fromId"),
		WindowStart:     fiber.Query[int64](c, "windowStart"),
		WindowEnd:       fiber.Query[int64](c, "windowEnd"),
	}
	if fields := c.Query("fields"); fields != "" {
		q.Fields = strings.Split(fields, ",")
	}

	payload, err := h.fetcher.List(c.Context(), kind, q)
	if err != nil {
		return fail(c, err)
	}
	return h.ingest(c, kind, payload, false)
}

func (h *Handler) getEntity(c fiber.Ctx) error {
	kind, err := timeline.ParseKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}

	payload, err := h.fetcher.Get(c.Context(), kind, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return h.ingest(c, kind, payload, true)
}

// ingest normalizes payload, saves the batch and writes it as the response.
// For a single entity request a failed entity fails the request.
func (h *Handler) ingest(c fiber.Ctx, kind timeline.Kind, payload []byte, single bool) error {
	b, err := h.router.Normalize(payload, kind)
	if err != nil {
		return fail(c, err)
	}
	if single && b.Len(kind) == 0 && len(b.Failures) > 0 {
		return fail(c, b.Failures[0])
	}

	ingestID, err := h.store.SaveBatch(c.Context(), b)
	if err != nil {
		return fail(c, err)
	}
	log.Info("timeline payload ingested",
		zap.Stringer("kind", kind),
		zap.String("ingest", ingestID),
		zap.Int("records", b.Len(kind)),
		zap.Int("failures", len(b.Failures)))

	c.Set(IngestIDHeader, ingestID)
	return c.JSON(b)
}

func (h *Handler) getDag(c fiber.Ctx) error {
	d, err := h.store.GetDag(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if d == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "dag not found"})
	}
	return c.JSON(d)
}

func (h *Handler) listVertices(c fiber.Ctx) error {
	vertices, err := h.store.ListVertices(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(vertices)
}

// listVertexInputs answers with the inputs of a vertex and the configs of
// every input.
func (h *Handler) listVertexInputs(c fiber.Ctx) error {
	inputs, err := h.store.ListVertexInputs(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	configs := []timeline.Config{}
	for _, in := range inputs {
		cs, err := h.store.ListConfigs(c.Context(), in.ID)
		if err != nil {
			return fail(c, err)
		}
		configs = append(configs, cs...)
	}

	return c.JSON(fiber.Map{
		timeline.KindVertexInput.Plural(): inputs,
		timeline.KindConfig.Plural():      configs,
	})
}

func (h *Handler) listTasks(c fiber.Ctx) error {
	tasks, err := h.store.ListTasks(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tasks)
}

func (h *Handler) listTaskAttempts(c fiber.Ctx) error {
	attempts, err := h.store.ListTaskAttempts(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(attempts)
}

func (h *Handler) listConfigs(c fiber.Ctx) error {
	configs, err := h.store.ListConfigs(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(configs)
}

// listCounters answers with every counter group of a parent and the
// counters inside them.
func (h *Handler) listCounters(c fiber.Ctx) error {
	kind, err := timeline.ParseKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}
	if !kind.HasCounters() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": kind.String() + " has no counters"})
	}

	parent := timeline.ParentRef{Kind: kind, ID: c.Params("id")}
	groups, err := h.store.ListCounterGroups(c.Context(), parent)
	if err != nil {
		return fail(c, err)
	}
	counters := []timeline.Counter{}
	for _, g := range groups {
		cs, err := h.store.ListCounters(c.Context(), g.ID)
		if err != nil {
			return fail(c, err)
		}
		counters = append(counters, cs...)
	}

	return c.JSON(fiber.Map{
		timeline.KindCounterGroup.Plural(): groups,
		timeline.KindCounter.Plural():      counters,
	})
}
