// Package web provides the HTTP surface the flow-builder canvas talks to:
// editor sessions, block and connection mutations, save, and test.
package web

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/leadkit/blockflow/pkg/catalog"
	"github.com/leadkit/blockflow/pkg/models"
	"github.com/leadkit/blockflow/pkg/services"
	"github.com/leadkit/blockflow/pkg/store"
)

type APIHandlers struct {
	manager   *services.Manager
	catalog   *catalog.Catalog
	validator *validator.Validate
}

func NewAPIHandlers(
	manager *services.Manager,
	cat *catalog.Catalog,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		manager:   manager,
		catalog:   cat,
		validator: validate,
	}
}

// GetCatalog returns the palette: every block kind grouped by category.
func (h *APIHandlers) GetCatalog(c fiber.Ctx) error {
	return c.JSON(h.catalog.Palette())
}

// CreateFlow opens an editor session for a new flow.
func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	var req CreateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	session, err := h.manager.Open(c.Context(), req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(FlowResponse{
		ID:     session.FlowID(),
		Name:   session.FlowName(),
		Blocks: session.Blocks(),
	})
}

// GetFlow returns the current graph of a session, resuming it from the
// persistence collaborator when needed.
func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	session, err := h.manager.Resume(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(FlowResponse{
		ID:     session.FlowID(),
		Name:   session.FlowName(),
		Blocks: session.Blocks(),
	})
}

// CloseFlow drops a session, discarding unsaved edits.
func (h *APIHandlers) CloseFlow(c fiber.Ctx) error {
	if err := h.manager.Close(c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddBlock drops a palette entry onto the canvas.
func (h *APIHandlers) AddBlock(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req AddBlockRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	block, err := session.AddBlockAt(models.BlockKind(req.Kind), req.X, req.Y)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(block)
}

// MoveBlock applies a drag delta to a block.
func (h *APIHandlers) MoveBlock(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req MoveBlockRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	blockID := c.Params("blockId")
	session.MoveBlockBy(blockID, req.DX, req.DY)

	block, ok := findBlock(session.Blocks(), blockID)
	if !ok {
		return notFound(c, "block not found")
	}

	return c.JSON(block)
}

// ConfigureBlock completes a block's kind-specific configuration form.
func (h *APIHandlers) ConfigureBlock(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req ConfigureBlockRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	blockID := c.Params("blockId")
	if err := session.Configure(blockID, req.Config); err != nil {
		return badRequest(c, err.Error())
	}

	block, _ := findBlock(session.Blocks(), blockID)

	return c.JSON(block)
}

// DeleteBlock removes a block and every edge pointing at it.
func (h *APIHandlers) DeleteBlock(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if !session.DeleteBlock(c.Params("blockId")) {
		return notFound(c, "block not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Connect draws an edge between two blocks. Illegal pairs are a 400;
// duplicates come back 200 with the duplicate status, they are
// informational, not errors.
func (h *APIHandlers) Connect(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req ConnectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	result := session.RequestConnection(req.From, req.To)
	if result.Status == store.StatusIllegal {
		return badRequest(c, result.Reason)
	}

	return c.JSON(result)
}

// SaveFlow validates the graph and persists it when valid. A structurally
// invalid graph returns the error list with 422 and persists nothing.
func (h *APIHandlers) SaveFlow(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	result, err := session.Save(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	if !result.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}

	return c.JSON(result)
}

// TestFlow runs the dry-run simulator and returns its trace and summary.
func (h *APIHandlers) TestFlow(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	report, err := session.Test(c.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Superseded by a newer test run; nothing to report.
			return c.SendStatus(fiber.StatusNoContent)
		}

		return internalError(c, err)
	}

	return c.JSON(report)
}

func findBlock(blocks []*models.Block, id string) (*models.Block, bool) {
	for _, block := range blocks {
		if block.ID == id {
			return block, true
		}
	}

	return nil, false
}
