package web

import (
	"github.com/leadkit/blockflow/pkg/models"
)

// CreateFlowRequest opens an editor session for a new flow.
type CreateFlowRequest struct {
	Name string `json:"name" validate:"required,min=3"`
}

// AddBlockRequest drops a palette entry onto the canvas.
type AddBlockRequest struct {
	Kind string `json:"kind" validate:"required"`
	X    int    `json:"x"    validate:"min=0"`
	Y    int    `json:"y"    validate:"min=0"`
}

// MoveBlockRequest applies a drag delta to a block.
type MoveBlockRequest struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// ConfigureBlockRequest completes a block's kind-specific configuration.
type ConfigureBlockRequest struct {
	Config map[string]any `json:"config" validate:"required"`
}

// ConnectRequest asks for an edge between two blocks.
type ConnectRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
}

// FlowResponse is the graph as the canvas renders it.
type FlowResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Blocks []*models.Block `json:"blocks"`
}
