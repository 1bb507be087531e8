// Package persistence provides the storage abstraction the editor hands a
// validated flow to on save and reads it back from on load.
package persistence

import (
	"context"

	"github.com/leadkit/blockflow/pkg/models"
)

type Repository interface {
	Flows(ctx context.Context) ([]*models.Flow, error)
	SaveFlow(ctx context.Context, flow *models.Flow) error
	FlowByID(ctx context.Context, id string) (*models.Flow, error)
	DeleteFlow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
