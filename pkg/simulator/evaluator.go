package simulator

import (
	"context"

	"github.com/leadkit/blockflow/pkg/models"
)

// Evaluator produces the synthetic terminal outcome for a configured block.
// Nothing here touches live data; every result is canned.
type Evaluator interface {
	Evaluate(ctx context.Context, block *models.Block) models.BlockOutcome
}

// SimulateResultKey is the config key the condition form sets to preview
// the failing branch of a flow. Anything but an explicit false means the
// condition passes during a dry run.
const SimulateResultKey = "simulate_result"

// CannedEvaluator is the default evaluator: kind-specific success text,
// with conditions honoring the simulate_result toggle.
type CannedEvaluator struct{}

var cannedMessages = map[models.BlockKind]string{
	models.KindNewLead:         "fictitious lead created",
	models.KindLeadMoved:       "fictitious lead moved to a new stage",
	models.KindMessageReceived: "fictitious inbound message received",
	models.KindLeadStatus:      "lead status matched",
	models.KindLeadSource:      "lead source matched",
	models.KindValueGreater:    "lead value above threshold",
	models.KindSendMessage:     "message queued for delivery (dry run)",
	models.KindCreateTask:      "task created (dry run)",
	models.KindMovePipeline:    "lead moved to target stage (dry run)",
}

func (CannedEvaluator) Evaluate(_ context.Context, block *models.Block) models.BlockOutcome {
	if block.IsCondition() {
		if forced, ok := block.Config[SimulateResultKey].(bool); ok && !forced {
			return models.BlockOutcome{
				Status:  models.OutcomeError,
				Message: "condition not met",
			}
		}
	}

	message, ok := cannedMessages[block.Kind]
	if !ok {
		message = "completed (dry run)"
	}

	return models.BlockOutcome{
		Status:  models.OutcomeSuccess,
		Message: message,
	}
}
