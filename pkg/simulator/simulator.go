// Package simulator produces a dry-run trace over a validated block graph
// without touching any real external system. Every visited block gets a
// pending record followed by one terminal success/error record; a failing
// condition prunes its branch and a per-traversal visited set bounds
// cycles among actions.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leadkit/blockflow/pkg/models"
	"github.com/leadkit/blockflow/pkg/otelhelper"
	"github.com/leadkit/blockflow/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observer receives every outcome record as it is emitted, in traversal
// order, so the canvas can animate pending -> terminal per block.
type Observer func(models.BlockOutcome)

// Simulator runs dry-run traversals over a block graph.
type Simulator struct {
	evaluator Evaluator
	observer  Observer
	delay     time.Duration
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithEvaluator replaces the canned outcome evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(s *Simulator) { s.evaluator = e }
}

// WithObserver streams outcome records to fn as they happen.
func WithObserver(fn Observer) Option {
	return func(s *Simulator) { s.observer = fn }
}

// WithDelay waits d between a block's pending record and its terminal one,
// giving the UI time to show the transition. Zero disables the wait.
func WithDelay(d time.Duration) Option {
	return func(s *Simulator) { s.delay = d }
}

// WithTracer records one span per run and per visited block.
func WithTracer(t trace.Tracer) Option {
	return func(s *Simulator) { s.tracer = t }
}

func New(logger *slog.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		evaluator: CannedEvaluator{},
		tracer:    noop.NewTracerProvider().Tracer("simulator"),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Report aggregates one dry run: the summary plus every outcome record in
// emission order.
type Report struct {
	RunID    string                `json:"run_id"`
	Success  bool                  `json:"success"`
	Message  string                `json:"message"`
	Details  []string              `json:"details"`
	Outcomes []models.BlockOutcome `json:"outcomes"`
}

// Run validates the graph and, if it is valid, traverses it once from each
// trigger block. A structurally invalid graph aborts before any block is
// visited; its errors come back in the report. The only error returned is
// context cancellation.
func (s *Simulator) Run(ctx context.Context, blocks []*models.Block) (*Report, error) {
	runID := fmt.Sprintf("sim-%s", uuid.New().String()[:8])
	logger := s.logger.With("simulation_id", runID)

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "simulation.run",
		attribute.String(otelhelper.SimulationIDKey, runID),
		attribute.Int("blockflow.block.count", len(blocks)),
	)
	defer span.End()

	report := &Report{RunID: runID, Details: make([]string, 0), Outcomes: make([]models.BlockOutcome, 0)}

	if result := validation.Check(blocks); !result.Valid {
		logger.Info("Refusing to simulate an invalid flow", "errors", result.Errors)

		report.Message = "flow failed validation"
		report.Details = result.Errors

		return report, nil
	}

	index := make(map[string]*models.Block, len(blocks))
	for _, block := range blocks {
		index[block.ID] = block
	}

	logger.Info("Starting dry run", "blocks", len(blocks))

	for _, block := range blocks {
		if !block.IsTrigger() {
			continue
		}

		if err := s.traverse(ctx, block, index, report); err != nil {
			return nil, err
		}
	}

	failed := 0

	for _, outcome := range report.Outcomes {
		if outcome.Status == models.OutcomeError {
			failed++
		}
	}

	report.Success = failed == 0
	report.Message = fmt.Sprintf("simulated %d block(s): %d succeeded, %d failed",
		len(report.Outcomes), len(report.Outcomes)-failed, failed)

	logger.Info("Dry run finished", "visited", len(report.Outcomes), "failed", failed)

	return report, nil
}

// traverse walks the graph depth-first from one trigger with an explicit
// worklist. The visited set is per traversal: a block reached from two
// triggers runs once per trigger, but never twice within one.
func (s *Simulator) traverse(ctx context.Context, trigger *models.Block, index map[string]*models.Block, report *Report) error {
	stack := []string{trigger.ID}
	visited := make(map[string]struct{})

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[id]; seen {
			continue
		}

		visited[id] = struct{}{}

		block, ok := index[id]
		if !ok {
			// Stale edge to a deleted block, treat as absent.
			continue
		}

		outcome, err := s.visit(ctx, block, report)
		if err != nil {
			return err
		}

		if outcome.Status == models.OutcomeError && (block.IsCondition() || !block.Configured) {
			// Condition not met or block unusable: the branch stops here.
			continue
		}

		// Push children in reverse so they pop left-to-right, in the order
		// the connections were drawn.
		for i := len(block.Connections) - 1; i >= 0; i-- {
			child := block.Connections[i]
			if _, seen := visited[child]; !seen {
				stack = append(stack, child)
			}
		}
	}

	return nil
}

// visit emits the pending record, waits out the UI delay, then records the
// terminal outcome for one block.
func (s *Simulator) visit(ctx context.Context, block *models.Block, report *Report) (models.BlockOutcome, error) {
	_, span := otelhelper.StartSpan(ctx, s.tracer, "simulation.visit",
		attribute.String(otelhelper.BlockIDKey, block.ID),
		attribute.String(otelhelper.BlockKindKey, string(block.Kind)),
	)
	defer span.End()

	s.emit(models.BlockOutcome{
		BlockID: block.ID,
		Kind:    block.Kind,
		Status:  models.OutcomePending,
		Message: "running",
	})

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)

		select {
		case <-ctx.Done():
			timer.Stop()

			return models.BlockOutcome{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return models.BlockOutcome{}, err
	}

	var outcome models.BlockOutcome
	if !block.Configured {
		outcome = models.BlockOutcome{
			BlockID: block.ID,
			Kind:    block.Kind,
			Status:  models.OutcomeError,
			Message: "not configured",
		}
	} else {
		outcome = s.evaluator.Evaluate(ctx, block)
		outcome.BlockID = block.ID
		outcome.Kind = block.Kind
	}

	report.Outcomes = append(report.Outcomes, outcome)
	report.Details = append(report.Details,
		fmt.Sprintf("%s (%s): %s", block.Kind, outcome.Status, outcome.Message))
	s.emit(outcome)

	return outcome, nil
}

func (s *Simulator) emit(outcome models.BlockOutcome) {
	if s.observer != nil {
		s.observer(outcome)
	}
}
