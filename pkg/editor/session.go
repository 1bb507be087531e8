// Package editor provides the per-editing-session facade the interactive
// canvas talks to: it composes the block store, the validators, and the
// simulator for one automation being edited.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leadkit/blockflow/pkg/catalog"
	"github.com/leadkit/blockflow/pkg/events"
	"github.com/leadkit/blockflow/pkg/eventbus"
	"github.com/leadkit/blockflow/pkg/models"
	"github.com/leadkit/blockflow/pkg/persistence"
	"github.com/leadkit/blockflow/pkg/simulator"
	"github.com/leadkit/blockflow/pkg/store"
	"github.com/leadkit/blockflow/pkg/validation"
)

// Session owns one automation's editing state: the block store, the block
// currently engaged by a gesture, and the save/test entry points. Each
// flow being edited gets its own Session; nothing is shared across tabs.
type Session struct {
	flowID    string
	flowName  string
	store     *store.Store
	catalog   *catalog.Catalog
	repo      persistence.Repository
	bus       eventbus.EventBus
	logger    *slog.Logger
	createdAt time.Time

	mu         sync.Mutex
	active     string
	cancelTest context.CancelFunc
	testGen    uint64
	lastReport *simulator.Report

	simOpts []simulator.Option
}

// Option configures a Session.
type Option func(*Session)

// WithEventBus publishes editor lifecycle events (saves, simulation
// progress) to the given bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(s *Session) { s.bus = bus }
}

// WithSimulatorOptions forwards options (delay, tracer, evaluator) to the
// simulator created for each test run.
func WithSimulatorOptions(opts ...simulator.Option) Option {
	return func(s *Session) { s.simOpts = opts }
}

func NewSession(
	flowID string,
	flowName string,
	cat *catalog.Catalog,
	repo persistence.Repository,
	logger *slog.Logger,
	opts ...Option,
) *Session {
	s := &Session{
		flowID:    flowID,
		flowName:  flowName,
		store:     store.NewStore(),
		catalog:   cat,
		repo:      repo,
		logger:    logger.With("flow_id", flowID),
		createdAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FlowID returns the id of the flow being edited.
func (s *Session) FlowID() string {
	return s.flowID
}

// FlowName returns the display name of the flow being edited.
func (s *Session) FlowName() string {
	return s.flowName
}

// Load rebuilds the session's store from a persisted flow.
func (s *Session) Load(flow *models.Flow) {
	s.flowName = flow.Name
	s.store.Load(flow.Blocks)
}

// Blocks returns the current graph for rendering.
func (s *Session) Blocks() []*models.Block {
	return s.store.Blocks()
}

// AddBlockAt drops a catalog entry onto the canvas at the given position.
func (s *Session) AddBlockAt(kind models.BlockKind, x, y int) (*models.Block, error) {
	if _, ok := s.catalog.Lookup(kind); !ok {
		return nil, fmt.Errorf("kind %q is not in the catalog", kind)
	}

	block, err := s.store.AddBlock(kind, models.Position{X: x, Y: y})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Added block", "block_id", block.ID, "kind", kind)

	return block, nil
}

// MoveBlockBy applies a drag delta to a block. The resulting position is
// clamped to the canvas and snapped to the grid by the store.
func (s *Session) MoveBlockBy(id string, dx, dy int) {
	block, ok := s.store.Find(id)
	if !ok {
		return
	}

	s.store.MoveBlock(id, models.Position{X: block.Position.X + dx, Y: block.Position.Y + dy})
}

// RequestConnection asks for an edge between two blocks and applies it when
// legal. The gesture is over either way, so the active block is cleared
// unconditionally.
func (s *Session) RequestConnection(fromID, toID string) store.ConnectResult {
	defer s.ClearActive()

	result := s.store.Connect(fromID, toID)
	s.logger.Debug("Connection requested",
		"from", fromID, "to", toID, "status", result.Status)

	return result
}

// Configure validates the kind-specific config through the catalog, writes
// it, and marks the block configured.
func (s *Session) Configure(id string, config map[string]any) error {
	block, ok := s.store.Find(id)
	if !ok {
		return fmt.Errorf("block %s does not exist", id)
	}

	if err := s.catalog.ValidateConfig(block.Kind, config); err != nil {
		return err
	}

	s.store.SetConfig(id, config)
	s.store.ConfigureBlock(id)

	return nil
}

// DeleteBlock removes a block and every edge pointing at it.
func (s *Session) DeleteBlock(id string) bool {
	deleted := s.store.DeleteBlock(id)
	if deleted {
		s.logger.Debug("Deleted block", "block_id", id)
	}

	return deleted
}

// SetActive marks the block currently engaged by a drag or an in-flight
// connection draw. Session-local UI state, not graph state.
func (s *Session) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
}

// ActiveBlock returns the engaged block id, if any.
func (s *Session) ActiveBlock() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active, s.active != ""
}

// ClearActive drops the active block reference. Called unconditionally
// when a gesture ends, whether it succeeded, was cancelled, or lost the
// pointer, so no ghost connection survives.
func (s *Session) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
}

// Save validates the graph and, when valid, hands the flow to the
// persistence collaborator. On failure the errors come back and nothing is
// persisted.
func (s *Session) Save(ctx context.Context) (validation.Result, error) {
	result := validation.Check(s.store.Blocks())
	if !result.Valid {
		s.logger.Info("Save blocked by validation", "errors", result.Errors)

		return result, nil
	}

	now := time.Now().UTC()
	flow := &models.Flow{
		ID:        s.flowID,
		Name:      s.flowName,
		Blocks:    s.store.Blocks(),
		CreatedAt: s.createdAt,
		UpdatedAt: now,
	}

	if err := s.repo.SaveFlow(ctx, flow); err != nil {
		return result, fmt.Errorf("failed to persist flow %s: %w", s.flowID, err)
	}

	s.publish(ctx, events.FlowSaved{
		BaseEvent:  events.NewBaseEvent(events.FlowSavedEvent, s.flowID),
		FlowName:   s.flowName,
		BlockCount: s.store.Len(),
	})

	s.logger.Info("Flow saved", "blocks", s.store.Len())

	return result, nil
}

// Test runs the simulator over the current graph and returns its report.
// A new test run cancels any in-flight one; the abandoned run's results
// are dropped silently (last-write-wins, nothing external to roll back).
func (s *Session) Test(ctx context.Context) (*simulator.Report, error) {
	s.mu.Lock()

	if s.cancelTest != nil {
		s.cancelTest()
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancelTest = cancel
	s.testGen++
	gen := s.testGen
	s.mu.Unlock()

	defer cancel()

	opts := append([]simulator.Option{
		simulator.WithObserver(s.publishOutcome),
	}, s.simOpts...)
	sim := simulator.New(s.logger, opts...)

	blocks := s.store.Blocks()
	s.publish(ctx, events.SimulationStarted{
		BaseEvent:  events.NewBaseEvent(events.SimulationStartedEvent, s.flowID),
		BlockCount: len(blocks),
	})

	report, err := sim.Run(runCtx, blocks)
	if err != nil {
		// Cancelled mid-run, a newer test owns the result state.
		return nil, err
	}

	s.mu.Lock()
	if gen == s.testGen {
		s.lastReport = report
	}
	s.mu.Unlock()

	failed := 0

	for _, outcome := range report.Outcomes {
		if outcome.Status == models.OutcomeError {
			failed++
		}
	}

	s.publish(ctx, events.SimulationFinished{
		BaseEvent: events.NewBaseEvent(events.SimulationFinishedEvent, s.flowID),
		RunID:     report.RunID,
		Success:   report.Success,
		Visited:   len(report.Outcomes),
		Failed:    failed,
	})

	return report, nil
}

// LastReport returns the most recent completed test report, if any.
func (s *Session) LastReport() (*simulator.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastReport, s.lastReport != nil
}

func (s *Session) publishOutcome(outcome models.BlockOutcome) {
	s.publish(context.Background(), events.BlockVisited{
		BaseEvent: events.NewBaseEvent(events.BlockVisitedEvent, s.flowID),
		Outcome:   outcome,
	})
}

func (s *Session) publish(ctx context.Context, event eventbus.Event) {
	if s.bus == nil {
		return
	}

	if err := s.bus.Publish(ctx, s.flowID, event); err != nil {
		s.logger.Warn("Failed to publish editor event",
			"event_type", event.GetType(), "error", err)
	}
}
