package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/leadkit/blockflow/pkg/catalog"
	"github.com/leadkit/blockflow/pkg/editor"
	"github.com/leadkit/blockflow/pkg/eventbus"
	"github.com/leadkit/blockflow/pkg/persistence"
	"github.com/leadkit/blockflow/pkg/simulator"
)

// Manager hands out one editor session per flow being edited. Sessions are
// isolated: concurrent editors (tabs) each own their store.
type Manager struct {
	catalog *catalog.Catalog
	repo    persistence.Repository
	bus     eventbus.EventBus
	logger  *slog.Logger
	simOpts []simulator.Option

	mu       sync.RWMutex
	sessions map[string]*editor.Session
}

func NewManager(
	cat *catalog.Catalog,
	repo persistence.Repository,
	bus eventbus.EventBus,
	logger *slog.Logger,
	simOpts ...simulator.Option,
) *Manager {
	return &Manager{
		catalog:  cat,
		repo:     repo,
		bus:      bus,
		logger:   logger,
		simOpts:  simOpts,
		sessions: make(map[string]*editor.Session),
	}
}

// Open starts an editing session for a new flow and returns it.
func (m *Manager) Open(_ context.Context, name string) (*editor.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("Open", "FLOW_NAME_REQUIRED",
			"flow name cannot be empty", ErrFlowNameRequired)
	}

	flowID := uuid.New().String()
	session := m.newSession(flowID, name)

	m.mu.Lock()
	m.sessions[flowID] = session
	m.mu.Unlock()

	m.logger.Info("Opened editor session", "flow_id", flowID, "flow_name", name)

	return session, nil
}

// Resume loads a persisted flow into a fresh session, or returns the live
// session if the flow is already being edited.
func (m *Manager) Resume(ctx context.Context, flowID string) (*editor.Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[flowID]
	m.mu.RUnlock()

	if ok {
		return session, nil
	}

	flow, err := m.repo.FlowByID(ctx, flowID)
	if err != nil {
		if persistence.IsFlowNotFound(err) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to load flow %s: %w", flowID, err)
	}

	session = m.newSession(flowID, flow.Name)
	session.Load(flow)

	m.mu.Lock()
	m.sessions[flowID] = session
	m.mu.Unlock()

	m.logger.Info("Resumed editor session", "flow_id", flowID)

	return session, nil
}

// Get returns the live session for a flow.
func (m *Manager) Get(flowID string) (*editor.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[flowID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Close drops a session. Unsaved edits are discarded.
func (m *Manager) Close(flowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[flowID]; !ok {
		return ErrSessionNotFound
	}

	delete(m.sessions, flowID)
	m.logger.Info("Closed editor session", "flow_id", flowID)

	return nil
}

func (m *Manager) newSession(flowID, name string) *editor.Session {
	opts := []editor.Option{
		editor.WithSimulatorOptions(m.simOpts...),
	}
	if m.bus != nil {
		opts = append(opts, editor.WithEventBus(m.bus))
	}

	return editor.NewSession(flowID, name, m.catalog, m.repo, m.logger, opts...)
}
