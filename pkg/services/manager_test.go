package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/leadkit/blockflow/pkg/catalog"
	"github.com/leadkit/blockflow/pkg/models"
	"github.com/leadkit/blockflow/pkg/persistence/file"
	"github.com/leadkit/blockflow/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cat := catalog.NewCatalog(logger)
	cat.RegisterDefaultEntries()

	return NewManager(cat, file.NewRepository(t.TempDir()), nil, logger)
}

func TestManager_OpenAndGet(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	session, err := m.Open(context.Background(), "Welcome flow")
	require.NoError(t, err)
	assert.NotEmpty(t, session.FlowID())
	assert.Equal(t, "Welcome flow", session.FlowName())

	got, err := m.Get(session.FlowID())
	require.NoError(t, err)
	assert.Same(t, session, got)
}

func TestManager_OpenRequiresName(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	_, err := m.Open(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrFlowNameRequired)
}

func TestManager_GetUnknownSession(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestManager_Close(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	session, err := m.Open(context.Background(), "Welcome flow")
	require.NoError(t, err)

	require.NoError(t, m.Close(session.FlowID()))

	_, err = m.Get(session.FlowID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, m.Close(session.FlowID()), ErrSessionNotFound)
}

func TestManager_ResumeLiveSession(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	session, err := m.Open(context.Background(), "Welcome flow")
	require.NoError(t, err)

	resumed, err := m.Resume(context.Background(), session.FlowID())
	require.NoError(t, err)
	assert.Same(t, session, resumed)
}

func TestManager_ResumePersistedFlow(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx := context.Background()

	session, err := m.Open(ctx, "Welcome flow")
	require.NoError(t, err)

	trigger, err := session.AddBlockAt(models.KindNewLead, 0, 0)
	require.NoError(t, err)
	action, err := session.AddBlockAt(models.KindSendMessage, 200, 0)
	require.NoError(t, err)

	require.NoError(t, session.Configure(trigger.ID, map[string]any{}))
	require.NoError(t, session.Configure(action.ID, map[string]any{"channel": "email", "text": "hi"}))
	require.Equal(t, store.StatusConnected, session.RequestConnection(trigger.ID, action.ID).Status)

	result, err := session.Save(ctx)
	require.NoError(t, err)
	require.True(t, result.Valid)

	// Drop the live session, then resume from the repository.
	require.NoError(t, m.Close(session.FlowID()))

	resumed, err := m.Resume(ctx, session.FlowID())
	require.NoError(t, err)
	assert.Equal(t, "Welcome flow", resumed.FlowName())
	assert.Len(t, resumed.Blocks(), 2)
}

func TestManager_ResumeUnknownFlow(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	_, err := m.Resume(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestServiceError_Wrapping(t *testing.T) {
	t.Parallel()

	err := NewValidationError("Open", "FLOW_NAME_REQUIRED", "flow name cannot be empty", ErrFlowNameRequired)

	assert.ErrorIs(t, err, ErrFlowNameRequired)
	assert.True(t, IsValidationError(err))
	assert.False(t, IsNotFoundError(err))
	assert.Equal(t, "Open: flow name cannot be empty", err.Error())
}
