package validation

import (
	"testing"

	"github.com/leadkit/blockflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBlock(t *testing.T, id string, kind models.BlockKind, configured bool, connections ...string) *models.Block {
	t.Helper()

	category, ok := kind.Category()
	require.True(t, ok)

	return &models.Block{
		ID:          id,
		Kind:        kind,
		Category:    category,
		Configured:  configured,
		Config:      map[string]any{},
		Connections: connections,
	}
}

func TestCheck_EmptyGraph(t *testing.T) {
	t.Parallel()

	result := Check(nil)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"flow needs at least one trigger block"}, result.Errors)
}

func TestCheck_MissingTrigger(t *testing.T) {
	t.Parallel()

	blocks := []*models.Block{
		makeBlock(t, "a", models.KindSendMessage, true),
	}

	result := Check(blocks)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "flow needs at least one trigger block")
}

func TestCheck_UnconfiguredCount(t *testing.T) {
	t.Parallel()

	blocks := []*models.Block{
		makeBlock(t, "t", models.KindNewLead, false),
	}

	result := Check(blocks)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"1 block(s) are not configured"}, result.Errors)
}

func TestCheck_DisconnectedCount(t *testing.T) {
	t.Parallel()

	// Trigger is exempt from the disconnection check; the lone action is
	// nobody's target and counts.
	blocks := []*models.Block{
		makeBlock(t, "t", models.KindNewLead, true),
		makeBlock(t, "a", models.KindSendMessage, true),
	}

	result := Check(blocks)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"1 block(s) are disconnected from the flow"}, result.Errors)
}

func TestCheck_ValidGraph(t *testing.T) {
	t.Parallel()

	blocks := []*models.Block{
		makeBlock(t, "t", models.KindNewLead, true, "c"),
		makeBlock(t, "c", models.KindLeadStatus, true, "a"),
		makeBlock(t, "a", models.KindSendMessage, true),
	}

	result := Check(blocks)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestCheck_AllErrorsReported(t *testing.T) {
	t.Parallel()

	// No trigger, nothing configured, both actions disconnected: every check
	// reports, in a fixed order.
	blocks := []*models.Block{
		makeBlock(t, "a", models.KindSendMessage, false),
		makeBlock(t, "b", models.KindCreateTask, false),
	}

	result := Check(blocks)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"flow needs at least one trigger block",
		"2 block(s) are not configured",
		"2 block(s) are disconnected from the flow",
	}, result.Errors)
}

func TestCheck_Idempotent(t *testing.T) {
	t.Parallel()

	blocks := []*models.Block{
		makeBlock(t, "t", models.KindNewLead, false),
		makeBlock(t, "a", models.KindSendMessage, true),
	}

	first := Check(blocks)
	second := Check(blocks)

	assert.Equal(t, first, second)
}

func TestCheck_DanglingEdgeIgnored(t *testing.T) {
	t.Parallel()

	// An edge to a block that no longer exists does not make its target
	// "connected".
	blocks := []*models.Block{
		makeBlock(t, "t", models.KindNewLead, true, "ghost"),
		makeBlock(t, "a", models.KindSendMessage, true),
	}

	result := Check(blocks)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"1 block(s) are disconnected from the flow"}, result.Errors)
}

func TestCheck_IslandPassesDisconnection(t *testing.T) {
	t.Parallel()

	// Two actions pointing at each other are each a target, so the
	// disconnection check passes even though no trigger reaches them. The
	// check is a target-set heuristic, not reachability.
	blocks := []*models.Block{
		makeBlock(t, "t", models.KindNewLead, true, "x"),
		makeBlock(t, "x", models.KindSendMessage, true),
		makeBlock(t, "a", models.KindCreateTask, true, "b"),
		makeBlock(t, "b", models.KindMovePipeline, true, "a"),
	}

	result := Check(blocks)
	assert.True(t, result.Valid)
}
