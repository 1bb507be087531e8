package store

import (
	"fmt"

	"github.com/leadkit/blockflow/pkg/models"
)

// ConnectStatus is the discriminated result of a connection attempt.
type ConnectStatus string

const (
	StatusConnected ConnectStatus = "connected"
	StatusDuplicate ConnectStatus = "duplicate"
	StatusIllegal   ConnectStatus = "illegal"
)

// ConnectResult reports whether an edge was (or could be) drawn and why not
// otherwise. Duplicate is informational, not an error.
type ConnectResult struct {
	Status ConnectStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// legalTargets encodes the edge-legality table. Triggers are never a legal
// target, which is what keeps every flow reading left-to-right and makes
// cycles through a trigger impossible. Cycles among actions stay legal
// here; the simulator's visited set is what bounds them.
var legalTargets = map[models.Category]map[models.Category]bool{
	models.CategoryTrigger:   {models.CategoryCondition: true, models.CategoryAction: true},
	models.CategoryCondition: {models.CategoryCondition: true, models.CategoryAction: true},
	models.CategoryAction:    {models.CategoryAction: true},
}

// CheckConnection decides whether an edge from one block to another may be
// drawn. The duplicate check runs before the legality table so re-drawing
// an existing edge reports "duplicate" rather than "illegal".
func CheckConnection(from, to *models.Block) ConnectResult {
	if from.ConnectedTo(to.ID) {
		return ConnectResult{Status: StatusDuplicate, Reason: "blocks are already connected"}
	}

	if from.ID == to.ID {
		return ConnectResult{Status: StatusIllegal, Reason: "a block cannot connect to itself"}
	}

	if !legalTargets[from.Category][to.Category] {
		return ConnectResult{
			Status: StatusIllegal,
			Reason: fmt.Sprintf("a %s block cannot connect to a %s block", from.Category, to.Category),
		}
	}

	return ConnectResult{Status: StatusConnected}
}
