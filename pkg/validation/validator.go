// Package validation inspects a whole block graph and reports the
// user-facing problems that stop a flow from being saved or test-run.
package validation

import (
	"fmt"

	"github.com/leadkit/blockflow/pkg/models"
)

// Result is the outcome of a structural validation pass. Valid is true
// exactly when Errors is empty.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Check runs every structural check over the block list and collects the
// error messages. Checks are independent and always all run, in a fixed
// order, so the error list is stable for an unchanged graph.
func Check(blocks []*models.Block) Result {
	errs := make([]string, 0)

	if !hasTrigger(blocks) {
		errs = append(errs, "flow needs at least one trigger block")
	}

	if n := countUnconfigured(blocks); n > 0 {
		errs = append(errs, fmt.Sprintf("%d block(s) are not configured", n))
	}

	if n := countDisconnected(blocks); n > 0 {
		errs = append(errs, fmt.Sprintf("%d block(s) are disconnected from the flow", n))
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func hasTrigger(blocks []*models.Block) bool {
	for _, block := range blocks {
		if block.IsTrigger() {
			return true
		}
	}

	return false
}

func countUnconfigured(blocks []*models.Block) int {
	count := 0

	for _, block := range blocks {
		if !block.Configured {
			count++
		}
	}

	return count
}

// countDisconnected counts non-trigger blocks that are no edge's target.
// This is deliberately a target-set heuristic, not reachability from a
// trigger: an island of blocks connected only to each other passes.
// Triggers are exempt because they are flow starts, never targets.
func countDisconnected(blocks []*models.Block) int {
	live := make(map[string]bool, len(blocks))
	for _, block := range blocks {
		live[block.ID] = true
	}

	targets := make(map[string]bool)

	for _, block := range blocks {
		for _, id := range block.Connections {
			// Edges to blocks that no longer exist are treated as absent.
			if live[id] {
				targets[id] = true
			}
		}
	}

	count := 0

	for _, block := range blocks {
		if !block.IsTrigger() && !targets[block.ID] {
			count++
		}
	}

	return count
}
