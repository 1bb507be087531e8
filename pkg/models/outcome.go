package models

// OutcomeStatus defines the states a block moves through during a dry run.
type OutcomeStatus string

const (
	OutcomePending OutcomeStatus = "pending"
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
)

// BlockOutcome is one simulation record for a visited block. Every visited
// block receives a pending record followed by exactly one terminal record.
type BlockOutcome struct {
	BlockID string        `json:"block_id"`
	Kind    BlockKind     `json:"kind"`
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message"`
}

// Terminal reports whether the outcome is a final success/error record
// rather than the transient pending state.
func (o BlockOutcome) Terminal() bool {
	return o.Status == OutcomeSuccess || o.Status == OutcomeError
}
