package persistence

import "errors"

// ErrFlowNotFound is returned when a flow id does not resolve to a stored
// flow.
var ErrFlowNotFound = errors.New("flow not found")

// IsFlowNotFound checks if an error indicates a missing flow.
func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}
