// Package events defines event types for flow editor lifecycle
// notifications: saves and dry-run progress.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/leadkit/blockflow/pkg/models"
)

type EventType string

// Topic carries every editor lifecycle event.
const Topic = "blockflow.editor.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	FlowSavedEvent          EventType = "flow.saved"
	SimulationStartedEvent  EventType = "simulation.started"
	BlockVisitedEvent       EventType = "simulation.block.visited"
	SimulationFinishedEvent EventType = "simulation.finished"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	FlowID    string    `json:"flow_id"`
}

type FlowSaved struct {
	BaseEvent

	FlowName   string `json:"flow_name"`
	BlockCount int    `json:"block_count"`
}

func (e FlowSaved) GetType() EventType {
	return FlowSavedEvent
}

type SimulationStarted struct {
	BaseEvent

	RunID      string `json:"run_id"`
	BlockCount int    `json:"block_count"`
}

func (e SimulationStarted) GetType() EventType {
	return SimulationStartedEvent
}

// BlockVisited streams per-block simulation progress so the canvas can
// animate the pending -> success/error transition.
type BlockVisited struct {
	BaseEvent

	RunID   string              `json:"run_id"`
	Outcome models.BlockOutcome `json:"outcome"`
}

func (e BlockVisited) GetType() EventType {
	return BlockVisitedEvent
}

type SimulationFinished struct {
	BaseEvent

	RunID   string `json:"run_id"`
	Success bool   `json:"success"`
	Visited int    `json:"visited"`
	Failed  int    `json:"failed"`
}

func (e SimulationFinished) GetType() EventType {
	return SimulationFinishedEvent
}

func NewBaseEvent(eventType EventType, flowID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		FlowID:    flowID,
	}
}
