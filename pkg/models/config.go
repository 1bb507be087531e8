package models

import (
	"encoding/json"
	"fmt"
)

// BlockConfig is the tagged union of kind-specific configuration payloads.
// The engine itself stays kind-agnostic and only tracks the Configured
// flag; the configuration form decodes the open map into one of these to
// get compile-time coverage of every kind.
type BlockConfig interface {
	ConfigKind() BlockKind
}

// Trigger payloads.

type NewLeadConfig struct {
	Source string `json:"source,omitempty"` // Restrict to one lead source, empty = any
}

type LeadMovedConfig struct {
	FromStage string `json:"from_stage,omitempty"`
	ToStage   string `json:"to_stage"`
}

type MessageReceivedConfig struct {
	Channel string `json:"channel"` // whatsapp, instagram, facebook, email
}

// Condition payloads.

type LeadStatusConfig struct {
	Status string `json:"status"`
}

type LeadSourceConfig struct {
	Source string `json:"source"`
}

type ValueGreaterConfig struct {
	Threshold float64 `json:"threshold"`
}

// Action payloads.

type SendMessageConfig struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type CreateTaskConfig struct {
	Title    string `json:"title"`
	Assignee string `json:"assignee,omitempty"`
	DueDays  int    `json:"due_days,omitempty"`
}

type MovePipelineConfig struct {
	TargetStage string `json:"target_stage"`
}

func (NewLeadConfig) ConfigKind() BlockKind         { return KindNewLead }
func (LeadMovedConfig) ConfigKind() BlockKind       { return KindLeadMoved }
func (MessageReceivedConfig) ConfigKind() BlockKind { return KindMessageReceived }
func (LeadStatusConfig) ConfigKind() BlockKind      { return KindLeadStatus }
func (LeadSourceConfig) ConfigKind() BlockKind      { return KindLeadSource }
func (ValueGreaterConfig) ConfigKind() BlockKind    { return KindValueGreater }
func (SendMessageConfig) ConfigKind() BlockKind     { return KindSendMessage }
func (CreateTaskConfig) ConfigKind() BlockKind      { return KindCreateTask }
func (MovePipelineConfig) ConfigKind() BlockKind    { return KindMovePipeline }

// DecodeConfig converts the open config map stored on a block into the
// typed payload for its kind. The switch is exhaustive over the catalog;
// a kind added to kinds.go without a case here fails at this seam.
func DecodeConfig(kind BlockKind, raw map[string]any) (BlockConfig, error) {
	switch kind {
	case KindNewLead:
		return decodeAs[NewLeadConfig](raw)
	case KindLeadMoved:
		return decodeAs[LeadMovedConfig](raw)
	case KindMessageReceived:
		return decodeAs[MessageReceivedConfig](raw)
	case KindLeadStatus:
		return decodeAs[LeadStatusConfig](raw)
	case KindLeadSource:
		return decodeAs[LeadSourceConfig](raw)
	case KindValueGreater:
		return decodeAs[ValueGreaterConfig](raw)
	case KindSendMessage:
		return decodeAs[SendMessageConfig](raw)
	case KindCreateTask:
		return decodeAs[CreateTaskConfig](raw)
	case KindMovePipeline:
		return decodeAs[MovePipelineConfig](raw)
	default:
		return nil, fmt.Errorf("unknown block kind %q", kind)
	}
}

func decodeAs[T BlockConfig](raw map[string]any) (BlockConfig, error) {
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	var cfg T
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}
