// Package models defines the core domain models for the automation block graph.
package models

// Category represents the category of a block.
type Category string

const (
	CategoryTrigger   Category = "trigger"   // Flow starts (new lead, lead moved, message received)
	CategoryCondition Category = "condition" // Gates that can prune a branch
	CategoryAction    Category = "action"    // Effects to perform (send message, create task, etc.)
)

// BlockKind identifies one entry of the closed per-deployment block catalog.
type BlockKind string

// Built-in block kinds.
const (
	KindNewLead         BlockKind = "new-lead"
	KindLeadMoved       BlockKind = "lead-moved"
	KindMessageReceived BlockKind = "message-received"

	KindLeadStatus   BlockKind = "lead-status"
	KindLeadSource   BlockKind = "lead-source"
	KindValueGreater BlockKind = "value-greater"

	KindSendMessage  BlockKind = "send-message"
	KindCreateTask   BlockKind = "create-task"
	KindMovePipeline BlockKind = "move-pipeline"
)

// kindCategories is the single source of truth for kind -> category.
// Adding a kind is a one-line edit here plus a config payload in config.go.
var kindCategories = map[BlockKind]Category{
	KindNewLead:         CategoryTrigger,
	KindLeadMoved:       CategoryTrigger,
	KindMessageReceived: CategoryTrigger,
	KindLeadStatus:      CategoryCondition,
	KindLeadSource:      CategoryCondition,
	KindValueGreater:    CategoryCondition,
	KindSendMessage:     CategoryAction,
	KindCreateTask:      CategoryAction,
	KindMovePipeline:    CategoryAction,
}

// Category returns the category derived from the kind. The second return
// value is false for kinds outside the catalog.
func (k BlockKind) Category() (Category, bool) {
	c, ok := kindCategories[k]

	return c, ok
}

// Valid reports whether the kind belongs to the catalog.
func (k BlockKind) Valid() bool {
	_, ok := kindCategories[k]

	return ok
}

// Kinds returns every cataloged kind. Order is not significant.
func Kinds() []BlockKind {
	kinds := make([]BlockKind, 0, len(kindCategories))
	for k := range kindCategories {
		kinds = append(kinds, k)
	}

	return kinds
}
