package catalog

import "github.com/leadkit/blockflow/pkg/models"

// RegisterDefaultEntries registers the built-in block kinds with their
// palette metadata and config schemas.
func (c *Catalog) RegisterDefaultEntries() {
	entries := []Entry{
		{
			Kind:        models.KindNewLead,
			Name:        "New lead",
			Description: "Starts the flow when a lead is created",
			Schema: objectSchema(nil,
				property("source", "string", "Only fire for this lead source"),
			),
		},
		{
			Kind:        models.KindLeadMoved,
			Name:        "Lead moved",
			Description: "Starts the flow when a lead changes pipeline stage",
			Schema: objectSchema([]string{"to_stage"},
				property("from_stage", "string", "Previous stage, empty for any"),
				property("to_stage", "string", "Stage the lead moved into"),
			),
		},
		{
			Kind:        models.KindMessageReceived,
			Name:        "Message received",
			Description: "Starts the flow on an inbound channel message",
			Schema: objectSchema([]string{"channel"},
				enumProperty("channel", "Inbox channel", "whatsapp", "instagram", "facebook", "email"),
			),
		},
		{
			Kind:        models.KindLeadStatus,
			Name:        "Lead status is",
			Description: "Continues only when the lead has a given status",
			Schema: objectSchema([]string{"status"},
				property("status", "string", "Status the lead must have"),
			),
		},
		{
			Kind:        models.KindLeadSource,
			Name:        "Lead source is",
			Description: "Continues only when the lead came from a given source",
			Schema: objectSchema([]string{"source"},
				property("source", "string", "Source the lead must have"),
			),
		},
		{
			Kind:        models.KindValueGreater,
			Name:        "Value greater than",
			Description: "Continues only when the lead value is above a threshold",
			Schema: objectSchema([]string{"threshold"},
				property("threshold", "number", "Minimum lead value"),
			),
		},
		{
			Kind:        models.KindSendMessage,
			Name:        "Send message",
			Description: "Sends a message to the lead on a channel",
			Schema: objectSchema([]string{"channel", "text"},
				enumProperty("channel", "Delivery channel", "whatsapp", "instagram", "facebook", "email"),
				property("text", "string", "Message body"),
			),
		},
		{
			Kind:        models.KindCreateTask,
			Name:        "Create task",
			Description: "Creates a follow-up task for the lead",
			Schema: objectSchema([]string{"title"},
				property("title", "string", "Task title"),
				property("assignee", "string", "User the task is assigned to"),
				property("due_days", "integer", "Days until the task is due"),
			),
		},
		{
			Kind:        models.KindMovePipeline,
			Name:        "Move in pipeline",
			Description: "Moves the lead to another pipeline stage",
			Schema: objectSchema([]string{"target_stage"},
				property("target_stage", "string", "Stage to move the lead into"),
			),
		},
	}

	for _, entry := range entries {
		// Entries above only use cataloged kinds, Register cannot fail.
		_ = c.Register(entry)
	}
}

type schemaProperty struct {
	name string
	def  map[string]any
}

func property(name, typ, description string) schemaProperty {
	return schemaProperty{name: name, def: map[string]any{
		"type":        typ,
		"description": description,
	}}
}

func enumProperty(name, description string, values ...string) schemaProperty {
	enum := make([]any, 0, len(values))
	for _, v := range values {
		enum = append(enum, v)
	}

	return schemaProperty{name: name, def: map[string]any{
		"type":        "string",
		"description": description,
		"enum":        enum,
	}}
}

func objectSchema(required []string, props ...schemaProperty) map[string]any {
	properties := make(map[string]any, len(props))
	for _, p := range props {
		properties[p.name] = p.def
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}
