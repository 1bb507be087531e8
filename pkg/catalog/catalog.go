// Package catalog provides the static registry of block kinds available to
// the flow builder palette, including display metadata and the JSON schema
// each kind's configuration form validates against.
package catalog

import (
	"fmt"
	"log/slog"

	"github.com/leadkit/blockflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Entry describes one block kind: its derived category, the palette
// metadata, and the schema for its kind-specific configuration.
type Entry struct {
	Kind        models.BlockKind `json:"kind"`
	Category    models.Category  `json:"category"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Schema      map[string]any   `json:"schema,omitempty"`
}

// Catalog is the authoritative per-deployment list of valid block kinds.
type Catalog struct {
	logger  *slog.Logger
	entries map[models.BlockKind]Entry
	order   []models.BlockKind
}

func NewCatalog(logger *slog.Logger) *Catalog {
	return &Catalog{
		logger:  logger,
		entries: make(map[models.BlockKind]Entry),
	}
}

// Register adds an entry. The category is always re-derived from the kind
// so the two can never disagree.
func (c *Catalog) Register(entry Entry) error {
	category, ok := entry.Kind.Category()
	if !ok {
		return fmt.Errorf("kind %q is not in the kind table", entry.Kind)
	}

	entry.Category = category

	if _, exists := c.entries[entry.Kind]; !exists {
		c.order = append(c.order, entry.Kind)
	}

	c.entries[entry.Kind] = entry
	c.logger.Debug("Registered block kind", "kind", entry.Kind, "category", category)

	return nil
}

// Lookup returns the entry for a kind.
func (c *Catalog) Lookup(kind models.BlockKind) (Entry, bool) {
	entry, ok := c.entries[kind]

	return entry, ok
}

// Entries returns all entries in registration order.
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, 0, len(c.order))
	for _, kind := range c.order {
		entries = append(entries, c.entries[kind])
	}

	return entries
}

// Palette groups entries by category for the drag palette.
func (c *Catalog) Palette() map[models.Category][]Entry {
	palette := make(map[models.Category][]Entry)
	for _, kind := range c.order {
		entry := c.entries[kind]
		palette[entry.Category] = append(palette[entry.Category], entry)
	}

	return palette
}

// ValidateConfig checks a configuration map against the kind's JSON schema.
// This is the field-level validation owned by the configuration form; the
// engine itself only tracks the configured flag.
func (c *Catalog) ValidateConfig(kind models.BlockKind, config map[string]any) error {
	entry, ok := c.entries[kind]
	if !ok {
		return fmt.Errorf("kind %q is not registered", kind)
	}

	if entry.Schema == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(entry.Schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate config for %q: %w", kind, err)
	}

	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("invalid config for %q: %s", kind, errs[0].String())
		}

		return fmt.Errorf("invalid config for %q", kind)
	}

	return nil
}
