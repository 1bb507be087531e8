// Package store owns the mutable block list for one automation being
// edited: the single source of truth the validators, simulator, and canvas
// read from.
package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/leadkit/blockflow/pkg/models"
)

// Store holds the blocks of one editing session in insertion order. All
// mutations are synchronous in-memory edits; a Store is never shared
// across sessions.
type Store struct {
	blocks []*models.Block
}

func NewStore() *Store {
	return &Store{blocks: make([]*models.Block, 0)}
}

// Load replaces the block list with blocks reconstructed from the
// persistence collaborator.
func (s *Store) Load(blocks []*models.Block) {
	s.blocks = make([]*models.Block, 0, len(blocks))
	s.blocks = append(s.blocks, blocks...)
}

// AddBlock creates a block for a cataloged kind at the given position. The
// category is derived from the kind, the position snapped to the grid, and
// the block starts unconfigured with no connections.
func (s *Store) AddBlock(kind models.BlockKind, position models.Position) (*models.Block, error) {
	category, ok := kind.Category()
	if !ok {
		return nil, fmt.Errorf("unknown block kind %q", kind)
	}

	block := &models.Block{
		ID:          uuid.New().String(),
		Kind:        kind,
		Category:    category,
		Position:    position.Snap(),
		Configured:  false,
		Config:      make(map[string]any),
		Connections: make([]string, 0),
	}
	s.blocks = append(s.blocks, block)

	return block, nil
}

// MoveBlock snaps and overwrites the position of the block with id. Unknown
// ids are a no-op; the canvas should never produce one.
func (s *Store) MoveBlock(id string, position models.Position) {
	if block, ok := s.Find(id); ok {
		block.Position = position.Snap()
	}
}

// ConfigureBlock marks the block's kind-specific configuration as
// completed. Returns false when the id is unknown.
func (s *Store) ConfigureBlock(id string) bool {
	block, ok := s.Find(id)
	if !ok {
		return false
	}

	block.Configured = true

	return true
}

// SetConfig overwrites the block's config map. The configuration form owns
// field-level validation of the contents.
func (s *Store) SetConfig(id string, config map[string]any) bool {
	block, ok := s.Find(id)
	if !ok {
		return false
	}

	if config == nil {
		config = make(map[string]any)
	}

	block.Config = config

	return true
}

// DeleteBlock removes the block and filters its id out of every remaining
// block's connections, so no dangling edges survive a delete.
func (s *Store) DeleteBlock(id string) bool {
	idx := -1

	for i, block := range s.blocks {
		if block.ID == id {
			idx = i

			break
		}
	}

	if idx < 0 {
		return false
	}

	s.blocks = append(s.blocks[:idx], s.blocks[idx+1:]...)

	for _, block := range s.blocks {
		kept := block.Connections[:0]

		for _, target := range block.Connections {
			if target != id {
				kept = append(kept, target)
			}
		}

		block.Connections = kept
	}

	return true
}

// Connect applies the edge-legality rules and, when the edge is legal and
// new, appends to the source block's connections. Duplicate edges are
// reported, not treated as errors, and leave the graph unchanged.
func (s *Store) Connect(fromID, toID string) ConnectResult {
	from, ok := s.Find(fromID)
	if !ok {
		return ConnectResult{Status: StatusIllegal, Reason: "source block does not exist"}
	}

	to, ok := s.Find(toID)
	if !ok {
		return ConnectResult{Status: StatusIllegal, Reason: "target block does not exist"}
	}

	result := CheckConnection(from, to)
	if result.Status == StatusConnected {
		from.Connections = append(from.Connections, toID)
	}

	return result
}

// Find returns the block with id.
func (s *Store) Find(id string) (*models.Block, bool) {
	for _, block := range s.blocks {
		if block.ID == id {
			return block, true
		}
	}

	return nil, false
}

// Blocks returns the block list in insertion order. Callers treat it as
// read-only; mutations go through the Store operations.
func (s *Store) Blocks() []*models.Block {
	return s.blocks
}

// Len returns the number of blocks.
func (s *Store) Len() int {
	return len(s.blocks)
}
