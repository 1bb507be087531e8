package models

import "time"

// GridUnit is the canvas grid step. Positions are snapped to multiples of it
// after every placement or move.
const GridUnit = 20

// Position is a canvas-space coordinate. Coordinates are always
// non-negative and grid-aligned once a gesture completes.
type Position struct {
	X int `json:"x" validate:"min=0"`
	Y int `json:"y" validate:"min=0"`
}

// Snap clamps the position to the canvas origin and rounds each coordinate
// to the nearest grid unit.
func (p Position) Snap() Position {
	return Position{X: snapCoord(p.X), Y: snapCoord(p.Y)}
}

func snapCoord(v int) int {
	if v < 0 {
		v = 0
	}

	return (v + GridUnit/2) / GridUnit * GridUnit
}

// Block is a node in the automation graph: one trigger, condition, or
// action. Connections are directed, source-owned outgoing edges.
type Block struct {
	ID         string         `json:"id"          validate:"required"`
	Kind       BlockKind      `json:"kind"        validate:"required"`
	Category   Category       `json:"category"    validate:"required"`
	Position   Position       `json:"position"`
	Configured bool           `json:"configured"`
	Config     map[string]any `json:"config"`
	// Connections holds target block ids in the order the user drew them.
	// Each target appears at most once and never equals the block's own id.
	Connections []string `json:"connections"`
}

// IsTrigger reports whether the block starts a flow.
func (b *Block) IsTrigger() bool {
	return b.Category == CategoryTrigger
}

// IsCondition reports whether the block can prune its branch during a run.
func (b *Block) IsCondition() bool {
	return b.Category == CategoryCondition
}

// ConnectedTo reports whether the block already has an edge to target.
func (b *Block) ConnectedTo(target string) bool {
	for _, id := range b.Connections {
		if id == target {
			return true
		}
	}

	return false
}

// Flow is the serializable shape handed to the persistence collaborator on
// save and supplied back on load. The engine defines no versioning for it.
type Flow struct {
	ID        string    `json:"id"         validate:"required"`
	Name      string    `json:"name"       validate:"required,min=3"`
	Blocks    []*Block  `json:"blocks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
