// Package layout computes where every open document appears on the
// workspace canvas. Each strategy is a pure function from the current
// document set and canvas size to per-document placements; nothing here
// mutates its inputs or performs I/O.
package layout

import "github.com/canopyreview/canopy/geom"

// Mode selects how document positions and dimensions are computed.
type Mode string

const (
	// ModeStacked shows only the active document, centered on the canvas.
	ModeStacked Mode = "stacked"
	// ModeGrid tiles all documents in a near-square grid.
	ModeGrid Mode = "grid"
	// ModeFreeform keeps user-placed positions, clamped to the canvas.
	ModeFreeform Mode = "freeform"
)

// ValidModes returns all valid layout mode values.
func ValidModes() []Mode {
	return []Mode{ModeStacked, ModeGrid, ModeFreeform}
}

// IsValid returns true if the mode is a known value.
func (m Mode) IsValid() bool {
	for _, valid := range ValidModes() {
		if m == valid {
			return true
		}
	}
	return false
}

// DocumentInfo is the slice of document state a strategy needs: identity
// plus the stored geometry, which only Freeform consults.
type DocumentInfo struct {
	ID         string
	Position   geom.Point
	Dimensions geom.Size
	ZIndex     int
}

// Placement fixes one document's computed position, dimensions, stacking
// order, and visibility.
type Placement struct {
	DocumentID string     `json:"document_id"`
	Position   geom.Point `json:"position"`
	Dimensions geom.Size  `json:"dimensions"`
	ZIndex     int        `json:"z_index"`
	Visible    bool       `json:"visible"`
}

// Compute runs the strategy for mode over the document set. activeID may be
// empty; strategies that need an active document fall back to the first one.
func Compute(mode Mode, docs []DocumentInfo, canvas geom.Size, activeID string) []Placement {
	switch mode {
	case ModeStacked:
		return Stacked(docs, canvas, activeID)
	case ModeGrid:
		return Grid(docs, canvas, activeID)
	default:
		return Freeform(docs, canvas)
	}
}
