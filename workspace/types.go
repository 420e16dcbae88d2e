package workspace

import (
	"time"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/layout"
)

// DocumentState represents the lifecycle state of an open document.
type DocumentState string

const (
	// DocumentLoading indicates content extraction is still in flight.
	DocumentLoading DocumentState = "loading"
	// DocumentReady indicates the document is usable.
	DocumentReady DocumentState = "ready"
	// DocumentError indicates the document failed to open.
	DocumentError DocumentState = "error"
	// DocumentClosing indicates removal is in progress.
	DocumentClosing DocumentState = "closing"
)

// ValidDocumentStates returns all valid document state values.
func ValidDocumentStates() []DocumentState {
	return []DocumentState{DocumentLoading, DocumentReady, DocumentError, DocumentClosing}
}

// IsValid returns true if the state is a known value.
func (s DocumentState) IsValid() bool {
	for _, valid := range ValidDocumentStates() {
		if s == valid {
			return true
		}
	}
	return false
}

// Workspace is the metadata of one open canvas.
type Workspace struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Mode         layout.Mode `json:"layout_mode"`
	Size         geom.Size   `json:"size"`
	LastModified time.Time   `json:"last_modified"`
}

// Document is one open file's placement record within a workspace. In
// stacked and grid modes Position and Dimensions are engine-computed; in
// freeform mode they are user truth clamped to the canvas.
type Document struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	FilePath     string        `json:"file_path"`
	Position     geom.Point    `json:"position"`
	Dimensions   geom.Size     `json:"dimensions"`
	ZIndex       int           `json:"z_index"`
	Active       bool          `json:"active"`
	Visible      bool          `json:"visible"`
	State        DocumentState `json:"state"`
	ErrorMessage string        `json:"error_message,omitempty"`
	LastModified time.Time     `json:"last_modified"`
}

// Snapshot is a deep copy of registry state, safe for render loops to hold
// while operations continue to mutate the registry.
type Snapshot struct {
	Workspace     Workspace  `json:"workspace"`
	Documents     []Document `json:"documents"`
	Loading       bool       `json:"is_loading"`
	Saving        bool       `json:"is_saving"`
	Transitioning bool       `json:"is_transitioning"`
}
