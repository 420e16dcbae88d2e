package workspace

import (
	"sync"
	"time"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/layout"
)

// Registry is the in-memory collection of open documents and workspace
// metadata for one session. It performs no I/O; all remote coordination
// lives in Session. Structural invariants (at most one active document,
// bring-to-front as max z plus one) are enforced here on every mutation.
type Registry struct {
	mu sync.Mutex

	ws   Workspace
	docs []Document

	loading       bool
	saving        bool
	transitioning bool
}

// NewRegistry creates a registry for the given workspace metadata. The
// canvas size is raised to the minimum usable size.
func NewRegistry(ws Workspace) *Registry {
	ws.Size = geom.ClampCanvas(ws.Size)
	if !ws.Mode.IsValid() {
		ws.Mode = layout.ModeStacked
	}
	return &Registry{ws: ws}
}

// Workspace returns a copy of the workspace metadata.
func (r *Registry) Workspace() Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ws
}

// Documents returns a copy of the document collection in insertion order.
func (r *Registry) Documents() []Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Document(nil), r.docs...)
}

// Document returns the document with the given id.
func (r *Registry) Document(id string) (Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return Document{}, false
}

// ActiveDocument returns the active document, if any.
func (r *Registry) ActiveDocument() (Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.Active {
			return doc, true
		}
	}
	return Document{}, false
}

// Count returns the number of open documents.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// IsLoading reports whether a load operation is in flight.
func (r *Registry) IsLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// IsSaving reports whether a save operation is in flight.
func (r *Registry) IsSaving() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saving
}

// IsTransitioning reports whether a layout-affecting operation is in flight.
func (r *Registry) IsTransitioning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitioning
}

// Snapshot returns a deep copy of the registry state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Workspace:     r.ws,
		Documents:     append([]Document(nil), r.docs...),
		Loading:       r.loading,
		Saving:        r.saving,
		Transitioning: r.transitioning,
	}
}

func (r *Registry) setLoading(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = v
}

func (r *Registry) setSaving(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saving = v
}

func (r *Registry) setTransitioning(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitioning = v
}

// setMode switches the workspace layout mode.
func (r *Registry) setMode(mode layout.Mode, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ws.Mode = mode
	r.ws.LastModified = now
}

// setSize updates the canvas size, raised to the minimum usable size.
func (r *Registry) setSize(size geom.Size, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ws.Size = geom.ClampCanvas(size)
	r.ws.LastModified = now
}

// replace overwrites the whole registry state. Used when a remote state
// load supersedes local, possibly diverged, state.
func (r *Registry) replace(ws Workspace, docs []Document) {
	ws.Size = geom.ClampCanvas(ws.Size)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ws = ws
	r.docs = append([]Document(nil), docs...)
	r.enforceSingleActive("")
}

// insert adds a document. If the document is marked active, any previously
// active document is deactivated.
func (r *Registry) insert(doc Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	if doc.Active {
		r.enforceSingleActive(doc.ID)
	}
}

// update applies fn to the document with the given id.
func (r *Registry) update(id string, fn func(*Document)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID == id {
			fn(&r.docs[i])
			return true
		}
	}
	return false
}

// remove deletes the document with the given id. If it was active, the
// first remaining document becomes active so the workspace keeps a focus.
func (r *Registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID != id {
			continue
		}
		wasActive := r.docs[i].Active
		r.docs = append(r.docs[:i], r.docs[i+1:]...)
		if wasActive && len(r.docs) > 0 {
			r.docs[0].Active = true
		}
		return true
	}
	return false
}

// removeAll empties the document collection and returns how many documents
// were removed.
func (r *Registry) removeAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.docs)
	r.docs = nil
	return n
}

// activate marks the document active, deactivates every other document,
// and brings it to the front of the stacking order.
func (r *Registry) activate(id string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for i := range r.docs {
		if r.docs[i].ID == id {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	front := r.maxZLocked() + 1
	for i := range r.docs {
		active := r.docs[i].ID == id
		r.docs[i].Active = active
		if active {
			r.docs[i].ZIndex = front
			r.docs[i].LastModified = now
		}
	}
	return true
}

// maxZ returns the highest z-index currently assigned.
func (r *Registry) maxZ() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxZLocked()
}

func (r *Registry) maxZLocked() int {
	max := 0
	for _, doc := range r.docs {
		if doc.ZIndex > max {
			max = doc.ZIndex
		}
	}
	return max
}

// activeID returns the id of the active document, or "".
func (r *Registry) activeID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.Active {
			return doc.ID
		}
	}
	return ""
}

// layoutInfos projects the document collection into strategy inputs.
func (r *Registry) layoutInfos() []layout.DocumentInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]layout.DocumentInfo, 0, len(r.docs))
	for _, doc := range r.docs {
		infos = append(infos, layout.DocumentInfo{
			ID:         doc.ID,
			Position:   doc.Position,
			Dimensions: doc.Dimensions,
			ZIndex:     doc.ZIndex,
		})
	}
	return infos
}

// reconcile merges layout placements into the registry document by
// document. Documents absent from the list are untouched, so applying the
// same placements twice is a no-op and application order does not matter.
func (r *Registry) reconcile(placements []layout.Placement, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range placements {
		for i := range r.docs {
			if r.docs[i].ID != p.DocumentID {
				continue
			}
			r.docs[i].Position = p.Position
			r.docs[i].Dimensions = p.Dimensions
			r.docs[i].ZIndex = p.ZIndex
			r.docs[i].Visible = p.Visible
			r.docs[i].LastModified = now
			break
		}
	}
}

// enforceSingleActive keeps at most one document active. preferID wins when
// set; otherwise the first active document wins.
func (r *Registry) enforceSingleActive(preferID string) {
	winner := preferID
	if winner == "" {
		for _, doc := range r.docs {
			if doc.Active {
				winner = doc.ID
				break
			}
		}
	}
	for i := range r.docs {
		r.docs[i].Active = r.docs[i].ID == winner && winner != ""
	}
}
