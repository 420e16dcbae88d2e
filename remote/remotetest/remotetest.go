// Package remotetest provides an in-memory workspace service for tests.
//
// Server behaves like a well-behaved backend: it stores workspace state,
// recomputes layout with the same strategies the engine uses, and applies
// the auto-promotion policy on direct manipulation. FailWith switches every
// call to an error so tests can drive the engine's fallback paths.
package remotetest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/internal/ids"
	"github.com/canopyreview/canopy/layout"
	"github.com/canopyreview/canopy/remote"
)

// ErrUnavailable is the error Server returns while failing, and the error
// Unavailable returns always.
var ErrUnavailable = errors.New("workspace service unavailable")

// ErrNotFound indicates an unknown workspace or document id.
var ErrNotFound = errors.New("not found")

var defaultCanvas = geom.Size{Width: 1200, Height: 800}

type workspaceState struct {
	name string
	mode layout.Mode
	size geom.Size
	docs []remote.Document
}

// Server is an in-memory remote.Service.
type Server struct {
	mu         sync.Mutex
	workspaces map[string]*workspaceState
	gen        *ids.Deterministic
	err        error
	calls      map[string]int
}

var _ remote.Service = (*Server)(nil)

// NewServer returns an empty in-memory service with deterministic ids.
func NewServer() *Server {
	return &Server{
		workspaces: make(map[string]*workspaceState),
		gen:        ids.NewDeterministic("remotetest"),
		calls:      make(map[string]int),
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Server) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many times the named operation was attempted,
// including attempts that failed by injection.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Server) begin(op string) error {
	s.calls[op]++
	return s.err
}

// CreateWorkspace stores a new workspace, applying server defaults for an
// unset mode or size.
func (s *Server) CreateWorkspace(_ context.Context, req remote.CreateWorkspaceRequest) (*remote.CreateWorkspaceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("createWorkspace"); err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = layout.ModeStacked
	}
	size := req.Size
	if size.IsZero() {
		size = defaultCanvas
	}
	size = geom.ClampCanvas(size)

	id := s.gen.WorkspaceID()
	s.workspaces[id] = &workspaceState{name: req.Name, mode: mode, size: size}

	return &remote.CreateWorkspaceResponse{
		WorkspaceID: id,
		Name:        req.Name,
		Mode:        mode,
		Size:        size,
		CreatedAt:   time.Now(),
	}, nil
}

// WorkspaceState returns the stored state of a workspace.
func (s *Server) WorkspaceState(_ context.Context, workspaceID string) (*remote.WorkspaceStateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("getWorkspaceState"); err != nil {
		return nil, err
	}
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &remote.WorkspaceStateResponse{
		WorkspaceID:  workspaceID,
		Name:         ws.name,
		Mode:         ws.mode,
		Size:         ws.size,
		Documents:    append([]remote.Document(nil), ws.docs...),
		LastModified: time.Now(),
	}, nil
}

// SaveWorkspaceState is a no-op for the in-memory server.
func (s *Server) SaveWorkspaceState(_ context.Context, workspaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("saveWorkspaceState"); err != nil {
		return err
	}
	if _, ok := s.workspaces[workspaceID]; !ok {
		return ErrNotFound
	}
	return nil
}

// SwitchLayoutMode recomputes placements for the requested mode.
func (s *Server) SwitchLayoutMode(_ context.Context, req remote.SwitchLayoutModeRequest) (*remote.LayoutResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("switchLayoutMode"); err != nil {
		return nil, err
	}
	ws, ok := s.workspaces[req.WorkspaceID]
	if !ok {
		return nil, ErrNotFound
	}

	ws.mode = req.Mode
	placements := s.relayout(ws)
	return &remote.LayoutResponse{
		Placements:            placements,
		TriggeredAutoFreeform: req.TriggeredBy == remote.TriggerAutoFreeform,
	}, nil
}

// MoveDocument applies a drag, promoting a structured mode to freeform.
func (s *Server) MoveDocument(_ context.Context, req remote.MoveDocumentRequest) (*remote.LayoutResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("moveDocument"); err != nil {
		return nil, err
	}
	return s.manual(req.WorkspaceID, req.DocumentID, layout.ActionDrag, func(doc *remote.Document) {
		doc.Position = req.Position
	})
}

// ResizeDocument applies a resize, promoting a structured mode to freeform.
func (s *Server) ResizeDocument(_ context.Context, req remote.ResizeDocumentRequest) (*remote.LayoutResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("resizeDocument"); err != nil {
		return nil, err
	}
	return s.manual(req.WorkspaceID, req.DocumentID, layout.ActionResize, func(doc *remote.Document) {
		doc.Dimensions = req.Dimensions
	})
}

// UpdateWorkspaceSize resizes the canvas and reflows the current mode.
func (s *Server) UpdateWorkspaceSize(_ context.Context, req remote.UpdateWorkspaceSizeRequest) (*remote.LayoutResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("updateWorkspaceSize"); err != nil {
		return nil, err
	}
	ws, ok := s.workspaces[req.WorkspaceID]
	if !ok {
		return nil, ErrNotFound
	}

	ws.size = geom.ClampCanvas(req.Size)
	return &remote.LayoutResponse{Placements: s.relayout(ws)}, nil
}

// ActivateDocument focuses a document and brings it to the front.
func (s *Server) ActivateDocument(_ context.Context, workspaceID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("activateDocument"); err != nil {
		return err
	}
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return ErrNotFound
	}

	front := maxZ(ws.docs) + 1
	found := false
	for i := range ws.docs {
		active := ws.docs[i].ID == documentID
		ws.docs[i].Active = active
		if active {
			ws.docs[i].ZIndex = front
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// AddDocument opens a file, placing it per the current layout mode.
func (s *Server) AddDocument(_ context.Context, req remote.AddDocumentRequest) (*remote.AddDocumentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("addDocument"); err != nil {
		return nil, err
	}
	ws, ok := s.workspaces[req.WorkspaceID]
	if !ok {
		return nil, ErrNotFound
	}

	doc := remote.Document{
		ID:           s.gen.DocumentID(),
		Title:        titleFromPath(req.FilePath),
		FilePath:     req.FilePath,
		Position:     geom.Point{X: 40, Y: 40},
		Dimensions:   geom.Size{Width: 600, Height: 400},
		ZIndex:       maxZ(ws.docs) + 1,
		Active:       len(ws.docs) == 0,
		Visible:      true,
		LastModified: time.Now(),
	}
	if req.Position != nil {
		doc.Position = *req.Position
	}
	if req.Dimensions != nil {
		doc.Dimensions = *req.Dimensions
	}
	ws.docs = append(ws.docs, doc)
	s.relayout(ws)

	placed := ws.docs[len(ws.docs)-1]
	return &remote.AddDocumentResponse{
		DocumentID:   placed.ID,
		FilePath:     placed.FilePath,
		Title:        placed.Title,
		Position:     placed.Position,
		Dimensions:   placed.Dimensions,
		ZIndex:       placed.ZIndex,
		WasActivated: placed.Active,
	}, nil
}

// RemoveDocument closes a document.
func (s *Server) RemoveDocument(_ context.Context, workspaceID, documentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("removeDocument"); err != nil {
		return false, err
	}
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return false, ErrNotFound
	}
	for i := range ws.docs {
		if ws.docs[i].ID == documentID {
			ws.docs = append(ws.docs[:i], ws.docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// RemoveAllDocuments empties the workspace.
func (s *Server) RemoveAllDocuments(_ context.Context, workspaceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("removeAllDocuments"); err != nil {
		return 0, err
	}
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return 0, ErrNotFound
	}
	n := len(ws.docs)
	ws.docs = nil
	return n, nil
}

// manual applies a drag or resize and promotes structured modes.
func (s *Server) manual(workspaceID, documentID string, action layout.Action, apply func(*remote.Document)) (*remote.LayoutResponse, error) {
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return nil, ErrNotFound
	}

	found := false
	for i := range ws.docs {
		if ws.docs[i].ID == documentID {
			apply(&ws.docs[i])
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	promoted := layout.ShouldPromote(ws.mode, action)
	if promoted {
		ws.mode = layout.ModeFreeform
	}
	return &remote.LayoutResponse{
		Placements:            s.relayout(ws),
		TriggeredAutoFreeform: promoted,
	}, nil
}

// relayout recomputes the current mode over the stored documents and
// applies the result in place.
func (s *Server) relayout(ws *workspaceState) []layout.Placement {
	infos := make([]layout.DocumentInfo, 0, len(ws.docs))
	activeID := ""
	for _, doc := range ws.docs {
		if doc.Active {
			activeID = doc.ID
		}
		infos = append(infos, layout.DocumentInfo{
			ID:         doc.ID,
			Position:   doc.Position,
			Dimensions: doc.Dimensions,
			ZIndex:     doc.ZIndex,
		})
	}

	placements := layout.Compute(ws.mode, infos, ws.size, activeID)
	for _, p := range placements {
		for i := range ws.docs {
			if ws.docs[i].ID == p.DocumentID {
				ws.docs[i].Position = p.Position
				ws.docs[i].Dimensions = p.Dimensions
				ws.docs[i].ZIndex = p.ZIndex
				ws.docs[i].Visible = p.Visible
				break
			}
		}
	}
	return placements
}

func maxZ(docs []remote.Document) int {
	max := 0
	for _, doc := range docs {
		if doc.ZIndex > max {
			max = doc.ZIndex
		}
	}
	return max
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Unavailable is a remote.Service whose every call fails, for tests that
// exercise pure-offline behavior.
type Unavailable struct {
	// Err overrides ErrUnavailable when set.
	Err error
}

var _ remote.Service = Unavailable{}

func (u Unavailable) fail() error {
	if u.Err != nil {
		return u.Err
	}
	return ErrUnavailable
}

func (u Unavailable) CreateWorkspace(context.Context, remote.CreateWorkspaceRequest) (*remote.CreateWorkspaceResponse, error) {
	return nil, u.fail()
}

func (u Unavailable) WorkspaceState(context.Context, string) (*remote.WorkspaceStateResponse, error) {
	return nil, u.fail()
}

func (u Unavailable) SaveWorkspaceState(context.Context, string) error {
	return u.fail()
}

func (u Unavailable) SwitchLayoutMode(context.Context, remote.SwitchLayoutModeRequest) (*remote.LayoutResponse, error) {
	return nil, u.fail()
}

func (u Unavailable) MoveDocument(context.Context, remote.MoveDocumentRequest) (*remote.LayoutResponse, error) {
	return nil, u.fail()
}

func (u Unavailable) ResizeDocument(context.Context, remote.ResizeDocumentRequest) (*remote.LayoutResponse, error) {
	return nil, u.fail()
}

func (u Unavailable) UpdateWorkspaceSize(context.Context, remote.UpdateWorkspaceSizeRequest) (*remote.LayoutResponse, error) {
	return nil, u.fail()
}

func (u Unavailable) ActivateDocument(context.Context, string, string) error {
	return u.fail()
}

func (u Unavailable) AddDocument(context.Context, remote.AddDocumentRequest) (*remote.AddDocumentResponse, error) {
	return nil, u.fail()
}

func (u Unavailable) RemoveDocument(context.Context, string, string) (bool, error) {
	return false, u.fail()
}

func (u Unavailable) RemoveAllDocuments(context.Context, string) (int, error) {
	return 0, u.fail()
}
