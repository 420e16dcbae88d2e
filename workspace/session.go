package workspace

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/internal/ids"
	"github.com/canopyreview/canopy/internal/validation"
	"github.com/canopyreview/canopy/layout"
	"github.com/canopyreview/canopy/remote"
)

// DefaultCanvasSize is the canvas size used when a caller does not specify one.
var DefaultCanvasSize = geom.Size{Width: 1200, Height: 800}

// defaultDocumentSize is the size given to locally synthesized documents.
var defaultDocumentSize = geom.Size{Width: 600, Height: 400}

const (
	// cascadeBase is where the first synthesized document lands.
	cascadeBase = 40.0
	// cascadeStep offsets each later synthesized document so new documents
	// do not overlap previous ones.
	cascadeStep = 30.0
)

// Options configures a Session.
type Options struct {
	// Service is the remote workspace service. Required.
	Service remote.Service
	// IDs generates identifiers for locally synthesized state.
	// Defaults to the random uuid-backed generator.
	IDs ids.Generator
	// Logger receives fallback warnings and operation diagnostics.
	// Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Session coordinates one open workspace against the remote service. It
// owns its Registry exclusively and guarantees the registry stays usable
// whether or not the service is reachable.
type Session struct {
	registry *Registry
	service  remote.Service
	ids      ids.Generator
	logger   zerolog.Logger
}

func newSession(reg *Registry, opts Options) *Session {
	gen := opts.IDs
	if gen == nil {
		gen = ids.Random{}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Session{
		registry: reg,
		service:  opts.Service,
		ids:      gen,
		logger:   logger,
	}
}

// Create makes a new workspace on the remote service and returns a session
// for it. When the service is unreachable the workspace is synthesized
// locally with a generated id so the caller can keep working.
func Create(ctx context.Context, name string, mode layout.Mode, size geom.Size, opts Options) (*Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if mode != "" && !mode.IsValid() {
		return nil, validation.FormatInvalidValueError(ErrInvalidMode, mode, layout.ValidModes())
	}
	if !validSize(size) {
		return nil, ErrInvalidGeometry
	}
	if mode == "" {
		mode = layout.ModeStacked
	}
	if size.IsZero() {
		size = DefaultCanvasSize
	}

	s := newSession(nil, opts)

	resp, err := s.service.CreateWorkspace(ctx, remote.CreateWorkspaceRequest{
		Name: name,
		Mode: mode,
		Size: size,
	})
	if err != nil || resp == nil {
		s.fallback("createWorkspace", err)
		s.registry = NewRegistry(Workspace{
			ID:           s.ids.WorkspaceID(),
			Name:         name,
			Mode:         mode,
			Size:         size,
			LastModified: time.Now(),
		})
		return s, nil
	}

	s.registry = NewRegistry(Workspace{
		ID:           resp.WorkspaceID,
		Name:         resp.Name,
		Mode:         resp.Mode,
		Size:         resp.Size,
		LastModified: resp.CreatedAt,
	})
	return s, nil
}

// Open returns a session for an existing workspace, loading its state from
// the remote service. When the service is unreachable the session starts
// from an empty local workspace; the next successful LoadState repairs it.
func Open(ctx context.Context, workspaceID string, opts Options) (*Session, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, ErrWorkspaceIDRequired
	}

	s := newSession(NewRegistry(Workspace{
		ID:           workspaceID,
		Mode:         layout.ModeStacked,
		Size:         DefaultCanvasSize,
		LastModified: time.Now(),
	}), opts)

	if err := s.LoadState(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Registry exposes the session's registry for read access by consumers.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Snapshot returns a deep copy of the current registry state.
func (s *Session) Snapshot() Snapshot {
	return s.registry.Snapshot()
}

// WorkspaceID returns the id of the session's workspace.
func (s *Session) WorkspaceID() string {
	return s.registry.Workspace().ID
}

// LoadState replaces local state wholesale with the remote state. On
// failure the current local state is kept; divergence is repaired by the
// next successful load.
func (s *Session) LoadState(ctx context.Context) error {
	s.registry.setLoading(true)
	defer s.registry.setLoading(false)

	resp, err := s.service.WorkspaceState(ctx, s.WorkspaceID())
	if err != nil || resp == nil {
		s.fallback("loadWorkspaceState", err)
		return nil
	}

	docs := make([]Document, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		docs = append(docs, documentFromRemote(d))
	}
	s.registry.replace(Workspace{
		ID:           resp.WorkspaceID,
		Name:         resp.Name,
		Mode:         resp.Mode,
		Size:         resp.Size,
		LastModified: resp.LastModified,
	}, docs)
	return nil
}

// SaveState asks the service to persist the workspace. A failure only
// means the data did not sync yet; it is logged and not surfaced.
func (s *Session) SaveState(ctx context.Context) error {
	s.registry.setSaving(true)
	defer s.registry.setSaving(false)

	if err := s.service.SaveWorkspaceState(ctx, s.WorkspaceID()); err != nil {
		s.fallback("saveWorkspaceState", err)
	}
	return nil
}

// SwitchMode transitions the workspace to a layout mode and applies the
// recomputed placements. Offline, the strategy runs locally.
func (s *Session) SwitchMode(ctx context.Context, mode layout.Mode) error {
	if !mode.IsValid() {
		return validation.FormatInvalidValueError(ErrInvalidMode, mode, layout.ValidModes())
	}

	s.registry.setTransitioning(true)
	defer s.registry.setTransitioning(false)

	resp, err := s.service.SwitchLayoutMode(ctx, remote.SwitchLayoutModeRequest{
		WorkspaceID: s.WorkspaceID(),
		Mode:        mode,
		TriggeredBy: remote.TriggerUser,
	})
	now := time.Now()
	if err != nil || resp == nil {
		s.fallback("switchLayoutMode", err)
		s.applyLocalLayout(mode, now)
		return nil
	}

	s.registry.setMode(mode, now)
	s.applyLayoutResponse(resp, now)
	return nil
}

// MoveDocument applies a drag. In a structured mode the workspace silently
// promotes to freeform and the dragged geometry becomes user truth.
func (s *Session) MoveDocument(ctx context.Context, documentID string, pos geom.Point) error {
	if err := s.checkDocument(documentID); err != nil {
		return err
	}
	if !validPoint(pos) {
		return ErrInvalidGeometry
	}

	s.registry.setTransitioning(true)
	defer s.registry.setTransitioning(false)

	resp, err := s.service.MoveDocument(ctx, remote.MoveDocumentRequest{
		WorkspaceID: s.WorkspaceID(),
		DocumentID:  documentID,
		Position:    pos,
	})
	now := time.Now()
	if err != nil || resp == nil {
		s.fallback("moveDocument", err)
		s.manualFallback(documentID, layout.ActionDrag, now, func(doc *Document) {
			doc.Position = pos
		})
		return nil
	}

	s.applyLayoutResponse(resp, now)
	return nil
}

// ResizeDocument applies a resize. Promotion semantics match MoveDocument.
func (s *Session) ResizeDocument(ctx context.Context, documentID string, dim geom.Size) error {
	if err := s.checkDocument(documentID); err != nil {
		return err
	}
	if !validSize(dim) || dim.Width < geom.MinDocumentWidth || dim.Height < geom.MinDocumentHeight {
		return ErrInvalidGeometry
	}

	s.registry.setTransitioning(true)
	defer s.registry.setTransitioning(false)

	resp, err := s.service.ResizeDocument(ctx, remote.ResizeDocumentRequest{
		WorkspaceID: s.WorkspaceID(),
		DocumentID:  documentID,
		Dimensions:  dim,
	})
	now := time.Now()
	if err != nil || resp == nil {
		s.fallback("resizeDocument", err)
		s.manualFallback(documentID, layout.ActionResize, now, func(doc *Document) {
			doc.Dimensions = dim
		})
		return nil
	}

	s.applyLayoutResponse(resp, now)
	return nil
}

// UpdateCanvasSize reports a canvas resize and reflows the current mode.
func (s *Session) UpdateCanvasSize(ctx context.Context, size geom.Size) error {
	if !validSize(size) || size.IsZero() {
		return ErrInvalidGeometry
	}

	s.registry.setTransitioning(true)
	defer s.registry.setTransitioning(false)

	resp, err := s.service.UpdateWorkspaceSize(ctx, remote.UpdateWorkspaceSizeRequest{
		WorkspaceID: s.WorkspaceID(),
		Size:        size,
	})
	now := time.Now()
	s.registry.setSize(size, now)
	if err != nil || resp == nil {
		s.fallback("updateWorkspaceSize", err)
		s.applyLocalLayout(s.registry.Workspace().Mode, now)
		return nil
	}

	s.applyLayoutResponse(resp, now)
	return nil
}

// ActivateDocument gives a document focus and brings it to the front. The
// single-active invariant is enforced locally whether or not the remote
// call succeeds.
func (s *Session) ActivateDocument(ctx context.Context, documentID string) error {
	if err := s.checkDocument(documentID); err != nil {
		return err
	}

	s.registry.setTransitioning(true)
	defer s.registry.setTransitioning(false)

	if err := s.service.ActivateDocument(ctx, s.WorkspaceID(), documentID); err != nil {
		s.fallback("activateDocument", err)
	}
	s.registry.activate(documentID, time.Now())
	return nil
}

// AddDocument opens a file in the workspace and returns the resulting
// document. Offline, the document is synthesized with a generated id and a
// cascaded default placement; the first document becomes active.
func (s *Session) AddDocument(ctx context.Context, filePath string) (Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return Document{}, ErrFilePathRequired
	}

	s.registry.setTransitioning(true)
	defer s.registry.setTransitioning(false)

	resp, err := s.service.AddDocument(ctx, remote.AddDocumentRequest{
		WorkspaceID: s.WorkspaceID(),
		FilePath:    filePath,
	})
	now := time.Now()
	if err != nil || resp == nil {
		s.fallback("addDocument", err)
		doc := s.synthesizeDocument(filePath, now)
		s.registry.insert(doc)
		return doc, nil
	}

	doc := Document{
		ID:           resp.DocumentID,
		Title:        resp.Title,
		FilePath:     resp.FilePath,
		Position:     resp.Position,
		Dimensions:   resp.Dimensions,
		ZIndex:       resp.ZIndex,
		Active:       resp.WasActivated,
		Visible:      true,
		State:        DocumentReady,
		LastModified: now,
	}
	if doc.Title == "" {
		doc.Title = titleFromPath(doc.FilePath)
	}
	if doc.ZIndex == 0 {
		doc.ZIndex = s.registry.maxZ() + 1
	}
	s.registry.insert(doc)
	return doc, nil
}

// RemoveDocument closes a document. Removal always succeeds locally; the
// registry must not retain ghost documents when the service is down.
func (s *Session) RemoveDocument(ctx context.Context, documentID string) error {
	if err := s.checkDocument(documentID); err != nil {
		return err
	}

	s.registry.setTransitioning(true)
	defer s.registry.setTransitioning(false)

	if _, err := s.service.RemoveDocument(ctx, s.WorkspaceID(), documentID); err != nil {
		s.fallback("removeDocument", err)
	}
	s.registry.remove(documentID)
	return nil
}

// RemoveAllDocuments closes every document. Like RemoveDocument, the local
// collection empties regardless of remote confirmation.
func (s *Session) RemoveAllDocuments(ctx context.Context) error {
	s.registry.setTransitioning(true)
	defer s.registry.setTransitioning(false)

	if _, err := s.service.RemoveAllDocuments(ctx, s.WorkspaceID()); err != nil {
		s.fallback("removeAllDocuments", err)
	}
	s.registry.removeAll()
	return nil
}

// applyLayoutResponse merges a remote layout result into the registry.
func (s *Session) applyLayoutResponse(resp *remote.LayoutResponse, now time.Time) {
	if resp.TriggeredAutoFreeform {
		s.registry.setMode(layout.ModeFreeform, now)
	}
	s.registry.reconcile(resp.Placements, now)
}

// applyLocalLayout recomputes the given mode locally and applies it.
func (s *Session) applyLocalLayout(mode layout.Mode, now time.Time) {
	s.registry.setMode(mode, now)
	ws := s.registry.Workspace()
	placements := layout.Compute(mode, s.registry.layoutInfos(), ws.Size, s.registry.activeID())
	s.registry.reconcile(placements, now)
}

// manualFallback applies an unconfirmed drag or resize directly to the
// target document. Manual placement implies freeform intent, so a
// structured mode promotes even without server confirmation. The applied
// geometry is user truth clamped to the canvas, the same rule Freeform
// enforces.
func (s *Session) manualFallback(documentID string, action layout.Action, now time.Time, apply func(*Document)) {
	canvas := s.registry.Workspace().Size
	s.registry.update(documentID, func(doc *Document) {
		apply(doc)
		doc.Position, doc.Dimensions = geom.ClampToCanvas(doc.Position, doc.Dimensions, canvas)
		doc.LastModified = now
	})
	if layout.ShouldPromote(s.registry.Workspace().Mode, action) {
		s.registry.setMode(layout.ModeFreeform, now)
	}
}

// synthesizeDocument builds the local stand-in for a document the service
// could not confirm. Its position cascades by the current document count so
// new documents do not land on top of each other, and it becomes active
// only when it is the first document.
func (s *Session) synthesizeDocument(filePath string, now time.Time) Document {
	count := s.registry.Count()
	offset := cascadeBase + cascadeStep*float64(count)
	return Document{
		ID:         s.ids.DocumentID(),
		Title:      titleFromPath(filePath),
		FilePath:   filePath,
		Position:   geom.Point{X: offset, Y: offset},
		Dimensions: defaultDocumentSize,
		ZIndex:     s.registry.maxZ() + 1,
		Active:     count == 0,
		Visible:    true,
		State:      DocumentReady,

		// Stale until the next successful sync.
		LastModified: now,
	}
}

// checkDocument validates a document id against the registry before any
// remote call is made.
func (s *Session) checkDocument(documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return ErrDocumentIDRequired
	}
	if _, ok := s.registry.Document(documentID); !ok {
		return ErrDocumentNotFound
	}
	return nil
}

// fallback logs a remote failure that is being recovered locally. A nil
// err means the service returned a malformed (empty) response, which takes
// the same path as a transport failure.
func (s *Session) fallback(op string, err error) {
	event := s.logger.Warn().Str("op", op)
	if s.registry != nil {
		event = event.Str("workspace", s.WorkspaceID())
	}
	if err != nil {
		event = event.Err(err)
	} else {
		event = event.Str("cause", "malformed response")
	}
	event.Msg("remote call failed, applying local fallback")
}

func documentFromRemote(d remote.Document) Document {
	doc := Document{
		ID:           d.ID,
		Title:        d.Title,
		FilePath:     d.FilePath,
		Position:     d.Position,
		Dimensions:   d.Dimensions,
		ZIndex:       d.ZIndex,
		Active:       d.Active,
		Visible:      d.Visible,
		State:        DocumentReady,
		LastModified: d.LastModified,
	}
	if doc.Title == "" {
		doc.Title = titleFromPath(doc.FilePath)
	}
	return doc
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func validPoint(p geom.Point) bool {
	return isFinite(p.X) && isFinite(p.Y) && p.X >= 0 && p.Y >= 0
}

func validSize(s geom.Size) bool {
	return isFinite(s.Width) && isFinite(s.Height) && s.Width >= 0 && s.Height >= 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
