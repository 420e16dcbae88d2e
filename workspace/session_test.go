package workspace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/internal/ids"
	"github.com/canopyreview/canopy/layout"
	"github.com/canopyreview/canopy/remote/remotetest"
	"github.com/canopyreview/canopy/workspace"
)

func onlineSession(t *testing.T, mode layout.Mode) (*workspace.Session, *remotetest.Server) {
	t.Helper()
	server := remotetest.NewServer()
	sess, err := workspace.Create(context.Background(), "review", mode, geom.Size{Width: 1200, Height: 800}, workspace.Options{
		Service: server,
		IDs:     ids.NewDeterministic("test"),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess, server
}

func offlineSession(t *testing.T) *workspace.Session {
	t.Helper()
	sess, err := workspace.Create(context.Background(), "review", layout.ModeStacked, geom.Size{Width: 1200, Height: 800}, workspace.Options{
		Service: remotetest.Unavailable{},
		IDs:     ids.NewDeterministic("test"),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func TestCreateValidation(t *testing.T) {
	opts := workspace.Options{Service: remotetest.NewServer()}
	ctx := context.Background()

	if _, err := workspace.Create(ctx, "", layout.ModeGrid, geom.Size{}, opts); !errors.Is(err, workspace.ErrNameRequired) {
		t.Errorf("empty name: err = %v, want ErrNameRequired", err)
	}
	if _, err := workspace.Create(ctx, "review", layout.Mode("cascade"), geom.Size{}, opts); !errors.Is(err, workspace.ErrInvalidMode) {
		t.Errorf("bad mode: err = %v, want ErrInvalidMode", err)
	}
}

func TestCreateOfflineSynthesizesWorkspace(t *testing.T) {
	sess := offlineSession(t)
	ws := sess.Registry().Workspace()
	if ws.ID == "" {
		t.Error("offline create should generate a workspace id")
	}
	if ws.Mode != layout.ModeStacked {
		t.Errorf("mode = %s, want stacked", ws.Mode)
	}
}

func TestAddDocumentOnline(t *testing.T) {
	sess, _ := onlineSession(t, layout.ModeGrid)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/corpus/report.pdf")
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if doc.ID == "" {
		t.Error("expected server-assigned document id")
	}
	if doc.Title != "report" {
		t.Errorf("title = %q, want %q", doc.Title, "report")
	}
	if !doc.Active {
		t.Error("first document should be activated")
	}
	if sess.Registry().Count() != 1 {
		t.Error("document not inserted into registry")
	}
}

func TestAddDocumentValidation(t *testing.T) {
	sess := offlineSession(t)
	if _, err := sess.AddDocument(context.Background(), "  "); !errors.Is(err, workspace.ErrFilePathRequired) {
		t.Errorf("err = %v, want ErrFilePathRequired", err)
	}
}

func TestAddDocumentFallbackTwice(t *testing.T) {
	// Two consecutive remote failures leave two distinct synthesized
	// documents at non-overlapping cascaded positions, first still active.
	sess := offlineSession(t)
	ctx := context.Background()

	first, err := sess.AddDocument(ctx, "/corpus/alpha.pdf")
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	second, err := sess.AddDocument(ctx, "/corpus/beta.pdf")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if first.ID == second.ID {
		t.Error("synthesized documents must have distinct ids")
	}
	if first.Position == second.Position {
		t.Errorf("synthesized documents overlap at %+v", first.Position)
	}
	if !first.Active {
		t.Error("first synthesized document should be active")
	}
	if second.Active {
		t.Error("second synthesized document should not steal focus")
	}

	got, ok := sess.Registry().ActiveDocument()
	if !ok || got.ID != first.ID {
		t.Errorf("active document = %+v, want first", got)
	}
	if sess.Registry().Count() != 2 {
		t.Errorf("count = %d, want 2", sess.Registry().Count())
	}
}

func TestMoveDocumentFallbackForcesFreeform(t *testing.T) {
	sess, server := onlineSession(t, layout.ModeGrid)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/corpus/report.pdf")
	if err != nil {
		t.Fatalf("add document: %v", err)
	}

	server.FailWith(remotetest.ErrUnavailable)
	want := geom.Point{X: 30, Y: 20}
	if err := sess.MoveDocument(ctx, doc.ID, want); err != nil {
		t.Fatalf("move document: %v", err)
	}

	if mode := sess.Registry().Workspace().Mode; mode != layout.ModeFreeform {
		t.Errorf("mode = %s, want freeform after unconfirmed drag", mode)
	}
	moved, _ := sess.Registry().Document(doc.ID)
	if moved.Position != want {
		t.Errorf("position = %+v, want the requested %+v", moved.Position, want)
	}
}

func TestMoveFallbackClampsToCanvas(t *testing.T) {
	// An unconfirmed drag past the right edge lands at the furthest
	// on-canvas position, never off-canvas.
	sess := offlineSession(t)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/corpus/report.pdf")
	if err != nil {
		t.Fatalf("add document: %v", err)
	}

	// Synthesized document is 600x400 on a 1200x800 canvas.
	if err := sess.MoveDocument(ctx, doc.ID, geom.Point{X: 1700, Y: 0}); err != nil {
		t.Fatalf("move document: %v", err)
	}

	moved, _ := sess.Registry().Document(doc.ID)
	want := geom.Point{X: 600, Y: 0}
	if moved.Position != want {
		t.Errorf("position = %+v, want clamped %+v", moved.Position, want)
	}
	if mode := sess.Registry().Workspace().Mode; mode != layout.ModeFreeform {
		t.Errorf("mode = %s, want freeform after unconfirmed drag", mode)
	}
}

func TestMoveRejectsNegativeCoordinates(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/corpus/report.pdf")
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	before, _ := sess.Registry().Document(doc.ID)

	err = sess.MoveDocument(ctx, doc.ID, geom.Point{X: -250, Y: -99})
	if !errors.Is(err, workspace.ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
	after, _ := sess.Registry().Document(doc.ID)
	if after.Position != before.Position {
		t.Errorf("position = %+v, want unchanged %+v", after.Position, before.Position)
	}
}

func TestResizeRejectsSubMinimumDimensions(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/corpus/report.pdf")
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	before, _ := sess.Registry().Document(doc.ID)

	err = sess.ResizeDocument(ctx, doc.ID, geom.Size{Width: 100, Height: 100})
	if !errors.Is(err, workspace.ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
	after, _ := sess.Registry().Document(doc.ID)
	if after.Dimensions != before.Dimensions {
		t.Errorf("dimensions = %+v, want unchanged %+v", after.Dimensions, before.Dimensions)
	}
}

func TestResizeFallbackClampsToCanvas(t *testing.T) {
	// An unconfirmed resize beyond the canvas trims to the room that
	// remains from the document's position.
	sess := offlineSession(t)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/corpus/report.pdf")
	if err != nil {
		t.Fatalf("add document: %v", err)
	}

	if err := sess.ResizeDocument(ctx, doc.ID, geom.Size{Width: 5000, Height: 5000}); err != nil {
		t.Fatalf("resize document: %v", err)
	}

	resized, _ := sess.Registry().Document(doc.ID)
	canvas := sess.Registry().Workspace().Size
	if resized.Position.X+resized.Dimensions.Width > canvas.Width ||
		resized.Position.Y+resized.Dimensions.Height > canvas.Height {
		t.Errorf("document %+v %+v exceeds canvas %+v",
			resized.Position, resized.Dimensions, canvas)
	}
}

func TestResizePromotesToFreeform(t *testing.T) {
	// Remote-confirmed resize while stacked: the server reports the
	// auto-promotion and the requested dimensions stick exactly.
	sess, _ := onlineSession(t, layout.ModeStacked)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/corpus/report.pdf")
	if err != nil {
		t.Fatalf("add document: %v", err)
	}

	want := geom.Size{Width: 640, Height: 480}
	if err := sess.ResizeDocument(ctx, doc.ID, want); err != nil {
		t.Fatalf("resize document: %v", err)
	}

	if mode := sess.Registry().Workspace().Mode; mode != layout.ModeFreeform {
		t.Errorf("mode = %s, want freeform", mode)
	}
	resized, _ := sess.Registry().Document(doc.ID)
	if resized.Dimensions != want {
		t.Errorf("dimensions = %+v, want %+v", resized.Dimensions, want)
	}
}

func TestMoveValidation(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	if err := sess.MoveDocument(ctx, "", geom.Point{}); !errors.Is(err, workspace.ErrDocumentIDRequired) {
		t.Errorf("empty id: err = %v, want ErrDocumentIDRequired", err)
	}
	if err := sess.MoveDocument(ctx, "ghost", geom.Point{}); !errors.Is(err, workspace.ErrDocumentNotFound) {
		t.Errorf("unknown id: err = %v, want ErrDocumentNotFound", err)
	}
}

func TestActivateKeepsSingleActiveInvariant(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	var docIDs []string
	for _, path := range []string{"/c/a.pdf", "/c/b.pdf", "/c/c.pdf"} {
		doc, err := sess.AddDocument(ctx, path)
		if err != nil {
			t.Fatalf("add %s: %v", path, err)
		}
		docIDs = append(docIDs, doc.ID)
	}

	// Offline and online activations interleaved arbitrarily.
	for _, id := range []string{docIDs[2], docIDs[0], docIDs[1], docIDs[1], docIDs[2]} {
		if err := sess.ActivateDocument(ctx, id); err != nil {
			t.Fatalf("activate %s: %v", id, err)
		}

		active := 0
		for _, d := range sess.Registry().Documents() {
			if d.Active {
				active++
			}
		}
		if active != 1 {
			t.Fatalf("after activating %s: %d active documents, want 1", id, active)
		}
	}

	got, _ := sess.Registry().ActiveDocument()
	if got.ID != docIDs[2] {
		t.Errorf("active = %s, want %s", got.ID, docIDs[2])
	}
}

func TestActivateBringsToFrontOffline(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	a, _ := sess.AddDocument(ctx, "/c/a.pdf")
	b, _ := sess.AddDocument(ctx, "/c/b.pdf")

	if err := sess.ActivateDocument(ctx, a.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	front, _ := sess.Registry().Document(a.ID)
	back, _ := sess.Registry().Document(b.ID)
	if front.ZIndex <= back.ZIndex {
		t.Errorf("activated document z %d should exceed %d", front.ZIndex, back.ZIndex)
	}
}

func TestRemoveDocumentOfflineNeverLeavesGhosts(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/c/a.pdf")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := sess.RemoveDocument(ctx, doc.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if sess.Registry().Count() != 0 {
		t.Error("document should be removed locally despite remote failure")
	}
}

func TestRemoveAllDocumentsOffline(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	sess.AddDocument(ctx, "/c/a.pdf")
	sess.AddDocument(ctx, "/c/b.pdf")

	if err := sess.RemoveAllDocuments(ctx); err != nil {
		t.Fatalf("remove all: %v", err)
	}
	if sess.Registry().Count() != 0 {
		t.Error("registry should be empty")
	}
}

func TestSwitchModeOfflineRunsStrategyLocally(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sess.AddDocument(ctx, "/c/doc.pdf")
	}

	if err := sess.SwitchMode(ctx, layout.ModeGrid); err != nil {
		t.Fatalf("switch mode: %v", err)
	}

	ws := sess.Registry().Workspace()
	if ws.Mode != layout.ModeGrid {
		t.Errorf("mode = %s, want grid", ws.Mode)
	}

	// 1200x800 with three documents: 2x2 grid, 570x370 cells.
	docs := sess.Registry().Documents()
	if docs[2].Position.X != 20 || docs[2].Position.Y != 410 {
		t.Errorf("third document at %+v, want (20, 410)", docs[2].Position)
	}
	for _, d := range docs {
		if !d.Visible {
			t.Errorf("%s: grid documents are visible", d.ID)
		}
	}
}

func TestSwitchModeValidation(t *testing.T) {
	sess := offlineSession(t)
	if err := sess.SwitchMode(context.Background(), layout.Mode("spiral")); !errors.Is(err, workspace.ErrInvalidMode) {
		t.Errorf("err = %v, want ErrInvalidMode", err)
	}
}

func TestUpdateCanvasSizeOfflineReflows(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	sess.AddDocument(ctx, "/c/a.pdf")
	if err := sess.SwitchMode(ctx, layout.ModeGrid); err != nil {
		t.Fatalf("switch mode: %v", err)
	}

	if err := sess.UpdateCanvasSize(ctx, geom.Size{Width: 900, Height: 600}); err != nil {
		t.Fatalf("update canvas size: %v", err)
	}

	ws := sess.Registry().Workspace()
	if ws.Size.Width != 900 || ws.Size.Height != 600 {
		t.Errorf("canvas = %+v, want 900x600", ws.Size)
	}

	// Single document grid: cell fills the canvas minus padding.
	doc := sess.Registry().Documents()[0]
	if doc.Dimensions.Width != 900-2*layout.GridPadding {
		t.Errorf("cell width = %v, want %v", doc.Dimensions.Width, 900-2*layout.GridPadding)
	}
}

func TestLoadStateRepairsDivergence(t *testing.T) {
	sess, server := onlineSession(t, layout.ModeGrid)
	ctx := context.Background()

	doc, err := sess.AddDocument(ctx, "/c/a.pdf")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Diverge locally while the backend is down.
	server.FailWith(remotetest.ErrUnavailable)
	if err := sess.MoveDocument(ctx, doc.ID, geom.Point{X: 500, Y: 500}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if sess.Registry().Workspace().Mode != layout.ModeFreeform {
		t.Fatal("expected local promotion to freeform")
	}

	// Recover: the next successful load overwrites local state wholesale.
	server.FailWith(nil)
	if err := sess.LoadState(ctx); err != nil {
		t.Fatalf("load state: %v", err)
	}

	ws := sess.Registry().Workspace()
	if ws.Mode != layout.ModeGrid {
		t.Errorf("mode = %s, want server truth grid", ws.Mode)
	}
	repaired, _ := sess.Registry().Document(doc.ID)
	if repaired.Position.X == 500 {
		t.Error("diverged position should have been overwritten by server state")
	}
}

func TestLoadStateFailureKeepsLocalState(t *testing.T) {
	sess, server := onlineSession(t, layout.ModeGrid)
	ctx := context.Background()

	sess.AddDocument(ctx, "/c/a.pdf")
	server.FailWith(remotetest.ErrUnavailable)

	if err := sess.LoadState(ctx); err != nil {
		t.Fatalf("load state should resolve despite failure: %v", err)
	}
	if sess.Registry().Count() != 1 {
		t.Error("local documents should survive a failed load")
	}
}

func TestSaveStateNeverSurfacesRemoteFailure(t *testing.T) {
	sess := offlineSession(t)
	if err := sess.SaveState(context.Background()); err != nil {
		t.Errorf("save state: %v, want nil after fallback", err)
	}
}

func TestBusyFlagsClearAfterOperations(t *testing.T) {
	sess := offlineSession(t)
	ctx := context.Background()

	sess.AddDocument(ctx, "/c/a.pdf")
	sess.SaveState(ctx)
	sess.LoadState(ctx)

	snap := sess.Snapshot()
	if snap.Loading || snap.Saving || snap.Transitioning {
		t.Errorf("busy flags should be clear at rest: %+v", snap)
	}
}

func TestOpenValidation(t *testing.T) {
	if _, err := workspace.Open(context.Background(), "", workspace.Options{Service: remotetest.NewServer()}); !errors.Is(err, workspace.ErrWorkspaceIDRequired) {
		t.Errorf("err = %v, want ErrWorkspaceIDRequired", err)
	}
}

func TestOpenLoadsRemoteState(t *testing.T) {
	server := remotetest.NewServer()
	ctx := context.Background()

	seed, err := workspace.Create(ctx, "review", layout.ModeGrid, geom.Size{Width: 1200, Height: 800}, workspace.Options{Service: server})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if _, err := seed.AddDocument(ctx, "/c/a.pdf"); err != nil {
		t.Fatalf("seed add: %v", err)
	}
	if err := seed.SaveState(ctx); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	sess, err := workspace.Open(ctx, seed.WorkspaceID(), workspace.Options{Service: server})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if sess.Registry().Count() != 1 {
		t.Errorf("count = %d, want 1", sess.Registry().Count())
	}
	if sess.Registry().Workspace().Mode != layout.ModeGrid {
		t.Errorf("mode = %s, want grid", sess.Registry().Workspace().Mode)
	}
}
