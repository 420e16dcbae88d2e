package canvas

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/layout"
	"github.com/canopyreview/canopy/workspace"
)

func asciiProfile(t *testing.T) {
	t.Helper()
	original := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(original)
	})
}

func testSnapshot() workspace.Snapshot {
	return workspace.Snapshot{
		Workspace: workspace.Workspace{
			ID:   "ws-1",
			Name: "quarterly review",
			Mode: layout.ModeGrid,
			Size: geom.Size{Width: 1200, Height: 800},
		},
		Documents: []workspace.Document{
			{
				ID:         "doc-1",
				Title:      "report",
				Position:   geom.Point{X: 20, Y: 20},
				Dimensions: geom.Size{Width: 570, Height: 370},
				ZIndex:     5,
				Active:     true,
				Visible:    true,
				State:      workspace.DocumentReady,
			},
			{
				ID:         "doc-2",
				Title:      "appendix",
				Position:   geom.Point{X: 610, Y: 20},
				Dimensions: geom.Size{Width: 570, Height: 370},
				ZIndex:     1,
				Visible:    true,
				State:      workspace.DocumentReady,
			},
		},
	}
}

func TestRenderHeader(t *testing.T) {
	asciiProfile(t)

	out := Renderer{Width: 80}.Render(testSnapshot())

	header := strings.SplitN(out, "\n", 2)[0]
	if !strings.Contains(header, "quarterly review") {
		t.Errorf("header missing workspace name: %q", header)
	}
	if !strings.Contains(header, "grid") {
		t.Errorf("header missing mode: %q", header)
	}
	if !strings.Contains(header, "1200x800") {
		t.Errorf("header missing canvas size: %q", header)
	}
}

func TestRenderDrawsDocuments(t *testing.T) {
	asciiProfile(t)

	out := Renderer{Width: 80}.Render(testSnapshot())

	if !strings.Contains(out, "1:report") {
		t.Errorf("expected active document label in output:\n%s", out)
	}
	if !strings.Contains(out, "2:appendix") {
		t.Errorf("expected second document label in output:\n%s", out)
	}

	// The active document draws a heavier border.
	if !strings.Contains(out, "=") {
		t.Errorf("expected heavy border for active document:\n%s", out)
	}
	if !strings.Contains(out, "+") {
		t.Errorf("expected box corners in output:\n%s", out)
	}
}

func TestRenderLegend(t *testing.T) {
	asciiProfile(t)

	out := Renderer{Width: 80}.Render(testSnapshot())

	if !strings.Contains(out, "1. report  (20,20) 570x370 z=5  active") {
		t.Errorf("expected active legend line:\n%s", out)
	}
	if !strings.Contains(out, "2. appendix  (610,20) 570x370 z=1") {
		t.Errorf("expected legend line for second document:\n%s", out)
	}
}

func TestRenderSkipsHiddenDocuments(t *testing.T) {
	asciiProfile(t)

	snap := testSnapshot()
	snap.Documents[1].Visible = false
	snap.Documents[1].Position = geom.Point{}
	snap.Documents[1].Dimensions = geom.MinDocumentSize()

	out := Renderer{Width: 80}.Render(snap)

	if strings.Contains(out, "2:appendix") {
		t.Errorf("hidden document should not be drawn on the canvas:\n%s", out)
	}
	if !strings.Contains(out, "hidden") {
		t.Errorf("hidden document should still appear in the legend:\n%s", out)
	}
}

func TestRenderErrorState(t *testing.T) {
	asciiProfile(t)

	snap := testSnapshot()
	snap.Documents[1].State = workspace.DocumentError
	snap.Documents[1].ErrorMessage = "file unreadable"

	out := Renderer{Width: 80}.Render(snap)

	if !strings.Contains(out, "error: file unreadable") {
		t.Errorf("expected error message in legend:\n%s", out)
	}
}

func TestRenderNarrowWidthFallsBack(t *testing.T) {
	asciiProfile(t)

	out := Renderer{Width: 5}.Render(testSnapshot())

	lines := strings.Split(out, "\n")
	var max int
	for _, line := range lines {
		if len(line) > max {
			max = len(line)
		}
	}
	if max < DefaultWidth-2 {
		t.Errorf("expected fallback to default width, widest line was %d", max)
	}
}
