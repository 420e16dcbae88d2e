package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/internal/canvas"
	"github.com/canopyreview/canopy/layout"
	"github.com/canopyreview/canopy/workspace"
)

var previewCmd = &cobra.Command{
	Use:   "preview <workspace-id>",
	Short: "Render a workspace layout as a terminal diagram",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Inspect layout strategies",
}

var layoutPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a layout strategy for a synthetic workspace, no service needed",
	RunE:  runLayoutPreview,
}

var (
	previewWidth int

	layoutMode   string
	layoutDocs   int
	layoutWidth  float64
	layoutHeight float64
	layoutActive int
	layoutRender int
)

func init() {
	rootCmd.AddCommand(previewCmd, layoutCmd)
	layoutCmd.AddCommand(layoutPreviewCmd)

	previewCmd.Flags().IntVar(&previewWidth, "width", 0, "Output width in characters (default: terminal width)")

	layoutPreviewCmd.Flags().StringVar(&layoutMode, "mode", "grid", "Layout mode to preview")
	layoutPreviewCmd.Flags().IntVar(&layoutDocs, "docs", 3, "Number of documents")
	layoutPreviewCmd.Flags().Float64Var(&layoutWidth, "canvas-width", workspace.DefaultCanvasSize.Width, "Canvas width")
	layoutPreviewCmd.Flags().Float64Var(&layoutHeight, "canvas-height", workspace.DefaultCanvasSize.Height, "Canvas height")
	layoutPreviewCmd.Flags().IntVar(&layoutActive, "active", 1, "Which document is active (1-based)")
	layoutPreviewCmd.Flags().IntVar(&layoutRender, "width", 0, "Output width in characters (default: terminal width)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	width := previewWidth
	if width <= 0 {
		width = canvas.DetectWidth()
	}

	fmt.Print(canvas.Renderer{Width: width}.Render(session.Snapshot()))
	return nil
}

func runLayoutPreview(cmd *cobra.Command, args []string) error {
	mode := layout.Mode(layoutMode)
	if !mode.IsValid() {
		return fmt.Errorf("invalid layout mode %q", layoutMode)
	}
	if layoutDocs < 1 {
		return fmt.Errorf("need at least one document")
	}

	canvasSize := geom.ClampCanvas(geom.Size{Width: layoutWidth, Height: layoutHeight})

	// Synthesize a cascade of documents the way a fresh workspace
	// builds up, then run the requested strategy over them.
	infos := make([]layout.DocumentInfo, layoutDocs)
	for i := range infos {
		offset := 40.0 + 30.0*float64(i)
		infos[i] = layout.DocumentInfo{
			ID:         fmt.Sprintf("doc-%d", i+1),
			Position:   geom.Point{X: offset, Y: offset},
			Dimensions: geom.Size{Width: 600, Height: 400},
			ZIndex:     i + 1,
		}
	}

	activeIdx := layoutActive - 1
	if activeIdx < 0 || activeIdx >= layoutDocs {
		return fmt.Errorf("active document %d out of range 1..%d", layoutActive, layoutDocs)
	}
	activeID := infos[activeIdx].ID

	placements := layout.Compute(mode, infos, canvasSize, activeID)

	now := time.Now()
	snap := workspace.Snapshot{
		Workspace: workspace.Workspace{
			ID:           "preview",
			Name:         "layout preview",
			Mode:         mode,
			Size:         canvasSize,
			LastModified: now,
		},
	}
	for i, p := range placements {
		snap.Documents = append(snap.Documents, workspace.Document{
			ID:           p.DocumentID,
			Title:        fmt.Sprintf("document %d", i+1),
			Position:     p.Position,
			Dimensions:   p.Dimensions,
			ZIndex:       p.ZIndex,
			Active:       p.DocumentID == activeID,
			Visible:      p.Visible,
			State:        workspace.DocumentReady,
			LastModified: now,
		})
	}

	width := layoutRender
	if width <= 0 {
		width = canvas.DetectWidth()
	}

	fmt.Print(canvas.Renderer{Width: width}.Render(snap))
	return nil
}
