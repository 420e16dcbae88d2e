package layout

import (
	"math"

	"github.com/canopyreview/canopy/geom"
)

const (
	// GridPadding is the gap between and around grid cells, in pixels.
	GridPadding = 20.0

	gridActiveZ = 5
	gridBackZ   = 1
)

// GridShape returns the (cols, rows) of the near-square grid for n
// documents. Small counts use fixed shapes; beyond nine documents the grid
// grows as cols = ceil(sqrt(n)), rows = ceil(n/cols).
func GridShape(n int) (cols, rows int) {
	switch {
	case n <= 1:
		return 1, 1
	case n == 2:
		return 2, 1
	case n <= 4:
		return 2, 2
	case n <= 6:
		return 3, 2
	case n <= 9:
		return 3, 3
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return cols, rows
}

// Grid tiles every document into a row-major near-square grid with
// GridPadding between and around cells. Cells shrink to fit the canvas but
// never below the minimum usable document size. The active document sits
// slightly above its neighbors in stacking order.
func Grid(docs []DocumentInfo, canvas geom.Size, activeID string) []Placement {
	if len(docs) == 0 {
		return nil
	}
	canvas = geom.ClampCanvas(canvas)

	cols, rows := GridShape(len(docs))
	cell := geom.Size{
		Width:  (canvas.Width - GridPadding*float64(cols+1)) / float64(cols),
		Height: (canvas.Height - GridPadding*float64(rows+1)) / float64(rows),
	}
	cell = cell.ClampMin(geom.MinDocumentSize())

	placements := make([]Placement, 0, len(docs))
	for i, doc := range docs {
		col := i % cols
		row := i / cols

		z := gridBackZ
		if doc.ID == activeID {
			z = gridActiveZ
		}

		placements = append(placements, Placement{
			DocumentID: doc.ID,
			Position: geom.Point{
				X: GridPadding + float64(col)*(cell.Width+GridPadding),
				Y: GridPadding + float64(row)*(cell.Height+GridPadding),
			},
			Dimensions: cell,
			ZIndex:     z,
			Visible:    true,
		})
	}
	return placements
}
