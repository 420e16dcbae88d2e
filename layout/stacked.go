package layout

import "github.com/canopyreview/canopy/geom"

const (
	// stackedScale is the share of the canvas the focused document may fill.
	stackedScale = 0.9

	stackedMaxWidth  = 1000.0
	stackedMaxHeight = 700.0

	stackedFrontZ  = 10
	stackedHiddenZ = 0
)

// Stacked places the active document (or the first, if activeID matches
// nothing) centered on the canvas at up to 90% of its extent, capped at
// stackedMaxWidth x stackedMaxHeight. Every other document is hidden at a
// neutral origin placement; it stays in the set but is not rendered.
func Stacked(docs []DocumentInfo, canvas geom.Size, activeID string) []Placement {
	if len(docs) == 0 {
		return nil
	}
	canvas = geom.ClampCanvas(canvas)

	focused := docs[0].ID
	for _, doc := range docs {
		if doc.ID == activeID {
			focused = doc.ID
			break
		}
	}

	dim := geom.Size{
		Width:  min(canvas.Width*stackedScale, stackedMaxWidth),
		Height: min(canvas.Height*stackedScale, stackedMaxHeight),
	}
	dim = dim.ClampMin(geom.MinDocumentSize())
	pos := geom.Point{
		X: (canvas.Width - dim.Width) / 2,
		Y: (canvas.Height - dim.Height) / 2,
	}

	placements := make([]Placement, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == focused {
			placements = append(placements, Placement{
				DocumentID: doc.ID,
				Position:   pos,
				Dimensions: dim,
				ZIndex:     stackedFrontZ,
				Visible:    true,
			})
			continue
		}
		placements = append(placements, Placement{
			DocumentID: doc.ID,
			Position:   geom.Point{},
			Dimensions: geom.MinDocumentSize(),
			ZIndex:     stackedHiddenZ,
			Visible:    false,
		})
	}
	return placements
}
