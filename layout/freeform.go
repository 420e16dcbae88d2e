package layout

import "github.com/canopyreview/canopy/geom"

// Freeform preserves each document's stored position and dimensions, clamped
// so the rectangle stays within the canvas. Stored z-indexes pass through
// untouched so user-established stacking order survives mode switches.
func Freeform(docs []DocumentInfo, canvas geom.Size) []Placement {
	if len(docs) == 0 {
		return nil
	}
	canvas = geom.ClampCanvas(canvas)

	placements := make([]Placement, 0, len(docs))
	for _, doc := range docs {
		pos, dim := geom.ClampToCanvas(doc.Position, doc.Dimensions, canvas)
		placements = append(placements, Placement{
			DocumentID: doc.ID,
			Position:   pos,
			Dimensions: dim,
			ZIndex:     doc.ZIndex,
			Visible:    true,
		})
	}
	return placements
}
