// Package geom provides the position and dimension value types shared by
// layout computation and the workspace registry, along with the clamping
// rules that keep documents inside a usable canvas.
package geom

const (
	// MinDocumentWidth is the smallest usable document width in pixels.
	MinDocumentWidth = 200.0
	// MinDocumentHeight is the smallest usable document height in pixels.
	MinDocumentHeight = 150.0

	// MinCanvasWidth is the smallest usable workspace canvas width.
	MinCanvasWidth = 400.0
	// MinCanvasHeight is the smallest usable workspace canvas height.
	MinCanvasHeight = 300.0
)

// Point is a document's top-left corner within the workspace canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MinDocumentSize returns the smallest usable document size.
func MinDocumentSize() Size {
	return Size{Width: MinDocumentWidth, Height: MinDocumentHeight}
}

// MinCanvasSize returns the smallest usable workspace canvas size.
func MinCanvasSize() Size {
	return Size{Width: MinCanvasWidth, Height: MinCanvasHeight}
}

// IsZero reports whether the size has no extent.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// ClampMin returns s with each dimension raised to at least min.
func (s Size) ClampMin(min Size) Size {
	if s.Width < min.Width {
		s.Width = min.Width
	}
	if s.Height < min.Height {
		s.Height = min.Height
	}
	return s
}

// ClampCanvas raises a workspace size to the minimum usable canvas.
func ClampCanvas(s Size) Size {
	return s.ClampMin(MinCanvasSize())
}

// ClampToCanvas constrains a document rectangle to lie within the canvas.
// Dimensions are raised to the minimum usable document size, the position is
// pulled back so the rectangle does not extend past the canvas edges, and the
// dimensions are finally trimmed to whatever room remains. Position
// coordinates never go negative.
func ClampToCanvas(pos Point, dim Size, canvas Size) (Point, Size) {
	dim = dim.ClampMin(MinDocumentSize())

	pos.X = clamp(pos.X, 0, canvas.Width-dim.Width)
	pos.Y = clamp(pos.Y, 0, canvas.Height-dim.Height)

	if pos.X+dim.Width > canvas.Width {
		dim.Width = canvas.Width - pos.X
	}
	if pos.Y+dim.Height > canvas.Height {
		dim.Height = canvas.Height - pos.Y
	}

	return pos, dim
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
