package model

// Point is a position in a page-local coordinate space. The origin is the
// top-left corner of the page; Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is an axis-aligned rectangle in page-local coordinates.
// Width and Height are never negative.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBoundingBox builds a box, clamping negative dimensions to zero.
func NewBoundingBox(x, y, width, height float64) BoundingBox {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return BoundingBox{X: x, Y: y, Width: width, Height: height}
}

// Right returns the right edge X coordinate.
func (b BoundingBox) Right() float64 {
	return b.X + b.Width
}

// Bottom returns the bottom edge Y coordinate.
func (b BoundingBox) Bottom() float64 {
	return b.Y + b.Height
}

// Area returns the area of the box.
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.Right() &&
		p.Y >= b.Y && p.Y <= b.Bottom()
}

// IsDegenerate reports whether the box has zero area. Elements produced by
// structuring must never be degenerate.
func (b BoundingBox) IsDegenerate() bool {
	return b.Width <= 0 || b.Height <= 0
}
