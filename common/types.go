// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Rect is a normalized screen rectangle. X and Y are the top-left corner and W and H the
// extent, all expressed as fractions of the window size in [0, 1].
type Rect struct {
	X, Y, W, H float32
}

// Pixels converts the normalized rectangle into pixel coordinates for a surface of the given size.
//
// Parameters:
//   - width: surface width in pixels
//   - height: surface height in pixels
//
// Returns:
//   - x, y, w, h: the rectangle in pixels
func (r Rect) Pixels(width, height int) (x, y, w, h float32) {
	fw, fh := float32(width), float32(height)
	return r.X * fw, r.Y * fh, r.W * fw, r.H * fh
}

// QuadrantRects returns n rectangles tiling the unit square in a two-column grid, filled
// row by row. A single rectangle covers the whole surface.
//
// Parameters:
//   - n: number of rectangles
//
// Returns:
//   - []Rect: the tiled rectangles
func QuadrantRects(n int) []Rect {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []Rect{{X: 0, Y: 0, W: 1, H: 1}}
	}
	rows := (n + 1) / 2
	h := 1 / float32(rows)
	rects := make([]Rect, n)
	for i := range rects {
		row, col := i/2, i%2
		rects[i] = Rect{X: float32(col) * 0.5, Y: float32(row) * h, W: 0.5, H: h}
	}
	return rects
}

// Releaser is implemented by anything holding a resource that must be freed explicitly,
// such as a GPU buffer.
type Releaser interface {
	Release()
}

// ReleaseFunc adapts a plain function to the Releaser interface.
type ReleaseFunc func()

// Release calls f.
func (f ReleaseFunc) Release() {
	f()
}
