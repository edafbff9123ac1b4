package grid

import "math"

// PixelToCell converts a pixel distance to a number of cells:
// round(px / (cellSize + gap)).
//
// Rounding rather than flooring means a drag that ends past the midpoint of
// a cell snaps to that cell. Halves round up, toward positive infinity, as
// browser hosts round: +0.5 cell is 1 and -0.5 cell is 0. A pointer resting
// exactly on a midpoint therefore resolves the same way on both sides of a
// rectangle whatever the drag direction.
func PixelToCell(px, cellSize, gap float64) int {
	pitch := cellSize + gap
	if pitch <= 0 {
		return 0
	}
	return int(math.Floor(px/pitch + 0.5))
}

// RectsOverlap reports whether two cell rectangles share at least one cell.
func RectsOverlap(a, b Rect) bool {
	return !(a.Right() <= b.X || b.Right() <= a.X || a.Bottom() <= b.Y || b.Bottom() <= a.Y)
}

// Placed is anything with an identity and a cell rectangle on the board.
type Placed interface {
	GridID() string
	GridRect() Rect
}

// IsOccupied reports whether r overlaps any placed item other than excludeID.
func IsOccupied[T Placed](r Rect, placed []T, excludeID string) bool {
	for _, p := range placed {
		if p.GridID() == excludeID {
			continue
		}
		if RectsOverlap(r, p.GridRect()) {
			return true
		}
	}
	return false
}

// FindFreeSlot scans top-left positions in row-major order (y from 0 to
// rows-h, x from 0 to cols-w) and returns the first one where a rectangle of
// the given size is unoccupied. ok is false when the board has no room.
func FindFreeSlot[T Placed](s Size, placed []T, cfg Config) (cell Cell, ok bool) {
	if !s.Valid() || s.Width > cfg.Cols || s.Height > cfg.Rows {
		return Cell{}, false
	}
	for y := 0; y <= cfg.Rows-s.Height; y++ {
		for x := 0; x <= cfg.Cols-s.Width; x++ {
			if !IsOccupied(Rect{X: x, Y: y, Width: s.Width, Height: s.Height}, placed, "") {
				return Cell{X: x, Y: y}, true
			}
		}
	}
	return Cell{}, false
}

// Bare is a minimal [Placed] used when only rectangles are at hand.
type Bare struct {
	ID   string
	Rect Rect
}

// GridID implements [Placed].
func (b Bare) GridID() string { return b.ID }

// GridRect implements [Placed].
func (b Bare) GridRect() Rect { return b.Rect }
