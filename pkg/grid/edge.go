package grid

// Direction is one of the eight resize zones of an entity. The empty
// direction means the pointer is in the interior (a drag).
type Direction string

// Resize directions.
const (
	None      Direction = ""
	North     Direction = "n"
	South     Direction = "s"
	East      Direction = "e"
	West      Direction = "w"
	NorthEast Direction = "ne"
	NorthWest Direction = "nw"
	SouthEast Direction = "se"
	SouthWest Direction = "sw"
)

// DefaultEdgeThreshold is the width in pixels of the resize zones.
const DefaultEdgeThreshold = 10.0

// Directions lists every resize direction.
var Directions = []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}

// ParseDirection returns the direction named by s, or false.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range Directions {
		if string(d) == s {
			return d, true
		}
	}
	return None, false
}

// Moves reports which edges of the rectangle the direction drags.
func (d Direction) Moves() (top, bottom, left, right bool) {
	switch d {
	case North:
		top = true
	case South:
		bottom = true
	case East:
		right = true
	case West:
		left = true
	case NorthEast:
		top, right = true, true
	case NorthWest:
		top, left = true, true
	case SouthEast:
		bottom, right = true, true
	case SouthWest:
		bottom, left = true, true
	}
	return
}

// ClassifyEdgeZone returns the resize zone under the pointer, or [None] if
// the pointer is in the interior of r or outside it entirely. A pointer within
// threshold pixels of two adjacent edges resolves to the corner.
func ClassifyEdgeZone(p Point, r PixelRect, threshold float64) Direction {
	if !r.Contains(p) {
		return None
	}
	if threshold <= 0 {
		threshold = DefaultEdgeThreshold
	}

	top := p.Y-r.Y <= threshold
	bottom := r.Y+r.Height-p.Y <= threshold
	left := p.X-r.X <= threshold
	right := r.X+r.Width-p.X <= threshold

	// A box thinner than two thresholds matches both sides; prefer the
	// nearer one.
	if top && bottom {
		top = p.Y-r.Y <= r.Y+r.Height-p.Y
		bottom = !top
	}
	if left && right {
		left = p.X-r.X <= r.X+r.Width-p.X
		right = !left
	}

	switch {
	case top && left:
		return NorthWest
	case top && right:
		return NorthEast
	case bottom && left:
		return SouthWest
	case bottom && right:
		return SouthEast
	case top:
		return North
	case bottom:
		return South
	case left:
		return West
	case right:
		return East
	}
	return None
}
