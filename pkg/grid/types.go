package grid

import (
	"fmt"

	"github.com/wit-platform/witpanel/pkg/errors"
)

// MaxDim is the largest number of columns or rows a board may have.
const MaxDim = 8

// Cell is the grid coordinate of an entity's top-left corner.
type Cell struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Size is an entity's extent in cells.
type Size struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

// Unit is the 1×1 size given to newly added entities.
var Unit = Size{Width: 1, Height: 1}

// Valid reports whether both dimensions are at least one cell.
func (s Size) Valid() bool { return s.Width >= 1 && s.Height >= 1 }

// Rect is an axis-aligned rectangle of cells.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectOf builds a Rect from a position and a size.
func RectOf(c Cell, s Size) Rect {
	return Rect{X: c.X, Y: c.Y, Width: s.Width, Height: s.Height}
}

// Cell returns the top-left corner.
func (r Rect) Cell() Cell { return Cell{X: r.X, Y: r.Y} }

// Size returns the extent.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether the cell lies inside r.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X < r.Right() && c.Y >= r.Y && c.Y < r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Config bounds all valid placements: x+width ≤ Cols and y+height ≤ Rows.
type Config struct {
	Cols int `json:"cols" toml:"cols"`
	Rows int `json:"rows" toml:"rows"`
}

// DefaultConfig is the board size used when nothing is configured.
var DefaultConfig = Config{Cols: 4, Rows: 3}

// Validate checks that both dimensions are in 1..MaxDim.
func (c Config) Validate() error {
	if c.Cols < 1 || c.Cols > MaxDim {
		return errors.New(errors.ErrCodeInvalidConfig, "cols must be between 1 and %d, got %d", MaxDim, c.Cols)
	}
	if c.Rows < 1 || c.Rows > MaxDim {
		return errors.New(errors.ErrCodeInvalidConfig, "rows must be between 1 and %d, got %d", MaxDim, c.Rows)
	}
	return nil
}

// Cells returns the number of cells on the board.
func (c Config) Cells() int { return c.Cols * c.Rows }

// Contains reports whether r lies entirely on the board and has a valid size.
func (c Config) Contains(r Rect) bool {
	return r.X >= 0 && r.Y >= 0 && r.Width >= 1 && r.Height >= 1 &&
		r.Right() <= c.Cols && r.Bottom() <= c.Rows
}

// ClampCell clamps a top-left candidate so that a rectangle of the given
// size stays on the board: x in [0, cols-width], y in [0, rows-height].
func (c Config) ClampCell(cell Cell, s Size) Cell {
	return Cell{
		X: clamp(cell.X, 0, max(c.Cols-s.Width, 0)),
		Y: clamp(cell.Y, 0, max(c.Rows-s.Height, 0)),
	}
}

// Point is a pixel position relative to the grid container.
type Point struct {
	X float64
	Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// PixelRect is an entity's rendered bounding box in pixels.
type PixelRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Origin returns the top-left corner.
func (r PixelRect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Contains reports whether p lies inside r (edges inclusive).
func (r PixelRect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
