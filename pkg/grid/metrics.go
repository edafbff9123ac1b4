package grid

import "math"

// Metrics maps between cell coordinates and host pixels. It is recomputed
// whenever the container resizes or the board dimensions change.
type Metrics struct {
	Config
	CellWidth  float64
	CellHeight float64
	Gap        float64
}

// NewMetrics derives the cell pixel size from the container dimensions:
// cols cells and cols-1 gaps share the container width, likewise for rows.
func NewMetrics(containerWidth, containerHeight float64, cfg Config, gap float64) Metrics {
	m := Metrics{Config: cfg, Gap: max(gap, 0)}
	if cfg.Cols > 0 {
		m.CellWidth = max((containerWidth-m.Gap*float64(cfg.Cols-1))/float64(cfg.Cols), 0)
	}
	if cfg.Rows > 0 {
		m.CellHeight = max((containerHeight-m.Gap*float64(cfg.Rows-1))/float64(cfg.Rows), 0)
	}
	return m
}

// FixedMetrics builds metrics from a known cell size, as terminal hosts do.
func FixedMetrics(cfg Config, cellWidth, cellHeight, gap float64) Metrics {
	return Metrics{Config: cfg, CellWidth: cellWidth, CellHeight: cellHeight, Gap: gap}
}

// Origin returns the pixel position of a cell's top-left corner.
func (m Metrics) Origin(c Cell) Point {
	return Point{
		X: float64(c.X) * (m.CellWidth + m.Gap),
		Y: float64(c.Y) * (m.CellHeight + m.Gap),
	}
}

// PixelRect returns the rendered bounding box of a cell rectangle.
func (m Metrics) PixelRect(r Rect) PixelRect {
	o := m.Origin(r.Cell())
	return PixelRect{
		X:      o.X,
		Y:      o.Y,
		Width:  float64(r.Width)*m.CellWidth + float64(max(r.Width-1, 0))*m.Gap,
		Height: float64(r.Height)*m.CellHeight + float64(max(r.Height-1, 0))*m.Gap,
	}
}

// Snap converts a pixel position to the nearest cell using [PixelToCell]
// on each axis.
func (m Metrics) Snap(p Point) Cell {
	return Cell{
		X: PixelToCell(p.X, m.CellWidth, m.Gap),
		Y: PixelToCell(p.Y, m.CellHeight, m.Gap),
	}
}

// CellAt returns the cell whose box contains p, and false for points in a
// gap or off the board.
func (m Metrics) CellAt(p Point) (Cell, bool) {
	pw, ph := m.CellWidth+m.Gap, m.CellHeight+m.Gap
	if pw <= 0 || ph <= 0 || p.X < 0 || p.Y < 0 {
		return Cell{}, false
	}
	c := Cell{X: int(math.Floor(p.X / pw)), Y: int(math.Floor(p.Y / ph))}
	if c.X >= m.Cols || c.Y >= m.Rows {
		return Cell{}, false
	}
	if p.X-float64(c.X)*pw > m.CellWidth || p.Y-float64(c.Y)*ph > m.CellHeight {
		return Cell{}, false
	}
	return c, true
}
