package gesture

import "github.com/wit-platform/witpanel/pkg/grid"

// ResizeRect applies a cell delta to start according to dir.
//
// East and south grow or shrink the far edge. West and north move the near
// edge while the opposite edge stays fixed, so shrinking from the left stops
// at width 1 without moving the right edge. Width and height never drop
// below one cell, and the result is clamped to the board.
func ResizeRect(start grid.Rect, dir grid.Direction, dx, dy int, cfg grid.Config) grid.Rect {
	top, bottom, left, right := dir.Moves()
	r := start

	if right {
		r.Width = max(1, start.Width+dx)
	}
	if bottom {
		r.Height = max(1, start.Height+dy)
	}
	if left {
		w := max(1, start.Width-dx)
		x := start.Right() - w
		if x < 0 {
			x, w = 0, start.Right()
		}
		r.X, r.Width = x, w
	}
	if top {
		h := max(1, start.Height-dy)
		y := start.Bottom() - h
		if y < 0 {
			y, h = 0, start.Bottom()
		}
		r.Y, r.Height = y, h
	}

	if r.Right() > cfg.Cols {
		r.Width = max(1, cfg.Cols-r.X)
	}
	if r.Bottom() > cfg.Rows {
		r.Height = max(1, cfg.Rows-r.Y)
	}
	return r
}
