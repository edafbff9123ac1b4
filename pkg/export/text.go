package export

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wit-platform/witpanel/pkg/grid"
)

// TextOptions sizes the terminal board.
type TextOptions struct {
	// CellWidth and CellHeight are characters per grid cell. Defaults 16x3.
	CellWidth  int
	CellHeight int
	// Highlight is drawn with a bold border, e.g. the tile being dragged.
	Highlight string
	// Plain disables colors.
	Plain bool
}

var (
	styleEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	styleBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleBold   = lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Bold(true)

	statusStyles = map[string]lipgloss.Style{
		"red":    lipgloss.NewStyle().Foreground(lipgloss.Color("167")),
		"yellow": lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		"green":  lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
	}
)

// styleKind tags each canvas rune with how it is painted.
type styleKind uint8

const (
	paintEmpty styleKind = iota
	paintBorder
	paintHighlight
	paintLabel
)

type canvasCell struct {
	r      rune
	kind   styleKind
	status string
}

// Text draws the board as a grid of boxes, one per tile, with empty cells
// dotted.
func Text(cfg grid.Config, tiles []Tile, opts TextOptions) string {
	cw := opts.CellWidth
	if cw < 4 {
		cw = 16
	}
	ch := opts.CellHeight
	if ch < 2 {
		ch = 3
	}

	width, height := cfg.Cols*cw, cfg.Rows*ch
	canvas := make([][]canvasCell, height)
	for y := range canvas {
		canvas[y] = make([]canvasCell, width)
		for x := range canvas[y] {
			canvas[y][x] = canvasCell{r: ' ', kind: paintEmpty}
			if x%cw == cw/2 && y%ch == ch/2 {
				canvas[y][x].r = '·'
			}
		}
	}

	for _, t := range tiles {
		if !cfg.Contains(t.Rect) {
			continue
		}
		drawTile(canvas, t, cw, ch, t.ID == opts.Highlight)
	}

	var sb strings.Builder
	for y, row := range canvas {
		if y > 0 {
			sb.WriteByte('\n')
		}
		writeRow(&sb, row, opts.Plain)
	}
	return sb.String()
}

func drawTile(canvas [][]canvasCell, t Tile, cw, ch int, highlight bool) {
	x0, y0 := t.Rect.X*cw, t.Rect.Y*ch
	x1, y1 := t.Rect.Right()*cw-1, t.Rect.Bottom()*ch-1

	border := paintBorder
	h, v, corners := '─', '│', [4]rune{'╭', '╮', '╰', '╯'}
	if highlight {
		border = paintHighlight
		h, v, corners = '━', '┃', [4]rune{'┏', '┓', '┗', '┛'}
	}

	set := func(x, y int, r rune, kind styleKind) {
		canvas[y][x] = canvasCell{r: r, kind: kind, status: t.Status}
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			set(x, y, ' ', paintLabel)
		}
	}
	for x := x0 + 1; x < x1; x++ {
		set(x, y0, h, border)
		set(x, y1, h, border)
	}
	for y := y0 + 1; y < y1; y++ {
		set(x0, y, v, border)
		set(x1, y, v, border)
	}
	set(x0, y0, corners[0], border)
	set(x1, y0, corners[1], border)
	set(x0, y1, corners[2], border)
	set(x1, y1, corners[3], border)

	inner := x1 - x0 - 1
	if inner <= 0 || y1-y0 < 2 {
		return
	}
	lines := []string{t.Label}
	if t.Status != "" && y1-y0 >= 3 {
		lines = append(lines, "● "+t.Status)
	}
	for i, line := range lines {
		y := y0 + 1 + i
		if y >= y1 {
			break
		}
		runes := []rune(truncate(line, inner))
		for j, r := range runes {
			set(x0+1+j, y, r, paintLabel)
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// writeRow emits runs of equally styled runes.
func writeRow(sb *strings.Builder, row []canvasCell, plain bool) {
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i].kind == row[start].kind && row[i].status == row[start].status {
			continue
		}
		run := make([]rune, 0, i-start)
		for _, c := range row[start:i] {
			run = append(run, c.r)
		}
		if plain {
			sb.WriteString(string(run))
		} else {
			sb.WriteString(styleFor(row[start]).Render(string(run)))
		}
		start = i
	}
}

func styleFor(c canvasCell) lipgloss.Style {
	switch c.kind {
	case paintEmpty:
		return styleEmpty
	case paintHighlight:
		return styleBold
	case paintBorder:
		if s, ok := statusStyles[c.status]; ok {
			return s
		}
		return styleBorder
	}
	if s, ok := statusStyles[c.status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
