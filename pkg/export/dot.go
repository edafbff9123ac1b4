package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/wit-platform/witpanel/pkg/grid"
)

// cellPoints is the size of one grid cell in the DOT output.
const cellPoints = 72.0

var statusFill = map[string]string{
	"red":    "#f4a6a6",
	"yellow": "#fbe3a1",
	"green":  "#b7e4c7",
}

// ToDOT converts a board to Graphviz DOT source. Each tile becomes a box
// whose pos attribute is pinned, so only neato-style engines honour the
// placement. Two invisible corner points fix the board extent.
func ToDOT(title string, cfg grid.Config, tiles []Tile) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	if title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=20;\n", title)
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fontsize=12, fillcolor=white];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  \"_origin\" [shape=point, style=invis, pos=\"0,0!\"];\n")
	fmt.Fprintf(&buf, "  \"_extent\" [shape=point, style=invis, pos=\"%s,%s!\"];\n",
		num(float64(cfg.Cols)*cellPoints), num(-float64(cfg.Rows)*cellPoints))

	for _, t := range tiles {
		r := t.Rect
		cx := (float64(r.X) + float64(r.Width)/2) * cellPoints
		cy := -(float64(r.Y) + float64(r.Height)/2) * cellPoints
		// Inches, with a small gutter between neighbours.
		w := float64(r.Width) - 0.1
		h := float64(r.Height) - 0.1

		fill := statusFill[t.Status]
		if fill == "" {
			fill = "white"
		}
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%s,%s!\", width=%s, height=%s, fillcolor=%q];\n",
			t.ID, t.Label, num(cx), num(cy), num(w), num(h), fill)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG lays out DOT source with neato and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out DOT source with neato and returns a PNG image.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag with one whose width and
// height match the viewBox, so browsers scale the board cleanly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
