// Package export renders board snapshots.
//
// [ToDOT] produces Graphviz DOT source with every tile pinned to its grid
// position, which [RenderSVG] and [RenderPNG] lay out with neato. [Text]
// draws the same board with box characters and lipgloss colors for the
// terminal.
//
// Convert layout entities with [Tiles]:
//
//	tiles := export.Tiles(store.Entities())
//	dot := export.ToDOT("Machines", store.Config(), tiles)
//	svg, err := export.RenderSVG(ctx, dot)
package export
