// Package grid implements the geometry of the placement board.
//
// A board is a fixed-size logical grid of [Config.Cols] × [Config.Rows]
// cells. Entities occupy integer-aligned rectangles of cells ([Rect]); the
// host view renders those rectangles in pixels using [Metrics]. Everything
// in this package is pure and stateless:
//
//   - [PixelToCell] quantizes a pixel offset to a cell offset (rounding).
//   - [ClassifyEdgeZone] decides whether a pointer-down lands on one of the
//     eight resize zones of an entity or in its interior (drag).
//   - [RectsOverlap] and [IsOccupied] implement occupancy testing.
//   - [FindFreeSlot] performs the row-major scan used to place new entities.
//
// # Coordinates
//
// Cells are addressed from the top-left corner, X to the right and Y down.
// A rectangle covers the half-open ranges [X, X+Width) × [Y, Y+Height).
// Pixel coordinates are relative to the grid container's top-left corner.
package grid
