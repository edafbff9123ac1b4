package grid_test

import (
	"fmt"

	"github.com/wit-platform/witpanel/pkg/grid"
)

func ExampleFindFreeSlot() {
	cfg := grid.Config{Cols: 3, Rows: 3}
	var placed []grid.Bare

	for i := 0; i < 3; i++ {
		cell, ok := grid.FindFreeSlot(grid.Unit, placed, cfg)
		if !ok {
			fmt.Println("grid full")
			return
		}
		fmt.Println(cell.X, cell.Y)
		placed = append(placed, grid.Bare{ID: fmt.Sprint(i), Rect: grid.RectOf(cell, grid.Unit)})
	}
	// Output:
	// 0 0
	// 1 0
	// 2 0
}

func ExampleClassifyEdgeZone() {
	box := grid.PixelRect{X: 0, Y: 0, Width: 120, Height: 80}

	fmt.Printf("%q\n", grid.ClassifyEdgeZone(grid.Point{X: 60, Y: 40}, box, grid.DefaultEdgeThreshold))
	fmt.Printf("%q\n", grid.ClassifyEdgeZone(grid.Point{X: 118, Y: 78}, box, grid.DefaultEdgeThreshold))
	fmt.Printf("%q\n", grid.ClassifyEdgeZone(grid.Point{X: 60, Y: 3}, box, grid.DefaultEdgeThreshold))
	// Output:
	// ""
	// "se"
	// "n"
}
