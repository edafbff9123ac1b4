package export

import (
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
)

// Tile is one entity as drawn on a snapshot.
type Tile struct {
	ID     string
	Label  string
	Status string
	Rect   grid.Rect
}

// Tiles converts entities in collection order.
func Tiles[P layout.Attributes](entities []layout.Entity[P]) []Tile {
	tiles := make([]Tile, len(entities))
	for i, e := range entities {
		label := e.Payload.Label()
		if label == "" {
			label = e.ID
		}
		tiles[i] = Tile{ID: e.ID, Label: label, Status: e.Payload.StatusName(), Rect: e.GridRect()}
	}
	return tiles
}
