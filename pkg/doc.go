// Package pkg holds the libraries behind witpanel, the board engine for
// W.I.T. workshop machines and projects.
//
// # Overview
//
// Every board is a fixed grid of cells. Entities occupy non-overlapping
// rectangles on it and are moved and resized by pointer gestures. The pkg
// directory is organized by layer:
//
//  1. [grid] - pure geometry: overlap, free slots, pixel snapping, edge zones
//  2. [gesture] - the drag and resize state machine that turns pointer
//     events into placements
//  3. [layout] - the entity store that owns placements and persists them
//  4. [storage] - key-value backends (memory, file, Redis, MongoDB)
//  5. [workshop] - machine and project payloads
//  6. [relay], [status] - the command channel and the live status monitor
//  7. [export] - text, DOT and SVG/PNG snapshots of a board
//
// # Data flow
//
//	pointer events (bubbletea mouse, HTTP PUT)
//	         ↓
//	    [gesture] Controller (threshold, snap, clamp, collision)
//	         ↓
//	    [layout] Store (validate, commit, persist)
//	         ↓
//	    [storage] Backend (JSON record under a key)
//
// # Quick Start
//
//	import (
//	    "github.com/wit-platform/witpanel/pkg/grid"
//	    "github.com/wit-platform/witpanel/pkg/layout"
//	    "github.com/wit-platform/witpanel/pkg/storage"
//	    "github.com/wit-platform/witpanel/pkg/workshop"
//	)
//
//	store, _ := layout.Open[workshop.Machine](ctx, storage.NewMemory(),
//	    "wit-machines", grid.Config{Cols: 4, Rows: 3})
//	lathe, _ := store.Add(ctx, workshop.Machine{Name: "Lathe"}, grid.Size{Width: 2, Height: 1})
//	_ = store.Move(ctx, lathe.ID, grid.Cell{X: 2, Y: 0})
//
// Errors carry a code from [errors]; use errors.Is(err, errors.ErrCodeGridFull)
// and friends to branch on them.
package pkg
