// Package gesture turns pointer events into grid placements.
//
// A [Controller] owns the exclusive gesture state of one board: it is
// either idle, dragging one entity, or resizing one entity, never both.
// Hosts (the terminal board, a browser bridge, tests) dispatch pointer
// events to it:
//
//	c := gesture.NewController(store, metrics)
//	c.PointerDown(gesture.Press{EntityID: id, Pointer: p, Bounds: box})
//	c.PointerMove(p2)            // live drag position / resize preview
//	out := c.PointerUp(ctx, p3)  // commit, reject or click
//
// Moves render continuously (no snapping) and snap to a cell only on
// release. Resizes snap on every move and keep the last valid preview when
// the live candidate would overlap another entity. Rejected commits are
// silent: the entity simply re-renders at its committed placement.
//
// Hosts must call [Controller.Cancel] on teardown so no gesture outlives
// its view.
package gesture
