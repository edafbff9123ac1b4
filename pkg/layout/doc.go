// Package layout holds the ordered collection of placed entities for one
// board and keeps it persisted.
//
// A [Store] is generic over the entity payload, so machines and projects
// share one implementation. Every mutation validates the no-overlap and
// bounds invariants against the full collection before it is applied, then
// writes the whole collection back to a [storage.Backend] as a JSON array:
//
//	[{"id":"...","position":{"x":0,"y":0},"size":{"width":1,"height":1},"name":"Prusa MK4",...}]
//
// Payload fields are flattened next to id, position and size.
//
// # Loading
//
// [Open] reads the record once. A record that fails to parse is logged,
// cleared, and replaced by an empty collection. If the stored entities
// extend past the configured grid, the grid grows to contain them (up to
// MaxDim) and the new size is saved. Entities that are still out of bounds
// or overlap an earlier entity are moved to the first free slot. Any left
// without a slot are held off the board and written back with it, so a
// load never loses data.
//
// Reads hand out copies. Payloads holding maps, slices or pointers
// implement [Cloner] so callers never alias the store's memory.
//
// # Views
//
// [Query] derives filtered, sorted and paginated views without touching
// the store. Pagination only affects what a view lists; occupancy is always
// checked against every entity on the board.
package layout
