package layout

import (
	"encoding/json"
	"fmt"

	"github.com/wit-platform/witpanel/pkg/grid"
)

// Entity is a placed item on a board.
type Entity[P any] struct {
	ID       string
	Position grid.Cell
	Size     grid.Size
	Payload  P
}

// GridID implements [grid.Placed].
func (e Entity[P]) GridID() string { return e.ID }

// GridRect implements [grid.Placed].
func (e Entity[P]) GridRect() grid.Rect { return grid.RectOf(e.Position, e.Size) }

// Cloner is implemented by payloads that hold maps, slices or pointers.
// The store edits and hands out clones, so callers never share its memory.
// Payloads without Clone are copied by value.
type Cloner[P any] interface {
	Clone() P
}

func clonePayload[P any](p P) P {
	if c, ok := any(p).(Cloner[P]); ok {
		return c.Clone()
	}
	return p
}

func (e Entity[P]) clone() Entity[P] {
	e.Payload = clonePayload(e.Payload)
	return e
}

func cloneAll[P any](entities []Entity[P]) []Entity[P] {
	if entities == nil {
		return nil
	}
	out := make([]Entity[P], len(entities))
	for i, e := range entities {
		out[i] = e.clone()
	}
	return out
}

// reserved keys always come from the entity, never the payload.
const (
	keyID       = "id"
	keyPosition = "position"
	keySize     = "size"
)

// MarshalJSON writes the flat persistence record.
func (e Entity[P]) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage)

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload of %s: %w", e.ID, err)
	}
	if string(payload) != "null" {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fmt.Errorf("payload of %s must encode as a JSON object: %w", e.ID, err)
		}
	}

	if fields[keyID], err = json.Marshal(e.ID); err != nil {
		return nil, err
	}
	if fields[keyPosition], err = json.Marshal(e.Position); err != nil {
		return nil, err
	}
	if fields[keySize], err = json.Marshal(e.Size); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads the flat persistence record. Records missing a
// position or size decode with zero values; the store repairs them on load.
func (e *Entity[P]) UnmarshalJSON(data []byte) error {
	var head struct {
		ID       string     `json:"id"`
		Position *grid.Cell `json:"position"`
		Size     *grid.Size `json:"size"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	var payload P
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("payload of %s: %w", head.ID, err)
	}

	*e = Entity[P]{ID: head.ID, Payload: payload}
	if head.Position != nil {
		e.Position = *head.Position
	}
	if head.Size != nil {
		e.Size = *head.Size
	}
	return nil
}

// Marshal encodes a collection as the persisted JSON array.
func Marshal[P any](entities []Entity[P]) ([]byte, error) {
	if entities == nil {
		entities = []Entity[P]{}
	}
	return json.Marshal(entities)
}

// Unmarshal decodes a persisted JSON array. An empty record is an empty
// collection.
func Unmarshal[P any](data []byte) ([]Entity[P], error) {
	if len(data) == 0 {
		return nil, nil
	}
	var entities []Entity[P]
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}
