package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/observability"
)

// ReadFile reads a layout export. Unlike [Store.Load], a file that fails to
// parse is an error.
func ReadFile[P any](path string) ([]Entity[P], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	entities, err := Unmarshal[P](data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistenceParse, err, "parse %s", path)
	}
	return entities, nil
}

// WriteFile writes entities as an indented JSON array.
func WriteFile[P any](path string, entities []Entity[P]) error {
	data, err := Marshal(entities)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// Replace swaps the whole collection, typically from an imported file.
// Entities go through the same repair as a load, growing the grid if they
// were laid out on a larger one. Entities that still fit nowhere are
// discarded. It returns how many entities were kept.
func (s *Store[P]) Replace(ctx context.Context, entities []Entity[P]) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities = cloneAll(entities)
	if err := s.growToFit(ctx, entities); err != nil {
		return 0, err
	}
	repaired, _, _ := s.repair(entities)
	prevEntities, prevHeld := s.entities, s.held
	s.entities, s.held = repaired, nil
	if err := s.persist(ctx); err != nil {
		s.entities, s.held = prevEntities, prevHeld
		return 0, err
	}
	observability.Layout().OnCommit(ctx, s.key, "replace", "")
	return len(repaired), nil
}
