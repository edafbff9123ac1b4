package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/observability"
	"github.com/wit-platform/witpanel/pkg/storage"
)

// gridSuffix names the record holding a board's grid dimensions.
const gridSuffix = "-grid"

// GridKey returns the key of the record holding the grid dimensions of the
// board stored at key.
func GridKey(key string) string { return key + gridSuffix }

// Store is the persisted entity collection of one board.
// All methods are safe for concurrent use.
type Store[P any] struct {
	mu       sync.RWMutex
	backend  storage.Backend
	key      string
	cfg      grid.Config
	entities []Entity[P]
	// held are stored entities that fit nowhere on the grid. They are
	// written back after the board so no load ever loses them.
	held []Entity[P]

	logger *log.Logger
	newID  func() string
	now    func() time.Time
}

// Validator is implemented by payloads that check their own fields.
// Add and Update refuse payloads that fail validation.
type Validator interface {
	Validate() error
}

// Stamper is implemented by payload pointers that fill creation defaults
// such as the time added. Add calls Stamp before validating.
type Stamper interface {
	Stamp(now time.Time)
}

// Option configures a [Store].
type Option func(*options)

type options struct {
	logger *log.Logger
	newID  func() string
	now    func() time.Time
}

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIDFunc replaces the UUID generator used by [Store.Add].
func WithIDFunc(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithClock replaces time.Now for stamping new entities.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Open creates a store for the record at key and loads it.
// A grid stored alongside the record takes precedence over cfg.
func Open[P any](ctx context.Context, backend storage.Backend, key string, cfg grid.Config, opts ...Option) (*Store[P], error) {
	if err := errors.ValidateStorageKey(key); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: log.Default(), newID: uuid.NewString, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store[P]{
		backend: backend,
		key:     key,
		cfg:     cfg,
		logger:  o.logger.WithPrefix(key),
		newID:   o.newID,
		now:     o.now,
	}
	if err := s.loadConfig(ctx); err != nil {
		return nil, err
	}
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the persistence key.
func (s *Store[P]) Key() string { return s.key }

// Config returns the current grid dimensions.
func (s *Store[P]) Config() grid.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// =============================================================================
// Persistence
// =============================================================================

func (s *Store[P]) loadConfig(ctx context.Context) error {
	data, ok, err := s.backend.Get(ctx, GridKey(s.key))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "read grid for %s", s.key)
	}
	if !ok {
		return nil
	}
	var cfg grid.Config
	if err := json.Unmarshal(data, &cfg); err != nil || cfg.Validate() != nil {
		s.logger.Warn("ignoring unreadable grid record", "error", err)
		return nil
	}
	s.cfg = cfg
	return nil
}

// Load re-reads the record from the backend and replaces the in-memory
// collection. Unparseable records are cleared and yield an empty
// collection; only backend failures are returned.
func (s *Store[P]) Load(ctx context.Context) ([]Entity[P], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", s.key)
	}
	if !ok {
		s.entities, s.held = nil, nil
		return nil, nil
	}

	loaded, err := Unmarshal[P](data)
	if err != nil {
		perr := errors.Wrap(errors.ErrCodePersistenceParse, err, "stored layout %s is corrupt", s.key)
		s.logger.Warn("discarding corrupt layout", "error", err)
		observability.Layout().OnRecover(ctx, s.key, perr)
		s.entities, s.held = nil, nil
		if derr := s.backend.Delete(ctx, s.key); derr != nil {
			s.logger.Error("clear corrupt layout", "error", derr)
		}
		return nil, nil
	}

	if err := s.growToFit(ctx, loaded); err != nil {
		return nil, err
	}
	repaired, held, changed := s.repair(loaded)
	s.entities, s.held = repaired, held
	if len(held) > 0 {
		s.logger.Warn("holding entities that do not fit the grid", "count", len(held))
	}
	if changed {
		if err := s.persist(ctx); err != nil {
			s.logger.Error("persist repaired layout", "error", err)
		}
	}
	return cloneAll(s.entities), nil
}

// growToFit widens the grid to the extent of the stored entities, up to
// MaxDim in each direction, and persists the new grid. A board saved on a
// larger grid than the configured one keeps its layout.
func (s *Store[P]) growToFit(ctx context.Context, loaded []Entity[P]) error {
	cfg := s.cfg
	for _, e := range loaded {
		r := e.GridRect()
		if r.X < 0 || r.Y < 0 || !r.Size().Valid() {
			continue
		}
		if r.Right() <= grid.MaxDim {
			cfg.Cols = max(cfg.Cols, r.Right())
		}
		if r.Bottom() <= grid.MaxDim {
			cfg.Rows = max(cfg.Rows, r.Bottom())
		}
	}
	if cfg == s.cfg {
		return nil
	}
	s.logger.Info("grid grown to fit stored layout", "from", fmt.Sprintf("%dx%d", s.cfg.Cols, s.cfg.Rows), "cols", cfg.Cols, "rows", cfg.Rows)
	return s.writeConfig(ctx, cfg)
}

// repair enforces unique ids, bounds and non-overlap on loaded entities,
// keeping earlier entities where they are. Entities with no free slot are
// returned as held.
func (s *Store[P]) repair(loaded []Entity[P]) (out, held []Entity[P], changed bool) {
	seen := make(map[string]bool, len(loaded))
	out = make([]Entity[P], 0, len(loaded))

	for _, e := range loaded {
		if errors.ValidateEntityID(e.ID) != nil || seen[e.ID] {
			old := e.ID
			e.ID = s.newID()
			changed = true
			s.logger.Warn("reassigned entity id", "old", old, "new", e.ID)
		}
		if !e.Size.Valid() {
			e.Size = grid.Size{Width: max(e.Size.Width, 1), Height: max(e.Size.Height, 1)}
			changed = true
		}

		r := e.GridRect()
		if !s.cfg.Contains(r) || grid.IsOccupied(r, out, e.ID) {
			cell, ok := grid.FindFreeSlot(e.Size, out, s.cfg)
			if !ok {
				s.logger.Warn("no free slot for entity", "id", e.ID, "rect", r)
				seen[e.ID] = true
				held = append(held, e)
				continue
			}
			s.logger.Warn("re-slotted entity", "id", e.ID, "from", r.Cell(), "to", cell)
			e.Position = cell
			changed = true
		}

		seen[e.ID] = true
		out = append(out, e)
	}
	return out, held, changed
}

// Save writes the whole collection to the backend.
func (s *Store[P]) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persist(ctx)
}

func (s *Store[P]) persist(ctx context.Context) error {
	all := s.entities
	if len(s.held) > 0 {
		all = slices.Concat(s.entities, s.held)
	}
	data, err := Marshal(all)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", s.key)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "write %s", s.key)
	}
	return nil
}

// =============================================================================
// Reads
// =============================================================================

// Entities returns a copy of the collection in insertion order. Payloads
// implementing [Cloner] are deep copies.
func (s *Store[P]) Entities() []Entity[P] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.entities)
}

// Len returns the number of entities.
func (s *Store[P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Get returns the entity with id.
func (s *Store[P]) Get(id string) (Entity[P], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return Entity[P]{}, false
	}
	return s.entities[i].clone(), true
}

// Rect returns the committed rectangle of id.
func (s *Store[P]) Rect(id string) (grid.Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return grid.Rect{}, false
	}
	return s.entities[i].GridRect(), true
}

// Occupied reports whether r overlaps any entity other than excludeID.
func (s *Store[P]) Occupied(r grid.Rect, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return grid.IsOccupied(r, s.entities, excludeID)
}

// FreeSlot returns where an entity of size sz would be placed by Add.
func (s *Store[P]) FreeSlot(sz grid.Size) (grid.Cell, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return grid.FindFreeSlot(sz, s.entities, s.cfg)
}

func (s *Store[P]) index(id string) int {
	return slices.IndexFunc(s.entities, func(e Entity[P]) bool { return e.ID == id })
}

// =============================================================================
// Mutations
// =============================================================================

// Add places a new entity at the first free slot in row-major order.
// A zero size means 1×1. It fails with GRID_FULL when no slot fits.
func (s *Store[P]) Add(ctx context.Context, payload P, sz grid.Size) (Entity[P], error) {
	if sz == (grid.Size{}) {
		sz = grid.Unit
	}
	payload = clonePayload(payload)
	if !sz.Valid() {
		return Entity[P]{}, errors.New(errors.ErrCodeInvalidInput, "size %dx%d must be at least 1x1", sz.Width, sz.Height)
	}
	if st, ok := any(&payload).(Stamper); ok {
		st.Stamp(s.now())
	}
	if err := validate(payload); err != nil {
		return Entity[P]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := grid.FindFreeSlot(sz, s.entities, s.cfg)
	if !ok {
		observability.Layout().OnGridFull(ctx, s.key)
		return Entity[P]{}, errors.New(errors.ErrCodeGridFull,
			"no free %dx%d slot on the %dx%d grid", sz.Width, sz.Height, s.cfg.Cols, s.cfg.Rows)
	}

	e := Entity[P]{ID: s.newID(), Position: cell, Size: sz, Payload: payload}
	s.entities = append(s.entities, e)
	if err := s.persist(ctx); err != nil {
		s.entities = s.entities[:len(s.entities)-1]
		return Entity[P]{}, err
	}

	s.logger.Debug("added", "id", e.ID, "rect", e.GridRect())
	observability.Layout().OnCommit(ctx, s.key, "add", e.ID)
	return e.clone(), nil
}

// Remove deletes id. Other entities keep their positions.
func (s *Store[P]) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "no entity %q", id)
	}
	prev := s.entities
	s.entities = slices.Delete(slices.Clone(s.entities), i, i+1)
	if err := s.persist(ctx); err != nil {
		s.entities = prev
		return err
	}

	s.logger.Debug("removed", "id", id)
	observability.Layout().OnCommit(ctx, s.key, "remove", id)
	return nil
}

// Update edits a copy of the payload of id and commits it once fn and
// validation succeed. Placement is unaffected. If fn returns an error
// nothing is changed, including maps and slices fn wrote to.
func (s *Store[P]) Update(ctx context.Context, id string, fn func(*P) error) (Entity[P], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return Entity[P]{}, errors.New(errors.ErrCodeNotFound, "no entity %q", id)
	}
	e := s.entities[i].clone()
	if err := fn(&e.Payload); err != nil {
		return Entity[P]{}, err
	}
	if err := validate(e.Payload); err != nil {
		return Entity[P]{}, err
	}

	prev := s.entities[i]
	s.entities[i] = e
	if err := s.persist(ctx); err != nil {
		s.entities[i] = prev
		return Entity[P]{}, err
	}

	observability.Layout().OnCommit(ctx, s.key, "update", id)
	return e.clone(), nil
}

// Move commits a new top-left cell for id. Moving to the current cell is
// a no-op and does not write.
func (s *Store[P]) Move(ctx context.Context, id string, to grid.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "no entity %q", id)
	}
	cur := s.entities[i]
	if cur.Position == to {
		return nil
	}
	return s.place(ctx, i, "move", grid.RectOf(to, cur.Size))
}

// Resize commits a new rectangle for id. Resizing to the current
// rectangle is a no-op and does not write.
func (s *Store[P]) Resize(ctx context.Context, id string, r grid.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "no entity %q", id)
	}
	if s.entities[i].GridRect() == r {
		return nil
	}
	if !r.Size().Valid() {
		return s.reject(ctx, "resize", id, errors.New(errors.ErrCodeInvalidPlacement, "size %dx%d must be at least 1x1", r.Width, r.Height))
	}
	return s.place(ctx, i, "resize", r)
}

// place validates r for entity i and commits it. Callers hold s.mu.
func (s *Store[P]) place(ctx context.Context, i int, op string, r grid.Rect) error {
	id := s.entities[i].ID
	if !s.cfg.Contains(r) {
		return s.reject(ctx, op, id, errors.New(errors.ErrCodeInvalidPlacement,
			"%s is outside the %dx%d grid", r, s.cfg.Cols, s.cfg.Rows))
	}
	if grid.IsOccupied(r, s.entities, id) {
		return s.reject(ctx, op, id, errors.New(errors.ErrCodeInvalidPlacement, "%s overlaps another entity", r))
	}

	prev := s.entities[i]
	s.entities[i].Position = r.Cell()
	s.entities[i].Size = r.Size()
	if err := s.persist(ctx); err != nil {
		s.entities[i] = prev
		return err
	}

	s.logger.Debug("placed", "op", op, "id", id, "rect", r)
	observability.Layout().OnCommit(ctx, s.key, op, id)
	return nil
}

func validate[P any](payload P) error {
	v, ok := any(payload).(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		if errors.GetCode(err) == "" {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid payload")
		}
		return err
	}
	return nil
}

func (s *Store[P]) reject(ctx context.Context, op, id string, err error) error {
	s.logger.Debug("placement rejected", "op", op, "id", id, "reason", err)
	observability.Layout().OnReject(ctx, s.key, op, id, err)
	return err
}

// SetConfig changes the grid dimensions and persists them. A grid that
// would cut off a placed entity is refused.
func (s *Store[P]) SetConfig(ctx context.Context, cfg grid.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entities {
		if !cfg.Contains(e.GridRect()) {
			return errors.New(errors.ErrCodeInvalidConfig,
				"%dx%d grid would cut off %s at %s", cfg.Cols, cfg.Rows, e.ID, e.GridRect())
		}
	}

	if err := s.writeConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("grid resized", "cols", cfg.Cols, "rows", cfg.Rows)
	return nil
}

// writeConfig persists cfg as the grid record and adopts it. Callers hold
// s.mu.
func (s *Store[P]) writeConfig(ctx context.Context, cfg grid.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode grid")
	}
	if err := s.backend.Set(ctx, GridKey(s.key), data); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "write grid for %s", s.key)
	}
	s.cfg = cfg
	return nil
}

// Clear removes every entity and the stored record.
func (s *Store[P]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "clear %s", s.key)
	}
	s.entities, s.held = nil, nil
	return nil
}
