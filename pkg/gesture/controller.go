package gesture

import (
	"context"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/observability"
)

// DragThreshold is the pointer travel in pixels, on either axis, before a
// press becomes a drag. Shorter presses are reported as clicks.
const DragThreshold = 5.0

// Phase is the exclusive gesture state.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Resizing
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Board is the read side of a layout the controller validates against.
type Board interface {
	Rect(id string) (grid.Rect, bool)
	Occupied(r grid.Rect, excludeID string) bool
}

// Target is a board that also accepts commits.
type Target interface {
	Board
	Move(ctx context.Context, id string, to grid.Cell) error
	Resize(ctx context.Context, id string, r grid.Rect) error
}

// Press is a pointer-down on an entity.
type Press struct {
	EntityID string
	Pointer  grid.Point
	// Bounds is the entity's rendered box. When zero, the controller
	// derives it from the committed rectangle and its metrics.
	Bounds grid.PixelRect
	// Interactive marks a press on a button or other child control,
	// which never starts a gesture.
	Interactive bool
}

// Kind classifies the result of a released gesture.
type Kind int

const (
	// NoChange means nothing happened (no gesture, or a resize back to start).
	NoChange Kind = iota
	// Click means the press never travelled past DragThreshold.
	Click
	// Committed means the new placement was stored.
	Committed
	// Rejected means the placement was refused and the entity snaps back.
	Rejected
)

func (k Kind) String() string {
	switch k {
	case Click:
		return "click"
	case Committed:
		return "committed"
	case Rejected:
		return "rejected"
	default:
		return "none"
	}
}

// Outcome is the result of [Controller.PointerUp].
type Outcome struct {
	Kind     Kind
	Phase    Phase
	EntityID string
	Rect     grid.Rect
	Err      error
}

// State is a snapshot of the active gesture for rendering.
type State struct {
	Phase    Phase
	EntityID string

	// Dragging
	Offset grid.Point // pointer minus the entity's top-left at press time
	Live   grid.Point // unsnapped top-left following the pointer
	Moved  bool       // travelled past DragThreshold

	// Resizing
	Direction grid.Direction
	Start     grid.Rect
	Preview   grid.Rect // last valid candidate
	Blocked   bool      // the latest candidate overlapped and was not shown

	press grid.Point
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for gesture tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithEdgeThreshold sets the width of the resize zones in pixels.
func WithEdgeThreshold(px float64) Option {
	return func(c *Controller) { c.edge = px }
}

// WithBoardName labels hook events.
func WithBoardName(name string) Option {
	return func(c *Controller) { c.board = name }
}

// Controller tracks at most one drag or resize on a board.
// It is safe for use from multiple goroutines; hosts normally call it from
// a single event loop.
type Controller struct {
	mu      sync.Mutex
	target  Target
	metrics grid.Metrics
	edge    float64
	board   string
	logger  *log.Logger
	state   State
}

// NewController creates an idle controller.
func NewController(target Target, m grid.Metrics, opts ...Option) *Controller {
	c := &Controller{
		target:  target,
		metrics: m,
		edge:    grid.DefaultEdgeThreshold,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetMetrics replaces the pixel metrics after a container or board resize.
func (c *Controller) SetMetrics(m grid.Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// Metrics returns the current pixel metrics.
func (c *Controller) Metrics() grid.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// State returns a copy of the gesture state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool {
	return c.State().Phase != Idle
}

// PointerDown starts a drag or resize and returns the resulting phase.
// A press while another gesture is active is ignored.
func (c *Controller) PointerDown(p Press) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != Idle {
		return c.state.Phase
	}
	if p.Interactive {
		return Idle
	}
	r, ok := c.target.Rect(p.EntityID)
	if !ok {
		return Idle
	}

	bounds := p.Bounds
	if bounds == (grid.PixelRect{}) {
		bounds = c.metrics.PixelRect(r)
	}

	if dir := grid.ClassifyEdgeZone(p.Pointer, bounds, c.edge); dir != grid.None {
		c.state = State{
			Phase:     Resizing,
			EntityID:  p.EntityID,
			Direction: dir,
			Start:     r,
			Preview:   r,
			press:     p.Pointer,
		}
		c.logger.Debug("resize started", "id", p.EntityID, "direction", dir, "rect", r)
		return Resizing
	}

	c.state = State{
		Phase:    Dragging,
		EntityID: p.EntityID,
		Offset:   p.Pointer.Sub(bounds.Origin()),
		Live:     bounds.Origin(),
		Start:    r,
		press:    p.Pointer,
	}
	c.logger.Debug("drag started", "id", p.EntityID, "rect", r)
	return Dragging
}

// PointerMove updates the active gesture and returns the new state.
func (c *Controller) PointerMove(p grid.Point) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.update(p)
	return c.state
}

func (c *Controller) update(p grid.Point) {
	switch c.state.Phase {
	case Dragging:
		c.state.Live = p.Sub(c.state.Offset)
		d := p.Sub(c.state.press)
		if math.Abs(d.X) >= DragThreshold || math.Abs(d.Y) >= DragThreshold {
			c.state.Moved = true
		}

	case Resizing:
		d := p.Sub(c.state.press)
		dx := grid.PixelToCell(d.X, c.metrics.CellWidth, c.metrics.Gap)
		dy := grid.PixelToCell(d.Y, c.metrics.CellHeight, c.metrics.Gap)
		cand := ResizeRect(c.state.Start, c.state.Direction, dx, dy, c.metrics.Config)
		if c.metrics.Contains(cand) && !c.target.Occupied(cand, c.state.EntityID) {
			c.state.Preview = cand
			c.state.Blocked = false
		} else {
			c.state.Blocked = true
		}
	}
}

// PointerUp finishes the active gesture at p. The controller is idle
// afterwards whatever the outcome.
func (c *Controller) PointerUp(ctx context.Context, p grid.Point) Outcome {
	c.mu.Lock()
	c.update(p)
	st := c.state
	m := c.metrics
	c.state = State{}
	c.mu.Unlock()

	switch st.Phase {
	case Dragging:
		return c.finishDrag(ctx, st, m)
	case Resizing:
		return c.finishResize(ctx, st)
	}
	return Outcome{}
}

func (c *Controller) finishDrag(ctx context.Context, st State, m grid.Metrics) Outcome {
	out := Outcome{Phase: Dragging, EntityID: st.EntityID, Rect: st.Start}
	if !st.Moved {
		out.Kind = Click
		return out
	}

	cell := m.ClampCell(m.Snap(st.Live), st.Start.Size())
	cand := grid.RectOf(cell, st.Start.Size())
	if cand == st.Start {
		out.Kind = NoChange
		return out
	}
	if c.target.Occupied(cand, st.EntityID) {
		out.Kind = Rejected
		observability.Layout().OnReject(ctx, c.board, "move", st.EntityID, nil)
		c.logger.Debug("drag rejected", "id", st.EntityID, "candidate", cand)
		return out
	}
	if err := c.target.Move(ctx, st.EntityID, cell); err != nil {
		out.Kind = Rejected
		out.Err = err
		c.logger.Debug("drag commit failed", "id", st.EntityID, "err", err)
		return out
	}

	out.Kind = Committed
	out.Rect = cand
	return out
}

func (c *Controller) finishResize(ctx context.Context, st State) Outcome {
	out := Outcome{Phase: Resizing, EntityID: st.EntityID, Rect: st.Start}
	if st.Preview == st.Start {
		if st.Blocked {
			out.Kind = Rejected
			observability.Layout().OnReject(ctx, c.board, "resize", st.EntityID, nil)
		}
		return out
	}
	if err := c.target.Resize(ctx, st.EntityID, st.Preview); err != nil {
		out.Kind = Rejected
		out.Err = err
		c.logger.Debug("resize commit failed", "id", st.EntityID, "err", err)
		return out
	}

	out.Kind = Committed
	out.Rect = st.Preview
	return out
}

// Cancel abandons the active gesture without committing. Hosts call it on
// teardown and when the pointer leaves the window.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != Idle {
		c.logger.Debug("gesture cancelled", "id", c.state.EntityID, "phase", c.state.Phase)
	}
	c.state = State{}
}

// Display returns the rectangle to render for id: the live preview while
// a resize is active, otherwise the committed placement.
func (c *Controller) Display(id string) (grid.Rect, bool) {
	st := c.State()
	if st.Phase == Resizing && st.EntityID == id {
		return st.Preview, true
	}
	return c.target.Rect(id)
}
