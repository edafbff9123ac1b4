package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/export"
	"github.com/wit-platform/witpanel/pkg/gesture"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// boardCommand creates the interactive board command.
func (c *CLI) boardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board [machines|projects]",
		Short: "Arrange a board with the mouse",
		Long: `Board draws the grid in the terminal. Drag a tile to move it; drag its
border or a corner to resize it. Moves that would overlap another tile snap
back, and resizes stop at the last size that fits.

Keys: tab selects the next tile, arrows move the selected tile, r reloads
from storage, esc cancels a gesture, q quits.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(workshop.KindMachines), string(workshop.KindProjects)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := workshop.KindMachines
			if len(args) == 1 {
				k, err := workshop.ParseKind(args[0])
				if err != nil {
					return err
				}
				kind = k
			}
			if kind == workshop.KindProjects {
				return runBoard(cmd.Context(), c, projectsBoard)
			}
			return runBoard(cmd.Context(), c, machinesBoard)
		},
	}
	return cmd
}

func runBoard[P layout.Attributes](ctx context.Context, c *CLI, def boardDef[P]) error {
	return withStore(ctx, c, def, func(s *layout.Store[P]) error {
		m := newBoardModel(ctx, s, def.title, c)
		_, err := tea.NewProgram(m,
			tea.WithAltScreen(),
			tea.WithMouseAllMotion(),
			tea.WithContext(ctx),
		).Run()
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
}

// =============================================================================
// boardModel - Interactive drag and resize
// =============================================================================

const (
	// boardTop is the number of header lines above the grid.
	boardTop = 2

	minCellWidth  = 8
	maxCellWidth  = 28
	minCellHeight = 3
	maxCellHeight = 8
)

var (
	boardHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
	boardInfoStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// boardModel is the bubbletea model for the interactive board. Terminal
// character cells stand in for pixels: mouse events drive a
// gesture.Controller exactly as pointer events would.
type boardModel[P layout.Attributes] struct {
	ctx   context.Context
	store *layout.Store[P]
	ctrl  *gesture.Controller
	title string

	// fixed cell size from config; zero fits the terminal
	fixedW, fixedH int
	cellW, cellH   int

	selected string
	message  string
	msgStyle lipgloss.Style
}

func newBoardModel[P layout.Attributes](ctx context.Context, s *layout.Store[P], title string, c *CLI) *boardModel[P] {
	m := &boardModel[P]{
		ctx:      ctx,
		store:    s,
		title:    title,
		fixedW:   c.cfg.Board.CellWidth,
		fixedH:   c.cfg.Board.CellHeight,
		cellW:    16,
		cellH:    4,
		msgStyle: boardInfoStyle,
	}
	if m.fixedW > 0 {
		m.cellW = max(m.fixedW, minCellWidth)
	}
	if m.fixedH > 0 {
		m.cellH = max(m.fixedH, minCellHeight)
	}

	edge := c.cfg.Board.EdgeThreshold
	if edge <= 0 {
		edge = 0.5
	}
	m.ctrl = gesture.NewController(s, m.metrics(),
		gesture.WithLogger(c.Logger),
		gesture.WithEdgeThreshold(edge),
		gesture.WithBoardName(s.Key()),
	)
	if es := s.Entities(); len(es) > 0 {
		m.selected = es[0].ID
	}
	return m
}

// metrics maps one character to one pixel. Tiles are drawn edge to edge,
// so there is no gap.
func (m *boardModel[P]) metrics() grid.Metrics {
	return grid.FixedMetrics(m.store.Config(), float64(m.cellW), float64(m.cellH), 0)
}

func (m *boardModel[P]) Init() tea.Cmd {
	return nil
}

func (m *boardModel[P]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.fit(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

// fit sizes cells to the terminal unless the config fixes them.
func (m *boardModel[P]) fit(width, height int) {
	cfg := m.store.Config()
	if m.fixedW == 0 {
		m.cellW = min(max(width/cfg.Cols, minCellWidth), maxCellWidth)
	}
	if m.fixedH == 0 {
		m.cellH = min(max((height-boardTop-2)/cfg.Rows, minCellHeight), maxCellHeight)
	}
	m.ctrl.SetMetrics(m.metrics())
}

func (m *boardModel[P]) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Cancel()
		return tea.Quit
	case "esc":
		if m.ctrl.Active() {
			m.ctrl.Cancel()
			m.info("cancelled")
		}
	case "tab":
		m.selectNext()
	case "r":
		if _, err := m.store.Load(m.ctx); err != nil {
			m.fail(err)
			return nil
		}
		m.ctrl.SetMetrics(m.metrics())
		m.info("reloaded")
	case "up":
		m.nudge(0, -1)
	case "down":
		m.nudge(0, 1)
	case "left":
		m.nudge(-1, 0)
	case "right":
		m.nudge(1, 0)
	}
	return nil
}

func (m *boardModel[P]) selectNext() {
	es := m.store.Entities()
	if len(es) == 0 {
		return
	}
	next := 0
	for i, e := range es {
		if e.ID == m.selected {
			next = (i + 1) % len(es)
			break
		}
	}
	m.selected = es[next].ID
	m.info(es[next].Payload.Label())
}

// nudge moves the selected tile one cell, as a keyboard alternative to
// dragging.
func (m *boardModel[P]) nudge(dx, dy int) {
	if m.ctrl.Active() {
		return
	}
	r, ok := m.store.Rect(m.selected)
	if !ok {
		return
	}
	to := grid.Cell{X: r.X + dx, Y: r.Y + dy}
	if err := m.store.Move(m.ctx, m.selected, to); err != nil {
		m.fail(err)
		return
	}
	m.info(fmt.Sprintf("moved to %d,%d", to.X, to.Y))
}

// pointer converts a terminal cell to board pixels, using the center of the
// character.
func pointer(msg tea.MouseMsg) grid.Point {
	return grid.Point{X: float64(msg.X) + 0.5, Y: float64(msg.Y-boardTop) + 0.5}
}

func (m *boardModel[P]) handleMouse(msg tea.MouseMsg) {
	p := pointer(msg)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		id, ok := m.hit(p)
		if !ok {
			return
		}
		m.selected = id
		m.ctrl.PointerDown(gesture.Press{EntityID: id, Pointer: p})

	case tea.MouseActionMotion:
		if m.ctrl.Active() {
			m.ctrl.PointerMove(p)
		}

	case tea.MouseActionRelease:
		if !m.ctrl.Active() {
			return
		}
		m.report(m.ctrl.PointerUp(m.ctx, p))
	}
}

// hit returns the tile under p, preferring later tiles.
func (m *boardModel[P]) hit(p grid.Point) (string, bool) {
	metrics := m.ctrl.Metrics()
	es := m.store.Entities()
	for i := len(es) - 1; i >= 0; i-- {
		if metrics.PixelRect(es[i].GridRect()).Contains(p) {
			return es[i].ID, true
		}
	}
	return "", false
}

func (m *boardModel[P]) report(out gesture.Outcome) {
	label := out.EntityID
	if e, ok := m.store.Get(out.EntityID); ok {
		label = e.Payload.Label()
	}

	switch out.Kind {
	case gesture.Click:
		m.info(m.describe(out.EntityID))
	case gesture.Committed:
		verb := "moved"
		if out.Phase == gesture.Resizing {
			verb = "resized"
		}
		m.message = fmt.Sprintf("%s %s to %s", verb, label, out.Rect)
		m.msgStyle = StyleSuccess
	case gesture.Rejected:
		if out.Err != nil {
			m.fail(out.Err)
			return
		}
		m.message = fmt.Sprintf("%s snapped back", label)
		m.msgStyle = StyleWarning
	}
}

func (m *boardModel[P]) describe(id string) string {
	e, ok := m.store.Get(id)
	if !ok {
		return ""
	}
	parts := []string{e.Payload.Label(), e.Payload.StatusName()}
	if pr := e.Payload.PriorityName(); pr != "" {
		parts = append(parts, pr+" priority")
	}
	if d, ok := e.Payload.Due(); ok {
		parts = append(parts, "due "+d.Format(dateLayout))
	}
	parts = append(parts, e.GridRect().String())
	return strings.Join(parts, " · ")
}

func (m *boardModel[P]) info(msg string) {
	m.message = msg
	m.msgStyle = boardInfoStyle
}

func (m *boardModel[P]) fail(err error) {
	m.message = errors.UserMessage(err)
	m.msgStyle = StyleError
}

// tiles returns what to draw: committed placements, the live resize
// preview, and the dragged tile at the cell it would snap to.
func (m *boardModel[P]) tiles() []export.Tile {
	tiles := export.Tiles(m.store.Entities())
	st := m.ctrl.State()
	metrics := m.ctrl.Metrics()

	for i := range tiles {
		if tiles[i].ID != st.EntityID {
			continue
		}
		switch st.Phase {
		case gesture.Resizing:
			tiles[i].Rect = st.Preview
		case gesture.Dragging:
			if st.Moved {
				cell := metrics.ClampCell(metrics.Snap(st.Live), st.Start.Size())
				tiles[i].Rect = grid.RectOf(cell, st.Start.Size())
			}
		}
	}
	return tiles
}

func (m *boardModel[P]) View() string {
	var b strings.Builder
	cfg := m.store.Config()
	st := m.ctrl.State()

	header := StyleTitle.Render(m.title) + " " +
		StyleDim.Render(fmt.Sprintf("%dx%d · %d tiles", cfg.Cols, cfg.Rows, m.store.Len()))
	if st.Phase != gesture.Idle {
		header += " " + StyleHighlight.Render(st.Phase.String())
		if st.Phase == gesture.Resizing && st.Blocked {
			header += " " + StyleWarning.Render("blocked")
		}
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(boardHelpStyle.Render("drag to move · drag border to resize · tab select · arrows nudge · r reload · q quit"))
	b.WriteString("\n")

	highlight := m.selected
	if st.Phase != gesture.Idle {
		highlight = st.EntityID
	}
	b.WriteString(export.Text(cfg, m.tiles(), export.TextOptions{
		CellWidth:  m.cellW,
		CellHeight: m.cellH,
		Highlight:  highlight,
	}))
	b.WriteString("\n\n")
	b.WriteString(m.msgStyle.Render(m.message))

	return b.String()
}
