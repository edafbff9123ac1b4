package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/export"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// boardDef describes one board to the shared subcommands.
type boardDef[P layout.Attributes] struct {
	kind  workshop.Kind
	title string
	store func(*boards) *layout.Store[P]
	// projects carry a priority and a deadline.
	priority bool
}

var (
	machinesBoard = boardDef[workshop.Machine]{
		kind:  workshop.KindMachines,
		title: "Machines",
		store: func(b *boards) *layout.Store[workshop.Machine] { return b.machines },
	}
	projectsBoard = boardDef[workshop.Project]{
		kind:     workshop.KindProjects,
		title:    "Projects",
		store:    func(b *boards) *layout.Store[workshop.Project] { return b.projects },
		priority: true,
	}
)

// withStore opens the boards, runs fn on the store def selects and closes the
// backend, flushing pending writes.
func withStore[P layout.Attributes](ctx context.Context, c *CLI, def boardDef[P], fn func(*layout.Store[P]) error) (err error) {
	b, err := c.openBoards(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(def.store(b))
}

// addSharedCommands registers the subcommands both boards support.
// Subcommands taking an id complete it from storage.
func addSharedCommands[P layout.Attributes](cmd *cobra.Command, c *CLI, def boardDef[P]) {
	cmd.AddCommand(listCommand(c, def))
	cmd.AddCommand(gridCommand(c, def))
	for _, sub := range []*cobra.Command{
		showCommand(c, def),
		removeCommand(c, def),
		moveCommand(c, def),
		resizeCommand(c, def),
	} {
		sub.ValidArgsFunction = completeIDs(c, def)
		cmd.AddCommand(sub)
	}
}

// =============================================================================
// list
// =============================================================================

type listOpts struct {
	status   string
	priority string
	sort     string
	page     int
	pageSize int
	board    bool
}

func listCommand[P layout.Attributes](c *CLI, def boardDef[P]) *cobra.Command {
	var opts listOpts

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List %s", def.kind),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sortKey, err := layout.ParseSortKey(opts.sort)
			if err != nil {
				return err
			}
			if opts.status != "" {
				if _, err := workshop.ParseStatus(opts.status); err != nil {
					return err
				}
			}
			if opts.priority != "" {
				if _, err := workshop.ParsePriority(opts.priority); err != nil {
					return err
				}
			}

			return withStore(cmd.Context(), c, def, func(s *layout.Store[P]) error {
				if opts.board {
					fmt.Println(export.Text(s.Config(), export.Tiles(s.Entities()), export.TextOptions{}))
					return nil
				}

				page := layout.Query(s.Entities(), layout.Params{
					Status:   opts.status,
					Priority: opts.priority,
					Sort:     sortKey,
					Page:     opts.page,
					PageSize: opts.pageSize,
				}, s.Config())

				if page.Total == 0 {
					printInfo("No %s", def.kind)
					printNextStep("Add one", fmt.Sprintf("%s %s add <name>", appName, def.kind))
					return nil
				}
				fmt.Println(renderTable(listHeaders(def.priority), listRows(page, def.priority)))
				printDetail("%s", page)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", "", "only show this status (red, yellow, green)")
	if def.priority {
		cmd.Flags().StringVar(&opts.priority, "priority", "", "only show this priority (high, medium, low)")
	}
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort by name, status, priority, added or deadline")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "entities per page (default cols×rows)")
	cmd.Flags().BoolVar(&opts.board, "board", false, "draw the board instead of a table")

	return cmd
}

func listHeaders(priority bool) []string {
	if priority {
		return []string{"ID", "Name", "Status", "Priority", "Deadline", "Position", "Size"}
	}
	return []string{"ID", "Name", "Status", "Position", "Size"}
}

func listRows[P layout.Attributes](page layout.Page[P], priority bool) [][]string {
	rows := make([][]string, 0, len(page.Items))
	for _, e := range page.Items {
		row := []string{shortID(e.ID), e.Payload.Label(), renderStatus(e.Payload.StatusName())}
		if priority {
			due := "—"
			if d, ok := e.Payload.Due(); ok {
				due = d.Format(dateLayout)
			}
			row = append(row, e.Payload.PriorityName(), due)
		}
		row = append(row,
			fmt.Sprintf("%d,%d", e.Position.X, e.Position.Y),
			fmt.Sprintf("%dx%d", e.Size.Width, e.Size.Height))
		rows = append(rows, row)
	}
	return rows
}

// =============================================================================
// show
// =============================================================================

func showCommand[P layout.Attributes](c *CLI, def boardDef[P]) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), c, def, func(s *layout.Store[P]) error {
				id, err := resolveID(s, args[0])
				if err != nil {
					return err
				}
				e, _ := s.Get(id)

				if asJSON {
					data, err := json.MarshalIndent(e, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					return nil
				}

				fmt.Println(StyleTitle.Render(e.Payload.Label()))
				printKeyValue("ID", e.ID)
				printKeyValue("Status", renderStatus(e.Payload.StatusName()))
				if def.priority {
					printKeyValue("Priority", e.Payload.PriorityName())
					if d, ok := e.Payload.Due(); ok {
						printKeyValue("Deadline", d.Format(dateLayout))
					}
				}
				printKeyValue("Position", fmt.Sprintf("%d,%d", e.Position.X, e.Position.Y))
				printKeyValue("Size", fmt.Sprintf("%dx%d", e.Size.Width, e.Size.Height))
				if added := e.Payload.Added(); !added.IsZero() {
					printKeyValue("Added", added.Local().Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored record")
	return cmd
}

// =============================================================================
// rm, move, resize
// =============================================================================

func removeCommand[P layout.Attributes](c *CLI, def boardDef[P]) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove an entity; the others keep their places",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), c, def, func(s *layout.Store[P]) error {
				id, err := resolveID(s, args[0])
				if err != nil {
					return err
				}
				e, _ := s.Get(id)
				if err := s.Remove(cmd.Context(), id); err != nil {
					return err
				}
				printSuccess("Removed %s", e.Payload.Label())
				return nil
			})
		},
	}
}

func moveCommand[P layout.Attributes](c *CLI, def boardDef[P]) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Move an entity's top-left corner to a cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePair(args[1], args[2])
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), c, def, func(s *layout.Store[P]) error {
				id, err := resolveID(s, args[0])
				if err != nil {
					return err
				}
				if err := s.Move(cmd.Context(), id, grid.Cell{X: x, Y: y}); err != nil {
					return err
				}
				printSuccess("Moved %s to %d,%d", shortID(id), x, y)
				return nil
			})
		},
	}
}

func resizeCommand[P layout.Attributes](c *CLI, def boardDef[P]) *cobra.Command {
	var x, y int

	cmd := &cobra.Command{
		Use:   "resize <id> <width> <height>",
		Short: "Resize an entity, keeping its top-left corner unless --x/--y are given",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, err := parsePair(args[1], args[2])
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), c, def, func(s *layout.Store[P]) error {
				id, err := resolveID(s, args[0])
				if err != nil {
					return err
				}
				r, _ := s.Rect(id)
				r.Width, r.Height = w, h
				if cmd.Flags().Changed("x") {
					r.X = x
				}
				if cmd.Flags().Changed("y") {
					r.Y = y
				}
				if err := s.Resize(cmd.Context(), id, r); err != nil {
					return err
				}
				printSuccess("Resized %s to %s", shortID(id), r)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&x, "x", 0, "new left column")
	cmd.Flags().IntVar(&y, "y", 0, "new top row")
	return cmd
}

// =============================================================================
// grid
// =============================================================================

func gridCommand[P layout.Attributes](c *CLI, def boardDef[P]) *cobra.Command {
	return &cobra.Command{
		Use:   "grid [cols rows]",
		Short: "Show or change the board's grid dimensions",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <cols> <rows>, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), c, def, func(s *layout.Store[P]) error {
				if len(args) == 0 {
					cfg := s.Config()
					printKeyValue("Columns", strconv.Itoa(cfg.Cols))
					printKeyValue("Rows", strconv.Itoa(cfg.Rows))
					printKeyValue("Entities", strconv.Itoa(s.Len()))
					return nil
				}
				cols, rows, err := parsePair(args[0], args[1])
				if err != nil {
					return err
				}
				if err := s.SetConfig(cmd.Context(), grid.Config{Cols: cols, Rows: rows}); err != nil {
					return err
				}
				printSuccess("%s grid is now %dx%d", def.title, cols, rows)
				return nil
			})
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

const dateLayout = "2006-01-02"

// shortID abbreviates a UUID for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID accepts a full id or a unique prefix of one.
func resolveID[P any](s *layout.Store[P], arg string) (string, error) {
	if _, ok := s.Get(arg); ok {
		return arg, nil
	}
	var match string
	for _, e := range s.Entities() {
		if arg != "" && strings.HasPrefix(e.ID, arg) {
			if match != "" {
				return "", errors.New(errors.ErrCodeInvalidInput, "id prefix %q is ambiguous", arg)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", errors.New(errors.ErrCodeNotFound, "no entity %q", arg)
	}
	return match, nil
}

func parsePair(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "%q is not an integer", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "%q is not an integer", b)
	}
	return x, y, nil
}
