package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// projectsCommand creates the projects board command.
func (c *CLI) projectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage the projects board",
	}

	cmd.AddCommand(c.projectAddCommand())
	cmd.AddCommand(c.projectEditCommand())
	addSharedCommands(cmd, c, projectsBoard)

	return cmd
}

type projectFlags struct {
	name        string
	description string
	status      string
	priority    string
	deadline    string
	team        []string
}

func (f *projectFlags) register(cmd *cobra.Command, withName bool) {
	if withName {
		cmd.Flags().StringVar(&f.name, "name", "", "new name")
	}
	cmd.Flags().StringVar(&f.description, "description", "", "what the project is about")
	cmd.Flags().StringVar(&f.status, "status", "", "status: red, yellow or green")
	cmd.Flags().StringVar(&f.priority, "priority", "", "priority: high, medium or low")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "due date as YYYY-MM-DD; empty clears it on edit")
	cmd.Flags().StringSliceVar(&f.team, "team", nil, "team members, comma separated")
}

func (f *projectFlags) apply(cmd *cobra.Command, p *workshop.Project) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		p.Name = f.name
	}
	if changed("description") {
		p.Description = f.description
	}
	if changed("status") {
		st, err := workshop.ParseStatus(f.status)
		if err != nil {
			return err
		}
		p.Status = st
	}
	if changed("priority") {
		pr, err := workshop.ParsePriority(f.priority)
		if err != nil {
			return err
		}
		p.Priority = pr
	}
	if changed("deadline") {
		if f.deadline == "" {
			p.Deadline = nil
		} else {
			d, err := time.ParseInLocation(dateLayout, f.deadline, time.Local)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "deadline %q must be YYYY-MM-DD", f.deadline)
			}
			p.Deadline = &d
		}
	}
	if changed("team") {
		p.Team = f.team
	}
	return nil
}

func (c *CLI) projectAddCommand() *cobra.Command {
	var (
		flags projectFlags
		size  grid.Size
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project at the first free slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := workshop.Project{Name: args[0]}
			if err := flags.apply(cmd, &p); err != nil {
				return err
			}
			return withStore(cmd.Context(), c, projectsBoard, func(s *layout.Store[workshop.Project]) error {
				e, err := s.Add(cmd.Context(), p, size)
				if errors.Is(err, errors.ErrCodeGridFull) {
					printError("%s", errors.UserMessage(err))
					printNextStep("Make room", fmt.Sprintf("%s projects grid <cols> <rows>", appName))
					return err
				}
				if err != nil {
					return err
				}
				printSuccess("Added %s at %d,%d", e.Payload.Name, e.Position.X, e.Position.Y)
				printDetail("id %s", e.ID)
				return nil
			})
		},
	}

	flags.register(cmd, false)
	cmd.Flags().IntVar(&size.Width, "width", 1, "width in cells")
	cmd.Flags().IntVar(&size.Height, "height", 1, "height in cells")
	return cmd
}

func (c *CLI) projectEditCommand() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:               "edit <id>",
		Short:             "Change a project's details without moving it",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(c, projectsBoard),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), c, projectsBoard, func(s *layout.Store[workshop.Project]) error {
				id, err := resolveID(s, args[0])
				if err != nil {
					return err
				}
				e, err := s.Update(cmd.Context(), id, func(p *workshop.Project) error {
					return flags.apply(cmd, p)
				})
				if err != nil {
					return err
				}
				printSuccess("Updated %s", e.Payload.Name)
				return nil
			})
		},
	}

	flags.register(cmd, true)
	return cmd
}
