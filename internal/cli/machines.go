package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// machinesCommand creates the machines board command.
func (c *CLI) machinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "machines",
		Aliases: []string{"machine", "m"},
		Short:   "Manage the machines board",
	}

	cmd.AddCommand(c.machineAddCommand())
	cmd.AddCommand(c.machineEditCommand())
	addSharedCommands(cmd, c, machinesBoard)

	return cmd
}

type machineFlags struct {
	name    string
	kind    string
	status  string
	notes   string
	target  string
	metrics map[string]string
}

func (f *machineFlags) register(cmd *cobra.Command, withName bool) {
	if withName {
		cmd.Flags().StringVar(&f.name, "name", "", "new name")
	}
	cmd.Flags().StringVar(&f.kind, "type", "", "machine type, e.g. printer, cnc, laser")
	cmd.Flags().StringVar(&f.status, "status", "", "status: red, yellow or green")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.target, "target", "", "relay plugin or device id")
	cmd.Flags().StringToStringVar(&f.metrics, "metric", nil, "reading as key=value, repeatable")
}

// apply copies the changed flags onto m.
func (f *machineFlags) apply(cmd *cobra.Command, m *workshop.Machine) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		m.Name = f.name
	}
	if changed("type") {
		m.Type = f.kind
	}
	if changed("status") {
		st, err := workshop.ParseStatus(f.status)
		if err != nil {
			return err
		}
		m.Status = st
	}
	if changed("notes") {
		m.Notes = f.notes
	}
	if changed("target") {
		m.Target = f.target
	}
	for k, v := range f.metrics {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "metric %s=%q is not a number", k, v)
		}
		if m.Metrics == nil {
			m.Metrics = make(map[string]float64)
		}
		m.Metrics[k] = val
	}
	return nil
}

func (c *CLI) machineAddCommand() *cobra.Command {
	var (
		flags machineFlags
		size  grid.Size
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a machine at the first free slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := workshop.Machine{Name: args[0]}
			if err := flags.apply(cmd, &m); err != nil {
				return err
			}
			return withStore(cmd.Context(), c, machinesBoard, func(s *layout.Store[workshop.Machine]) error {
				e, err := s.Add(cmd.Context(), m, size)
				if errors.Is(err, errors.ErrCodeGridFull) {
					printError("%s", errors.UserMessage(err))
					printNextStep("Make room", fmt.Sprintf("%s machines grid <cols> <rows>", appName))
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

func (c *CLI) machineEditCommand() *cobra.Command {
	var flags machineFlags

	cmd := &cobra.Command{
		Use:               "edit <id>",
		Short:             "Change a machine's details without moving it",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(c, machinesBoard),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), c, machinesBoard, func(s *layout.Store[workshop.Machine]) error {
				id, err := resolveID(s, args[0])
				if err != nil {
					return err
				}
				e, err := s.Update(cmd.Context(), id, func(m *workshop.Machine) error {
					return flags.apply(cmd, m)
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
