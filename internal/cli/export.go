package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/export"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// Export formats.
const (
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPNG  = "png"
	formatJSON = "json"
)

var exportFormats = []string{formatText, formatDOT, formatSVG, formatPNG, formatJSON}

type exportOpts struct {
	format string
	output string
	plain  bool
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <machines|projects>",
		Short: "Snapshot a board as text, DOT, SVG, PNG or a JSON layout file",
		Example: `  witpanel export machines
  witpanel export projects -f svg -o projects.svg
  witpanel export machines -f json -o machines.json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(workshop.KindMachines), string(workshop.KindProjects)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := workshop.ParseKind(args[0])
			if err != nil {
				return err
			}
			opts.format = strings.ToLower(opts.format)
			if !slices.Contains(exportFormats, opts.format) {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want %s)", opts.format, strings.Join(exportFormats, ", "))
			}
			if (opts.format == formatPNG || opts.format == formatSVG) && opts.output == "" {
				return errors.New(errors.ErrCodeInvalidInput, "%s output needs -o <file>", opts.format)
			}

			if kind == workshop.KindProjects {
				return exportBoard(cmd.Context(), c, projectsBoard, opts)
			}
			return exportBoard(cmd.Context(), c, machinesBoard, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "text format without colors")
	return cmd
}

func exportBoard[P layout.Attributes](ctx context.Context, c *CLI, def boardDef[P], opts exportOpts) error {
	return withStore(ctx, c, def, func(s *layout.Store[P]) error {
		entities := s.Entities()

		if opts.format == formatJSON {
			if opts.output == "" {
				data, err := layout.Marshal(entities)
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := json.Indent(&buf, data, "", "  "); err != nil {
					return err
				}
				buf.WriteByte('\n')
				_, err = buf.WriteTo(os.Stdout)
				return err
			}
			if err := layout.WriteFile(opts.output, entities); err != nil {
				return err
			}
			printSuccess("Exported %d %s", len(entities), def.kind)
			printFile(opts.output)
			return nil
		}

		var data []byte
		tiles := export.Tiles(entities)
		switch opts.format {
		case formatText:
			plain := opts.plain || opts.output != ""
			data = []byte(export.Text(s.Config(), tiles, export.TextOptions{Plain: plain}) + "\n")
		case formatDOT:
			data = []byte(export.ToDOT(def.title, s.Config(), tiles))
		case formatSVG, formatPNG:
			prog := newProgress(c.Logger)
			dot := export.ToDOT(def.title, s.Config(), tiles)
			var err error
			if opts.format == formatSVG {
				data, err = export.RenderSVG(ctx, dot)
			} else {
				data, err = export.RenderPNG(ctx, dot)
			}
			if err != nil {
				return err
			}
			prog.done("Rendered " + opts.format)
		}

		if opts.output == "" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(opts.output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.output, err)
		}
		printSuccess("Exported %s board", def.kind)
		printFile(opts.output)
		return nil
	})
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <machines|projects> <file>",
		Short: "Replace a board with a JSON layout file",
		Long: `Import replaces every entity on the board with the contents of a layout
file written by "export -f json". The grid grows (up to 8x8) to fit a layout
saved on a larger board. Entities that still overlap or fall outside it are
moved to the first free slot, or dropped when none is left.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := workshop.ParseKind(args[0])
			if err != nil {
				return err
			}
			if kind == workshop.KindProjects {
				return importBoard(cmd.Context(), c, projectsBoard, args[1])
			}
			return importBoard(cmd.Context(), c, machinesBoard, args[1])
		},
	}
	return cmd
}

func importBoard[P layout.Attributes](ctx context.Context, c *CLI, def boardDef[P], path string) error {
	entities, err := layout.ReadFile[P](path)
	if err != nil {
		return err
	}
	return withStore(ctx, c, def, func(s *layout.Store[P]) error {
		kept, err := s.Replace(ctx, entities)
		if err != nil {
			return err
		}
		printSuccess("Imported %d %s", kept, def.kind)
		if dropped := len(entities) - kept; dropped > 0 {
			printWarning("%d did not fit on the %dx%d grid", dropped, s.Config().Cols, s.Config().Rows)
		}
		return nil
	})
}
