package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/storage"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// storageCommand creates the storage management command.
func (c *CLI) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage persisted board layouts",
	}

	cmd.AddCommand(c.storageClearCommand())
	cmd.AddCommand(c.storagePathCommand())

	return cmd
}

// storageClearCommand creates the "storage clear" subcommand.
func (c *CLI) storageClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "clear [machines|projects]",
		Short:     "Delete stored layouts and grid sizes (both boards by default)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(workshop.KindMachines), string(workshop.KindProjects)},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			kinds := workshop.Kinds
			if len(args) == 1 {
				kind, err := workshop.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []workshop.Kind{kind}
			}

			backend, err := c.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := backend.Close(); err == nil {
					err = cerr
				}
			}()

			for _, kind := range kinds {
				key := kind.StorageKey()
				for _, k := range []string{key, layout.GridKey(key)} {
					if err := backend.Delete(cmd.Context(), k); err != nil {
						return fmt.Errorf("clear %s: %w", k, err)
					}
				}
				printSuccess("Cleared %s", kind)
			}
			printDetail("Backend: %s", storage.NameOf(backend))
			return nil
		},
	}
}

// storagePathCommand creates the "storage path" subcommand.
func (c *CLI) storagePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where layouts are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := storageLocation(c.cfg.Storage)
			if err != nil {
				return err
			}
			fmt.Println(loc)
			return nil
		},
	}
}

// storageLocation describes where cfg keeps its records.
func storageLocation(cfg storage.Config) (string, error) {
	var loc string
	switch cfg.Backend {
	case storage.KindMemory:
		loc = "memory (not persisted)"
	case storage.KindRedis:
		addr := cfg.Redis.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		loc = fmt.Sprintf("redis://%s/%d", addr, cfg.Redis.DB)
		if cfg.Redis.Prefix != "" {
			loc += " prefix " + cfg.Redis.Prefix
		}
	case storage.KindMongo:
		db, coll := cfg.Mongo.Database, cfg.Mongo.Collection
		if db == "" {
			db = "witpanel"
		}
		if coll == "" {
			coll = "layouts"
		}
		loc = fmt.Sprintf("mongodb %s.%s", db, coll)
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = storage.DefaultDir(); err != nil {
				return "", err
			}
		}
		loc = dir
	}
	if cfg.Scope != "" {
		loc += " scope " + cfg.Scope
	}
	return loc, nil
}
