package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/buildinfo"
	"github.com/wit-platform/witpanel/pkg/config"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/observability"
	"github.com/wit-platform/witpanel/pkg/storage"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "witpanel"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath overrides the XDG config location.
	configPath string
	// backendFlag and dirFlag override the [storage] section.
	backendFlag string
	dirFlag     string

	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "witpanel arranges workshop machines and projects on grid boards",
		Long: `witpanel manages the W.I.T. control panel boards: machines and projects
placed on a fixed grid, moved and resized without overlapping, and persisted
to local files, Redis or MongoDB.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/witpanel/config.toml)")
	root.PersistentFlags().StringVar(&c.backendFlag, "backend", "", "storage backend: memory, file, redis or mongo")
	root.PersistentFlags().StringVar(&c.dirFlag, "dir", "", "directory for the file backend")

	// Register all subcommands
	root.AddCommand(c.machinesCommand())
	root.AddCommand(c.projectsCommand())
	root.AddCommand(c.boardCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.relayCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.storageCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file, applies flag overrides and registers the
// logging hooks. It runs before every command.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	path, err := c.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.backendFlag != "" {
		cfg.Storage.Backend = c.backendFlag
	}
	if c.dirFlag != "" {
		cfg.Storage.Dir = c.dirFlag
	}
	if err := cfg.Storage.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	observability.SetLayoutHooks(layoutLogHooks{c.Logger})
	observability.SetStorageHooks(storageLogHooks{c.Logger})
	observability.SetRelayHooks(relayLogHooks{c.Logger})
	return nil
}

func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.Path()
}

// =============================================================================
// Store Factory
// =============================================================================

// boards bundles the two board stores over one backend.
type boards struct {
	backend  storage.Backend
	machines *layout.Store[workshop.Machine]
	projects *layout.Store[workshop.Project]
}

// Close flushes pending writes and releases the backend.
func (b *boards) Close() error {
	return b.backend.Close()
}

func (c *CLI) openBackend(ctx context.Context) (storage.Backend, error) {
	return storage.Open(ctx, c.cfg.Storage, c.Logger)
}

// openBoards opens both boards. Callers must Close the result.
func (c *CLI) openBoards(ctx context.Context) (*boards, error) {
	backend, err := c.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	machines, err := openStore[workshop.Machine](ctx, c, backend, workshop.KindMachines)
	if err != nil {
		backend.Close()
		return nil, err
	}
	projects, err := openStore[workshop.Project](ctx, c, backend, workshop.KindProjects)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &boards{backend: backend, machines: machines, projects: projects}, nil
}

func openStore[P any](ctx context.Context, c *CLI, backend storage.Backend, kind workshop.Kind) (*layout.Store[P], error) {
	return layout.Open[P](ctx, backend, kind.StorageKey(), c.gridConfig(), layout.WithLogger(c.Logger))
}

func (c *CLI) gridConfig() grid.Config {
	if c.cfg.Grid.Validate() != nil {
		return grid.DefaultConfig
	}
	return c.cfg.Grid
}
