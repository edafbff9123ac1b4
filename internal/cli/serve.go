package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wit-platform/witpanel/internal/server"
	"github.com/wit-platform/witpanel/pkg/buildinfo"
	"github.com/wit-platform/witpanel/pkg/status"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		withRelay bool
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve both boards as a JSON API",
		Long: `Serve exposes the machines and projects boards over HTTP:

  GET    /api/{machines|projects}            list (status, priority, sort, page, page_size)
  POST   /api/{machines|projects}            add
  GET    /api/{machines|projects}/{id}       show
  PATCH  /api/{machines|projects}/{id}       edit
  DELETE /api/{machines|projects}/{id}       remove
  PUT    /api/{machines|projects}/{id}/position
  PUT    /api/{machines|projects}/{id}/size
  GET    /api/{machines|projects}/grid       (PUT to change)
  GET    /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			if c.cfg.Server.Scope != "" && c.cfg.Storage.Scope == "" {
				c.cfg.Storage.Scope = c.cfg.Server.Scope
			}

			b, err := c.openBoards(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := b.Close(); err == nil {
					err = cerr
				}
			}()

			opts := []server.Option{server.WithLogger(c.Logger)}
			if withRelay {
				client, err := c.dialRelay(ctx, "")
				if err != nil {
					return err
				}
				defer client.Close()
				opts = append(opts, server.WithRelay(client))
			}
			srv := server.New(b.machines, b.projects, opts...)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(ctx, addr) })
			if watch {
				mon, err := c.newMonitor(false)
				if err != nil {
					return err
				}
				updater := &machineUpdater{store: b.machines, logger: c.Logger}
				g.Go(func() error {
					return mon.Run(ctx, teeSink{updater, status.Funcs{
						State: func(s status.State, err error) {
							c.Logger.Info("status channel", "state", s, "error", err)
						},
					}})
				})
			}

			c.Logger.Debug("serve", "version", buildinfo.Version, "commit", buildinfo.Commit, "backend", c.cfg.Storage.Backend)
			printSuccess("Serving on http://%s", addr)
			err = g.Wait()
			if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&withRelay, "relay", false, "enable POST /api/relay/{target}/{command}")
	cmd.Flags().BoolVar(&watch, "watch", false, "apply relay status reports to the machines board")
	return cmd
}
