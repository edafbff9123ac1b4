package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/relay"
	"github.com/wit-platform/witpanel/pkg/status"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// statusCommand creates the status command group.
func (c *CLI) statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Follow machine status from the relay and the REST fallback",
	}
	cmd.AddCommand(c.statusWatchCommand())
	return cmd
}

func (c *CLI) statusWatchCommand() *cobra.Command {
	var (
		apply    bool
		pollOnly bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print status reports until interrupted",
		Long: `Watch connects to the relay's push channel. While it is connected, the
REST endpoint is not polled; when it drops, polling resumes and the relay is
redialled with backoff until max_reconnects is reached.

With --apply, each report updates the status of the machine whose target
matches it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mon, err := c.newMonitor(pollOnly)
			if err != nil {
				return err
			}

			var sink status.Sink = status.Funcs{
				Report: printReport,
				State:  printState,
			}
			if apply {
				b, err := c.openBoards(ctx)
				if err != nil {
					return err
				}
				defer b.Close()
				sink = teeSink{sink, &machineUpdater{store: b.machines, logger: c.Logger}}
			}

			err = mon.Run(ctx, sink)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "write reported statuses to the machines board")
	cmd.Flags().BoolVar(&pollOnly, "poll-only", false, "skip the relay and only poll")
	return cmd
}

// newMonitor builds a monitor from the [relay] and [status] sections.
func (c *CLI) newMonitor(pollOnly bool) (*status.Monitor, error) {
	mon := &status.Monitor{
		Interval:      c.cfg.Status.Interval,
		MaxReconnects: c.cfg.Status.MaxReconnects,
		Backoff:       c.cfg.Status.Backoff,
		Logger:        c.Logger,
	}
	if !pollOnly && c.cfg.Relay.URL != "" {
		mon.Stream = &relay.StatusStream{URL: c.cfg.Relay.URL, Options: c.relayOptions()}
	}
	if c.cfg.Status.PollURL != "" {
		poller, err := status.NewHTTPPoller(c.cfg.Status.PollURL)
		if err != nil {
			return nil, err
		}
		if c.cfg.Relay.Token != "" {
			poller.Headers = map[string]string{"Authorization": "Bearer " + c.cfg.Relay.Token}
		}
		mon.Poller = poller
	}
	if mon.Stream == nil && mon.Poller == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "nothing to watch: configure [relay] url or [status] poll_url")
	}
	return mon, nil
}

func printReport(r status.Report) {
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}
	fmt.Printf("%s %-16s %s\n", StyleDim.Render(at.Local().Format("15:04:05")), r.TargetID, renderStatus(r.Status))
}

func printState(s status.State, err error) {
	if err != nil {
		printWarning("relay %s: %v", s, err)
		return
	}
	printInfo("relay %s", statusStyle(string(s)).Render(string(s)))
}

// teeSink fans monitor output out to several sinks.
type teeSink []status.Sink

func (t teeSink) OnReport(r status.Report) {
	for _, s := range t {
		s.OnReport(r)
	}
}

func (t teeSink) OnState(st status.State, err error) {
	for _, s := range t {
		s.OnState(st, err)
	}
}

// machineUpdater writes reported statuses onto machines whose Target
// matches the report.
type machineUpdater struct {
	store  *layout.Store[workshop.Machine]
	logger *log.Logger
}

func (u *machineUpdater) OnReport(r status.Report) {
	st, ok := workshop.StatusFromReport(r.Status)
	if !ok {
		u.logger.Debug("ignoring unknown status", "target", r.TargetID, "status", r.Status)
		return
	}
	for _, e := range u.store.Entities() {
		if e.Payload.Target != r.TargetID || e.Payload.Status == st {
			continue
		}
		_, err := u.store.Update(context.Background(), e.ID, func(m *workshop.Machine) error {
			m.Status = st
			return nil
		})
		if err != nil {
			u.logger.Warn("apply status", "id", e.ID, "error", err)
			continue
		}
		u.logger.Info("status changed", "machine", e.Payload.Name, "status", st)
	}
}

func (u *machineUpdater) OnState(status.State, error) {}
