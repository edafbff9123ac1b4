package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/relay"
)

// relayCommand creates the relay command group.
func (c *CLI) relayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Talk to the desktop controller relay",
	}

	cmd.PersistentFlags().String("url", "", "relay websocket URL (default from config)")
	cmd.AddCommand(c.relaySendCommand())

	return cmd
}

func (c *CLI) relaySendCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "send <target> <command> [json-args]",
		Short: "Send one command and print the result",
		Example: `  witpanel relay send prusa status
  witpanel relay send prusa set_temperature '{"nozzle":215}'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cmdArgs json.RawMessage
			if len(args) == 3 {
				if !json.Valid([]byte(args[2])) {
					return errors.New(errors.ErrCodeInvalidInput, "arguments must be valid JSON")
				}
				cmdArgs = json.RawMessage(args[2])
			}

			url, _ := cmd.Flags().GetString("url")
			client, err := c.dialRelay(cmd.Context(), url)
			if err != nil {
				return err
			}
			defer client.Close()

			if timeout <= 0 {
				timeout = c.cfg.Relay.Timeout
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Sending %s to %s...", args[1], args[0]))
			spinner.Start()
			var payload any
			if cmdArgs != nil {
				payload = cmdArgs
			}
			result, err := client.SendCommand(ctx, args[0], args[1], payload)
			if err != nil {
				spinner.StopWithError(errors.UserMessage(err))
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("%s/%s", args[0], args[1]))

			if len(result) > 0 {
				var pretty any
				if json.Unmarshal(result, &pretty) == nil {
					out, _ := json.MarshalIndent(pretty, "", "  ")
					fmt.Println(string(out))
				} else {
					fmt.Println(string(result))
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait for the response (default from config)")
	return cmd
}

// relayOptions builds client options from the [relay] section.
func (c *CLI) relayOptions() relay.Options {
	opts := relay.Options{
		Dial:         c.cfg.Relay.Dial,
		PingInterval: c.cfg.Relay.PingInterval,
		Logger:       c.Logger,
	}
	if c.cfg.Relay.Token != "" {
		opts.Header = http.Header{"Authorization": []string{"Bearer " + c.cfg.Relay.Token}}
	}
	return opts
}

// dialRelay connects to url, or the configured relay when url is empty.
func (c *CLI) dialRelay(ctx context.Context, url string) (*relay.Client, error) {
	if url == "" {
		url = c.cfg.Relay.URL
	}
	if url == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no relay URL; set [relay] url or pass --url")
	}
	c.Logger.Debug("dialing relay", "url", url)
	return relay.Dial(ctx, url, c.relayOptions())
}
