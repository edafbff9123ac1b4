package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/observability"
	"github.com/wit-platform/witpanel/pkg/retry"
	"github.com/wit-platform/witpanel/pkg/status"
)

const (
	writeWait       = 10 * time.Second
	defaultPingWait = 30 * time.Second
	eventBuffer     = 64
)

// Options configures [Dial].
type Options struct {
	// Header is sent with the handshake, e.g. an Authorization token.
	Header http.Header
	// Dial controls handshake retries. Zero means a single attempt.
	Dial retry.Policy
	// PingInterval is how often the client pings. The connection is
	// considered dead after two intervals without traffic. Defaults to 30s;
	// negative disables pings.
	PingInterval time.Duration
	Logger       *log.Logger
}

// Client is a connected relay session. It is safe for concurrent use.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger
	ping   time.Duration

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan envelope
	err     error

	events    chan status.Report
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to a relay at url (ws:// or wss://).
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	if err := errors.ValidateURL(url, "ws", "wss"); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.PingInterval == 0 {
		opts.PingInterval = defaultPingWait
	}

	var conn *websocket.Conn
	err := retry.Do(ctx, opts.Dial, func(attempt int) error {
		c, resp, err := websocket.DefaultDialer.DialContext(ctx, url, opts.Header)
		if err != nil {
			if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return errors.Wrap(errors.ErrCodeNetwork, err, "relay rejected handshake: %s", resp.Status)
			}
			opts.Logger.Debug("relay dial failed", "url", url, "attempt", attempt+1, "error", err)
			return retry.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "dial relay %s", url))
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:    conn,
		logger:  opts.Logger,
		ping:    opts.PingInterval,
		pending: make(map[string]chan envelope),
		events:  make(chan status.Report, eventBuffer),
		done:    make(chan struct{}),
	}
	if c.ping > 0 {
		conn.SetReadDeadline(time.Now().Add(2 * c.ping))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(2 * c.ping))
		})
		go c.pingLoop()
	}
	go c.readLoop()

	c.logger.Debug("relay connected", "url", url)
	observability.Relay().OnConnectionState(ctx, string(status.Connected))
	return c, nil
}

// SendCommand sends command to targetID and waits for its response.
// A response with success=false becomes an [errors.CommandError]. If the
// connection drops first the error has code DISCONNECTED.
func (c *Client) SendCommand(ctx context.Context, targetID, command string, args any) (json.RawMessage, error) {
	start := time.Now()
	result, err := c.send(ctx, targetID, command, args)
	observability.Relay().OnCommand(ctx, targetID, command, time.Since(start), err)
	return result, err
}

func (c *Client) send(ctx context.Context, targetID, command string, args any) (json.RawMessage, error) {
	if targetID == "" || command == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "target and command are required")
	}

	id := uuid.NewString()
	reply := make(chan envelope, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.pending[id] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := request{Type: TypeCommand, ID: id, PluginID: targetID, Command: command, Args: args}
	if err := c.write(req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDisconnected, err, "send %s to %s", command, targetID)
	}

	select {
	case resp := <-reply:
		if !resp.Success {
			return nil, &errors.CommandError{Target: targetID, Command: command, Message: resp.Error}
		}
		return resp.Result, nil
	case <-c.done:
		return nil, c.Err()
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s on %s", command, targetID)
		}
		return nil, ctx.Err()
	}
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Events delivers pushed status messages. It is closed when the
// connection ends. Messages are dropped if the channel is full.
func (c *Client) Events() <-chan status.Report { return c.events }

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns why the connection ended, or nil while it is open.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close sends a close frame and shuts the connection down.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	c.shutdown(errors.New(errors.ErrCodeDisconnected, "relay connection closed"))
	return nil
}

// shutdown records why the connection ended, fails pending commands, and
// releases the socket. Only the first call has an effect.
func (c *Client) shutdown(reason error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = reason
		c.mu.Unlock()

		c.conn.Close()
		close(c.done)
		c.logger.Debug("relay disconnected", "reason", reason)
		observability.Relay().OnConnectionState(context.Background(), string(status.Disconnected))
	})
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		var msg envelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			switch err.(type) {
			case *json.SyntaxError, *json.UnmarshalTypeError:
				c.logger.Warn("ignoring malformed relay message", "error", err)
				continue
			}
			c.shutdown(errors.Wrap(errors.ErrCodeDisconnected, err, "relay connection lost"))
			return
		}
		if c.ping > 0 {
			c.conn.SetReadDeadline(time.Now().Add(2 * c.ping))
		}

		switch msg.Type {
		case TypeResponse, TypeError:
			c.mu.Lock()
			reply, ok := c.pending[msg.ID]
			c.mu.Unlock()
			if !ok {
				c.logger.Debug("response for unknown request", "id", msg.ID)
				continue
			}
			select {
			case reply <- msg:
			default:
				c.logger.Debug("duplicate response", "id", msg.ID)
			}
		case TypeStatus:
			r := status.Report{TargetID: msg.TargetID, Status: msg.Status, Data: msg.Data, At: time.Now()}
			select {
			case c.events <- r:
			default:
				c.logger.Warn("dropping status event, consumer too slow", "target", msg.TargetID)
			}
		default:
			c.logger.Debug("ignoring relay message", "type", msg.Type)
		}
	}
}

func (c *Client) pingLoop() {
	t := time.NewTicker(c.ping)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				c.shutdown(errors.Wrap(errors.ErrCodeDisconnected, err, "relay ping failed"))
				return
			}
		}
	}
}
