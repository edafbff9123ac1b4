package relay

import (
	"context"

	"github.com/wit-platform/witpanel/pkg/status"
)

// StatusStream connects a [status.Monitor] to a relay. Each Connect dials a
// fresh session; the monitor owns reconnect timing, so dial retries are
// not applied here.
type StatusStream struct {
	URL     string
	Options Options
}

// Connect implements [status.Stream].
func (s *StatusStream) Connect(ctx context.Context) (status.Subscription, error) {
	opts := s.Options
	opts.Dial.Attempts = 1
	c, err := Dial(ctx, s.URL, opts)
	if err != nil {
		return nil, err
	}
	return subscription{c}, nil
}

type subscription struct{ *Client }

func (s subscription) Reports() <-chan status.Report { return s.Events() }

var _ status.Stream = (*StatusStream)(nil)
