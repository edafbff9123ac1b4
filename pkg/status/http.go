package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/retry"
)

// HTTPPoller fetches reports from a REST endpoint that returns a JSON
// array of [Report].
type HTTPPoller struct {
	URL     string
	Client  *http.Client
	Headers map[string]string
	// Retry applies to network failures and 5xx responses.
	Retry retry.Policy
}

// NewHTTPPoller validates url and returns a poller with a 10s timeout.
func NewHTTPPoller(url string) (*HTTPPoller, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	return &HTTPPoller{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
		Retry:  retry.Policy{Attempts: 2, Delay: 500 * time.Millisecond},
	}, nil
}

// Poll performs one GET.
func (p *HTTPPoller) Poll(ctx context.Context) ([]Report, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	var reports []Report
	err := retry.Do(ctx, p.Retry, func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range p.Headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return retry.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "poll %s", p.URL))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.Retryable(errors.New(errors.ErrCodeNetwork, "poll %s: %s", p.URL, resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return errors.New(errors.ErrCodeNetwork, "poll %s: %s", p.URL, resp.Status)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return retry.Retryable(fmt.Errorf("read poll response: %w", err))
		}
		reports = nil
		if err := json.Unmarshal(body, &reports); err != nil {
			return fmt.Errorf("decode poll response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}
