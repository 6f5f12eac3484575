package configsdk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// fetchConfig performs one configuration lookup with tok.
func (c *Client) fetchConfig(ctx context.Context, tok AccessToken, name string, assoc *Associations) (entries []ConfigEntry, err error) {
	var status int
	start := c.clock.Now()
	defer func() {
		c.metrics.recordConfig(err, status, c.clock.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/config"), nil)
	if err != nil {
		return nil, &ConfigError{Kind: KindTransport, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.URL.RawQuery = configQuery(name, assoc)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		c.log(ctx).WarnContext(ctx, "config request failed", "name", name, "error", err)
		return nil, &ConfigError{Kind: KindTransport, Cause: err}
	}
	status = resp.StatusCode

	body, err := readBody(resp)
	if err != nil {
		return nil, &ConfigError{Kind: KindTransport, StatusCode: status, Cause: err}
	}

	if status != http.StatusOK {
		c.log(ctx).WarnContext(ctx, "config request rejected", "name", name, "status", status)
		return nil, &ConfigError{
			Kind:       KindRejected,
			StatusCode: status,
			Message:    parseServerMessage(body),
		}
	}

	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &ConfigError{
			Kind:       KindMalformedResponse,
			StatusCode: status,
			Cause:      fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}
	if entries == nil {
		entries = []ConfigEntry{}
	}

	c.log(ctx).DebugContext(ctx, "fetched configuration",
		"name", name,
		"entries", len(entries),
	)
	return entries, nil
}
