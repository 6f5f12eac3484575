package configsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/configurine/pkg/idx"
)

// url builds a complete URL by appending the path to the host.
func (c *Client) url(path string) string {
	return c.host + path
}

// do sends req after the rate limiter admits it. Every request carries a
// fresh X-Request-ID and the client's User-Agent.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", idx.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// readBody reads and closes the response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
