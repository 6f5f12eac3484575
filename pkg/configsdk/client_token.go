package configsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/aussiebroadwan/configurine/pkg/cryptox"
)

// acquireToken requests a new access token from the token endpoint. It does
// not touch the token cache.
func (c *Client) acquireToken(ctx context.Context) (tok AccessToken, err error) {
	start := c.clock.Now()
	defer func() {
		c.metrics.recordToken(err, c.clock.Since(start))
	}()

	timestamp := strconv.FormatInt(c.clock.Now().UnixMilli(), 10)
	data := url.Values{
		"grant_type": {"client_credentials"},
		"client_id":  {c.clientID},
		"timestamp":  {timestamp},
		"signature":  {cryptox.SignCredentials(c.sharedKey, c.clientID, timestamp)},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url("/token"),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return AccessToken{}, &AuthError{Kind: KindTransport, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		c.log(ctx).WarnContext(ctx, "token request failed", "error", err)
		return AccessToken{}, &AuthError{Kind: KindTransport, Cause: err}
	}

	body, err := readBody(resp)
	if err != nil {
		return AccessToken{}, &AuthError{Kind: KindTransport, StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.log(ctx).WarnContext(ctx, "token request rejected", "status", resp.StatusCode)
		return AccessToken{}, &AuthError{
			Kind:       KindRejected,
			StatusCode: resp.StatusCode,
			Message:    parseServerMessage(body),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return AccessToken{}, &AuthError{
			Kind:       KindMalformedToken,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("%w: %v", ErrMalformedToken, err),
		}
	}

	tok, err = ParseAccessToken(tr.AccessToken)
	if err != nil {
		return AccessToken{}, &AuthError{Kind: KindMalformedToken, StatusCode: resp.StatusCode, Cause: err}
	}

	c.log(ctx).DebugContext(ctx, "acquired access token",
		"token", cryptox.FingerprintToken(tok.Value),
		"owner", tok.Owner,
		"expires_at", tok.ExpiresAt,
	)
	return tok, nil
}
