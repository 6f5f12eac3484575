package configsdk

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

// Options identify the service and the client. They are fixed for the
// lifetime of a Client.
type Options struct {
	// Host is the base URL of the service, e.g. http://127.0.0.1:8080.
	Host string `json:"host" validate:"required,url"`

	ClientID  string `json:"clientId" validate:"required"`
	SharedKey string `json:"sharedKey" validate:"required"`
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger. Without one, the logger stored in the request
// context by slogx.WithContext is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithClock sets the clock used to judge token expiry and sign requests.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithExpiryLeeway treats cached tokens as expired d before their expiry.
func WithExpiryLeeway(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.leeway = d
		}
	}
}

// WithMetrics records request metrics on mc.
func WithMetrics(mc *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = mc
	}
}

// WithRateLimit throttles outbound requests to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}
