package configsdk

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/configurine/pkg/cryptox"
	"github.com/aussiebroadwan/configurine/pkg/slogx"
)

// Global validator instance for reuse.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Client retrieves configuration entries from a Configurine service.
// It owns exactly one cached access token and is safe for concurrent use.
type Client struct {
	host      string
	clientID  string
	sharedKey string

	httpClient *http.Client
	logger     *slog.Logger
	clock      clock.Clock
	leeway     time.Duration
	metrics    *MetricsCollector
	limiter    *rate.Limiter
	userAgent  string

	tokens *tokenStore
	group  singleflight.Group
}

// NewClient validates opts and returns a Client with an empty token cache.
func NewClient(opts Options, options ...Option) (*Client, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	c := &Client{
		host:      strings.TrimSuffix(opts.Host, "/"),
		clientID:  opts.ClientID,
		sharedKey: opts.SharedKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		clock:     clock.New(),
		userAgent: "configurine-go/" + Version,
	}
	for _, opt := range options {
		opt(c)
	}
	c.tokens = newTokenStore(c.clock, c.leeway)

	return c, nil
}

func validateOptions(opts Options) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "url":
			fields[fe.Field()] = "must be an absolute URL"
		default:
			fields[fe.Field()] = "failed " + fe.Tag() + " validation"
		}
	}
	return &ValidationError{Fields: fields}
}

// GetConfigByName returns the active entries named name, optionally narrowed
// by associations. A valid token is acquired first when none is cached.
// Exactly one of the results is non-nil; nothing is retried.
func (c *Client) GetConfigByName(ctx context.Context, name string, opts *GetOptions) ([]ConfigEntry, error) {
	tok, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	var assoc *Associations
	if opts != nil {
		assoc = opts.Associations
	}
	return c.fetchConfig(ctx, tok, name, assoc)
}

// Token returns the cached access token, acquiring and caching a new one when
// the cache is empty or expired. Concurrent callers share one acquisition and
// each stops waiting when its own ctx is done; the acquisition itself carries
// on and caches its token for later calls. A failed acquisition leaves the
// cache unchanged.
func (c *Client) Token(ctx context.Context) (AccessToken, error) {
	if tok, ok := c.tokens.Current(); ok {
		c.metrics.recordCacheHit()
		c.log(ctx).DebugContext(ctx, "using cached access token",
			"token", cryptox.FingerprintToken(tok.Value),
			"expires_at", tok.ExpiresAt,
		)
		return tok, nil
	}

	// Fail fast without starting a shared acquisition nobody will wait for.
	if err := ctx.Err(); err != nil {
		return AccessToken{}, &AuthError{Kind: KindTransport, Cause: err}
	}

	// The shared acquisition must not inherit the cancellation of whichever
	// caller started it; the HTTP client timeout still bounds it.
	acquireCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("token", func() (any, error) {
		// Another caller may have stored a token while we waited.
		if tok, ok := c.tokens.Current(); ok {
			return tok, nil
		}

		tok, err := c.acquireToken(acquireCtx)
		if err != nil {
			return AccessToken{}, err
		}
		c.tokens.Set(tok)
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return AccessToken{}, &AuthError{Kind: KindTransport, Cause: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return AccessToken{}, res.Err
		}
		return res.Val.(AccessToken), nil
	}
}

// InvalidateToken drops the cached token; the next call re-authenticates.
func (c *Client) InvalidateToken() {
	c.tokens.Clear()
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slogx.FromContext(ctx)
}
