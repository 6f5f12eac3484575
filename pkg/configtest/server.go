// Package configtest runs an in-process Configurine service for tests.
package configtest

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/configurine/pkg/cryptox"
	"github.com/aussiebroadwan/configurine/pkg/httpx"
	"github.com/aussiebroadwan/configurine/pkg/slogx"
)

// TokenFormat selects how the server mints access tokens.
type TokenFormat int

const (
	// TokenLegacy mints owner:issuedAtMillis:expiresAtMillis:signature tokens.
	TokenLegacy TokenFormat = iota
	// TokenJWT mints HS256 JWTs signed with the shared key.
	TokenJWT
)

// Options configure a Server.
type Options struct {
	ClientID  string
	SharedKey string

	// TokenTTL is the lifetime of minted tokens. Defaults to one hour.
	TokenTTL    time.Duration
	TokenFormat TokenFormat

	// Now is the server clock. Defaults to time.Now.
	Now func() time.Time

	// TokenRateLimit throttles the token endpoint per client_id.
	TokenRateLimit *httpx.RateLimitConfig
	// ConfigRateLimit throttles the config endpoint per bearer token.
	ConfigRateLimit *httpx.RateLimitConfig

	Logger *slog.Logger
}

// Reply is a scripted response. A string Body is written as text, anything
// else as JSON.
type Reply struct {
	Status int
	Body   any
}

// Server is a fake Configurine service backed by httptest.
type Server struct {
	*httptest.Server

	opts Options

	mu            sync.Mutex
	tokenReply    *Reply
	configReply   *Reply
	issued        map[string]time.Time
	entries       []any
	tokenRequests int
	configQueries []string
	lastAuth      string
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB, opts Options) *Server {
	t.Helper()

	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		opts:   opts,
		issued: make(map[string]time.Time),
	}

	var token, config http.Handler = http.HandlerFunc(s.handleToken), http.HandlerFunc(s.handleConfig)
	if opts.TokenRateLimit != nil {
		token = httpx.RateLimitMiddleware(*opts.TokenRateLimit, httpx.FormFieldKeyExtractor("client_id"))(token)
	}
	if opts.ConfigRateLimit != nil {
		config = httpx.RateLimitMiddleware(*opts.ConfigRateLimit, httpx.BearerKeyExtractor)(config)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /token", s.recordToken(token))
	mux.Handle("GET /config", s.recordConfig(config))

	s.Server = httptest.NewServer(httpx.Chain(mux, slogx.HTTPMiddleware(opts.Logger)))
	t.Cleanup(s.Close)
	return s
}

// AddEntries registers configuration entries. Each entry must marshal to a
// JSON object with a "name" field.
func (s *Server) AddEntries(entries ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
}

// SetTokenReply scripts every token response. nil restores normal behaviour.
func (s *Server) SetTokenReply(r *Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenReply = r
}

// SetConfigReply scripts every config response. nil restores normal behaviour.
func (s *Server) SetConfigReply(r *Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configReply = r
}

// TokenRequests returns the number of requests received by the token endpoint.
func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenRequests
}

// ConfigRequests returns the number of requests received by the config endpoint.
func (s *Server) ConfigRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.configQueries)
}

// LastConfigQuery returns the raw query of the latest config request.
func (s *Server) LastConfigQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.configQueries) == 0 {
		return ""
	}
	return s.configQueries[len(s.configQueries)-1]
}

// LastAuthorization returns the Authorization header of the latest config request.
func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) recordToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.tokenRequests++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recordConfig(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.configQueries = append(s.configQueries, r.URL.RawQuery)
		s.lastAuth = r.Header.Get("Authorization")
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	scripted := s.tokenReply
	s.mu.Unlock()

	if scripted != nil {
		writeReply(w, scripted)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	clientID := r.PostForm.Get("client_id")
	timestamp := r.PostForm.Get("timestamp")
	signature := r.PostForm.Get("signature")
	if r.PostForm.Get("grant_type") != "client_credentials" {
		writeError(w, http.StatusBadRequest, "unsupported grant type")
		return
	}
	if clientID != s.opts.ClientID || !cryptox.VerifyCredentials(s.opts.SharedKey, clientID, timestamp, signature) {
		writeError(w, http.StatusUnauthorized, "invalid client credentials")
		return
	}

	token, expiresAt, err := s.mint(clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.issued[token] = expiresAt
	s.mu.Unlock()

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (s *Server) mint(owner string) (string, time.Time, error) {
	now := s.opts.Now()
	exp := now.Add(s.opts.TokenTTL)

	if s.opts.TokenFormat == TokenJWT {
		jti, err := cryptox.GenerateHex(16)
		if err != nil {
			return "", time.Time{}, err
		}
		claims := jwt.RegisteredClaims{
			ID:        jti,
			Subject:   owner,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.SharedKey))
		if err != nil {
			return "", time.Time{}, fmt.Errorf("sign token: %w", err)
		}
		// NumericDate truncates to seconds.
		return signed, claims.ExpiresAt.Time, nil
	}

	issued := strconv.FormatInt(now.UnixMilli(), 10)
	expires := strconv.FormatInt(exp.UnixMilli(), 10)
	sig := cryptox.SignCredentials(s.opts.SharedKey, owner, issued+":"+expires)
	return fmt.Sprintf("%s:%s:%s:%s", owner, issued, expires, sig), exp, nil
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	scripted := s.configReply
	exp, known := s.issued[token]
	entries := slices.Clone(s.entries)
	s.mu.Unlock()

	if scripted != nil {
		writeReply(w, scripted)
		return
	}

	if !known || !s.opts.Now().Before(exp) {
		writeError(w, http.StatusUnauthorized, "invalid or expired access token")
		return
	}

	names := r.URL.Query()["names"]
	matched := make([]any, 0, len(entries))
	for _, e := range entries {
		if slices.Contains(names, entryName(e)) {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		writeError(w, http.StatusNotFound, "Config entry not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, matched)
}

func entryName(e any) string {
	raw, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &named); err != nil {
		return ""
	}
	return named.Name
}

func writeReply(w http.ResponseWriter, r *Reply) {
	if text, ok := r.Body.(string); ok {
		httpx.WriteText(w, r.Status, text)
		return
	}
	httpx.WriteJSON(w, r.Status, r.Body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	httpx.WriteJSON(w, status, map[string]any{
		"code":    status,
		"error":   http.StatusText(status),
		"message": message,
	})
}
