package configsdk

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrMalformedToken is returned when the token endpoint answers 200 with a
	// token whose validity window cannot be read.
	ErrMalformedToken = errors.New("configsdk: malformed access token")

	// ErrMalformedResponse is returned when a 200 response body cannot be decoded.
	ErrMalformedResponse = errors.New("configsdk: malformed response body")
)

// ErrorKind classifies AuthError and ConfigError.
type ErrorKind int

const (
	// KindRejected means the service answered with a non-200 status.
	KindRejected ErrorKind = iota + 1
	// KindTransport means no response was received.
	KindTransport
	// KindMalformedToken means the token endpoint issued an unreadable token.
	KindMalformedToken
	// KindMalformedResponse means a 200 body could not be decoded.
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindTransport:
		return "transport"
	case KindMalformedToken:
		return "malformed_token"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ============================================================================
// ServerMessage
// ============================================================================

// ServerMessage is the body of an error response. The service answers either
// with a structured {code, error, message} object or with arbitrary text;
// exactly one of Structured and Text is set.
type ServerMessage struct {
	Structured *ErrorBody
	Text       string
}

// parseServerMessage classifies an error response body.
func parseServerMessage(body []byte) ServerMessage {
	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb != (ErrorBody{}) {
		return ServerMessage{Structured: &eb}
	}
	return ServerMessage{Text: string(body)}
}

// String renders either shape as a single line.
func (m ServerMessage) String() string {
	if m.Structured == nil {
		return strings.TrimSpace(m.Text)
	}
	s := m.Structured
	switch {
	case s.Error != "" && s.Message != "":
		return s.Error + ": " + s.Message
	case s.Message != "":
		return s.Message
	default:
		return s.Error
	}
}

// ============================================================================
// AuthError / ConfigError
// ============================================================================

// AuthError is returned when the token endpoint rejected the client or could
// not be reached. No configuration request is sent after an AuthError.
type AuthError struct {
	Kind       ErrorKind
	StatusCode int
	Message    ServerMessage
	Cause      error
}

func (e *AuthError) Error() string {
	return formatError("token request", e.Kind, e.StatusCode, e.Message, e.Cause)
}

// IsTransport reports whether the token endpoint could not be reached.
func (e *AuthError) IsTransport() bool { return e.Kind == KindTransport }

func (e *AuthError) Unwrap() error { return e.Cause }

// Is matches another *AuthError by kind. A zero Kind in target matches any.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == 0 || t.Kind == e.Kind
}

// ConfigError is returned when the configuration endpoint rejected the
// request, could not be reached, or answered with an undecodable body.
type ConfigError struct {
	Kind       ErrorKind
	StatusCode int
	Message    ServerMessage
	Cause      error
}

func (e *ConfigError) Error() string {
	return formatError("config request", e.Kind, e.StatusCode, e.Message, e.Cause)
}

// IsTransport reports whether the configuration endpoint could not be reached.
func (e *ConfigError) IsTransport() bool { return e.Kind == KindTransport }

func (e *ConfigError) Unwrap() error { return e.Cause }

// Is matches another *ConfigError by kind. A zero Kind in target matches any.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return t.Kind == 0 || t.Kind == e.Kind
}

func formatError(op string, kind ErrorKind, status int, msg ServerMessage, cause error) string {
	switch kind {
	case KindRejected:
		if s := msg.String(); s != "" {
			return fmt.Sprintf("configsdk: %s failed with status %d: %s", op, status, s)
		}
		return fmt.Sprintf("configsdk: %s failed with status %d", op, status)
	default:
		if cause != nil {
			return fmt.Sprintf("configsdk: %s %s: %v", op, kind, cause)
		}
		return fmt.Sprintf("configsdk: %s %s", op, kind)
	}
}

// ============================================================================
// ValidationError
// ============================================================================

// ValidationError is returned by NewClient when Options are incomplete.
type ValidationError struct {
	// Fields maps the option name to a description of the problem.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "configsdk: invalid options: " + strings.Join(parts, "; ")
}
