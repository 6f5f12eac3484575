package configsdk

import (
	"github.com/goccy/go-json"
)

// ============================================================================
// Request Types
// ============================================================================

// Application narrows a lookup to entries associated with one application release.
type Application struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Associations filters a lookup by application release and environment.
type Associations struct {
	Applications []Application `json:"applications"`
	Environments []string      `json:"environments"`
}

// GetOptions are the per-call options of GetConfigByName.
type GetOptions struct {
	Associations *Associations
}

// QueryParam is a single key/value pair of a query string.
type QueryParam struct {
	Key   string
	Value string
}

// ============================================================================
// Response Types
// ============================================================================

// ConfigEntry is one configuration record as returned by the service.
// Raw holds the entry exactly as it was received.
type ConfigEntry struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Value        any          `json:"value"`
	Associations Associations `json:"associations"`
	IsSensitive  bool         `json:"isSensitive"`
	IsActive     bool         `json:"isActive"`
	Owner        string       `json:"owner"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the convenience fields and keeps a copy of the raw
// entry. An object whose fields do not fit the usual shape is kept in Raw only.
func (e *ConfigEntry) UnmarshalJSON(data []byte) error {
	raw := append(json.RawMessage(nil), data...)

	type plain ConfigEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		var obj map[string]json.RawMessage
		if json.Unmarshal(data, &obj) != nil || obj == nil {
			return err
		}
		*e = ConfigEntry{Raw: raw}
		return nil
	}
	*e = ConfigEntry(p)
	e.Raw = raw
	return nil
}

// MarshalJSON writes the entry back exactly as it was received when possible.
func (e ConfigEntry) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	type plain ConfigEntry
	return json.Marshal(plain(e))
}

// ErrorBody is the structured error shape of the service.
type ErrorBody struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// tokenResponse is the success body of the token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}
