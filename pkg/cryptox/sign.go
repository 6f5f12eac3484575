package cryptox

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the Configurine token endpoint verifies HMAC-SHA1
	"encoding/hex"
	"strings"
)

// SignCredentials returns the hex HMAC-SHA1 of "clientID:timestamp" keyed with
// sharedKey. This is the signature the token endpoint expects alongside the
// client id and timestamp.
func SignCredentials(sharedKey, clientID, timestamp string) string {
	mac := hmac.New(sha1.New, []byte(sharedKey))
	mac.Write([]byte(clientID + ":" + timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCredentials reports whether signature matches the expected credential
// signature. Comparison is constant time and case-insensitive on the hex digits.
func VerifyCredentials(sharedKey, clientID, timestamp, signature string) bool {
	expected := SignCredentials(sharedKey, clientID, timestamp)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
