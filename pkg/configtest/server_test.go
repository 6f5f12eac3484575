package configtest_test

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/configurine/pkg/configtest"
	"github.com/aussiebroadwan/configurine/pkg/cryptox"
)

func requestToken(t *testing.T, srv *configtest.Server, clientID, key string) *http.Response {
	t.Helper()

	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	form := url.Values{
		"grant_type": {"client_credentials"},
		"client_id":  {clientID},
		"timestamp":  {ts},
		"signature":  {cryptox.SignCredentials(key, clientID, ts)},
	}
	resp, err := http.Post(srv.URL+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServerTokenEndpoint(t *testing.T) {
	t.Parallel()

	srv := configtest.NewServer(t, configtest.Options{ClientID: "fnord", SharedKey: "secret"})

	t.Run("valid credentials", func(t *testing.T) {
		resp := requestToken(t, srv, "fnord", "secret")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	})

	t.Run("wrong key", func(t *testing.T) {
		resp := requestToken(t, srv, "fnord", "not-the-key")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown client", func(t *testing.T) {
		resp := requestToken(t, srv, "someone-else", "secret")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestServerConfigRequiresToken(t *testing.T) {
	t.Parallel()

	srv := configtest.NewServer(t, configtest.Options{ClientID: "fnord", SharedKey: "secret"})
	srv.AddEntries(map[string]any{"name": "loglevel", "value": "error"})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/config?isActive=true&names=loglevel", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer forged:1:2:3")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 1, srv.ConfigRequests())
	require.Equal(t, "isActive=true&names=loglevel", srv.LastConfigQuery())
	require.Equal(t, "Bearer forged:1:2:3", srv.LastAuthorization())
}

func TestServerScriptedReply(t *testing.T) {
	t.Parallel()

	srv := configtest.NewServer(t, configtest.Options{ClientID: "fnord", SharedKey: "secret"})
	srv.SetTokenReply(&configtest.Reply{Status: http.StatusInternalServerError, Body: "Internal Server Error"})

	resp := requestToken(t, srv, "fnord", "secret")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Equal(t, 1, srv.TokenRequests())

	srv.SetTokenReply(nil)
	resp = requestToken(t, srv, "fnord", "secret")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 2, srv.TokenRequests())
}
