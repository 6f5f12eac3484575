package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/configurine/pkg/configsdk"
	"github.com/aussiebroadwan/configurine/pkg/configtest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func newService(t *testing.T) (*configtest.Server, []string) {
	t.Helper()

	key := uuid.NewString()
	srv := configtest.NewServer(t, configtest.Options{ClientID: "fnord", SharedKey: key})
	srv.AddEntries(map[string]any{
		"id":    "519bc51c9b9c05f772000001",
		"name":  "loglevel",
		"value": "error",
		"owner": "myclient",
	})
	return srv, []string{"--host", srv.URL, "--client-id", "fnord", "--shared-key", key}
}

func TestGetCommand(t *testing.T) {
	srv, creds := newService(t)

	out, err := run(t, append([]string{"get", "loglevel", "--app", "myapp:1.0.0", "--env", "production"}, creds...)...)
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "error", entries[0]["value"])

	require.Equal(t,
		"isActive=true&names=loglevel&associations=application%7Cmyapp%7C1.0.0&associations=environment%7Cproduction",
		srv.LastConfigQuery(),
	)
}

func TestGetCommandNotFound(t *testing.T) {
	_, creds := newService(t)

	_, err := run(t, append([]string{"get", "missing"}, creds...)...)

	var cerr *configsdk.ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, 404, cerr.StatusCode)
}

func TestTokenCommand(t *testing.T) {
	_, creds := newService(t)

	out, err := run(t, append([]string{"token"}, creds...)...)
	require.NoError(t, err)

	fields := strings.Split(strings.TrimSpace(out), "\t")
	require.Len(t, fields, 3)
	require.Len(t, fields[0], 12)
	require.Equal(t, "fnord", fields[1])
}

func TestKeygenCommand(t *testing.T) {
	out, err := run(t, "keygen")
	require.NoError(t, err)

	_, err = uuid.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
}

func TestParseAssociations(t *testing.T) {
	t.Parallel()

	assoc, err := parseAssociations(nil, nil)
	require.NoError(t, err)
	require.Nil(t, assoc)

	assoc, err = parseAssociations([]string{"myapp:1.0.0"}, []string{"production"})
	require.NoError(t, err)
	require.Equal(t, &configsdk.Associations{
		Applications: []configsdk.Application{{Name: "myapp", Version: "1.0.0"}},
		Environments: []string{"production"},
	}, assoc)

	for _, bad := range []string{"myapp", ":1.0.0", "myapp:"} {
		_, err := parseAssociations([]string{bad}, nil)
		require.Error(t, err, bad)
	}
}
