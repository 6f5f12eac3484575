// Package cli implements the configurine command.
package cli

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aussiebroadwan/configurine/pkg/configsdk"
	"github.com/aussiebroadwan/configurine/pkg/slogx"
)

type app struct {
	v          *viper.Viper
	configFile string

	cfg    Config
	logger *slog.Logger
	client *configsdk.Client
}

// NewRootCommand builds the configurine command tree. Each call has its own
// viper instance so commands can be built repeatedly in tests.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "configurine",
		Short:         "Query a Configurine configuration service",
		Version:       configsdk.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("host", "", "base URL of the service (CONFIGURINE_HOST)")
	flags.String("client-id", "", "client id (CONFIGURINE_CLIENT_ID)")
	flags.String("shared-key", "", "shared key (CONFIGURINE_SHARED_KEY)")
	flags.String("log-level", "", "debug, info, warn or error (CONFIGURINE_LOG_LEVEL)")
	flags.String("log-format", "", "json or text (CONFIGURINE_LOG_FORMAT)")
	flags.Duration("timeout", 0, "HTTP timeout (CONFIGURINE_TIMEOUT)")

	for key, flag := range map[string]string{
		"host":       "host",
		"client_id":  "client-id",
		"shared_key": "shared-key",
		"log_level":  "log-level",
		"log_format": "log-format",
		"timeout":    "timeout",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newGetCommand(a),
		newTokenCommand(a),
		newKeygenCommand(),
	)
	return root
}

// setup loads the configuration and builds the logger and client. It runs
// before the commands that talk to the service.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = slogx.New(slogx.Config{
		Service: "configurine",
		Version: configsdk.Version,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  cmd.ErrOrStderr(),
	})

	a.client, err = configsdk.NewClient(configsdk.Options{
		Host:      cfg.Host,
		ClientID:  cfg.ClientID,
		SharedKey: cfg.SharedKey,
	},
		configsdk.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		configsdk.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	cmd.SetContext(slogx.WithContext(contextOf(cmd), a.logger))
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
