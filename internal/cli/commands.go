package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/configurine/pkg/configsdk"
	"github.com/aussiebroadwan/configurine/pkg/cryptox"
)

func newGetCommand(a *app) *cobra.Command {
	var (
		apps []string
		envs []string
	)

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print the active entries with the given name",
		Example: `  configurine get loglevel
  configurine get loglevel --app myapp:1.0.0 --env production`,
		Args:    cobra.ExactArgs(1),
		PreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			assoc, err := parseAssociations(apps, envs)
			if err != nil {
				return err
			}

			var opts *configsdk.GetOptions
			if assoc != nil {
				opts = &configsdk.GetOptions{Associations: assoc}
			}

			entries, err := a.client.GetConfigByName(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("encode entries: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringArrayVar(&apps, "app", nil, "application filter as name:version (repeatable)")
	cmd.Flags().StringArrayVar(&envs, "env", nil, "environment filter (repeatable)")
	return cmd
}

// parseAssociations turns name:version and environment flags into a filter.
// It returns nil when no filter was given.
func parseAssociations(apps, envs []string) (*configsdk.Associations, error) {
	if len(apps) == 0 && len(envs) == 0 {
		return nil, nil
	}

	assoc := &configsdk.Associations{Environments: envs}
	for _, a := range apps {
		name, version, ok := strings.Cut(a, ":")
		if !ok || name == "" || version == "" {
			return nil, fmt.Errorf("invalid --app %q: expected name:version", a)
		}
		assoc.Applications = append(assoc.Applications, configsdk.Application{Name: name, Version: version})
	}
	return assoc, nil
}

func newTokenCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "token",
		Short:   "Acquire an access token and print its fingerprint and expiry",
		Args:    cobra.NoArgs,
		PreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := a.client.Token(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
				cryptox.FingerprintToken(tok.Value),
				tok.Owner,
				tok.ExpiresAt.UTC().Format(time.RFC3339),
			)
			return err
		},
	}
}

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new random shared key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), uuid.NewString())
			return err
		},
	}
}
