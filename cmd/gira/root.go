package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gira-cli/gira/internal/config"
	"github.com/gira-cli/gira/internal/debug"
	"github.com/gira-cli/gira/internal/jira"
)

const version = "1.0.0"

var (
	jsonOutput bool
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "gira",
	Short:         "Issue tracker client for REST and legacy RPC transports",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		debug.SetVerbose(verbose)
		debug.SetQuiet(quiet)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("url", "", "base URL of the tracking service")
	flags.String("mode", "", "transport mode: rest or legacy")
	flags.String("user", "", "login username")
	flags.String("project", "", "default project key")
	flags.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")

	for _, name := range []string{"url", "mode", "user", "project"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(transitionsCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(metaCmd)
}

// loadSettings merges the config file, environment, and flags. Flags win.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("url"); v != "" {
		cfg.URL = v
	}
	if v := viper.GetString("mode"); v != "" {
		cfg.Mode = v
	}
	if v := viper.GetString("user"); v != "" {
		cfg.Username = v
	}
	if v := viper.GetString("project"); v != "" {
		cfg.Project = v
	}
	return cfg, nil
}

// newClient builds a jira.Client from the merged settings, with an
// interactive credential source backing lazy logins.
func newClient() (*jira.Client, *config.Config, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("no service URL configured (set --url, GIRA_URL, or url in %s)", config.Path())
	}

	client, err := jira.New(jira.Config{
		BaseURL:        cfg.URL,
		Mode:           jira.Mode(cfg.Mode),
		LegacyPath:     cfg.LegacyPath,
		CredentialHost: cfg.CredentialHost,
		Credentials:    &promptCredentials{username: cfg.Username},
	})
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// promptCredentials resolves the secret from GIRA_SECRET, falling back to
// an interactive prompt. Credentials are never written to disk.
type promptCredentials struct {
	username string
}

func (p *promptCredentials) Credentials(_ context.Context, host string) (string, string, error) {
	username := p.username
	secret := os.Getenv("GIRA_SECRET")
	if username != "" && secret != "" {
		return username, secret, nil
	}

	debug.PrintNormal("Authenticating against %s\n", host)

	fields := []huh.Field{}
	if username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(&username))
	}
	if secret == "" {
		fields = append(fields, huh.NewInput().
			Title("Password or API token").
			EchoMode(huh.EchoModePassword).
			Value(&secret))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return "", "", fmt.Errorf("credential prompt: %w", err)
	}
	return username, secret, nil
}

// outputJSON prints v as indented JSON on stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
