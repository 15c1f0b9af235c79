package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gira-cli/gira/internal/jira"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Establish a session against the configured service",
	Long: `Establish a session against the configured service.

In REST mode this verifies the credential by fetching the current user's
project list; in legacy mode the login RPC itself is the verification.
The secret is read from GIRA_SECRET or prompted for, and is never stored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		ctx := cmd.Context()
		session, err := client.EnsureSession(ctx)
		if err != nil {
			return err
		}

		// A stateless REST credential commits without a round trip;
		// exercise it once so bad credentials fail here, not later.
		if _, err := client.Ref(ctx, jira.RefProject); err != nil {
			return fmt.Errorf("session established but not usable: %w", err)
		}

		if jsonOutput {
			return outputJSON(map[string]any{
				"principal":   session.Principal,
				"mode":        string(session.Mode),
				"web_session": session.WebSessionEstablished,
			})
		}

		fmt.Printf("Logged in as %s (%s mode)\n", styled(keyStyle, session.Principal), session.Mode)
		if !session.WebSessionEstablished {
			fmt.Println(styled(warnStyle, "Web session unavailable: issue linking will not work"))
		}
		return nil
	},
}
