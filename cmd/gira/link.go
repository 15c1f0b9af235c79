package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var linkType string

var linkCmd = &cobra.Command{
	Use:   "link <from-key> <to-id>",
	Short: "Link two issues (best-effort, unconfirmed)",
	Long: `Link two issues through the web UI fallback.

Neither API transport exposes issue linking, so this goes through a
cookie-authenticated form POST. Success means only that the service
accepted the request; the link itself is not confirmed. Requires a web
session, which is established as part of login.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		if !session.WebSessionEstablished {
			return fmt.Errorf("no web session available; linking requires the web fallback")
		}

		if err := client.LinkIssues(ctx, linkType, args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("Link request for %s accepted %s\n",
			styled(keyStyle, args[0]),
			styled(warnStyle, "(unconfirmed: verify in the issue view)"))
		return nil
	},
}

func init() {
	linkCmd.Flags().StringVarP(&linkType, "type", "t", "relates to", "link type description")
}
