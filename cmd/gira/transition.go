package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var transitionsCmd = &cobra.Command{
	Use:   "transitions <key>",
	Short: "List the workflow actions available on an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		transitions, err := client.GetTransitions(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(transitions)
		}

		for _, t := range transitions {
			target := ""
			if t.To != nil {
				target = styled(labelStyle, "→ "+t.To.Name)
			}
			fmt.Printf("%-6s %-24s %s\n", styled(keyStyle, t.ID), t.Name, target)
		}
		return nil
	},
}

var moveResolution string

var moveCmd = &cobra.Command{
	Use:   "move <key> <transition>",
	Short: "Execute a workflow transition by id or name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		ctx := cmd.Context()
		key, want := args[0], args[1]

		// Accept a transition name as well as an id.
		transitionID := want
		transitions, err := client.GetTransitions(ctx, key)
		if err != nil {
			return err
		}
		for _, t := range transitions {
			if strings.EqualFold(t.Name, want) {
				transitionID = t.ID
				break
			}
		}

		var fields map[string]any
		if moveResolution != "" {
			fields = map[string]any{"resolution": map[string]any{"name": moveResolution}}
		}

		if err := client.DoTransition(ctx, key, transitionID, fields); err != nil {
			return err
		}
		fmt.Printf("Moved %s via transition %s\n", styled(keyStyle, key), transitionID)
		return nil
	},
}

func init() {
	moveCmd.Flags().StringVar(&moveResolution, "resolution", "", "resolution to set with the transition")
}
