package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gira-cli/gira/internal/jira"
)

var metaKinds = map[string]jira.RefKind{
	"statuses":    jira.RefStatus,
	"priorities":  jira.RefPriority,
	"types":       jira.RefIssueType,
	"subtasks":    jira.RefSubtaskType,
	"resolutions": jira.RefResolution,
	"projects":    jira.RefProject,
	"filters":     jira.RefFilter,
}

var metaCmd = &cobra.Command{
	Use:       "meta <kind>",
	Short:     "List server metadata (statuses, priorities, types, resolutions, projects, filters)",
	ValidArgs: []string{"statuses", "priorities", "types", "subtasks", "resolutions", "projects", "filters"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		mapping, err := client.Ref(cmd.Context(), metaKinds[args[0]])
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(mapping)
		}

		ids := make([]string, 0, len(mapping))
		for id := range mapping {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("%-12s %s\n", styled(keyStyle, id), mapping[id])
		}
		return nil
	},
}
