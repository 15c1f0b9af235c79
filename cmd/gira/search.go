package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gira-cli/gira/internal/jira"
	"github.com/gira-cli/gira/internal/timeparsing"
)

var (
	searchMax   int
	searchState string
	searchSince string
)

var searchCmd = &cobra.Command{
	Use:   "search [jql]",
	Short: "Search issues with JQL or filter flags",
	Long: `Search issues. With a JQL argument the query is passed through
verbatim; otherwise one is assembled from the configured project and the
--state/--since filters.

--since accepts compact durations (-2w), dates (2026-01-15), and natural
language ("3 days ago").`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		var jql string
		if len(args) == 1 {
			jql = args[0]
		} else {
			filter := jira.JQLFilter{Project: cfg.Project, State: searchState}
			if searchSince != "" {
				since, err := timeparsing.Parse(searchSince, time.Now())
				if err != nil {
					return err
				}
				filter.Since = &since
			}
			jql = filter.JQL()
		}

		issues, err := client.SearchIssues(cmd.Context(), jql, searchMax)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(issues)
		}

		for i := range issues {
			issue := &issues[i]
			status := ""
			if issue.Fields.Status != nil {
				status = styled(statusStyle, issue.Fields.Status.Name)
			}
			fmt.Printf("%-12s %-14s %s\n", styled(keyStyle, issue.Key), status, issue.Fields.Summary)
		}
		if len(issues) == 0 {
			fmt.Println(styled(labelStyle, "No matching issues"))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchMax, "max", "m", 50, "maximum number of results")
	searchCmd.Flags().StringVar(&searchState, "state", "", "filter by state: open or closed")
	searchCmd.Flags().StringVar(&searchSince, "since", "", "only issues updated since this time")
}
