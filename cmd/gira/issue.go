package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gira-cli/gira/internal/jira"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Show, create, and update issues",
}

var issueShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a single issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		issue, err := client.GetIssue(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(issue)
		}
		printIssue(issue)
		return nil
	},
}

var (
	createSummary  string
	createType     string
	createPriority string
	createDesc     string
	createLabels   []string
)

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue in the default or given project",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		if cfg.Project == "" {
			return fmt.Errorf("no project configured (set --project or GIRA_PROJECT)")
		}
		if createSummary == "" {
			return fmt.Errorf("--summary is required")
		}

		fields := map[string]any{
			"project":   map[string]any{"key": cfg.Project},
			"summary":   createSummary,
			"issuetype": map[string]any{"name": createType},
		}
		if createPriority != "" {
			fields["priority"] = map[string]any{"name": createPriority}
		}
		if createDesc != "" {
			fields["description"] = jira.TextToADF(createDesc)
		}
		if len(createLabels) > 0 {
			fields["labels"] = createLabels
		}

		issue, err := client.CreateIssue(cmd.Context(), fields)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(issue)
		}
		fmt.Printf("Created %s: %s\n", styled(keyStyle, issue.Key), issue.Fields.Summary)
		return nil
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <key> <field=value>...",
	Short: "Update issue fields",
	Long: `Update issue fields from field=value pairs.

Known ref fields (priority, issuetype, assignee, resolution) are wrapped
in the name-object form the API expects; everything else is passed as a
plain string value.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		fields := make(map[string]any, len(args)-1)
		for _, pair := range args[1:] {
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("expected field=value, got %q", pair)
			}
			switch name {
			case "priority", "issuetype", "resolution":
				fields[name] = map[string]any{"name": value}
			case "assignee":
				fields[name] = map[string]any{"name": value}
			case "description":
				fields[name] = jira.TextToADF(value)
			default:
				fields[name] = value
			}
		}

		if err := client.UpdateIssue(cmd.Context(), args[0], fields); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", styled(keyStyle, args[0]))
		return nil
	},
}

func init() {
	issueCreateCmd.Flags().StringVarP(&createSummary, "summary", "s", "", "issue summary (required)")
	issueCreateCmd.Flags().StringVarP(&createType, "type", "t", "Task", "issue type name")
	issueCreateCmd.Flags().StringVarP(&createPriority, "priority", "p", "", "priority name")
	issueCreateCmd.Flags().StringVarP(&createDesc, "description", "d", "", "issue description")
	issueCreateCmd.Flags().StringSliceVarP(&createLabels, "label", "l", nil, "labels (repeatable)")

	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueUpdateCmd)
}

// printIssue renders one issue for the terminal.
func printIssue(issue *jira.Issue) {
	fmt.Printf("%s  %s\n", styled(keyStyle, issue.Key), issue.Fields.Summary)

	var meta []string
	if issue.Fields.Status != nil {
		meta = append(meta, "status: "+styled(statusStyle, issue.Fields.Status.Name))
	}
	if issue.Fields.IssueType != nil {
		meta = append(meta, "type: "+issue.Fields.IssueType.Name)
	}
	if issue.Fields.Priority != nil {
		meta = append(meta, "priority: "+issue.Fields.Priority.Name)
	}
	if issue.Fields.Assignee != nil {
		meta = append(meta, "assignee: "+issue.Fields.Assignee.DisplayName)
	}
	if issue.Fields.Resolution != nil {
		meta = append(meta, "resolution: "+issue.Fields.Resolution.Name)
	}
	if len(meta) > 0 {
		fmt.Println(styled(labelStyle, strings.Join(meta, "  ")))
	}

	if desc := jira.ADFToText(issue.Fields.Description); desc != "" {
		fmt.Println()
		fmt.Print(renderMarkdown(desc))
	}
}
