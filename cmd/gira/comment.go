package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gira-cli/gira/internal/jira"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "List, add, and edit issue comments",
}

var commentListCmd = &cobra.Command{
	Use:   "list <key>",
	Short: "List comments on an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		comments, err := client.GetComments(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(comments)
		}

		for i := range comments {
			c := &comments[i]
			author := ""
			if c.Author != nil {
				author = c.Author.DisplayName
			}
			fmt.Printf("%s %s %s\n", styled(keyStyle, c.ID), styled(labelStyle, author), styled(labelStyle, c.Created))
			fmt.Print(renderMarkdown(jira.ADFToText(c.Body)))
			fmt.Println()
		}
		if len(comments) == 0 {
			fmt.Println(styled(labelStyle, "No comments"))
		}
		return nil
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <key> <text>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		comment, err := client.AddComment(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(comment)
		}
		fmt.Printf("Added comment %s to %s\n", comment.ID, styled(keyStyle, args[0]))
		return nil
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <key> <comment-id> <text>",
	Short: "Replace the body of an existing comment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		comment, err := client.EditComment(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(comment)
		}
		fmt.Printf("Updated comment %s on %s\n", comment.ID, styled(keyStyle, args[0]))
		return nil
	},
}

func init() {
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentEditCmd)
}
