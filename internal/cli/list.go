package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	listPending bool
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List dreams or conversations",
	Long: `List indexed dream entries in the current project.

Subcommands:
  dreams         List dream entries (default)
  conversations  List past chat sessions

Examples:
  oneiro list
  oneiro list --pending
  oneiro list conversations`,
	RunE: runListDreams,
}

var listDreamsCmd = &cobra.Command{
	Use:   "dreams",
	Short: "List dream entries",
	RunE:  runListDreams,
}

var listConversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List past chat sessions",
	RunE:  runListConversations,
}

func init() {
	listCmd.Flags().BoolVar(&listPending, "pending", false, "only entries awaiting embedding backfill")
	listDreamsCmd.Flags().BoolVar(&listPending, "pending", false, "only entries awaiting embedding backfill")
	listConversationsCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max results")

	listCmd.AddCommand(listDreamsCmd)
	listCmd.AddCommand(listConversationsCmd)
}

func runListDreams(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	project := currentProject()

	entries, err := dbClient.ListEntries(ctx, project)
	if err != nil {
		return fmt.Errorf("list dreams: %w", err)
	}
	if listPending {
		entries, err = dbClient.ListEntriesMissingEmbedding(ctx, project)
		if err != nil {
			return fmt.Errorf("list pending dreams: %w", err)
		}
	}

	if len(entries) == 0 {
		fmt.Println("No dreams found.")
		return nil
	}

	fmt.Printf("Dreams in %s (%d):\n\n", project, len(entries))
	for _, entry := range entries {
		mark := ""
		if !entry.HasEmbedding() {
			mark = noteStyle.Render(" [unindexed]")
		}
		fmt.Printf("- %s  %s%s\n", entry.IndexedAt.Format("2006-01-02"), entry.Title, mark)
		if verbose && entry.Summary != "" {
			fmt.Printf("  %s\n", firstLine(entry.Summary))
		}
	}
	return nil
}

func runListConversations(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	project := currentProject()

	conversations, err := dbClient.ListConversations(ctx, project, listLimit)
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations yet.")
		return nil
	}

	fmt.Printf("Conversations (%d):\n\n", len(conversations))
	for _, conv := range conversations {
		fmt.Printf("- %s  %s\n", conv.UpdatedAt.Format("2006-01-02 15:04"), conv.Title)
	}
	return nil
}
