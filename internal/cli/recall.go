package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/oneiro-ai/oneiro/internal/retrieval"
	"github.com/spf13/cobra"
)

var recallCmd = &cobra.Command{
	Use:   "recall <title>",
	Short: "Recall one dream by title",
	Long: `Look up a single dream entry by its title.

Matching is exact first, then fuzzy: close titles still resolve, and a
miss suggests the nearest ones. When several entries share the title
(recurring dreams), the most recently indexed one is shown.

Examples:
  oneiro recall "Falling Through Water"
  oneiro recall "falling through watr"`,
	Args: cobra.ExactArgs(1),
	RunE: runRecall,
}

func runRecall(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	project := currentProject()

	entries, err := dbClient.ListEntries(ctx, project)
	if err != nil {
		return fmt.Errorf("list dreams: %w", err)
	}

	matcher := retrieval.TitleMatcher{Threshold: cfg.TitleThreshold}
	result := matcher.Match(args[0], entries)

	if len(result.Items) == 0 {
		for _, note := range result.Notes {
			fmt.Println(note)
		}
		return nil
	}

	entry := result.Items[0]
	fmt.Println(promptStyle.Render(entry.Title))
	if !entry.IndexedAt.IsZero() {
		fmt.Println(noteStyle.Render("indexed " + entry.IndexedAt.Format("2006-01-02 15:04")))
	}
	if len(entry.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(entry.Tags, ", "))
	}
	if len(entry.KeyEntities) > 0 {
		fmt.Printf("Entities: %s\n", strings.Join(entry.KeyEntities, ", "))
	}
	fmt.Println()
	fmt.Println(entry.Summary)

	if result.Confidence != nil && *result.Confidence < 1 {
		fmt.Println()
		fmt.Println(noteStyle.Render(fmt.Sprintf("(fuzzy match, similarity %.2f)", *result.Confidence)))
	}
	return nil
}
