package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/oneiro-ai/oneiro/internal/models"
	"github.com/spf13/cobra"
)

var (
	searchKeyword bool
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the dream journal",
	Long: `Search dreams by theme or pattern using semantic similarity.

The query is embedded and matched against indexed entries; results are
ordered by similarity. Use --keyword to skip embeddings and run a plain
full-text search over summaries instead.

Examples:
  oneiro search "recurring dreams about water"
  oneiro search "being chased" -n 10
  oneiro search --keyword "teeth"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchKeyword, "keyword", false, "full-text search instead of semantic")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "max results (default top_k)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]
	project := currentProject()

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.TopK
	}

	if searchKeyword {
		assistant, _, err := getServices(ctx, false)
		if err != nil {
			return err
		}
		entries, err := assistant.SearchKeywords(ctx, query, project, limit)
		if err != nil {
			return fmt.Errorf("keyword search: %w", err)
		}
		printEntries(entries, nil)
		return nil
	}

	assistant, _, err := getServices(ctx, true)
	if err != nil {
		return err
	}

	result, err := assistant.Retrieve(ctx, query, project)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	for _, note := range result.Notes {
		fmt.Println(noteStyle.Render(note))
	}
	if result.Degraded {
		fmt.Println(noteStyle.Render("(results from keyword fallback)"))
	}
	printEntries(result.Items, result.Confidence)
	return nil
}

// printEntries renders a result list, with summaries when verbose.
func printEntries(entries []models.DreamEntry, confidence *float64) {
	if len(entries) == 0 {
		fmt.Println("No dreams found.")
		return
	}

	fmt.Printf("Dreams (%d):\n\n", len(entries))
	for i, entry := range entries {
		marker := "-"
		if i == 0 && confidence != nil {
			marker = fmt.Sprintf("%.2f", *confidence)
		}
		indexed := ""
		if !entry.IndexedAt.IsZero() {
			indexed = " " + entry.IndexedAt.Format("2006-01-02")
		}
		fmt.Printf("%s %s%s\n", marker, entry.Title, noteStyle.Render(indexed))
		if verbose {
			if entry.Summary != "" {
				fmt.Printf("  %s\n", firstLine(entry.Summary))
			}
			if len(entry.Tags) > 0 {
				fmt.Printf("  Tags: %s\n", strings.Join(entry.Tags, ", "))
			}
		}
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
