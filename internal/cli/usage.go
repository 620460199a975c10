package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/oneiro-ai/oneiro/internal/models"
	"github.com/spf13/cobra"
)

var (
	usageSince    string
	usageDetailed bool
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage statistics",
	Long: `Show persisted token usage for cost monitoring.

Counts come from the rows written after each chat turn, including
interrupted ones when the provider reported usage for them.

Examples:
  oneiro usage
  oneiro usage --since 7d
  oneiro usage --detailed`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVar(&usageSince, "since", "24h", "time period (e.g., '24h', '7d', '30d')")
	usageCmd.Flags().BoolVar(&usageDetailed, "detailed", false, "show per-model breakdown")
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	since, err := parseSince(usageSince)
	if err != nil {
		return err
	}

	rows, err := dbClient.UsageSince(ctx, since)
	if err != nil {
		return fmt.Errorf("get token usage: %w", err)
	}

	var total models.UsageRecord
	var interrupted int64
	byModel := make(map[string]*models.UsageRecord)
	for _, row := range rows {
		total.PromptTokens += row.PromptTokens
		total.CompletionTokens += row.CompletionTokens
		total.CallCount++
		if row.Interrupted {
			interrupted++
		}

		rec := byModel[row.ModelID]
		if rec == nil {
			rec = &models.UsageRecord{ModelID: row.ModelID}
			byModel[row.ModelID] = rec
		}
		rec.PromptTokens += row.PromptTokens
		rec.CompletionTokens += row.CompletionTokens
		rec.CallCount++
	}

	fmt.Printf("Token Usage (since %s)\n", usageSince)
	fmt.Printf("═══════════════════════════════════════\n\n")
	fmt.Printf("Turns:       %d (%d interrupted)\n", total.CallCount, interrupted)
	fmt.Printf("Prompt:      %d tokens\n", total.PromptTokens)
	fmt.Printf("Completion:  %d tokens\n", total.CompletionTokens)
	fmt.Printf("Total:       %d tokens\n", total.TotalTokens())

	if usageDetailed && len(byModel) > 0 {
		fmt.Printf("\nBy Model:\n")
		for modelID, rec := range byModel {
			pct := 0.0
			if total.TotalTokens() > 0 {
				pct = float64(rec.TotalTokens()) / float64(total.TotalTokens()) * 100
			}
			fmt.Printf("  %-25s %10d (%5.1f%%) over %d turns\n", modelID, rec.TotalTokens(), pct, rec.CallCount)
		}
	}

	return nil
}

// parseSince turns "24h" / "7d" / "30d" or any Go duration into a
// cutoff time.
func parseSince(s string) (time.Time, error) {
	switch s {
	case "24h":
		return time.Now().Add(-24 * time.Hour), nil
	case "7d":
		return time.Now().Add(-7 * 24 * time.Hour), nil
	case "30d":
		return time.Now().Add(-30 * 24 * time.Hour), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration: %s", s)
	}
	return time.Now().Add(-d), nil
}
