package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var importNoEmbed bool

var importCmd = &cobra.Command{
	Use:   "import <journal.md>",
	Short: "Import a Markdown dream journal",
	Long: `Import dream entries from a Markdown journal file.

Each second-level heading becomes one entry; "Tags:" and "Entities:"
lines under a heading become structured fields, the rest is the entry's
summary. Optional YAML frontmatter sets the project and shared tags.

Entries are embedded during import unless --no-embed is given; entries
left unembedded can be indexed later with 'oneiro backfill'.

Examples:
  oneiro import dreams/2026-08.md
  oneiro import dreams/2026-08.md --no-embed
  oneiro import dreams/2026-08.md -p night-log`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importNoEmbed, "no-embed", false, "store entries without embeddings")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, indexer, err := getServices(ctx, !importNoEmbed)
	if err != nil {
		return err
	}

	result, err := indexer.ImportJournal(ctx, args[0], currentProject())
	if err != nil {
		return fmt.Errorf("import journal: %w", err)
	}

	fmt.Printf("Imported %d entries (%d embedded).\n", result.EntriesCreated, result.Embedded)
	if len(result.Errors) > 0 {
		fmt.Println(errStyle.Render(fmt.Sprintf("Warnings (%d):", len(result.Errors))))
		for _, e := range result.Errors {
			fmt.Printf("  • %s\n", e)
		}
	}
	if result.EntriesCreated > result.Embedded {
		fmt.Println(noteStyle.Render("Run 'oneiro backfill' to index the remaining entries."))
	}
	return nil
}
