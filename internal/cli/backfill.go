package cli

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed journal entries that are not yet indexed",
	Long: `Generate embeddings for dream entries imported without them.

Runs through every unindexed entry in the current project; entries whose
embedding call fails are skipped and reported, so one bad entry cannot
stall the rest.

Examples:
  oneiro backfill
  oneiro backfill -p night-log`,
	RunE: runBackfill,
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, indexer, err := getServices(ctx, true)
	if err != nil {
		return err
	}

	program := tea.NewProgram(newBackfillModel(cancel))

	go func() {
		result, err := indexer.BackfillEmbeddings(ctx, currentProject(), func(done, total int, title string) {
			program.Send(advanceMsg{done: done, total: total, title: title})
		})
		program.Send(finishedMsg{result: result, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run progress display: %w", err)
	}

	if m, ok := final.(backfillModel); ok && m.err != nil && !m.quitting {
		return m.err
	}
	return nil
}
