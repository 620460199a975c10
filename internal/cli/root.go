// Package cli provides the command-line interface for oneiro.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/oneiro-ai/oneiro/internal/config"
	"github.com/oneiro-ai/oneiro/internal/db"
	"github.com/oneiro-ai/oneiro/internal/llm"
	"github.com/oneiro-ai/oneiro/internal/service"
	"github.com/oneiro-ai/oneiro/internal/stream"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose     bool
	projectFlag string

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client

	// Lazy-initialized LLM components
	embedder *llm.Embedder
	model    *llm.Model

	// In-process usage accounting, reset at startup.
	tracker = stream.NewUsageTracker()

	closeLogger func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "oneiro",
	Short: "Dream journal retrieval assistant",
	Long: `Oneiro is a dream-journal assistant: it indexes your recorded dreams,
retrieves the ones relevant to what you ask, and streams grounded
interpretations from a local or hosted LLM.

Quote a dream's title to recall that exact entry; describe a theme or
pattern to search the whole journal semantically.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, closeFn := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		closeLogger = closeFn

		ctx := context.Background()
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLogger != nil {
			_ = closeLogger()
		}
	},
}

// getServices creates services with lazy LLM initialization. Commands
// that only read the journal pass requireLLM=false and never touch the
// embedding or completion backends.
func getServices(ctx context.Context, requireLLM bool) (*service.AssistantService, *service.IndexerService, error) {
	if requireLLM && embedder == nil {
		var err error
		embedder, err = llm.NewEmbedder(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init embedder: %w", err)
		}
		model, err = llm.NewModel(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init model: %w", err)
		}
	}

	return service.NewAssistantService(dbClient, embedder, model, tracker, cfg),
		service.NewIndexerService(dbClient, embedder, cfg), nil
}

// currentProject resolves the project scope: flag over config default.
func currentProject() string {
	if projectFlag != "" {
		return projectFlag
	}
	return cfg.DefaultProject
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "journal project scope")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(versionCmd)
}
