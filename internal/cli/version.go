package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the build version. It runs without touching the
// database: the root PersistentPreRunE skips setup for it.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the oneiro version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("oneiro %s\n", Version)
	},
}
