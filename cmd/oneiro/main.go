// Package main provides the entry point for the oneiro CLI.
package main

import (
	"fmt"
	"os"

	"github.com/oneiro-ai/oneiro/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
