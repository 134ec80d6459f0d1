// Package main is the entry point for the runaway-guard CLI/TUI/tray.
package main

import (
	"os"

	"github.com/runaway-guard/runaway-guard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
