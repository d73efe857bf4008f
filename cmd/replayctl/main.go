// Package main is the entry point for the replayctl CLI.
package main

import (
	"os"

	"github.com/annel0/session-replay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
