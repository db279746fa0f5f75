// Package main provides the entry point for the stocksync CLI tool.
package main

import (
	"context"
	"os"

	"github.com/Kirkidoo/Sync-Stock/cmd/stocksync/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	// Cancel the run on SIGINT/SIGTERM so partial progress is reported
	// instead of the process dying mid-batch.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}
