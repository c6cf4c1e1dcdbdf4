package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/cmd/streaming-agent/internal"
)

func main() {
	// Panic recovery keeps unexpected failures from dumping a raw
	// stack at users unless they asked for one.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			if internal.IsVerbose() {
				fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			} else {
				fmt.Fprintln(os.Stderr, "Run with --verbose for stack trace")
			}
			os.Exit(internal.ExitError)
		}
	}()

	ctx := context.Background()

	// Execute handles signal notification internally via signal.NotifyContext
	if err := Execute(ctx); err != nil {
		exitCode := internal.HandleError(rootCmd, err)
		os.Exit(exitCode)
	}

	os.Exit(internal.ExitSuccess)
}
