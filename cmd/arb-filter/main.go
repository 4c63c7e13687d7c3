// Package main provides the arb profitability filter: a line-oriented
// stdin/stdout process. Each input line is one trade scenario; each output
// line is one verdict, emitted in input order. The first malformed record or
// transport fault terminates the process with a non-zero exit code; the
// orchestrator that feeds the filter is expected to supervise and restart it.
//
// The binary deliberately has no flag surface and no persisted state.
package main

import (
	"context"
	"log"
	"os"

	"solana-arb-filter/internal/filter"
)

func main() {
	logger := log.New(os.Stderr, "[arb-filter] ", log.LstdFlags)

	runner := filter.NewRunner(filter.RunnerOptions{
		In:     os.Stdin,
		Out:    os.Stdout,
		Logger: logger,
	})

	if err := runner.Run(context.Background()); err != nil {
		logger.Printf("fatal: %v", err)
		os.Exit(1)
	}
}
