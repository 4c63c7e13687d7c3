// Package main re-evaluates journaled scenarios and verifies that stored
// verdicts match recomputation. A divergence means the evaluator changed
// behavior since the evaluation was journaled.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-arb-filter/internal/storage/migrations"
	pgstore "solana-arb-filter/internal/storage/postgres"
	"solana-arb-filter/internal/verification"
)

func main() {
	// Parse flags
	scenarioID := flag.String("scenario-id", "", "Verify a single scenario by ID")
	fromTime := flag.String("from-time", "", "Start time (RFC3339)")
	toTime := flag.String("to-time", "", "End time (RFC3339)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("postgres migrations: %v", err)
	}

	verifier := verification.NewVerifier(pgstore.NewEvaluationStore(pool))

	if *scenarioID != "" {
		result, err := verifier.VerifyEvaluation(ctx, *scenarioID)
		if err != nil {
			logger.Fatalf("verify %s: %v", *scenarioID, err)
		}
		printResults(*outputJSON, &verification.Report{
			Total:     1,
			Matched:   boolToInt(result.Match),
			Divergent: boolToInt(!result.Match),
			Results:   []verification.Result{*result},
		})
		if !result.Match {
			os.Exit(1)
		}
		return
	}

	start, end, err := parseTimeRange(*fromTime, *toTime)
	if err != nil {
		logger.Fatalf("parse time range: %v", err)
	}

	report, err := verifier.VerifyRange(ctx, start, end)
	if err != nil {
		logger.Fatalf("verify range: %v", err)
	}

	printResults(*outputJSON, report)
	if report.Divergent > 0 {
		os.Exit(1)
	}
}

// parseTimeRange converts optional RFC3339 bounds to Unix ms, defaulting to
// the full journal.
func parseTimeRange(from, to string) (int64, int64, error) {
	start := int64(0)
	end := time.Now().UnixMilli()

	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return 0, 0, fmt.Errorf("from-time: %w", err)
		}
		start = t.UnixMilli()
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return 0, 0, fmt.Errorf("to-time: %w", err)
		}
		end = t.UnixMilli()
	}

	return start, end, nil
}

// printResults writes the report to stdout.
func printResults(asJSON bool, report *verification.Report) {
	if asJSON {
		json.NewEncoder(os.Stdout).Encode(report)
		return
	}

	fmt.Printf("Verified %d evaluations: %d matched, %d divergent\n",
		report.Total, report.Matched, report.Divergent)
	for _, r := range report.Results {
		if r.Match {
			continue
		}
		fmt.Printf("  %s:\n", r.ScenarioID)
		for _, d := range r.Divergences {
			fmt.Printf("    %s: stored %v, replayed %v\n", d.Field, d.Expected, d.Actual)
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
