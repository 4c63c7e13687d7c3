package domain

import "math/big"

// Evaluation is the journaled form of one evaluated scenario.
// Corresponds to the evaluations table in PostgreSQL. Amounts are stored as
// decimal text to preserve full 128-bit precision through the database.
type Evaluation struct {
	ScenarioID         string  // PRIMARY KEY, deterministic hash of the request
	AmountIn           string  // decimal text
	Quote1Out          string  // decimal text
	Quote1MinOut       string  // decimal text
	Quote2Out          string  // decimal text
	Quote2MinOut       string  // decimal text
	MinProfit          string  // decimal text
	FeeEstimate        string  // decimal text
	Profit             string  // decimal text
	ConservativeProfit string  // decimal text
	Profitable         bool    // conservative profit cleared the threshold
	Mint               *string // token mint address (nullable)
	Pool               *string // pool address (nullable)
	EvaluatedAt        int64   // Unix timestamp in milliseconds
	CreatedAt          int64   // record creation timestamp (ms)
}

// VerdictPoint is one analytics row per evaluation.
// Corresponds to the verdict_points table in ClickHouse (Int128 columns).
type VerdictPoint struct {
	ScenarioID         string
	TimestampMs        int64 // evaluation time, Unix ms
	Profitable         bool
	Profit             *big.Int
	ConservativeProfit *big.Int
	AmountIn           *big.Int
	FeeEstimate        *big.Int
}
