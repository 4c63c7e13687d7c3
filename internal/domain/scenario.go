package domain

import "math/big"

// Int128 range bounds. All monetary values in the system must fit in a
// signed 128-bit integer; anything wider is rejected at the boundary.
var (
	MinInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	MaxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// FitsInt128 reports whether v is within [-2^127, 2^127-1].
func FitsInt128(v *big.Int) bool {
	return v.Cmp(MinInt128) >= 0 && v.Cmp(MaxInt128) <= 0
}

// ScenarioRequest is one decoded trade scenario: a two-leg round trip
// (quote1 buys, quote2 sells back) plus the caller's profitability threshold.
// All amounts are exact integers in the input token's base units (lamports
// for SOL-denominated scenarios). Quote1Out and Quote1MinOut are carried for
// leg-1 validation by the caller but do not enter the profit formulas.
type ScenarioRequest struct {
	AmountIn     *big.Int // amount committed to leg 1
	Quote1Out    *big.Int // nominal leg-1 output
	Quote1MinOut *big.Int // worst-case leg-1 output
	Quote2Out    *big.Int // nominal leg-2 output (final proceeds)
	Quote2MinOut *big.Int // worst-case leg-2 output
	MinProfit    *big.Int // minimum acceptable conservative profit, may be negative
	FeeEstimate  *big.Int // total estimated fee, same base units as AmountIn

	// Optional routing metadata, passed through for journaling only.
	Mint string // token mint address (base58), may be empty
	Pool string // pool address (base58), may be empty
}

// Verdict is the profitability decision for one scenario.
// Profitable compares the conservative figure against MinProfit: a scenario
// only passes if its worst-case outcome still clears the threshold.
type Verdict struct {
	Profitable         bool
	Profit             *big.Int // Quote2Out - AmountIn - FeeEstimate
	ConservativeProfit *big.Int // Quote2MinOut - AmountIn - FeeEstimate
}
