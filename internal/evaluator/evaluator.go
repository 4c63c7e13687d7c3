// Package evaluator computes the profitability verdict for a decoded trade
// scenario. Evaluation is a pure function over exact integers: no I/O, no
// state shared between scenarios.
package evaluator

import (
	"errors"
	"fmt"
	"math/big"

	"solana-arb-filter/internal/domain"
)

// ErrOverflow is returned when an arithmetic result leaves the supported
// 128-bit range. The inputs are individually range-checked at decode time,
// so a sum of three of them can exceed the range by at most two bits; the
// result is rejected rather than silently wrapped.
var ErrOverflow = errors.New("arithmetic overflow beyond 128-bit range")

// Evaluate computes the verdict for one scenario.
//
//	profit             = quote2Out    - amountIn - feeEstimate
//	conservativeProfit = quote2MinOut - amountIn - feeEstimate
//	profitable         = conservativeProfit >= minProfit
//
// The comparison deliberately uses the conservative figure: a scenario is
// declared profitable only if its worst-case outcome clears the threshold.
// Quote1Out and Quote1MinOut do not participate; they are validated upstream
// and carried for the caller's own leg-1 checks.
func Evaluate(req *domain.ScenarioRequest) (*domain.Verdict, error) {
	profit, err := netProfit(req.Quote2Out, req.AmountIn, req.FeeEstimate)
	if err != nil {
		return nil, fmt.Errorf("profit: %w", err)
	}

	conservative, err := netProfit(req.Quote2MinOut, req.AmountIn, req.FeeEstimate)
	if err != nil {
		return nil, fmt.Errorf("conservative profit: %w", err)
	}

	return &domain.Verdict{
		Profitable:         conservative.Cmp(req.MinProfit) >= 0,
		Profit:             profit,
		ConservativeProfit: conservative,
	}, nil
}

// netProfit computes out - in - fee with an explicit range check.
func netProfit(out, in, fee *big.Int) (*big.Int, error) {
	v := new(big.Int).Sub(out, in)
	v.Sub(v, fee)
	if !domain.FitsInt128(v) {
		return nil, ErrOverflow
	}
	return v, nil
}
