// Package codec implements the line protocol for trade scenarios: one JSON
// object per line, every amount transmitted as a decimal string and converted
// to an exact integer at the boundary. No value ever passes through a float.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"solana-arb-filter/internal/domain"
)

// Decode sentinel errors, wrapped inside DecodeError.
var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidInteger is returned when a field is not a well-formed
	// base-10 signed integer.
	ErrInvalidInteger = errors.New("invalid integer")

	// ErrOutOfRange is returned when a value does not fit in a signed
	// 128-bit integer.
	ErrOutOfRange = errors.New("value out of 128-bit range")

	// ErrConflictingFee is returned when both accepted fee field spellings
	// are present in one record.
	ErrConflictingFee = errors.New("conflicting fee fields")
)

// Canonical field name of the fee estimate; FeeFieldAlias is accepted on
// input for backward compatibility with lamports-denominated callers.
const (
	FeeField      = "feeEstimateInInputUnits"
	FeeFieldAlias = "feeEstimateLamports"
)

// DecodeError reports a malformed scenario record. Field is empty for
// structural failures (the line is not a well-formed object of the expected
// shape); otherwise it names the offending numeric field.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode scenario: %v", e.Err)
	}
	return fmt.Sprintf("decode scenario: field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// wireRequest is the on-the-wire shape of a scenario record. Every numeric
// field is a string pointer so that absence is distinguishable from an empty
// value.
type wireRequest struct {
	AmountIn            *string `json:"amountIn"`
	Quote1Out           *string `json:"quote1Out"`
	Quote1MinOut        *string `json:"quote1MinOut"`
	Quote2Out           *string `json:"quote2Out"`
	Quote2MinOut        *string `json:"quote2MinOut"`
	MinProfit           *string `json:"minProfit"`
	FeeEstimate         *string `json:"feeEstimateInInputUnits"`
	FeeEstimateLamports *string `json:"feeEstimateLamports"`

	// Optional routing metadata, not part of the profit formulas.
	Mint string `json:"mint,omitempty"`
	Pool string `json:"pool,omitempty"`
}

// ParseInt128 parses s as a base-10 signed integer within the 128-bit range.
// Fractions, exponent notation and surrounding whitespace are all rejected.
func ParseInt128(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInteger, s)
	}
	if !domain.FitsInt128(v) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}
	return v, nil
}

// Decode parses one line of text into a ScenarioRequest.
// A failure is a *DecodeError; per the protocol contract it is fatal to the
// caller, not a per-record skip.
func Decode(line []byte) (*domain.ScenarioRequest, error) {
	var wire wireRequest
	if err := json.Unmarshal(line, &wire); err != nil {
		return nil, &DecodeError{Err: err}
	}

	// Resolve the fee alias once, before numeric parsing. Exactly one of
	// the two accepted spellings must be present.
	fee := wire.FeeEstimate
	switch {
	case wire.FeeEstimate != nil && wire.FeeEstimateLamports != nil:
		return nil, &DecodeError{Field: FeeField, Err: ErrConflictingFee}
	case wire.FeeEstimate == nil && wire.FeeEstimateLamports == nil:
		return nil, &DecodeError{Field: FeeField, Err: ErrMissingField}
	case fee == nil:
		fee = wire.FeeEstimateLamports
	}

	req := &domain.ScenarioRequest{Mint: wire.Mint, Pool: wire.Pool}

	fields := []struct {
		name  string
		value *string
		dst   **big.Int
	}{
		{"amountIn", wire.AmountIn, &req.AmountIn},
		{"quote1Out", wire.Quote1Out, &req.Quote1Out},
		{"quote1MinOut", wire.Quote1MinOut, &req.Quote1MinOut},
		{"quote2Out", wire.Quote2Out, &req.Quote2Out},
		{"quote2MinOut", wire.Quote2MinOut, &req.Quote2MinOut},
		{"minProfit", wire.MinProfit, &req.MinProfit},
		{FeeField, fee, &req.FeeEstimate},
	}

	for _, f := range fields {
		if f.value == nil {
			return nil, &DecodeError{Field: f.name, Err: ErrMissingField}
		}
		v, err := ParseInt128(*f.value)
		if err != nil {
			return nil, &DecodeError{Field: f.name, Err: err}
		}
		*f.dst = v
	}

	return req, nil
}
