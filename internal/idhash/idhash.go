// Package idhash computes deterministic scenario identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"solana-arb-filter/internal/domain"
)

// ComputeScenarioID computes a deterministic scenario_id using SHA256 over
// the canonical decimal form of every numeric field plus the optional
// routing metadata. Identical requests always hash to the same ID, which
// makes the journal idempotent.
// Returns hex-encoded hash (64 characters).
func ComputeScenarioID(req *domain.ScenarioRequest) string {
	data := strings.Join([]string{
		req.AmountIn.String(),
		req.Quote1Out.String(),
		req.Quote1MinOut.String(),
		req.Quote2Out.String(),
		req.Quote2MinOut.String(),
		req.MinProfit.String(),
		req.FeeEstimate.String(),
		req.Mint,
		req.Pool,
	}, "|")

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
