package codec

import (
	"encoding/json"
	"fmt"

	"solana-arb-filter/internal/domain"
)

// wireResponse is the on-the-wire shape of a verdict. The two profit figures
// are serialized as decimal strings to survive transports whose native
// numeric literal cannot hold full-width integers.
type wireResponse struct {
	Profitable         bool   `json:"profitable"`
	Profit             string `json:"profit"`
	ConservativeProfit string `json:"conservativeProfit"`
}

// Encode serializes a verdict as a single-line JSON object without a
// trailing newline. It cannot fail for verdicts produced by the evaluator;
// an error here indicates an internal defect and is fatal to the caller.
func Encode(v *domain.Verdict) ([]byte, error) {
	out, err := json.Marshal(wireResponse{
		Profitable:         v.Profitable,
		Profit:             v.Profit.String(),
		ConservativeProfit: v.ConservativeProfit.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode verdict: %w", err)
	}
	return out, nil
}
