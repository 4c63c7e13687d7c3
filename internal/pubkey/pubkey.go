// Package pubkey validates Solana account addresses carried as optional
// scenario metadata before they reach the journal.
package pubkey

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned when a string is not a valid base58-encoded
// 32-byte Solana address.
var ErrInvalidAddress = errors.New("invalid address")

// Validate checks that addr is base58 text decoding to exactly 32 bytes.
func Validate(addr string) error {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("%w: decoded length %d, want 32", ErrInvalidAddress, len(decoded))
	}
	return nil
}

// IsOnCurve reports whether addr decodes to a point on the ed25519 curve.
// Wallet addresses are on-curve; program-derived addresses are not, so this
// distinguishes user accounts from PDAs such as pool vaults.
func IsOnCurve(addr string) (bool, error) {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 32 {
		return false, fmt.Errorf("%w: decoded length %d, want 32", ErrInvalidAddress, len(decoded))
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil, nil
}
