// Package validate holds the structural checks applied to user-supplied
// addresses, token mints, pool ids, and amounts before anything touches the
// network. All checks are pure: no RPC calls, no errors, just booleans.
package validate

import (
	"math"
	"regexp"

	"github.com/mr-tron/base58"
)

const (
	// Solana public keys are 32 bytes, which encode to 32-44 base58 chars.
	minKeyLength = 32
	maxKeyLength = 44
	keyByteLen   = 32
)

// base58KeyRegex matches the base58 alphabet (no 0, O, I, l) at public-key length.
var base58KeyRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// IsBase58Key reports whether s looks like a base58-encoded 32-byte public
// key: correct alphabet, correct length, and an exact 32-byte decode. Both
// on-curve and off-curve keys are accepted, matching how wallet addresses
// are validated in practice (PDAs are off-curve but perfectly addressable).
func IsBase58Key(s string) bool {
	if !base58KeyRegex.MatchString(s) {
		return false
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == keyByteLen
}

// IsWellFormedAddress reports whether s is structurally a valid wallet address.
func IsWellFormedAddress(s string) bool {
	return IsBase58Key(s)
}

// IsWellFormedMint reports whether s is structurally a valid token mint.
// Mints share the address format; only usage context distinguishes them.
func IsWellFormedMint(s string) bool {
	return IsBase58Key(s)
}

// IsWellFormedPoolID reports whether s is structurally a valid liquidity
// pool id. Pool ids share the address format as well.
func IsWellFormedPoolID(s string) bool {
	return IsBase58Key(s)
}

// IsPositiveAmount reports whether n is a finite number greater than zero.
func IsPositiveAmount(n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	return n > 0
}

// FilterValidMints returns the subset of mints that pass IsWellFormedMint,
// preserving order.
func FilterValidMints(mints []string) []string {
	valid := make([]string, 0, len(mints))
	for _, m := range mints {
		if IsWellFormedMint(m) {
			valid = append(valid, m)
		}
	}
	return valid
}
