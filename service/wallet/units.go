package wallet

import "math"

// LamportsPerSOL is the fixed conversion factor for the native asset.
const LamportsPerSOL = 1_000_000_000

// humanUnitThreshold is the cutoff below which a raw numeric amount is
// assumed to be in human units (SOL) rather than lamports. Anyone sending
// less than 0.001 SOL as raw lamports will be misread; the deployment's
// amount ranges make that acceptable, and callers that care pass lamports
// explicitly through the typed APIs instead.
const humanUnitThreshold = 1_000_000

// SOLToLamports converts a human-unit amount to lamports, rounding to the
// nearest lamport.
func SOLToLamports(sol float64) uint64 {
	return uint64(math.Round(sol * LamportsPerSOL))
}

// LamportsToSOL converts lamports to a human-unit amount.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}

// NormalizeLamports interprets a caller-supplied amount for the native asset
// and returns lamports. Amounts at or above the threshold are taken as
// already being lamports; smaller amounts are taken as SOL and scaled up.
// Both "0.5" and "500000000" therefore mean half a SOL.
func NormalizeLamports(amount float64) uint64 {
	if amount < humanUnitThreshold {
		return SOLToLamports(amount)
	}
	return uint64(math.Round(amount))
}
