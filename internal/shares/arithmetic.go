// Package shares implements the additive secret sharing the contract splits
// its per-phase game secrets with, and the ledger that collects participant
// shares until a secret can be reconstructed.
//
// A secret is split into n shares that sum to it modulo 2^64; recombining is
// the same sum, so share order never matters. Wraparound is the scheme's
// arithmetic, not an overflow bug.
package shares

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// WrapAdd adds modulo 2^64.
func WrapAdd(a, b uint64) uint64 {
	return a + b
}

// WrapSub subtracts modulo 2^64. The final share of a split is
// secret - sum(other shares).
func WrapSub(a, b uint64) uint64 {
	return a - b
}

// Combine folds shares with WrapAdd.
func Combine(shares []uint64) uint64 {
	var sum uint64
	for _, s := range shares {
		sum = WrapAdd(sum, s)
	}
	return sum
}

// Split produces n random shares of secret. The contract does this on-chain;
// the client version serves tooling and tests.
func Split(secret uint64, n int) ([]uint64, error) {
	if n < 1 {
		return nil, fmt.Errorf("share count must be at least 1, got %d", n)
	}
	out := make([]uint64, n)
	var sum uint64
	for i := 0; i < n-1; i++ {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			return nil, fmt.Errorf("read randomness: %w", err)
		}
		out[i] = binary.LittleEndian.Uint64(b[:])
		sum = WrapAdd(sum, out[i])
	}
	out[n-1] = WrapSub(secret, sum)
	return out, nil
}
