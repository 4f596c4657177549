package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Intn draws a uniformly distributed integer in [0, n) from crypto/rand.
// Winner selection must not be predictable or biased, so a general-purpose
// PRNG is not acceptable here.
func Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("random: bound must be positive, got %d", n)
	}

	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random: read from entropy source: %w", err)
	}
	return int(v.Int64()), nil
}
