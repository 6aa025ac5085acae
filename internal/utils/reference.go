package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GeneratePaymentReference returns a random numeric reference for one
// payment session. Unique even for back-to-back calls in the same
// millisecond.
func GeneratePaymentReference() string {
	now := time.Now().UTC()

	// 7-digit cryptographic random
	n, err := rand.Int(rand.Reader, big.NewInt(10_000_000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10_000_000)
	}

	return fmt.Sprintf("%d%07d", now.UnixMilli(), n.Int64())
}
