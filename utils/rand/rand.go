// Package rand draws secure randoms from the system RNG via `crypto/rand`.
//
// Receipt nonces are part of a receipt's dedup identity, so they must never come from a
// seeded generator. Functions in this package return an error if the underlying system
// fails to provide entropy; callers should treat that as an irrecoverable exception.
package rand

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Uint64 returns a random uint64.
//
// It returns:
//   - (0, exception) if crypto/rand fails to provide entropy which is likely a result of a system error.
//   - (random, nil) otherwise
func Uint64() (uint64, error) {
	// allocate a new buffer at each call to keep the package thread safe
	buffer := make([]byte, 8)
	if _, err := rand.Read(buffer); err != nil { // checking err in crypto/rand.Read is enough
		return 0, fmt.Errorf("crypto/rand read failed: %w", err)
	}
	return binary.LittleEndian.Uint64(buffer), nil
}

// Uint64n returns a random uint64 strictly less than `n`.
// `n` has to be a strictly positive integer.
//
// It returns:
//   - (0, exception) if `n==0`
//   - (0, exception) if crypto/rand fails to provide entropy which is likely a result of a system error.
//   - (random, nil) otherwise
func Uint64n(n uint64) (uint64, error) {
	if n == 0 {
		return 0, fmt.Errorf("n should be strictly positive, got %d", n)
	}
	max := n - 1
	// mask covering the bit size of max
	mask := uint64(0)
	for max&mask != max {
		mask = (mask << 1) | 1
	}

	// sample until the masked value is at most max, which keeps the output uniform;
	// each loop ends with probability above 1/2
	random := n
	for random > max {
		r, err := Uint64()
		if err != nil {
			return 0, err
		}
		random = r & mask
	}
	return random, nil
}
