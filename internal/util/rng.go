// Package util contains small internal helpers shared across packages.
package util

import "math/rand"

// NewRand returns a rand.Rand seeded deterministically. A zero seed is mapped
// to one so the zero-value RunConfig still yields reproducible runs.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}
