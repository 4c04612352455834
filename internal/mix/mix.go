// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mix implements the Boost-style hash-combine used to derive
// cohort and migration flow ids from their natural keys. It is distinct from the FNV-1a family in
// internal/fnv1a: this combine is for mixing a small fixed number of
// already-hashed/integer fields, not for hashing byte streams.
package mix

const golden uint64 = 0x9e3779b97f4a7c15

// Combine folds v into the running value h, in the style of
// boost::hash_combine.
func Combine(h, v uint64) uint64 {
	return h ^ (v + golden + (h << 6) + (h >> 2))
}

// Seeded starts a combine chain from a fixed seed and folds every
// value in order, remapping a zero result to 1 so the mixed id never
// collides with the "absent" sentinel.
func Seeded(seed uint64, values ...uint64) uint64 {
	h := seed
	for _, v := range values {
		h = Combine(h, v)
	}
	if h == 0 {
		return 1
	}
	return h
}
