// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package population

import "github.com/luxfi/dominium/refusal"

// initBuckets places the cohort's whole count in the default buckets:
// youngest age, unknown sex, default health.
func initBuckets(c *Cohort) {
	c.AgeBuckets = [AgeBuckets]uint32{}
	c.SexBuckets = [SexBuckets]uint32{}
	c.HealthBuckets = [HealthBuckets]uint32{}
	if c.Count > 0 {
		c.AgeBuckets[0] = c.Count
		c.SexBuckets[SexUnknownIndex] = c.Count
		c.HealthBuckets[HealthDefaultIndex] = c.Count
	}
}

func bucketSum(buckets []uint32) uint32 {
	var sum uint32
	for _, b := range buckets {
		sum += b
	}
	return sum
}

// removeFromTail removes population from the highest-index buckets
// first, capped by what the buckets hold.
func removeFromTail(buckets []uint32, remove uint32) {
	for i := len(buckets); i > 0 && remove > 0; i-- {
		idx := i - 1
		take := buckets[idx]
		if take > remove {
			buckets[idx] -= remove
			return
		}
		buckets[idx] = 0
		remove -= take
	}
}

// Validate checks the bucket invariant: every bucket family sums to
// the cohort count.
func Validate(c *Cohort) refusal.PopulationCode {
	if c == nil {
		return refusal.InvalidBucketDistribution
	}
	if bucketSum(c.AgeBuckets[:]) != c.Count ||
		bucketSum(c.SexBuckets[:]) != c.Count ||
		bucketSum(c.HealthBuckets[:]) != c.Count {
		return refusal.InvalidBucketDistribution
	}
	return refusal.PopNone
}

// ApplyDelta applies a signed population delta preserving the bucket
// invariant: additions land in the default buckets, removals drain
// from the bucket tails first and are capped by the count. Every
// delta XORs the provenance mix into the cohort's summary hash.
func ApplyDelta(c *Cohort, delta int32, provenanceMix uint64) refusal.PopulationCode {
	if c == nil {
		return refusal.CohortNotFound
	}
	if delta == 0 {
		return refusal.PopNone
	}
	if delta > 0 {
		add := uint32(delta)
		c.Count += add
		c.AgeBuckets[0] += add
		c.SexBuckets[SexUnknownIndex] += add
		c.HealthBuckets[HealthDefaultIndex] += add
	} else {
		remove := uint32(-delta)
		if remove > c.Count {
			remove = c.Count
		}
		next := c.Count - remove
		removeFromTail(c.AgeBuckets[:], remove)
		removeFromTail(c.SexBuckets[:], remove)
		removeFromTail(c.HealthBuckets[:], remove)
		c.Count = next
	}
	c.ProvenanceSummaryHash ^= provenanceMix
	return refusal.PopNone
}
