// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package population implements cohort demographics, households,
// migration flows, and epistemic projections, all driven by the same
// due scheduler as agent thinking. Cohort ids derive deterministically
// from (body, region, org) keys; every bucket mutation preserves the
// invariant that each bucket family sums to the cohort count.
package population

import (
	"errors"

	"github.com/luxfi/log"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/internal/mix"
	"github.com/luxfi/dominium/refusal"
)

// Bucket layout constants.
const (
	AgeBuckets         = 8
	SexBuckets         = 3
	SexUnknownIndex    = 2
	HealthBuckets      = 4
	HealthDefaultIndex = 0
)

// cohortIDSeed anchors the cohort id hash chain.
const cohortIDSeed uint64 = 0xC0D1C0D1

// Key is a cohort's natural key.
type Key struct {
	BodyID   uint64
	RegionID uint64
	OrgID    uint64
}

// CohortID derives the deterministic cohort id from a key, remapping
// zero to 1 so the id never collides with "absent".
func CohortID(key Key) uint64 {
	return mix.Seeded(cohortIDSeed, key.BodyID, key.RegionID, key.OrgID)
}

// Cohort is one bucketed population cohort.
type Cohort struct {
	CohortID              uint64
	Key                   Key
	Count                 uint32
	AgeBuckets            [AgeBuckets]uint32
	SexBuckets            [SexBuckets]uint32
	HealthBuckets         [HealthBuckets]uint32
	NeedsStateRef         uint64
	NextDueTick           dominium.ActTime
	ProvenanceSummaryHash uint64
}

var (
	// ErrRegistryFull is returned when a bounded registry has no
	// remaining capacity.
	ErrRegistryFull = errors.New("registry is full")

	// ErrDuplicateID is returned when an id is already registered.
	ErrDuplicateID = errors.New("id already registered")
)

// CohortRegistry owns a bounded, id-ordered set of cohorts.
type CohortRegistry struct {
	cohorts  []Cohort
	capacity int
	log      log.Logger
}

// NewCohortRegistry constructs a CohortRegistry with fixed capacity.
func NewCohortRegistry(capacity int, logger log.Logger) *CohortRegistry {
	return &CohortRegistry{
		cohorts:  make([]Cohort, 0, capacity),
		capacity: capacity,
		log:      logger,
	}
}

// Len returns the number of registered cohorts.
func (r *CohortRegistry) Len() int { return len(r.cohorts) }

// Cohorts returns the registered cohorts ascending by id.
func (r *CohortRegistry) Cohorts() []Cohort { return r.cohorts }

func (r *CohortRegistry) findIndex(cohortID uint64) (int, bool) {
	for i := range r.cohorts {
		if r.cohorts[i].CohortID == cohortID {
			return i, true
		}
		if r.cohorts[i].CohortID > cohortID {
			return i, false
		}
	}
	return len(r.cohorts), false
}

// Find returns the cohort with the given id, or nil.
func (r *CohortRegistry) Find(cohortID uint64) *Cohort {
	idx, found := r.findIndex(cohortID)
	if !found {
		return nil
	}
	return &r.cohorts[idx]
}

// FindByKey returns the cohort for a natural key, or nil.
func (r *CohortRegistry) FindByKey(key Key) *Cohort {
	return r.Find(CohortID(key))
}

// Register derives the cohort id from the key and inserts the cohort
// in id order with its whole count in the default buckets and a
// provenance hash seeded from (id, count). Returns the cohort id.
func (r *CohortRegistry) Register(key Key, count uint32, needsStateRef uint64) (uint64, error) {
	if len(r.cohorts) >= r.capacity {
		return 0, ErrRegistryFull
	}
	cohortID := CohortID(key)
	idx, found := r.findIndex(cohortID)
	if found {
		return 0, ErrDuplicateID
	}
	cohort := Cohort{
		CohortID:              cohortID,
		Key:                   key,
		Count:                 count,
		NeedsStateRef:         needsStateRef,
		NextDueTick:           dominium.ActTimeMax,
		ProvenanceSummaryHash: mix.Combine(cohortID, uint64(count)),
	}
	initBuckets(&cohort)
	r.cohorts = append(r.cohorts, Cohort{})
	copy(r.cohorts[idx+1:], r.cohorts[idx:])
	r.cohorts[idx] = cohort
	if r.log != nil {
		r.log.Debug("cohort registered",
			log.Uint64("cohort", cohortID),
			log.Uint64("body", key.BodyID),
			log.Uint64("region", key.RegionID),
			log.Uint32("count", count))
	}
	return cohortID, nil
}

// AdjustCount applies a signed population delta through the
// demographics invariants. A cohort emptied by the delta retires its
// due tick.
func (r *CohortRegistry) AdjustCount(cohortID uint64, delta int32) (uint32, refusal.PopulationCode) {
	cohort := r.Find(cohortID)
	if cohort == nil {
		return 0, refusal.CohortNotFound
	}
	if code := ApplyDelta(cohort, delta, cohortID); code != refusal.PopNone {
		return cohort.Count, code
	}
	if cohort.Count == 0 {
		cohort.NextDueTick = dominium.ActTimeMax
	}
	return cohort.Count, refusal.PopNone
}

// SetNextDue stamps the cohort's next due tick.
func (r *CohortRegistry) SetNextDue(cohortID uint64, nextDueTick dominium.ActTime) refusal.PopulationCode {
	cohort := r.Find(cohortID)
	if cohort == nil {
		return refusal.CohortNotFound
	}
	cohort.NextDueTick = nextDueTick
	return refusal.PopNone
}

// MixProvenance folds a provenance value into the cohort's summary
// hash.
func (r *CohortRegistry) MixProvenance(cohortID, provenanceMix uint64) refusal.PopulationCode {
	cohort := r.Find(cohortID)
	if cohort == nil {
		return refusal.CohortNotFound
	}
	cohort.ProvenanceSummaryHash = mix.Combine(cohort.ProvenanceSummaryHash, provenanceMix)
	return refusal.PopNone
}
