// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package population

import "github.com/luxfi/dominium"

// Projection is an epistemic view of a cohort's size: what some
// observer knows, not what is true.
type Projection struct {
	CohortID   uint64
	KnownMin   uint32
	KnownMax   uint32
	ReportTick dominium.ActTime
	IsKnown    bool
}

// ProjectionRegistry owns a bounded, cohort-id-ordered set of
// projections.
type ProjectionRegistry struct {
	projections []Projection
	capacity    int
}

// NewProjectionRegistry constructs a ProjectionRegistry with fixed
// capacity.
func NewProjectionRegistry(capacity int) *ProjectionRegistry {
	return &ProjectionRegistry{
		projections: make([]Projection, 0, capacity),
		capacity:    capacity,
	}
}

// Len returns the number of known projections.
func (r *ProjectionRegistry) Len() int { return len(r.projections) }

func (r *ProjectionRegistry) findIndex(cohortID uint64) (int, bool) {
	for i := range r.projections {
		if r.projections[i].CohortID == cohortID {
			return i, true
		}
		if r.projections[i].CohortID > cohortID {
			return i, false
		}
	}
	return len(r.projections), false
}

// Report records (or overwrites) a cohort's known size range,
// clamping max up to min and marking the projection known.
func (r *ProjectionRegistry) Report(cohortID uint64, knownMin, knownMax uint32, reportTick dominium.ActTime) error {
	idx, found := r.findIndex(cohortID)
	if !found {
		if len(r.projections) >= r.capacity {
			return ErrRegistryFull
		}
		r.projections = append(r.projections, Projection{})
		copy(r.projections[idx+1:], r.projections[idx:])
	}
	if knownMax < knownMin {
		knownMax = knownMin
	}
	r.projections[idx] = Projection{
		CohortID:   cohortID,
		KnownMin:   knownMin,
		KnownMax:   knownMax,
		ReportTick: reportTick,
		IsKnown:    true,
	}
	return nil
}

// Get returns the projection for a cohort. An unreported cohort
// yields the unknown default: is_known false and a "never" report
// tick.
func (r *ProjectionRegistry) Get(cohortID uint64) Projection {
	idx, found := r.findIndex(cohortID)
	if !found {
		return Projection{
			CohortID:   cohortID,
			ReportTick: dominium.ActTimeMax,
		}
	}
	return r.projections[idx]
}
