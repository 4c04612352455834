// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package doctrine

import "github.com/luxfi/dominium"

// InstitutionStatus tracks an institution's lifecycle.
type InstitutionStatus uint32

const (
	InstitutionActive InstitutionStatus = iota
	InstitutionDormant
	InstitutionCollapsed
)

// Institution is an organized agent carrying authority and
// legitimacy. Institutions hold beliefs, goals, and audit entries like
// any other agent; every cross reference is by id.
type Institution struct {
	InstitutionID uint64
	AgentID       uint64
	AuthorityMask uint32
	LegitimacyQ16 uint32
	Status        InstitutionStatus
	FoundedAct    dominium.ActTime
	CollapsedAct  dominium.ActTime
	ProvenanceID  uint64
}

// InstitutionRegistry owns a bounded, id-ordered set of institutions.
type InstitutionRegistry struct {
	institutions []Institution
	capacity     int
}

// NewInstitutionRegistry constructs an InstitutionRegistry with fixed
// capacity.
func NewInstitutionRegistry(capacity int) *InstitutionRegistry {
	return &InstitutionRegistry{
		institutions: make([]Institution, 0, capacity),
		capacity:     capacity,
	}
}

// Len returns the number of registered institutions.
func (r *InstitutionRegistry) Len() int { return len(r.institutions) }

// Institutions returns the registered institutions ascending by id.
func (r *InstitutionRegistry) Institutions() []Institution { return r.institutions }

func (r *InstitutionRegistry) findIndex(institutionID uint64) (int, bool) {
	for i := range r.institutions {
		if r.institutions[i].InstitutionID == institutionID {
			return i, true
		}
		if r.institutions[i].InstitutionID > institutionID {
			return i, false
		}
	}
	return len(r.institutions), false
}

// Find returns the institution with the given id, or nil.
func (r *InstitutionRegistry) Find(institutionID uint64) *Institution {
	idx, found := r.findIndex(institutionID)
	if !found {
		return nil
	}
	return &r.institutions[idx]
}

// Register inserts an institution in id order as ACTIVE, defaulting
// its provenance id to the institution id.
func (r *InstitutionRegistry) Register(inst Institution) error {
	if inst.InstitutionID == 0 || inst.AgentID == 0 {
		return ErrInvalidID
	}
	if len(r.institutions) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(inst.InstitutionID)
	if found {
		return ErrDuplicateID
	}
	inst.Status = InstitutionActive
	inst.CollapsedAct = 0
	if inst.ProvenanceID == 0 {
		inst.ProvenanceID = inst.InstitutionID
	}
	r.institutions = append(r.institutions, Institution{})
	copy(r.institutions[idx+1:], r.institutions[idx:])
	r.institutions[idx] = inst
	return nil
}

// SetLegitimacy overwrites the institution's legitimacy value.
func (inst *Institution) SetLegitimacy(legitimacyQ16 uint32) {
	if inst == nil {
		return
	}
	inst.LegitimacyQ16 = legitimacyQ16
}

// CheckCollapse transitions the institution to COLLAPSED when its
// legitimacy is at or below the threshold, stamping the collapse act.
// Already-collapsed institutions are untouched. Reports whether a
// collapse occurred on this call.
func (inst *Institution) CheckCollapse(thresholdQ16 uint32, nowAct dominium.ActTime) bool {
	if inst == nil || inst.Status == InstitutionCollapsed {
		return false
	}
	if inst.LegitimacyQ16 <= thresholdQ16 {
		inst.Status = InstitutionCollapsed
		inst.CollapsedAct = nowAct
		return true
	}
	return false
}
