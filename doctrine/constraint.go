// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package doctrine

import "github.com/luxfi/dominium"

// ConstraintMode selects whether a constraint denies or allows its
// process kinds. DENY is strictly prioritized: evaluation scans in id
// order and the first matching DENY blocks, regardless of ALLOW rules.
type ConstraintMode uint32

const (
	ConstraintDeny ConstraintMode = iota
	ConstraintAllow
)

// Constraint is an institution-issued restriction on process kinds. A
// zero target agent id applies the constraint to every agent.
type Constraint struct {
	ConstraintID    uint64
	InstitutionID   uint64
	TargetAgentID   uint64
	ProcessKindMask uint32
	Mode            ConstraintMode
	ExpiryAct       dominium.ActTime
	Revoked         bool
	ProvenanceID    uint64
}

// ConstraintRegistry owns a bounded, id-ordered set of constraints.
type ConstraintRegistry struct {
	constraints []Constraint
	capacity    int
}

// NewConstraintRegistry constructs a ConstraintRegistry with fixed
// capacity.
func NewConstraintRegistry(capacity int) *ConstraintRegistry {
	return &ConstraintRegistry{
		constraints: make([]Constraint, 0, capacity),
		capacity:    capacity,
	}
}

// Len returns the number of registered constraints.
func (r *ConstraintRegistry) Len() int { return len(r.constraints) }

// Constraints returns the registered constraints ascending by id.
func (r *ConstraintRegistry) Constraints() []Constraint { return r.constraints }

func (r *ConstraintRegistry) findIndex(constraintID uint64) (int, bool) {
	for i := range r.constraints {
		if r.constraints[i].ConstraintID == constraintID {
			return i, true
		}
		if r.constraints[i].ConstraintID > constraintID {
			return i, false
		}
	}
	return len(r.constraints), false
}

// Find returns the constraint with the given id, or nil.
func (r *ConstraintRegistry) Find(constraintID uint64) *Constraint {
	idx, found := r.findIndex(constraintID)
	if !found {
		return nil
	}
	return &r.constraints[idx]
}

// Register inserts a constraint in id order, defaulting its
// provenance id to the constraint id.
func (r *ConstraintRegistry) Register(c Constraint) error {
	if c.ConstraintID == 0 {
		return ErrInvalidID
	}
	if len(r.constraints) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(c.ConstraintID)
	if found {
		return ErrDuplicateID
	}
	c.Revoked = false
	if c.ProvenanceID == 0 {
		c.ProvenanceID = c.ConstraintID
	}
	r.constraints = append(r.constraints, Constraint{})
	copy(r.constraints[idx+1:], r.constraints[idx:])
	r.constraints[idx] = c
	return nil
}

// Revoke marks a constraint revoked.
func (r *ConstraintRegistry) Revoke(constraintID uint64) error {
	c := r.Find(constraintID)
	if c == nil {
		return ErrNotFound
	}
	c.Revoked = true
	return nil
}

// AllowsProcess reports whether the agent may execute the process
// kind at nowAct. The first live DENY whose mask covers the kind
// blocks and identifies the issuing institution.
func (r *ConstraintRegistry) AllowsProcess(agentID uint64, kind dominium.ProcessKind, nowAct dominium.ActTime) (bool, uint64) {
	if r == nil || kind == dominium.ProcessNone {
		return true, 0
	}
	for i := range r.constraints {
		c := &r.constraints[i]
		if c.Revoked {
			continue
		}
		if c.ExpiryAct != 0 && c.ExpiryAct <= nowAct {
			continue
		}
		if c.TargetAgentID != 0 && c.TargetAgentID != agentID {
			continue
		}
		if c.ProcessKindMask&kind.Bit() == 0 {
			continue
		}
		if c.Mode == ConstraintDeny {
			return false, c.InstitutionID
		}
	}
	return true, 0
}
