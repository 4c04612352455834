// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package doctrine

import "github.com/luxfi/dominium"

// ConflictStatus tracks a conflict's lifecycle.
type ConflictStatus uint32

const (
	ConflictActive ConflictStatus = iota
	ConflictResolved
)

// Conflict records an active dispute between two agents over a
// subject.
type Conflict struct {
	ConflictID   uint64
	PartyAID     uint64
	PartyBID     uint64
	SubjectID    uint64
	Status       ConflictStatus
	StartedAct   dominium.ActTime
	ResolvedAct  dominium.ActTime
	ProvenanceID uint64
}

// ConflictRegistry owns a bounded, id-ordered set of conflicts.
type ConflictRegistry struct {
	conflicts []Conflict
	capacity  int
}

// NewConflictRegistry constructs a ConflictRegistry with fixed
// capacity.
func NewConflictRegistry(capacity int) *ConflictRegistry {
	return &ConflictRegistry{
		conflicts: make([]Conflict, 0, capacity),
		capacity:  capacity,
	}
}

// Len returns the number of registered conflicts.
func (r *ConflictRegistry) Len() int { return len(r.conflicts) }

// Conflicts returns the registered conflicts ascending by id.
func (r *ConflictRegistry) Conflicts() []Conflict { return r.conflicts }

func (r *ConflictRegistry) findIndex(conflictID uint64) (int, bool) {
	for i := range r.conflicts {
		if r.conflicts[i].ConflictID == conflictID {
			return i, true
		}
		if r.conflicts[i].ConflictID > conflictID {
			return i, false
		}
	}
	return len(r.conflicts), false
}

// Find returns the conflict with the given id, or nil.
func (r *ConflictRegistry) Find(conflictID uint64) *Conflict {
	idx, found := r.findIndex(conflictID)
	if !found {
		return nil
	}
	return &r.conflicts[idx]
}

// Register inserts a conflict in id order as ACTIVE, defaulting its
// provenance id to the conflict id.
func (r *ConflictRegistry) Register(c Conflict) error {
	if c.ConflictID == 0 {
		return ErrInvalidID
	}
	if len(r.conflicts) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(c.ConflictID)
	if found {
		return ErrDuplicateID
	}
	c.Status = ConflictActive
	c.ResolvedAct = 0
	if c.ProvenanceID == 0 {
		c.ProvenanceID = c.ConflictID
	}
	r.conflicts = append(r.conflicts, Conflict{})
	copy(r.conflicts[idx+1:], r.conflicts[idx:])
	r.conflicts[idx] = c
	return nil
}

// Resolve transitions the conflict to RESOLVED, stamping the act.
func (c *Conflict) Resolve(resolvedAct dominium.ActTime) {
	if c == nil {
		return
	}
	c.Status = ConflictResolved
	c.ResolvedAct = resolvedAct
}
