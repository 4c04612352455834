// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package doctrine

import (
	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/refusal"
)

// Delegation authorizes a delegatee to execute process kinds on the
// delegator's behalf. Absence of a delegation is a refusal for
// delegation-required operations.
type Delegation struct {
	DelegationID       uint64
	DelegatorRef       uint64
	DelegateeRef       uint64
	DelegationKind     uint32
	AllowedProcessMask uint32
	AuthorityMask      uint32
	ExpiryAct          dominium.ActTime
	Revoked            bool
	ProvenanceRef      uint64
}

// DelegationRegistry owns a bounded, id-ordered set of delegations.
type DelegationRegistry struct {
	delegations []Delegation
	capacity    int
}

// NewDelegationRegistry constructs a DelegationRegistry with fixed
// capacity.
func NewDelegationRegistry(capacity int) *DelegationRegistry {
	return &DelegationRegistry{
		delegations: make([]Delegation, 0, capacity),
		capacity:    capacity,
	}
}

// Len returns the number of registered delegations.
func (r *DelegationRegistry) Len() int { return len(r.delegations) }

// Delegations returns the registered delegations ascending by id.
func (r *DelegationRegistry) Delegations() []Delegation { return r.delegations }

func (r *DelegationRegistry) findIndex(delegationID uint64) (int, bool) {
	for i := range r.delegations {
		if r.delegations[i].DelegationID == delegationID {
			return i, true
		}
		if r.delegations[i].DelegationID > delegationID {
			return i, false
		}
	}
	return len(r.delegations), false
}

// Find returns the delegation with the given id, or nil.
func (r *DelegationRegistry) Find(delegationID uint64) *Delegation {
	idx, found := r.findIndex(delegationID)
	if !found {
		return nil
	}
	return &r.delegations[idx]
}

// FindForDelegatee returns the first non-expired delegation (in id
// order) naming the delegatee, or nil.
func (r *DelegationRegistry) FindForDelegatee(delegateeRef uint64, nowAct dominium.ActTime) *Delegation {
	if delegateeRef == 0 {
		return nil
	}
	for i := range r.delegations {
		del := &r.delegations[i]
		if del.DelegateeRef != delegateeRef {
			continue
		}
		if del.ExpiryAct != 0 && del.ExpiryAct <= nowAct {
			continue
		}
		return del
	}
	return nil
}

// Register inserts a delegation in id order, defaulting its
// provenance ref to the delegation id.
func (r *DelegationRegistry) Register(d Delegation) error {
	if d.DelegationID == 0 {
		return ErrInvalidID
	}
	if len(r.delegations) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(d.DelegationID)
	if found {
		return ErrDuplicateID
	}
	d.Revoked = false
	if d.ProvenanceRef == 0 {
		d.ProvenanceRef = d.DelegationID
	}
	r.delegations = append(r.delegations, Delegation{})
	copy(r.delegations[idx+1:], r.delegations[idx:])
	r.delegations[idx] = d
	return nil
}

// Revoke marks a delegation revoked.
func (r *DelegationRegistry) Revoke(delegationID uint64) error {
	d := r.Find(delegationID)
	if d == nil {
		return ErrNotFound
	}
	d.Revoked = true
	return nil
}

// AllowsProcess reports whether the delegation permits the process
// kind at nowAct. A zero kind or an empty allowed mask permits; a
// revoked delegation refuses with InsufficientAuthority, an expired
// one with DelegationExpired.
func (d *Delegation) AllowsProcess(kind dominium.ProcessKind, nowAct dominium.ActTime) refusal.Code {
	if d == nil || d.Revoked {
		return refusal.InsufficientAuthority
	}
	if d.ExpiryAct != 0 && d.ExpiryAct <= nowAct {
		return refusal.DelegationExpired
	}
	if kind == dominium.ProcessNone || d.AllowedProcessMask == 0 {
		return refusal.None
	}
	if d.AllowedProcessMask&kind.Bit() == 0 {
		return refusal.InsufficientAuthority
	}
	return refusal.None
}

// CheckPlan verifies every step kind of a plan against the unique
// live delegation for the delegatee. No delegation at all refuses
// with InsufficientAuthority.
func (r *DelegationRegistry) CheckPlan(delegateeRef uint64, stepKinds []dominium.ProcessKind, nowAct dominium.ActTime) refusal.Code {
	if r == nil || delegateeRef == 0 {
		return refusal.InsufficientAuthority
	}
	d := r.FindForDelegatee(delegateeRef, nowAct)
	if d == nil {
		return refusal.InsufficientAuthority
	}
	for _, kind := range stepKinds {
		if code := d.AllowsProcess(kind, nowAct); code != refusal.None {
			return code
		}
	}
	return refusal.None
}
