// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package doctrine implements the social filters on agent behavior:
// doctrines, roles, authority grants, constraints, contracts,
// delegations, institutions, and conflicts. Every registry is bounded,
// ordered ascending by its natural key id, and references other
// entities by id only.
package doctrine

import (
	"errors"

	"github.com/luxfi/log"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/refusal"
)

// Scope identifies the binding level a doctrine was issued at.
type Scope uint32

const (
	ScopeAgent Scope = iota
	ScopeCohort
	ScopeOrganization
	ScopeJurisdiction
)

// SchedulingPolicy bits constrain when a bound agent may think.
type SchedulingPolicy uint32

const (
	SchedInterval SchedulingPolicy = 1 << iota
	SchedWindow
)

// GoalTypeBit returns the allowed/forbidden-mask bit for a goal type.
func GoalTypeBit(t dominium.GoalType) uint32 {
	if !t.Valid() {
		return 0
	}
	return 1 << uint32(t)
}

// Doctrine allows, forbids, and modulates priorities of goal types
// for the agents bound to it.
type Doctrine struct {
	DoctrineID            uint64
	OwnerRef              uint64
	Scope                 Scope
	AllowedGoalTypes      uint32
	ForbiddenGoalTypes    uint32
	PriorityModifiers     [dominium.GoalTypeCount]int32
	SchedulingPolicy      SchedulingPolicy
	MinThinkIntervalAct   dominium.ActTime
	WindowStartAct        dominium.ActTime
	WindowEndAct          dominium.ActTime
	ExpiryAct             dominium.ActTime
	AuthorityRequiredMask uint32
	LegitimacyMin         uint32
	NextDueTick           dominium.ActTime
	ProvenanceRef         uint64
}

// Binding gathers the doctrine refs visible to one agent, in selection
// precedence order, together with the credentials checked against a
// candidate doctrine's requirements.
type Binding struct {
	ExplicitDoctrineRef     uint64
	RoleDoctrineRef         uint64
	OrgDoctrineRef          uint64
	JurisdictionDoctrineRef uint64
	PersonalDoctrineRef     uint64
	AuthorityMask           uint32
	LegitimacyValue         uint32
}

var (
	// ErrRegistryFull is returned when a bounded registry has no
	// remaining capacity.
	ErrRegistryFull = errors.New("registry is full")

	// ErrDuplicateID is returned when an id is already registered.
	ErrDuplicateID = errors.New("id already registered")

	// ErrInvalidID is returned for a zero natural-key id.
	ErrInvalidID = errors.New("id must be non-zero")

	// ErrNotFound is returned when an id is not registered.
	ErrNotFound = errors.New("not found")
)

// Registry owns a bounded, id-ordered set of doctrines.
type Registry struct {
	doctrines []Doctrine
	capacity  int
	log       log.Logger
}

// NewRegistry constructs a doctrine Registry with fixed capacity.
func NewRegistry(capacity int, logger log.Logger) *Registry {
	return &Registry{
		doctrines: make([]Doctrine, 0, capacity),
		capacity:  capacity,
		log:       logger,
	}
}

// Len returns the number of registered doctrines.
func (r *Registry) Len() int { return len(r.doctrines) }

// Doctrines returns the registered doctrines ascending by id.
func (r *Registry) Doctrines() []Doctrine { return r.doctrines }

func (r *Registry) findIndex(doctrineID uint64) (int, bool) {
	for i := range r.doctrines {
		if r.doctrines[i].DoctrineID == doctrineID {
			return i, true
		}
		if r.doctrines[i].DoctrineID > doctrineID {
			return i, false
		}
	}
	return len(r.doctrines), false
}

// Find returns the doctrine with the given id, or nil.
func (r *Registry) Find(doctrineID uint64) *Doctrine {
	idx, found := r.findIndex(doctrineID)
	if !found {
		return nil
	}
	return &r.doctrines[idx]
}

func normalize(d *Doctrine) {
	if d.NextDueTick == 0 {
		d.NextDueTick = dominium.ActTimeMax
	}
	if d.ProvenanceRef == 0 {
		d.ProvenanceRef = d.DoctrineID
	}
}

// Register inserts a doctrine in id order, defaulting its next due
// tick to "never" and its provenance ref to its own id.
func (r *Registry) Register(d *Doctrine) error {
	if d == nil || d.DoctrineID == 0 {
		return ErrInvalidID
	}
	if len(r.doctrines) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(d.DoctrineID)
	if found {
		return ErrDuplicateID
	}
	entry := *d
	normalize(&entry)
	r.doctrines = append(r.doctrines, Doctrine{})
	copy(r.doctrines[idx+1:], r.doctrines[idx:])
	r.doctrines[idx] = entry
	return nil
}

// Update overwrites an existing doctrine in place, or registers it if
// absent.
func (r *Registry) Update(d *Doctrine) error {
	if d == nil || d.DoctrineID == 0 {
		return ErrInvalidID
	}
	idx, found := r.findIndex(d.DoctrineID)
	if !found {
		return r.Register(d)
	}
	entry := *d
	normalize(&entry)
	r.doctrines[idx] = entry
	return nil
}

// Remove deletes a doctrine by id.
func (r *Registry) Remove(doctrineID uint64) error {
	idx, found := r.findIndex(doctrineID)
	if !found {
		return ErrNotFound
	}
	r.doctrines = append(r.doctrines[:idx], r.doctrines[idx+1:]...)
	return nil
}

// IsAuthorized reports whether a binding's credentials satisfy the
// doctrine's authority and legitimacy requirements.
func (d *Doctrine) IsAuthorized(b *Binding) bool {
	if d == nil || b == nil {
		return false
	}
	if b.AuthorityMask&d.AuthorityRequiredMask != d.AuthorityRequiredMask {
		return false
	}
	if d.LegitimacyMin > 0 && b.LegitimacyValue < d.LegitimacyMin {
		return false
	}
	return true
}

// AllowsGoal reports whether the doctrine permits pursuing a goal
// type. A nil doctrine permits everything; an empty allowed mask means
// "all types not forbidden".
func (d *Doctrine) AllowsGoal(t dominium.GoalType) bool {
	if d == nil {
		return true
	}
	if !t.Valid() {
		return false
	}
	bit := GoalTypeBit(t)
	if d.ForbiddenGoalTypes&bit != 0 {
		return false
	}
	if d.AllowedGoalTypes != 0 && d.AllowedGoalTypes&bit == 0 {
		return false
	}
	return true
}

// ApplyPriority adds the doctrine's per-type signed modifier,
// re-clamped into [0, PriorityScale].
func (d *Doctrine) ApplyPriority(t dominium.GoalType, basePriority uint32) uint32 {
	if !t.Valid() {
		return basePriority
	}
	var modifier int32
	if d != nil {
		modifier = d.PriorityModifiers[t]
	}
	next := int64(basePriority) + int64(modifier)
	if next < 0 {
		next = 0
	}
	if next > int64(dominium.PriorityScale) {
		next = int64(dominium.PriorityScale)
	}
	return uint32(next)
}

// NextThinkAct adjusts a desired think act by the doctrine's
// scheduling policy: interval policy enforces a minimum spacing after
// lastAct; window policy clamps into [window start, window end].
func (d *Doctrine) NextThinkAct(lastAct, desiredAct dominium.ActTime) dominium.ActTime {
	if d == nil {
		return desiredAct
	}
	next := desiredAct
	if d.SchedulingPolicy&SchedInterval != 0 && d.MinThinkIntervalAct > 0 {
		if minNext := lastAct + d.MinThinkIntervalAct; next < minNext {
			next = minNext
		}
	}
	if d.SchedulingPolicy&SchedWindow != 0 && d.WindowStartAct > 0 && d.WindowEndAct > 0 {
		if next < d.WindowStartAct {
			next = d.WindowStartAct
		} else if next > d.WindowEndAct {
			next = d.WindowEndAct
		}
	}
	return next
}

// Select tries the binding's doctrine refs in strict precedence order
// (explicit, role, organization, jurisdiction, personal). An unknown
// or expired candidate falls through to the next; the first live
// candidate is authority-checked and either returned or refused with
// DoctrineNotAuthorized. Exhausting all refs returns (nil,
// DoctrineNotAuthorized).
func (r *Registry) Select(b *Binding, nowAct dominium.ActTime) (*Doctrine, refusal.Code) {
	if r == nil || b == nil {
		return nil, refusal.DoctrineNotAuthorized
	}
	candidates := [5]uint64{
		b.ExplicitDoctrineRef,
		b.RoleDoctrineRef,
		b.OrgDoctrineRef,
		b.JurisdictionDoctrineRef,
		b.PersonalDoctrineRef,
	}
	for _, ref := range candidates {
		if ref == 0 {
			continue
		}
		d := r.Find(ref)
		if d == nil {
			continue
		}
		if d.ExpiryAct != 0 && d.ExpiryAct <= nowAct {
			continue
		}
		if !d.IsAuthorized(b) {
			return nil, refusal.DoctrineNotAuthorized
		}
		return d, refusal.None
	}
	return nil, refusal.DoctrineNotAuthorized
}
