// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package goal implements goal registries and the deterministic
// arbitration evaluator. Goals are ordered ascending by goal id; the
// evaluator iterates them once per call and breaks priority ties
// toward the lowest id.
package goal

import (
	"errors"

	"github.com/luxfi/log"

	"github.com/luxfi/dominium"
)

// Status tracks a goal's lifecycle.
type Status uint32

const (
	StatusActive Status = iota
	StatusSatisfied
	StatusAbandoned
)

// Flags modify precondition handling.
type Flags uint32

const (
	// FlagAllowUnknown converts a missing-knowledge precondition into
	// a warning instead of a refusal.
	FlagAllowUnknown Flags = 1 << iota
	// FlagRequireKnowledge marks plan steps with an epistemic gap as
	// failure points.
	FlagRequireKnowledge
)

// Preconditions gate a goal's feasibility.
type Preconditions struct {
	RequiredCapabilities uint32
	RequiredAuthority    uint32
	RequiredKnowledge    uint32
}

// ConditionKind selects a declarative condition check.
type ConditionKind uint32

const (
	CondNone ConditionKind = iota
	CondKnowledge
	CondResource
	CondThreat
	CondDestination
)

// Condition is a declarative activation condition. For CondKnowledge
// the subject ref is a knowledge bit mask; for the ref kinds it is the
// required subject id (zero meaning "any known ref").
type Condition struct {
	Kind       ConditionKind
	SubjectRef uint64
}

// MaxConditions bounds the per-goal condition list.
const MaxConditions = 4

// Goal is one registered goal.
type Goal struct {
	GoalID                 uint64
	AgentID                uint64
	Type                   dominium.GoalType
	BasePriority           uint32
	Urgency                uint32
	Preconditions          Preconditions
	Conditions             [MaxConditions]Condition
	ConditionCount         uint32
	Flags                  Flags
	Status                 Status
	DeferUntilAct          dominium.ActTime
	ExpiryAct              dominium.ActTime
	HorizonAct             dominium.ActTime
	AcceptableRiskQ16      uint32
	EpistemicConfidenceQ16 uint32
	FailureCount           uint32
	AbandonAfterFailures   uint32
}

var (
	// ErrRegistryFull is returned when no capacity remains.
	ErrRegistryFull = errors.New("goal registry is full")

	// ErrDuplicateGoal is returned for an already-registered goal id.
	ErrDuplicateGoal = errors.New("goal id already registered")

	// ErrGoalNotFound is returned when a goal id is not registered.
	ErrGoalNotFound = errors.New("goal not found")
)

// Registry owns a bounded, id-ordered set of goals.
type Registry struct {
	goals    []Goal
	capacity int
	nextID   uint64
	log      log.Logger
}

// NewRegistry constructs a Registry with fixed capacity. A zero
// startID begins auto-assigned goal ids at 1.
func NewRegistry(capacity int, startID uint64, logger log.Logger) *Registry {
	if startID == 0 {
		startID = 1
	}
	return &Registry{
		goals:    make([]Goal, 0, capacity),
		capacity: capacity,
		nextID:   startID,
		log:      logger,
	}
}

// Len returns the number of registered goals.
func (r *Registry) Len() int { return len(r.goals) }

// Goals returns the registered goals ascending by id. The slice is a
// borrow; mutate through registry operations.
func (r *Registry) Goals() []Goal { return r.goals }

func (r *Registry) findIndex(goalID uint64) (int, bool) {
	for i := range r.goals {
		if r.goals[i].GoalID == goalID {
			return i, true
		}
		if r.goals[i].GoalID > goalID {
			return i, false
		}
	}
	return len(r.goals), false
}

// Find returns the goal with the given id, or nil. The pointer is a
// borrow into registry storage; re-lookup after any registration.
func (r *Registry) Find(goalID uint64) *Goal {
	idx, found := r.findIndex(goalID)
	if !found {
		return nil
	}
	return &r.goals[idx]
}

// Register inserts a goal in id order, assigning an id from the
// internal counter when the caller passes zero (never assigning zero)
// and clamping base priority to the priority scale. Returns the goal
// id actually registered.
func (r *Registry) Register(g *Goal) (uint64, error) {
	if g == nil {
		return 0, ErrGoalNotFound
	}
	if len(r.goals) >= r.capacity {
		return 0, ErrRegistryFull
	}
	goalID := g.GoalID
	if goalID == 0 {
		goalID = r.nextID
		r.nextID++
		if goalID == 0 {
			goalID = r.nextID
			r.nextID++
		}
	}
	idx, found := r.findIndex(goalID)
	if found {
		return 0, ErrDuplicateGoal
	}
	entry := *g
	entry.GoalID = goalID
	entry.BasePriority = dominium.Clamp(entry.BasePriority, dominium.PriorityScale)
	if entry.ConditionCount > MaxConditions {
		entry.ConditionCount = MaxConditions
	}
	r.goals = append(r.goals, Goal{})
	copy(r.goals[idx+1:], r.goals[idx:])
	r.goals[idx] = entry
	if r.log != nil {
		r.log.Debug("goal registered",
			log.Uint64("goal", goalID),
			log.Uint64("agent", entry.AgentID),
			log.Uint32("type", uint32(entry.Type)))
	}
	return goalID, nil
}

// RecordFailure increments a goal's failure counter, abandoning it
// when the configured threshold is reached.
func (r *Registry) RecordFailure(goalID uint64) error {
	g := r.Find(goalID)
	if g == nil {
		return ErrGoalNotFound
	}
	g.FailureCount++
	if g.AbandonAfterFailures != 0 && g.FailureCount >= g.AbandonAfterFailures {
		g.Status = StatusAbandoned
	}
	return nil
}

// RecordSatisfied marks a goal satisfied.
func (r *Registry) RecordSatisfied(goalID uint64) error {
	g := r.Find(goalID)
	if g == nil {
		return ErrGoalNotFound
	}
	g.Status = StatusSatisfied
	return nil
}

// Abandon marks a goal abandoned regardless of its failure count.
func (r *Registry) Abandon(goalID uint64) error {
	g := r.Find(goalID)
	if g == nil {
		return ErrGoalNotFound
	}
	g.Status = StatusAbandoned
	return nil
}
