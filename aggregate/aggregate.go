// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aggregate

import (
	"errors"

	"github.com/luxfi/log"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/belief"
	"github.com/luxfi/dominium/due"
	"github.com/luxfi/dominium/goal"
	"github.com/luxfi/dominium/refusal"
)

// Agent is an aggregate agent: its beliefs and goals are summaries
// over a cohort of individuals. Invariant: RefinedCount never exceeds
// CohortCount.
type Agent struct {
	AggregateAgentID uint64
	CohortRef        uint64
	DoctrineRef      uint64
	BeliefSummary    BeliefSummary
	GoalSummary      GoalSummary
	CohortCount      uint32
	RefinedCount     uint32
	NextThinkAct     dominium.ActTime
	ActiveGoalRef    uint64
	ActivePlanRef    uint64
	ProvenanceRef    uint64
}

var (
	// ErrRegistryFull is returned when no capacity remains.
	ErrRegistryFull = errors.New("aggregate registry is full")

	// ErrDuplicateID is returned for an already-registered aggregate
	// agent id.
	ErrDuplicateID = errors.New("aggregate agent id already registered")
)

// Registry owns a bounded, id-ordered set of aggregate agents.
type Registry struct {
	agents   []Agent
	capacity int
	nextID   uint64
	log      log.Logger
}

// NewRegistry constructs a Registry with fixed capacity. A zero
// startID begins auto-assigned aggregate ids at 1.
func NewRegistry(capacity int, startID uint64, logger log.Logger) *Registry {
	if startID == 0 {
		startID = 1
	}
	return &Registry{
		agents:   make([]Agent, 0, capacity),
		capacity: capacity,
		nextID:   startID,
		log:      logger,
	}
}

// Len returns the number of registered aggregate agents.
func (r *Registry) Len() int { return len(r.agents) }

// Agents returns the registered aggregate agents ascending by id.
func (r *Registry) Agents() []Agent { return r.agents }

func (r *Registry) findIndex(aggregateAgentID uint64) (int, bool) {
	for i := range r.agents {
		if r.agents[i].AggregateAgentID == aggregateAgentID {
			return i, true
		}
		if r.agents[i].AggregateAgentID > aggregateAgentID {
			return i, false
		}
	}
	return len(r.agents), false
}

// Find returns the aggregate agent with the given id, or nil.
func (r *Registry) Find(aggregateAgentID uint64) *Agent {
	idx, found := r.findIndex(aggregateAgentID)
	if !found {
		return nil
	}
	return &r.agents[idx]
}

// Register inserts an aggregate agent in id order, assigning an id
// when the caller passes zero, defaulting the think act to "never"
// and the provenance ref to the aggregate's own id. Returns the id
// registered.
func (r *Registry) Register(aggregateAgentID, cohortRef, doctrineRef uint64, cohortCount uint32, provenanceRef uint64) (uint64, error) {
	if len(r.agents) >= r.capacity {
		return 0, ErrRegistryFull
	}
	if aggregateAgentID == 0 {
		aggregateAgentID = r.nextID
		r.nextID++
		if aggregateAgentID == 0 {
			aggregateAgentID = r.nextID
			r.nextID++
		}
	}
	idx, found := r.findIndex(aggregateAgentID)
	if found {
		return 0, ErrDuplicateID
	}
	if provenanceRef == 0 {
		provenanceRef = aggregateAgentID
	}
	r.agents = append(r.agents, Agent{})
	copy(r.agents[idx+1:], r.agents[idx:])
	r.agents[idx] = Agent{
		AggregateAgentID: aggregateAgentID,
		CohortRef:        cohortRef,
		DoctrineRef:      doctrineRef,
		CohortCount:      cohortCount,
		NextThinkAct:     due.TickNone,
		ProvenanceRef:    provenanceRef,
	}
	if r.log != nil {
		r.log.Debug("aggregate agent registered",
			log.Uint64("aggregate", aggregateAgentID),
			log.Uint64("cohort", cohortRef),
			log.Uint32("count", cohortCount))
	}
	return aggregateAgentID, nil
}

// SetCounts overwrites the cohort and refined counts, refusing
// RefinementLimitReached if the refined count would exceed the cohort
// count and leaving the agent unchanged.
func (a *Agent) SetCounts(cohortCount, refinedCount uint32) refusal.Code {
	if a == nil {
		return refusal.AgentStateInconsistent
	}
	if refinedCount > cohortCount {
		return refusal.RefinementLimitReached
	}
	a.CohortCount = cohortCount
	a.RefinedCount = refinedCount
	return refusal.None
}

// RefreshFromIndividuals recomputes both summaries from the current
// individuals, adopting the belief count as the cohort count and
// clamping the refined count to it.
func (a *Agent) RefreshFromIndividuals(beliefs []belief.State, goals []GoalStatus) {
	if a == nil {
		return
	}
	a.BeliefSummary = AggregateBeliefs(beliefs)
	a.GoalSummary = AggregateGoals(goals)
	a.CohortCount = uint32(len(beliefs))
	if a.RefinedCount > a.CohortCount {
		a.RefinedCount = a.CohortCount
	}
}

// MakeContext projects the aggregate's summaries into an evaluation
// context: the shared knowledge mask, the average need levels, and the
// aggregate's doctrine ref as the explicit binding.
func (a *Agent) MakeContext() goal.Context {
	if a == nil {
		return goal.Context{}
	}
	return goal.Context{
		AgentID:             a.AggregateAgentID,
		KnowledgeMask:       a.BeliefSummary.KnowledgeMask,
		HungerLevel:         a.BeliefSummary.HungerAvg,
		ThreatLevel:         a.BeliefSummary.ThreatAvg,
		ExplicitDoctrineRef: a.DoctrineRef,
	}
}
