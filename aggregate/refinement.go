// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aggregate

import (
	"github.com/luxfi/math/set"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/belief"
	"github.com/luxfi/dominium/due"
	"github.com/luxfi/dominium/refusal"
)

// RefineCandidate is one individual considered for representative
// selection during refinement.
type RefineCandidate struct {
	AgentID  uint64
	RoleRank uint32
}

// Select picks up to maxSelect representatives: repeatedly the
// unselected candidate with maximum role rank, ties broken toward the
// minimum agent id. Input order has no effect on the result.
func Select(candidates []RefineCandidate, maxSelect int) []uint64 {
	if len(candidates) == 0 || maxSelect <= 0 {
		return nil
	}
	selected := make([]uint64, 0, maxSelect)
	chosen := set.NewSet[uint64](maxSelect)
	for len(selected) < maxSelect {
		var bestID uint64
		var bestRank uint32
		found := false
		for _, cand := range candidates {
			if chosen.Contains(cand.AgentID) {
				continue
			}
			if !found || cand.RoleRank > bestRank ||
				(cand.RoleRank == bestRank && cand.AgentID < bestID) {
				bestID = cand.AgentID
				bestRank = cand.RoleRank
				found = true
			}
		}
		if !found {
			break
		}
		chosen.Add(bestID)
		selected = append(selected, bestID)
	}
	return selected
}

// SpreadValue maps an agent id into the summary's [min, max] range
// deterministically: min + id mod (span+1). The low-bucket bias of
// the modulus is reproduced as-is for cross-run identity.
func SpreadValue(agentID uint64, minValue, maxValue uint32) uint32 {
	if maxValue <= minValue {
		return minValue
	}
	span := maxValue - minValue
	return minValue + uint32(agentID%uint64(span+1))
}

// Apply refines the summary into desiredCount individual belief
// states, one per selected representative, spreading need values over
// the summary's observed range. Selection shortfall refuses
// RefinementLimitReached; a zero desired count yields no individuals
// and no refusal.
func Apply(summary *BeliefSummary, candidates []RefineCandidate, desiredCount uint32, nowAct dominium.ActTime) ([]belief.State, []uint64, refusal.Code) {
	if summary == nil {
		return nil, nil, refusal.AgentStateInconsistent
	}
	if desiredCount == 0 {
		return nil, nil, refusal.None
	}
	if len(candidates) == 0 {
		return nil, nil, refusal.AgentStateInconsistent
	}
	ids := Select(candidates, int(desiredCount))
	if uint32(len(ids)) < desiredCount {
		return nil, nil, refusal.RefinementLimitReached
	}
	states := make([]belief.State, 0, len(ids))
	for _, agentID := range ids {
		hunger := SpreadValue(agentID, summary.HungerMin, summary.HungerMax)
		threat := SpreadValue(agentID, summary.ThreatMin, summary.ThreatMax)
		states = append(states, belief.NewState(agentID, summary.KnowledgeAnyMask, hunger, threat, nowAct))
	}
	return states, ids, refusal.None
}

// ApplyToAggregate records a refinement on the aggregate itself,
// refusing RefinementLimitReached when the desired count exceeds the
// cohort count.
func ApplyToAggregate(a *Agent, desiredCount uint32) refusal.Code {
	if a == nil {
		return refusal.AgentStateInconsistent
	}
	if desiredCount > a.CohortCount {
		return refusal.RefinementLimitReached
	}
	a.RefinedCount = desiredCount
	return refusal.None
}

// EventType selects a refinement event's effect.
type EventType uint32

const (
	EventRefine EventType = iota
	EventCollapse
)

// Event is a scheduled REFINE or COLLAPSE of one aggregate agent. A
// consumed event's trigger act is set to due.TickNone without freeing
// its slot.
type Event struct {
	EventID          uint64
	AggregateAgentID uint64
	TriggerAct       dominium.ActTime
	Type             EventType
	DesiredCount     uint32
}

// ProcessEvents applies every pending event with trigger act at or
// before targetTick in (trigger act, event id) order. The first
// refusal stops processing and is returned.
func ProcessEvents(reg *Registry, events []Event, targetTick dominium.ActTime) refusal.Code {
	if reg == nil {
		return refusal.AgentStateInconsistent
	}
	for {
		var next *Event
		for i := range events {
			ev := &events[i]
			if ev.TriggerAct == due.TickNone || ev.TriggerAct > targetTick {
				continue
			}
			if next == nil ||
				ev.TriggerAct < next.TriggerAct ||
				(ev.TriggerAct == next.TriggerAct && ev.EventID < next.EventID) {
				next = ev
			}
		}
		if next == nil {
			return refusal.None
		}
		a := reg.Find(next.AggregateAgentID)
		if a == nil {
			return refusal.AgentStateInconsistent
		}
		if next.Type == EventRefine {
			if code := ApplyToAggregate(a, next.DesiredCount); code != refusal.None {
				return code
			}
		} else {
			if code := CollapseApply(a, next.TriggerAct); code != refusal.None {
				return code
			}
		}
		next.TriggerAct = due.TickNone
	}
}
