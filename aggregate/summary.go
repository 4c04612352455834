// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package aggregate implements aggregate agents and the aggregation/
// refinement/collapse (ARC) subsystem: cohort-wide belief and goal
// summaries, deterministic selection of representatives during
// refinement, and order-independent collapse back to aggregate form.
package aggregate

import (
	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/belief"
)

// BeliefSummary is the order-independent aggregate of per-individual
// belief states: shared and union knowledge masks plus min/max/average
// need levels.
type BeliefSummary struct {
	Count            uint32
	KnowledgeMask    uint32
	KnowledgeAnyMask uint32
	HungerMin        uint32
	HungerMax        uint32
	HungerAvg        uint32
	ThreatMin        uint32
	ThreatMax        uint32
	ThreatAvg        uint32
}

// AggregateBeliefs summarizes individual belief states. The result is
// invariant under any permutation of the input; an empty input yields
// a zeroed summary.
func AggregateBeliefs(states []belief.State) BeliefSummary {
	var out BeliefSummary
	if len(states) == 0 {
		return out
	}
	out.Count = uint32(len(states))
	out.KnowledgeMask = states[0].KnowledgeMask
	out.KnowledgeAnyMask = states[0].KnowledgeMask
	out.HungerMin = states[0].HungerLevel
	out.HungerMax = states[0].HungerLevel
	out.ThreatMin = states[0].ThreatLevel
	out.ThreatMax = states[0].ThreatLevel
	hungerSum := uint64(states[0].HungerLevel)
	threatSum := uint64(states[0].ThreatLevel)
	for _, s := range states[1:] {
		out.KnowledgeMask &= s.KnowledgeMask
		out.KnowledgeAnyMask |= s.KnowledgeMask
		if s.HungerLevel < out.HungerMin {
			out.HungerMin = s.HungerLevel
		}
		if s.HungerLevel > out.HungerMax {
			out.HungerMax = s.HungerLevel
		}
		if s.ThreatLevel < out.ThreatMin {
			out.ThreatMin = s.ThreatLevel
		}
		if s.ThreatLevel > out.ThreatMax {
			out.ThreatMax = s.ThreatLevel
		}
		hungerSum += uint64(s.HungerLevel)
		threatSum += uint64(s.ThreatLevel)
	}
	out.HungerAvg = uint32(hungerSum / uint64(len(states)))
	out.ThreatAvg = uint32(threatSum / uint64(len(states)))
	return out
}

// GoalStatus is one individual's (goal type, satisfied) observation.
type GoalStatus struct {
	GoalType  dominium.GoalType
	Satisfied bool
}

// GoalSummary tallies per-type goal and satisfaction counts.
type GoalSummary struct {
	Count           uint32
	GoalCounts      [dominium.GoalTypeCount]uint32
	SatisfiedCounts [dominium.GoalTypeCount]uint32
}

// AggregateGoals tallies goal statuses per type. Order-independent;
// unknown goal types are skipped.
func AggregateGoals(statuses []GoalStatus) GoalSummary {
	var out GoalSummary
	if len(statuses) == 0 {
		return out
	}
	out.Count = uint32(len(statuses))
	for _, s := range statuses {
		if !s.GoalType.Valid() {
			continue
		}
		out.GoalCounts[s.GoalType]++
		if s.Satisfied {
			out.SatisfiedCounts[s.GoalType]++
		}
	}
	return out
}
