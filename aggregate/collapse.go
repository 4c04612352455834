// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aggregate

import (
	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/belief"
	"github.com/luxfi/dominium/refusal"
)

// InterestSet reports player attention strength on a target. Collapse
// consults it so player focus can pin an aggregate to its refined
// state. The implementation is an external collaborator.
type InterestSet interface {
	// Strength returns the interest strength on (targetKind,
	// targetID) at nowAct.
	Strength(targetKind uint32, targetID uint64, nowAct dominium.ActTime) uint32
}

// CheckInterest refuses CollapseBlockedByInterest when the interest
// strength on the target meets or exceeds blockThreshold. A nil set
// or zero threshold never blocks.
func CheckInterest(set InterestSet, targetKind uint32, targetID uint64, nowAct dominium.ActTime, blockThreshold uint32) refusal.Code {
	if set == nil || blockThreshold == 0 {
		return refusal.None
	}
	if set.Strength(targetKind, targetID, nowAct) >= blockThreshold {
		return refusal.CollapseBlockedByInterest
	}
	return refusal.None
}

// CollapseApply discards the aggregate's refined representatives and
// schedules it to think immediately.
func CollapseApply(a *Agent, nowAct dominium.ActTime) refusal.Code {
	if a == nil {
		return refusal.AgentStateInconsistent
	}
	a.RefinedCount = 0
	a.NextThinkAct = nowAct
	return refusal.None
}

// CollapseFromIndividuals folds the refined individuals' states back
// into the aggregate's summaries and collapses it. Mismatched
// non-zero belief and goal counts refuse AgentStateInconsistent.
// Collapsing zero individuals yields a zero cohort count and no
// refusal.
func CollapseFromIndividuals(a *Agent, beliefs []belief.State, goals []GoalStatus, nowAct dominium.ActTime) refusal.Code {
	if a == nil {
		return refusal.AgentStateInconsistent
	}
	if len(goals) != 0 && len(beliefs) != 0 && len(goals) != len(beliefs) {
		return refusal.AgentStateInconsistent
	}
	a.BeliefSummary = AggregateBeliefs(beliefs)
	a.GoalSummary = AggregateGoals(goals)
	a.CohortCount = uint32(len(beliefs))
	a.RefinedCount = 0
	a.NextThinkAct = nowAct
	return refusal.None
}
