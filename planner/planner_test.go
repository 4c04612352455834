// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/goal"
	"github.com/luxfi/dominium/refusal"
)

func TestProcessIDStable(t *testing.T) {
	require := require.New(t)

	// The FNV-1a mapping is a cross-implementation contract; pin the
	// exact values for a few kinds.
	require.Equal(uint64(2768121964653370710), ProcessID(dominium.ProcessMove))
	require.Equal(uint64(14896977487326107121), ProcessID(dominium.ProcessAcquire))
	require.Equal(uint64(15672600221295237139), ProcessID(dominium.ProcessTrade))
}

func TestSubjectiveKnowledgeRefusal(t *testing.T) {
	require := require.New(t)

	g := &goal.Goal{
		GoalID: 1,
		Type:   dominium.GoalAcquire,
		Flags:  goal.FlagRequireKnowledge,
		Preconditions: goal.Preconditions{
			RequiredKnowledge: dominium.KnowledgeResource,
		},
	}
	ctx := &goal.Context{AgentID: 1}
	_, code := Build(g, ctx, nil, 5)
	require.Equal(refusal.InsufficientKnowledge, code)

	// ALLOW_UNKNOWN converts the refusal into an embedded warning.
	g.Flags |= goal.FlagAllowUnknown
	plan, code := Build(g, ctx, nil, 5)
	require.Equal(refusal.None, code)
	require.Equal(dominium.KnowledgeResource, plan.ExpectedEpistemicGapMask)
	require.NotZero(plan.FailurePointMask)
	require.Equal(uint32(refusal.InsufficientKnowledge), plan.Steps[0].FailureModeID)
}

func TestDivergentBeliefsDivergePlans(t *testing.T) {
	require := require.New(t)

	g := &goal.Goal{GoalID: 1, Type: dominium.GoalSurvive}
	planA, code := Build(g, &goal.Context{AgentID: 1, KnownResourceRef: 1001}, nil, 5)
	require.Equal(refusal.None, code)
	planB, code := Build(g, &goal.Context{AgentID: 2, KnownResourceRef: 2002}, nil, 5)
	require.Equal(refusal.None, code)

	require.Equal(uint64(1001), planA.Steps[0].TargetRef)
	require.Equal(uint64(2002), planB.Steps[0].TargetRef)
}

func TestTemplatesAndAggregates(t *testing.T) {
	require := require.New(t)

	g := &goal.Goal{
		GoalID:  7,
		AgentID: 3,
		Type:    dominium.GoalMaintain,
		Preconditions: goal.Preconditions{
			RequiredCapabilities: dominium.CapabilityMove,
			RequiredAuthority:    dominium.AuthorityBasic,
		},
	}
	ctx := &goal.Context{
		AgentID:          3,
		CapabilityMask:   dominium.CapabilityMove,
		AuthorityMask:    dominium.AuthorityBasic,
		KnownResourceRef: 88,
	}
	plan, code := Build(g, ctx, &Options{StepDurationAct: 3}, 10)
	require.Equal(refusal.None, code)
	require.Equal(uint32(2), plan.StepCount)
	require.Equal(dominium.ProcessSurvey, plan.Steps[0].Kind)
	require.Equal(dominium.ProcessMaintain, plan.Steps[1].Kind)
	require.Equal(uint64(7), plan.PlanID)
	require.Equal(uint64(3), plan.AgentID)
	require.Equal(uint32(2), plan.EstimatedCost)
	require.Equal(dominium.CapabilityMove, plan.RequiredCapabilityMask)
	require.Equal(dominium.AuthorityBasic, plan.RequiredAuthorityMask)
	require.Equal(dominium.ActTime(6), plan.EstimatedDurationAct)
	require.Equal(dominium.ActTime(16), plan.NextDueTick)
	require.Equal(dominium.ConfidenceMax, plan.ConfidenceQ16)
	require.Zero(plan.FailurePointMask)

	// Every required-capability bit on the plan originates from the
	// goal's preconditions.
	require.Zero(plan.RequiredCapabilityMask &^ g.Preconditions.RequiredCapabilities)
}

func TestStepLimits(t *testing.T) {
	require := require.New(t)

	g := &goal.Goal{GoalID: 1, Type: dominium.GoalSurvive}
	ctx := &goal.Context{AgentID: 1}

	// SURVIVE needs two steps; a compute budget of one starves it.
	_, code := Build(g, ctx, &Options{ComputeBudget: 1}, 5)
	require.Equal(refusal.GoalNotFeasible, code)

	_, code = Build(g, ctx, &Options{MaxDepth: 1}, 5)
	require.Equal(refusal.GoalNotFeasible, code)

	plan, code := Build(g, ctx, &Options{MaxSteps: 2}, 5)
	require.Equal(refusal.None, code)
	require.Equal(uint32(2), plan.StepCount)
	require.Equal(uint32(2), plan.ComputeBudgetUsed)
}

func TestExpiryPreflight(t *testing.T) {
	require := require.New(t)

	g := &goal.Goal{GoalID: 1, Type: dominium.GoalAcquire, ExpiryAct: 5}
	ctx := &goal.Context{AgentID: 1}
	_, code := Build(g, ctx, nil, 5)
	require.Equal(refusal.PlanExpired, code)

	// An options expiry earlier than the goal's governs.
	g.ExpiryAct = 20
	_, code = Build(g, ctx, &Options{ExpiryAct: 4}, 5)
	require.Equal(refusal.PlanExpired, code)

	plan, code := Build(g, ctx, nil, 5)
	require.Equal(refusal.None, code)
	require.Equal(dominium.ActTime(20), plan.ExpiryAct)
}

func TestCapabilityRefusalBeforeTemplates(t *testing.T) {
	require := require.New(t)

	g := &goal.Goal{
		GoalID: 1,
		Type:   dominium.GoalDefend,
		Preconditions: goal.Preconditions{
			RequiredCapabilities: dominium.CapabilityDefend,
		},
	}
	_, code := Build(g, &goal.Context{AgentID: 1}, nil, 5)
	require.Equal(refusal.InsufficientCapability, code)
}

func TestCollapseForCohortSaturates(t *testing.T) {
	require := require.New(t)

	g := &goal.Goal{GoalID: 1, Type: dominium.GoalSurvive}
	plan, code := Build(g, &goal.Context{AgentID: 1, KnownResourceRef: 5}, nil, 5)
	require.Equal(refusal.None, code)

	scaled, ok := CollapseForCohort(&plan, 1000)
	require.True(ok)
	require.Equal(uint32(2000), scaled.EstimatedCost)
	require.Equal(uint32(1000), scaled.Steps[0].ExpectedCostUnits)
	// The original is untouched.
	require.Equal(uint32(2), plan.EstimatedCost)

	// Costs saturate at the 32-bit ceiling rather than wrapping.
	plan.EstimatedCost = 1 << 31
	scaled, ok = CollapseForCohort(&plan, 1 << 20)
	require.True(ok)
	require.Equal(^uint32(0), scaled.EstimatedCost)

	_, ok = CollapseForCohort(&plan, 0)
	require.False(ok)
}

func TestResumeStepCursor(t *testing.T) {
	require := require.New(t)

	g := &goal.Goal{GoalID: 1, Type: dominium.GoalStabilize}
	plan, code := Build(g, &goal.Context{AgentID: 1, KnownDestinationRef: 9}, &Options{ResumeStep: 1}, 5)
	require.Equal(refusal.None, code)
	require.Equal(uint32(1), plan.StepCursor)
	require.Equal(dominium.ProcessSurvey, plan.Steps[0].Kind)
	require.Equal(dominium.ProcessTransfer, plan.Steps[1].Kind)
	require.Equal([]dominium.ProcessKind{dominium.ProcessSurvey, dominium.ProcessTransfer}, plan.ProcessKinds())
}
