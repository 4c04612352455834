// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package goal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/doctrine"
	"github.com/luxfi/dominium/refusal"
)

func TestRegistryOrderingAndAutoID(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(4, 1, nil)
	id, err := reg.Register(&Goal{GoalID: 20, Type: dominium.GoalAcquire})
	require.NoError(err)
	require.Equal(uint64(20), id)

	id, err = reg.Register(&Goal{GoalID: 10, Type: dominium.GoalSurvive})
	require.NoError(err)
	require.Equal(uint64(10), id)

	// Auto-assigned ids come from the counter, never zero.
	id, err = reg.Register(&Goal{Type: dominium.GoalDefend})
	require.NoError(err)
	require.Equal(uint64(1), id)

	_, err = reg.Register(&Goal{GoalID: 10})
	require.ErrorIs(err, ErrDuplicateGoal)

	goals := reg.Goals()
	require.Equal([]uint64{1, 10, 20}, []uint64{goals[0].GoalID, goals[1].GoalID, goals[2].GoalID})

	// Base priority clamps to scale at registration time.
	id, err = reg.Register(&Goal{GoalID: 30, BasePriority: 5000})
	require.NoError(err)
	require.Equal(dominium.PriorityScale, reg.Find(id).BasePriority)
}

func TestArbitrationUnderNeed(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(4, 1, nil)
	_, err := reg.Register(&Goal{
		GoalID:       1,
		AgentID:      1,
		Type:         dominium.GoalSurvive,
		BasePriority: 100,
		Preconditions: Preconditions{
			RequiredCapabilities: dominium.CapabilityMove,
		},
	})
	require.NoError(err)
	_, err = reg.Register(&Goal{
		GoalID:       2,
		AgentID:      1,
		Type:         dominium.GoalAcquire,
		BasePriority: 400,
	})
	require.NoError(err)

	ctx := &Context{
		AgentID:        1,
		CapabilityMask: dominium.CapabilityMove | dominium.CapabilityTrade,
		AuthorityMask:  dominium.AuthorityBasic | dominium.AuthorityTrade,
	}
	result := ChooseGoal(reg, ctx, 10)
	require.Equal(refusal.None, result.Refusal)
	require.Equal(uint64(2), result.Goal.GoalID)
	require.Equal(uint32(400), result.ComputedPriority)

	// Hunger boosts the SURVIVE goal past the flat ACQUIRE priority.
	ctx.HungerLevel = 900
	result = ChooseGoal(reg, ctx, 10)
	require.Equal(refusal.None, result.Refusal)
	require.Equal(uint64(1), result.Goal.GoalID)
	require.Equal(dominium.PriorityScale, result.ComputedPriority)
}

func TestFailureRewritesArbitration(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(4, 1, nil)
	_, err := reg.Register(&Goal{
		GoalID:               1,
		Type:                 dominium.GoalAcquire,
		BasePriority:         500,
		AbandonAfterFailures: 1,
	})
	require.NoError(err)
	_, err = reg.Register(&Goal{
		GoalID:       2,
		Type:         dominium.GoalDefend,
		BasePriority: 100,
	})
	require.NoError(err)

	ctx := &Context{AgentID: 9}
	result := ChooseGoal(reg, ctx, 5)
	require.Equal(uint64(1), result.Goal.GoalID)

	require.NoError(reg.RecordFailure(1))
	require.Equal(StatusAbandoned, reg.Find(1).Status)

	result = ChooseGoal(reg, ctx, 5)
	require.Equal(refusal.None, result.Refusal)
	require.Equal(uint64(2), result.Goal.GoalID)
}

func TestArbitrationReportsSpecificRefusal(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(4, 1, nil)
	_, err := reg.Register(&Goal{
		GoalID:       1,
		Type:         dominium.GoalAcquire,
		BasePriority: 300,
		Preconditions: Preconditions{
			RequiredAuthority: dominium.AuthorityMilitary,
		},
	})
	require.NoError(err)

	result := ChooseGoal(reg, &Context{AgentID: 1}, 5)
	require.Equal(refusal.InsufficientAuthority, result.Refusal)
	require.Equal(uint64(1), result.Goal.GoalID)
}

func TestLapsedHorizonExcludesGoal(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(4, 1, nil)
	_, err := reg.Register(&Goal{
		GoalID:       1,
		Type:         dominium.GoalAcquire,
		BasePriority: 300,
		HorizonAct:   4,
	})
	require.NoError(err)

	result := ChooseGoal(reg, &Context{AgentID: 1}, 3)
	require.Equal(refusal.None, result.Refusal)

	// At the horizon the goal is no longer active at all.
	result = ChooseGoal(reg, &Context{AgentID: 1}, 4)
	require.Equal(refusal.GoalNotFeasible, result.Refusal)
	require.Nil(result.Goal)
}

func TestRiskGate(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(4, 1, nil)
	_, err := reg.Register(&Goal{
		GoalID:            1,
		Type:              dominium.GoalAcquire,
		BasePriority:      300,
		AcceptableRiskQ16: 1000,
	})
	require.NoError(err)

	// Threat 500/1000 rescales to half of Q16 full scale, above the
	// goal's bound, and the agent tolerates less than that.
	result := ChooseGoal(reg, &Context{AgentID: 1, ThreatLevel: 500}, 5)
	require.Equal(refusal.GoalNotFeasible, result.Refusal)
	require.Nil(result.Goal)

	// A tolerant agent passes the gate.
	result = ChooseGoal(reg, &Context{AgentID: 1, ThreatLevel: 500, RiskToleranceQ16: dominium.ConfidenceMax}, 5)
	require.Equal(refusal.None, result.Refusal)
}

func TestConfidenceScalesPriority(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(4, 1, nil)
	_, err := reg.Register(&Goal{
		GoalID:                 1,
		Type:                   dominium.GoalAcquire,
		BasePriority:           400,
		EpistemicConfidenceQ16: dominium.ConfidenceMax / 2,
	})
	require.NoError(err)

	result := ChooseGoal(reg, &Context{AgentID: 1}, 5)
	require.Equal(uint32(200), result.ComputedPriority)
	require.Equal(dominium.ConfidenceMax/2, result.ConfidenceQ16)
}

func TestDoctrineFilterAndModifier(t *testing.T) {
	require := require.New(t)

	goals := NewRegistry(4, 1, nil)
	_, err := goals.Register(&Goal{GoalID: 1, Type: dominium.GoalTrade, BasePriority: 300})
	require.NoError(err)
	_, err = goals.Register(&Goal{GoalID: 2, Type: dominium.GoalResearch, BasePriority: 200})
	require.NoError(err)

	doctrines := doctrine.NewRegistry(4, nil)
	d := &doctrine.Doctrine{
		DoctrineID:         77,
		ForbiddenGoalTypes: doctrine.GoalTypeBit(dominium.GoalTrade),
	}
	d.PriorityModifiers[dominium.GoalResearch] = 150
	require.NoError(doctrines.Register(d))

	ctx := &Context{AgentID: 1, ExplicitDoctrineRef: 77}
	result := ChooseGoalWithDoctrine(goals, doctrines, nil, ctx, 5)
	require.Equal(refusal.None, result.Refusal)
	require.Equal(uint64(2), result.Goal.GoalID)
	require.Equal(uint32(350), result.ComputedPriority)
	require.Equal(uint64(77), result.AppliedDoctrineRef)
}

func TestDoctrineForbidsEverything(t *testing.T) {
	require := require.New(t)

	goals := NewRegistry(2, 1, nil)
	_, err := goals.Register(&Goal{GoalID: 1, Type: dominium.GoalTrade, BasePriority: 300})
	require.NoError(err)

	doctrines := doctrine.NewRegistry(2, nil)
	require.NoError(doctrines.Register(&doctrine.Doctrine{
		DoctrineID:         5,
		ForbiddenGoalTypes: doctrine.GoalTypeBit(dominium.GoalTrade),
	}))

	result := ChooseGoalWithDoctrine(goals, doctrines, nil, &Context{AgentID: 1, ExplicitDoctrineRef: 5}, 5)
	require.Equal(refusal.GoalForbiddenByDoctrine, result.Refusal)
}

func TestDoctrineAuthorizationAndRole(t *testing.T) {
	require := require.New(t)

	goals := NewRegistry(2, 1, nil)
	_, err := goals.Register(&Goal{GoalID: 1, Type: dominium.GoalTrade, BasePriority: 300})
	require.NoError(err)

	doctrines := doctrine.NewRegistry(2, nil)
	require.NoError(doctrines.Register(&doctrine.Doctrine{
		DoctrineID:            5,
		AuthorityRequiredMask: dominium.AuthorityMilitary,
	}))

	// Binding lacks the doctrine's required authority.
	result := ChooseGoalWithDoctrine(goals, doctrines, nil, &Context{AgentID: 1, ExplicitDoctrineRef: 5}, 5)
	require.Equal(refusal.DoctrineNotAuthorized, result.Refusal)

	// An unknown role refuses RoleMismatch before doctrine selection.
	roles := doctrine.NewRoleRegistry(2)
	result = ChooseGoalWithDoctrine(goals, doctrines, roles, &Context{AgentID: 1, RoleID: 42, ExplicitDoctrineRef: 5}, 5)
	require.Equal(refusal.RoleMismatch, result.Refusal)

	// A known role whose requirements the context misses also refuses.
	require.NoError(roles.Register(doctrine.Role{
		RoleID:                42,
		AuthorityRequirements: dominium.AuthorityMilitary,
	}))
	result = ChooseGoalWithDoctrine(goals, doctrines, roles, &Context{AgentID: 1, RoleID: 42, ExplicitDoctrineRef: 5}, 5)
	require.Equal(refusal.RoleMismatch, result.Refusal)

	// A role default doctrine is used when no explicit ref is bound.
	require.NoError(doctrines.Register(&doctrine.Doctrine{DoctrineID: 6}))
	require.NoError(roles.Register(doctrine.Role{RoleID: 43, DefaultDoctrineRef: 6}))
	result = ChooseGoalWithDoctrine(goals, doctrines, roles, &Context{AgentID: 1, RoleID: 43}, 5)
	require.Equal(refusal.None, result.Refusal)
	require.Equal(uint64(6), result.AppliedDoctrineRef)
	require.Equal(uint64(43), result.AppliedRoleRef)
}

func TestConditionsGateGoals(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(2, 1, nil)
	g := &Goal{GoalID: 1, Type: dominium.GoalAcquire, BasePriority: 300, ConditionCount: 1}
	g.Conditions[0] = Condition{Kind: CondResource, SubjectRef: 1001}
	_, err := reg.Register(g)
	require.NoError(err)

	result := ChooseGoal(reg, &Context{AgentID: 1}, 5)
	require.Nil(result.Goal)

	result = ChooseGoal(reg, &Context{AgentID: 1, KnownResourceRef: 2002}, 5)
	require.Nil(result.Goal)

	result = ChooseGoal(reg, &Context{AgentID: 1, KnownResourceRef: 1001}, 5)
	require.Equal(refusal.None, result.Refusal)
}
