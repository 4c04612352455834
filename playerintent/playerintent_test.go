// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package playerintent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/doctrine"
	"github.com/luxfi/dominium/goal"
	"github.com/luxfi/dominium/refusal"
)

type stubFields struct {
	slope   int32
	bearing int32
}

func (f *stubFields) Value(kind FieldKind, x, y int32) (int32, bool) {
	switch kind {
	case FieldSlope:
		return f.slope, true
	case FieldBearingCapacity:
		return f.bearing, true
	default:
		return 0, false
	}
}

func baseContext() *Context {
	return &Context{
		NowAct: 10,
		Caps: []Capability{{
			AgentID:        50,
			CapabilityMask: dominium.CapabilityMove,
			AuthorityMask:  dominium.AuthorityBasic,
		}},
		Beliefs: []Belief{{
			AgentID:       50,
			KnowledgeMask: dominium.KnowledgeResource,
		}},
		Events: NewEventLog(8, 1),
	}
}

func TestBindAndRebind(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(2)
	require.NoError(reg.Bind(1, 50))
	require.NoError(reg.Bind(1, 60))
	require.Equal(uint64(60), reg.Find(1).AgentID)
	require.ErrorIs(reg.Bind(0, 50), ErrInvalidBinding)
}

func TestProcessRequestGates(t *testing.T) {
	require := require.New(t)

	q := NewQueue(8, 1, nil)
	ctx := baseContext()

	submit := func(req ProcessRequest) *Intent {
		intent := &Intent{
			PlayerID:       1,
			AgentID:        50,
			Kind:           IntentProcessRequest,
			ProcessRequest: req,
		}
		_, err := q.Submit(intent, ctx)
		require.NoError(err)
		return &q.Intents()[q.Len()-1]
	}

	// Capability gate.
	got := submit(ProcessRequest{RequiredCapabilityMask: dominium.CapabilityDefend})
	require.Equal(IntentRefused, got.Status)
	require.Equal(refusal.PlayerNoCapability, got.Refusal)

	// Authority gate.
	got = submit(ProcessRequest{RequiredAuthorityMask: dominium.AuthorityMilitary})
	require.Equal(refusal.PlayerNoAuthority, got.Refusal)

	// Knowledge gate reads the subjective snapshot.
	got = submit(ProcessRequest{RequiredKnowledgeMask: dominium.KnowledgeThreat})
	require.Equal(refusal.PlayerNoKnowledge, got.Refusal)

	// All gates pass.
	got = submit(ProcessRequest{
		RequiredCapabilityMask: dominium.CapabilityMove,
		RequiredAuthorityMask:  dominium.AuthorityBasic,
		RequiredKnowledgeMask:  dominium.KnowledgeResource,
	})
	require.Equal(IntentAccepted, got.Status)
	require.Equal(refusal.PlayerNone, got.Refusal)

	// Intent ids are sequential; every submission mirrors an event.
	intents := q.Intents()
	for i := range intents {
		require.Equal(uint64(i+1), intents[i].IntentID)
	}
	events := ctx.Events.Events()
	require.Equal(len(intents), len(events))
	require.Equal(EventIntentRefused, events[0].Kind)
	require.Equal(EventIntentAccepted, events[3].Kind)
	require.Equal(dominium.ActTime(10), events[0].ActTime)
}

func TestGrantedAuthorityPassesGate(t *testing.T) {
	require := require.New(t)

	q := NewQueue(4, 1, nil)
	ctx := baseContext()
	ctx.Authority = doctrine.NewAuthorityRegistry(2)
	require.NoError(ctx.Authority.Register(doctrine.AuthorityGrant{
		GrantID:       1,
		GranteeID:     50,
		AuthorityMask: dominium.AuthorityMilitary,
	}))

	accepted, err := q.Submit(&Intent{
		PlayerID: 1,
		AgentID:  50,
		Kind:     IntentProcessRequest,
		ProcessRequest: ProcessRequest{
			RequiredAuthorityMask: dominium.AuthorityMilitary,
		},
	}, ctx)
	require.NoError(err)
	require.True(accepted)
}

func TestPhysicalConstraints(t *testing.T) {
	require := require.New(t)

	q := NewQueue(4, 1, nil)
	ctx := baseContext()
	ctx.Fields = &stubFields{slope: 2000, bearing: 100}

	accepted, err := q.Submit(&Intent{
		PlayerID: 1, AgentID: 50, Kind: IntentProcessRequest,
		ProcessRequest: ProcessRequest{MaxSlopeQ16: 1000},
	}, ctx)
	require.NoError(err)
	require.False(accepted)
	require.Equal(refusal.PlayerPhysicalConstraint, q.Intents()[0].Refusal)

	accepted, err = q.Submit(&Intent{
		PlayerID: 1, AgentID: 50, Kind: IntentProcessRequest,
		ProcessRequest: ProcessRequest{MaxSlopeQ16: 3000, MinBearingQ16: 50},
	}, ctx)
	require.NoError(err)
	require.True(accepted)

	// Headless: without a provider the physical checks are skipped.
	ctx.Fields = nil
	accepted, err = q.Submit(&Intent{
		PlayerID: 1, AgentID: 50, Kind: IntentProcessRequest,
		ProcessRequest: ProcessRequest{MaxSlopeQ16: 1},
	}, ctx)
	require.NoError(err)
	require.True(accepted)
}

func TestGoalUpdateRegistersGoal(t *testing.T) {
	require := require.New(t)

	q := NewQueue(4, 1, nil)
	ctx := baseContext()
	ctx.Goals = goal.NewRegistry(4, 1, nil)

	accepted, err := q.Submit(&Intent{
		PlayerID: 1,
		AgentID:  50,
		Kind:     IntentGoalUpdate,
		GoalUpdate: goal.Goal{
			AgentID:      50,
			Type:         dominium.GoalAcquire,
			BasePriority: 200,
			Preconditions: goal.Preconditions{
				RequiredCapabilities: dominium.CapabilityMove,
			},
		},
	}, ctx)
	require.NoError(err)
	require.True(accepted)
	require.Equal(1, ctx.Goals.Len())

	// A refused goal update has no side effects beyond queue and log.
	accepted, err = q.Submit(&Intent{
		PlayerID: 1,
		AgentID:  50,
		Kind:     IntentGoalUpdate,
		GoalUpdate: goal.Goal{
			AgentID: 50,
			Preconditions: goal.Preconditions{
				RequiredCapabilities: dominium.CapabilityResearch,
			},
		},
	}, ctx)
	require.NoError(err)
	require.False(accepted)
	require.Equal(1, ctx.Goals.Len())
}

func TestPlanConfirmAndInvalidKind(t *testing.T) {
	require := require.New(t)

	q := NewQueue(4, 1, nil)
	ctx := baseContext()

	accepted, err := q.Submit(&Intent{PlayerID: 1, AgentID: 50, Kind: IntentPlanConfirm}, ctx)
	require.NoError(err)
	require.False(accepted)
	require.Equal(refusal.PlayerPlanNotFound, q.Intents()[0].Refusal)

	accepted, err = q.Submit(&Intent{PlayerID: 1, AgentID: 50, Kind: IntentPlanConfirm, PlanID: 5}, ctx)
	require.NoError(err)
	require.True(accepted)

	accepted, err = q.Submit(&Intent{PlayerID: 1, AgentID: 50, Kind: IntentNone}, ctx)
	require.NoError(err)
	require.False(accepted)
	require.Equal(refusal.PlayerInvalidIntent, q.Intents()[2].Refusal)
}

func TestBuildSnapshot(t *testing.T) {
	require := require.New(t)

	beliefs := []Belief{{
		AgentID:          50,
		KnowledgeMask:    dominium.KnowledgeResource,
		KnownResourceRef: 1001,
	}}
	snapshot, found := BuildSnapshot(beliefs, 50)
	require.True(found)
	require.Equal(uint64(1001), snapshot.KnownResourceRef)

	snapshot, found = BuildSnapshot(beliefs, 99)
	require.False(found)
	require.Equal(uint64(99), snapshot.AgentID)
	require.Zero(snapshot.KnowledgeMask)
}
