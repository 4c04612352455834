// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dominium

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultParametersValid(t *testing.T) {
	require := require.New(t)
	require.NoError(DefaultParameters.Valid())
	require.NoError(TestParameters.Valid())
}

func TestParametersValidation(t *testing.T) {
	require := require.New(t)

	require.ErrorIs(NewParameters(0, ConfidenceMax, 8, 32, 0).Valid(), ErrInvalidMinConfidence)
	require.ErrorIs(NewParameters(0, 0, 0, 32, 0).Valid(), ErrInvalidPlanMaxSteps)
	require.ErrorIs(NewParameters(0, 0, 9, 32, 0).Valid(), ErrInvalidPlanMaxSteps)
	require.ErrorIs(NewParameters(0, 0, 8, 0, 0).Valid(), ErrInvalidHouseholdMax)
	require.ErrorIs(NewParameters(0, 0, 8, 33, 0).Valid(), ErrInvalidHouseholdMax)
	require.ErrorIs(NewParameters(0, 0, 8, 32, ConfidenceMax+1).Valid(), ErrInvalidCollapseThreshold)
	require.NoError(NewParameters(40000, 1000, 8, 32, ConfidenceMax/2).Valid())
}

func TestProcessKindBits(t *testing.T) {
	require := require.New(t)

	require.Zero(ProcessNone.Bit())
	require.Equal(uint32(1), ProcessMove.Bit())
	require.Equal(uint32(1<<8), ProcessTransfer.Bit())

	// Bit positions are disjoint across all kinds.
	var union uint32
	for k := ProcessMove; k <= ProcessTransfer; k++ {
		require.Zero(union & k.Bit())
		union |= k.Bit()
	}
}

func TestGoalTypeValid(t *testing.T) {
	require := require.New(t)
	require.True(GoalSurvive.Valid())
	require.True(GoalStabilize.Valid())
	require.False(GoalType(GoalTypeCount).Valid())
}

func TestContextDefaults(t *testing.T) {
	require := require.New(t)

	ctx := NewContext(nil, nil, nil)
	require.Equal(DefaultParameters, ctx.Parameters)
	// Nil logger is valid; refusal logging is a no-op.
	ctx.DebugRefusal("refused", "agent", uint64(1))
}
