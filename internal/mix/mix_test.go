// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeededIsOrderSensitiveAndNonZero(t *testing.T) {
	require := require.New(t)

	// Independently computed reference value for the cohort id seed.
	require.Equal(uint64(18109855470072953070), Seeded(0xC0D1C0D1, 1, 10, 0))

	require.NotEqual(Seeded(1, 2, 3), Seeded(1, 3, 2))
	require.NotZero(Seeded(0))
}

func TestCombineChainsMatchSeeded(t *testing.T) {
	require := require.New(t)

	h := Combine(Combine(uint64(7), 1), 2)
	require.Equal(h, Seeded(7, 1, 2))
}
