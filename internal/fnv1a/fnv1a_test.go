// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fnv1a

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormativeConstants(t *testing.T) {
	require := require.New(t)

	// The offset basis is the hash of the empty input.
	require.Equal(uint64(1469598103934665603), Sum64Bytes(nil))

	// Independently computed reference value.
	require.Equal(uint64(16935458691279569593), Sum64Bytes([]byte("orbital elements")))

	// String and byte forms agree; the string form remaps zero to 1
	// but never produces the raw offset for non-empty keys.
	require.Equal(Sum64Bytes([]byte("PROC.MOVE")), Sum64String("PROC.MOVE"))
}

func TestStreaming(t *testing.T) {
	require := require.New(t)

	h := New()
	h = WriteString(h, "PROC.")
	h = WriteString(h, "MOVE")
	require.Equal(Sum64String("PROC.MOVE"), h)

	h2 := New()
	for _, b := range []byte("PROC.MOVE") {
		h2 = WriteByte(h2, b)
	}
	require.Equal(h, h2)
}
