// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package identity

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dominium/refusal"
)

func timeChunk() *TimeChunk {
	tc := &TimeChunk{
		UniverseID:   7,
		InstanceID:   9,
		UPS:          60,
		TickIndex:    1000,
		FeatureEpoch: 1,
	}
	return tc
}

func TestValidateTimeChunk(t *testing.T) {
	require := require.New(t)

	l := NewLedger(nil, nil)

	code, err := l.Validate(timeChunk())
	require.NoError(err)
	require.Equal(refusal.IdentityNone, code)

	bad := timeChunk()
	bad.UPS = 0
	code, err = l.Validate(bad)
	require.Error(err)
	require.Equal(refusal.IdentityMismatch, code)

	bad = timeChunk()
	bad.FeatureEpoch = 0
	_, err = l.Validate(bad)
	require.ErrorIs(err, ErrInvalidTimeChunk)
}

func TestUnsupportedEpochRequiresMigration(t *testing.T) {
	require := require.New(t)

	l := NewLedger(nil, nil)
	tc := timeChunk()
	tc.FeatureEpoch = SupportedFeatureEpoch + 1
	code, err := l.Validate(tc)
	require.NoError(err)
	require.Equal(refusal.MigrationRequired, code)

	code, err = l.VerifyBundle(tc, nil)
	require.NoError(err)
	require.Equal(refusal.MigrationRequired, code)
}

func TestVerifyPayload(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	l := NewLedger(db, nil)
	tc := timeChunk()
	payload := []byte("orbital elements")
	tc.PayloadHashes[ChunkOrbits] = HashPayload(payload)

	require.Equal(refusal.IdentityNone, l.VerifyPayload(tc, ChunkOrbits, payload))

	// The verified hash is cached.
	cached, ok := l.VerifiedHash(tc, ChunkOrbits)
	require.True(ok)
	require.Equal(tc.PayloadHashes[ChunkOrbits], cached)

	// A corrupted payload mismatches.
	require.Equal(refusal.IdentityMismatch, l.VerifyPayload(tc, ChunkOrbits, []byte("orbital element!")))

	// Undeclared kinds mismatch unless the payload hashes to the zero
	// declaration, which FNV-1a of a real payload will not.
	require.Equal(refusal.IdentityMismatch, l.VerifyPayload(tc, ChunkBodies, payload))
}

func TestVerifyBundle(t *testing.T) {
	require := require.New(t)

	l := NewLedger(memdb.New(), nil)
	tc := timeChunk()
	payloads := map[ChunkKind][]byte{
		ChunkCosmo:   []byte("cosmo"),
		ChunkSystems: []byte("systems"),
	}
	for kind, payload := range payloads {
		tc.PayloadHashes[kind] = HashPayload(payload)
	}

	code, err := l.VerifyBundle(tc, payloads)
	require.NoError(err)
	require.Equal(refusal.IdentityNone, code)

	payloads[ChunkSystems] = []byte("tampered")
	code, err = l.VerifyBundle(tc, payloads)
	require.NoError(err)
	require.Equal(refusal.IdentityMismatch, code)
}

func TestHashPayloadStable(t *testing.T) {
	require := require.New(t)

	// Two hash passes over equal bytes agree; the empty payload hashes
	// to the FNV offset basis.
	require.Equal(HashPayload([]byte("x")), HashPayload([]byte("x")))
	require.Equal(uint64(1469598103934665603), HashPayload(nil))
}

func TestForeignChunksPreservedVerbatim(t *testing.T) {
	require := require.New(t)

	c := NewForeignContainer(2)
	key := ForeignKey{TypeID: 0x464F524E, Version: 2, Flags: 1}
	payload := []byte{1, 2, 3}
	require.NoError(c.Preserve(key, payload))

	// Mutating the caller's slice does not affect the preserved copy.
	payload[0] = 9
	got, ok := c.Get(key)
	require.True(ok)
	require.Equal([]byte{1, 2, 3}, got)

	// Same key overwrites in place, keeping arrival order.
	require.NoError(c.Preserve(ForeignKey{TypeID: 5}, []byte{4}))
	require.NoError(c.Preserve(key, []byte{7}))
	require.Equal(2, c.Len())
	require.Equal(key, c.Chunks()[0].Key)

	require.ErrorIs(c.Preserve(ForeignKey{TypeID: 6}, nil), ErrForeignFull)
}
