// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package identity implements the universe bundle's identity
// contract: the TIME chunk declares a 64-bit FNV-1a hash per payload
// kind, and a valid load requires each payload's hash to equal its
// declaration. Bundle framing itself (TLV chunks, file I/O) is an
// external collaborator; this package only computes, compares, and
// caches the hashes, gates the feature epoch, and preserves foreign
// chunks verbatim.
package identity

import (
	"encoding/binary"
	"errors"

	"github.com/luxfi/database"
	"github.com/luxfi/log"
	"github.com/luxfi/version"

	"github.com/luxfi/dominium/internal/fnv1a"
	"github.com/luxfi/dominium/refusal"
)

// ChunkKind enumerates the payload kinds hashed into the TIME chunk.
type ChunkKind uint32

const (
	ChunkCosmo ChunkKind = iota
	ChunkSystems
	ChunkBodies
	ChunkFrames
	ChunkTopology
	ChunkOrbits
	ChunkSurface
	ChunkConstructions
	ChunkStations
	ChunkRoutes
	ChunkTransfers
	ChunkProduction
	ChunkMacroEconomy
	ChunkMacroEvents
	chunkKindCount
)

// ChunkKindCount is the number of hashed payload kinds.
const ChunkKindCount = int(chunkKindCount)

func (k ChunkKind) String() string {
	switch k {
	case ChunkCosmo:
		return "cosmo"
	case ChunkSystems:
		return "systems"
	case ChunkBodies:
		return "bodies"
	case ChunkFrames:
		return "frames"
	case ChunkTopology:
		return "topology"
	case ChunkOrbits:
		return "orbits"
	case ChunkSurface:
		return "surface"
	case ChunkConstructions:
		return "constructions"
	case ChunkStations:
		return "stations"
	case ChunkRoutes:
		return "routes"
	case ChunkTransfers:
		return "transfers"
	case ChunkProduction:
		return "production"
	case ChunkMacroEconomy:
		return "macro_economy"
	case ChunkMacroEvents:
		return "macro_events"
	default:
		return "unknown"
	}
}

// BundleFormatVersion identifies the bundle format this kernel
// writes.
var BundleFormatVersion = &version.Semantic{Major: 1, Minor: 0, Patch: 0}

// SupportedFeatureEpoch is the newest feature epoch this kernel can
// load without migration.
const SupportedFeatureEpoch uint32 = 1

// TimeChunk is the required identity-bearing chunk of a persisted
// bundle.
type TimeChunk struct {
	UniverseID       uint64
	InstanceID       uint64
	ContentGraphHash uint64
	SimFlagsHash     uint64
	UPS              uint32
	TickIndex        uint64
	FeatureEpoch     uint32
	PayloadHashes    [chunkKindCount]uint64
}

// ErrInvalidTimeChunk is returned for a TIME chunk violating its own
// field constraints (ups > 0, feature_epoch > 0).
var ErrInvalidTimeChunk = errors.New("time chunk requires ups > 0 and feature_epoch > 0")

// HashPayload computes the normative FNV-1a identity hash of a
// payload.
func HashPayload(payload []byte) uint64 {
	return fnv1a.Sum64Bytes(payload)
}

// Ledger verifies payload hashes against a TIME chunk's declarations,
// recording each last-verified hash in a database that VerifiedHash
// reads back. Verification always re-hashes the payload and never
// consults the cache; correctness never depends on it.
type Ledger struct {
	db  database.Database
	log log.Logger
}

// NewLedger constructs a Ledger. A nil database disables caching.
func NewLedger(db database.Database, logger log.Logger) *Ledger {
	return &Ledger{db: db, log: logger}
}

// Validate checks the TIME chunk's own invariants and the feature
// epoch gate: an epoch newer than this kernel supports refuses
// MigrationRequired.
func (l *Ledger) Validate(tc *TimeChunk) (refusal.IdentityCode, error) {
	if tc == nil || tc.UPS == 0 || tc.FeatureEpoch == 0 {
		return refusal.IdentityMismatch, ErrInvalidTimeChunk
	}
	if tc.FeatureEpoch > SupportedFeatureEpoch {
		if l != nil && l.log != nil {
			l.log.Debug("bundle feature epoch unsupported",
				log.Uint32("epoch", tc.FeatureEpoch),
				log.Uint32("supported", SupportedFeatureEpoch),
				log.Stringer("format", BundleFormatVersion))
		}
		return refusal.MigrationRequired, nil
	}
	return refusal.IdentityNone, nil
}

func cacheKey(tc *TimeChunk, kind ChunkKind) []byte {
	key := make([]byte, 20)
	binary.BigEndian.PutUint64(key[0:], tc.UniverseID)
	binary.BigEndian.PutUint64(key[8:], tc.InstanceID)
	binary.BigEndian.PutUint32(key[16:], uint32(kind))
	return key
}

// VerifyPayload hashes one payload and compares it with the TIME
// chunk's declaration for that kind. Mismatch refuses
// IdentityMismatch; match records the hash in the cache.
func (l *Ledger) VerifyPayload(tc *TimeChunk, kind ChunkKind, payload []byte) refusal.IdentityCode {
	if tc == nil || kind >= chunkKindCount {
		return refusal.IdentityMismatch
	}
	declared := tc.PayloadHashes[kind]
	actual := HashPayload(payload)
	if actual != declared {
		if l != nil && l.log != nil {
			l.log.Debug("chunk identity mismatch",
				log.Stringer("kind", kind),
				log.Uint64("declared", declared),
				log.Uint64("actual", actual))
		}
		return refusal.IdentityMismatch
	}
	if l != nil && l.db != nil {
		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, actual)
		_ = l.db.Put(cacheKey(tc, kind), value)
	}
	return refusal.IdentityNone
}

// VerifiedHash returns the cached last-verified hash for a chunk
// kind, if any.
func (l *Ledger) VerifiedHash(tc *TimeChunk, kind ChunkKind) (uint64, bool) {
	if l == nil || l.db == nil || tc == nil {
		return 0, false
	}
	value, err := l.db.Get(cacheKey(tc, kind))
	if err != nil || len(value) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(value), true
}

// VerifyBundle validates the TIME chunk and every supplied payload.
// Payloads absent from the map are not checked; the framing layer
// decides which kinds a bundle carries.
func (l *Ledger) VerifyBundle(tc *TimeChunk, payloads map[ChunkKind][]byte) (refusal.IdentityCode, error) {
	code, err := l.Validate(tc)
	if code != refusal.IdentityNone || err != nil {
		return code, err
	}
	for kind := ChunkKind(0); kind < chunkKindCount; kind++ {
		payload, ok := payloads[kind]
		if !ok {
			continue
		}
		if code := l.VerifyPayload(tc, kind, payload); code != refusal.IdentityNone {
			return code, nil
		}
	}
	return refusal.IdentityNone, nil
}
