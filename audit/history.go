// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package audit

import (
	"github.com/luxfi/math/set"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/internal/fnv1a"
)

// HistoryRecord is one narrative-scoped view of an audit entry. A
// zero narrative id marks the objective record.
type HistoryRecord struct {
	HistoryID     uint64
	SourceEventID uint64
	NarrativeID   uint64
	AgentID       uint64
	InstitutionID uint64
	SubjectID     uint64
	ActTime       dominium.ActTime
	Kind          Kind
	Flags         uint32
	Amount        int64
}

// HistoryPolicy selects which views Aggregate produces. Narrative ids
// are fanned out in slice order; duplicates are skipped.
type HistoryPolicy struct {
	NarrativeIDs     []uint64
	IncludeObjective bool
}

// HistoryBuffer is a bounded buffer of history records preserving
// audit order.
type HistoryBuffer struct {
	records  []HistoryRecord
	capacity int
	nextID   uint64
}

// NewHistoryBuffer constructs a HistoryBuffer with fixed capacity. A
// zero startID begins history ids at 1.
func NewHistoryBuffer(capacity int, startID uint64) *HistoryBuffer {
	if startID == 0 {
		startID = 1
	}
	return &HistoryBuffer{
		records:  make([]HistoryRecord, 0, capacity),
		capacity: capacity,
		nextID:   startID,
	}
}

// Len returns the number of buffered records.
func (b *HistoryBuffer) Len() int { return len(b.records) }

// Records returns the buffered records in audit order.
func (b *HistoryBuffer) Records() []HistoryRecord { return b.records }

func (b *HistoryBuffer) push(rec HistoryRecord) bool {
	if len(b.records) >= b.capacity {
		return false
	}
	rec.HistoryID = b.nextID
	b.nextID++
	b.records = append(b.records, rec)
	return true
}

// Aggregate fans each audit entry out into the buffer: one record per
// policy narrative id, plus one objective record when the policy opts
// in. Audit order is preserved; aggregation stops silently when the
// buffer fills. Returns the number of records written.
func Aggregate(l *Log, policy *HistoryPolicy, buf *HistoryBuffer) int {
	if l == nil || policy == nil || buf == nil {
		return 0
	}
	written := 0
	for i := range l.entries {
		e := &l.entries[i]
		base := HistoryRecord{
			SourceEventID: uint64(i) + 1,
			AgentID:       e.AgentID,
			SubjectID:     e.SubjectID,
			InstitutionID: e.RelatedID,
			ActTime:       e.ActTime,
			Kind:          e.Kind,
			Amount:        e.Amount,
		}
		seen := set.NewSet[uint64](len(policy.NarrativeIDs))
		for _, narrativeID := range policy.NarrativeIDs {
			if narrativeID == 0 || seen.Contains(narrativeID) {
				continue
			}
			seen.Add(narrativeID)
			rec := base
			rec.NarrativeID = narrativeID
			if !buf.push(rec) {
				return written
			}
			written++
		}
		if policy.IncludeObjective {
			if !buf.push(base) {
				return written
			}
			written++
		}
	}
	return written
}

// HashHistory returns the FNV-1a hash over a history buffer's
// records, folding each field as eight little-endian bytes in
// declaration order.
func HashHistory(buf *HistoryBuffer) uint64 {
	h := fnv1a.New()
	if buf == nil {
		return h
	}
	h = fnv1aU64(h, uint64(len(buf.records)))
	for i := range buf.records {
		rec := &buf.records[i]
		h = fnv1aU64(h, rec.HistoryID)
		h = fnv1aU64(h, rec.SourceEventID)
		h = fnv1aU64(h, rec.NarrativeID)
		h = fnv1aU64(h, rec.AgentID)
		h = fnv1aU64(h, rec.InstitutionID)
		h = fnv1aU64(h, rec.SubjectID)
		h = fnv1aU64(h, rec.ActTime)
		h = fnv1aU64(h, uint64(rec.Kind))
		h = fnv1aU64(h, uint64(rec.Flags))
		h = fnv1aU64(h, uint64(rec.Amount))
	}
	return h
}

func fnv1aU64(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h = fnv1a.WriteByte(h, byte(v>>(uint(i)*8)))
	}
	return h
}
