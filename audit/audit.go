// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package audit implements the append-only audit log and its history
// aggregation. Records append in call order under a caller-set context
// (act time, provenance id); two runs producing the same call sequence
// produce byte-identical logs, verified by an FNV-1a hash over a
// deterministic wire snapshot.
package audit

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/internal/fnv1a"
)

// Kind classifies an audit entry.
type Kind uint32

const (
	KindNone Kind = iota
	KindGoalChosen
	KindGoalRefused
	KindPlanBuilt
	KindPlanRefused
	KindGoalFailed
	KindGoalSatisfied
	KindConflictBegin
	KindConflictResolve
	KindInstitutionFound
	KindInstitutionCollapse
	KindIntentAccepted
	KindIntentRefused
	KindMigrationApplied
)

// Entry is one audit record.
type Entry struct {
	Kind         Kind
	AgentID      uint64
	SubjectID    uint64
	RelatedID    uint64
	Amount       int64
	ActTime      dominium.ActTime
	ProvenanceID uint64
}

// ErrLogFull is returned when the bounded log has no remaining
// capacity.
var ErrLogFull = errors.New("audit log is full")

// Log is a bounded append-only audit log.
type Log struct {
	entries   []Entry
	capacity  int
	nextID    uint64
	ctxAct    dominium.ActTime
	ctxProvID uint64
}

// NewLog constructs a Log with fixed capacity. A zero startID begins
// internal record numbering at 1.
func NewLog(capacity int, startID uint64) *Log {
	if startID == 0 {
		startID = 1
	}
	return &Log{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		nextID:   startID,
	}
}

// Len returns the number of recorded entries.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns the recorded entries in append order.
func (l *Log) Entries() []Entry { return l.entries }

// SetContext installs the act time and provenance id stamped on every
// subsequent record until changed.
func (l *Log) SetContext(actTime dominium.ActTime, provenanceID uint64) {
	l.ctxAct = actTime
	l.ctxProvID = provenanceID
}

// Record appends one entry under the current context.
func (l *Log) Record(agentID uint64, kind Kind, subjectID, relatedID uint64, amount int64) error {
	if len(l.entries) >= l.capacity {
		return ErrLogFull
	}
	l.entries = append(l.entries, Entry{
		Kind:         kind,
		AgentID:      agentID,
		SubjectID:    subjectID,
		RelatedID:    relatedID,
		Amount:       amount,
		ActTime:      l.ctxAct,
		ProvenanceID: l.ctxProvID,
	})
	l.nextID++
	return nil
}

// Field numbers of the snapshot wire form. Stable; never renumber.
const (
	fieldKind = iota + 1
	fieldAgentID
	fieldSubjectID
	fieldRelatedID
	fieldAmount
	fieldActTime
	fieldProvenanceID
)

// Snapshot serializes the log as a deterministic varint wire form:
// the entry count followed by each entry's fields in declaration
// order. Byte-identical across runs that made the same call sequence.
func (l *Log) Snapshot() []byte {
	b := protowire.AppendVarint(nil, uint64(len(l.entries)))
	for i := range l.entries {
		e := &l.entries[i]
		b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.Kind))
		b = protowire.AppendTag(b, fieldAgentID, protowire.VarintType)
		b = protowire.AppendVarint(b, e.AgentID)
		b = protowire.AppendTag(b, fieldSubjectID, protowire.VarintType)
		b = protowire.AppendVarint(b, e.SubjectID)
		b = protowire.AppendTag(b, fieldRelatedID, protowire.VarintType)
		b = protowire.AppendVarint(b, e.RelatedID)
		b = protowire.AppendTag(b, fieldAmount, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(e.Amount))
		b = protowire.AppendTag(b, fieldActTime, protowire.VarintType)
		b = protowire.AppendVarint(b, e.ActTime)
		b = protowire.AppendTag(b, fieldProvenanceID, protowire.VarintType)
		b = protowire.AppendVarint(b, e.ProvenanceID)
	}
	return b
}

// Hash returns the FNV-1a identity hash over the log's snapshot.
func (l *Log) Hash() uint64 {
	return fnv1a.Sum64Bytes(l.Snapshot())
}
