// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package audit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func record(t *testing.T, l *Log) {
	t.Helper()
	require.NoError(t, l.Record(9001, KindConflictBegin, 8001, 9002, 1))
	require.NoError(t, l.Record(9001, KindInstitutionCollapse, 4001, 0, -5))
}

func TestRecordStampsContext(t *testing.T) {
	require := require.New(t)

	l := NewLog(4, 1)
	l.SetContext(10, 42)
	record(t, l)

	require.Equal(2, l.Len())
	require.Equal(uint64(10), l.Entries()[0].ActTime)
	require.Equal(uint64(42), l.Entries()[0].ProvenanceID)

	// Context persists until changed.
	l.SetContext(11, 43)
	require.NoError(l.Record(9001, KindGoalChosen, 1, 0, 0))
	require.Equal(uint64(11), l.Entries()[2].ActTime)
	require.Equal(uint64(43), l.Entries()[2].ProvenanceID)
}

func TestLogBounded(t *testing.T) {
	require := require.New(t)

	l := NewLog(1, 1)
	require.NoError(l.Record(1, KindGoalChosen, 0, 0, 0))
	require.ErrorIs(l.Record(1, KindGoalChosen, 0, 0, 0), ErrLogFull)
	require.Equal(1, l.Len())
}

func TestAuditDeterminism(t *testing.T) {
	require := require.New(t)

	a := NewLog(4, 1)
	b := NewLog(4, 1)
	a.SetContext(100, 500)
	b.SetContext(100, 500)
	record(t, a)
	record(t, b)

	require.Equal(a.Snapshot(), b.Snapshot())
	require.Equal(a.Hash(), b.Hash())

	// A diverging call sequence diverges the hash.
	require.NoError(b.Record(9001, KindGoalChosen, 1, 0, 0))
	require.NotEqual(a.Hash(), b.Hash())
}

func TestHistoryFanOut(t *testing.T) {
	require := require.New(t)

	l := NewLog(4, 1)
	l.SetContext(100, 500)
	record(t, l)

	policy := &HistoryPolicy{
		NarrativeIDs:     []uint64{777},
		IncludeObjective: true,
	}
	buf := NewHistoryBuffer(8, 1)
	written := Aggregate(l, policy, buf)

	// One narrative view plus one objective view per audit entry.
	require.Equal(l.Len()*2, written)
	require.Equal(written, buf.Len())

	records := buf.Records()
	require.Equal(uint64(777), records[0].NarrativeID)
	require.Zero(records[1].NarrativeID)
	require.Equal(KindConflictBegin, records[0].Kind)
	require.Equal(KindConflictBegin, records[1].Kind)
	require.Equal(KindInstitutionCollapse, records[2].Kind)
	require.Equal(uint64(9002), records[0].InstitutionID)
	require.Equal(uint64(100), records[0].ActTime)

	// History ids are sequential in audit order.
	for i, rec := range records {
		require.Equal(uint64(i+1), rec.HistoryID)
	}
}

func TestHistoryDeterminism(t *testing.T) {
	require := require.New(t)

	build := func() *HistoryBuffer {
		l := NewLog(4, 1)
		l.SetContext(100, 500)
		record(t, l)
		buf := NewHistoryBuffer(8, 1)
		Aggregate(l, &HistoryPolicy{NarrativeIDs: []uint64{777}, IncludeObjective: true}, buf)
		return buf
	}

	a := build()
	b := build()
	require.Equal(HashHistory(a), HashHistory(b))
	require.Equal(a.Records(), b.Records())

	// Aggregating the same log twice produces identical output.
	l := NewLog(4, 1)
	l.SetContext(100, 500)
	record(t, l)
	buf1 := NewHistoryBuffer(8, 1)
	buf2 := NewHistoryBuffer(8, 1)
	policy := &HistoryPolicy{IncludeObjective: true}
	Aggregate(l, policy, buf1)
	Aggregate(l, policy, buf2)
	require.Equal(HashHistory(buf1), HashHistory(buf2))
}

func TestHistoryPolicyFilters(t *testing.T) {
	require := require.New(t)

	l := NewLog(4, 1)
	record(t, l)

	// No narratives, no objective: nothing is written.
	buf := NewHistoryBuffer(8, 1)
	require.Zero(Aggregate(l, &HistoryPolicy{}, buf))

	// Duplicate and zero narrative ids are skipped.
	buf = NewHistoryBuffer(8, 1)
	written := Aggregate(l, &HistoryPolicy{NarrativeIDs: []uint64{5, 5, 0}}, buf)
	require.Equal(l.Len(), written)

	// A full buffer stops aggregation without error.
	small := NewHistoryBuffer(1, 1)
	written = Aggregate(l, &HistoryPolicy{NarrativeIDs: []uint64{5}}, small)
	require.Equal(1, written)
}
