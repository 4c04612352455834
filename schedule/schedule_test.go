// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package schedule

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/due"
)

func TestThinkCadence(t *testing.T) {
	require := require.New(t)

	s, err := New(4, nil, nil)
	require.NoError(err)

	var thinks []uint64
	s.SetOnThink(func(entry *Entry, nowAct dominium.ActTime) {
		thinks = append(thinks, entry.AgentID)
	})

	require.NoError(s.Register(10, 5, 10))
	require.NoError(s.Register(20, 5, 0))
	require.ErrorIs(s.Register(10, 1, 1), ErrDuplicateAgent)
	require.ErrorIs(s.Register(0, 1, 1), ErrInvalidAgent)

	// Shared tick fires in agent id order.
	s.Advance(5)
	require.Equal([]uint64{10, 20}, thinks)
	require.Equal(uint64(2), s.ProcessedLast())

	// Agent 10 advances by its interval; agent 20 is one-shot and has
	// retired without freeing its entry.
	require.Equal(dominium.ActTime(15), s.Find(10).NextThinkAct)
	require.Equal(due.TickNone, s.Find(20).NextThinkAct)

	thinks = nil
	s.Advance(25)
	require.Equal([]uint64{10, 10}, thinks)
	require.Equal(uint64(4), s.ProcessedTotal())
}

func TestCallbackReschedulesOutOfBand(t *testing.T) {
	require := require.New(t)

	s, err := New(2, nil, nil)
	require.NoError(err)
	s.SetOnThink(func(entry *Entry, nowAct dominium.ActTime) {
		// A callback that writes the next think act suppresses the
		// automatic interval advance.
		entry.NextThinkAct = nowAct + 100
	})
	require.NoError(s.Register(7, 5, 10))
	s.Advance(5)
	require.Equal(dominium.ActTime(105), s.Find(7).NextThinkAct)
	require.Equal(dominium.ActTime(105), s.NextDue())
}

func TestSetNextAndActive(t *testing.T) {
	require := require.New(t)

	s, err := New(2, nil, nil)
	require.NoError(err)
	require.NoError(s.Register(7, 5, 10))

	require.NoError(s.SetNext(7, 50))
	require.Equal(dominium.ActTime(50), s.NextDue())

	require.NoError(s.SetActive(7, 111, 222))
	require.Equal(uint64(111), s.Find(7).ActiveGoalRef)
	require.Equal(uint64(222), s.Find(7).ActivePlanRef)

	require.ErrorIs(s.SetNext(8, 1), ErrInvalidAgent)
}

func TestMetricsRegistered(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	s, err := New(2, nil, reg)
	require.NoError(err)
	require.NoError(s.Register(3, 1, 1))
	s.SetOnThink(func(*Entry, dominium.ActTime) {})
	s.Advance(3)

	families, err := reg.Gather()
	require.NoError(err)

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}
	require.Contains(byName, "agent_thinks_processed")
	require.Contains(byName, "agents_tracked")
	require.Equal(float64(3), byName["agent_thinks_processed"].GetMetric()[0].GetCounter().GetValue())
	require.Equal(float64(1), byName["agents_tracked"].GetMetric()[0].GetGauge().GetValue())

	// Double registration against the same registerer fails loudly.
	_, err = New(2, nil, reg)
	require.ErrorIs(err, errThinksMetric)
}
