// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package schedule drives per-agent think cadence through the shared
// due scheduler: each registered agent fires an OnThink callback when
// its next think act comes due, then advances by its think interval.
// A zero interval is one-shot: the entry stays registered but retires
// itself after firing.
package schedule

import (
	"errors"
	"fmt"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/due"
)

// Entry is one agent's think cadence state.
type Entry struct {
	AgentID          uint64
	NextThinkAct     dominium.ActTime
	ThinkIntervalAct dominium.ActTime
	ActiveGoalRef    uint64
	ActivePlanRef    uint64
	dueHandle        due.Handle
	inUse            bool
}

// OnThink is invoked once per due think slice. The callback may write
// Entry.NextThinkAct to reschedule out of band; otherwise the entry
// advances by its interval (or retires on a zero interval).
type OnThink func(entry *Entry, nowAct dominium.ActTime)

var (
	// ErrInvalidAgent is returned for a zero agent id.
	ErrInvalidAgent = errors.New("agent id must be non-zero")

	// ErrDuplicateAgent is returned when the agent is already
	// registered.
	ErrDuplicateAgent = errors.New("agent already registered")

	// ErrScheduleFull is returned when no capacity remains.
	ErrScheduleFull = errors.New("agent schedule is full")

	errThinksMetric = errors.New("failed to register thinks metric")
	errAgentsMetric = errors.New("failed to register agents metric")
)

// Schedule owns the bounded agent entry table and its due scheduler.
type Schedule struct {
	due            *due.Scheduler
	entries        []Entry
	capacity       int
	onThink        OnThink
	processedLast  uint64
	processedTotal uint64
	log            log.Logger

	thinksProcessed prometheus.Counter
	agentsTracked   prometheus.Gauge
}

// entryDispatcher adapts one schedule entry to the due scheduler.
type entryDispatcher struct {
	sched *Schedule
	entry *Entry
}

func (d *entryDispatcher) NextTick(dominium.ActTime) dominium.ActTime {
	if d.entry == nil || !d.entry.inUse {
		return due.TickNone
	}
	return d.entry.NextThinkAct
}

func (d *entryDispatcher) ProcessUntil(targetTick dominium.ActTime) dominium.ActTime {
	entry := d.entry
	if entry == nil || !entry.inUse {
		return due.TickNone
	}
	current := entry.NextThinkAct
	if current == due.TickNone || current > targetTick {
		return current
	}
	sched := d.sched
	if sched.onThink != nil {
		sched.onThink(entry, current)
	}
	if entry.NextThinkAct == current {
		if entry.ThinkIntervalAct > 0 {
			entry.NextThinkAct = current + entry.ThinkIntervalAct
		} else {
			entry.NextThinkAct = due.TickNone
		}
	}
	sched.processedLast++
	sched.processedTotal++
	if sched.thinksProcessed != nil {
		sched.thinksProcessed.Inc()
	}
	return entry.NextThinkAct
}

// New constructs a Schedule with fixed capacity, registering its
// dispatch metrics with reg when non-nil.
func New(capacity int, logger log.Logger, reg prometheus.Registerer) (*Schedule, error) {
	s := &Schedule{
		due:      due.NewScheduler(capacity),
		entries:  make([]Entry, capacity),
		capacity: capacity,
		log:      logger,
	}
	if reg != nil {
		s.thinksProcessed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agent_thinks_processed",
			Help: "Number of agent think slices dispatched",
		})
		if err := reg.Register(s.thinksProcessed); err != nil {
			return nil, fmt.Errorf("%w: %w", errThinksMetric, err)
		}
		s.agentsTracked = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "agents_tracked",
			Help: "Number of agents registered for thinking",
		})
		if err := reg.Register(s.agentsTracked); err != nil {
			return nil, fmt.Errorf("%w: %w", errAgentsMetric, err)
		}
	}
	return s, nil
}

// SetOnThink installs the think callback.
func (s *Schedule) SetOnThink(onThink OnThink) {
	s.onThink = onThink
}

// Find returns the in-use entry for an agent, or nil.
func (s *Schedule) Find(agentID uint64) *Entry {
	for i := range s.entries {
		if s.entries[i].inUse && s.entries[i].AgentID == agentID {
			return &s.entries[i]
		}
	}
	return nil
}

// Register enrolls an agent at firstThinkAct with the given interval.
func (s *Schedule) Register(agentID uint64, firstThinkAct, thinkIntervalAct dominium.ActTime) error {
	if agentID == 0 {
		return ErrInvalidAgent
	}
	if s.Find(agentID) != nil {
		return ErrDuplicateAgent
	}
	var entry *Entry
	for i := range s.entries {
		if !s.entries[i].inUse {
			entry = &s.entries[i]
			break
		}
	}
	if entry == nil {
		return ErrScheduleFull
	}
	*entry = Entry{
		AgentID:          agentID,
		NextThinkAct:     firstThinkAct,
		ThinkIntervalAct: thinkIntervalAct,
		inUse:            true,
	}
	handle, ok := s.due.Register(agentID, &entryDispatcher{sched: s, entry: entry}, firstThinkAct)
	if !ok {
		*entry = Entry{}
		return ErrScheduleFull
	}
	entry.dueHandle = handle
	if s.agentsTracked != nil {
		s.agentsTracked.Inc()
	}
	if s.log != nil {
		s.log.Debug("agent registered for thinking",
			log.Uint64("agent", agentID),
			log.Uint64("firstThinkAct", firstThinkAct),
			log.Uint64("interval", thinkIntervalAct))
	}
	return nil
}

// SetNext overrides an agent's next think act and refreshes its due
// entry.
func (s *Schedule) SetNext(agentID uint64, nextThinkAct dominium.ActTime) error {
	entry := s.Find(agentID)
	if entry == nil {
		return ErrInvalidAgent
	}
	entry.NextThinkAct = nextThinkAct
	s.due.SetNextTick(entry.dueHandle, nextThinkAct)
	return nil
}

// SetActive records the agent's active goal and plan refs.
func (s *Schedule) SetActive(agentID, goalRef, planRef uint64) error {
	entry := s.Find(agentID)
	if entry == nil {
		return ErrInvalidAgent
	}
	entry.ActiveGoalRef = goalRef
	entry.ActivePlanRef = planRef
	return nil
}

// Advance dispatches every due think slice at or before targetTick in
// (think act, agent id) order.
func (s *Schedule) Advance(targetTick dominium.ActTime) {
	s.processedLast = 0
	s.due.Advance(targetTick)
}

// ProcessedLast returns the number of thinks dispatched by the most
// recent Advance.
func (s *Schedule) ProcessedLast() uint64 { return s.processedLast }

// ProcessedTotal returns the number of thinks dispatched over the
// schedule's lifetime.
func (s *Schedule) ProcessedTotal() uint64 { return s.processedTotal }

// NextDue returns the earliest pending think act, or due.TickNone.
func (s *Schedule) NextDue() dominium.ActTime {
	tick, _, ok := s.due.NextDue()
	if !ok {
		return due.TickNone
	}
	return tick
}
