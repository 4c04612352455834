// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package doctrine

import (
	"github.com/luxfi/log"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/due"
)

// EventType selects the doctrine mutation an event carries.
type EventType uint32

const (
	EventApply EventType = iota
	EventClear
)

// Event is a scheduled doctrine apply or clear. A consumed event's
// trigger act is set to due.TickNone without freeing its slot.
type Event struct {
	EventID       uint64
	DoctrineID    uint64
	TriggerAct    dominium.ActTime
	Type          EventType
	Doctrine      Doctrine
	ProvenanceRef uint64
}

// Scheduler drives a doctrine registry from a due-scheduled
// apply/clear event stream.
type Scheduler struct {
	due            *due.Scheduler
	events         []Event
	eventCapacity  int
	nextEventID    uint64
	doctrines      *Registry
	processedLast  uint64
	processedTotal uint64
	log            log.Logger
}

// eventDispatcher adapts one event slot to the due scheduler.
type eventDispatcher struct {
	sched *Scheduler
	event *Event
}

func (d *eventDispatcher) NextTick(dominium.ActTime) dominium.ActTime {
	if d.event == nil {
		return due.TickNone
	}
	return d.event.TriggerAct
}

func (d *eventDispatcher) ProcessUntil(targetTick dominium.ActTime) dominium.ActTime {
	ev := d.event
	if ev == nil || ev.TriggerAct == due.TickNone || ev.TriggerAct > targetTick {
		return d.NextTick(targetTick)
	}
	sched := d.sched
	if ev.Type == EventClear {
		_ = sched.doctrines.Remove(ev.DoctrineID)
	} else {
		_ = sched.doctrines.Update(&ev.Doctrine)
	}
	ev.TriggerAct = due.TickNone
	if doctrine := sched.doctrines.Find(ev.DoctrineID); doctrine != nil {
		sched.recomputeNextDue(doctrine)
	}
	sched.processedLast++
	sched.processedTotal++
	if sched.log != nil {
		sched.log.Debug("doctrine event processed",
			log.Uint64("event", ev.EventID),
			log.Uint64("doctrine", ev.DoctrineID),
			log.Uint32("type", uint32(ev.Type)))
	}
	return due.TickNone
}

// NewScheduler constructs a doctrine Scheduler over the given
// registry with fixed event capacity. A zero startEventID begins
// event ids at 1.
func NewScheduler(doctrines *Registry, eventCapacity int, startEventID uint64, logger log.Logger) *Scheduler {
	if startEventID == 0 {
		startEventID = 1
	}
	return &Scheduler{
		due:           due.NewScheduler(eventCapacity),
		events:        make([]Event, eventCapacity),
		eventCapacity: eventCapacity,
		nextEventID:   startEventID,
		doctrines:     doctrines,
		log:           logger,
	}
}

// recomputeNextDue scans the event table for the doctrine's earliest
// pending trigger and stamps it on the doctrine.
func (s *Scheduler) recomputeNextDue(d *Doctrine) {
	next := dominium.ActTimeMax
	for i := range s.events {
		ev := &s.events[i]
		if ev.EventID == 0 || ev.DoctrineID != d.DoctrineID {
			continue
		}
		if ev.TriggerAct == due.TickNone {
			continue
		}
		if ev.TriggerAct < next {
			next = ev.TriggerAct
		}
	}
	d.NextDueTick = next
}

func (s *Scheduler) allocEvent() *Event {
	for i := range s.events {
		if s.events[i].EventID == 0 {
			return &s.events[i]
		}
	}
	return nil
}

func (s *Scheduler) scheduleEvent(ev *Event) error {
	if _, ok := s.due.Register(ev.EventID, &eventDispatcher{sched: s, event: ev}, ev.TriggerAct); !ok {
		return ErrRegistryFull
	}
	if doctrine := s.doctrines.Find(ev.DoctrineID); doctrine != nil {
		s.recomputeNextDue(doctrine)
	}
	return nil
}

// ScheduleApply enqueues an APPLY of the given doctrine at
// triggerAct.
func (s *Scheduler) ScheduleApply(d *Doctrine, triggerAct dominium.ActTime) error {
	if d == nil || d.DoctrineID == 0 {
		return ErrInvalidID
	}
	ev := s.allocEvent()
	if ev == nil {
		return ErrRegistryFull
	}
	*ev = Event{
		EventID:    s.nextEventID,
		DoctrineID: d.DoctrineID,
		TriggerAct: triggerAct,
		Type:       EventApply,
		Doctrine:   *d,
	}
	s.nextEventID++
	if d.ProvenanceRef != 0 {
		ev.ProvenanceRef = d.ProvenanceRef
	} else {
		ev.ProvenanceRef = ev.EventID
	}
	if err := s.scheduleEvent(ev); err != nil {
		ev.EventID = 0
		return err
	}
	return nil
}

// ScheduleClear enqueues a CLEAR of the doctrine id at triggerAct.
func (s *Scheduler) ScheduleClear(doctrineID uint64, triggerAct dominium.ActTime) error {
	if doctrineID == 0 {
		return ErrInvalidID
	}
	ev := s.allocEvent()
	if ev == nil {
		return ErrRegistryFull
	}
	*ev = Event{
		EventID:    s.nextEventID,
		DoctrineID: doctrineID,
		TriggerAct: triggerAct,
		Type:       EventClear,
	}
	s.nextEventID++
	ev.ProvenanceRef = ev.EventID
	if err := s.scheduleEvent(ev); err != nil {
		ev.EventID = 0
		return err
	}
	return nil
}

// Advance processes all events due at or before targetTick in
// (trigger act, event id) order.
func (s *Scheduler) Advance(targetTick dominium.ActTime) {
	s.processedLast = 0
	s.due.Advance(targetTick)
}

// ProcessedLast returns the number of events processed by the most
// recent Advance.
func (s *Scheduler) ProcessedLast() uint64 { return s.processedLast }

// ProcessedTotal returns the number of events processed over the
// scheduler's lifetime.
func (s *Scheduler) ProcessedTotal() uint64 { return s.processedTotal }

// NextDue returns the earliest pending trigger act, or due.TickNone.
func (s *Scheduler) NextDue() dominium.ActTime {
	tick, _, ok := s.due.NextDue()
	if !ok {
		return due.TickNone
	}
	return tick
}
