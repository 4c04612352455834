// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package due implements the min-priority due-tick scheduler shared
// by every periodic subsystem in the kernel: agent thinking, doctrine
// updates, refinement events, cohort ticks, and migration flows.
//
// Entries are typed via a small tagged dispatcher rather than a
// function-pointer vtable (per the specification's Design Notes on
// dynamic dispatch): each entry holds a Dispatcher implementation
// whose NextTick/ProcessUntil are invoked polymorphically through the
// Go interface, which preserves identical observable behavior to a
// vtable without language-level indirection tricks.
//
// Determinism contract: for any two runs that register the same set
// of (dispatcher, id, initial tick) in any insertion order and call
// Advance to the same sequence of target ticks, the order of
// ProcessUntil calls is identical — ascending by (trigger tick, id).
package due

import "sort"

// TickNone is the sentinel meaning "this entry has nothing further
// scheduled". It removes an entry from firing without freeing its
// slot.
const TickNone uint64 = ^uint64(0)

// Dispatcher is implemented by whatever user state a due entry
// represents (an agent schedule, a doctrine, a cohort, a migration
// flow, a refinement event stream).
type Dispatcher interface {
	// NextTick returns the tick at which this dispatcher next wants to
	// fire, or TickNone if it has nothing scheduled.
	NextTick(now uint64) uint64
	// ProcessUntil dispatches all of this entry's due work up to and
	// including targetTick, returning the entry's new next tick (or
	// TickNone if it has retired).
	ProcessUntil(targetTick uint64) uint64
}

// entry is one registered (id, dispatcher) pair. Handles are stable
// first-free-index slots so that two runs which register identically
// obtain identical handles.
type entry struct {
	id         uint64
	dispatcher Dispatcher
	nextTick   uint64
	inUse      bool
}

// Handle is a stable reference into a Scheduler's entry table.
type Handle int

// Scheduler is a bounded-capacity min-priority queue of due entries
// keyed by (trigger tick ascending, entity id ascending).
type Scheduler struct {
	entries  []entry
	capacity int
}

// NewScheduler constructs a Scheduler with fixed capacity. The entry
// table is allocated once here and never grows past that capacity,
// which keeps memory layout deterministic.
func NewScheduler(capacity int) *Scheduler {
	return &Scheduler{
		entries:  make([]entry, 0, capacity),
		capacity: capacity,
	}
}

// Register allocates a handle for id/dispatcher at the given initial
// tick, using the first free (previously removed) slot if one exists,
// else appending. Returns (handle, ok); ok is false if the scheduler
// is at capacity.
func (s *Scheduler) Register(id uint64, dispatcher Dispatcher, initialTick uint64) (Handle, bool) {
	for i := range s.entries {
		if !s.entries[i].inUse {
			s.entries[i] = entry{id: id, dispatcher: dispatcher, nextTick: initialTick, inUse: true}
			return Handle(i), true
		}
	}
	if len(s.entries) >= s.capacity {
		return -1, false
	}
	s.entries = append(s.entries, entry{id: id, dispatcher: dispatcher, nextTick: initialTick, inUse: true})
	return Handle(len(s.entries) - 1), true
}

// Remove retires a handle without compacting the slice, so other
// handles remain valid.
func (s *Scheduler) Remove(h Handle) {
	if int(h) < 0 || int(h) >= len(s.entries) {
		return
	}
	s.entries[h].inUse = false
	s.entries[h].dispatcher = nil
}

// SetNextTick overrides an entry's next tick directly, e.g. when an
// external event (doctrine apply, refinement event) changes an
// entity's schedule out of band.
func (s *Scheduler) SetNextTick(h Handle, tick uint64) {
	if int(h) < 0 || int(h) >= len(s.entries) || !s.entries[h].inUse {
		return
	}
	s.entries[h].nextTick = tick
}

// NextDue returns the smallest (tick, id) pair among in-use entries
// whose tick is not TickNone, and whether any such entry exists.
func (s *Scheduler) NextDue() (tick uint64, id uint64, ok bool) {
	best := -1
	for i := range s.entries {
		if !s.entries[i].inUse || s.entries[i].nextTick == TickNone {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if less(s.entries[i], s.entries[best]) {
			best = i
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	return s.entries[best].nextTick, s.entries[best].id, true
}

func less(a, b entry) bool {
	if a.nextTick != b.nextTick {
		return a.nextTick < b.nextTick
	}
	return a.id < b.id
}

// Advance dispatches every due entry's ProcessUntil in
// (tick ascending, id ascending) order, repeatedly, until no in-use
// entry has a tick <= targetTick. An entry that reschedules itself to
// a tick still <= targetTick fires again within the same Advance call
// — exactly as the original due-scheduler's advance loop does.
func (s *Scheduler) Advance(targetTick uint64) int {
	processed := 0
	for {
		idx := s.dueIndex(targetTick)
		if idx == -1 {
			return processed
		}
		e := &s.entries[idx]
		e.nextTick = e.dispatcher.ProcessUntil(targetTick)
		processed++
	}
}

// dueIndex returns the index of the entry with the smallest
// (tick, id) among those due at or before targetTick, or -1.
func (s *Scheduler) dueIndex(targetTick uint64) int {
	best := -1
	for i := range s.entries {
		if !s.entries[i].inUse || s.entries[i].nextTick == TickNone {
			continue
		}
		if s.entries[i].nextTick > targetTick {
			continue
		}
		if best == -1 || less(s.entries[i], s.entries[best]) {
			best = i
		}
	}
	return best
}

// Due returns the ids of every in-use entry due at or before
// targetTick, in firing order, without dispatching them. Useful for
// callers that want to drive dispatch themselves while still honoring
// the scheduler's ordering contract.
func (s *Scheduler) Due(targetTick uint64) []uint64 {
	type cand struct {
		tick uint64
		id   uint64
	}
	var due []cand
	for i := range s.entries {
		if !s.entries[i].inUse || s.entries[i].nextTick == TickNone || s.entries[i].nextTick > targetTick {
			continue
		}
		due = append(due, cand{s.entries[i].nextTick, s.entries[i].id})
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].tick != due[j].tick {
			return due[i].tick < due[j].tick
		}
		return due[i].id < due[j].id
	})
	ids := make([]uint64, len(due))
	for i, c := range due {
		ids[i] = c.id
	}
	return ids
}
