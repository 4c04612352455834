// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package belief implements per-agent belief stores and scalar belief
// state. A store holds bounded, (agent, knowledge ref)-ordered belief
// entries with Q16 confidences that decay over act time; the scalar
// state tracks the knowledge mask and need levels driving goal
// arbitration.
package belief

import (
	"errors"

	"github.com/luxfi/log"

	"github.com/luxfi/dominium"
)

// Topic identifies what a belief entry is about.
type Topic uint32

const (
	TopicNone Topic = iota
	TopicResource
	TopicSafeRoute
	TopicThreat
)

// Bit returns the knowledge-mask bit a topic contributes, or 0.
func (t Topic) Bit() uint32 {
	switch t {
	case TopicResource:
		return dominium.KnowledgeResource
	case TopicSafeRoute:
		return dominium.KnowledgeSafeRoute
	case TopicThreat:
		return dominium.KnowledgeThreat
	default:
		return 0
	}
}

// Flags mark provenance quality on a belief entry.
type Flags uint32

const (
	FlagHearsay Flags = 1 << iota
	FlagDistorted
)

// EventKind selects the belief mutation applied by ApplyEvent.
type EventKind uint32

const (
	EventObserve EventKind = iota + 1
	EventHear
	EventDistort
	EventForget
)

// Entry is one belief held by one agent about one knowledge ref.
type Entry struct {
	BeliefID      uint64
	AgentID       uint64
	KnowledgeRef  uint64
	Topic         Topic
	ConfidenceQ16 uint32
	ObservedAct   dominium.ActTime
	ExpiresAct    dominium.ActTime
	Flags         Flags
}

// Event is a belief mutation. A non-zero ConfidenceQ16 overrides the
// entry's confidence outright; otherwise ConfidenceDeltaQ16 adjusts
// it. A confidence that is still zero after either is initialized to
// half scale.
type Event struct {
	Kind               EventKind
	AgentID            uint64
	KnowledgeRef       uint64
	Topic              Topic
	ConfidenceQ16      uint32
	ConfidenceDeltaQ16 int32
	ObservedAct        dominium.ActTime
	ExpiresAct         dominium.ActTime
	FlagsSet           Flags
	FlagsClear         Flags
}

var (
	// ErrInvalidEvent is returned for a nil event or zero agent id.
	ErrInvalidEvent = errors.New("belief event requires a non-zero agent id")

	// ErrStoreFull is returned when an upsert cannot free a slot.
	ErrStoreFull = errors.New("belief store is full")
)

// Store owns a bounded set of belief entries ordered ascending by
// (agent id, knowledge ref). When full, the globally lowest-confidence
// entry is evicted to admit a new one.
type Store struct {
	entries          []Entry
	capacity         int
	nextID           uint64
	decayQ16PerAct   uint32
	minConfidenceQ16 uint32
	lastDecayAct     dominium.ActTime
	log              log.Logger
}

// NewStore constructs a Store with fixed capacity. A zero startID
// begins belief ids at 1; a nil logger disables logging.
func NewStore(capacity int, startID uint64, decayQ16PerAct, minConfidenceQ16 uint32, logger log.Logger) *Store {
	if startID == 0 {
		startID = 1
	}
	if minConfidenceQ16 > dominium.ConfidenceMax {
		minConfidenceQ16 = dominium.ConfidenceMax
	}
	return &Store{
		entries:          make([]Entry, 0, capacity),
		capacity:         capacity,
		nextID:           startID,
		decayQ16PerAct:   decayQ16PerAct,
		minConfidenceQ16: minConfidenceQ16,
		log:              logger,
	}
}

// Len returns the number of live entries.
func (s *Store) Len() int { return len(s.entries) }

// Entries returns the live entries in (agent id, knowledge ref) order.
// The slice is a borrow; mutations must go through ApplyEvent.
func (s *Store) Entries() []Entry { return s.entries }

// findIndex returns the sorted slot for (agentID, knowledgeRef) and
// whether an entry already occupies it.
func (s *Store) findIndex(agentID, knowledgeRef uint64) (int, bool) {
	for i := range s.entries {
		e := &s.entries[i]
		if e.AgentID == agentID && e.KnowledgeRef == knowledgeRef {
			return i, true
		}
		if e.AgentID > agentID || (e.AgentID == agentID && e.KnowledgeRef > knowledgeRef) {
			return i, false
		}
	}
	return len(s.entries), false
}

func (s *Store) removeAt(idx int) {
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
}

func clampConfidence(v int64) uint32 {
	if v < 0 {
		return 0
	}
	if v > int64(dominium.ConfidenceMax) {
		return dominium.ConfidenceMax
	}
	return uint32(v)
}

// ApplyEvent dispatches an OBSERVE/HEAR/DISTORT upsert or a FORGET.
// FORGET on an absent entry is a no-op; FORGET without a delta zeroes
// confidence outright. Either path removes the entry once confidence
// falls to or below the store's minimum.
func (s *Store) ApplyEvent(event *Event, nowAct dominium.ActTime) error {
	if event == nil || event.AgentID == 0 {
		return ErrInvalidEvent
	}
	idx, found := s.findIndex(event.AgentID, event.KnowledgeRef)
	if event.Kind == EventForget {
		if !found {
			return nil
		}
		entry := &s.entries[idx]
		confidence := entry.ConfidenceQ16
		if event.ConfidenceDeltaQ16 != 0 {
			confidence = clampConfidence(int64(confidence) + int64(event.ConfidenceDeltaQ16))
		} else {
			confidence = 0
		}
		entry.ConfidenceQ16 = confidence
		entry.Flags |= FlagDistorted
		if confidence <= s.minConfidenceQ16 {
			s.removeAt(idx)
		}
		return nil
	}

	if !found {
		if len(s.entries) >= s.capacity {
			lowestIdx := 0
			lowestConf := dominium.ConfidenceMax
			for i := range s.entries {
				if s.entries[i].ConfidenceQ16 < lowestConf {
					lowestConf = s.entries[i].ConfidenceQ16
					lowestIdx = i
				}
			}
			s.removeAt(lowestIdx)
			if idx > lowestIdx {
				idx--
			}
		}
		if len(s.entries) >= s.capacity {
			return ErrStoreFull
		}
		s.entries = append(s.entries, Entry{})
		copy(s.entries[idx+1:], s.entries[idx:])
		s.entries[idx] = Entry{
			BeliefID:     s.nextID,
			AgentID:      event.AgentID,
			KnowledgeRef: event.KnowledgeRef,
			Topic:        event.Topic,
		}
		s.nextID++
	}
	entry := &s.entries[idx]

	confidence := entry.ConfidenceQ16
	if event.ConfidenceQ16 != 0 {
		confidence = event.ConfidenceQ16
	} else if event.ConfidenceDeltaQ16 != 0 {
		confidence = clampConfidence(int64(confidence) + int64(event.ConfidenceDeltaQ16))
	}
	if confidence == 0 {
		confidence = dominium.ConfidenceMax / 2
	}
	entry.ConfidenceQ16 = confidence
	if event.Topic != TopicNone {
		entry.Topic = event.Topic
	}
	if event.ObservedAct != 0 {
		entry.ObservedAct = event.ObservedAct
	} else {
		entry.ObservedAct = nowAct
	}
	entry.ExpiresAct = event.ExpiresAct
	entry.Flags |= event.FlagsSet
	entry.Flags &^= event.FlagsClear
	if event.Kind == EventHear {
		entry.Flags |= FlagHearsay
	}
	if event.Kind == EventDistort {
		entry.Flags |= FlagDistorted
	}
	if s.log != nil {
		s.log.Debug("belief updated",
			log.Uint64("agent", entry.AgentID),
			log.Uint64("knowledgeRef", entry.KnowledgeRef),
			log.Uint32("confidenceQ16", entry.ConfidenceQ16))
	}
	return nil
}

// Decay applies the per-act confidence decay for every act elapsed
// since the last decay, removing entries that expire at or before
// nowAct or whose confidence falls to or below the store minimum. The
// first call only records the baseline act.
func (s *Store) Decay(nowAct dominium.ActTime) {
	if s.decayQ16PerAct == 0 || len(s.entries) == 0 {
		s.lastDecayAct = nowAct
		return
	}
	if s.lastDecayAct == 0 {
		s.lastDecayAct = nowAct
		return
	}
	if nowAct <= s.lastDecayAct {
		return
	}
	decay := uint64(s.decayQ16PerAct) * uint64(nowAct-s.lastDecayAct)
	if decay > uint64(dominium.ConfidenceMax) {
		decay = uint64(dominium.ConfidenceMax)
	}
	i := 0
	for i < len(s.entries) {
		entry := &s.entries[i]
		if entry.ExpiresAct != 0 && entry.ExpiresAct <= nowAct {
			s.removeAt(i)
			continue
		}
		next := clampConfidence(int64(entry.ConfidenceQ16) - int64(decay))
		entry.ConfidenceQ16 = next
		if next <= s.minConfidenceQ16 {
			s.removeAt(i)
			continue
		}
		i++
	}
	s.lastDecayAct = nowAct
}

// BestTopic returns the agent's highest-confidence entry for a topic;
// ties break toward the lowest belief id.
func (s *Store) BestTopic(agentID uint64, topic Topic) (Entry, bool) {
	var best *Entry
	for i := range s.entries {
		entry := &s.entries[i]
		if entry.AgentID != agentID || entry.Topic != topic {
			continue
		}
		if best == nil || entry.ConfidenceQ16 > best.ConfidenceQ16 ||
			(entry.ConfidenceQ16 == best.ConfidenceQ16 && entry.BeliefID < best.BeliefID) {
			best = entry
		}
	}
	if best == nil {
		return Entry{}, false
	}
	return *best, true
}

// Mask derives the agent's knowledge mask from the topics of its live
// entries.
func (s *Store) Mask(agentID uint64) uint32 {
	var mask uint32
	for i := range s.entries {
		if s.entries[i].AgentID != agentID {
			continue
		}
		mask |= s.entries[i].Topic.Bit()
	}
	return mask
}
