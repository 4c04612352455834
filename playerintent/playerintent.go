// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package playerintent validates player-submitted intents through the
// same capability/authority/knowledge gates that govern autonomous
// agents, plus optional physical field checks. Validation is headless:
// without a field provider the physical checks are skipped, and a
// refusal's only side effects are the queue entry and its mirrored
// event.
package playerintent

import (
	"errors"

	"github.com/luxfi/log"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/doctrine"
	"github.com/luxfi/dominium/goal"
	"github.com/luxfi/dominium/refusal"
)

// Record binds a player to the agent it embodies.
type Record struct {
	PlayerID uint64
	AgentID  uint64
	Flags    uint32
}

var (
	// ErrInvalidBinding is returned for a zero player or agent id.
	ErrInvalidBinding = errors.New("player binding requires non-zero ids")

	// ErrRegistryFull is returned when no capacity remains.
	ErrRegistryFull = errors.New("player registry is full")

	// ErrQueueFull is returned when the intent queue has no remaining
	// capacity.
	ErrQueueFull = errors.New("intent queue is full")
)

// Registry owns the bounded player-to-agent bindings.
type Registry struct {
	records  []Record
	capacity int
}

// NewRegistry constructs a Registry with fixed capacity.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}
}

// Find returns the record for a player id, or nil.
func (r *Registry) Find(playerID uint64) *Record {
	for i := range r.records {
		if r.records[i].PlayerID == playerID {
			return &r.records[i]
		}
	}
	return nil
}

// Bind attaches a player to an agent, rebinding in place if the
// player is already known.
func (r *Registry) Bind(playerID, agentID uint64) error {
	if playerID == 0 || agentID == 0 {
		return ErrInvalidBinding
	}
	if record := r.Find(playerID); record != nil {
		record.AgentID = agentID
		return nil
	}
	if len(r.records) >= r.capacity {
		return ErrRegistryFull
	}
	r.records = append(r.records, Record{PlayerID: playerID, AgentID: agentID})
	return nil
}

// IntentKind selects the intent payload.
type IntentKind uint32

const (
	IntentNone IntentKind = iota
	IntentGoalUpdate
	IntentPlanConfirm
	IntentProcessRequest
)

// IntentStatus tracks validation outcome.
type IntentStatus uint32

const (
	IntentPending IntentStatus = iota
	IntentAccepted
	IntentRefused
)

// ProcessRequest is a direct process execution request with optional
// physical constraints at (X, Y).
type ProcessRequest struct {
	ProcessKind            dominium.ProcessKind
	TargetRef              uint64
	RequiredCapabilityMask uint32
	RequiredAuthorityMask  uint32
	RequiredKnowledgeMask  uint32
	X                      int32
	Y                      int32
	MaxSlopeQ16            int32
	MinBearingQ16          int32
}

// Intent is one player-submitted intent.
type Intent struct {
	IntentID uint64
	PlayerID uint64
	AgentID  uint64
	Kind     IntentKind
	Status   IntentStatus
	Refusal  refusal.PlayerCode

	// GoalUpdate carries the goal to register for IntentGoalUpdate.
	GoalUpdate goal.Goal
	// PlanID is checked for IntentPlanConfirm.
	PlanID uint64
	// ProcessRequest is validated for IntentProcessRequest.
	ProcessRequest ProcessRequest
}

// Capability is an agent's objective capability/authority record.
type Capability struct {
	AgentID        uint64
	CapabilityMask uint32
	AuthorityMask  uint32
}

// Belief is the subjective snapshot used for player-facing knowledge
// checks; player code never reads belief stores directly.
type Belief struct {
	AgentID                uint64
	KnowledgeMask          uint32
	EpistemicConfidenceQ16 uint32
	KnownResourceRef       uint64
	KnownThreatRef         uint64
	KnownDestinationRef    uint64
}

// FieldKind selects a physical field sampled by a FieldProvider.
type FieldKind uint32

const (
	FieldSlope FieldKind = iota
	FieldBearingCapacity
)

// FieldProvider samples physical fields for intent validation. It is
// an external collaborator; a nil provider skips physical checks.
type FieldProvider interface {
	// Value returns the field value at (x, y) and whether the sample
	// exists.
	Value(kind FieldKind, x, y int32) (int32, bool)
}

// EventKind mirrors intent outcomes into the event log.
type EventKind uint32

const (
	EventIntentAccepted EventKind = iota + 1
	EventIntentRefused
)

// Event is one mirrored intent outcome.
type Event struct {
	EventID  uint64
	PlayerID uint64
	AgentID  uint64
	Kind     EventKind
	IntentID uint64
	Refusal  refusal.PlayerCode
	ActTime  dominium.ActTime
}

// EventLog is a bounded log of intent outcome events.
type EventLog struct {
	events   []Event
	capacity int
	nextID   uint64
}

// NewEventLog constructs an EventLog with fixed capacity. A zero
// startID begins event ids at 1.
func NewEventLog(capacity int, startID uint64) *EventLog {
	if startID == 0 {
		startID = 1
	}
	return &EventLog{
		events:   make([]Event, 0, capacity),
		capacity: capacity,
		nextID:   startID,
	}
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int { return len(l.events) }

// Events returns the recorded events in append order.
func (l *EventLog) Events() []Event { return l.events }

// record appends one event, dropping it silently when full so a
// refusal can never fail for lack of log space.
func (l *EventLog) record(playerID, agentID uint64, kind EventKind, intentID uint64, code refusal.PlayerCode, actTime dominium.ActTime) {
	if l == nil || len(l.events) >= l.capacity {
		return
	}
	l.events = append(l.events, Event{
		EventID:  l.nextID,
		PlayerID: playerID,
		AgentID:  agentID,
		Kind:     kind,
		IntentID: intentID,
		Refusal:  code,
		ActTime:  actTime,
	})
	l.nextID++
}

// Context gathers the collaborators one Submit call validates
// against. Any field may be nil/empty; missing collaborators skip the
// corresponding checks (fields) or fail them (capabilities,
// knowledge).
type Context struct {
	NowAct    dominium.ActTime
	Caps      []Capability
	Beliefs   []Belief
	Authority *doctrine.AuthorityRegistry
	Goals     *goal.Registry
	Events    *EventLog
	Fields    FieldProvider
}

// BuildSnapshot projects one agent's subjective belief into a player
// snapshot. Unknown agents yield a zeroed snapshot carrying only the
// agent id.
func BuildSnapshot(beliefs []Belief, agentID uint64) (Belief, bool) {
	for i := range beliefs {
		if beliefs[i].AgentID == agentID {
			return beliefs[i], true
		}
	}
	return Belief{AgentID: agentID}, false
}

func findCap(caps []Capability, agentID uint64) *Capability {
	for i := range caps {
		if caps[i].AgentID == agentID {
			return &caps[i]
		}
	}
	return nil
}

func (ctx *Context) effectiveAuthority(cap *Capability, agentID uint64) uint32 {
	var mask uint32
	if cap != nil {
		mask = cap.AuthorityMask
	}
	if ctx != nil && ctx.Authority != nil {
		mask = ctx.Authority.EffectiveMask(agentID, mask, ctx.NowAct)
	}
	return mask
}

func (ctx *Context) knowledgeOK(agentID uint64, requiredKnowledge uint32) bool {
	if requiredKnowledge == 0 {
		return true
	}
	if ctx == nil {
		return false
	}
	snapshot, found := BuildSnapshot(ctx.Beliefs, agentID)
	if !found {
		return false
	}
	return snapshot.KnowledgeMask&requiredKnowledge == requiredKnowledge
}

func (ctx *Context) physicalOK(req *ProcessRequest) bool {
	if ctx == nil || ctx.Fields == nil || req == nil {
		return true
	}
	if req.MaxSlopeQ16 > 0 {
		if slope, ok := ctx.Fields.Value(FieldSlope, req.X, req.Y); ok && slope > req.MaxSlopeQ16 {
			return false
		}
	}
	if req.MinBearingQ16 > 0 {
		if bearing, ok := ctx.Fields.Value(FieldBearingCapacity, req.X, req.Y); ok && bearing < req.MinBearingQ16 {
			return false
		}
	}
	return true
}

// Queue owns the bounded intent queue and the intent id counter.
type Queue struct {
	intents  []Intent
	capacity int
	nextID   uint64
	log      log.Logger
}

// NewQueue constructs a Queue with fixed capacity. A zero startID
// begins intent ids at 1.
func NewQueue(capacity int, startID uint64, logger log.Logger) *Queue {
	if startID == 0 {
		startID = 1
	}
	return &Queue{
		intents:  make([]Intent, 0, capacity),
		capacity: capacity,
		nextID:   startID,
		log:      logger,
	}
}

// Len returns the number of queued intents.
func (q *Queue) Len() int { return len(q.intents) }

// Intents returns the queued intents in submission order.
func (q *Queue) Intents() []Intent { return q.intents }

// Submit stamps, validates, and enqueues an intent, mirroring the
// outcome into the context's event log. The returned flag reports
// acceptance; a refusal is not an error.
func (q *Queue) Submit(intent *Intent, ctx *Context) (bool, error) {
	if intent == nil {
		return false, ErrInvalidBinding
	}
	stamped := *intent
	stamped.IntentID = q.nextID
	q.nextID++
	stamped.Status = IntentPending
	stamped.Refusal = refusal.PlayerNone

	var caps []Capability
	var nowAct dominium.ActTime
	if ctx != nil {
		caps = ctx.Caps
		nowAct = ctx.NowAct
	}
	capRec := findCap(caps, stamped.AgentID)
	effectiveAuth := ctx.effectiveAuthority(capRec, stamped.AgentID)

	code := refusal.PlayerNone
	switch stamped.Kind {
	case IntentGoalUpdate:
		pre := stamped.GoalUpdate.Preconditions
		switch {
		case capRec == nil || capRec.CapabilityMask&pre.RequiredCapabilities != pre.RequiredCapabilities:
			code = refusal.PlayerNoCapability
		case effectiveAuth&pre.RequiredAuthority != pre.RequiredAuthority:
			code = refusal.PlayerNoAuthority
		case !ctx.knowledgeOK(stamped.AgentID, pre.RequiredKnowledge):
			code = refusal.PlayerNoKnowledge
		}
		if code == refusal.PlayerNone && ctx != nil && ctx.Goals != nil {
			if _, err := ctx.Goals.Register(&stamped.GoalUpdate); err != nil {
				code = refusal.PlayerInvalidIntent
			}
		}
	case IntentPlanConfirm:
		if stamped.PlanID == 0 {
			code = refusal.PlayerPlanNotFound
		}
	case IntentProcessRequest:
		req := &stamped.ProcessRequest
		switch {
		case capRec == nil || capRec.CapabilityMask&req.RequiredCapabilityMask != req.RequiredCapabilityMask:
			code = refusal.PlayerNoCapability
		case effectiveAuth&req.RequiredAuthorityMask != req.RequiredAuthorityMask:
			code = refusal.PlayerNoAuthority
		case !ctx.knowledgeOK(stamped.AgentID, req.RequiredKnowledgeMask):
			code = refusal.PlayerNoKnowledge
		case !ctx.physicalOK(req):
			code = refusal.PlayerPhysicalConstraint
		}
	default:
		code = refusal.PlayerInvalidIntent
	}

	accepted := code == refusal.PlayerNone
	if accepted {
		stamped.Status = IntentAccepted
	} else {
		stamped.Status = IntentRefused
	}
	stamped.Refusal = code

	if len(q.intents) >= q.capacity {
		return false, ErrQueueFull
	}
	q.intents = append(q.intents, stamped)

	if ctx != nil && ctx.Events != nil {
		kind := EventIntentAccepted
		if !accepted {
			kind = EventIntentRefused
		}
		ctx.Events.record(stamped.PlayerID, stamped.AgentID, kind, stamped.IntentID, code, nowAct)
	}
	if q.log != nil && !accepted {
		q.log.Debug("player intent refused",
			log.Uint64("player", stamped.PlayerID),
			log.Uint64("agent", stamped.AgentID),
			log.Uint64("intent", stamped.IntentID),
			log.Stringer("refusal", code))
	}
	return accepted, nil
}
