// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dominium

// ActTime is an unsigned monotonic simulation tick count.
type ActTime = uint64

// ActTimeMax is the sentinel meaning "never" for any act_time field.
const ActTimeMax ActTime = ^ActTime(0)

// Fixed-point and linear scales shared across every subsystem. All
// confidences and risk tolerances are Q16 fractions of ConfidenceMax;
// need levels (hunger, threat) use the linear NeedScale. No floating
// point is used anywhere in this module.
const (
	// ConfidenceMax is the Q16 fixed-point full-scale value.
	ConfidenceMax uint32 = 65536
	// NeedScale is the linear full-scale value for hunger/threat.
	NeedScale uint32 = 1000
	// PriorityScale is the linear full-scale value for goal priority.
	PriorityScale uint32 = 1000
)

// Capability bits, shared across goal preconditions, agent context,
// and player intents.
const (
	CapabilityMove uint32 = 1 << iota
	CapabilityTrade
	CapabilityDefend
	CapabilityResearch
)

// Authority bits.
const (
	AuthorityBasic uint32 = 1 << iota
	AuthorityTrade
	AuthorityMilitary
)

// Knowledge/belief topic bits (§4.2, §6).
const (
	KnowledgeResource uint32 = 1 << iota
	KnowledgeSafeRoute
	KnowledgeThreat
)

// ProcessKind identifies a planner step's process kind. Fixed bit
// positions mirror the original source's mask layout: kind_bit(k) = 1
// << (k-1).
type ProcessKind uint32

const (
	ProcessNone ProcessKind = iota
	ProcessMove
	ProcessAcquire
	ProcessDefend
	ProcessResearch
	ProcessTrade
	ProcessObserve
	ProcessSurvey
	ProcessMaintain
	ProcessTransfer
)

// Bit returns the process kind's fixed mask bit; ProcessNone has no
// bit and Bit(ProcessNone) is 0.
func (k ProcessKind) Bit() uint32 {
	if k == ProcessNone {
		return 0
	}
	return 1 << (uint32(k) - 1)
}

// Key returns the stable string key hashed (via FNV-1a) to derive this
// process kind's 64-bit process id. Bit-identical across
// implementations is required by spec; an unrecognized kind maps to
// "PROC.UNKNOWN" exactly as the original planner does.
func (k ProcessKind) Key() string {
	switch k {
	case ProcessMove:
		return "PROC.MOVE"
	case ProcessAcquire:
		return "PROC.ACQUIRE"
	case ProcessDefend:
		return "PROC.DEFEND"
	case ProcessResearch:
		return "PROC.RESEARCH"
	case ProcessTrade:
		return "PROC.TRADE"
	case ProcessObserve:
		return "PROC.OBSERVE"
	case ProcessSurvey:
		return "PROC.SURVEY"
	case ProcessMaintain:
		return "PROC.MAINTAIN"
	case ProcessTransfer:
		return "PROC.TRANSFER"
	default:
		return "PROC.UNKNOWN"
	}
}

// GoalType is the nine-member goal type enumeration actually switched
// over by the original planner (agent_planner.cpp), a superset of the
// six-member enum in the original header.
type GoalType uint32

const (
	GoalSurvive GoalType = iota
	GoalAcquire
	GoalDefend
	GoalMigrate
	GoalResearch
	GoalTrade
	GoalSurvey
	GoalMaintain
	GoalStabilize
	goalTypeCount
)

// Valid reports whether g is one of the nine known goal types.
func (g GoalType) Valid() bool {
	return g < goalTypeCount
}

// GoalTypeCount is the number of distinct goal types.
const GoalTypeCount = uint32(goalTypeCount)

// Clamp saturates v into [0, max].
func Clamp(v, max uint32) uint32 {
	if v > max {
		return max
	}
	return v
}
