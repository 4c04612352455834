// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package belief

import (
	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/refusal"
)

// State is an agent's scalar belief summary: knowledge bits plus
// hunger and threat levels on the linear need scale.
type State struct {
	AgentID       uint64
	KnowledgeMask uint32
	HungerLevel   uint32
	ThreatLevel   uint32
	LastUpdateAct dominium.ActTime
}

// Observation is a direct perception delta.
type Observation struct {
	KnowledgeGrantMask uint32
	KnowledgeClearMask uint32
	HungerDelta        int32
	ThreatDelta        int32
}

// CommandOutcome is the feedback from an executed (or refused)
// command.
type CommandOutcome struct {
	Success            bool
	Refusal            refusal.Code
	KnowledgeClearMask uint32
	HungerDelta        int32
	ThreatDelta        int32
}

// NewState initializes a State, clamping need levels into scale.
func NewState(agentID uint64, knowledgeMask, hungerLevel, threatLevel uint32, nowAct dominium.ActTime) State {
	return State{
		AgentID:       agentID,
		KnowledgeMask: knowledgeMask,
		HungerLevel:   dominium.Clamp(hungerLevel, dominium.NeedScale),
		ThreatLevel:   dominium.Clamp(threatLevel, dominium.NeedScale),
		LastUpdateAct: nowAct,
	}
}

func clampNeed(v int64) uint32 {
	if v < 0 {
		return 0
	}
	if v > int64(dominium.NeedScale) {
		return dominium.NeedScale
	}
	return uint32(v)
}

// ApplyObservation grants and clears knowledge bits and applies
// clamped need deltas.
func (s *State) ApplyObservation(obs *Observation, nowAct dominium.ActTime) {
	if obs == nil {
		return
	}
	s.KnowledgeMask |= obs.KnowledgeGrantMask
	s.KnowledgeMask &^= obs.KnowledgeClearMask
	s.HungerLevel = clampNeed(int64(s.HungerLevel) + int64(obs.HungerDelta))
	s.ThreatLevel = clampNeed(int64(s.ThreatLevel) + int64(obs.ThreatDelta))
	s.LastUpdateAct = nowAct
}

// ApplyCommandOutcome applies the outcome's clear mask and need
// deltas. A failed command refused for insufficient knowledge with no
// explicit clear mask clears the resource bit: the agent has learned
// its resource belief was wrong.
func (s *State) ApplyCommandOutcome(outcome *CommandOutcome, nowAct dominium.ActTime) {
	if outcome == nil {
		return
	}
	s.KnowledgeMask &^= outcome.KnowledgeClearMask
	if !outcome.Success && outcome.Refusal == refusal.InsufficientKnowledge &&
		outcome.KnowledgeClearMask == 0 {
		s.KnowledgeMask &^= dominium.KnowledgeResource
	}
	s.HungerLevel = clampNeed(int64(s.HungerLevel) + int64(outcome.HungerDelta))
	s.ThreatLevel = clampNeed(int64(s.ThreatLevel) + int64(outcome.ThreatDelta))
	s.LastUpdateAct = nowAct
}
