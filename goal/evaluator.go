// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package goal

import (
	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/doctrine"
	"github.com/luxfi/dominium/refusal"
)

// Context is the per-evaluation snapshot of one agent's capabilities,
// beliefs, and doctrine bindings.
type Context struct {
	AgentID                 uint64
	CapabilityMask          uint32
	AuthorityMask           uint32
	KnowledgeMask           uint32
	HungerLevel             uint32
	ThreatLevel             uint32
	RiskToleranceQ16        uint32
	EpistemicConfidenceQ16  uint32
	KnownResourceRef        uint64
	KnownThreatRef          uint64
	KnownDestinationRef     uint64
	RoleID                  uint64
	ExplicitDoctrineRef     uint64
	OrgDoctrineRef          uint64
	JurisdictionDoctrineRef uint64
	PersonalDoctrineRef     uint64
	LegitimacyValue         uint32
}

// EvalResult reports the outcome of one arbitration pass.
type EvalResult struct {
	Goal               *Goal
	ComputedPriority   uint32
	ConfidenceQ16      uint32
	Refusal            refusal.Code
	AppliedDoctrineRef uint64
	AppliedRoleRef     uint64
}

// PriorityScore computes a goal's doctrine-free priority: base plus
// urgency plus the matching need boost, clamped to scale, then scaled
// by the min of the goal's and context's epistemic confidences
// (treating zero as unset). All intermediates are 64-bit.
func PriorityScore(g *Goal, ctx *Context) (priority, confidenceQ16 uint32) {
	if g == nil {
		return 0, 0
	}
	total := uint64(g.BasePriority) + uint64(g.Urgency)
	confidence := dominium.ConfidenceMax
	if ctx != nil {
		switch g.Type {
		case dominium.GoalSurvive:
			total += uint64(ctx.HungerLevel)
		case dominium.GoalDefend:
			total += uint64(ctx.ThreatLevel)
		}
		if ctx.EpistemicConfidenceQ16 > 0 {
			confidence = ctx.EpistemicConfidenceQ16
		}
	}
	if g.EpistemicConfidenceQ16 > 0 && g.EpistemicConfidenceQ16 < confidence {
		confidence = g.EpistemicConfidenceQ16
	}
	if total > uint64(dominium.PriorityScale) {
		total = uint64(dominium.PriorityScale)
	}
	if confidence < dominium.ConfidenceMax {
		total = total * uint64(confidence) / uint64(dominium.ConfidenceMax)
	}
	return uint32(total), confidence
}

// IsExpired reports whether the goal has lapsed at nowAct: the expiry
// act governs when set, else the horizon act, else never.
func (g *Goal) IsExpired(nowAct dominium.ActTime) bool {
	if g == nil {
		return true
	}
	if g.ExpiryAct == 0 {
		if g.HorizonAct == 0 {
			return false
		}
		return g.HorizonAct <= nowAct
	}
	return g.ExpiryAct <= nowAct
}

// isActive reports whether the goal is eligible for arbitration at
// nowAct.
func (g *Goal) isActive(nowAct dominium.ActTime) bool {
	if g == nil {
		return false
	}
	if g.Status == StatusAbandoned || g.Status == StatusSatisfied {
		return false
	}
	if g.DeferUntilAct != 0 && g.DeferUntilAct > nowAct {
		return false
	}
	return !g.IsExpired(nowAct)
}

// conditionsOK checks the goal's declarative conditions against the
// context's knowledge bits and known refs.
func (g *Goal) conditionsOK(ctx *Context) bool {
	if g == nil || ctx == nil {
		return false
	}
	for i := uint32(0); i < g.ConditionCount && i < MaxConditions; i++ {
		cond := &g.Conditions[i]
		switch cond.Kind {
		case CondKnowledge:
			if ctx.KnowledgeMask&uint32(cond.SubjectRef) == 0 {
				return false
			}
		case CondResource:
			if ctx.KnownResourceRef == 0 ||
				(cond.SubjectRef != 0 && ctx.KnownResourceRef != cond.SubjectRef) {
				return false
			}
		case CondThreat:
			if ctx.KnownThreatRef == 0 ||
				(cond.SubjectRef != 0 && ctx.KnownThreatRef != cond.SubjectRef) {
				return false
			}
		case CondDestination:
			if ctx.KnownDestinationRef == 0 ||
				(cond.SubjectRef != 0 && ctx.KnownDestinationRef != cond.SubjectRef) {
				return false
			}
		}
	}
	return true
}

// riskOK applies the risk gate: estimated risk is the threat level
// rescaled from NeedScale to Q16. A goal with no acceptable-risk bound
// always passes; otherwise the estimate must stay within either the
// goal's bound or the agent's tolerance.
func (g *Goal) riskOK(ctx *Context) bool {
	if g == nil || ctx == nil {
		return false
	}
	if g.AcceptableRiskQ16 == 0 {
		return true
	}
	if dominium.NeedScale == 0 {
		return true
	}
	riskEstimateQ16 := uint32(uint64(ctx.ThreatLevel) * uint64(dominium.ConfidenceMax) / uint64(dominium.NeedScale))
	if riskEstimateQ16 > g.AcceptableRiskQ16 && ctx.RiskToleranceQ16 < riskEstimateQ16 {
		return false
	}
	return true
}

// PreconditionsOK checks capability, authority, and knowledge
// preconditions, returning the most specific refusal on failure.
// FlagAllowUnknown downgrades a knowledge miss to a pass.
func (g *Goal) PreconditionsOK(ctx *Context) refusal.Code {
	if g == nil || ctx == nil {
		return refusal.GoalNotFeasible
	}
	if ctx.CapabilityMask&g.Preconditions.RequiredCapabilities != g.Preconditions.RequiredCapabilities {
		return refusal.InsufficientCapability
	}
	if ctx.AuthorityMask&g.Preconditions.RequiredAuthority != g.Preconditions.RequiredAuthority {
		return refusal.InsufficientAuthority
	}
	if ctx.KnowledgeMask&g.Preconditions.RequiredKnowledge != g.Preconditions.RequiredKnowledge {
		if g.Flags&FlagAllowUnknown == 0 {
			return refusal.InsufficientKnowledge
		}
	}
	return refusal.None
}

// selectDoctrine resolves the context's role (refusing RoleMismatch
// on an unknown role or unmet role requirements) and then selects a
// doctrine through the binding precedence chain.
func selectDoctrine(doctrines *doctrine.Registry, roles *doctrine.RoleRegistry, ctx *Context, nowAct dominium.ActTime) (*doctrine.Doctrine, uint64, refusal.Code) {
	if doctrines == nil || ctx == nil {
		return nil, 0, refusal.DoctrineNotAuthorized
	}
	var role *doctrine.Role
	var roleRef uint64
	if ctx.RoleID != 0 {
		if roles != nil {
			role = roles.Find(ctx.RoleID)
		}
		if role == nil {
			return nil, 0, refusal.RoleMismatch
		}
		if !role.RequirementsOK(ctx.AuthorityMask, ctx.CapabilityMask) {
			return nil, 0, refusal.RoleMismatch
		}
		roleRef = role.RoleID
	}
	binding := doctrine.Binding{
		ExplicitDoctrineRef:     ctx.ExplicitDoctrineRef,
		OrgDoctrineRef:          ctx.OrgDoctrineRef,
		JurisdictionDoctrineRef: ctx.JurisdictionDoctrineRef,
		PersonalDoctrineRef:     ctx.PersonalDoctrineRef,
		AuthorityMask:           ctx.AuthorityMask,
		LegitimacyValue:         ctx.LegitimacyValue,
	}
	if role != nil {
		binding.RoleDoctrineRef = role.DefaultDoctrineRef
	}
	d, code := doctrines.Select(&binding, nowAct)
	return d, roleRef, code
}

// chooseGoal is the single arbitration pass shared by the doctrine and
// doctrine-free entry points.
func chooseGoal(reg *Registry, ctx *Context, nowAct dominium.ActTime, d *doctrine.Doctrine, requireDoctrine bool, appliedRoleRef uint64) EvalResult {
	out := EvalResult{
		Refusal:        refusal.GoalNotFeasible,
		AppliedRoleRef: appliedRoleRef,
	}
	if d != nil {
		out.AppliedDoctrineRef = d.DoctrineID
	}
	if reg == nil || len(reg.goals) == 0 {
		return out
	}
	if requireDoctrine && d == nil {
		out.Refusal = refusal.DoctrineNotAuthorized
		return out
	}

	var best, bestFeasible *Goal
	var bestPriority, bestFeasiblePriority uint32
	var bestConfidence, bestFeasibleConfidence uint32
	filteredByDoctrine := false

	for i := range reg.goals {
		g := &reg.goals[i]
		if ctx != nil && g.AgentID != 0 && ctx.AgentID != 0 && g.AgentID != ctx.AgentID {
			continue
		}
		if !g.isActive(nowAct) {
			continue
		}
		if d != nil && !d.AllowsGoal(g.Type) {
			filteredByDoctrine = true
			continue
		}
		if !g.conditionsOK(ctx) {
			continue
		}
		if !g.riskOK(ctx) {
			continue
		}
		priority, confidence := PriorityScore(g, ctx)
		if d != nil {
			priority = d.ApplyPriority(g.Type, priority)
		}
		if best == nil || priority > bestPriority ||
			(priority == bestPriority && g.GoalID < best.GoalID) {
			best = g
			bestPriority = priority
			bestConfidence = confidence
		}
		if g.IsExpired(nowAct) {
			continue
		}
		if g.PreconditionsOK(ctx) == refusal.None {
			if bestFeasible == nil || priority > bestFeasiblePriority ||
				(priority == bestFeasiblePriority && g.GoalID < bestFeasible.GoalID) {
				bestFeasible = g
				bestFeasiblePriority = priority
				bestFeasibleConfidence = confidence
			}
		}
	}

	if bestFeasible != nil {
		out.Goal = bestFeasible
		out.ComputedPriority = bestFeasiblePriority
		out.ConfidenceQ16 = bestFeasibleConfidence
		out.Refusal = refusal.None
		return out
	}
	if best == nil {
		if filteredByDoctrine {
			out.Refusal = refusal.GoalForbiddenByDoctrine
		}
		return out
	}
	bestRefusal := refusal.GoalNotFeasible
	if best.IsExpired(nowAct) {
		bestRefusal = refusal.PlanExpired
	} else if code := best.PreconditionsOK(ctx); code != refusal.None {
		bestRefusal = code
	}
	out.Goal = best
	out.ComputedPriority = bestPriority
	out.ConfidenceQ16 = bestConfidence
	out.Refusal = bestRefusal
	return out
}

// ChooseGoal arbitrates the registry's goals without a doctrine
// filter, returning the best feasible goal or the most specific
// refusal for the best overall one.
func ChooseGoal(reg *Registry, ctx *Context, nowAct dominium.ActTime) EvalResult {
	return chooseGoal(reg, ctx, nowAct, nil, false, 0)
}

// ChooseGoalWithDoctrine selects the agent's governing doctrine from
// the binding chain and arbitrates under it. A failed selection
// refuses before any goal is considered.
func ChooseGoalWithDoctrine(goals *Registry, doctrines *doctrine.Registry, roles *doctrine.RoleRegistry, ctx *Context, nowAct dominium.ActTime) EvalResult {
	d, roleRef, code := selectDoctrine(doctrines, roles, ctx, nowAct)
	if d == nil {
		return EvalResult{
			Refusal:        code,
			AppliedRoleRef: roleRef,
		}
	}
	return chooseGoal(goals, ctx, nowAct, d, true, roleRef)
}
