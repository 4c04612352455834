// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package planner maps (goal type, context) to a bounded sequence of
// process steps. Planning is template-driven: each goal type expands
// to a fixed sequence of process kinds whose targets come from the
// agent's subjective known refs, so two agents with divergent beliefs
// produce divergent plans from the same goal definition.
package planner

import (
	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/goal"
	"github.com/luxfi/dominium/internal/fnv1a"
	"github.com/luxfi/dominium/refusal"
)

// MaxSteps is the hard per-plan step ceiling.
const MaxSteps = 8

// StepFlags annotate a plan step.
type StepFlags uint32

const (
	StepEpistemicGap StepFlags = 1 << iota
	StepFailurePoint
)

// Step is one bounded unit of work in a plan.
type Step struct {
	ProcessID              uint64
	Kind                   dominium.ProcessKind
	TargetRef              uint64
	RequiredCapabilityMask uint32
	RequiredAuthorityMask  uint32
	ExpectedCostUnits      uint32
	EpistemicGapMask       uint32
	ConfidenceQ16          uint32
	FailureModeID          uint32
	Flags                  StepFlags
}

// Plan is a bounded, audited sequence of steps toward one goal.
type Plan struct {
	PlanID                   uint64
	AgentID                  uint64
	GoalID                   uint64
	Steps                    [MaxSteps]Step
	StepCount                uint32
	StepCursor               uint32
	EstimatedCost            uint32
	RequiredCapabilityMask   uint32
	RequiredAuthorityMask    uint32
	ExpectedEpistemicGapMask uint32
	ConfidenceQ16            uint32
	FailurePointMask         uint32
	ComputeBudgetUsed        uint32
	EstimatedDurationAct     dominium.ActTime
	NextDueTick              dominium.ActTime
	CreatedAct               dominium.ActTime
	ExpiryAct                dominium.ActTime
	HorizonAct               dominium.ActTime
}

// ProcessKinds returns the plan's step kinds in step order, for
// contract and delegation checks.
func (p *Plan) ProcessKinds() []dominium.ProcessKind {
	kinds := make([]dominium.ProcessKind, 0, p.StepCount)
	for i := uint32(0); i < p.StepCount && i < MaxSteps; i++ {
		kinds = append(kinds, p.Steps[i].Kind)
	}
	return kinds
}

// Options tune one Build call. Zero fields mean "unset".
type Options struct {
	PlanID          uint64
	MaxSteps        uint32
	MaxDepth        uint32
	ComputeBudget   uint32
	StepDurationAct dominium.ActTime
	ExpiryAct       dominium.ActTime
	ResumeStep      uint32
}

// ProcessID derives a process kind's stable 64-bit id from its string
// key via FNV-1a. The mapping is bit-identical across implementations.
func ProcessID(kind dominium.ProcessKind) uint64 {
	return fnv1a.Sum64String(kind.Key())
}

// stepLimit resolves the effective step ceiling from the options,
// treating zero fields as unset.
func stepLimit(options *Options) uint32 {
	maxSteps := uint32(MaxSteps)
	var maxDepth uint32
	if options != nil {
		if options.MaxSteps > 0 {
			maxSteps = options.MaxSteps
		}
		maxDepth = options.MaxDepth
		if options.ComputeBudget > 0 && options.ComputeBudget < maxSteps {
			maxSteps = options.ComputeBudget
		}
	}
	if maxDepth > 0 && maxDepth < maxSteps {
		return maxDepth
	}
	return maxSteps
}

func stepDuration(options *Options) dominium.ActTime {
	if options != nil && options.StepDurationAct > 0 {
		return options.StepDurationAct
	}
	return 1
}

// stepConfidence is the min of goal and context epistemic confidences,
// treating zero as unset.
func stepConfidence(g *goal.Goal, ctx *goal.Context) uint32 {
	confidence := dominium.ConfidenceMax
	if g != nil && g.EpistemicConfidenceQ16 > 0 {
		confidence = g.EpistemicConfidenceQ16
	}
	if ctx != nil && ctx.EpistemicConfidenceQ16 > 0 && ctx.EpistemicConfidenceQ16 < confidence {
		confidence = ctx.EpistemicConfidenceQ16
	}
	return confidence
}

// expiredAt reports whether the goal (or an options override) has
// lapsed at nowAct; the earlier of the two expiries governs.
func expiredAt(g *goal.Goal, options *Options, nowAct dominium.ActTime) bool {
	var expiry dominium.ActTime
	if options != nil && options.ExpiryAct != 0 {
		expiry = options.ExpiryAct
	}
	if g != nil && g.ExpiryAct != 0 {
		if expiry == 0 || g.ExpiryAct < expiry {
			expiry = g.ExpiryAct
		}
	}
	return expiry != 0 && expiry <= nowAct
}

// addStep appends a step within the limit, folding its masks, cost,
// confidence, and failure point into the plan aggregates.
func (p *Plan) addStep(limit uint32, step Step) bool {
	if limit == 0 || p.StepCount >= limit || p.StepCount >= MaxSteps {
		return false
	}
	idx := p.StepCount
	if step.EpistemicGapMask != 0 {
		step.Flags |= StepEpistemicGap
	}
	if step.FailureModeID != 0 {
		step.Flags |= StepFailurePoint
		p.FailurePointMask |= 1 << idx
	}
	p.Steps[idx] = step
	p.RequiredCapabilityMask |= step.RequiredCapabilityMask
	p.RequiredAuthorityMask |= step.RequiredAuthorityMask
	p.ExpectedEpistemicGapMask |= step.EpistemicGapMask
	if idx == 0 || step.ConfidenceQ16 < p.ConfidenceQ16 {
		p.ConfidenceQ16 = step.ConfidenceQ16
	}
	p.EstimatedCost += step.ExpectedCostUnits
	p.StepCount++
	return true
}

// Build produces a bounded plan for the goal under the agent's
// context, or the most specific refusal. The goal's preconditions are
// re-checked here so the planner is safe to call outside the
// evaluator.
func Build(g *goal.Goal, ctx *goal.Context, options *Options, nowAct dominium.ActTime) (Plan, refusal.Code) {
	var plan Plan
	if g == nil || ctx == nil {
		return plan, refusal.GoalNotFeasible
	}
	if expiredAt(g, options, nowAct) {
		return plan, refusal.PlanExpired
	}
	if code := g.PreconditionsOK(ctx); code != refusal.None {
		return plan, code
	}

	plan.PlanID = g.GoalID
	if options != nil && options.PlanID != 0 {
		plan.PlanID = options.PlanID
	}
	plan.AgentID = g.AgentID
	if plan.AgentID == 0 {
		plan.AgentID = ctx.AgentID
	}
	plan.GoalID = g.GoalID
	plan.CreatedAct = nowAct
	plan.ExpiryAct = g.ExpiryAct
	if options != nil && options.ExpiryAct != 0 {
		plan.ExpiryAct = options.ExpiryAct
	}
	plan.HorizonAct = g.HorizonAct
	plan.ConfidenceQ16 = dominium.ConfidenceMax

	limit := stepLimit(options)
	duration := stepDuration(options)
	confidence := stepConfidence(g, ctx)
	missingKnowledge := g.Preconditions.RequiredKnowledge &^ ctx.KnowledgeMask

	var failureModeID uint32
	if missingKnowledge != 0 && g.Flags&goal.FlagRequireKnowledge != 0 {
		failureModeID = uint32(refusal.InsufficientKnowledge)
	}
	template := func(kind dominium.ProcessKind, targetRef uint64, gapMask uint32, failureMode uint32) Step {
		return Step{
			ProcessID:              ProcessID(kind),
			Kind:                   kind,
			TargetRef:              targetRef,
			RequiredCapabilityMask: g.Preconditions.RequiredCapabilities,
			RequiredAuthorityMask:  g.Preconditions.RequiredAuthority,
			ExpectedCostUnits:      1,
			EpistemicGapMask:       gapMask,
			ConfidenceQ16:          confidence,
			FailureModeID:          failureMode,
		}
	}

	ok := true
	switch g.Type {
	case dominium.GoalSurvive:
		ok = plan.addStep(limit, template(dominium.ProcessMove, ctx.KnownResourceRef, missingKnowledge, failureModeID)) &&
			plan.addStep(limit, template(dominium.ProcessAcquire, ctx.KnownResourceRef, missingKnowledge, failureModeID))
	case dominium.GoalAcquire:
		ok = plan.addStep(limit, template(dominium.ProcessAcquire, ctx.KnownResourceRef, missingKnowledge, failureModeID))
	case dominium.GoalDefend:
		ok = plan.addStep(limit, template(dominium.ProcessDefend, ctx.KnownThreatRef, missingKnowledge, failureModeID))
	case dominium.GoalMigrate:
		ok = plan.addStep(limit, template(dominium.ProcessMove, ctx.KnownDestinationRef, missingKnowledge, failureModeID))
	case dominium.GoalResearch:
		ok = plan.addStep(limit, template(dominium.ProcessResearch, 0, 0, 0))
	case dominium.GoalTrade:
		ok = plan.addStep(limit, template(dominium.ProcessTrade, ctx.KnownResourceRef, missingKnowledge, failureModeID))
	case dominium.GoalSurvey:
		ok = plan.addStep(limit, template(dominium.ProcessSurvey, ctx.KnownDestinationRef, missingKnowledge, failureModeID))
	case dominium.GoalMaintain:
		ok = plan.addStep(limit, template(dominium.ProcessSurvey, ctx.KnownResourceRef, missingKnowledge, failureModeID)) &&
			plan.addStep(limit, template(dominium.ProcessMaintain, ctx.KnownResourceRef, missingKnowledge, failureModeID))
	case dominium.GoalStabilize:
		ok = plan.addStep(limit, template(dominium.ProcessSurvey, ctx.KnownDestinationRef, missingKnowledge, failureModeID)) &&
			plan.addStep(limit, template(dominium.ProcessTransfer, ctx.KnownDestinationRef, missingKnowledge, failureModeID))
	default:
		return Plan{}, refusal.GoalNotFeasible
	}
	if !ok {
		return Plan{}, refusal.GoalNotFeasible
	}

	plan.ComputeBudgetUsed = plan.StepCount
	plan.EstimatedDurationAct = duration * dominium.ActTime(plan.StepCount)
	plan.NextDueTick = nowAct + plan.EstimatedDurationAct
	if options != nil && options.ResumeStep > 0 && options.ResumeStep < plan.StepCount {
		plan.StepCursor = options.ResumeStep
	}
	return plan, refusal.None
}

// CollapseForCohort scales a single representative plan to a whole
// cohort: the estimated cost and each step's expected cost units are
// multiplied by the cohort size, saturating at the 32-bit ceiling.
func CollapseForCohort(p *Plan, cohortSize uint32) (Plan, bool) {
	if p == nil || cohortSize == 0 {
		return Plan{}, false
	}
	out := *p
	const maxU32 = ^uint32(0)
	if p.EstimatedCost > 0 {
		cost := uint64(p.EstimatedCost) * uint64(cohortSize)
		if cost > uint64(maxU32) {
			cost = uint64(maxU32)
		}
		out.EstimatedCost = uint32(cost)
	}
	for i := uint32(0); i < out.StepCount && i < MaxSteps; i++ {
		if out.Steps[i].ExpectedCostUnits == 0 {
			continue
		}
		cost := uint64(out.Steps[i].ExpectedCostUnits) * uint64(cohortSize)
		if cost > uint64(maxU32) {
			cost = uint64(maxU32)
		}
		out.Steps[i].ExpectedCostUnits = uint32(cost)
	}
	return out, true
}
