// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine wires the decision pipeline for one due agent: decay
// beliefs, arbitrate goals under doctrine, build a bounded plan, veto
// it through constraints, contracts, and delegations, and audit the
// outcome. The due scheduler (schedule package) drives when Think
// runs; this package defines what one think slice does.
package engine

import (
	"github.com/luxfi/log"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/audit"
	"github.com/luxfi/dominium/belief"
	"github.com/luxfi/dominium/doctrine"
	"github.com/luxfi/dominium/goal"
	"github.com/luxfi/dominium/planner"
	"github.com/luxfi/dominium/refusal"
)

// Engine gathers the registries one simulation instance thinks
// against. Any social registry may be nil, which skips its veto; a
// nil doctrine registry arbitrates without doctrine.
type Engine struct {
	Goals       *goal.Registry
	Doctrines   *doctrine.Registry
	Roles       *doctrine.RoleRegistry
	Authority   *doctrine.AuthorityRegistry
	Constraints *doctrine.ConstraintRegistry
	Contracts   *doctrine.ContractRegistry
	Delegations *doctrine.DelegationRegistry
	Beliefs     *belief.Store
	Audit       *audit.Log
	PlanOptions planner.Options

	// DelegationRequired makes a missing delegation a refusal instead
	// of skipping the delegation check.
	DelegationRequired bool

	Log log.Logger
}

// ThinkResult reports one think slice's outcome.
type ThinkResult struct {
	Eval    goal.EvalResult
	Plan    planner.Plan
	Refusal refusal.Code
	// VetoedBy carries the constraint institution or contract id that
	// blocked the plan, when one did.
	VetoedBy uint64
}

// refreshFromBeliefs folds the agent's belief store into the context:
// knowledge mask from topics, best-confidence refs per topic.
func (e *Engine) refreshFromBeliefs(ctx *goal.Context) {
	if e.Beliefs == nil || ctx == nil {
		return
	}
	ctx.KnowledgeMask = e.Beliefs.Mask(ctx.AgentID)
	if entry, ok := e.Beliefs.BestTopic(ctx.AgentID, belief.TopicResource); ok {
		ctx.KnownResourceRef = entry.KnowledgeRef
	} else {
		ctx.KnownResourceRef = 0
	}
	if entry, ok := e.Beliefs.BestTopic(ctx.AgentID, belief.TopicThreat); ok {
		ctx.KnownThreatRef = entry.KnowledgeRef
	} else {
		ctx.KnownThreatRef = 0
	}
	if entry, ok := e.Beliefs.BestTopic(ctx.AgentID, belief.TopicSafeRoute); ok {
		ctx.KnownDestinationRef = entry.KnowledgeRef
	} else {
		ctx.KnownDestinationRef = 0
	}
}

// vetoPlan runs the social checks over a built plan in fixed order:
// constraints, then contracts, then delegation. The first veto wins.
func (e *Engine) vetoPlan(agentID uint64, plan *planner.Plan, nowAct dominium.ActTime) (refusal.Code, uint64) {
	kinds := plan.ProcessKinds()
	if e.Constraints != nil {
		for _, kind := range kinds {
			if allowed, institutionID := e.Constraints.AllowsProcess(agentID, kind, nowAct); !allowed {
				return refusal.GoalNotFeasible, institutionID
			}
		}
	}
	if e.Contracts != nil {
		if ok, contractID := e.Contracts.CheckPlan(agentID, kinds, nowAct); !ok {
			return refusal.GoalNotFeasible, contractID
		}
	}
	if e.Delegations != nil && e.DelegationRequired {
		if code := e.Delegations.CheckPlan(agentID, kinds, nowAct); code != refusal.None {
			return code, 0
		}
	}
	return refusal.None, 0
}

// Think runs one decision slice for the agent behind ctx at nowAct:
// decay beliefs, refresh the context's subjective refs, arbitrate,
// plan, veto, audit. The audit log receives GOAL_CHOSEN and
// PLAN_BUILT on success, or the matching refusal records.
func (e *Engine) Think(ctx *goal.Context, nowAct dominium.ActTime) ThinkResult {
	var out ThinkResult
	if ctx == nil {
		out.Refusal = refusal.GoalNotFeasible
		return out
	}
	if e.Beliefs != nil {
		e.Beliefs.Decay(nowAct)
		e.refreshFromBeliefs(ctx)
	}
	if e.Authority != nil {
		ctx.AuthorityMask = e.Authority.EffectiveMask(ctx.AgentID, ctx.AuthorityMask, nowAct)
	}

	if e.Audit != nil {
		e.Audit.SetContext(nowAct, ctx.AgentID)
	}

	if e.Doctrines != nil {
		out.Eval = goal.ChooseGoalWithDoctrine(e.Goals, e.Doctrines, e.Roles, ctx, nowAct)
	} else {
		out.Eval = goal.ChooseGoal(e.Goals, ctx, nowAct)
	}
	if out.Eval.Refusal != refusal.None {
		out.Refusal = out.Eval.Refusal
		if e.Audit != nil {
			var subjectID uint64
			if out.Eval.Goal != nil {
				subjectID = out.Eval.Goal.GoalID
			}
			_ = e.Audit.Record(ctx.AgentID, audit.KindGoalRefused, subjectID, 0, int64(out.Refusal))
		}
		return out
	}
	chosen := out.Eval.Goal
	if e.Audit != nil {
		_ = e.Audit.Record(ctx.AgentID, audit.KindGoalChosen, chosen.GoalID, out.Eval.AppliedDoctrineRef, int64(out.Eval.ComputedPriority))
	}

	plan, code := planner.Build(chosen, ctx, &e.PlanOptions, nowAct)
	if code == refusal.None {
		code, out.VetoedBy = e.vetoPlan(ctx.AgentID, &plan, nowAct)
	}
	if code != refusal.None {
		out.Refusal = code
		if e.Audit != nil {
			_ = e.Audit.Record(ctx.AgentID, audit.KindPlanRefused, chosen.GoalID, out.VetoedBy, int64(code))
		}
		if e.Log != nil {
			e.Log.Debug("plan refused",
				log.Uint64("agent", ctx.AgentID),
				log.Uint64("goal", chosen.GoalID),
				log.Stringer("refusal", code))
		}
		return out
	}
	out.Plan = plan
	if e.Audit != nil {
		_ = e.Audit.Record(ctx.AgentID, audit.KindPlanBuilt, chosen.GoalID, plan.PlanID, int64(plan.EstimatedCost))
	}
	return out
}
