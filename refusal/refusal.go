// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package refusal holds the closed enumeration of refusal codes
// returned by the Dominium agent decision core in place of exceptions.
// The taxonomy is stable and additive-only: existing integer values
// must never be renumbered.
package refusal

// Code is a closed agent-decision refusal code.
type Code int

const (
	None Code = iota
	GoalNotFeasible
	InsufficientCapability
	InsufficientAuthority
	InsufficientKnowledge
	PlanExpired
	DoctrineNotAuthorized
	GoalForbiddenByDoctrine
	DelegationExpired
	RoleMismatch
	AggregationNotAllowed
	RefinementLimitReached
	CollapseBlockedByInterest
	AgentStateInconsistent
)

func (c Code) String() string {
	switch c {
	case None:
		return "none"
	case GoalNotFeasible:
		return "goal_not_feasible"
	case InsufficientCapability:
		return "insufficient_capability"
	case InsufficientAuthority:
		return "insufficient_authority"
	case InsufficientKnowledge:
		return "insufficient_knowledge"
	case PlanExpired:
		return "plan_expired"
	case DoctrineNotAuthorized:
		return "doctrine_not_authorized"
	case GoalForbiddenByDoctrine:
		return "goal_forbidden_by_doctrine"
	case DelegationExpired:
		return "delegation_expired"
	case RoleMismatch:
		return "role_mismatch"
	case AggregationNotAllowed:
		return "aggregation_not_allowed"
	case RefinementLimitReached:
		return "refinement_limit_reached"
	case CollapseBlockedByInterest:
		return "collapse_blocked_by_interest"
	case AgentStateInconsistent:
		return "agent_state_inconsistent"
	default:
		return "unknown"
	}
}

// PopulationCode is the closed refusal taxonomy for population flow
// operations (cohorts, households, migration).
type PopulationCode int

const (
	PopNone PopulationCode = iota
	MigrationInsufficientResources
	MigrationInsufficientAuthority
	HouseholdTooLarge
	CohortNotFound
	InvalidBucketDistribution
)

func (c PopulationCode) String() string {
	switch c {
	case PopNone:
		return "none"
	case MigrationInsufficientResources:
		return "migration_insufficient_resources"
	case MigrationInsufficientAuthority:
		return "migration_insufficient_authority"
	case HouseholdTooLarge:
		return "household_too_large"
	case CohortNotFound:
		return "cohort_not_found"
	case InvalidBucketDistribution:
		return "invalid_bucket_distribution"
	default:
		return "unknown"
	}
}

// PlayerCode is the closed refusal taxonomy for player intent
// submission.
type PlayerCode int

const (
	PlayerNone PlayerCode = iota
	PlayerNoCapability
	PlayerNoAuthority
	PlayerNoKnowledge
	PlayerPhysicalConstraint
	PlayerInvalidIntent
	PlayerPlanNotFound
)

func (c PlayerCode) String() string {
	switch c {
	case PlayerNone:
		return "none"
	case PlayerNoCapability:
		return "no_capability"
	case PlayerNoAuthority:
		return "no_authority"
	case PlayerNoKnowledge:
		return "no_knowledge"
	case PlayerPhysicalConstraint:
		return "physical_constraint"
	case PlayerInvalidIntent:
		return "invalid_intent"
	case PlayerPlanNotFound:
		return "plan_not_found"
	default:
		return "unknown"
	}
}

// IdentityCode is the closed refusal taxonomy for the universe
// identity contract (§6/§4.13).
type IdentityCode int

const (
	IdentityNone IdentityCode = iota
	MigrationRequired
	IdentityMismatch
)

func (c IdentityCode) String() string {
	switch c {
	case IdentityNone:
		return "none"
	case MigrationRequired:
		return "migration_required"
	case IdentityMismatch:
		return "identity_mismatch"
	default:
		return "unknown"
	}
}
