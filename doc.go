// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

/*
Package dominium implements a deterministic, fixed-capacity,
tick-driven simulation kernel for a strategy game in which every
acting entity — individual persons, aggregate agents (cohorts),
institutions, and human players — is modeled uniformly as an agent.

# Architecture

The kernel is a pipeline of pure functions over explicit state
containers, organized leaves-first:

  - due/          Min-priority due-tick scheduler shared by every
                   periodic subsystem below.
  - belief/       Per-agent belief stores (confidence, decay, hearsay)
                   and scalar belief state (hunger, threat, knowledge).
  - goal/         Goal registries and the deterministic arbitration
                   evaluator.
  - doctrine/     Doctrine, role, authority, constraint, contract, and
                   delegation registries — the social filters on what
                   an agent may pursue and with what authority.
  - planner/      Bounded deterministic planning from (goal, context)
                   to a fixed-length sequence of process steps.
  - aggregate/    Aggregate agents and the Aggregation/Refinement/
                   Collapse (ARC) subsystem unifying cohorts and
                   individuals under one agent abstraction.
  - schedule/     Per-agent think cadence driving evaluator+planner
                   slices through the due scheduler.
  - engine/       The per-agent think slice itself: decay, arbitrate,
                   plan, veto (constraints/contracts/delegations),
                   audit.
  - audit/        Append-only, order-preserving audit log and history
                   aggregation.
  - playerintent/ Uniform capability/authority/knowledge/physical
                   gating for player-submitted intents.
  - population/   Cohort demographics, households, migration flows,
                   and epistemic projections, driven by the same due
                   scheduler.
  - identity/     The universe bundle's per-chunk content hash
                   contract (interface only; bundle framing itself is
                   an external collaborator).
  - refusal/      The closed refusal-code enumerations returned by
                   every operation above in place of exceptions.

# Determinism

Every operation in this module is forbidden from depending on
walltime, floating point, pointer/thread identity, or unspecified
iteration order. Two runs that issue the same call sequence against
freshly initialized state must produce byte-identical audit logs and
registry contents. See each package's doc comment for its specific
ordering and tie-break contract.
*/
package dominium
