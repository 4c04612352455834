// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package population

import (
	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/internal/mix"
	"github.com/luxfi/dominium/refusal"
)

// FlowStatus tracks a migration flow's lifecycle.
type FlowStatus uint32

const (
	FlowActive FlowStatus = iota
	FlowCompleted
	FlowCancelled
)

// Flow is one scheduled population movement between two cohorts.
type Flow struct {
	FlowID        uint64
	SrcKey        Key
	DstKey        Key
	SrcCohortID   uint64
	DstCohortID   uint64
	CountDelta    uint32
	StartAct      dominium.ActTime
	ArrivalAct    dominium.ActTime
	CauseCode     uint32
	ProvenanceMix uint64
	Status        FlowStatus
}

// MigrationInput describes a flow to schedule. A zero FlowID derives
// one deterministically from the input and the registry's id counter.
type MigrationInput struct {
	FlowID        uint64
	SrcKey        Key
	DstKey        Key
	CountDelta    uint32
	StartAct      dominium.ActTime
	ArrivalAct    dominium.ActTime
	CauseCode     uint32
	ProvenanceMix uint64
}

// flowID hashes the input's fields into a non-zero flow id.
func flowID(input *MigrationInput, seed uint64) uint64 {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return mix.Seeded(seed,
		input.SrcKey.BodyID, input.SrcKey.RegionID, input.SrcKey.OrgID,
		input.DstKey.BodyID, input.DstKey.RegionID, input.DstKey.OrgID,
		uint64(input.CountDelta), uint64(input.ArrivalAct), uint64(input.CauseCode))
}

// MigrationRegistry owns a bounded, id-ordered set of flows.
type MigrationRegistry struct {
	flows      []Flow
	capacity   int
	nextFlowID uint64
}

// NewMigrationRegistry constructs a MigrationRegistry with fixed
// capacity. A zero startFlowID begins the id counter at 1.
func NewMigrationRegistry(capacity int, startFlowID uint64) *MigrationRegistry {
	if startFlowID == 0 {
		startFlowID = 1
	}
	return &MigrationRegistry{
		flows:      make([]Flow, 0, capacity),
		capacity:   capacity,
		nextFlowID: startFlowID,
	}
}

// Len returns the number of registered flows.
func (r *MigrationRegistry) Len() int { return len(r.flows) }

// Flows returns the registered flows ascending by id.
func (r *MigrationRegistry) Flows() []Flow { return r.flows }

func (r *MigrationRegistry) findIndex(id uint64) (int, bool) {
	for i := range r.flows {
		if r.flows[i].FlowID == id {
			return i, true
		}
		if r.flows[i].FlowID > id {
			return i, false
		}
	}
	return len(r.flows), false
}

// Find returns the flow with the given id, or nil.
func (r *MigrationRegistry) Find(id uint64) *Flow {
	idx, found := r.findIndex(id)
	if !found {
		return nil
	}
	return &r.flows[idx]
}

// Schedule registers an ACTIVE flow from the input, deriving cohort
// ids from the keys and a flow id from the input when unset. Returns
// the flow id.
func (r *MigrationRegistry) Schedule(input *MigrationInput) (uint64, error) {
	if input == nil {
		return 0, ErrDuplicateID
	}
	if len(r.flows) >= r.capacity {
		return 0, ErrRegistryFull
	}
	id := input.FlowID
	if id == 0 {
		id = flowID(input, r.nextFlowID)
		r.nextFlowID++
	}
	idx, found := r.findIndex(id)
	if found {
		return 0, ErrDuplicateID
	}
	flow := Flow{
		FlowID:        id,
		SrcKey:        input.SrcKey,
		DstKey:        input.DstKey,
		SrcCohortID:   CohortID(input.SrcKey),
		DstCohortID:   CohortID(input.DstKey),
		CountDelta:    input.CountDelta,
		StartAct:      input.StartAct,
		ArrivalAct:    input.ArrivalAct,
		CauseCode:     input.CauseCode,
		ProvenanceMix: input.ProvenanceMix,
		Status:        FlowActive,
	}
	if flow.ProvenanceMix == 0 {
		flow.ProvenanceMix = id
	}
	r.flows = append(r.flows, Flow{})
	copy(r.flows[idx+1:], r.flows[idx:])
	r.flows[idx] = flow
	return id, nil
}

// Apply moves the flow's count from source to destination cohort and
// completes the flow. A non-active flow is a no-op. Insufficient
// source population refuses MigrationInsufficientResources and leaves
// both cohorts unchanged.
func Apply(flow *Flow, cohorts *CohortRegistry) refusal.PopulationCode {
	if flow == nil || cohorts == nil {
		return refusal.CohortNotFound
	}
	if flow.Status != FlowActive {
		return refusal.PopNone
	}
	src := cohorts.Find(flow.SrcCohortID)
	dst := cohorts.Find(flow.DstCohortID)
	if src == nil || dst == nil {
		return refusal.CohortNotFound
	}
	if flow.CountDelta > src.Count {
		return refusal.MigrationInsufficientResources
	}
	if code := ApplyDelta(src, -int32(flow.CountDelta), flow.ProvenanceMix); code != refusal.PopNone {
		return code
	}
	if code := ApplyDelta(dst, int32(flow.CountDelta), flow.ProvenanceMix); code != refusal.PopNone {
		return code
	}
	flow.Status = FlowCompleted
	return refusal.PopNone
}
