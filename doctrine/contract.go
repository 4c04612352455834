// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package doctrine

import "github.com/luxfi/dominium"

// ContractStatus tracks a contract's lifecycle.
type ContractStatus uint32

const (
	ContractActive ContractStatus = iota
	ContractFulfilled
	ContractFailed
	ContractRevoked
)

// Contract binds two parties to per-party allowed process masks while
// active.
type Contract struct {
	ContractID             uint64
	PartyAID               uint64
	PartyBID               uint64
	AllowedProcessMaskA    uint32
	AllowedProcessMaskB    uint32
	RequiredAuthorityMaskA uint32
	RequiredAuthorityMaskB uint32
	ExpiryAct              dominium.ActTime
	Status                 ContractStatus
	FailureAct             dominium.ActTime
	ProvenanceID           uint64
}

// ContractRegistry owns a bounded, id-ordered set of contracts.
type ContractRegistry struct {
	contracts []Contract
	capacity  int
}

// NewContractRegistry constructs a ContractRegistry with fixed
// capacity.
func NewContractRegistry(capacity int) *ContractRegistry {
	return &ContractRegistry{
		contracts: make([]Contract, 0, capacity),
		capacity:  capacity,
	}
}

// Len returns the number of registered contracts.
func (r *ContractRegistry) Len() int { return len(r.contracts) }

// Contracts returns the registered contracts ascending by id.
func (r *ContractRegistry) Contracts() []Contract { return r.contracts }

func (r *ContractRegistry) findIndex(contractID uint64) (int, bool) {
	for i := range r.contracts {
		if r.contracts[i].ContractID == contractID {
			return i, true
		}
		if r.contracts[i].ContractID > contractID {
			return i, false
		}
	}
	return len(r.contracts), false
}

// Find returns the contract with the given id, or nil.
func (r *ContractRegistry) Find(contractID uint64) *Contract {
	idx, found := r.findIndex(contractID)
	if !found {
		return nil
	}
	return &r.contracts[idx]
}

// Register inserts a contract in id order as ACTIVE, defaulting its
// provenance id to the contract id.
func (r *ContractRegistry) Register(c Contract) error {
	if c.ContractID == 0 {
		return ErrInvalidID
	}
	if len(r.contracts) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(c.ContractID)
	if found {
		return ErrDuplicateID
	}
	c.Status = ContractActive
	c.FailureAct = 0
	if c.ProvenanceID == 0 {
		c.ProvenanceID = c.ContractID
	}
	r.contracts = append(r.contracts, Contract{})
	copy(r.contracts[idx+1:], r.contracts[idx:])
	r.contracts[idx] = c
	return nil
}

// RecordFailure transitions an active contract to FAILED.
func (c *Contract) RecordFailure(nowAct dominium.ActTime) {
	if c == nil || c.Status != ContractActive {
		return
	}
	c.Status = ContractFailed
	c.FailureAct = nowAct
}

// RecordFulfilled transitions an active contract to FULFILLED.
func (c *Contract) RecordFulfilled(nowAct dominium.ActTime) {
	if c == nil || c.Status != ContractActive {
		return
	}
	c.Status = ContractFulfilled
	c.FailureAct = nowAct
}

// allowedMask returns the party's allowed process mask, or 0 for a
// non-party.
func (c *Contract) allowedMask(agentID uint64) uint32 {
	switch agentID {
	case c.PartyAID:
		return c.AllowedProcessMaskA
	case c.PartyBID:
		return c.AllowedProcessMaskB
	default:
		return 0
	}
}

// CheckPlan verifies every step kind of the agent's plan against each
// active, non-expired contract the agent is party to. The first step
// kind outside a contract's allowed mask fails the check and returns
// the offending contract id.
func (r *ContractRegistry) CheckPlan(agentID uint64, stepKinds []dominium.ProcessKind, nowAct dominium.ActTime) (bool, uint64) {
	if r == nil || agentID == 0 {
		return true, 0
	}
	for i := range r.contracts {
		c := &r.contracts[i]
		if c.Status != ContractActive {
			continue
		}
		if c.ExpiryAct != 0 && c.ExpiryAct <= nowAct {
			continue
		}
		if agentID != c.PartyAID && agentID != c.PartyBID {
			continue
		}
		mask := c.allowedMask(agentID)
		if mask == 0 {
			continue
		}
		for _, kind := range stepKinds {
			if kind == dominium.ProcessNone {
				continue
			}
			if mask&kind.Bit() == 0 {
				return false, c.ContractID
			}
		}
	}
	return true, 0
}
