// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package population

import (
	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/refusal"
)

// MaxHouseholdMembers bounds a household's member list.
const MaxHouseholdMembers = 32

// Household is a bounded-capacity residence group. The member list is
// kept strictly ascending by person id.
type Household struct {
	HouseholdID     uint64
	ResidenceRef    uint64
	ResourcePoolRef uint64
	Members         [MaxHouseholdMembers]uint64
	MemberCount     uint32
	NextDueTick     dominium.ActTime
}

// HouseholdRegistry owns a bounded, id-ordered set of households.
type HouseholdRegistry struct {
	households []Household
	capacity   int
}

// NewHouseholdRegistry constructs a HouseholdRegistry with fixed
// capacity.
func NewHouseholdRegistry(capacity int) *HouseholdRegistry {
	return &HouseholdRegistry{
		households: make([]Household, 0, capacity),
		capacity:   capacity,
	}
}

// Len returns the number of registered households.
func (r *HouseholdRegistry) Len() int { return len(r.households) }

// Households returns the registered households ascending by id.
func (r *HouseholdRegistry) Households() []Household { return r.households }

func (r *HouseholdRegistry) findIndex(householdID uint64) (int, bool) {
	for i := range r.households {
		if r.households[i].HouseholdID == householdID {
			return i, true
		}
		if r.households[i].HouseholdID > householdID {
			return i, false
		}
	}
	return len(r.households), false
}

// Find returns the household with the given id, or nil.
func (r *HouseholdRegistry) Find(householdID uint64) *Household {
	idx, found := r.findIndex(householdID)
	if !found {
		return nil
	}
	return &r.households[idx]
}

// Register inserts an empty household in id order.
func (r *HouseholdRegistry) Register(householdID, residenceRef, resourcePoolRef uint64) error {
	if len(r.households) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(householdID)
	if found {
		return ErrDuplicateID
	}
	r.households = append(r.households, Household{})
	copy(r.households[idx+1:], r.households[idx:])
	r.households[idx] = Household{
		HouseholdID:     householdID,
		ResidenceRef:    residenceRef,
		ResourcePoolRef: resourcePoolRef,
		NextDueTick:     dominium.ActTimeMax,
	}
	return nil
}

// AddMember inserts a person in ascending order. Adding an existing
// member is a no-op; adding beyond capacity refuses HouseholdTooLarge
// without mutating.
func (r *HouseholdRegistry) AddMember(householdID, personID uint64) refusal.PopulationCode {
	household := r.Find(householdID)
	if household == nil {
		return refusal.CohortNotFound
	}
	i := uint32(0)
	for ; i < household.MemberCount; i++ {
		if household.Members[i] == personID {
			return refusal.PopNone
		}
		if household.Members[i] > personID {
			break
		}
	}
	if household.MemberCount >= MaxHouseholdMembers {
		return refusal.HouseholdTooLarge
	}
	for j := household.MemberCount; j > i; j-- {
		household.Members[j] = household.Members[j-1]
	}
	household.Members[i] = personID
	household.MemberCount++
	return refusal.PopNone
}

// RemoveMember deletes a person from the member list, compacting it.
// Reports whether the person was present.
func (r *HouseholdRegistry) RemoveMember(householdID, personID uint64) bool {
	household := r.Find(householdID)
	if household == nil {
		return false
	}
	for i := uint32(0); i < household.MemberCount; i++ {
		if household.Members[i] != personID {
			continue
		}
		for j := i + 1; j < household.MemberCount; j++ {
			household.Members[j-1] = household.Members[j]
		}
		household.Members[household.MemberCount-1] = 0
		household.MemberCount--
		return true
	}
	return false
}

// HasMember reports whether the person is in the household, relying
// on the ascending member order to break early.
func (h *Household) HasMember(personID uint64) bool {
	if h == nil {
		return false
	}
	for i := uint32(0); i < h.MemberCount; i++ {
		if h.Members[i] == personID {
			return true
		}
		if h.Members[i] > personID {
			return false
		}
	}
	return false
}
