// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package doctrine

import "github.com/luxfi/dominium"

// AuthorityGrant extends a grantee's authority until expiry or
// revocation.
type AuthorityGrant struct {
	GrantID       uint64
	GranterID     uint64
	GranteeID     uint64
	AuthorityMask uint32
	ExpiryAct     dominium.ActTime
	Revoked       bool
	ProvenanceID  uint64
}

// AuthorityRegistry owns a bounded, id-ordered set of grants.
type AuthorityRegistry struct {
	grants   []AuthorityGrant
	capacity int
}

// NewAuthorityRegistry constructs an AuthorityRegistry with fixed
// capacity.
func NewAuthorityRegistry(capacity int) *AuthorityRegistry {
	return &AuthorityRegistry{
		grants:   make([]AuthorityGrant, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of registered grants.
func (r *AuthorityRegistry) Len() int { return len(r.grants) }

// Grants returns the registered grants ascending by id.
func (r *AuthorityRegistry) Grants() []AuthorityGrant { return r.grants }

func (r *AuthorityRegistry) findIndex(grantID uint64) (int, bool) {
	for i := range r.grants {
		if r.grants[i].GrantID == grantID {
			return i, true
		}
		if r.grants[i].GrantID > grantID {
			return i, false
		}
	}
	return len(r.grants), false
}

// Find returns the grant with the given id, or nil.
func (r *AuthorityRegistry) Find(grantID uint64) *AuthorityGrant {
	idx, found := r.findIndex(grantID)
	if !found {
		return nil
	}
	return &r.grants[idx]
}

// Register inserts a grant in id order, defaulting its provenance id
// to the grant id.
func (r *AuthorityRegistry) Register(grant AuthorityGrant) error {
	if grant.GrantID == 0 || grant.GranteeID == 0 {
		return ErrInvalidID
	}
	if len(r.grants) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(grant.GrantID)
	if found {
		return ErrDuplicateID
	}
	grant.Revoked = false
	if grant.ProvenanceID == 0 {
		grant.ProvenanceID = grant.GrantID
	}
	r.grants = append(r.grants, AuthorityGrant{})
	copy(r.grants[idx+1:], r.grants[idx:])
	r.grants[idx] = grant
	return nil
}

// Revoke marks a grant revoked.
func (r *AuthorityRegistry) Revoke(grantID uint64) error {
	grant := r.Find(grantID)
	if grant == nil {
		return ErrNotFound
	}
	grant.Revoked = true
	return nil
}

// EffectiveMask unions the base mask with every non-revoked,
// non-expired grant naming the grantee.
func (r *AuthorityRegistry) EffectiveMask(granteeID uint64, baseMask uint32, nowAct dominium.ActTime) uint32 {
	mask := baseMask
	if r == nil || granteeID == 0 {
		return mask
	}
	for i := range r.grants {
		grant := &r.grants[i]
		if grant.GranteeID != granteeID || grant.Revoked {
			continue
		}
		if grant.ExpiryAct != 0 && grant.ExpiryAct <= nowAct {
			continue
		}
		mask |= grant.AuthorityMask
	}
	return mask
}
