// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package doctrine

// Role binds a default doctrine and minimum credentials to a role id.
type Role struct {
	RoleID                 uint64
	DefaultDoctrineRef     uint64
	AuthorityRequirements  uint32
	CapabilityRequirements uint32
}

// RoleRegistry owns a bounded, id-ordered set of roles.
type RoleRegistry struct {
	roles    []Role
	capacity int
}

// NewRoleRegistry constructs a RoleRegistry with fixed capacity.
func NewRoleRegistry(capacity int) *RoleRegistry {
	return &RoleRegistry{
		roles:    make([]Role, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of registered roles.
func (r *RoleRegistry) Len() int { return len(r.roles) }

// Roles returns the registered roles ascending by id.
func (r *RoleRegistry) Roles() []Role { return r.roles }

func (r *RoleRegistry) findIndex(roleID uint64) (int, bool) {
	for i := range r.roles {
		if r.roles[i].RoleID == roleID {
			return i, true
		}
		if r.roles[i].RoleID > roleID {
			return i, false
		}
	}
	return len(r.roles), false
}

// Find returns the role with the given id, or nil.
func (r *RoleRegistry) Find(roleID uint64) *Role {
	idx, found := r.findIndex(roleID)
	if !found {
		return nil
	}
	return &r.roles[idx]
}

// Register inserts a role in id order.
func (r *RoleRegistry) Register(role Role) error {
	if role.RoleID == 0 {
		return ErrInvalidID
	}
	if len(r.roles) >= r.capacity {
		return ErrRegistryFull
	}
	idx, found := r.findIndex(role.RoleID)
	if found {
		return ErrDuplicateID
	}
	r.roles = append(r.roles, Role{})
	copy(r.roles[idx+1:], r.roles[idx:])
	r.roles[idx] = role
	return nil
}

// RequirementsOK reports whether the given masks are supersets of the
// role's requirements.
func (role *Role) RequirementsOK(authorityMask, capabilityMask uint32) bool {
	if role == nil {
		return false
	}
	if authorityMask&role.AuthorityRequirements != role.AuthorityRequirements {
		return false
	}
	if capabilityMask&role.CapabilityRequirements != role.CapabilityRequirements {
		return false
	}
	return true
}
