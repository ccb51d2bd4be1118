// Package staff models the acting identity attached to every mutating
// workflow operation. The engine does not authenticate; callers supply an
// Actor and the engine records it and checks role capabilities.
package staff

import "strings"

// Role identifies a staff member's position in the shop.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleChecker    Role = "checker"
	RoleTailor     Role = "tailor"
)

var allRoles = []Role{RoleAdmin, RoleSupervisor, RoleChecker, RoleTailor}

// ParseRole converts a string into a known Role.
func ParseRole(value string) (Role, bool) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	for _, role := range allRoles {
		if role == normalized {
			return role, true
		}
	}
	return "", false
}

// Actor is the caller-supplied identity recorded on audit entries.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// Capability names a restricted workflow action.
type Capability string

const (
	CapabilityAssign  Capability = "assign"
	CapabilityApprove Capability = "approve"
	CapabilityAdvance Capability = "advance"
)

var capabilityRoles = map[Capability]map[Role]struct{}{
	CapabilityAssign: {
		RoleAdmin:      {},
		RoleSupervisor: {},
		RoleChecker:    {},
	},
	CapabilityApprove: {
		RoleAdmin:      {},
		RoleSupervisor: {},
		RoleChecker:    {},
	},
	CapabilityAdvance: {
		RoleAdmin:      {},
		RoleSupervisor: {},
	},
}

// Can reports whether the actor's role grants the capability.
func (a Actor) Can(capability Capability) bool {
	roles, ok := capabilityRoles[capability]
	if !ok {
		return false
	}
	_, ok = roles[a.Role]
	return ok
}
