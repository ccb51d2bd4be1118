package staff_test

import (
	"testing"

	"atelier/internal/staff"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  staff.Role
		ok    bool
	}{
		{"tailor", staff.RoleTailor, true},
		{"  Supervisor ", staff.RoleSupervisor, true},
		{"CHECKER", staff.RoleChecker, true},
		{"admin", staff.RoleAdmin, true},
		{"manager", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := staff.ParseRole(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		role       staff.Role
		capability staff.Capability
		want       bool
	}{
		{staff.RoleAdmin, staff.CapabilityAssign, true},
		{staff.RoleAdmin, staff.CapabilityApprove, true},
		{staff.RoleAdmin, staff.CapabilityAdvance, true},
		{staff.RoleSupervisor, staff.CapabilityAssign, true},
		{staff.RoleSupervisor, staff.CapabilityApprove, true},
		{staff.RoleSupervisor, staff.CapabilityAdvance, true},
		{staff.RoleChecker, staff.CapabilityAssign, true},
		{staff.RoleChecker, staff.CapabilityApprove, true},
		{staff.RoleChecker, staff.CapabilityAdvance, false},
		{staff.RoleTailor, staff.CapabilityAssign, false},
		{staff.RoleTailor, staff.CapabilityApprove, false},
		{staff.RoleTailor, staff.CapabilityAdvance, false},
	}
	for _, tt := range tests {
		actor := staff.Actor{ID: "S1", Role: tt.role}
		if got := actor.Can(tt.capability); got != tt.want {
			t.Errorf("%s can %s = %v, want %v", tt.role, tt.capability, got, tt.want)
		}
	}
}

func TestUnknownRoleHasNoCapabilities(t *testing.T) {
	actor := staff.Actor{ID: "S1", Role: staff.Role("intern")}
	for _, capability := range []staff.Capability{
		staff.CapabilityAssign, staff.CapabilityApprove, staff.CapabilityAdvance,
	} {
		if actor.Can(capability) {
			t.Errorf("unknown role granted %s", capability)
		}
	}
}
