package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"User", RoleUser, true},
		{"Moderator", RoleModerator, true},
		{"admin", RoleAdmin, true},
		{"SUPERADMIN", RoleSuperAdmin, true},
		{" Admin ", RoleAdmin, true},
		{"", "", false},
		{"root", "", false},
		{"Super Admin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRoleSet_ExactMembership(t *testing.T) {
	set := NewRoleSet(RoleAdmin, RoleSuperAdmin)

	if !set.Contains(RoleAdmin) || !set.Contains(RoleSuperAdmin) {
		t.Fatalf("listed roles must be members")
	}
	if set.Contains(RoleModerator) {
		t.Fatalf("Moderator must not be implied by Admin")
	}
	if set.Contains(RoleUser) {
		t.Fatalf("User must not be implied")
	}
	if set.Contains(Role("admin")) {
		t.Fatalf("non-canonical role must not match")
	}
}

func TestRoleSet_Roles(t *testing.T) {
	got := NewRoleSet(RoleSuperAdmin, RoleModerator).Roles()
	if len(got) != 2 || got[0] != RoleModerator || got[1] != RoleSuperAdmin {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestRole_Outranks(t *testing.T) {
	if !RoleAdmin.Outranks(RoleModerator) {
		t.Errorf("Admin should outrank Moderator")
	}
	if RoleModerator.Outranks(RoleModerator) {
		t.Errorf("a role does not outrank itself")
	}
	if Role("ghost").Outranks(RoleUser) {
		t.Errorf("unknown roles outrank nothing")
	}
}

func TestStaffRoles(t *testing.T) {
	for _, r := range []Role{RoleSuperAdmin, RoleAdmin, RoleModerator} {
		if !StaffRoles.Contains(r) {
			t.Errorf("%s should be staff", r)
		}
	}
	if StaffRoles.Contains(RoleUser) {
		t.Errorf("User is not staff")
	}
}
