package auth

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{input: "super_admin", want: RoleSuperAdmin},
		{input: "university_admin", want: RoleUniversityAdmin},
		{input: "student", want: RoleStudent},
		{input: "", want: RoleStudent},
		{input: "root", want: RoleStudent},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.input); got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRoleStringRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleStudent, RoleUniversityAdmin, RoleSuperAdmin} {
		if got := ParseRole(r.String()); got != r {
			t.Errorf("ParseRole(%q) = %v, want %v", r.String(), got, r)
		}
	}
}

func TestAtLeast(t *testing.T) {
	if !RoleSuperAdmin.AtLeast(RoleUniversityAdmin) || !RoleUniversityAdmin.AtLeast(RoleStudent) {
		t.Error("role ladder is not ordered")
	}
	if RoleStudent.AtLeast(RoleUniversityAdmin) {
		t.Error("student should not reach university admin level")
	}
	if !RoleStudent.AtLeast(RoleStudent) {
		t.Error("AtLeast should be reflexive")
	}
}

func TestCanManageTenant(t *testing.T) {
	tests := []struct {
		name         string
		actor        Actor
		universityID int64
		want         bool
	}{
		{name: "super_admin_any", actor: Actor{Role: RoleSuperAdmin}, universityID: 7, want: true},
		{name: "super_admin_zero", actor: Actor{Role: RoleSuperAdmin}, universityID: 0, want: true},
		{name: "uni_admin_own", actor: Actor{Role: RoleUniversityAdmin, UniversityID: 7}, universityID: 7, want: true},
		{name: "uni_admin_other", actor: Actor{Role: RoleUniversityAdmin, UniversityID: 7}, universityID: 8, want: false},
		{name: "uni_admin_zero", actor: Actor{Role: RoleUniversityAdmin}, universityID: 0, want: false},
		{name: "student", actor: Actor{Role: RoleStudent, UniversityID: 7}, universityID: 7, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.CanManageTenant(tt.universityID); got != tt.want {
				t.Errorf("CanManageTenant(%d) = %v, want %v", tt.universityID, got, tt.want)
			}
		})
	}
}
