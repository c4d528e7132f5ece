// Package auth defines the role hierarchy shared by the administrative
// surfaces. Roles form an ordered ladder rather than an ad-hoc integer map:
// student < university admin < super admin.
package auth

// Role is an ordered privilege level.
type Role int

const (
	RoleStudent Role = iota
	RoleUniversityAdmin
	RoleSuperAdmin
)

// ParseRole maps a stored role label to its Role. Unknown labels resolve to
// RoleStudent, the least privileged level.
func ParseRole(s string) Role {
	switch s {
	case "super_admin":
		return RoleSuperAdmin
	case "university_admin":
		return RoleUniversityAdmin
	default:
		return RoleStudent
	}
}

func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "super_admin"
	case RoleUniversityAdmin:
		return "university_admin"
	default:
		return "student"
	}
}

// AtLeast reports whether r carries at least the privileges of other.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// Actor identifies the user performing an administrative operation.
// UniversityID is zero for actors not bound to a single university.
type Actor struct {
	UserID       int64
	Role         Role
	UniversityID int64
}

// CanManageTenant reports whether the actor may create or modify content
// belonging to the given university. University admins manage only their
// own university; super admins manage any.
func (a Actor) CanManageTenant(universityID int64) bool {
	if a.Role.AtLeast(RoleSuperAdmin) {
		return true
	}
	return a.Role.AtLeast(RoleUniversityAdmin) && a.UniversityID == universityID && universityID != 0
}
