package authz

const (
	RoleAdmin            = "ADMIN"
	RoleStudent          = "STUDENT"
	RoleTeachingStaff    = "TEACHING_STAFF"
	RoleNonTeachingStaff = "NON_TEACHING_STAFF"
)

// IsStaff reports whether the role requires the OTP step on password login.
func IsStaff(role string) bool {
	return role == RoleAdmin
}

func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStudent, RoleTeachingStaff, RoleNonTeachingStaff:
		return true
	}
	return false
}

// ProfileRoles are the roles that carry a personnel profile.
func ProfileRoles() []string {
	return []string{RoleStudent, RoleTeachingStaff, RoleNonTeachingStaff}
}
