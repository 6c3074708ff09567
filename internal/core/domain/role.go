package domain

import "strings"

// Role is the closed set of privilege tags a user can hold.
type Role string

const (
	RoleUser       Role = "User"
	RoleModerator  Role = "Moderator"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

// roleRank orders roles by privilege. It is only consulted when deciding whether
// a role change is a promotion; access checks never use it.
var roleRank = map[Role]int{
	RoleUser:       0,
	RoleModerator:  1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// AllRoles returns every known role, lowest privilege first.
func AllRoles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Outranks reports whether r carries strictly more privilege than other.
func (r Role) Outranks(other Role) bool {
	a, okA := roleRank[r]
	b, okB := roleRank[other]
	return okA && okB && a > b
}

func (r Role) String() string { return string(r) }

// ParseRole maps a role name to its canonical Role. Matching ignores case so that
// "moderator" in a route and "Moderator" in a stored row resolve the same way.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, r := range AllRoles() {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// RoleSet is an explicit allow-list of roles. Membership is exact: listing Admin
// says nothing about Moderator or SuperAdmin.
type RoleSet map[Role]struct{}

// NewRoleSet builds an allow-list from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is listed.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Roles returns the listed roles in privilege order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles() {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// StaffRoles may moderate content.
var StaffRoles = NewRoleSet(RoleSuperAdmin, RoleAdmin, RoleModerator)
