package models

const (
	RoleUser       = "ROLE_USER"
	RoleOrgMember  = "ROLE_ORG_MEMBER"
	RoleOrgOwner   = "ROLE_ORG_OWNER"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
)

// AllRoles lists every role a user may hold.
var AllRoles = []string{RoleUser, RoleOrgMember, RoleOrgOwner, RoleSuperAdmin}

// RegistrationRoles are the roles a visitor may request when signing up.
var RegistrationRoles = []string{RoleUser, RoleOrgOwner}

func IsKnownRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// EffectiveRoles returns roles with ROLE_USER appended when missing.
// Order is preserved and duplicates are dropped.
func EffectiveRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles)+1)
	out := make([]string, 0, len(roles)+1)
	for _, r := range append(append([]string{}, roles...), RoleUser) {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
