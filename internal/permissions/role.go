package permissions

// Role identifies a user's position in the system. Exactly one role is
// assigned per user at any time; promotion (for example lead to client)
// happens through the admin surface, never inside this package.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleAdmin       Role = "admin"
	RoleTaxPreparer Role = "tax_preparer"
	RoleAffiliate   Role = "affiliate"
	RoleLead        Role = "lead"
	RoleClient      Role = "client"
)

// Roles returns every defined role, broadest first.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleTaxPreparer, RoleAffiliate, RoleLead, RoleClient}
}

// Valid reports whether the role is one of the defined six.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleTaxPreparer, RoleAffiliate, RoleLead, RoleClient:
		return true
	}
	return false
}

// ParseRole converts a stored role string into a Role. The second return
// value is false when the string is not a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
