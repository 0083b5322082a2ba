package domain

// Role defines a fixed category governing which permissions an identity holds.
type Role string

const (
	RoleAdministrator  Role = "Administrator"
	RoleProductManager Role = "ProductManager"
	RoleCustomer       Role = "Customer"
)

// Permission defines a named capability checked independently of role display.
type Permission string

const (
	PermissionRead           Permission = "read"
	PermissionWrite          Permission = "write"
	PermissionDelete         Permission = "delete"
	PermissionManageUsers    Permission = "manage_users"
	PermissionManageRoles    Permission = "manage_roles"
	PermissionManageProducts Permission = "manage_products"
	PermissionViewProducts   Permission = "view_products"
)

// rolePermissions is the static role→permission table. Unknown roles resolve to nothing.
var rolePermissions = map[Role][]Permission{
	RoleAdministrator:  {PermissionRead, PermissionWrite, PermissionDelete, PermissionManageUsers, PermissionManageRoles},
	RoleProductManager: {PermissionRead, PermissionWrite, PermissionManageProducts},
	RoleCustomer:       {PermissionRead, PermissionViewProducts},
}

// ValidRole reports whether the role belongs to the closed set.
func ValidRole(r Role) bool {
	_, ok := rolePermissions[r]
	return ok
}

// ParseRole normalises textual input into a member of the closed role set.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleAdministrator, RoleProductManager, RoleCustomer:
		return Role(value), true
	}
	return "", false
}

// PermissionsForRole returns the permission set for a role. Unknown roles yield an empty set.
func PermissionsForRole(r Role) []Permission {
	perms, ok := rolePermissions[r]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleHasPermission reports whether the permission is literally present in the
// role's set. Unknown roles never grant anything.
func RoleHasPermission(r Role, p Permission) bool {
	for _, candidate := range rolePermissions[r] {
		if candidate == p {
			return true
		}
	}
	return false
}
