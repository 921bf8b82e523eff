// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"fmt"

	"github.com/taibuivan/serenity/internal/platform/sec"
)

// Catalog maps each role to an ordered, de-duplicated permission list.
//
// # Concurrency
//
// A Catalog is immutable after construction and safe for concurrent use
// without locking.
type Catalog struct {
	ordered map[sec.Role][]Permission
	sets    map[sec.Role]PermissionSet
}

// NewCatalog validates every permission and builds the catalog.
//
// Duplicates keep their first position. Unknown roles or permissions fail
// the whole catalog, so a typo is caught at startup rather than at request time.
func NewCatalog(grants map[sec.Role][]Permission) (*Catalog, error) {
	catalog := &Catalog{
		ordered: make(map[sec.Role][]Permission, len(grants)),
		sets:    make(map[sec.Role]PermissionSet, len(grants)),
	}

	for role, permissions := range grants {
		if !role.IsKnown() {
			return nil, fmt.Errorf("access: catalog references unknown role %q", role)
		}

		set := make(PermissionSet, len(permissions))
		ordered := make([]Permission, 0, len(permissions))

		for _, permission := range permissions {
			if !permission.IsKnown() {
				return nil, fmt.Errorf("access: role %s grants unknown permission %q", role, permission)
			}
			if set.Has(permission) {
				continue
			}
			set[permission] = struct{}{}
			ordered = append(ordered, permission)
		}

		catalog.ordered[role] = ordered
		catalog.sets[role] = set
	}

	return catalog, nil
}

// MustCatalog is [NewCatalog] for static tables; it panics on error.
func MustCatalog(grants map[sec.Role][]Permission) *Catalog {
	catalog, err := NewCatalog(grants)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Permissions returns a copy of the ordered list granted to role.
// Unknown roles yield an empty list.
func (c *Catalog) Permissions(role sec.Role) []Permission {
	ordered := c.ordered[role]
	out := make([]Permission, len(ordered))
	copy(out, ordered)
	return out
}

// grants returns the shared set for role. Callers must not mutate it.
func (c *Catalog) grants(role sec.Role) PermissionSet {
	return c.sets[role]
}

// # Default Catalog

var studentPermissions = []Permission{
	SettingsView,
	JournalsView, JournalsCreate,
	MoodView, MoodCreate,
	ResourcesView,
	SelfHelpView,
	ArticlesView,
	BadgesView,
}

var adminPermissions = []Permission{
	SettingsView, SettingsUpdate,
	UsersView, UsersCreate, UsersUpdate,
	ArticlesView, ArticlesCreate, ArticlesUpdate,
	ResourcesView, ResourcesCreate, ResourcesUpdate,
	ReportsView,
	BadgesView,
}

// DefaultCatalog returns the built-in role table.
//
// SuperAdmin is a strict superset of Admin, which shares only read access
// with Student.
func DefaultCatalog() *Catalog {
	superAdmin := append([]Permission{}, adminPermissions...)
	superAdmin = append(superAdmin,
		UsersDelete,
		AdminsView, AdminsManage,
		OrganizationsView, OrganizationsManage,
		ArticlesDelete,
		ResourcesDelete,
		PermissionsGrant,
	)

	return MustCatalog(map[sec.Role][]Permission{
		sec.RoleStudent:    studentPermissions,
		sec.RoleAdmin:      adminPermissions,
		sec.RoleSuperAdmin: superAdmin,
	})
}
