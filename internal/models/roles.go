package models

import "chwadmin/internal/access"

// Permission is one catalog entry, referenced by its permission string.
type Permission struct {
	Base
	PermissionString string `gorm:"uniqueIndex;not null" json:"permissionString" validate:"required"`
	Description      string `json:"description,omitempty"`
}

type Role struct {
	Base
	Name        string       `gorm:"uniqueIndex;not null" json:"name" validate:"required,min=2"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_roles;" json:"users,omitempty"`
}

// AccessRole converts the role into the access model.
func (r Role) AccessRole() access.Role {
	ar := access.Role{Name: r.Name, Permissions: make([]access.Permission, 0, len(r.Permissions))}
	for _, p := range r.Permissions {
		ar.Permissions = append(ar.Permissions, access.Permission(p.PermissionString))
	}
	return ar
}
