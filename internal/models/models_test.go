package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chwadmin/internal/access"
)

func TestUserProfileUnionsRoles(t *testing.T) {
	u := &User{
		Base:  Base{ID: "u1"},
		Email: "chw@example.org",
		Roles: []Role{
			{Name: "viewer", Permissions: []Permission{{PermissionString: "read_admin/books"}}},
			{Name: "editor", Permissions: []Permission{{PermissionString: "write_admin/books"}, {PermissionString: "read_admin/books"}}},
		},
	}

	p := u.Profile()
	assert.Equal(t, "u1", p.UserID)
	assert.Len(t, p.Roles, 2)

	e := access.ForProfile(p)
	assert.True(t, e.Can(access.ReadBooks, access.WriteBooks))
	assert.False(t, e.Can(access.PublishBooks))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "read users", describe(access.ReadUsers))
	assert.Equal(t, "Open the admin panel", describe(access.ReadPanel))
}

func TestIsValidPublishStatus(t *testing.T) {
	assert.True(t, IsValidPublishStatus(PublishStatusQueued))
	assert.False(t, IsValidPublishStatus("ARCHIVED"))
}
