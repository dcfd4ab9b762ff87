package access_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chwadmin/internal/access"
)

func TestSetHasSingle(t *testing.T) {
	s := access.NewSet("read_admin/roles", "write_admin/roles")

	assert.True(t, access.HasPermission(s, access.One("read_admin/roles")))
	assert.False(t, access.HasPermission(s, access.One("read_admin/users")))
	assert.False(t, access.HasPermission(s, access.One("")))
}

func TestSetHasAllIsConjunction(t *testing.T) {
	s := access.NewSet("a", "b", "c")

	assert.True(t, access.HasPermission(s, access.All("a", "c")))
	assert.False(t, access.HasPermission(s, access.All("a", "z")))
	assert.False(t, access.HasPermission(s, access.All()))
	assert.False(t, access.HasPermission(s, access.Check{}))
}

func TestEmptyProfileDeniesEverything(t *testing.T) {
	e := access.ForProfile(access.Profile{})

	for _, p := range access.Catalog {
		assert.False(t, e.HasPermission(access.One(p)), p)
	}
	assert.Equal(t, access.Denied, e.Decide(access.All(access.ReadBooks)))
}

func TestEffectiveSetIsUnionOfRoles(t *testing.T) {
	p := access.Profile{Roles: []access.Role{
		{Name: "one", Permissions: []access.Permission{"a", "b"}},
		{Name: "two", Permissions: []access.Permission{"b", "c", ""}},
	}}

	assert.Equal(t, []access.Permission{"a", "b", "c"}, p.Effective().Sorted())
}

func TestProfileDocDecode(t *testing.T) {
	raw := `{"roles":[{"permissions":[{"permissionString":"read_admin/roles"}]},{"permissions":[]}]}`

	var doc access.ProfileDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	e := access.ForProfile(doc.ToProfile())
	assert.True(t, e.HasPermission(access.One("read_admin/roles")))
	assert.False(t, e.HasPermission(access.All("read_admin/roles", "write_admin/roles")))

	var nilDoc *access.ProfileDoc
	assert.Empty(t, nilDoc.ToProfile().Roles)
}

func TestTrackerLifecycle(t *testing.T) {
	tr := access.NewTracker()
	e := access.NewEvaluator(tr)
	check := access.One(access.ReadBooks)

	assert.True(t, e.Loading())
	assert.Equal(t, access.Pending, e.Decide(check))
	assert.False(t, e.HasPermission(check))

	tr.Resolve(access.Profile{Roles: []access.Role{{Permissions: []access.Permission{access.ReadBooks}}}})
	assert.False(t, e.Loading())
	assert.Equal(t, access.Granted, e.Decide(check))

	tr.Invalidate()
	assert.Equal(t, access.Pending, e.Decide(check))

	tr.Fail(errors.New("boom"))
	state, err := tr.State()
	assert.Equal(t, access.StateFailed, state)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, access.Denied, e.Decide(check))
}

func TestNilEvaluatorFailsClosed(t *testing.T) {
	var e *access.Evaluator
	assert.False(t, e.Can(access.ReadBooks))
	assert.Empty(t, e.Permissions())
}

func TestStringsCheck(t *testing.T) {
	e := access.ForSet(access.NewSet("x", "y"))
	assert.True(t, e.HasPermission(access.Strings("x", "y")))
	assert.False(t, e.HasPermission(access.Strings()))
}

func TestDefaultRolesUseCatalog(t *testing.T) {
	for role, perms := range access.DefaultRoles {
		for _, p := range perms {
			assert.True(t, access.Known(p), "%s grants unknown %s", role, p)
		}
	}
}
