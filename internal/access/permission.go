package access

import "sort"

// Permission is an opaque capability identifier such as "read_admin/roles".
type Permission string

// Role is a named bundle of permissions.
type Role struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Set is the effective permission set of a user: the union of the
// permissions of every role assigned to them.
type Set map[Permission]struct{}

// NewSet builds a set from the given permissions. Empty identifiers are skipped.
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		s[p] = struct{}{}
	}
	return s
}

// SetFromRoles unions the permissions of roles.
func SetFromRoles(roles []Role) Set {
	s := make(Set)
	for _, r := range roles {
		for _, p := range r.Permissions {
			if p == "" {
				continue
			}
			s[p] = struct{}{}
		}
	}
	return s
}

// Has reports whether p is in the set.
func (s Set) Has(p Permission) bool {
	if p == "" {
		return false
	}
	_, ok := s[p]
	return ok
}

// HasAll reports whether every permission in ps is in the set.
// An empty list is never satisfied.
func (s Set) HasAll(ps []Permission) bool {
	if len(ps) == 0 {
		return false
	}
	for _, p := range ps {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Check is a permission requirement: either a single permission or a list
// that must be held in full. The zero Check is never satisfied.
type Check struct {
	single Permission
	all    []Permission
	isList bool
}

// One requires a single permission.
func One(p Permission) Check {
	return Check{single: p}
}

// All requires every listed permission.
func All(ps ...Permission) Check {
	return Check{all: ps, isList: true}
}

// Strings converts raw identifiers into an All check.
func Strings(ids ...string) Check {
	ps := make([]Permission, len(ids))
	for i, id := range ids {
		ps[i] = Permission(id)
	}
	return All(ps...)
}

// Empty reports whether the check carries no requirement at all.
func (c Check) Empty() bool {
	if c.isList {
		return len(c.all) == 0
	}
	return c.single == ""
}

// HasPermission evaluates check against s. Empty checks fail closed.
func HasPermission(s Set, check Check) bool {
	if check.Empty() {
		return false
	}
	if check.isList {
		return s.HasAll(check.all)
	}
	return s.Has(check.single)
}
