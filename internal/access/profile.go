package access

// ProfileDoc is the upstream profile document:
//
//	{ "roles": [ { "name": "...", "permissions": [ { "permissionString": "..." } ] } ] }
type ProfileDoc struct {
	UserID string    `json:"userId,omitempty"`
	Email  string    `json:"email,omitempty"`
	Roles  []RoleDoc `json:"roles"`
}

type RoleDoc struct {
	Name        string          `json:"name,omitempty"`
	Permissions []PermissionDoc `json:"permissions"`
}

type PermissionDoc struct {
	PermissionString string `json:"permissionString"`
}

// Profile is the decoded form of a ProfileDoc.
type Profile struct {
	UserID string
	Email  string
	Roles  []Role
}

// ToProfile flattens the wire document. A nil document is a profile with no roles.
func (d *ProfileDoc) ToProfile() Profile {
	if d == nil {
		return Profile{}
	}
	p := Profile{UserID: d.UserID, Email: d.Email, Roles: make([]Role, 0, len(d.Roles))}
	for _, rd := range d.Roles {
		r := Role{Name: rd.Name, Permissions: make([]Permission, 0, len(rd.Permissions))}
		for _, pd := range rd.Permissions {
			r.Permissions = append(r.Permissions, Permission(pd.PermissionString))
		}
		p.Roles = append(p.Roles, r)
	}
	return p
}

// Doc is the inverse of ToProfile.
func (p Profile) Doc() ProfileDoc {
	d := ProfileDoc{UserID: p.UserID, Email: p.Email, Roles: make([]RoleDoc, 0, len(p.Roles))}
	for _, r := range p.Roles {
		rd := RoleDoc{Name: r.Name, Permissions: make([]PermissionDoc, 0, len(r.Permissions))}
		for _, perm := range r.Permissions {
			rd.Permissions = append(rd.Permissions, PermissionDoc{PermissionString: string(perm)})
		}
		d.Roles = append(d.Roles, rd)
	}
	return d
}

// Effective returns the union of the profile's role permissions.
func (p Profile) Effective() Set {
	return SetFromRoles(p.Roles)
}
