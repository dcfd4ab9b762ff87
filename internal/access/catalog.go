package access

// Permission catalog.
const (
	ReadUsers       Permission = "read_admin/users"
	WriteUsers      Permission = "write_admin/users"
	ReadRoles       Permission = "read_admin/roles"
	WriteRoles      Permission = "write_admin/roles"
	ReadPermissions Permission = "read_admin/permissions"
	ReadFacilities  Permission = "read_admin/facilities"
	WriteFacilities Permission = "write_admin/facilities"
	ReadQuizzes     Permission = "read_admin/quizzes"
	WriteQuizzes    Permission = "write_admin/quizzes"
	ReadBooks       Permission = "read_admin/books"
	WriteBooks      Permission = "write_admin/books"
	PublishBooks    Permission = "publish_admin/books"
	ReadFiles       Permission = "read_admin/files"
	WriteFiles      Permission = "write_admin/files"
	ReadPanel       Permission = "read_admin/panel"
)

// Catalog lists every permission known to the system.
var Catalog = []Permission{
	ReadUsers, WriteUsers,
	ReadRoles, WriteRoles,
	ReadPermissions,
	ReadFacilities, WriteFacilities,
	ReadQuizzes, WriteQuizzes,
	ReadBooks, WriteBooks, PublishBooks,
	ReadFiles, WriteFiles,
	ReadPanel,
}

// Default role names.
const (
	RoleSuperAdmin    = "super_admin"
	RoleContentEditor = "content_editor"
	RoleViewer        = "viewer"
)

// DefaultRoles maps each built-in role to its permissions.
var DefaultRoles = map[string][]Permission{
	RoleSuperAdmin: Catalog,
	RoleContentEditor: {
		ReadBooks, WriteBooks, PublishBooks,
		ReadQuizzes, WriteQuizzes,
		ReadFiles, WriteFiles,
	},
	RoleViewer: {
		ReadUsers, ReadRoles, ReadPermissions, ReadFacilities,
		ReadQuizzes, ReadBooks, ReadFiles,
	},
}

// Known reports whether p is in the catalog.
func Known(p Permission) bool {
	for _, c := range Catalog {
		if c == p {
			return true
		}
	}
	return false
}
