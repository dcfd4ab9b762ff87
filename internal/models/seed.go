package models

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chwadmin/internal/access"
	"chwadmin/internal/config"
	"chwadmin/internal/utils"
	console "chwadmin/internal/utils/logger"
)

var log = console.New("SEEDER")

var permissionDescriptions = map[access.Permission]string{
	access.ReadPanel:    "Open the admin panel",
	access.PublishBooks: "Render and publish e-books",
}

func describe(p access.Permission) string {
	if d, ok := permissionDescriptions[p]; ok {
		return d
	}
	verb, resource, _ := strings.Cut(string(p), "/")
	return fmt.Sprintf("%s %s", strings.TrimSuffix(verb, "_admin"), resource)
}

// SeedPermissions creates the permission catalog and the built-in roles.
// Existing roles get their permission list reset to the built-in one.
func SeedPermissions(db *gorm.DB) error {
	byString := make(map[access.Permission]Permission, len(access.Catalog))
	for _, p := range access.Catalog {
		perm := Permission{PermissionString: string(p), Description: describe(p)}
		if err := db.Where(Permission{PermissionString: string(p)}).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("failed to create permission %s: %w", p, err)
		}
		byString[p] = perm
	}

	for name, perms := range access.DefaultRoles {
		log.Info("Seeding role: %s (%d permissions)", name, len(perms))

		role := Role{Name: name}
		if err := db.Where(Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to create role %s: %w", name, err)
		}

		granted := make([]Permission, 0, len(perms))
		for _, p := range perms {
			perm, ok := byString[p]
			if !ok {
				return fmt.Errorf("role %s grants unknown permission %s", name, p)
			}
			granted = append(granted, perm)
		}
		if err := db.Model(&role).Association("Permissions").Replace(granted); err != nil {
			return fmt.Errorf("failed to assign permissions to %s: %w", name, err)
		}
	}

	return nil
}

// CreateSuperAdminFromEnv creates the first super admin when none exists.
func CreateSuperAdminFromEnv(db *gorm.DB, cfg *config.Config) error {
	var role Role
	if err := db.Where("name = ?", access.RoleSuperAdmin).First(&role).Error; err != nil {
		return fmt.Errorf("super admin role missing, seed permissions first: %w", err)
	}

	count := db.Model(&role).Association("Users").Count()
	log.Info("Super admin count: %d", count)
	if count > 0 {
		return nil
	}

	if cfg.Admin.Email == "" {
		return fmt.Errorf("SUPERADMIN_EMAIL not set")
	}
	if cfg.Admin.Password == "" {
		return fmt.Errorf("SUPERADMIN_PASSWORD not set")
	}
	if cfg.Admin.Name == "" {
		return fmt.Errorf("SUPERADMIN_NAME not set")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		FirstName: cfg.Admin.Name,
		Email:     utils.NormalizeEmail(cfg.Admin.Email),
		Password:  string(hashedPassword),
		Active:    true,
		Roles:     []Role{role},
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create superadmin user: %w", err)
	}

	return nil
}
