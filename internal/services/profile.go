package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chwadmin/internal/access"
	"chwadmin/internal/events"
	"chwadmin/internal/models"
	"chwadmin/internal/utils/logger"
)

// ProfileService resolves a user's roles into an effective permission set.
// Sets are cached per user when a cache is configured.
type ProfileService struct {
	db     *gorm.DB
	cache  *access.Cache
	logger *logger.Logger
}

// NewProfileService creates the service. cache may be nil.
func NewProfileService(db *gorm.DB, cache *access.Cache) *ProfileService {
	return &ProfileService{
		db:     db,
		cache:  cache,
		logger: logger.New("profile_service"),
	}
}

// Subscribe drops cached sets whenever roles or users change.
func (s *ProfileService) Subscribe() {
	if s.cache == nil {
		return
	}
	events.On(events.RolesChanged, func(interface{}) {
		if err := s.cache.InvalidateAll(context.Background()); err != nil {
			s.logger.Warn("Failed to flush permission cache: %v", err)
		}
	})
	events.On(events.UserChanged, func(data interface{}) {
		userID, _ := data.(string)
		s.invalidate(context.Background(), userID)
	})
}

func (s *ProfileService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	var err error
	if userID == "" {
		err = s.cache.InvalidateAll(ctx)
	} else {
		err = s.cache.Invalidate(ctx, userID)
	}
	if err != nil {
		s.logger.Warn("Failed to invalidate permission cache for %q: %v", userID, err)
	}
}

// User loads an active user with roles and permissions.
func (s *ProfileService) User(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles", "is_deleted = ?", false).
		Preload("Roles.Permissions", "is_deleted = ?", false).
		Where("id = ? AND is_deleted = ? AND active = ?", userID, false, true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	return &user, nil
}

// Profile returns the user's roles in access form.
func (s *ProfileService) Profile(ctx context.Context, userID string) (access.Profile, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return access.Profile{}, err
	}
	return user.Profile(), nil
}

// Effective returns the user's effective permission set.
func (s *ProfileService) Effective(ctx context.Context, userID string) (access.Set, error) {
	if s.cache != nil {
		set, err := s.cache.Get(ctx, userID)
		if err == nil {
			return set, nil
		}
		if !errors.Is(err, access.ErrCacheMiss) {
			s.logger.Warn("Permission cache read failed, falling back to database: %v", err)
		}
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := profile.Effective()

	if s.cache != nil {
		if err := s.cache.Put(ctx, userID, set); err != nil {
			s.logger.Warn("Failed to cache permissions for %s: %v", userID, err)
		}
	}
	return set, nil
}

// uniqueIDs drops blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// rolesByID loads every role in ids, failing with ErrNotFound when any is missing.
func rolesByID(tx *gorm.DB, ids []string) ([]models.Role, error) {
	ids = uniqueIDs(ids)
	roles := []models.Role{}
	if len(ids) == 0 {
		return roles, nil
	}
	if err := tx.Where("id IN ? AND is_deleted = ?", ids, false).Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if len(roles) != len(ids) {
		return nil, fmt.Errorf("%w: one or more roles", ErrNotFound)
	}
	return roles, nil
}

// CreateUser inserts user holding roleIDs. Nothing is written when the email
// is taken or a role does not exist.
func (s *ProfileService) CreateUser(ctx context.Context, user *models.User, roleIDs []string) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&exists).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists > 0 {
			return ErrConflict
		}
		roles, err := rolesByID(tx, roleIDs)
		if err != nil {
			return err
		}
		user.Roles = nil
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if len(roles) == 0 {
			return nil
		}
		return tx.Model(user).Association("Roles").Replace(roles)
	})
	if err != nil {
		return nil, err
	}
	return s.User(ctx, user.ID)
}

// AssignRoles replaces the user's roles.
func (s *ProfileService) AssignRoles(ctx context.Context, userID string, roleIDs []string) (*models.User, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := rolesByID(s.db.WithContext(ctx), roleIDs)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Association("Roles").Replace(roles); err != nil {
		return nil, fmt.Errorf("assign roles: %w", err)
	}
	s.invalidate(ctx, userID)

	return s.User(ctx, userID)
}

// GrantPermissions replaces the permissions of a role.
func (s *ProfileService) GrantPermissions(ctx context.Context, roleID string, perms []access.Permission) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", roleID, false).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	unique := access.NewSet(perms...).Sorted()
	strs := make([]string, len(unique))
	for i, p := range unique {
		strs[i] = string(p)
	}
	var granted []models.Permission
	if len(strs) > 0 {
		if err := s.db.WithContext(ctx).Where("permission_string IN ?", strs).Find(&granted).Error; err != nil {
			return nil, fmt.Errorf("load permissions: %w", err)
		}
		if len(granted) != len(strs) {
			return nil, fmt.Errorf("%w: one or more permissions", ErrNotFound)
		}
	}

	if err := s.db.WithContext(ctx).Model(&role).Association("Permissions").Replace(granted); err != nil {
		return nil, fmt.Errorf("grant permissions: %w", err)
	}
	events.Emit(events.RolesChanged, role.ID)

	role.Permissions = granted
	return &role, nil
}
