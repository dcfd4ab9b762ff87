package models

import (
	"chwadmin/internal/events"

	"gorm.io/gorm"
)

// Role and user changes alter effective permission sets; the access cache
// listens for these.

func (r *Role) AfterSave(tx *gorm.DB) error {
	events.Emit(events.RolesChanged, r.ID)
	return nil
}

func (r *Role) AfterDelete(tx *gorm.DB) error {
	events.Emit(events.RolesChanged, r.ID)
	return nil
}

func (u *User) AfterSave(tx *gorm.DB) error {
	events.Emit(events.UserChanged, u.ID)
	return nil
}
