package models

import (
	"time"

	"chwadmin/internal/access"
)

type User struct {
	Base
	Email      string    `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Password   string    `gorm:"not null" json:"-"`
	FirstName  string    `json:"firstName" validate:"required"`
	LastName   string    `json:"lastName"`
	Phone      string    `json:"phone,omitempty" validate:"omitempty,e164"`
	FacilityID *string   `gorm:"type:uuid;default:NULL" json:"facilityId,omitempty" validate:"omitempty,uuid"`
	Facility   *Facility `json:"facility,omitempty"`
	Roles      []Role    `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	Active     bool      `gorm:"default:true" json:"active"`
}

// Profile converts the user's loaded roles into the access model. Roles and
// their permissions must be preloaded.
func (u *User) Profile() access.Profile {
	p := access.Profile{UserID: u.ID, Email: u.Email, Roles: make([]access.Role, 0, len(u.Roles))}
	for _, r := range u.Roles {
		p.Roles = append(p.Roles, r.AccessRole())
	}
	return p
}

// AuthSession records an issued token pair; a token is only honoured while its
// session row exists.
type AuthSession struct {
	Base
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	User      *User     `json:"user,omitempty"`
	Token     string    `gorm:"not null" json:"-"`
	Refresh   string    `gorm:"not null" json:"-"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
}
