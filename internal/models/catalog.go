package models

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Facility struct {
	Base
	Name      string `gorm:"not null" json:"name" validate:"required,min=2"`
	Code      string `gorm:"uniqueIndex;not null" json:"code" validate:"required"`
	County    string `json:"county"`
	SubCounty string `json:"subCounty"`
	Active    bool   `gorm:"default:true" json:"active"`
}

type Quiz struct {
	Base
	Title       string         `gorm:"not null" json:"title" validate:"required"`
	Description string         `json:"description"`
	PassMark    int            `gorm:"default:50" json:"passMark" validate:"min=0,max=100"`
	Questions   []QuizQuestion `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty" validate:"dive"`
}

type QuizQuestion struct {
	Base
	QuizID   string         `gorm:"type:uuid;not null;index" json:"quizId"`
	Prompt   string         `gorm:"not null" json:"prompt" validate:"required"`
	Options  datatypes.JSON `gorm:"type:jsonb" json:"options"`
	Answer   int            `json:"answer" validate:"min=0"`
	Position int            `json:"position"`
}

// Book is a stored e-book. Content holds the whole content tree and is
// loaded and saved wholesale.
type Book struct {
	Base
	Title        string         `gorm:"not null" json:"title" validate:"required"`
	Description  string         `json:"description"`
	Content      datatypes.JSON `gorm:"type:jsonb" json:"content,omitempty"`
	Status       PublishStatus  `gorm:"not null;default:'DRAFT'" json:"status" validate:"omitempty,publish_status"`
	PublishedKey string         `json:"publishedKey,omitempty"`
	PublishedAt  *time.Time     `json:"publishedAt,omitempty"`
	UpdatedByID  *string        `gorm:"type:uuid;default:NULL" json:"updatedById,omitempty"`
}

type File struct {
	Base
	Path      string `gorm:"not null" json:"path" validate:"required"`
	UserID    string `gorm:"type:uuid;default:NULL" json:"userId" validate:"omitempty,uuid"`
	User      *User  `json:"user,omitempty"`
	Name      string `gorm:"not null" json:"name" validate:"required"`
	Size      int64  `gorm:"not null" json:"size" validate:"required,min=1"`
	Type      string `gorm:"not null" json:"type" validate:"required"`
	SignedURL string `gorm:"-" json:"signedUrl,omitempty"` // Virtual field
}

func (f *File) AfterFind(tx *gorm.DB) error {
	if generator := fileURLGenerator(); generator != nil {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		url, err := generator.GetSignedURL(ctx, f.Path, time.Hour)
		if err != nil {
			return fmt.Errorf("failed to generate signed URL: %w", err)
		}
		f.SignedURL = url
	}
	return nil
}
