package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultReputation = 100

type User struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	DisplayName       string    `gorm:"uniqueIndex;not null" json:"displayName" validate:"required"`
	FirstName         string    `gorm:"not null" json:"firstName" validate:"required"`
	LastName          string    `gorm:"not null" json:"lastName" validate:"required"`
	PasswordHash      string    `gorm:"not null" json:"-"`
	Reputation        int       `gorm:"not null" json:"reputation"`
	IsAdmin           bool      `gorm:"default:false" json:"isAdmin"`
	JoinedCommunities IDList    `gorm:"type:text" json:"joinedCommunities"`
	CreatedDate       time.Time `json:"createdDate"`
	// No DeletedAt for hard delete
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.CreatedDate.IsZero() {
		u.CreatedDate = time.Now()
	}
	return nil
}
