package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Community 社区，Members[0] 按约定为创建者
type Community struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;not null;index" json:"name" validate:"required,max=100"`
	Description string    `gorm:"size:500;not null" json:"description" validate:"required,max=500"`
	PostIDs     IDList    `gorm:"column:post_ids;type:text" json:"postIDs"`
	StartDate   time.Time `json:"startDate"`
	Members     IDList    `gorm:"type:text" json:"members"`
}

func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.StartDate.IsZero() {
		c.StartDate = time.Now()
	}
	return nil
}

// Creator returns the conventional creator entry, or "" for an empty member list.
func (c *Community) Creator() string {
	if len(c.Members) == 0 {
		return ""
	}
	return c.Members[0]
}

// MarshalJSON adds the derived memberCount field.
func (c Community) MarshalJSON() ([]byte, error) {
	type alias Community
	return json.Marshal(struct {
		alias
		MemberCount int `json:"memberCount"`
	}{alias(c), len(c.Members)})
}
