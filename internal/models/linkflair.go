package models

import "gorm.io/gorm"

type LinkFlair struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	Content string `gorm:"size:30;not null" json:"content" validate:"required,max=30"`
}

func (f *LinkFlair) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewID()
	}
	return nil
}
