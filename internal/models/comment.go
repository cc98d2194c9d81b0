package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Content       string    `gorm:"size:500;not null" json:"content" validate:"required,max=500"`
	CommentIDs    IDList    `gorm:"column:comment_ids;type:text" json:"commentIDs"` // direct replies
	CommentedBy   string    `gorm:"not null;index" json:"commentedBy" validate:"required"`
	CommentedDate time.Time `json:"commentedDate"`
	PostID        *string   `gorm:"column:post_id;size:36;index" json:"postID"`   // may be unset on nested replies
	ParentID      *string   `gorm:"column:parent_id;size:36;index" json:"parentID"` // Nullable for top-level comments
	Votes         int       `gorm:"default:0" json:"votes"`
	UpvotedBy     IDList    `gorm:"type:text" json:"upvotedBy"`
	DownvotedBy   IDList    `gorm:"type:text" json:"downvotedBy"`

	ContentHTML string `gorm:"-" json:"contentHTML,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.CommentedDate.IsZero() {
		c.CommentedDate = time.Now()
	}
	return nil
}
