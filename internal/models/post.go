package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:100;not null;index" json:"title" validate:"required,max=100"`
	Content     string    `gorm:"type:text;not null" json:"content" validate:"required"`
	LinkFlairID *string   `gorm:"column:link_flair_id;size:36" json:"linkFlairID,omitempty"` // Optional
	PostedBy    string    `gorm:"not null;index" json:"postedBy" validate:"required"` // display name, not a foreign key
	PostedDate  time.Time `gorm:"index" json:"postedDate"`
	CommentIDs  IDList    `gorm:"column:comment_ids;type:text" json:"commentIDs"`
	Views       int       `gorm:"default:0" json:"views"` // 浏览/点击量
	Votes       int       `gorm:"default:0" json:"votes"`
	UpvotedBy   IDList    `gorm:"type:text" json:"upvotedBy"`
	DownvotedBy IDList    `gorm:"type:text" json:"downvotedBy"`

	// 非数据库字段，用于查询时填充
	CommentCount int    `gorm:"-" json:"commentCount"`
	ContentHTML  string `gorm:"-" json:"contentHTML,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.PostedDate.IsZero() {
		p.PostedDate = time.Now()
	}
	return nil
}
