package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reply struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DiscussionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"discussion_id"`
	Discussion   Discussion `gorm:"constraint:OnDelete:CASCADE" json:"discussion,omitempty"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	// Self reference forming the reply tree; nil for root replies
	ParentReplyID *uuid.UUID `gorm:"type:uuid;index" json:"parent_reply_id,omitempty"`
	Parent        *Reply     `gorm:"foreignKey:ParentReplyID;constraint:OnDelete:CASCADE" json:"parent,omitempty"`
	Content       string     `gorm:"type:text;not null" json:"content"`

	UpvoteCount int `gorm:"default:0" json:"upvote_count"`
	// Direct children only, not the whole subtree
	ReplyCount int `gorm:"default:0" json:"reply_count"`

	IsEdited  bool `gorm:"default:false" json:"is_edited"`
	IsDeleted bool `gorm:"default:false" json:"is_deleted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Reply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
