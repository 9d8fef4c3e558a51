package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upvote targets exactly one entity; the (type, id) pair makes the
// mutual exclusivity structural instead of a pair of nullable columns.
const (
	UpvoteTargetDiscussion = "discussion"
	UpvoteTargetReply      = "reply"
)

type Upvote struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_upvotes_unique,unique,priority:1" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;index:idx_upvotes_unique,unique,priority:2;index:idx_upvotes_lookup,priority:1" json:"target_id"`
	TargetType string    `gorm:"size:20;not null;index:idx_upvotes_unique,unique,priority:3;index:idx_upvotes_lookup,priority:2" json:"target_type"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *Upvote) TableName() string {
	return "upvotes"
}

func (u *Upvote) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}
