package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`  // User who receives the notification
	ActorID    uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`       // User who triggered the notification
	EntityID   uuid.UUID `gorm:"type:uuid;not null" json:"entity_id"`      // ID of the Discussion or Reply
	EntityType string    `gorm:"size:50;not null" json:"entity_type"`      // 'discussion' or 'reply'
	Type       string    `gorm:"size:50;not null" json:"type"`             // 'reply_discussion', 'reply_reply', 'upvote', 'best_answer', 'followed_activity'
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Pointers to avoid recursion if User ever holds Notifications
	User  *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
