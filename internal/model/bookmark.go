package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookmarkEntityPost       = "POST"
	BookmarkEntityDiscussion = "DISCUSSION"
	BookmarkEntityAIResult   = "AI_RESULT"
	BookmarkEntityLawSection = "LAW_SECTION"
)

type Bookmark struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_bookmarks_unique,unique,priority:1" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_bookmarks_unique,unique,priority:2" json:"entity_id"`
	EntityType string    `gorm:"size:20;not null;index:idx_bookmarks_unique,unique,priority:3" json:"entity_type"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (b *Bookmark) TableName() string {
	return "bookmarks"
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

func ValidBookmarkEntity(t string) bool {
	switch t {
	case BookmarkEntityPost, BookmarkEntityDiscussion, BookmarkEntityAIResult, BookmarkEntityLawSection:
		return true
	}
	return false
}
