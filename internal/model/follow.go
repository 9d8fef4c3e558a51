package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Follow struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_follows_unique,unique,priority:1" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DiscussionID uuid.UUID  `gorm:"type:uuid;not null;index:idx_follows_unique,unique,priority:2" json:"discussion_id"`
	Discussion   Discussion `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Follow) TableName() string {
	return "follows"
}

func (f *Follow) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}
