package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Legal domains a discussion can be filed under.
const (
	CategoryConstitutional = "CONSTITUTIONAL"
	CategoryCriminal       = "CRIMINAL"
	CategoryCivil          = "CIVIL"
	CategoryCorporate      = "CORPORATE"
	CategoryFamily         = "FAMILY"
	CategoryProperty       = "PROPERTY"
	CategoryTax            = "TAX"
	CategoryLabour         = "LABOUR"
	CategoryIP             = "INTELLECTUAL_PROPERTY"
	CategoryOther          = "OTHER"
)

const (
	DiscussionTypeGeneral      = "GENERAL"
	DiscussionTypeCaseAnalysis = "CASE_ANALYSIS"
	DiscussionTypeLegalQuery   = "LEGAL_QUERY"
	DiscussionTypeOpinionPoll  = "OPINION_POLL"
)

type Discussion struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User           User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	Category       string    `gorm:"size:30;not null;index" json:"category"`
	DiscussionType string    `gorm:"size:20;not null;default:GENERAL" json:"discussion_type"`
	Tags           []string  `gorm:"serializer:json" json:"tags"`

	ReplyCount    int `gorm:"default:0" json:"reply_count"`
	UpvoteCount   int `gorm:"default:0" json:"upvote_count"`
	SaveCount     int `gorm:"default:0" json:"save_count"`
	FollowerCount int `gorm:"default:0" json:"follower_count"`
	ViewCount     int `gorm:"default:0" json:"view_count"`

	IsResolved bool `gorm:"default:false" json:"is_resolved"`
	// Plain column, not an association: a Reply FK here would cycle with
	// Reply.DiscussionID at migration time.
	BestAnswerID *uuid.UUID `gorm:"type:uuid" json:"best_answer_id,omitempty"`

	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (d *Discussion) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	if d.LastActivityAt.IsZero() {
		d.LastActivityAt = time.Now()
	}
	return
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryConstitutional, CategoryCriminal, CategoryCivil, CategoryCorporate,
		CategoryFamily, CategoryProperty, CategoryTax, CategoryLabour, CategoryIP, CategoryOther:
		return true
	}
	return false
}

func ValidDiscussionType(t string) bool {
	switch t {
	case DiscussionTypeGeneral, DiscussionTypeCaseAnalysis, DiscussionTypeLegalQuery, DiscussionTypeOpinionPoll:
		return true
	}
	return false
}
