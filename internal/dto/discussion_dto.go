package dto

import "github.com/google/uuid"

type CreateDiscussionRequest struct {
	Title          string   `json:"title" binding:"required,min=5,max=255"`
	Description    string   `json:"description" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	DiscussionType string   `json:"discussion_type"`
	Tags           []string `json:"tags" binding:"max=10"`
}

type UpdateDiscussionRequest struct {
	Title       string   `json:"title" binding:"required,min=5,max=255"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Tags        []string `json:"tags" binding:"max=10"`
}

type ResolveDiscussionRequest struct {
	ReplyID string `json:"reply_id" binding:"required,uuid"`
}

type DiscussionFilter struct {
	Category string `form:"category"`
	Type     string `form:"type"`
	Search   string `form:"search"`
	SortBy   string `form:"sort_by"` // "newest", "popular", "active"
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type DiscussionResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	DiscussionType string          `json:"discussionType"`
	Tags           []string        `json:"tags"`
	Author         *AuthorResponse `json:"author"`

	ReplyCount    int `json:"replyCount"`
	UpvoteCount   int `json:"upvoteCount"`
	SaveCount     int `json:"saveCount"`
	FollowerCount int `json:"followerCount"`
	ViewCount     int `json:"viewCount"`

	IsResolved   bool       `json:"isResolved"`
	BestAnswerID *uuid.UUID `json:"bestAnswerId,omitempty"`

	HasUpvoted  bool `json:"hasUpvoted"`
	IsFollowing bool `json:"isFollowing"`
	IsSaved     bool `json:"isSaved"`

	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
	LastActivityAt string `json:"lastActivityAt"`
}

type PaginatedDiscussionResponse struct {
	Data []DiscussionResponse `json:"data"`
	Meta PaginationMeta       `json:"meta"`
}
