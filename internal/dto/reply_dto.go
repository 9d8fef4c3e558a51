package dto

import "github.com/google/uuid"

type CreateReplyRequest struct {
	ParentReplyID string `json:"parent_reply_id"` // Optional, for nested replies
	Content       string `json:"content" binding:"required"`
}

type UpdateReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

type ReplyFilter struct {
	Sort string `form:"sort"` // "newest" (default) or "popular"
}

// ReplyResponse is the tree node shape the frontend renders. Replies are
// nested up to the display depth cap; deeper levels sit behind HasMore and
// are fetched through the subtree endpoint.
type ReplyResponse struct {
	ID            uuid.UUID       `json:"id"`
	ParentReplyID *uuid.UUID      `json:"parentReplyId,omitempty"`
	Content       string          `json:"content"`
	Author        *AuthorResponse `json:"author"`
	UpvoteCount   int             `json:"upvoteCount"`
	ReplyCount    int             `json:"replyCount"`
	IsEdited      bool            `json:"isEdited"`
	IsDeleted     bool            `json:"isDeleted"`
	IsBestAnswer  bool            `json:"isBestAnswer"`
	HasUpvoted    bool            `json:"hasUpvoted"`
	HasMore       bool            `json:"hasMore"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
	Replies       []*ReplyResponse `json:"replies"`
}

type ReplyTreeResponse struct {
	Data []*ReplyResponse `json:"data"`
}
