package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/service"
	"nyayanet.in/forum/pkg/response"
	"nyayanet.in/forum/pkg/validator"
)

// ReactionHandler groups the toggle endpoints: upvotes, follows, bookmarks.
type ReactionHandler struct {
	upvoteService   service.UpvoteService
	followService   service.FollowService
	bookmarkService service.BookmarkService
}

func NewReactionHandler(upvoteService service.UpvoteService, followService service.FollowService, bookmarkService service.BookmarkService) *ReactionHandler {
	return &ReactionHandler{
		upvoteService:   upvoteService,
		followService:   followService,
		bookmarkService: bookmarkService,
	}
}

func (h *ReactionHandler) ToggleDiscussionUpvote(c *gin.Context) {
	discussionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discussion id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.upvoteService.ToggleDiscussionUpvote(c.Request.Context(), userID, discussionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReactionHandler) ToggleReplyUpvote(c *gin.Context) {
	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.upvoteService.ToggleReplyUpvote(c.Request.Context(), userID, replyID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReactionHandler) ToggleFollow(c *gin.Context) {
	discussionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discussion id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.followService.ToggleFollow(c.Request.Context(), userID, discussionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReactionHandler) ToggleBookmark(c *gin.Context) {
	var req dto.BookmarkToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.bookmarkService.ToggleBookmark(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
