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

type DiscussionHandler struct {
	service service.DiscussionService
}

func NewDiscussionHandler(service service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{service: service}
}

func (h *DiscussionHandler) CreateDiscussion(c *gin.Context) {
	var req dto.CreateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	discussion, err := h.service.CreateDiscussion(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, discussion)
}

func (h *DiscussionHandler) GetDiscussion(c *gin.Context) {
	discussionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discussion id"})
		return
	}

	var userID *uuid.UUID
	if id, err := response.GetUserID(c); err == nil {
		userID = &id
	}

	discussion, err := h.service.GetDiscussion(c.Request.Context(), userID, discussionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, discussion)
}

func (h *DiscussionHandler) GetAllDiscussions(c *gin.Context) {
	var filter dto.DiscussionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	discussions, err := h.service.GetAllDiscussions(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, discussions)
}

func (h *DiscussionHandler) UpdateDiscussion(c *gin.Context) {
	discussionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discussion id"})
		return
	}

	var req dto.UpdateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	discussion, err := h.service.UpdateDiscussion(c.Request.Context(), userID, discussionID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, discussion)
}

func (h *DiscussionHandler) DeleteDiscussion(c *gin.Context) {
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

	if err := h.service.DeleteDiscussion(c.Request.Context(), userID, discussionID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "discussion deleted successfully"})
}

func (h *DiscussionHandler) ResolveDiscussion(c *gin.Context) {
	discussionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discussion id"})
		return
	}

	var req dto.ResolveDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	replyID, err := uuid.Parse(req.ReplyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	discussion, err := h.service.MarkBestAnswer(c.Request.Context(), userID, discussionID, replyID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, discussion)
}
