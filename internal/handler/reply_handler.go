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

type ReplyHandler struct {
	service service.ReplyService
}

func NewReplyHandler(service service.ReplyService) *ReplyHandler {
	return &ReplyHandler{service: service}
}

func (h *ReplyHandler) CreateReply(c *gin.Context) {
	discussionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discussion id"})
		return
	}

	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	reply, err := h.service.CreateReply(c.Request.Context(), userID, discussionID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *ReplyHandler) GetReplyTree(c *gin.Context) {
	discussionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discussion id"})
		return
	}

	var filter dto.ReplyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var userID *uuid.UUID
	if id, err := response.GetUserID(c); err == nil {
		userID = &id
	}

	tree, err := h.service.GetReplyTree(c.Request.Context(), userID, discussionID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

// GetReplyThread serves the subtree hidden behind a hasMore marker.
func (h *ReplyHandler) GetReplyThread(c *gin.Context) {
	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	var filter dto.ReplyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var userID *uuid.UUID
	if id, err := response.GetUserID(c); err == nil {
		userID = &id
	}

	node, err := h.service.GetReplyThread(c.Request.Context(), userID, replyID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, node)
}

func (h *ReplyHandler) UpdateReply(c *gin.Context) {
	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	var req dto.UpdateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	reply, err := h.service.UpdateReply(c.Request.Context(), userID, replyID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (h *ReplyHandler) DeleteReply(c *gin.Context) {
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

	if err := h.service.DeleteReply(c.Request.Context(), userID, replyID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reply deleted successfully"})
}
