package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextai/nextai/internal/pkg/response"
	"github.com/nextai/nextai/internal/service"
)

type FriendHandler struct {
	friends *service.FriendService
}

func NewFriendHandler(friends *service.FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

type friendRequestBody struct {
	UserID string `json:"userId"`
}

func (h *FriendHandler) Request(c *gin.Context) {
	var req friendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if req.UserID == "" {
		badRequest(c, "userId is required")
		return
	}
	friendship, err := h.friends.Request(c.Request.Context(), getAccountID(c), req.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, friendship)
}

func (h *FriendHandler) Accept(c *gin.Context) {
	friendship, err := h.friends.Accept(c.Request.Context(), getAccountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, friendship)
}

func (h *FriendHandler) Reject(c *gin.Context) {
	friendship, err := h.friends.Reject(c.Request.Context(), getAccountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, friendship)
}

func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.friends.ListFriends(c.Request.Context(), getAccountID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, friends)
}

func (h *FriendHandler) ListRequests(c *gin.Context) {
	requests, err := h.friends.ListIncoming(c.Request.Context(), getAccountID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requests)
}

func (h *FriendHandler) Status(c *gin.Context) {
	status, err := h.friends.Status(c.Request.Context(), getAccountID(c), c.Param("userId"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

func (h *FriendHandler) Remove(c *gin.Context) {
	if err := h.friends.Remove(c.Request.Context(), getAccountID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
