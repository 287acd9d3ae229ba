package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextai/nextai/internal/pkg/response"
	"github.com/nextai/nextai/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type createSessionRequest struct {
	Title string `json:"title"`
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		badRequest(c, "invalid request")
		return
	}
	session, err := h.chat.CreateSession(c.Request.Context(), getAccountID(c), req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chat.ListSessions(c.Request.Context(), getAccountID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sessions)
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	userID := getAccountID(c)
	session, err := h.chat.GetSession(ctx, userID, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	messages, err := h.chat.ListMessages(ctx, userID, session.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"session":  session,
		"messages": messages,
	})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.chat.DeleteSession(c.Request.Context(), getAccountID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.chat.ListMessages(c.Request.Context(), getAccountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if req.Content == "" {
		badRequest(c, "content is required")
		return
	}
	userMsg, aiMsg, remaining, err := h.chat.SendMessage(c.Request.Context(), getAccountID(c), c.Param("id"), req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user_message":      userMsg,
		"assistant_message": aiMsg,
		"remaining_credits": remaining,
	})
}

func (h *ChatHandler) ExportSession(c *gin.Context) {
	html, err := h.chat.ExportSessionHTML(c.Request.Context(), getAccountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transcript.html"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
