package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextai/nextai/internal/pkg/response"
	"github.com/nextai/nextai/internal/service"
)

type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if req.Name == "" || req.Message == "" {
		badRequest(c, "name and message are required")
		return
	}
	if !validEmail(req.Email) {
		badRequest(c, "A valid email is required")
		return
	}
	item, err := h.contacts.Submit(c.Request.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": item.ID})
}
