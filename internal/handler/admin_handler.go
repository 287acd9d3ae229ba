package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nextai/nextai/internal/middleware"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/response"
	"github.com/nextai/nextai/internal/service"
)

type AdminHandler struct {
	admins        *service.AdminService
	notifications *service.NotificationService
	cookieMaxAge  int
}

func NewAdminHandler(admins *service.AdminService, notifications *service.NotificationService, cookieMaxAgeSeconds int) *AdminHandler {
	return &AdminHandler{admins: admins, notifications: notifications, cookieMaxAge: cookieMaxAgeSeconds}
}

func (h *AdminHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(c, "email and password are required")
		return
	}
	admin, token, err := h.admins.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	c.SetCookie(middleware.TokenCookieName, token, h.cookieMaxAge, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{
			"id":       admin.ID,
			"email":    admin.Email,
			"username": admin.Username,
			"role":     admin.Role,
		},
	})
}

func (h *AdminHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if !validEmail(req.Email) {
		badRequest(c, "A valid email is required")
		return
	}
	if err := h.admins.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if req.Email == "" || req.Code == "" {
		badRequest(c, "email and code are required")
		return
	}
	if len(req.Password) < minPasswordLen {
		badRequest(c, "Password must be at least 8 characters")
		return
	}
	if err := h.admins.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		if appErr.IsCodeFailure(err) {
			badRequest(c, "No valid verification code found")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admins.Dashboard(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit := parseUint(c.Query("limit"), 50)
	offset := parseUint(c.Query("offset"), 0)
	users, err := h.admins.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	if err := h.admins.SetUserBanned(c.Request.Context(), c.Param("id"), true); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banned": true})
}

func (h *AdminHandler) UnbanUser(c *gin.Context) {
	if err := h.admins.SetUserBanned(c.Request.Context(), c.Param("id"), false); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banned": false})
}

type createAdminRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if !validEmail(req.Email) {
		badRequest(c, "A valid email is required")
		return
	}
	if len(req.Username) < minUsernameLen {
		badRequest(c, "Username must be at least 3 characters")
		return
	}
	if len(req.Password) < minPasswordLen {
		badRequest(c, "Password must be at least 8 characters")
		return
	}
	admin, err := h.admins.CreateAdmin(c.Request.Context(), getAccountRole(c), req.Email, req.Username, req.Password, req.Role)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":       admin.ID,
		"email":    admin.Email,
		"username": admin.Username,
		"role":     admin.Role,
	})
}

func (h *AdminHandler) ListContacts(c *gin.Context) {
	limit := parseUint(c.Query("limit"), 50)
	offset := parseUint(c.Query("offset"), 0)
	contacts, err := h.admins.ListContacts(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, contacts)
}

type announcementRequest struct {
	Body string `json:"body"`
}

func (h *AdminHandler) Announce(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		badRequest(c, "body is required")
		return
	}
	if err := h.notifications.Broadcast(c.Request.Context(), req.Body); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func parseUint(value string, fallback uint) uint {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return fallback
	}
	return uint(parsed)
}
