package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nextai/nextai/internal/middleware"
	"github.com/nextai/nextai/internal/pkg/errcode"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/response"
	"github.com/nextai/nextai/internal/service"
)

type AuthHandler struct {
	auth         *service.AuthService
	cookieMaxAge int
}

func NewAuthHandler(auth *service.AuthService, cookieMaxAgeSeconds int) *AuthHandler {
	return &AuthHandler{auth: auth, cookieMaxAge: cookieMaxAgeSeconds}
}

type signupRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
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
	if req.Password != req.ConfirmPassword {
		badRequest(c, "Passwords do not match")
		return
	}
	user, code, err := h.auth.Signup(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if appErr.IsConflict(err) {
			response.Error(c, http.StatusConflict, errcode.ErrConflict, "Email or username already in use")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
		"code":     code,
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if req.Email == "" || req.Code == "" {
		badRequest(c, "email and code are required")
		return
	}
	if err := h.auth.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		if appErr.IsCodeFailure(err) {
			badRequest(c, "Invalid or expired verification code")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true})
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(c, "email and password are required")
		return
	}
	user, token, err := h.auth.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	h.setTokenCookie(c, token)
	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":                user.ID,
			"email":             user.Email,
			"username":          user.Username,
			"remaining_credits": user.RemainingCredits,
			"plan_id":           user.PlanID,
		},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if !validEmail(req.Email) {
		badRequest(c, "A valid email is required")
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}
	// Same answer whether or not the account exists.
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
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
	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		if appErr.IsCodeFailure(err) {
			badRequest(c, "No valid verification code found")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, plan, err := h.auth.Profile(c.Request.Context(), getAccountID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"username":          user.Username,
		"is_verified":       user.IsVerified,
		"remaining_credits": user.RemainingCredits,
		"avatar_key":        user.AvatarKey,
		"plan": gin.H{
			"id":          plan.ID,
			"name":        plan.Name,
			"trial_count": plan.TrialCount,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.TokenCookieName, token, h.cookieMaxAge, "/", "", false, true)
}
