package handler

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextai/nextai/internal/ai"
	"github.com/nextai/nextai/internal/middleware"
	"github.com/nextai/nextai/internal/pkg/errcode"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/response"
)

const (
	minPasswordLen = 8
	minUsernameLen = 3
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func getAccountID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextAccountIDKey)
	id, _ := value.(string)
	return id
}

func getAccountRole(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextAccountRoleKey)
	role, _ := value.(string)
	return role
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("account_id", getAccountID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrBanned):
		response.Error(c, http.StatusForbidden, errcode.ErrBanned, "Your account has been suspended")
	case errors.Is(err, appErr.ErrNotVerified):
		response.Error(c, http.StatusForbidden, errcode.ErrNotVerified, "Please verify your email before signing in")
	case errors.Is(err, appErr.ErrNeedsUpgrade):
		response.Error(c, http.StatusForbidden, errcode.ErrNeedsUpgrade, "Insufficient credits. Please upgrade your plan.")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case appErr.IsCodeFailure(err):
		response.Error(c, http.StatusBadRequest, errcode.ErrCodeInvalid, "Invalid or expired verification code")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, http.StatusText(http.StatusTooManyRequests))
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, http.StatusInternalServerError, errcode.ErrAIUnavailable, "AI not configured")
	default:
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}

func badRequest(c *gin.Context, message string) {
	response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, message)
}
