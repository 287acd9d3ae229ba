package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nextai/nextai/internal/pkg/errcode"
	"github.com/nextai/nextai/internal/pkg/jwt"
	"github.com/nextai/nextai/internal/pkg/response"
)

const (
	ContextAccountIDKey    = "account_id"
	ContextAccountEmailKey = "account_email"
	ContextAccountRoleKey  = "account_role"

	// TokenCookieName is also set by the signin handlers.
	TokenCookieName = "token"
)

// JWTAuth reads the bearer token from the Authorization header, falling back
// to the session cookie for browser clients.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(token, secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextAccountIDKey, claims.AccountID)
		c.Set(ContextAccountRoleKey, claims.Role)
		if claims.Email != "" {
			c.Set(ContextAccountEmailKey, claims.Email)
		}
		c.Next()
	}
}

// AdminOnly requires an admin or super admin token. Must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextAccountRoleKey)
		if role != jwt.RoleAdmin && role != jwt.RoleSuperAdmin {
			response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SuperAdminOnly requires a super admin token. Must run after JWTAuth.
func SuperAdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextAccountRoleKey) != jwt.RoleSuperAdmin {
			response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "super admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	cookie, err := c.Cookie(TokenCookieName)
	if err != nil {
		return ""
	}
	return cookie
}
