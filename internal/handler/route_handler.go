package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nextai/nextai/internal/middleware"
	"github.com/nextai/nextai/internal/pkg/jwt"
	"github.com/nextai/nextai/internal/pkg/response"
	"github.com/nextai/nextai/internal/routeguard"
)

// RouteHandler answers navigation-policy queries. The endpoint is public;
// a bearer token, when present and valid, marks the caller authenticated.
type RouteHandler struct {
	jwtSecret []byte
}

func NewRouteHandler(secret []byte) *RouteHandler {
	return &RouteHandler{jwtSecret: secret}
}

func (h *RouteHandler) Decision(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		badRequest(c, "path is required")
		return
	}
	authenticated := h.authenticated(c)
	response.Success(c, http.StatusOK, gin.H{
		"path":   path,
		"class":  routeguard.Classify(path),
		"action": routeguard.Decide(path, authenticated),
	})
}

func (h *RouteHandler) authenticated(c *gin.Context) bool {
	token := ""
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
		}
	} else if cookie, err := c.Cookie(middleware.TokenCookieName); err == nil {
		token = cookie
	}
	if token == "" {
		return false
	}
	_, err := jwt.ParseToken(token, h.jwtSecret)
	return err == nil
}
