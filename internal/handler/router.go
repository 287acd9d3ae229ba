package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextai/nextai/internal/middleware"
)

type RouterDeps struct {
	Auth          *AuthHandler
	Admin         *AdminHandler
	Chat          *ChatHandler
	Friends       *FriendHandler
	Notifications *NotificationHandler
	Contact       *ContactHandler
	Plans         *PlanHandler
	Users         *UserHandler
	Routes        *RouteHandler
	JWTSecret     []byte
	RateWindow    time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	limited := middleware.RateLimit(deps.RateWindow)

	api.POST("/auth/signup", deps.Auth.Signup)
	api.POST("/auth/verify", deps.Auth.Verify)
	api.POST("/auth/signin", deps.Auth.Signin)
	api.POST("/auth/forgot-password", limited, deps.Auth.ForgotPassword)
	api.POST("/auth/reset-password", deps.Auth.ResetPassword)
	api.POST("/auth/logout", deps.Auth.Logout)

	api.POST("/admin/auth/signin", deps.Admin.Signin)
	api.POST("/admin/auth/forgot-password", limited, deps.Admin.ForgotPassword)
	api.POST("/admin/auth/reset-password", deps.Admin.ResetPassword)

	api.POST("/contact", limited, deps.Contact.Submit)
	api.GET("/plans", deps.Plans.List)
	api.GET("/routes/decision", deps.Routes.Decision)
	api.GET("/files/:key", deps.Users.GetFile)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.GET("/auth/profile", deps.Auth.Profile)

	authGroup.POST("/chat/sessions", deps.Chat.CreateSession)
	authGroup.GET("/chat/sessions", deps.Chat.ListSessions)
	authGroup.GET("/chat/sessions/:id", deps.Chat.GetSession)
	authGroup.DELETE("/chat/sessions/:id", deps.Chat.DeleteSession)
	authGroup.GET("/chat/sessions/:id/messages", deps.Chat.ListMessages)
	authGroup.POST("/chat/sessions/:id/messages", deps.Chat.SendMessage)
	authGroup.GET("/chat/sessions/:id/export", deps.Chat.ExportSession)

	authGroup.GET("/friends", deps.Friends.List)
	authGroup.POST("/friends/requests", deps.Friends.Request)
	authGroup.GET("/friends/requests", deps.Friends.ListRequests)
	authGroup.POST("/friends/requests/:id/accept", deps.Friends.Accept)
	authGroup.POST("/friends/requests/:id/reject", deps.Friends.Reject)
	authGroup.GET("/friends/status/:userId", deps.Friends.Status)
	authGroup.DELETE("/friends/:id", deps.Friends.Remove)

	authGroup.GET("/notifications", deps.Notifications.List)
	authGroup.POST("/notifications/:id/read", deps.Notifications.MarkRead)
	authGroup.POST("/notifications/read-all", deps.Notifications.MarkAllRead)

	authGroup.POST("/users/avatar", deps.Users.UploadAvatar)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.JWTAuth(deps.JWTSecret), middleware.AdminOnly())
	adminGroup.GET("/dashboard", deps.Admin.Dashboard)
	adminGroup.GET("/users", deps.Admin.ListUsers)
	adminGroup.POST("/users/:id/ban", deps.Admin.BanUser)
	adminGroup.POST("/users/:id/unban", deps.Admin.UnbanUser)
	adminGroup.GET("/contacts", deps.Admin.ListContacts)
	adminGroup.POST("/announcements", deps.Admin.Announce)
	adminGroup.POST("/admins", middleware.SuperAdminOnly(), deps.Admin.CreateAdmin)
}
