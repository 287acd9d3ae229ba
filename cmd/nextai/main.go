package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/nextai/nextai/internal/ai"
	"github.com/nextai/nextai/internal/config"
	"github.com/nextai/nextai/internal/db"
	"github.com/nextai/nextai/internal/filestore"
	"github.com/nextai/nextai/internal/handler"
	"github.com/nextai/nextai/internal/job"
	"github.com/nextai/nextai/internal/middleware"
	"github.com/nextai/nextai/internal/repo"
	"github.com/nextai/nextai/internal/schedule"
	"github.com/nextai/nextai/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "nextai",
		Short: "nextai backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run nextai server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(database)
	adminRepo := repo.NewAdminRepo(database)
	codeRepo := repo.NewVerificationCodeRepo(database)
	planRepo := repo.NewPlanRepo(database)
	sessionRepo := repo.NewChatSessionRepo(database)
	messageRepo := repo.NewAiMessageRepo(database)
	friendshipRepo := repo.NewFriendshipRepo(database)
	notificationRepo := repo.NewNotificationRepo(database)
	contactRepo := repo.NewContactRepo(database)

	jwtSecret := []byte(cfg.JWTSecret)
	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)

	mailSender := service.NewEmailSender(cfg.Mail)
	verifyService := service.NewVerificationService(codeRepo)
	planService := service.NewPlanService(planRepo)
	authService := service.NewAuthService(database, userRepo, planService, verifyService, mailSender, jwtSecret, jwtTTL)
	adminService := service.NewAdminService(database, adminRepo, userRepo, sessionRepo, messageRepo, contactRepo, verifyService, mailSender, jwtSecret, jwtTTL)
	notificationService := service.NewNotificationService(notificationRepo)
	friendService := service.NewFriendService(friendshipRepo, userRepo, notificationService)
	contactService := service.NewContactService(contactRepo)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	chatService := service.NewChatService(
		database, sessionRepo, messageRepo, userRepo, planService,
		aiProvider, cfg.AI.Model,
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
		uint(cfg.AI.MaxContextMessages), cfg.AI.MaxInputChars,
	)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	userService := service.NewUserService(userRepo, store)

	cookieMaxAge := int(jwtTTL / time.Second)
	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService, cookieMaxAge),
		Admin:         handler.NewAdminHandler(adminService, notificationService, cookieMaxAge),
		Chat:          handler.NewChatHandler(chatService),
		Friends:       handler.NewFriendHandler(friendService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Contact:       handler.NewContactHandler(contactService),
		Plans:         handler.NewPlanHandler(planService),
		Users:         handler.NewUserHandler(userService, cfg.MaxAvatarSizeMB),
		Routes:        handler.NewRouteHandler(jwtSecret),
		JWTSecret:     jwtSecret,
		RateWindow:    time.Duration(cfg.RateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewVerificationCodeCleanupJob(codeRepo), "0 * * * *"); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewCreditRefillJob(userRepo), "0 0 1 * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
