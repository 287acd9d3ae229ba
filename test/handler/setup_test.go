package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/nextai/nextai/internal/config"
	"github.com/nextai/nextai/internal/filestore"
	"github.com/nextai/nextai/internal/handler"
	"github.com/nextai/nextai/internal/middleware"
	"github.com/nextai/nextai/internal/pkg/response"
	"github.com/nextai/nextai/internal/repo"
	"github.com/nextai/nextai/internal/service"
	"github.com/nextai/nextai/test/testutil"
)

var codePattern = regexp.MustCompile(`\d{6}`)

// captureSender records outgoing mail so tests can read emailed codes.
type captureSender struct {
	mu   sync.Mutex
	last map[string]string
}

func newCaptureSender() *captureSender {
	return &captureSender{last: make(map[string]string)}
}

func (s *captureSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[to] = body
	return nil
}

func (s *captureSender) LastCode(to string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codePattern.FindString(s.last[to])
}

// stubProvider answers every prompt with a canned reply.
type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Name() string {
	return "stub"
}

func (p *stubProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type testEnv struct {
	router   http.Handler
	db       *sql.DB
	users    *repo.UserRepo
	admins   *repo.AdminRepo
	sender   *captureSender
	provider *stubProvider
	cleanup  func()
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, closeDB := testutil.OpenTestDB(t)
	userRepo := repo.NewUserRepo(db)
	adminRepo := repo.NewAdminRepo(db)
	codeRepo := repo.NewVerificationCodeRepo(db)
	planRepo := repo.NewPlanRepo(db)
	sessionRepo := repo.NewChatSessionRepo(db)
	messageRepo := repo.NewAiMessageRepo(db)
	friendshipRepo := repo.NewFriendshipRepo(db)
	notificationRepo := repo.NewNotificationRepo(db)
	contactRepo := repo.NewContactRepo(db)

	jwtSecret := []byte("test-secret")
	sender := newCaptureSender()
	provider := &stubProvider{reply: "stub answer"}

	verifyService := service.NewVerificationService(codeRepo)
	planService := service.NewPlanService(planRepo)
	authService := service.NewAuthService(db, userRepo, planService, verifyService, sender, jwtSecret, time.Hour)
	adminService := service.NewAdminService(db, adminRepo, userRepo, sessionRepo, messageRepo, contactRepo, verifyService, sender, jwtSecret, time.Hour)
	notificationService := service.NewNotificationService(notificationRepo)
	friendService := service.NewFriendService(friendshipRepo, userRepo, notificationService)
	contactService := service.NewContactService(contactRepo)
	chatService := service.NewChatService(db, sessionRepo, messageRepo, userRepo, planService, provider, "stub-model", time.Second*5, 20, 8000)

	tmpDir, err := os.MkdirTemp("", "nextai-avatar-*")
	require.NoError(t, err)
	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": tmpDir},
	})
	require.NoError(t, err)
	userService := service.NewUserService(userRepo, store)

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService, 3600),
		Admin:         handler.NewAdminHandler(adminService, notificationService, 3600),
		Chat:          handler.NewChatHandler(chatService),
		Friends:       handler.NewFriendHandler(friendService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Contact:       handler.NewContactHandler(contactService),
		Plans:         handler.NewPlanHandler(planService),
		Users:         handler.NewUserHandler(userService, 5),
		Routes:        handler.NewRouteHandler(jwtSecret),
		JWTSecret:     jwtSecret,
		RateWindow:    0,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return &testEnv{
		router:   engine,
		db:       db,
		users:    userRepo,
		admins:   adminRepo,
		sender:   sender,
		provider: provider,
		cleanup: func() {
			closeDB()
			_ = os.RemoveAll(tmpDir)
		},
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	var envelope response.Envelope
	if resp.Body.Len() > 0 {
		_ = json.Unmarshal(resp.Body.Bytes(), &envelope)
	}
	return resp, envelope
}

// signupAndVerify drives the full signup flow and returns a signin token.
func (e *testEnv) signupAndVerify(t *testing.T, email, username, pass string) string {
	t.Helper()
	resp, envelope := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":           email,
		"username":        username,
		"password":        pass,
		"confirmPassword": pass,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	data := envelope.Data.(map[string]interface{})
	code := data["code"].(string)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/auth/verify", "", map[string]string{
		"email": email,
		"code":  code,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp, envelope = e.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    email,
		"password": pass,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	return envelope.Data.(map[string]interface{})["token"].(string)
}
