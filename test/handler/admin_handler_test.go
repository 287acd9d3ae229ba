package handler_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/password"
	"github.com/nextai/nextai/internal/pkg/timeutil"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (e *testEnv) seedAdmin(t *testing.T, email, pass, role string) {
	t.Helper()
	hash, err := password.Hash(pass)
	require.NoError(t, err)
	now := timeutil.NowUnix()
	require.NoError(t, e.admins.Create(context.Background(), &model.Admin{
		ID:           newTestID(),
		Email:        email,
		Username:     "admin-" + role,
		PasswordHash: hash,
		IsVerified:   true,
		IsActive:     true,
		Role:         role,
		Ctime:        now,
		Mtime:        now,
	}))
}

func (e *testEnv) adminToken(t *testing.T, email, pass string) string {
	t.Helper()
	resp, envelope := e.do(t, http.MethodPost, "/api/v1/admin/auth/signin", "", map[string]string{
		"email":    email,
		"password": pass,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	return envelope.Data.(map[string]interface{})["token"].(string)
}

func TestAdminDashboardAndUserManagement(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	env.seedAdmin(t, "boss@example.com", "adminpass1", model.AdminRoleAdmin)
	userToken := env.signupAndVerify(t, "mortal@example.com", "mortal", "12345678")
	adminToken := env.adminToken(t, "boss@example.com", "adminpass1")

	// user tokens are rejected on admin routes
	resp, _ := env.do(t, http.MethodGet, "/api/v1/admin/dashboard", userToken, nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	stats := envelope.Data.(map[string]interface{})
	require.Equal(t, float64(1), stats["users"])
	require.Equal(t, float64(1), stats["verified_users"])
	require.Equal(t, float64(1), stats["admins"])

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	users := envelope.Data.([]interface{})
	require.Len(t, users, 1)
	userID := users[0].(map[string]interface{})["id"].(string)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/users/"+userID+"/ban", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// banned users can not sign in
	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "mortal@example.com",
		"password": "12345678",
	})
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/users/"+userID+"/unban", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "mortal@example.com",
		"password": "12345678",
	})
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestAdminCreateRequiresSuperAdmin(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	env.seedAdmin(t, "plain@example.com", "adminpass1", model.AdminRoleAdmin)
	env.seedAdmin(t, "super@example.com", "superpass1", model.AdminRoleSuperAdmin)

	plainToken := env.adminToken(t, "plain@example.com", "adminpass1")
	superToken := env.adminToken(t, "super@example.com", "superpass1")

	body := map[string]string{
		"email":    "newadmin@example.com",
		"username": "newadmin",
		"password": "adminpass2",
	}
	resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/admins", plainToken, body)
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/admins", superToken, body)
	require.Equal(t, http.StatusCreated, resp.Code)

	// duplicate across the admins table
	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/admins", superToken, body)
	require.Equal(t, http.StatusConflict, resp.Code)

	// and across the users table
	env.signupAndVerify(t, "taken@example.com", "taken", "12345678")
	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/admins", superToken, map[string]string{
		"email":    "taken@example.com",
		"username": "taken2",
		"password": "adminpass3",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestAdminContactsAndAnnouncements(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	env.seedAdmin(t, "ops@example.com", "adminpass1", model.AdminRoleAdmin)
	userToken := env.signupAndVerify(t, "reader@example.com", "reader", "12345678")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/contact", "", map[string]string{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"message": "hello from the contact form",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	adminToken := env.adminToken(t, "ops@example.com", "adminpass1")
	resp, envelope := env.do(t, http.MethodGet, "/api/v1/admin/contacts", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	contacts := envelope.Data.([]interface{})
	require.Len(t, contacts, 1)
	require.Equal(t, "Visitor", contacts[0].(map[string]interface{})["name"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/announcements", adminToken, map[string]string{
		"body": "maintenance tonight",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/notifications?unread=1", userToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	notifications := envelope.Data.([]interface{})
	require.Len(t, notifications, 1)
	require.Equal(t, "announcement", notifications[0].(map[string]interface{})["kind"])
}

func TestAdminPasswordReset(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	env.seedAdmin(t, "forgetful@example.com", "adminpass1", model.AdminRoleAdmin)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/auth/forgot-password", "", map[string]string{
		"email": "forgetful@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	code := env.sender.LastCode("forgetful@example.com")
	require.Len(t, code, 6)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/auth/reset-password", "", map[string]string{
		"email":    "forgetful@example.com",
		"code":     code,
		"password": "freshpass1",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	env.adminToken(t, "forgetful@example.com", "freshpass1")
}
