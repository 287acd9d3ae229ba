package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nextai/nextai/internal/ai"
	"github.com/nextai/nextai/internal/pkg/timeutil"
)

func createSession(t *testing.T, env *testEnv, token, title string) string {
	t.Helper()
	resp, envelope := env.do(t, http.MethodPost, "/api/v1/chat/sessions", token, map[string]string{"title": title})
	require.Equal(t, http.StatusCreated, resp.Code)
	return envelope.Data.(map[string]interface{})["id"].(string)
}

func TestChatMessageDecrementsCredits(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	token := env.signupAndVerify(t, "chat@example.com", "chatter", "12345678")
	sessionID := createSession(t, env, token, "first chat")

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/chat/sessions/"+sessionID+"/messages", token, map[string]string{
		"content": "hello there",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	data := envelope.Data.(map[string]interface{})
	require.Equal(t, float64(49), data["remaining_credits"])
	assistant := data["assistant_message"].(map[string]interface{})
	require.Equal(t, "stub answer", assistant["content"])

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/chat/sessions/"+sessionID+"/messages", token, map[string]string{
		"content": "and again",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, float64(48), envelope.Data.(map[string]interface{})["remaining_credits"])

	// both exchanges persisted in order
	resp, envelope = env.do(t, http.MethodGet, "/api/v1/chat/sessions/"+sessionID+"/messages", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	messages := envelope.Data.([]interface{})
	require.Len(t, messages, 4)
}

func TestChatRefusedWhenOutOfCredits(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	token := env.signupAndVerify(t, "broke@example.com", "broke", "12345678")
	sessionID := createSession(t, env, token, "no credits")

	user, err := env.users.GetByEmail(context.Background(), "broke@example.com")
	require.NoError(t, err)
	require.NoError(t, env.users.SetCredits(context.Background(), user.ID, 0, timeutil.NowUnix()))

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/chat/sessions/"+sessionID+"/messages", token, map[string]string{
		"content": "one more?",
	})
	require.Equal(t, http.StatusForbidden, resp.Code)
	require.False(t, envelope.Success)
	require.Contains(t, envelope.Message, "upgrade")

	// nothing persisted, nothing deducted
	resp, envelope = env.do(t, http.MethodGet, "/api/v1/chat/sessions/"+sessionID+"/messages", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, envelope.Data)
}

func TestChatQuotaErrorMapsTo429(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	token := env.signupAndVerify(t, "quota@example.com", "quota", "12345678")
	sessionID := createSession(t, env, token, "quota")

	env.provider.err = ai.ErrQuota
	resp, _ := env.do(t, http.MethodPost, "/api/v1/chat/sessions/"+sessionID+"/messages", token, map[string]string{
		"content": "hello",
	})
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	env.provider.err = nil

	// a failed generation consumes no credit
	resp, envelope := env.do(t, http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, float64(50), envelope.Data.(map[string]interface{})["remaining_credits"])
}

func TestChatSessionOwnership(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	ownerToken := env.signupAndVerify(t, "owner@example.com", "owner", "12345678")
	otherToken := env.signupAndVerify(t, "other@example.com", "other", "12345678")
	sessionID := createSession(t, env, ownerToken, "private")

	// other users see 404, not 403
	resp, _ := env.do(t, http.MethodGet, "/api/v1/chat/sessions/"+sessionID, otherToken, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/chat/sessions/"+sessionID, otherToken, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/chat/sessions/"+sessionID, ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/chat/sessions", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, envelope.Data)
}

func TestChatTranscriptExport(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	token := env.signupAndVerify(t, "export@example.com", "exporter", "12345678")
	sessionID := createSession(t, env, token, "to export")

	env.provider.reply = "**bold** reply"
	resp, _ := env.do(t, http.MethodPost, "/api/v1/chat/sessions/"+sessionID+"/messages", token, map[string]string{
		"content": "render me",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/chat/sessions/"+sessionID+"/export", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	require.Contains(t, body, "to export")
	require.Contains(t, body, "<strong>bold</strong>")
	require.Contains(t, body, "render me")
}
