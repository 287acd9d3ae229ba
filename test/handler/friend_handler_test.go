package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func (e *testEnv) userID(t *testing.T, email string) string {
	t.Helper()
	user, err := e.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.ID
}

func TestFriendRequestLifecycle(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	aliceToken := env.signupAndVerify(t, "f.alice@example.com", "falice", "12345678")
	bobToken := env.signupAndVerify(t, "f.bob@example.com", "fbob", "12345678")
	aliceID := env.userID(t, "f.alice@example.com")
	bobID := env.userID(t, "f.bob@example.com")

	// self-request is rejected
	resp, _ := env.do(t, http.MethodPost, "/api/v1/friends/requests", aliceToken, map[string]string{"userId": aliceID})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/friends/requests", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusCreated, resp.Code)
	friendshipID := envelope.Data.(map[string]interface{})["id"].(string)

	// duplicate request in either direction conflicts
	resp, _ = env.do(t, http.MethodPost, "/api/v1/friends/requests", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusConflict, resp.Code)
	resp, _ = env.do(t, http.MethodPost, "/api/v1/friends/requests", bobToken, map[string]string{"userId": aliceID})
	require.Equal(t, http.StatusConflict, resp.Code)

	// status from both sides
	resp, envelope = env.do(t, http.MethodGet, "/api/v1/friends/status/"+bobID, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	status := envelope.Data.(map[string]interface{})
	require.Equal(t, "pending", status["status"])
	require.Equal(t, "outgoing", status["direction"])

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/friends/status/"+aliceID, bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	status = envelope.Data.(map[string]interface{})
	require.Equal(t, "incoming", status["direction"])

	// only the addressee may accept
	resp, _ = env.do(t, http.MethodPost, "/api/v1/friends/requests/"+friendshipID+"/accept", aliceToken, nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	// bob has one incoming request and a notification
	resp, envelope = env.do(t, http.MethodGet, "/api/v1/friends/requests", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, envelope.Data.([]interface{}), 1)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/notifications?unread=1", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	notifications := envelope.Data.([]interface{})
	require.Len(t, notifications, 1)
	require.Equal(t, "friend_request", notifications[0].(map[string]interface{})["kind"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/friends/requests/"+friendshipID+"/accept", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// accepting twice conflicts
	resp, _ = env.do(t, http.MethodPost, "/api/v1/friends/requests/"+friendshipID+"/accept", bobToken, nil)
	require.Equal(t, http.StatusConflict, resp.Code)

	// both sides now list each other
	resp, envelope = env.do(t, http.MethodGet, "/api/v1/friends", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	friends := envelope.Data.([]interface{})
	require.Len(t, friends, 1)
	require.Equal(t, "fbob", friends[0].(map[string]interface{})["username"])

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/friends", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, envelope.Data.([]interface{}), 1)

	// the requester got an acceptance notification
	resp, envelope = env.do(t, http.MethodGet, "/api/v1/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	notifications = envelope.Data.([]interface{})
	require.Len(t, notifications, 1)
	require.Equal(t, "friend_accepted", notifications[0].(map[string]interface{})["kind"])
}

func TestFriendRejectAllowsReRequest(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	aliceToken := env.signupAndVerify(t, "r.alice@example.com", "ralice", "12345678")
	bobToken := env.signupAndVerify(t, "r.bob@example.com", "rbob", "12345678")
	bobID := env.userID(t, "r.bob@example.com")

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/friends/requests", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusCreated, resp.Code)
	friendshipID := envelope.Data.(map[string]interface{})["id"].(string)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/friends/requests/"+friendshipID+"/reject", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// a rejected pair may be requested again
	resp, _ = env.do(t, http.MethodPost, "/api/v1/friends/requests", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusCreated, resp.Code)
}

func TestNotificationMarkRead(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	aliceToken := env.signupAndVerify(t, "n.alice@example.com", "nalice", "12345678")
	bobToken := env.signupAndVerify(t, "n.bob@example.com", "nbob", "12345678")
	bobID := env.userID(t, "n.bob@example.com")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/friends/requests", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/notifications?unread=1", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	notifications := envelope.Data.([]interface{})
	require.Len(t, notifications, 1)
	notificationID := notifications[0].(map[string]interface{})["id"].(string)

	// one account can not read another's notifications
	resp, _ = env.do(t, http.MethodPost, "/api/v1/notifications/"+notificationID+"/read", aliceToken, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/notifications/"+notificationID+"/read", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/notifications?unread=1", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, envelope.Data)
}
