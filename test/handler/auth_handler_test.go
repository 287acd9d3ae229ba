package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupVerifySigninFlow(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":           "alice@example.com",
		"username":        "alice",
		"password":        "12345678",
		"confirmPassword": "12345678",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	require.True(t, envelope.Success)
	data := envelope.Data.(map[string]interface{})
	code := data["code"].(string)
	require.Len(t, code, 6)

	// unverified accounts can not sign in
	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "alice@example.com",
		"password": "12345678",
	})
	require.Equal(t, http.StatusForbidden, resp.Code)

	// wrong code is rejected with the canonical message
	resp, envelope = env.do(t, http.MethodPost, "/api/v1/auth/verify", "", map[string]string{
		"email": "alice@example.com",
		"code":  "000000",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "Invalid or expired verification code", envelope.Message)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/verify", "", map[string]string{
		"email": "alice@example.com",
		"code":  code,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// the code is consumed; replay fails
	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/verify", "", map[string]string{
		"email": "alice@example.com",
		"code":  code,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "alice@example.com",
		"password": "12345678",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	token := envelope.Data.(map[string]interface{})["token"].(string)
	require.NotEmpty(t, token)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	profile := envelope.Data.(map[string]interface{})
	require.Equal(t, "alice@example.com", profile["email"])
	require.Equal(t, float64(50), profile["remaining_credits"])
}

func TestSignupValidation(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	cases := []map[string]string{
		{"email": "not-an-email", "username": "bob", "password": "12345678", "confirmPassword": "12345678"},
		{"email": "bob@example.com", "username": "bo", "password": "12345678", "confirmPassword": "12345678"},
		{"email": "bob@example.com", "username": "bob", "password": "1234567", "confirmPassword": "1234567"},
		{"email": "bob@example.com", "username": "bob", "password": "12345678", "confirmPassword": "different"},
	}
	for _, body := range cases {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", body)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	env.signupAndVerify(t, "carol@example.com", "carol", "12345678")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":           "carol@example.com",
		"username":        "carol2",
		"password":        "12345678",
		"confirmPassword": "12345678",
	})
	require.Equal(t, http.StatusConflict, resp.Code)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":           "other@example.com",
		"username":        "carol",
		"password":        "12345678",
		"confirmPassword": "12345678",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	env.signupAndVerify(t, "dave@example.com", "dave", "12345678")

	// unknown emails get the same 200
	resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "dave@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	code := env.sender.LastCode("dave@example.com")
	require.Len(t, code, 6)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{
		"email":    "dave@example.com",
		"code":     code,
		"password": "newpassword1",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// replay of a consumed code
	resp, envelope := env.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{
		"email":    "dave@example.com",
		"code":     code,
		"password": "newpassword2",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "No valid verification code found", envelope.Message)

	// old password no longer works, new one does
	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "dave@example.com",
		"password": "12345678",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "dave@example.com",
		"password": "newpassword1",
	})
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestProfileRequiresAuth(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	resp, _ := env.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/auth/profile", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRouteDecision(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/routes/decision?path=/dashboard", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	data := envelope.Data.(map[string]interface{})
	require.Equal(t, "redirect-to-login", data["action"])

	token := env.signupAndVerify(t, "erin@example.com", "erin", "12345678")
	resp, envelope = env.do(t, http.MethodGet, "/api/v1/routes/decision?path=/signin", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	data = envelope.Data.(map[string]interface{})
	require.Equal(t, "redirect-to-dashboard", data["action"])

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/routes/decision?path=/about", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	data = envelope.Data.(map[string]interface{})
	require.Equal(t, "allow", data["action"])
}
