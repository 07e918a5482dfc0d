package handlers

import (
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-horse",
		"name":     "Alice",
	}, nil)
	assertStatus(t, resp, http.StatusCreated)

	body := decodeJSONMap(t, resp)
	data, _ := body["data"].(map[string]any)
	if data["token"] == "" || data["token"] == nil {
		t.Fatalf("expected a token in register response, got %+v", body)
	}
	user, _ := data["user"].(map[string]any)
	if user["email"] != "alice@example.com" {
		t.Fatalf("expected registered email, got %+v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatal("password hash must never appear in responses")
	}

	resp = performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "Alice@Example.com",
		"password": "correct-horse",
	}, nil)
	assertStatus(t, resp, http.StatusOK)

	body = decodeJSONMap(t, resp)
	data, _ = body["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("expected a token in login response, got %+v", body)
	}

	resp = performJSONRequest(t, env.app, http.MethodGet, "/api/auth/me", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	body = decodeJSONMap(t, resp)
	me, _ := body["data"].(map[string]any)
	if me["name"] != "Alice" {
		t.Fatalf("expected profile name Alice, got %+v", me)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestEnv(t)

	cases := []struct {
		name     string
		payload  map[string]string
		expected string
	}{
		{
			name:     "bad email",
			payload:  map[string]string{"email": "not-an-email", "password": "longenough", "name": "X"},
			expected: "invalid email",
		},
		{
			name:     "short password",
			payload:  map[string]string{"email": "bob@example.com", "password": "short", "name": "Bob"},
			expected: "password must be at least 8 characters",
		},
		{
			name:     "missing name",
			payload:  map[string]string{"email": "bob@example.com", "password": "longenough", "name": "  "},
			expected: "name is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", tc.payload, nil)
			assertStatus(t, resp, http.StatusBadRequest)
			assertEnvelopeError(t, decodeJSONMap(t, resp), tc.expected)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupTestEnv(t)
	createTestUser(t, env.db, "taken@example.com", "password123")

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "taken@example.com",
		"password": "password123",
		"name":     "Second",
	}, nil)
	assertStatus(t, resp, http.StatusConflict)
	assertEnvelopeError(t, decodeJSONMap(t, resp), "email already registered")
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := setupTestEnv(t)
	createTestUser(t, env.db, "carol@example.com", "password123")

	// Wrong password and unknown user must be indistinguishable.
	for _, payload := range []map[string]string{
		{"email": "carol@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "password123"},
	} {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", payload, nil)
		assertStatus(t, resp, http.StatusUnauthorized)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "invalid credentials")
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupTestEnv(t)

	for _, path := range []string{"/api/auth/me", "/api/folders/", "/api/files/"} {
		resp := performJSONRequest(t, env.app, http.MethodGet, path, nil, nil)
		assertStatus(t, resp, http.StatusUnauthorized)
	}

	resp := performJSONRequest(t, env.app, http.MethodGet, "/api/auth/me", nil, authHeaders("not-a-real-token"))
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "dave@example.com", "password123")

	resp := performJSONRequest(t, env.app, http.MethodPut, "/api/auth/me", map[string]string{"name": "Renamed"}, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	data, _ := decodeJSONMap(t, resp)["data"].(map[string]any)
	if data["name"] != "Renamed" {
		t.Fatalf("expected updated name, got %+v", data)
	}

	resp = performJSONRequest(t, env.app, http.MethodPut, "/api/auth/me", map[string]string{"name": "   "}, authHeaders(token))
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestChangePassword(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "erin@example.com", "password123")

	resp := performJSONRequest(t, env.app, http.MethodPut, "/api/auth/password", map[string]string{
		"oldPassword": "wrong-password",
		"newPassword": "newpassword456",
	}, authHeaders(token))
	assertStatus(t, resp, http.StatusUnauthorized)

	resp = performJSONRequest(t, env.app, http.MethodPut, "/api/auth/password", map[string]string{
		"oldPassword": "password123",
		"newPassword": "newpassword456",
	}, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)

	resp = performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "erin@example.com",
		"password": "newpassword456",
	}, nil)
	assertStatus(t, resp, http.StatusOK)
}
