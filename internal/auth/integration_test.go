package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_LoginFlow(t *testing.T) {
	app := setupTestApp(t)

	// Unauthenticated browser request is redirected to login
	w := app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?next=%2F" {
		t.Errorf("Expected redirect to login, got %s", loc)
	}

	// Correct credentials redirect to the dashboard and set a cookie
	w = app.login("admin", "admin")
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302 after login, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to /, got %s", loc)
	}
	cookie := sessionCookie(w, "bookstore_session")
	if cookie == nil {
		t.Fatal("Expected session cookie after login")
	}

	// Session grants access
	w = app.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with session, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"username":"admin"`) {
		t.Errorf("Expected username in response, got %s", w.Body.String())
	}

	// Logout destroys the session
	w = app.do(httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302 after logout, got %d", w.Code)
	}

	w = app.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	if w.Code != http.StatusFound {
		t.Errorf("Expected redirect after logout, got %d", w.Code)
	}

	events := app.auditor.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, recordedAuth{actor: "admin", action: "login", success: true}, events[0])
	assert.Equal(t, recordedAuth{actor: "admin", action: "logout", success: true}, events[1])
}

func TestIntegration_InvalidCredentialsStayOnLogin(t *testing.T) {
	app := setupTestApp(t)

	w := app.login("admin", "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid Credentials", body["Error"])
	assert.Equal(t, "Login", body["Title"])
	assert.Equal(t, "admin", body["Username"])
	assert.Equal(t, "Default: admin / admin", body["Hint"])
	assert.Nil(t, sessionCookie(w, "bookstore_session"))

	events := app.auditor.recorded()
	require.Len(t, events, 1)
	assert.False(t, events[0].success)
	assert.Equal(t, "login_failed", events[0].action)
}

func TestIntegration_DatabaseErrorIsShown(t *testing.T) {
	app := setupTestApp(t)
	app.creds.err = errors.New("Table 'bookstore.admin' doesn't exist")

	w := app.login("admin", "admin")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Database error: failed to look up credentials: Table 'bookstore.admin' doesn't exist", body["Error"])
	assert.Nil(t, sessionCookie(w, "bookstore_session"))
}

func TestIntegration_MissingCredentials(t *testing.T) {
	app := setupTestApp(t)

	w := app.login("admin", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgMissingCredentials)
	assert.Empty(t, app.auditor.recorded())
}

func TestIntegration_LoginRedirectsToNext(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		next string
		want string
	}{
		{"/tables/book", "/tables/book"},
		{"//evil.example", "/"},
		{"https://evil.example/", "/"},
		{"", "/"},
	}

	for _, tc := range tests {
		form := url.Values{"username": {"admin"}, "password": {"admin"}, "next": {tc.next}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := app.do(req)

		assert.Equal(t, http.StatusFound, w.Code, tc.next)
		assert.Equal(t, tc.want, w.Header().Get("Location"), tc.next)
	}
}

func TestIntegration_LoginPageRedirectsWhenLoggedIn(t *testing.T) {
	app := setupTestApp(t)

	cookie := sessionCookie(app.login("admin", "admin"), "bookstore_session")
	require.NotNil(t, cookie)

	w := app.do(httptest.NewRequest(http.MethodGet, "/login", nil), cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestIntegration_RateLimitLocksOut(t *testing.T) {
	app := setupTestApp(t)

	for i := 0; i < 3; i++ {
		w := app.login("admin", "wrong")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// Even the right password is refused while locked out
	w := app.login("admin", "admin")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), msgTooManyAttempts)

	// Other usernames are unaffected
	app.creds.users["manager"] = "manager"
	w = app.login("manager", "manager")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestIntegration_APIRequiresSession(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/tables", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())

	cookie := sessionCookie(app.login("admin", "admin"), "bookstore_session")
	require.NotNil(t, cookie)

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/tables", nil), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIntegration_PublicPaths(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
