package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/store"
)

// fakeCredentials is an in-memory credentials table.
type fakeCredentials struct {
	users map[string]string
	err   error
	table string
}

func (f *fakeCredentials) LookupCredential(_ context.Context, table, _, _, username string) (string, error) {
	f.table = table
	if f.err != nil {
		return "", f.err
	}
	password, ok := f.users[username]
	if !ok {
		return "", store.ErrRecordNotFound
	}
	return password, nil
}

type recordedAuth struct {
	actor   string
	action  string
	success bool
}

type fakeAuditor struct {
	mu     sync.Mutex
	events []recordedAuth
}

func (f *fakeAuditor) LogAuth(actor, action, _, _ string, success bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedAuth{actor: actor, action: action, success: success})
}

func (f *fakeAuditor) recorded() []recordedAuth {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedAuth(nil), f.events...)
}

func testAuthConfig() config.Auth {
	return config.Auth{
		CredentialsTable: "admin",
		UsernameColumn:   "Username",
		PasswordColumn:   "Password",
		LoginHint:        "Default: admin / admin",
		SessionLifetime:  time.Hour,
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

func newStateDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type testApp struct {
	router   *gin.Engine
	sessions *SessionManager
	auditor  *fakeAuditor
	creds    *fakeCredentials
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testAuthConfig()
	creds := &fakeCredentials{users: map[string]string{"admin": "admin"}}
	auditor := &fakeAuditor{}

	sm, err := NewSessionManager(newStateDB(t), cfg)
	require.NoError(t, err)

	controller := NewAuthController(NewService(creds, cfg), sm, auditor, "", cfg)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(NewMiddleware(sm).Handler())
	controller.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": GetUsername(c)})
	})
	router.GET("/api/tables", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return &testApp{router: router, sessions: sm, auditor: auditor, creds: creds}
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func sessionCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
