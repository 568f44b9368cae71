package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCSRFSecret = []byte("01234567890123456789012345678901")

func newCSRFRouter(t *testing.T) (*gin.Engine, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reached := false
	router := gin.New()
	router.Use(CSRFMiddleware(testCSRFSecret, false))
	router.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/submit", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	return router, &reached
}

func TestCSRFMiddleware_AllowsGET(t *testing.T) {
	router, _ := newCSRFRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String(), "token should be exposed to handlers")
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	router, reached := newCSRFRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *reached, "handler must not run after a CSRF failure")
}

func TestCSRFMiddleware_AcceptsValidToken(t *testing.T) {
	router, reached := newCSRFRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)
	token := w.Body.String()

	form := url.Values{CSRFFieldName: {token}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *reached)
}

func TestCSRFErrorHandler_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/tables/book/rows", nil)
	rr := httptest.NewRecorder()

	csrfErrorHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"CSRF token invalid or missing"}`, rr.Body.String())
}

func TestCSRFErrorHandler_RedirectsToLocalReferer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/tables/book", nil)
	req.Host = "localhost:8188"
	req.Header.Set("Referer", "http://localhost:8188/tables/book/new")
	rr := httptest.NewRecorder()

	csrfErrorHandler(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/tables/book/new?error=Session+expired.+Please+try+again.", rr.Header().Get("Location"))
}

func TestCSRFErrorHandler_ForeignRefererIsNotFollowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/tables/book", nil)
	req.Host = "localhost:8188"
	req.Header.Set("Referer", "https://evil.example/x")
	rr := httptest.NewRecorder()

	csrfErrorHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, rr.Header().Get("Location"))
	assert.Contains(t, rr.Body.String(), "Session expired")
}

func TestCSRFErrorHandler_PlainText(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/tables/book", nil)
	rr := httptest.NewRecorder()

	csrfErrorHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Session expired")
}

func TestCSRFTokenField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, CSRFTokenField(c))

	c.Set(contextKeyCSRFToken, `abc"123`)
	assert.Equal(t,
		`<input type="hidden" name="gorilla.csrf.Token" value="abc&#34;123">`,
		string(CSRFTokenField(c)))
}

func TestLocalReferer(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
		ok      bool
	}{
		{"same host", "https://host:8188/tables/book?x=1", "/tables/book?x=1", true},
		{"same host without path", "https://host:8188", "/", true},
		{"relative path", "/local", "/local", true},
		{"other host", "https://evil.example/x", "", false},
		{"protocol relative", "//evil.example/x", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.Host = "host:8188"
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}

			got, ok := localReferer(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
