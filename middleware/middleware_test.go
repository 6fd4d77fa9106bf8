package middleware

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blog/models"
	"github.com/cppla/blog/utils"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("error.html").Parse("{{.Status}} {{.Message}}")))
	r.Use(mw...)
	return r
}

func TestRateLimitOnlyCountsPosts(t *testing.T) {
	r := newEngine(RateLimitMiddleware(2))
	r.Any("/login", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	// burst is perMinute/2 = 1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	for i := 0; i < 5; i++ {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCSRF(t *testing.T) {
	r := newEngine(CSRF(false))
	r.GET("/form", func(ctx *gin.Context) { ctx.String(http.StatusOK, ctx.GetString(ContextCSRFKey)) })
	r.POST("/form", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)
	token := w.Body.String()
	require.NotEmpty(t, token)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CSRFCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	post := func(field string, withCookie bool) int {
		form := url.Values{CSRFField: {field}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if withCookie {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, post(token, true))
	assert.Equal(t, http.StatusForbidden, post("forged", true))
	assert.Equal(t, http.StatusForbidden, post(token, false))
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())
	r.GET("/", func(ctx *gin.Context) { ctx.String(http.StatusOK, ctx.GetString(utils.RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

type stubUsers map[uint]*models.User

func (s stubUsers) Get(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, assert.AnError
}

func TestSessionsResolveIdentityPerRequest(t *testing.T) {
	sessions := Sessions{Secret: "secret", TTL: time.Hour}
	users := stubUsers{
		1: {ID: 1, Name: "Ann", Email: "a@x.com"},
		3: {ID: 3, Name: "Cat", Email: "c@x.com"},
	}

	r := newEngine(sessions.LoadIdentity(users))
	r.GET("/whoami", func(ctx *gin.Context) { ctx.String(http.StatusOK, CurrentIdentity(ctx).Name) })
	r.GET("/private", AuthRequired(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	whoami := func(cookie *http.Cookie) string {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String()
	}
	sessionFor := func(id uint, name string) *http.Cookie {
		token, err := utils.GenerateToken("secret", id, name, time.Hour)
		require.NoError(t, err)
		return &http.Cookie{Name: SessionCookie, Value: token}
	}

	ann, cat := sessionFor(1, "Ann"), sessionFor(3, "Cat")
	assert.Equal(t, "Ann", whoami(ann))
	assert.Equal(t, "Cat", whoami(cat))
	assert.Equal(t, "", whoami(nil))
	assert.Equal(t, "Ann", whoami(ann))

	// deleted account and forged token both fall back to anonymous
	assert.Equal(t, "", whoami(sessionFor(9, "Ghost")))
	assert.Equal(t, "", whoami(&http.Cookie{Name: SessionCookie, Value: "garbage"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(ann)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
