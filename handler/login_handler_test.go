package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"main/middleware"
	"main/model"
	"main/repository"
	"main/services"
)

type fakeStrategy struct {
	result *services.AuthResult
	err    error
}

func (f *fakeStrategy) Authenticate(context.Context, services.Credentials) (*services.AuthResult, error) {
	return f.result, f.err
}

func newSessionStore(t *testing.T) *repository.SessionRepo {
	t.Helper()
	mr := miniredis.RunT(t)
	return &repository.SessionRepo{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
}

func newLoginRouter(strategy services.Strategy, sessions middleware.SessionStore) *gin.Engine {
	router := gin.New()
	router.POST("/api/auth/login", func(c *gin.Context) {
		LoginHandler(c, strategy, sessions)
	})
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginHandler_Success(t *testing.T) {
	sessions := newSessionStore(t)
	strategy := &fakeStrategy{result: &services.AuthResult{
		User:        &model.User{ID: "user-1", Email: "a@example.com"},
		AccessToken: "provider-token",
	}}
	router := newLoginRouter(strategy, sessions)

	w := postJSON(t, router, "/api/auth/login", gin.H{
		"email":    "a@example.com",
		"password": "Secret1!",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Login successful")

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie, "login must set the session cookie")
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)

	session, err := sessions.GetSession(context.Background(), cookie.Value)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, "user-1", session.UserID)
	require.Equal(t, "provider-token", session.AccessToken)
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	sessions := newSessionStore(t)
	strategy := &fakeStrategy{err: &services.ProviderError{
		StatusCode: http.StatusBadRequest,
		Message:    "Invalid login credentials",
	}}
	router := newLoginRouter(strategy, sessions)

	w := postJSON(t, router, "/api/auth/login", gin.H{
		"email":    "a@example.com",
		"password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid login credentials")
	require.Empty(t, w.Result().Cookies(), "failed login must not set a cookie")
}

func TestLoginHandler_MissingFields(t *testing.T) {
	router := newLoginRouter(&fakeStrategy{}, newSessionStore(t))

	w := postJSON(t, router, "/api/auth/login", gin.H{"email": "a@example.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHandler_ProviderOutage(t *testing.T) {
	router := newLoginRouter(&fakeStrategy{err: errors.New("connection refused")}, newSessionStore(t))

	w := postJSON(t, router, "/api/auth/login", gin.H{
		"email":    "a@example.com",
		"password": "Secret1!",
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogoutHandler_DestroysSession(t *testing.T) {
	sessions := newSessionStore(t)
	strategy := &fakeStrategy{result: &services.AuthResult{
		User:        &model.User{ID: "user-1", Email: "a@example.com"},
		AccessToken: "provider-token",
	}}

	provider := services.NewSupabaseAuth(
		httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).URL,
		"anon", "service")

	router := gin.New()
	router.POST("/api/auth/login", func(c *gin.Context) { LoginHandler(c, strategy, sessions) })
	router.POST("/api/auth/logout", func(c *gin.Context) { LogoutHandler(c, sessions, provider) })

	w := postJSON(t, router, "/api/auth/login", gin.H{
		"email":    "a@example.com",
		"password": "Secret1!",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var sessionCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			sessionCookie = ck
		}
	}
	require.NotNil(t, sessionCookie)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(sessionCookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Logged out successfully")

	session, err := sessions.GetSession(context.Background(), sessionCookie.Value)
	require.NoError(t, err)
	require.Nil(t, session, "session must be destroyed server side")

	cleared := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "logout must expire the cookie")
}

func TestLogoutHandler_NoSessionIsStillOK(t *testing.T) {
	sessions := newSessionStore(t)
	provider := services.NewSupabaseAuth("http://127.0.0.1:0", "anon", "service")

	router := gin.New()
	router.POST("/api/auth/logout", func(c *gin.Context) { LogoutHandler(c, sessions, provider) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetCurrentUserHandler(t *testing.T) {
	router := gin.New()
	router.GET("/api/auth/me", func(c *gin.Context) {
		c.Set("user", &model.User{ID: "user-1", Email: "a@example.com", DisplayName: "A"})
		GetCurrentUserHandler(c)
	})
	router.GET("/anon/me", GetCurrentUserHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "a@example.com")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
