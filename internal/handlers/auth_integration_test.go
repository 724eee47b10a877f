package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/dineqr/dineqr/internal/auth"
	"github.com/dineqr/dineqr/internal/database/testutil"
	"github.com/dineqr/dineqr/internal/middleware"
	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/pkg/mail"
	"github.com/dineqr/dineqr/pkg/response"
)

type authTestEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

// discardMailer accepts every message so auth flows run without SMTP.
type discardMailer struct{}

func (discardMailer) Send(context.Context, mail.Message) error { return nil }

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	mailer := discardMailer{}
	verification, err := services.NewVerificationService(db, mailer)
	require.NoError(t, err)
	users, err := services.NewUserService(db)
	require.NoError(t, err)
	tokens, err := iauth.NewTokenService(db, iauth.TokenConfig{Secret: "integration-secret", Issuer: "dineqr-test"})
	require.NoError(t, err)
	relay := iauth.NewSessionRelay()
	t.Cleanup(relay.Close)

	handler := NewAuthHandler(users, verification, tokens, relay)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.SessionContext(tokens, relay, middleware.CookieSettings{MaxAge: 3600}))

	auth := r.Group("/api/auth")
	auth.POST("/send-code", handler.SendCode)
	auth.POST("/verify-code", handler.VerifyCode)
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/logout", handler.Logout)
	auth.GET("/me", handler.Me)
	auth.PATCH("/profile", middleware.RequireUser(), handler.UpdateProfile)

	return &authTestEnv{router: r, db: db}
}

func (env *authTestEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *authTestEnv) storedCode(t *testing.T, email string) string {
	t.Helper()
	var record models.VerificationCode
	require.NoError(t, env.db.Where("email = ?", email).First(&record).Error)
	return record.Code
}

func sessionCookieFrom(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestAuthFlowRegisterLoginLogout(t *testing.T) {
	env := newAuthTestEnv(t)
	email := "owner@example.com"

	// Send a code and register with it.
	w := env.do(t, http.MethodPost, "/api/auth/send-code", gin.H{"email": email})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email":        email,
		"code":         env.storedCode(t, email),
		"full_name":    "Ada Owner",
		"country_name": "France",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	cookie := sessionCookieFrom(w)
	require.NotNil(t, cookie, "register must set the session cookie")
	require.True(t, cookie.HttpOnly)
	require.NotEmpty(t, cookie.Value)

	// The cookie authenticates /me.
	w = env.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeResponse(t, w)
	user := payload.Data.(map[string]any)["user"].(map[string]any)
	require.Equal(t, email, user["email"])

	// Logout clears the cookie.
	w = env.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := sessionCookieFrom(w)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)

	// A fresh code logs the user back in.
	w = env.do(t, http.MethodPost, "/api/auth/send-code", gin.H{"email": email})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": email,
		"code":  env.storedCode(t, email),
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookieFrom(w))
}

func TestAuthLoginRejectsWrongCode(t *testing.T) {
	env := newAuthTestEnv(t)
	email := "owner@example.com"

	w := env.do(t, http.MethodPost, "/api/auth/send-code", gin.H{"email": email})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "code": "000000"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, sessionCookieFrom(w))
}

func TestAuthLoginUnknownUser(t *testing.T) {
	env := newAuthTestEnv(t)
	email := "ghost@example.com"

	w := env.do(t, http.MethodPost, "/api/auth/send-code", gin.H{"email": email})
	require.Equal(t, http.StatusOK, w.Code)

	// The code is valid but there is no account behind it.
	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": email,
		"code":  env.storedCode(t, email),
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Nil(t, sessionCookieFrom(w))
}

func TestAuthCodeIsSingleUse(t *testing.T) {
	env := newAuthTestEnv(t)
	email := "owner@example.com"

	w := env.do(t, http.MethodPost, "/api/auth/send-code", gin.H{"email": email})
	require.Equal(t, http.StatusOK, w.Code)
	code := env.storedCode(t, email)

	w = env.do(t, http.MethodPost, "/api/auth/verify-code", gin.H{"email": email, "code": code})
	require.Equal(t, http.StatusOK, w.Code)

	// The same code cannot be consumed twice.
	w = env.do(t, http.MethodPost, "/api/auth/verify-code", gin.H{"email": email, "code": code})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	env := newAuthTestEnv(t)
	email := "owner@example.com"

	register := func() *httptest.ResponseRecorder {
		w := env.do(t, http.MethodPost, "/api/auth/send-code", gin.H{"email": email})
		require.Equal(t, http.StatusOK, w.Code)
		return env.do(t, http.MethodPost, "/api/auth/register", gin.H{
			"email":        email,
			"code":         env.storedCode(t, email),
			"full_name":    "Ada Owner",
			"country_name": "France",
		})
	}

	require.Equal(t, http.StatusCreated, register().Code)
	require.Equal(t, http.StatusConflict, register().Code)
}

func TestAuthMeAnonymousReturnsNullUser(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeResponse(t, w)
	require.Nil(t, payload.Data.(map[string]any)["user"])
}

func TestAuthProfileUpdate(t *testing.T) {
	env := newAuthTestEnv(t)
	email := "owner@example.com"

	w := env.do(t, http.MethodPost, "/api/auth/send-code", gin.H{"email": email})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email":        email,
		"code":         env.storedCode(t, email),
		"full_name":    "Ada Owner",
		"country_name": "France",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := sessionCookieFrom(w)

	w = env.do(t, http.MethodPatch, "/api/auth/profile", gin.H{"full_name": "Ada Lovelace"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeResponse(t, w)
	user := payload.Data.(map[string]any)["user"].(map[string]any)
	require.Equal(t, "Ada Lovelace", user["full_name"])

	// Without a session the profile route is gated.
	w = env.do(t, http.MethodPatch, "/api/auth/profile", gin.H{"full_name": "X"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Invalid country is rejected.
	w = env.do(t, http.MethodPatch, "/api/auth/profile", gin.H{"country_name": "Atlantis"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthSendCodeValidation(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/send-code", gin.H{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
