package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/dineqr/dineqr/internal/auth"
	"github.com/dineqr/dineqr/internal/middleware"
	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/pkg/errors"
	"github.com/dineqr/dineqr/pkg/metrics"
	"github.com/dineqr/dineqr/pkg/response"
)

// AuthHandler manages the passwordless authentication flows. Handlers never
// write the session cookie themselves: freshly minted tokens (and logout's
// clear instruction) go into the relay keyed by request id, and the session
// middleware materialises them once the handler chain completes.
type AuthHandler struct {
	users        *services.UserService
	verification *services.VerificationService
	tokens       *iauth.TokenService
	relay        *iauth.SessionRelay
}

func NewAuthHandler(users *services.UserService, verification *services.VerificationService, tokens *iauth.TokenService, relay *iauth.SessionRelay) *AuthHandler {
	return &AuthHandler{users: users, verification: verification, tokens: tokens, relay: relay}
}

type sendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/auth/send-code
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req sendCodeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	warning, err := h.verification.SendCode(requestContext(c), req.Email)
	if err != nil {
		response.Error(c, errors.Wrap(err, "Failed to send verification code"))
		return
	}

	payload := gin.H{"sent": true}
	if warning != "" {
		response.SuccessWithWarning(c, http.StatusOK, payload, warning)
		return
	}
	response.Success(c, http.StatusOK, payload)
}

type verifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// POST /api/auth/verify-code
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.verification.Consume(requestContext(c), req.Email, req.Code); err != nil {
		response.Error(c, errors.ErrInvalidCode)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verified": true})
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	FullName    string `json:"full_name" validate:"required,min=1,max=120"`
	CountryName string `json:"country_name" validate:"required"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := requestContext(c)

	if err := h.verification.Consume(ctx, req.Email, req.Code); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		response.Error(c, errors.ErrInvalidCode)
		return
	}

	user, err := h.users.Register(ctx, services.RegisterInput{
		Email:       req.Email,
		FullName:    req.FullName,
		CountryName: req.CountryName,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		response.Error(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}
	h.relay.Put(middleware.RequestIDFromContext(c), token)

	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	response.Success(c, http.StatusCreated, gin.H{"user": user.Public()})
}

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := requestContext(c)

	if err := h.verification.Consume(ctx, req.Email, req.Code); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		response.Error(c, errors.ErrInvalidCode)
		return
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		response.Error(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}
	h.relay.Put(middleware.RequestIDFromContext(c), token)

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	response.Success(c, http.StatusOK, gin.H{"user": user.Public()})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.relay.PutClear(middleware.RequestIDFromContext(c))
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /api/auth/me
//
// Anonymous callers get a null user rather than a 401 so the frontend can
// probe session state without error handling.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Success(c, http.StatusOK, gin.H{"user": nil})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user.Public()})
}

type updateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=1,max=120"`
	CountryName *string `json:"country_name"`
}

// PATCH /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.users.UpdateProfile(requestContext(c), user.ID, services.UpdateProfileInput{
		FullName:    req.FullName,
		CountryName: req.CountryName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": updated.Public()})
}
