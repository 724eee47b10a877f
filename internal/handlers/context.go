package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dineqr/dineqr/internal/middleware"
	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/errors"
	"github.com/dineqr/dineqr/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// mustCurrentUser fetches the authenticated user or writes a 401 and returns false.
// Routes behind middleware.RequireUser never hit the failure path; handlers
// still check so they stay safe if mounted without the gate.
func mustCurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}
