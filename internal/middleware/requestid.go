package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dineqr/dineqr/pkg/crypto"
)

const (
	// CtxRequestIDKey is the gin context key holding the request id.
	CtxRequestIDKey = "requestID"

	// RequestIDHeader carries the id on both request and response.
	RequestIDHeader = "X-Request-ID"
)

// RequestID assigns every request a unique id. Clients may supply their own
// via X-Request-ID; otherwise one is generated. The id is echoed on the
// response and keys the session relay, so it must be set before SessionContext.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = newRequestID()
		}

		c.Set(CtxRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func newRequestID() string {
	suffix, err := crypto.GenerateToken(9)
	if err != nil {
		suffix = "fallback"
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(CtxRequestIDKey)
}
