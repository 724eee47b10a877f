package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	var captured string
	r.GET("/x", func(c *gin.Context) {
		captured = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.NotEmpty(t, captured)
	require.Equal(t, captured, w.Header().Get(RequestIDHeader))
}

func TestRequestIDHonoursClientHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	r.ServeHTTP(w, req)

	require.Equal(t, "client-supplied-id", w.Header().Get(RequestIDHeader))
}

func TestRequestIDsAreUnique(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		seen[w.Header().Get(RequestIDHeader)] = struct{}{}
	}
	require.Len(t, seen, 100)
}
