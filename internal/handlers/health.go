package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dineqr/dineqr/pkg/response"
)

// Health returns a status payload useful for readiness checks, including a
// database ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		dbStatus := "ok"

		sqlDB, err := db.DB()
		if err != nil {
			status, dbStatus = "degraded", "unavailable"
		} else if err := sqlDB.PingContext(requestContext(c)); err != nil {
			status, dbStatus = "degraded", "unavailable"
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		response.Success(c, code, gin.H{"status": status, "database": dbStatus})
	}
}
