package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/syriashof/shof/pkg/response"
)

// Health returns a status payload useful for readiness checks.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				dbStatus = "down"
			}
		}

		status := http.StatusOK
		overall := "ok"
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		response.JSON(c, status, gin.H{"status": overall, "database": dbStatus})
	}
}
