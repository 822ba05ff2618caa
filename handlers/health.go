// File: handlers/health.go
package handlers

import (
	"net/http"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest dependency health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo || !status.Redis {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": "ok",
		"mongo":  status.Mongo,
		"redis":  status.Redis,
	})
}
