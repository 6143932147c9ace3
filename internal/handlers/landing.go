package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Landing describes the API to unauthenticated visitors.
func Landing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "crm-api",
		"links": gin.H{
			"signup": "/api/auth/signup",
			"login":  "/api/auth/login",
			"health": "/health",
		},
	})
}

// Health reports that the server is up.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
