package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/models"
)

// callerFromContext returns nil for anonymous requests.
func callerFromContext(c *gin.Context) *models.Caller {
	caller := models.CallerFromClaims(middleware.Claims(c))
	if caller == nil {
		return nil
	}
	caller.IP = c.ClientIP()
	caller.Agent = c.GetHeader("User-Agent")
	return caller
}
