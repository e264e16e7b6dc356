package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduling-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

// claimsFromContext returns the caller's claims, or nil on public routes.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// callerIs reports whether the authenticated caller holds role.
func callerIs(c *gin.Context, role models.UserRole) (*models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != role {
		return claims, false
	}
	return claims, true
}
