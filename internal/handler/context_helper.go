package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/middleware"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

// requireClaims returns the authenticated caller, writing a 401 when the
// request carries none.
func requireClaims(c *gin.Context) (*models.JWTClaims, bool) {
	if claims := middleware.ClaimsFrom(c); claims != nil {
		return claims, true
	}
	response.Error(c, appErrors.ErrUnauthorized)
	return nil, false
}
