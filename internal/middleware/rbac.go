package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

// Self admits a caller whose user ID equals the :id path parameter.
const Self = "SELF"

type rolePolicy struct {
	roles map[models.UserRole]struct{}
	self  bool
}

func newRolePolicy(allowed []string) rolePolicy {
	p := rolePolicy{roles: make(map[models.UserRole]struct{}, len(allowed))}
	for _, a := range allowed {
		if a == Self {
			p.self = true
			continue
		}
		p.roles[models.UserRole(a)] = struct{}{}
	}
	return p
}

func (p rolePolicy) admits(c *gin.Context, claims *models.JWTClaims) bool {
	if _, ok := p.roles[claims.Role]; ok {
		return true
	}
	if p.self {
		id := c.Param("id")
		return id != "" && id == claims.UserID
	}
	return false
}

// ClaimsFrom returns the claims JWT stored on the context, or nil.
func ClaimsFrom(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

// RBAC admits callers holding one of the allowed roles. Self may be listed
// to also admit the owner of the :id resource.
func RBAC(allowed ...string) gin.HandlerFunc {
	policy := newRolePolicy(allowed)
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			abort(c, appErrors.ErrUnauthorized)
			return
		}
		if !policy.admits(c, claims) {
			abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireRoles is RBAC over typed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// AdminOnly admits SUPERADMIN and ADMIN.
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
