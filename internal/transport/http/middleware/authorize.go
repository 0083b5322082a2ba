package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/usecase"
)

const (
	// IdentityHeader carries the caller's primary identifier. Token issuance
	// is out of scope here; upstream gateways terminate sessions and assert
	// the identity. The role claim is advisory only: the engine re-reads the
	// stored role before deciding.
	IdentityHeader = "X-Auth-Identity"
	// RoleHeader carries the caller's asserted role.
	RoleHeader = "X-Auth-Role"

	identityContextKey = "auth_identity"
)

// RequireAuthorization gates a route on a fail-closed authorization decision.
func RequireAuthorization(engine *usecase.AuthorizationEngine, roles []domain.Role, permissions []domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := &usecase.Identity{
			Identifier: c.GetHeader(IdentityHeader),
			Role:       domain.Role(c.GetHeader(RoleHeader)),
		}

		decision := engine.Authorize(c.Request.Context(), identity, roles, permissions)
		if !decision.Granted {
			switch decision.Reason {
			case domain.DenyNotAuthenticated:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			case domain.DenyInternalError:
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authorization unavailable"})
			default:
				// The specific missing role or permission is on the event
				// log; the caller only sees a generic denial.
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			}
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// IdentityFromContext returns the identity the authorization middleware admitted.
func IdentityFromContext(c *gin.Context) *usecase.Identity {
	if value, exists := c.Get(identityContextKey); exists {
		if identity, ok := value.(*usecase.Identity); ok {
			return identity
		}
	}
	return nil
}
