package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/usecase"
)

// AuthzHandler answers authorization queries for other services.
type AuthzHandler struct {
	engine *usecase.AuthorizationEngine
}

// NewAuthzHandler constructs AuthzHandler.
func NewAuthzHandler(engine *usecase.AuthorizationEngine) *AuthzHandler {
	return &AuthzHandler{engine: engine}
}

// RegisterRoutes binds authorization routes.
func (h *AuthzHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/check", h.check)
}

func (h *AuthzHandler) check(c *gin.Context) {
	var req AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid authorization payload"))
		return
	}

	var identity *usecase.Identity
	if req.Identifier != "" {
		identity = &usecase.Identity{Identifier: req.Identifier, Role: domain.Role(req.Role)}
	}

	roles := make([]domain.Role, 0, len(req.RequiredRoles))
	for _, raw := range req.RequiredRoles {
		role, ok := domain.ParseRole(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role: "+raw))
			return
		}
		roles = append(roles, role)
	}

	permissions := make([]domain.Permission, 0, len(req.RequiredPermissions))
	for _, raw := range req.RequiredPermissions {
		permissions = append(permissions, domain.Permission(raw))
	}

	decision := h.engine.Authorize(c.Request.Context(), identity, roles, permissions)

	c.JSON(http.StatusOK, AuthorizeResponse{
		Granted: decision.Granted,
		Reason:  string(decision.Reason),
	})
}
