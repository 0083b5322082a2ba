package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

// Identity is the authenticated principal an authorization check runs against.
type Identity struct {
	Identifier string
	Role       domain.Role
}

// AuthorizationEngine gates protected operations with fail-closed decisions:
// any ambiguous or erroneous internal state resolves to denial, never access.
type AuthorizationEngine struct {
	store  port.AccountStore
	events *EventRecorder
	logger *zap.Logger
}

// NewAuthorizationEngine constructs an engine. The store is optional; when
// present, Authorize re-reads the account so a role change takes effect on
// the next decision.
func NewAuthorizationEngine(store port.AccountStore, events *EventRecorder, lg *zap.Logger) *AuthorizationEngine {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &AuthorizationEngine{store: store, events: events, logger: lg}
}

// IsAuthenticated reports whether the identity carries both an identifier and
// a role. A missing role is never silently granted.
func (e *AuthorizationEngine) IsAuthenticated(identity *Identity) bool {
	if identity == nil {
		return false
	}
	return strings.TrimSpace(identity.Identifier) != "" && identity.Role != ""
}

// HasRole reports whether the identity's role is one of the required roles.
func (e *AuthorizationEngine) HasRole(identity *Identity, required ...domain.Role) bool {
	if !e.IsAuthenticated(identity) {
		return false
	}
	for _, role := range required {
		if identity.Role == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the identity's role grants the permission.
// Unknown roles hold no permissions.
func (e *AuthorizationEngine) HasPermission(identity *Identity, permission domain.Permission) bool {
	if !e.IsAuthenticated(identity) {
		return false
	}
	return domain.RoleHasPermission(identity.Role, permission)
}

// Authorize evaluates authentication, then roles, then permissions, stopping
// at the first failing step with the most specific reason. Internal faults
// resolve to Denied(internal_error).
func (e *AuthorizationEngine) Authorize(ctx context.Context, identity *Identity, requiredRoles []domain.Role, requiredPermissions []domain.Permission) domain.Decision {
	if !e.IsAuthenticated(identity) {
		e.recordDenial(ctx, identity, domain.DenyNotAuthenticated, nil)
		return domain.DeniedDecision(domain.DenyNotAuthenticated)
	}

	role := identity.Role
	if e.store != nil {
		account, err := e.store.Get(ctx, identity.Identifier)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			e.recordDenial(ctx, identity, domain.DenyNotAuthenticated, nil)
			return domain.DeniedDecision(domain.DenyNotAuthenticated)
		case err != nil:
			e.logger.Error("authorization store lookup failed", zap.Error(err))
			e.events.Record(ctx, domain.EventInternalFault, identity.Identifier, false, "authorization lookup failed", nil)
			return domain.DeniedDecision(domain.DenyInternalError)
		default:
			role = account.Role
		}
	}

	if !domain.ValidRole(role) {
		e.recordDenial(ctx, identity, domain.DenyNotAuthenticated, nil)
		return domain.DeniedDecision(domain.DenyNotAuthenticated)
	}

	if len(requiredRoles) > 0 {
		matched := false
		for _, required := range requiredRoles {
			if role == required {
				matched = true
				break
			}
		}
		if !matched {
			e.recordDenial(ctx, identity, domain.DenyMissingRole, nil)
			return domain.DeniedDecision(domain.DenyMissingRole)
		}
	}

	var missing []domain.Permission
	for _, permission := range requiredPermissions {
		if !domain.RoleHasPermission(role, permission) {
			missing = append(missing, permission)
		}
	}
	if len(missing) > 0 {
		e.recordDenial(ctx, identity, domain.DenyMissingPermission, missing)
		return domain.DeniedDecision(domain.DenyMissingPermission, missing...)
	}

	return domain.GrantedDecision()
}

// recordDenial logs the full reason for audit purposes. Caller-facing
// messages stay generic; the detail lives only on the event log.
func (e *AuthorizationEngine) recordDenial(ctx context.Context, identity *Identity, reason domain.DenyReason, missing []domain.Permission) {
	identifier := ""
	details := map[string]any{"reason": string(reason)}
	if identity != nil {
		identifier = identity.Identifier
		details["role"] = string(identity.Role)
	}
	if len(missing) > 0 {
		perms := make([]string, 0, len(missing))
		for _, p := range missing {
			perms = append(perms, string(p))
		}
		details["missing_permissions"] = perms
	}
	e.events.Record(ctx, domain.EventAccessDenied, identifier, false, string(reason), details)
}
