package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
	TraceID    string   `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary is the public view of an account returned by the API.
type AccountSummary struct {
	Email        string      `json:"email"`
	Mobile       string      `json:"mobile"`
	Name         string      `json:"name"`
	Role         domain.Role `json:"role"`
	RegisteredAt time.Time   `json:"registered_at"`
	LastLogin    *time.Time  `json:"last_login,omitempty"`
}

// NewAccountSummary maps a sanitized account onto the API view.
func NewAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		Email:        account.Email,
		Mobile:       account.Mobile,
		Name:         account.Name,
		Role:         account.Role,
		RegisteredAt: account.RegisteredAt,
		LastLogin:    account.LastLogin,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse reports the authentication outcome.
type LoginResponse struct {
	Status      string          `json:"status"`
	Account     *AccountSummary `json:"account,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	RemainingMS int64           `json:"remaining_ms,omitempty"`
}

// RegistrationRequest defines the payload for the register endpoint.
type RegistrationRequest struct {
	Name               string `json:"name" binding:"required"`
	Email              string `json:"email" binding:"required"`
	Mobile             string `json:"mobile" binding:"required"`
	Password           string `json:"password" binding:"required"`
	Role               string `json:"role"`
	SecurityQuestionID string `json:"security_question_id" binding:"required"`
	SecurityAnswer     string `json:"security_answer" binding:"required"`
}

// SecurityQuestionView is one catalog entry offered at registration.
type SecurityQuestionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ChangePasswordRequest defines the payload for credential changes.
type ChangePasswordRequest struct {
	Email           string `json:"email" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// RecoveryIdentityRequest starts a recovery flow.
type RecoveryIdentityRequest struct {
	Email  string `json:"email" binding:"required"`
	Mobile string `json:"mobile" binding:"required"`
}

// RecoveryIdentityResponse returns the session and the account's question.
type RecoveryIdentityResponse struct {
	SessionID string               `json:"session_id"`
	Question  SecurityQuestionView `json:"question"`
}

// RecoveryAnswerRequest submits the security answer for a session.
type RecoveryAnswerRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Answer    string `json:"answer" binding:"required"`
}

// RecoveryResetRequest submits the new credential for a session.
type RecoveryResetRequest struct {
	SessionID   string `json:"session_id" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// RecoveryCancelRequest abandons a session.
type RecoveryCancelRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// AuthorizeRequest asks for an authorization decision.
type AuthorizeRequest struct {
	Identifier          string   `json:"identifier"`
	Role                string   `json:"role"`
	RequiredRoles       []string `json:"required_roles"`
	RequiredPermissions []string `json:"required_permissions"`
}

// AuthorizeResponse reports the decision. Denial reasons are generic; the
// detail is on the security event log.
type AuthorizeResponse struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

// SecurityEventView is the audit view of one logged event.
type SecurityEventView struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	At         time.Time      `json:"at"`
	Identifier string         `json:"identifier,omitempty"`
	Success    bool           `json:"success"`
	Reason     string         `json:"reason,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
