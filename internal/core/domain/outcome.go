package domain

import "time"

// AuthStatus enumerates authentication outcome variants.
type AuthStatus string

const (
	AuthSuccess AuthStatus = "success"
	AuthFailure AuthStatus = "failure"
	AuthLocked  AuthStatus = "locked"
)

// AuthOutcome is the tagged result of an authentication attempt. Exactly one
// variant is populated: Account on success, Reason on failure, Remaining on locked.
type AuthOutcome struct {
	Status    AuthStatus
	Account   Account
	Reason    string
	Remaining time.Duration
}

// AuthSuccessOutcome builds a success outcome carrying the sanitized account.
func AuthSuccessOutcome(account Account) AuthOutcome {
	return AuthOutcome{Status: AuthSuccess, Account: account.Sanitized()}
}

// AuthFailureOutcome builds a failure outcome with a caller-visible reason.
func AuthFailureOutcome(reason string) AuthOutcome {
	return AuthOutcome{Status: AuthFailure, Reason: reason}
}

// AuthLockedOutcome builds a locked outcome carrying the remaining lock duration.
func AuthLockedOutcome(remaining time.Duration) AuthOutcome {
	if remaining < 0 {
		remaining = 0
	}
	return AuthOutcome{Status: AuthLocked, Remaining: remaining}
}

// DenyReason enumerates why an authorization decision was denied.
type DenyReason string

const (
	DenyNotAuthenticated  DenyReason = "not_authenticated"
	DenyMissingRole       DenyReason = "missing_role"
	DenyMissingPermission DenyReason = "missing_permission"
	DenyInternalError     DenyReason = "internal_error"
)

// Decision is the typed result of an authorization evaluation. Denial is a
// value, never a propagated error: ambiguous internal state resolves to
// Denied(internal_error).
type Decision struct {
	Granted bool
	Reason  DenyReason
	Missing []Permission
}

// Granted builds an allow decision.
func GrantedDecision() Decision {
	return Decision{Granted: true}
}

// DeniedDecision builds a deny decision with the most specific reason known.
func DeniedDecision(reason DenyReason, missing ...Permission) Decision {
	return Decision{Granted: false, Reason: reason, Missing: missing}
}
