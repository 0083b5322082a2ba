package domain

import "time"

// EventRetentionLimit bounds how many security events the log retains. Oldest
// entries are dropped atomically with each append.
const EventRetentionLimit = 100

// EventKind enumerates the recorded security event types.
type EventKind string

const (
	EventLoginSuccess     EventKind = "login_success"
	EventLoginFailure     EventKind = "login_failure"
	EventLoginLocked      EventKind = "login_locked"
	EventRegistration     EventKind = "registration"
	EventPasswordChange   EventKind = "password_change"
	EventRecoveryIdentity EventKind = "recovery_identity"
	EventRecoveryAnswer   EventKind = "recovery_answer"
	EventRecoveryReset    EventKind = "recovery_reset"
	EventAccessDenied     EventKind = "access_denied"
	EventInternalFault    EventKind = "internal_fault"
)

// SecurityEvent records a single authentication or authorization outcome.
// Identifier values are masked before the event leaves the core.
type SecurityEvent struct {
	ID         string
	Kind       EventKind
	At         time.Time
	Identifier string
	Success    bool
	Reason     string
	Details    map[string]any
}
