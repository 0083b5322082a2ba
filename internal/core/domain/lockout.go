package domain

import "time"

const (
	defaultLockoutThreshold = 5
	defaultLockDuration     = 5 * time.Minute
)

// LockState describes the lockout position of an account at a point in time.
type LockState string

const (
	LockStateUnlocked LockState = "unlocked"
	LockStateLocked   LockState = "locked"
)

// LockoutPolicy centralises the per-account failed-attempt state machine:
// Unlocked(failedCount) → Locked(until) → Unlocked(0). The state lives on the
// Account record itself so that concurrent attempts observe a single counter;
// the store's per-account read-modify-write atomicity prevents lost updates.
type LockoutPolicy struct {
	threshold    int
	lockDuration time.Duration
}

// NewLockoutPolicy constructs a policy, falling back to the default
// five-attempts / five-minute rules when given non-positive values.
func NewLockoutPolicy(threshold int, lockDuration time.Duration) LockoutPolicy {
	if threshold <= 0 {
		threshold = defaultLockoutThreshold
	}
	if lockDuration <= 0 {
		lockDuration = defaultLockDuration
	}
	return LockoutPolicy{threshold: threshold, lockDuration: lockDuration}
}

// Threshold returns the number of consecutive failures that triggers a lock.
func (p LockoutPolicy) Threshold() int {
	return p.threshold
}

// LockDuration returns how long a triggered lock lasts.
func (p LockoutPolicy) LockDuration() time.Duration {
	return p.lockDuration
}

// State reports the account's lock state at the reference time. An expired
// lock reads as Unlocked with a zero counter: the expiry must not mask that a
// new attempt is being evaluated fresh.
func (p LockoutPolicy) State(account Account, now time.Time) (LockState, time.Duration) {
	if account.LockedUntil != nil && now.Before(*account.LockedUntil) {
		return LockStateLocked, account.LockedUntil.Sub(now)
	}
	return LockStateUnlocked, 0
}

// OnFailure applies the failed-attempt transition in place. Callers must only
// invoke it when State reports Unlocked; the counter consumes an expired lock
// before incrementing. Reaching the threshold locks the account and resets the
// counter to zero.
func (p LockoutPolicy) OnFailure(account *Account, now time.Time) {
	if account.LockedUntil != nil && !now.Before(*account.LockedUntil) {
		account.LockedUntil = nil
		account.FailedAttempts = 0
	}

	account.FailedAttempts++
	if account.FailedAttempts >= p.threshold {
		until := now.Add(p.lockDuration)
		account.LockedUntil = &until
		account.FailedAttempts = 0
	}
}

// OnSuccess unconditionally clears lock state and the failure counter.
func (p LockoutPolicy) OnSuccess(account *Account) {
	account.FailedAttempts = 0
	account.LockedUntil = nil
}
