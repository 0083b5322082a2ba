package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/infra/logger"
	"github.com/arklim/commerce-platform-auth/internal/infra/security"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

// AuthService verifies identity and credential, applies the lockout policy,
// and records every outcome on the security event log.
type AuthService struct {
	store   port.AccountStore
	lockout domain.LockoutPolicy
	events  *EventRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(store port.AccountStore, lockout domain.LockoutPolicy, events *EventRecorder, lg *zap.Logger) *AuthService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &AuthService{
		store:   store,
		lockout: lockout,
		events:  events,
		logger:  lg,
		now:     time.Now,
	}
}

// Authenticate evaluates one login attempt against either identifier field.
// The returned outcome is always fully populated for exactly one variant. A
// non-nil error means the store failed and the caller must deny.
func (s *AuthService) Authenticate(ctx context.Context, identifier, credential string) (domain.AuthOutcome, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		outcome := domain.AuthFailureOutcome("invalid credentials")
		s.events.Record(ctx, domain.EventLoginFailure, identifier, false, outcome.Reason, nil)
		return outcome, nil
	}

	account, err := s.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No account record exists, so there is no lockout state to
			// update. Lockout therefore cannot rate-limit probing of
			// unregistered identifiers; a known limitation.
			outcome := domain.AuthFailureOutcome("account not found")
			s.events.Record(ctx, domain.EventLoginFailure, identifier, false, outcome.Reason, nil)
			return outcome, nil
		}
		s.events.Record(ctx, domain.EventInternalFault, identifier, false, "account lookup failed", nil)
		return domain.AuthOutcome{}, fmt.Errorf("lookup account: %w", err)
	}

	var outcome domain.AuthOutcome
	_, err = s.store.Mutate(ctx, account.Email, func(acct *domain.Account) error {
		now := s.now()

		// A live lock short-circuits before the credential is compared, so a
		// locked account answers identically for right and wrong passwords.
		if state, remaining := s.lockout.State(*acct, now); state == domain.LockStateLocked {
			outcome = domain.AuthLockedOutcome(remaining)
			return nil
		}

		ok, verifyErr := security.VerifySecret(credential, acct.CredentialHash)
		if verifyErr != nil {
			return fmt.Errorf("verify credential: %w", verifyErr)
		}

		if !ok {
			s.lockout.OnFailure(acct, now)
			if state, remaining := s.lockout.State(*acct, now); state == domain.LockStateLocked {
				outcome = domain.AuthLockedOutcome(remaining)
			} else {
				outcome = domain.AuthFailureOutcome("invalid credentials")
			}
			return nil
		}

		s.lockout.OnSuccess(acct)
		loginAt := now
		acct.LastLogin = &loginAt
		outcome = domain.AuthSuccessOutcome(*acct)
		return nil
	})
	if err != nil {
		s.events.Record(ctx, domain.EventInternalFault, identifier, false, "authentication state update failed", nil)
		return domain.AuthOutcome{}, fmt.Errorf("authenticate %s: %w", logger.MaskEmail(account.Email), err)
	}

	s.recordOutcome(ctx, identifier, outcome)
	return outcome, nil
}

func (s *AuthService) recordOutcome(ctx context.Context, identifier string, outcome domain.AuthOutcome) {
	switch outcome.Status {
	case domain.AuthSuccess:
		s.events.Record(ctx, domain.EventLoginSuccess, identifier, true, "", nil)
	case domain.AuthLocked:
		s.events.Record(ctx, domain.EventLoginLocked, identifier, false, "account locked", map[string]any{
			"remaining_ms": outcome.Remaining.Milliseconds(),
		})
	default:
		s.events.Record(ctx, domain.EventLoginFailure, identifier, false, outcome.Reason, nil)
	}
}
