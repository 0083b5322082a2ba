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
	"github.com/arklim/commerce-platform-auth/internal/infra/security"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

// PasswordService rotates credentials for authenticated callers.
type PasswordService struct {
	store  port.AccountStore
	policy *security.PasswordPolicy
	events *EventRecorder
	logger *zap.Logger
	now    func() time.Time
}

// NewPasswordService constructs a PasswordService instance.
func NewPasswordService(store port.AccountStore, policy *security.PasswordPolicy, events *EventRecorder, lg *zap.Logger) *PasswordService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &PasswordService{
		store:  store,
		policy: policy,
		events: events,
		logger: lg,
		now:    time.Now,
	}
}

// ChangeCredential re-verifies the current credential and then applies the
// policy pipeline: strength, minimum age, reuse. The whole change runs as one
// read-modify-write so concurrent changes cannot interleave.
func (s *PasswordService) ChangeCredential(ctx context.Context, email, currentCredential, newCredential string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.store.Mutate(ctx, email, func(acct *domain.Account) error {
		ok, verifyErr := security.VerifySecret(currentCredential, acct.CredentialHash)
		if verifyErr != nil {
			return fmt.Errorf("verify current credential: %w", verifyErr)
		}
		if !ok {
			return ErrInvalidCredentials
		}

		if violations := s.policy.ValidateStrength(newCredential, acct.Email, acct.Name); len(violations) > 0 {
			verr := &ValidationError{}
			for _, violation := range violations {
				verr.Add("password", violation.Message)
			}
			return verr
		}

		now := s.now().UTC()
		if ageErr := s.policy.CheckMinimumAge(acct, now); ageErr != nil {
			return ageErr
		}
		if reuseErr := s.policy.CheckReuse(acct, newCredential); reuseErr != nil {
			return reuseErr
		}

		return s.policy.ApplyChange(acct, newCredential, now)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.events.Record(ctx, domain.EventPasswordChange, email, false, "account not found", nil)
			return ErrAccountNotFound
		case errors.Is(err, repository.ErrUnavailable):
			s.events.Record(ctx, domain.EventInternalFault, email, false, "credential change persist failed", nil)
			return fmt.Errorf("change credential: %w", err)
		default:
			s.events.Record(ctx, domain.EventPasswordChange, email, false, err.Error(), nil)
			return err
		}
	}

	s.events.Record(ctx, domain.EventPasswordChange, email, true, "", nil)
	return nil
}
