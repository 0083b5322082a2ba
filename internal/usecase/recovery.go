package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/infra/logger"
	"github.com/arklim/commerce-platform-auth/internal/infra/security"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

// RecoveryService drives the three-stage forgotten-credential flow:
// identity match, security answer, reset. Sessions are held in process only
// and never persisted, so an abandoned flow leaves no residual state beyond
// the attempts that were logged.
type RecoveryService struct {
	store  port.AccountStore
	policy *security.PasswordPolicy
	events *EventRecorder
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*domain.RecoverySession
}

// NewRecoveryService constructs a RecoveryService instance.
func NewRecoveryService(store port.AccountStore, policy *security.PasswordPolicy, events *EventRecorder, lg *zap.Logger) *RecoveryService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &RecoveryService{
		store:    store,
		policy:   policy,
		events:   events,
		logger:   lg,
		now:      time.Now,
		sessions: make(map[string]*domain.RecoverySession),
	}
}

// SubmitIdentity matches the email and mobile pair against a single account.
// On success a session is created at the security-answer stage and the
// account's security question is returned. The mismatch error never reveals
// which field missed.
func (s *RecoveryService) SubmitIdentity(ctx context.Context, email, mobile string) (domain.RecoverySession, domain.SecurityQuestion, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	mobile = strings.TrimSpace(mobile)

	account, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.events.Record(ctx, domain.EventRecoveryIdentity, email, false, "identity mismatch", nil)
			return domain.RecoverySession{}, domain.SecurityQuestion{}, ErrRecoveryIdentityMismatch
		}
		s.events.Record(ctx, domain.EventInternalFault, email, false, "recovery lookup failed", nil)
		return domain.RecoverySession{}, domain.SecurityQuestion{}, fmt.Errorf("lookup account: %w", err)
	}

	if account.Mobile != mobile {
		s.events.Record(ctx, domain.EventRecoveryIdentity, email, false, "identity mismatch", nil)
		return domain.RecoverySession{}, domain.SecurityQuestion{}, ErrRecoveryIdentityMismatch
	}

	question, ok := domain.SecurityQuestionByID(account.SecurityQuestionID)
	if !ok {
		s.events.Record(ctx, domain.EventInternalFault, email, false, "account has unknown security question", nil)
		return domain.RecoverySession{}, domain.SecurityQuestion{}, fmt.Errorf("account security question %q unknown", account.SecurityQuestionID)
	}

	session := &domain.RecoverySession{
		ID:           uuid.NewString(),
		Stage:        domain.RecoveryStageSecurityAnswer,
		AccountEmail: account.Email,
		QuestionID:   account.SecurityQuestionID,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.events.Record(ctx, domain.EventRecoveryIdentity, email, true, "", nil)
	return *session, question, nil
}

// SubmitAnswer verifies the security answer for a session at the
// security-answer stage. A mismatch keeps the session at its current stage;
// recovery failures never interact with the login lockout counter.
func (s *RecoveryService) SubmitAnswer(ctx context.Context, sessionID, answer string) error {
	session, err := s.sessionAtStage(sessionID, domain.RecoveryStageSecurityAnswer)
	if err != nil {
		return err
	}

	account, err := s.store.Get(ctx, session.AccountEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Cancel(sessionID)
			return ErrRecoverySessionNotFound
		}
		s.events.Record(ctx, domain.EventInternalFault, session.AccountEmail, false, "recovery lookup failed", nil)
		return fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifySecret(normalizeAnswer(answer), account.SecurityAnswerHash)
	if err != nil {
		return fmt.Errorf("verify security answer: %w", err)
	}
	if !ok {
		s.events.Record(ctx, domain.EventRecoveryAnswer, session.AccountEmail, false, "answer mismatch", nil)
		return ErrRecoveryAnswerMismatch
	}

	s.mu.Lock()
	if current, exists := s.sessions[sessionID]; exists {
		current.Stage = domain.RecoveryStageReset
	}
	s.mu.Unlock()

	s.events.Record(ctx, domain.EventRecoveryAnswer, session.AccountEmail, true, "", nil)
	return nil
}

// SubmitReset applies the new credential for a session at the reset stage.
// Policy checks run in order: strength, minimum age, reuse; the first failure
// stops the flow with its specific reason. On success the session is
// destroyed.
func (s *RecoveryService) SubmitReset(ctx context.Context, sessionID, newCredential string) error {
	session, err := s.sessionAtStage(sessionID, domain.RecoveryStageReset)
	if err != nil {
		return err
	}

	_, err = s.store.Mutate(ctx, session.AccountEmail, func(acct *domain.Account) error {
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
			s.Cancel(sessionID)
			return ErrRecoverySessionNotFound
		case errors.Is(err, repository.ErrUnavailable):
			s.events.Record(ctx, domain.EventInternalFault, session.AccountEmail, false, "recovery reset persist failed", nil)
			return fmt.Errorf("reset credential: %w", err)
		default:
			s.events.Record(ctx, domain.EventRecoveryReset, session.AccountEmail, false, err.Error(), nil)
			return err
		}
	}

	s.Cancel(sessionID)

	s.logger.Info("credential reset via recovery",
		zap.String("email", logger.MaskEmail(session.AccountEmail)),
	)
	s.events.Record(ctx, domain.EventRecoveryReset, session.AccountEmail, true, "", nil)
	return nil
}

// Cancel discards a session at any stage. Unknown ids are ignored.
func (s *RecoveryService) Cancel(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *RecoveryService) sessionAtStage(sessionID string, stage domain.RecoveryStage) (domain.RecoverySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.RecoverySession{}, ErrRecoverySessionNotFound
	}
	if session.Stage != stage {
		return domain.RecoverySession{}, fmt.Errorf("%w: at %s, expected %s", ErrRecoveryStage, session.Stage, stage)
	}
	return *session, nil
}
