package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/infra/logger"
	"github.com/arklim/commerce-platform-auth/internal/infra/security"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
)

const (
	minNameLength = 2
	maxNameLength = 50
)

// RegisterInput carries the draft account supplied by the caller.
type RegisterInput struct {
	Name               string
	Email              string
	Mobile             string
	Password           string
	Role               string
	SecurityQuestionID string
	SecurityAnswer     string
}

// RegistrationService validates drafts and creates accounts.
type RegistrationService struct {
	store  port.AccountStore
	policy *security.PasswordPolicy
	events *EventRecorder
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(store port.AccountStore, policy *security.PasswordPolicy, events *EventRecorder, lg *zap.Logger) *RegistrationService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &RegistrationService{
		store:  store,
		policy: policy,
		events: events,
		logger: lg,
		now:    time.Now,
	}
}

// Register validates the draft and creates the account. Validation reports
// every violated rule at once; uniqueness of both identifiers is enforced by
// the store.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (domain.Account, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Mobile = strings.TrimSpace(input.Mobile)

	role, verr := s.validate(input)
	if err := verr.ErrOrNil(); err != nil {
		s.events.Record(ctx, domain.EventRegistration, input.Email, false, "validation failed", map[string]any{
			"violations": len(verr.Violations),
		})
		return domain.Account{}, err
	}

	credentialHash, err := security.HashSecret(input.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash credential: %w", err)
	}
	answerHash, err := security.HashSecret(normalizeAnswer(input.SecurityAnswer))
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash security answer: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		Email:               input.Email,
		Mobile:              input.Mobile,
		Name:                input.Name,
		Role:                role,
		CredentialHash:      credentialHash,
		CredentialAlgo:      "argon2id",
		CredentialChangedAt: now,
		SecurityQuestionID:  input.SecurityQuestionID,
		SecurityAnswerHash:  answerHash,
		RegisteredAt:        now,
	}

	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.events.Record(ctx, domain.EventRegistration, input.Email, false, "duplicate identifier", nil)
			return domain.Account{}, ErrAccountExists
		}
		s.events.Record(ctx, domain.EventInternalFault, input.Email, false, "account persist failed", nil)
		return domain.Account{}, fmt.Errorf("persist account: %w", err)
	}

	s.logger.Info("account registered",
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.String("role", string(account.Role)),
	)
	s.events.Record(ctx, domain.EventRegistration, input.Email, true, "", map[string]any{
		"role": string(account.Role),
	})

	return account.Sanitized(), nil
}

func (s *RegistrationService) validate(input RegisterInput) (domain.Role, *ValidationError) {
	verr := &ValidationError{}

	nameLen := len([]rune(input.Name))
	if nameLen < minNameLength || nameLen > maxNameLength {
		verr.Add("name", fmt.Sprintf("name must be between %d and %d characters", minNameLength, maxNameLength))
	}
	if !emailPattern.MatchString(input.Email) {
		verr.Add("email", "email address is not valid")
	}
	if !mobilePattern.MatchString(input.Mobile) {
		verr.Add("mobile", "mobile number must be 10 to 15 digits")
	}

	role := domain.RoleCustomer
	if input.Role != "" {
		parsed, ok := domain.ParseRole(input.Role)
		if !ok {
			verr.Add("role", "role is not recognised")
		} else {
			role = parsed
		}
	}

	if _, ok := domain.SecurityQuestionByID(input.SecurityQuestionID); !ok {
		verr.Add("security_question", "security question is not recognised")
	}
	if strings.TrimSpace(input.SecurityAnswer) == "" {
		verr.Add("security_answer", "security answer is required")
	}

	for _, violation := range s.policy.ValidateStrength(input.Password, input.Email, input.Name) {
		verr.Add("password", violation.Message)
	}

	return role, verr
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
