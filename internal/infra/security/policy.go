package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
)

const (
	defaultMinPasswordLength = 8
	defaultMinCredentialAge  = 24 * time.Hour
)

var (
	// ErrCredentialReused reports a new credential matching the current one
	// or one of the retained previous credentials.
	ErrCredentialReused = errors.New("credential matches a recently used value")

	// ErrCredentialTooYoung reports a change attempted before the minimum
	// credential age has elapsed.
	ErrCredentialTooYoung = errors.New("credential was changed too recently")
)

// PasswordPolicyConfig tunes the credential policy. Zero values fall back to
// the defaults; MinScore zero disables the strength estimator.
type PasswordPolicyConfig struct {
	MinLength int
	MinAge    time.Duration
	MinScore  int
}

// PasswordPolicy bundles the strength rules with the reuse and minimum-age
// checks that guard credential changes.
type PasswordPolicy struct {
	minAge   time.Duration
	minScore int
	factory  func(inputs []string) *PasswordValidator
}

// NewPasswordPolicy builds a policy from configuration.
func NewPasswordPolicy(cfg PasswordPolicyConfig) *PasswordPolicy {
	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = defaultMinPasswordLength
	}
	minAge := cfg.MinAge
	if minAge <= 0 {
		minAge = defaultMinCredentialAge
	}

	return &PasswordPolicy{
		minAge:   minAge,
		minScore: cfg.MinScore,
		factory: func(inputs []string) *PasswordValidator {
			return NewPasswordValidator(
				MinLengthRule(minLength),
				RequireUppercaseRule(),
				RequireLowercaseRule(),
				RequireDigitRule(),
				RequireSymbolRule(),
				RequirePasswordStrengthRule(cfg.MinScore, inputs...),
			)
		},
	}
}

// ValidateStrength runs every strength rule and returns the full set of
// violations, or nil when the password passes.
func (p *PasswordPolicy) ValidateStrength(password string, userInputs ...string) PasswordValidationErrors {
	if p == nil || p.factory == nil {
		return PasswordValidationErrors{{
			Code:    "policy_missing",
			Message: "password policy not configured",
		}}
	}

	inputs := make([]string, 0, len(userInputs))
	for _, input := range userInputs {
		if input != "" {
			inputs = append(inputs, input)
		}
	}

	return p.factory(inputs).ValidateAll(password)
}

// CheckReuse verifies the candidate password against the account's current
// credential and its retained history. A match on any of them fails.
func (p *PasswordPolicy) CheckReuse(account *domain.Account, password string) error {
	if account == nil {
		return fmt.Errorf("check reuse: account is nil")
	}

	hashes := make([]string, 0, len(account.CredentialHistory)+1)
	if account.CredentialHash != "" {
		hashes = append(hashes, account.CredentialHash)
	}
	hashes = append(hashes, account.CredentialHistory...)

	for _, hash := range hashes {
		match, err := VerifySecret(password, hash)
		if err != nil {
			return fmt.Errorf("check reuse: %w", err)
		}
		if match {
			return ErrCredentialReused
		}
	}

	return nil
}

// CheckMinimumAge rejects a change when the current credential is younger
// than the minimum age. Accounts that have never rotated their credential
// are exempt, so a first change is always allowed.
func (p *PasswordPolicy) CheckMinimumAge(account *domain.Account, now time.Time) error {
	if account == nil {
		return fmt.Errorf("check minimum age: account is nil")
	}
	if len(account.CredentialHistory) == 0 {
		return nil
	}
	if account.CredentialChangedAt.IsZero() {
		return nil
	}

	if elapsed := now.Sub(account.CredentialChangedAt); elapsed < p.minAge {
		return fmt.Errorf("%w: retry in %s", ErrCredentialTooYoung, (p.minAge - elapsed).Round(time.Second))
	}
	return nil
}

// ApplyChange hashes the new password and rotates it into the account,
// pushing the previous credential onto the bounded history.
func (p *PasswordPolicy) ApplyChange(account *domain.Account, password string, now time.Time) error {
	if account == nil {
		return fmt.Errorf("apply change: account is nil")
	}

	hash, err := HashSecret(password)
	if err != nil {
		return fmt.Errorf("apply change: %w", err)
	}

	if account.CredentialHash != "" {
		account.PushCredentialHistory(account.CredentialHash)
	}
	account.CredentialHash = hash
	account.CredentialAlgo = argon2Variant
	account.CredentialChangedAt = now

	return nil
}
