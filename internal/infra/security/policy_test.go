package security

import (
	"errors"
	"testing"
	"time"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
)

func testPolicy() *PasswordPolicy {
	return NewPasswordPolicy(PasswordPolicyConfig{})
}

func TestValidateStrengthAccepts(t *testing.T) {
	violations := testPolicy().ValidateStrength("Abcdef1!")
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations.Messages())
	}
}

func TestValidateStrengthCollectsAllViolations(t *testing.T) {
	violations := testPolicy().ValidateStrength("abc")

	codes := make(map[string]bool, len(violations))
	for _, v := range violations {
		codes[v.Code] = true
	}

	for _, expected := range []string{"min_length", "uppercase", "digit", "symbol"} {
		if !codes[expected] {
			t.Fatalf("expected %s violation, got codes %v", expected, codes)
		}
	}
	if codes["lowercase"] {
		t.Fatal("did not expect lowercase violation")
	}
}

func TestValidateStrengthSymbolSet(t *testing.T) {
	// Underscore is outside the accepted symbol set.
	violations := testPolicy().ValidateStrength("Abcdef1_")
	found := false
	for _, v := range violations {
		if v.Code == "symbol" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected symbol violation for underscore-only password")
	}

	violations = testPolicy().ValidateStrength("Abcdef1?")
	for _, v := range violations {
		if v.Code == "symbol" {
			t.Fatal("question mark should satisfy the symbol rule")
		}
	}
}

func TestCheckReuse(t *testing.T) {
	currentHash, err := HashSecret("Current1!")
	if err != nil {
		t.Fatalf("HashSecret returned error: %v", err)
	}
	oldHash, err := HashSecret("Previous1!")
	if err != nil {
		t.Fatalf("HashSecret returned error: %v", err)
	}

	account := &domain.Account{
		CredentialHash:    currentHash,
		CredentialHistory: []string{oldHash},
	}

	policy := testPolicy()

	if err := policy.CheckReuse(account, "Current1!"); !errors.Is(err, ErrCredentialReused) {
		t.Fatalf("expected ErrCredentialReused for current credential, got %v", err)
	}
	if err := policy.CheckReuse(account, "Previous1!"); !errors.Is(err, ErrCredentialReused) {
		t.Fatalf("expected ErrCredentialReused for historical credential, got %v", err)
	}
	if err := policy.CheckReuse(account, "Brand&New2"); err != nil {
		t.Fatalf("expected fresh credential to pass, got %v", err)
	}
}

func TestCheckMinimumAge(t *testing.T) {
	now := time.Now()
	policy := testPolicy()

	fresh := &domain.Account{
		CredentialHistory:   []string{"previous"},
		CredentialChangedAt: now.Add(-2 * time.Hour),
	}
	if err := policy.CheckMinimumAge(fresh, now); !errors.Is(err, ErrCredentialTooYoung) {
		t.Fatalf("expected ErrCredentialTooYoung, got %v", err)
	}

	aged := &domain.Account{
		CredentialHistory:   []string{"previous"},
		CredentialChangedAt: now.Add(-25 * time.Hour),
	}
	if err := policy.CheckMinimumAge(aged, now); err != nil {
		t.Fatalf("expected aged credential to pass, got %v", err)
	}

	// An account that never rotated its credential is exempt.
	firstChange := &domain.Account{
		CredentialChangedAt: now.Add(-1 * time.Minute),
	}
	if err := policy.CheckMinimumAge(firstChange, now); err != nil {
		t.Fatalf("expected first change to be exempt, got %v", err)
	}
}

func TestApplyChangeRotatesHistory(t *testing.T) {
	now := time.Now()
	policy := testPolicy()

	account := &domain.Account{}
	if err := policy.ApplyChange(account, "Initial1!", now); err != nil {
		t.Fatalf("ApplyChange returned error: %v", err)
	}
	if len(account.CredentialHistory) != 0 {
		t.Fatalf("initial credential must not seed history, got %d entries", len(account.CredentialHistory))
	}

	previous := account.CredentialHash
	if err := policy.ApplyChange(account, "Rotated2@", now.Add(25*time.Hour)); err != nil {
		t.Fatalf("ApplyChange returned error: %v", err)
	}

	if account.CredentialHash == previous {
		t.Fatal("credential hash must change on rotation")
	}
	if len(account.CredentialHistory) != 1 || account.CredentialHistory[0] != previous {
		t.Fatalf("expected previous hash in history, got %v", account.CredentialHistory)
	}
	if !account.CredentialChangedAt.Equal(now.Add(25 * time.Hour)) {
		t.Fatalf("expected changed-at to advance, got %v", account.CredentialChangedAt)
	}

	ok, err := VerifySecret("Rotated2@", account.CredentialHash)
	if err != nil || !ok {
		t.Fatalf("rotated credential must verify: ok=%v err=%v", ok, err)
	}
}

func TestApplyChangeHistoryBounded(t *testing.T) {
	now := time.Now()
	policy := testPolicy()

	account := &domain.Account{}
	passwords := []string{"Seed0aa!", "Seed1aa!", "Seed2aa!", "Seed3aa!", "Seed4aa!", "Seed5aa!", "Seed6aa!"}
	for i, password := range passwords {
		if err := policy.ApplyChange(account, password, now.Add(time.Duration(i)*25*time.Hour)); err != nil {
			t.Fatalf("ApplyChange returned error: %v", err)
		}
	}

	if len(account.CredentialHistory) != domain.CredentialHistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", domain.CredentialHistoryLimit, len(account.CredentialHistory))
	}

	// The oldest rotations fall out of the window and become reusable.
	if err := policy.CheckReuse(account, "Seed0aa!"); err != nil {
		t.Fatalf("expected evicted credential to be reusable, got %v", err)
	}
	if err := policy.CheckReuse(account, "Seed5aa!"); !errors.Is(err, ErrCredentialReused) {
		t.Fatalf("expected retained credential to be rejected, got %v", err)
	}
}
