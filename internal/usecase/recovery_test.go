package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/infra/security"
)

func TestRecoveryFullFlow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	ctx := context.Background()

	session, question, err := env.recovery.SubmitIdentity(ctx, "a@x.com", "5551234567")
	if err != nil {
		t.Fatalf("SubmitIdentity returned error: %v", err)
	}
	if session.Stage != domain.RecoveryStageSecurityAnswer {
		t.Fatalf("expected security answer stage, got %s", session.Stage)
	}
	if question.ID != "first_pet" {
		t.Fatalf("expected account's security question, got %s", question.ID)
	}

	if err := env.recovery.SubmitAnswer(ctx, session.ID, "Rex"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if err := env.recovery.SubmitReset(ctx, session.ID, "Newpass2@"); err != nil {
		t.Fatalf("SubmitReset returned error: %v", err)
	}

	outcome, err := env.auth.Authenticate(ctx, "a@x.com", "Newpass2@")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if outcome.Status != domain.AuthSuccess {
		t.Fatalf("expected new credential to authenticate, got %s", outcome.Status)
	}

	// The session is destroyed on success.
	if err := env.recovery.SubmitReset(ctx, session.ID, "Another3#"); !errors.Is(err, ErrRecoverySessionNotFound) {
		t.Fatalf("expected session gone after reset, got %v", err)
	}
}

func TestRecoveryIdentityMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	ctx := context.Background()

	cases := []struct{ email, mobile string }{
		{"a@x.com", "0000000000"},
		{"ghost@x.com", "5551234567"},
	}
	for _, tc := range cases {
		_, _, err := env.recovery.SubmitIdentity(ctx, tc.email, tc.mobile)
		if !errors.Is(err, ErrRecoveryIdentityMismatch) {
			t.Fatalf("expected identity mismatch for %s/%s, got %v", tc.email, tc.mobile, err)
		}
	}
}

func TestRecoveryAnswerWithoutIdentityFails(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	err := env.recovery.SubmitAnswer(context.Background(), "no-such-session", "Rex")
	if !errors.Is(err, ErrRecoverySessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestRecoveryAnswerMismatchKeepsStage(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	ctx := context.Background()
	session, _, err := env.recovery.SubmitIdentity(ctx, "a@x.com", "5551234567")
	if err != nil {
		t.Fatalf("SubmitIdentity returned error: %v", err)
	}

	if err := env.recovery.SubmitAnswer(ctx, session.ID, "wrong answer"); !errors.Is(err, ErrRecoveryAnswerMismatch) {
		t.Fatalf("expected answer mismatch, got %v", err)
	}

	// A mismatch does not touch the login lockout counter.
	stored := env.account(t, "a@x.com")
	if stored.FailedAttempts != 0 || stored.LockedUntil != nil {
		t.Fatalf("recovery failure must not affect lockout state: %+v", stored)
	}

	// The session remains at the answer stage and a retry can succeed.
	if err := env.recovery.SubmitAnswer(ctx, session.ID, "Rex"); err != nil {
		t.Fatalf("retry SubmitAnswer returned error: %v", err)
	}
}

func TestRecoveryResetBeforeAnswerFails(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	ctx := context.Background()
	session, _, err := env.recovery.SubmitIdentity(ctx, "a@x.com", "5551234567")
	if err != nil {
		t.Fatalf("SubmitIdentity returned error: %v", err)
	}

	if err := env.recovery.SubmitReset(ctx, session.ID, "Newpass2@"); !errors.Is(err, ErrRecoveryStage) {
		t.Fatalf("expected stage mismatch, got %v", err)
	}
}

func TestRecoveryResetRejectsReuse(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	ctx := context.Background()
	session, _, err := env.recovery.SubmitIdentity(ctx, "a@x.com", "5551234567")
	if err != nil {
		t.Fatalf("SubmitIdentity returned error: %v", err)
	}
	if err := env.recovery.SubmitAnswer(ctx, session.ID, "Rex"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if err := env.recovery.SubmitReset(ctx, session.ID, "Abcdef1!"); !errors.Is(err, security.ErrCredentialReused) {
		t.Fatalf("expected reuse violation, got %v", err)
	}
}

func TestRecoveryResetFirstChangeExemptFromMinimumAge(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	// The account registered moments ago with no prior change; the minimum
	// age rule must not block its first reset.
	ctx := context.Background()
	session, _, err := env.recovery.SubmitIdentity(ctx, "a@x.com", "5551234567")
	if err != nil {
		t.Fatalf("SubmitIdentity returned error: %v", err)
	}
	if err := env.recovery.SubmitAnswer(ctx, session.ID, "Rex"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if err := env.recovery.SubmitReset(ctx, session.ID, "Newpass2@"); err != nil {
		t.Fatalf("SubmitReset returned error: %v", err)
	}
}

func TestRecoveryResetMinimumAgeEnforcedAfterRotation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	// Simulate a rotation completed an hour ago.
	env.mutateAccount(t, "a@x.com", func(acct *domain.Account) {
		acct.CredentialHistory = []string{acct.CredentialHash}
		acct.CredentialChangedAt = time.Now().Add(-time.Hour)
	})

	ctx := context.Background()
	session, _, err := env.recovery.SubmitIdentity(ctx, "a@x.com", "5551234567")
	if err != nil {
		t.Fatalf("SubmitIdentity returned error: %v", err)
	}
	if err := env.recovery.SubmitAnswer(ctx, session.ID, "Rex"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if err := env.recovery.SubmitReset(ctx, session.ID, "Newpass2@"); !errors.Is(err, security.ErrCredentialTooYoung) {
		t.Fatalf("expected minimum age violation, got %v", err)
	}
}

func TestRecoveryCancelDiscardsSession(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	ctx := context.Background()
	session, _, err := env.recovery.SubmitIdentity(ctx, "a@x.com", "5551234567")
	if err != nil {
		t.Fatalf("SubmitIdentity returned error: %v", err)
	}

	env.recovery.Cancel(session.ID)

	if err := env.recovery.SubmitAnswer(ctx, session.ID, "Rex"); !errors.Is(err, ErrRecoverySessionNotFound) {
		t.Fatalf("expected session not found after cancel, got %v", err)
	}
}
