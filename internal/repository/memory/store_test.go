package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

func seedAccount(t *testing.T, store *AccountStore, email, mobile string) {
	t.Helper()

	err := store.Put(context.Background(), domain.Account{
		Email:  email,
		Mobile: mobile,
		Name:   "Test Person",
		Role:   domain.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
}

func TestGetByIdentifier(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551234567")

	ctx := context.Background()

	byEmail, err := store.GetByIdentifier(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByIdentifier by email returned error: %v", err)
	}
	byMobile, err := store.GetByIdentifier(ctx, "5551234567")
	if err != nil {
		t.Fatalf("GetByIdentifier by mobile returned error: %v", err)
	}
	if byEmail.Email != byMobile.Email {
		t.Fatal("both identifier fields must resolve to the same account")
	}

	if _, err := store.GetByIdentifier(ctx, "unknown"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRefusesExistingEmail(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551234567")

	err := store.Create(context.Background(), domain.Account{
		Email:  "a@x.com",
		Mobile: "5559876543",
		Name:   "Second Person",
		Role:   domain.RoleAdministrator,
	})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	account, err := store.Get(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if account.Mobile != "5551234567" || account.Role != domain.RoleCustomer {
		t.Fatalf("existing record must be untouched, got %+v", account)
	}
}

func TestCreateRefusesExistingMobile(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551234567")

	err := store.Create(context.Background(), domain.Account{
		Email:  "b@x.com",
		Mobile: "5551234567",
		Name:   "Second Person",
		Role:   domain.RoleCustomer,
	})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPutEnforcesMobileUniqueness(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551234567")

	err := store.Put(context.Background(), domain.Account{
		Email:  "b@x.com",
		Mobile: "5551234567",
	})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPutUpsertsSameAccount(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551234567")

	err := store.Put(context.Background(), domain.Account{
		Email:  "a@x.com",
		Mobile: "5559999999",
		Name:   "Renamed Person",
	})
	if err != nil {
		t.Fatalf("upsert returned error: %v", err)
	}

	// The old mobile is released for reuse.
	if err := store.Put(context.Background(), domain.Account{Email: "b@x.com", Mobile: "5551234567"}); err != nil {
		t.Fatalf("expected released mobile to be reusable, got %v", err)
	}
}

func TestMutateUnknownAccount(t *testing.T) {
	store := NewAccountStore()

	_, err := store.Mutate(context.Background(), "ghost@x.com", func(*domain.Account) error { return nil })
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMutateRollsBackOnError(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551234567")

	boom := errors.New("boom")
	_, err := store.Mutate(context.Background(), "a@x.com", func(acct *domain.Account) error {
		acct.FailedAttempts = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error surfaced, got %v", err)
	}

	account, err := store.Get(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if account.FailedAttempts != 0 {
		t.Fatalf("failed mutation must not persist, got %d", account.FailedAttempts)
	}
}

func TestMutateConcurrentCountsEveryUpdate(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551234567")

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.Mutate(context.Background(), "a@x.com", func(acct *domain.Account) error {
				acct.FailedAttempts++
				return nil
			})
		}()
	}
	wg.Wait()

	account, err := store.Get(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if account.FailedAttempts != writers {
		t.Fatalf("lost update: expected %d attempts, got %d", writers, account.FailedAttempts)
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551234567")

	ctx := context.Background()
	first, err := store.Get(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	first.Name = "Tampered"
	first.CredentialHistory = append(first.CredentialHistory, "junk")

	second, err := store.Get(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if second.Name != "Test Person" || len(second.CredentialHistory) != 0 {
		t.Fatalf("stored account was mutated through a returned copy: %+v", second)
	}
}

func TestAll(t *testing.T) {
	store := NewAccountStore()
	seedAccount(t, store, "a@x.com", "5551111111")
	seedAccount(t, store, "b@x.com", "5552222222")

	accounts, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
}
