package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

// AccountStore keeps accounts in process memory. It backs development mode
// and tests; a single mutex makes every operation, including Mutate's
// read-modify-write, linearizable per account.
type AccountStore struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	byMobile map[string]string
}

// NewAccountStore constructs an empty in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]domain.Account),
		byMobile: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Get retrieves an account by email.
func (s *AccountStore) Get(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := cloneAccount(account)
	return &copied, nil
}

// GetByIdentifier retrieves an account by email or mobile number.
func (s *AccountStore) GetByIdentifier(_ context.Context, identifier string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(identifier)
	if account, ok := s.accounts[key]; ok {
		copied := cloneAccount(account)
		return &copied, nil
	}

	if email, ok := s.byMobile[strings.TrimSpace(identifier)]; ok {
		if account, ok := s.accounts[email]; ok {
			copied := cloneAccount(account)
			return &copied, nil
		}
	}

	return nil, repository.ErrNotFound
}

// Create inserts the account, refusing to touch an existing record.
func (s *AccountStore) Create(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(account.Email)
	mobile := strings.TrimSpace(account.Mobile)

	if _, ok := s.accounts[key]; ok {
		return repository.ErrConflict
	}
	if _, ok := s.byMobile[mobile]; ok {
		return repository.ErrConflict
	}

	s.accounts[key] = cloneAccount(account)
	if mobile != "" {
		s.byMobile[mobile] = key
	}
	return nil
}

// Put upserts the account, enforcing uniqueness of email and mobile.
func (s *AccountStore) Put(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(account.Email)
	mobile := strings.TrimSpace(account.Mobile)

	if owner, ok := s.byMobile[mobile]; ok && owner != key {
		return repository.ErrConflict
	}

	if existing, ok := s.accounts[key]; ok && existing.Mobile != mobile {
		delete(s.byMobile, existing.Mobile)
	}

	s.accounts[key] = cloneAccount(account)
	if mobile != "" {
		s.byMobile[mobile] = key
	}
	return nil
}

// Mutate applies fn to the stored account under the store lock and persists
// the result, so concurrent mutations never lose an update.
func (s *AccountStore) Mutate(_ context.Context, email string, fn func(*domain.Account) error) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	account, ok := s.accounts[key]
	if !ok {
		return nil, repository.ErrNotFound
	}

	working := cloneAccount(account)
	if err := fn(&working); err != nil {
		return nil, err
	}

	if working.Mobile != account.Mobile {
		if owner, exists := s.byMobile[working.Mobile]; exists && owner != key {
			return nil, repository.ErrConflict
		}
		delete(s.byMobile, account.Mobile)
		if working.Mobile != "" {
			s.byMobile[working.Mobile] = key
		}
	}

	s.accounts[key] = cloneAccount(working)
	return &working, nil
}

// All returns every stored account.
func (s *AccountStore) All(_ context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, cloneAccount(account))
	}
	return out, nil
}

func cloneAccount(account domain.Account) domain.Account {
	copied := account
	if account.CredentialHistory != nil {
		copied.CredentialHistory = append([]string(nil), account.CredentialHistory...)
	}
	if account.LockedUntil != nil {
		until := *account.LockedUntil
		copied.LockedUntil = &until
	}
	if account.LastLogin != nil {
		last := *account.LastLogin
		copied.LastLogin = &last
	}
	return copied
}

var _ port.AccountStore = (*AccountStore)(nil)
