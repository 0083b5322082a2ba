package port

import (
	"context"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
)

// AccountStore exposes persistence behavior for accounts. It is the single
// owner of account records; services never cache authoritative copies.
//
// Implementations must make every operation appear atomic to concurrent
// callers and must surface repository.ErrUnavailable when the backing medium
// cannot be read or written, so security decisions can fail closed.
type AccountStore interface {
	// Get retrieves an account by its primary identifier (email).
	Get(ctx context.Context, email string) (*domain.Account, error)
	// GetByIdentifier retrieves an account matching either the email or the
	// mobile number.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
	// Create inserts a new account. An existing email or mobile reports
	// repository.ErrConflict; an existing record is never overwritten.
	Create(ctx context.Context, account domain.Account) error
	// Put upserts the account keyed by email. Uniqueness of the mobile
	// number against other accounts is enforced; violations report
	// repository.ErrConflict.
	Put(ctx context.Context, account domain.Account) error
	// Mutate applies fn to the stored account under per-account
	// read-modify-write atomicity and persists the result. Two concurrent
	// mutations of the same account never observe the same pre-update state.
	Mutate(ctx context.Context, email string, fn func(*domain.Account) error) (*domain.Account, error)
	// All returns every stored account.
	All(ctx context.Context) ([]domain.Account, error)
}
