package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

const accountsTable = "auth.accounts"

var accountColumns = []string{
	"email",
	"mobile",
	"name",
	"role",
	"credential_hash",
	"credential_algo",
	"credential_history",
	"credential_changed_at",
	"security_question_id",
	"security_answer_hash",
	"failed_attempts",
	"locked_until",
	"registered_at",
	"last_login",
}

// AccountStore implements port.AccountStore using PostgreSQL. Mutate runs the
// read step with SELECT ... FOR UPDATE inside a transaction so concurrent
// lockout transitions against one account serialize instead of losing updates.
type AccountStore struct {
	db      txStarter
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// dbHandle combines the two capabilities repositories need from a pool.
type dbHandle interface {
	pgExecutor
	txStarter
}

// NewAccountStore wires a PostgreSQL-backed account store.
func NewAccountStore(db dbHandle) *AccountStore {
	return &AccountStore{
		db:      db,
		exec:    db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get retrieves an account by email.
func (s *AccountStore) Get(ctx context.Context, email string) (*domain.Account, error) {
	return s.getWhere(ctx, s.exec, squirrel.Eq{"email": email}, false)
}

// GetByIdentifier retrieves an account by email or mobile number.
func (s *AccountStore) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	return s.getWhere(ctx, s.exec, squirrel.Or{
		squirrel.Eq{"email": identifier},
		squirrel.Eq{"mobile": identifier},
	}, false)
}

func (s *AccountStore) getWhere(ctx context.Context, exec pgExecutor, pred any, forUpdate bool) (*domain.Account, error) {
	query := s.builder.
		Select(accountColumns...).
		From(accountsTable).
		Where(pred).
		Limit(1)
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := exec.QueryRow(ctx, stmt, args...)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeFault("scan account", err)
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account     domain.Account
		history     []string
		lockedUntil *time.Time
		lastLogin   *time.Time
		role        string
	)

	if err := row.Scan(
		&account.Email,
		&account.Mobile,
		&account.Name,
		&role,
		&account.CredentialHash,
		&account.CredentialAlgo,
		&history,
		&account.CredentialChangedAt,
		&account.SecurityQuestionID,
		&account.SecurityAnswerHash,
		&account.FailedAttempts,
		&lockedUntil,
		&account.RegisteredAt,
		&lastLogin,
	); err != nil {
		return nil, err
	}

	account.Role = domain.Role(role)
	account.CredentialHistory = history
	account.LockedUntil = lockedUntil
	account.LastLogin = lastLogin

	return &account, nil
}

// Create inserts a new account. The unique indexes on email and mobile raise
// 23505 for duplicates, which maps to repository.ErrConflict; an existing row
// is never overwritten.
func (s *AccountStore) Create(ctx context.Context, account domain.Account) error {
	query := s.builder.Insert(accountsTable).
		Columns(accountColumns...).
		Values(accountValues(account)...)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := s.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrConflict
		}
		return storeFault("insert account", err)
	}

	return nil
}

func accountValues(account domain.Account) []any {
	return []any{
		account.Email,
		account.Mobile,
		account.Name,
		string(account.Role),
		account.CredentialHash,
		account.CredentialAlgo,
		account.CredentialHistory,
		account.CredentialChangedAt,
		account.SecurityQuestionID,
		account.SecurityAnswerHash,
		account.FailedAttempts,
		account.LockedUntil,
		account.RegisteredAt,
		account.LastLogin,
	}
}

// Put upserts the account keyed by email.
func (s *AccountStore) Put(ctx context.Context, account domain.Account) error {
	return s.put(ctx, s.exec, account)
}

func (s *AccountStore) put(ctx context.Context, exec pgExecutor, account domain.Account) error {
	stmt, args, err := s.builder.Insert(accountsTable).
		Columns(accountColumns...).
		Values(accountValues(account)...).
		Suffix(`ON CONFLICT (email) DO UPDATE SET
			mobile = EXCLUDED.mobile,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			credential_hash = EXCLUDED.credential_hash,
			credential_algo = EXCLUDED.credential_algo,
			credential_history = EXCLUDED.credential_history,
			credential_changed_at = EXCLUDED.credential_changed_at,
			security_question_id = EXCLUDED.security_question_id,
			security_answer_hash = EXCLUDED.security_answer_hash,
			failed_attempts = EXCLUDED.failed_attempts,
			locked_until = EXCLUDED.locked_until,
			last_login = EXCLUDED.last_login`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert account sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrConflict
		}
		return storeFault("upsert account", err)
	}

	return nil
}

// Mutate applies fn to the account under a row lock and persists the result.
func (s *AccountStore) Mutate(ctx context.Context, email string, fn func(*domain.Account) error) (*domain.Account, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storeFault("begin mutate tx", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	account, err := s.getWhere(ctx, tx, squirrel.Eq{"email": email}, true)
	if err != nil {
		return nil, err
	}

	if err := fn(account); err != nil {
		return nil, err
	}

	if err := s.put(ctx, tx, *account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeFault("commit mutate tx", err)
	}

	return account, nil
}

// All returns every stored account ordered by registration time.
func (s *AccountStore) All(ctx context.Context) ([]domain.Account, error) {
	stmt, args, err := s.builder.
		Select(accountColumns...).
		From(accountsTable).
		OrderBy("registered_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list accounts sql: %w", err)
	}

	rows, err := s.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, storeFault("query accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storeFault("scan account row", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, storeFault("iterate accounts", err)
	}

	return accounts, nil
}

// storeFault tags infrastructure errors so security decisions can fail closed
// on errors.Is(err, repository.ErrUnavailable).
func storeFault(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, repository.ErrUnavailable, err)
}

var _ port.AccountStore = (*AccountStore)(nil)
