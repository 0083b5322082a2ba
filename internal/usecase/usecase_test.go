package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/infra/security"
	"github.com/arklim/commerce-platform-auth/internal/repository/memory"
)

var errStoreDown = errors.New("store down")

// failingStore simulates an unavailable backing store.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (*domain.Account, error) {
	return nil, errStoreDown
}

func (failingStore) GetByIdentifier(context.Context, string) (*domain.Account, error) {
	return nil, errStoreDown
}

func (failingStore) Create(context.Context, domain.Account) error {
	return errStoreDown
}

func (failingStore) Put(context.Context, domain.Account) error {
	return errStoreDown
}

func (failingStore) Mutate(context.Context, string, func(*domain.Account) error) (*domain.Account, error) {
	return nil, errStoreDown
}

func (failingStore) All(context.Context) ([]domain.Account, error) {
	return nil, errStoreDown
}

var _ port.AccountStore = failingStore{}

type testEnv struct {
	store    *memory.AccountStore
	eventLog *memory.EventLog
	recorder *EventRecorder
	policy   *security.PasswordPolicy
	auth     *AuthService
	reg      *RegistrationService
	password *PasswordService
	recovery *RecoveryService
	authz    *AuthorizationEngine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewAccountStore()
	eventLog := memory.NewEventLog(domain.EventRetentionLimit)
	recorder := NewEventRecorder(eventLog, nil, nil)
	policy := security.NewPasswordPolicy(security.PasswordPolicyConfig{})
	lockout := domain.NewLockoutPolicy(0, 0)

	return &testEnv{
		store:    store,
		eventLog: eventLog,
		recorder: recorder,
		policy:   policy,
		auth:     NewAuthService(store, lockout, recorder, nil),
		reg:      NewRegistrationService(store, policy, recorder, nil),
		password: NewPasswordService(store, policy, recorder, nil),
		recovery: NewRecoveryService(store, policy, recorder, nil),
		authz:    NewAuthorizationEngine(store, recorder, nil),
	}
}

func (env *testEnv) register(t *testing.T, email, mobile, password string, role domain.Role) domain.Account {
	t.Helper()

	account, err := env.reg.Register(context.Background(), RegisterInput{
		Name:               "Test Person",
		Email:              email,
		Mobile:             mobile,
		Password:           password,
		Role:               string(role),
		SecurityQuestionID: "first_pet",
		SecurityAnswer:     "Rex",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return account
}

func (env *testEnv) mutateAccount(t *testing.T, email string, fn func(*domain.Account)) {
	t.Helper()

	_, err := env.store.Mutate(context.Background(), email, func(acct *domain.Account) error {
		fn(acct)
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate returned error: %v", err)
	}
}

func (env *testEnv) account(t *testing.T, email string) domain.Account {
	t.Helper()

	account, err := env.store.Get(context.Background(), email)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	return *account
}

func (env *testEnv) lastEvent(t *testing.T) domain.SecurityEvent {
	t.Helper()

	events, err := env.eventLog.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected at least one security event")
	}
	return events[0]
}

