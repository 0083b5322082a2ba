package usecase

import (
	"context"
	"testing"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
)

func TestPermissionTable(t *testing.T) {
	env := newTestEnv(t)

	customer := &Identity{Identifier: "c@x.com", Role: domain.RoleCustomer}
	manager := &Identity{Identifier: "pm@x.com", Role: domain.RoleProductManager}
	unknown := &Identity{Identifier: "u@x.com", Role: domain.Role("Overlord")}

	if env.authz.HasPermission(customer, domain.PermissionManageProducts) {
		t.Fatal("customer must not manage products")
	}
	if !env.authz.HasPermission(manager, domain.PermissionManageProducts) {
		t.Fatal("product manager must manage products")
	}
	if env.authz.HasPermission(unknown, domain.PermissionRead) {
		t.Fatal("unknown role must hold no permissions")
	}
	if !env.authz.HasPermission(customer, domain.PermissionViewProducts) {
		t.Fatal("customer must view products")
	}
}

func TestAuthorizeRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []*Identity{
		nil,
		{Identifier: "", Role: domain.RoleCustomer},
		{Identifier: "a@x.com", Role: ""},
	}
	for _, identity := range cases {
		decision := env.authz.Authorize(ctx, identity, nil, []domain.Permission{domain.PermissionRead})
		if decision.Granted {
			t.Fatalf("expected denial for identity %+v", identity)
		}
		if decision.Reason != domain.DenyNotAuthenticated {
			t.Fatalf("expected not_authenticated, got %s", decision.Reason)
		}
	}
}

func TestAuthorizeGrantedNeverWithoutAuthentication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Monotonicity: a decision can only be granted when IsAuthenticated holds.
	identities := []*Identity{
		nil,
		{},
		{Identifier: "a@x.com"},
		{Role: domain.RoleAdministrator},
	}
	for _, identity := range identities {
		if env.authz.IsAuthenticated(identity) {
			t.Fatalf("identity %+v should not be authenticated", identity)
		}
		decision := env.authz.Authorize(ctx, identity, nil, nil)
		if decision.Granted {
			t.Fatalf("granted decision for unauthenticated identity %+v", identity)
		}
	}
}

func TestAuthorizeRoleAndPermissionChecks(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "admin@x.com", "5550000001", "Abcdef1!", domain.RoleAdministrator)
	env.register(t, "cust@x.com", "5550000002", "Abcdef1!", domain.RoleCustomer)

	ctx := context.Background()
	admin := &Identity{Identifier: "admin@x.com", Role: domain.RoleAdministrator}
	customer := &Identity{Identifier: "cust@x.com", Role: domain.RoleCustomer}

	decision := env.authz.Authorize(ctx, admin, []domain.Role{domain.RoleAdministrator}, []domain.Permission{domain.PermissionManageUsers, domain.PermissionDelete})
	if !decision.Granted {
		t.Fatalf("expected grant for admin, got %s", decision.Reason)
	}

	decision = env.authz.Authorize(ctx, customer, []domain.Role{domain.RoleAdministrator}, nil)
	if decision.Granted || decision.Reason != domain.DenyMissingRole {
		t.Fatalf("expected missing_role, got %+v", decision)
	}

	decision = env.authz.Authorize(ctx, customer, nil, []domain.Permission{domain.PermissionRead, domain.PermissionDelete, domain.PermissionManageUsers})
	if decision.Granted || decision.Reason != domain.DenyMissingPermission {
		t.Fatalf("expected missing_permission, got %+v", decision)
	}
	if len(decision.Missing) != 2 {
		t.Fatalf("expected two missing permissions, got %v", decision.Missing)
	}

	event := env.lastEvent(t)
	if event.Kind != domain.EventAccessDenied {
		t.Fatalf("expected access_denied event, got %s", event.Kind)
	}
}

func TestAuthorizeUsesStoredRole(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "5551234567", "Abcdef1!", domain.RoleCustomer)

	// A stale identity claiming a stronger role is overridden by the store.
	stale := &Identity{Identifier: "a@x.com", Role: domain.RoleAdministrator}
	decision := env.authz.Authorize(context.Background(), stale, nil, []domain.Permission{domain.PermissionManageUsers})
	if decision.Granted {
		t.Fatal("stale role claim must not be honoured over the stored role")
	}
}

func TestAuthorizeUnknownAccountDenied(t *testing.T) {
	env := newTestEnv(t)

	ghost := &Identity{Identifier: "ghost@x.com", Role: domain.RoleAdministrator}
	decision := env.authz.Authorize(context.Background(), ghost, nil, []domain.Permission{domain.PermissionRead})
	if decision.Granted || decision.Reason != domain.DenyNotAuthenticated {
		t.Fatalf("expected not_authenticated for unknown account, got %+v", decision)
	}
}

func TestAuthorizeStoreFaultFailsClosed(t *testing.T) {
	env := newTestEnv(t)
	engine := NewAuthorizationEngine(failingStore{}, env.recorder, nil)

	identity := &Identity{Identifier: "a@x.com", Role: domain.RoleAdministrator}
	decision := engine.Authorize(context.Background(), identity, nil, []domain.Permission{domain.PermissionRead})
	if decision.Granted {
		t.Fatal("store fault must never grant")
	}
	if decision.Reason != domain.DenyInternalError {
		t.Fatalf("expected internal_error, got %s", decision.Reason)
	}

	event := env.lastEvent(t)
	if event.Kind != domain.EventInternalFault {
		t.Fatalf("expected internal_fault event, got %s", event.Kind)
	}
}
