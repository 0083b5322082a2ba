package domain

import "testing"

func TestRoleHasPermission(t *testing.T) {
	cases := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleAdministrator, PermissionManageUsers, true},
		{RoleAdministrator, PermissionManageProducts, false},
		{RoleProductManager, PermissionManageProducts, true},
		{RoleProductManager, PermissionDelete, false},
		{RoleCustomer, PermissionViewProducts, true},
		{RoleCustomer, PermissionWrite, false},
		{Role("Overlord"), PermissionRead, false},
		{Role(""), PermissionRead, false},
	}

	for _, tc := range cases {
		if got := RoleHasPermission(tc.role, tc.permission); got != tc.want {
			t.Fatalf("RoleHasPermission(%s, %s) = %v, want %v", tc.role, tc.permission, got, tc.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if role, ok := ParseRole("ProductManager"); !ok || role != RoleProductManager {
		t.Fatalf("expected ProductManager, got %s/%v", role, ok)
	}
	if _, ok := ParseRole("Overlord"); ok {
		t.Fatal("unknown role must not parse")
	}
}

func TestPermissionsForRoleCopies(t *testing.T) {
	perms := PermissionsForRole(RoleCustomer)
	if len(perms) != 2 {
		t.Fatalf("expected 2 customer permissions, got %d", len(perms))
	}

	perms[0] = Permission("tampered")
	if RoleHasPermission(RoleCustomer, Permission("tampered")) {
		t.Fatal("mutating the returned slice must not affect the table")
	}
}

func TestPushCredentialHistoryFIFO(t *testing.T) {
	account := Account{}
	for i := 0; i < 7; i++ {
		account.PushCredentialHistory(string(rune('a' + i)))
	}

	if len(account.CredentialHistory) != CredentialHistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", CredentialHistoryLimit, len(account.CredentialHistory))
	}
	if account.CredentialHistory[0] != "c" {
		t.Fatalf("expected oldest retained entry c, got %s", account.CredentialHistory[0])
	}
	if account.CredentialHistory[4] != "g" {
		t.Fatalf("expected newest entry g, got %s", account.CredentialHistory[4])
	}
}

func TestSanitizedStripsSecrets(t *testing.T) {
	account := Account{
		Email:              "a@x.com",
		CredentialHash:     "hash",
		CredentialHistory:  []string{"old"},
		SecurityAnswerHash: "answer",
	}

	clean := account.Sanitized()
	if clean.CredentialHash != "" || clean.SecurityAnswerHash != "" || clean.CredentialHistory != nil {
		t.Fatalf("sanitized account still carries secrets: %+v", clean)
	}
	if clean.Email != "a@x.com" {
		t.Fatal("sanitized account must keep public fields")
	}
}

func TestSecurityQuestionCatalog(t *testing.T) {
	questions := SecurityQuestions()
	if len(questions) == 0 {
		t.Fatal("expected a non-empty question catalog")
	}

	if _, ok := SecurityQuestionByID("first_pet"); !ok {
		t.Fatal("expected first_pet question to exist")
	}
	if _, ok := SecurityQuestionByID("nonsense"); ok {
		t.Fatal("unknown question id must not resolve")
	}
}
