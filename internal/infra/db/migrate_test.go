package db

import "testing"

func TestMigrationNames_Sorted(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migration names: %v", err)
	}
	if len(names) == 0 || names[0] != "0001_init.sql" {
		t.Fatalf("expected 0001_init.sql first, got %v", names)
	}
}

func TestRepositories_NoDB(t *testing.T) {
	store := NewStoreFromDB(nil)
	if store.Enabled() {
		t.Fatalf("expected store without db to be disabled")
	}
	if _, err := store.Users.FindByUsername(t.Context(), "alice"); err != errDBUnavailable {
		t.Fatalf("expected errDBUnavailable, got %v", err)
	}
	if _, err := store.Tokens.RevokeAllForUser(t.Context(), 1); err != errDBUnavailable {
		t.Fatalf("expected errDBUnavailable, got %v", err)
	}
	if _, err := Migrate(t.Context(), nil); err != errDBUnavailable {
		t.Fatalf("expected errDBUnavailable, got %v", err)
	}
}
