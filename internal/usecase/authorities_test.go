package usecase

import (
	"reflect"
	"testing"

	"giftstore/internal/domain"
)

func TestResolveAuthorities(t *testing.T) {
	role := domain.Role{
		Permission: domain.RoleAdmin,
		Authorities: []domain.Authority{
			domain.AuthorityAdminUpdate,
			domain.AuthorityAdminCreate,
			domain.AuthorityAdminUpdate,
			"",
		},
	}
	got := ResolveAuthorities(role)
	want := []string{"ROLE_ADMIN", "admin:create", "admin:update"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveAuthorities_RoleOnly(t *testing.T) {
	got := ResolveAuthorities(domain.Role{Permission: domain.RoleGuest})
	if !reflect.DeepEqual(got, []string{"ROLE_GUEST"}) {
		t.Fatalf("unexpected authorities %v", got)
	}
}

func TestResolveAuthorities_DoesNotAliasRole(t *testing.T) {
	role := domain.Role{Permission: domain.RoleUser, Authorities: domain.DefaultAuthorities(domain.RoleUser)}
	got := ResolveAuthorities(role)
	got[1] = "tampered"
	if role.Authorities[0] == "tampered" || role.Authorities[1] == "tampered" {
		t.Fatalf("expected role to be untouched")
	}
}
