package domain

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSecurityContext(t *testing.T) {
	anon := Anonymous(FailureTokenRevoked)
	if anon.IsAuthenticated() || anon.Reason != FailureTokenRevoked {
		t.Fatalf("unexpected anonymous context %+v", anon)
	}
	// anonymous contexts never hold authorities
	anon.Authorities = []string{"ROLE_ADMIN"}
	if anon.HasAuthority("ROLE_ADMIN") {
		t.Fatalf("anonymous context must not report authorities")
	}

	sc := Authenticated(User{ID: 7, Username: "alice"}, []string{"ROLE_USER", "user:read"}, Token{ID: 3})
	if !sc.IsAuthenticated() || !sc.HasAuthority("user:read") || sc.HasAuthority("ROLE_ADMIN") {
		t.Fatalf("unexpected authenticated context %+v", sc)
	}
}

func TestSecurityContextFrom(t *testing.T) {
	if sc := SecurityContextFrom(context.Background()); sc.IsAuthenticated() || sc.Reason != FailureNoCredentials {
		t.Fatalf("expected anonymous default, got %+v", sc)
	}
	want := Authenticated(User{ID: 1, Username: "bob"}, nil, Token{})
	ctx := WithSecurityContext(context.Background(), want)
	if got := SecurityContextFrom(ctx); got.Principal.Username != "bob" || !got.IsAuthenticated() {
		t.Fatalf("unexpected context %+v", got)
	}
}

func TestUser_LogValueOmitsHash(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	u := User{ID: 2, Username: "carol", PasswordHash: "$2a$10$secret", Role: Role{Permission: RoleUser}}
	logger.Info("x", slog.Any("user", u))
	out := buf.String()
	if strings.Contains(out, "secret") {
		t.Fatalf("password hash leaked into log: %s", out)
	}
	if !strings.Contains(out, `"username":"carol"`) || !strings.Contains(out, `"role":"USER"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestRoleType_Valid(t *testing.T) {
	for _, r := range []RoleType{RoleGuest, RoleUser, RoleAdmin} {
		if !r.Valid() || len(DefaultAuthorities(r)) == 0 {
			t.Fatalf("expected %s to be a seeded role", r)
		}
	}
	if RoleType("OWNER").Valid() || DefaultAuthorities("OWNER") != nil {
		t.Fatalf("unexpected role accepted")
	}
}
