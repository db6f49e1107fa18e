package policy

import (
	"errors"
	"net/http"
	"testing"

	"giftstore/internal/domain"
)

func principal(authorities ...string) domain.SecurityContext {
	return domain.Authenticated(domain.User{ID: 1, Username: "alice"}, authorities, domain.Token{ID: 1})
}

func TestDefault_RouteMatrix(t *testing.T) {
	p := Default()
	anon := domain.Anonymous(domain.FailureNoCredentials)
	user := principal("ROLE_USER", "user:create", "user:read")
	admin := principal("ROLE_ADMIN", "admin:create", "admin:delete", "admin:read", "admin:update")
	guest := principal("ROLE_GUEST", "guest:read")

	cases := []struct {
		name   string
		method string
		path   string
		sc     domain.SecurityContext
		want   Outcome
		rule   int
	}{
		{"upload any method", http.MethodDelete, "/upload/a/b", anon, Allow, 0},
		{"upload root", http.MethodPut, "/upload", anon, Allow, 0},
		{"signup", http.MethodPost, "/signup", anon, Allow, 1},
		{"login", http.MethodPost, "/login", anon, Allow, 1},
		{"logout", http.MethodPost, "/logout", anon, Allow, 1},
		{"public tag", http.MethodGet, "/tags/1", anon, Allow, 2},
		{"public tag list", http.MethodGet, "/tags", anon, Allow, 2},
		{"public certificate", http.MethodGet, "/certificates/7/tags", anon, Allow, 2},
		{"orders anonymous", http.MethodGet, "/orders/1", anon, Unauthenticated, 3},
		{"orders user", http.MethodGet, "/orders/1", user, Allow, 3},
		{"orders guest", http.MethodGet, "/orders", guest, Forbidden, 3},
		{"token sessions user", http.MethodGet, "/token/sessions", user, Allow, 3},
		{"create order admin", http.MethodPost, "/orders", admin, Allow, 4},
		{"create order guest", http.MethodPost, "/orders/new", guest, Forbidden, 4},
		{"post users user", http.MethodPost, "/users/5", user, Forbidden, 5},
		{"post users admin", http.MethodPost, "/users/5", admin, Allow, 5},
		{"post users anonymous", http.MethodPost, "/users", anon, Unauthenticated, 5},
		{"delete tag user", http.MethodDelete, "/tags/1", user, Forbidden, 6},
		{"delete tag admin", http.MethodDelete, "/tags/1", admin, Allow, 6},
		{"get users user", http.MethodGet, "/users/5", user, Forbidden, 6},
		{"token authenticate anonymous", http.MethodPost, "/token/authenticate", anon, Unauthenticated, 6},
		{"unknown path anonymous", http.MethodGet, "/nowhere", anon, Unauthenticated, 6},
		{"lowercase method", "get", "/tags/3", anon, Allow, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Decide(tc.method, tc.path, tc.sc)
			if got.Outcome != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.Outcome)
			}
			if got.Rule != tc.rule {
				t.Fatalf("expected rule %d, got %d", tc.rule, got.Rule)
			}
		})
	}
}

func TestPolicy_NoMatchRequiresAuthentication(t *testing.T) {
	p, err := New([]Rule{{Methods: []string{"GET"}, Patterns: []string{"/tags/**"}, Access: AccessPublic}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := p.Decide(http.MethodPost, "/tags/1", domain.Anonymous(domain.FailureNoCredentials))
	if got.Outcome != Unauthenticated || got.Rule != NoRule {
		t.Fatalf("expected unauthenticated by default, got %+v", got)
	}
	got = p.Decide(http.MethodPost, "/tags/1", principal())
	if got.Outcome != Allow || got.Rule != NoRule {
		t.Fatalf("expected allow for authenticated caller, got %+v", got)
	}
}

func TestPolicy_SingleSegmentWildcard(t *testing.T) {
	p := Default()
	anon := domain.Anonymous(domain.FailureNoCredentials)
	if got := p.Match(http.MethodPost, "/upload/file"); got != 0 {
		t.Fatalf("expected /upload/** to match first, got %d", got)
	}
	p2, err := New([]Rule{{Methods: []string{"POST"}, Patterns: []string{"/upload/*"}, Access: AccessPublic}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := p2.Decide(http.MethodPost, "/upload/a", anon); got.Rule != 0 {
		t.Fatalf("expected single segment match, got %+v", got)
	}
	if got := p2.Decide(http.MethodPost, "/upload/a/b", anon); got.Rule != NoRule {
		t.Fatalf("expected nested path to miss, got %+v", got)
	}
}

func TestPolicy_AllMode(t *testing.T) {
	p, err := New([]Rule{{
		Patterns:    []string{"/reports/**"},
		Access:      AccessAuthority,
		Authorities: []string{"admin:read", "admin:update"},
		Mode:        ModeAll,
	}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := p.Decide(http.MethodGet, "/reports/1", principal("admin:read")); got.Outcome != Forbidden {
		t.Fatalf("expected forbidden with partial authorities, got %s", got.Outcome)
	}
	if got := p.Decide(http.MethodGet, "/reports/1", principal("admin:read", "admin:update")); got.Outcome != Allow {
		t.Fatalf("expected allow, got %s", got.Outcome)
	}
}

func TestDecision_Err(t *testing.T) {
	if err := (Decision{Outcome: Allow}).Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := (Decision{Outcome: Unauthenticated}).Err(); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	err := (Decision{Outcome: Forbidden}).Err()
	authzErr, ok := IsAuthzError(err)
	if !ok {
		t.Fatalf("expected authz error, got %v", err)
	}
	if authzErr.Code != "MISSING_AUTHORITY" {
		t.Fatalf("expected MISSING_AUTHORITY, got %s", authzErr.Code)
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden in chain")
	}
}

func TestNew_RejectsInvalidRules(t *testing.T) {
	cases := map[string]Rule{
		"no patterns":           {Access: AccessPublic},
		"relative pattern":      {Patterns: []string{"tags/**"}, Access: AccessPublic},
		"unknown access":        {Patterns: []string{"/x"}, Access: "maybe"},
		"authority without":     {Patterns: []string{"/x"}, Access: AccessAuthority},
		"public with authority": {Patterns: []string{"/x"}, Access: AccessPublic, Authorities: []string{"ROLE_USER"}},
		"bad mode":              {Patterns: []string{"/x"}, Access: AccessAuthority, Authorities: []string{"a"}, Mode: "some"},
	}
	for name, rule := range cases {
		if _, err := New([]Rule{rule}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	rules := DefaultRules()
	p, err := New(rules)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rules[2].Patterns[0] = "/secret/**"
	if got := p.Match(http.MethodGet, "/tags/1"); got != 2 {
		t.Fatalf("expected policy to be unaffected by caller mutation, got %d", got)
	}
}
