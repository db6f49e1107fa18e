package policy

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"giftstore/internal/domain"
)

const samplePolicy = `
rules:
  - methods: [GET]
    patterns: ["/tags/**"]
    access: public
  - methods: [POST]
    patterns: ["/token/refresh", "/token/authenticate"]
    access: public
  - patterns: ["/**"]
    access: authority
    authorities: [ROLE_ADMIN]
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(samplePolicy))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	anon := domain.Anonymous(domain.FailureNoCredentials)
	if got := p.Decide(http.MethodPost, "/token/refresh", anon); got.Outcome != Allow || got.Rule != 1 {
		t.Fatalf("expected refresh to be public, got %+v", got)
	}
	rules := p.Rules()
	if rules[2].Mode != ModeAny {
		t.Fatalf("expected mode to default to any, got %q", rules[2].Mode)
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("rules:\n  - patterns: [\"/x\"]\n    access: public\n    role: ADMIN\n"))
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestParse_RejectsEmpty(t *testing.T) {
	if _, err := Parse([]byte("rules: []\n")); err == nil {
		t.Fatalf("expected error for empty policy")
	}
}

func TestLoad_DefaultWhenPathEmpty(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.Rules()) != len(DefaultRules()) {
		t.Fatalf("expected default rule table")
	}
}

func TestLoadFile_RoundTripsDefault(t *testing.T) {
	data, err := Marshal(Default())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	user := principal("ROLE_USER")
	if got := p.Decide(http.MethodPost, "/users/5", user); got.Outcome != Forbidden || got.Rule != 5 {
		t.Fatalf("expected reloaded table to match default, got %+v", got)
	}
}
