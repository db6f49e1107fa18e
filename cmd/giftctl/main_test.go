package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ACCESS_POLICY_FILE", "")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPolicyCmd_PrintsDefaultTable(t *testing.T) {
	out, err := runCmd(t, "", "policy")
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	if !strings.Contains(out, "/users/**") || !strings.Contains(out, "(no match)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines != 9 {
		t.Fatalf("expected 8 rules plus default, got %d lines:\n%s", lines, out)
	}
}

func TestPolicyCheckCmd(t *testing.T) {
	out, err := runCmd(t, "", "policy", "check", "post", "/users/5", "--authority", "ROLE_USER")
	if err != nil {
		t.Fatalf("policy check: %v", err)
	}
	if strings.TrimSpace(out) != "rule=5 outcome=forbidden" {
		t.Fatalf("unexpected output %q", out)
	}
	out, err = runCmd(t, "", "policy", "check", "GET", "/tags/1")
	if err != nil {
		t.Fatalf("policy check: %v", err)
	}
	if strings.TrimSpace(out) != "rule=2 outcome=allow" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestHashPasswordCmd(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	out, err := runCmd(t, "s3cret\n", "hash-password")
	if err != nil {
		t.Fatalf("hash-password: %v", err)
	}
	hash := strings.TrimSpace(out)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestHashPasswordCmd_EmptyInput(t *testing.T) {
	if _, err := runCmd(t, "", "hash-password"); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestMigrateCmd_RequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	if _, err := runCmd(t, "", "migrate"); err == nil || !strings.Contains(err.Error(), "POSTGRES_DSN") {
		t.Fatalf("expected POSTGRES_DSN error, got %v", err)
	}
}

func TestServeCmd_StopsWithCommandContext(t *testing.T) {
	t.Setenv("GIFTSTORE_ENV", "dev")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("ACCESS_POLICY_FILE", "")
	t.Setenv("LOG_LEVEL", "error")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v\n%s", err, out.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop after its context was cancelled")
	}
}
