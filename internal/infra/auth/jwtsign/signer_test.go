package jwtsign

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"giftstore/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := New(testKey)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return s
}

func TestSigner_RoundTrip(t *testing.T) {
	s := newTestSigner(t)
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := domain.TokenClaims{
		ID:        "c1d2",
		Subject:   "alice",
		Kind:      domain.TokenKindAccess,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Hour),
		Version:   3,
	}
	raw, err := s.Sign(in)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	out, err := s.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.ID != in.ID || out.Subject != in.Subject || out.Kind != in.Kind || out.Version != in.Version {
		t.Fatalf("unexpected claims %+v", out)
	}
	if !out.IssuedAt.Equal(in.IssuedAt) || !out.ExpiresAt.Equal(in.ExpiresAt) {
		t.Fatalf("unexpected times %v %v", out.IssuedAt, out.ExpiresAt)
	}
}

func TestSigner_ParseIgnoresTimeWindow(t *testing.T) {
	s := newTestSigner(t)
	past := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	raw, err := s.Sign(domain.TokenClaims{Subject: "alice", IssuedAt: past, ExpiresAt: past.Add(time.Minute)})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.Parse(raw); err != nil {
		t.Fatalf("expected expired token to parse, got %v", err)
	}
}

func TestSigner_Rejects(t *testing.T) {
	s := newTestSigner(t)
	now := time.Now()
	good, err := s.Sign(domain.TokenClaims{Subject: "alice", IssuedAt: now, ExpiresAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	other, _ := New(bytes.Repeat([]byte{0x07}, 32))
	foreign, _ := other.Sign(domain.TokenClaims{Subject: "alice", IssuedAt: now, ExpiresAt: now.Add(time.Hour)})

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testKey)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice", IssuedAt: jwt.NewNumericDate(now)}).SignedString(testKey)

	cases := map[string]string{
		"garbage":     "not.a.jwt",
		"tampered":    good[:strings.LastIndex(good, ".")] + foreign[strings.LastIndex(foreign, "."):],
		"other key":   foreign,
		"hs512":       hs512,
		"alg none":    none,
		"missing exp": noExp,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Parse(raw); !errors.Is(err, domain.ErrTokenMalformed) {
				t.Fatalf("expected ErrTokenMalformed, got %v", err)
			}
		})
	}
}

func TestNew_KeyChecks(t *testing.T) {
	if _, err := New([]byte("short")); err == nil {
		t.Fatalf("expected short key rejected")
	}
	if _, err := NewFromBase64(""); err == nil {
		t.Fatalf("expected empty secret rejected")
	}
	if _, err := NewFromBase64("%%%"); err == nil {
		t.Fatalf("expected invalid base64 rejected")
	}
	if _, err := NewFromBase64(base64.StdEncoding.EncodeToString(testKey)); err != nil {
		t.Fatalf("expected valid secret accepted, got %v", err)
	}

	key := bytes.Clone(testKey)
	s, _ := New(key)
	key[0] = 0
	if s.key[0] != 0x42 {
		t.Fatalf("signer must not alias the caller's key")
	}
}

func TestSigner_RequiresSubject(t *testing.T) {
	s := newTestSigner(t)
	if _, err := s.Sign(domain.TokenClaims{}); err == nil {
		t.Fatalf("expected error without subject")
	}
}
