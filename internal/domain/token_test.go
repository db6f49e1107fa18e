package domain

import (
	"testing"
	"time"
)

func TestToken_State(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	base := Token{Value: "v", TTL: time.Minute, IssuedAt: issued, UserID: 1}

	cases := []struct {
		name  string
		token func() Token
		at    time.Time
		want  TokenState
	}{
		{"fresh", func() Token { return base }, issued, TokenActive},
		{"just before expiry", func() Token { return base }, issued.Add(time.Minute - time.Nanosecond), TokenActive},
		{"at expiry", func() Token { return base }, issued.Add(time.Minute), TokenExpired},
		{"expired flag", func() Token { b := base; b.Expired = true; return b }, issued, TokenExpired},
		{"revoked", func() Token { b := base; b.Revoked = true; return b }, issued, TokenRevoked},
		{"revoked and expired", func() Token { b := base; b.Revoked = true; b.Expired = true; return b }, issued.Add(time.Hour), TokenRevoked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.token().State(tc.at); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
	if !base.ExpiresAt().Equal(issued.Add(time.Minute)) {
		t.Fatalf("unexpected expiry %v", base.ExpiresAt())
	}
}
