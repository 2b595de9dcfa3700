package main

import (
	"testing"
	"time"
)

func TestIssueAndVerifyToken(t *testing.T) {
	secret := "test-secret"
	ident := identity{ID: 42, Username: "alice", Email: "alice@example.com", Role: roleAdmin}

	token, err := issueToken(secret, time.Hour, ident)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	got, err := verifyToken(secret, token)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if *got != ident {
		t.Errorf("got identity %+v, want %+v", *got, ident)
	}
}

func TestIssueTokenDefaultsRole(t *testing.T) {
	token, err := issueToken("s", time.Hour, identity{ID: 1, Username: "bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	got, err := verifyToken("s", token)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if got.Role != roleUser {
		t.Errorf("got role %q, want %q", got.Role, roleUser)
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	secret := "test-secret"
	ident := identity{ID: 7, Username: "carol", Email: "carol@example.com", Role: roleUser}

	expired, err := issueToken(secret, -time.Hour, ident)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	zeroExpiry, err := issueToken(secret, 0, ident)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	wrongSecret, err := issueToken("other-secret", time.Hour, ident)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"zero expiry", zeroExpiry},
		{"wrong secret", wrongSecret},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := verifyToken(secret, tc.token); err == nil {
				t.Error("verifyToken accepted an invalid token")
			}
		})
	}
}
