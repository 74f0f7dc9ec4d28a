// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		expected  string
		wantErr   bool
	}{
		{"match", "hunter2", "hunter2", false},
		{"mismatch", "hunter3", "hunter2", true},
		{"empty submitted", "", "hunter2", true},
		{"prefix only", "hunter", "hunter2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.submitted, tt.expected)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPassword) {
				t.Errorf("expected ErrInvalidPassword, got %v", err)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	secret := "session-secret"
	issuedAt := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	token, expiresAt, err := IssueSession(secret, issuedAt)
	if err != nil {
		t.Fatalf("IssueSession() error = %v", err)
	}
	if !expiresAt.Equal(issuedAt.Add(24 * time.Hour)) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, issuedAt.Add(24*time.Hour))
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token should have three parts, got %q", token)
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		now     time.Time
		wantErr error
	}{
		{"fresh token", token, secret, issuedAt.Add(time.Minute), nil},
		{"just before expiry", token, secret, issuedAt.Add(24*time.Hour - time.Second), nil},
		{"at expiry", token, secret, issuedAt.Add(24 * time.Hour), ErrSessionExpired},
		{"wrong secret", token, "other", issuedAt, ErrInvalidSession},
		{"malformed", "not-a-token", secret, issuedAt, ErrInvalidSession},
		{"tampered timestamp", "9999999999" + token[strings.Index(token, "."):], secret, issuedAt, ErrInvalidSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSession(tt.token, tt.secret, tt.now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSession() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("192.168.1.1", "salt")
	h2 := HashIP("192.168.1.1", "salt")
	h3 := HashIP("192.168.1.2", "salt")

	if h1 != h2 {
		t.Error("HashIP() is not deterministic")
	}
	if h1 == h3 {
		t.Error("HashIP() produced same hash for different IPs")
	}
	if len(h1) != 16 {
		t.Errorf("HashIP() length = %d, want 16", len(h1))
	}
}
