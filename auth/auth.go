// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 24 * time.Hour

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidSession  = errors.New("invalid session token")
	ErrSessionExpired  = errors.New("session expired")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CheckPassword compares the submitted password against the shared one
// in constant time.
func CheckPassword(submitted, expected string) error {
	a := sha256.Sum256([]byte(submitted))
	b := sha256.Sum256([]byte(expected))
	if !hmac.Equal(a[:], b[:]) {
		return ErrInvalidPassword
	}
	return nil
}

// IssueSession creates a signed session token: <issuedUnix>.<nonce>.<sig>
func IssueSession(secret string, now time.Time) (token string, expiresAt time.Time, err error) {
	nonce, err := GenerateID(8)
	if err != nil {
		return "", time.Time{}, err
	}
	payload := strconv.FormatInt(now.Unix(), 10) + "." + nonce
	return payload + "." + sign(payload, secret), now.Add(SessionTTL), nil
}

// ValidateSession checks the signature and the 24-hour expiry window.
// It returns the expiry time of a valid token.
func ValidateSession(token, secret string, now time.Time) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, ErrInvalidSession
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(sign(payload, secret))) {
		return time.Time{}, ErrInvalidSession
	}

	issued, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, ErrInvalidSession
	}

	expiresAt := time.Unix(issued, 0).Add(SessionTTL)
	if !now.Before(expiresAt) {
		return time.Time{}, ErrSessionExpired
	}
	return expiresAt, nil
}

func sign(payload, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for log correlation
	return hex.EncodeToString(sum[:8])
}
