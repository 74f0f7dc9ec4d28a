// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth implements the shared-password session gate.

# Password Check

There is a single shared password for the whole app:

	err := auth.CheckPassword(submitted, cfg.AppPassword)

Both sides are hashed before a constant-time comparison, so the length of
the real password does not leak through timing.

# Session Tokens

A successful login issues a signed token valid for 24 hours:

	token, expiresAt, err := auth.IssueSession(secret, time.Now())
	expiresAt, err := auth.ValidateSession(token, secret, time.Now())

Tokens have the form <issuedUnix>.<nonce>.<signature>, where the signature is
an HMAC-SHA256 over the first two parts, URL-safe base64 encoded without
padding. Nothing is stored server-side; changing SESSION_SECRET logs every
client out.

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters

Entity primary keys use UUIDs instead; GenerateID is used for token nonces.

# IP Hashing

Failed logins are logged with a hashed client address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
