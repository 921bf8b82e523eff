// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// MinTokenBytes is the smallest token size accepted by [GenerateSecureToken] (128 bits).
const MinTokenBytes = 16

// GenerateSecureToken returns a URL-safe random token built from length bytes
// of the operating system CSPRNG.
func GenerateSecureToken(length int) (string, error) {
	if length < MinTokenBytes {
		return "", fmt.Errorf("auth: token length %d below minimum %d", length, MinTokenBytes)
	}

	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("auth: failed to read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// HashToken derives the storage key for a token. Raw tokens are never persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
