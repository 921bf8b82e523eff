// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when no account matches a login key, so the
// unknown-account path spends the same bcrypt time as a wrong password.
var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
// bcrypt compares digests in constant time.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// EqualizeMissingAccount burns one bcrypt comparison against a fixed hash.
// Call it when the login key did not resolve to an account.
func EqualizeMissingAccount(plainTextPassword string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("serenity-missing-account"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plainTextPassword))
}
