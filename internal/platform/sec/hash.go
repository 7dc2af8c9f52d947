// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by HashPassword for inputs over [MaxPasswordBytes].
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher hashes and verifies passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost int

	// dummyHash is compared against when no account matches, so that a
	// missing user costs the same as a wrong password.
	dummyHash []byte
}

// NewHasher creates a [Hasher]. A cost outside bcrypt's range falls back to [DefaultBcryptCost].
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("mathlab-timing-equalizer"), cost)
	if err != nil {
		panic(fmt.Sprintf("sec: failed to prepare dummy hash: %v", err))
	}

	return &Hasher{cost: cost, dummyHash: dummy}
}

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func (hasher *Hasher) HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func (hasher *Hasher) CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// CompareDummy burns one bcrypt comparison and always reports false.
func (hasher *Hasher) CompareDummy(plainTextPassword string) bool {
	_ = bcrypt.CompareHashAndPassword(hasher.dummyHash, []byte(plainTextPassword))
	return false
}
