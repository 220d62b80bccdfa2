// Package password hashes and checks directory account passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinCost     = bcrypt.MinCost
	DefaultCost = 12
	MaxCost     = bcrypt.MaxCost

	// MaxLength is the longest input bcrypt reads; longer passwords would be
	// silently truncated, so they are rejected.
	MaxLength = 72
)

var (
	ErrEmpty   = errors.New("password cannot be empty")
	ErrTooLong = fmt.Errorf("password longer than %d bytes", MaxLength)
	ErrCost    = errors.New("bcrypt cost out of range")
)

// Hash hashes password at DefaultCost.
func Hash(password string) (string, error) {
	return HashWithCost(password, DefaultCost)
}

// HashWithCost hashes password at cost. Tests use MinCost.
func HashWithCost(password string, cost int) (string, error) {
	switch {
	case password == "":
		return "", ErrEmpty
	case len(password) > MaxLength:
		return "", ErrTooLong
	case cost < MinCost || cost > MaxCost:
		return "", fmt.Errorf("%w: %d not in [%d, %d]", ErrCost, cost, MinCost, MaxCost)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash never
// matches.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether hash was produced below cost.
func NeedsRehash(hash string, cost int) (bool, error) {
	hashCost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false, fmt.Errorf("read hash cost: %w", err)
	}
	return hashCost < cost, nil
}
