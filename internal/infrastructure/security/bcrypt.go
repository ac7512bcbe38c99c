package security

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/digiticket/digiticket/internal/api/metrics"
	"github.com/digiticket/digiticket/internal/core/domain"
)

// BcryptHasher implements ports.PasswordHasher on top of bcrypt. Each call to
// Hash generates a fresh salt which bcrypt embeds in its output, so Matches
// only needs the stored hash. Cost is the adaptive work factor; raising it
// makes brute force proportionally more expensive.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. A cost of zero (or
// anything below bcrypt.MinCost) selects the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a salted one-way hash of plaintext. Empty input is refused:
// an empty credential must never acquire a valid hash.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", domain.ErrEmptyPassword
	}
	start := time.Now()
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Matches reports whether plaintext corresponds to hash.
func (h *BcryptHasher) Matches(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IsHash reports whether s already looks like a bcrypt hash. Used by write
// paths to avoid double-hashing an already-hashed value; a real bcrypt output
// is 60 bytes and starts with a "$2x$" version prefix.
func (h *BcryptHasher) IsHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
