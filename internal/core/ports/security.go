package ports

import "github.com/digiticket/digiticket/internal/core/domain"

// PasswordHasher is the one-way hashing capability used for credentials at
// rest. Hash salts per call and embeds the salt in its output, so Matches
// needs only the stored hash. Hash refuses empty input.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Matches(plaintext, hash string) bool
	// IsHash reports whether s already looks like an output of Hash. The
	// write path uses it to avoid hashing a value twice.
	IsHash(s string) bool
}

// TokenClaims is the decoded payload of a session token.
type TokenClaims struct {
	UserID    int
	Role      domain.Role
	IssuedAt  int64
	ExpiresAt int64
}

// TokenIssuer creates and verifies signed, self-contained session tokens.
// Tokens expire after the configured TTL; expiry is the only invalidation
// mechanism.
type TokenIssuer interface {
	Issue(userID int, role domain.Role) (string, error)
	Verify(token string) (*TokenClaims, error)
}
