package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/digiticket/digiticket/internal/core/domain"
	"github.com/digiticket/digiticket/internal/core/ports"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, malformed payload, or expiry.
var ErrInvalidToken = errors.New("invalid token")

// sessionClaims is the JWT payload for a session: the registered sub/iat/exp
// claims plus the role.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer creates and verifies HS256 session tokens. Tokens are
// self-contained: no server-side lookup, no revocation list; expiry is the
// only invalidation mechanism.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer signing with the given symmetric secret.
// The same secret verifies tokens the issuer produced.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue builds a signed token for (userID, role) expiring after the
// configured TTL. Pure function of its inputs, the secret and the clock.
func (i *TokenIssuer) Issue(userID int, role domain.Role) (string, error) {
	now := i.now().UTC()
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses and validates a token previously produced by Issue.
func (i *TokenIssuer) Verify(token string) (*ports.TokenClaims, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	out := &ports.TokenClaims{UserID: userID, Role: domain.Role(claims.Role)}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return out, nil
}
