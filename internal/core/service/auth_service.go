package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/digiticket/digiticket/internal/core/domain"
	"github.com/digiticket/digiticket/internal/core/ports"
)

// AuthService implements login and the client registration transaction.
type AuthService struct {
	store  ports.CredentialStore
	emails ports.EmailCache
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
}

// NewAuthService wires the auth service. emails may be nil when no cache is
// configured; every cache interaction degrades to the store.
func NewAuthService(
	store ports.CredentialStore,
	emails ports.EmailCache,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{store: store, emails: emails, hasher: hasher, tokens: tokens, log: log}
}

// NormalizeEmail is the canonical form used for uniqueness checks and for the
// stored value. Both sides must agree, otherwise a user registered as
// "A@x.com " could register again as "a@x.com".
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies credentials and issues a session token. Unknown email,
// absent password hash and wrong password all fail with the same
// domain.ErrInvalidCredentials so responses cannot be used to probe which
// emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.store.FindUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Deleted() || user.PasswordHash == nil || !s.hasher.Matches(password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")

	return &ports.AuthResult{
		Token:     token,
		UserID:    user.ID,
		FirstName: user.FirstName,
		Role:      user.Role,
	}, nil
}

// RegisterClient creates a User and its owning Client profile in a single
// store transaction and issues a session token for the new account.
//
// The EmailExists pre-check only gives a friendly early failure; under
// concurrent registration of the same email the store's unique index is the
// actual backstop, and its duplicate-key error surfaces from SaveUser as
// domain.ErrEmailTaken.
func (s *AuthService) RegisterClient(ctx context.Context, in ports.RegisterClientInput) (*ports.AuthResult, error) {
	email := NormalizeEmail(in.Email)

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           email,
		DocumentType:    in.DocumentType,
		DocumentNumber:  in.DocumentNumber,
		PasswordHash:    &hash,
		Role:            domain.RoleClient,
		Status:          domain.StatusActive,
		TermsAcceptedAt: &now,
	}

	var saved *domain.User
	err = s.store.InTransaction(ctx, func(txCtx context.Context) error {
		saved, err = s.store.SaveUser(txCtx, user)
		if err != nil {
			return err
		}

		client, err := domain.NewClient(saved, in.BirthDate, in.PhoneNumber, now)
		if err != nil {
			return err
		}
		if _, err := s.store.SaveClient(txCtx, client); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.emails != nil {
		if cacheErr := s.emails.MarkRegistered(ctx, email); cacheErr != nil {
			s.log.Warn().Err(cacheErr).Msg("failed to mark email in cache")
		}
	}

	token, err := s.tokens.Issue(saved.ID, saved.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", saved.ID).Str("email", email).Msg("client registered")

	return &ports.AuthResult{
		Token:     token,
		UserID:    saved.ID,
		FirstName: saved.FirstName,
		Role:      saved.Role,
	}, nil
}

// emailTaken consults the cache first; a cache miss or error falls through to
// the store.
func (s *AuthService) emailTaken(ctx context.Context, email string) (bool, error) {
	if s.emails != nil {
		hit, err := s.emails.IsRegistered(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("email cache lookup failed, falling back to store")
		} else if hit {
			return true, nil
		}
	}
	return s.store.EmailExists(ctx, email)
}

// hashPassword applies the write-path policy: never hash a value that is
// already a hash. Repeated saves of an already-hashed value would otherwise
// corrupt the credential with a hash-of-hash.
func (s *AuthService) hashPassword(password string) (string, error) {
	if s.hasher.IsHash(password) {
		return password, nil
	}
	return s.hasher.Hash(password)
}
