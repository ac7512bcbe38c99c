package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/digiticket/digiticket/internal/core/domain"
	"github.com/digiticket/digiticket/internal/core/ports"
)

// UserService covers account self-management for an authenticated user.
type UserService struct {
	store  ports.CredentialStore
	emails ports.EmailCache
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewUserService(
	store ports.CredentialStore,
	emails ports.EmailCache,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) *UserService {
	return &UserService{store: store, emails: emails, hasher: hasher, log: log}
}

// GetProfile returns the user's own account view, including the admin code
// when an Administrator record exists for the user.
func (s *UserService) GetProfile(ctx context.Context, userID int) (*ports.Profile, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &ports.Profile{User: user}
	if user.Role == domain.RoleAdmin || user.Role == domain.RoleSuperAdmin {
		admin, err := s.store.FindAdministratorByUserID(ctx, userID)
		if err == nil {
			profile.AdminCode = admin.AdminCode
		} else if err != domain.ErrUserNotFound {
			return nil, err
		}
	}
	return profile, nil
}

// ChangePassword verifies the current password before storing a hash of the
// new one. The IsHash guard keeps a value that already looks like a hash from
// being hashed again.
func (s *UserService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.PasswordHash == nil || !s.hasher.Matches(currentPassword, *user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash := newPassword
	if !s.hasher.IsHash(hash) {
		if hash, err = s.hasher.Hash(newPassword); err != nil {
			return err
		}
	}

	user.PasswordHash = &hash
	if _, err := s.store.SaveUser(ctx, user); err != nil {
		return err
	}

	s.log.Info().Int("user_id", userID).Msg("password changed")
	return nil
}

// Deactivate soft-deletes the account. The record keeps its row; DeletedAt
// marks it invisible to login and frees the email for re-registration, so the
// email cache entry is invalidated as well.
func (s *UserService) Deactivate(ctx context.Context, userID int) error {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.DeletedAt = &now
	user.Status = domain.StatusDeleted
	if _, err := s.store.SaveUser(ctx, user); err != nil {
		return err
	}

	if s.emails != nil {
		if cacheErr := s.emails.Invalidate(ctx, user.Email); cacheErr != nil {
			s.log.Warn().Err(cacheErr).Str("email", user.Email).Msg("failed to invalidate email cache")
		}
	}

	s.log.Info().Int("user_id", userID).Msg("account deactivated")
	return nil
}
