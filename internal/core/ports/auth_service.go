package ports

import (
	"context"
	"time"

	"github.com/digiticket/digiticket/internal/core/domain"
)

// RegisterClientInput carries the already-validated registration payload.
// Format validation (email shape, password length, birth date in the past)
// belongs to the transport layer; the service only applies business rules.
type RegisterClientInput struct {
	FirstName      string
	LastName       string
	Email          string
	Password       string
	DocumentType   domain.DocumentType
	DocumentNumber string
	BirthDate      time.Time
	PhoneNumber    string
}

// AuthResult is returned by both login and registration: the session token
// plus the fields the frontend renders immediately after authenticating.
type AuthResult struct {
	Token     string
	UserID    int
	FirstName string
	Role      domain.Role
}

// AuthService orchestrates credential verification and the registration
// transaction.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RegisterClient(ctx context.Context, in RegisterClientInput) (*AuthResult, error)
}

// Profile is the authenticated user's own view of their account. AdminCode is
// set only when an Administrator record exists for the user.
type Profile struct {
	User      *domain.User
	AdminCode string
}

// UserService covers account self-management after authentication.
type UserService interface {
	GetProfile(ctx context.Context, userID int) (*Profile, error)
	ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error
	Deactivate(ctx context.Context, userID int) error
}
