package ports

import (
	"context"

	"github.com/digiticket/digiticket/internal/core/domain"
)

// CredentialStore is the persistence boundary for User, Client and
// Administrator records. Implementations assign ids and created/updated
// timestamps on save and must enforce email and document uniqueness with a
// real unique index: a duplicate slipping past the EmailExists pre-check is
// reported from SaveUser as domain.ErrEmailTaken.
type CredentialStore interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id int) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SaveUser(ctx context.Context, user *domain.User) (*domain.User, error)
	SaveClient(ctx context.Context, client *domain.Client) (*domain.Client, error)
	SaveAdministrator(ctx context.Context, admin *domain.Administrator) (*domain.Administrator, error)
	FindAdministratorByUserID(ctx context.Context, userID int) (*domain.Administrator, error)

	// InTransaction runs fn atomically: every store call made through ctx
	// inside fn is committed together or not at all.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EmailCache is an optional read-through cache in front of EmailExists.
// Lookup errors are soft: callers fall back to the store.
type EmailCache interface {
	IsRegistered(ctx context.Context, email string) (bool, error)
	MarkRegistered(ctx context.Context, email string) error
	Invalidate(ctx context.Context, email string) error
}
