package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/digiticket/digiticket/internal/core/domain"
)

const (
	usersCollection    = "users"
	clientsCollection  = "clients"
	adminsCollection   = "administrators"
	countersCollection = "counters"
)

// CredentialStore is the MongoDB adapter for ports.CredentialStore. Numeric
// ids are assigned from a counters collection; uniqueness of email and of the
// (document_type, document_number) pair is enforced by partial unique indexes
// that exclude soft-deleted users.
type CredentialStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	clients  *mongo.Collection
	admins   *mongo.Collection
	counters *mongo.Collection
}

func NewCredentialStore(client *mongo.Client, db *mongo.Database) *CredentialStore {
	return &CredentialStore{
		client:   client,
		users:    db.Collection(usersCollection),
		clients:  db.Collection(clientsCollection),
		admins:   db.Collection(adminsCollection),
		counters: db.Collection(countersCollection),
	}
}

// userDoc carries an explicit deleted marker alongside the deleted_at
// timestamp. Partial indexes only accept equality, $exists:true, ranges,
// $type, $and, $or and $in, so the uniqueness scope must match on a concrete
// boolean rather than the absence of the nullable timestamp.
type userDoc struct {
	ID              int        `bson:"_id"`
	FirstName       string     `bson:"first_name"`
	LastName        string     `bson:"last_name"`
	Email           string     `bson:"email"`
	DocumentType    string     `bson:"document_type"`
	DocumentNumber  string     `bson:"document_number"`
	PasswordHash    *string    `bson:"password_hash,omitempty"`
	Role            string     `bson:"role"`
	Status          string     `bson:"status"`
	TermsAcceptedAt *time.Time `bson:"terms_accepted_at,omitempty"`
	Deleted         bool       `bson:"deleted"`
	DeletedAt       *time.Time `bson:"deleted_at,omitempty"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

type clientDoc struct {
	ID          int       `bson:"_id"`
	UserID      int       `bson:"user_id"`
	BirthDate   time.Time `bson:"birth_date"`
	PhoneNumber string    `bson:"phone_number,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type adminDoc struct {
	ID               int       `bson:"_id"`
	UserID           int       `bson:"user_id"`
	AdminCode        string    `bson:"admin_code"`
	CreatedByAdminID *int      `bson:"created_by_admin_id,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// notDeleted scopes reads and the uniqueness indexes to live users. The same
// expression must back both, otherwise a lookup could see a user the unique
// index no longer guards.
var notDeleted = bson.M{"deleted": false}

// liveUserFilter matches non-deleted users.
func liveUserFilter(extra bson.M) bson.M {
	filter := bson.M{}
	for k, v := range notDeleted {
		filter[k] = v
	}
	for k, v := range extra {
		filter[k] = v
	}
	return filter
}

func (s *CredentialStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	err := s.users.FindOne(ctx, liveUserFilter(bson.M{"email": email})).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return toUser(&doc), nil
}

func (s *CredentialStore) FindUserByID(ctx context.Context, id int) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	err := s.users.FindOne(ctx, liveUserFilter(bson.M{"_id": id})).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return toUser(&doc), nil
}

func (s *CredentialStore) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.users.CountDocuments(ctx, liveUserFilter(bson.M{"email": email}), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

// SaveUser inserts a new user (assigning a sequential id and timestamps) or
// replaces an existing one. A duplicate-key violation is mapped to the
// matching domain conflict so racing registrations fail deterministically.
func (s *CredentialStore) SaveUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	out := *user
	out.UpdatedAt = now

	if out.ID == 0 {
		id, err := s.nextSequence(ctx, usersCollection)
		if err != nil {
			return nil, err
		}
		out.ID = id
		out.CreatedAt = now

		if _, err := s.users.InsertOne(ctx, fromUser(&out)); err != nil {
			return nil, mapWriteError(err)
		}
		return &out, nil
	}

	if _, err := s.users.ReplaceOne(ctx, bson.M{"_id": out.ID}, fromUser(&out)); err != nil {
		return nil, mapWriteError(err)
	}
	return &out, nil
}

func (s *CredentialStore) SaveClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	out := *client
	out.UpdatedAt = now

	if out.ID == 0 {
		id, err := s.nextSequence(ctx, clientsCollection)
		if err != nil {
			return nil, err
		}
		out.ID = id
		out.CreatedAt = now

		if _, err := s.clients.InsertOne(ctx, fromClient(&out)); err != nil {
			return nil, fmt.Errorf("insert client: %w", err)
		}
		return &out, nil
	}

	if _, err := s.clients.ReplaceOne(ctx, bson.M{"_id": out.ID}, fromClient(&out)); err != nil {
		return nil, fmt.Errorf("replace client: %w", err)
	}
	return &out, nil
}

func (s *CredentialStore) SaveAdministrator(ctx context.Context, admin *domain.Administrator) (*domain.Administrator, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	out := *admin
	out.UpdatedAt = now

	if out.ID == 0 {
		id, err := s.nextSequence(ctx, adminsCollection)
		if err != nil {
			return nil, err
		}
		out.ID = id
		out.CreatedAt = now

		if _, err := s.admins.InsertOne(ctx, fromAdmin(&out)); err != nil {
			return nil, fmt.Errorf("insert administrator: %w", err)
		}
		return &out, nil
	}

	if _, err := s.admins.ReplaceOne(ctx, bson.M{"_id": out.ID}, fromAdmin(&out)); err != nil {
		return nil, fmt.Errorf("replace administrator: %w", err)
	}
	return &out, nil
}

func (s *CredentialStore) FindAdministratorByUserID(ctx context.Context, userID int) (*domain.Administrator, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc adminDoc
	err := s.admins.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find administrator: %w", err)
	}
	return toAdmin(&doc), nil
}

// InTransaction runs fn inside a MongoDB session transaction. Store calls
// made with the callback context join the session automatically, so a failed
// client insert aborts the whole registration write.
func (s *CredentialStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// nextSequence atomically increments and returns the id counter for the given
// collection.
func (s *CredentialStore) nextSequence(ctx context.Context, name string) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", name, err)
	}
	return counter.Seq, nil
}

// EnsureIndexes creates the unique indexes the registration flow relies on.
// The partial filter keeps soft-deleted users out of the uniqueness scope, so
// a deleted account frees its email and document for re-registration.
func (s *CredentialStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("uq_users_email").
				SetUnique(true).
				SetPartialFilterExpression(notDeleted),
		},
		{
			Keys: bson.D{{Key: "document_type", Value: 1}, {Key: "document_number", Value: 1}},
			Options: options.Index().
				SetName("uq_users_doc").
				SetUnique(true).
				SetPartialFilterExpression(notDeleted),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = s.admins.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("uq_admins_user_id").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create administrator indexes: %w", err)
	}

	_, err = s.clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("uq_clients_user_id").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create client indexes: %w", err)
	}
	return nil
}

// mapWriteError converts a duplicate-key violation into the domain conflict
// for the index that fired.
func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "uq_users_doc") {
			return domain.ErrDocumentTaken
		}
		return domain.ErrEmailTaken
	}
	return fmt.Errorf("write user: %w", err)
}

func fromUser(u *domain.User) userDoc {
	return userDoc{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		DocumentType:    string(u.DocumentType),
		DocumentNumber:  u.DocumentNumber,
		PasswordHash:    u.PasswordHash,
		Role:            string(u.Role),
		Status:          string(u.Status),
		TermsAcceptedAt: u.TermsAcceptedAt,
		Deleted:         u.DeletedAt != nil,
		DeletedAt:       u.DeletedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func toUser(d *userDoc) *domain.User {
	return &domain.User{
		ID:              d.ID,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Email:           d.Email,
		DocumentType:    domain.DocumentType(d.DocumentType),
		DocumentNumber:  d.DocumentNumber,
		PasswordHash:    d.PasswordHash,
		Role:            domain.Role(d.Role),
		Status:          domain.UserStatus(d.Status),
		TermsAcceptedAt: d.TermsAcceptedAt,
		DeletedAt:       d.DeletedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func fromClient(c *domain.Client) clientDoc {
	return clientDoc{
		ID:          c.ID,
		UserID:      c.UserID,
		BirthDate:   c.BirthDate,
		PhoneNumber: c.PhoneNumber,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func fromAdmin(a *domain.Administrator) adminDoc {
	return adminDoc{
		ID:               a.ID,
		UserID:           a.UserID,
		AdminCode:        a.AdminCode,
		CreatedByAdminID: a.CreatedByAdminID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func toAdmin(d *adminDoc) *domain.Administrator {
	return &domain.Administrator{
		ID:               d.ID,
		UserID:           d.UserID,
		AdminCode:        d.AdminCode,
		CreatedByAdminID: d.CreatedByAdminID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
