package domain

import "time"

// Role classifies what kind of actor a user account represents.
type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusSuspended UserStatus = "SUSPENDED"
	StatusDeleted   UserStatus = "DELETED"
)

// DocumentType identifies the kind of identity document attached to a user.
type DocumentType string

const (
	DocumentDNI      DocumentType = "DNI"
	DocumentPassport DocumentType = "PASSPORT"
	DocumentCE       DocumentType = "CE"
)

// Valid reports whether the document type is one of the known values.
func (d DocumentType) Valid() bool {
	switch d {
	case DocumentDNI, DocumentPassport, DocumentCE:
		return true
	}
	return false
}

// User is the identity record at the centre of the credential store.
// PasswordHash is nil until a password is set and never holds plaintext.
// ID, CreatedAt and UpdatedAt are assigned by the store on save.
type User struct {
	ID              int          `json:"id"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	Email           string       `json:"email"`
	DocumentType    DocumentType `json:"document_type"`
	DocumentNumber  string       `json:"document_number"`
	PasswordHash    *string      `json:"-"`
	Role            Role         `json:"role"`
	Status          UserStatus   `json:"status"`
	TermsAcceptedAt *time.Time   `json:"terms_accepted_at,omitempty"`
	DeletedAt       *time.Time   `json:"-"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Deleted reports whether the account has been soft-deleted.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

// Client is the profile extension owned 1:1 by a CLIENT user. It is created
// only during registration, after the owning user exists, and never exists
// without one.
type Client struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	BirthDate   time.Time `json:"birth_date"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewClient builds the client profile for a persisted user. The user must
// already carry a store-assigned id and the birth date must be in the past.
func NewClient(user *User, birthDate time.Time, phoneNumber string, now time.Time) (*Client, error) {
	if user == nil || user.ID == 0 {
		return nil, ErrUserNotPersisted
	}
	if !birthDate.Before(now) {
		return nil, ErrBirthDateInFuture
	}
	return &Client{
		UserID:      user.ID,
		BirthDate:   birthDate,
		PhoneNumber: phoneNumber,
	}, nil
}

// Administrator links an ADMIN or SUPERADMIN user to its admin code.
// CreatedByAdminID is a lookup-only reference to the administrator that
// created this one; it carries no ownership or delete semantics.
type Administrator struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"`
	AdminCode        string    `json:"admin_code"`
	CreatedByAdminID *int      `json:"created_by_admin_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
