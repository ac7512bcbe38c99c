package handler

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerClientRequest struct {
	FirstName      string `json:"first_name"      validate:"required"`
	LastName       string `json:"last_name"       validate:"required"`
	Email          string `json:"email"           validate:"required,email"`
	Password       string `json:"password"        validate:"required,min=8"`
	DocumentType   string `json:"document_type"   validate:"required,oneof=DNI PASSPORT CE"`
	DocumentNumber string `json:"document_number" validate:"required"`
	BirthDate      string `json:"birth_date"      validate:"required,datetime=2006-01-02"`
	PhoneNumber    string `json:"phone_number"`
}

// authResponse is returned by both login and registration: the session token
// plus what the frontend needs to greet the user.
type authResponse struct {
	Token     string `json:"token"`
	UserID    int    `json:"user_id"`
	FirstName string `json:"first_name"`
	Role      string `json:"role"`
}
