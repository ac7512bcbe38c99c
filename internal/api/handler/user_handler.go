package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digiticket/digiticket/internal/api/middleware"
	"github.com/digiticket/digiticket/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

type profileResponse struct {
	ID              int        `json:"id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	DocumentType    string     `json:"document_type"`
	DocumentNumber  string     `json:"document_number"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	TermsAcceptedAt *time.Time `json:"terms_accepted_at,omitempty"`
	AdminCode       string     `json:"admin_code,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ctxUserID extracts the subject id injected by the Auth middleware.
func ctxUserID(c echo.Context) (int, error) {
	id, ok := c.Get(middleware.CtxUserID).(int)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// Me returns the authenticated user's own profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]any
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	u := profile.User
	return c.JSON(http.StatusOK, profileResponse{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		DocumentType:    string(u.DocumentType),
		DocumentNumber:  u.DocumentNumber,
		Role:            string(u.Role),
		Status:          string(u.Status),
		TermsAcceptedAt: u.TermsAcceptedAt,
		AdminCode:       profile.AdminCode,
		CreatedAt:       u.CreatedAt,
	})
}

// ChangePassword replaces the authenticated user's password.
//
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /users/me/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Deactivate soft-deletes the authenticated user's account.
//
// @Summary      Deactivate own account
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]any
// @Router       /users/me [delete]
func (h *UserHandler) Deactivate(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.userService.Deactivate(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
