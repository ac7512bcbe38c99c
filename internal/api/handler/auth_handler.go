package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digiticket/digiticket/internal/api/metrics"
	"github.com/digiticket/digiticket/internal/core/domain"
	"github.com/digiticket/digiticket/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login verifies credentials and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.TokensIssuedTotal.Inc()
	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// RegisterClient creates a user + client pair and returns a session token.
//
// @Summary      Register a client account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerClientRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /auth/register [post]
func (h *AuthHandler) RegisterClient(c echo.Context) error {
	var req registerClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "birth_date must match the format 2006-01-02")
	}
	if !birthDate.Before(time.Now().UTC()) {
		return echo.NewHTTPError(http.StatusBadRequest, "birth_date must be in the past")
	}

	res, err := h.authService.RegisterClient(c.Request().Context(), ports.RegisterClientInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		DocumentType:   domain.DocumentType(req.DocumentType),
		DocumentNumber: req.DocumentNumber,
		BirthDate:      birthDate,
		PhoneNumber:    req.PhoneNumber,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.TokensIssuedTotal.Inc()
	return c.JSON(http.StatusCreated, toAuthResponse(res))
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{
		Token:     res.Token,
		UserID:    res.UserID,
		FirstName: res.FirstName,
		Role:      string(res.Role),
	}
}
