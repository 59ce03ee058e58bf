package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ficus/storefront/internal/infrastructure/config"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// UsernameKey is the echo context key holding the authenticated username
const UsernameKey = "username"

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	session     config.SessionConfig
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, session config.SessionConfig, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		session:     session,
		logger:      logger,
	}
}

// Register handles account creation and opens a session
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request format")
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}

	h.setSessionCookie(c, response)
	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request format")
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.LogSecurityEvent("login_failed", req.Username, c.RealIP(), map[string]interface{}{
			"error": err.Error(),
		})
		return toHTTPError(err)
	}

	h.setSessionCookie(c, response)
	return c.JSON(http.StatusOK, response)
}

// Logout handles user logout
func (h *AuthHandler) Logout(c echo.Context) error {
	username := usernameFromContext(c)

	if err := h.authService.Logout(c.Request().Context(), username); err != nil {
		return toHTTPError(err)
	}

	ClearSessionCookie(c, h.session)
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, response *ports.AuthResponse) {
	c.SetCookie(&http.Cookie{
		Name:     h.session.CookieName,
		Value:    response.Token,
		Path:     "/",
		Expires:  response.ExpiresAt,
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client
func ClearSessionCookie(c echo.Context, session config.SessionConfig) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserHandler handles profile requests
type UserHandler struct {
	userService ports.UserService
	session     config.SessionConfig
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService ports.UserService, session config.SessionConfig, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		session:     session,
		logger:      logger,
	}
}

// GetProfile handles getting current user info
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userService.GetProfile(c.Request().Context(), usernameFromContext(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, ports.NewUserResponse(user))
}

// UpdateProfile handles profile changes. A rename or password change ends
// the session, since the token no longer matches the account.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	username := usernameFromContext(c)

	var req ports.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request format")
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), username, req)
	if err != nil {
		return toHTTPError(err)
	}

	if user.Username != username || req.Password != nil {
		ClearSessionCookie(c, h.session)
	}

	return c.JSON(http.StatusOK, ports.NewUserResponse(user))
}

// Utility functions

func usernameFromContext(c echo.Context) string {
	username, _ := c.Get(UsernameKey).(string)
	return username
}

func intParam(c echo.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil || value <= 0 {
		return 0, badRequest("Invalid " + name)
	}
	return value, nil
}
