package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/ficus/storefront/internal/adapters/http"
	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/ports"
)

// sessionMiddleware authenticates the session cookie, falling back to a
// bearer token for API clients
func (s *Server) sessionMiddleware(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c, s.config.Session.CookieName)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not logged in")
			}

			claims, err := authService.ValidateToken(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, entities.ErrInvalidSession) {
					return err
				}
				s.logger.LogSecurityEvent("invalid_session", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				httpHandlers.ClearSessionCookie(c, s.config.Session)
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid session")
			}

			c.Set(httpHandlers.UsernameKey, claims.Username)
			return next(c)
		}
	}
}

// requireAdmin admits only the configured admin usernames
func (s *Server) requireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get(httpHandlers.UsernameKey).(string)
			if s.admins[username] {
				return next(c)
			}

			s.logger.LogSecurityEvent("insufficient_permissions",
				username,
				c.RealIP(),
				map[string]interface{}{
					"endpoint": c.Request().URL.Path,
				})

			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

func sessionToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
		return token
	}
	return ""
}
