package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/storage"
)

// toHTTPError maps service errors onto status codes. Anything unrecognised
// becomes a 500 that keeps the cause as the internal error for logging.
func toHTTPError(err error) *echo.HTTPError {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		details := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			details[fe.Field()] = fe.Tag()
		}
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: details})
	case errors.Is(err, entities.ErrInvalidQuantity), errors.Is(err, entities.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case entities.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, entities.ErrDuplicateUsername):
		return echo.NewHTTPError(http.StatusConflict, ErrorResponse{Error: entities.ErrDuplicateUsername.Error()})
	case errors.Is(err, entities.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, ErrorResponse{Error: entities.ErrInvalidCredentials.Error()})
	case storage.IsCorruptData(err):
		return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{Error: "stored data is corrupt"}).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}).SetInternal(err)
	}
}

func badRequest(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Error: message})
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
