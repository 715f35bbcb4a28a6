package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/slopescout/internal/settings"
	"github.com/jonathan/slopescout/internal/types"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error    string        `json:"error"`
	Document string        `json:"document,omitempty"`
	Path     string        `json:"path,omitempty"`
	Message  string        `json:"message,omitempty"`
	Details  []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail points at one offending post or document field
type ErrorDetail struct {
	Index   *int   `json:"index,omitempty"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var batchErr *types.BatchValidationError
	var inputErr *types.InputValidationError
	var cfgErr *settings.ConfigurationError

	switch {
	case errors.As(err, &batchErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		// The request was fine; the documents on disk are not.
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
