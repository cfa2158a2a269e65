package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "regscope/pkg/domain-errors"
	"regscope/pkg/validation"
)

// ErrorResponse is the envelope of every error body: {"detail": ...}.
// Detail is a string, or a list of field issues for validation failures.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates an error into an HTTP response.
//
// Validation errors become 422 with one entry per field issue. Domain errors map
// their code to a status and expose their message. Anything else is a bare 500.
func WriteError(w http.ResponseWriter, err error) {
	if ve, ok := validation.AsValidationError(err); ok {
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: ve.Issues})
		return
	}

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		detail := domainErr.Message
		if detail == "" {
			detail = string(domainErr.Code)
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{Detail: detail})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	case dErrors.CodeUnsupported:
		return http.StatusUnsupportedMediaType
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeUpstream, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
