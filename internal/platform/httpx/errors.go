package httpx

import (
	"errors"
	"net/http"

	"github.com/noah-isme/employee-tracker/internal/shared"
)

// Messages rendered to clients. None of them carries internal detail.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgUnauthenticated    = "Unauthenticated."
	MsgNotFound           = "Not Found"
	MsgDuplicate          = "Duplicate entry"
	MsgMalformed          = "Malformed JSON body."
	MsgServerError        = "Server Error"
)

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrMalformedJSON):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to JSON error responses.
func RespondError(w http.ResponseWriter, err error) {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		JSON(w, http.StatusUnprocessableEntity, ErrorBody{Message: verr.First(), Errors: verr.Fields})
		return
	}
	status := StatusFor(err)
	switch {
	case errors.Is(err, ErrMalformedJSON):
		Message(w, status, MsgMalformed)
	case errors.Is(err, shared.ErrInvalidCredentials):
		Message(w, status, MsgInvalidCredentials)
	case errors.Is(err, shared.ErrUnauthorized):
		Message(w, status, MsgUnauthenticated)
	case errors.Is(err, shared.ErrNotFound):
		Message(w, status, MsgNotFound)
	case errors.Is(err, shared.ErrDuplicate):
		Message(w, status, MsgDuplicate)
	default:
		Message(w, status, MsgServerError)
	}
}
