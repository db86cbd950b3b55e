// Package httpx provides JSON request and response helpers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrMalformedJSON is returned by DecodeJSON when the body is not a JSON object.
var ErrMalformedJSON = errors.New("malformed json body")

// ErrorBody is the envelope for every non-2xx response.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Message sends an ErrorBody carrying only a message.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Message: message})
}

// DecodeJSON decodes JSON request body into the target struct.
// An empty body leaves target untouched so that required-field checks report it.
func DecodeJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(target)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return ErrMalformedJSON
}
