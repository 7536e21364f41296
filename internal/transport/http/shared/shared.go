// Package shared centralizes JSON response writing so every handler returns
// the same envelope shapes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "lcvet/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into a consistent JSON error
// envelope. Non-domain errors become opaque 500s.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := "internal error"

	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		message = de.Message
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":   string(code),
		"message": message,
	})
}
