// Package httpx holds the JSON request/response helpers shared by every
// handler: one response envelope, one error shape, one body decoder.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrorResponse is the uniform error envelope. Details is optional and
// carries field-level violations for validation failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status. Encoding failures degrade to a
// plain 500 so a half-written body never reaches the client.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		_ = err // client went away; nothing to do
	}
}

// JSONError writes the error envelope with a snake_case code.
func JSONError(w http.ResponseWriter, status int, code string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Details: details})
}

// maxBodyBytes caps request bodies; the largest legitimate payload here is a
// challan with a full stock snapshot.
const maxBodyBytes = 1 << 20

// DecodeJSON reads one JSON document from the request body into dst and
// rejects trailing garbage.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON document")
	}
	return nil
}
