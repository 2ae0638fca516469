// Package handlers implements the JSON HTTP surface of the category admin
// backend: category CRUD, reorder, bulk toggle, the SSE change stream, and
// session authentication.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Problem is the JSON error body returned for 4xx/5xx responses.
type Problem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// writeProblem sends a problem+json error response.
func writeProblem(w http.ResponseWriter, status int, title, detail string, errs map[string][]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Problem{Title: title, Status: status, Detail: detail, Errors: errs}); err != nil {
		slog.Warn("write problem response", "error", err)
	}
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

// decodeJSON parses the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
