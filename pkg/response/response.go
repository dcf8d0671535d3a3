// Package response writes JSON bodies in the catalog's wire format.
//
// Success bodies are the resource itself (a product, a list of products).
// Failures use a uniform envelope:
//
//	{"error": "Failed to add product", "details": "batch commit: ..."}
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the uniform failure envelope.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK sends a 200 with v as the body.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Created sends a 201 with v as the body.
func Created(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusCreated, v)
}

// Failure sends the error envelope. details may be empty.
func Failure(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, ErrorBody{Error: message, Details: details})
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Failure(w, http.StatusNotFound, "Not found", "")
}

// MethodNotAllowed sends a 405.
func MethodNotAllowed(w http.ResponseWriter) {
	Failure(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}

// TooManyRequests sends a 429.
func TooManyRequests(w http.ResponseWriter) {
	Failure(w, http.StatusTooManyRequests, "Too Many Requests", "")
}
