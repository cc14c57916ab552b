package server

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the "code" field of error bodies.
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// writeErr sends JSON { "error": message, "code": errCode }.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	writeJSON(w, code, map[string]string{"error": message, "code": errCode})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
