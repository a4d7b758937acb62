// Package server exposes the HTTP surface: invoice upload, direct payload
// registration, audit export, and health.
package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// SendJSONError writes an error body in the {"error": ...} form the clients
// of this service expect.
func SendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
