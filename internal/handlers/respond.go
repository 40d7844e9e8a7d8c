// Package handlers implements the JSON HTTP API of the appmarket server:
// authentication, store browsing through the genre resolver, app
// submission and install flows, image uploads, and the admin surface.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON serializes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body into dst, rejecting unknown fields.
// Returns false after writing the error response when decoding fails.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, "Invalid request body.", http.StatusBadRequest)
		return false
	}
	return true
}
