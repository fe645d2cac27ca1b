package server

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes data as a JSON response with statusCode, the way
// the teacher's handlers.WriteJSON helper does.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a standard {"status":"error","error":message} body.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}
