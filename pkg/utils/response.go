package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes {"error": message}
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}
