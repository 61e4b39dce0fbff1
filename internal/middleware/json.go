package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error   string `json:"error"`
	Data    string `json:"data"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes an API error body.
func WriteError(w http.ResponseWriter, status int, code, data, message string) {
	_ = WriteJSON(w, status, errorBody{Error: code, Data: data, Message: message})
}
