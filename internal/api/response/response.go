package response

import (
	"encoding/json"
	"net/http"
)

// messageBody is the error/status envelope every non-payload response uses.
type messageBody struct {
	Message string `json:"message"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Message sends a {message} response with the given status
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, messageBody{Message: message})
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 Created response with a message
func Created(w http.ResponseWriter, message string) {
	Message(w, http.StatusCreated, message)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message string) {
	Message(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Message(w, http.StatusUnauthorized, message)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, message string) {
	Message(w, http.StatusNotFound, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(w http.ResponseWriter, message string) {
	Message(w, http.StatusTooManyRequests, message)
}

// InternalError sends a 500 with a generic message. The underlying error is
// logged by the caller, never echoed to the client.
func InternalError(w http.ResponseWriter) {
	Message(w, http.StatusInternalServerError, "Server error")
}

// UpstreamUnavailable sends a 502 with a generic message for gateway and
// store failures.
func UpstreamUnavailable(w http.ResponseWriter, message string) {
	Message(w, http.StatusBadGateway, message)
}
