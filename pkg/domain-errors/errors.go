// Package domainerrors defines coded errors that cross the service boundary.
// Services translate sentinel (infrastructure) errors into these; the HTTP
// layer maps codes onto status codes without inspecting error strings.
package domainerrors

import "net/http"

// Code identifies a class of failure independent of transport.
type Code string

const (
	CodeBadRequest  Code = "bad_request"
	CodeNotFound    Code = "not_found"
	CodeConflict    Code = "conflict"
	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal_error"
)

// Error carries a code plus a human-readable description.
type Error struct {
	Code        Code
	Description string
}

func (e Error) Error() string {
	if e.Description == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Description
}

// New builds a coded domain error.
func New(code Code, description string) Error {
	return Error{Code: code, Description: description}
}

// ToHTTPStatus maps a code to the HTTP status the transport layer should emit.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
