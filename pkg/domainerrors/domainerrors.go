// Package domainerrors provides coded errors shared by services and the HTTP
// layer. Services attach a code; the transport maps codes to status lines
// without inspecting error strings.
package domainerrors

import "net/http"

// Code identifies the class of a domain error.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal_error"
)

// DomainError carries a machine-readable code plus a human-readable message.
type DomainError struct {
	Code    Code
	Message string
}

func (e DomainError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New builds a DomainError with the given code and message.
func New(code Code, message string) DomainError {
	return DomainError{Code: code, Message: message}
}

// ToHTTPStatus maps a domain error code to an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
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
