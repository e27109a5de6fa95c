// Package errors defines the coded errors shared by the client, the engine,
// the CLI and the HTTP API.
//
// Every failure that crosses a package boundary carries a [Code]. Front ends
// use it to pick a response without parsing messages:
//
//   - the API maps it to a status with [HTTPStatus]
//   - the CLI maps it to a process exit code with [ExitCode] and prints
//     [UserMessage] followed by [Hint]
//
// Create and inspect errors:
//
//	err := errors.New(errors.ErrCodeInvalidKind, "unknown report kind %q", kind)
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "list entries")
//	if errors.Is(err, errors.ErrCodeNetwork) {
//	    // retry later
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidKind   Code = "INVALID_KIND"
	ErrCodeInvalidID     Code = "INVALID_ID"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeConflict Code = "CONFLICT" // version mismatch on unpublish or delete

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeForbidden    Code = "FORBIDDEN"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Exit codes used by the CLI. 130 (interrupted) is handled by main.
const (
	ExitFailure = 1 // any failure without a more specific code
	ExitUsage   = 2 // bad flags, arguments or config
	ExitAuth    = 3 // missing, invalid or insufficient credentials
	ExitRemote  = 4 // the platform could not be reached or refused the load
)

type codeInfo struct {
	status int
	exit   int
	hint   string
}

var codes = map[Code]codeInfo{
	ErrCodeInvalidInput:  {http.StatusBadRequest, ExitUsage, ""},
	ErrCodeInvalidKind:   {http.StatusBadRequest, ExitUsage, "report kinds are entries, media and types"},
	ErrCodeInvalidID:     {http.StatusBadRequest, ExitUsage, ""},
	ErrCodeInvalidConfig: {http.StatusBadRequest, ExitUsage, "run 'contentaudit config show' to see the merged settings"},
	ErrCodeInvalidFormat: {http.StatusBadRequest, ExitUsage, ""},
	ErrCodeNotFound:      {http.StatusNotFound, ExitFailure, ""},
	ErrCodeConflict:      {http.StatusConflict, ExitFailure, "the record changed while deleting; generate the report again"},
	ErrCodeNetwork:       {http.StatusBadGateway, ExitRemote, ""},
	ErrCodeTimeout:       {http.StatusGatewayTimeout, ExitRemote, ""},
	ErrCodeRateLimited:   {http.StatusTooManyRequests, ExitRemote, "lower --concurrency or try again shortly"},
	ErrCodeUnauthorized:  {http.StatusUnauthorized, ExitAuth, "set a management token with --token or CONTENTFUL_MANAGEMENT_TOKEN"},
	ErrCodeForbidden:     {http.StatusForbidden, ExitAuth, "the token needs access to this space and environment"},
	ErrCodeUnsupported:   {http.StatusNotImplemented, ExitFailure, ""},
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string // shown to users as is
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error, without code or
// cause, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Hint returns a suggested fix for err's code, or "".
func Hint(err error) string {
	return codes[GetCode(err)].hint
}

// HTTPStatus maps err's code to a response status. Uncoded errors are 500.
func HTTPStatus(err error) int {
	if info, ok := codes[GetCode(err)]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// ExitCode maps err's code to a process exit status. Uncoded errors are
// [ExitFailure].
func ExitCode(err error) int {
	if info, ok := codes[GetCode(err)]; ok {
		return info.exit
	}
	return ExitFailure
}

// RateLimitedError carries the platform's rate-limit reset.
type RateLimitedError struct {
	RetryAfter int // seconds
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}
