package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned by operations that require a current session
	// when none is held.
	ErrNoSession = errors.New("transport: no current session")
	// ErrClientClosed is returned after Close has been called.
	ErrClientClosed = errors.New("transport: client is closed")
	// ErrRequestFailed wraps network-level failures reaching the auth service.
	ErrRequestFailed = errors.New("transport: request failed")
	// ErrInvalidConfig is returned when required configuration is missing.
	ErrInvalidConfig = errors.New("transport: invalid configuration")
	// ErrDecodeResponse wraps failures decoding a service response body.
	ErrDecodeResponse = errors.New("transport: failed to decode response")
)

// APIError is a non-2xx response from the auth service, normalized across the
// error body variants the service emits. It is the raw error shape; callers
// outside this package translate it through the authstate taxonomy rather
// than inspecting it directly.
type APIError struct {
	Code    string // service error code, e.g. "invalid_credentials"; may be empty
	Message string
	Status  int // HTTP status
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth service error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth service error %d: %s", e.Status, e.Message)
}

// apiErrorBody tolerates the three error body shapes the service is known to
// produce: {"error_code","msg"}, {"error","error_description"} and
// {"code","message"}.
type apiErrorBody struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	ErrorField       string `json:"error"`
	ErrorDescription string `json:"error_description"`
	CodeField        string `json:"code"`
	Message          string `json:"message"`
	WeakPassword     *struct {
		Reasons []string `json:"reasons"`
	} `json:"weak_password"`
}

func (b apiErrorBody) normalize(status int) *APIError {
	code := b.ErrorCode
	if code == "" {
		code = b.ErrorField
	}
	if code == "" {
		code = b.CodeField
	}
	msg := b.Msg
	if msg == "" {
		msg = b.ErrorDescription
	}
	if msg == "" {
		msg = b.Message
	}
	if b.WeakPassword != nil && code == "" {
		code = "weak_password"
	}
	return &APIError{Code: code, Message: msg, Status: status}
}
