package authstate

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kingsocial/authkit/pkg/transport"
)

// Code is the closed error taxonomy exposed to callers. Raw transport errors
// never cross this package's boundary; unknown service codes collapse to
// CodeUnknown rather than leaking ecosystem-specific shapes.
type Code string

const (
	CodeInvalidCredentials  Code = "invalid_credentials"
	CodeUserNotFound        Code = "user_not_found"
	CodeEmailNotConfirmed   Code = "email_not_confirmed"
	CodeEmailTaken          Code = "email_taken"
	CodeWeakPassword        Code = "weak_password"
	CodeOTPExpired          Code = "otp_expired"
	CodeOTPDisabled         Code = "otp_disabled"
	CodeMFARequired         Code = "mfa_required"
	CodeMFAChallengeExpired Code = "mfa_challenge_expired"
	CodeProviderError       Code = "provider_error"
	CodeNetworkError        Code = "network_error"
	CodeUnknown             Code = "unknown_error"
	CodeRateLimit           Code = "rate_limit"
	CodeSessionExpired      Code = "session_expired"
	CodeUnauthorized        Code = "unauthorized"
)

// Error is a mapped authentication failure. Status carries the originating
// HTTP status when there was one, zero otherwise.
type Error struct {
	Code    Code
	Message string
	Status  int
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is makes errors.Is match two mapped errors by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// serviceCodes maps the auth service's error codes onto the taxonomy.
var serviceCodes = map[string]Code{
	"invalid_credentials":       CodeInvalidCredentials,
	"invalid_grant":             CodeInvalidCredentials,
	"user_not_found":            CodeUserNotFound,
	"email_not_confirmed":       CodeEmailNotConfirmed,
	"phone_not_confirmed":       CodeEmailNotConfirmed,
	"user_already_exists":       CodeEmailTaken,
	"email_exists":              CodeEmailTaken,
	"phone_exists":              CodeEmailTaken,
	"weak_password":             CodeWeakPassword,
	"otp_expired":               CodeOTPExpired,
	"otp_disabled":              CodeOTPDisabled,
	"mfa_required":              CodeMFARequired,
	"insufficient_aal":          CodeMFARequired,
	"mfa_challenge_expired":     CodeMFAChallengeExpired,
	"mfa_verification_rejected": CodeInvalidCredentials,
	"provider_error":            CodeProviderError,
	"provider_disabled":         CodeProviderError,
	"oauth_provider_not_supported": CodeProviderError,
	"over_request_rate_limit":   CodeRateLimit,
	"over_email_send_rate_limit": CodeRateLimit,
	"over_sms_send_rate_limit":  CodeRateLimit,
	"session_expired":           CodeSessionExpired,
	"session_not_found":         CodeSessionExpired,
	"refresh_token_not_found":   CodeSessionExpired,
	"refresh_token_already_used": CodeSessionExpired,
	"bad_jwt":                   CodeUnauthorized,
	"no_authorization":          CodeUnauthorized,
}

// MapError translates any transport-level failure into the taxonomy. It is
// the single chokepoint between raw errors and the UI: nil maps to nil, an
// *Error passes through unchanged, service rejections map by code then by
// HTTP status, and everything else is a network or unknown failure.
func MapError(err error) *Error {
	if err == nil {
		return nil
	}

	var mapped *Error
	if errors.As(err, &mapped) {
		return mapped
	}

	var apiErr *transport.APIError
	if errors.As(err, &apiErr) {
		return mapAPIError(apiErr)
	}

	switch {
	case errors.Is(err, transport.ErrNoSession):
		return &Error{Code: CodeSessionExpired, Message: "no active session"}
	case errors.Is(err, transport.ErrRequestFailed):
		return &Error{Code: CodeNetworkError, Message: "could not reach the authentication service"}
	}
	return &Error{Code: CodeUnknown, Message: err.Error()}
}

func mapAPIError(apiErr *transport.APIError) *Error {
	if code, ok := serviceCodes[apiErr.Code]; ok {
		return &Error{Code: code, Message: apiErr.Message, Status: apiErr.Status}
	}

	// Older service versions omit error codes; recognize the well-known
	// credential rejection message before falling back on status.
	if strings.Contains(strings.ToLower(apiErr.Message), "invalid login credentials") {
		return &Error{Code: CodeInvalidCredentials, Message: apiErr.Message, Status: apiErr.Status}
	}

	code := CodeUnknown
	switch apiErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = CodeUnauthorized
	case http.StatusTooManyRequests:
		code = CodeRateLimit
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		code = CodeNetworkError
	}
	msg := apiErr.Message
	if msg == "" {
		msg = http.StatusText(apiErr.Status)
	}
	return &Error{Code: code, Message: msg, Status: apiErr.Status}
}
