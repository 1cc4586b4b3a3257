package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func IsUnauthorizedError(err error) (*UnauthorizedError, bool) {
	var ue *UnauthorizedError
	if stderrors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// ConfigurationError reports a missing or unusable credential. Instruction is
// shown to the caller as-is, so it should tell an operator what to set.
type ConfigurationError struct {
	Message     string
	Instruction string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func NewConfigurationError(message, instruction string) *ConfigurationError {
	return &ConfigurationError{
		Message:     message,
		Instruction: instruction,
	}
}

func IsConfigurationError(err error) (*ConfigurationError, bool) {
	var ce *ConfigurationError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// UpstreamError wraps a failed call to an external provider (CMS, email, auth).
// StatusCode is zero when the request never got a response.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

func NewUpstreamError(provider string, statusCode int, message string, cause error) *UpstreamError {
	return &UpstreamError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

func IsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if stderrors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
