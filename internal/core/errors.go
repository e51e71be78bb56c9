package core

import (
	"errors"
	"fmt"
)

// Error codes surfaced to clients.
const (
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidRoom      = "invalid_room"
	ErrCodeRecipientOffline = "recipient_offline"
	ErrCodeInvalidRecipient = "invalid_recipient"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInvalidMessage   = "invalid_message"
)

var (
	ErrValidation              = errors.New("validation error")
	ErrInvalidRoom             = errors.New("invalid room")
	ErrRecipientOffline        = errors.New("recipient is not online")
	ErrInvalidRecipient        = errors.New("invalid recipient")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrDuplicateConnection     = errors.New("duplicate connection")
	ErrUnknownConnection       = errors.New("unknown connection")
)

// CoreError wraps a code and human-readable message.
// It unwraps to the matching sentinel so callers can use errors.Is.
type CoreError struct {
	Code    string
	Message string
	kind    error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.kind
}

func coreError(code, msg string, kind error) *CoreError {
	return &CoreError{Code: code, Message: msg, kind: kind}
}

func validationError(msg string) *CoreError {
	return coreError(ErrCodeValidation, msg, ErrValidation)
}

func invalidRoomError(room string) *CoreError {
	return coreError(ErrCodeInvalidRoom, fmt.Sprintf("invalid room %q", room), ErrInvalidRoom)
}

// RateLimitedError is reported by transports that throttle inbound commands.
func RateLimitedError() *CoreError {
	return coreError(ErrCodeRateLimited, "rate limit exceeded", nil)
}

// InvalidMessageError is reported by transports for frames they cannot decode.
func InvalidMessageError(msg string) *CoreError {
	return coreError(ErrCodeInvalidMessage, msg, nil)
}

// AsCoreError extracts a CoreError from err, if any.
func AsCoreError(err error) (*CoreError, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
