package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIdentifier  = errors.New("please enter a valid email address")
	ErrInvalidPurpose     = errors.New("unknown verification purpose")
	ErrAlreadyRegistered  = errors.New("this email is already registered, please log in")
	ErrNotRegistered      = errors.New("no account is registered with this email")
	ErrAccountBanned      = errors.New("this account has been suspended")
	ErrResendTooSoon      = errors.New("please wait a minute before requesting a new code")
	ErrNoActiveCode       = errors.New("no active code, please request a new one")
	ErrCodeExpired        = errors.New("code expired, please request a new one")
	ErrIncorrectCode      = errors.New("incorrect code")
	ErrDeliveryFailed     = errors.New("could not send the verification email")
	ErrStorageUnavailable = errors.New("service temporarily unavailable")
	ErrInvalidTicket      = errors.New("verification expired, please start again")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password is too short")
	ErrPasswordRequired   = errors.New("administrator accounts must sign in with a password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidIdentifier, "invalid_identifier"},
	{ErrInvalidPurpose, "invalid_purpose"},
	{ErrAlreadyRegistered, "already_registered"},
	{ErrNotRegistered, "not_registered"},
	{ErrAccountBanned, "account_banned"},
	{ErrResendTooSoon, "resend_too_soon"},
	{ErrNoActiveCode, "no_active_code"},
	{ErrCodeExpired, "code_expired"},
	{ErrIncorrectCode, "incorrect_code"},
	{ErrDeliveryFailed, "delivery_failed"},
	{ErrStorageUnavailable, "storage_unavailable"},
	{ErrInvalidTicket, "invalid_ticket"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrWeakPassword, "weak_password"},
	{ErrPasswordRequired, "password_required"},
	{ErrUserNotFound, "user_not_found"},
	{ErrInvalidRole, "invalid_role"},
}

// Reason returns the machine-readable code for err, or "internal_error".
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal_error"
}

// Message returns the user-facing text for err without any wrapped driver detail.
func Message(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.err.Error()
		}
	}
	return "something went wrong, please try again"
}

// storageError keeps the driver message for logs but only ErrStorageUnavailable is matchable.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}

func deliveryError(err error) error {
	return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
}
