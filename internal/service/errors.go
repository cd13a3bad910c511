package service

import "errors"

// Error kinds. Every failure returned by the services in this package is
// either an *Error carrying one of these kinds or an infrastructure error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingFields      = errors.New("missing fields")
	ErrSamePassword       = errors.New("same password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrEmailDelivery      = errors.New("email delivery failed")
)

// Error pairs an error kind with the message shown to the client.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Message returns the client-facing message of err, or "" when err does not
// carry one.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

const (
	msgFillAllFields      = "Please fill in all fields"
	msgPasswordTooShort   = "Password must be at least 6 characters"
	msgPasswordTooLong    = "Password must not be more than 23 characters"
	msgInvalidEmail       = "Please enter a valid email address"
	msgBioTooLong         = "Bio should not be more than 250 characters"
	msgEmailInUse         = "Email already in use"
	msgMissingCredentials = "Please enter email and password"
	msgInvalidCredentials = "Invalid email or password"
	msgNotAuthorized      = "Not authorized, please login"
	msgUserNotFound       = "User not found"
	msgPasswordsRequired  = "Old password and new password is required"
	msgSamePassword       = "Old password and new password cannot be the same"
	msgWrongOldPassword   = "Invalid credentials"
	msgEmailRequired      = "Please enter an email"
	msgInvalidResetToken  = "Invalid or expired reset token"
	msgEmailNotSent       = "Error sending email"
)
