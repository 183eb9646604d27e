package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// ErrNothingChanged is returned by update statements that received an
	// empty patch. Callers treat it as a no-op, not as a failure.
	ErrNothingChanged = errors.New("nothing changed")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")
	ErrorConflict     = errors.New("already exists")
	ErrorTimeout      = errors.New("timed out")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// MessageError pairs a sentinel kind with a message that is safe to show
// to an API caller.
type MessageError struct {
	Kind    error
	Message string
}

func (e *MessageError) Error() string {
	return e.Message
}

func (e *MessageError) Unwrap() error {
	return e.Kind
}

// WithMessage wraps kind so that errors.Is(err, kind) still holds while the
// caller-facing text becomes msg.
func WithMessage(kind error, msg string) error {
	return &MessageError{Kind: kind, Message: msg}
}

// MessageOf extracts the caller-facing message from err. The second value is
// false when err carries no message.
func MessageOf(err error) (string, bool) {
	var me *MessageError
	if errors.As(err, &me) {
		return me.Message, true
	}
	return "", false
}
