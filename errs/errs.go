// errs/errs.go
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a service error so the HTTP layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidOTP
	KindAccountLinking
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidOTP:
		return "invalid_otp"
	case KindAccountLinking:
		return "account_linking"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Entity  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ErrInvalidOTP is the single outcome for a wrong, expired or exhausted code.
var ErrInvalidOTP = &Error{Kind: KindInvalidOTP, Message: "Invalid or expired verification code"}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: entity + " not found"}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Linking wraps a merge-phase failure. cause may be nil.
func Linking(msg string, cause error) error {
	return &Error{Kind: KindAccountLinking, Message: msg, Err: cause}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
