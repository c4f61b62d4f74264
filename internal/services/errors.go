package services

import "errors"

// Kind classifies service failures. The HTTP layer maps each kind to
// exactly one status code.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "server"
	}
}

// Error is a classified failure with a message safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same kind. A target without
// a message matches every error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
)

var (
	ErrUserAlreadyExists  = &Error{Kind: KindConflict, Message: "user with this email already exists"}
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: "invalid credentials"}
	ErrMissingToken       = &Error{Kind: KindAuth, Message: "not authorized, no token"}
	ErrInvalidToken       = &Error{Kind: KindAuth, Message: "not authorized, token failed"}
	ErrTaskNotFound       = &Error{Kind: KindNotFound, Message: "task not found"}
)

func newValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindServer.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindServer
}
