package domain

import "errors"

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthenticated
	KindForbidden
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a domain failure with a classification the transport layer can
// translate without inspecting the message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of the first *Error found in err's chain,
// or KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// PublicMessage returns a message safe to show to API clients.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindInternal {
		return de.Message
	}
	return "internal server error"
}
