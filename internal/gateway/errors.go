package gateway

import "errors"

// Kind classifies a failed backend call.
type Kind int

const (
	// KindNetwork means no response reached the client.
	KindNetwork Kind = iota
	// KindTimeout means the fixed request timeout was exceeded.
	KindTimeout
	// KindUnauthorized means the backend answered 401. The gateway has
	// already evicted the stored token by the time this surfaces.
	KindUnauthorized
	// KindValidation means a 4xx rejection, usually with a server message.
	KindValidation
	// KindServer means a 5xx response.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is the single error type surfaced for failed backend calls. Message
// is always human-readable, preferring a server-supplied message field over
// a generic fallback.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 when no response arrived
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError builds a client-side validation failure. Used by the
// contracts to reject bad input before any network call is made.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// IsKind reports whether err is a gateway Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == k
}
