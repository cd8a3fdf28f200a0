package flow

import (
	"github.com/pkg/errors"
)

// Kind discriminates the failure classes a flow can surface. Validation and
// auth failures are always raised before any network call, the rest wrap a
// gateway failure at the flow boundary, a gateway error never reaches the UI
// layer raw.
type Kind int

const (
	// KindValidation: local draft problem, recoverable by user correction.
	KindValidation Kind = iota
	// KindAuth: no signed-in identity where one is required.
	KindAuth
	// KindNotFound: the referenced document does not exist.
	KindNotFound
	// KindFetch: transport or backend failure on a read.
	KindFetch
	// KindWrite: transport or backend failure on a document write.
	KindWrite
	// KindUpload: blob store failure, the post was never written.
	KindUpload
	// KindSubscription: live query setup or mid-stream failure.
	KindSubscription
)

// Error is the discriminated result every flow operation fails with.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// UserMessage keeps the distinct error kinds distinguishable to the screen:
// validation, auth and not-found failures carry their own wording, transport
// failures all collapse into a generic retry message.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindValidation, KindAuth, KindNotFound:
		return e.msg
	default:
		return "Something went wrong. Please try again."
	}
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func wrapError(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// IsKind reports whether err is a flow Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
