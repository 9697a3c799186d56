package erp

import "fmt"

// Kind is the closed set of error kinds the gateway surfaces across its API
// boundary, per spec §7. It is not a type name collection for the HTTP
// layer to introspect — the HTTP layer maps Kind to a status code once.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindAuth       Kind = "AUTH"
	KindRateLimit  Kind = "RATE_LIMITED"
	KindTimeout    Kind = "TIMEOUT"
	KindBackend    Kind = "BACKEND"
	KindNotFound   Kind = "NOT_FOUND"
)

// Error wraps an ERP round-trip failure with the kind the HTTP surface
// needs for status mapping and the ERP's verbatim detail text, if any.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, message, detail string) *Error {
	return &Error{Kind: kind, Message: message, Detail: detail}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, defaulting to KindBackend for anything else — an unclassified ERP
// failure is treated as a backend error, never silently swallowed.
func KindOf(err error) Kind {
	var e *Error
	if asError(err, &e) {
		return e.Kind
	}
	return KindBackend
}

// asError is a small local errors.As to avoid importing errors just for
// this one call site used by both this package and its callers via KindOf.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
