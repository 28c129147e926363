package dfxml

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds carried by Error.Kind.
//
// Input that ends inside an open element is classified as
// KindMalformedToken, not KindUnexpectedNesting. The tokenizer surfaces
// truncation as a syntax failure before any structural check can run,
// and the decoder's own end-of-input detection keeps the same
// classification so truncation always maps to a single kind.
const (
	KindIO                = "io"
	KindMalformedToken    = "malformed_token"
	KindUnexpectedNesting = "unexpected_nesting"
	KindInvalidScalar     = "invalid_scalar"
	KindForeignNamespace  = "foreign_namespace"
)

// Error is the single structured error type returned by decode, encode and
// model operations. Kind is one of the Kind* constants; Element and Record
// locate the failure in the source document when known.
type Error struct {
	Kind    string // One of the Kind* constants.
	Element string // Element name that triggered the error, if any.
	Record  string // Enclosing record element (for example "fileobject"), if any.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	Message string
	Cause   error // Optional: underlying error.
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "dfxml: %s", e.Kind)
	if e.Element != "" {
		fmt.Fprintf(b, " at <%s>", e.Element)
	}
	if e.Record != "" {
		fmt.Fprintf(b, " in <%s>", e.Record)
	}
	if e.Message != "" {
		fmt.Fprintf(b, ": %s", e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts a *Error from err using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a dfxml *Error of the given kind.
func IsKind(err error, kind string) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}

func scalarErr(element, record, msg string, cause error) *Error {
	return &Error{Kind: KindInvalidScalar, Element: element, Record: record, Offset: -1, Message: msg, Cause: cause}
}
