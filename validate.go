package dfxml

import (
	"bytes"
	"context"
	"io"
)

// SchemaValidator checks a serialized document against an external schema.
// Implementations typically shell out to an XSD validator or call a
// validation service; this package provides the serialization boundary
// only.
type SchemaValidator interface {
	Validate(ctx context.Context, r io.Reader) error
}

// ValidateWith serializes doc through the canonical encoder and hands the
// bytes to v. Encoding failures are reported before the validator runs.
func ValidateWith(ctx context.Context, doc *Document, v SchemaValidator) error {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}
	return v.Validate(ctx, &buf)
}
