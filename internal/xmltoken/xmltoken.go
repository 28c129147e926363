// Package xmltoken adapts encoding/xml's token stream into the normalized
// form the decoder consumes: start, end and text tokens with resolved
// namespaces, xmlns declarations stripped, and byte offsets attached.
// Comments, processing instructions and directives are dropped here so the
// decoder never sees them.
package xmltoken

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Kind discriminates the three token shapes.
type Kind int

const (
	Start Kind = iota
	End
	Text
)

// Attr is a start-tag attribute. Space is the resolved namespace URI, empty
// for unqualified attributes.
type Attr struct {
	Space string
	Local string
	Value string
}

// Token is one normalized XML event.
type Token struct {
	Kind   Kind
	Space  string // Namespace URI of the element (start and end).
	Local  string // Local element name (start and end).
	Attrs  []Attr // Start only. Namespace declarations are filtered out.
	Text   string // Text only. Raw character data, not trimmed.
	Offset int64  // Byte offset of the token start in the input.
}

// Source pulls normalized tokens from a reader.
type Source struct {
	dec *xml.Decoder
}

// NewSource wraps r. The reader is consumed incrementally; nothing is
// buffered beyond what encoding/xml needs for one token.
func NewSource(r io.Reader) *Source {
	return &Source{dec: xml.NewDecoder(r)}
}

// Next returns the next token. It returns io.EOF when the input is
// exhausted. Tokenizer errors pass through unclassified; use
// IsMismatchedClose to distinguish close-tag mismatches from other
// malformed input.
func (s *Source) Next() (Token, error) {
	for {
		off := s.dec.InputOffset()
		tok, err := s.dec.Token()
		if err != nil {
			return Token{Offset: off}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			out := Token{Kind: Start, Space: t.Name.Space, Local: t.Name.Local, Offset: off}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				out.Attrs = append(out.Attrs, Attr{Space: a.Name.Space, Local: a.Name.Local, Value: a.Value})
			}
			return out, nil
		case xml.EndElement:
			return Token{Kind: End, Space: t.Name.Space, Local: t.Name.Local, Offset: off}, nil
		case xml.CharData:
			return Token{Kind: Text, Text: string(t), Offset: off}, nil
		default:
			// Comments, processing instructions, directives.
		}
	}
}

// Offset returns the byte offset just past the last returned token.
func (s *Source) Offset() int64 {
	return s.dec.InputOffset()
}

// IsMismatchedClose reports whether err is a tokenizer error caused by an
// end tag that does not match the open element.
func IsMismatchedClose(err error) bool {
	var se *xml.SyntaxError
	if !errors.As(err, &se) {
		return false
	}
	return strings.Contains(se.Msg, "closed by")
}

// IsSyntax reports whether err is any tokenizer syntax error.
func IsSyntax(err error) bool {
	var se *xml.SyntaxError
	return errors.As(err, &se)
}
