package dfxml

import "io"

// Parse reads one complete DFXML document from r. It is a convenience over
// the streaming decoder: the whole tree, file records included, is held in
// memory. Use a Decoder or ParseFiles when the input may be large.
func Parse(r io.Reader) (*Document, error) {
	dec := NewDecoder(r, RetainFiles())
	for {
		ev, err := dec.Next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == DocumentClosed {
			return ev.Node.(*Document), nil
		}
	}
}

// ParseFiles streams every file record in the document to fn, in document
// order, without retaining records. A non-nil error from fn aborts the
// parse and is returned as-is.
func ParseFiles(r io.Reader, fn func(*File) error) error {
	dec := NewDecoder(r)
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if ev.Kind == FileRecord {
			if err := fn(ev.Node.(*File)); err != nil {
				return err
			}
		}
		if ev.Kind == DocumentClosed {
			return nil
		}
	}
}
