package dfxml

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// NewReader wraps r, transparently decompressing gzip input. Plain input
// passes through buffered but otherwise untouched.
func NewReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, &Error{Kind: KindIO, Offset: 0, Message: "read failure", Cause: err}
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, &Error{Kind: KindIO, Offset: 0, Message: "bad gzip stream", Cause: err}
		}
		return zr, nil
	}
	return br, nil
}

type fileReader struct {
	io.Reader
	f *os.File
}

func (fr *fileReader) Close() error { return fr.f.Close() }

// Open opens a DFXML file by path, decompressing gzip transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindIO, Offset: -1, Message: "open " + quoted(path), Cause: err}
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileReader{Reader: r, f: f}, nil
}
