package dfxml

import "strings"

// Facet distinguishes which logical stream of a file a set of byte runs
// describes: data content, inode metadata, or the name entry.
type Facet int

const (
	FacetData Facet = iota
	FacetInode
	FacetName
)

func (f Facet) String() string {
	switch f {
	case FacetInode:
		return "inode"
	case FacetName:
		return "name"
	default:
		return "data"
	}
}

// ParseFacet resolves a byte_runs facet attribute value. An empty value
// means the default data facet.
func ParseFacet(s string) (Facet, error) {
	switch s {
	case "", "data":
		return FacetData, nil
	case "inode":
		return FacetInode, nil
	case "name":
		return FacetName, nil
	}
	return 0, scalarErr("byte_runs", "", "unknown facet "+quoted(s), nil)
}

// ByteRun is a contiguous extent descriptor. Offsets may be expressed in up
// to three coordinate systems: from the start of the disk image, the file
// system, or the logical file. All fields are optional.
type ByteRun struct {
	ImgOffset       *uint64
	FSOffset        *uint64
	FileOffset      *uint64
	Len             *uint64
	Fill            *uint8 // Fill byte for sparse/unallocated regions.
	Type            string // Run type, e.g. "resident" for NTFS resident data.
	UncompressedLen *uint64
	Hashes          Hashes // Digests of this specific run.
}

// Concat returns the combination of two contiguous, compatible runs, or
// nil when they cannot be merged. Runs with differing fill, type, hashes
// or compression are never merged.
func (br *ByteRun) Concat(other *ByteRun) *ByteRun {
	if !eqU8(br.Fill, other.Fill) || !strings.EqualFold(br.Type, other.Type) {
		return nil
	}
	if br.UncompressedLen != nil || other.UncompressedLen != nil {
		return nil
	}
	if br.Hashes.Any() || other.Hashes.Any() {
		return nil
	}
	if br.Len == nil || other.Len == nil {
		return nil
	}
	contiguous := false
	merge := func(a, b *uint64) (*uint64, bool) {
		switch {
		case a == nil && b == nil:
			return nil, true
		case a != nil && b != nil && *a+*br.Len == *b:
			contiguous = true
			v := *a
			return &v, true
		default:
			return nil, false
		}
	}
	img, ok := merge(br.ImgOffset, other.ImgOffset)
	if !ok {
		return nil
	}
	fs, ok := merge(br.FSOffset, other.FSOffset)
	if !ok {
		return nil
	}
	file, ok := merge(br.FileOffset, other.FileOffset)
	if !ok {
		return nil
	}
	if !contiguous {
		return nil
	}
	n := *br.Len + *other.Len
	out := &ByteRun{ImgOffset: img, FSOffset: fs, FileOffset: file, Len: &n, Type: br.Type}
	if br.Fill != nil {
		v := *br.Fill
		out.Fill = &v
	}
	return out
}

func eqU8(a, b *uint8) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ByteRuns is an ordered sequence of byte runs tagged with the facet they
// describe.
type ByteRuns struct {
	Facet Facet
	runs  []*ByteRun
}

// NewByteRuns returns an empty collection for the given facet.
func NewByteRuns(facet Facet) *ByteRuns {
	return &ByteRuns{Facet: facet}
}

// Append adds a run at the end of the collection.
func (brs *ByteRuns) Append(run *ByteRun) {
	brs.runs = append(brs.runs, run)
}

// Glom appends a run, merging it into the previous run when the two are
// contiguous. Useful for compacting fragmented run lists.
func (brs *ByteRuns) Glom(run *ByteRun) {
	if n := len(brs.runs); n > 0 {
		if merged := brs.runs[n-1].Concat(run); merged != nil {
			brs.runs[n-1] = merged
			return
		}
	}
	brs.runs = append(brs.runs, run)
}

// Len returns the number of runs.
func (brs *ByteRuns) Len() int { return len(brs.runs) }

// At returns the run at index i.
func (brs *ByteRuns) At(i int) *ByteRun { return brs.runs[i] }

// Runs returns the runs in order. The returned slice must not be mutated.
func (brs *ByteRuns) Runs() []*ByteRun { return brs.runs }

// TotalLen sums the lengths of all runs. The second return is false when
// any run has no length.
func (brs *ByteRuns) TotalLen() (uint64, bool) {
	var total uint64
	for _, r := range brs.runs {
		if r.Len == nil {
			return 0, false
		}
		total += *r.Len
	}
	return total, true
}
