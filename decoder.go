package dfxml

import (
	"io"
	"strings"

	"github.com/dfxmlgo/dfxml/internal/xmltoken"
)

// EventKind identifies what a decoder event announces.
type EventKind int

const (
	// DocumentOpened is emitted once, with the document metadata populated
	// and no children attached yet.
	DocumentOpened EventKind = iota
	// DocumentClosed is emitted at the dfxml end tag with the complete tree.
	DocumentClosed
	DiskImageOpened
	DiskImageClosed
	PartitionSystemOpened
	PartitionSystemClosed
	PartitionOpened
	PartitionClosed
	VolumeOpened
	VolumeClosed
	// FileRecord is emitted once per fileobject, fully populated.
	FileRecord
)

// Event is one unit of decoder progress. Opened events carry the node with
// its scalar fields populated but no children attached; Closed events carry
// the node with its complete subtree. FileRecord events carry a complete
// *File.
type Event struct {
	Kind EventKind
	Node Node
}

var openEventKinds = map[NodeKind]EventKind{
	KindDiskImage:       DiskImageOpened,
	KindPartitionSystem: PartitionSystemOpened,
	KindPartition:       PartitionOpened,
	KindVolume:          VolumeOpened,
}

var closeEventKinds = map[NodeKind]EventKind{
	KindDocument:        DocumentClosed,
	KindDiskImage:       DiskImageClosed,
	KindPartitionSystem: PartitionSystemClosed,
	KindPartition:       PartitionClosed,
	KindVolume:          VolumeClosed,
}

// nestingTable holds the legal parent/child pairs.
var nestingTable = map[NodeKind][]NodeKind{
	KindDocument:        {KindDiskImage, KindPartitionSystem, KindPartition, KindVolume, KindFile},
	KindDiskImage:       {KindPartitionSystem, KindPartition, KindVolume, KindFile},
	KindPartitionSystem: {KindPartition, KindFile},
	KindPartition:       {KindPartitionSystem, KindPartition, KindVolume, KindFile},
	KindVolume:          {KindDiskImage, KindVolume, KindFile},
}

func childAllowed(parent, child NodeKind) bool {
	for _, k := range nestingTable[parent] {
		if k == child {
			return true
		}
	}
	return false
}

type decodeConfig struct {
	retainFiles bool
}

// DecodeOption adjusts decoder behavior.
type DecodeOption func(*decodeConfig)

// RetainFiles makes the decoder attach every decoded File to its parent
// container in addition to emitting it. Without this option file records
// are emitted and then released, so whole-image streams decode in memory
// proportional to container depth, not file count.
func RetainFiles() DecodeOption {
	return func(c *decodeConfig) { c.retainFiles = true }
}

// Decoder is a pull-based streaming DFXML reader. Call Next repeatedly
// until it returns io.EOF. The decoder is not safe for concurrent use.
type Decoder struct {
	src    *xmltoken.Source
	cfg    decodeConfig
	frames []Node
	doc    *Document
	held   *xmltoken.Token // Token read ahead during a prolog, not yet handled.
	done   bool
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader, opts ...DecodeOption) *Decoder {
	d := &Decoder{src: xmltoken.NewSource(r)}
	for _, opt := range opts {
		opt(&d.cfg)
	}
	return d
}

// Document returns the root document once DocumentOpened has been emitted,
// nil before that. The tree under it grows as container Closed events are
// emitted.
func (d *Decoder) Document() *Document { return d.doc }

// Next returns the next event. It returns io.EOF after DocumentClosed.
func (d *Decoder) Next() (Event, error) {
	if d.done {
		return Event{}, io.EOF
	}
	for {
		var tok xmltoken.Token
		var err error
		if d.held != nil {
			tok, d.held = *d.held, nil
		} else {
			tok, err = d.src.Next()
		}
		if err == io.EOF {
			if d.doc == nil {
				return Event{}, &Error{Kind: KindMalformedToken, Offset: tok.Offset, Message: "missing document element"}
			}
			return Event{}, &Error{Kind: KindMalformedToken, Offset: tok.Offset, Message: "unexpected end of input"}
		}
		if err != nil {
			return Event{}, d.classify(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
			// Inter-element whitespace, or stray text we have no slot for.
		case xmltoken.Start:
			ev, emitted, err := d.handleStart(tok)
			if err != nil {
				return Event{}, err
			}
			if emitted {
				return ev, nil
			}
		case xmltoken.End:
			ev, err := d.handleEnd(tok)
			if err != nil {
				return Event{}, err
			}
			return ev, nil
		}
	}
}

func (d *Decoder) classify(err error) error {
	if de, ok := AsError(err); ok {
		return de
	}
	off := d.src.Offset()
	switch {
	case xmltoken.IsMismatchedClose(err):
		return &Error{Kind: KindUnexpectedNesting, Offset: off, Message: "mismatched close tag", Cause: err}
	case xmltoken.IsSyntax(err):
		return &Error{Kind: KindMalformedToken, Offset: off, Message: "malformed XML", Cause: err}
	default:
		return &Error{Kind: KindIO, Offset: off, Message: "read failure", Cause: err}
	}
}

// fail maps errors raised while inside an element subtree, where a clean
// EOF is always truncation.
func (d *Decoder) fail(err error) error {
	if err == io.EOF {
		return &Error{Kind: KindMalformedToken, Offset: d.src.Offset(), Message: "unexpected end of input"}
	}
	return d.classify(err)
}

func isDFXMLSpace(space string) bool {
	return space == "" || space == XMLNSDFXML
}

func (d *Decoder) handleStart(tok xmltoken.Token) (Event, bool, error) {
	if len(d.frames) == 0 {
		if !isDFXMLSpace(tok.Space) || tok.Local != "dfxml" {
			return Event{}, false, nestingAt(tok.Local, "document element must be <dfxml>", tok.Offset)
		}
		d.doc = &Document{}
		for _, a := range tok.Attrs {
			if a.Local == "version" {
				d.doc.Version = a.Value
			}
		}
		d.frames = append(d.frames, d.doc)
		if err := d.prolog(d.doc); err != nil {
			return Event{}, false, err
		}
		return Event{Kind: DocumentOpened, Node: d.doc}, true, nil
	}

	top := d.frames[len(d.frames)-1]

	if !isDFXMLSpace(tok.Space) {
		el, err := d.captureExternal(tok)
		if err != nil {
			return Event{}, false, err
		}
		if err := externalsOf(top).Append(el); err != nil {
			return Event{}, false, err
		}
		return Event{}, false, nil
	}

	switch tok.Local {
	case "diskimageobject", "partitionsystemobject", "partitionobject", "volume":
		child := newContainer(tok.Local)
		if !childAllowed(top.Kind(), child.Kind()) {
			return Event{}, false, nestingAt(tok.Local,
				"<"+tok.Local+"> cannot nest under <"+top.Kind().String()+">", tok.Offset)
		}
		d.frames = append(d.frames, child)
		if err := d.prolog(child); err != nil {
			return Event{}, false, err
		}
		return Event{Kind: openEventKinds[child.Kind()], Node: child}, true, nil
	case "fileobject":
		f, err := d.parseFile(tok)
		if err != nil {
			return Event{}, false, err
		}
		if d.cfg.retainFiles {
			if err := attachChild(top, f, tok.Offset); err != nil {
				return Event{}, false, err
			}
		}
		return Event{Kind: FileRecord, Node: f}, true, nil
	}

	if top.Kind() == KindDocument {
		handled, err := d.documentMeta(tok.Local)
		if err != nil {
			return Event{}, false, err
		}
		if handled {
			return Event{}, false, nil
		}
	}

	handled, err := d.assignScalar(top, tok)
	if err != nil {
		return Event{}, false, err
	}
	if !handled {
		if err := d.skipSubtree(); err != nil {
			return Event{}, false, err
		}
	}
	return Event{}, false, nil
}

// prolog consumes the scalar and metadata elements at the head of a just
// opened container so its Opened event carries a populated snapshot. It
// stops at the first child object or at the container's end tag, leaving
// that token held for the main loop.
func (d *Decoder) prolog(n Node) error {
	for {
		tok, err := d.src.Next()
		if err != nil {
			return d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			d.held = &tok
			return nil
		case xmltoken.Start:
			if !isDFXMLSpace(tok.Space) {
				el, err := d.captureExternal(tok)
				if err != nil {
					return err
				}
				if err := externalsOf(n).Append(el); err != nil {
					return err
				}
				continue
			}
			switch tok.Local {
			case "diskimageobject", "partitionsystemobject", "partitionobject", "volume", "fileobject":
				d.held = &tok
				return nil
			}
			if n.Kind() == KindDocument {
				handled, err := d.documentMeta(tok.Local)
				if err != nil {
					return err
				}
				if handled {
					continue
				}
			}
			handled, err := d.assignScalar(n, tok)
			if err != nil {
				return err
			}
			if !handled {
				if err := d.skipSubtree(); err != nil {
					return err
				}
			}
		}
	}
}

// documentMeta dispatches the document-level metadata blocks.
func (d *Decoder) documentMeta(local string) (bool, error) {
	switch local {
	case "metadata":
		return true, d.parseMetadata()
	case "creator":
		c, err := d.parseCreator()
		if err != nil {
			return true, err
		}
		d.doc.Creator = c
		return true, nil
	case "source":
		return true, d.parseSource()
	}
	return false, nil
}

func (d *Decoder) handleEnd(tok xmltoken.Token) (Event, error) {
	if len(d.frames) == 0 {
		return Event{}, nestingAt(tok.Local, "close tag with no open element", tok.Offset)
	}
	top := d.frames[len(d.frames)-1]
	d.frames = d.frames[:len(d.frames)-1]
	if len(d.frames) > 0 {
		parent := d.frames[len(d.frames)-1]
		if err := attachChild(parent, top, tok.Offset); err != nil {
			return Event{}, err
		}
	} else {
		d.done = true
	}
	return Event{Kind: closeEventKinds[top.Kind()], Node: top}, nil
}

func newContainer(local string) Node {
	switch local {
	case "diskimageobject":
		return &DiskImage{}
	case "partitionsystemobject":
		return &PartitionSystem{}
	case "partitionobject":
		return &Partition{}
	default:
		return &Volume{}
	}
}

func attachChild(parent, child Node, offset int64) error {
	ok := false
	switch p := parent.(type) {
	case *Document:
		var c DocumentChild
		if c, ok = child.(DocumentChild); ok {
			p.AppendChild(c)
		}
	case *DiskImage:
		var c DiskImageChild
		if c, ok = child.(DiskImageChild); ok {
			p.AppendChild(c)
		}
	case *PartitionSystem:
		var c PartitionSystemChild
		if c, ok = child.(PartitionSystemChild); ok {
			p.AppendChild(c)
		}
	case *Partition:
		var c PartitionChild
		if c, ok = child.(PartitionChild); ok {
			p.AppendChild(c)
		}
	case *Volume:
		var c VolumeChild
		if c, ok = child.(VolumeChild); ok {
			p.AppendChild(c)
		}
	}
	if !ok {
		return nestingAt(child.Kind().String(),
			"<"+child.Kind().String()+"> cannot nest under <"+parent.Kind().String()+">", offset)
	}
	return nil
}

func externalsOf(n Node) *Externals {
	switch v := n.(type) {
	case *Document:
		return &v.Externals
	case *DiskImage:
		return &v.Externals
	case *PartitionSystem:
		return &v.Externals
	case *Partition:
		return &v.Externals
	case *Volume:
		return &v.Externals
	case *File:
		return &v.Externals
	}
	return nil
}

func nestingAt(element, msg string, offset int64) *Error {
	return &Error{Kind: KindUnexpectedNesting, Element: element, Offset: offset, Message: msg}
}

// readText consumes the content of an already-opened scalar element up to
// its end tag and returns the trimmed text.
func (d *Decoder) readText(element, record string) (string, error) {
	var b strings.Builder
	for {
		tok, err := d.src.Next()
		if err != nil {
			return "", d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
			b.WriteString(tok.Text)
		case xmltoken.Start:
			return "", &Error{Kind: KindInvalidScalar, Element: element, Record: record,
				Offset: tok.Offset, Message: "unexpected child element <" + tok.Local + ">"}
		case xmltoken.End:
			return strings.TrimSpace(b.String()), nil
		}
	}
}

// skipSubtree consumes everything up to the end tag of an already-opened
// element. Unrecognized in-namespace elements are dropped this way.
func (d *Decoder) skipSubtree() error {
	depth := 1
	for depth > 0 {
		tok, err := d.src.Next()
		if err != nil {
			return d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Start:
			depth++
		case xmltoken.End:
			depth--
		}
	}
	return nil
}

func (d *Decoder) captureExternal(start xmltoken.Token) (*ExternalElement, error) {
	el := &ExternalElement{Namespace: start.Space, Name: start.Local}
	for _, a := range start.Attrs {
		el.AddAttrNS(a.Space, a.Local, a.Value)
	}
	var text strings.Builder
	for {
		tok, err := d.src.Next()
		if err != nil {
			return nil, d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
			text.WriteString(tok.Text)
		case xmltoken.Start:
			child, err := d.captureExternal(tok)
			if err != nil {
				return nil, err
			}
			el.AddChild(child)
		case xmltoken.End:
			el.Text = strings.TrimSpace(text.String())
			return el, nil
		}
	}
}

// Scalar assignment helpers. Each reads the element text and stores the
// strictly parsed value; any parse failure is an invalid scalar error with
// the element and record names attached.

func (d *Decoder) scalarU64(dst **uint64, tok xmltoken.Token, record string) error {
	s, err := d.readText(tok.Local, record)
	if err != nil {
		return err
	}
	v, err := parseUint(s, 64)
	if err != nil {
		return &Error{Kind: KindInvalidScalar, Element: tok.Local, Record: record,
			Offset: tok.Offset, Message: "bad unsigned value " + quoted(s), Cause: err}
	}
	*dst = &v
	return nil
}

func (d *Decoder) scalarU32(dst **uint32, tok xmltoken.Token, record string) error {
	s, err := d.readText(tok.Local, record)
	if err != nil {
		return err
	}
	v, err := parseUint(s, 32)
	if err != nil {
		return &Error{Kind: KindInvalidScalar, Element: tok.Local, Record: record,
			Offset: tok.Offset, Message: "bad unsigned value " + quoted(s), Cause: err}
	}
	u := uint32(v)
	*dst = &u
	return nil
}

func (d *Decoder) scalarI32(dst **int32, tok xmltoken.Token, record string) error {
	s, err := d.readText(tok.Local, record)
	if err != nil {
		return err
	}
	v, err := parseInt(s, 32)
	if err != nil {
		return &Error{Kind: KindInvalidScalar, Element: tok.Local, Record: record,
			Offset: tok.Offset, Message: "bad signed value " + quoted(s), Cause: err}
	}
	i := int32(v)
	*dst = &i
	return nil
}

func (d *Decoder) scalarBool(dst **bool, tok xmltoken.Token, record string) error {
	s, err := d.readText(tok.Local, record)
	if err != nil {
		return err
	}
	v, err := parseBool(s)
	if err != nil {
		return &Error{Kind: KindInvalidScalar, Element: tok.Local, Record: record,
			Offset: tok.Offset, Message: "bad boolean " + quoted(s), Cause: err}
	}
	*dst = &v
	return nil
}

func (d *Decoder) scalarString(dst *string, tok xmltoken.Token, record string) error {
	s, err := d.readText(tok.Local, record)
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

// assignScalar routes a start tag to the matching scalar field of the open
// container. It reports false when the element is not a scalar of that
// container, leaving the token stream positioned inside the element.
func (d *Decoder) assignScalar(n Node, tok xmltoken.Token) (bool, error) {
	record := n.Kind().String()
	switch v := n.(type) {
	case *DiskImage:
		switch tok.Local {
		case "image_filename":
			return true, d.scalarString(&v.ImageFilename, tok, record)
		case "imagesize":
			return true, d.scalarU64(&v.ImageSize, tok, record)
		case "sector_size":
			return true, d.scalarU64(&v.SectorSize, tok, record)
		case "error":
			return true, d.scalarString(&v.ErrorText, tok, record)
		case "hashdigest":
			return true, d.parseHashdigest(&v.Hashes, tok, record)
		case "byte_runs":
			brs, err := d.parseByteRuns(tok, record)
			if err != nil {
				return true, err
			}
			v.ByteRuns = brs
			return true, nil
		}
	case *PartitionSystem:
		switch tok.Local {
		case "pstype_str":
			return true, d.scalarString(&v.PSType, tok, record)
		case "error":
			return true, d.scalarString(&v.ErrorText, tok, record)
		case "byte_runs":
			brs, err := d.parseByteRuns(tok, record)
			if err != nil {
				return true, err
			}
			v.ByteRuns = brs
			return true, nil
		}
	case *Partition:
		switch tok.Local {
		case "partition_index":
			return true, d.scalarU64(&v.PartitionIndex, tok, record)
		case "ptype":
			return true, d.scalarU64(&v.PType, tok, record)
		case "ptype_str":
			return true, d.scalarString(&v.PTypeStr, tok, record)
		case "partition_offset":
			return true, d.scalarU64(&v.PartitionOffset, tok, record)
		case "error":
			return true, d.scalarString(&v.ErrorText, tok, record)
		case "byte_runs":
			brs, err := d.parseByteRuns(tok, record)
			if err != nil {
				return true, err
			}
			v.ByteRuns = brs
			return true, nil
		}
	case *Volume:
		switch tok.Local {
		case "partition_offset":
			return true, d.scalarU64(&v.PartitionOffset, tok, record)
		case "sector_size":
			return true, d.scalarU64(&v.SectorSize, tok, record)
		case "block_size":
			return true, d.scalarU64(&v.BlockSize, tok, record)
		case "ftype":
			return true, d.scalarU64(&v.FType, tok, record)
		case "ftype_str":
			return true, d.scalarString(&v.FTypeStr, tok, record)
		case "block_count":
			return true, d.scalarU64(&v.BlockCount, tok, record)
		case "first_block":
			return true, d.scalarU64(&v.FirstBlock, tok, record)
		case "last_block":
			return true, d.scalarU64(&v.LastBlock, tok, record)
		case "allocated_only":
			return true, d.scalarBool(&v.AllocatedOnly, tok, record)
		case "error":
			return true, d.scalarString(&v.ErrorText, tok, record)
		case "byte_runs":
			brs, err := d.parseByteRuns(tok, record)
			if err != nil {
				return true, err
			}
			v.ByteRuns = brs
			return true, nil
		}
	}
	return false, nil
}

func (d *Decoder) parseHashdigest(h *Hashes, tok xmltoken.Token, record string) error {
	typeAttr := ""
	for _, a := range tok.Attrs {
		if a.Local == "type" {
			typeAttr = a.Value
		}
	}
	ht, err := ParseHashType(typeAttr)
	if err != nil {
		de, _ := AsError(err)
		de.Record = record
		de.Offset = tok.Offset
		return de
	}
	digest, err := d.readText(tok.Local, record)
	if err != nil {
		return err
	}
	h.Set(ht, digest)
	return nil
}

func (d *Decoder) parseTimestamp(tok xmltoken.Token, record string) (*Timestamp, error) {
	precAttr := ""
	for _, a := range tok.Attrs {
		if a.Local == "prec" {
			precAttr = a.Value
		}
	}
	s, err := d.readText(tok.Local, record)
	if err != nil {
		return nil, err
	}
	t, err := ParseTimestampText(s)
	if err != nil {
		de, _ := AsError(err)
		de.Element = tok.Local
		de.Record = record
		de.Offset = tok.Offset
		return nil, de
	}
	ts := &Timestamp{Time: t}
	if precAttr != "" {
		p, err := ParsePrecision(precAttr)
		if err != nil {
			de, _ := AsError(err)
			de.Element = tok.Local
			de.Record = record
			de.Offset = tok.Offset
			return nil, de
		}
		ts.Prec = &p
	}
	return ts, nil
}

func (d *Decoder) parseByteRuns(start xmltoken.Token, record string) (*ByteRuns, error) {
	facetAttr := ""
	for _, a := range start.Attrs {
		if a.Local == "facet" {
			facetAttr = a.Value
		}
	}
	facet, err := ParseFacet(facetAttr)
	if err != nil {
		de, _ := AsError(err)
		de.Record = record
		de.Offset = start.Offset
		return nil, de
	}
	brs := NewByteRuns(facet)
	for {
		tok, err := d.src.Next()
		if err != nil {
			return nil, d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			return brs, nil
		case xmltoken.Start:
			if isDFXMLSpace(tok.Space) && tok.Local == "byte_run" {
				run, err := d.parseByteRun(tok, record)
				if err != nil {
					return nil, err
				}
				brs.Append(run)
			} else if err := d.skipSubtree(); err != nil {
				return nil, err
			}
		}
	}
}

func (d *Decoder) parseByteRun(start xmltoken.Token, record string) (*ByteRun, error) {
	run := &ByteRun{}
	for _, a := range start.Attrs {
		badAttr := func(cause error) *Error {
			return &Error{Kind: KindInvalidScalar, Element: "byte_run", Record: record,
				Offset: start.Offset, Message: "bad " + a.Local + " attribute " + quoted(a.Value), Cause: cause}
		}
		switch a.Local {
		case "img_offset", "fs_offset", "file_offset", "len", "uncompressed_len":
			v, err := parseUint(a.Value, 64)
			if err != nil {
				return nil, badAttr(err)
			}
			switch a.Local {
			case "img_offset":
				run.ImgOffset = &v
			case "fs_offset":
				run.FSOffset = &v
			case "file_offset":
				run.FileOffset = &v
			case "len":
				run.Len = &v
			case "uncompressed_len":
				run.UncompressedLen = &v
			}
		case "fill":
			v, err := parseUint(a.Value, 8)
			if err != nil {
				return nil, badAttr(err)
			}
			f := uint8(v)
			run.Fill = &f
		case "type":
			run.Type = a.Value
		}
	}
	for {
		tok, err := d.src.Next()
		if err != nil {
			return nil, d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			return run, nil
		case xmltoken.Start:
			if isDFXMLSpace(tok.Space) && tok.Local == "hashdigest" {
				if err := d.parseHashdigest(&run.Hashes, tok, record); err != nil {
					return nil, err
				}
			} else if err := d.skipSubtree(); err != nil {
				return nil, err
			}
		}
	}
}

// parseFile decodes an entire fileobject subtree, already opened at start.
func (d *Decoder) parseFile(start xmltoken.Token) (*File, error) {
	f := &File{}
	for {
		tok, err := d.src.Next()
		if err != nil {
			return nil, d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			return f, nil
		case xmltoken.Start:
			if !isDFXMLSpace(tok.Space) {
				el, err := d.captureExternal(tok)
				if err != nil {
					return nil, err
				}
				if err := f.Externals.Append(el); err != nil {
					return nil, err
				}
				continue
			}
			if err := d.parseFileElement(f, tok); err != nil {
				return nil, err
			}
		}
	}
}

func (d *Decoder) parseFileElement(f *File, tok xmltoken.Token) error {
	const record = "fileobject"
	switch tok.Local {
	case "filename":
		return d.scalarString(&f.Filename, tok, record)
	case "filesize":
		return d.scalarU64(&f.Filesize, tok, record)
	case "inode":
		return d.scalarU64(&f.Inode, tok, record)
	case "mode":
		s, err := d.readText(tok.Local, record)
		if err != nil {
			return err
		}
		v, err := parseOctal(s, 32)
		if err != nil {
			return &Error{Kind: KindInvalidScalar, Element: tok.Local, Record: record,
				Offset: tok.Offset, Message: "bad octal mode " + quoted(s), Cause: err}
		}
		m := uint32(v)
		f.Mode = &m
		return nil
	case "nlink":
		return d.scalarU32(&f.Nlink, tok, record)
	case "uid":
		return d.scalarI32(&f.UID, tok, record)
	case "gid":
		return d.scalarI32(&f.GID, tok, record)
	case "seq":
		return d.scalarU64(&f.Seq, tok, record)
	case "id":
		return d.scalarU64(&f.ID, tok, record)
	case "partition":
		return d.scalarU32(&f.Partition, tok, record)
	case "name_type":
		s, err := d.readText(tok.Local, record)
		if err != nil {
			return err
		}
		nt, err := ParseNameType(s)
		if err != nil {
			de, _ := AsError(err)
			de.Offset = tok.Offset
			return de
		}
		f.NameType = &nt
		return nil
	case "meta_type":
		s, err := d.readText(tok.Local, record)
		if err != nil {
			return err
		}
		mt, err := ParseMetaType(s)
		if err != nil {
			de, _ := AsError(err)
			de.Offset = tok.Offset
			return de
		}
		f.MetaType = &mt
		return nil
	case "alloc":
		return d.scalarBool(&f.Alloc, tok, record)
	case "alloc_inode":
		return d.scalarBool(&f.AllocInode, tok, record)
	case "alloc_name":
		return d.scalarBool(&f.AllocName, tok, record)
	case "used":
		return d.scalarBool(&f.Used, tok, record)
	case "orphan":
		return d.scalarBool(&f.Orphan, tok, record)
	case "compressed":
		return d.scalarBool(&f.Compressed, tok, record)
	case "link_target":
		return d.scalarString(&f.LinkTarget, tok, record)
	case "libmagic":
		return d.scalarString(&f.Libmagic, tok, record)
	case "error":
		return d.scalarString(&f.ErrorText, tok, record)
	case "mtime", "atime", "ctime", "crtime", "dtime", "bkup_time":
		ts, err := d.parseTimestamp(tok, record)
		if err != nil {
			return err
		}
		return f.SetTimestamp(tok.Local, ts)
	case "hashdigest":
		return d.parseHashdigest(&f.Hashes, tok, record)
	case "byte_runs":
		brs, err := d.parseByteRuns(tok, record)
		if err != nil {
			return err
		}
		f.ByteRuns = append(f.ByteRuns, brs)
		return nil
	}
	return d.skipSubtree()
}

// parseMetadata consumes a metadata block. Its dc-namespace children arrive
// as foreign elements and are preserved on the document; in-namespace
// children are skipped.
func (d *Decoder) parseMetadata() error {
	for {
		tok, err := d.src.Next()
		if err != nil {
			return d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			return nil
		case xmltoken.Start:
			if !isDFXMLSpace(tok.Space) {
				el, err := d.captureExternal(tok)
				if err != nil {
					return err
				}
				if err := d.doc.Externals.Append(el); err != nil {
					return err
				}
				continue
			}
			if err := d.skipSubtree(); err != nil {
				return err
			}
		}
	}
}

func (d *Decoder) parseCreator() (*Creator, error) {
	const record = "creator"
	c := &Creator{}
	for {
		tok, err := d.src.Next()
		if err != nil {
			return nil, d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			return c, nil
		case xmltoken.Start:
			if !isDFXMLSpace(tok.Space) {
				el, err := d.captureExternal(tok)
				if err != nil {
					return nil, err
				}
				if err := d.doc.Externals.Append(el); err != nil {
					return nil, err
				}
				continue
			}
			switch tok.Local {
			case "program":
				if err := d.scalarString(&c.Program, tok, record); err != nil {
					return nil, err
				}
			case "version":
				if err := d.scalarString(&c.Version, tok, record); err != nil {
					return nil, err
				}
			case "build_environment":
				if err := d.parseBuildEnvironment(&c.BuildEnvironment); err != nil {
					return nil, err
				}
			case "execution_environment":
				if err := d.parseExecutionEnvironment(&c.ExecutionEnvironment); err != nil {
					return nil, err
				}
			default:
				if err := d.skipSubtree(); err != nil {
					return nil, err
				}
			}
		}
	}
}

func (d *Decoder) parseBuildEnvironment(be *BuildEnvironment) error {
	const record = "build_environment"
	for {
		tok, err := d.src.Next()
		if err != nil {
			return d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			return nil
		case xmltoken.Start:
			switch {
			case isDFXMLSpace(tok.Space) && tok.Local == "compiler":
				if err := d.scalarString(&be.Compiler, tok, record); err != nil {
					return err
				}
			case isDFXMLSpace(tok.Space) && tok.Local == "library":
				lib := Library{}
				for _, a := range tok.Attrs {
					switch a.Local {
					case "name":
						lib.Name = a.Value
					case "version":
						lib.Version = a.Value
					}
				}
				be.Libraries = append(be.Libraries, lib)
				if err := d.skipSubtree(); err != nil {
					return err
				}
			default:
				if err := d.skipSubtree(); err != nil {
					return err
				}
			}
		}
	}
}

func (d *Decoder) parseExecutionEnvironment(ee *ExecutionEnvironment) error {
	const record = "execution_environment"
	for {
		tok, err := d.src.Next()
		if err != nil {
			return d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			return nil
		case xmltoken.Start:
			switch {
			case isDFXMLSpace(tok.Space) && tok.Local == "command_line":
				if err := d.scalarString(&ee.CommandLine, tok, record); err != nil {
					return err
				}
			case isDFXMLSpace(tok.Space) && tok.Local == "start_time":
				ts, err := d.parseTimestamp(tok, record)
				if err != nil {
					return err
				}
				ee.StartTime = ts
			default:
				if err := d.skipSubtree(); err != nil {
					return err
				}
			}
		}
	}
}

func (d *Decoder) parseSource() error {
	const record = "source"
	for {
		tok, err := d.src.Next()
		if err != nil {
			return d.fail(err)
		}
		switch tok.Kind {
		case xmltoken.Text:
		case xmltoken.End:
			return nil
		case xmltoken.Start:
			if isDFXMLSpace(tok.Space) && tok.Local == "image_filename" {
				s, err := d.readText(tok.Local, record)
				if err != nil {
					return err
				}
				d.doc.Sources = append(d.doc.Sources, s)
			} else if err := d.skipSubtree(); err != nil {
				return err
			}
		}
	}
}
