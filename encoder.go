package dfxml

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"
)

type encodeConfig struct {
	indent  string
	compact bool
	xmlDecl bool
}

// EncodeOption adjusts encoder output.
type EncodeOption func(*encodeConfig)

// Indent sets the indentation unit. The default is two spaces.
func Indent(s string) EncodeOption {
	return func(c *encodeConfig) { c.indent = s }
}

// Compact disables all inter-element whitespace.
func Compact() EncodeOption {
	return func(c *encodeConfig) { c.compact = true }
}

// NoXMLDecl suppresses the leading XML declaration.
func NoXMLDecl() EncodeOption {
	return func(c *encodeConfig) { c.xmlDecl = false }
}

// Encoder serializes a Document to schema-ordered DFXML. Output is
// deterministic: the same tree always yields the same bytes.
type Encoder struct {
	w   *bufio.Writer
	cfg encodeConfig
	err error
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer, opts ...EncodeOption) *Encoder {
	e := &Encoder{w: bufio.NewWriter(w), cfg: encodeConfig{indent: "  ", xmlDecl: true}}
	for _, opt := range opts {
		opt(&e.cfg)
	}
	return e
}

// Encode writes the document and flushes.
func (e *Encoder) Encode(doc *Document) error {
	if e.cfg.xmlDecl {
		e.raw(`<?xml version="1.0" encoding="UTF-8"?>`)
		e.newline(0)
	}
	version := doc.Version
	if version == "" {
		version = Version
	}
	e.raw(`<dfxml xmlns=` + quoted(XMLNSDFXML) + ` version=`)
	e.quotedAttr(version)
	e.raw(">")
	e.encodeCreator(doc.Creator, 1)
	e.encodeSource(doc.Sources, 1)
	e.encodeExternals(&doc.Externals, 1, XMLNSDFXML)
	for _, child := range doc.childNodes() {
		e.encodeNode(child, 1)
	}
	e.newline(0)
	e.raw("</dfxml>")
	e.newline(0)
	if e.err != nil {
		return &Error{Kind: KindIO, Offset: -1, Message: "write failure", Cause: e.err}
	}
	if err := e.w.Flush(); err != nil {
		return &Error{Kind: KindIO, Offset: -1, Message: "write failure", Cause: err}
	}
	return nil
}

// EncodeToString renders the document to a string.
func EncodeToString(doc *Document, opts ...EncodeOption) (string, error) {
	var b strings.Builder
	if err := NewEncoder(&b, opts...).Encode(doc); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Low-level writing. The first write error sticks; later calls are no-ops.

func (e *Encoder) raw(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *Encoder) escaped(s string) {
	if e.err != nil {
		return
	}
	e.err = xml.EscapeText(e.w, []byte(s))
}

func (e *Encoder) quotedAttr(v string) {
	e.raw(`"`)
	e.escaped(v)
	e.raw(`"`)
}

func (e *Encoder) newline(depth int) {
	if e.cfg.compact {
		return
	}
	e.raw("\n")
	for i := 0; i < depth; i++ {
		e.raw(e.cfg.indent)
	}
}

type attr struct {
	name  string
	value string
}

func (e *Encoder) open(depth int, name string, attrs []attr, selfClose bool) {
	e.newline(depth)
	e.raw("<" + name)
	for _, a := range attrs {
		e.raw(" " + a.name + "=")
		e.quotedAttr(a.value)
	}
	if selfClose {
		e.raw("/>")
	} else {
		e.raw(">")
	}
}

func (e *Encoder) close(depth int, name string, indented bool) {
	if indented {
		e.newline(depth)
	}
	e.raw("</" + name + ">")
}

// scalar writes one leaf element with text content, self-closing when the
// text is empty.
func (e *Encoder) scalar(depth int, name, text string, attrs ...attr) {
	if text == "" {
		e.open(depth, name, attrs, true)
		return
	}
	e.open(depth, name, attrs, false)
	e.escaped(text)
	e.raw("</" + name + ">")
}

// Optional-field scalar helpers. A nil pointer writes nothing.

func (e *Encoder) scalarU64(depth int, name string, v *uint64) {
	if v != nil {
		e.scalar(depth, name, formatUint(*v))
	}
}

func (e *Encoder) scalarU32(depth int, name string, v *uint32) {
	if v != nil {
		e.scalar(depth, name, formatUint(uint64(*v)))
	}
}

func (e *Encoder) scalarI32(depth int, name string, v *int32) {
	if v != nil {
		e.scalar(depth, name, formatInt(int64(*v)))
	}
}

func (e *Encoder) scalarBool(depth int, name string, v *bool) {
	if v != nil {
		e.scalar(depth, name, formatBool(*v))
	}
}

func (e *Encoder) scalarString(depth int, name, v string) {
	if v != "" {
		e.scalar(depth, name, v)
	}
}

func (e *Encoder) encodeNode(n Node, depth int) {
	switch v := n.(type) {
	case *DiskImage:
		e.encodeDiskImage(v, depth)
	case *PartitionSystem:
		e.encodePartitionSystem(v, depth)
	case *Partition:
		e.encodePartition(v, depth)
	case *Volume:
		e.encodeVolume(v, depth)
	case *File:
		e.encodeFile(v, depth)
	}
}

func (e *Encoder) encodeCreator(c *Creator, depth int) {
	if c == nil {
		return
	}
	e.open(depth, "creator", nil, false)
	e.scalarString(depth+1, "program", c.Program)
	e.scalarString(depth+1, "version", c.Version)
	be := c.BuildEnvironment
	if be.Compiler != "" || len(be.Libraries) > 0 {
		e.open(depth+1, "build_environment", nil, false)
		e.scalarString(depth+2, "compiler", be.Compiler)
		for _, lib := range be.Libraries {
			attrs := []attr{{name: "name", value: lib.Name}}
			if lib.Version != "" {
				attrs = append(attrs, attr{name: "version", value: lib.Version})
			}
			e.open(depth+2, "library", attrs, true)
		}
		e.close(depth+1, "build_environment", true)
	}
	ee := c.ExecutionEnvironment
	if ee.CommandLine != "" || ee.StartTime != nil {
		e.open(depth+1, "execution_environment", nil, false)
		e.scalarString(depth+2, "command_line", ee.CommandLine)
		e.encodeTimestamp(depth+2, "start_time", ee.StartTime)
		e.close(depth+1, "execution_environment", true)
	}
	e.close(depth, "creator", true)
}

func (e *Encoder) encodeSource(sources []string, depth int) {
	if len(sources) == 0 {
		return
	}
	e.open(depth, "source", nil, false)
	for _, s := range sources {
		e.scalar(depth+1, "image_filename", s)
	}
	e.close(depth, "source", true)
}

func (e *Encoder) encodeExternals(x *Externals, depth int, inheritedNS string) {
	for _, el := range x.All() {
		e.encodeExternal(el, depth, inheritedNS)
	}
}

func (e *Encoder) encodeExternal(el *ExternalElement, depth int, inheritedNS string) {
	var attrs []attr
	if el.Namespace != inheritedNS {
		attrs = append(attrs, attr{name: "xmlns", value: el.Namespace})
	}
	// Qualified attributes need a prefix: the default namespace never
	// applies to attributes. Prefixes are assigned in first-use order and
	// declared on this element.
	var prefixes map[string]string
	for _, a := range el.Attrs {
		if a.Space == "" {
			attrs = append(attrs, attr{name: a.Name, value: a.Value})
			continue
		}
		p, ok := prefixes[a.Space]
		if !ok {
			if prefixes == nil {
				prefixes = make(map[string]string)
			}
			p = "ns" + formatUint(uint64(len(prefixes)+1))
			prefixes[a.Space] = p
			attrs = append(attrs, attr{name: "xmlns:" + p, value: a.Space})
		}
		attrs = append(attrs, attr{name: p + ":" + a.Name, value: a.Value})
	}
	if el.Text == "" && len(el.Children) == 0 {
		e.open(depth, el.Name, attrs, true)
		return
	}
	e.open(depth, el.Name, attrs, false)
	if el.Text != "" {
		e.escaped(el.Text)
	}
	for _, child := range el.Children {
		e.encodeExternal(child, depth+1, el.Namespace)
	}
	e.close(depth, el.Name, len(el.Children) > 0)
}

func (e *Encoder) encodeTimestamp(depth int, name string, ts *Timestamp) {
	if ts == nil {
		return
	}
	var attrs []attr
	if ts.Prec != nil {
		attrs = append(attrs, attr{name: "prec", value: ts.Prec.String()})
	}
	e.scalar(depth, name, ts.Format(), attrs...)
}

func (e *Encoder) encodeHashes(depth int, h *Hashes) {
	for _, hd := range h.All() {
		e.scalar(depth, "hashdigest", hd.Digest, attr{name: "type", value: hd.Type.String()})
	}
}

// encodeByteRuns writes one byte_runs collection. The facet attribute is
// omitted only when omitDefault is set and the facet is the data default,
// so multi-facet files always name each facet.
func (e *Encoder) encodeByteRuns(depth int, brs *ByteRuns, omitDefault bool) {
	if brs == nil {
		return
	}
	var attrs []attr
	if !(omitDefault && brs.Facet == FacetData) {
		attrs = append(attrs, attr{name: "facet", value: brs.Facet.String()})
	}
	if brs.Len() == 0 {
		e.open(depth, "byte_runs", attrs, true)
		return
	}
	e.open(depth, "byte_runs", attrs, false)
	for _, run := range brs.Runs() {
		e.encodeByteRun(depth+1, run)
	}
	e.close(depth, "byte_runs", true)
}

func (e *Encoder) encodeByteRun(depth int, run *ByteRun) {
	var attrs []attr
	addU64 := func(name string, v *uint64) {
		if v != nil {
			attrs = append(attrs, attr{name: name, value: formatUint(*v)})
		}
	}
	addU64("img_offset", run.ImgOffset)
	addU64("fs_offset", run.FSOffset)
	addU64("file_offset", run.FileOffset)
	addU64("len", run.Len)
	if run.Fill != nil {
		attrs = append(attrs, attr{name: "fill", value: formatUint(uint64(*run.Fill))})
	}
	if run.Type != "" {
		attrs = append(attrs, attr{name: "type", value: run.Type})
	}
	addU64("uncompressed_len", run.UncompressedLen)
	if !run.Hashes.Any() {
		e.open(depth, "byte_run", attrs, true)
		return
	}
	e.open(depth, "byte_run", attrs, false)
	e.encodeHashes(depth+1, &run.Hashes)
	e.close(depth, "byte_run", true)
}

func (e *Encoder) encodeDiskImage(di *DiskImage, depth int) {
	e.open(depth, "diskimageobject", nil, false)
	e.scalarString(depth+1, "image_filename", di.ImageFilename)
	e.scalarU64(depth+1, "imagesize", di.ImageSize)
	e.scalarU64(depth+1, "sector_size", di.SectorSize)
	e.scalarString(depth+1, "error", di.ErrorText)
	e.encodeHashes(depth+1, &di.Hashes)
	e.encodeByteRuns(depth+1, di.ByteRuns, true)
	e.encodeExternals(&di.Externals, depth+1, XMLNSDFXML)
	for _, child := range di.childNodes() {
		e.encodeNode(child, depth+1)
	}
	e.close(depth, "diskimageobject", true)
}

func (e *Encoder) encodePartitionSystem(ps *PartitionSystem, depth int) {
	e.open(depth, "partitionsystemobject", nil, false)
	e.scalarString(depth+1, "pstype_str", ps.PSType)
	e.scalarString(depth+1, "error", ps.ErrorText)
	e.encodeByteRuns(depth+1, ps.ByteRuns, true)
	e.encodeExternals(&ps.Externals, depth+1, XMLNSDFXML)
	for _, child := range ps.childNodes() {
		e.encodeNode(child, depth+1)
	}
	e.close(depth, "partitionsystemobject", true)
}

func (e *Encoder) encodePartition(p *Partition, depth int) {
	e.open(depth, "partitionobject", nil, false)
	e.scalarU64(depth+1, "partition_index", p.PartitionIndex)
	e.scalarU64(depth+1, "ptype", p.PType)
	e.scalarString(depth+1, "ptype_str", p.PTypeStr)
	e.scalarU64(depth+1, "partition_offset", p.PartitionOffset)
	e.scalarString(depth+1, "error", p.ErrorText)
	e.encodeByteRuns(depth+1, p.ByteRuns, true)
	e.encodeExternals(&p.Externals, depth+1, XMLNSDFXML)
	for _, child := range p.childNodes() {
		e.encodeNode(child, depth+1)
	}
	e.close(depth, "partitionobject", true)
}

func (e *Encoder) encodeVolume(v *Volume, depth int) {
	e.open(depth, "volume", nil, false)
	e.scalarU64(depth+1, "partition_offset", v.PartitionOffset)
	e.scalarU64(depth+1, "sector_size", v.SectorSize)
	e.scalarU64(depth+1, "block_size", v.BlockSize)
	e.scalarU64(depth+1, "ftype", v.FType)
	e.scalarString(depth+1, "ftype_str", v.FTypeStr)
	e.scalarU64(depth+1, "block_count", v.BlockCount)
	e.scalarU64(depth+1, "first_block", v.FirstBlock)
	e.scalarU64(depth+1, "last_block", v.LastBlock)
	e.scalarBool(depth+1, "allocated_only", v.AllocatedOnly)
	e.scalarString(depth+1, "error", v.ErrorText)
	e.encodeByteRuns(depth+1, v.ByteRuns, true)
	e.encodeExternals(&v.Externals, depth+1, XMLNSDFXML)
	for _, child := range v.childNodes() {
		e.encodeNode(child, depth+1)
	}
	e.close(depth, "volume", true)
}

func (e *Encoder) encodeFile(f *File, depth int) {
	e.open(depth, "fileobject", nil, false)
	e.scalarString(depth+1, "filename", f.Filename)
	e.scalarU32(depth+1, "partition", f.Partition)
	e.scalarU64(depth+1, "id", f.ID)
	if f.NameType != nil {
		e.scalar(depth+1, "name_type", f.NameType.String())
	}
	e.scalarU64(depth+1, "filesize", f.Filesize)
	e.scalarU64(depth+1, "inode", f.Inode)
	if f.MetaType != nil {
		e.scalar(depth+1, "meta_type", formatUint(uint64(*f.MetaType)))
	}
	if f.Mode != nil {
		e.scalar(depth+1, "mode", formatOctal(uint64(*f.Mode)))
	}
	e.scalarU32(depth+1, "nlink", f.Nlink)
	e.scalarI32(depth+1, "uid", f.UID)
	e.scalarI32(depth+1, "gid", f.GID)
	e.scalarU64(depth+1, "seq", f.Seq)
	e.scalarString(depth+1, "link_target", f.LinkTarget)
	e.scalarString(depth+1, "libmagic", f.Libmagic)
	e.scalarString(depth+1, "error", f.ErrorText)
	e.scalarBool(depth+1, "alloc", f.Alloc)
	e.scalarBool(depth+1, "alloc_inode", f.AllocInode)
	e.scalarBool(depth+1, "alloc_name", f.AllocName)
	e.scalarBool(depth+1, "used", f.Used)
	e.scalarBool(depth+1, "orphan", f.Orphan)
	e.scalarBool(depth+1, "compressed", f.Compressed)
	for _, name := range timestampNames {
		e.encodeTimestamp(depth+1, name, f.Timestamp(name))
	}
	e.encodeHashes(depth+1, &f.Hashes)
	omitDefault := len(f.ByteRuns) == 1
	for _, brs := range f.ByteRuns {
		e.encodeByteRuns(depth+1, brs, omitDefault)
	}
	e.encodeExternals(&f.Externals, depth+1, XMLNSDFXML)
	e.close(depth, "fileobject", true)
}
