package dfxml

import "iter"

// NodeKind identifies the concrete type behind a Node.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindDiskImage
	KindPartitionSystem
	KindPartition
	KindVolume
	KindFile
)

var nodeKindNames = [...]string{
	"dfxml",
	"diskimageobject",
	"partitionsystemobject",
	"partitionobject",
	"volume",
	"fileobject",
}

// String returns the element name of the kind.
func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "unknown"
	}
	return nodeKindNames[k]
}

// Node is the common interface of every object in a DFXML tree. The
// interface is sealed: only types in this package implement it.
type Node interface {
	Kind() NodeKind
	// Parent returns the node this one is attached to, or nil.
	Parent() Node

	setParent(Node)
}

// Child interfaces encode which object kinds may nest under which
// container. Appending an illegal child is a compile error, not a runtime
// check.
type (
	// DocumentChild may nest directly under a Document.
	DocumentChild interface {
		Node
		documentChild()
	}
	// DiskImageChild may nest under a DiskImage.
	DiskImageChild interface {
		Node
		diskImageChild()
	}
	// PartitionSystemChild may nest under a PartitionSystem.
	PartitionSystemChild interface {
		Node
		partitionSystemChild()
	}
	// PartitionChild may nest under a Partition.
	PartitionChild interface {
		Node
		partitionChild()
	}
	// VolumeChild may nest under a Volume.
	VolumeChild interface {
		Node
		volumeChild()
	}
)

// container is implemented by every node that holds children.
type container interface {
	Node
	childNodes() []Node
}

// Library names a software library recorded in the build environment.
type Library struct {
	Name    string
	Version string
}

func (l Library) String() string {
	if l.Version == "" {
		return l.Name
	}
	return l.Name + "-" + l.Version
}

// RelaxedEq reports whether two library records plausibly denote the same
// library: names must match exactly, versions match when equal or when
// either side omits one.
func (l Library) RelaxedEq(other Library) bool {
	if l.Name != other.Name {
		return false
	}
	return l.Version == other.Version || l.Version == "" || other.Version == ""
}

// BuildEnvironment records how the producing tool was built.
type BuildEnvironment struct {
	Compiler  string
	Libraries []Library
}

// ExecutionEnvironment records how the producing tool was invoked.
type ExecutionEnvironment struct {
	CommandLine string
	StartTime   *Timestamp
}

// Creator identifies the tool that produced a document.
type Creator struct {
	Program              string
	Version              string
	BuildEnvironment     BuildEnvironment
	ExecutionEnvironment ExecutionEnvironment
}

// Document is the root of a DFXML tree. Its metadata mirrors the dfxml
// element's creator and source blocks.
type Document struct {
	Version   string // Value of the dfxml version attribute.
	Creator   *Creator
	Sources   []string // image_filename values from the source block.
	Externals Externals

	children []DocumentChild
}

// NewDocument returns an empty document with the current schema version.
func NewDocument() *Document {
	return &Document{Version: Version}
}

func (d *Document) Kind() NodeKind { return KindDocument }
func (d *Document) Parent() Node   { return nil }
func (d *Document) setParent(Node) {}

// AppendChild attaches a child object. Legal children are DiskImage,
// PartitionSystem, Partition, Volume and File.
func (d *Document) AppendChild(c DocumentChild) {
	c.setParent(d)
	d.children = append(d.children, c)
}

func (d *Document) childNodes() []Node { return toNodes(d.children) }

// Children iterates over the direct children in document order.
func (d *Document) Children() iter.Seq[Node] { return childSeq(d) }

// Walk iterates over all descendants in depth-first pre-order.
func (d *Document) Walk() iter.Seq[Node] { return walkSeq(d) }

// Files iterates over all File records in the subtree, in document order.
func (d *Document) Files() iter.Seq[*File] { return fileSeq(d) }

// DiskImage describes one disk image within a document.
type DiskImage struct {
	ImageFilename string
	ImageSize     *uint64
	SectorSize    *uint64
	ErrorText     string
	Hashes        Hashes
	ByteRuns      *ByteRuns
	Externals     Externals

	parent   Node
	children []DiskImageChild
}

// NewDiskImage returns an empty disk image object.
func NewDiskImage() *DiskImage { return &DiskImage{} }

func (di *DiskImage) Kind() NodeKind   { return KindDiskImage }
func (di *DiskImage) Parent() Node     { return di.parent }
func (di *DiskImage) setParent(p Node) { di.parent = p }

func (di *DiskImage) documentChild() {}
func (di *DiskImage) volumeChild()   {}

// AppendChild attaches a child object. Legal children are PartitionSystem,
// Partition, Volume and File.
func (di *DiskImage) AppendChild(c DiskImageChild) {
	c.setParent(di)
	di.children = append(di.children, c)
}

func (di *DiskImage) childNodes() []Node { return toNodes(di.children) }

// Children iterates over the direct children in document order.
func (di *DiskImage) Children() iter.Seq[Node] { return childSeq(di) }

// Walk iterates over all descendants in depth-first pre-order.
func (di *DiskImage) Walk() iter.Seq[Node] { return walkSeq(di) }

// Files iterates over all File records in the subtree, in document order.
func (di *DiskImage) Files() iter.Seq[*File] { return fileSeq(di) }

// PartitionSystem describes a partition table (MBR, GPT, APM).
type PartitionSystem struct {
	PSType    string // pstype_str value, for example "gpt".
	ErrorText string
	ByteRuns  *ByteRuns
	Externals Externals

	parent   Node
	children []PartitionSystemChild
}

// NewPartitionSystem returns an empty partition system object.
func NewPartitionSystem() *PartitionSystem { return &PartitionSystem{} }

func (ps *PartitionSystem) Kind() NodeKind   { return KindPartitionSystem }
func (ps *PartitionSystem) Parent() Node     { return ps.parent }
func (ps *PartitionSystem) setParent(p Node) { ps.parent = p }

func (ps *PartitionSystem) documentChild()  {}
func (ps *PartitionSystem) diskImageChild() {}
func (ps *PartitionSystem) partitionChild() {}

// AppendChild attaches a child object. Legal children are Partition and
// File.
func (ps *PartitionSystem) AppendChild(c PartitionSystemChild) {
	c.setParent(ps)
	ps.children = append(ps.children, c)
}

func (ps *PartitionSystem) childNodes() []Node { return toNodes(ps.children) }

// Children iterates over the direct children in document order.
func (ps *PartitionSystem) Children() iter.Seq[Node] { return childSeq(ps) }

// Walk iterates over all descendants in depth-first pre-order.
func (ps *PartitionSystem) Walk() iter.Seq[Node] { return walkSeq(ps) }

// Files iterates over all File records in the subtree, in document order.
func (ps *PartitionSystem) Files() iter.Seq[*File] { return fileSeq(ps) }

// Partition describes one entry of a partition system.
type Partition struct {
	PartitionIndex  *uint64
	PType           *uint64 // Numeric partition type code.
	PTypeStr        string
	PartitionOffset *uint64 // Byte offset from the start of the image.
	ErrorText       string
	ByteRuns        *ByteRuns
	Externals       Externals

	parent   Node
	children []PartitionChild
}

// NewPartition returns an empty partition object.
func NewPartition() *Partition { return &Partition{} }

func (p *Partition) Kind() NodeKind   { return KindPartition }
func (p *Partition) Parent() Node     { return p.parent }
func (p *Partition) setParent(n Node) { p.parent = n }

func (p *Partition) documentChild()        {}
func (p *Partition) diskImageChild()       {}
func (p *Partition) partitionSystemChild() {}
func (p *Partition) partitionChild()       {}

// AppendChild attaches a child object. Legal children are PartitionSystem,
// Partition, Volume and File.
func (p *Partition) AppendChild(c PartitionChild) {
	c.setParent(p)
	p.children = append(p.children, c)
}

func (p *Partition) childNodes() []Node { return toNodes(p.children) }

// Children iterates over the direct children in document order.
func (p *Partition) Children() iter.Seq[Node] { return childSeq(p) }

// Walk iterates over all descendants in depth-first pre-order.
func (p *Partition) Walk() iter.Seq[Node] { return walkSeq(p) }

// Files iterates over all File records in the subtree, in document order.
func (p *Partition) Files() iter.Seq[*File] { return fileSeq(p) }

// Volume describes one file system.
type Volume struct {
	PartitionOffset *uint64
	SectorSize      *uint64
	BlockSize       *uint64
	FType           *uint64 // Numeric file system type code.
	FTypeStr        string
	BlockCount      *uint64
	FirstBlock      *uint64
	LastBlock       *uint64
	AllocatedOnly   *bool
	ErrorText       string
	ByteRuns        *ByteRuns
	Externals       Externals

	parent   Node
	children []VolumeChild
}

// NewVolume returns an empty volume object.
func NewVolume() *Volume { return &Volume{} }

func (v *Volume) Kind() NodeKind   { return KindVolume }
func (v *Volume) Parent() Node     { return v.parent }
func (v *Volume) setParent(n Node) { v.parent = n }

func (v *Volume) documentChild()  {}
func (v *Volume) diskImageChild() {}
func (v *Volume) partitionChild() {}
func (v *Volume) volumeChild()    {}

// AppendChild attaches a child object. Legal children are DiskImage,
// Volume and File.
func (v *Volume) AppendChild(c VolumeChild) {
	c.setParent(v)
	v.children = append(v.children, c)
}

func (v *Volume) childNodes() []Node { return toNodes(v.children) }

// Children iterates over the direct children in document order.
func (v *Volume) Children() iter.Seq[Node] { return childSeq(v) }

// Walk iterates over all descendants in depth-first pre-order.
func (v *Volume) Walk() iter.Seq[Node] { return walkSeq(v) }

// Files iterates over all File records in the subtree, in document order.
func (v *Volume) Files() iter.Seq[*File] { return fileSeq(v) }

func toNodes[T Node](children []T) []Node {
	out := make([]Node, len(children))
	for i, c := range children {
		out[i] = c
	}
	return out
}

func childSeq(c container) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range c.childNodes() {
			if !yield(child) {
				return
			}
		}
	}
}

func walkSeq(c container) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			if sub, ok := n.(container); ok {
				for _, child := range sub.childNodes() {
					if !visit(child) {
						return false
					}
				}
			}
			return true
		}
		for _, child := range c.childNodes() {
			if !visit(child) {
				return
			}
		}
	}
}

func fileSeq(c container) iter.Seq[*File] {
	return func(yield func(*File) bool) {
		for n := range walkSeq(c) {
			if f, ok := n.(*File); ok {
				if !yield(f) {
					return
				}
			}
		}
	}
}
