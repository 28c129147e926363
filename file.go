package dfxml

// NameType classifies the directory-entry type of a file record, mirroring
// the single-letter codes produced by TSK (r, d, l, and so on).
type NameType int

const (
	NameTypeUnknown NameType = iota
	NameTypeRegular
	NameTypeDirectory
	NameTypeSymlink
	NameTypeCharDevice
	NameTypeBlockDevice
	NameTypeFIFO
	NameTypeSocket
	NameTypeShadow
	NameTypeWhiteout
	NameTypeVirtual
)

var nameTypeCodes = map[NameType]string{
	NameTypeUnknown:     "-",
	NameTypeRegular:     "r",
	NameTypeDirectory:   "d",
	NameTypeSymlink:     "l",
	NameTypeCharDevice:  "c",
	NameTypeBlockDevice: "b",
	NameTypeFIFO:        "p",
	NameTypeSocket:      "s",
	NameTypeShadow:      "h",
	NameTypeWhiteout:    "w",
	NameTypeVirtual:     "v",
}

func (n NameType) String() string {
	if s, ok := nameTypeCodes[n]; ok {
		return s
	}
	return "-"
}

// ParseNameType resolves a name_type element value.
func ParseNameType(s string) (NameType, error) {
	for nt, code := range nameTypeCodes {
		if s == code {
			return nt, nil
		}
	}
	return 0, scalarErr("name_type", "fileobject", "unknown name type "+quoted(s), nil)
}

// MetaType classifies the inode type of a file record, using the numeric
// codes of the TSK metadata layer.
type MetaType int

const (
	MetaTypeUndefined   MetaType = 0
	MetaTypeRegular     MetaType = 1
	MetaTypeDirectory   MetaType = 2
	MetaTypeFIFO        MetaType = 3
	MetaTypeCharDevice  MetaType = 4
	MetaTypeBlockDevice MetaType = 5
	MetaTypeSymlink     MetaType = 6
	MetaTypeShadow      MetaType = 7
	MetaTypeSocket      MetaType = 8
	MetaTypeWhiteout    MetaType = 9
	MetaTypeVirtual     MetaType = 10
)

// ParseMetaType resolves a meta_type element value.
func ParseMetaType(s string) (MetaType, error) {
	v, err := parseUint(s, 8)
	if err != nil || v > uint64(MetaTypeVirtual) {
		return 0, scalarErr("meta_type", "fileobject", "unknown meta type "+quoted(s), err)
	}
	return MetaType(v), nil
}

// File is a leaf record describing one file system entry. Optional numeric
// and boolean fields are pointers; nil means the element was absent.
type File struct {
	Filename   string
	Filesize   *uint64
	Inode      *uint64
	Mode       *uint32 // Permission bits, serialized in octal.
	Nlink      *uint32
	UID        *int32
	GID        *int32
	Seq        *uint64
	ID         *uint64
	Partition  *uint32
	NameType   *NameType
	MetaType   *MetaType
	Alloc      *bool
	AllocInode *bool
	AllocName  *bool
	Used       *bool
	Orphan     *bool
	Compressed *bool
	LinkTarget string
	Libmagic   string
	ErrorText  string // Content of the error element, a tool-reported extraction failure.
	Mtime      *Timestamp
	Atime      *Timestamp
	Ctime      *Timestamp
	Crtime     *Timestamp
	Dtime      *Timestamp
	BkupTime   *Timestamp
	Hashes     Hashes
	ByteRuns   []*ByteRuns // One collection per facet, in document order.
	Externals  Externals

	parent Node
}

// NewFile returns an empty file record.
func NewFile() *File { return &File{} }

func (f *File) Kind() NodeKind { return KindFile }
func (f *File) Parent() Node   { return f.parent }

func (f *File) setParent(p Node) { f.parent = p }

// Marker methods making File a legal child of every container type.
func (f *File) documentChild()        {}
func (f *File) diskImageChild()       {}
func (f *File) partitionSystemChild() {}
func (f *File) partitionChild()       {}
func (f *File) volumeChild()          {}

// IsAllocated reports whether the record is allocated. The combined alloc
// flag wins when present; otherwise both alloc_inode and alloc_name must be
// set and true. The second return is false when allocation is undecidable.
func (f *File) IsAllocated() (bool, bool) {
	if f.Alloc != nil {
		return *f.Alloc, true
	}
	if f.AllocInode != nil && f.AllocName != nil {
		return *f.AllocInode && *f.AllocName, true
	}
	return false, false
}

// RunsForFacet returns the byte run collection for the given facet, or nil.
func (f *File) RunsForFacet(facet Facet) *ByteRuns {
	for _, brs := range f.ByteRuns {
		if brs.Facet == facet {
			return brs
		}
	}
	return nil
}

// Timestamp returns the named timestamp field (mtime, atime, ctime, crtime,
// dtime, bkup_time), or nil when absent or unknown.
func (f *File) Timestamp(name string) *Timestamp {
	switch name {
	case "mtime":
		return f.Mtime
	case "atime":
		return f.Atime
	case "ctime":
		return f.Ctime
	case "crtime":
		return f.Crtime
	case "dtime":
		return f.Dtime
	case "bkup_time":
		return f.BkupTime
	}
	return nil
}

// SetTimestamp assigns the named timestamp field. Unknown names are
// rejected with an invalid scalar error.
func (f *File) SetTimestamp(name string, ts *Timestamp) error {
	switch name {
	case "mtime":
		f.Mtime = ts
	case "atime":
		f.Atime = ts
	case "ctime":
		f.Ctime = ts
	case "crtime":
		f.Crtime = ts
	case "dtime":
		f.Dtime = ts
	case "bkup_time":
		f.BkupTime = ts
	default:
		return scalarErr(name, "fileobject", "unknown timestamp element", nil)
	}
	return nil
}

// timestampNames is the schema emission order of timestamp elements.
var timestampNames = []string{"mtime", "atime", "ctime", "crtime", "dtime", "bkup_time"}

// Diff lists the names of fields whose values differ between two records,
// in a stable order. Externals and parentage are not compared.
func (f *File) Diff(other *File) []string {
	var out []string
	add := func(name string, differs bool) {
		if differs {
			out = append(out, name)
		}
	}
	add("filename", f.Filename != other.Filename)
	add("filesize", !eqU64(f.Filesize, other.Filesize))
	add("inode", !eqU64(f.Inode, other.Inode))
	add("mode", !eqU32(f.Mode, other.Mode))
	add("nlink", !eqU32(f.Nlink, other.Nlink))
	add("uid", !eqI32(f.UID, other.UID))
	add("gid", !eqI32(f.GID, other.GID))
	add("seq", !eqU64(f.Seq, other.Seq))
	add("id", !eqU64(f.ID, other.ID))
	add("partition", !eqU32(f.Partition, other.Partition))
	add("name_type", !eqNameType(f.NameType, other.NameType))
	add("meta_type", !eqMetaType(f.MetaType, other.MetaType))
	add("alloc", !eqBool(f.Alloc, other.Alloc))
	add("alloc_inode", !eqBool(f.AllocInode, other.AllocInode))
	add("alloc_name", !eqBool(f.AllocName, other.AllocName))
	add("used", !eqBool(f.Used, other.Used))
	add("orphan", !eqBool(f.Orphan, other.Orphan))
	add("compressed", !eqBool(f.Compressed, other.Compressed))
	add("link_target", f.LinkTarget != other.LinkTarget)
	add("libmagic", f.Libmagic != other.Libmagic)
	add("error", f.ErrorText != other.ErrorText)
	for _, name := range timestampNames {
		add(name, !f.Timestamp(name).Equal(other.Timestamp(name)))
	}
	for t := HashType(0); t < numHashTypes; t++ {
		add("hashdigest:"+t.String(), f.Hashes.Get(t) != other.Hashes.Get(t))
	}
	return out
}

func eqU64(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqU32(a, b *uint32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqI32(a, b *int32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqNameType(a, b *NameType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqMetaType(a, b *MetaType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Pointer constructors for optional fields.

// U64 returns a pointer to v.
func U64(v uint64) *uint64 { return &v }

// U32 returns a pointer to v.
func U32(v uint32) *uint32 { return &v }

// I32 returns a pointer to v.
func I32(v int32) *int32 { return &v }

// U8 returns a pointer to v.
func U8(v uint8) *uint8 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
