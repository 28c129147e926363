package dfxml

import (
	"io"
	"iter"

	"github.com/goccy/go-json"
)

// FileJSON is the flat JSON projection of a file record, one line per
// record in JSON Lines output. Optional fields marshal as absent.
type FileJSON struct {
	Filename   string   `json:"filename,omitempty"`
	Filesize   *uint64  `json:"filesize,omitempty"`
	Inode      *uint64  `json:"inode,omitempty"`
	Mode       *uint32  `json:"mode,omitempty"`
	Nlink      *uint32  `json:"nlink,omitempty"`
	UID        *int32   `json:"uid,omitempty"`
	GID        *int32   `json:"gid,omitempty"`
	Seq        *uint64  `json:"seq,omitempty"`
	ID         *uint64  `json:"id,omitempty"`
	Partition  *uint32  `json:"partition,omitempty"`
	NameType   string   `json:"name_type,omitempty"`
	MetaType   *uint8   `json:"meta_type,omitempty"`
	Allocated  *bool    `json:"allocated,omitempty"`
	Used       *bool    `json:"used,omitempty"`
	Orphan     *bool    `json:"orphan,omitempty"`
	Compressed *bool    `json:"compressed,omitempty"`
	LinkTarget string   `json:"link_target,omitempty"`
	Libmagic   string   `json:"libmagic,omitempty"`
	Error      string   `json:"error,omitempty"`
	Mtime      string   `json:"mtime,omitempty"`
	Atime      string   `json:"atime,omitempty"`
	Ctime      string   `json:"ctime,omitempty"`
	Crtime     string   `json:"crtime,omitempty"`
	Dtime      string   `json:"dtime,omitempty"`
	BkupTime   string   `json:"bkup_time,omitempty"`
	Hashes     []string `json:"hashes,omitempty"` // "type:digest" pairs.
}

// ProjectFile flattens a file record for JSON export.
func ProjectFile(f *File) FileJSON {
	out := FileJSON{
		Filename:   f.Filename,
		Filesize:   f.Filesize,
		Inode:      f.Inode,
		Mode:       f.Mode,
		Nlink:      f.Nlink,
		UID:        f.UID,
		GID:        f.GID,
		Seq:        f.Seq,
		ID:         f.ID,
		Partition:  f.Partition,
		Used:       f.Used,
		Orphan:     f.Orphan,
		Compressed: f.Compressed,
		LinkTarget: f.LinkTarget,
		Libmagic:   f.Libmagic,
		Error:      f.ErrorText,
	}
	if f.NameType != nil {
		out.NameType = f.NameType.String()
	}
	if f.MetaType != nil {
		mt := uint8(*f.MetaType)
		out.MetaType = &mt
	}
	if alloc, ok := f.IsAllocated(); ok {
		out.Allocated = &alloc
	}
	format := func(ts *Timestamp) string {
		if ts == nil {
			return ""
		}
		return ts.Format()
	}
	out.Mtime = format(f.Mtime)
	out.Atime = format(f.Atime)
	out.Ctime = format(f.Ctime)
	out.Crtime = format(f.Crtime)
	out.Dtime = format(f.Dtime)
	out.BkupTime = format(f.BkupTime)
	for _, hd := range f.Hashes.All() {
		out.Hashes = append(out.Hashes, hd.Type.String()+":"+hd.Digest)
	}
	return out
}

// WriteJSONLines writes one JSON object per file record to w, newline
// terminated.
func WriteJSONLines(w io.Writer, files iter.Seq[*File]) error {
	for f := range files {
		line, err := json.Marshal(ProjectFile(f))
		if err != nil {
			return &Error{Kind: KindIO, Offset: -1, Message: "marshal file record", Cause: err}
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return &Error{Kind: KindIO, Offset: -1, Message: "write failure", Cause: err}
		}
	}
	return nil
}

// ExportJSONLines decodes DFXML from r and writes its file records to w as
// JSON Lines, streaming record by record.
func ExportJSONLines(w io.Writer, r io.Reader) error {
	return ParseFiles(r, func(f *File) error {
		line, err := json.Marshal(ProjectFile(f))
		if err != nil {
			return &Error{Kind: KindIO, Offset: -1, Message: "marshal file record", Cause: err}
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return &Error{Kind: KindIO, Offset: -1, Message: "write failure", Cause: err}
		}
		return nil
	})
}
