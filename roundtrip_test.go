package dfxml_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dfxmlgo/dfxml"
)

func buildRichDoc() *dfxml.Document {
	doc := dfxml.NewDocument()
	doc.Creator = &dfxml.Creator{
		Program: "fiwalk",
		Version: "0.6.3",
		BuildEnvironment: dfxml.BuildEnvironment{
			Compiler:  "gcc 9.3.0",
			Libraries: []dfxml.Library{{Name: "libewf", Version: "20140608"}},
		},
		ExecutionEnvironment: dfxml.ExecutionEnvironment{
			CommandLine: "fiwalk -X disk.img",
			StartTime:   dfxml.NewTimestamp(time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)),
		},
	}
	doc.Sources = []string{"disk.img"}
	_ = doc.Externals.Append(func() *dfxml.ExternalElement {
		el := dfxml.NewExternalElement(dfxml.XMLNSDC, "type")
		el.Text = "Disk Image"
		return el
	}())

	di := dfxml.NewDiskImage()
	di.ImageFilename = "disk.img"
	di.ImageSize = dfxml.U64(1 << 30)
	di.SectorSize = dfxml.U64(512)
	doc.AppendChild(di)

	ps := dfxml.NewPartitionSystem()
	ps.PSType = "gpt"
	di.AppendChild(ps)

	part := dfxml.NewPartition()
	part.PartitionIndex = dfxml.U64(1)
	part.PartitionOffset = dfxml.U64(1048576)
	part.PTypeStr = "Linux filesystem"
	ps.AppendChild(part)

	vol := dfxml.NewVolume()
	vol.PartitionOffset = dfxml.U64(1048576)
	vol.BlockSize = dfxml.U64(4096)
	vol.FType = dfxml.U64(4)
	vol.FTypeStr = "ext4"
	vol.BlockCount = dfxml.U64(262144)
	vol.FirstBlock = dfxml.U64(0)
	vol.LastBlock = dfxml.U64(262143)
	part.AppendChild(vol)

	f := dfxml.NewFile()
	f.Filename = "home/user/notes.txt"
	f.Filesize = dfxml.U64(1234)
	f.Inode = dfxml.U64(77)
	f.Mode = dfxml.U32(0o600)
	f.Nlink = dfxml.U32(1)
	f.UID = dfxml.I32(1000)
	f.GID = dfxml.I32(1000)
	nt := dfxml.NameTypeRegular
	f.NameType = &nt
	mt := dfxml.MetaTypeRegular
	f.MetaType = &mt
	f.Alloc = dfxml.Bool(true)
	f.Mtime = &dfxml.Timestamp{
		Time: time.Date(2023, 4, 30, 8, 15, 0, 0, time.UTC),
		Prec: &dfxml.Precision{Resolution: 1, Unit: dfxml.UnitSecond},
	}
	f.Crtime = dfxml.NewTimestamp(time.Date(2023, 4, 29, 8, 0, 0, 0, time.UTC))
	f.Hashes.Set(dfxml.MD5, "d41d8cd98f00b204e9800998ecf8427e")
	f.Hashes.Set(dfxml.SHA1, "da39a3ee5e6b4b0d3255bfef95601890afd80709")
	data := dfxml.NewByteRuns(dfxml.FacetData)
	data.Append(&dfxml.ByteRun{ImgOffset: dfxml.U64(1052672), FSOffset: dfxml.U64(4096), FileOffset: dfxml.U64(0), Len: dfxml.U64(1234)})
	inode := dfxml.NewByteRuns(dfxml.FacetInode)
	inode.Append(&dfxml.ByteRun{ImgOffset: dfxml.U64(1049600), Len: dfxml.U64(128)})
	f.ByteRuns = append(f.ByteRuns, data, inode)
	_ = f.Externals.Append(func() *dfxml.ExternalElement {
		el := dfxml.NewExternalElement("urn:example", "tag")
		el.AddAttr("id", "7")
		el.Text = "classified"
		return el
	}())
	vol.AppendChild(f)

	orphan := dfxml.NewFile()
	orphan.Filename = "$OrphanFiles/x"
	orphan.Orphan = dfxml.Bool(true)
	orphan.Alloc = dfxml.Bool(false)
	vol.AppendChild(orphan)

	return doc
}

// Serialization is deterministic and schema ordered, so a fixed point of
// encode-parse-encode demonstrates that nothing is lost or reordered.
func TestRoundTripFixedPoint(t *testing.T) {
	doc := buildRichDoc()

	first, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	back, err := dfxml.Parse(strings.NewReader(first))
	if err != nil {
		t.Fatalf("Parse(encoded) error: %v", err)
	}
	second, err := dfxml.EncodeToString(back)
	if err != nil {
		t.Fatalf("EncodeToString(reparsed) error: %v", err)
	}
	if first != second {
		t.Fatalf("round trip not a fixed point:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestRoundTripPreservesStructure(t *testing.T) {
	doc := buildRichDoc()
	out, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	back, err := dfxml.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var wantKinds, gotKinds []dfxml.NodeKind
	for n := range doc.Walk() {
		wantKinds = append(wantKinds, n.Kind())
	}
	for n := range back.Walk() {
		gotKinds = append(gotKinds, n.Kind())
	}
	if len(wantKinds) != len(gotKinds) {
		t.Fatalf("walk lengths differ: %d vs %d", len(wantKinds), len(gotKinds))
	}
	for i := range wantKinds {
		if wantKinds[i] != gotKinds[i] {
			t.Fatalf("walk[%d] = %v, want %v", i, gotKinds[i], wantKinds[i])
		}
	}

	var orig, parsed []*dfxml.File
	for f := range doc.Files() {
		orig = append(orig, f)
	}
	for f := range back.Files() {
		parsed = append(parsed, f)
	}
	if len(orig) != len(parsed) {
		t.Fatalf("file counts differ: %d vs %d", len(orig), len(parsed))
	}
	for i := range orig {
		if diff := orig[i].Diff(parsed[i]); len(diff) != 0 {
			t.Fatalf("file %q differs after round trip: %v", orig[i].Filename, diff)
		}
		if orig[i].Externals.Len() != parsed[i].Externals.Len() {
			t.Fatalf("file %q externals lost", orig[i].Filename)
		}
		for j, el := range orig[i].Externals.All() {
			if !el.Equal(parsed[i].Externals.All()[j]) {
				t.Fatalf("file %q external %d differs", orig[i].Filename, j)
			}
		}
	}

	if back.Externals.Len() != doc.Externals.Len() {
		t.Fatalf("document externals = %d, want %d", back.Externals.Len(), doc.Externals.Len())
	}
	if !back.Externals.All()[0].Equal(doc.Externals.All()[0]) {
		t.Fatalf("document external differs after round trip")
	}
}

func TestRoundTripNestedForeignSubtree(t *testing.T) {
	in := `<dfxml xmlns="http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML"
       xmlns:x="urn:example" xmlns:y="urn:other">
  <fileobject>
    <filename>a.txt</filename>
    <x:report y:id="7">
      <x:finding severity="high">classified</x:finding>
      <x:empty/>
    </x:report>
  </fileobject>
</dfxml>`
	doc, err := dfxml.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	out, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if !strings.Contains(out, "urn:other") {
		t.Fatalf("attribute namespace dropped on encode:\n%s", out)
	}
	back, err := dfxml.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse(encoded) error: %v", err)
	}

	var orig, reparsed *dfxml.File
	for f := range doc.Files() {
		orig = f
	}
	for f := range back.Files() {
		reparsed = f
	}
	if orig == nil || reparsed == nil {
		t.Fatalf("file record lost on round trip")
	}
	if orig.Externals.Len() != 1 || reparsed.Externals.Len() != 1 {
		t.Fatalf("externals = %d and %d, want 1 and 1", orig.Externals.Len(), reparsed.Externals.Len())
	}
	el := reparsed.Externals.All()[0]
	if !orig.Externals.All()[0].Equal(el) {
		t.Fatalf("foreign subtree differs after round trip:\n%+v\nvs\n%+v", orig.Externals.All()[0], el)
	}
	if len(el.Attrs) != 1 || el.Attrs[0].Space != "urn:other" || el.Attrs[0].Name != "id" || el.Attrs[0].Value != "7" {
		t.Fatalf("root attrs = %+v, want urn:other id=7", el.Attrs)
	}
	if len(el.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(el.Children))
	}
	if el.Children[0].Name != "finding" || el.Children[0].Text != "classified" {
		t.Fatalf("nested child = %+v", el.Children[0])
	}
	if el.Children[1].Name != "empty" || len(el.Children[1].Children) != 0 {
		t.Fatalf("empty child = %+v", el.Children[1])
	}
}

func TestStreamingMatchesWholeDocumentParse(t *testing.T) {
	doc, err := dfxml.Parse(strings.NewReader(minimalDoc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	var fromTree []*dfxml.File
	for f := range doc.Files() {
		fromTree = append(fromTree, f)
	}

	var fromStream []*dfxml.File
	err = dfxml.ParseFiles(strings.NewReader(minimalDoc), func(f *dfxml.File) error {
		fromStream = append(fromStream, f)
		return nil
	})
	if err != nil {
		t.Fatalf("ParseFiles() error: %v", err)
	}

	if len(fromTree) != len(fromStream) {
		t.Fatalf("tree parse found %d files, stream found %d", len(fromTree), len(fromStream))
	}
	for i := range fromTree {
		if diff := fromTree[i].Diff(fromStream[i]); len(diff) != 0 {
			t.Fatalf("file %d differs between modes: %v", i, diff)
		}
	}
}
