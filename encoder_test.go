package dfxml_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dfxmlgo/dfxml"
)

func TestEncodeDeterministicOutput(t *testing.T) {
	doc := dfxml.NewDocument()
	f := dfxml.NewFile()
	f.Filename = "a.txt"
	f.Filesize = dfxml.U64(5)
	doc.AppendChild(f)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<dfxml xmlns="http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML" version="2.0.0-beta.0">
  <fileobject>
    <filename>a.txt</filename>
    <filesize>5</filesize>
  </fileobject>
</dfxml>
`
	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if got != want {
		t.Fatalf("EncodeToString() =\n%s\nwant\n%s", got, want)
	}

	again, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if got != again {
		t.Fatalf("repeated encode differs")
	}
}

func TestEncodeCompact(t *testing.T) {
	doc := dfxml.NewDocument()
	f := dfxml.NewFile()
	f.Filename = "a.txt"
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc, dfxml.Compact(), dfxml.NoXMLDecl())
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if strings.ContainsAny(got, "\n\t") {
		t.Fatalf("compact output contains whitespace: %q", got)
	}
	if !strings.Contains(got, "<fileobject><filename>a.txt</filename></fileobject>") {
		t.Fatalf("compact output = %q", got)
	}
	if strings.Contains(got, "<?xml") {
		t.Fatalf("NoXMLDecl output still has declaration: %q", got)
	}
}

func TestEncodeFacetOmittedForSingleDataCollection(t *testing.T) {
	f := dfxml.NewFile()
	brs := dfxml.NewByteRuns(dfxml.FacetData)
	brs.Append(&dfxml.ByteRun{ImgOffset: dfxml.U64(0), Len: dfxml.U64(4)})
	f.ByteRuns = append(f.ByteRuns, brs)
	doc := dfxml.NewDocument()
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if strings.Contains(got, "facet=") {
		t.Fatalf("single data collection carries facet attribute: %s", got)
	}
}

func TestEncodeFacetNamedForMultipleCollections(t *testing.T) {
	f := dfxml.NewFile()
	data := dfxml.NewByteRuns(dfxml.FacetData)
	data.Append(&dfxml.ByteRun{ImgOffset: dfxml.U64(0), Len: dfxml.U64(4)})
	inode := dfxml.NewByteRuns(dfxml.FacetInode)
	inode.Append(&dfxml.ByteRun{ImgOffset: dfxml.U64(4096), Len: dfxml.U64(128)})
	f.ByteRuns = append(f.ByteRuns, data, inode)
	doc := dfxml.NewDocument()
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if !strings.Contains(got, `<byte_runs facet="data">`) {
		t.Fatalf("data facet not named with multiple collections: %s", got)
	}
	if !strings.Contains(got, `<byte_runs facet="inode">`) {
		t.Fatalf("inode facet not named: %s", got)
	}
}

func TestEncodeScalarForms(t *testing.T) {
	f := dfxml.NewFile()
	f.Filename = "a.txt"
	f.Mode = dfxml.U32(0o644)
	f.Alloc = dfxml.Bool(true)
	f.Used = dfxml.Bool(false)
	f.Mtime = &dfxml.Timestamp{
		Time: time.Date(2019, 2, 2, 3, 6, 43, 0, time.UTC),
		Prec: &dfxml.Precision{Resolution: 100, Unit: dfxml.UnitNanosecond},
	}
	doc := dfxml.NewDocument()
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	for _, want := range []string{
		"<mode>644</mode>",
		"<alloc>1</alloc>",
		"<used>0</used>",
		`<mtime prec="100ns">2019-02-02T03:06:43Z</mtime>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestEncodeSelfClosingByteRun(t *testing.T) {
	f := dfxml.NewFile()
	brs := dfxml.NewByteRuns(dfxml.FacetData)
	brs.Append(&dfxml.ByteRun{ImgOffset: dfxml.U64(512), Len: dfxml.U64(5)})
	f.ByteRuns = append(f.ByteRuns, brs)
	doc := dfxml.NewDocument()
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if !strings.Contains(got, `<byte_run img_offset="512" len="5"/>`) {
		t.Fatalf("byte_run not self-closing: %s", got)
	}
}

func TestEncodeHashesBeforeByteRuns(t *testing.T) {
	f := dfxml.NewFile()
	f.Hashes.Set(dfxml.MD5, "aa")
	brs := dfxml.NewByteRuns(dfxml.FacetData)
	brs.Append(&dfxml.ByteRun{ImgOffset: dfxml.U64(0), Len: dfxml.U64(1)})
	f.ByteRuns = append(f.ByteRuns, brs)
	doc := dfxml.NewDocument()
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	hashIdx := strings.Index(got, "<hashdigest")
	runsIdx := strings.Index(got, "<byte_runs")
	if hashIdx < 0 || runsIdx < 0 || hashIdx > runsIdx {
		t.Fatalf("hashdigest at %d, byte_runs at %d, want hashes first", hashIdx, runsIdx)
	}
}

func TestEncodeExternalDeclaresNamespace(t *testing.T) {
	f := dfxml.NewFile()
	el := dfxml.NewExternalElement("urn:example", "tag")
	el.AddAttr("id", "7")
	el.Text = "classified"
	if err := f.Externals.Append(el); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	doc := dfxml.NewDocument()
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if !strings.Contains(got, `<tag xmlns="urn:example" id="7">classified</tag>`) {
		t.Fatalf("external element not re-declared: %s", got)
	}
}

func TestEncodeExternalQualifiedAttr(t *testing.T) {
	f := dfxml.NewFile()
	el := dfxml.NewExternalElement("urn:example", "tag")
	el.AddAttrNS("urn:other", "id", "7")
	el.AddAttr("note", "plain")
	el.Text = "classified"
	if err := f.Externals.Append(el); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	doc := dfxml.NewDocument()
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	want := `<tag xmlns="urn:example" xmlns:ns1="urn:other" ns1:id="7" note="plain">classified</tag>`
	if !strings.Contains(got, want) {
		t.Fatalf("qualified attribute not prefixed:\ngot:  %s\nwant fragment: %s", got, want)
	}
}

func TestEncodeEscapesText(t *testing.T) {
	f := dfxml.NewFile()
	f.Filename = `a<b>&"c".txt`
	doc := dfxml.NewDocument()
	doc.AppendChild(f)

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	if strings.Contains(got, "a<b>") {
		t.Fatalf("unescaped markup in output: %s", got)
	}
	back, err := dfxml.Parse(strings.NewReader(got))
	if err != nil {
		t.Fatalf("Parse(encoded) error: %v", err)
	}
	var file *dfxml.File
	for rec := range back.Files() {
		file = rec
	}
	if file == nil || file.Filename != f.Filename {
		t.Fatalf("filename round trip = %+v, want %q", file, f.Filename)
	}
}

func TestEncodeCreatorAndSource(t *testing.T) {
	doc := dfxml.NewDocument()
	doc.Creator = &dfxml.Creator{
		Program: "fiwalk",
		Version: "0.6.3",
		BuildEnvironment: dfxml.BuildEnvironment{
			Libraries: []dfxml.Library{{Name: "libewf", Version: "20140608"}},
		},
	}
	doc.Sources = []string{"disk.img"}

	got, err := dfxml.EncodeToString(doc)
	if err != nil {
		t.Fatalf("EncodeToString() error: %v", err)
	}
	for _, want := range []string{
		"<program>fiwalk</program>",
		"<version>0.6.3</version>",
		`<library name="libewf" version="20140608"/>`,
		"<image_filename>disk.img</image_filename>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}
