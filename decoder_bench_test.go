package dfxml_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dfxmlgo/dfxml"
)

func syntheticDoc(files int) string {
	var b strings.Builder
	b.WriteString(`<dfxml xmlns="http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML" version="2.0.0-beta.0"><volume><ftype_str>ext4</ftype_str>`)
	for i := 0; i < files; i++ {
		fmt.Fprintf(&b, `<fileobject><filename>dir/file%d.dat</filename><filesize>%d</filesize><inode>%d</inode><alloc>1</alloc><mtime>2023-05-01T12:00:00Z</mtime><hashdigest type="md5">d41d8cd98f00b204e9800998ecf8427e</hashdigest><byte_runs><byte_run img_offset="%d" len="%d"/></byte_runs></fileobject>`,
			i, i*512, i+100, i*4096, i*512)
	}
	b.WriteString(`</volume></dfxml>`)
	return b.String()
}

func BenchmarkDecodeStream(b *testing.B) {
	doc := syntheticDoc(1000)
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count := 0
		err := dfxml.ParseFiles(strings.NewReader(doc), func(f *dfxml.File) error {
			count++
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
		if count != 1000 {
			b.Fatalf("decoded %d files, want 1000", count)
		}
	}
}

func BenchmarkParseWholeDocument(b *testing.B) {
	doc := syntheticDoc(1000)
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dfxml.Parse(strings.NewReader(doc)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	parsed, err := dfxml.Parse(strings.NewReader(syntheticDoc(1000)))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dfxml.EncodeToString(parsed); err != nil {
			b.Fatal(err)
		}
	}
}
