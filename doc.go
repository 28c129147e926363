// Package dfxml reads and writes Digital Forensics XML (DFXML), the
// metadata interchange format produced by forensic tools such as fiwalk
// and walk_to_dfxml.
//
// The package provides:
//
//   - A typed object model (Document, DiskImage, PartitionSystem,
//     Partition, Volume, File) whose nesting rules are enforced at compile
//     time through per-container child interfaces
//   - A streaming Decoder that turns a byte source into a sequence of
//     Events without materializing the whole document
//   - An Encoder that serializes a tree back to canonical DFXML, indented
//     or compact
//   - Whole-document convenience parsing via Parse and ParseFiles
//   - Lossless preservation of foreign-namespace content through Externals
//
// Design policy:
//   - Keep only public APIs in the root package; put tokenizer plumbing
//     under internal/.
//   - The whole-document parser is strictly a consumer of the Decoder
//     event stream; there is a single decode state machine.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	doc, err := dfxml.Parse(r)
//	for f := range doc.Files() {
//		fmt.Println(f.Filename)
//	}
//
//	dec := dfxml.NewDecoder(r)
//	for {
//		ev, err := dec.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
package dfxml
