package dfxml_test

import (
	"testing"

	"github.com/dfxmlgo/dfxml"
)

func TestParseHashType(t *testing.T) {
	cases := []struct {
		in   string
		want dfxml.HashType
	}{
		{"md5", dfxml.MD5},
		{"MD5", dfxml.MD5},
		{"sha1", dfxml.SHA1},
		{"SHA256", dfxml.SHA256},
		{"sha512", dfxml.SHA512},
	}
	for _, c := range cases {
		got, err := dfxml.ParseHashType(c.in)
		if err != nil {
			t.Fatalf("ParseHashType(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseHashType(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := dfxml.ParseHashType("crc32"); !dfxml.IsKind(err, dfxml.KindInvalidScalar) {
		t.Fatalf("ParseHashType(crc32) error = %v, want invalid_scalar", err)
	}
}

func TestHashesSetLowercasesDigest(t *testing.T) {
	var h dfxml.Hashes
	h.Set(dfxml.MD5, "D41D8CD98F00B204E9800998ECF8427E")
	want := "d41d8cd98f00b204e9800998ecf8427e"
	if got := h.Get(dfxml.MD5); got != want {
		t.Fatalf("Get(MD5) = %q, want %q", got, want)
	}
}

func TestHashesAllCanonicalOrder(t *testing.T) {
	var h dfxml.Hashes
	h.Set(dfxml.SHA256, "cc")
	h.Set(dfxml.MD5, "aa")
	h.Set(dfxml.SHA1, "bb")

	all := h.All()
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(all))
	}
	wantOrder := []dfxml.HashType{dfxml.MD5, dfxml.SHA1, dfxml.SHA256}
	for i, want := range wantOrder {
		if all[i].Type != want {
			t.Fatalf("All()[%d].Type = %v, want %v", i, all[i].Type, want)
		}
	}
}

func TestHashTypeHexLen(t *testing.T) {
	if got := dfxml.MD5.HexLen(); got != 32 {
		t.Fatalf("MD5.HexLen() = %d, want 32", got)
	}
	if got := dfxml.SHA256.HexLen(); got != 64 {
		t.Fatalf("SHA256.HexLen() = %d, want 64", got)
	}
}
