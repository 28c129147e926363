package dfxml

import "strings"

// HashType identifies a hash algorithm recognized by the DFXML schema.
type HashType int

const (
	MD5 HashType = iota
	SHA1
	SHA224
	SHA256
	SHA384
	SHA512
	MD6
	numHashTypes
)

var hashTypeNames = [...]string{"md5", "sha1", "sha224", "sha256", "sha384", "sha512", "md6"}

// hexLens holds the expected digest length in hexadecimal characters.
var hashHexLens = [...]int{32, 40, 56, 64, 96, 128, 128}

func (h HashType) String() string {
	if h < 0 || h >= numHashTypes {
		return "unknown"
	}
	return hashTypeNames[h]
}

// HexLen returns the expected digest length in hexadecimal characters.
func (h HashType) HexLen() int {
	if h < 0 || h >= numHashTypes {
		return 0
	}
	return hashHexLens[h]
}

// ParseHashType resolves a hashdigest type attribute value, case-insensitively.
func ParseHashType(s string) (HashType, error) {
	for i, name := range hashTypeNames {
		if strings.EqualFold(s, name) {
			return HashType(i), nil
		}
	}
	return 0, scalarErr("hashdigest", "", "unknown hash type "+quoted(s), nil)
}

// Hashes holds at most one lowercase hexadecimal digest per algorithm.
// The zero value is empty and ready to use.
type Hashes struct {
	digests [numHashTypes]string
}

// Set stores a digest for the given algorithm, lowercasing it. A previous
// digest for the same algorithm is replaced.
func (h *Hashes) Set(t HashType, digest string) {
	if t < 0 || t >= numHashTypes {
		return
	}
	h.digests[t] = strings.ToLower(digest)
}

// Get returns the digest for the given algorithm, or "" when unset.
func (h *Hashes) Get(t HashType) string {
	if t < 0 || t >= numHashTypes {
		return ""
	}
	return h.digests[t]
}

// Any reports whether any digest is set.
func (h *Hashes) Any() bool {
	for _, d := range h.digests {
		if d != "" {
			return true
		}
	}
	return false
}

// All returns the set digests in canonical algorithm order.
func (h *Hashes) All() []HashDigest {
	var out []HashDigest
	for i, d := range h.digests {
		if d != "" {
			out = append(out, HashDigest{Type: HashType(i), Digest: d})
		}
	}
	return out
}

// HashDigest pairs an algorithm with its hex digest.
type HashDigest struct {
	Type   HashType
	Digest string
}

func quoted(s string) string {
	return `"` + s + `"`
}
