package dfxml

import (
	"strconv"
	"strings"
)

// Version is the DFXML schema version emitted on new documents.
const Version = "2.0.0-beta.0"

// parseUint parses an unsigned decimal scalar with the given bit size.
func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, bits)
}

// parseInt parses a signed decimal scalar with the given bit size.
func parseInt(s string, bits int) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, bits)
}

// parseOctal parses a mode scalar, which DFXML serializes in octal without
// a prefix.
func parseOctal(s string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 8, bits)
}

// parseBool parses a boolean scalar. DFXML writes booleans as "0" and "1";
// the textual forms are accepted for compatibility with older producers.
func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }

func formatOctal(v uint64) string { return strconv.FormatUint(v, 8) }

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
