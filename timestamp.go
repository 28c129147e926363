package dfxml

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeUnit is the unit part of a timestamp precision.
type TimeUnit int

const (
	UnitSecond TimeUnit = iota
	UnitMillisecond
	UnitNanosecond
	UnitDay
)

func (u TimeUnit) String() string {
	switch u {
	case UnitDay:
		return "d"
	case UnitMillisecond:
		return "ms"
	case UnitNanosecond:
		return "ns"
	default:
		return "s"
	}
}

// ParseTimeUnit resolves the unit suffix of a prec attribute. An empty
// suffix means seconds.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch s {
	case "", "s":
		return UnitSecond, nil
	case "ms":
		return UnitMillisecond, nil
	case "ns":
		return UnitNanosecond, nil
	case "d":
		return UnitDay, nil
	}
	return 0, scalarErr("prec", "", "unknown time unit "+quoted(s), nil)
}

// Precision is a timestamp resolution such as 100ns or 1s, carried by the
// prec attribute of DFXML timestamp elements.
type Precision struct {
	Resolution int
	Unit       TimeUnit
}

func (p Precision) String() string {
	return fmt.Sprintf("%d%s", p.Resolution, p.Unit)
}

// ParsePrecision parses prec attribute values such as "100ns", "1s" or a
// bare number (seconds).
func ParsePrecision(s string) (Precision, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Precision{}, scalarErr("prec", "", "empty precision", nil)
	}
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9') {
		i++
	}
	if i == 0 {
		return Precision{}, scalarErr("prec", "", "no numeric value in precision "+quoted(s), nil)
	}
	res, err := strconv.Atoi(s[:i])
	if err != nil {
		return Precision{}, scalarErr("prec", "", "bad precision "+quoted(s), err)
	}
	unit, err := ParseTimeUnit(s[i:])
	if err != nil {
		return Precision{}, err
	}
	return Precision{Resolution: res, Unit: unit}, nil
}

// Timestamp is a calendar instant with an optional precision indicator.
// An absent precision means the instant is exact as given.
type Timestamp struct {
	Time time.Time
	Prec *Precision
}

// NewTimestamp wraps a time.Time with no precision indicator.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// timestampLayouts are the accepted input layouts, most specific first.
// Layouts without a zone are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestampText parses the text content of a timestamp element.
func ParseTimestampText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, scalarErr("", "", "cannot parse timestamp "+quoted(s), nil)
}

// Format renders the instant in the fixed RFC 3339 output profile, with the
// UTC offset always present and sub-second digits only when non-zero.
func (ts *Timestamp) Format() string {
	if ts.Time.Nanosecond() != 0 {
		return ts.Time.Format(time.RFC3339Nano)
	}
	return ts.Time.Format(time.RFC3339)
}

// Equal reports whether two timestamps denote the same instant with the
// same precision indicator.
func (ts *Timestamp) Equal(other *Timestamp) bool {
	if ts == nil || other == nil {
		return ts == other
	}
	if !ts.Time.Equal(other.Time) {
		return false
	}
	if (ts.Prec == nil) != (other.Prec == nil) {
		return false
	}
	return ts.Prec == nil || *ts.Prec == *other.Prec
}
