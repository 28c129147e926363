package dfxml_test

import (
	"testing"
	"time"

	"github.com/dfxmlgo/dfxml"
)

func TestParsePrecision(t *testing.T) {
	cases := []struct {
		in   string
		want dfxml.Precision
	}{
		{"1", dfxml.Precision{Resolution: 1, Unit: dfxml.UnitSecond}},
		{"1s", dfxml.Precision{Resolution: 1, Unit: dfxml.UnitSecond}},
		{"100ns", dfxml.Precision{Resolution: 100, Unit: dfxml.UnitNanosecond}},
		{"2ms", dfxml.Precision{Resolution: 2, Unit: dfxml.UnitMillisecond}},
		{"1d", dfxml.Precision{Resolution: 1, Unit: dfxml.UnitDay}},
	}
	for _, c := range cases {
		got, err := dfxml.ParsePrecision(c.in)
		if err != nil {
			t.Fatalf("ParsePrecision(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParsePrecision(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}

	for _, bad := range []string{"", "ns", "1x"} {
		if _, err := dfxml.ParsePrecision(bad); !dfxml.IsKind(err, dfxml.KindInvalidScalar) {
			t.Fatalf("ParsePrecision(%q) error = %v, want invalid_scalar", bad, err)
		}
	}
}

func TestPrecisionString(t *testing.T) {
	p := dfxml.Precision{Resolution: 100, Unit: dfxml.UnitNanosecond}
	if got := p.String(); got != "100ns" {
		t.Fatalf("String() = %q, want %q", got, "100ns")
	}
}

func TestParseTimestampText(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2019-02-02T03:06:43Z", time.Date(2019, 2, 2, 3, 6, 43, 0, time.UTC)},
		{"2019-02-02T03:06:43+01:00", time.Date(2019, 2, 2, 3, 6, 43, 0, time.FixedZone("", 3600))},
		{"2019-02-02T03:06:43", time.Date(2019, 2, 2, 3, 6, 43, 0, time.UTC)},
		{"2019-02-02 03:06:43", time.Date(2019, 2, 2, 3, 6, 43, 0, time.UTC)},
		{"2019-02-02T03:06:43.5Z", time.Date(2019, 2, 2, 3, 6, 43, 500000000, time.UTC)},
	}
	for _, c := range cases {
		got, err := dfxml.ParseTimestampText(c.in)
		if err != nil {
			t.Fatalf("ParseTimestampText(%q) error: %v", c.in, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("ParseTimestampText(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := dfxml.ParseTimestampText("not a time"); !dfxml.IsKind(err, dfxml.KindInvalidScalar) {
		t.Fatalf("ParseTimestampText(garbage) error = %v, want invalid_scalar", err)
	}
}

func TestTimestampFormat(t *testing.T) {
	ts := dfxml.NewTimestamp(time.Date(2019, 2, 2, 3, 6, 43, 0, time.UTC))
	if got := ts.Format(); got != "2019-02-02T03:06:43Z" {
		t.Fatalf("Format() = %q, want %q", got, "2019-02-02T03:06:43Z")
	}

	sub := dfxml.NewTimestamp(time.Date(2019, 2, 2, 3, 6, 43, 500000000, time.UTC))
	if got := sub.Format(); got != "2019-02-02T03:06:43.5Z" {
		t.Fatalf("Format() = %q, want %q", got, "2019-02-02T03:06:43.5Z")
	}
}

func TestTimestampEqual(t *testing.T) {
	base := time.Date(2019, 2, 2, 3, 6, 43, 0, time.UTC)
	prec := dfxml.Precision{Resolution: 1, Unit: dfxml.UnitSecond}

	a := &dfxml.Timestamp{Time: base}
	b := &dfxml.Timestamp{Time: base}
	if !a.Equal(b) {
		t.Fatalf("Equal same instant = false, want true")
	}

	c := &dfxml.Timestamp{Time: base, Prec: &prec}
	if a.Equal(c) {
		t.Fatalf("Equal with differing precision = true, want false")
	}

	d := &dfxml.Timestamp{Time: base, Prec: &prec}
	if !c.Equal(d) {
		t.Fatalf("Equal same precision = false, want true")
	}

	var nilTS *dfxml.Timestamp
	if nilTS.Equal(a) {
		t.Fatalf("nil.Equal(non-nil) = true, want false")
	}
	if !nilTS.Equal(nil) {
		t.Fatalf("nil.Equal(nil) = false, want true")
	}
}
