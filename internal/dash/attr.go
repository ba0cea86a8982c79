package dash

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Calendar approximations used when a duration carries years or months.
const (
	secondsPerDay   = 60 * 60 * 24
	secondsPerYear  = 31557600 // 365.25 days
	secondsPerMonth = 2629746  // 30.436875 days
)

var (
	intRegex      = regexp.MustCompile(`^(-?[0-9]+)(?:\.0+)?$`)
	floatRegex    = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)
	rangeRegex    = regexp.MustCompile(`^([0-9]+)-([0-9]+)$`)
	durationRegex = regexp.MustCompile(`^P(?:([0-9]*)Y)?(?:([0-9]*)M)?(?:([0-9]*)D)?` +
		`(?:T(?:([0-9]*)H)?(?:([0-9]*)M)?(?:([0-9.]*)S)?)?$`)
)

// dateLayouts are tried before falling back to free-form date parsing.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
	"January 2, 2006",
	"Jan 2, 2006",
}

// Range is an inclusive byte range, e.g. from an indexRange or mediaRange attribute.
// Start and End are not required to be ordered.
type Range struct {
	Start int64
	End   int64
}

// ParseInt parses a signed decimal integer. A fractional part made only of
// zeros ("3.00") is accepted. Values outside the int64 range fail.
func ParseInt(s string) (int64, bool) {
	m := intRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParsePositiveInt parses an integer greater than zero.
func ParsePositiveInt(s string) (int64, bool) {
	n, ok := ParseInt(s)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseNonNegativeInt parses an integer greater than or equal to zero.
// "-0" is zero and therefore valid.
func ParseNonNegativeInt(s string) (int64, bool) {
	n, ok := ParseInt(s)
	if !ok || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseFloat parses a decimal or exponential number. Unlike the integer
// parsers, a value too large to represent saturates to an infinity of the
// matching sign instead of failing.
func ParseFloat(s string) (float64, bool) {
	if !floatRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if f == 0 {
		// Drop the sign of "-0".
		f = 0
	}
	return f, true
}

// ParseFrameRate parses a frameRate attribute, either a plain number or a
// "<numerator>/<denominator>" fraction such as "30000/1001".
func ParseFrameRate(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return ParseFloat(s)
	}
	n, ok := ParsePositiveInt(num)
	if !ok {
		return 0, false
	}
	d, ok := ParsePositiveInt(den)
	if !ok {
		return 0, false
	}
	return float64(n) / float64(d), true
}

// ParseRange parses a "<start>-<end>" byte range.
func ParseRange(s string) (Range, bool) {
	m := rangeRegex.FindStringSubmatch(s)
	if m == nil {
		return Range{}, false
	}
	start, ok := ParseInt(m[1])
	if !ok {
		return Range{}, false
	}
	end, ok := ParseInt(m[2])
	if !ok {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// ParseDate parses a date/time string and returns seconds since the Unix epoch.
// Strings without a zone are interpreted as UTC.
func ParseDate(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	var t time.Time
	parsed := false
	for _, layout := range dateLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t, parsed = v, true
			break
		}
	}
	if !parsed {
		v, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return 0, false
		}
		t = v
	}

	return float64(t.Unix()) + float64(t.Nanosecond())/1e9, true
}

// ParseDuration parses an ISO 8601 duration of the form
// P[nY][nM][nD][T[nH][nM][nS]] and returns it in seconds. Only the seconds
// component may be fractional. Years and months are approximated, since
// their exact length depends on the date they are applied to.
// Components that would overflow fail rather than saturate.
func ParseDuration(s string) (float64, bool) {
	m := durationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	factors := [...]int64{secondsPerYear, secondsPerMonth, secondsPerDay, 60 * 60, 60}
	var whole int64
	for i, factor := range factors {
		n, ok := durationComponent(m[i+1])
		if !ok {
			return 0, false
		}
		if n > (math.MaxInt64-whole)/factor {
			return 0, false
		}
		whole += n * factor
	}

	seconds := 0.0
	if m[6] != "" {
		f, err := strconv.ParseFloat(m[6], 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		seconds = f
	}

	total := float64(whole) + seconds
	if math.IsInf(total, 0) {
		return 0, false
	}
	return total, true
}

func durationComponent(s string) (int64, bool) {
	if s == "" {
		return 0, true
	}
	return ParseNonNegativeInt(s)
}
