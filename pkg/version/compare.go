package version

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when no numeric component can be read from a version string.
var ErrInvalidVersion = errors.New("invalid version")

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "LESS"
	case Greater:
		return "GREATER"
	}
	return "EQUAL"
}

// Value is a parsed dotted version such as "9.1" or "10.0-beta".
// The zero Value is "unknown" and sorts before every parsed version.
type Value struct {
	raw    string
	parts  []int
	suffix string
	known  bool
}

var dottedPrefix = regexp.MustCompile(`^(\d+(?:\.\d+)*)(.*)$`)

// Parse reads the leading dotted integer components of raw. Anything after
// them is kept as a suffix used only to break ties.
func Parse(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")

	m := dottedPrefix.FindStringSubmatch(s)
	if m == nil {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
	}

	fields := strings.Split(m[1], ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if errors.Is(err, strconv.ErrRange) {
			// Oversized components saturate so they still order above any real one.
			n = math.MaxInt
		} else if err != nil {
			return Value{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, raw, err)
		}
		parts = append(parts, n)
	}

	return Value{raw: strings.TrimSpace(raw), parts: parts, suffix: m[2], known: true}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(raw string) Value {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseOrUnknown returns the unknown Value instead of an error.
func ParseOrUnknown(raw string) Value {
	v, err := Parse(raw)
	if err != nil {
		return Value{raw: raw}
	}
	return v
}

// Known reports whether v holds a parsed version.
func (v Value) Known() bool {
	return v.known
}

// String returns the original input.
func (v Value) String() string {
	return v.raw
}

// Compare orders v against o. Missing trailing components count as zero,
// so "9" equals "9.0". Equal numbers fall back to comparing suffixes.
func (v Value) Compare(o Value) Ordering {
	switch {
	case !v.known && !o.known:
		return Equal
	case !v.known:
		return Less
	case !o.known:
		return Greater
	}

	n := len(v.parts)
	if len(o.parts) > n {
		n = len(o.parts)
	}
	for i := 0; i < n; i++ {
		a, b := component(v.parts, i), component(o.parts, i)
		if a < b {
			return Less
		}
		if a > b {
			return Greater
		}
	}

	return Ordering(strings.Compare(v.suffix, o.suffix))
}

func component(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// CompareStrings parses both inputs, treating unparseable ones as unknown.
func CompareStrings(a, b string) Ordering {
	return ParseOrUnknown(a).Compare(ParseOrUnknown(b))
}

// InRange reports whether v lies within [min, max]. A nil bound is unbounded.
func InRange(v Value, min, max *Value) bool {
	if min != nil && v.Compare(*min) == Less {
		return false
	}
	if max != nil && v.Compare(*max) == Greater {
		return false
	}
	return true
}

// InRangeStrings is InRange over optional strings. Empty or unparseable bounds are unbounded.
func InRangeStrings(v string, min, max *string) bool {
	return InRange(ParseOrUnknown(v), boundOf(min), boundOf(max))
}

func boundOf(s *string) *Value {
	if s == nil {
		return nil
	}
	b, err := Parse(*s)
	if err != nil {
		return nil
	}
	return &b
}

// IsNewer reports whether latest is strictly newer than installed.
// An unknown installed version is older than any parseable latest.
func IsNewer(installed, latest string) bool {
	l, err := Parse(latest)
	if err != nil {
		return false
	}
	return ParseOrUnknown(installed).Compare(l) == Less
}

var (
	tagPrefixes   = []string{"release-", "ver-", "r"}
	tagVersionPat = regexp.MustCompile(`(\d+\.\d+[\d.]*)`)
)

// ExtractFromTag pulls a dotted version out of a release tag such as
// "v1.2.3", "release-2.0" or "plugin-9.1". The trimmed tag is returned when
// nothing version-like is found.
func ExtractFromTag(tag string) string {
	t := strings.TrimSpace(tag)
	t = strings.TrimPrefix(strings.TrimPrefix(t, "v"), "V")
	for _, p := range tagPrefixes {
		if strings.HasPrefix(t, p) {
			t = strings.TrimPrefix(t, p)
			break
		}
	}

	if m := tagVersionPat.FindString(t); m != "" {
		return strings.TrimRight(m, ".")
	}
	return strings.TrimSpace(tag)
}
