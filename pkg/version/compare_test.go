package version

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw        string
		wantParts  []int
		wantSuffix string
	}{
		{"9.1", []int{9, 1}, ""},
		{"10.0", []int{10, 0}, ""},
		{"9", []int{9}, ""},
		{"v1.2.3", []int{1, 2, 3}, ""},
		{"9.1-beta", []int{9, 1}, "-beta"},
		{"1.2.3.4", []int{1, 2, 3, 4}, ""},
		{" 7.7sp1 ", []int{7, 7}, "sp1"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.True(t, v.Known())
			assert.Equal(t, tt.wantParts, v.parts)
			assert.Equal(t, tt.wantSuffix, v.suffix)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "beta", "abc12345", "v"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.True(t, errors.Is(err, ErrInvalidVersion), "expected ErrInvalidVersion for %q", raw)
		})
	}
}

func TestParse_OversizedComponent(t *testing.T) {
	v, err := Parse("1.99999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, []int{1, math.MaxInt}, v.parts)

	assert.True(t, IsNewer("1.2", "1.99999999999999999999"))
	assert.False(t, IsNewer("1.99999999999999999999", "1.2"))
	assert.Equal(t, Less, CompareStrings("2", "99999999999999999999.0"))
}

func TestCompare_Examples(t *testing.T) {
	tests := []struct {
		a, b string
		want Ordering
	}{
		{"9.1", "9.9", Less},
		{"9.9", "9.10", Less},
		{"9.10", "9.1", Greater},
		{"9", "9.0", Equal},
		{"9.0.0", "9", Equal},
		{"9.1", "9.1-beta", Less},
		{"9.1-alpha", "9.1-beta", Less},
		{"10.0", "9.9.9", Greater},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.a).Compare(MustParse(tt.b)))
		})
	}
}

// TestCompare_TotalOrder checks antisymmetry and transitivity over a mixed sample.
func TestCompare_TotalOrder(t *testing.T) {
	sample := []string{"1", "1.0", "1.0.1", "1.2", "1.10", "2.0-beta", "2.0", "2.0-rc", "9.1", "9.9", "9.10", "10.0", "10.0.0.1"}
	values := make([]Value, 0, len(sample))
	for _, s := range sample {
		values = append(values, MustParse(s))
	}
	values = append(values, Value{}) // unknown

	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, -a.Compare(b), b.Compare(a), "antisymmetry %q %q", a, b)
			for _, c := range values {
				if a.Compare(b) == Less && b.Compare(c) == Less {
					assert.Equal(t, Less, a.Compare(c), "transitivity %q %q %q", a, b, c)
				}
			}
		}
	}
}

func TestCompare_Unknown(t *testing.T) {
	unknown := ParseOrUnknown("")
	assert.False(t, unknown.Known())
	assert.Equal(t, Less, unknown.Compare(MustParse("0.0.1")))
	assert.Equal(t, Greater, MustParse("0").Compare(unknown))
	assert.Equal(t, Equal, unknown.Compare(ParseOrUnknown("not-a-version")))
}

func TestCompareStrings(t *testing.T) {
	assert.Equal(t, Less, CompareStrings("1.0", "1.1"))
	assert.Equal(t, Less, CompareStrings("", "1.1"))
	assert.Equal(t, Equal, CompareStrings("2", "2.0"))
}

func TestInRange(t *testing.T) {
	lo := MustParse("9.0")
	hi := MustParse("10.0")

	assert.True(t, InRange(MustParse("9.0"), &lo, &hi), "lower bound inclusive")
	assert.True(t, InRange(MustParse("10.0"), &lo, &hi), "upper bound inclusive")
	assert.False(t, InRange(MustParse("10.1"), nil, &hi))
	assert.False(t, InRange(MustParse("8.4"), &lo, nil))
	assert.True(t, InRange(MustParse("8.4"), nil, nil))
}

func TestInRangeStrings(t *testing.T) {
	min := "9.0"
	max := "10.0"
	bad := "whatever"

	assert.True(t, InRangeStrings("9.2", &min, &max))
	assert.False(t, InRangeStrings("10.1", &min, &max))
	assert.True(t, InRangeStrings("10.1", &min, &bad))
	assert.True(t, InRangeStrings("7.0", nil, nil))
}

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer("1.0", "1.1"))
	assert.True(t, IsNewer("", "1.1"))
	assert.False(t, IsNewer("1.1", "1.1"))
	assert.False(t, IsNewer("1.2", "1.1"))
	assert.False(t, IsNewer("1.0", "nightly"))
}

func TestExtractFromTag(t *testing.T) {
	tests := []struct {
		tag, want string
	}{
		{"v1.2.3", "1.2.3"},
		{"V2.0", "2.0"},
		{"release-1.4", "1.4"},
		{"ver-3.1.2", "3.1.2"},
		{"r5.0", "5.0"},
		{"plugin-9.1", "9.1"},
		{"1.2.", "1.2"},
		{"nightly", "nightly"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromTag(tt.tag))
		})
	}
}
