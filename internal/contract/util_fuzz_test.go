package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText fuzzes TruncateText with random values and widths.
func FuzzTruncateText(f *testing.F) {
	seeds := []struct {
		value string
		width int
	}{
		{"GDP growth rate", 8},
		{"", 5},
		{"Bevölkerungsdichte", 4},
		{"x", -1},
	}
	for _, seed := range seeds {
		f.Add(seed.value, seed.width)
	}

	f.Fuzz(func(t *testing.T, value string, width int) {
		out := TruncateText(value, width)
		if out != value && utf8.RuneCountInString(out) != width {
			t.Fatalf("truncated value %q exceeds width %d", out, width)
		}
	})
}

// FuzzParseWeightsString fuzzes the weights flag parser.
func FuzzParseWeightsString(f *testing.F) {
	f.Add("indicator=0.35,geo=0.2,time=0.25,unit=0.1,source=0.1")
	f.Add("indicator=1")
	f.Add("geo=")
	f.Add(",,=,")

	f.Fuzz(func(_ *testing.T, s string) {
		_, _ = ParseWeightsString(s)
	})
}
