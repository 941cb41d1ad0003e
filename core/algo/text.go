package algo

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tokenize normalizes free text and returns its sorted set of tokens.
//
// The text is NFKC normalized and case folded, and every rune that is not a
// letter, digit or underscore acts as a separator. Tokenizing once per record
// keeps the pairwise loop free of allocation-heavy string work.
func Tokenize(s string) []string {
	// A Caser carries state, so each call gets its own.
	folded := cases.Fold().String(norm.NFKC.String(s))
	tokens := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	slices.Sort(tokens)
	return slices.Compact(tokens)
}

// TokenSetRatio returns the token-set similarity of two strings in [0,1].
// Word order and repeated words do not matter; an empty string scores 0.
func TokenSetRatio(a, b string) float64 {
	return TokenSetRatioTokens(Tokenize(a), Tokenize(b))
}

// TokenSetRatioTokens is TokenSetRatio over token sets already produced by
// Tokenize. Both inputs must be sorted and free of duplicates.
func TokenSetRatioTokens(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common, onlyA, onlyB := splitSorted(a, b)

	sect := strings.Join(common, " ")
	combinedA := joinNonEmpty(sect, strings.Join(onlyA, " "))
	combinedB := joinNonEmpty(sect, strings.Join(onlyB, " "))

	return max(
		indelRatio(sect, combinedA),
		indelRatio(sect, combinedB),
		indelRatio(combinedA, combinedB),
	)
}

// splitSorted walks two sorted sets and returns their intersection and the
// two differences, all still sorted.
func splitSorted(a, b []string) (common, onlyA, onlyB []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch strings.Compare(a[i], b[j]) {
		case 0:
			common = append(common, a[i])
			i++
			j++
		case -1:
			onlyA = append(onlyA, a[i])
			i++
		default:
			onlyB = append(onlyB, b[j])
			j++
		}
	}
	onlyA = append(onlyA, a[i:]...)
	onlyB = append(onlyB, b[j:]...)
	return common, onlyA, onlyB
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// indelRatio is the normalized insert/delete similarity 2*LCS/(len(a)+len(b))
// measured in runes.
func indelRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength computes the longest common subsequence with two rolling rows.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
