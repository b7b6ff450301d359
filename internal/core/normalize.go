package core

import "strings"

// missing-value tokens treated as absent after trimming and uppercasing
var missingTokens = map[string]struct{}{
	"": {}, "NAN": {}, "NA": {}, "NONE": {},
}

// NormalizeSeq canonicalizes a raw barcode cell: trim, drop inner spaces,
// uppercase. Missing-value tokens normalize to "". Idempotent for any
// already-normalized value.
func NormalizeSeq(raw string) string {
	v := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if _, missing := missingTokens[v]; missing {
		return ""
	}
	return v
}

// NormalizeID trims an index ID, mapping nan-like spreadsheet artifacts to "".
func NormalizeID(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

// Hamming returns the number of differing positions between two normalized
// sequences. ok is false when either side is absent or the lengths differ.
func Hamming(a, b string) (d int, ok bool) {
	if a == "" || b == "" || len(a) != len(b) {
		return 0, false
	}
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d, true
}
