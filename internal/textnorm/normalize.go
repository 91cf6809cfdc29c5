// Package textnorm canonicalizes text for diacritic and case insensitive
// comparison of vakuf names and parcel numbers.
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// regional spellings folded to one canonical letter. "dj", "dž" and "dz" are
// all typed for đ/dž on latin keyboards, so they share đ.
var letterFolds = strings.NewReplacer(
	"dj", "đ",
	"dz", "đ",
	"q", "k",
	"x", "ks",
	"w", "v",
)

// NFD input -> drop combining marks (Mn) -> NFC
var stripPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		)
	},
}

// Normalize returns the canonical comparison form of s: lowercased, regional
// letter variants folded, combining marks removed. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	if isPlainASCII(s) {
		return letterFolds.Replace(s)
	}

	s = norm.NFD.String(strings.ToLower(s))
	// folding before the marks go keeps "dž" (d + z + caron) recognizable
	s = letterFolds.Replace(s)
	s = stripMarks(s)
	// a stripped "ďj" is a plain "dj" now
	return letterFolds.Replace(s)
}

// Fold lowercases s and removes combining marks without the regional letter
// folds.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	if isPlainASCII(s) {
		return s
	}
	return stripMarks(norm.NFD.String(strings.ToLower(s)))
}

func stripMarks(s string) string {
	t := stripPool.Get().(transform.Transformer)
	defer func() {
		t.Reset()
		stripPool.Put(t)
	}()
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ASCII without upper case letters needs neither lowering nor decomposition.
func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x80 || (c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
