package textnorm

import (
	"html"
	"regexp"
	"strings"
)

// accented variants a plain query letter should still find in display text
var letterClasses = map[rune]string{
	's': "[sš]",
	'c': "[cćč]",
	'z': "[zž]",
	'd': "[dđ]",
	'w': "[wv]",
	'q': "[qk]",
	'x': "(?:x|ks)",
}

const digraphClass = "(?:dj|dž|dz|đ)"

// HighlightPattern builds a case-insensitive pattern that finds query in
// display text regardless of accents. Unlike Normalize it expands letters
// into classes instead of collapsing them, so a match covers the original
// accented runes. ok is false for a blank query.
func HighlightPattern(query string) (*regexp.Regexp, bool) {
	q := Fold(query)
	if strings.TrimSpace(q) == "" {
		return nil, false
	}
	rs := []rune(q)

	var b strings.Builder
	b.WriteString("(?i)")
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == 'đ' {
			b.WriteString(digraphClass)
			continue
		}
		if r == 'd' && i+1 < len(rs) && (rs[i+1] == 'j' || rs[i+1] == 'z') {
			b.WriteString(digraphClass)
			i++
			continue
		}
		if class, ok := letterClasses[r]; ok {
			b.WriteString(class)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, false
	}
	return re, true
}

// HighlightHTML wraps every accent-insensitive occurrence of query in text
// with <strong>. The text itself is HTML-escaped.
func HighlightHTML(text, query string) string {
	re, ok := HighlightPattern(query)
	if text == "" || !ok {
		return html.EscapeString(text)
	}
	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString("<strong>")
		b.WriteString(html.EscapeString(text[m[0]:m[1]]))
		b.WriteString("</strong>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
