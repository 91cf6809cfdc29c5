// Package keys derives Redis keys for cached record sets.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const (
	prefix = "vakuf:records"
	// bump when the cached entry layout changes
	schemaVersion = 1
)

// Records returns the key of the cached record set of a document store
// collection. The readable part is ASCII only; the hash suffix keeps
// collections that sanitize alike apart.
func Records(baseURL, collection string) string {
	src := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "|" + strings.TrimSpace(collection)
	name := sanitize(strings.TrimSpace(collection))

	const maxNameLen = 64
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return fmt.Sprintf("%s:v%d:%s:h=%016x", prefix, schemaVersion, name, xxhash.Sum64String(src))
}

// sanitize keeps ASCII letters, digits, '_' and '-'; whitespace runs become
// '_' and any other run becomes '-'.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case unicode.IsSpace(r):
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
