// Package suggest derives the autocomplete list shown under the search box.
package suggest

import (
	"sort"
	"strings"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/core/observability"
	"github.com/mohammed-shakir/vakuf-map/internal/textnorm"
)

// Generate returns the suggestions for query over records. A name match
// yields the bare name, a parcel match yields "{parcel} {name}". Entries are
// unique in first-seen order, then stably reordered so that entries holding
// the raw lowercased query come first.
func Generate(records []model.Record, query string) []string {
	out := []string{}
	q := textnorm.Normalize(query)
	if strings.TrimSpace(q) == "" || len(records) == 0 {
		return out
	}

	seen := make(map[string]struct{}, len(records))
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, r := range records {
		if strings.Contains(textnorm.Normalize(r.Name), q) {
			add(r.Name)
		}
		if r.ParcelID != "" && strings.Contains(textnorm.Normalize(r.ParcelID), q) {
			add(r.ParcelID + " " + r.Name)
		}
	}

	raw := strings.ToLower(query)
	sort.SliceStable(out, func(i, j int) bool {
		return rawHit(out[i], raw) && !rawHit(out[j], raw)
	})
	observability.ObserveSuggestions(len(out))
	return out
}

func rawHit(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

// Limit caps s at n entries. n <= 0 leaves s as is.
func Limit(s []string, n int) []string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

// QueryFor is the query committed when suggestion is picked: the parcel
// number alone for parcel suggestions, the whole text otherwise.
func QueryFor(suggestion string) string {
	first, _, found := strings.Cut(suggestion, " ")
	if found && textnorm.IsNumericInput(first) {
		return first
	}
	return suggestion
}
