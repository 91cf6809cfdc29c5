// Package filter evaluates the active search criteria over the loaded vakuf
// records and keeps the map markers in sync with the result.
package filter

import (
	"strings"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/textnorm"
)

// Criteria is the set of active constraints. An empty field places no
// constraint on its dimension; a whitespace-only query counts as empty.
type Criteria struct {
	Query string `json:"query"`
	City  string `json:"city,omitempty"`
	Type  string `json:"type,omitempty"`
	Name  string `json:"name,omitempty"`
}

func (c Criteria) hasQuery() bool { return strings.TrimSpace(c.Query) != "" }

// IsEmpty reports whether no dimension is constrained.
func (c Criteria) IsEmpty() bool {
	return !c.hasQuery() && c.City == "" && c.Type == "" && c.Name == ""
}

// Matches reports whether r satisfies every non-empty criterion.
func Matches(r model.Record, c Criteria) bool {
	return compile(c).match(r, textnorm.Normalize(r.Name))
}

// Filter returns the records matching c in input order.
func Filter(records []model.Record, c Criteria) []model.Record {
	p := compile(c)
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if p.match(r, textnorm.Normalize(r.Name)) {
			out = append(out, r)
		}
	}
	return out
}

// predicate is Criteria with its query and name normalized once.
type predicate struct {
	city, typ string

	name    string
	hasName bool

	query      string
	queryLower string
	hasQuery   bool
}

func compile(c Criteria) predicate {
	p := predicate{city: c.City, typ: c.Type}
	if c.Name != "" {
		p.hasName = true
		p.name = textnorm.Normalize(c.Name)
	}
	if c.hasQuery() {
		p.hasQuery = true
		p.query = textnorm.Normalize(c.Query)
		p.queryLower = strings.ToLower(c.Query)
	}
	return p
}

// normName must be textnorm.Normalize(r.Name).
func (p predicate) match(r model.Record, normName string) bool {
	if p.city != "" && r.City != p.city {
		return false
	}
	if p.typ != "" && r.Type != p.typ {
		return false
	}
	if p.hasName && normName != p.name {
		return false
	}
	if p.hasQuery {
		// parcel numbers are alphanumeric: case folding only
		if !strings.Contains(normName, p.query) &&
			!strings.Contains(strings.ToLower(r.ParcelID), p.queryLower) {
			return false
		}
	}
	return true
}

// BoundsOf returns the bounding box of the record positions; ok is false
// for an empty slice.
func BoundsOf(records []model.Record) (bb model.BBox, ok bool) {
	if len(records) == 0 {
		return model.BBox{}, false
	}
	bb = model.PointBBox(records[0].Position)
	for _, r := range records[1:] {
		bb = bb.Extend(r.Position)
	}
	return bb, true
}
