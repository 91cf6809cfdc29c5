package filter

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/textnorm"
)

func scenarioRecords() []model.Record {
	return []model.Record{
		{Name: "Džamija Arap", ParcelID: "12/3", City: "Novi Pazar", Type: model.TypeMosque,
			Position: model.LatLng{Lat: 43.1367, Lng: 20.5122}},
		{Name: "Zgrada Vakufa", ParcelID: "45", City: "Tutin", Type: model.TypeBuilding,
			Position: model.LatLng{Lat: 42.9903, Lng: 20.3369}},
	}
}

func names(rs []model.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestFilter_ScenarioA_City(t *testing.T) {
	got := Filter(scenarioRecords(), Criteria{City: "Novi Pazar"})
	if len(got) != 1 || got[0].Name != "Džamija Arap" {
		t.Fatalf("visible=%v want [Džamija Arap]", names(got))
	}
}

func TestFilter_ScenarioC_NormalizedQuery(t *testing.T) {
	got := Filter(scenarioRecords(), Criteria{Query: "djamija"})
	if len(got) != 1 || got[0].Name != "Džamija Arap" {
		t.Fatalf("visible=%v want [Džamija Arap]", names(got))
	}
}

func TestMatches_Table(t *testing.T) {
	r := scenarioRecords()[0]
	cases := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"empty", Criteria{}, true},
		{"blank query", Criteria{Query: "   "}, true},
		{"city exact", Criteria{City: "Novi Pazar"}, true},
		{"city is not normalized", Criteria{City: "novi pazar"}, false},
		{"type exact", Criteria{Type: model.TypeMosque}, true},
		{"type mismatch", Criteria{Type: model.TypeForest}, false},
		{"name normalized", Criteria{Name: "DZAMIJA ARAP"}, true},
		{"name is exact not substring", Criteria{Name: "Džamija"}, false},
		{"parcel substring", Criteria{Query: "2/3"}, true},
		{"parcel case folded", Criteria{Query: "12/3"}, true},
		{"name substring", Criteria{Query: "arap"}, true},
		{"no match", Criteria{Query: "groblje"}, false},
		{"all dims", Criteria{Query: "arap", City: "Novi Pazar", Type: model.TypeMosque, Name: "Džamija Arap"}, true},
		{"one dim fails", Criteria{Query: "arap", City: "Tutin"}, false},
	}
	for _, tc := range cases {
		if got := Matches(r, tc.c); got != tc.want {
			t.Fatalf("%s: Matches=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestMatches_ParcelNotDiacriticNormalized(t *testing.T) {
	r := model.Record{Name: "Livada", ParcelID: "Č-7"}
	if !Matches(r, Criteria{Query: "č-7"}) {
		t.Fatal("case-folded parcel must match")
	}
	if Matches(r, Criteria{Query: "c-7"}) {
		t.Fatal("parcel ids are compared without removing diacritics")
	}
}

// naive restatement of the predicate used as the property-test oracle
func naiveMatch(r model.Record, c Criteria) bool {
	if c.City != "" && r.City != c.City {
		return false
	}
	if c.Type != "" && r.Type != c.Type {
		return false
	}
	if c.Name != "" && textnorm.Normalize(r.Name) != textnorm.Normalize(c.Name) {
		return false
	}
	if strings.TrimSpace(c.Query) == "" {
		return true
	}
	return strings.Contains(textnorm.Normalize(r.Name), textnorm.Normalize(c.Query)) ||
		strings.Contains(strings.ToLower(r.ParcelID), strings.ToLower(c.Query))
}

func TestFilter_PropertyAgainstNaivePredicate(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	words := []string{"Džamija", "Zgrada", "Šuma", "Groblje", "Livada", "Arap", "Vakufa", "Čaršija", "Đulići", "djul", "x", "Ks"}
	cities := append(model.Cities()[:4], "")
	types := append(model.Types(), "")

	pick := func(ss []string) string { return ss[rng.IntN(len(ss))] }
	randName := func() string {
		n := 1 + rng.IntN(3)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = pick(words)
		}
		return strings.Join(parts, " ")
	}

	for iter := range 300 {
		recs := make([]model.Record, rng.IntN(25))
		for i := range recs {
			recs[i] = model.Record{
				Name:     randName(),
				Type:     pick(types[:len(types)-1]),
				City:     pick(cities[:len(cities)-1]),
				ParcelID: pick([]string{"12/3", "45", "7", "120/14", "A-3"}),
			}
		}
		c := Criteria{City: pick(cities), Type: pick(types)}
		switch rng.IntN(4) {
		case 0:
			c.Query = ""
		case 1:
			c.Query = pick(words)
		case 2:
			c.Query = pick([]string{"1", "2/", "45", "a-"})
		default:
			rs := []rune(pick(words))
			c.Query = string(rs[:1+rng.IntN(len(rs))])
		}
		if rng.IntN(5) == 0 && len(recs) > 0 {
			c.Name = recs[rng.IntN(len(recs))].Name
		}

		got := Filter(recs, c)
		var want []model.Record
		for _, r := range recs {
			if naiveMatch(r, c) {
				want = append(want, r)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("iter %d criteria %+v: got %d records want %d", iter, c, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("iter %d criteria %+v: record %d differs: %+v vs %+v", iter, c, i, got[i], want[i])
			}
		}
	}
}

func TestFilter_EmptyCriteriaReturnsAll(t *testing.T) {
	recs := scenarioRecords()
	if got := Filter(recs, Criteria{}); len(got) != len(recs) {
		t.Fatalf("got %d want %d", len(got), len(recs))
	}
	if got := Filter(nil, Criteria{Query: "x"}); len(got) != 0 {
		t.Fatalf("got %d want 0", len(got))
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Fatal("empty input must not produce bounds")
	}
	bb, ok := BoundsOf(scenarioRecords())
	if !ok {
		t.Fatal("expected bounds")
	}
	want := model.BBox{X1: 20.3369, Y1: 42.9903, X2: 20.5122, Y2: 43.1367, SRID: "EPSG:4326"}
	if bb != want {
		t.Fatalf("bounds=%+v want %+v", bb, want)
	}
}

func TestCriteria_IsEmpty(t *testing.T) {
	if !(Criteria{Query: "  "}).IsEmpty() {
		t.Fatal("blank query is empty")
	}
	if (Criteria{Type: model.TypeMosque}).IsEmpty() {
		t.Fatal("type set is not empty")
	}
}
