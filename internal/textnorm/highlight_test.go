package textnorm

import "testing"

func TestHighlight_AccentedText(t *testing.T) {
	cases := []struct {
		text, query, want string
	}{
		{"Džamija Arap", "djamija", "<strong>Džamija</strong> Arap"},
		{"Šuma Sokolovići", "suma", "<strong>Šuma</strong> Sokolovići"},
		{"Čaršija", "cars", "<strong>Čarš</strong>ija"},
		{"Groblje", "gro", "<strong>Gro</strong>blje"},
		{"12/3 Džamija Arap", "12/3", "<strong>12/3</strong> Džamija Arap"},
		{"Zgrada Vakufa", "xyz", "Zgrada Vakufa"},
		{"Livada", "", "Livada"},
		{"", "livada", ""},
	}
	for _, tc := range cases {
		got := HighlightHTML(tc.text, tc.query)
		if got != tc.want {
			t.Fatalf("HighlightHTML(%q,%q)=%q want %q", tc.text, tc.query, got, tc.want)
		}
	}
}

func TestHighlightPattern_QuotesMeta(t *testing.T) {
	re, ok := HighlightPattern("a.b(")
	if !ok {
		t.Fatal("expected pattern")
	}
	if re.MatchString("axb(") {
		t.Fatal("period must be literal")
	}
	if !re.MatchString("A.B(") {
		t.Fatal("expected case-insensitive literal match")
	}
}

func TestHighlightPattern_Blank(t *testing.T) {
	if _, ok := HighlightPattern("   "); ok {
		t.Fatal("blank query must not build a pattern")
	}
}

func TestHighlightHTML_EscapesAroundMatches(t *testing.T) {
	got := HighlightHTML("Vakuf <Arap> & sin", "arap")
	want := "Vakuf &lt;<strong>Arap</strong>&gt; &amp; sin"
	if got != want {
		t.Fatalf("got=%q want %q", got, want)
	}
	if got := HighlightHTML("a&b", ""); got != "a&amp;b" {
		t.Fatalf("no query: got=%q", got)
	}
}
