package basicio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEscapeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"plain",
		`has "quotes"`,
		`has\backslash`,
		"has\nnewline\x00and nul",
		string([]byte{0, 1, 2, 253, 254, 255}),
	}
	for _, s := range cases {
		escaped := Escape(s)
		doc, err := ParseDocument([]byte("sym " + escaped + "\n"))
		if err != nil {
			t.Fatalf("parse failed for %q: %v", s, err)
		}
		if len(doc.Stanzas) != 1 || len(doc.Stanzas[0].Lines) != 1 {
			t.Fatalf("unexpected document shape for %q: %+v", s, doc)
		}
		got := doc.Stanzas[0].Lines[0].Values[0]
		if got.Kind != String || got.Str != s {
			t.Fatalf("round trip mismatch for %q: got %+v", s, got)
		}
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	doc := Document{Stanzas: []Stanza{
		NewStanzaBuilder().Str("dir", "").Build(),
		NewStanzaBuilder().
			Str("file", "foo").
			HexLine("content", []byte{0xaa, 0xbb}).
			Build(),
	}}
	text := WriteDocument(doc)
	parsed, err := ParseDocument([]byte(text))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if diff := cmp.Diff(doc, parsed); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"\"unterminated",
		"[zz]",
		"[abc]",
		"sym",
		"1sym \"v\"\n",
	}
	for _, c := range cases {
		if _, err := ParseDocument([]byte(c)); err == nil {
			t.Fatalf("expected error for input %q", c)
		}
	}
}

func TestSymbolAlignment(t *testing.T) {
	doc := Document{Stanzas: []Stanza{
		{Lines: []Line{
			NewLine("a", StrValue("x")),
			NewLine("longsymbol", StrValue("y")),
		}},
	}}
	text := WriteDocument(doc)
	want := "         a \"x\"\nlongsymbol \"y\"\n"
	if text != want {
		t.Fatalf("alignment mismatch:\ngot:  %q\nwant: %q", text, want)
	}
}
