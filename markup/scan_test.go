package markup

import (
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"xrc/anchor"
)

func parseDoc(t *testing.T, body string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(`<html><body>` + body + `</body></html>`); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestScanCollectsTargets(t *testing.T) {
	doc := parseDoc(t, `
		<h1 id="ch1">Chapter One</h1>
		<figure id="map"><img src="map.png"/><figcaption>World Map</figcaption></figure>
		<table><caption>Population</caption><tr><td>1</td></tr></table>
		<p id="landmark">Some text.</p>
		<h3>Deep Heading</h3>`)

	res := Scan(doc, "ch01.xhtml", zaptest.NewLogger(t))

	if len(res.Targets) != 5 {
		t.Fatalf("expected 5 targets, got %d", len(res.Targets))
	}

	cases := []struct {
		kind     anchor.Kind
		original string
		title    string
		level    int
	}{
		{anchor.KindHeading, "ch1", "Chapter One", 1},
		{anchor.KindFigure, "map", "World Map", 0},
		{anchor.KindTable, "", "Population", 0},
		{anchor.KindBookmark, "landmark", "", 0},
		{anchor.KindHeading, "", "Deep Heading", 3},
	}
	for i, c := range cases {
		got := res.Targets[i].Target
		if got.Kind != c.kind {
			t.Fatalf("target %d: expected kind %s, got %s", i, c.kind, got.Kind)
		}
		if got.OriginalID != c.original {
			t.Fatalf("target %d: expected original id %q, got %q", i, c.original, got.OriginalID)
		}
		if got.Title != c.title {
			t.Fatalf("target %d: expected title %q, got %q", i, c.title, got.Title)
		}
		if got.Level != c.level {
			t.Fatalf("target %d: expected level %d, got %d", i, c.level, got.Level)
		}
		if got.File != "ch01.xhtml" {
			t.Fatalf("target %d: wrong file %q", i, got.File)
		}
	}

	// positions follow document order
	for i := 1; i < len(res.Targets); i++ {
		if res.Targets[i].Target.Position <= res.Targets[i-1].Target.Position {
			t.Fatal("positions not monotonic")
		}
	}
}

func TestScanCollectsCalls(t *testing.T) {
	doc := parseDoc(t, `
		<p><a href="#ch1">see chapter</a></p>
		<p><a data-target="World Map">the map</a></p>
		<p><a href="https://example.com/">outside</a></p>
		<p><a href="#">nothing</a></p>`)

	res := Scan(doc, "ch02.xhtml", zaptest.NewLogger(t))

	if len(res.Calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(res.Calls))
	}
	if res.Calls[0].Call.TargetKey != "ch1" || res.Calls[0].Call.DisplayText != "see chapter" {
		t.Fatalf("unexpected first call: %+v", res.Calls[0].Call)
	}
	if res.Calls[1].Call.TargetKey != "World Map" {
		t.Fatalf("unexpected second call: %+v", res.Calls[1].Call)
	}
	if res.Malformed != 1 {
		t.Fatalf("expected 1 malformed marker, got %d", res.Malformed)
	}
}

func TestScanNamedAnchors(t *testing.T) {
	doc := parseDoc(t, `
		<p><a id="mark1">an old style anchor</a></p>
		<p><a>no attributes at all</a></p>
		<p><a href="#mark1">see above</a></p>`)

	res := Scan(doc, "ch02.xhtml", zaptest.NewLogger(t))

	if len(res.Targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(res.Targets))
	}
	got := res.Targets[0].Target
	if got.Kind != anchor.KindBookmark || got.OriginalID != "mark1" {
		t.Fatalf("unexpected named anchor target: %+v", got)
	}
	if len(res.Calls) != 1 || res.Calls[0].Call.TargetKey != "mark1" {
		t.Fatalf("unexpected calls: %+v", res.Calls)
	}
	if res.Malformed != 0 {
		t.Fatalf("expected no malformed markers, got %d", res.Malformed)
	}
}

func TestScanSkipsBackReferenceLinks(t *testing.T) {
	doc := parseDoc(t, `
		<aside epub:type="footnote" id="fn1"><p>Note.</p>
			<span class="note-backrefs"><a class="note-backref" href="#ref-call-0001">&lt;&lt;</a></span>
		</aside>`)

	res := Scan(doc, "ch02.xhtml", zaptest.NewLogger(t))

	if len(res.Calls) != 0 {
		t.Fatalf("back reference rescanned as call: %+v", res.Calls)
	}
	if res.Malformed != 0 {
		t.Fatalf("expected no malformed markers, got %d", res.Malformed)
	}
}

func TestScanCollectsNotesAndIndex(t *testing.T) {
	doc := parseDoc(t, `
		<p>Text<span data-index="Compilers:parsing">parsers</span></p>
		<aside epub:type="footnote" id="fn1"><p>A footnote.</p></aside>
		<div class="endnote extra"><p>An endnote.</p></div>
		<span data-index="  "></span>`)

	res := Scan(doc, "ch03.xhtml", zaptest.NewLogger(t))

	if len(res.Index) != 1 {
		t.Fatalf("expected 1 index marker, got %d", len(res.Index))
	}
	if res.Index[0].Term != "Compilers:parsing" {
		t.Fatalf("unexpected term %q", res.Index[0].Term)
	}
	if res.Index[0].Target.Kind != anchor.KindIndexterm {
		t.Fatalf("unexpected index target kind %s", res.Index[0].Target.Kind)
	}

	if len(res.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(res.Notes))
	}
	if res.Notes[0].Target.Kind != anchor.KindFootnote || res.Notes[0].Target.OriginalID != "fn1" {
		t.Fatalf("unexpected first note: %+v", res.Notes[0].Target)
	}
	if res.Notes[1].Target.Kind != anchor.KindEndnote {
		t.Fatalf("unexpected second note: %+v", res.Notes[1].Target)
	}
	if res.Malformed != 1 {
		t.Fatalf("expected 1 malformed marker, got %d", res.Malformed)
	}
}

func TestPlainTextCollapsesWhitespace(t *testing.T) {
	doc := parseDoc(t, `<p id="p1">one
		<em>two</em>   three</p>`)
	res := Scan(doc, "a.xhtml", zaptest.NewLogger(t))
	if len(res.Targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(res.Targets))
	}
	if got := res.Targets[0].Target.PlainText; got != "one two three" {
		t.Fatalf("unexpected plain text %q", got)
	}
}
