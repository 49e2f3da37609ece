package engine

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"xrc/anchor"
	"xrc/config"
	"xrc/content"
)

func testDocConfig() *config.DocumentConfig {
	return &config.DocumentConfig{
		IDPrefix:              "ref",
		MaxIDLength:           64,
		CollisionSuffixLength: 4,
		FuzzyMinKeyLength:     3,
		ChapterTitleTemplate:  `{{ if .Title }}{{ .Title }}{{ else }}Chapter {{ .Number }}{{ end }}`,
		Index: config.IndexConfig{
			IgnoreArticles: []string{"a", "an", "the"},
			Locale:         "en",
			MaxDepth:       4,
		},
		Notes: config.NotesConfig{
			Placement:        config.NotePlacementLinked,
			GenerateBackRefs: true,
			BackRefSymbol:    "<<",
			NumberingStyle:   config.NumberingStyleNumeral,
		},
	}
}

func mustChunk(t *testing.T, markup, name, title string, number int) *content.Chunk {
	t.Helper()
	c, err := content.FromString(markup, name, title, number)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func runProcess(t *testing.T, cfg *config.DocumentConfig, chunks ...*content.Chunk) *Result {
	t.Helper()
	res, err := Process(context.Background(), chunks, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestProcessDuplicateTitlesAcrossFiles(t *testing.T) {
	a := mustChunk(t, `<html><body><h1>Introduction</h1></body></html>`, "a.xhtml", "", 1)
	b := mustChunk(t, `<html><body><h1>Introduction</h1><p><a data-target="Introduction">here</a></p></body></html>`, "b.xhtml", "", 2)

	res := runProcess(t, testDocConfig(), a, b)

	idA := a.Doc.FindElement("//h1").SelectAttrValue("id", "")
	idB := b.Doc.FindElement("//h1").SelectAttrValue("id", "")
	if idA != "ref-heading-introduction" {
		t.Fatalf("unexpected first id %q", idA)
	}
	if idB == idA || idB == "" {
		t.Fatalf("duplicate ids across files: %q vs %q", idA, idB)
	}
	if res.Report.Collisions != 1 {
		t.Fatalf("expected 1 collision, got %d", res.Report.Collisions)
	}

	// fuzzy resolution prefers the heading in the same file
	href := b.Doc.FindElement("//a").SelectAttrValue("href", "")
	if href != "#"+idB {
		t.Fatalf("expected same-file resolution, got %q", href)
	}
	if res.Report.State != StateCompleted {
		t.Fatalf("unexpected state %s", res.Report.State)
	}
}

func TestProcessFootnoteFlow(t *testing.T) {
	a := mustChunk(t, `<html><body>
		<h1>One</h1>
		<p>Text<a href="#fn1">*</a></p>
		<aside epub:type="footnote" id="fn1"><p>The footnote.</p></aside>
	</body></html>`, "a.xhtml", "", 1)

	res := runProcess(t, testDocConfig(), a)

	if res.Report.NotesRouted != 1 || res.Report.NoteOrphans != 0 {
		t.Fatalf("unexpected note counts: %+v", res.Report)
	}

	call := a.Doc.FindElement("//p/a")
	if !strings.Contains(call.SelectAttrValue("class", ""), "note-link") {
		t.Fatal("note call not marked")
	}
	callID := call.SelectAttrValue("id", "")
	if callID == "" {
		t.Fatal("call site has no id")
	}
	if call.SelectAttrValue("href", "") != "#fn1" {
		t.Fatalf("unexpected call href %q", call.SelectAttrValue("href", ""))
	}

	back := a.Doc.FindElement("//aside//a[@class='note-backref']")
	if back == nil {
		t.Fatal("back reference missing")
	}
	if back.SelectAttrValue("href", "") != "#"+callID {
		t.Fatalf("back reference does not point at the call: %q", back.SelectAttrValue("href", ""))
	}
}

func TestProcessConsolidatedNotesPage(t *testing.T) {
	cfg := testDocConfig()
	cfg.Notes.Placement = config.NotePlacementConsolidated

	a := mustChunk(t, `<html><body>
		<p><a href="#fn1">1</a></p>
		<div class="footnote" id="fn1"><p>Note one.</p></div>
	</body></html>`, "a.xhtml", "First", 1)

	res := runProcess(t, cfg, a)

	if len(res.Pages) != 1 || res.Pages[0].Name != NotesPageName {
		t.Fatalf("expected a notes page, got %+v", res.Pages)
	}
	if a.Doc.FindElement("//div[@class='footnote']") != nil {
		t.Fatal("note body still in source chunk")
	}
	href := a.Doc.FindElement("//a").SelectAttrValue("href", "")
	if href != NotesPageName+"#fn1" {
		t.Fatalf("call does not follow the body: %q", href)
	}
}

func TestProcessIndexPage(t *testing.T) {
	a := mustChunk(t, `<html><body>
		<p>On parsing<span data-index="Compilers:parsing">.</span></p>
		<p>On codegen<span data-index="Compilers:codegen">.</span></p>
	</body></html>`, "a.xhtml", "", 1)
	b := mustChunk(t, `<html><body>
		<p>More parsing<span data-index="compilers:Parsing">.</span></p>
	</body></html>`, "b.xhtml", "", 2)

	res := runProcess(t, testDocConfig(), a, b)

	if res.Report.IndexTerms != 3 {
		t.Fatalf("expected 3 terms, got %d", res.Report.IndexTerms)
	}
	if res.Report.IndexEntries != 3 {
		t.Fatalf("expected 3 entries after merging, got %d", res.Report.IndexEntries)
	}
	if len(res.Pages) != 1 || res.Pages[0].Name != IndexPageName {
		t.Fatalf("expected an index page, got %+v", res.Pages)
	}

	// occurrence anchors assigned in the chunks, linked from the page
	span := a.Doc.FindElement("//span")
	anchorID := span.SelectAttrValue("id", "")
	if anchorID == "" {
		t.Fatal("index occurrence has no anchor")
	}
	page := res.Pages[0]
	if page.Doc.FindElement("//a[@href='a.xhtml#"+anchorID+"']") == nil {
		t.Fatal("index page does not link back to the occurrence")
	}
}

func TestProcessNamedAnchorReference(t *testing.T) {
	a := mustChunk(t, `<html><body>
		<p><a id="mark1">the spot</a></p>
		<p><a href="#mark1">back to the spot</a></p>
	</body></html>`, "a.xhtml", "", 1)

	res := runProcess(t, testDocConfig(), a)

	if res.Report.MalformedMarkers != 0 {
		t.Fatalf("named anchor reported malformed: %+v", res.Report)
	}
	if res.Report.State != StateCompleted || res.Report.ReferencesBroken != 0 {
		t.Fatalf("reference to named anchor broken: %+v", res.Report)
	}
	if res.Report.TargetsByKind[anchor.KindBookmark] != 1 {
		t.Fatalf("named anchor not registered: %v", res.Report.TargetsByKind)
	}
	href := a.Doc.FindElement("//a[@href]").SelectAttrValue("href", "")
	if href != "#mark1" {
		t.Fatalf("unexpected href %q", href)
	}
}

func TestProcessCallIDAvoidsAuthorIDs(t *testing.T) {
	a := mustChunk(t, `<html><body>
		<p><a href="#tgt">forward</a></p>
	</body></html>`, "a.xhtml", "", 1)
	b := mustChunk(t, `<html><body>
		<h2 id="ref-call-0001">Late Section</h2>
		<p id="tgt">target</p>
	</body></html>`, "b.xhtml", "", 2)

	res := runProcess(t, testDocConfig(), a, b)

	if res.Report.State != StateCompleted {
		t.Fatalf("unexpected state %s", res.Report.State)
	}
	callID := a.Doc.FindElement("//a").SelectAttrValue("id", "")
	if callID == "" || callID == "ref-call-0001" {
		t.Fatalf("call id %q collides with author id", callID)
	}
}

func TestProcessReprocessedOutputStaysClean(t *testing.T) {
	src := `<html><body>
		<h1>One</h1>
		<p>Text<a href="#fn1">*</a></p>
		<aside epub:type="footnote" id="fn1"><p>The footnote.</p></aside>
	</body></html>`

	a := mustChunk(t, src, "a.xhtml", "", 1)
	runProcess(t, testDocConfig(), a)

	rendered, err := a.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b := mustChunk(t, rendered, "a.xhtml", "", 1)
	res := runProcess(t, testDocConfig(), b)

	if res.Report.State != StateCompleted || res.Report.ReferencesBroken != 0 {
		t.Fatalf("second run degraded: %+v", res.Report)
	}
	if n := len(b.Doc.FindElements("//span[@class='note-number']")); n != 1 {
		t.Fatalf("expected 1 number label after reprocessing, got %d", n)
	}
	if n := len(b.Doc.FindElements("//span[@class='note-backrefs']")); n != 1 {
		t.Fatalf("expected 1 back reference block after reprocessing, got %d", n)
	}
}

func TestProcessBrokenReference(t *testing.T) {
	a := mustChunk(t, `<html><body>
		<h1 id="one">One</h1>
		<p><a href="#nothing-here">gone</a></p>
	</body></html>`, "a.xhtml", "", 1)

	res := runProcess(t, testDocConfig(), a)

	if res.Report.State != StateCompletedWithBrokenRefs {
		t.Fatalf("unexpected state %s", res.Report.State)
	}
	if res.Report.ReferencesBroken != 1 {
		t.Fatalf("expected 1 broken reference, got %d", res.Report.ReferencesBroken)
	}
	link := a.Doc.FindElement("//a")
	if !strings.Contains(link.SelectAttrValue("class", ""), "broken-link") {
		t.Fatal("broken link not marked")
	}
}

func TestProcessDeterministicAcrossRuns(t *testing.T) {
	run := func() []string {
		a := mustChunk(t, `<html><body>
			<h1>Intro</h1><h2>Intro</h2>
			<p><a data-target="Intro">x</a></p>
			<p><span data-index="Terms:alpha">.</span><span data-index="Terms:beta">.</span></p>
		</body></html>`, "a.xhtml", "", 1)
		res := runProcess(t, testDocConfig(), a)

		var outputs []string
		for _, c := range append(res.Chunks, res.Pages...) {
			s, err := c.Render()
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			outputs = append(outputs, s)
		}
		return outputs
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatal("different number of outputs")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("output %d differs between runs", i)
		}
	}
}

func TestProcessChapterTitleSynthesis(t *testing.T) {
	cfg := testDocConfig()
	cfg.Notes.Placement = config.NotePlacementConsolidated

	a := mustChunk(t, `<html><body>
		<p><a href="#fn1">1</a></p>
		<aside epub:type="footnote" id="fn1"><p>Note.</p></aside>
	</body></html>`, "a.xhtml", "", 3)

	res := runProcess(t, cfg, a)

	page := res.Pages[0]
	h2 := page.Doc.FindElement("//h2[@class='notes-chapter']")
	if h2 == nil || h2.Text() != "Chapter 3" {
		t.Fatal("synthesized chapter title missing from notes page")
	}
}

func TestProcessTargetCounts(t *testing.T) {
	a := mustChunk(t, `<html><body>
		<h1>One</h1>
		<figure><figcaption>Map</figcaption></figure>
		<table><caption>Data</caption></table>
		<p id="mark">x</p>
	</body></html>`, "a.xhtml", "", 1)

	res := runProcess(t, testDocConfig(), a)

	counts := res.Report.TargetsByKind
	if counts[anchor.KindHeading] != 1 || counts[anchor.KindFigure] != 1 || counts[anchor.KindTable] != 1 || counts[anchor.KindBookmark] != 1 {
		t.Fatalf("unexpected target counts: %v", counts)
	}

	// figures and tables get presentation labels in reading order
	fig := a.Doc.FindElement("//figure")
	if got := fig.SelectAttrValue("id", ""); got != "ref-figure-map" {
		t.Fatalf("unexpected figure id %q", got)
	}
}
