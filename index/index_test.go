package index

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"xrc/config"
)

func testConfig() *config.IndexConfig {
	return &config.IndexConfig{
		CaseSensitive:       false,
		IgnoreArticles:      []string{"a", "an", "the"},
		Locale:              "en",
		MaxDepth:            4,
		MaxEntriesPerLetter: 0,
	}
}

func newTestBuilder(t *testing.T, cfg *config.IndexConfig) *Builder {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	return NewBuilder(cfg, zaptest.NewLogger(t))
}

func mustAdd(t *testing.T, b *Builder, term, file, anchorID string) {
	t.Helper()
	if err := b.Add(term, file, anchorID); err != nil {
		t.Fatalf("Add(%q): %v", term, err)
	}
}

func TestAddMergesCaseInsensitive(t *testing.T) {
	b := newTestBuilder(t, nil)

	mustAdd(t, b, "Compilers", "a.xhtml", "t1")
	mustAdd(t, b, "compilers", "b.xhtml", "t2")
	mustAdd(t, b, "COMPILERS", "c.xhtml", "t3")

	if b.Entries() != 1 {
		t.Fatalf("expected 1 entry, got %d", b.Entries())
	}
	e := b.Entry("compilers")
	if e == nil {
		t.Fatal("merged entry not found")
	}
	if e.Text != "Compilers" {
		t.Fatalf("display text should come from first occurrence, got %q", e.Text)
	}
	if len(e.Occurrences) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(e.Occurrences))
	}
	// occurrence order follows feed order
	if e.Occurrences[0].AnchorID != "t1" || e.Occurrences[2].AnchorID != "t3" {
		t.Fatalf("occurrence order broken: %+v", e.Occurrences)
	}
}

func TestAddCaseSensitive(t *testing.T) {
	cfg := testConfig()
	cfg.CaseSensitive = true
	b := newTestBuilder(t, cfg)

	mustAdd(t, b, "Go", "a.xhtml", "t1")
	mustAdd(t, b, "go", "a.xhtml", "t2")

	if b.Entries() != 2 {
		t.Fatalf("expected 2 entries, got %d", b.Entries())
	}
}

func TestAddHierarchy(t *testing.T) {
	b := newTestBuilder(t, nil)

	mustAdd(t, b, "Compilers:parsing:recursive descent", "a.xhtml", "t1")
	mustAdd(t, b, "Compilers:parsing", "a.xhtml", "t2")
	mustAdd(t, b, "Compilers:codegen", "b.xhtml", "t3")

	if b.Entries() != 4 {
		t.Fatalf("expected 4 entries, got %d", b.Entries())
	}
	root := b.Entry("compilers")
	if root == nil || len(root.Children) != 2 {
		t.Fatalf("unexpected root: %+v", root)
	}
	parsing := b.Entry("compilers\x1fparsing")
	if parsing == nil {
		t.Fatal("intermediate entry not created")
	}
	if len(parsing.Occurrences) != 1 {
		t.Fatalf("expected 1 occurrence on intermediate, got %d", len(parsing.Occurrences))
	}
	if len(parsing.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(parsing.Children))
	}
}

func TestAddDepthClamped(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDepth = 2
	b := newTestBuilder(t, cfg)

	mustAdd(t, b, "a:b:c:d", "a.xhtml", "t1")

	if b.Entries() != 2 {
		t.Fatalf("expected clamped hierarchy of 2, got %d", b.Entries())
	}
	if b.Entry("a\x1fb") == nil {
		t.Fatal("clamped leaf missing")
	}
}

func TestAddMalformedTerms(t *testing.T) {
	b := newTestBuilder(t, nil)

	for _, term := range []string{"", "  ", "a::b", ":leading"} {
		if err := b.Add(term, "a.xhtml", "t1"); err == nil {
			t.Fatalf("expected error for term %q", term)
		}
	}
}

func TestAddEmphasisAndSeeClauses(t *testing.T) {
	b := newTestBuilder(t, nil)

	mustAdd(t, b, "*Lexing*", "a.xhtml", "t1")
	mustAdd(t, b, "Scanning, see Lexing", "a.xhtml", "t2")
	mustAdd(t, b, "Lexing, see also Parsing; Tokens", "b.xhtml", "t3")
	mustAdd(t, b, "Parsing", "b.xhtml", "t4")

	lex := b.Entry("lexing")
	if lex == nil || !lex.Emphasis {
		t.Fatalf("emphasis not recorded: %+v", lex)
	}

	b.ResolveCrossRefs()

	scanning := b.Entry("scanning")
	if len(scanning.See) != 1 || scanning.See[0] != "lexing" {
		t.Fatalf("see not resolved: %+v", scanning.See)
	}
	if len(lex.SeeAlso) != 1 || lex.SeeAlso[0] != "parsing" {
		t.Fatalf("see also resolution wrong: %+v", lex.SeeAlso)
	}
	// "Tokens" never appears as an entry
	if b.Unresolved() != 1 {
		t.Fatalf("expected 1 unresolved cross reference, got %d", b.Unresolved())
	}
}

func TestSortKeyArticlesAndDiacritics(t *testing.T) {
	b := newTestBuilder(t, nil)

	mustAdd(t, b, "The Raven", "a.xhtml", "t1")
	mustAdd(t, b, "Éclair", "a.xhtml", "t2")
	mustAdd(t, b, "42 things", "a.xhtml", "t3")

	if got := b.Entry(b.mergeKey("The Raven")).SortKey; got != "raven" {
		t.Fatalf("article not stripped from sort key: %q", got)
	}
	if got := b.Entry(b.mergeKey("Éclair")).SortKey; got != "eclair" {
		t.Fatalf("diacritics not folded in sort key: %q", got)
	}

	sections := b.Sections()
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	if sections[0].Letter != "E" || sections[1].Letter != "R" {
		t.Fatalf("unexpected letter order: %v, %v", sections[0].Letter, sections[1].Letter)
	}
	if sections[len(sections)-1].Letter != OtherBucket {
		t.Fatalf("'#' bucket must come last, got %q", sections[len(sections)-1].Letter)
	}
}

func TestSectionsSortedAndTruncated(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEntriesPerLetter = 2
	b := newTestBuilder(t, cfg)

	mustAdd(t, b, "banana", "a.xhtml", "t1")
	mustAdd(t, b, "apple", "a.xhtml", "t2")
	mustAdd(t, b, "apricot", "a.xhtml", "t3")
	mustAdd(t, b, "avocado", "a.xhtml", "t4")

	sections := b.Sections()
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	a := sections[0]
	if a.Letter != "A" || len(a.Entries) != 2 {
		t.Fatalf("unexpected A section: %+v", a)
	}
	if b.Entry(a.Entries[0]).Text != "apple" || b.Entry(a.Entries[1]).Text != "apricot" {
		t.Fatalf("entries not sorted: %v", a.Entries)
	}
	if b.Dropped() != 1 {
		t.Fatalf("expected 1 dropped entry, got %d", b.Dropped())
	}
}

func TestBuilderIsDeterministic(t *testing.T) {
	run := func() string {
		b := newTestBuilder(t, nil)
		mustAdd(t, b, "Compilers:parsing", "a.xhtml", "t1")
		mustAdd(t, b, "Linkers", "a.xhtml", "t2")
		mustAdd(t, b, "Compilers:codegen", "b.xhtml", "t3")
		b.ResolveCrossRefs()
		doc := b.Render("Index")
		s, err := doc.WriteToString()
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		return s
	}
	if first, second := run(), run(); first != second {
		t.Fatal("render output differs between identical runs")
	}
}

func TestUnknownLocaleFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.Locale = "not a locale"
	b := newTestBuilder(t, cfg)

	mustAdd(t, b, "beta", "a.xhtml", "t1")
	mustAdd(t, b, "alpha", "a.xhtml", "t2")

	sections := b.Sections()
	var texts []string
	for _, s := range sections {
		for _, k := range s.Entries {
			texts = append(texts, b.Entry(k).Text)
		}
	}
	if strings.Join(texts, ",") != "alpha,beta" {
		t.Fatalf("natural fallback ordering broken: %v", texts)
	}
}
