// Package anchor implements the registry of addressable document elements and
// resolution of symbolic references against it.
//
// The registry has a strict lifecycle: targets are registered one by one in
// deterministic order (file order, then in-file discovery order), then the
// registry is frozen and becomes read-only for the remainder of the run. All
// lookups and reference resolution operate on the frozen registry.
package anchor

// Kind enumerates addressable element kinds.
// ENUM(heading, figure, table, bookmark, footnote, endnote, indexterm)
type Kind int

// IsNote returns true for kinds which represent note bodies.
func (k Kind) IsNote() bool {
	return k == KindFootnote || k == KindEndnote
}

// Target is an addressable element collected from one of the chunks.
// Once registered its ID never changes during a resolution run.
type Target struct {
	ID         string // final, collision free
	OriginalID string // author supplied id, kept only when syntactically safe
	Kind       Kind
	Title      string
	PlainText  string
	File       string // owning output file
	Position   int    // offset within the original chunk, local disambiguation only
	Level      int    // heading depth 1..6, zero for non-headings
	Number     string // presentation label, e.g. "Figure 3"
}

// ReferenceCall is a symbolic link from running text to a target. It is
// created by the scanner and resolved exactly once, resolution writes
// ResolvedHref/Broken/Target and nothing else.
type ReferenceCall struct {
	ID          string // identifies the call site itself, used for back-references
	TargetKey   string // raw unresolved key as authored
	File        string
	Position    int
	DisplayText string

	ResolvedHref string
	Broken       bool
	Target       *Target // nil when broken
}
