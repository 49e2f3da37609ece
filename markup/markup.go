// Package markup scans parsed chunk documents for anchor markers and later
// rewrites them in place once references are resolved. Scanning never mutates
// a document, rewriting happens strictly after resolution.
package markup

import (
	"strings"

	"github.com/beevik/etree"

	"xrc/anchor"
)

// Classes written into rewritten markup.
const (
	ClassBrokenLink  = "broken-link"
	ClassNoteLink    = "note-link"
	ClassNoteBackRef = "note-backref"
	ClassNoteNumber  = "note-number"
	ClassIndexAnchor = "index-anchor"
)

// TargetMarker pairs a collected target with the element carrying it.
type TargetMarker struct {
	Target *anchor.Target
	Elem   *etree.Element
}

// CallMarker pairs a reference call with its anchor element.
type CallMarker struct {
	Call *anchor.ReferenceCall
	Elem *etree.Element
}

// IndexMarker is a single index term occurrence. Target is the indexterm
// anchor generated for the occurrence.
type IndexMarker struct {
	Term   string
	Target *anchor.Target
	Elem   *etree.Element
}

// NoteMarker is a footnote or endnote body. Target is shared with the
// corresponding entry in ScanResult.Targets.
type NoteMarker struct {
	Target *anchor.Target
	Elem   *etree.Element
}

// ScanResult holds everything collected from a single chunk in document
// order.
type ScanResult struct {
	File      string
	Targets   []*TargetMarker
	Calls     []*CallMarker
	Index     []*IndexMarker
	Notes     []*NoteMarker
	Malformed int
}

// PlainText returns the element's text content with whitespace collapsed.
func PlainText(e *etree.Element) string {
	var sb strings.Builder
	collectText(e, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(e *etree.Element, sb *strings.Builder) {
	for _, child := range e.Child {
		switch t := child.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			collectText(t, sb)
			sb.WriteString(" ")
		}
	}
}

// SetAttr replaces an attribute value.
func SetAttr(e *etree.Element, key, value string) {
	e.RemoveAttr(key)
	e.CreateAttr(key, value)
}

// AddClass appends a class to the element's class attribute unless it is
// already present.
func AddClass(e *etree.Element, class string) {
	current := e.SelectAttrValue("class", "")
	for _, c := range strings.Fields(current) {
		if c == class {
			return
		}
	}
	if len(current) == 0 {
		e.CreateAttr("class", class)
		return
	}
	SetAttr(e, "class", current+" "+class)
}

// HasClass reports whether the element carries the class.
func HasClass(e *etree.Element, class string) bool {
	for _, c := range strings.Fields(e.SelectAttrValue("class", "")) {
		if c == class {
			return true
		}
	}
	return false
}
