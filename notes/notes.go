// Package notes routes footnote and endnote bodies to their configured
// placement, numbers them and maintains bidirectional links between call
// sites and bodies.
package notes

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"xrc/anchor"
	"xrc/config"
)

// Note is a single footnote or endnote body together with every call site
// referencing it.
type Note struct {
	ID            string // final anchor id of the body
	Kind          anchor.Kind
	Number        int
	Label         string // Number rendered in the configured style
	File          string // chunk where the body was authored
	TargetFile    string // file where the body ends up after routing
	Chapter       string // chapter title, used for grouping on the notes page
	ChapterNumber int
	Elem          *etree.Element
	Calls         []*anchor.ReferenceCall
}

// Router collects note bodies during the merge phase and places them once
// references are resolved.
type Router struct {
	cfg   *config.NotesConfig
	log   *zap.Logger
	notes []*Note
	byID  map[string]*Note
}

func NewRouter(cfg *config.NotesConfig, log *zap.Logger) *Router {
	return &Router{
		cfg:  cfg,
		log:  log,
		byID: make(map[string]*Note),
	}
}

// AddBody registers a note body. Bodies must be added in document order,
// numbering depends on it.
func (r *Router) AddBody(t *anchor.Target, elem *etree.Element, chapterTitle string, chapterNumber int) {
	n := &Note{
		ID:            t.ID,
		Kind:          t.Kind,
		File:          t.File,
		TargetFile:    t.File,
		Chapter:       chapterTitle,
		ChapterNumber: chapterNumber,
		Elem:          elem,
	}
	r.notes = append(r.notes, n)
	r.byID[t.ID] = n
}

// AttachCalls links resolved reference calls to the note bodies they point
// at. Calls targeting anything but a known note body are ignored.
func (r *Router) AttachCalls(calls []*anchor.ReferenceCall) {
	for _, call := range calls {
		if call.Broken || call.Target == nil || !call.Target.Kind.IsNote() {
			continue
		}
		if n, exists := r.byID[call.Target.ID]; exists {
			n.Calls = append(n.Calls, call)
		}
	}
}

// Number assigns sequential numbers per note kind, optionally restarting at
// every chapter, and renders the configured label style.
func (r *Router) Number() {
	type counterKey struct {
		kind    anchor.Kind
		chapter int
	}
	counters := make(map[counterKey]int)
	for _, n := range r.notes {
		key := counterKey{kind: n.Kind}
		if r.cfg.RestartPerChapter {
			key.chapter = n.ChapterNumber
		}
		counters[key]++
		n.Number = counters[key]
		n.Label = FormatNumber(n.Number, r.cfg.NumberingStyle)
	}
}

// Notes returns all collected notes in document order.
func (r *Router) Notes() []*Note {
	return r.notes
}

// Orphans counts note bodies no call refers to.
func (r *Router) Orphans() int {
	orphans := 0
	for _, n := range r.notes {
		if len(n.Calls) == 0 {
			orphans++
			r.log.Warn("Note body has no references", zap.String("id", n.ID), zap.String("file", n.File))
		}
	}
	return orphans
}

// FormatNumber renders a note number in the given style. Roman numerals are
// lowercase, alphabetic labels continue aa, ab past z.
func FormatNumber(n int, style config.NumberingStyle) string {
	switch style {
	case config.NumberingStyleRoman:
		return toRoman(n)
	case config.NumberingStyleAlpha:
		return toAlpha(n)
	default:
		return strconv.Itoa(n)
	}
}

var romanValues = []struct {
	value int
	digit string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func toRoman(n int) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	var sb strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			sb.WriteString(rv.digit)
			n -= rv.value
		}
	}
	return sb.String()
}

func toAlpha(n int) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	var sb strings.Builder
	for n > 0 {
		n--
		sb.WriteByte(byte('a' + n%26))
		n /= 26
	}
	s := sb.String()
	// digits were produced least significant first
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
