package markup

import (
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"xrc/anchor"
)

// Scan walks a chunk document and collects targets, reference calls, index
// markers and note bodies in document order. The document is not modified.
func Scan(doc *etree.Document, file string, log *zap.Logger) *ScanResult {
	res := &ScanResult{File: file}
	root := doc.Root()
	if root == nil {
		return res
	}
	s := &scanner{res: res, file: file, log: log}
	s.walk(root)
	return res
}

type scanner struct {
	res  *ScanResult
	file string
	pos  int
	log  *zap.Logger
}

func (s *scanner) walk(elem *etree.Element) {
	s.pos++
	pos := s.pos

	switch {
	case isHeading(elem.Tag):
		s.addTarget(elem, &anchor.Target{
			OriginalID: elem.SelectAttrValue("id", ""),
			Kind:       anchor.KindHeading,
			Title:      PlainText(elem),
			File:       s.file,
			Position:   pos,
			Level:      int(elem.Tag[1] - '0'),
		})
	case elem.Tag == "figure":
		s.addTarget(elem, &anchor.Target{
			OriginalID: elem.SelectAttrValue("id", ""),
			Kind:       anchor.KindFigure,
			Title:      childText(elem, "figcaption"),
			PlainText:  PlainText(elem),
			File:       s.file,
			Position:   pos,
		})
	case elem.Tag == "table":
		s.addTarget(elem, &anchor.Target{
			OriginalID: elem.SelectAttrValue("id", ""),
			Kind:       anchor.KindTable,
			Title:      childText(elem, "caption"),
			PlainText:  PlainText(elem),
			File:       s.file,
			Position:   pos,
		})
	case elem.Tag == "a":
		s.scanCall(elem, pos)
	case elem.Tag == "span" && elem.SelectAttr("data-index") != nil:
		s.scanIndexMarker(elem, pos)
	default:
		if kind, ok := noteKind(elem); ok {
			t := &anchor.Target{
				OriginalID: elem.SelectAttrValue("id", ""),
				Kind:       kind,
				PlainText:  PlainText(elem),
				File:       s.file,
				Position:   pos,
			}
			s.addTarget(elem, t)
			s.res.Notes = append(s.res.Notes, &NoteMarker{Target: t, Elem: elem})
		} else if id := elem.SelectAttrValue("id", ""); id != "" {
			s.addTarget(elem, &anchor.Target{
				OriginalID: id,
				Kind:       anchor.KindBookmark,
				PlainText:  PlainText(elem),
				File:       s.file,
				Position:   pos,
			})
		}
	}

	for _, child := range elem.ChildElements() {
		s.walk(child)
	}
}

func (s *scanner) addTarget(elem *etree.Element, t *anchor.Target) {
	s.res.Targets = append(s.res.Targets, &TargetMarker{Target: t, Elem: elem})
}

func (s *scanner) scanCall(elem *etree.Element, pos int) {
	if HasClass(elem, ClassNoteBackRef) {
		// injected on a previous run, will be rebuilt during routing
		return
	}

	href := elem.SelectAttrValue("href", "")
	free := elem.SelectAttrValue("data-target", "")
	if href == "" && free == "" {
		// named anchor, an addressable location rather than a call
		if id := elem.SelectAttrValue("id", ""); id != "" {
			s.addTarget(elem, &anchor.Target{
				OriginalID: id,
				Kind:       anchor.KindBookmark,
				PlainText:  PlainText(elem),
				File:       s.file,
				Position:   pos,
			})
		}
		return
	}

	key := ""
	if strings.HasPrefix(href, "#") {
		key = strings.TrimPrefix(href, "#")
	} else if href != "" {
		// external link, not ours
		return
	} else {
		key = free
	}
	if strings.TrimSpace(key) == "" {
		s.res.Malformed++
		s.log.Warn("Malformed reference call", zap.String("file", s.file), zap.Int("position", pos))
		return
	}
	s.res.Calls = append(s.res.Calls, &CallMarker{
		Call: &anchor.ReferenceCall{
			TargetKey:   key,
			File:        s.file,
			Position:    pos,
			DisplayText: PlainText(elem),
		},
		Elem: elem,
	})
}

func (s *scanner) scanIndexMarker(elem *etree.Element, pos int) {
	term := strings.TrimSpace(elem.SelectAttrValue("data-index", ""))
	if term == "" {
		s.res.Malformed++
		s.log.Warn("Malformed index marker", zap.String("file", s.file), zap.Int("position", pos))
		return
	}
	t := &anchor.Target{
		OriginalID: elem.SelectAttrValue("id", ""),
		Kind:       anchor.KindIndexterm,
		PlainText:  term,
		File:       s.file,
		Position:   pos,
	}
	s.addTarget(elem, t)
	s.res.Index = append(s.res.Index, &IndexMarker{Term: term, Target: t, Elem: elem})
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

func noteKind(e *etree.Element) (anchor.Kind, bool) {
	switch e.Tag {
	case "aside":
		switch e.SelectAttrValue("epub:type", "") {
		case "footnote":
			return anchor.KindFootnote, true
		case "endnote", "rearnote":
			return anchor.KindEndnote, true
		}
	case "div":
		for _, c := range strings.Fields(e.SelectAttrValue("class", "")) {
			switch c {
			case "footnote":
				return anchor.KindFootnote, true
			case "endnote":
				return anchor.KindEndnote, true
			}
		}
	}
	return 0, false
}

func childText(e *etree.Element, tag string) string {
	if child := e.SelectElement(tag); child != nil {
		return PlainText(child)
	}
	return ""
}
