package notes

import (
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"xrc/anchor"
	"xrc/config"
	"xrc/content"
	"xrc/markup"
)

// Route places every note body according to configuration and fixes up both
// link directions. For consolidated placement a generated notes page is
// returned, otherwise nil. Must run after calls are attached and numbered
// and before chunks are rewritten.
func (r *Router) Route(chunks []*content.Chunk, pageName, pageTitle string) (*content.Chunk, error) {
	var page *content.Chunk

	switch r.cfg.Placement {
	case config.NotePlacementLinked:
		// bodies stay where authored
	case config.NotePlacementInline:
		r.placeInline(chunks)
	case config.NotePlacementConsolidated:
		page = r.placeConsolidated(pageName, pageTitle)
	}

	for _, n := range r.notes {
		r.decorateBody(n)
		// calls point at the routed location, not the authored one
		for _, call := range n.Calls {
			call.ResolvedHref = anchor.Href(call.File, n.TargetFile, n.ID)
		}
		if r.cfg.GenerateBackRefs {
			r.injectBackRefs(n)
		}
	}
	return page, nil
}

// placeInline moves every note body into a notes block at the end of its own
// chunk.
func (r *Router) placeInline(chunks []*content.Chunk) {
	byName := make(map[string]*content.Chunk, len(chunks))
	for _, c := range chunks {
		byName[c.Name] = c
	}

	blocks := make(map[string]*etree.Element)
	for _, n := range r.notes {
		block, exists := blocks[n.File]
		if !exists {
			c := byName[n.File]
			if c == nil {
				r.log.Warn("Note body belongs to unknown chunk", zap.String("id", n.ID), zap.String("file", n.File))
				continue
			}
			block = c.Body().CreateElement("div")
			block.CreateAttr("class", "notes")
			heading := block.CreateElement("h2")
			heading.CreateAttr("class", "notes-title")
			heading.SetText("Notes")
			blocks[n.File] = block
		}
		moveElement(n.Elem, block)
	}
}

// placeConsolidated moves every note body onto a single generated page,
// grouped by chapter in reading order.
func (r *Router) placeConsolidated(pageName, pageTitle string) *content.Chunk {
	if len(r.notes) == 0 {
		return nil
	}
	doc, body := markup.NewPage(pageTitle, "notes-page")
	h1 := body.CreateElement("h1")
	h1.CreateAttr("class", "notes-title")
	h1.SetText(pageTitle)

	lastChapter := -1
	for _, n := range r.notes {
		if n.ChapterNumber != lastChapter {
			h2 := body.CreateElement("h2")
			h2.CreateAttr("class", "notes-chapter")
			h2.SetText(n.Chapter)
			lastChapter = n.ChapterNumber
		}
		moveElement(n.Elem, body)
		n.TargetFile = pageName
	}
	return content.NewGenerated(pageName, pageTitle, doc)
}

// decorateBody prepends the rendered note number to the body. Reprocessing
// already decorated markup must not duplicate the label.
func (r *Router) decorateBody(n *Note) {
	if n.Label == "" {
		return
	}
	if kids := n.Elem.ChildElements(); len(kids) > 0 && markup.HasClass(kids[0], markup.ClassNoteNumber) {
		kids[0].SetText(n.Label)
		return
	}
	span := etree.NewElement("span")
	span.CreateAttr("class", markup.ClassNoteNumber)
	span.SetText(n.Label)
	n.Elem.InsertChildAt(0, span)
}

// injectBackRefs appends one back-reference link per call site to the note
// body. Existing back-reference blocks are replaced, so reprocessing already
// rewritten markup stays idempotent.
func (r *Router) injectBackRefs(n *Note) {
	if len(n.Calls) == 0 {
		return
	}
	for _, child := range n.Elem.ChildElements() {
		if markup.HasClass(child, "note-backrefs") {
			n.Elem.RemoveChild(child)
			break
		}
	}

	span := n.Elem.CreateElement("span")
	span.CreateAttr("class", "note-backrefs")
	for i, call := range n.Calls {
		if i > 0 {
			span.CreateCharData(" ")
		}
		a := span.CreateElement("a")
		a.CreateAttr("class", markup.ClassNoteBackRef)
		a.CreateAttr("href", anchor.Href(n.TargetFile, call.File, call.ID))
		label := r.cfg.BackRefSymbol
		if len(n.Calls) > 1 {
			label += strconv.Itoa(i + 1)
		}
		a.SetText(label)
	}
}

// moveElement detaches an element from its current parent and appends it to
// the new one.
func moveElement(elem *etree.Element, newParent *etree.Element) {
	if parent := elem.Parent(); parent != nil {
		parent.RemoveChild(elem)
	}
	newParent.AddChild(elem)
}
