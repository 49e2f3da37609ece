package index

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"

	"xrc/markup"
)

// Render builds the standalone index page. Nesting is rendered iteratively
// with an explicit stack, depth is capped by configuration.
func (b *Builder) Render(title string) *etree.Document {
	sections := b.Sections()
	anchors := b.pageAnchors(sections)

	doc, body := markup.NewPage(title, "index-page")

	h1 := body.CreateElement("h1")
	h1.CreateAttr("class", "index-title")
	h1.SetText(title)

	type frame struct {
		key   string
		ul    *etree.Element
		depth int
	}

	for _, section := range sections {
		h2 := body.CreateElement("h2")
		h2.CreateAttr("class", "index-letter")
		h2.SetText(section.Letter)

		ul := body.CreateElement("ul")
		ul.CreateAttr("class", "index-list")

		stack := make([]frame, 0, len(section.Entries))
		for i := len(section.Entries) - 1; i >= 0; i-- {
			stack = append(stack, frame{section.Entries[i], ul, 1})
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			e := b.entries[f.key]

			li := f.ul.CreateElement("li")
			li.CreateAttr("class", "index-entry")
			li.CreateAttr("id", anchors[f.key])

			term := li.CreateElement("span")
			if e.Emphasis {
				term.CreateAttr("class", "index-term index-emphasis")
			} else {
				term.CreateAttr("class", "index-term")
			}
			term.SetText(e.Text)

			for i, occ := range e.Occurrences {
				a := li.CreateElement("a")
				if i == 0 {
					a.CreateAttr("class", "index-ref index-primary")
				} else {
					a.CreateAttr("class", "index-ref")
				}
				a.CreateAttr("href", occ.File+"#"+occ.AnchorID)
				a.SetText(strconv.Itoa(i + 1))
			}

			b.renderRefs(li, "see", e.See, anchors)
			b.renderRefs(li, "see also", e.SeeAlso, anchors)

			if len(e.Children) > 0 && f.depth < b.cfg.MaxDepth {
				childUL := li.CreateElement("ul")
				childUL.CreateAttr("class", "index-sublist")
				for i := len(e.Children) - 1; i >= 0; i-- {
					stack = append(stack, frame{e.Children[i], childUL, f.depth + 1})
				}
			}
		}
	}
	return doc
}

func (b *Builder) renderRefs(li *etree.Element, label string, keys []string, anchors map[string]string) {
	if len(keys) == 0 {
		return
	}
	span := li.CreateElement("span")
	span.CreateAttr("class", "index-"+strings.ReplaceAll(label, " ", "-"))
	span.SetText(label + " ")
	for i, key := range keys {
		if i > 0 {
			span.CreateCharData("; ")
		}
		text := b.entryPath(key)
		if anchor, rendered := anchors[key]; rendered {
			a := span.CreateElement("a")
			a.CreateAttr("href", "#"+anchor)
			a.SetText(text)
		} else {
			// target exists in the arena but was not rendered
			span.CreateCharData(text)
		}
	}
}

// pageAnchors assigns a unique element id to every entry that will render,
// in render order so ids are stable between runs.
func (b *Builder) pageAnchors(sections []Section) map[string]string {
	anchors := make(map[string]string)
	taken := make(map[string]bool)

	type frame struct {
		key   string
		depth int
	}
	for _, section := range sections {
		stack := make([]frame, 0, len(section.Entries))
		for i := len(section.Entries) - 1; i >= 0; i-- {
			stack = append(stack, frame{section.Entries[i], 1})
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			base := "idx-" + slug.Make(b.entryPath(f.key))
			id := base
			for n := 2; taken[id]; n++ {
				id = base + "-" + strconv.Itoa(n)
			}
			taken[id] = true
			anchors[f.key] = id

			e := b.entries[f.key]
			if f.depth < b.cfg.MaxDepth {
				for i := len(e.Children) - 1; i >= 0; i-- {
					stack = append(stack, frame{e.Children[i], f.depth + 1})
				}
			}
		}
	}
	return anchors
}

// entryPath reconstructs the display path of an entry, e.g. "Compilers:parsing".
func (b *Builder) entryPath(key string) string {
	var parts []string
	for e := b.entries[key]; e != nil; e = b.entries[e.Parent] {
		parts = append([]string{e.Text}, parts...)
	}
	return strings.Join(parts, ":")
}
