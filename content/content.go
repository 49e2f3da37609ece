// Package content models the document chunks flowing through a resolution
// run: parsed pre-split input files plus pages generated by the run itself.
package content

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Chunk is a single output file of a split document.
type Chunk struct {
	Name      string // output file name, unique within the run
	Title     string // chapter title, possibly synthesized from a template
	Number    int    // 1-based position in reading order
	Doc       *etree.Document
	Generated bool // pages produced by the run itself (index, notes)
}

// Prepare reads and parses chunk markup. Parsing is tolerant, real-world
// markup is often not well-formed XML.
func Prepare(r io.Reader, name, title string, number int) (*Chunk, error) {
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: false,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read chunk %q: %w", name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("chunk %q has no root element", name)
	}
	return &Chunk{Name: name, Title: title, Number: number, Doc: doc}, nil
}

// FromString parses chunk markup held in memory.
func FromString(markup, name, title string, number int) (*Chunk, error) {
	return Prepare(strings.NewReader(markup), name, title, number)
}

// NewGenerated wraps a document built by the run itself.
func NewGenerated(name, title string, doc *etree.Document) *Chunk {
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	return &Chunk{Name: name, Title: title, Doc: doc, Generated: true}
}

// Body returns the chunk's body element or the document root when there is
// no html/body wrapper.
func (c *Chunk) Body() *etree.Element {
	root := c.Doc.Root()
	if root == nil {
		return nil
	}
	if body := root.SelectElement("body"); body != nil {
		return body
	}
	if root.Tag == "body" {
		return root
	}
	return root
}

// Render serializes the chunk back to markup.
func (c *Chunk) Render() (string, error) {
	s, err := c.Doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("unable to serialize chunk %q: %w", c.Name, err)
	}
	return s, nil
}
