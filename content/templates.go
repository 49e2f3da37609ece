package content

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"xrc/config"
)

// titleValues holds variables available for chapter title template expansion
type titleValues struct {
	Context string
	Title   string
	Number  int
	Name    string
}

// ExpandTitle runs the chapter title template against the chunk and replaces
// its title with the result. Chunks keep their authored title when the
// template echoes it back.
func (c *Chunk) ExpandTitle(name config.TemplateFieldName, field string) error {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := &titleValues{
		Context: string(name),
		Title:   c.Title,
		Number:  c.Number,
		Name:    c.Name,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return err
	}
	c.Title = strings.TrimSpace(buf.String())
	return nil
}
