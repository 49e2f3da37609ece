// Package process implements the main processing command: it loads chunk
// files, runs the resolution engine over them and writes rewritten chunks,
// generated pages and the run report.
package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"xrc/config"
	"xrc/content"
	"xrc/engine"
	"xrc/markup"
	"xrc/state"
)

// ChunkExtensions lists the file extensions recognized as chunk files, in
// the order they are reported to the user.
func ChunkExtensions() []string {
	return []string{".xhtml", ".html", ".htm"}
}

var chunkExtensions = func() map[string]bool {
	m := make(map[string]bool)
	for _, ext := range ChunkExtensions() {
		m[ext] = true
	}
	return m
}()

// Run is the action behind the process command.
func Run(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no source specified")
	}
	if cmd.Args().Len() > 2 {
		env.Log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	src := cmd.Args().Get(0)
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = "."
	}

	chunks, err := loadChunks(src, env.Log)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunk files found in '%s'", src)
	}

	res, err := engine.Process(ctx, chunks, &env.Cfg.Document, env.Log)
	if err != nil {
		return err
	}

	if err := writeOutputs(res, dst, env.Overwrite, env.Log); err != nil {
		return err
	}

	if reportFile := cmd.String("report"); len(reportFile) > 0 {
		if err := writeReport(res.Report, reportFile); err != nil {
			return err
		}
	}

	if res.Report.State != engine.StateCompleted {
		env.Log.Warn("Processing finished with problems",
			zap.Stringer("state", res.Report.State),
			zap.Int("broken_references", res.Report.ReferencesBroken))
	}
	return nil
}

// loadChunks reads the source file or directory into chunks. Directory
// entries are ordered naturally so chapter10 follows chapter9, the order
// fixes chunk numbering for the whole run.
func loadChunks(src string, log *zap.Logger) ([]*content.Chunk, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("unable to access source '%s': %w", src, err)
	}

	var names []string
	dir := filepath.Dir(src)
	if fi.IsDir() {
		dir = src
		entries, err := os.ReadDir(src)
		if err != nil {
			return nil, fmt.Errorf("unable to read source directory '%s': %w", src, err)
		}
		for _, e := range entries {
			if e.IsDir() || !chunkExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Sort(natural.StringSlice(names))
	} else {
		names = append(names, filepath.Base(src))
	}

	chunks := make([]*content.Chunk, 0, len(names))
	for i, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("unable to open chunk '%s': %w", name, err)
		}
		c, err := content.Prepare(f, name, "", i+1)
		f.Close()
		if err != nil {
			return nil, err
		}
		c.Title = deriveTitle(c)
		log.Debug("Loaded chunk", zap.String("name", name), zap.String("title", c.Title))
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// deriveTitle takes the first heading of the chunk, empty when there is
// none. Missing titles are later synthesized from the configured template.
func deriveTitle(c *content.Chunk) string {
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if h := c.Doc.FindElement("//" + tag); h != nil {
			return markup.PlainText(h)
		}
	}
	return ""
}

func writeOutputs(res *engine.Result, dst string, overwrite bool, log *zap.Logger) error {
	if err := os.MkdirAll(dst, 0700); err != nil {
		return fmt.Errorf("unable to create destination directory '%s': %w", dst, err)
	}

	all := make([]*content.Chunk, 0, len(res.Chunks)+len(res.Pages))
	all = append(all, res.Chunks...)
	all = append(all, res.Pages...)
	for _, c := range all {
		path := filepath.Join(dst, config.CleanFileName(c.Name))
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("destination file '%s' already exists, use --overwrite", path)
			}
		}
		data, err := c.Render()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			return fmt.Errorf("unable to write '%s': %w", path, err)
		}
		log.Debug("Wrote output", zap.String("file", path), zap.Bool("generated", c.Generated))
	}
	return nil
}

func writeReport(report *engine.Report, path string) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("unable to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write report '%s': %w", path, err)
	}
	return nil
}
