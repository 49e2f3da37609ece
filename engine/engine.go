// Package engine drives a full resolution run over a set of document
// chunks: parallel scanning, deterministic merge into the anchor registry,
// reference resolution, note routing, index building and parallel rewrite.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"xrc/anchor"
	"xrc/config"
	"xrc/content"
	"xrc/index"
	"xrc/markup"
	"xrc/notes"
)

// Names of the pages a run may generate.
const (
	IndexPageName  = "index-terms.xhtml"
	IndexPageTitle = "Index"
	NotesPageName  = "notes.xhtml"
	NotesPageTitle = "Notes"
)

// State describes how a run ended.
// ENUM(completed, completed-with-broken-refs)
type State int

// Report summarizes a single resolution run.
type Report struct {
	RunID              string
	State              State
	TargetsByKind      map[anchor.Kind]int
	Collisions         int
	ReferencesFound    int
	ReferencesResolved int
	ReferencesBroken   int
	IndexTerms         int
	IndexEntries       int
	IndexUnresolved    int
	IndexDropped       int
	NotesRouted        int
	NoteOrphans        int
	MalformedMarkers   int
}

// Result is the outcome of a run: rewritten chunks in their original order
// plus any generated pages.
type Result struct {
	Chunks []*content.Chunk
	Pages  []*content.Chunk
	Report *Report
}

// Process runs the whole pipeline over the chunks, mutating their documents
// in place. Scanning and rewriting fan out per chunk, everything between
// happens on a single goroutine in chunk order so results are deterministic
// regardless of scheduling.
func Process(ctx context.Context, chunks []*content.Chunk, cfg *config.DocumentConfig, log *zap.Logger) (*Result, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate run id: %w", err)
	}
	log = log.With(zap.Stringer("run_id", runID))
	log.Debug("Starting resolution run", zap.Int("chunks", len(chunks)))

	if cfg.ChapterTitleTemplate != "" {
		for _, c := range chunks {
			if err := c.ExpandTitle(config.ChapterTitleTemplateFieldName, cfg.ChapterTitleTemplate); err != nil {
				return nil, fmt.Errorf("unable to expand chapter title for %q: %w", c.Name, err)
			}
		}
	}

	// scan phase, one goroutine per chunk
	scans := make([]*markup.ScanResult, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scans[i] = markup.Scan(c.Doc, c.Name, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan phase failed: %w", err)
	}

	// merge phase, strictly sequential in chunk order
	registry := anchor.NewRegistry(cfg.IDPrefix, cfg.MaxIDLength, cfg.CollisionSuffixLength, cfg.FuzzyMinKeyLength, log)
	router := notes.NewRouter(&cfg.Notes, log)
	builder := index.NewBuilder(&cfg.Index, log)

	var (
		merge     mergeState
		allCalls  []*anchor.ReferenceCall
		malformed int
		errs      error
	)
	for i, scan := range scans {
		malformed += scan.Malformed

		for _, tm := range scan.Targets {
			merge.label(tm.Target)
			if _, err := registry.Register(tm.Target); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		for _, nm := range scan.Notes {
			router.AddBody(nm.Target, nm.Elem, chunks[i].Title, chunks[i].Number)
		}
		for _, im := range scan.Index {
			if im.Target.ID == "" {
				continue
			}
			if err := builder.Add(im.Term, scan.File, im.Target.ID); err != nil {
				malformed++
				log.Warn("Dropping malformed index term", zap.String("file", scan.File), zap.Error(err))
			}
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("merge phase failed: %w", errs)
	}

	// call site ids are handed out only after every target is registered, so
	// a generated id can never shadow an author id from a later chunk
	for _, scan := range scans {
		for _, cm := range scan.Calls {
			cm.Call.ID = merge.callID(cfg.IDPrefix, registry)
			allCalls = append(allCalls, cm.Call)
		}
	}
	registry.Freeze()

	// resolve phase
	resolver := anchor.NewResolver(registry, log)
	resolver.ResolveAll(allCalls)

	router.AttachCalls(allCalls)
	router.Number()
	notesPage, err := router.Route(chunks, NotesPageName, NotesPageTitle)
	if err != nil {
		return nil, fmt.Errorf("unable to route notes: %w", err)
	}

	builder.ResolveCrossRefs()
	var indexPage *content.Chunk
	if builder.Terms() > 0 {
		indexPage = content.NewGenerated(IndexPageName, IndexPageTitle, builder.Render(IndexPageTitle))
	}

	// rewrite phase, one goroutine per chunk
	g, gctx = errgroup.WithContext(ctx)
	for i := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			markup.Rewrite(scans[i], log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rewrite phase failed: %w", err)
	}

	report := &Report{
		RunID:              runID.String(),
		TargetsByKind:      registry.CountByKind(),
		Collisions:         registry.Collisions(),
		ReferencesFound:    len(allCalls),
		ReferencesResolved: resolver.Resolved(),
		ReferencesBroken:   resolver.Broken(),
		IndexTerms:         builder.Terms(),
		IndexEntries:       builder.Entries(),
		IndexUnresolved:    builder.Unresolved(),
		IndexDropped:       builder.Dropped(),
		NotesRouted:        len(router.Notes()),
		NoteOrphans:        router.Orphans(),
		MalformedMarkers:   malformed,
	}
	if report.ReferencesBroken > 0 {
		report.State = StateCompletedWithBrokenRefs
	}

	result := &Result{Chunks: chunks, Report: report}
	if notesPage != nil {
		result.Pages = append(result.Pages, notesPage)
	}
	if indexPage != nil {
		result.Pages = append(result.Pages, indexPage)
	}

	log.Info("Resolution run finished",
		zap.Stringer("state", report.State),
		zap.Int("references", report.ReferencesFound),
		zap.Int("broken", report.ReferencesBroken),
		zap.Int("collisions", report.Collisions))
	return result, nil
}

// mergeState carries the cross-chunk counters used while merging.
type mergeState struct {
	figures int
	tables  int
	calls   int
}

// label assigns presentation numbers to figures and tables in reading order.
func (m *mergeState) label(t *anchor.Target) {
	switch t.Kind {
	case anchor.KindFigure:
		m.figures++
		t.Number = fmt.Sprintf("Figure %d", m.figures)
	case anchor.KindTable:
		m.tables++
		t.Number = fmt.Sprintf("Table %d", m.tables)
	}
}

// callID produces the next call site id, skipping anything an author already
// claimed as a target id.
func (m *mergeState) callID(prefix string, registry *anchor.Registry) string {
	for {
		m.calls++
		id := fmt.Sprintf("%s-call-%04d", prefix, m.calls)
		if registry.ByID(id) == nil {
			return id
		}
	}
}
