// Package index builds the hierarchical back-of-book index from term
// markers: parsing term paths, merging duplicate entries, resolving see and
// see-also cross references and producing the generated index page.
package index

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"xrc/config"
)

// keySep joins path components into arena keys, it cannot appear in terms
const keySep = "\x1f"

// OtherBucket groups entries whose sort key does not start with a letter.
const OtherBucket = "#"

var (
	reSeeAlso = regexp.MustCompile(`(?i)[,;]\s*see\s+also\s+(.+)$`)
	reSee     = regexp.MustCompile(`(?i)[,;]\s*see\s+(.+)$`)
)

// Occurrence is a single marked location of a term.
type Occurrence struct {
	File     string
	AnchorID string
}

// Entry is one index entry. Entries live in the builder's arena keyed by
// their normalized path, hierarchy is expressed through Parent/Children keys
// rather than nested pointers.
type Entry struct {
	Text        string // display text as first authored
	Key         string // normalized arena key, full path
	SortKey     string
	Parent      string   // arena key of the parent, empty for top level
	Children    []string // child arena keys, sorted before rendering
	Occurrences []Occurrence
	SeeRefs     []string // raw referenced terms as authored
	SeeAlsoRefs []string
	See         []string // resolved arena keys
	SeeAlso     []string
	Emphasis    bool
}

// Builder accumulates term markers and assembles the final index. It is fed
// sequentially in document order, which fixes occurrence numbering.
type Builder struct {
	cfg      *config.IndexConfig
	log      *zap.Logger
	entries  map[string]*Entry
	roots    []string // top level keys in first-seen order
	collator *collate.Collator
	folder   cases.Caser

	terms      int
	unresolved int
	dropped    int
}

func NewBuilder(cfg *config.IndexConfig, log *zap.Logger) *Builder {
	b := &Builder{
		cfg:     cfg,
		log:     log,
		entries: make(map[string]*Entry),
		folder:  cases.Fold(),
	}
	if tag, err := language.Parse(cfg.Locale); err != nil {
		log.Warn("Unknown index locale, falling back to natural ordering", zap.String("locale", cfg.Locale), zap.Error(err))
	} else {
		b.collator = collate.New(tag, collate.IgnoreCase)
	}
	return b
}

// Add records one term occurrence. The term path uses ':' separators,
// optional '*...*' emphasis per component and trailing ", see ..." or
// ", see also ..." clauses on the last component.
func (b *Builder) Add(term, file, anchorID string) error {
	path, seeRefs, seeAlsoRefs, emphasis, err := parseTerm(term)
	if err != nil {
		return err
	}
	if len(path) > b.cfg.MaxDepth {
		b.log.Warn("Index term deeper than allowed, clamping", zap.String("term", term), zap.Int("max_depth", b.cfg.MaxDepth))
		path = path[:b.cfg.MaxDepth]
	}

	parentKey := ""
	var entry *Entry
	for _, component := range path {
		key := parentKey
		if len(key) > 0 {
			key += keySep
		}
		key += b.mergeKey(component)

		entry = b.entries[key]
		if entry == nil {
			entry = &Entry{
				Text:    component,
				Key:     key,
				SortKey: b.sortKey(component),
				Parent:  parentKey,
			}
			b.entries[key] = entry
			if parentKey == "" {
				b.roots = append(b.roots, key)
			} else {
				parent := b.entries[parentKey]
				parent.Children = append(parent.Children, key)
			}
		}
		parentKey = key
	}

	entry.Occurrences = append(entry.Occurrences, Occurrence{File: file, AnchorID: anchorID})
	entry.SeeRefs = appendUnique(entry.SeeRefs, seeRefs...)
	entry.SeeAlsoRefs = appendUnique(entry.SeeAlsoRefs, seeAlsoRefs...)
	if emphasis {
		entry.Emphasis = true
	}
	b.terms++
	return nil
}

// ResolveCrossRefs matches raw see/see-also terms against the arena. Targets
// which do not exist as entries are dropped and counted as unresolved.
func (b *Builder) ResolveCrossRefs() {
	for _, key := range b.allKeys() {
		e := b.entries[key]
		e.See = b.resolveRefs(e, e.SeeRefs)
		e.SeeAlso = b.resolveRefs(e, e.SeeAlsoRefs)
	}
}

func (b *Builder) resolveRefs(e *Entry, refs []string) []string {
	var out []string
	for _, ref := range refs {
		key := ""
		for _, component := range strings.Split(ref, ":") {
			component = strings.TrimSpace(component)
			if len(key) > 0 {
				key += keySep
			}
			key += b.mergeKey(component)
		}
		if _, exists := b.entries[key]; !exists {
			b.unresolved++
			b.log.Warn("Unresolved index cross reference", zap.String("from", e.Text), zap.String("to", ref))
			continue
		}
		if key != e.Key {
			out = appendUnique(out, key)
		}
	}
	return out
}

// Entry returns an arena entry by key, primarily for rendering and tests.
func (b *Builder) Entry(key string) *Entry {
	return b.entries[key]
}

func (b *Builder) Terms() int      { return b.terms }
func (b *Builder) Entries() int    { return len(b.entries) }
func (b *Builder) Unresolved() int { return b.unresolved }
func (b *Builder) Dropped() int    { return b.dropped }

// Section is one letter group of the final index.
type Section struct {
	Letter  string
	Entries []string // top level arena keys, sorted
}

// Sections groups and sorts top level entries by their first sort key
// letter. Non-letter entries land in the '#' bucket which always comes last.
func (b *Builder) Sections() []Section {
	b.sortChildren()

	buckets := make(map[string][]string)
	var letters []string
	for _, key := range b.roots {
		letter := bucketLetter(b.entries[key].SortKey)
		if _, exists := buckets[letter]; !exists {
			letters = append(letters, letter)
		}
		buckets[letter] = append(buckets[letter], key)
	}

	b.sortStrings(letters)
	// '#' sorts among symbols, force it to the end
	for i, l := range letters {
		if l == OtherBucket {
			letters = append(append(letters[:i], letters[i+1:]...), OtherBucket)
			break
		}
	}

	sections := make([]Section, 0, len(letters))
	for _, letter := range letters {
		keys := buckets[letter]
		b.sortKeys(keys)
		if b.cfg.MaxEntriesPerLetter > 0 && len(keys) > b.cfg.MaxEntriesPerLetter {
			b.dropped += len(keys) - b.cfg.MaxEntriesPerLetter
			b.log.Warn("Too many index entries, truncating letter group",
				zap.String("letter", letter),
				zap.Int("entries", len(keys)),
				zap.Int("limit", b.cfg.MaxEntriesPerLetter))
			keys = keys[:b.cfg.MaxEntriesPerLetter]
		}
		sections = append(sections, Section{Letter: letter, Entries: keys})
	}
	return sections
}

func (b *Builder) sortChildren() {
	for _, e := range b.entries {
		b.sortKeys(e.Children)
	}
}

func (b *Builder) sortKeys(keys []string) {
	b.sortBy(keys, func(k string) string { return b.entries[k].SortKey })
}

func (b *Builder) sortStrings(ss []string) {
	b.sortBy(ss, func(s string) string { return s })
}

func (b *Builder) sortBy(ss []string, key func(string) string) {
	sort.SliceStable(ss, func(i, j int) bool {
		if b.collator != nil {
			return b.collator.CompareString(key(ss[i]), key(ss[j])) < 0
		}
		return natural.Less(key(ss[i]), key(ss[j]))
	})
}

func (b *Builder) allKeys() []string {
	var keys []string
	stack := make([]string, len(b.roots))
	copy(stack, b.roots)
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		keys = append(keys, key)
		stack = append(stack, b.entries[key].Children...)
	}
	return keys
}

// mergeKey produces the identity under which occurrences of the same term
// merge. Case folds unless configured otherwise, diacritics are preserved.
func (b *Builder) mergeKey(component string) string {
	component = strings.TrimSpace(component)
	if b.cfg.CaseSensitive {
		return component
	}
	return b.folder.String(component)
}

// sortKey strips leading articles and diacritics and case folds, it is used
// for ordering and letter grouping only.
func (b *Builder) sortKey(component string) string {
	component = strings.TrimSpace(component)
	if fields := strings.Fields(component); len(fields) > 1 {
		first := b.folder.String(fields[0])
		for _, article := range b.cfg.IgnoreArticles {
			if first == b.folder.String(article) {
				component = strings.Join(fields[1:], " ")
				break
			}
		}
	}
	return b.folder.String(stripDiacritics(component))
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func bucketLetter(sortKey string) string {
	for _, r := range sortKey {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
		return OtherBucket
	}
	return OtherBucket
}

// parseTerm splits a raw marker into path components, cross reference
// clauses and the emphasis flag.
func parseTerm(term string) (path, seeRefs, seeAlsoRefs []string, emphasis bool, err error) {
	term = strings.TrimSpace(term)

	if m := reSeeAlso.FindStringSubmatch(term); m != nil {
		seeAlsoRefs = splitRefs(m[1])
		term = strings.TrimSpace(term[:len(term)-len(m[0])])
	} else if m := reSee.FindStringSubmatch(term); m != nil {
		seeRefs = splitRefs(m[1])
		term = strings.TrimSpace(term[:len(term)-len(m[0])])
	}

	for _, component := range strings.Split(term, ":") {
		component = strings.TrimSpace(component)
		if stripped, ok := strings.CutPrefix(component, "*"); ok {
			if stripped, ok = strings.CutSuffix(stripped, "*"); ok {
				component = strings.TrimSpace(stripped)
				emphasis = true
			}
		}
		if component == "" {
			return nil, nil, nil, false, fmt.Errorf("malformed index term %q", term)
		}
		path = append(path, component)
	}
	if len(path) == 0 {
		return nil, nil, nil, false, fmt.Errorf("malformed index term %q", term)
	}
	return path, seeRefs, seeAlsoRefs, emphasis, nil
}

func splitRefs(s string) []string {
	var out []string
	for _, ref := range strings.Split(s, ";") {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
