package anchor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// ErrCollisionExhausted is returned when deterministic suffixing cannot
// produce a free identifier within the attempt cap.
var ErrCollisionExhausted = errors.New("id collision attempts exhausted")

// maxCollisionAttempts caps deterministic suffix generation per candidate.
const maxCollisionAttempts = 1000

// safe identifiers survive as document ids verbatim, everything else is regenerated
var reSafeID = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// IsSafeID reports whether an author supplied id can be kept as is.
func IsSafeID(id string) bool {
	return reSafeID.MatchString(id)
}

// Registry owns every addressable target of a resolution run and guarantees
// id uniqueness across all of them.
type Registry struct {
	prefix     string
	maxIDLen   int
	suffixLen  int
	fuzzyMin   int
	frozen     bool
	targets    []*Target
	byID       map[string]*Target
	byOriginal map[string]*Target
	collisions int
	log        *zap.Logger
}

func NewRegistry(prefix string, maxIDLen, suffixLen, fuzzyMin int, log *zap.Logger) *Registry {
	return &Registry{
		prefix:     prefix,
		maxIDLen:   maxIDLen,
		suffixLen:  suffixLen,
		fuzzyMin:   fuzzyMin,
		byID:       make(map[string]*Target),
		byOriginal: make(map[string]*Target),
		log:        log,
	}
}

// Register assigns a final unique id to the target and records it. The
// target's OriginalID is used verbatim when it is syntactically safe and
// still free, otherwise an id is generated from prefix, kind and content.
// Registration order is the caller's responsibility and fixes iteration
// order for all later lookups.
func (r *Registry) Register(t *Target) (string, error) {
	if r.frozen {
		// this should never happen
		panic("registering target in frozen registry")
	}

	base := ""
	if IsSafeID(t.OriginalID) {
		base = r.truncate(t.OriginalID)
	} else {
		if len(t.OriginalID) > 0 {
			r.log.Debug("Unsafe original id, regenerating", zap.String("id", t.OriginalID), zap.String("file", t.File))
		}
		base = r.generatedBase(t)
	}

	id, err := r.disambiguate(base)
	if err != nil {
		return "", fmt.Errorf("unable to register %s %q from %q: %w", t.Kind, t.OriginalID, t.File, err)
	}

	t.ID = id
	r.targets = append(r.targets, t)
	r.byID[id] = t
	if len(t.OriginalID) > 0 {
		// first registration wins, later duplicates are only reachable by final id
		if _, exists := r.byOriginal[t.OriginalID]; !exists {
			r.byOriginal[t.OriginalID] = t
		}
	}
	return id, nil
}

func (r *Registry) generatedBase(t *Target) string {
	text := t.Title
	if len(text) == 0 {
		text = t.PlainText
	}
	s := slug.Make(text)
	if len(s) == 0 {
		s = fmt.Sprintf("at-%d", t.Position)
	}
	return r.truncate(fmt.Sprintf("%s-%s-%s", r.prefix, t.Kind, s))
}

// disambiguate appends a short content hash suffix until the id is free.
// The suffix depends only on the base and the attempt number, so reruns over
// the same input produce identical ids.
func (r *Registry) disambiguate(base string) (string, error) {
	id := base
	for attempt := 1; ; attempt++ {
		if _, taken := r.byID[id]; !taken {
			if attempt > 1 {
				r.collisions++
				r.log.Debug("Resolved id collision", zap.String("base", base), zap.String("id", id), zap.Int("attempts", attempt-1))
			}
			return id, nil
		}
		if attempt > maxCollisionAttempts {
			return "", ErrCollisionExhausted
		}
		sum := fmt.Sprintf("%016x", xxhash.Sum64String(fmt.Sprintf("%s-%d", base, attempt)))
		id = fmt.Sprintf("%s-%s", base, sum[:r.suffixLen])
	}
}

func (r *Registry) truncate(id string) string {
	// reserve room for a collision suffix so suffixed ids stay within bounds
	limit := r.maxIDLen - r.suffixLen - 1
	if limit < 1 {
		limit = 1
	}
	runes := []rune(id)
	if len(runes) <= limit {
		return id
	}
	return strings.TrimRight(string(runes[:limit]), "-_")
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

// ByID returns a target by its final id.
func (r *Registry) ByID(id string) *Target {
	return r.byID[id]
}

// ByOriginalID returns the first registered target which carried the given
// author supplied id.
func (r *Registry) ByOriginalID(id string) *Target {
	return r.byOriginal[id]
}

// Fuzzy looks a target up by case-insensitive containment between the key and
// target titles. Candidates from preferFile win over the rest, ties are
// broken by registration order.
func (r *Registry) Fuzzy(key, preferFile string) *Target {
	key = strings.ToLower(strings.TrimSpace(key))
	if len([]rune(key)) < r.fuzzyMin {
		return nil
	}

	var first *Target
	for _, t := range r.targets {
		if !r.fuzzyMatch(key, t) {
			continue
		}
		if t.File == preferFile {
			return t
		}
		if first == nil {
			first = t
		}
	}
	return first
}

func (r *Registry) fuzzyMatch(key string, t *Target) bool {
	for _, text := range []string{t.Title, t.PlainText} {
		text = strings.ToLower(strings.TrimSpace(text))
		if len([]rune(text)) < r.fuzzyMin {
			continue
		}
		if strings.Contains(text, key) || strings.Contains(key, text) {
			return true
		}
	}
	return false
}

// Targets returns all registered targets in registration order.
func (r *Registry) Targets() []*Target {
	return r.targets
}

// Collisions returns the number of collisions resolved by suffixing.
func (r *Registry) Collisions() int {
	return r.collisions
}

// CountByKind tallies registered targets per kind.
func (r *Registry) CountByKind() map[Kind]int {
	res := make(map[Kind]int)
	for _, t := range r.targets {
		res[t.Kind]++
	}
	return res
}
