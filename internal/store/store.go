// Package store implements the Rule Store of spec.md §4.3: a process-
// lifetime, concurrency-safe cache of compiled queries, plus the set of
// rules that have been seeded globally during a run and the run's
// arguments/input substitutions. Grounded on the teacher's
// internal/core/manipulator.go GetCached/cacheKey pattern — a package-level
// sync.RWMutex guarding a map — generalized here into an instance (not a
// package-level global), per the design note "treat it as a value threaded
// through the engine, not a singleton".
package store

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/query"
)

// Arguments mirrors spec.md §6's PiranhaArguments: the recognized,
// read-only options for one run.
type Arguments struct {
	PathToCodebase                 string
	PathToConfigurations           string
	Language                       string
	InputSubstitutions             model.Substitutions
	GlobalTagPrefix                string
	CleanupComments                bool
	CleanupCommentsBuffer          int
	DeleteFileIfEmpty              bool
	DeleteConsecutiveNewLines      bool
	DryRun                         bool
	NumberOfAncestorsInParentScope int
}

// DefaultArguments returns the §6-documented defaults for every field the
// caller does not explicitly set.
func DefaultArguments() Arguments {
	return Arguments{
		GlobalTagPrefix:                "GLOBAL_TAG",
		NumberOfAncestorsInParentScope: 4,
		InputSubstitutions:             model.Substitutions{},
	}
}

type queryEntry struct {
	q   *query.Query
	err error
}

// Store holds everything that outlives a single file's processing within
// one run: the compiled-query cache, the globally-seeded rule set, and the
// run's arguments.
type Store struct {
	mu      sync.RWMutex
	queries map[string]*queryEntry
	globals []model.Rule
	args    Arguments
	lang    *sitter.Language
}

// New creates a Store for one run.
func New(args Arguments, lang *sitter.Language) *Store {
	return &Store{
		queries: make(map[string]*queryEntry),
		args:    args,
		lang:    lang,
	}
}

// Args returns the run's arguments.
func (s *Store) Args() Arguments { return s.args }

// Query returns the compiled query for text, compiling and caching it on
// first use. Safe for concurrent use across files processed in parallel
// (spec.md §5: "query cache, which must be safe for concurrent read and
// serialized insert").
func (s *Store) Query(text string) (*query.Query, error) {
	s.mu.RLock()
	if e, ok := s.queries[text]; ok {
		s.mu.RUnlock()
		return e.q, e.err
	}
	s.mu.RUnlock()

	q, err := query.Compile(text, s.lang)
	entry := &queryEntry{q: q, err: err}

	s.mu.Lock()
	if existing, ok := s.queries[text]; ok {
		s.mu.Unlock()
		return existing.q, existing.err
	}
	s.queries[text] = entry
	s.mu.Unlock()
	return q, err
}

// AddGlobal seeds rule into the run's global rule set (spec.md §4.10). It
// must be called under the cross-file synchronization point described in
// spec.md §5; Store itself only guards its own map.
func (s *Store) AddGlobal(rule model.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globals = append(s.globals, rule)
}

// GlobalRules returns the rules seeded so far, in seeding order.
func (s *Store) GlobalRules() []model.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Rule, len(s.globals))
	copy(out, s.globals)
	return out
}
