// Package discover builds the file set a run processes from
// path_to_codebase: every regular file under the root whose extension
// matches the selected language, skipping VCS and include/exclude-excluded
// paths. Grounded on termfx-morfx/core/filewalker.go's scanDirectory
// (directory-entry skip rules, doublestar pattern matching) and
// detectLanguage (extension table, generalized here to an explicit
// extension list per internal/lang.Descriptor instead of a fixed map),
// trimmed from its worker-pool-over-a-channel shape to a single recursive
// walk — one run processes one language's codebase, so there is no
// I/O-bound fan-out to parallelize at this layer; internal/run parallelizes
// across files at the rule-application layer instead.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/piranha-go/piranha/internal/lang"
)

// defaultExcludes are directory names never descended into, mirroring
// filewalker.go's own implicit VCS/build-output skip list.
var defaultExcludes = []string{".git", ".hg", ".svn", "node_modules", "vendor", ".piranha"}

// Options narrows which files under root are discovered.
type Options struct {
	Include []string // glob patterns; empty means "every file with a matching extension"
	Exclude []string // additional glob patterns to skip, beyond defaultExcludes
}

// Files walks root recursively and returns every matching file path, sorted
// lexically for deterministic run ordering (spec.md §5 depends on a
// deterministic file processing order for reproducible global fixed points).
func Files(root string, d lang.Descriptor, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discover: %s is not a directory", root)
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && isExcludedDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExtension(path, d.Extensions) {
			return nil
		}
		if matchesAny(path, opts.Exclude) {
			return nil
		}
		if len(opts.Include) > 0 && !matchesAny(path, opts.Include) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover: walking %s: %w", root, err)
	}

	sort.Strings(out)
	return out, nil
}

func isExcludedDir(name string) bool {
	for _, ex := range defaultExcludes {
		if name == ex {
			return true
		}
	}
	return false
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.PathMatch(pattern, path); err == nil && matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if matched, err := doublestar.PathMatch(pattern, filepath.Base(path)); err == nil && matched {
				return true
			}
		}
	}
	return false
}
