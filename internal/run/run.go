// Package run implements the multi-file orchestration spec.md §5/§4.10
// describes as "outside this core specification but part of its
// contract": a worker pool processing files concurrently against a
// shared Rule Store and Graph, iterated to a cross-file fixed point
// whenever a new global rule is seeded or global substitutions grow.
// Grounded on termfx-morfx/providers/golang/parallel_query.go's worker-
// pool shape (channel of work items, sync.WaitGroup, buffered result
// channel) — that file's own comment explains why tree-sitter trees are
// never shared across goroutines, which is why each worker here builds
// its own syntaxtree.Facade and internal/unit.Unit rather than sharing
// one across files.
package run

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/piranha-go/piranha/internal/diag"
	"github.com/piranha-go/piranha/internal/engine"
	"github.com/piranha-go/piranha/internal/graph"
	"github.com/piranha-go/piranha/internal/lang"
	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/store"
	"github.com/piranha-go/piranha/internal/summary"
	"github.com/piranha-go/piranha/internal/syntaxtree"
	"github.com/piranha-go/piranha/internal/unit"
)

// Orchestrator runs one full codebase transformation: every file in Files
// against Rules/Graph, to the cross-file global fixed point.
type Orchestrator struct {
	Store   *store.Store
	Graph   *graph.Graph
	Lang    lang.Descriptor
	Rules   map[model.Id]model.Rule
	Workers int // 0 means one worker per file
	Logger  *diag.Logger
	// RunID correlates this run's log lines; generated if left empty.
	RunID string
	// DB, if set, persists seeded global rules and global substitutions
	// (internal/store.OpenPersistentDB) so a run interrupted mid-fixed-
	// point can resume without reseeding what it already knew.
	DB *sql.DB
}

// Run processes every file in paths to a cross-file fixed point and
// returns one Summary per file, in the same order as paths.
func (o *Orchestrator) Run(ctx context.Context, paths []string) ([]summary.Summary, error) {
	logger := o.Logger
	if logger == nil {
		logger = diag.Default()
	}
	runID := o.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	originals := make(map[string][]byte, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("run: reading %s: %w", p, err)
		}
		originals[p] = data
	}

	seedNames := append([]model.Id(nil), o.Graph.Seeds()...)
	globalSubs := model.Substitutions{}
	var results []summary.Summary

	seenGlobalRules := map[model.Id]struct{}{}
	for _, n := range seedNames {
		seenGlobalRules[n] = struct{}{}
	}

	if o.DB != nil {
		persistedRules, persistedSubs, err := store.LoadPersisted(o.DB)
		if err != nil {
			return nil, fmt.Errorf("run: loading persisted state: %w", err)
		}
		for _, name := range persistedRules {
			id := model.Id(name)
			if _, seen := seenGlobalRules[id]; !seen {
				seenGlobalRules[id] = struct{}{}
				seedNames = append(seedNames, id)
			}
		}
		for k, v := range persistedSubs {
			globalSubs[model.CaptureName(k)] = v
		}
		logger.Infof("run %s: resumed %d persisted global rule(s), %d persisted substitution(s)",
			runID, len(persistedRules), len(persistedSubs))
	}

	for round := 1; ; round++ {
		logger.Debugf("run %s round %d: %d seed rules, %d global substitutions",
			runID, round, len(seedNames), len(globalSubs))

		var err error
		results, err = o.runRound(ctx, paths, originals, seedNames, globalSubs)
		if err != nil {
			return nil, err
		}

		newGlobalSubs := globalSubs.Clone()
		for _, s := range results {
			for k, v := range s.GlobalSubstitutions {
				newGlobalSubs[model.CaptureName(k)] = v
			}
		}

		if o.DB != nil {
			for k, v := range newGlobalSubs {
				if prior, ok := globalSubs[k]; !ok || prior != v {
					if err := store.PersistGlobalSubstitution(o.DB, string(k), v); err != nil {
						return nil, fmt.Errorf("run: persisting global substitution %s: %w", k, err)
					}
				}
			}
		}

		grownSubs := len(newGlobalSubs) > len(globalSubs)
		globalSubs = newGlobalSubs

		var newSeeds []model.Id
		for _, r := range o.Store.GlobalRules() {
			if _, seen := seenGlobalRules[r.Name]; !seen {
				seenGlobalRules[r.Name] = struct{}{}
				newSeeds = append(newSeeds, r.Name)
			}
		}
		seedNames = append(seedNames, newSeeds...)

		if o.DB != nil {
			for _, name := range newSeeds {
				if err := store.PersistGlobalRule(o.DB, string(name)); err != nil {
					return nil, fmt.Errorf("run: persisting global rule %s: %w", name, err)
				}
			}
		}

		if !grownSubs && len(newSeeds) == 0 {
			return results, nil
		}
	}
}

// runRound processes every file once against the current seed set and
// global-substitution environment, in parallel across a bounded worker
// pool.
func (o *Orchestrator) runRound(
	ctx context.Context, paths []string, originals map[string][]byte, seedNames []model.Id, globalSubs model.Substitutions,
) ([]summary.Summary, error) {
	results := make([]summary.Summary, len(paths))
	errs := make([]error, len(paths))

	jobs := make(chan int, len(paths))
	for i := range paths {
		jobs <- i
	}
	close(jobs)

	workers := o.Workers
	if workers <= 0 {
		workers = len(paths)
		if workers == 0 {
			workers = 1
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = o.processFile(ctx, paths[i], originals[paths[i]], seedNames, globalSubs)
			}
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("run: %s: %w", paths[i], err)
		}
	}
	return results, nil
}

func (o *Orchestrator) processFile(
	ctx context.Context, path string, original []byte, seedNames []model.Id, globalSubs model.Substitutions,
) (summary.Summary, error) {
	args := o.Store.Args()
	args.InputSubstitutions = args.InputSubstitutions.Merge(globalSubs)

	facade := syntaxtree.New(o.Lang.Grammar)
	u, err := unit.New(ctx, facade, path, append([]byte(nil), original...), args)
	if err != nil {
		return summary.Summary{}, err
	}
	defer u.Close()

	e := &engine.Engine{
		Store: o.Store,
		Graph: o.Graph,
		Lang:  o.Lang,
		Rules: o.Rules,
		Unit:  u,
	}

	var rules []model.InstantiatedRule
	for _, name := range seedNames {
		def, ok := o.Rules[name]
		if !ok {
			continue
		}
		instantiated, err := model.Instantiate(def, u.Substitutions)
		if err != nil {
			return summary.Summary{}, err
		}
		rules = append(rules, instantiated)
	}

	if err := e.ApplyRules(ctx, rules); err != nil {
		return summary.Summary{}, fmt.Errorf("applying rules to %s: %w", path, err)
	}

	return summary.FromUnit(u, string(original)), nil
}
