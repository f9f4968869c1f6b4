package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piranha-go/piranha/internal/graph"
	"github.com/piranha-go/piranha/internal/model"
)

// ruleFile is the on-disk shape of a rule file, field names taken verbatim
// from spec.md §6's configuration file surface.
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name        string            `yaml:"name"`
	Query       string            `yaml:"query"`
	ReplaceNode string            `yaml:"replace_node"`
	Replace     string            `yaml:"replace"`
	Groups      []string          `yaml:"groups"`
	Holes       []string          `yaml:"holes"`
	Constraints []constraintEntry `yaml:"constraints"`
	IsSeed      bool              `yaml:"is_seed"`
}

type constraintEntry struct {
	Matcher string   `yaml:"matcher"`
	Queries []string `yaml:"queries"`
}

// edgeFile is the on-disk shape of an edge file.
type edgeFile struct {
	Edges []edgeEntry `yaml:"edges"`
}

type edgeEntry struct {
	From  string   `yaml:"from"`
	To    []string `yaml:"to"`
	Scope string   `yaml:"scope"`
}

// LoadRules reads every *.yaml/*.yml file directly under dir whose base
// name contains "rules" (see configFiles) and parses its "rules" list into a name-keyed rule table — the table ApplyRule's
// caller (internal/engine.Engine.Rules) and the edge loader both key off
// of.
func LoadRules(dir string) (map[model.Id]model.Rule, error) {
	paths, err := configFiles(dir, "rules")
	if err != nil {
		return nil, err
	}

	out := make(map[model.Id]model.Rule)
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading rule file %s: %w", path, err)
		}
		var f ruleFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("config: parsing rule file %s: %w", path, err)
		}
		for _, re := range f.Rules {
			if re.Name == "" {
				return nil, fmt.Errorf("config: %s: rule missing name", path)
			}
			rule, err := toRule(re)
			if err != nil {
				return nil, fmt.Errorf("config: %s: rule %q: %w", path, re.Name, err)
			}
			if _, dup := out[rule.Name]; dup {
				return nil, fmt.Errorf("config: %s: duplicate rule name %q", path, re.Name)
			}
			out[rule.Name] = rule
		}
	}
	return out, nil
}

func toRule(re ruleEntry) (model.Rule, error) {
	holes := make(map[model.CaptureName]struct{}, len(re.Holes))
	for _, h := range re.Holes {
		holes[model.CaptureName(h)] = struct{}{}
	}
	groups := make(map[model.Tag]struct{}, len(re.Groups))
	for _, g := range re.Groups {
		groups[model.Tag(g)] = struct{}{}
	}
	constraints := make([]model.Constraint, 0, len(re.Constraints))
	for _, c := range re.Constraints {
		if c.Matcher == "" {
			return model.Rule{}, fmt.Errorf("constraint missing matcher")
		}
		constraints = append(constraints, model.Constraint{
			Matcher:          c.Matcher,
			ForbiddenQueries: c.Queries,
		})
	}
	return model.Rule{
		Name:                model.Id(re.Name),
		Query:               re.Query,
		ReplacementTemplate: re.Replace,
		ReplaceNode:         model.CaptureName(re.ReplaceNode),
		Holes:               holes,
		IsSeed:              re.IsSeed,
		Groups:              groups,
		Constraints:         constraints,
	}, nil
}

// LoadGraph reads every *.yaml/*.yml file directly under dir whose base
// name contains "edges" (see configFiles) and parses its "edges" list, wiring From -> each To as a separate graph.Edge
// sharing Scope, then marks every rule in rules with IsSeed set as a graph
// seed.
func LoadGraph(dir string, rules map[model.Id]model.Rule) (*graph.Graph, error) {
	paths, err := configFiles(dir, "edges")
	if err != nil {
		return nil, err
	}

	g := graph.New()
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading edge file %s: %w", path, err)
		}
		var f edgeFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("config: parsing edge file %s: %w", path, err)
		}
		for _, ee := range f.Edges {
			if ee.From == "" || ee.Scope == "" {
				return nil, fmt.Errorf("config: %s: edge missing from/scope", path)
			}
			for _, to := range ee.To {
				g.AddEdge(graph.Edge{
					From:  model.Id(ee.From),
					To:    model.Id(to),
					Scope: model.ScopeTag(ee.Scope),
				})
			}
		}
	}

	for name, rule := range rules {
		if rule.IsSeed {
			g.AddSeed(name)
		}
	}
	return g, nil
}

// configFiles returns, in a deterministic (lexical) order, every *.yaml/
// *.yml file directly under dir whose base name contains kind — e.g.
// "rules.yaml", "rules.yml", "cleanup_rules.yaml" for kind "rules". Piranha
// configuration directories conventionally split rules and edges into
// separate files named this way; matching on substring rather than an
// exact name lets a directory hold several rule files (spec.md is silent
// on the exact file name, only the field shape within).
func configFiles(dir, kind string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("config: reading configuration directory %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		base := name[:len(name)-len(ext)]
		if strings.Contains(strings.ToLower(base), kind) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out, nil
}
