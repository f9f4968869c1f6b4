// Package lang holds per-language descriptors: grammar, file extensions and
// scope templates. Differences across
// languages are data selected at run start, not polymorphism — the design
// note "Dynamic dispatch over languages" in spec.md §9 — mirroring the
// table-driven NodeMapping style of the teacher's
// internal/lang/golang/provider.go, redirected from "universal kind
// mapping" to "scope tag mapping".
package lang

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// ScopeTemplate is a query template for one scope tag, with holes
// `n0.start_byte`/`n0.end_byte` the Scope Resolver binds to the current
// anchor range before compiling (spec.md §6's scope-config surface).
type ScopeTemplate struct {
	Tag      string
	Template string
}

// Descriptor is everything monomorphic engine code needs to know about one
// target language.
type Descriptor struct {
	Name           string
	Extensions     []string
	Grammar        *sitter.Language
	ScopeTemplates map[string]ScopeTemplate
}

var registry = map[string]Descriptor{
	"go": {
		Name:       "go",
		Extensions: []string{".go"},
		Grammar:    golang.GetLanguage(),
		ScopeTemplates: map[string]ScopeTemplate{
			"Method": {Tag: "Method", Template: `[(function_declaration) (method_declaration)] @Method`},
			"Class":  {Tag: "Class", Template: `(type_declaration (type_spec type: (struct_type))) @Class`},
		},
	},
	"python": {
		Name:       "python",
		Extensions: []string{".py"},
		Grammar:    python.GetLanguage(),
		ScopeTemplates: map[string]ScopeTemplate{
			"Method": {Tag: "Method", Template: `(function_definition) @Method`},
			"Class":  {Tag: "Class", Template: `(class_definition) @Class`},
		},
	},
	"javascript": {
		Name:       "javascript",
		Extensions: []string{".js", ".jsx"},
		Grammar:    javascript.GetLanguage(),
		ScopeTemplates: map[string]ScopeTemplate{
			"Method": {Tag: "Method", Template: `[(function_declaration) (method_definition)] @Method`},
			"Class":  {Tag: "Class", Template: `(class_declaration) @Class`},
		},
	},
}

// Get returns the descriptor for name, or a configuration error naming the
// unknown grammar (spec.md §7: unknown grammar is a fatal configuration
// error, surfaced at startup).
func Get(name string) (Descriptor, error) {
	d, ok := registry[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown grammar %q", name)
	}
	return d, nil
}

// ScopeTemplateFor returns the template for tag within d, or false if d has no
// such scope tag configured — an unknown scope tag is also a fatal
// configuration error at the call sites (scope.Resolve, and the engine when
// it queues a successor; spec.md §7).
func (d Descriptor) ScopeTemplateFor(tag string) (ScopeTemplate, bool) {
	t, ok := d.ScopeTemplates[tag]
	return t, ok
}
