// Package config builds the two inputs spec.md §6 says the core consumes
// from its surrounding CLI/config layer: a store.Arguments value and a
// compiled rule graph. Flag parsing is grounded on
// termfx-morfx/cmd/morfx/main.go's buildConfigFromFlags (pflag.FlagSet,
// StringP/BoolP/IntP, a plain struct as the parse target); environment
// defaulting is grounded on termfx-morfx/internal/config/config.go's
// os.Getenv-with-fallback idiom, generalized from a fixed field list to
// spec.md §6's PiranhaArguments.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/store"
)

// LoadArguments parses args (typically os.Args[1:]) into a store.Arguments,
// applying defaults from store.DefaultArguments and then from a .env file
// (if present) before the flags themselves, so an explicit flag always
// wins over the environment, which always wins over the built-in default —
// the same precedence order termfx-morfx's own LoadConfig establishes for
// its env-vs-default fields.
func LoadArguments(args []string) (store.Arguments, error) {
	loadDotEnv()

	a := store.DefaultArguments()
	applyEnvDefaults(&a)

	fs := pflag.NewFlagSet("piranha", pflag.ContinueOnError)
	configurations := fs.StringP("configurations", "c", a.PathToConfigurations, "directory of rule and edge files")
	codebase := fs.StringP("codebase", "f", a.PathToCodebase, "root directory of files to transform")
	language := fs.StringP("lang", "l", a.Language, "grammar name selector")
	substitutions := fs.StringArrayP("substitution", "s", nil, "input substitution k=v, repeatable")
	globalTagPrefix := fs.String("global-tag-prefix", a.GlobalTagPrefix, "prefix marking a capture as globally exported")
	cleanupComments := fs.Bool("cleanup-comments", a.CleanupComments, "enable associated-comment absorption")
	cleanupCommentsBuffer := fs.Int("cleanup-comments-buffer", a.CleanupCommentsBuffer, "line lookback for comment absorption")
	deleteFileIfEmpty := fs.Bool("delete-file-if-empty", a.DeleteFileIfEmpty, "delete a file left empty after rewriting")
	deleteConsecutiveNewLines := fs.Bool("delete-consecutive-new-lines", a.DeleteConsecutiveNewLines, "collapse consecutive blank lines")
	dryRun := fs.Bool("dry-run", a.DryRun, "do not persist rewritten text to disk")
	ancestorCap := fs.Int("number-of-ancestors-in-parent-scope", a.NumberOfAncestorsInParentScope, "cap on Parent-walk depth")
	// path_to_output_summaries (-j) is consumed by the CLI/summary layer, not
	// the core, but is parsed here so a single flag set serves the whole
	// front end (spec.md §6's CLI surface lists it alongside these).
	summariesOut := fs.StringP("output-summaries", "j", "", "path to write JSON run summaries")

	if err := fs.Parse(args); err != nil {
		return store.Arguments{}, err
	}

	a.PathToConfigurations = *configurations
	a.PathToCodebase = *codebase
	a.Language = *language
	a.GlobalTagPrefix = *globalTagPrefix
	a.CleanupComments = *cleanupComments
	a.CleanupCommentsBuffer = *cleanupCommentsBuffer
	a.DeleteFileIfEmpty = *deleteFileIfEmpty
	a.DeleteConsecutiveNewLines = *deleteConsecutiveNewLines
	a.DryRun = *dryRun
	a.NumberOfAncestorsInParentScope = *ancestorCap

	subs, err := parseSubstitutions(*substitutions)
	if err != nil {
		return store.Arguments{}, err
	}
	for k, v := range subs {
		a.InputSubstitutions[k] = v
	}

	if a.PathToCodebase == "" {
		return store.Arguments{}, fmt.Errorf("config: -f/--codebase is required")
	}
	if a.Language == "" {
		return store.Arguments{}, fmt.Errorf("config: -l/--lang is required")
	}

	_ = summariesOut // read by the CLI layer via SummariesOutputPath, not the core
	return a, nil
}

// SummariesOutputPath re-parses just the -j flag's value out of args, for
// callers (cmd/piranha) that need it without duplicating the whole flag
// set. It never errors on flags it doesn't recognize.
func SummariesOutputPath(args []string) string {
	fs := pflag.NewFlagSet("piranha-summaries", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	out := fs.StringP("output-summaries", "j", "", "")
	_ = fs.Parse(args)
	return *out
}

// StateDBPath re-parses just the --state-db flag's value out of args, the
// same way SummariesOutputPath does for -j — this flag is consumed by
// cmd/piranha to open an optional internal/store.OpenPersistentDB, not by
// the core itself.
func StateDBPath(args []string) string {
	fs := pflag.NewFlagSet("piranha-state-db", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	out := fs.String("state-db", "", "")
	_ = fs.Parse(args)
	return *out
}

func parseSubstitutions(pairs []string) (model.Substitutions, error) {
	out := make(model.Substitutions, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("config: malformed -s substitution %q, want k=v", p)
		}
		out[model.CaptureName(k)] = v
	}
	return out, nil
}

// loadDotEnv loads a .env file from the working directory if one exists.
// Absence of the file is not an error — it's the common case.
func loadDotEnv() {
	_ = godotenv.Load()
}

// applyEnvDefaults mirrors termfx-morfx/internal/config/config.go's
// pattern of checking an env var and only overriding the built-in default
// when it is set and parses cleanly.
func applyEnvDefaults(a *store.Arguments) {
	if v := os.Getenv("PIRANHA_PATH_TO_CODEBASE"); v != "" {
		a.PathToCodebase = v
	}
	if v := os.Getenv("PIRANHA_PATH_TO_CONFIGURATIONS"); v != "" {
		a.PathToConfigurations = v
	}
	if v := os.Getenv("PIRANHA_LANGUAGE"); v != "" {
		a.Language = v
	}
	if v := os.Getenv("PIRANHA_GLOBAL_TAG_PREFIX"); v != "" {
		a.GlobalTagPrefix = v
	}
	if v := os.Getenv("PIRANHA_CLEANUP_COMMENTS_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			a.CleanupCommentsBuffer = n
		}
	}
	if v := os.Getenv("PIRANHA_NUMBER_OF_ANCESTORS_IN_PARENT_SCOPE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			a.NumberOfAncestorsInParentScope = n
		}
	}
}
