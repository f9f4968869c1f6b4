// Command piranha is the thin CLI front end spec.md §6 treats as an
// external collaborator: it loads PiranhaArguments and a compiled rule
// graph, discovers the codebase's files, drives internal/run to a
// cross-file fixed point, and writes the resulting summaries. Grounded on
// termfx-morfx/cmd/morfx/main.go's flag-to-config-to-runner wiring and
// mvp-joe-canopy/cmd/canopy/main.go's single spf13/cobra root command with
// SilenceErrors/SilenceUsage — generalized to cobra (rather than the
// teacher's own bare pflag.FlagSet) since spec.md's CLI surface is a
// single subcommand-free invocation, the shape cobra's root-command-only
// mode fits directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piranha-go/piranha/internal/config"
	"github.com/piranha-go/piranha/internal/diag"
	"github.com/piranha-go/piranha/internal/discover"
	"github.com/piranha-go/piranha/internal/lang"
	"github.com/piranha-go/piranha/internal/run"
	"github.com/piranha-go/piranha/internal/store"
	"github.com/piranha-go/piranha/internal/summary"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "piranha: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "piranha",
		Short:         "Structural find-and-rewrite over a codebase's syntax trees",
		SilenceErrors: true,
		SilenceUsage:  true,
		// Options only LoadArguments declares must reach it unrejected.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPiranha(cmd.Context(), os.Args[1:])
		},
	}
	// Flags are declared for --help discoverability; LoadArguments does the
	// actual parsing against the raw argument slice, since its flag set
	// (internal/config) is the single source of truth for §6's recognized
	// options and must also serve non-cobra callers (tests, other tools).
	cmd.Flags().StringP("codebase", "f", "", "root directory of files to transform")
	cmd.Flags().StringP("configurations", "c", "", "directory of rule and edge files")
	cmd.Flags().StringP("lang", "l", "", "grammar name selector")
	cmd.Flags().StringArrayP("substitution", "s", nil, "input substitution k=v, repeatable")
	cmd.Flags().StringP("output-summaries", "j", "", "path to write JSON run summaries")
	cmd.Flags().Bool("dry-run", false, "do not persist rewritten text to disk")
	cmd.Flags().Bool("cleanup-comments", false, "enable associated-comment absorption")
	cmd.Flags().String("state-db", "", "sqlite path to persist global rule/substitution state across runs")
	return cmd
}

func runPiranha(ctx context.Context, rawArgs []string) error {
	args, err := config.LoadArguments(rawArgs)
	if err != nil {
		return err
	}

	d, err := lang.Get(args.Language)
	if err != nil {
		return err
	}

	rules, err := config.LoadRules(args.PathToConfigurations)
	if err != nil {
		return err
	}
	graph, err := config.LoadGraph(args.PathToConfigurations, rules)
	if err != nil {
		return err
	}

	files, err := discover.Files(args.PathToCodebase, d, discover.Options{})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("piranha: no %s files found under %s", args.Language, args.PathToCodebase)
	}

	logger := diag.Default()
	orch := &run.Orchestrator{
		Store:  store.New(args, d.Grammar),
		Graph:  graph,
		Lang:   d,
		Rules:  rules,
		Logger: logger,
	}

	if dbPath := config.StateDBPath(rawArgs); dbPath != "" {
		db, err := store.OpenPersistentDB(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		orch.DB = db
	}

	summaries, err := orch.Run(ctx, files)
	if err != nil {
		return err
	}

	if !args.DryRun {
		for _, s := range summaries {
			if s.OriginalText == s.FinalText {
				continue
			}
			if args.DeleteFileIfEmpty && strings.TrimSpace(s.FinalText) == "" {
				if err := os.Remove(s.Path); err != nil {
					return fmt.Errorf("piranha: deleting %s: %w", s.Path, err)
				}
				continue
			}
			if err := os.WriteFile(s.Path, []byte(s.FinalText), 0o644); err != nil {
				return fmt.Errorf("piranha: writing %s: %w", s.Path, err)
			}
		}
	}

	out := config.SummariesOutputPath(rawArgs)
	return writeSummaries(summaries, out)
}

func writeSummaries(summaries []summary.Summary, outPath string) error {
	raw, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("piranha: marshalling summaries: %w", err)
	}
	if outPath == "" {
		_, err := os.Stdout.Write(append(raw, '\n'))
		return err
	}
	return os.WriteFile(outPath, raw, 0o644)
}
