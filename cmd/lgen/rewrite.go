package main

import (
	"fmt"
	"iter"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/lgen/internal/diag"
	"github.com/aledsdavies/lgen/pkgs/fingerprint"
	"github.com/aledsdavies/lgen/pkgs/rewriter"
	"github.com/aledsdavies/lgen/pkgs/ruleparser"
	"github.com/aledsdavies/lgen/pkgs/scene"
	"github.com/aledsdavies/lgen/pkgs/token"
)

var (
	rewriteScenePath string
	rewriteSeed      uint32
	rewriteHasSeed   bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Run a scene's axiom through its rules for its iteration count",
	Args:  cobra.NoArgs,
	RunE:  runRewrite,
}

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteScenePath, "scene", "s", "", "path to a YAML scene file (required)")
	rewriteCmd.Flags().Uint32Var(&rewriteSeed, "seed", 0, "override the scene's seed")
	_ = rewriteCmd.MarkFlagRequired("scene")
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, args []string) error {
	rewriteHasSeed = cmd.Flags().Changed("seed")

	sc, err := scene.LoadFile(rewriteScenePath, Version)
	if err != nil {
		return fatalf("%v", err)
	}

	axiom, err := ruleparser.TokenizeAxiom(sc.Axiom, sc.Mode)
	if err != nil {
		return fatalf("invalid axiom: %v", err)
	}

	sink := diag.Sink(diag.Noop{})
	if verbose {
		sink = diag.StderrSink{Write: func(s string) { stderrf("%s", s) }}
	}

	seed := sc.Seed
	if rewriteHasSeed {
		s := rewriteSeed
		seed = &s
	}

	rw := rewriter.New(sc.Table.Table, sc.Table.Ignore, seed, sink)

	result := rw.Loop(tokenSeq(axiom), sc.Iterations)
	names := make([]string, 0)
	for t := range result {
		names = append(names, string(t.Name))
	}

	fmt.Println(strings.Join(names, ""))
	if verbose {
		stderrf("seed: %d\n", rw.Seed())
		stderrf("rule table fingerprint: %s\n", fingerprint.RuleTable(sc.Table.Table))
	}
	return nil
}

func tokenSeq(toks []token.Token) iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for _, t := range toks {
			if !yield(t) {
				return
			}
		}
	}
}
