package rewriter

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/lgen/internal/diag"
	"github.com/aledsdavies/lgen/pkgs/rule"
	"github.com/aledsdavies/lgen/pkgs/token"
)

func tok(name string) token.Token {
	return token.Token{Name: token.Identifier(name)}
}

func seqOf(toks ...token.Token) iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for _, t := range toks {
			if !yield(t) {
				return
			}
		}
	}
}

func collect(seq iter.Seq[token.Token]) []token.Token {
	var out []token.Token
	for t := range seq {
		out = append(out, t)
	}
	return out
}

func names(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = string(t.Name)
	}
	return out
}

func seed(n uint32) *uint32 { return &n }

// TestRewritePassthroughIsIdentity: a token with no registered rule passes
// through unchanged.
func TestRewritePassthroughIsIdentity(t *testing.T) {
	rw := New(rule.NewTable(), rule.NewIgnoreSet(), seed(1), nil)
	axiom := seqOf(tok("F"), tok("+"), tok("F"))

	got := collect(rw.Rewrite(axiom))
	require.Equal(t, []string{"F", "+", "F"}, names(got))
}

// TestRewriteContextFreeReplacement applies one context-free rule: F -> FF.
func TestRewriteContextFreeReplacement(t *testing.T) {
	table := rule.NewTable()
	table.Add("F", rule.Mapping{Production: []token.Token{tok("F"), tok("F")}})

	rw := New(table, rule.NewIgnoreSet(), seed(1), nil)
	got := collect(rw.Rewrite(seqOf(tok("F"))))
	require.Equal(t, []string{"F", "F"}, names(got))
}

// TestRewriteIterationHomomorphism checks loop(axiom, n+1) ==
// rewrite(loop(axiom, n)).
func TestRewriteIterationHomomorphism(t *testing.T) {
	table := rule.NewTable()
	table.Add("F", rule.Mapping{Production: []token.Token{tok("F"), tok("F")}})

	rw := New(table, rule.NewIgnoreSet(), seed(1), nil)
	axiom := func() iter.Seq[token.Token] { return seqOf(tok("F")) }

	loopThree := collect(rw.Loop(axiom(), 3))
	loopTwoThenOnce := collect(rw.Rewrite(rw.Loop(axiom(), 2)))
	require.Equal(t, names(loopThree), names(loopTwoThenOnce))
}

// TestRewriteLeftContextOnlyMatches verifies a rule with only a left
// context fires exactly when the preceding visited (non-ignored) token
// matches, and otherwise falls through to passthrough.
func TestRewriteLeftContextOnlyMatches(t *testing.T) {
	left := tok("A")
	table := rule.NewTable()
	table.Add("B", rule.Mapping{Production: []token.Token{tok("C")}, LeftContext: &left})

	rw := New(table, rule.NewIgnoreSet(), seed(1), nil)

	got := collect(rw.Rewrite(seqOf(tok("A"), tok("B"))))
	require.Equal(t, []string{"A", "C"}, names(got))

	got = collect(rw.Rewrite(seqOf(tok("X"), tok("B"))))
	require.Equal(t, []string{"X", "B"}, names(got))
}

// TestRewriteRightContextOnlyMatches mirrors the left-context test for the
// right side.
func TestRewriteRightContextOnlyMatches(t *testing.T) {
	right := tok("Z")
	table := rule.NewTable()
	table.Add("B", rule.Mapping{Production: []token.Token{tok("C")}, RightContext: &right})

	rw := New(table, rule.NewIgnoreSet(), seed(1), nil)

	got := collect(rw.Rewrite(seqOf(tok("B"), tok("Z"))))
	require.Equal(t, []string{"C", "Z"}, names(got))

	got = collect(rw.Rewrite(seqOf(tok("B"), tok("Y"))))
	require.Equal(t, []string{"B", "Y"}, names(got))
}

// TestRewriteBothContextsMustMatch requires both sides to hold at once.
func TestRewriteBothContextsMustMatch(t *testing.T) {
	left, right := tok("A"), tok("Z")
	table := rule.NewTable()
	table.Add("B", rule.Mapping{Production: []token.Token{tok("C")}, LeftContext: &left, RightContext: &right})

	rw := New(table, rule.NewIgnoreSet(), seed(1), nil)

	got := collect(rw.Rewrite(seqOf(tok("A"), tok("B"), tok("Z"))))
	require.Equal(t, []string{"A", "C", "Z"}, names(got))

	got = collect(rw.Rewrite(seqOf(tok("A"), tok("B"), tok("Y"))))
	require.Equal(t, []string{"A", "B", "Y"}, names(got))
}

// TestRewriteIgnoredTokenIsTransparentToContext verifies an ignored token
// sitting between B and its required left context A is skipped by the
// context scan but still emitted in its own turn.
func TestRewriteIgnoredTokenIsTransparentToContext(t *testing.T) {
	left := tok("A")
	table := rule.NewTable()
	table.Add("B", rule.Mapping{Production: []token.Token{tok("C")}, LeftContext: &left})

	ignore := rule.NewIgnoreSet()
	ignore.Add("X")

	rw := New(table, ignore, seed(1), nil)
	got := collect(rw.Rewrite(seqOf(tok("A"), tok("X"), tok("B"))))
	require.Equal(t, []string{"A", "X", "C"}, names(got))
}

// TestRewriteDeterministicPreferredOverProbabilistic: when a rule list
// mixes a bare and a probabilistic production, the bare one always wins.
func TestRewriteDeterministicPreferredOverProbabilistic(t *testing.T) {
	p := 1.0
	table := rule.NewTable()
	table.Add("F", rule.Mapping{Production: []token.Token{tok("X")}, Probability: &p})
	table.Add("F", rule.Mapping{Production: []token.Token{tok("Y")}})

	rw := New(table, rule.NewIgnoreSet(), seed(1), nil)
	for i := 0; i < 20; i++ {
		got := collect(rw.Rewrite(seqOf(tok("F"))))
		require.Equal(t, []string{"Y"}, names(got))
	}
}

// TestRewriteSameSeedIsDeterministic: two rewriters built with the same
// seed over the same stochastic table produce identical output.
func TestRewriteSameSeedIsDeterministic(t *testing.T) {
	p1, p2 := 0.5, 0.5
	build := func() *Rewriter {
		table := rule.NewTable()
		table.Add("F", rule.Mapping{Production: []token.Token{tok("X")}, Probability: &p1})
		table.Add("F", rule.Mapping{Production: []token.Token{tok("Y")}, Probability: &p2})
		return New(table, rule.NewIgnoreSet(), seed(42), nil)
	}

	a := build()
	b := build()

	for i := 0; i < 10; i++ {
		gotA := collect(a.Rewrite(seqOf(tok("F"))))
		gotB := collect(b.Rewrite(seqOf(tok("F"))))
		require.Equal(t, names(gotA), names(gotB))
	}
}

// TestApplyRulesUnknownTokenEmitsDiagnostic verifies the UnknownToken
// diagnostic fires for a token with no table entry, and that the token
// passes through unchanged.
func TestApplyRulesUnknownTokenEmitsDiagnostic(t *testing.T) {
	table := rule.NewTable()
	table.Add("Leaf", rule.Mapping{Production: []token.Token{tok("Leaf")}})

	var collector diag.Collector
	rw := New(table, rule.NewIgnoreSet(), seed(1), &collector)

	out := rw.ApplyRules(tok("Leeaf"), nil, nil)
	require.Equal(t, []token.Token{tok("Leeaf")}, out)
	require.True(t, collector.Has(diag.CodeUnknownToken))
}

// TestApplyRulesUnmatchedContextEmitsDiagnostic verifies the
// UnmatchedContext diagnostic fires when every candidate's context fails.
func TestApplyRulesUnmatchedContextEmitsDiagnostic(t *testing.T) {
	left := tok("A")
	table := rule.NewTable()
	table.Add("B", rule.Mapping{Production: []token.Token{tok("C")}, LeftContext: &left})

	var collector diag.Collector
	rw := New(table, rule.NewIgnoreSet(), seed(1), &collector)

	out := rw.ApplyRules(tok("B"), nil, nil)
	require.Equal(t, []token.Token{tok("B")}, out)
	require.True(t, collector.Has(diag.CodeUnmatchedContext))
}

// TestCheckProbabilitiesWarnsOnMixedForms verifies construction-time
// detection of a rule list mixing probabilistic and deterministic forms.
func TestCheckProbabilitiesWarnsOnMixedForms(t *testing.T) {
	p := 0.5
	table := rule.NewTable()
	table.Add("F", rule.Mapping{Production: []token.Token{tok("X")}, Probability: &p})
	table.Add("F", rule.Mapping{Production: []token.Token{tok("Y")}})

	var collector diag.Collector
	New(table, rule.NewIgnoreSet(), seed(1), &collector)
	require.True(t, collector.Has(diag.CodeProbabilityWarn))
}

// TestCheckProbabilitiesWarnsOnOversum verifies detection of a
// probability sum exceeding 1.0 across a rule list.
func TestCheckProbabilitiesWarnsOnOversum(t *testing.T) {
	p1, p2 := 0.7, 0.7
	table := rule.NewTable()
	table.Add("F", rule.Mapping{Production: []token.Token{tok("X")}, Probability: &p1})
	table.Add("F", rule.Mapping{Production: []token.Token{tok("Y")}, Probability: &p2})

	var collector diag.Collector
	New(table, rule.NewIgnoreSet(), seed(1), &collector)
	require.True(t, collector.Has(diag.CodeProbabilityWarn))
}

func TestSeedIsReportedAndReproducible(t *testing.T) {
	rw := New(rule.NewTable(), rule.NewIgnoreSet(), seed(7), nil)
	require.Equal(t, uint32(7), rw.Seed())
}

func TestRandomSeedIsReportedWhenNoneGiven(t *testing.T) {
	var collector diag.Collector
	New(rule.NewTable(), rule.NewIgnoreSet(), nil, &collector)
	require.True(t, collector.Has(diag.Code("SEED_CHOSEN")))
}
