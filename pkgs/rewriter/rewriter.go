// Package rewriter implements a context-sensitive, stochastic
// string-rewriting engine: rule dispatch, the single-pass Rewrite over
// one iteration, and the Loop driver.
package rewriter

import (
	"crypto/rand"
	"fmt"
	"iter"
	"math/big"
	mrand "math/rand"

	"github.com/aledsdavies/lgen/internal/diag"
	"github.com/aledsdavies/lgen/internal/iterutil"
	"github.com/aledsdavies/lgen/pkgs/rule"
	"github.com/aledsdavies/lgen/pkgs/token"
)

// Rewriter owns one PRNG and a read-only rule table + ignore set: the
// rule table and ignore set are never mutated once a Rewriter is built.
type Rewriter struct {
	table  *rule.Table
	ignore rule.IgnoreSet
	rng    *mrand.Rand
	seed   uint32
	sink   diag.Sink
}

// New builds a Rewriter over the given table and ignore set. If seed is
// nil, a seed is drawn from crypto/rand and reported through sink at Info
// level, so the caller can still reproduce the run by recording it.
func New(table *rule.Table, ignore rule.IgnoreSet, seed *uint32, sink diag.Sink) *Rewriter {
	s := diag.Or(sink)

	var actual uint32
	if seed != nil {
		actual = *seed
	} else {
		actual = randomSeed()
		s.Emit(diag.Entry{Level: diag.Info, Code: diag.Code("SEED_CHOSEN"),
			Msg: fmt.Sprintf("using random seed: %d", actual)})
	}

	rw := &Rewriter{
		table:  table,
		ignore: ignore,
		rng:    mrand.New(mrand.NewSource(int64(actual))),
		seed:   actual,
		sink:   s,
	}
	rw.checkProbabilities()
	return rw
}

func randomSeed() uint32 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<32))
	if err != nil {
		// crypto/rand failing means the OS entropy source is broken; fall
		// back to a fixed seed rather than leaving the rewriter unseeded.
		return 0
	}
	return uint32(n.Int64())
}

// Seed returns the seed this Rewriter was constructed with (explicit or
// chosen), for the caller to persist alongside its output.
func (r *Rewriter) Seed() uint32 {
	return r.seed
}

// checkProbabilities emits a ProbabilityWarning diagnostic for every LHS
// whose rule list mixes probabilistic and deterministic
// mappings, or whose probabilities sum to more than 1.0. This runs once at
// construction rather than per-dispatch, since it is a property of the
// table, not of any one rewrite.
func (r *Rewriter) checkProbabilities() {
	for _, name := range r.table.Names() {
		mappings, _ := r.table.Lookup(name)
		if len(mappings) < 2 {
			continue
		}
		var sum float64
		hasProb, hasNoProb := false, false
		for _, m := range mappings {
			if m.HasProbability() {
				hasProb = true
				sum += *m.Probability
			} else {
				hasNoProb = true
			}
		}
		switch {
		case hasProb && hasNoProb:
			r.sink.Emit(diag.Entry{Level: diag.Warn, Code: diag.CodeProbabilityWarn,
				Msg: fmt.Sprintf("rules for %q mix probabilistic and deterministic forms", name)})
		case hasProb && sum > 1.0:
			r.sink.Emit(diag.Entry{Level: diag.Warn, Code: diag.CodeProbabilityWarn,
				Msg: fmt.Sprintf("rules for %q have probabilities summing to %.4f (> 1.0)", name, sum)})
		}
	}
}

// ApplyRules runs the dispatch algorithm for a single visited token:
// filter candidates by left context, then by right context, then choose
// among what remains.
func (r *Rewriter) ApplyRules(tok token.Token, left, right *token.Token) []token.Token {
	candidates, ok := r.table.Lookup(tok.Name)
	if !ok {
		r.sink.Emit(diag.Entry{Level: diag.Info, Code: diag.CodeUnknownToken, Msg: r.unknownTokenMsg(tok)})
		return []token.Token{tok}
	}

	byLeft := make([]rule.Mapping, 0, len(candidates))
	for _, c := range candidates {
		if c.LeftContext == nil || (left != nil && c.LeftContext.Name == left.Name) {
			byLeft = append(byLeft, c)
		}
	}

	byRight := make([]rule.Mapping, 0, len(byLeft))
	for _, c := range byLeft {
		if c.RightContext == nil || (right != nil && c.RightContext.Name == right.Name) {
			byRight = append(byRight, c)
		}
	}

	if len(byRight) == 0 {
		r.sink.Emit(diag.Entry{Level: diag.Info, Code: diag.CodeUnmatchedContext,
			Msg: fmt.Sprintf("no rule for %q matches context (left=%s, right=%s); passing through unchanged",
				tok.Name, ctxName(left), ctxName(right))})
		return []token.Token{tok}
	}

	if len(byRight) == 1 {
		return cloneProduction(byRight[0].Production)
	}

	chosen := r.pick(byRight)
	return cloneProduction(chosen.Production)
}

// pick prefers the first candidate with no probability (deterministic),
// otherwise samples weighted by probability.
func (r *Rewriter) pick(candidates []rule.Mapping) rule.Mapping {
	for _, c := range candidates {
		if !c.HasProbability() {
			return c
		}
	}

	var total float64
	for _, c := range candidates {
		total += *c.Probability
	}
	if total <= 0 {
		return candidates[0]
	}

	roll := r.rng.Float64() * total
	var cum float64
	for _, c := range candidates {
		cum += *c.Probability
		if roll < cum {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

func cloneProduction(p []token.Token) []token.Token {
	out := make([]token.Token, len(p))
	copy(out, p)
	return out
}

func ctxName(t *token.Token) string {
	if t == nil {
		return "<none>"
	}
	return string(t.Name)
}

// Rewrite performs exactly one single-pass iteration over seq: every input
// token is visited once, left/right context is computed by scanning past
// ignored tokens, and replacements from this pass are never re-examined
// within the same pass.
func (r *Rewriter) Rewrite(seq iter.Seq[token.Token]) iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		p := iterutil.NewPeekable(seq)
		defer p.Stop()

		var left *token.Token
		for {
			cur, ok := p.Next()
			if !ok {
				return
			}

			right := r.lookahead(p)

			for _, out := range r.ApplyRules(cur, left, right) {
				if !yield(out) {
					return
				}
			}

			if !r.ignore.Contains(cur.Name) {
				lv := cur
				left = &lv
			}
		}
	}
}

// lookahead scans forward from the token right after the one just consumed
// (index 0 in the peekable's remaining buffer) for the nearest token whose
// name is not in
// the ignore set. Ignored tokens are still visited in their turn; they are
// merely transparent to context lookup.
func (r *Rewriter) lookahead(p *iterutil.Peekable[token.Token]) *token.Token {
	for i := 0; ; i++ {
		v, ok := p.PeekAt(i)
		if !ok {
			return nil
		}
		if !r.ignore.Contains(v.Name) {
			rv := v
			return &rv
		}
	}
}

// Loop applies Rewrite n times to axiom, returning the final, still-lazy
// sequence: loop(axiom, n+1) = rewrite(loop(axiom, n)).
func (r *Rewriter) Loop(axiom iter.Seq[token.Token], n int) iter.Seq[token.Token] {
	seq := axiom
	for i := 0; i < n; i++ {
		seq = r.Rewrite(seq)
	}
	return seq
}
