// Package ruleparser lifts a textual rule-language line into a rule.Table
// entry or an ignore-set update. It is a hand-written recursive-descent
// parser with a lexer/parser split, rather than a parser-combinator or PEG
// dependency: the grammar is one line long, and a generated PEG parser is
// built for a far larger grammar than this one, so pulling in that
// machinery here would add a dependency nothing in this grammar exercises.
package ruleparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aledsdavies/lgen/internal/lgerr"
	"github.com/aledsdavies/lgen/pkgs/rule"
	"github.com/aledsdavies/lgen/pkgs/token"
)

// Kind distinguishes the two shapes a parsed line can take.
type Kind int

const (
	KindRule Kind = iota
	KindIgnore
)

// Result is the outcome of parsing one non-blank line.
type Result struct {
	Kind    Kind
	LHS     token.Identifier // valid when Kind == KindRule
	Mapping rule.Mapping      // valid when Kind == KindRule
	Ignore  []token.Identifier // valid when Kind == KindIgnore
}

const ignorePrefix = "#ignore"

// Parse parses a single rule-language line under the given token Mode.
// Parsing is all-or-nothing: any unparseable line returns a non-nil error
// and no partial Result.
func Parse(line string, mode token.Mode) (Result, error) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "#") {
		return parseIgnore(trimmed, mode)
	}
	return parseRule(trimmed, mode)
}

func parseIgnore(line string, mode token.Mode) (Result, error) {
	if !strings.HasPrefix(line, ignorePrefix) {
		return Result{}, fmt.Errorf("line starts with '#' but is not '%s': %q", ignorePrefix, line)
	}
	rest := line[len(ignorePrefix):]
	rest = strings.TrimPrefix(strings.TrimLeft(rest, " \t"), ":")

	s := newScanner(rest, mode)
	toks, err := s.readTokenList()
	if err != nil {
		return Result{}, fmt.Errorf("bad ignore list: %w", err)
	}

	names := make([]token.Identifier, len(toks))
	for i, t := range toks {
		names[i] = t.Name
	}
	return Result{Kind: KindIgnore, Ignore: names}, nil
}

// parseRule implements:
//
//	rule := [ token '<' ] token [ '>' token ] [ ':' real ] '->' rhs
//
// using leftmost-greedy, backtrack-free reads: a '<' immediately (modulo
// whitespace) following the first token is always the context separator,
// never part of a second token. This is what makes "<<a->b" parse as
// "left context '<', lhs 'a'" rather than lhs "<<" (not even a valid token)
// or some other reading.
func parseRule(line string, mode token.Mode) (Result, error) {
	s := newScanner(line, mode)

	s.skipWS()
	first, err := s.readToken()
	if err != nil {
		return Result{}, fmt.Errorf("bad lhs: %w", err)
	}

	var lhs token.Token
	var leftCtx *token.Token

	s.skipWS()
	if r, ok := s.peek(); ok && r == '<' {
		s.pos++
		lc := first
		leftCtx = &lc
		s.skipWS()
		lhs, err = s.readToken()
		if err != nil {
			return Result{}, fmt.Errorf("bad lhs after left context: %w", err)
		}
	} else {
		lhs = first
	}

	var rightCtx *token.Token
	s.skipWS()
	if r, ok := s.peek(); ok && r == '>' {
		s.pos++
		s.skipWS()
		rc, err := s.readToken()
		if err != nil {
			return Result{}, fmt.Errorf("bad right context: %w", err)
		}
		rightCtx = &rc
	}

	var probability *float64
	s.skipWS()
	if r, ok := s.peek(); ok && r == ':' {
		s.pos++
		s.skipWS()
		arrowIdx := s.findArrow()
		if arrowIdx < 0 {
			return Result{}, fmt.Errorf("missing '->' after probability")
		}
		numText := strings.TrimSpace(string(s.runes[s.pos:arrowIdx]))
		p, err := strconv.ParseFloat(numText, 64)
		if err != nil {
			return Result{}, fmt.Errorf("bad probability %q: %w", numText, err)
		}
		probability = &p
		s.pos = arrowIdx
	}

	s.skipWS()
	if s.pos+1 >= len(s.runes) || s.runes[s.pos] != '-' || s.runes[s.pos+1] != '>' {
		return Result{}, fmt.Errorf("expected '->', found %q", s.rest())
	}
	s.pos += 2

	s.skipWS()
	rhs, err := s.readTokenList()
	if err != nil {
		return Result{}, fmt.Errorf("bad production: %w", err)
	}

	return Result{
		Kind: KindRule,
		LHS:  lhs.Name,
		Mapping: rule.Mapping{
			Production:   rhs,
			Probability:  probability,
			LeftContext:  leftCtx,
			RightContext: rightCtx,
		},
	}, nil
}

// TokenizeAxiom parses a bare token sequence (an axiom) using the same
// token grammar as a rule's left/right-hand side: admissible symbols or,
// in LongMode, alphanumeric words, separated by whitespace and/or commas.
func TokenizeAxiom(s string, mode token.Mode) ([]token.Token, error) {
	scanner := newScanner(s, mode)
	return scanner.readTokenList()
}

// Loader accumulates parsed lines into a rule.Table and rule.IgnoreSet.
type Loader struct {
	Table  *rule.Table
	Ignore rule.IgnoreSet
	Mode   token.Mode
}

// NewLoader returns a Loader with an empty table and ignore set.
func NewLoader(mode token.Mode) *Loader {
	return &Loader{Table: rule.NewTable(), Ignore: rule.NewIgnoreSet(), Mode: mode}
}

// AddLine parses line and folds it into the Loader's table or ignore set.
// A parse failure is wrapped as a fatal *lgerr.Error and no partial state
// is added.
func (l *Loader) AddLine(line string) error {
	result, err := Parse(line, l.Mode)
	if err != nil {
		return lgerr.RuleParseError(line, err)
	}
	switch result.Kind {
	case KindIgnore:
		for _, name := range result.Ignore {
			l.Ignore.Add(name)
		}
	case KindRule:
		l.Table.Add(result.LHS, result.Mapping)
	}
	return nil
}

// LoadLines parses each line, skipping blank/whitespace-only lines. It
// stops at the first error, since a RuleParseError is fatal to rule
// loading.
func (l *Loader) LoadLines(lines []string) error {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := l.AddLine(line); err != nil {
			return err
		}
	}
	return nil
}
