package rewriter

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aledsdavies/lgen/pkgs/token"
)

// suggest returns the known rule LHS closest to name by fuzzy match, or ""
// if there are no known names or none resembles it at all.
func suggest(name token.Identifier, known []token.Identifier) string {
	if len(known) == 0 {
		return ""
	}
	targets := make([]string, len(known))
	for i, k := range known {
		targets[i] = string(k)
	}

	ranks := fuzzy.RankFind(string(name), targets)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// unknownTokenMsg reports a token with no rule entry at all, suggesting the
// nearest known LHS as a likely typo.
func (r *Rewriter) unknownTokenMsg(tok token.Token) string {
	msg := fmt.Sprintf("no rule registered for token %q; passing through unchanged", tok.Name)
	if hint := suggest(tok.Name, r.table.Names()); hint != "" && hint != string(tok.Name) {
		msg += fmt.Sprintf(" (did you mean %q?)", hint)
	}
	return msg
}
