// Package rule holds the parsed production-rule table the rewriter reads
// from. It has no knowledge of the textual rule language (see ruleparser)
// or of rewriting itself (see rewriter); it is purely the data structure.
package rule

import "github.com/aledsdavies/lgen/pkgs/token"

// Mapping is one production rule: the context it requires, the probability
// it competes with its siblings under, and the replacement it emits when
// selected.
type Mapping struct {
	Production   []token.Token
	Probability  *float64
	LeftContext  *token.Token
	RightContext *token.Token
}

// HasProbability reports whether m carries an explicit probability.
func (m Mapping) HasProbability() bool {
	return m.Probability != nil
}

// Table is an insertion-ordered multimap from a token name to the ordered
// list of rules that apply to it, plus the set of names that context lookup
// should skip over. Insertion order within a single name's rule list is the
// tiebreaker the rewriter's dispatch algorithm uses, so Table must never
// reorder or deduplicate a name's Mapping slice.
type Table struct {
	byName map[token.Identifier][]Mapping
	// order preserves first-seen order of LHS names, only for diagnostics
	// and deterministic iteration (e.g. fingerprinting); rule *selection*
	// never depends on this.
	order []token.Identifier
	seen  map[token.Identifier]struct{}
}

// NewTable returns an empty rule table.
func NewTable() *Table {
	return &Table{
		byName: make(map[token.Identifier][]Mapping),
		seen:   make(map[token.Identifier]struct{}),
	}
}

// Add appends m to lhs's rule list, preserving insertion order.
func (t *Table) Add(lhs token.Identifier, m Mapping) {
	if _, ok := t.seen[lhs]; !ok {
		t.seen[lhs] = struct{}{}
		t.order = append(t.order, lhs)
	}
	t.byName[lhs] = append(t.byName[lhs], m)
}

// Lookup returns the ordered rule list for name, and whether any rule is
// registered for it at all.
func (t *Table) Lookup(name token.Identifier) ([]Mapping, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// Names returns the LHS names in first-seen (insertion) order.
func (t *Table) Names() []token.Identifier {
	out := make([]token.Identifier, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of distinct LHS names registered.
func (t *Table) Len() int {
	return len(t.order)
}

// IgnoreSet is the set of token names that are transparent to context
// lookup but are still visited and rewritten normally.
type IgnoreSet map[token.Identifier]struct{}

// NewIgnoreSet returns an empty ignore set.
func NewIgnoreSet() IgnoreSet {
	return make(IgnoreSet)
}

// Add marks name as ignored for context lookup.
func (s IgnoreSet) Add(name token.Identifier) {
	s[name] = struct{}{}
}

// Contains reports whether name is ignored for context lookup.
func (s IgnoreSet) Contains(name token.Identifier) bool {
	_, ok := s[name]
	return ok
}
