// Package fingerprint computes short content digests of a parsed rule
// table and of a flattened point stream, so two runs can be compared for
// equality without diffing their full output.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"hash"
	"iter"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/lgen/pkgs/rule"
	"github.com/aledsdavies/lgen/pkgs/tag"
	"github.com/aledsdavies/lgen/pkgs/token"
)

// displayLen is how many hex characters of the 32-byte digest are kept for
// log display; full collision resistance isn't the point here, telling two
// runs apart at a glance is.
const displayLen = 16

func newDigest() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("fingerprint: blake2b-256 unavailable: %v", err))
	}
	return h
}

func digestString(h hash.Hash) string {
	sum := hex.EncodeToString(h.Sum(nil))
	if len(sum) > displayLen {
		return sum[:displayLen]
	}
	return sum
}

// RuleTable digests t's rules LHS by LHS in sorted name order: LHS name,
// then each of that LHS's rules in insertion order (context/probability/
// production), so two tables built from the same rules with their LHS
// names added in a different order still hash the same, while two tables
// that differ only in rule priority (which affects dispatch order) hash
// differently.
func RuleTable(t *rule.Table) string {
	h := newDigest()
	names := t.Names()
	slices.Sort(names)
	for _, name := range names {
		mappings, _ := t.Lookup(name)
		fmt.Fprintf(h, "lhs:%s\n", name)
		for _, m := range mappings {
			fmt.Fprintf(h, "  left:%s right:%s prob:%s production:",
				contextName(m.LeftContext), contextName(m.RightContext), probabilityText(m.Probability))
			for _, tok := range m.Production {
				fmt.Fprintf(h, "%s,", tok.Name)
			}
			fmt.Fprintln(h)
		}
	}
	return digestString(h)
}

func contextName(t *token.Token) string {
	if t == nil {
		return "-"
	}
	return string(t.Name)
}

func probabilityText(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *p)
}

// Points digests a tagged-point stream in order: each record's coordinate
// and tagstack, so two flattenings of equal geometry trees hash the same.
func Points(records iter.Seq[tag.Point]) string {
	h := newDigest()
	for rec := range records {
		fmt.Fprintf(h, "%s|", rec.Coord)
		for _, t := range rec.Tags {
			fmt.Fprintf(h, "%s,", t)
		}
		fmt.Fprintln(h)
	}
	return digestString(h)
}
