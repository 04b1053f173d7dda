// Package tag defines the 16-symbol point-tag alphabet the flatten/unflatten
// codec uses to mark structural boundaries in a coordinate stream.
package tag

import "github.com/aledsdavies/lgen/pkgs/geom"

// Tag is one structural marker. Each BEGIN/END pair is adjacent in the
// iota sequence so END = BEGIN + 1 holds by construction; callers never
// need to look this up through a table.
type Tag uint8

const (
	LineStringBegin Tag = iota
	LineStringEnd

	PolygonBegin
	PolygonEnd
	ShellBegin
	ShellEnd
	HoleBegin
	HoleEnd

	MultiPointBegin
	MultiPointEnd

	MultiLineStringBegin
	MultiLineStringEnd

	MultiPolygonBegin
	MultiPolygonEnd

	CollectionBegin
	CollectionEnd
)

var names = [...]string{
	LineStringBegin:      "LINESTRING_BEGIN",
	LineStringEnd:        "LINESTRING_END",
	PolygonBegin:         "POLYGON_BEGIN",
	PolygonEnd:           "POLYGON_END",
	ShellBegin:           "SHELL_BEGIN",
	ShellEnd:             "SHELL_END",
	HoleBegin:            "HOLE_BEGIN",
	HoleEnd:              "HOLE_END",
	MultiPointBegin:      "MULTIPOINT_BEGIN",
	MultiPointEnd:        "MULTIPOINT_END",
	MultiLineStringBegin: "MULTILINESTRING_BEGIN",
	MultiLineStringEnd:   "MULTILINESTRING_END",
	MultiPolygonBegin:    "MULTIPOLYGON_BEGIN",
	MultiPolygonEnd:      "MULTIPOLYGON_END",
	CollectionBegin:      "COLLECTION_BEGIN",
	CollectionEnd:        "COLLECTION_END",
}

var byName map[string]Tag

func init() {
	byName = make(map[string]Tag, len(names))
	for t, n := range names {
		byName[n] = Tag(t)
	}
}

// String returns the canonical enum name, e.g. "POLYGON_BEGIN".
func (t Tag) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return "UNKNOWN_TAG"
}

// Parse looks up a Tag by its canonical name.
func Parse(name string) (Tag, bool) {
	t, ok := byName[name]
	return t, ok
}

// IsBegin reports whether t opens a structural run.
func (t Tag) IsBegin() bool {
	return t%2 == 0
}

// IsEnd reports whether t closes a structural run.
func (t Tag) IsEnd() bool {
	return t%2 == 1
}

// Matching returns the tag that closes (or opens) t's pair.
func (t Tag) Matching() Tag {
	if t.IsBegin() {
		return t + 1
	}
	return t - 1
}

// Stack is the ordered tag sequence attached to one record: outermost-first
// for BEGIN markers, innermost-first for END markers, so that concatenating
// every stack in stream order yields a balanced-brackets sequence.
type Stack []Tag

// Clone returns an independent copy of s.
func (s Stack) Clone() Stack {
	out := make(Stack, len(s))
	copy(out, s)
	return out
}

// Prepend returns a new stack with t placed before s's existing tags.
func Prepend(t Tag, s Stack) Stack {
	out := make(Stack, 0, len(s)+1)
	out = append(out, t)
	out = append(out, s...)
	return out
}

// Append returns a new stack with t placed after s's existing tags.
func Append(s Stack, t Tag) Stack {
	out := make(Stack, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, t)
	return out
}

// Point is one record of a flattened stream: a coordinate plus its tagstack.
type Point struct {
	Coord geom.Coord
	Tags  Stack
}
