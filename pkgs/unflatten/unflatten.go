// Package unflatten decodes a tagged-point stream back into the geometry
// tree flatten produced, using recursive descent with one-element
// lookahead.
package unflatten

import (
	"fmt"
	"iter"

	"github.com/aledsdavies/lgen/internal/iterutil"
	"github.com/aledsdavies/lgen/internal/lgerr"
	"github.com/aledsdavies/lgen/pkgs/geom"
	"github.com/aledsdavies/lgen/pkgs/tag"
)

// decoder wraps a Peekable[tag.Point] with a running record index, so a
// DecodeError can report the offending record's position.
type decoder struct {
	p   *iterutil.Peekable[tag.Point]
	pos int
}

func (d *decoder) peek() (tag.Point, bool) {
	return d.p.Peek()
}

func (d *decoder) next() (tag.Point, bool) {
	v, ok := d.p.Next()
	if ok {
		d.pos++
	}
	return v, ok
}

func (d *decoder) prepend(v tag.Point) {
	d.p.Prepend(v)
	d.pos--
}

// Unflatten converts a tagged-point stream back into the sequence of
// geometries it encodes, in the order their outermost BEGIN (or their bare
// Point) appeared. A malformed record yields a single (nil, error) pair and
// ends the sequence.
func Unflatten(records iter.Seq[tag.Point]) iter.Seq2[geom.Geometry, error] {
	return func(yield func(geom.Geometry, error) bool) {
		d := &decoder{p: iterutil.NewPeekable(records)}
		defer d.p.Stop()

		for d.p.HasNext() {
			g, _, err := decodeSingle(d)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(g, nil) {
				return
			}
		}
	}
}

// decodeSingle returns the next geometry and the tagstack remaining after
// consuming whatever that geometry needed, for an enclosing multipart
// frame to keep unwrapping.
func decodeSingle(d *decoder) (geom.Geometry, tag.Stack, error) {
	pt, ok := d.peek()
	if !ok {
		return nil, nil, lgerr.DecodeError(d.pos, "unexpected end of stream")
	}

	first, hasFirst := outermostTag(pt.Tags)
	switch {
	case !hasFirst || first == tag.MultiPointEnd || first == tag.CollectionEnd:
		consumed, _ := d.next()
		return geom.Point{Coord: consumed.Coord}, consumed.Tags, nil

	case first == tag.LineStringBegin || first == tag.ShellBegin || first == tag.HoleBegin:
		return decodeCoordSeq(d)

	default:
		return decodeMultipart(d)
	}
}

func outermostTag(s tag.Stack) (tag.Tag, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[0], true
}

// decodeCoordSeq decodes a LineString or a polygon ring: consume records
// with an empty tagstack, stopping at the first record whose tagstack is
// non-empty (the closing coordinate, whose first tag is this run's own
// matching END). The rest of that record's tagstack is the remainder.
func decodeCoordSeq(d *decoder) (geom.Geometry, tag.Stack, error) {
	first, ok := d.next()
	if !ok {
		return nil, nil, lgerr.DecodeError(d.pos, "expected coordinate, found end of stream")
	}
	coords := []geom.Coord{first.Coord}

	// A single-coordinate run carries both its begin and matching end tag
	// on this one record (flatten's emitRun singleton case): no second
	// physical record follows, so the remainder is whatever comes after
	// that end tag in this same record's stack.
	beginTag := first.Tags[0]
	if endTag := beginTag.Matching(); len(first.Tags) > 1 && first.Tags[1] == endTag {
		return geom.LineString{Coords: coords}, first.Tags[2:], nil
	}

	cur, ok := d.next()
	if !ok {
		return nil, nil, lgerr.DecodeError(d.pos, "unterminated coordinate run")
	}
	for len(cur.Tags) == 0 {
		coords = append(coords, cur.Coord)
		cur, ok = d.next()
		if !ok {
			return nil, nil, lgerr.DecodeError(d.pos, "unterminated coordinate run")
		}
	}
	coords = append(coords, cur.Coord)

	remainder := cur.Tags[1:]
	return geom.LineString{Coords: coords}, remainder, nil
}

// decodeMultipart decodes a POLYGON_BEGIN, MULTIPOINT_BEGIN,
// MULTILINESTRING_BEGIN, MULTIPOLYGON_BEGIN, or COLLECTION_BEGIN run: peel
// the outer tag off the head record, put the rest back, then repeatedly
// decode children until a child's remainder's outermost tag is this frame's
// matching END.
//
// Decoding a child never strips anything off its own remainder beyond what
// it needed for itself; it is always this loop's unwrap of the child's
// remainder that consumes exactly one more layer of nesting. That single
// unwrap-per-iteration, never per base-case Point, is what lets up to three
// simultaneously stacked begins on one coordinate close correctly one frame
// at a time.
func decodeMultipart(d *decoder) (geom.Geometry, tag.Stack, error) {
	head, ok := d.next()
	if !ok {
		return nil, nil, lgerr.DecodeError(d.pos, "expected multipart begin, found end of stream")
	}
	beginTag := head.Tags[0]
	endTag := beginTag.Matching()
	d.prepend(tag.Point{Coord: head.Coord, Tags: head.Tags[1:]})

	var primitives []geom.Geometry
	var remainder tag.Stack
	for {
		child, childRemainder, err := decodeSingle(d)
		if err != nil {
			return nil, nil, err
		}
		primitives = append(primitives, child)

		outer, hasOuter := outermostTag(childRemainder)
		if hasOuter {
			childRemainder = childRemainder[1:]
		}
		if !hasOuter {
			continue
		}
		if outer != endTag {
			return nil, nil, lgerr.DecodeError(d.pos,
				fmt.Sprintf("expected %s to close %s, found %s", endTag, beginTag, outer))
		}
		remainder = childRemainder
		break
	}

	geometry, err := assemble(beginTag, primitives)
	if err != nil {
		return nil, nil, lgerr.Wrap(lgerr.CategoryDecode, err.Error(), beginTag.String(), nil)
	}
	return geometry, remainder, nil
}

// assemble reconstructs the concrete geometry for an outer begin tag from
// its decoded children, validating that each child has the shape that
// variant requires — a MULTIPOINT_BEGIN child that isn't Point-shaped is a
// DecodeError, and the same check applies to every other multipart variant.
func assemble(beginTag tag.Tag, primitives []geom.Geometry) (geom.Geometry, error) {
	switch beginTag {
	case tag.PolygonBegin:
		if len(primitives) == 0 {
			return nil, fmt.Errorf("polygon has no shell ring")
		}
		shell, ok := primitives[0].(geom.LineString)
		if !ok {
			return nil, fmt.Errorf("polygon shell is not ring-shaped (got %T)", primitives[0])
		}
		// holes stays nil for a hole-less polygon, as flatten's input had it.
		var holes []geom.Ring
		for _, p := range primitives[1:] {
			ring, ok := p.(geom.LineString)
			if !ok {
				return nil, fmt.Errorf("polygon hole is not ring-shaped (got %T)", p)
			}
			holes = append(holes, geom.Ring{Coords: ring.Coords})
		}
		return geom.Polygon{Shell: geom.Ring{Coords: shell.Coords}, Holes: holes}, nil

	case tag.MultiPointBegin:
		points := make([]geom.Point, 0, len(primitives))
		for _, p := range primitives {
			pt, ok := p.(geom.Point)
			if !ok {
				return nil, fmt.Errorf("multipoint child is not point-shaped (got %T)", p)
			}
			points = append(points, pt)
		}
		return geom.MultiPoint{Points: points}, nil

	case tag.MultiLineStringBegin:
		lines := make([]geom.LineString, 0, len(primitives))
		for _, p := range primitives {
			ls, ok := p.(geom.LineString)
			if !ok {
				return nil, fmt.Errorf("multilinestring child is not linestring-shaped (got %T)", p)
			}
			lines = append(lines, ls)
		}
		return geom.MultiLineString{LineStrings: lines}, nil

	case tag.MultiPolygonBegin:
		polys := make([]geom.Polygon, 0, len(primitives))
		for _, p := range primitives {
			poly, ok := p.(geom.Polygon)
			if !ok {
				return nil, fmt.Errorf("multipolygon child is not polygon-shaped (got %T)", p)
			}
			polys = append(polys, poly)
		}
		return geom.MultiPolygon{Polygons: polys}, nil

	case tag.CollectionBegin:
		return geom.GeometryCollection{Geometries: primitives}, nil

	default:
		return nil, fmt.Errorf("unrecognised outer begin tag %s", beginTag)
	}
}
