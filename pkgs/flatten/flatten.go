// Package flatten encodes a geometry tree into a single linear sequence of
// (coordinate, tag-stack) records.
package flatten

import (
	"iter"

	"github.com/aledsdavies/lgen/pkgs/geom"
	"github.com/aledsdavies/lgen/pkgs/tag"
)

// Flatten converts an ordered sequence of geometries into the concatenation
// of each geometry's tagged-point stream, preserving input order. It is
// one-pass: the only buffering required anywhere in the walk is the single
// pending-record lookahead a wrap needs to attach the trailing END tag to
// the final record of a sub-stream.
func Flatten(geoms iter.Seq[geom.Geometry]) iter.Seq[tag.Point] {
	return func(yield func(tag.Point) bool) {
		for g := range geoms {
			if !flattenOne(g, yield) {
				return
			}
		}
	}
}

// flattenOne walks a single geometry, yielding its tagged points. It
// returns false as soon as yield does, so callers can early-exit a whole
// Flatten call from a partial consumption.
func flattenOne(g geom.Geometry, yield func(tag.Point) bool) bool {
	switch v := g.(type) {
	case geom.Point:
		return yield(tag.Point{Coord: v.Coord, Tags: nil})

	case geom.LineString:
		return emitRun(v.Coords, tag.LineStringBegin, yield)

	case geom.Polygon:
		return wrapPolygon(v, yield)

	case geom.MultiPoint:
		return wrapChildren(tag.MultiPointBegin, len(v.Points), func(i int) geom.Geometry { return v.Points[i] }, yield)

	case geom.MultiLineString:
		return wrapChildren(tag.MultiLineStringBegin, len(v.LineStrings), func(i int) geom.Geometry { return v.LineStrings[i] }, yield)

	case geom.MultiPolygon:
		return wrapChildren(tag.MultiPolygonBegin, len(v.Polygons), func(i int) geom.Geometry { return v.Polygons[i] }, yield)

	case geom.GeometryCollection:
		return wrapChildren(tag.CollectionBegin, len(v.Geometries), func(i int) geom.Geometry { return v.Geometries[i] }, yield)

	default:
		return true
	}
}

// emitRun yields a bare coordinate run (a LineString or a polygon ring):
// the first coord carries beginTag, the last carries beginTag.Matching(),
// and everything between carries an empty tagstack. A singleton run (first
// == last coordinate) carries both tags on its one record.
func emitRun(coords []geom.Coord, beginTag tag.Tag, yield func(tag.Point) bool) bool {
	endTag := beginTag.Matching()
	last := len(coords) - 1
	for i, c := range coords {
		var stack tag.Stack
		switch {
		case i == 0 && i == last:
			stack = tag.Stack{beginTag, endTag}
		case i == 0:
			stack = tag.Stack{beginTag}
		case i == last:
			stack = tag.Stack{endTag}
		}
		if !yield(tag.Point{Coord: c, Tags: stack}) {
			return false
		}
	}
	return true
}

// wrapState holds back exactly one emitted record so the wrap operator can
// attach the outer END tag once the stream's true last record is known,
// without buffering the whole sub-stream.
type wrapState struct {
	beginTag tag.Tag
	began    bool
	pending  *tag.Point
}

func (w *wrapState) push(pt tag.Point, yield func(tag.Point) bool) bool {
	if w.pending != nil {
		if !yield(*w.pending) {
			return false
		}
	}
	if !w.began {
		pt.Tags = tag.Prepend(w.beginTag, pt.Tags)
		w.began = true
	}
	cp := pt
	w.pending = &cp
	return true
}

func (w *wrapState) finish(yield func(tag.Point) bool) bool {
	if w.pending == nil {
		return true
	}
	last := *w.pending
	last.Tags = tag.Append(last.Tags, w.beginTag.Matching())
	return yield(last)
}

// wrapPolygon emits the shell ring, then each hole ring, then wraps the
// whole concatenation with POLYGON_BEGIN/POLYGON_END.
func wrapPolygon(p geom.Polygon, yield func(tag.Point) bool) bool {
	w := &wrapState{beginTag: tag.PolygonBegin}
	inner := func(pt tag.Point) bool { return w.push(pt, yield) }

	if !emitRun(p.Shell.Coords, tag.ShellBegin, inner) {
		return false
	}
	for _, h := range p.Holes {
		if !emitRun(h.Coords, tag.HoleBegin, inner) {
			return false
		}
	}
	return w.finish(yield)
}

// wrapChildren flattens each of n children (via get) in order, then wraps
// the concatenation with beginTag/beginTag.Matching() — the same wrap
// operator applied to MultiPoint, MultiLineString, MultiPolygon, and
// GeometryCollection alike.
func wrapChildren(beginTag tag.Tag, n int, get func(int) geom.Geometry, yield func(tag.Point) bool) bool {
	w := &wrapState{beginTag: beginTag}
	inner := func(pt tag.Point) bool { return w.push(pt, yield) }
	for i := 0; i < n; i++ {
		if !flattenOne(get(i), inner) {
			return false
		}
	}
	return w.finish(yield)
}
