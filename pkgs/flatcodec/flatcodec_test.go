package flatcodec

import (
	"bytes"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/lgen/internal/diag"
	"github.com/aledsdavies/lgen/pkgs/geom"
	"github.com/aledsdavies/lgen/pkgs/tag"
)

func seqOf(pts ...tag.Point) iter.Seq[tag.Point] {
	return func(yield func(tag.Point) bool) {
		for _, p := range pts {
			if !yield(p) {
				return
			}
		}
	}
}

func collect(seq iter.Seq[tag.Point]) []tag.Point {
	var out []tag.Point
	for p := range seq {
		out = append(out, p)
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []tag.Point{
		{Coord: geom.Coord{1, 2}, Tags: tag.Stack{tag.LineStringBegin}},
		{Coord: geom.Coord{3, 4}, Tags: nil},
		{Coord: geom.Coord{5, 6, 7}, Tags: tag.Stack{tag.LineStringEnd, tag.PolygonEnd}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, seqOf(records...)))

	got := collect(Decode(&buf, nil))
	require.Equal(t, records, got)
}

func TestEncodeFormatsCoordAndTags(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, seqOf(tag.Point{
		Coord: geom.Coord{1, 2.5},
		Tags:  tag.Stack{tag.PolygonBegin, tag.ShellBegin},
	})))

	require.Equal(t, "(1,2.5)\tPOLYGON_BEGIN SHELL_BEGIN\n", buf.String())
}

func TestDecodeSkipsBlankLines(t *testing.T) {
	input := "(0,0)\n\n   \n(1,1)\tLINESTRING_END\n"
	got := collect(Decode(bytes.NewBufferString(input), nil))

	require.Equal(t, []tag.Point{
		{Coord: geom.Coord{0, 0}},
		{Coord: geom.Coord{1, 1}, Tags: tag.Stack{tag.LineStringEnd}},
	}, got)
}

func TestDecodeSkipsMalformedLineAndWarns(t *testing.T) {
	input := "(0,0)\nnot-a-record\n(1,1)\tUNKNOWN_TAG\n(2,2)\n"
	var collector diag.Collector

	got := collect(Decode(bytes.NewBufferString(input), &collector))

	require.Equal(t, []tag.Point{
		{Coord: geom.Coord{0, 0}},
		{Coord: geom.Coord{2, 2}},
	}, got)
	require.True(t, collector.Has(diag.CodeFlatRecordError))
	require.Len(t, collector.Entries, 2)
}

func TestParseCoordRejectsWrongArity(t *testing.T) {
	_, err := parseCoord("(1)")
	require.Error(t, err)

	_, err = parseCoord("(1,2,3,4)")
	require.Error(t, err)
}

func TestParseCoordRejectsMissingParens(t *testing.T) {
	_, err := parseCoord("1,2")
	require.Error(t, err)
}
