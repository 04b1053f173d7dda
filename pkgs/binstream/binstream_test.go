package binstream

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
		{Coord: geom.Coord{1, 2}, Tags: tag.Stack{tag.PolygonBegin, tag.ShellBegin}},
		{Coord: geom.Coord{3, 4, 5}, Tags: nil},
		{Coord: geom.Coord{6, 7}, Tags: tag.Stack{tag.ShellEnd, tag.PolygonEnd}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, seqOf(records...)))

	got := collect(Decode(&buf, nil))
	require.Equal(t, records, got)
}

func TestEncodeIsDeterministic(t *testing.T) {
	records := []tag.Point{
		{Coord: geom.Coord{1, 2}, Tags: tag.Stack{tag.MultiPointBegin}},
		{Coord: geom.Coord{3, 4}, Tags: tag.Stack{tag.MultiPointEnd}},
	}

	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, seqOf(records...)))
	require.NoError(t, Encode(&b, seqOf(records...)))
	require.Equal(t, a.Bytes(), b.Bytes())
}

func TestDecodeSkipsRecordWithUnknownTagName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, seqOf(
		tag.Point{Coord: geom.Coord{0, 0}},
		tag.Point{Coord: geom.Coord{1, 1}, Tags: tag.Stack{tag.MultiPointEnd}},
	)))

	// Splice in a record with a tag name that doesn't decode back to a
	// known tag.Tag by re-encoding by hand through the wire shape.
	var spliced bytes.Buffer
	require.NoError(t, encMode.NewEncoder(&spliced).Encode(wireRecord{
		Coord: geom.Coord{9, 9},
		Tags:  []string{"NOT_A_REAL_TAG"},
	}))
	spliced.Write(buf.Bytes())

	var collector diag.Collector
	got := collect(Decode(&spliced, &collector))

	require.Equal(t, []tag.Point{
		{Coord: geom.Coord{0, 0}},
		{Coord: geom.Coord{1, 1}, Tags: tag.Stack{tag.MultiPointEnd}},
	}, got)
	require.True(t, collector.Has(diag.CodeFlatRecordError))
}

func TestDecodeEmptyStreamYieldsNothing(t *testing.T) {
	got := collect(Decode(bytes.NewReader(nil), nil))
	require.Empty(t, got)
}

func TestDecodeStopsStreamOnCorruptData(t *testing.T) {
	var collector diag.Collector
	got := collect(Decode(bytes.NewReader([]byte{0xff, 0xff, 0xff}), &collector))

	require.Empty(t, got)
	require.True(t, collector.Has(diag.CodeFlatRecordError))
}
