// Package binstream offers a binary alternative to pkgs/flatcodec's textual
// format: the same TaggedPoint stream, encoded as a sequence of CBOR data
// items, for piping point clouds between processes without text parsing
// overhead.
package binstream

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/fxamacker/cbor/v2"

	"github.com/aledsdavies/lgen/internal/diag"
	"github.com/aledsdavies/lgen/pkgs/geom"
	"github.com/aledsdavies/lgen/pkgs/tag"
)

// wireRecord is the CBOR-visible shape of a tag.Point: plain field names so
// the format is stable across Go-internal renames of the domain types.
type wireRecord struct {
	Coord geom.Coord `cbor:"coord"`
	Tags  []string   `cbor:"tags,omitempty"`
}

// encMode is the deterministic CBOR encoding used throughout: canonical
// (RFC 8949 §4.2.1) map-key and array ordering, so two encodings of the
// same stream are byte-identical.
var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("binstream: invalid canonical CBOR options: %v", err))
	}
	return mode
}

// Encode writes records as a concatenation of CBOR data items, one per
// record, in stream order.
func Encode(w io.Writer, records iter.Seq[tag.Point]) error {
	enc := encMode.NewEncoder(w)
	for rec := range records {
		wr := wireRecord{Coord: rec.Coord}
		if len(rec.Tags) > 0 {
			wr.Tags = make([]string, len(rec.Tags))
			for i, t := range rec.Tags {
				wr.Tags[i] = t.String()
			}
		}
		if err := enc.Encode(wr); err != nil {
			return fmt.Errorf("binstream: encode record: %w", err)
		}
	}
	return nil
}

// Decode reads a concatenation of CBOR data items written by Encode. A
// record with an unknown tag name is skipped with a FlatRecordError
// diagnostic, matching the textual codec's soft-skip policy for malformed
// individual records; a record that is not valid CBOR at all ends the
// stream.
func Decode(r io.Reader, sink diag.Sink) iter.Seq[tag.Point] {
	s := diag.Or(sink)
	return func(yield func(tag.Point) bool) {
		dec := cbor.NewDecoder(r)
		n := 0
		for {
			var wr wireRecord
			err := dec.Decode(&wr)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				s.Emit(diag.Entry{Level: diag.Warn, Code: diag.CodeFlatRecordError,
					Msg: fmt.Sprintf("record %d: %v", n, err)})
				return
			}
			n++

			tags, ok := decodeTags(wr.Tags)
			if !ok {
				s.Emit(diag.Entry{Level: diag.Warn, Code: diag.CodeFlatRecordError,
					Msg: fmt.Sprintf("record %d: unknown tag name in %v", n-1, wr.Tags)})
				continue
			}
			if !yield(tag.Point{Coord: wr.Coord, Tags: tags}) {
				return
			}
		}
	}
}

func decodeTags(names []string) (tag.Stack, bool) {
	if len(names) == 0 {
		return nil, true
	}
	out := make(tag.Stack, len(names))
	for i, n := range names {
		t, ok := tag.Parse(n)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}
