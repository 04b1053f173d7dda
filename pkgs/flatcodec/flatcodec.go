// Package flatcodec implements a newline-delimited textual "flat"
// geometry format: one TaggedPoint per line, a 2D or 3D coordinate tuple,
// an optional tab-separated list of tag names.
package flatcodec

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/aledsdavies/lgen/internal/diag"
	"github.com/aledsdavies/lgen/pkgs/geom"
	"github.com/aledsdavies/lgen/pkgs/tag"
)

// Encode writes each record as one line: a parenthesised, comma-separated
// coordinate tuple, then a tab and space-separated canonical tag names if
// the record carries any.
func Encode(w io.Writer, records iter.Seq[tag.Point]) error {
	bw := bufio.NewWriter(w)
	for rec := range records {
		if _, err := bw.WriteString(formatCoord(rec.Coord)); err != nil {
			return err
		}
		if len(rec.Tags) > 0 {
			names := make([]string, len(rec.Tags))
			for i, t := range rec.Tags {
				names[i] = t.String()
			}
			if _, err := fmt.Fprintf(bw, "\t%s", strings.Join(names, " ")); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatCoord(c geom.Coord) string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Decode reads the textual flat format line by line. A line that is blank
// or whitespace-only is skipped silently; a line whose coordinate, tag
// names, or separator are malformed is skipped with a FlatRecordError
// diagnostic through sink, and decoding continues with the next line.
func Decode(r io.Reader, sink diag.Sink) iter.Seq[tag.Point] {
	s := diag.Or(sink)
	return func(yield func(tag.Point) bool) {
		scanner := bufio.NewScanner(r)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			rec, err := parseLine(line)
			if err != nil {
				s.Emit(diag.Entry{Level: diag.Warn, Code: diag.CodeFlatRecordError,
					Msg: fmt.Sprintf("line %d: %v", lineNo, err)})
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

func parseLine(line string) (tag.Point, error) {
	coordPart := line
	var tagsPart string
	if idx := strings.IndexByte(line, '\t'); idx >= 0 {
		coordPart = line[:idx]
		tagsPart = line[idx+1:]
	}

	coord, err := parseCoord(strings.TrimSpace(coordPart))
	if err != nil {
		return tag.Point{}, err
	}

	var tags tag.Stack
	if strings.TrimSpace(tagsPart) != "" {
		for _, name := range strings.Fields(tagsPart) {
			t, ok := tag.Parse(name)
			if !ok {
				return tag.Point{}, fmt.Errorf("unknown tag name %q", name)
			}
			tags = append(tags, t)
		}
	}

	return tag.Point{Coord: coord, Tags: tags}, nil
}

func parseCoord(s string) (geom.Coord, error) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("malformed coordinate tuple %q", s)
	}
	fields := strings.Split(s[1:len(s)-1], ",")
	if len(fields) < 2 || len(fields) > 3 {
		return nil, fmt.Errorf("coordinate tuple must have 2 or 3 components, got %d", len(fields))
	}
	coord := make(geom.Coord, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric coordinate component %q", f)
		}
		coord[i] = v
	}
	return coord, nil
}
