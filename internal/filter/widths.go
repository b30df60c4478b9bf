// Package filter post-processes a serialized native document. The only
// filter today rewrites table column specs from the width-hint markers the
// serializer plants in front of over-wide tables.
package filter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/alnah/go-mdbook-pandoc/internal/native"
)

var (
	markerOpen  = []byte(`RawBlock (Format "html") "` + native.TableMarkerPrefix)
	markerClose = []byte(native.TableMarkerSuffix + `"`)
	tableStart  = []byte("Table (")
	tableHead   = []byte("(TableHead")
	widthHole   = []byte("ColWidthDefault")
)

// ApplyColumnWidths consumes every width-hint marker in doc: the marker
// block is deleted and the next table's ColWidthDefault entries are
// replaced with fractional widths proportional to the hinted character
// counts. Documents without markers are returned unchanged.
func ApplyColumnWidths(doc []byte) []byte {
	if !bytes.Contains(doc, markerOpen) {
		return doc
	}

	var out bytes.Buffer
	out.Grow(len(doc))
	rest := doc
	for {
		idx := bytes.Index(rest, markerOpen)
		if idx < 0 {
			out.Write(rest)
			return out.Bytes()
		}
		end := bytes.Index(rest[idx:], markerClose)
		if end < 0 {
			out.Write(rest)
			return out.Bytes()
		}
		end += idx + len(markerClose)

		widths := parseWidths(rest[idx+len(markerOpen) : end-len(markerClose)])
		out.Write(rest[:idx])
		rest = rest[end:]

		// Drop the separator that joined the marker to the table.
		if sep, ok := bytes.CutPrefix(rest, []byte("\n,")); ok {
			rest = sep
		} else if sep, ok := bytes.CutPrefix(rest, []byte(",")); ok {
			rest = sep
		}

		if widths != nil {
			rest = substituteWidths(rest, widths)
		}
	}
}

func parseWidths(spec []byte) []int {
	parts := strings.Split(string(spec), "|")
	widths := make([]int, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || w <= 0 {
			return nil
		}
		widths = append(widths, w)
	}
	return widths
}

// substituteWidths rewrites the column specs of the first table in rest.
func substituteWidths(rest []byte, widths []int) []byte {
	start := bytes.Index(rest, tableStart)
	if start < 0 {
		return rest
	}
	stop := bytes.Index(rest[start:], tableHead)
	if stop < 0 {
		return rest
	}
	stop += start

	total := 0
	for _, w := range widths {
		total += w
	}

	specs := rest[start:stop]
	var rebuilt bytes.Buffer
	rebuilt.Grow(len(specs) + 16*len(widths))
	for _, w := range widths {
		hole := bytes.Index(specs, widthHole)
		if hole < 0 {
			break
		}
		rebuilt.Write(specs[:hole])
		fraction := strconv.FormatFloat(float64(w)/float64(total), 'g', -1, 64)
		rebuilt.WriteString("(ColWidth " + fraction + ")")
		specs = specs[hole+len(widthHole):]
	}
	rebuilt.Write(specs)

	var out bytes.Buffer
	out.Grow(len(rest) + rebuilt.Len())
	out.Write(rest[:start])
	out.Write(rebuilt.Bytes())
	out.Write(rest[stop:])
	return out.Bytes()
}
