package preprocess

import (
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-mdbook-pandoc/internal/book"
)

// GFMIdentifier derives a heading identifier from heading text the way
// GitHub does: spaces become hyphens, letters and digits are lowercased
// and kept along with hyphens and underscores, everything else is dropped.
func GFMIdentifier(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// chapterAnchor is the fallback identifier for a chapter without headings.
func chapterAnchor(path string) string {
	return slug.Make(strings.TrimSuffix(path, ".md"))
}

// partAnchor is the identifier for a part-title heading.
func partAnchor(title string) string {
	return "part-" + slug.Make(title)
}

// Index maps chapter source paths to the identifier links to that chapter
// resolve to: the primary heading's identifier, or a synthesized chapter
// anchor when the chapter has no headings. It is built once before
// chapters are processed and is read-only afterwards, so concurrent
// lookups are safe.
type Index struct {
	anchors map[string]string
}

// BuildIndex scans every chapter's headings and returns the book-wide
// path-to-anchor map. Draft chapters (no source path) are skipped.
func BuildIndex(chapters []*book.Chapter, ext Extensions) (*Index, error) {
	ix := &Index{anchors: make(map[string]string, len(chapters))}
	for _, ch := range chapters {
		if ch.Path == "" {
			continue
		}
		anchor, err := primaryAnchor([]byte(ch.Content), ext)
		if err != nil {
			return nil, err
		}
		if anchor == "" {
			anchor = chapterAnchor(ch.Path)
		}
		ix.anchors[ch.Path] = anchor
	}
	return ix, nil
}

// Anchor returns the fragment identifier links to path should use.
func (ix *Index) Anchor(path string) (string, bool) {
	a, ok := ix.anchors[path]
	return a, ok
}

// Has reports whether path is a known chapter.
func (ix *Index) Has(path string) bool {
	_, ok := ix.anchors[path]
	return ok
}

// primaryAnchor parses just far enough to find the first heading and
// returns its identifier, or "" when the chapter has none.
func primaryAnchor(source []byte, ext Extensions) (string, error) {
	stream, err := NewStream(source, ext)
	if err != nil {
		return "", err
	}
	for {
		ev, ok := stream.Next()
		if !ok {
			return "", nil
		}
		if !ev.Entering || ev.Node.Kind() != ast.KindHeading {
			continue
		}
		if id, ok := headingAttrID(ev.Node); ok {
			return id, nil
		}
		return GFMIdentifier(astText(ev.Node, stream.Source)), nil
	}
}

// headingAttrID returns an explicit {#id} attribute if the heading has one.
func headingAttrID(n ast.Node) (string, bool) {
	v, ok := n.Attribute([]byte("id"))
	if !ok {
		return "", false
	}
	switch id := v.(type) {
	case []byte:
		return string(id), true
	case string:
		return id, true
	}
	return "", false
}

// astText collects the plain text under a parsed node, resolving
// backslash escapes.
func astText(n ast.Node, source []byte) string {
	var out []byte
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			out = append(out, util.UnescapePunctuations(t.Segment.Value(source))...)
			if t.SoftLineBreak() || t.HardLineBreak() {
				out = append(out, ' ')
			}
		case *ast.String:
			out = append(out, t.Value...)
		case *ast.CodeSpan:
			// Children are Text nodes; handled on descent.
		case *mathNode:
			out = append(out, t.content...)
			return ast.WalkSkipChildren, nil
		case *supSubNode:
			out = append(out, t.content...)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return string(out)
}
