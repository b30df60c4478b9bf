package preprocess

import (
	"errors"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ErrMalformedSource reports chapter content that cannot be parsed at all.
var ErrMalformedSource = errors.New("preprocess: source is not valid UTF-8")

// Extensions selects the Markdown dialect features active during parsing.
type Extensions struct {
	// Math enables dollar-delimited math spans ($...$ and $$...$$).
	Math bool
	// MathEmulation enables LaTeX-delimited math spans (\(...\) and
	// \[...\]) plus $$...$$ display spans. Single-dollar spans stay
	// literal. Ignored when Math is set: the native extension takes
	// precedence.
	MathEmulation bool
	Superscript   bool
	Subscript     bool
}

// newMarkdown builds a goldmark parser for the configured dialect.
// GFM (tables, strikethrough, autolinks, task lists), footnotes and
// definition lists are always on, matching the source dialect.
func newMarkdown(ext Extensions) goldmark.Markdown {
	extenders := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		extension.DefinitionList,
	}
	switch {
	case ext.Math:
		extenders = append(extenders, &mathExtension{dollar: true, doubleDollar: true})
	case ext.MathEmulation:
		extenders = append(extenders, &mathExtension{latex: true, doubleDollar: true})
	}
	if ext.Superscript || ext.Subscript {
		extenders = append(extenders, &supSubExtension{
			superscript: ext.Superscript,
			subscript:   ext.Subscript,
		})
	}
	return goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithParserOptions(parser.WithAttribute()),
	)
}

// Event is one step of a depth-first traversal over the parsed document:
// each node is reported once entering and once leaving.
type Event struct {
	Node     ast.Node
	Entering bool
}

// Stream is a lazy, single-pass iterator over the parse events of one
// chapter. It is not restartable; create a new Stream to traverse again.
type Stream struct {
	// Source is the chapter text the event nodes reference.
	Source []byte

	stack []Event
}

// NewStream parses source and returns an event iterator over it.
func NewStream(source []byte, ext Extensions) (*Stream, error) {
	if !utf8.Valid(source) {
		return nil, ErrMalformedSource
	}
	doc := newMarkdown(ext).Parser().Parse(text.NewReader(source))
	return &Stream{
		Source: source,
		stack:  []Event{{Node: doc, Entering: true}},
	}, nil
}

// Next returns the next event, or ok=false when the stream is exhausted.
func (s *Stream) Next() (Event, bool) {
	if len(s.stack) == 0 {
		return Event{}, false
	}
	ev := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if ev.Entering {
		s.stack = append(s.stack, Event{Node: ev.Node, Entering: false})
		for c := ev.Node.LastChild(); c != nil; c = c.PreviousSibling() {
			s.stack = append(s.stack, Event{Node: c, Entering: true})
		}
	}
	return ev, true
}
