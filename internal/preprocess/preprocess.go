// Package preprocess turns one chapter of Markdown into a normalized
// document tree ready for native serialization: it parses the source into
// an event stream, builds a tree with raw HTML integrated, normalizes
// headings, resolves links against the book-wide index, inlines footnotes
// after cycle-checking them, applies hidden-code-line rules and annotates
// over-wide tables with column width hints.
package preprocess

import (
	"context"
	"fmt"

	"github.com/alnah/go-mdbook-pandoc/internal/book"
	"github.com/alnah/go-mdbook-pandoc/internal/diag"
)

// Options is the per-book configuration shared by all chapter runs.
type Options struct {
	Extensions Extensions
	Code       CodeOptions
	// Columns is the renderer's line budget; tables wider than this get
	// width hints.
	Columns    int
	Redirects  map[string]string
	HostedHTML string
	// CrossChapterFootnotes keeps references to definitions in other
	// chapters pending instead of degrading them to text.
	CrossChapterFootnotes bool
	Reporter              *diag.Reporter
}

// Result is the outcome of preprocessing one chapter.
type Result struct {
	Chapter *book.Chapter
	Doc     *Node
	// Footnotes are the chapter's definitions, used for the book-level
	// cross-chapter pass.
	Footnotes map[string]*Node
	TOC       []TOCEntry
}

// Chapter runs the full preprocessing pipeline on one chapter. It is safe
// to call concurrently for different chapters: the index and options are
// only read.
func Chapter(ctx context.Context, ch *book.Chapter, index *Index, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := NewStream([]byte(ch.Content), opts.Extensions)
	if err != nil {
		return nil, fmt.Errorf("chapter %s: %w", ch.Path, err)
	}
	doc, footnotes := buildTree(stream)

	toc := normalize(doc, ch)

	if opts.CrossChapterFootnotes {
		extractTextualRefs(doc)
		for _, def := range footnotes {
			extractTextualRefs(def)
		}
	}
	resolveFootnotes(doc, footnotes, ch.Path, opts.Reporter, opts.CrossChapterFootnotes)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolveLinks(doc, &LinkContext{
		Chapter:    ch.Path,
		Index:      index,
		Redirects:  opts.Redirects,
		HostedHTML: opts.HostedHTML,
		Reporter:   opts.Reporter,
	})
	processCodeBlocks(doc, opts.Code)
	annotateTableWidths(doc, opts.Columns)

	// Detached definitions get the same treatment: the book-level pass
	// inlines copies of them into other chapters as-is.
	for _, def := range footnotes {
		processCodeBlocks(def, opts.Code)
		annotateTableWidths(def, opts.Columns)
	}

	return &Result{Chapter: ch, Doc: doc, Footnotes: footnotes, TOC: toc}, nil
}
