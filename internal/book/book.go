// Package book loads an mdBook-style source tree: a SUMMARY.md table of
// contents under the source directory, plus one Markdown file per chapter.
package book

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

var (
	ErrMissingSummary = errors.New("book: SUMMARY.md not found")
	ErrMissingChapter = errors.New("book: chapter file not found")
)

// Chapter is one content-bearing entry of the book.
type Chapter struct {
	// Name is the link text from SUMMARY.md.
	Name string
	// Path is the chapter source path relative to the source directory,
	// slash-separated. Empty for draft chapters, which have no file yet.
	Path string
	// Content is the raw Markdown source. Empty for draft chapters.
	Content string
	// Depth is the nesting depth in SUMMARY.md; top-level chapters are 0.
	Depth int
	// Number is the hierarchical section number, nil for unnumbered
	// chapters (prefix, suffix and draft entries).
	Number []int
}

// Numbered reports whether the chapter participates in section numbering.
func (c *Chapter) Numbered() bool {
	return len(c.Number) > 0
}

// ItemKind discriminates the entry kinds of a summary.
type ItemKind uint8

const (
	ItemChapter ItemKind = iota
	ItemPartTitle
	ItemSeparator
)

// Item is one entry of the book in reading order.
type Item struct {
	Kind    ItemKind
	Chapter *Chapter // set for ItemChapter
	Title   string   // set for ItemPartTitle
}

// Book is a fully loaded book: the parsed summary with chapter contents
// read from disk.
type Book struct {
	// Root is the book root directory.
	Root string
	// SourceDir is the directory chapter paths are relative to.
	SourceDir string
	Items     []Item
}

// Chapters returns the book's chapters in reading order.
func (b *Book) Chapters() []*Chapter {
	var out []*Chapter
	for _, it := range b.Items {
		if it.Kind == ItemChapter {
			out = append(out, it.Chapter)
		}
	}
	return out
}

// Load reads SUMMARY.md under root/source and the chapter files it names.
// A summary entry pointing at a missing file is an error; draft chapters
// (entries without a path) are kept with empty content.
func Load(root, source string) (*Book, error) {
	if source == "" {
		source = "src"
	}
	srcDir := filepath.Join(root, source)

	data, err := os.ReadFile(filepath.Join(srcDir, "SUMMARY.md"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSummary, srcDir)
		}
		return nil, fmt.Errorf("book: reading summary: %w", err)
	}

	items, err := ParseSummary(data)
	if err != nil {
		return nil, err
	}

	b := &Book{Root: root, SourceDir: srcDir, Items: items}
	for _, ch := range b.Chapters() {
		if ch.Path == "" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(ch.Path)))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrMissingChapter, ch.Path)
			}
			return nil, fmt.Errorf("book: reading chapter %s: %w", ch.Path, err)
		}
		ch.Content = string(content)
	}
	return b, nil
}

// normalizePath cleans a summary link destination into a canonical
// slash-separated chapter path.
func normalizePath(dest string) string {
	p := path.Clean(dest)
	if p == "." {
		return ""
	}
	return p
}
