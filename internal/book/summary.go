package book

import (
	"net/url"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ParseSummary parses SUMMARY.md into the book's item sequence.
//
// The summary grammar follows mdBook: an optional title heading, bare
// links for unnumbered prefix and suffix chapters, level-one headings for
// part titles, nested lists for the numbered chapters and thematic breaks
// for separators. A list entry whose link has an empty destination is a
// draft chapter.
func ParseSummary(data []byte) ([]Item, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(data))

	p := &summaryParser{source: data}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			if !p.sawHeading && len(p.items) == 0 {
				// The conventional "# Summary" title, not a part.
				p.sawHeading = true
				continue
			}
			p.sawHeading = true
			p.items = append(p.items, Item{
				Kind:  ItemPartTitle,
				Title: p.text(n),
			})
		case *ast.ThematicBreak:
			p.items = append(p.items, Item{Kind: ItemSeparator})
		case *ast.List:
			p.parseList(n, 0, nil)
		case *ast.Paragraph:
			p.parseBareChapters(n)
		}
	}
	return p.items, nil
}

type summaryParser struct {
	source     []byte
	items      []Item
	sawHeading bool
	topCounter int
}

// parseList walks one level of the numbered chapter list. Numbering at the
// top level continues across lists so parts do not restart the count.
func (p *summaryParser) parseList(list *ast.List, depth int, prefix []int) {
	counter := 0
	for it := list.FirstChild(); it != nil; it = it.NextSibling() {
		item, ok := it.(*ast.ListItem)
		if !ok {
			continue
		}

		var number []int
		if depth == 0 {
			p.topCounter++
			number = []int{p.topCounter}
		} else {
			counter++
			number = append(append([]int{}, prefix...), counter)
		}

		var chapter *Chapter
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.List:
				childPrefix := number
				if chapter != nil {
					childPrefix = chapter.Number
				}
				p.parseList(c, depth+1, childPrefix)
			default:
				if chapter != nil {
					continue
				}
				if link := firstLink(c); link != nil {
					chapter = p.chapterFromLink(link, depth, number)
					p.items = append(p.items, Item{Kind: ItemChapter, Chapter: chapter})
				}
			}
		}
	}
}

// parseBareChapters handles prefix and suffix chapters: top-level links
// outside any list, which never receive section numbers.
func (p *summaryParser) parseBareChapters(para *ast.Paragraph) {
	_ = ast.Walk(para, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			ch := p.chapterFromLink(link, 0, nil)
			p.items = append(p.items, Item{Kind: ItemChapter, Chapter: ch})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}

func (p *summaryParser) chapterFromLink(link *ast.Link, depth int, number []int) *Chapter {
	dest := string(link.Destination)
	if decoded, err := url.PathUnescape(dest); err == nil {
		dest = decoded
	}
	ch := &Chapter{
		Name:  p.text(link),
		Depth: depth,
	}
	if dest != "" {
		ch.Path = normalizePath(dest)
		ch.Number = number
	}
	return ch
}

func (p *summaryParser) text(n ast.Node) string {
	var out []byte
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			out = append(out, util.UnescapePunctuations(t.Segment.Value(p.source))...)
		case *ast.String:
			out = append(out, t.Value...)
		}
		return ast.WalkContinue, nil
	})
	return string(out)
}

// firstLink returns the first link under n, or nil.
func firstLink(n ast.Node) *ast.Link {
	var found *ast.Link
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || found != nil {
			return ast.WalkContinue, nil
		}
		if link, ok := c.(*ast.Link); ok {
			found = link
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}
