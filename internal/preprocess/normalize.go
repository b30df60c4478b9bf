package preprocess

import (
	"fmt"

	"github.com/alnah/go-mdbook-pandoc/internal/book"
)

// TOCEntry is one table-of-contents entry derived from a normalized
// heading.
type TOCEntry struct {
	Level int
	Title string
	ID    string
}

// normalize adjusts the chapter's headings for inclusion in a single
// concatenated document:
//
//   - heading levels are deepened by the chapter's nesting depth, capped
//     at level six;
//   - every heading receives a stable identifier (an explicit attribute
//     wins, otherwise the GitHub identifier of its text), deduplicated
//     within the chapter;
//   - only the first heading of a numbered chapter keeps section
//     numbering and TOC listing; all other headings are marked
//     unnumbered and unlisted;
//   - a chapter with no headings gets an invisible anchor so links to it
//     still resolve.
//
// It returns the chapter's table-of-contents entries.
func normalize(doc *Node, ch *book.Chapter) []TOCEntry {
	var headings []*Node
	Walk(doc, func(n *Node) {
		if n.Kind == KindHeading {
			headings = append(headings, n)
		}
	})

	if len(headings) == 0 {
		if ch.Path != "" {
			anchor := &Node{Kind: KindHTMLElement, Tag: "span", ID: chapterAnchor(ch.Path)}
			plain := &Node{Kind: KindPlain}
			plain.AppendChild(anchor)
			doc.Children = append([]*Node{plain}, doc.Children...)
		}
		return nil
	}

	used := make(map[string]bool)
	var toc []TOCEntry
	for i, h := range headings {
		h.Level = min(h.Level+ch.Depth, 6)

		if h.ID == "" {
			h.ID = GFMIdentifier(PlainText(h))
		}
		if h.ID == "" {
			h.ID = "section"
		}
		if used[h.ID] {
			base := h.ID
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s-%d", base, n)
				if !used[candidate] {
					h.ID = candidate
					break
				}
			}
		}
		used[h.ID] = true

		h.Primary = i == 0
		if !h.Primary {
			addClass(h, "unnumbered")
			addClass(h, "unlisted")
		} else if !ch.Numbered() {
			// Prefix and suffix chapters stay out of section numbering
			// but still appear in the table of contents.
			addClass(h, "unnumbered")
		}

		if !hasClass(h, "unlisted") {
			toc = append(toc, TOCEntry{Level: h.Level, Title: PlainText(h), ID: h.ID})
		}
	}
	return toc
}

// PartHeading builds the level-one heading emitted for a part title.
// Parts sit outside section numbering and the chapter TOC.
func PartHeading(title string) *Node {
	h := &Node{
		Kind:    KindHeading,
		Level:   1,
		ID:      partAnchor(title),
		Classes: []string{"part", "unnumbered", "unlisted"},
	}
	h.AppendChild(&Node{Kind: KindText, Text: title})
	return h
}

func addClass(n *Node, class string) {
	if !hasClass(n, class) {
		n.Classes = append(n.Classes, class)
	}
}

func hasClass(n *Node, class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}
