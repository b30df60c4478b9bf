package preprocess

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"
)

// frame is one open container during tree construction: either a Markdown
// container (owner set) or an HTML element opened by a raw fragment.
type frame struct {
	owner ast.Node
	tag   string
	node  *Node
}

type treeBuilder struct {
	source []byte
	doc    *Node
	stack  []frame

	// skip suppresses events below a node whose content was consumed
	// eagerly (code spans, raw HTML).
	skip ast.Node

	footnoteDefs   map[int]*Node
	footnoteLabels map[int]string
	footnoteRefs   map[*Node]int
}

// buildTree consumes the event stream and produces the chapter tree plus
// the chapter's footnote definitions keyed by label. Definitions are
// detached from the tree; references are inlined later by the footnote
// pass.
func buildTree(s *Stream) (*Node, map[string]*Node) {
	b := &treeBuilder{
		source:         s.Source,
		doc:            &Node{Kind: KindDocument},
		footnoteDefs:   make(map[int]*Node),
		footnoteLabels: make(map[int]string),
		footnoteRefs:   make(map[*Node]int),
	}

	for {
		ev, ok := s.Next()
		if !ok {
			break
		}
		if b.skip != nil {
			if !ev.Entering && ev.Node == b.skip {
				b.skip = nil
			}
			continue
		}
		if ev.Entering {
			b.enter(ev.Node)
		} else {
			b.leave(ev.Node)
		}
	}

	// Resolve reference labels now that all definitions are known.
	for ref, idx := range b.footnoteRefs {
		ref.Label = b.footnoteLabels[idx]
	}
	footnotes := make(map[string]*Node, len(b.footnoteDefs))
	for idx, def := range b.footnoteDefs {
		footnotes[b.footnoteLabels[idx]] = def
	}
	return b.doc, footnotes
}

func (b *treeBuilder) top() *Node {
	if len(b.stack) == 0 {
		return b.doc
	}
	return b.stack[len(b.stack)-1].node
}

func (b *treeBuilder) append(n *Node) {
	b.top().AppendChild(n)
}

func (b *treeBuilder) push(owner ast.Node, tag string, n *Node) {
	b.stack = append(b.stack, frame{owner: owner, tag: tag, node: n})
}

// open appends a container node and pushes it as the insertion point.
func (b *treeBuilder) open(owner ast.Node, n *Node) {
	b.append(n)
	b.push(owner, "", n)
}

func (b *treeBuilder) enter(n ast.Node) {
	switch n := n.(type) {
	case *ast.Document:
		// The builder's root stands in for the document node.

	case *ast.Heading:
		h := &Node{Kind: KindHeading, Level: n.Level}
		if id, ok := headingAttrID(n); ok {
			h.ID = id
		}
		for _, attr := range n.Attributes() {
			key := string(attr.Name)
			if key == "id" {
				continue
			}
			val := attrString(attr.Value)
			if key == "class" {
				h.Classes = append(h.Classes, strings.Fields(val)...)
				continue
			}
			h.Attrs = append(h.Attrs, [2]string{key, val})
		}
		b.open(n, h)

	case *ast.Paragraph:
		b.open(n, &Node{Kind: KindParagraph})

	case *ast.TextBlock:
		b.open(n, &Node{Kind: KindPlain})

	case *ast.Blockquote:
		b.open(n, &Node{Kind: KindBlockQuote})

	case *ast.List:
		l := &Node{Kind: KindList, Ordered: n.IsOrdered(), Start: n.Start}
		if l.Ordered && l.Start == 0 {
			l.Start = 1
		}
		b.open(n, l)

	case *ast.ListItem:
		b.open(n, &Node{Kind: KindItem})

	case *ast.FencedCodeBlock:
		code := &Node{Kind: KindCodeBlock, Text: b.lines(n)}
		if n.Info != nil {
			code.Language = string(n.Info.Segment.Value(b.source))
		}
		b.append(code)
		b.skip = n

	case *ast.CodeBlock:
		b.append(&Node{Kind: KindCodeBlock, Text: b.lines(n)})
		b.skip = n

	case *ast.ThematicBreak:
		b.append(&Node{Kind: KindThematicBreak})

	case *ast.Text:
		value := n.Segment.Value(b.source)
		if len(value) > 0 {
			b.append(&Node{Kind: KindText, Text: string(util.UnescapePunctuations(value))})
		}
		if n.HardLineBreak() {
			b.append(&Node{Kind: KindLineBreak})
		} else if n.SoftLineBreak() {
			b.append(&Node{Kind: KindSoftBreak})
		}

	case *ast.String:
		b.append(&Node{Kind: KindText, Text: string(n.Value)})

	case *ast.CodeSpan:
		b.append(&Node{Kind: KindCode, Text: b.childText(n)})
		b.skip = n

	case *ast.Emphasis:
		kind := KindEmph
		if n.Level >= 2 {
			kind = KindStrong
		}
		b.open(n, &Node{Kind: kind})

	case *ast.Link:
		b.open(n, &Node{
			Kind:   KindLink,
			Target: string(n.Destination),
			Title:  string(n.Title),
		})

	case *ast.AutoLink:
		url := string(n.URL(b.source))
		label := string(n.Label(b.source))
		target := url
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			target = "mailto:" + url
		}
		link := &Node{Kind: KindLink, Target: target}
		link.AppendChild(&Node{Kind: KindText, Text: label})
		b.append(link)

	case *ast.Image:
		b.open(n, &Node{
			Kind:   KindImage,
			Target: string(n.Destination),
			Title:  string(n.Title),
		})

	case *ast.RawHTML:
		var frag strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			frag.Write(seg.Value(b.source))
		}
		b.integrateHTML(frag.String())
		b.skip = n

	case *ast.HTMLBlock:
		var frag strings.Builder
		for i := 0; i < n.Lines().Len(); i++ {
			seg := n.Lines().At(i)
			frag.Write(seg.Value(b.source))
		}
		if n.HasClosure() {
			frag.Write(n.ClosureLine.Value(b.source))
		}
		b.integrateHTML(frag.String())
		b.skip = n

	case *east.Table:
		t := &Node{Kind: KindTable, SourceWidth: b.sourceWidth(n)}
		for _, a := range n.Alignments {
			t.Alignments = append(t.Alignments, alignment(a))
		}
		b.open(n, t)

	case *east.TableHeader:
		b.open(n, &Node{Kind: KindTableHead})

	case *east.TableRow:
		b.open(n, &Node{Kind: KindTableRow})

	case *east.TableCell:
		b.open(n, &Node{Kind: KindTableCell})

	case *east.Strikethrough:
		b.open(n, &Node{Kind: KindStrikethrough})

	case *east.TaskCheckBox:
		b.append(&Node{Kind: KindTaskMarker, Checked: n.IsChecked})

	case *east.FootnoteLink:
		ref := &Node{Kind: KindFootnoteReference}
		b.footnoteRefs[ref] = n.Index
		b.append(ref)

	case *east.Footnote:
		def := &Node{Kind: KindDocument}
		b.footnoteDefs[n.Index] = def
		b.footnoteLabels[n.Index] = string(n.Ref)
		b.push(n, "", def)

	case *east.FootnoteList:
		// Transparent: its Footnote children detach themselves.

	case *east.FootnoteBacklink:
		b.skip = n

	case *east.DefinitionList:
		b.open(n, &Node{Kind: KindDefinitionList})

	case *east.DefinitionTerm:
		b.open(n, &Node{Kind: KindDefinitionTerm})

	case *east.DefinitionDescription:
		b.open(n, &Node{Kind: KindDefinitionDetail})

	case *mathNode:
		b.append(&Node{
			Kind:    KindMath,
			Text:    string(n.content),
			Display: n.display,
		})

	case *supSubNode:
		kind := KindSuperscript
		if n.sub {
			kind = KindSubscript
		}
		span := &Node{Kind: kind}
		span.AppendChild(&Node{
			Kind: KindText,
			Text: strings.ReplaceAll(string(n.content), `\ `, " "),
		})
		b.append(span)
	}
}

func (b *treeBuilder) leave(n ast.Node) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].owner != n {
			continue
		}
		closed := b.stack[i].node
		b.stack = b.stack[:i]
		if closed.Kind == KindBlockQuote {
			detectAlert(closed)
		}
		return
	}
}

var alertPattern = regexp.MustCompile(`^\[!(NOTE|TIP|IMPORTANT|WARNING|CAUTION)\]$`)

// detectAlert recognizes GitHub-style alert quotes: a blockquote whose
// first paragraph starts with a marker like [!NOTE] on its own line.
func detectAlert(quote *Node) {
	if len(quote.Children) == 0 {
		return
	}
	para := quote.Children[0]
	if para.Kind != KindParagraph || len(para.Children) == 0 {
		return
	}
	first := para.Children[0]
	if first.Kind != KindText {
		return
	}
	m := alertPattern.FindStringSubmatch(strings.TrimSpace(first.Text))
	if m == nil {
		return
	}
	quote.Alert = strings.ToLower(m[1])

	rest := para.Children[1:]
	if len(rest) > 0 && (rest[0].Kind == KindSoftBreak || rest[0].Kind == KindLineBreak) {
		rest = rest[1:]
	}
	para.Children = rest
	if len(para.Children) == 0 {
		quote.Children = quote.Children[1:]
	}
}

// lines joins the source lines of a block node.
func (b *treeBuilder) lines(n ast.Node) string {
	var out strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		out.Write(seg.Value(b.source))
	}
	return out.String()
}

// childText collects the raw text of a node's direct content, used for
// code spans where child events are suppressed.
func (b *treeBuilder) childText(n ast.Node) string {
	var out strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			out.Write(t.Segment.Value(b.source))
		}
	}
	return out.String()
}

// sourceWidth returns the length in bytes of the longest raw source line
// spanned by a node, used to decide whether a table needs width hints.
func (b *treeBuilder) sourceWidth(n ast.Node) int {
	start, stop := -1, -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			if start < 0 || t.Segment.Start < start {
				start = t.Segment.Start
			}
			if t.Segment.Stop > stop {
				stop = t.Segment.Stop
			}
		}
		return ast.WalkContinue, nil
	})
	if start < 0 {
		return 0
	}
	for start > 0 && b.source[start-1] != '\n' {
		start--
	}
	for stop < len(b.source) && b.source[stop] != '\n' {
		stop++
	}
	widest := 0
	for _, line := range strings.Split(string(b.source[start:stop]), "\n") {
		if len(line) > widest {
			widest = len(line)
		}
	}
	return widest
}

func alignment(a east.Alignment) Alignment {
	switch a {
	case east.AlignLeft:
		return AlignLeft
	case east.AlignCenter:
		return AlignCenter
	case east.AlignRight:
		return AlignRight
	}
	return AlignNone
}

func attrString(v any) string {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	}
	return ""
}
