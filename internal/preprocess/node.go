package preprocess

// Kind discriminates the node variants of the intermediate document tree.
type Kind uint8

const (
	KindDocument Kind = iota

	// Block nodes.
	KindHeading
	KindParagraph
	KindPlain
	KindBlockQuote
	KindList
	KindItem
	KindCodeBlock
	KindThematicBreak
	KindTable
	KindTableHead
	KindTableRow
	KindTableCell
	KindDefinitionList
	KindDefinitionTerm
	KindDefinitionDetail
	KindRawBlock

	// Inline nodes.
	KindText
	KindCode
	KindEmph
	KindStrong
	KindStrikethrough
	KindSuperscript
	KindSubscript
	KindLink
	KindImage
	KindSoftBreak
	KindLineBreak
	KindMath
	KindRawInline
	KindFootnoteReference
	KindNote
	KindTaskMarker

	// HTML nodes integrated from raw fragments. An element is block or
	// inline depending on its tag.
	KindHTMLElement
	KindHTMLComment
)

// Alignment is a table column alignment.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Node is one node of the intermediate tree built from the Markdown event
// stream. A single struct with a Kind discriminator keeps ownership simple:
// every node has exactly one parent and payload fields are meaningful only
// for the kinds that document them.
type Node struct {
	Kind     Kind
	Children []*Node

	// Heading: level after depth adjustment, identifier, extra classes
	// and key-value attributes. Primary marks the first heading of a
	// chapter.
	Level   int
	ID      string
	Classes []string
	Attrs   [][2]string
	Primary bool

	// List.
	Ordered bool
	Start   int

	// Text, Code, CodeBlock, Math, RawBlock, RawInline, HTMLComment.
	Text     string
	Language string
	Format   string

	// Math.
	Display bool

	// Link, Image.
	Target string
	Title  string

	// Table: column alignments and, when a table is too wide for the
	// renderer's column budget, per-column source character widths.
	// SourceWidth is the longest raw source line the table spans.
	Alignments  []Alignment
	Widths      []int
	SourceWidth int

	// BlockQuote: alert kind ("note", "warning", ...) when the quote is a
	// GitHub-style alert, empty otherwise.
	Alert string

	// HTMLElement.
	Tag string

	// FootnoteReference, Note.
	Label string

	// TaskMarker.
	Checked bool
}

// AppendChild adds c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	n.Children = append(n.Children, c)
}

// Clone deep-copies n and its subtree. Footnote definitions are cloned
// once per reference site, so every node keeps exactly one parent and the
// mutating passes touch each copy exactly once.
func (n *Node) Clone() *Node {
	c := *n
	c.Classes = append([]string(nil), n.Classes...)
	c.Attrs = append([][2]string(nil), n.Attrs...)
	c.Alignments = append([]Alignment(nil), n.Alignments...)
	c.Widths = append([]int(nil), n.Widths...)
	c.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}

// IsInline reports whether a node of this kind belongs to inline content.
// HTML elements are decided per tag, not per kind.
func (k Kind) IsInline() bool {
	switch k {
	case KindText, KindCode, KindEmph, KindStrong, KindStrikethrough,
		KindSuperscript, KindSubscript, KindLink, KindImage,
		KindSoftBreak, KindLineBreak, KindMath, KindRawInline,
		KindFootnoteReference, KindNote, KindTaskMarker, KindHTMLComment:
		return true
	}
	return false
}

// blockTags lists HTML tags treated as block-level when integrating raw
// HTML fragments into the tree.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"center": true, "dd": true, "details": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "summary": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true,
	"tr": true, "ul": true,
}

// IsBlock reports whether the node renders as a block.
func (n *Node) IsBlock() bool {
	if n.Kind == KindHTMLElement {
		return blockTags[n.Tag]
	}
	return !n.Kind.IsInline()
}

// Walk visits n and its descendants in depth-first order. The visitor may
// mutate the visited node but not its siblings.
func Walk(n *Node, visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// PlainText concatenates the text content of n's subtree. Used for heading
// identifiers and table-of-contents titles.
func PlainText(n *Node) string {
	var out []byte
	Walk(n, func(c *Node) {
		switch c.Kind {
		case KindText, KindCode, KindMath:
			out = append(out, c.Text...)
		case KindSoftBreak, KindLineBreak:
			out = append(out, ' ')
		}
	})
	return string(out)
}
