// Package native serializes preprocessed document trees into Pandoc's
// native textual AST, the representation `pandoc -f native` consumes.
// Emission is append-only: constructors are written in document order and
// nothing is buffered beyond the underlying writer.
package native

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-mdbook-pandoc/internal/preprocess"
)

// Width-hint marker emitted as a raw HTML block immediately before an
// annotated table. The companion filter rewrites the following table's
// column specs and deletes the marker.
const (
	TableMarkerPrefix = "<!-- mdbook-pandoc::table: "
	TableMarkerSuffix = " -->"
)

// Renderer writes one native document.
type Renderer struct {
	w *bufio.Writer
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: bufio.NewWriter(w)}
}

// Render serializes the given documents' blocks, in order, as a single
// native block list. Write errors surface on the final flush.
func (r *Renderer) Render(docs ...*preprocess.Node) error {
	lw := r.openList("\n,")
	for _, d := range docs {
		r.blockSeq(lw, d.Children)
	}
	r.raw("]\n")
	return r.w.Flush()
}

func (r *Renderer) raw(s string) {
	r.w.WriteString(s)
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// listWriter tracks comma placement inside one bracketed list.
type listWriter struct {
	r     *Renderer
	sep   string
	first bool
}

func (r *Renderer) openList(sep string) *listWriter {
	r.raw("[")
	return &listWriter{r: r, sep: sep, first: true}
}

// item is called before writing each element.
func (lw *listWriter) item() {
	if lw.first {
		lw.first = false
		return
	}
	lw.r.raw(lw.sep)
}

// isInlineNode decides block grouping for a node, resolving HTML elements
// by tag.
func isInlineNode(n *preprocess.Node) bool {
	return !n.IsBlock()
}

// blockSeq writes nodes into an already-open block list, wrapping runs of
// inline nodes in Plain blocks.
func (r *Renderer) blockSeq(lw *listWriter, nodes []*preprocess.Node) {
	var run []*preprocess.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		lw.item()
		r.raw("Plain ")
		r.inlineList(run)
		run = nil
	}
	for _, n := range nodes {
		if isInlineNode(n) {
			run = append(run, n)
			continue
		}
		flush()
		r.block(lw, n)
	}
	flush()
}

// blocks writes a bracketed block list.
func (r *Renderer) blocks(nodes []*preprocess.Node) {
	lw := r.openList(",")
	r.blockSeq(lw, nodes)
	r.raw("]")
}

// block writes one block node. It may emit more than one native block
// (width markers, raw HTML wrappers), which is why it drives the list
// writer itself.
func (r *Renderer) block(lw *listWriter, n *preprocess.Node) {
	switch n.Kind {
	case preprocess.KindHeading:
		lw.item()
		r.printf("Header %d ", n.Level)
		r.attr(n.ID, n.Classes, n.Attrs)
		r.raw(" ")
		r.inlineList(n.Children)

	case preprocess.KindParagraph:
		lw.item()
		r.raw("Para ")
		r.inlineList(n.Children)

	case preprocess.KindPlain:
		lw.item()
		r.raw("Plain ")
		r.inlineList(n.Children)

	case preprocess.KindBlockQuote:
		lw.item()
		if n.Alert != "" {
			r.alert(n)
			return
		}
		r.raw("BlockQuote ")
		r.blocks(n.Children)

	case preprocess.KindList:
		lw.item()
		if n.Ordered {
			r.printf("OrderedList (%d,DefaultStyle,DefaultDelim) ", n.Start)
		} else {
			r.raw("BulletList ")
		}
		items := r.openList("\n,")
		for _, item := range n.Children {
			if item.Kind != preprocess.KindItem {
				continue
			}
			items.item()
			r.blocks(item.Children)
		}
		r.raw("]")

	case preprocess.KindCodeBlock:
		lw.item()
		r.raw("CodeBlock ")
		var classes []string
		if n.Language != "" {
			classes = []string{n.Language}
		}
		r.attr("", classes, nil)
		r.printf(" \"%s\"", escapeVerbatim(n.Text))

	case preprocess.KindThematicBreak:
		lw.item()
		r.raw("HorizontalRule")

	case preprocess.KindRawBlock:
		lw.item()
		format := n.Format
		if format == "" {
			format = "html"
		}
		r.printf("RawBlock (Format \"%s\") \"%s\"", format, escapeVerbatim(n.Text))

	case preprocess.KindTable:
		if n.Widths != nil {
			lw.item()
			r.printf("RawBlock (Format \"html\") \"%s\"", escapeVerbatim(widthMarker(n.Widths)))
		}
		lw.item()
		r.table(n)

	case preprocess.KindDefinitionList:
		lw.item()
		r.definitionList(n)

	case preprocess.KindHTMLElement:
		r.htmlBlock(lw, n)

	case preprocess.KindHTMLComment:
		lw.item()
		r.printf("RawBlock (Format \"html\") \"%s\"", escapeVerbatim("<!--"+n.Text+"-->"))

	default:
		// An inline node reaching here is a caller bug; degrade gracefully.
		lw.item()
		r.raw("Plain ")
		r.inlineList([]*preprocess.Node{n})
	}
}

// alert renders a GitHub-style alert quote as a classed Div with a title
// paragraph, the way the HTML renderers of the source dialect present it.
func (r *Renderer) alert(n *preprocess.Node) {
	r.raw("Div ")
	r.attr("", []string{"markdown-alert", "markdown-alert-" + n.Alert}, nil)
	r.raw(" ")
	inner := r.openList("\n,")
	inner.item()
	r.printf("Para [Str \"%s\"]", escapeQuotes(alertTitle(n.Alert)))
	r.blockSeq(inner, n.Children)
	r.raw("]")
}

func alertTitle(kind string) string {
	if kind == "" {
		return ""
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}

// htmlBlock emits a block-level HTML element without a native
// counterpart: raw open tag, children, raw close tag. Divs map straight
// to native Divs so their attributes survive format conversion.
func (r *Renderer) htmlBlock(lw *listWriter, n *preprocess.Node) {
	if n.Tag == "div" || n.Tag == "figure" || n.Tag == "section" {
		lw.item()
		r.raw("Div ")
		r.attr(n.ID, n.Classes, n.Attrs)
		r.raw(" ")
		r.blocks(n.Children)
		return
	}

	lw.item()
	r.printf("RawBlock (Format \"html\") \"%s\"", escapeVerbatim(openTag(n)))
	r.blockSeq(lw, n.Children)
	lw.item()
	r.printf("RawBlock (Format \"html\") \"</%s>\"", n.Tag)
}

// inlineList writes a bracketed inline list.
func (r *Renderer) inlineList(nodes []*preprocess.Node) {
	lw := r.openList(",")
	for _, n := range nodes {
		r.inline(lw, n)
	}
	r.raw("]")
}

func (r *Renderer) inline(lw *listWriter, n *preprocess.Node) {
	switch n.Kind {
	case preprocess.KindText:
		lw.item()
		r.printf("Str \"%s\"", escapeQuotes(n.Text))

	case preprocess.KindSoftBreak:
		lw.item()
		r.raw("SoftBreak")

	case preprocess.KindLineBreak:
		lw.item()
		r.raw("LineBreak")

	case preprocess.KindEmph:
		lw.item()
		r.raw("Emph ")
		r.inlineList(n.Children)

	case preprocess.KindStrong:
		lw.item()
		r.raw("Strong ")
		r.inlineList(n.Children)

	case preprocess.KindStrikethrough:
		lw.item()
		r.raw("Strikeout ")
		r.inlineList(n.Children)

	case preprocess.KindSuperscript:
		lw.item()
		r.raw("Superscript ")
		r.inlineList(n.Children)

	case preprocess.KindSubscript:
		lw.item()
		r.raw("Subscript ")
		r.inlineList(n.Children)

	case preprocess.KindCode:
		lw.item()
		r.raw("Code ")
		r.attr(n.ID, n.Classes, n.Attrs)
		r.printf(" \"%s\"", escapeVerbatim(n.Text))

	case preprocess.KindLink:
		lw.item()
		r.raw("Link ")
		r.attr(n.ID, n.Classes, n.Attrs)
		r.raw(" ")
		r.inlineList(n.Children)
		r.printf(" (\"%s\",\"%s\")", escapeVerbatim(n.Target), escapeQuotes(n.Title))

	case preprocess.KindImage:
		lw.item()
		r.raw("Image ")
		r.attr(n.ID, n.Classes, n.Attrs)
		r.raw(" ")
		r.inlineList(n.Children)
		r.printf(" (\"%s\",\"%s\")", escapeVerbatim(n.Target), escapeQuotes(n.Title))

	case preprocess.KindMath:
		lw.item()
		mode := "InlineMath"
		if n.Display {
			mode = "DisplayMath"
		}
		r.printf("Math %s \"%s\"", mode, escapeVerbatim(n.Text))

	case preprocess.KindRawInline:
		lw.item()
		format := n.Format
		if format == "" {
			format = "html"
		}
		r.printf("RawInline (Format \"%s\") \"%s\"", format, escapeVerbatim(n.Text))

	case preprocess.KindNote:
		lw.item()
		r.raw("Note ")
		r.blocks(n.Children)

	case preprocess.KindFootnoteReference:
		// Left behind only when its definition never materialized.
		lw.item()
		r.printf("Str \"%s\"", escapeQuotes("[^"+n.Label+"]"))

	case preprocess.KindTaskMarker:
		lw.item()
		if n.Checked {
			r.raw("Str \"\\9746\"")
		} else {
			r.raw("Str \"\\9744\"")
		}
		lw.item()
		r.raw("Space")

	case preprocess.KindHTMLComment:
		lw.item()
		r.printf("RawInline (Format \"html\") \"%s\"", escapeVerbatim("<!--"+n.Text+"-->"))

	case preprocess.KindHTMLElement:
		if n.Tag == "span" {
			lw.item()
			r.raw("Span ")
			r.attr(n.ID, n.Classes, n.Attrs)
			r.raw(" ")
			r.inlineList(n.Children)
			return
		}
		lw.item()
		r.printf("RawInline (Format \"html\") \"%s\"", escapeVerbatim(openTag(n)))
		for _, c := range n.Children {
			r.inline(lw, c)
		}
		lw.item()
		r.printf("RawInline (Format \"html\") \"</%s>\"", n.Tag)

	default:
		// A block node in inline position: flatten to its text.
		lw.item()
		r.printf("Str \"%s\"", escapeQuotes(preprocess.PlainText(n)))
	}
}

// table writes the full native table constructor. Column widths stay
// ColWidthDefault here; annotated tables carry a marker block that the
// width filter rewrites afterwards.
func (r *Renderer) table(n *preprocess.Node) {
	r.raw("Table (\"\",[],[]) (Caption Nothing []) [")
	for i, a := range n.Alignments {
		if i > 0 {
			r.raw(",")
		}
		r.printf("(%s,ColWidthDefault)", alignName(a))
	}
	r.raw("]\n (TableHead (\"\",[],[])\n [")
	headFirst := true
	for _, c := range n.Children {
		if c.Kind != preprocess.KindTableHead {
			continue
		}
		if !headFirst {
			r.raw("\n,")
		}
		headFirst = false
		r.tableRow(c)
	}
	r.raw("])\n [(TableBody (\"\",[],[]) (RowHeadColumns 0)\n []\n [")
	bodyFirst := true
	for _, c := range n.Children {
		if c.Kind != preprocess.KindTableRow {
			continue
		}
		if !bodyFirst {
			r.raw("\n,")
		}
		bodyFirst = false
		r.tableRow(c)
	}
	r.raw("])]\n (TableFoot (\"\",[],[])\n [])")
}

func (r *Renderer) tableRow(row *preprocess.Node) {
	r.raw("Row (\"\",[],[])\n [")
	first := true
	for _, cell := range row.Children {
		if cell.Kind != preprocess.KindTableCell {
			continue
		}
		if !first {
			r.raw("\n,")
		}
		first = false
		r.raw("Cell (\"\",[],[]) AlignDefault (RowSpan 1) (ColSpan 1)\n ")
		r.blocks(cell.Children)
	}
	r.raw("]")
}

// definitionList groups term/description children into native pairs.
func (r *Renderer) definitionList(n *preprocess.Node) {
	r.raw("DefinitionList [")
	first := true
	i := 0
	for i < len(n.Children) {
		term := n.Children[i]
		if term.Kind != preprocess.KindDefinitionTerm {
			i++
			continue
		}
		if !first {
			r.raw("\n,")
		}
		first = false
		r.raw("(")
		r.inlineList(term.Children)
		r.raw(",[")
		i++
		descFirst := true
		for i < len(n.Children) && n.Children[i].Kind == preprocess.KindDefinitionDetail {
			if !descFirst {
				r.raw(",")
			}
			descFirst = false
			r.blocks(n.Children[i].Children)
			i++
		}
		r.raw("])")
	}
	r.raw("]")
}

// attr writes a native attribute triple: identifier, classes, key-values.
func (r *Renderer) attr(id string, classes []string, kvs [][2]string) {
	r.printf("(\"%s\",[", escapeQuotes(id))
	for i, c := range classes {
		if i > 0 {
			r.raw(",")
		}
		r.printf("\"%s\"", escapeQuotes(c))
	}
	r.raw("],[")
	for i, kv := range kvs {
		if i > 0 {
			r.raw(",")
		}
		r.printf("(\"%s\",\"%s\")", escapeQuotes(kv[0]), escapeQuotes(kv[1]))
	}
	r.raw("])")
}

func alignName(a preprocess.Alignment) string {
	switch a {
	case preprocess.AlignLeft:
		return "AlignLeft"
	case preprocess.AlignCenter:
		return "AlignCenter"
	case preprocess.AlignRight:
		return "AlignRight"
	}
	return "AlignDefault"
}

// widthMarker formats the raw width-hint comment for a table.
func widthMarker(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strconv.Itoa(w)
	}
	return TableMarkerPrefix + strings.Join(parts, "|") + TableMarkerSuffix
}

// openTag reconstructs an HTML start tag from an element node.
func openTag(n *preprocess.Node) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Tag)
	if n.ID != "" {
		fmt.Fprintf(&b, " id=%q", n.ID)
	}
	if len(n.Classes) > 0 {
		fmt.Fprintf(&b, " class=%q", strings.Join(n.Classes, " "))
	}
	for _, kv := range n.Attrs {
		if kv[1] == "" {
			fmt.Fprintf(&b, " %s", kv[0])
			continue
		}
		fmt.Fprintf(&b, " %s=%q", kv[0], kv[1])
	}
	b.WriteString(">")
	return b.String()
}
