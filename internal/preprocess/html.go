package preprocess

import (
	"strings"

	"golang.org/x/net/html"
)

// voidTags never take children and never appear on the open-element stack.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// impliedEnd maps an open tag to the set of start tags that implicitly
// close it, following the HTML parsing rules for optional end tags.
var impliedEnd = map[string]map[string]bool{
	"li": {"li": true},
	"dt": {"dt": true, "dd": true},
	"dd": {"dt": true, "dd": true},
	"tr": {"tr": true},
	"td": {"td": true, "th": true, "tr": true},
	"th": {"td": true, "th": true, "tr": true},
	"p": {
		"address": true, "article": true, "aside": true, "blockquote": true,
		"details": true, "div": true, "dl": true, "fieldset": true,
		"figcaption": true, "figure": true, "footer": true, "form": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
		"h6": true, "header": true, "hr": true, "main": true, "nav": true,
		"ol": true, "p": true, "pre": true, "section": true, "table": true,
		"ul": true,
	},
	"option": {"option": true, "optgroup": true},
	"thead":  {"tbody": true, "tfoot": true},
	"tbody":  {"tbody": true, "tfoot": true},
}

// integrateHTML tokenizes a raw HTML fragment and merges it into the tree
// at the current insertion point. Open elements persist across fragments,
// so Markdown content between an opening and closing tag becomes children
// of the element. Unmatched end tags are dropped; elements still open when
// the chapter ends are closed implicitly.
func (b *treeBuilder) integrateHTML(fragment string) {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.TextToken:
			text := string(z.Text())
			if strings.TrimSpace(text) != "" {
				b.append(&Node{Kind: KindText, Text: text})
			}
		case html.StartTagToken:
			tok := z.Token()
			b.openElement(tok.Data, tok)
		case html.SelfClosingTagToken:
			tok := z.Token()
			b.leafElement(tok.Data, tok)
		case html.EndTagToken:
			tok := z.Token()
			b.closeElement(tok.Data)
		case html.CommentToken:
			b.append(&Node{Kind: KindHTMLComment, Text: string(z.Text())})
		}
	}
}

func (b *treeBuilder) openElement(tag string, tok html.Token) {
	// Honor optional end tags before opening a new element.
	for {
		top, ok := b.topHTML()
		if !ok || !impliedEnd[top][tag] {
			break
		}
		b.closeElement(top)
	}

	if voidTags[tag] {
		b.leafElement(tag, tok)
		return
	}

	n := htmlNode(tag, tok)
	b.append(n)
	b.push(nil, tag, n)
}

func (b *treeBuilder) leafElement(tag string, tok html.Token) {
	switch tag {
	case "br":
		b.append(&Node{Kind: KindLineBreak})
	case "hr":
		b.append(&Node{Kind: KindThematicBreak})
	case "img":
		n := &Node{
			Kind:   KindImage,
			Target: attrValue(tok, "src"),
			Title:  attrValue(tok, "title"),
		}
		if alt := attrValue(tok, "alt"); alt != "" {
			n.AppendChild(&Node{Kind: KindText, Text: alt})
		}
		b.append(n)
	default:
		b.append(htmlNode(tag, tok))
	}
}

// closeElement pops the innermost matching open element. The search stops
// at the nearest Markdown container boundary: an end tag cannot close an
// element opened outside the current block.
func (b *treeBuilder) closeElement(tag string) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		f := b.stack[i]
		if f.owner != nil {
			return
		}
		if f.tag == tag {
			b.stack = b.stack[:i]
			return
		}
	}
}

// topHTML returns the tag of the innermost open HTML element, if the top
// of the stack is one.
func (b *treeBuilder) topHTML() (string, bool) {
	if len(b.stack) == 0 {
		return "", false
	}
	f := b.stack[len(b.stack)-1]
	if f.owner != nil {
		return "", false
	}
	return f.tag, true
}

// htmlNode builds the tree node for an HTML start tag, mapping elements
// with direct Pandoc counterparts to semantic kinds.
func htmlNode(tag string, tok html.Token) *Node {
	var n *Node
	switch tag {
	case "a":
		n = &Node{
			Kind:   KindLink,
			Target: attrValue(tok, "href"),
			Title:  attrValue(tok, "title"),
		}
	case "em", "i":
		n = &Node{Kind: KindEmph}
	case "strong", "b":
		n = &Node{Kind: KindStrong}
	case "s", "del", "strike":
		n = &Node{Kind: KindStrikethrough}
	case "sup":
		n = &Node{Kind: KindSuperscript}
	case "sub":
		n = &Node{Kind: KindSubscript}
	default:
		n = &Node{Kind: KindHTMLElement, Tag: tag}
	}
	for _, a := range tok.Attr {
		switch {
		case a.Key == "id":
			n.ID = a.Val
		case a.Key == "class":
			n.Classes = append(n.Classes, strings.Fields(a.Val)...)
		case n.Kind == KindLink && (a.Key == "href" || a.Key == "title"):
			// Captured above.
		default:
			n.Attrs = append(n.Attrs, [2]string{a.Key, a.Val})
		}
	}
	return n
}

func attrValue(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
