package preprocess

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// supSubNode is a superscript or subscript span: ^text^ or ~text~.
type supSubNode struct {
	ast.BaseInline
	sub     bool
	content []byte
}

var kindSupSubNode = ast.NewNodeKind("SupSubSpan")

func (n *supSubNode) Kind() ast.NodeKind { return kindSupSubNode }

func (n *supSubNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// supSubParser recognizes ^superscript^ and ~subscript~ spans. The span
// must close on the same line and may not contain unescaped spaces; an
// escaped space (backslash space) is allowed and unescaped on extraction.
// A double tilde is left for the strikethrough parser.
type supSubParser struct {
	superscript bool
	subscript   bool
}

var _ parser.InlineParser = (*supSubParser)(nil)

func (p *supSubParser) Trigger() []byte {
	return []byte{'^', '~'}
}

func (p *supSubParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 3 {
		return nil
	}

	marker := line[0]
	switch marker {
	case '^':
		if !p.superscript {
			return nil
		}
	case '~':
		if !p.subscript || line[1] == '~' {
			return nil
		}
	default:
		return nil
	}

	for i := 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ' ', '\t':
			return nil
		case marker:
			if i == 1 {
				return nil
			}
			block.Advance(i + 1)
			return &supSubNode{sub: marker == '~', content: line[1:i]}
		}
	}
	return nil
}

// supSubExtension wires supSubParser into a goldmark instance.
type supSubExtension struct {
	superscript bool
	subscript   bool
}

func (e *supSubExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&supSubParser{superscript: e.superscript, subscript: e.subscript}, 550),
	))
}
