package preprocess

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// mathNode is an inline math span recognized by mathParser. Content is kept
// verbatim; delimiters are stripped.
type mathNode struct {
	ast.BaseInline
	display bool
	content []byte
}

var kindMathNode = ast.NewNodeKind("MathSpan")

func (n *mathNode) Kind() ast.NodeKind { return kindMathNode }

func (n *mathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// mathParser recognizes LaTeX-style math delimiters in inline text:
// \( ... \) for inline math and \[ ... \] for display math, plus
// $ ... $ and $$ ... $$ spans behind separate toggles. Single-dollar
// spans stay off in emulation mode, where a lone dollar is far more
// likely to be a price than math.
//
// Inline spans must close on the same line; display spans may run across
// lines of the enclosing block. A closing delimiter preceded by an odd
// number of backslashes does not close the span.
type mathParser struct {
	latex        bool
	dollar       bool
	doubleDollar bool
}

var _ parser.InlineParser = (*mathParser)(nil)

func (p *mathParser) Trigger() []byte {
	if p.dollar || p.doubleDollar {
		return []byte{'\\', '$'}
	}
	return []byte{'\\'}
}

func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 2 {
		return nil
	}

	var closer []byte
	var openLen int
	display := false
	switch {
	case p.latex && line[0] == '\\' && line[1] == '(':
		closer, openLen = []byte(`\)`), 2
	case p.latex && line[0] == '\\' && line[1] == '[':
		closer, openLen = []byte(`\]`), 2
		display = true
	case p.doubleDollar && line[0] == '$' && line[1] == '$':
		closer, openLen = []byte("$$"), 2
		display = true
	case p.dollar && line[0] == '$':
		if line[1] == ' ' || line[1] == '\n' {
			return nil
		}
		closer, openLen = []byte("$"), 1
	default:
		return nil
	}

	startLine, startPos := block.Position()
	block.Advance(openLen)

	var content []byte
	for {
		line, _ := block.PeekLine()
		if line == nil {
			block.SetPosition(startLine, startPos)
			return nil
		}
		if idx := indexUnescaped(line, closer); idx >= 0 {
			if len(closer) == 1 && idx > 0 && line[idx-1] == ' ' {
				// Dollar math may not end with whitespace.
				block.SetPosition(startLine, startPos)
				return nil
			}
			content = append(content, line[:idx]...)
			if len(content) == 0 {
				block.SetPosition(startLine, startPos)
				return nil
			}
			block.Advance(idx + len(closer))
			return &mathNode{display: display, content: content}
		}
		if !display {
			block.SetPosition(startLine, startPos)
			return nil
		}
		content = append(content, line...)
		block.AdvanceLine()
	}
}

// indexUnescaped returns the index of the first occurrence of closer in
// line that is not preceded by an odd run of backslashes, or -1.
func indexUnescaped(line, closer []byte) int {
	from := 0
	for {
		idx := bytes.Index(line[from:], closer)
		if idx < 0 {
			return -1
		}
		idx += from
		backslashes := 0
		for i := idx - 1; i >= 0 && line[i] == '\\'; i-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return idx
		}
		from = idx + 1
	}
}

// mathExtension wires mathParser into a goldmark instance.
type mathExtension struct {
	latex        bool
	dollar       bool
	doubleDollar bool
}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&mathParser{
			latex:        e.latex,
			dollar:       e.dollar,
			doubleDollar: e.doubleDollar,
		}, 200),
	))
}
