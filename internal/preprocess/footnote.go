package preprocess

import (
	"regexp"
	"sort"

	"github.com/alnah/go-mdbook-pandoc/internal/diag"
)

// resolveFootnotes inlines footnote definitions at their reference sites
// after checking the definition graph for cycles. When pending is true,
// references without a matching definition are kept for a later
// book-level pass; otherwise they degrade to inert text.
func resolveFootnotes(doc *Node, defs map[string]*Node, chapter string, reporter *diag.Reporter, pending bool) {
	detectCycles(defs, chapter, reporter)
	roots := append([]*Node{doc}, sortedDefs(defs)...)
	inlineRefs(roots, defs, !pending)
}

// ResolveCrossChapter resolves references left pending by per-chapter
// processing against the merged book-wide definition map. Runs after all
// chapters have been processed, sequentially.
func ResolveCrossChapter(docs []*Node, defs map[string]*Node, reporter *diag.Reporter) {
	detectCycles(defs, "", reporter)
	roots := append(append([]*Node{}, docs...), sortedDefs(defs)...)
	inlineRefs(roots, defs, true)
}

// detectCycles walks the definition graph depth-first. A back edge is a
// cycle: it is reported with its full label path and the offending
// reference inside the definition is neutralized to inert text, so the
// chapter still renders. Each cycle is independent; one never masks
// another.
func detectCycles(defs map[string]*Node, chapter string, reporter *diag.Reporter) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(defs))
	var stack []string

	var visit func(label string)
	visit = func(label string) {
		color[label] = gray
		stack = append(stack, label)

		Walk(defs[label], func(n *Node) {
			if n.Kind != KindFootnoteReference {
				return
			}
			target := n.Label
			if _, ok := defs[target]; !ok {
				return
			}
			switch color[target] {
			case white:
				visit(target)
			case gray:
				idx := 0
				for i, l := range stack {
					if l == target {
						idx = i
						break
					}
				}
				cycle := append(append([]string{}, stack[idx:]...), target)
				reporter.FootnoteCycle(chapter, cycle)
				neutralize(n)
			}
		})

		stack = stack[:len(stack)-1]
		color[label] = black
	}

	for _, label := range sortedLabels(defs) {
		if color[label] == white {
			visit(label)
		}
	}
}

// inlineRefs converts each reference node into a note carrying a copy of
// its definition's blocks. Each reference owns its own subtree; sharing
// the definition nodes would make the later mutating passes visit them
// once per reference. Definitions were cycle-checked first, so the
// resulting structure is finite.
func inlineRefs(roots []*Node, defs map[string]*Node, strict bool) {
	for _, root := range roots {
		Walk(root, func(n *Node) {
			if n.Kind != KindFootnoteReference {
				return
			}
			def, ok := defs[n.Label]
			if !ok {
				if strict {
					neutralize(n)
				}
				return
			}
			n.Kind = KindNote
			n.Children = make([]*Node, len(def.Children))
			for i, c := range def.Children {
				n.Children[i] = c.Clone()
			}
		})
	}
}

// neutralize turns a reference into the literal text it was written as.
func neutralize(n *Node) {
	label := n.Label
	n.Kind = KindText
	n.Text = "[^" + label + "]"
	n.Children = nil
}

var textualRefPattern = regexp.MustCompile(`\[\^([^\]\s]+)\]`)

// extractTextualRefs finds footnote reference syntax that survived parsing
// as plain text, which happens when the definition lives in a different
// chapter. Adjacent text siblings are coalesced first: the parser may have
// split a literal [^label] at the bracket. Only used when cross-chapter
// footnotes are enabled.
func extractTextualRefs(doc *Node) {
	var rewrite func(n *Node)
	rewrite = func(n *Node) {
		var out []*Node
		for _, c := range n.Children {
			rewrite(c)
			if c.Kind != KindText {
				out = append(out, c)
				continue
			}
			if len(out) > 0 && out[len(out)-1].Kind == KindText {
				out[len(out)-1].Text += c.Text
				continue
			}
			out = append(out, c)
		}
		n.Children = out

		var split []*Node
		for _, c := range n.Children {
			if c.Kind != KindText {
				split = append(split, c)
				continue
			}
			split = append(split, splitTextualRefs(c)...)
		}
		n.Children = split
	}
	rewrite(doc)
}

func splitTextualRefs(text *Node) []*Node {
	matches := textualRefPattern.FindAllStringSubmatchIndex(text.Text, -1)
	if len(matches) == 0 {
		return []*Node{text}
	}
	var out []*Node
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, &Node{Kind: KindText, Text: text.Text[last:m[0]]})
		}
		out = append(out, &Node{
			Kind:  KindFootnoteReference,
			Label: text.Text[m[2]:m[3]],
		})
		last = m[1]
	}
	if last < len(text.Text) {
		out = append(out, &Node{Kind: KindText, Text: text.Text[last:]})
	}
	return out
}

func sortedLabels(defs map[string]*Node) []string {
	labels := make([]string, 0, len(defs))
	for l := range defs {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func sortedDefs(defs map[string]*Node) []*Node {
	nodes := make([]*Node, 0, len(defs))
	for _, l := range sortedLabels(defs) {
		nodes = append(nodes, defs[l])
	}
	return nodes
}
