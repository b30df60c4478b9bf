package preprocess

import (
	"strings"
	"testing"

	"github.com/alnah/go-mdbook-pandoc/internal/diag"
)

func footnoteDoc(labels ...string) *Node {
	para := &Node{Kind: KindParagraph}
	for _, l := range labels {
		para.AppendChild(&Node{Kind: KindText, Text: "ref "})
		para.AppendChild(&Node{Kind: KindFootnoteReference, Label: l})
	}
	return &Node{Kind: KindDocument, Children: []*Node{para}}
}

func footnoteDef(text string, refs ...string) *Node {
	para := &Node{Kind: KindParagraph}
	para.AppendChild(&Node{Kind: KindText, Text: text})
	for _, l := range refs {
		para.AppendChild(&Node{Kind: KindFootnoteReference, Label: l})
	}
	def := &Node{Kind: KindDocument}
	def.AppendChild(para)
	return def
}

func TestResolveFootnotes_Inline(t *testing.T) {
	t.Parallel()

	doc := footnoteDoc("a")
	defs := map[string]*Node{"a": footnoteDef("the note")}
	reporter := diag.NewReporter(nil)

	resolveFootnotes(doc, defs, "ch.md", reporter, false)

	note := findOne(t, doc, KindNote)
	if got := PlainText(note); got != "the note" {
		t.Errorf("note text = %q, want %q", got, "the note")
	}
	if reporter.Count() != 0 {
		t.Errorf("diagnostics = %d, want 0", reporter.Count())
	}
}

func TestResolveFootnotes_NestedDefinitions(t *testing.T) {
	t.Parallel()

	doc := footnoteDoc("outer")
	defs := map[string]*Node{
		"outer": footnoteDef("outer note ", "inner"),
		"inner": footnoteDef("inner note"),
	}

	resolveFootnotes(doc, defs, "ch.md", diag.NewReporter(nil), false)

	notes := findAll(doc, KindNote)
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2 (nested)", len(notes))
	}
	if got := PlainText(notes[0]); !strings.Contains(got, "inner note") {
		t.Errorf("outer note lost nested content: %q", got)
	}
}

func TestResolveFootnotes_MissingStrict(t *testing.T) {
	t.Parallel()

	doc := footnoteDoc("ghost")

	resolveFootnotes(doc, map[string]*Node{}, "ch.md", diag.NewReporter(nil), false)

	if nodes := findAll(doc, KindFootnoteReference); len(nodes) != 0 {
		t.Error("unresolved reference survived")
	}
	if got := PlainText(doc); !strings.Contains(got, "[^ghost]") {
		t.Errorf("reference not degraded to literal text: %q", got)
	}
}

func TestResolveFootnotes_MissingPending(t *testing.T) {
	t.Parallel()

	doc := footnoteDoc("later")

	resolveFootnotes(doc, map[string]*Node{}, "ch.md", diag.NewReporter(nil), true)

	if nodes := findAll(doc, KindFootnoteReference); len(nodes) != 1 {
		t.Error("pending reference should be kept for the book-level pass")
	}
}

func TestDetectCycles(t *testing.T) {
	t.Parallel()

	t.Run("two step cycle", func(t *testing.T) {
		t.Parallel()

		doc := footnoteDoc("a")
		defs := map[string]*Node{
			"a": footnoteDef("first ", "b"),
			"b": footnoteDef("second ", "a"),
		}
		reporter := diag.NewReporter(nil)

		resolveFootnotes(doc, defs, "ch.md", reporter, false)

		if reporter.Count() != 1 {
			t.Fatalf("diagnostics = %d, want 1", reporter.Count())
		}
		if err := reporter.Err(); err == nil || !strings.Contains(err.Error(), "a => b => a") {
			t.Errorf("cycle path missing from %v", err)
		}
		// The back edge is cut, so inlining terminates.
		if notes := findAll(doc, KindNote); len(notes) != 2 {
			t.Fatalf("notes = %d, want 2", len(notes))
		}
		if got := PlainText(doc); !strings.Contains(got, "[^a]") {
			t.Errorf("offending reference not neutralized: %q", got)
		}
	})

	t.Run("self cycle", func(t *testing.T) {
		t.Parallel()

		doc := footnoteDoc("a")
		defs := map[string]*Node{"a": footnoteDef("selfish ", "a")}
		reporter := diag.NewReporter(nil)

		resolveFootnotes(doc, defs, "ch.md", reporter, false)

		if err := reporter.Err(); err == nil || !strings.Contains(err.Error(), "a => a") {
			t.Errorf("cycle path missing from %v", err)
		}
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		t.Parallel()

		doc := footnoteDoc("a", "b")
		defs := map[string]*Node{
			"a": footnoteDef("left ", "c"),
			"b": footnoteDef("right ", "c"),
			"c": footnoteDef("shared"),
		}
		reporter := diag.NewReporter(nil)

		resolveFootnotes(doc, defs, "ch.md", reporter, false)

		if reporter.Count() != 0 {
			t.Errorf("diagnostics = %d, want 0: %v", reporter.Count(), reporter.Err())
		}
	})
}

func TestResolveCrossChapter(t *testing.T) {
	t.Parallel()

	first := footnoteDoc("shared")
	second := footnoteDoc("shared")
	defs := map[string]*Node{"shared": footnoteDef("defined once")}

	ResolveCrossChapter([]*Node{first, second}, defs, diag.NewReporter(nil))

	for i, doc := range []*Node{first, second} {
		note := findOne(t, doc, KindNote)
		if got := PlainText(note); got != "defined once" {
			t.Errorf("doc %d note = %q, want %q", i, got, "defined once")
		}
	}
}

func TestExtractTextualRefs(t *testing.T) {
	t.Parallel()

	para := &Node{Kind: KindParagraph, Children: []*Node{
		{Kind: KindText, Text: "see [^note] and [^other] here"},
	}}
	doc := &Node{Kind: KindDocument, Children: []*Node{para}}

	extractTextualRefs(doc)

	refs := findAll(doc, KindFootnoteReference)
	if len(refs) != 2 {
		t.Fatalf("references = %d, want 2", len(refs))
	}
	if refs[0].Label != "note" || refs[1].Label != "other" {
		t.Errorf("labels = %q, %q", refs[0].Label, refs[1].Label)
	}
	if got := PlainText(doc); got != "see  and  here" {
		t.Errorf("surrounding text = %q", got)
	}
}

func TestExtractTextualRefs_SplitAcrossTextNodes(t *testing.T) {
	t.Parallel()

	para := &Node{Kind: KindParagraph, Children: []*Node{
		{Kind: KindText, Text: "see "},
		{Kind: KindText, Text: "["},
		{Kind: KindText, Text: "^note]"},
	}}
	doc := &Node{Kind: KindDocument, Children: []*Node{para}}

	extractTextualRefs(doc)

	refs := findAll(doc, KindFootnoteReference)
	if len(refs) != 1 || refs[0].Label != "note" {
		t.Fatalf("references = %+v, want one labeled note", refs)
	}
}

func TestExtractTextualRefs_NoMatch(t *testing.T) {
	t.Parallel()

	para := &Node{Kind: KindParagraph, Children: []*Node{
		{Kind: KindText, Text: "an array [index] access"},
	}}
	doc := &Node{Kind: KindDocument, Children: []*Node{para}}

	extractTextualRefs(doc)

	if nodes := findAll(doc, KindFootnoteReference); len(nodes) != 0 {
		t.Error("plain bracket text misread as a reference")
	}
	if got := PlainText(doc); got != "an array [index] access" {
		t.Errorf("text altered: %q", got)
	}
}
