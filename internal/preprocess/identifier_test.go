package preprocess

import (
	"testing"

	"github.com/alnah/go-mdbook-pandoc/internal/book"
)

func TestGFMIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "Hello World", want: "hello-world"},
		{name: "tab dropped not hyphenated", input: "Heading\tIdentifier", want: "headingidentifier"},
		{name: "punctuation dropped", input: "Dogs?--in my house?", want: "dogs--in-my-house"},
		{name: "leading number kept", input: "3. Applications", want: "3-applications"},
		{name: "underscores kept", input: "snake_case heading", want: "snake_case-heading"},
		{name: "unicode letters kept", input: "Étude No. 1", want: "étude-no-1"},
		{name: "empty", input: "", want: ""},
		{name: "only punctuation", input: "?!.", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := GFMIdentifier(tt.input); got != tt.want {
				t.Errorf("GFMIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	chapters := []*book.Chapter{
		{Path: "intro.md", Content: "# Introduction\n\nWelcome.\n"},
		{Path: "guide/setup.md", Content: "Preamble.\n\n## Custom {#my-setup}\n"},
		{Path: "guide/empty.md", Content: "No headings here.\n"},
		{Path: "", Name: "Draft"},
	}

	ix, err := BuildIndex(chapters, Extensions{})
	if err != nil {
		t.Fatalf("BuildIndex() unexpected error: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{path: "intro.md", want: "introduction"},
		{path: "guide/setup.md", want: "my-setup"},
		{path: "guide/empty.md", want: "guide-empty"},
	}
	for _, tt := range tests {
		got, ok := ix.Anchor(tt.path)
		if !ok {
			t.Errorf("Anchor(%q) missing", tt.path)
			continue
		}
		if got != tt.want {
			t.Errorf("Anchor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	if ix.Has("") {
		t.Error("draft chapters must not be indexed")
	}
	if ix.Has("missing.md") {
		t.Error("unknown path reported as present")
	}
}

func TestBuildIndex_MalformedChapter(t *testing.T) {
	t.Parallel()

	chapters := []*book.Chapter{
		{Path: "bad.md", Content: "# Broken \xff\xfe\n"},
	}

	if _, err := BuildIndex(chapters, Extensions{}); err == nil {
		t.Fatal("expected error for invalid UTF-8 chapter")
	}
}
