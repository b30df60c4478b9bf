package mdbookpandoc

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakeRunner records invocations and returns canned results.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string

	stderr string
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	return "", f.stderr, f.err
}

func TestPandocRenderer_Args(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile *Profile
		want    []string
	}{
		{
			name:    "minimal",
			profile: &Profile{Output: "book.epub"},
			want:    []string{"in.native", "-f", "native", "-o", filepath.Join("dest", "book.epub")},
		},
		{
			name: "full",
			profile: &Profile{
				Output:          "book.pdf",
				To:              "latex",
				PDFEngine:       "lualatex",
				Columns:         80,
				NumberSections:  true,
				Standalone:      true,
				TableOfContents: true,
				TOCDepth:        2,
				Variables:       map[string]string{"fontsize": "11pt", "documentclass": "report"},
				ExtraArgs:       []string{"--top-level-division=chapter"},
			},
			want: []string{
				"in.native", "-f", "native", "-o", filepath.Join("dest", "book.pdf"),
				"-t", "latex", "-N", "-s", "--toc", "--toc-depth", "2",
				"--columns", "80", "--pdf-engine", "lualatex",
				"-V", "documentclass=report", "-V", "fontsize=11pt",
				"--top-level-division=chapter",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &pandocRenderer{runner: &fakeRunner{}, logger: zap.NewNop()}
			got := r.args("in.native", filepath.Join("dest", tt.profile.Output), tt.profile)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("args() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestPandocRenderer_Render(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	r := &pandocRenderer{runner: runner, logger: zap.NewNop()}

	out, err := r.render(context.Background(), "in.native", "dest", "pdf", &Profile{Output: "book.pdf"})
	if err != nil {
		t.Fatalf("render() unexpected error: %v", err)
	}
	if out != filepath.Join("dest", "book.pdf") {
		t.Errorf("output path = %q", out)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "pandoc" {
		t.Errorf("calls = %v", runner.calls)
	}
}

func TestPandocRenderer_Failure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("exit status 64"), stderr: "Unknown writer: nope"}
	r := &pandocRenderer{runner: runner, logger: zap.NewNop()}

	_, err := r.render(context.Background(), "in.native", "dest", "pdf", &Profile{Output: "book.pdf"})
	if !errors.Is(err, ErrPandocFailed) {
		t.Fatalf("render() error = %v, want ErrPandocFailed", err)
	}
	if got := err.Error(); !strings.Contains(got, "pdf") || !strings.Contains(got, "Unknown writer: nope") {
		t.Errorf("error %q should name the profile and surface stderr", got)
	}
}

func TestPandocRenderer_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &pandocRenderer{runner: &fakeRunner{}, logger: zap.NewNop()}
	_, err := r.render(ctx, "in.native", "dest", "pdf", &Profile{Output: "book.pdf"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("render() error = %v, want context.Canceled", err)
	}
}
