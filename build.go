package mdbookpandoc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-mdbook-pandoc/internal/book"
	"github.com/alnah/go-mdbook-pandoc/internal/diag"
	"github.com/alnah/go-mdbook-pandoc/internal/filter"
	"github.com/alnah/go-mdbook-pandoc/internal/native"
	"github.com/alnah/go-mdbook-pandoc/internal/preprocess"
)

// Service orchestrates the book-to-pandoc pipeline.
type Service struct {
	cfg     *Config
	logger  *zap.Logger
	runner  CommandRunner
	workers int
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCommandRunner replaces subprocess execution (e.g., by tests).
func WithCommandRunner(runner CommandRunner) Option {
	return func(s *Service) { s.runner = runner }
}

// WithWorkers bounds chapter preprocessing concurrency.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a Service after validating the configuration.
func New(cfg *Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	cfg.applyDefaults()
	cfg.normalizeRedirects()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:     cfg,
		logger:  zap.NewNop(),
		runner:  &ExecRunner{},
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Result describes a completed build.
type Result struct {
	// NativePath is the serialized native document all profiles consumed.
	NativePath string
	// Outputs maps profile names to the files pandoc wrote.
	Outputs map[string]string
	// TOC is the aggregated table of contents of the whole book.
	TOC []preprocess.TOCEntry
	// Warnings counts non-fatal diagnostics (unresolved links, footnote
	// cycles).
	Warnings int
}

// Build preprocesses every chapter, serializes the book as one native
// document under destDir and runs pandoc once per profile.
//
// Chapter preprocessing runs concurrently; a parse failure in any chapter
// fails the whole build, since a partial book is not valid renderer
// input. Non-fatal diagnostics are collected and reported in the result.
func (s *Service) Build(ctx context.Context, bk *book.Book, destDir string) (*Result, error) {
	chapters := bk.Chapters()
	if len(chapters) == 0 {
		return nil, ErrEmptyBook
	}

	reporter := diag.NewReporter(s.logger)
	ext := preprocess.Extensions{
		Math:          s.cfg.Markdown.Extensions.Math,
		MathEmulation: s.cfg.Markdown.Extensions.MathEmulation,
		Superscript:   s.cfg.Markdown.Extensions.Superscript,
		Subscript:     s.cfg.Markdown.Extensions.Subscript,
	}

	// Phase 1: the book-wide chapter index, before any chapter resolves
	// links against it.
	index, err := preprocess.BuildIndex(chapters, ext)
	if err != nil {
		return nil, err
	}

	opts := preprocess.Options{
		Extensions: ext,
		Code: preprocess.CodeOptions{
			ShowHiddenLines:    s.cfg.Code.ShowHiddenLines,
			HiddenLinePrefixes: s.cfg.Code.Hidelines,
		},
		Columns:               s.cfg.columnBudget(),
		Redirects:             s.cfg.Redirects,
		HostedHTML:            s.cfg.HostedHTML,
		CrossChapterFootnotes: s.cfg.Markdown.CrossChapterFootnotes,
		Reporter:              reporter,
	}

	// Phase 2: chapters are independent given the read-only index.
	results := make([]*preprocess.Result, len(chapters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, ch := range chapters {
		g.Go(func() error {
			res, err := preprocess.Chapter(gctx, ch, index, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.cfg.Markdown.CrossChapterFootnotes {
		s.resolveCrossChapterFootnotes(results, reporter)
	}

	docs, toc := assemble(bk, results)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating destination: %w", err)
	}

	var buf bytes.Buffer
	if err := native.NewRenderer(&buf).Render(docs...); err != nil {
		return nil, fmt.Errorf("serializing book: %w", err)
	}
	serialized := filter.ApplyColumnWidths(buf.Bytes())

	nativePath := filepath.Join(destDir, "book.native")
	if err := os.WriteFile(nativePath, serialized, 0o644); err != nil {
		return nil, fmt.Errorf("writing native document: %w", err)
	}
	s.logger.Info("serialized book",
		zap.String("path", nativePath),
		zap.Int("chapters", len(chapters)),
		zap.Int("bytes", len(serialized)),
	)

	// Final phase: one blocking pandoc run per profile, in name order.
	renderer := &pandocRenderer{runner: s.runner, logger: s.logger}
	outputs := make(map[string]string, len(s.cfg.Profiles))
	for _, name := range sortedProfiles(s.cfg.Profiles) {
		out, err := renderer.render(ctx, nativePath, destDir, name, s.cfg.Profiles[name])
		if err != nil {
			return nil, err
		}
		outputs[name] = out
	}

	result := &Result{
		NativePath: nativePath,
		Outputs:    outputs,
		TOC:        toc,
		Warnings:   reporter.Count(),
	}
	if s.cfg.FailOnWarnings && result.Warnings > 0 {
		return result, fmt.Errorf("%w: %v", ErrBuildWarnings, reporter.Err())
	}
	return result, nil
}

// resolveCrossChapterFootnotes merges the per-chapter definition maps
// (first definition of a label wins, in reading order) and resolves the
// references left pending by phase 2.
func (s *Service) resolveCrossChapterFootnotes(results []*preprocess.Result, reporter *diag.Reporter) {
	merged := make(map[string]*preprocess.Node)
	docs := make([]*preprocess.Node, 0, len(results))
	for _, res := range results {
		docs = append(docs, res.Doc)
		for label, def := range res.Footnotes {
			if _, ok := merged[label]; !ok {
				merged[label] = def
			}
		}
	}
	preprocess.ResolveCrossChapter(docs, merged, reporter)
}

// assemble interleaves chapter documents with part-title headings in
// reading order and aggregates the table of contents.
func assemble(bk *book.Book, results []*preprocess.Result) ([]*preprocess.Node, []preprocess.TOCEntry) {
	var docs []*preprocess.Node
	var toc []preprocess.TOCEntry
	next := 0
	for _, it := range bk.Items {
		switch it.Kind {
		case book.ItemChapter:
			res := results[next]
			next++
			docs = append(docs, res.Doc)
			toc = append(toc, res.TOC...)
		case book.ItemPartTitle:
			part := &preprocess.Node{Kind: preprocess.KindDocument}
			part.AppendChild(preprocess.PartHeading(it.Title))
			docs = append(docs, part)
		case book.ItemSeparator:
			// Separators shape the sidebar of HTML renderers; they have
			// no printable counterpart.
		}
	}
	return docs, toc
}

func sortedProfiles(profiles map[string]*Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
