// Command mdbook-pandoc renders an mdBook source tree with Pandoc.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	mdbookpandoc "github.com/alnah/go-mdbook-pandoc"
	"github.com/alnah/go-mdbook-pandoc/internal/book"
	"github.com/alnah/go-mdbook-pandoc/internal/hints"
)

// Exit codes.
const (
	exitOK    = 0
	exitBuild = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("mdbook-pandoc", pflag.ContinueOnError)
	var (
		configPath = flags.String("config", "book.yaml", "configuration file")
		bookRoot   = flags.String("book", ".", "book root directory")
		destDir    = flags.String("dest", "book/pandoc", "output directory")
		workers    = flags.Int("workers", 0, "chapter preprocessing concurrency (0 = auto)")
		verbose    = flags.BoolP("verbose", "v", false, "enable debug logging")
	)
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "initializing logger:", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v%s\n", err, hints.ForConfigNotFound(*configPath))
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := mdbookpandoc.New(cfg,
		mdbookpandoc.WithLogger(logger),
		mdbookpandoc.WithWorkers(*workers),
	)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return exitUsage
	}

	bk, err := book.Load(*bookRoot, cfg.Book.Source)
	if err != nil {
		hint := ""
		if errors.Is(err, book.ErrMissingSummary) {
			hint = hints.ForMissingSummary()
		}
		fmt.Fprintf(os.Stderr, "loading book: %v%s\n", err, hint)
		return exitBuild
	}

	result, err := svc.Build(ctx, bk, *destDir)
	if err != nil {
		hint := ""
		if errors.Is(err, mdbookpandoc.ErrPandocFailed) {
			hint = hints.Join(hints.ForPandocFailed(), pdfEngineHints(cfg))
		}
		fmt.Fprintf(os.Stderr, "build failed: %v%s\n", err, hint)
		return exitBuild
	}
	if result.Warnings > 0 {
		logger.Warn("build completed with warnings", zap.Int("count", result.Warnings))
	}
	for profile, path := range result.Outputs {
		logger.Info("output ready", zap.String("profile", profile), zap.String("path", path))
	}
	return exitOK
}

// pdfEngineHints checks the PDF engines the configured profiles need.
func pdfEngineHints(cfg *mdbookpandoc.Config) string {
	var out []string
	for _, p := range cfg.Profiles {
		if p != nil && (p.PDFEngine != "" || strings.HasSuffix(p.Output, ".pdf")) {
			out = append(out, hints.ForPDFEngine(p.PDFEngine))
		}
	}
	return hints.Join(out...)
}

// loadConfig reads the configuration file, falling back to the built-in
// default profile when none exists.
func loadConfig(path string) (*mdbookpandoc.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mdbookpandoc.DefaultConfig(), nil
	}
	return mdbookpandoc.LoadConfig(path)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
