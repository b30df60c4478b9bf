package mdbookpandoc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/alnah/go-mdbook-pandoc/internal/process"
)

// CommandRunner abstracts subprocess execution to enable testing without
// a pandoc installation.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

var _ CommandRunner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	// Pandoc runs its PDF engine as a child process; on cancellation the
	// whole group has to go, not just pandoc itself.
	cmd.SysProcAttr = process.GroupAttr()
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// pandocRenderer invokes pandoc on a serialized native document, once per
// output profile.
type pandocRenderer struct {
	runner CommandRunner
	logger *zap.Logger
}

// render runs one profile. The produced file path is returned on success;
// on failure pandoc's stderr is surfaced verbatim.
func (r *pandocRenderer) render(ctx context.Context, input, destDir, name string, p *Profile) (string, error) {
	outPath := filepath.Join(destDir, p.Output)
	args := r.args(input, outPath, p)

	r.logger.Debug("running pandoc",
		zap.String("profile", name),
		zap.Strings("args", args),
	)

	_, stderr, err := r.runner.Run(ctx, "pandoc", args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("profile %q: %w: %s", name, ErrPandocFailed, stderr)
	}

	r.logger.Info("wrote output",
		zap.String("profile", name),
		zap.String("path", outPath),
	)
	return outPath, nil
}

func (r *pandocRenderer) args(input, outPath string, p *Profile) []string {
	args := []string{input, "-f", "native", "-o", outPath}
	if p.To != "" {
		args = append(args, "-t", p.To)
	}
	if p.NumberSections {
		args = append(args, "-N")
	}
	if p.Standalone {
		args = append(args, "-s")
	}
	if p.TableOfContents {
		args = append(args, "--toc")
	}
	if p.TOCDepth > 0 {
		args = append(args, "--toc-depth", fmt.Sprintf("%d", p.TOCDepth))
	}
	if p.Columns > 0 {
		args = append(args, "--columns", fmt.Sprintf("%d", p.Columns))
	}
	if p.PDFEngine != "" {
		args = append(args, "--pdf-engine", p.PDFEngine)
	}

	keys := make([]string, 0, len(p.Variables))
	for k := range p.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-V", fmt.Sprintf("%s=%s", k, p.Variables[k]))
	}

	return append(args, p.ExtraArgs...)
}
