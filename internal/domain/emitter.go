package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// Emitter writes the mirrored output tree.
type Emitter interface {
	// MirrorDirectories creates every inventory directory under output.
	MirrorDirectories(ctx context.Context, output m.Path, inv *m.Inventory) error

	// Emit writes one file to output: instrumented and formatted when it
	// declares components, copied byte for byte otherwise.
	Emit(ctx context.Context, input, output m.Path, node *m.ProjectNode) m.FileReport

	// Render returns the instrumented and formatted content of one file
	// without writing anything.
	Render(ctx context.Context, input m.Path, node *m.ProjectNode) ([]byte, m.FileReport)
}

type emitter struct {
	fs           adapter.SourceFSAdapter
	formatter    adapter.FormatterAdapter
	instrumenter Instrumenter
	configPath   m.Path

	configOnce sync.Once
	config     adapter.FormatConfig
	configErr  error
}

// NewEmitter constructs an Emitter. The formatting rules at configPath are
// loaded on first use and shared by every file of the run.
func NewEmitter(fs adapter.SourceFSAdapter, formatter adapter.FormatterAdapter, instrumenter Instrumenter, configPath m.Path) Emitter {
	return &emitter{
		fs:           fs,
		formatter:    formatter,
		instrumenter: instrumenter,
		configPath:   configPath,
	}
}

func (e *emitter) MirrorDirectories(ctx context.Context, output m.Path, inv *m.Inventory) error {
	if err := e.fs.MkdirAll(ctx, output); err != nil {
		slog.Error("Failed to create output directory", "path", output, "error", err)
		return fmt.Errorf("create %s: %w", output, err)
	}

	var mirrorErr error

	inv.Walk(func(rel m.Path, node *m.ProjectNode) bool {
		if !node.IsDir() {
			return true
		}

		dst := e.fs.JoinPath(ctx, string(output), string(rel))
		if err := e.fs.MkdirAll(ctx, dst); err != nil {
			slog.Error("Failed to create output directory", "path", dst, "error", err)
			mirrorErr = fmt.Errorf("create %s: %w", dst, err)

			return false
		}

		return true
	})

	return mirrorErr
}

func (e *emitter) Emit(ctx context.Context, input, output m.Path, node *m.ProjectNode) m.FileReport {
	src := e.fs.JoinPath(ctx, string(input), string(node.FullPath))
	dst := e.fs.JoinPath(ctx, string(output), string(node.FullPath))

	if !node.ShouldInstrument() {
		return e.copy(ctx, src, dst, node)
	}

	code, report := e.Render(ctx, input, node)

	switch {
	case report.Status == m.StatusCopied:
		return e.copy(ctx, src, dst, node)
	case report.Err != nil:
		return report
	}

	perm := defaultOutputPerm

	if info, err := e.fs.FileInfo(ctx, src); err == nil {
		perm = info.Mode().Perm()
	}

	if err := e.fs.WriteFile(ctx, dst, code, perm); err != nil {
		slog.Error("Failed to write instrumented file", "path", dst, "error", err)
		return failed(node, fmt.Errorf("write %s: %w", dst, err))
	}

	slog.Info("Processed and copied", "source", src, "target", dst, "elements", report.Elements, "roots", report.Roots)

	return report
}

func (e *emitter) Render(ctx context.Context, input m.Path, node *m.ProjectNode) ([]byte, m.FileReport) {
	src := e.fs.JoinPath(ctx, string(input), string(node.FullPath))

	content, err := e.fs.ReadFile(ctx, src)
	if err != nil {
		slog.Error("Failed to read source file", "path", src, "error", err)
		return nil, failed(node, fmt.Errorf("read %s: %w", src, err))
	}

	if !node.ShouldInstrument() {
		return content, m.FileReport{Path: node.FullPath, Status: m.StatusCopied}
	}

	cfg, err := e.formatConfig(ctx)
	if err != nil {
		slog.Error("Failed to load format config", "path", e.configPath, "file", src, "error", err)
		return nil, failed(node, err)
	}

	result, err := e.instrumenter.Instrument(ctx, node.FullPath, content, node, WithJSXSingleQuote(cfg.JSXSingleQuote))
	if err != nil {
		if errors.Is(err, adapter.ErrSyntax) {
			slog.Warn("Source no longer parses, copying unchanged", "path", src, "error", err)
			return content, m.FileReport{Path: node.FullPath, Status: m.StatusCopied}
		}

		slog.Error("Failed to instrument file", "path", src, "error", err)

		return nil, failed(node, err)
	}

	formatted, err := e.formatter.Format(ctx, node.FullPath, result.Code, cfg)
	if err != nil {
		slog.Error("Failed to format file", "path", src, "error", err)
		return nil, failed(node, fmt.Errorf("format %s: %w", src, err))
	}

	return formatted, m.FileReport{
		Path:       node.FullPath,
		Status:     m.StatusInstrumented,
		Components: len(node.DefinedComponents) - len(result.Unmatched),
		Elements:   result.Elements,
		Roots:      result.Roots,
		Unmatched:  result.Unmatched,
	}
}

func (e *emitter) copy(ctx context.Context, src, dst m.Path, node *m.ProjectNode) m.FileReport {
	if err := e.fs.CopyFile(ctx, src, dst); err != nil {
		slog.Error("Failed to copy file", "source", src, "target", dst, "error", err)
		return failed(node, fmt.Errorf("copy %s: %w", src, err))
	}

	slog.Debug("Copied", "source", src, "target", dst)

	return m.FileReport{Path: node.FullPath, Status: m.StatusCopied}
}

func (e *emitter) formatConfig(ctx context.Context) (adapter.FormatConfig, error) {
	e.configOnce.Do(func() {
		e.config, e.configErr = e.formatter.LoadConfig(ctx, e.configPath)
	})

	return e.config, e.configErr
}

func failed(node *m.ProjectNode, err error) m.FileReport {
	return m.FileReport{Path: node.FullPath, Status: m.StatusFailed, Err: err}
}

const defaultOutputPerm os.FileMode = 0o644
