// Package domain provides the core analysis and instrumentation logic.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	"pcmark.dev/pkg/pcmark/internal/domain/detectors"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// DefaultAnalysisCacheSize bounds the number of analyses kept by content hash.
const DefaultAnalysisCacheSize = 1024

// Classifier finds the components declared in a source file.
type Classifier interface {
	// Analyze parses src once and reports markup, mount calls and component
	// descriptors in source order. Unparsable files yield an empty analysis.
	Analyze(ctx context.Context, path m.Path, src []byte) (m.FileAnalysis, error)

	// Classify returns only the component descriptors of src.
	Classify(ctx context.Context, path m.Path, src []byte) ([]m.ComponentDescriptor, error)
}

type classifier struct {
	parser adapter.JSXFileAdapter
	rules  []detectors.Detector
	cache  *lru.Cache[string, m.FileAnalysis]
}

// NewClassifier constructs a Classifier using the default detector rules.
func NewClassifier(parser adapter.JSXFileAdapter, cacheSize int) (Classifier, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultAnalysisCacheSize
	}

	cache, err := lru.New[string, m.FileAnalysis](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create analysis cache: %w", err)
	}

	return &classifier{
		parser: parser,
		rules:  detectors.DefaultDetectors,
		cache:  cache,
	}, nil
}

func (c *classifier) Classify(ctx context.Context, path m.Path, src []byte) ([]m.ComponentDescriptor, error) {
	analysis, err := c.Analyze(ctx, path, src)
	if err != nil {
		return nil, err
	}

	return analysis.Components, nil
}

func (c *classifier) Analyze(ctx context.Context, path m.Path, src []byte) (m.FileAnalysis, error) {
	hash := adapter.HashBytes(src)

	if cached, ok := c.cache.Get(hash); ok {
		return cloneAnalysis(cached), nil
	}

	tree, err := c.parser.Parse(ctx, string(path), src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return m.FileAnalysis{}, ctxErr
		}

		if errors.Is(err, adapter.ErrSyntax) {
			slog.Error("Failed to analyze components", "path", path, "error", err)
			return m.FileAnalysis{}, nil
		}

		return m.FileAnalysis{}, fmt.Errorf("analyze %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.Root()

	components := detectors.Detect(root, tree.Source, c.rules...)
	detectors.CollectExports(root, tree.Source).Apply(components)

	analysis := m.FileAnalysis{
		ContainsJSX:       detectors.ContainsMarkup(root),
		ContainsReactRoot: detectors.ContainsMountCall(root, tree.Source),
		Components:        components,
	}

	slog.Debug("Analyzed file", "path", path, "components", len(components), "jsx", analysis.ContainsJSX)

	c.cache.Add(hash, cloneAnalysis(analysis))

	return analysis, nil
}

func cloneAnalysis(a m.FileAnalysis) m.FileAnalysis {
	if a.Components != nil {
		a.Components = append([]m.ComponentDescriptor(nil), a.Components...)
	}

	return a
}
