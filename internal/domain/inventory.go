package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// DefaultExtensions are the file extensions analyzed for components.
var DefaultExtensions = []string{".js", ".jsx"}

// deniedDirs are never descended into, hidden or not.
var deniedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".next":        true,
}

// InventoryArgs configures a project scan.
type InventoryArgs struct {
	Root       m.Path
	Extensions []string
	Exclude    []string
	Parallel   int
}

// InventoryBuilder produces the annotated directory tree of a project.
type InventoryBuilder interface {
	Build(ctx context.Context, args InventoryArgs, state *m.RunState) (*m.Inventory, error)
}

type inventoryBuilder struct {
	fs         adapter.SourceFSAdapter
	classifier Classifier
}

// NewInventoryBuilder constructs an InventoryBuilder.
func NewInventoryBuilder(fs adapter.SourceFSAdapter, classifier Classifier) InventoryBuilder {
	return &inventoryBuilder{fs: fs, classifier: classifier}
}

// Build walks args.Root, analyzes every eligible file and stores the result
// in state. Mount files are recorded on state once each, in walk order.
func (b *inventoryBuilder) Build(ctx context.Context, args InventoryArgs, state *m.RunState) (*m.Inventory, error) {
	info, err := b.fs.FileInfo(ctx, args.Root)
	if err != nil {
		slog.Error("Failed to stat input directory", "root", args.Root, "error", err)
		return nil, fmt.Errorf("input %s: %w", args.Root, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("input %s: %w", args.Root, ErrNotDirectory)
	}

	for _, pattern := range args.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	extensions := args.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	parallel := args.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	w := &inventoryWalk{
		builder:    b,
		root:       args.Root,
		exclude:    args.Exclude,
		extensions: normalizeExtensions(extensions),
		group:      group,
		ctx:        groupCtx,
	}

	nodes, walkErr := w.dir(groupCtx, "")

	// Barrier: every analysis finishes before the inventory is published.
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if walkErr != nil {
		return nil, walkErr
	}

	inv := &m.Inventory{Root: args.Root, Nodes: nodes}

	for _, file := range inv.Files() {
		if file.ContainsReactRoot {
			state.AddRootFile(file.FullPath)
		}
	}

	state.SetInventory(inv)

	stats := inv.Stats()
	slog.Info("Scanned project", "root", args.Root, "files", stats.Files, "eligible", stats.Eligible, "components", stats.Components)

	return inv, nil
}

type inventoryWalk struct {
	builder    *inventoryBuilder
	root       m.Path
	exclude    []string
	extensions map[string]bool
	group      *errgroup.Group
	ctx        context.Context
}

func (w *inventoryWalk) dir(ctx context.Context, rel string) ([]*m.ProjectNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs := w.builder.fs.JoinPath(ctx, string(w.root), rel)

	entries, err := w.builder.fs.ReadDir(ctx, abs)
	if err != nil {
		slog.Error("Failed to read directory", "path", abs, "error", err)
		return nil, fmt.Errorf("read dir %s: %w", abs, err)
	}

	nodes := []*m.ProjectNode{}

	for _, entry := range entries {
		name := entry.Name()
		childRel := path.Join(rel, name)

		if m.IsHidden(name) || (entry.IsDir() && deniedDirs[name]) || w.excluded(childRel, entry.IsDir()) {
			slog.Debug("Skipping entry", "path", childRel)
			continue
		}

		if entry.IsDir() {
			children, err := w.dir(ctx, childRel)
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, &m.ProjectNode{Type: m.NodeDirectory, Name: name, Children: children})

			continue
		}

		node := &m.ProjectNode{Type: m.NodeFile, Name: name, FullPath: m.Path(childRel)}
		nodes = append(nodes, node)

		if w.extensions[node.FullPath.Ext()] {
			node.Process = true
			w.analyze(node)
		}
	}

	return nodes, nil
}

func (w *inventoryWalk) analyze(node *m.ProjectNode) {
	w.group.Go(func() error {
		abs := w.builder.fs.JoinPath(w.ctx, string(w.root), string(node.FullPath))

		src, err := w.builder.fs.ReadFile(w.ctx, abs)
		if err != nil {
			// The node keeps no analysis; emitting it reports the failure.
			slog.Error("Failed to read source file", "path", abs, "error", err)
			return nil
		}

		analysis, err := w.builder.classifier.Analyze(w.ctx, node.FullPath, src)
		if err != nil {
			return err
		}

		node.Hash = adapter.HashBytes(src)
		node.ContainsJSX = analysis.ContainsJSX
		node.ContainsReactRoot = analysis.ContainsReactRoot
		node.DefinedComponents = analysis.Components

		for _, c := range analysis.Components {
			if c.IsPlaceholder() {
				slog.Debug("Component has no binding name", "path", node.FullPath, "line", c.Line, "name", c.Name)
			}
		}

		return nil
	})
}

// excluded matches rel against the exclude globs. Directories also match
// patterns written with a trailing slash or /**.
func (w *inventoryWalk) excluded(rel string, dir bool) bool {
	for _, pattern := range w.exclude {
		candidates := []string{rel}
		if dir {
			candidates = append(candidates, rel+"/", rel+"/**")
		}

		for _, c := range candidates {
			if ok, _ := doublestar.Match(pattern, c); ok {
				return true
			}
		}
	}

	return false
}

func normalizeExtensions(exts []string) map[string]bool {
	out := make(map[string]bool, len(exts))

	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}

		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		out[e] = true
	}

	return out
}
