package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	"pcmark.dev/pkg/pcmark/internal/controller"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// ScanArgs selects the project to inventory.
type ScanArgs struct {
	Input      m.Path
	Structure  m.Path
	Extensions []string
	Exclude    []string
	Parallel   int
}

// RunArgs configures a full instrumentation run.
type RunArgs struct {
	ScanArgs

	Output m.Path
	// ReuseStructure loads the structure document instead of scanning.
	ReuseStructure bool
	FailFast       bool
}

// ListArgs configures the component listing.
type ListArgs struct {
	ScanArgs
}

// DiffArgs configures a dry run printing unified diffs. An empty Files list
// selects every file that would be instrumented.
type DiffArgs struct {
	ScanArgs

	Files []m.Path
}

// Workflow defines the pcmark commands.
type Workflow interface {
	Scan(ctx context.Context, args ScanArgs) error
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
	Diff(ctx context.Context, args DiffArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.StructureStore
	controller.UI
	InventoryBuilder
	Emitter
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	structureStore adapter.StructureStore,
	ui controller.UI,
	inventory InventoryBuilder,
	emitter Emitter,
) Workflow {
	return &workflow{
		SourceFSAdapter:  fsAdapter,
		StructureStore:   structureStore,
		UI:               ui,
		InventoryBuilder: inventory,
		Emitter:          emitter,
	}
}

func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	if err := w.Start(ctx, controller.WithScanMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	state := m.NewRunState()

	inv, err := w.scan(ctx, args, state, nil)
	if err != nil {
		return err
	}

	if err := w.SaveStructure(ctx, args.Structure, inv); err != nil {
		slog.Error("Failed to save structure document", "path", args.Structure, "error", err)
		return fmt.Errorf("save structure: %w", err)
	}

	if err := w.DisplayInventory(ctx, inv, state.RootFiles()); err != nil {
		slog.Error("Failed to display inventory", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	state := m.NewRunState()

	inv, err := w.runInventory(ctx, args, state)
	if err != nil {
		return err
	}

	if err := w.MirrorDirectories(ctx, args.Output, inv); err != nil {
		return fmt.Errorf("mirror directories: %w", err)
	}

	files := inv.Files()

	paths := make([]m.Path, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.FullPath)
	}

	if err := w.Start(ctx, controller.WithRunMode(paths)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	parallel := parallelism(args.Parallel)
	w.DisplayRunInfo(ctx, len(files), parallel)

	reports, emitErr := w.emitAll(ctx, args, files, parallel)

	// Barrier reached: every worker has returned.
	w.DisplaySummary(ctx, reports)

	failedCount := 0

	for _, r := range reports {
		if r.Status == m.StatusFailed {
			failedCount++
		}
	}

	slog.Info("Run complete", "input", args.Input, "output", args.Output, "files", len(files), "failed", failedCount)

	if emitErr != nil && failedCount == 0 {
		return emitErr
	}

	if failedCount > 0 {
		return fmt.Errorf("%d of %d files: %w", failedCount, len(files), ErrFilesFailed)
	}

	return nil
}

func (w *workflow) emitAll(ctx context.Context, args RunArgs, files []*m.ProjectNode, parallel int) ([]m.FileReport, error) {
	var (
		reports      []m.FileReport
		reportsMutex sync.Mutex
	)

	group := &errgroup.Group{}
	groupCtx := ctx

	if args.FailFast {
		group, groupCtx = errgroup.WithContext(ctx)
	}

	group.SetLimit(parallel)

	for _, file := range files {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			w.DisplayStartingFile(groupCtx, file.FullPath)

			report := w.Emit(groupCtx, args.Input, args.Output, file)

			reportsMutex.Lock()
			reports = append(reports, report)
			reportsMutex.Unlock()

			w.DisplayCompletedFile(groupCtx, report)

			if report.Status == m.StatusFailed && args.FailFast {
				return report.Err
			}

			return nil
		})
	}

	err := group.Wait()

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Path < reports[j].Path
	})

	return reports, err
}

// runInventory scans the input or, when asked, reuses the structure
// document of a previous scan.
func (w *workflow) runInventory(ctx context.Context, args RunArgs, state *m.RunState) (*m.Inventory, error) {
	if args.ReuseStructure {
		inv, err := w.LoadStructure(ctx, args.Structure, args.Input)
		if err != nil {
			slog.Error("Failed to load structure document", "path", args.Structure, "error", err)
			return nil, fmt.Errorf("load structure: %w", err)
		}

		for _, file := range inv.Files() {
			if file.ContainsReactRoot {
				state.AddRootFile(file.FullPath)
			}
		}

		state.SetInventory(inv)

		return inv, nil
	}

	inv, err := w.scan(ctx, args.ScanArgs, state, w.outputExclusions(ctx, args.Input, args.Output))
	if err != nil {
		return nil, err
	}

	if err := w.SaveStructure(ctx, args.Structure, inv); err != nil {
		slog.Error("Failed to save structure document", "path", args.Structure, "error", err)
		return nil, fmt.Errorf("save structure: %w", err)
	}

	return inv, nil
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	inv, err := w.scan(ctx, args.ScanArgs, m.NewRunState(), nil)
	if err != nil {
		return err
	}

	if err := w.DisplayComponents(ctx, inv); err != nil {
		slog.Error("Failed to display components", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

func (w *workflow) Diff(ctx context.Context, args DiffArgs) error {
	if err := w.Start(ctx, controller.WithDiffMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	inv, err := w.scan(ctx, args.ScanArgs, m.NewRunState(), nil)
	if err != nil {
		return err
	}

	nodes, err := w.diffTargets(inv, args.Files)
	if err != nil {
		return err
	}

	failedCount := 0

	for _, node := range nodes {
		diff, err := w.diffFile(ctx, args.Input, node)
		if err != nil {
			slog.Error("Failed to diff file", "path", node.FullPath, "error", err)
			w.DisplayCompletedFile(ctx, failed(node, err))

			failedCount++

			continue
		}

		w.DisplayDiff(ctx, node.FullPath, diff)
	}

	if failedCount > 0 {
		return fmt.Errorf("%d of %d files: %w", failedCount, len(nodes), ErrFilesFailed)
	}

	return nil
}

func (w *workflow) diffTargets(inv *m.Inventory, files []m.Path) ([]*m.ProjectNode, error) {
	if len(files) == 0 {
		var nodes []*m.ProjectNode

		for _, f := range inv.Files() {
			if f.ShouldInstrument() {
				nodes = append(nodes, f)
			}
		}

		return nodes, nil
	}

	nodes := make([]*m.ProjectNode, 0, len(files))

	for _, f := range files {
		node := inv.Find(f)
		if node == nil {
			return nil, fmt.Errorf("%s: %w", f, ErrNotInInventory)
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}

func (w *workflow) diffFile(ctx context.Context, input m.Path, node *m.ProjectNode) (string, error) {
	original, err := w.ReadFile(ctx, w.JoinPath(ctx, string(input), string(node.FullPath)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", node.FullPath, err)
	}

	rendered, report := w.Render(ctx, input, node)
	if report.Err != nil {
		return "", report.Err
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(rendered)),
		FromFile: "a/" + string(node.FullPath),
		ToFile:   "b/" + string(node.FullPath),
		Context:  3,
	})
}

func (w *workflow) scan(ctx context.Context, args ScanArgs, state *m.RunState, extraExclude []string) (*m.Inventory, error) {
	inv, err := w.Build(ctx, InventoryArgs{
		Root:       args.Input,
		Extensions: args.Extensions,
		Exclude:    append(append([]string(nil), args.Exclude...), extraExclude...),
		Parallel:   parallelism(args.Parallel),
	}, state)
	if err != nil {
		slog.Error("Failed to scan project", "input", args.Input, "error", err)
		return nil, fmt.Errorf("scan: %w", err)
	}

	return inv, nil
}

// outputExclusions keeps an output directory nested in the input out of the
// inventory.
func (w *workflow) outputExclusions(ctx context.Context, input, output m.Path) []string {
	if output == "" {
		return nil
	}

	rel, err := w.RelPath(ctx, input, output)
	if err != nil {
		return nil
	}

	slashed := filepath.ToSlash(string(rel))
	if slashed == "." || slashed == ".." || strings.HasPrefix(slashed, "../") || filepath.IsAbs(slashed) {
		return nil
	}

	return []string{slashed, slashed + "/**"}
}

func parallelism(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}

	return n
}
