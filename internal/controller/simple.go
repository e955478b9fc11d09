package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayInventory prints the scan summary and the mount files found.
func (s *SimpleUI) DisplayInventory(ctx context.Context, inv *m.Inventory, rootFiles []m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderInventoryTable(inv.Stats()))

	for _, root := range rootFiles {
		s.printf("Mount file: %s\n", root)
	}

	return nil
}

// DisplayComponents prints every component of the inventory as a table.
func (s *SimpleUI) DisplayComponents(ctx context.Context, inv *m.Inventory) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderComponentTable(inv))

	return nil
}

// DisplayRunInfo shows the amount of work and the worker count.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, files int, parallel int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Emitting %d file(s) with %d worker(s)\n", files, parallel)
}

// DisplayStartingFile is silent for SimpleUI; completion lines carry the path.
func (s *SimpleUI) DisplayStartingFile(ctx context.Context, _ m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayCompletedFile prints one line per instrumented or failed file.
func (s *SimpleUI) DisplayCompletedFile(ctx context.Context, report m.FileReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	switch report.Status {
	case m.StatusInstrumented:
		s.printf("instrumented %s (%d elements, %d roots)\n", report.Path, report.Elements, report.Roots)
	case m.StatusFailed:
		s.printf("failed %s: %v\n", report.Path, report.Err)
	case m.StatusCopied:
	}
}

// DisplaySummary prints the per-status totals of a run.
func (s *SimpleUI) DisplaySummary(ctx context.Context, reports []m.FileReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderSummaryTable(reports))
}

// DisplayDiff prints a unified diff.
func (s *SimpleUI) DisplayDiff(ctx context.Context, path m.Path, diff string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if diff == "" {
		s.printf("%s: no changes\n", path)
		return
	}

	s.printf("%s", diff)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderInventoryTable(stats m.Stats) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Directories", "Files", "Eligible", "With JSX", "Components"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.Append([]string{
		fmt.Sprintf("%d", stats.Directories),
		fmt.Sprintf("%d", stats.Files),
		fmt.Sprintf("%d", stats.Eligible),
		fmt.Sprintf("%d", stats.WithJSX),
		fmt.Sprintf("%d", stats.Components),
	})
	table.Render()

	return tableBuffer.String()
}

func renderComponentTable(inv *m.Inventory) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Component", "Type", "Export", "Wrapped In"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoMergeCells(true)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	files := 0
	total := 0

	for _, file := range inv.Files() {
		if len(file.DefinedComponents) == 0 {
			continue
		}

		files++

		for _, c := range file.DefinedComponents {
			table.Append([]string{string(file.FullPath), c.Name, string(c.Type), exportLabel(c), c.WrappedIn})

			total++
		}
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", files),
		fmt.Sprintf("%d", total),
		"", "", "",
	})

	table.Render()

	return tableBuffer.String()
}

func renderSummaryTable(reports []m.FileReport) string {
	counts := map[m.FileStatus]int{}
	elements := 0
	roots := 0

	var failures []string

	for _, r := range reports {
		counts[r.Status]++
		elements += r.Elements
		roots += r.Roots

		if r.Status == m.StatusFailed {
			failures = append(failures, fmt.Sprintf("%s: %v", r.Path, r.Err))
		}
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Status", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, status := range []m.FileStatus{m.StatusInstrumented, m.StatusCopied, m.StatusFailed} {
		table.Append([]string{status.String(), fmt.Sprintf("%d", counts[status])})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Elements %d / Roots %d", elements, roots),
		fmt.Sprintf("%d", len(reports)),
	})

	table.Render()

	if len(failures) > 0 {
		tableBuffer.WriteString("\nFailures:\n  " + strings.Join(failures, "\n  ") + "\n")
	}

	return tableBuffer.String()
}

func exportLabel(c m.ComponentDescriptor) string {
	switch {
	case c.IsDefaultExport && c.IsNamedExport:
		return "default, named"
	case c.IsDefaultExport:
		return "default"
	case c.IsNamedExport:
		return "named"
	default:
		return "-"
	}
}
