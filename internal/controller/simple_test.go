package controller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

func testInventory() *m.Inventory {
	return &m.Inventory{
		Root: "app",
		Nodes: []*m.ProjectNode{
			{Type: m.NodeDirectory, Name: "src", Children: []*m.ProjectNode{
				{
					Type: m.NodeFile, Name: "Card.jsx", FullPath: "src/Card.jsx", Process: true, ContainsJSX: true,
					DefinedComponents: []m.ComponentDescriptor{
						{Name: "Card", Type: m.ComponentFunctional, IsDefaultExport: true},
						{Name: "Row", Type: m.ComponentFunctional, IsNamedExport: true, WrappedIn: "memo"},
					},
				},
				{Type: m.NodeFile, Name: "index.js", FullPath: "src/index.js", Process: true, ContainsJSX: true, ContainsReactRoot: true},
			}},
			{Type: m.NodeFile, Name: "README.md", FullPath: "README.md"},
		},
	}
}

func newTestSimpleUI() (*SimpleUI, *bytes.Buffer) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	return NewSimpleUI(cmd), &buf
}

func TestSimpleUI_DisplayInventory(t *testing.T) {
	ui, buf := newTestSimpleUI()

	err := ui.DisplayInventory(context.Background(), testInventory(), []m.Path{"src/index.js"})
	if err != nil {
		t.Fatalf("DisplayInventory() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"DIRECTORIES", "COMPONENTS", "Mount file: src/index.js"} {
		if !strings.Contains(got, want) {
			t.Errorf("DisplayInventory() output missing %q, got: %s", want, got)
		}
	}
}

func TestSimpleUI_DisplayComponents(t *testing.T) {
	ui, buf := newTestSimpleUI()

	if err := ui.DisplayComponents(context.Background(), testInventory()); err != nil {
		t.Fatalf("DisplayComponents() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"src/Card.jsx", "Card", "Row", "memo", "default", "named", "TOTAL FILES 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("DisplayComponents() output missing %q, got: %s", want, got)
		}
	}

	if strings.Contains(got, "src/index.js") {
		t.Errorf("DisplayComponents() listed a file without components: %s", got)
	}
}

func TestSimpleUI_DisplayCompletedFile(t *testing.T) {
	tests := []struct {
		name   string
		report m.FileReport
		want   string
	}{
		{
			name:   "instrumented",
			report: m.FileReport{Path: "src/Card.jsx", Status: m.StatusInstrumented, Elements: 3, Roots: 1},
			want:   "instrumented src/Card.jsx (3 elements, 1 roots)\n",
		},
		{
			name:   "failed",
			report: m.FileReport{Path: "src/Bad.jsx", Status: m.StatusFailed, Err: errors.New("boom")},
			want:   "failed src/Bad.jsx: boom\n",
		},
		{
			name:   "copied is silent",
			report: m.FileReport{Path: "README.md", Status: m.StatusCopied},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui, buf := newTestSimpleUI()
			ui.DisplayCompletedFile(context.Background(), tt.report)

			if got := buf.String(); got != tt.want {
				t.Errorf("DisplayCompletedFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSimpleUI_DisplaySummary(t *testing.T) {
	ui, buf := newTestSimpleUI()

	ui.DisplaySummary(context.Background(), []m.FileReport{
		{Path: "src/Card.jsx", Status: m.StatusInstrumented, Elements: 4, Roots: 2},
		{Path: "README.md", Status: m.StatusCopied},
		{Path: "src/Bad.jsx", Status: m.StatusFailed, Err: errors.New("no config")},
	})

	got := buf.String()
	for _, want := range []string{"instrumented", "copied", "failed", "ELEMENTS 4 / ROOTS 2", "Failures:", "src/Bad.jsx: no config"} {
		if !strings.Contains(got, want) {
			t.Errorf("DisplaySummary() output missing %q, got: %s", want, got)
		}
	}
}

func TestSimpleUI_DisplayDiff(t *testing.T) {
	ui, buf := newTestSimpleUI()

	ui.DisplayDiff(context.Background(), "src/A.jsx", "")
	ui.DisplayDiff(context.Background(), "src/B.jsx", "--- a\n+++ b\n")

	want := "src/A.jsx: no changes\n--- a\n+++ b\n"
	if got := buf.String(); got != want {
		t.Errorf("DisplayDiff() = %q, want %q", got, want)
	}
}

func TestSimpleUI_CancelledContext(t *testing.T) {
	ui, buf := newTestSimpleUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ui.Start(ctx); err == nil {
		t.Error("Start() expected error for cancelled context")
	}

	if err := ui.DisplayComponents(ctx, testInventory()); err == nil {
		t.Error("DisplayComponents() expected error for cancelled context")
	}

	ui.DisplaySummary(ctx, nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
