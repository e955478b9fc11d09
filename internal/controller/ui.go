// Package controller provides output adapters for displaying pcmark progress and results.
package controller

import (
	"context"

	"github.com/spf13/cobra"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeScan StartMode = iota
	ModeRun
	ModeList
	ModeDiff
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	files []m.Path
}

// WithScanMode sets the UI to inventory mode.
func WithScanMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeScan
	}
}

// WithRunMode sets the UI to instrumentation mode for the given files.
func WithRunMode(files []m.Path) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
		c.files = files
	}
}

// WithListMode sets the UI to component listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithDiffMode sets the UI to diff preview mode.
func WithDiffMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeDiff
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeScan}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines the interface for displaying scan and run results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayInventory(ctx context.Context, inv *m.Inventory, rootFiles []m.Path) error
	DisplayComponents(ctx context.Context, inv *m.Inventory) error
	DisplayRunInfo(ctx context.Context, files int, parallel int)
	DisplayStartingFile(ctx context.Context, path m.Path)
	DisplayCompletedFile(ctx context.Context, report m.FileReport)
	DisplaySummary(ctx context.Context, reports []m.FileReport)
	DisplayDiff(ctx context.Context, path m.Path, diff string)
}

// NewUI returns the TUI when out is a terminal and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}
