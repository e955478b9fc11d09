package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

const (
	statusQueued  = "queued"
	statusWorking = "working"
	statusError   = "error"

	defaultWidth = 80
)

// TUI implements UI using Bubble Tea for the run progress and lipgloss for
// the static reports.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	events  chan fileEvent
	done    chan struct{}
	program *tea.Program
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress program in run mode. Other modes only print.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	if cfg.mode != ModeRun {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Two events per file at most; a buffer of that size never blocks workers.
	t.events = make(chan fileEvent, 2*len(cfg.files)+1)
	t.done = make(chan struct{})

	model := newProgressModel("Instrumenting", cfg.files, t.events, terminalWidth(t.output))
	t.program = tea.NewProgram(model, tea.WithOutput(t.output), tea.WithInput(nil))

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Error("Progress display failed", "error", err)
		}
	}(t.program, t.done)

	return nil
}

// Close stops the progress program if it is running.
func (t *TUI) Close(ctx context.Context) {
	t.finish()

	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the progress program has drawn its final frame.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayInventory prints the scan summary and the mount files found.
func (t *TUI) DisplayInventory(ctx context.Context, inv *m.Inventory, rootFiles []m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle().Render(fmt.Sprintf("pcmark: %s", inv.Root)))
	b.WriteString("\n\n")
	b.WriteString(renderInventoryTable(inv.Stats()))

	for _, root := range rootFiles {
		b.WriteString(styleStatus(statusWorking).Render("  mount "))
		b.WriteString(string(root))
		b.WriteString("\n")
	}

	_, err := fmt.Fprint(t.output, b.String())

	return err
}

// DisplayComponents prints every component of the inventory as a table.
func (t *TUI) DisplayComponents(ctx context.Context, inv *m.Inventory) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(t.output, "%s\n\n%s", titleStyle().Render("Components"), renderComponentTable(inv))

	return err
}

// DisplayRunInfo is rendered as part of the progress header.
func (t *TUI) DisplayRunInfo(ctx context.Context, files int, parallel int) {
	if err := ctx.Err(); err != nil {
		return
	}

	slog.Debug("Run started", "files", files, "parallel", parallel)
}

// DisplayStartingFile marks a file as in progress.
func (t *TUI) DisplayStartingFile(ctx context.Context, path m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.send(fileEvent{path: path, status: statusWorking})
}

// DisplayCompletedFile marks a file with its final status.
func (t *TUI) DisplayCompletedFile(ctx context.Context, report m.FileReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	status := report.Status.String()
	if report.Status == m.StatusFailed {
		status = statusError
	}

	t.send(fileEvent{path: report.Path, status: status})
}

// DisplaySummary ends the progress display and prints the run totals.
func (t *TUI) DisplaySummary(ctx context.Context, reports []m.FileReport) {
	t.finish()
	t.Wait(ctx)

	if err := ctx.Err(); err != nil {
		return
	}

	_, _ = fmt.Fprintf(t.output, "\n%s\n\n%s", titleStyle().Render("Summary"), renderSummaryTable(reports))
}

// DisplayDiff prints a unified diff with added and removed lines colored.
func (t *TUI) DisplayDiff(ctx context.Context, path m.Path, diff string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if diff == "" {
		_, _ = fmt.Fprintf(t.output, "%s %s\n", styleStatus(m.StatusCopied.String()).Render("unchanged"), path)
		return
	}

	var b strings.Builder

	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(titleStyle().Render(strings.TrimSuffix(line, "\n")) + "\n")
		case strings.HasPrefix(line, "+"):
			b.WriteString(styleStatus(m.StatusInstrumented.String()).Render(strings.TrimSuffix(line, "\n")) + "\n")
		case strings.HasPrefix(line, "-"):
			b.WriteString(styleStatus(statusError).Render(strings.TrimSuffix(line, "\n")) + "\n")
		default:
			b.WriteString(line)
		}
	}

	_, _ = fmt.Fprint(t.output, b.String())
}

func (t *TUI) send(ev fileEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.events == nil {
		return
	}

	select {
	case t.events <- ev:
	default:
		slog.Debug("Dropped progress event", "path", ev.path, "status", ev.status)
	}
}

func (t *TUI) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.events != nil {
		close(t.events)
		t.events = nil
	}
}

type fileEvent struct {
	path   m.Path
	status string
}

type eventMsg fileEvent

type doneMsg struct{}

type fileItem struct {
	path   string
	status string
}

type progressModel struct {
	title   string
	events  <-chan fileEvent
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[m.Path]int
	width   int
	done    bool
}

func newProgressModel(title string, files []m.Path, events <-chan fileEvent, width int) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	if width <= 0 {
		width = defaultWidth
	}

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = width - 4

	items := make([]fileItem, 0, len(files))
	index := make(map[m.Path]int, len(files))

	for i, file := range files {
		items = append(items, fileItem{path: string(file), status: statusQueued})
		index[file] = i
	}

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   width,
	}
}

func (pm *progressModel) Init() tea.Cmd {
	return tea.Batch(pm.spinner.Tick, pm.listenForEvent())
}

func (pm *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := pm.applyEvent(fileEvent(msg))
		return pm, tea.Batch(cmd, pm.listenForEvent())
	case doneMsg:
		pm.done = true
		return pm, tea.Quit
	case spinner.TickMsg:
		if pm.done {
			return pm, nil
		}

		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			pm.width = msg.Width
			pm.prog.Width = msg.Width - 4
		}

		return pm, nil
	case progress.FrameMsg:
		model, cmd := pm.prog.Update(msg)
		pm.prog = model.(progress.Model)

		return pm, cmd
	}

	return pm, nil
}

func (pm *progressModel) View() string {
	if len(pm.items) == 0 {
		return ""
	}

	header := fmt.Sprintf("%s %d file(s)", pm.title, len(pm.items))
	if pm.done {
		header = "done: " + header
	} else {
		header = pm.spinner.View() + " " + header
	}

	var b strings.Builder

	b.WriteString(titleStyle().Render(header))
	b.WriteString("\n\n")

	const statusWidth = 12

	nameWidth := pm.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range pm.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.path, nameWidth))
	}

	b.WriteString("\n")

	if pm.done {
		b.WriteString(pm.prog.ViewAs(1.0))
	} else {
		b.WriteString(pm.prog.View())
	}

	b.WriteString("\n")

	return b.String()
}

func (pm *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-pm.events
		if !ok {
			return doneMsg{}
		}

		return eventMsg(ev)
	}
}

func (pm *progressModel) applyEvent(ev fileEvent) tea.Cmd {
	idx, ok := pm.index[ev.path]
	if !ok {
		return nil
	}

	pm.items[idx].status = ev.status

	return pm.prog.SetPercent(pm.completion())
}

func (pm *progressModel) completion() float64 {
	if len(pm.items) == 0 {
		return 0
	}

	total := 0.0

	for _, item := range pm.items {
		switch item.status {
		case statusQueued:
		case statusWorking:
			total += 0.5
		default:
			total++
		}
	}

	return total / float64(len(pm.items))
}

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "instrumented":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case statusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case statusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}

	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}

	return runewidth.Truncate(s, width, "...")
}
