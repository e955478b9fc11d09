package model

import "sync"

// FileStatus represents the outcome of emitting one file.
type FileStatus int

const (
	// StatusCopied indicates the file was copied byte-for-byte.
	StatusCopied FileStatus = iota
	// StatusInstrumented indicates the file was rewritten with annotations.
	StatusInstrumented
	// StatusFailed indicates the file could not be emitted.
	StatusFailed
)

func (s FileStatus) String() string {
	switch s {
	case StatusCopied:
		return "copied"
	case StatusInstrumented:
		return "instrumented"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileReport is the result of emitting one file of the inventory.
type FileReport struct {
	Path       Path
	Status     FileStatus
	Components int
	Elements   int
	Roots      int
	Unmatched  []string
	Err        error
}

// InstrumentResult is what the instrumentation engine produced for one file.
type InstrumentResult struct {
	Code      []byte
	Edits     []Edit
	Elements  int
	Roots     int
	Unmatched []string
}

// RunState carries the inventory and root-file list between pipeline stages.
// One instance is created per run and passed explicitly to each stage.
type RunState struct {
	mu        sync.Mutex
	inventory *Inventory
	rootFiles []Path
}

// NewRunState returns an empty run state.
func NewRunState() *RunState {
	return &RunState{}
}

// SetInventory stores the project inventory for later stages.
func (s *RunState) SetInventory(inv *Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inventory = inv
}

// Inventory returns the stored project inventory.
func (s *RunState) Inventory() *Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inventory
}

// AddRootFile records a file containing an application mount call.
func (s *RunState) AddRootFile(p Path) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rootFiles = append(s.rootFiles, p)
}

// RootFiles returns a copy of the recorded mount files.
func (s *RunState) RootFiles() []Path {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Path, len(s.rootFiles))
	copy(out, s.rootFiles)

	return out
}
