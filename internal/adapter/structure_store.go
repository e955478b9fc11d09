package adapter

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

// StructureStore persists the project inventory as the structure document.
type StructureStore interface {
	SaveStructure(ctx context.Context, path m.Path, inv *m.Inventory) error
	LoadStructure(ctx context.Context, path, root m.Path) (*m.Inventory, error)
}

// JSONStructureStore writes the structure document as indented JSON.
type JSONStructureStore struct {
	fs SourceFSAdapter
}

// NewJSONStructureStore constructs a JSONStructureStore writing through fs.
func NewJSONStructureStore(fs SourceFSAdapter) *JSONStructureStore {
	return &JSONStructureStore{fs: fs}
}

// SaveStructure writes the inventory's root children to path.
func (s *JSONStructureStore) SaveStructure(ctx context.Context, path m.Path, inv *m.Inventory) error {
	nodes := []*m.ProjectNode{}
	if inv != nil && inv.Nodes != nil {
		nodes = inv.Nodes
	}

	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode structure: %w", err)
	}

	if err := s.fs.WriteFile(ctx, path, data, defaultFilePerm); err != nil {
		return fmt.Errorf("write structure %s: %w", path, err)
	}

	return nil
}

// LoadStructure reads a structure document written by SaveStructure. root is
// the input directory the document describes.
func (s *JSONStructureStore) LoadStructure(ctx context.Context, path, root m.Path) (*m.Inventory, error) {
	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read structure %s: %w", path, err)
	}

	var nodes []*m.ProjectNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decode structure %s: %w", path, err)
	}

	return &m.Inventory{Root: root, Nodes: nodes}, nil
}

var (
	_ StructureStore   = (*JSONStructureStore)(nil)
	_ SourceFSAdapter  = (*LocalSourceFSAdapter)(nil)
	_ JSXFileAdapter   = (*LocalJSXFileAdapter)(nil)
	_ FormatterAdapter = (*LocalFormatterAdapter)(nil)
)
