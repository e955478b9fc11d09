package model

import (
	"path"
	"strings"
)

// NodeType tags a ProjectNode as a file or a directory.
type NodeType string

const (
	// NodeFile marks a regular file entry.
	NodeFile NodeType = "file"
	// NodeDirectory marks a directory entry.
	NodeDirectory NodeType = "directory"
)

// ProjectNode is one entry of the project inventory. Directory nodes only use
// Name and Children; file nodes use the remaining fields.
type ProjectNode struct {
	Type     NodeType       `json:"type"`
	Name     string         `json:"name"`
	Children []*ProjectNode `json:"children,omitempty"`

	Process           bool                  `json:"process,omitempty"`
	ContainsJSX       bool                  `json:"containsJSX,omitempty"`
	FullPath          Path                  `json:"fullPath,omitempty"`
	Hash              string                `json:"hash,omitempty"`
	ContainsReactRoot bool                  `json:"containsReactRoot,omitempty"`
	DefinedComponents []ComponentDescriptor `json:"definedComponents,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *ProjectNode) IsDir() bool {
	return n.Type == NodeDirectory
}

// ShouldInstrument reports whether the file goes through the instrumentation
// engine rather than a byte copy.
func (n *ProjectNode) ShouldInstrument() bool {
	return n.Type == NodeFile && n.Process && n.ContainsJSX && len(n.DefinedComponents) > 0
}

// Inventory is the annotated directory tree of one input root.
type Inventory struct {
	Root  Path           `json:"-"`
	Nodes []*ProjectNode `json:"-"`
}

// Find returns the file node whose relative path matches rel.
func (inv *Inventory) Find(rel Path) *ProjectNode {
	if inv == nil {
		return nil
	}

	target := path.Clean(string(rel.Slash()))

	var found *ProjectNode

	inv.Walk(func(_ Path, node *ProjectNode) bool {
		if node.Type == NodeFile && path.Clean(string(node.FullPath)) == target {
			found = node
			return false
		}

		return true
	})

	return found
}

// Files returns every file node in depth-first order.
func (inv *Inventory) Files() []*ProjectNode {
	var files []*ProjectNode

	inv.Walk(func(_ Path, node *ProjectNode) bool {
		if node.Type == NodeFile {
			files = append(files, node)
		}

		return true
	})

	return files
}

// Walk visits every node depth-first with its path relative to the root.
// Returning false from fn stops the walk.
func (inv *Inventory) Walk(fn func(rel Path, node *ProjectNode) bool) {
	if inv == nil {
		return
	}

	walkNodes(inv.Nodes, "", fn)
}

func walkNodes(nodes []*ProjectNode, prefix string, fn func(rel Path, node *ProjectNode) bool) bool {
	for _, node := range nodes {
		rel := node.Name
		if prefix != "" {
			rel = prefix + "/" + node.Name
		}

		if !fn(Path(rel), node) {
			return false
		}

		if node.IsDir() && !walkNodes(node.Children, rel, fn) {
			return false
		}
	}

	return true
}

// Stats summarizes an inventory for display.
type Stats struct {
	Directories int
	Files       int
	Eligible    int
	WithJSX     int
	Components  int
}

// Stats counts the inventory contents.
func (inv *Inventory) Stats() Stats {
	var s Stats

	inv.Walk(func(_ Path, node *ProjectNode) bool {
		if node.IsDir() {
			s.Directories++
			return true
		}

		s.Files++

		if node.Process {
			s.Eligible++
		}

		if node.ContainsJSX {
			s.WithJSX++
		}

		s.Components += len(node.DefinedComponents)

		return true
	})

	return s
}

// IsHidden reports whether a directory entry name is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
