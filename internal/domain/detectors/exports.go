package detectors

import (
	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// Exports lists the names a module exports, split by kind.
type Exports struct {
	Default map[string]bool
	Named   map[string]bool
}

// CollectExports scans the top-level export statements of a program.
// Re-exports from another module are ignored because they never name a
// component declared in this file.
func CollectExports(root *sitter.Node, src []byte) Exports {
	exports := Exports{Default: map[string]bool{}, Named: map[string]bool{}}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != adapter.NodeExportStatement || stmt.ChildByFieldName("source") != nil {
			continue
		}

		if IsDefaultExport(stmt) {
			collectDefault(stmt, src, exports)
			continue
		}

		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			for _, name := range declaredNames(decl, src) {
				exports.Named[name] = true
			}

			continue
		}

		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			if clause := stmt.NamedChild(j); clause.Type() == adapter.NodeExportClause {
				collectClause(clause, src, exports)
			}
		}
	}

	return exports
}

func collectDefault(stmt *sitter.Node, src []byte, exports Exports) {
	if value := stmt.ChildByFieldName("value"); value != nil && value.Type() == adapter.NodeIdentifier {
		exports.Default[Text(value, src)] = true
		return
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		switch decl.Type() {
		case adapter.NodeFunctionDeclaration, adapter.NodeClassDeclaration:
			if name := Text(decl.ChildByFieldName("name"), src); name != "" {
				exports.Default[name] = true
			}
		}
	}
}

func collectClause(clause *sitter.Node, src []byte, exports Exports) {
	for k := 0; k < int(clause.NamedChildCount()); k++ {
		specifier := clause.NamedChild(k)
		if specifier.Type() != adapter.NodeExportSpecifier {
			continue
		}

		local := Text(specifier.ChildByFieldName("name"), src)
		exported := local

		if alias := specifier.ChildByFieldName("alias"); alias != nil {
			exported = Text(alias, src)
		}

		if exported == "default" {
			exports.Default[local] = true
			continue
		}

		exports.Named[exported] = true
	}
}

func declaredNames(decl *sitter.Node, src []byte) []string {
	switch decl.Type() {
	case adapter.NodeFunctionDeclaration, adapter.NodeGeneratorFunctionDecl, adapter.NodeClassDeclaration:
		if name := Text(decl.ChildByFieldName("name"), src); name != "" {
			return []string{name}
		}
	case adapter.NodeLexicalDeclaration, adapter.NodeVariableDeclaration:
		var names []string

		for i := 0; i < int(decl.NamedChildCount()); i++ {
			if d := decl.NamedChild(i); d.Type() == adapter.NodeVariableDeclarator {
				if name := DeclaratorName(d, src); name != "" {
					names = append(names, name)
				}
			}
		}

		return names
	}

	return nil
}

// Apply marks every descriptor whose name is exported. Matching is by
// identifier text only.
func (e Exports) Apply(components []m.ComponentDescriptor) {
	for i := range components {
		if e.Default[components[i].Name] {
			components[i].IsDefaultExport = true
		}

		if e.Named[components[i].Name] {
			components[i].IsNamedExport = true
		}
	}
}
