package detectors

import (
	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// DetectBoundComponent recognizes a variable declarator whose value is an
// arrow or function expression returning markup. Callbacks passed elsewhere in
// the initializer are not components.
func DetectBoundComponent(n *sitter.Node, src []byte) (m.ComponentDescriptor, bool) {
	if n.Type() != adapter.NodeVariableDeclarator {
		return m.ComponentDescriptor{}, false
	}

	value := Unwrap(n.ChildByFieldName("value"))
	if !IsFunctionExpression(value) || !ReturnsMarkup(value) {
		return m.ComponentDescriptor{}, false
	}

	name := DeclaratorName(n, src)
	if name == "" {
		name = m.UnknownFunctionalComponent
	}

	return descriptor(name, m.ComponentFunctional, n), true
}

// DetectDefaultExportComponent recognizes `export default () => ...` and
// `export default function () {...}` returning markup.
func DetectDefaultExportComponent(n *sitter.Node, _ []byte) (m.ComponentDescriptor, bool) {
	if !isDefaultExportValue(n, adapter.NodeArrowFunction, adapter.NodeFunctionExpression, adapter.NodeFunction) {
		return m.ComponentDescriptor{}, false
	}

	if !ReturnsMarkup(n) {
		return m.ComponentDescriptor{}, false
	}

	d := descriptor(m.UnknownFunctionalComponent, m.ComponentFunctional, n)
	d.IsDefaultExport = true

	return d, true
}
