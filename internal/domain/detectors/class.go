package detectors

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

var componentBases = map[string]bool{
	"Component":     true,
	"PureComponent": true,
}

// DetectClassComponent recognizes a class declaration extending Component or
// PureComponent, bare or through a namespace such as React.Component.
func DetectClassComponent(n *sitter.Node, src []byte) (m.ComponentDescriptor, bool) {
	if n.Type() != adapter.NodeClassDeclaration && !isDefaultExportValue(n, adapter.NodeClass) {
		return m.ComponentDescriptor{}, false
	}

	if !ExtendsComponent(n, src) {
		return m.ComponentDescriptor{}, false
	}

	name := Text(n.ChildByFieldName("name"), src)
	if name == "" {
		name = m.UnknownClassComponent
	}

	return descriptor(name, m.ComponentClass, n), true
}

// ExtendsComponent reports whether the class node's heritage names a
// component base class.
func ExtendsComponent(class *sitter.Node, src []byte) bool {
	for i := 0; i < int(class.NamedChildCount()); i++ {
		heritage := class.NamedChild(i)
		if heritage.Type() != adapter.NodeClassHeritage {
			continue
		}

		base := heritage.NamedChild(0)
		if base == nil {
			return false
		}

		switch base.Type() {
		case adapter.NodeIdentifier:
			return componentBases[Text(base, src)]
		case adapter.NodeMemberExpression:
			return componentBases[Text(base.ChildByFieldName("property"), src)]
		default:
			text := Text(base, src)
			return componentBases[text[strings.LastIndex(text, ".")+1:]]
		}
	}

	return false
}

// isDefaultExportValue reports whether n is the anonymous value of an
// export default statement and has the given node type.
func isDefaultExportValue(n *sitter.Node, types ...string) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != adapter.NodeExportStatement || !IsDefaultExport(parent) {
		return false
	}

	value := parent.ChildByFieldName("value")
	if value == nil || value.StartByte() != n.StartByte() || value.EndByte() != n.EndByte() {
		return false
	}

	for _, t := range types {
		if n.Type() == t {
			return true
		}
	}

	return false
}
