package detectors

import (
	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// DetectFunctionComponent recognizes a function declaration that returns
// markup. Declarations at any depth are reported; nested ones are flagged.
func DetectFunctionComponent(n *sitter.Node, src []byte) (m.ComponentDescriptor, bool) {
	if n.Type() != adapter.NodeFunctionDeclaration {
		return m.ComponentDescriptor{}, false
	}

	if !ReturnsMarkup(n) {
		return m.ComponentDescriptor{}, false
	}

	name := Text(n.ChildByFieldName("name"), src)
	if name == "" {
		name = m.UnknownFunctionComponent
	}

	return descriptor(name, m.ComponentFunctional, n), true
}
