package detectors

import (
	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
)

var mountMethods = map[string]bool{
	"createRoot":  true,
	"hydrateRoot": true,
	"render":      true,
}

// IsMountCall reports whether n mounts the application: ReactDOM.createRoot,
// ReactDOM.hydrateRoot, ReactDOM.render or a bare createRoot/hydrateRoot.
func IsMountCall(n *sitter.Node, src []byte) bool {
	if n.Type() != adapter.NodeCallExpression {
		return false
	}

	callee := n.ChildByFieldName("function")
	if callee == nil {
		return false
	}

	switch callee.Type() {
	case adapter.NodeIdentifier:
		name := Text(callee, src)
		return name == "createRoot" || name == "hydrateRoot"
	case adapter.NodeMemberExpression:
		object := callee.ChildByFieldName("object")

		return object != nil &&
			object.Type() == adapter.NodeIdentifier &&
			Text(object, src) == "ReactDOM" &&
			mountMethods[Text(callee.ChildByFieldName("property"), src)]
	}

	return false
}

// ContainsMountCall reports whether any call in the tree mounts the application.
func ContainsMountCall(root *sitter.Node, src []byte) bool {
	found := false

	Inspect(root, func(n *sitter.Node) bool {
		if found {
			return false
		}

		found = IsMountCall(n, src)

		return !found
	})

	return found
}
