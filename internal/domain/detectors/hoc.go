package detectors

import (
	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

var wrapperNames = map[string]bool{
	"forwardRef": true,
	"memo":       true,
}

// WrapperName returns the wrapper function called by a call expression, such
// as "forwardRef" for React.forwardRef(...), or "" when the call is not a
// recognized component wrapper.
func WrapperName(call *sitter.Node, src []byte) string {
	if call == nil || call.Type() != adapter.NodeCallExpression {
		return ""
	}

	callee := call.ChildByFieldName("function")
	if callee == nil {
		return ""
	}

	switch callee.Type() {
	case adapter.NodeIdentifier:
		if name := Text(callee, src); wrapperNames[name] {
			return name
		}
	case adapter.NodeMemberExpression:
		object := callee.ChildByFieldName("object")
		property := Text(callee.ChildByFieldName("property"), src)

		if object != nil && Text(object, src) == "React" && wrapperNames[property] {
			return property
		}
	}

	return ""
}

// WrappedFunction digs through wrapper call arguments, including nested
// wrappers, and returns the first wrapped arrow or function expression.
func WrappedFunction(call *sitter.Node, src []byte) *sitter.Node {
	if WrapperName(call, src) == "" {
		return nil
	}

	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := Unwrap(args.NamedChild(i))

		if IsFunctionExpression(arg) {
			return arg
		}

		if fn := WrappedFunction(arg, src); fn != nil {
			return fn
		}
	}

	return nil
}

// WrappedTarget returns the identifier a wrapper call is applied to, looking
// through nested wrappers, as "Card" for memo(forwardRef(Card)).
func WrappedTarget(call *sitter.Node, src []byte) string {
	if WrapperName(call, src) == "" {
		return ""
	}

	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}

	arg := Unwrap(args.NamedChild(0))

	switch arg.Type() {
	case adapter.NodeIdentifier, adapter.NodeMemberExpression:
		return Text(arg, src)
	case adapter.NodeCallExpression:
		return WrappedTarget(arg, src)
	}

	return ""
}

// DetectWrappedComponent recognizes forwardRef and memo calls. The name comes
// from the enclosing variable declarator. A wrapper nested inside another
// wrapper is reported once, by the outer call. A wrapper around an existing
// component records that component in Wraps.
func DetectWrappedComponent(n *sitter.Node, src []byte) (m.ComponentDescriptor, bool) {
	wrapper := WrapperName(n, src)
	if wrapper == "" || isWrapperArgument(n, src) {
		return m.ComponentDescriptor{}, false
	}

	wraps := ""
	if WrappedFunction(n, src) == nil {
		if wraps = WrappedTarget(n, src); wraps == "" {
			return m.ComponentDescriptor{}, false
		}
	}

	decl := n
	name := m.UnknownHOCComponent

	if parent := n.Parent(); parent != nil && parent.Type() == adapter.NodeVariableDeclarator {
		decl = parent

		if bound := DeclaratorName(parent, src); bound != "" {
			name = bound
		}
	}

	d := descriptor(name, m.ComponentFunctional, decl)
	d.WrappedIn = wrapper
	d.Wraps = wraps

	if decl == n && isDefaultExportValue(n, adapter.NodeCallExpression) {
		d.IsDefaultExport = true
	}

	return d, true
}

func isWrapperArgument(n *sitter.Node, src []byte) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != "arguments" {
		return false
	}

	return WrapperName(parent.Parent(), src) != ""
}
