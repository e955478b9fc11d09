// Package detectors holds the component recognition rules applied to each
// node of a parsed JSX file.
package detectors

import (
	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// Text returns the source text covered by n.
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}

	return string(src[n.StartByte():n.EndByte()])
}

// Line returns the 1-based line of n.
func Line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// Inspect walks the tree rooted at n in pre-order. Returning false from fn
// skips the node's children.
func Inspect(n *sitter.Node, fn func(n *sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		Inspect(n.NamedChild(i), fn)
	}
}

// Unwrap strips any parentheses around an expression.
func Unwrap(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == adapter.NodeParenthesizedExpr {
		n = n.NamedChild(0)
	}

	return n
}

// IsMarkup reports whether n is a JSX element, self-closing element or fragment.
func IsMarkup(n *sitter.Node) bool {
	if n == nil {
		return false
	}

	switch n.Type() {
	case adapter.NodeJSXElement, adapter.NodeJSXSelfClosingElement, adapter.NodeJSXFragment:
		return true
	}

	return false
}

// IsFunctionExpression reports whether n is an arrow or function expression.
func IsFunctionExpression(n *sitter.Node) bool {
	if n == nil {
		return false
	}

	switch n.Type() {
	case adapter.NodeArrowFunction, adapter.NodeFunctionExpression, adapter.NodeFunction:
		return true
	}

	return false
}

// isOpaqueScope reports whether n starts a nested scope that markup detection
// must not look into. Arrow functions are transparent.
func isOpaqueScope(n *sitter.Node) bool {
	switch n.Type() {
	case adapter.NodeFunctionDeclaration, adapter.NodeGeneratorFunctionDecl,
		adapter.NodeFunctionExpression, adapter.NodeFunction, adapter.NodeGeneratorFunction,
		adapter.NodeMethodDefinition, adapter.NodeClassDeclaration, adapter.NodeClass:
		return true
	}

	return false
}

// ReturnsMarkup reports whether fn returns markup: a return statement whose
// argument is markup, or an arrow function whose expression body is markup,
// found without entering a nested non-arrow function.
func ReturnsMarkup(fn *sitter.Node) bool {
	if fn == nil {
		return false
	}

	if fn.Type() == adapter.NodeArrowFunction && IsMarkup(Unwrap(fn.ChildByFieldName("body"))) {
		return true
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return false
	}

	found := false

	Inspect(body, func(n *sitter.Node) bool {
		if found {
			return false
		}

		if n != body && isOpaqueScope(n) {
			return false
		}

		switch n.Type() {
		case adapter.NodeReturnStatement:
			if IsMarkup(Unwrap(n.NamedChild(0))) {
				found = true
			}
		case adapter.NodeArrowFunction:
			if IsMarkup(Unwrap(n.ChildByFieldName("body"))) {
				found = true
			}
		}

		return !found
	})

	return found
}

// ContainsMarkup reports whether the tree holds any JSX element.
func ContainsMarkup(root *sitter.Node) bool {
	found := false

	Inspect(root, func(n *sitter.Node) bool {
		if found {
			return false
		}

		if n.Type() == adapter.NodeJSXElement || n.Type() == adapter.NodeJSXSelfClosingElement {
			found = true
		}

		return !found
	})

	return found
}

// IsTopLevel reports whether decl is declared at module level, directly or
// through an export statement. decl is a function or class declaration, a
// variable declarator or the value of an export default statement.
func IsTopLevel(decl *sitter.Node) bool {
	parent := decl.Parent()
	if parent == nil {
		return false
	}

	if decl.Type() == adapter.NodeVariableDeclarator {
		if parent.Type() != adapter.NodeLexicalDeclaration && parent.Type() != adapter.NodeVariableDeclaration {
			return false
		}

		decl = parent
		parent = decl.Parent()

		if parent == nil {
			return false
		}
	}

	switch parent.Type() {
	case adapter.NodeProgram:
		return true
	case adapter.NodeExportStatement:
		grand := parent.Parent()
		return grand != nil && grand.Type() == adapter.NodeProgram
	}

	return false
}

// DeclaratorName returns the bound identifier of a variable declarator, or ""
// when the binding is a destructuring pattern.
func DeclaratorName(decl *sitter.Node, src []byte) string {
	name := decl.ChildByFieldName("name")
	if name == nil || name.Type() != adapter.NodeIdentifier {
		return ""
	}

	return Text(name, src)
}

// IsDefaultExport reports whether an export statement carries the default keyword.
func IsDefaultExport(stmt *sitter.Node) bool {
	if stmt == nil || stmt.Type() != adapter.NodeExportStatement {
		return false
	}

	for i := 0; i < int(stmt.ChildCount()); i++ {
		if c := stmt.Child(i); !c.IsNamed() && c.Type() == "default" {
			return true
		}
	}

	return false
}

func descriptor(name string, kind m.ComponentType, decl *sitter.Node) m.ComponentDescriptor {
	return m.ComponentDescriptor{
		Name:   name,
		Type:   kind,
		Offset: decl.StartByte(),
		Line:   Line(decl),
		Nested: !IsTopLevel(decl),
	}
}

// Detector inspects one node and reports the component it declares, if any.
type Detector func(n *sitter.Node, src []byte) (m.ComponentDescriptor, bool)

// DefaultDetectors is the rule set applied by the classifier.
var DefaultDetectors = []Detector{
	DetectClassComponent,
	DetectFunctionComponent,
	DetectBoundComponent,
	DetectWrappedComponent,
	DetectDefaultExportComponent,
}

// Detect runs every detector over the tree and returns the descriptors in
// source order.
func Detect(root *sitter.Node, src []byte, rules ...Detector) []m.ComponentDescriptor {
	if len(rules) == 0 {
		rules = DefaultDetectors
	}

	var components []m.ComponentDescriptor

	Inspect(root, func(n *sitter.Node) bool {
		for _, rule := range rules {
			if d, ok := rule(n, src); ok {
				components = append(components, d)
				break
			}
		}

		return true
	})

	return components
}
