package domain

import (
	"context"
	"fmt"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	"pcmark.dev/pkg/pcmark/internal/domain/detectors"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// Instrumenter computes the annotation edits for one source file.
type Instrumenter interface {
	// Instrument binds the file's inventory descriptors to its top-level
	// declarations and returns the edited source. It performs no I/O.
	Instrument(ctx context.Context, path m.Path, src []byte, node *m.ProjectNode, options ...InstrumentOption) (m.InstrumentResult, error)
}

// InstrumentOption adjusts a single Instrument call.
type InstrumentOption func(*instrumentConfig)

type instrumentConfig struct {
	quote byte
}

// WithJSXSingleQuote quotes injected attribute values with single quotes,
// matching Prettier's jsxSingleQuote.
func WithJSXSingleQuote(single bool) InstrumentOption {
	return func(c *instrumentConfig) {
		if single {
			c.quote = '\''
		} else {
			c.quote = '"'
		}
	}
}

type instrumenter struct {
	parser adapter.JSXFileAdapter
	newID  IDGenerator
}

// NewInstrumenter constructs an Instrumenter. A nil ids uses NewElementID.
func NewInstrumenter(parser adapter.JSXFileAdapter, ids IDGenerator) Instrumenter {
	if ids == nil {
		ids = NewElementID
	}

	return &instrumenter{parser: parser, newID: ids}
}

// declaration is a top-level construct that may define a component.
type declaration struct {
	node  *sitter.Node // declaring node; its start is the descriptor offset
	fn    *sitter.Node // function or class carrying parameters and body
	name  string
	class bool
}

func (in *instrumenter) Instrument(ctx context.Context, path m.Path, src []byte, node *m.ProjectNode, options ...InstrumentOption) (m.InstrumentResult, error) {
	cfg := instrumentConfig{quote: '"'}
	for _, option := range options {
		option(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return m.InstrumentResult{}, err
	}

	tree, err := in.parser.Parse(ctx, string(path), src)
	if err != nil {
		return m.InstrumentResult{}, fmt.Errorf("instrument %s: %w", path, err)
	}
	defer tree.Close()

	var components []m.ComponentDescriptor
	exact := false

	if node != nil {
		components = node.DefinedComponents
		exact = node.Hash != "" && node.Hash == adapter.HashBytes(src)
	}

	decls := topLevelDeclarations(tree.Root(), tree.Source)
	bound, unmatched := bindDeclarations(decls, components, exact)

	for _, d := range unmatched {
		if d.Nested {
			slog.Debug("Skipping nested component", "path", path, "component", d.Name, "line", d.Line)
			continue
		}

		if d.Wraps != "" {
			slog.Debug("Skipping wrapper without a body", "path", path, "component", d.Name, "wraps", d.Wraps)
			continue
		}

		slog.Warn("Component has no matching top-level declaration", "path", path, "component", d.Name, "line", d.Line)
	}

	w := &markupWriter{src: tree.Source, newID: in.newID, quote: cfg.quote, visited: map[uint32]bool{}}

	for i, decl := range decls {
		desc, ok := bound[i]
		if !ok {
			continue
		}

		plan := planIdentity(decl.fn, tree.Source, decl.class)
		w.edits = append(w.edits, plan.Edits...)

		w.annotateComponent(componentBody(decl, tree.Source), desc.Name, plan.Ref)

		slog.Debug("Instrumented component", "path", path, "component", desc.Name, "props", plan.Handling)
	}

	w.annotateRemaining(tree.Root())

	result := m.InstrumentResult{
		Code:     m.ApplyEdits(src, w.edits),
		Edits:    w.edits,
		Elements: w.elements,
		Roots:    w.roots,
	}

	for _, d := range unmatched {
		result.Unmatched = append(result.Unmatched, d.Name)
	}

	return result, nil
}

// topLevelDeclarations lists module-level declarations in source order,
// looking inside export statements.
func topLevelDeclarations(root *sitter.Node, src []byte) []declaration {
	var decls []declaration

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)

		if stmt.Type() != adapter.NodeExportStatement {
			decls = append(decls, declarationsOf(stmt, src)...)
			continue
		}

		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			decls = append(decls, declarationsOf(decl, src)...)
			continue
		}

		if value := stmt.ChildByFieldName("value"); value != nil && detectors.IsDefaultExport(stmt) {
			if d, ok := anonymousDeclaration(value, src); ok {
				decls = append(decls, d)
			}
		}
	}

	return decls
}

func declarationsOf(n *sitter.Node, src []byte) []declaration {
	switch n.Type() {
	case adapter.NodeFunctionDeclaration:
		return []declaration{{node: n, fn: n, name: detectors.Text(n.ChildByFieldName("name"), src)}}
	case adapter.NodeClassDeclaration:
		return []declaration{{node: n, fn: n, name: detectors.Text(n.ChildByFieldName("name"), src), class: true}}
	case adapter.NodeLexicalDeclaration, adapter.NodeVariableDeclaration:
		var decls []declaration

		for i := 0; i < int(n.NamedChildCount()); i++ {
			declarator := n.NamedChild(i)
			if declarator.Type() != adapter.NodeVariableDeclarator {
				continue
			}

			name := detectors.DeclaratorName(declarator, src)
			value := detectors.Unwrap(declarator.ChildByFieldName("value"))

			switch {
			case detectors.IsFunctionExpression(value):
				decls = append(decls, declaration{node: declarator, fn: value, name: orPlaceholder(name, m.UnknownFunctionalComponent)})
			case detectors.WrappedFunction(value, src) != nil:
				decls = append(decls, declaration{node: declarator, fn: detectors.WrappedFunction(value, src), name: orPlaceholder(name, m.UnknownHOCComponent)})
			}
		}

		return decls
	}

	return nil
}

func anonymousDeclaration(value *sitter.Node, src []byte) (declaration, bool) {
	switch {
	case detectors.IsFunctionExpression(value):
		return declaration{node: value, fn: value, name: m.UnknownFunctionalComponent}, true
	case value.Type() == adapter.NodeClass:
		return declaration{node: value, fn: value, name: m.UnknownClassComponent, class: true}, true
	case detectors.WrappedFunction(value, src) != nil:
		return declaration{node: value, fn: detectors.WrappedFunction(value, src), name: m.UnknownHOCComponent}, true
	}

	return declaration{}, false
}

func orPlaceholder(name, placeholder string) string {
	if name == "" {
		return placeholder
	}

	return name
}

// bindDeclarations pairs each descriptor with at most one declaration. When
// the file is unchanged since the inventory was built, a pair must agree on
// both offset and name; otherwise the name alone decides.
func bindDeclarations(decls []declaration, components []m.ComponentDescriptor, exact bool) (map[int]m.ComponentDescriptor, []m.ComponentDescriptor) {
	bound := map[int]m.ComponentDescriptor{}

	var unmatched []m.ComponentDescriptor

	for _, c := range components {
		idx := -1

		for i, d := range decls {
			if _, taken := bound[i]; taken || d.name != c.Name {
				continue
			}

			if exact && d.node.StartByte() != c.Offset {
				continue
			}

			idx = i

			break
		}

		if idx < 0 {
			unmatched = append(unmatched, c)
			continue
		}

		bound[idx] = c
	}

	return bound, unmatched
}

// componentBody returns the subtree whose markup belongs to the component.
// For classes this is the render method when present.
func componentBody(decl declaration, src []byte) *sitter.Node {
	body := decl.fn.ChildByFieldName("body")
	if !decl.class || body == nil {
		return body
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		method := body.NamedChild(i)
		if method.Type() == adapter.NodeMethodDefinition && detectors.Text(method.ChildByFieldName("name"), src) == "render" {
			return method.ChildByFieldName("body")
		}
	}

	return body
}

// markupWriter accumulates attribute edits for the elements of one file.
type markupWriter struct {
	src      []byte
	newID    IDGenerator
	quote    byte
	edits    []m.Edit
	visited  map[uint32]bool
	elements int
	roots    int
}

// annotateComponent tags every element under body and binds the first one
// to the component.
func (w *markupWriter) annotateComponent(body *sitter.Node, name, ref string) {
	if body == nil {
		return
	}

	rootDone := false

	detectors.Inspect(body, func(n *sitter.Node) bool {
		if !isTaggable(n, w.src) || w.visited[n.StartByte()] {
			return true
		}

		w.tagElement(n)

		if !rootDone {
			rootDone = true
			w.bindRoot(n, name, ref)
		}

		return true
	})
}

// annotateRemaining tags the elements no component walk reached.
func (w *markupWriter) annotateRemaining(root *sitter.Node) {
	detectors.Inspect(root, func(n *sitter.Node) bool {
		if isTaggable(n, w.src) && !w.visited[n.StartByte()] {
			w.tagElement(n)
		}

		return true
	})
}

func (w *markupWriter) tagElement(n *sitter.Node) {
	w.visited[n.StartByte()] = true

	if hasAttribute(n, w.src, m.AttrElementID) {
		return
	}

	w.edits = append(w.edits, m.Edit{
		Offset: attributeOffset(n),
		Text:   " " + m.AttrElementID + "=" + w.literal(w.newID()),
	})
	w.elements++
}

func (w *markupWriter) bindRoot(n *sitter.Node, name, ref string) {
	if hasAttribute(n, w.src, m.AttrComponentName) {
		return
	}

	w.edits = append(w.edits, m.Edit{
		Offset: attributeOffset(n),
		Text:   " " + m.AttrComponentName + "=" + w.literal(name) + " " + m.AttrComponentRef + "={" + ref + "}",
	})
	w.roots++
}

// literal renders a JSX string attribute value. JSX strings have no escapes;
// ids and component names never contain quotes.
func (w *markupWriter) literal(value string) string {
	q := string(w.quote)
	return q + value + q
}

// isTaggable reports whether n is an opening or self-closing element that
// accepts attributes. Fragments do not.
func isTaggable(n *sitter.Node, src []byte) bool {
	if n.Type() != adapter.NodeJSXOpeningElement && n.Type() != adapter.NodeJSXSelfClosingElement {
		return false
	}

	name := n.ChildByFieldName("name")
	if name == nil {
		return false
	}

	switch detectors.Text(name, src) {
	case "Fragment", "React.Fragment":
		return false
	}

	return true
}

func hasAttribute(n *sitter.Node, src []byte, attr string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == adapter.NodeJSXAttribute && detectors.Text(c.NamedChild(0), src) == attr {
			return true
		}
	}

	return false
}

// attributeOffset is where new attributes go: right after the element name
// or its last attribute. Trailing comments are skipped so a line comment
// cannot swallow the insertion.
func attributeOffset(n *sitter.Node) uint32 {
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		if c := n.NamedChild(i); c.Type() != nodeComment {
			return c.EndByte()
		}
	}

	return n.StartByte() + 1
}
