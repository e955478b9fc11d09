package detectors

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcmark.dev/pkg/pcmark/internal/adapter"
)

func parse(t *testing.T, src string) *adapter.SourceTree {
	t.Helper()

	tree, err := adapter.NewLocalJSXFileAdapter().Parse(context.Background(), "test.jsx", []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	return tree
}

func TestReturnsMarkup(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{name: "return element", src: "function A() { return <div /> }", want: true},
		{name: "parenthesized return", src: "function A() {\n  return (\n    <div>hi</div>\n  )\n}", want: true},
		{name: "return fragment", src: "function A() { return <><b /></> }", want: true},
		{name: "arrow callback with markup body", src: "function A(items) { const rows = items.map(i => <li>{i}</li>); return null }", want: true},
		{name: "nested function is opaque", src: "function A() { function inner() { return <p /> } return inner }", want: false},
		{name: "returns string", src: "function A() { return 'x' }", want: false},
		{name: "conditional return", src: "function A(x) { if (x) { return <a /> } return null }", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.src)
			fn := tree.Root().NamedChild(0)
			assert.Equal(t, tt.want, ReturnsMarkup(fn))
		})
	}
}

func TestReturnsMarkup_ArrowExpressionBody(t *testing.T) {
	tree := parse(t, "const A = () => (<section />)")
	decl := tree.Root().NamedChild(0).NamedChild(0)
	value := decl.ChildByFieldName("value")

	assert.True(t, ReturnsMarkup(value))
}

func TestContainsMarkup(t *testing.T) {
	assert.True(t, ContainsMarkup(parse(t, "const x = <br />").Root()))
	assert.True(t, ContainsMarkup(parse(t, "const x = <p>hi</p>").Root()))
	assert.False(t, ContainsMarkup(parse(t, "export const sum = (a, b) => a + b").Root()))
}

func TestIsTopLevel(t *testing.T) {
	tree := parse(t, "export function A() { function B() {} }\nconst C = 1")

	var names []string

	Inspect(tree.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case adapter.NodeFunctionDeclaration, adapter.NodeVariableDeclarator:
			if IsTopLevel(n) {
				names = append(names, Text(n.ChildByFieldName("name"), tree.Source))
			}
		}

		return true
	})

	assert.Equal(t, []string{"A", "C"}, names)
}
