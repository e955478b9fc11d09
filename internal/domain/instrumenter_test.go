package domain

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

// analyzedNode runs the classifier over src and returns the inventory node
// the instrumenter would receive for it.
func analyzedNode(t *testing.T, name, src string) *m.ProjectNode {
	t.Helper()

	classifier, err := NewClassifier(adapter.NewLocalJSXFileAdapter(), 0)
	require.NoError(t, err)

	analysis, err := classifier.Analyze(context.Background(), m.Path(name), []byte(src))
	require.NoError(t, err)

	return &m.ProjectNode{
		Type:              m.NodeFile,
		Name:              name,
		FullPath:          m.Path(name),
		Process:           true,
		ContainsJSX:       analysis.ContainsJSX,
		ContainsReactRoot: analysis.ContainsReactRoot,
		Hash:              adapter.HashBytes([]byte(src)),
		DefinedComponents: analysis.Components,
	}
}

func instrument(t *testing.T, name, src string) m.InstrumentResult {
	t.Helper()

	in := NewInstrumenter(adapter.NewLocalJSXFileAdapter(), SequentialIDs("t"))

	result, err := in.Instrument(context.Background(), m.Path(name), []byte(src), analyzedNode(t, name, src))
	require.NoError(t, err)

	return result
}

func TestInstrumenter_Card(t *testing.T) {
	src := `import React from 'react';

export default function Card({ title }) {
  return (
    <div className="card">
      <h2>{title}</h2>
    </div>
  );
}
`
	want := `import React from 'react';

export default function Card({ title, pc_el_id }) {
  return (
    <div className="card" pc_el_id="unique_id_t1" pc_comp_name="Card" pc_comp_ref_id={pc_el_id}>
      <h2 pc_el_id="unique_id_t2">{title}</h2>
    </div>
  );
}
`

	result := instrument(t, "Card.jsx", src)

	assert.Equal(t, want, string(result.Code))
	assert.Equal(t, 2, result.Elements)
	assert.Equal(t, 1, result.Roots)
	assert.Empty(t, result.Unmatched)
}

func TestInstrumenter_Idempotent(t *testing.T) {
	src := `export const Row = ({ label, ...rest }) => (
  <li {...rest}>
    <span>{label}</span>
    <br />
  </li>
);

export function Table(props) {
  return <ul>{props.children}</ul>;
}
`

	first := instrument(t, "Table.jsx", src)
	second := instrument(t, "Table.jsx", string(first.Code))

	assert.Equal(t, string(first.Code), string(second.Code))
	assert.Zero(t, second.Elements)
	assert.Zero(t, second.Roots)
	assert.Contains(t, string(first.Code), "{ label, pc_el_id, ...rest }")
}

func TestInstrumenter_IdentityReference(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "destructured",
			src:  "function A({ x }) { return <div /> }",
			want: []string{"function A({ x, pc_el_id })", "pc_comp_ref_id={pc_el_id}"},
		},
		{
			name: "empty pattern",
			src:  "function A({}) { return <div /> }",
			want: []string{"function A({pc_el_id})", "pc_comp_ref_id={pc_el_id}"},
		},
		{
			name: "aliased key",
			src:  "function A({ pc_el_id: id }) { return <div /> }",
			want: []string{"function A({ pc_el_id: id })", "pc_comp_ref_id={id}"},
		},
		{
			name: "props parameter",
			src:  "function A(props) { return <div /> }",
			want: []string{"function A(props)", "pc_comp_ref_id={props.pc_el_id}"},
		},
		{
			name: "renamed parameter",
			src:  "const A = (p) => <div />",
			want: []string{"const A = (p) =>", "pc_comp_ref_id={p.pc_el_id}"},
		},
		{
			name: "bare arrow parameter",
			src:  "const A = p => <div />",
			want: []string{"const A = p =>", "pc_comp_ref_id={p.pc_el_id}"},
		},
		{
			name: "no parameters",
			src:  "function A() { return <div /> }",
			want: []string{"function A(props)", "pc_comp_ref_id={props.pc_el_id}"},
		},
		{
			name: "rest parameter",
			src:  "function A(...args) { return <div /> }",
			want: []string{"function A(props, ...args)", "pc_comp_ref_id={props.pc_el_id}"},
		},
		{
			name: "array pattern",
			src:  "function A([a]) { return <div /> }",
			want: []string{"function A(props, [a])", "pc_comp_ref_id={props.pc_el_id}"},
		},
		{
			name: "class",
			src:  "class A extends React.Component {\n  render() {\n    return <div />\n  }\n}",
			want: []string{"class A extends React.Component", "pc_comp_ref_id={this.props.pc_el_id}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := instrument(t, "A.jsx", tt.src)

			for _, want := range tt.want {
				assert.Contains(t, string(result.Code), want)
			}

			assert.Equal(t, 1, result.Roots)
			assert.NotContains(t, string(result.Code), "{undefined}")

			again := instrument(t, "A.jsx", string(result.Code))
			assert.Equal(t, string(result.Code), string(again.Code))
		})
	}
}

func TestInstrumenter_EveryElementTaggedOnce(t *testing.T) {
	src := `const banner = <header><h1>Site</h1></header>;

function Layout({ children }) {
  const footer = <footer />;
  return (
    <main>
      {banner}
      <section>{children}</section>
      {footer}
    </main>
  );
}

export default Layout;
`

	result := instrument(t, "Layout.jsx", src)
	code := string(result.Code)

	// header, h1, footer, main, section
	assert.Equal(t, 5, result.Elements)
	assert.Equal(t, 5, strings.Count(code, `pc_el_id="`))
	assert.Equal(t, 1, strings.Count(code, "pc_comp_name="))
	assert.Contains(t, code, `<footer pc_el_id="unique_id_t1" pc_comp_name="Layout" pc_comp_ref_id={pc_el_id} />`)
}

func TestInstrumenter_FragmentsSkipped(t *testing.T) {
	src := `const List = () => (
  <>
    <li />
    <React.Fragment><li /></React.Fragment>
  </>
);
`

	result := instrument(t, "List.jsx", src)
	code := string(result.Code)

	assert.Equal(t, 2, result.Elements)
	assert.Contains(t, code, "<>")
	assert.Contains(t, code, "<React.Fragment>")
	assert.Contains(t, code, `<li pc_el_id="unique_id_t1" pc_comp_name="List" pc_comp_ref_id={props.pc_el_id} />`)
	assert.Contains(t, code, "const List = (props) =>")
}

func TestInstrumenter_WrappedComponent(t *testing.T) {
	src := `export const Input = React.forwardRef((props, ref) => <input ref={ref} />);
`

	result := instrument(t, "Input.jsx", src)

	assert.Contains(t, string(result.Code), `<input ref={ref} pc_el_id="unique_id_t1" pc_comp_name="Input" pc_comp_ref_id={props.pc_el_id} />`)
}

func TestInstrumenter_UnmatchedDescriptor(t *testing.T) {
	src := "function A() { return <div /> }"

	node := analyzedNode(t, "A.jsx", src)
	node.DefinedComponents = append(node.DefinedComponents, m.ComponentDescriptor{Name: "Ghost", Type: m.ComponentFunctional})

	in := NewInstrumenter(adapter.NewLocalJSXFileAdapter(), SequentialIDs("t"))

	result, err := in.Instrument(context.Background(), "A.jsx", []byte(src), node)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ghost"}, result.Unmatched)
	assert.Equal(t, 1, result.Roots)
}

func TestInstrumenter_StaleInventoryBindsByName(t *testing.T) {
	original := "function A() { return <div /> }"
	node := analyzedNode(t, "A.jsx", original)

	edited := "// header\n" + original

	in := NewInstrumenter(adapter.NewLocalJSXFileAdapter(), SequentialIDs("t"))

	result, err := in.Instrument(context.Background(), "A.jsx", []byte(edited), node)
	require.NoError(t, err)

	assert.Empty(t, result.Unmatched)
	assert.Equal(t, 1, result.Roots)
}

func TestInstrumenter_SyntaxError(t *testing.T) {
	in := NewInstrumenter(adapter.NewLocalJSXFileAdapter(), nil)

	_, err := in.Instrument(context.Background(), "Bad.jsx", []byte("function ( {"), nil)
	require.ErrorIs(t, err, adapter.ErrSyntax)
}

func TestNewElementID(t *testing.T) {
	a := NewElementID()
	b := NewElementID()

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, m.ElementIDPrefix))
	assert.Len(t, a, len(m.ElementIDPrefix)+32)
}

func TestInstrumenter_TrailingLineCommentInTag(t *testing.T) {
	src := "function Card(props) {\n  return <div a=\"1\" // note\n  ></div>;\n}\n"

	result := instrument(t, "Card.jsx", src)

	assert.Equal(t,
		"function Card(props) {\n  return <div a=\"1\" pc_el_id=\"unique_id_t1\" pc_comp_name=\"Card\" pc_comp_ref_id={props.pc_el_id} // note\n  ></div>;\n}\n",
		string(result.Code))
	assert.Equal(t, 1, result.Elements)
	assert.Equal(t, 1, result.Roots)

	again := instrument(t, "Card.jsx", string(result.Code))
	assert.Equal(t, string(result.Code), string(again.Code))
}

func TestInstrumenter_WrapperAroundExistingComponent(t *testing.T) {
	src := "function Card(props) {\n  return <div />;\n}\n\nexport const Fancy = React.memo(Card);\n"

	node := analyzedNode(t, "Card.jsx", src)
	require.Len(t, node.DefinedComponents, 2)
	assert.Equal(t, "Fancy", node.DefinedComponents[1].Name)
	assert.Equal(t, "Card", node.DefinedComponents[1].Wraps)
	assert.True(t, node.DefinedComponents[1].IsNamedExport)

	result := instrument(t, "Card.jsx", src)

	assert.Contains(t, string(result.Code), `<div pc_el_id="unique_id_t1" pc_comp_name="Card" pc_comp_ref_id={props.pc_el_id} />`)
	assert.Equal(t, 1, result.Roots)
	assert.Equal(t, []string{"Fancy"}, result.Unmatched)
}

func TestInstrumenter_JSXSingleQuote(t *testing.T) {
	src := "function Card(props) {\n  return <div><span /></div>;\n}\n"

	in := NewInstrumenter(adapter.NewLocalJSXFileAdapter(), SequentialIDs("q"))

	result, err := in.Instrument(context.Background(), "Card.jsx", []byte(src), analyzedNode(t, "Card.jsx", src), WithJSXSingleQuote(true))
	require.NoError(t, err)

	assert.Equal(t,
		"function Card(props) {\n  return <div pc_el_id='unique_id_q1' pc_comp_name='Card' pc_comp_ref_id={props.pc_el_id}><span pc_el_id='unique_id_q2' /></div>;\n}\n",
		string(result.Code))
}
