package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

func TestDetectFunctionComponent(t *testing.T) {
	src := `function Card({ title }) {
  return <div className="card">{title}</div>
}

function helper(a) {
  return a * 2
}

export function Page() {
  function Row() {
    return <tr />
  }
  return <table />
}
`
	tree := parse(t, src)

	got := Detect(tree.Root(), tree.Source, DetectFunctionComponent)
	require.Len(t, got, 3)

	assert.Equal(t, "Card", got[0].Name)
	assert.Equal(t, m.ComponentFunctional, got[0].Type)
	assert.False(t, got[0].Nested)

	assert.Equal(t, "Page", got[1].Name)
	assert.False(t, got[1].Nested)

	assert.Equal(t, "Row", got[2].Name)
	assert.True(t, got[2].Nested)
}

func TestDetectBoundComponent(t *testing.T) {
	src := `const Button = ({ label }) => <button>{label}</button>
let Panel = function () { return (<div />) }
const rows = items.map(item => <li>{item}</li>)
const { A } = { A: () => <a /> }
const value = 42
`
	tree := parse(t, src)

	got := Detect(tree.Root(), tree.Source, DetectBoundComponent)

	var names []string
	for _, d := range got {
		names = append(names, d.Name)
	}

	assert.Equal(t, []string{"Button", "Panel"}, names)
}

func TestDetectDefaultExportComponent(t *testing.T) {
	tree := parse(t, "export default () => <main />\n")

	got := Detect(tree.Root(), tree.Source)
	require.Len(t, got, 1)

	assert.Equal(t, m.UnknownFunctionalComponent, got[0].Name)
	assert.True(t, got[0].IsDefaultExport)
	assert.False(t, got[0].Nested)
}
