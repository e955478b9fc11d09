package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

func TestCollectExports(t *testing.T) {
	src := `function A() { return <a /> }
function B() { return <b /> }
function C() { return <i /> }
export function D() { return <p /> }
export const E = () => <em />
export { A, B as Bee, C as default }
export { Remote } from './remote'
`
	tree := parse(t, src)
	exports := CollectExports(tree.Root(), tree.Source)

	assert.Equal(t, map[string]bool{"C": true}, exports.Default)
	assert.Equal(t, map[string]bool{"A": true, "Bee": true, "D": true, "E": true}, exports.Named)
}

func TestCollectExports_Default(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "function Card() { return <div /> }\nexport default Card", want: "Card"},
		{src: "export default function Card() { return <div /> }", want: "Card"},
		{src: "export default class Card extends Component {}", want: "Card"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree := parse(t, tt.src)
			exports := CollectExports(tree.Root(), tree.Source)

			assert.True(t, exports.Default[tt.want])
		})
	}
}

func TestExports_Apply(t *testing.T) {
	exports := Exports{
		Default: map[string]bool{"Card": true},
		Named:   map[string]bool{"Button": true},
	}

	components := []m.ComponentDescriptor{{Name: "Card"}, {Name: "Button"}, {Name: "Hidden"}}
	exports.Apply(components)

	assert.True(t, components[0].IsDefaultExport)
	assert.False(t, components[0].IsNamedExport)
	assert.True(t, components[1].IsNamedExport)
	assert.False(t, components[2].IsDefaultExport || components[2].IsNamedExport)
}
