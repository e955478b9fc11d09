package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

func TestDetectClassComponent(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "bare Component", src: "class Header extends Component { render() { return <h1 /> } }", want: []string{"Header"}},
		{name: "React.PureComponent", src: "class List extends React.PureComponent { render() { return <ul /> } }", want: []string{"List"}},
		{name: "non component base", src: "class Store extends EventEmitter {}", want: nil},
		{name: "no base", src: "class Plain { render() { return <p /> } }", want: nil},
		{name: "anonymous default export", src: "export default class extends Component { render() { return <i /> } }", want: []string{m.UnknownClassComponent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.src)

			var got []string
			for _, d := range Detect(tree.Root(), tree.Source, DetectClassComponent) {
				assert.Equal(t, m.ComponentClass, d.Type)
				got = append(got, d.Name)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectClassComponent_Position(t *testing.T) {
	src := "import React from 'react'\n\nclass Header extends React.Component {\n  render() { return <h1 /> }\n}\n"
	tree := parse(t, src)

	got := Detect(tree.Root(), tree.Source, DetectClassComponent)
	require.Len(t, got, 1)

	assert.Equal(t, 3, got[0].Line)
	assert.Equal(t, "class Header", src[got[0].Offset:got[0].Offset+12])
	assert.False(t, got[0].Nested)
}
