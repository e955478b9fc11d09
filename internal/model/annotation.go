package model

import (
	"bytes"
	"sort"
)

// Attribute names injected into markup. The runtime tree walker reads these,
// so they must stay stable.
const (
	AttrElementID     = "pc_el_id"
	AttrComponentName = "pc_comp_name"
	AttrComponentRef  = "pc_comp_ref_id"

	// IdentityParam is the destructured field threaded into components.
	IdentityParam = "pc_el_id"
	// PropsParam is the conventional props parameter name.
	PropsParam = "props"

	// ElementIDPrefix prefixes every generated element identifier.
	ElementIDPrefix = "unique_id_"
)

// PropHandling describes how a component receives its identity value.
type PropHandling string

const (
	// PropsDestructured means the identity field is read from an object pattern.
	PropsDestructured PropHandling = "destructured"
	// PropsPositional means the identity is a member of the props parameter.
	PropsPositional PropHandling = "props"
	// PropsClass means the identity is read from this.props.
	PropsClass PropHandling = "class"
	// PropsNone means the parameter list cannot carry a props object.
	PropsNone PropHandling = "none"
)

// Edit is a text insertion at a byte offset of the original source.
type Edit struct {
	Offset uint32
	Text   string
}

// ApplyEdits returns src with every edit inserted. Edits at the same offset
// keep the order in which they were produced.
func ApplyEdits(src []byte, edits []Edit) []byte {
	if len(edits) == 0 {
		out := make([]byte, len(src))
		copy(out, src)

		return out
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	var buf bytes.Buffer

	size := len(src)
	for _, e := range sorted {
		size += len(e.Text)
	}

	buf.Grow(size)

	last := 0

	for _, e := range sorted {
		off := int(e.Offset)
		if off > len(src) {
			off = len(src)
		}

		buf.Write(src[last:off])
		buf.WriteString(e.Text)
		last = off
	}

	buf.Write(src[last:])

	return buf.Bytes()
}
