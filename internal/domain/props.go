package domain

import (
	sitter "github.com/smacker/go-tree-sitter"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	"pcmark.dev/pkg/pcmark/internal/domain/detectors"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

const nodeComment = "comment"

// identityPlan says how a component reads its identity value and which
// parameter edits make that value available.
type identityPlan struct {
	Handling m.PropHandling
	Ref      string
	Edits    []m.Edit
}

// planIdentity inspects the parameters of a component function. class
// components read this.props and need no edit.
func planIdentity(fn *sitter.Node, src []byte, class bool) identityPlan {
	if class {
		return identityPlan{Handling: m.PropsClass, Ref: "this.props." + m.IdentityParam}
	}

	// Arrow functions with a single unparenthesized parameter.
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return positional(detectors.Text(single, src))
	}

	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return identityPlan{Handling: m.PropsNone, Ref: "undefined"}
	}

	list := namedChildren(params)

	for _, p := range list {
		if pattern := objectPattern(p); pattern != nil {
			return destructured(pattern, src)
		}
	}

	for _, p := range list {
		if p.Type() == adapter.NodeIdentifier && detectors.Text(p, src) == m.PropsParam {
			return positional(m.PropsParam)
		}
	}

	if len(list) == 0 {
		plan := positional(m.PropsParam)
		plan.Edits = []m.Edit{{Offset: params.StartByte() + 1, Text: m.PropsParam}}

		return plan
	}

	first := list[0]
	if first.Type() == adapter.NodeAssignmentPattern {
		first = first.ChildByFieldName("left")
	}

	// A plain first parameter already holds the props object under another
	// name; reading through it keeps the call signature unchanged.
	if first != nil && first.Type() == adapter.NodeIdentifier {
		return positional(detectors.Text(first, src))
	}

	// Rest and array patterns cannot carry the identity, so props goes first.
	plan := positional(m.PropsParam)
	plan.Edits = []m.Edit{{Offset: params.StartByte() + 1, Text: m.PropsParam + ", "}}

	return plan
}

func positional(name string) identityPlan {
	return identityPlan{Handling: m.PropsPositional, Ref: name + "." + m.IdentityParam}
}

// objectPattern returns the destructuring pattern of a parameter, looking
// through a default value.
func objectPattern(p *sitter.Node) *sitter.Node {
	switch p.Type() {
	case adapter.NodeObjectPattern:
		return p
	case adapter.NodeAssignmentPattern:
		if left := p.ChildByFieldName("left"); left != nil && left.Type() == adapter.NodeObjectPattern {
			return left
		}
	}

	return nil
}

// destructured threads the identity field into an object pattern unless a
// key with that name is already present.
func destructured(pattern *sitter.Node, src []byte) identityPlan {
	plan := identityPlan{Handling: m.PropsDestructured, Ref: m.IdentityParam}

	fields := namedChildren(pattern)

	for _, f := range fields {
		switch f.Type() {
		case adapter.NodeShorthandPropPattern:
			if detectors.Text(f, src) == m.IdentityParam {
				return plan
			}
		case adapter.NodeObjectAssignPattern:
			if detectors.Text(f.ChildByFieldName("left"), src) == m.IdentityParam {
				return plan
			}
		case adapter.NodePairPattern:
			if detectors.Text(f.ChildByFieldName("key"), src) != m.IdentityParam {
				continue
			}

			value := f.ChildByFieldName("value")
			if value != nil && value.Type() == adapter.NodeAssignmentPattern {
				value = value.ChildByFieldName("left")
			}

			if value != nil && value.Type() == adapter.NodeIdentifier {
				plan.Ref = detectors.Text(value, src)
			}

			return plan
		}
	}

	switch {
	case len(fields) == 0:
		plan.Edits = []m.Edit{{Offset: pattern.StartByte() + 1, Text: m.IdentityParam}}
	case fields[len(fields)-1].Type() == adapter.NodeRestPattern:
		plan.Edits = []m.Edit{{Offset: fields[len(fields)-1].StartByte(), Text: m.IdentityParam + ", "}}
	default:
		plan.Edits = []m.Edit{{Offset: fields[len(fields)-1].EndByte(), Text: ", " + m.IdentityParam}}
	}

	return plan
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() != nodeComment {
			out = append(out, c)
		}
	}

	return out
}
