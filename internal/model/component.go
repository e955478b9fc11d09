package model

// ComponentType represents the declaration style of a UI component.
type ComponentType string

const (
	// ComponentFunctional is a function, arrow function or wrapped function component.
	ComponentFunctional ComponentType = "functional"
	// ComponentClass is a class extending a recognized component base class.
	ComponentClass ComponentType = "class"
)

// Placeholder names used when a component declaration has no binding identifier.
const (
	UnknownClassComponent      = "UnknownClassComponent"
	UnknownFunctionComponent   = "UnknownFunctionComponent"
	UnknownFunctionalComponent = "UnknownFunctionalComponent"
	UnknownHOCComponent        = "UnknownHOCComponent"
)

// ComponentDescriptor is the classifier's record of one declared component.
//
// Offset and Line locate the declaring node (function declaration, class
// declaration or variable declarator) so the instrumentation pass can bind
// the descriptor to the same declaration it was derived from.
type ComponentDescriptor struct {
	Name            string        `json:"name"`
	Type            ComponentType `json:"type"`
	IsDefaultExport bool          `json:"isDefaultExport"`
	IsNamedExport   bool          `json:"isNamedExport"`
	WrappedIn       string        `json:"wrappedIn,omitempty"`
	Offset          uint32        `json:"offset"`
	Line            int           `json:"line"`
	Nested          bool          `json:"nested,omitempty"`
	// Wraps names the existing component a wrapper call was applied to, as
	// in memo(Card). Such descriptors have no body of their own.
	Wraps string `json:"wraps,omitempty"`
}

// IsPlaceholder reports whether the descriptor name was synthesized.
func (c ComponentDescriptor) IsPlaceholder() bool {
	switch c.Name {
	case UnknownClassComponent, UnknownFunctionComponent, UnknownFunctionalComponent, UnknownHOCComponent:
		return true
	}

	return false
}

// FileAnalysis is everything a single parse of a file yields for the inventory.
type FileAnalysis struct {
	ContainsJSX       bool
	ContainsReactRoot bool
	Components        []ComponentDescriptor
}
