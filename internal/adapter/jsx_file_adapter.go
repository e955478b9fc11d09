package adapter

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// ErrSyntax is returned when the parsed tree contains syntax errors.
var ErrSyntax = errors.New("syntax error")

// Tree-sitter JavaScript node types the domain inspects.
const (
	NodeProgram               = "program"
	NodeFunctionDeclaration   = "function_declaration"
	NodeGeneratorFunctionDecl = "generator_function_declaration"
	NodeFunctionExpression    = "function_expression"
	NodeFunction              = "function" // older grammars name function expressions "function"
	NodeGeneratorFunction     = "generator_function"
	NodeArrowFunction         = "arrow_function"
	NodeMethodDefinition      = "method_definition"
	NodeClassDeclaration      = "class_declaration"
	NodeClass                 = "class"
	NodeClassHeritage         = "class_heritage"
	NodeClassBody             = "class_body"
	NodeLexicalDeclaration    = "lexical_declaration"
	NodeVariableDeclaration   = "variable_declaration"
	NodeVariableDeclarator    = "variable_declarator"
	NodeReturnStatement       = "return_statement"
	NodeStatementBlock        = "statement_block"
	NodeParenthesizedExpr     = "parenthesized_expression"
	NodeCallExpression        = "call_expression"
	NodeMemberExpression      = "member_expression"
	NodeIdentifier            = "identifier"
	NodePropertyIdentifier    = "property_identifier"
	NodeFormalParameters      = "formal_parameters"
	NodeObjectPattern         = "object_pattern"
	NodeShorthandPropPattern  = "shorthand_property_identifier_pattern"
	NodePairPattern           = "pair_pattern"
	NodeObjectAssignPattern   = "object_assignment_pattern"
	NodeAssignmentPattern     = "assignment_pattern"
	NodeRestPattern           = "rest_pattern"
	NodeExportStatement       = "export_statement"
	NodeExportClause          = "export_clause"
	NodeExportSpecifier       = "export_specifier"
	NodeJSXElement            = "jsx_element"
	NodeJSXSelfClosingElement = "jsx_self_closing_element"
	NodeJSXOpeningElement     = "jsx_opening_element"
	NodeJSXAttribute          = "jsx_attribute"
	NodeJSXFragment           = "jsx_fragment"
	NodeNestedIdentifier      = "nested_identifier"
	NodeTemplateString        = "template_string"

	nodeError = "ERROR"
)

// SourceTree is a parsed file: the tree-sitter tree plus the bytes it was
// parsed from. The owner must call Close.
type SourceTree struct {
	tree   *sitter.Tree
	Source []byte
}

// Root returns the program node.
func (t *SourceTree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Text returns the source text covered by n.
func (t *SourceTree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}

	return string(t.Source[n.StartByte():n.EndByte()])
}

// Close releases the tree-sitter tree.
func (t *SourceTree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
	}
}

// JSXFileAdapter encapsulates JavaScript/JSX parsing so the domain layer can
// focus on classification and instrumentation rules.
type JSXFileAdapter interface {
	// Parse builds a syntax tree for src. A tree containing syntax errors is
	// closed and reported as ErrSyntax.
	Parse(ctx context.Context, filename string, src []byte) (*SourceTree, error)

	// Extensions returns the file extensions the parser handles.
	Extensions() []string
}

// LocalJSXFileAdapter provides a JSXFileAdapter backed by tree-sitter.
type LocalJSXFileAdapter struct {
	extensions []string
}

// NewLocalJSXFileAdapter constructs a LocalJSXFileAdapter. With no
// extensions it handles .js and .jsx.
func NewLocalJSXFileAdapter(extensions ...string) *LocalJSXFileAdapter {
	if len(extensions) == 0 {
		extensions = []string{".js", ".jsx"}
	}

	return &LocalJSXFileAdapter{extensions: extensions}
}

// Extensions returns the file extensions this parser handles.
func (a *LocalJSXFileAdapter) Extensions() []string {
	return a.extensions
}

// Parse builds a tree for the provided filename/source pair. A new parser is
// created per call so Parse is safe for concurrent use.
func (a *LocalJSXFileAdapter) Parse(ctx context.Context, filename string, src []byte) (*SourceTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	st := &SourceTree{tree: tree, Source: src}

	if root := st.Root(); root.HasError() {
		defer st.Close()

		if bad := firstErrorNode(root); bad != nil {
			pos := bad.StartPoint()
			return nil, fmt.Errorf("%s:%d:%d: %w", filename, pos.Row+1, pos.Column+1, ErrSyntax)
		}

		return nil, fmt.Errorf("%s: %w", filename, ErrSyntax)
	}

	return st, nil
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}

	if n.Type() == nodeError || n.IsMissing() {
		return n
	}

	if !n.HasError() {
		return nil
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}

	return nil
}
