package engine

import (
	"context"
	"crypto/sha256"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// declaration is a name-introducing node found during extraction.
type declaration struct {
	Name      string
	Kind      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// reference is any identifier occurrence that is not a declared name.
type reference struct {
	Name      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// fileExtraction is the parse result for one source file.
type fileExtraction struct {
	Path  string
	Hash  string
	Decls []declaration
	Refs  []reference
}

func contentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// declKindFor maps a parent node type to the declaration kind when the
// identifier sits in that parent's "name" field.
var declKindFor = map[string]string{
	"function_declaration":           "function",
	"method_declaration":             "method",
	"type_spec":                      "type",
	"const_spec":                     "const",
	"var_spec":                       "var",
	"parameter_declaration":          "param",
	"variadic_parameter_declaration": "param",
	"field_declaration":              "field",
	"import_spec":                    "import",
	"type_parameter_declaration":     "typeparam",
}

// identNodeTypes are the grammar node types that carry a name occurrence.
var identNodeTypes = map[string]bool{
	"identifier":         true,
	"type_identifier":    true,
	"field_identifier":   true,
	"package_identifier": true,
}

// extractFile parses content with the Go grammar and splits every name
// occurrence into declarations and references. A fresh parser is created
// per call; tree-sitter parsers are not goroutine-safe, and extraction
// runs on a worker pool.
func extractFile(ctx context.Context, path string, content []byte) (fileExtraction, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return fileExtraction{}, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	out := fileExtraction{Path: path, Hash: contentHash(content)}

	cursor := sitter.NewTreeCursor(tree.RootNode())
	defer cursor.Close()

	for {
		node := cursor.CurrentNode()
		field := cursor.CurrentFieldName()
		if identNodeTypes[node.Type()] {
			name := node.Content(content)
			if name != "" && name != "_" {
				start := node.StartPoint()
				end := node.EndPoint()
				kind := classifyDecl(node, field)
				if kind != "" {
					out.Decls = append(out.Decls, declaration{
						Name:      name,
						Kind:      kind,
						StartLine: int(start.Row),
						StartCol:  int(start.Column),
						EndLine:   int(end.Row),
						EndCol:    int(end.Column),
					})
				} else {
					out.Refs = append(out.Refs, reference{
						Name:      name,
						StartLine: int(start.Row),
						StartCol:  int(start.Column),
						EndLine:   int(end.Row),
						EndCol:    int(end.Column),
					})
				}
			}
		}

		if cursor.GoToFirstChild() {
			continue
		}
		for {
			if cursor.GoToNextSibling() {
				break
			}
			if !cursor.GoToParent() {
				return out, nil
			}
		}
	}
}

// classifyDecl returns the declaration kind for an identifier node, or
// "" when the node is an ordinary reference.
func classifyDecl(node *sitter.Node, field string) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	if parent.Type() == "package_clause" {
		return "package"
	}
	if field != "name" {
		return ""
	}
	return declKindFor[parent.Type()]
}
