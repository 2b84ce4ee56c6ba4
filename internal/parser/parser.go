// Package parser is the front-end of the translation pipeline. It parses
// JavaScript with the tree-sitter grammar and bridges the concrete syntax
// tree into the closed jsast union the rest of the pipeline consumes.
package parser

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/source"
)

// Mode selects how module syntax is treated.
type Mode string

const (
	ModeScript Mode = "script"
	ModeModule Mode = "module"
)

// ErrSyntax is returned in strict mode when the input has a syntax error.
var ErrSyntax = errors.New("parser: syntax error")

// Options configures a parse run.
type Options struct {
	Mode     Mode
	Tolerant bool
}

// Result aggregates the parse output: the bridged AST, the cache key, and
// the number of nodes (post renumbering).
type Result struct {
	Root      *jsast.Node
	Hash      string
	NodeCount uint32
}

// Parse parses the file identified by fileID within fs. Diagnostics are
// reported through reporter. In tolerant mode syntax errors become
// JSR-PARSE diagnostics and a best-effort tree is returned; in strict mode
// the first syntax error aborts with ErrSyntax.
func Parse(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options, reporter diag.Reporter) (*Result, error) {
	file := fs.Get(fileID)

	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("parser: tree-sitter: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()

	syntaxErrs := collectSyntaxErrors(root, fileID)
	for _, se := range syntaxErrs {
		diag.ReportError(reporter, diag.CodeParse, se.span, se.msg)
		if !opts.Tolerant {
			return nil, fmt.Errorf("%w at %s", ErrSyntax, se.span)
		}
	}

	b := &bridge{
		content:  file.Content,
		fileID:   fileID,
		mode:     opts.Mode,
		reporter: reporter,
	}
	program := b.program(root)
	count := jsast.Renumber(program)

	return &Result{
		Root:      program,
		Hash:      file.CacheKey(string(opts.Mode)),
		NodeCount: count,
	}, nil
}

type syntaxError struct {
	span source.Span
	msg  string
}

// collectSyntaxErrors walks the CST for ERROR and MISSING nodes. The scan
// is depth-first so errors come out in source order.
func collectSyntaxErrors(root *sitter.Node, fileID source.FileID) []syntaxError {
	if !root.HasError() {
		return nil
	}
	var out []syntaxError
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "ERROR" {
			out = append(out, syntaxError{
				span: spanOf(n, fileID),
				msg:  "syntax error: unexpected input",
			})
			return
		}
		if n.IsMissing() {
			out = append(out, syntaxError{
				span: spanOf(n, fileID),
				msg:  fmt.Sprintf("syntax error: missing %s", n.Type()),
			})
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	return out
}

func spanOf(n *sitter.Node, fileID source.FileID) source.Span {
	return source.Span{File: fileID, Start: n.StartByte(), End: n.EndByte()}
}
