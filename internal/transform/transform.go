// Package transform is the tree-to-tree stage of the pipeline: it rewrites
// the source AST into the target AST, delegating JavaScript-specific
// semantics to the runtime facade where a direct mapping does not exist.
// Dispatch runs through a registry keyed on the source node kind; a kind
// missing from the registry is a lowering failure, reported and replaced
// with a TODO comment, never a silent drop.
package transform

import (
	"fmt"

	"js2py/internal/analyzer"
	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/pyast"
)

// Transformer drives one program's lowering. It allocates the target tree
// fresh; source nodes are never mutated.
type Transformer struct {
	analysis *analyzer.Result
	reporter diag.Reporter
	runtime  *RuntimeSet
	exports  *ExportsRecord

	stmtRules map[jsast.Kind]stmtRule
	exprRules map[jsast.Kind]exprRule

	renames map[analyzer.BindingID]string
	tempSeq int

	// labelDirty counts labeled break/continue lowerings; enclosing loops
	// compare it around each statement to place flag checks.
	labelDirty int

	// requireAliases maps a CommonJS module specifier to its hoisted
	// import alias, so repeated require("m") share one import.
	requireAliases map[string]string
	requireImports []*pyast.Node
}

type (
	stmtRule func(c *ctx, n *jsast.Node) []*pyast.Node
	exprRule func(c *ctx, n *jsast.Node) *pyast.Node
)

// ctx carries the per-position lowering state a rule needs: the current
// scope, the enclosing function's this-binding, the instance name, and the
// statement sink for expression lifting.
type ctx struct {
	scope    analyzer.ScopeID
	fnKind   analyzer.ThisKind
	selfName string // target-side name `this` rewrites to; "" when unbound

	// stmts is the statement sink: expressions that must become
	// statements during lowering append here and yield a name.
	stmts *[]*pyast.Node

	loopDepth int
	labels    []*labelInfo

	// dropReturnValue strips return arguments inside class initializers,
	// which must not return a value in the target language.
	dropReturnValue bool

	// cjsAssignedObject carries the object literal of a
	// `module.exports = {…}` assignment down to the export recorder.
	cjsAssignedObject *jsast.Node
}

type labelInfo struct {
	name    string
	brkFlag string
	cntFlag string
	brkUsed bool
	cntUsed bool
	depth   int // loop depth of the labeled loop
}

// Result is the transformer's output.
type Result struct {
	Module  *pyast.Node
	Runtime *RuntimeSet
	Exports *ExportsRecord
}

// Transform lowers a fully analyzed program into a target module.
func Transform(root *jsast.Node, analysis *analyzer.Result, reporter diag.Reporter) *Result {
	t := &Transformer{
		analysis:       analysis,
		reporter:       reporter,
		runtime:        NewRuntimeSet(),
		exports:        &ExportsRecord{},
		renames:        make(map[analyzer.BindingID]string),
		requireAliases: make(map[string]string),
	}
	t.initRules()

	module := &pyast.Node{Kind: pyast.KindModule, Span: root.Span}
	c := &ctx{scope: analysis.ScopeOf[root.ID], fnKind: analyzer.ThisModule}

	var body []*pyast.Node
	c.stmts = &body

	// CommonJS modules see a dict to collect exports.* writes into.
	if analysis.Shape == analyzer.ShapeCommonJS || analysis.Shape == analyzer.ShapeMixed {
		body = append(body, pyast.NewAssign(pyast.NewName(moduleExportsName), &pyast.Node{Kind: pyast.KindDict}))
	}

	body = append(body, t.hoistSeeds(c.scope)...)
	t.lowerInto(c, &body, root.Body)
	// Hoisted require() imports go to module top, before everything else.
	module.Body = append(module.Body, t.requireImports...)
	module.Body = append(module.Body, body...)

	return &Result{Module: module, Runtime: t.runtime, Exports: t.exports}
}

// hoistSeeds emits `name = undefined` for every hoisted var of the scope
// that is still a plain var (function declarations hoist with their value).
func (t *Transformer) hoistSeeds(scope analyzer.ScopeID) []*pyast.Node {
	if scope == analyzer.NoScopeID {
		return nil
	}
	s := t.analysis.Scope(scope)
	var out []*pyast.Node
	for _, id := range s.Bindings() {
		b := t.analysis.Binding(id)
		if !b.Hoisted || b.Kind != analyzer.BindVar {
			continue
		}
		out = append(out, pyast.NewAssign(
			pyast.NewName(t.renameBinding(id)),
			t.runtime.Name(HelperUndefined),
		))
	}
	return out
}

// lowerInto lowers a source statement list into dst, threading the
// statement sink so expression lifting lands before the lifted statement.
func (t *Transformer) lowerInto(c *ctx, dst *[]*pyast.Node, stmts []*jsast.Node) {
	for _, s := range stmts {
		t.lowerStmtInto(c, dst, s)
	}
}

// lowerStmtInto lowers one statement, appending label-propagation checks
// when the statement's subtree fired a labeled break or continue.
func (t *Transformer) lowerStmtInto(c *ctx, dst *[]*pyast.Node, s *jsast.Node) {
	sub := *dst
	inner := *c
	inner.stmts = &sub
	dirtyBefore := t.labelDirty

	out := t.stmt(&inner, s)
	sub = append(sub, out...)

	// The dirty counter lives on the Transformer because ctx is copied
	// freely: a labeled break deep inside a nested lowering must still be
	// visible to every enclosing loop on the way out.
	if c.loopDepth > 0 && t.labelDirty != dirtyBefore {
		sub = append(sub, c.labelChecks()...)
	}
	*dst = sub
}

// labelChecks emits the flag tests an enclosing loop needs after a nested
// statement set a labeled break/continue flag.
func (c *ctx) labelChecks() []*pyast.Node {
	var out []*pyast.Node
	for _, l := range c.labels {
		if l.depth > c.loopDepth {
			continue
		}
		if l.brkUsed {
			// A break flag exits every loop up to and including the owner.
			out = append(out, &pyast.Node{
				Kind: pyast.KindIf,
				Test: pyast.NewName(l.brkFlag),
				Body: []*pyast.Node{{Kind: pyast.KindBreak}},
			})
		}
		if l.cntUsed && l.depth < c.loopDepth {
			// A continue flag breaks intermediate loops only; the owner's
			// epilogue resets it and continues.
			out = append(out, &pyast.Node{
				Kind: pyast.KindIf,
				Test: pyast.NewName(l.cntFlag),
				Body: []*pyast.Node{{Kind: pyast.KindBreak}},
			})
		}
	}
	return out
}

// stmt dispatches one statement through the registry.
func (t *Transformer) stmt(c *ctx, n *jsast.Node) []*pyast.Node {
	if n == nil {
		return nil
	}
	if rule, ok := t.stmtRules[n.Kind]; ok {
		return rule(c, n)
	}
	return t.loweringFailure(n, fmt.Sprintf("no statement rule for %s", n.Kind))
}

// expr dispatches one expression through the registry.
func (t *Transformer) expr(c *ctx, n *jsast.Node) *pyast.Node {
	if n == nil {
		return t.runtime.Name(HelperUndefined)
	}
	if rule, ok := t.exprRules[n.Kind]; ok {
		return rule(c, n)
	}
	t.warn(n, diag.CodeLowering, fmt.Sprintf("no expression rule for %s", n.Kind))
	return t.runtime.Name(HelperUndefined).WithComment("TODO: untranslated " + n.Kind.String())
}

// loweringFailure reports the failure and yields a TODO comment statement
// so the gap stays visible in the output.
func (t *Transformer) loweringFailure(n *jsast.Node, msg string) []*pyast.Node {
	t.warn(n, diag.CodeLowering, msg)
	return []*pyast.Node{{
		Kind:     pyast.KindCommentStmt,
		Span:     n.Span,
		Comments: []string{"TODO: " + msg},
	}}
}

func (t *Transformer) warn(n *jsast.Node, code diag.Code, msg string) {
	diag.ReportWarning(t.reporter, code, n.Span, msg)
}

func (t *Transformer) info(n *jsast.Node, code diag.Code, msg string) {
	diag.ReportInfo(t.reporter, code, n.Span, msg)
}

// newTemp yields a fresh deterministic temporary name.
func (t *Transformer) newTemp(prefix string) string {
	t.tempSeq++
	return fmt.Sprintf("_%s_%d", prefix, t.tempSeq)
}

// lift appends a statement into the current sink.
func (c *ctx) lift(stmt *pyast.Node) {
	*c.stmts = append(*c.stmts, stmt)
}
