package transform

import (
	"fmt"

	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/pyast"
)

// stmtVarDecl lowers a declaration list. Hoisted vars were seeded at
// function entry; each declarator still assigns at its textual site.
func (t *Transformer) stmtVarDecl(c *ctx, n *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	for _, d := range n.Elements {
		if d == nil {
			continue
		}
		target := d.Target

		// Uninitialized vars were already seeded; let/const without an
		// initializer still bind the sentinel at the site.
		if d.Init == nil {
			if n.DeclKind != "var" && target != nil && target.Kind == jsast.KindIdent {
				out = append(out, pyast.NewAssign(
					pyast.NewName(t.targetName(target)), t.runtime.Name(HelperUndefined)))
			}
			continue
		}

		// Destructured require() flattens into a from-import.
		if imp, ok := t.flattenRequire(c, target, d.Init); ok {
			t.requireImports = append(t.requireImports, imp)
			continue
		}

		sub := *c
		sub.stmts = &out
		value := t.expr(&sub, d.Init)

		if target != nil && target.IsPattern() {
			src := t.destructureSource(&sub, &out, target, value)
			out = append(out, t.destructure(&sub, target, src)...)
			continue
		}
		if target != nil && target.Kind == jsast.KindIdent {
			out = append(out, pyast.NewAssign(pyast.NewName(t.targetName(target)), value).At(d.Span))
			continue
		}
		out = append(out, t.writeTarget(&sub, target, value, d.Span)...)
	}
	return out
}

// stmtExpr lowers an expression statement, special-casing the forms that
// are statements in the target language.
func (t *Transformer) stmtExpr(c *ctx, n *jsast.Node) []*pyast.Node {
	inner := n.Argument.Unparen()
	if inner == nil {
		return nil
	}
	switch inner.Kind {
	case jsast.KindAssign:
		return t.stmtAssign(c, inner)
	case jsast.KindUpdate:
		return t.stmtUpdate(c, inner)
	case jsast.KindSequence:
		t.info(inner, diag.CodeSequence, "comma operator expanded to statements")
		var out []*pyast.Node
		sub := *c
		sub.stmts = &out
		for _, e := range inner.Elements {
			e = e.Unparen()
			if e == nil {
				continue
			}
			switch e.Kind {
			case jsast.KindAssign:
				out = append(out, t.stmtAssign(&sub, e)...)
			case jsast.KindUpdate:
				out = append(out, t.stmtUpdate(&sub, e)...)
			default:
				out = append(out, pyast.NewExprStmt(t.expr(&sub, e)).At(e.Span))
			}
		}
		return out
	}
	var out []*pyast.Node
	sub := *c
	sub.stmts = &out
	expr := t.expr(&sub, inner)
	return append(out, pyast.NewExprStmt(expr).At(n.Span))
}

// stmtBlock lowers a block inline: the target has no block scoping, so
// renameBinding uniquifies block-scoped names that shadow outer ones.
func (t *Transformer) stmtBlock(c *ctx, n *jsast.Node) []*pyast.Node {
	sub := *c
	if s, ok := t.analysis.ScopeOf[n.ID]; ok {
		sub.scope = s
	}
	var out []*pyast.Node
	t.lowerInto(&sub, &out, n.Body)
	return out
}

func (t *Transformer) stmtIf(c *ctx, n *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	sub := *c
	sub.stmts = &out

	stmt := &pyast.Node{Kind: pyast.KindIf, Span: n.Span}
	stmt.Test = t.truthy(&sub, n.Test)
	stmt.Body = t.bodyList(c, n.Cons)
	if n.Alt != nil {
		stmt.Orelse = t.bodyList(c, n.Alt)
	}
	if len(stmt.Body) == 0 {
		stmt.Body = []*pyast.Node{pyast.NewPass()}
	}
	return append(out, stmt)
}

// bodyList lowers a loop or branch body statement into a target statement
// list, never returning an empty list for positions that require a body.
func (t *Transformer) bodyList(c *ctx, body *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	if body == nil {
		return out
	}
	if body.Kind == jsast.KindBlock {
		sub := *c
		if s, ok := t.analysis.ScopeOf[body.ID]; ok {
			sub.scope = s
		}
		t.lowerInto(&sub, &out, body.Body)
		return out
	}
	t.lowerStmtInto(c, &out, body)
	return out
}

func nonEmpty(body []*pyast.Node) []*pyast.Node {
	if len(body) == 0 {
		return []*pyast.Node{pyast.NewPass()}
	}
	return body
}

// stmtForC lowers a C-style for into init; while test: body + update.
func (t *Transformer) stmtForC(c *ctx, n *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	sub := *c
	if s, ok := t.analysis.ScopeOf[n.ID]; ok {
		sub.scope = s
	}
	sub.stmts = &out

	if n.Init != nil {
		if n.Init.Kind == jsast.KindVarDecl {
			out = append(out, t.stmtVarDecl(&sub, n.Init)...)
		} else {
			out = append(out, t.expressionAsStatements(&sub, n.Init)...)
		}
	}

	loop := &pyast.Node{Kind: pyast.KindWhile, Span: n.Span}
	if n.Test != nil {
		loop.Test = t.truthy(&sub, n.Test)
	} else {
		loop.Test = pyast.NewBool(true)
	}

	bodyCtx := sub
	bodyCtx.loopDepth++
	body := t.bodyList(&bodyCtx, n.BodyStmt)
	if n.Update != nil {
		body = append(body, t.expressionAsStatements(&bodyCtx, n.Update)...)
	}
	loop.Body = nonEmpty(body)
	return append(out, loop)
}

// expressionAsStatements lowers a bare expression (for-header init/update,
// sequence operands) into statements without introducing temporaries.
func (t *Transformer) expressionAsStatements(c *ctx, e *jsast.Node) []*pyast.Node {
	e = e.Unparen()
	if e == nil {
		return nil
	}
	switch e.Kind {
	case jsast.KindAssign:
		return t.stmtAssign(c, e)
	case jsast.KindUpdate:
		return t.stmtUpdate(c, e)
	case jsast.KindSequence:
		var out []*pyast.Node
		for _, el := range e.Elements {
			out = append(out, t.expressionAsStatements(c, el)...)
		}
		return out
	}
	var out []*pyast.Node
	sub := *c
	sub.stmts = &out
	expr := t.expr(&sub, e)
	return append(out, pyast.NewExprStmt(expr))
}

func (t *Transformer) stmtForIn(c *ctx, n *jsast.Node) []*pyast.Node {
	return t.forEach(c, n, HelperKeys)
}

func (t *Transformer) stmtForOf(c *ctx, n *jsast.Node) []*pyast.Node {
	return t.forEach(c, n, HelperIter)
}

// forEach lowers for..in and for..of; they differ only in the iteration
// helper.
func (t *Transformer) forEach(c *ctx, n *jsast.Node, helper string) []*pyast.Node {
	var out []*pyast.Node
	sub := *c
	if s, ok := t.analysis.ScopeOf[n.ID]; ok {
		sub.scope = s
	}
	sub.stmts = &out

	loop := &pyast.Node{Kind: pyast.KindForEach, Span: n.Span}
	loop.Iter = t.runtime.Call(helper, t.expr(&sub, n.Right))

	bodyCtx := sub
	bodyCtx.loopDepth++
	var prologue []*pyast.Node
	target := n.Left.Unparen()
	switch {
	case target != nil && target.Kind == jsast.KindIdent:
		loop.Target = pyast.NewName(t.targetName(target))
	case target != nil && target.IsPattern():
		tmp := t.newTemp("item")
		loop.Target = pyast.NewName(tmp)
		prologue = t.destructure(&bodyCtx, target, pyast.NewName(tmp))
	default:
		tmp := t.newTemp("item")
		loop.Target = pyast.NewName(tmp)
		prologue = t.writeTarget(&bodyCtx, target, pyast.NewName(tmp), n.Span)
	}

	loop.Body = nonEmpty(append(prologue, t.bodyList(&bodyCtx, n.BodyStmt)...))
	return append(out, loop)
}

func (t *Transformer) stmtWhile(c *ctx, n *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	sub := *c
	sub.stmts = &out

	loop := &pyast.Node{Kind: pyast.KindWhile, Span: n.Span}
	loop.Test = t.truthy(&sub, n.Test)

	bodyCtx := sub
	bodyCtx.loopDepth++
	loop.Body = nonEmpty(t.bodyList(&bodyCtx, n.BodyStmt))
	return append(out, loop)
}

// stmtDoWhile lowers do/while to `while True: body; if not test: break`.
func (t *Transformer) stmtDoWhile(c *ctx, n *jsast.Node) []*pyast.Node {
	t.info(n, diag.CodeDoWhile, "do/while lowered to while True with a trailing exit test")

	loop := &pyast.Node{Kind: pyast.KindWhile, Span: n.Span, Test: pyast.NewBool(true)}
	bodyCtx := *c
	bodyCtx.loopDepth++
	body := t.bodyList(&bodyCtx, n.BodyStmt)

	var testStmts []*pyast.Node
	testCtx := bodyCtx
	testCtx.stmts = &testStmts
	exit := &pyast.Node{
		Kind: pyast.KindIf,
		Test: &pyast.Node{Kind: pyast.KindUnaryOp, Op: "not", Value: t.truthy(&testCtx, n.Test)},
		Body: []*pyast.Node{{Kind: pyast.KindBreak}},
	}
	body = append(body, testStmts...)
	body = append(body, exit)
	loop.Body = body
	return []*pyast.Node{loop}
}

func (t *Transformer) stmtTry(c *ctx, n *jsast.Node) []*pyast.Node {
	stmt := &pyast.Node{Kind: pyast.KindTry, Span: n.Span}
	stmt.Body = nonEmpty(t.bodyList(c, n.BodyStmt))

	if h := n.Handler; h != nil {
		clause := &pyast.Node{Kind: pyast.KindExceptClause, Span: h.Span}
		clause.ExcType = t.runtime.Name(HelperError)

		sub := *c
		if s, ok := t.analysis.ScopeOf[h.ID]; ok {
			sub.scope = s
		}
		var prologue []*pyast.Node
		if h.Param != nil {
			raw := t.newTemp("err")
			clause.Name = raw
			// The except name unwraps back to the thrown value.
			prologue = t.destructure(&sub, h.Param, pyast.NewAttr(pyast.NewName(raw), "value"))
		}
		clause.Body = nonEmpty(append(prologue, t.bodyList(&sub, h.BodyStmt)...))
		stmt.Handlers = []*pyast.Node{clause}
	}

	if n.Finally != nil {
		stmt.Final = nonEmpty(t.bodyList(c, n.Finally))
	}
	return []*pyast.Node{stmt}
}

func (t *Transformer) stmtThrow(c *ctx, n *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	sub := *c
	sub.stmts = &out
	value := t.expr(&sub, n.Argument)

	// A re-thrown catch value is already a JsError payload; wrapping again
	// would nest. The runtime unwraps, so wrapping stays uniform here.
	raise := &pyast.Node{
		Kind:  pyast.KindRaise,
		Span:  n.Span,
		Value: t.runtime.Call(HelperError, value),
	}
	return append(out, raise)
}

func (t *Transformer) stmtReturn(c *ctx, n *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	sub := *c
	sub.stmts = &out

	ret := &pyast.Node{Kind: pyast.KindReturn, Span: n.Span}
	if n.Argument != nil && !c.dropReturnValue {
		ret.Value = t.expr(&sub, n.Argument)
	}
	return append(out, ret)
}

func (t *Transformer) stmtBreak(c *ctx, n *jsast.Node) []*pyast.Node {
	if n.Label == "" {
		return []*pyast.Node{{Kind: pyast.KindBreak, Span: n.Span}}
	}
	for _, l := range c.labels {
		if l.name == n.Label {
			l.brkUsed = true
			t.labelDirty++
			return []*pyast.Node{
				pyast.NewAssign(pyast.NewName(l.brkFlag), pyast.NewBool(true)),
				{Kind: pyast.KindBreak, Span: n.Span},
			}
		}
	}
	t.warn(n, diag.CodeLowering, fmt.Sprintf("break references unknown label %q", n.Label))
	return []*pyast.Node{{Kind: pyast.KindBreak, Span: n.Span}}
}

func (t *Transformer) stmtContinue(c *ctx, n *jsast.Node) []*pyast.Node {
	if n.Label == "" {
		return []*pyast.Node{{Kind: pyast.KindContinue, Span: n.Span}}
	}
	for _, l := range c.labels {
		if l.name == n.Label {
			l.cntUsed = true
			t.labelDirty++
			return []*pyast.Node{
				pyast.NewAssign(pyast.NewName(l.cntFlag), pyast.NewBool(true)),
				{Kind: pyast.KindBreak, Span: n.Span},
			}
		}
	}
	t.warn(n, diag.CodeLowering, fmt.Sprintf("continue references unknown label %q", n.Label))
	return []*pyast.Node{{Kind: pyast.KindContinue, Span: n.Span}}
}

// stmtLabeled rewrites labeled loops with flag variables. A label no
// break/continue mentions is simply dropped.
func (t *Transformer) stmtLabeled(c *ctx, n *jsast.Node) []*pyast.Node {
	if !labelIsUsed(n.BodyStmt, n.Label) {
		return t.stmt(c, n.BodyStmt)
	}
	t.info(n, diag.CodeLabel,
		fmt.Sprintf("labeled break/continue for %q rewritten with flag variables", n.Label))

	info := &labelInfo{
		name:    n.Label,
		brkFlag: t.newTemp("brk_" + n.Label),
		cntFlag: t.newTemp("cnt_" + n.Label),
		depth:   c.loopDepth + 1,
	}
	sub := *c
	sub.labels = append(append([]*labelInfo{}, c.labels...), info)

	loopStmts := t.stmt(&sub, n.BodyStmt)

	var out []*pyast.Node
	if info.brkUsed {
		out = append(out, pyast.NewAssign(pyast.NewName(info.brkFlag), pyast.NewBool(false)))
	}
	if info.cntUsed {
		out = append(out, pyast.NewAssign(pyast.NewName(info.cntFlag), pyast.NewBool(false)))
	}
	// Patch the labeled loop's own body with the owner epilogue: a break
	// flag exits, a continue flag resets and falls through to the next
	// iteration.
	for _, s := range loopStmts {
		if s.Kind == pyast.KindWhile || s.Kind == pyast.KindForEach {
			if info.cntUsed {
				s.Body = append(s.Body, &pyast.Node{
					Kind: pyast.KindIf,
					Test: pyast.NewName(info.cntFlag),
					Body: []*pyast.Node{
						pyast.NewAssign(pyast.NewName(info.cntFlag), pyast.NewBool(false)),
						{Kind: pyast.KindContinue},
					},
				})
			}
			if info.brkUsed {
				s.Body = append(s.Body, &pyast.Node{
					Kind: pyast.KindIf,
					Test: pyast.NewName(info.brkFlag),
					Body: []*pyast.Node{{Kind: pyast.KindBreak}},
				})
			}
		}
	}
	return append(out, loopStmts...)
}

// labelIsUsed scans for a break/continue mentioning the label without
// descending into nested functions.
func labelIsUsed(body *jsast.Node, label string) bool {
	used := false
	jsast.Walk(body, func(n *jsast.Node) bool {
		switch n.Kind {
		case jsast.KindFunctionDecl, jsast.KindFunctionExpr, jsast.KindArrowFunction:
			return false
		case jsast.KindBreak, jsast.KindContinue:
			if n.Label == label {
				used = true
			}
		}
		return !used
	})
	return used
}

func (t *Transformer) stmtWith(c *ctx, n *jsast.Node) []*pyast.Node {
	out := t.loweringFailure(n, "with statement cannot be translated faithfully")
	sub := *c
	if s, ok := t.analysis.ScopeOf[n.ID]; ok {
		sub.scope = s
	}
	return append(out, t.bodyList(&sub, n.BodyStmt)...)
}

func (t *Transformer) stmtEmpty(c *ctx, n *jsast.Node) []*pyast.Node {
	return nil
}

// stmtUnsupported surfaces constructs the parser marked as outside the
// subset: a warn plus a TODO marker at the site.
func (t *Transformer) stmtUnsupported(c *ctx, n *jsast.Node) []*pyast.Node {
	t.warn(n, diag.CodeUnsupported, n.Raw+" is outside the supported subset")
	return []*pyast.Node{{
		Kind:     pyast.KindCommentStmt,
		Span:     n.Span,
		Comments: []string{"TODO: unsupported construct: " + n.Raw},
	}}
}

// exprUnsupported is the expression-position counterpart.
func (t *Transformer) exprUnsupported(c *ctx, n *jsast.Node) *pyast.Node {
	t.warn(n, diag.CodeUnsupported, n.Raw+" is outside the supported subset")
	return t.runtime.Name(HelperUndefined).WithComment("TODO: unsupported construct: " + n.Raw)
}
