package transform

import (
	"fmt"

	"js2py/internal/analyzer"
	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/pyast"
)

// ctorThisName is the instance name injected into plain functions that the
// analyzer observed being used as constructors; the runtime class shim
// supplies the instance when the function runs under js_new.
const ctorThisName = "_this"

// stmtFunctionDecl lowers a function declaration. Functions observed as
// constructors get the instance parameter and a runtime wrapper so both
// plain calls and js_new keep working.
func (t *Transformer) stmtFunctionDecl(c *ctx, n *jsast.Node) []*pyast.Node {
	name := t.declaredName(n)
	def := t.functionDef(c, n, name)
	out := []*pyast.Node{def}
	if t.analysis.CtorFuncs[n.ID] {
		out = append(out, pyast.NewAssign(
			pyast.NewName(name),
			t.runtime.Call(HelperCtor, pyast.NewName(name)),
		))
	}
	return out
}

// exprFunction lowers a function expression: the def is lifted above the
// use site and the expression becomes a reference to its name.
func (t *Transformer) exprFunction(c *ctx, n *jsast.Node) *pyast.Node {
	name := n.Name
	if name != "" {
		name = t.renameFree(name)
	} else {
		name = t.newTemp("fn")
	}
	def := t.functionDef(c, n, name)
	c.lift(def)
	if t.analysis.CtorFuncs[n.ID] {
		c.lift(pyast.NewAssign(
			pyast.NewName(name),
			t.runtime.Call(HelperCtor, pyast.NewName(name)),
		))
	}
	return pyast.NewName(name).At(n.Span)
}

// exprArrow lowers an arrow function: a lambda when the body is a single
// expression and no capture is written, a lifted def otherwise. Either
// way `this` stays lexical: the body closes over the enclosing self name.
func (t *Transformer) exprArrow(c *ctx, n *jsast.Node) *pyast.Node {
	if t.arrowIsLambda(c, n) {
		params, _ := t.lowerParams(c, n)
		sub := *c
		sub.scope = t.analysis.ScopeOf[n.ID]
		sub.fnKind = analyzer.ThisLexical
		return (&pyast.Node{
			Kind:   pyast.KindLambda,
			Span:   n.Span,
			Params: params,
			Value:  t.expr(&sub, n.FnBody),
		}).At(n.Span)
	}

	name := t.newTemp("arrow")
	def := t.functionDef(c, n, name)
	c.lift(def)
	return pyast.NewName(name).At(n.Span)
}

// arrowIsLambda checks the two lambda conditions: single-expression body
// and read-only captures.
func (t *Transformer) arrowIsLambda(c *ctx, n *jsast.Node) bool {
	if n.FnBody == nil || n.FnBody.Kind == jsast.KindBlock {
		return false
	}
	for _, p := range n.Params {
		switch p.Kind {
		case jsast.KindIdent:
		case jsast.KindAssignPattern:
			if p.Left == nil || p.Left.Kind != jsast.KindIdent {
				return false
			}
		case jsast.KindRestElement:
			if p.Argument == nil || p.Argument.Kind != jsast.KindIdent {
				return false
			}
		default:
			return false
		}
	}
	// Expression bodies can still contain lifted assignments (e.g. an
	// assignment expression); a lambda has no statement sink.
	writes := false
	arrowScope := t.analysis.ScopeOf[n.ID]
	jsast.Walk(n.FnBody, func(m *jsast.Node) bool {
		switch m.Kind {
		case jsast.KindAssign, jsast.KindUpdate, jsast.KindSequence:
			writes = true
			return false
		case jsast.KindIdent:
			if id, ok := t.analysis.BindingOf[m.ID]; ok {
				b := t.analysis.Binding(id)
				if b.Assignments > 0 && !t.scopeWithin(b.Scope, arrowScope) {
					writes = true
					return false
				}
			}
		}
		return true
	})
	return !writes
}

// capturedWriteDecls emits the global/nonlocal declarations a function
// needs for assignments to bindings it closes over; without them the
// target language would rebind locally.
func (t *Transformer) capturedWriteDecls(fn *jsast.Node) []*pyast.Node {
	fnScope := t.analysis.ScopeOf[fn.ID]
	if fnScope == analyzer.NoScopeID || fn.FnBody == nil {
		return nil
	}
	var globals, nonlocals []pyast.Alias
	seen := map[string]bool{}
	jsast.Walk(fn.FnBody, func(m *jsast.Node) bool {
		switch m.Kind {
		case jsast.KindFunctionDecl, jsast.KindFunctionExpr, jsast.KindArrowFunction:
			// Nested functions declare their own captures. Arrows share
			// `this` but not this mechanism; their lifted defs run through
			// functionDef too.
			return m == fn.FnBody || m == fn
		case jsast.KindAssign, jsast.KindUpdate:
			target := m.Left
			if m.Kind == jsast.KindUpdate {
				target = m.Argument
			}
			target = target.Unparen()
			if target == nil || target.Kind != jsast.KindIdent {
				return true
			}
			id, ok := t.analysis.BindingOf[target.ID]
			if !ok {
				return true
			}
			b := t.analysis.Binding(id)
			if t.scopeWithin(b.Scope, fnScope) || b.Kind == analyzer.BindBuiltin {
				return true
			}
			name := t.renameBinding(id)
			if seen[name] {
				return true
			}
			seen[name] = true
			if t.analysis.Scope(b.Scope).Kind == analyzer.ScopeModule {
				globals = append(globals, pyast.Alias{Name: name})
			} else {
				nonlocals = append(nonlocals, pyast.Alias{Name: name})
			}
		}
		return true
	})

	var out []*pyast.Node
	if len(globals) > 0 {
		out = append(out, &pyast.Node{Kind: pyast.KindGlobal, Aliases: globals})
	}
	if len(nonlocals) > 0 {
		out = append(out, &pyast.Node{Kind: pyast.KindNonlocal, Aliases: nonlocals})
	}
	return out
}

// scopeWithin reports whether scope is inside (or equal to) ancestor.
func (t *Transformer) scopeWithin(scope, ancestor analyzer.ScopeID) bool {
	for id := scope; id != analyzer.NoScopeID; id = t.analysis.Scope(id).Parent {
		if id == ancestor {
			return true
		}
	}
	return false
}

// functionDef builds a def node for any function-like source node.
func (t *Transformer) functionDef(c *ctx, n *jsast.Node, name string) *pyast.Node {
	def := &pyast.Node{Kind: pyast.KindFunctionDef, Span: n.Span, Name: name}

	sub := *c
	sub.scope = t.analysis.ScopeOf[n.ID]
	sub.fnKind = t.analysis.ThisOf[n.ID]
	sub.loopDepth = 0
	sub.labels = nil
	sub.dropReturnValue = false

	isCtorFn := t.analysis.CtorFuncs[n.ID] && n.Kind != jsast.KindArrowFunction
	if isCtorFn {
		def.Params = append(def.Params, pyast.Param{Name: ctorThisName})
		sub.selfName = ctorThisName
	} else if n.Kind == jsast.KindArrowFunction {
		// Arrows keep the enclosing self binding.
		sub.selfName = c.selfName
	} else {
		sub.selfName = ""
	}

	params, prologue := t.lowerParams(&sub, n)
	def.Params = append(def.Params, params...)

	var body []*pyast.Node
	body = append(body, t.capturedWriteDecls(n)...)
	body = append(body, prologue...)
	body = append(body, t.hoistSeeds(sub.scope)...)

	if n.FnBody == nil {
		def.Body = nonEmpty(body)
		return def
	}
	if n.FnBody.Kind == jsast.KindBlock {
		t.lowerInto(&sub, &body, n.FnBody.Body)
	} else {
		var out []*pyast.Node
		exprCtx := sub
		exprCtx.stmts = &out
		value := t.expr(&exprCtx, n.FnBody)
		body = append(body, out...)
		body = append(body, &pyast.Node{Kind: pyast.KindReturn, Value: value})
	}
	def.Body = nonEmpty(body)
	return def
}

// lowerParams converts the parameter list; destructuring parameters become
// temporaries unpacked in a body prologue.
func (t *Transformer) lowerParams(c *ctx, n *jsast.Node) ([]pyast.Param, []*pyast.Node) {
	var params []pyast.Param
	var prologue []*pyast.Node
	for i, p := range n.Params {
		if p == nil {
			continue
		}
		switch p.Kind {
		case jsast.KindIdent:
			params = append(params, pyast.Param{Name: t.targetName(p)})
		case jsast.KindAssignPattern:
			if p.Left != nil && p.Left.Kind == jsast.KindIdent {
				params = append(params, pyast.Param{
					Name:    t.targetName(p.Left),
					Default: t.expr(c, p.Right),
				})
				continue
			}
			tmp := t.newTemp("param")
			params = append(params, pyast.Param{Name: tmp, Default: t.expr(c, p.Right)})
			prologue = append(prologue, t.destructure(c, p.Left, pyast.NewName(tmp))...)
		case jsast.KindRestElement:
			if p.Argument != nil && p.Argument.Kind == jsast.KindIdent {
				params = append(params, pyast.Param{Name: t.targetName(p.Argument), Star: true})
				continue
			}
			t.warn(p, diag.CodeLowering, "rest parameter must be a plain identifier")
		case jsast.KindObjectPattern, jsast.KindArrayPattern:
			tmp := t.newTemp(fmt.Sprintf("param%d", i))
			params = append(params, pyast.Param{Name: tmp})
			prologue = append(prologue, t.destructure(c, p, pyast.NewName(tmp))...)
		default:
			t.warn(p, diag.CodeLowering, "unsupported parameter pattern "+p.Kind.String())
		}
	}
	return params, prologue
}

// declaredName resolves a declaration's own binding name.
func (t *Transformer) declaredName(n *jsast.Node) string {
	if id, ok := t.analysis.BindingOf[n.ID]; ok {
		return t.renameBinding(id)
	}
	return t.renameFree(n.Name)
}

// exprClass lowers a class expression: the class def lifts above the use
// site and the expression becomes a reference to its name.
func (t *Transformer) exprClass(c *ctx, n *jsast.Node) *pyast.Node {
	name := n.Name
	if name != "" {
		name = t.renameFree(name)
	} else {
		name = t.newTemp("cls")
	}
	cls := t.classDef(c, n, name)
	c.lift(cls)
	return pyast.NewName(name).At(n.Span)
}

// stmtClass lowers class declarations and named class expressions in
// statement position.
func (t *Transformer) stmtClass(c *ctx, n *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	sub := *c
	sub.stmts = &out
	cls := t.classDef(&sub, n, t.declaredName(n))
	return append(out, cls)
}

// classDef builds the class with its methods; `this` becomes the
// conventional instance name and the constructor becomes the initializer.
func (t *Transformer) classDef(c *ctx, n *jsast.Node, name string) *pyast.Node {
	cls := &pyast.Node{Kind: pyast.KindClassDef, Span: n.Span, Name: name}
	if n.Super != nil {
		cls.Base = t.expr(c, n.Super)
	}

	for _, m := range n.Body {
		if m == nil {
			continue
		}
		if m.Kind != jsast.KindMethodDef {
			cls.Body = append(cls.Body, &pyast.Node{
				Kind:     pyast.KindCommentStmt,
				Span:     m.Span,
				Comments: []string{"TODO: unsupported class member"},
			})
			continue
		}
		if m.Computed {
			t.warn(m, diag.CodeLowering, "computed method name is not translated")
			cls.Body = append(cls.Body, &pyast.Node{
				Kind:     pyast.KindCommentStmt,
				Span:     m.Span,
				Comments: []string{"TODO: computed method name"},
			})
			continue
		}
		cls.Body = append(cls.Body, t.methodDef(c, m))
	}

	if len(cls.Body) == 0 {
		cls.Body = []*pyast.Node{pyast.NewPass()}
	}
	return cls
}

func (t *Transformer) methodDef(c *ctx, m *jsast.Node) *pyast.Node {
	name := methodName(m)
	switch m.DeclKind {
	case "constructor":
		name = "__init__"
	case "get", "set":
		t.warn(m, diag.CodeAccessor,
			fmt.Sprintf("accessor %q emitted as a regular method", name))
	}

	fn := m.Value
	def := &pyast.Node{Kind: pyast.KindFunctionDef, Span: m.Span, Name: name}

	sub := *c
	sub.scope = t.analysis.ScopeOf[fn.ID]
	sub.fnKind = t.analysis.ThisOf[fn.ID]
	sub.loopDepth = 0
	sub.labels = nil
	sub.dropReturnValue = m.DeclKind == "constructor"

	if m.Static {
		def.Decorators = append(def.Decorators, "staticmethod")
		sub.selfName = ""
	} else {
		def.Params = append(def.Params, pyast.Param{Name: "self"})
		sub.selfName = "self"
	}

	params, prologue := t.lowerParams(&sub, fn)
	def.Params = append(def.Params, params...)

	var body []*pyast.Node
	body = append(body, t.capturedWriteDecls(fn)...)
	body = append(body, prologue...)
	body = append(body, t.hoistSeeds(sub.scope)...)
	if fn.FnBody != nil && fn.FnBody.Kind == jsast.KindBlock {
		t.lowerInto(&sub, &body, fn.FnBody.Body)
	}
	def.Body = nonEmpty(body)
	return def
}

func methodName(m *jsast.Node) string {
	if m.Key == nil {
		return "_method"
	}
	switch m.Key.Kind {
	case jsast.KindIdent:
		return m.Key.Name
	case jsast.KindStringLit:
		return m.Key.Str
	case jsast.KindNumberLit:
		return "_" + m.Key.Raw
	}
	return "_method"
}
