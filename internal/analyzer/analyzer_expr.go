package analyzer

import (
	"fmt"

	"js2py/internal/diag"
	"js2py/internal/jsast"
)

func (b *binder) expr(n *jsast.Node, scope ScopeID) {
	if n == nil {
		return
	}
	switch n.Kind {
	case jsast.KindIdent:
		b.reference(n, n.Name, scope)

	case jsast.KindThis:
		b.thisUse(n)

	case jsast.KindNumberLit, jsast.KindStringLit, jsast.KindBoolLit,
		jsast.KindNullLit, jsast.KindUndefinedLit, jsast.KindRegexLit,
		jsast.KindSuper, jsast.KindUnsupported:
		// Leaves.

	case jsast.KindTemplateLit:
		for _, e := range n.Elements {
			b.expr(e, scope)
		}

	case jsast.KindParen:
		b.expr(n.Argument, scope)

	case jsast.KindMember:
		b.expr(n.Object, scope)
		if n.Computed {
			b.expr(n.Property, scope)
		}

	case jsast.KindCall:
		b.callRisks(n)
		b.expr(n.Callee, scope)
		for _, a := range n.Args {
			b.expr(a, scope)
		}

	case jsast.KindNew:
		b.callRisks(n)
		b.expr(n.Callee, scope)
		for _, a := range n.Args {
			b.expr(a, scope)
		}

	case jsast.KindAssign:
		b.assignRisks(n)
		b.assignTarget(n.Left, scope)
		b.expr(n.Right, scope)

	case jsast.KindUpdate:
		b.assignTarget(n.Argument, scope)

	case jsast.KindUnary:
		if n.Op == "delete" {
			if m := n.Argument.Unparen(); m != nil && m.Kind == jsast.KindMember && m.Computed {
				b.addRisk(n, RiskDelete)
				diag.ReportInfo(b.reporter, diag.CodeDelete, n.Span,
					"delete of a computed member relies on runtime key removal")
			}
		}
		b.expr(n.Argument, scope)

	case jsast.KindBinary, jsast.KindLogical:
		b.expr(n.Left, scope)
		b.expr(n.Right, scope)

	case jsast.KindConditional:
		b.expr(n.Test, scope)
		b.expr(n.Cons, scope)
		b.expr(n.Alt, scope)

	case jsast.KindSequence:
		for _, e := range n.Elements {
			b.expr(e, scope)
		}

	case jsast.KindObjectLit:
		for _, p := range n.Elements {
			if p == nil {
				continue
			}
			if p.Kind == jsast.KindSpread {
				b.expr(p.Argument, scope)
				continue
			}
			if p.Computed {
				b.expr(p.Key, scope)
			}
			b.expr(p.Value, scope)
		}

	case jsast.KindArrayLit:
		for _, e := range n.Elements {
			b.expr(e, scope)
		}

	case jsast.KindSpread, jsast.KindRestElement:
		b.expr(n.Argument, scope)

	case jsast.KindAssignPattern:
		b.expr(n.Left, scope)
		b.expr(n.Right, scope)

	case jsast.KindFunctionExpr:
		b.function(n, scope, b.functionThisKind(n))

	case jsast.KindArrowFunction:
		b.function(n, scope, ThisLexical)

	case jsast.KindClassExpr:
		b.class(n, scope)
	}
}

// reference resolves a name use and records it on the binding. Unknown
// names fall back to the builtin list; anything else is an unresolved
// global.
func (b *binder) reference(n *jsast.Node, name string, scope ScopeID) {
	if name == "" {
		return
	}
	if name == "arguments" {
		b.addRisk(n, RiskArguments)
		diag.ReportWarning(b.reporter, diag.CodeArguments, n.Span,
			"arguments object has no direct equivalent; use rest parameters")
	}
	if id, ok := b.arena.lookup(scope, name); ok {
		b.res.BindingOf[n.ID] = id
		bind := b.arena.binding(id)
		bind.Refs = append(bind.Refs, n.ID)
		return
	}
	if IsBuiltin(name) {
		// Builtins bind lazily in the root scope so every reference still
		// resolves to exactly one record.
		root := b.res.RootScope()
		id, ok := b.arena.resolveIn(root, name)
		if !ok {
			id = b.arena.declare(root, name, BindBuiltin, n.Span, n.ID)
		}
		b.res.BindingOf[n.ID] = id
		bind := b.arena.binding(id)
		bind.Refs = append(bind.Refs, n.ID)
		return
	}
	b.res.Unresolved[n.ID] = name
	diag.ReportInfo(b.reporter, diag.CodeUnresolved, n.Span,
		fmt.Sprintf("%q does not resolve to any declaration or known global", name))
}

// assignTarget visits the left side of an assignment, counting writes on
// identifier bindings.
func (b *binder) assignTarget(n *jsast.Node, scope ScopeID) {
	if n == nil {
		return
	}
	switch n.Kind {
	case jsast.KindIdent:
		b.reference(n, n.Name, scope)
		if id, ok := b.res.BindingOf[n.ID]; ok {
			b.arena.binding(id).Assignments++
		}
	case jsast.KindMember:
		b.expr(n, scope)
	case jsast.KindParen:
		b.assignTarget(n.Argument, scope)
	case jsast.KindObjectPattern, jsast.KindArrayPattern:
		b.patternRisk(n)
		for _, e := range n.Elements {
			if e == nil {
				continue
			}
			if e.Kind == jsast.KindProperty {
				b.assignTarget(e.Value, scope)
			} else {
				b.assignTarget(e, scope)
			}
		}
	case jsast.KindAssignPattern:
		b.assignTarget(n.Left, scope)
		b.expr(n.Right, scope)
	case jsast.KindRestElement:
		b.assignTarget(n.Argument, scope)
	default:
		b.expr(n, scope)
	}
}

// callRisks flags eval, the Function constructor, and the
// prototype-manipulating Object helpers, on calls and new expressions.
func (b *binder) callRisks(n *jsast.Node) {
	callee := n.Callee.Unparen()
	if callee == nil {
		return
	}
	if callee.Kind == jsast.KindIdent && (callee.Name == "eval" || callee.Name == "Function") {
		b.addRisk(n, RiskEval)
		diag.ReportWarning(b.reporter, diag.CodeEval, n.Span,
			fmt.Sprintf("%s cannot be translated statically", callee.Name))
		return
	}
	if callee.Kind == jsast.KindMember && !callee.Computed {
		obj := callee.Object.Unparen()
		if obj != nil && obj.Kind == jsast.KindIdent && obj.Name == "Object" && callee.Property != nil {
			switch callee.Property.Name {
			case "create", "defineProperty", "defineProperties", "setPrototypeOf":
				b.addRisk(n, RiskProtoMutation)
				diag.ReportInfo(b.reporter, diag.CodeProto, n.Span,
					fmt.Sprintf("Object.%s relies on prototype semantics", callee.Property.Name))
			}
		}
	}
}

// assignRisks flags prototype writes and dynamic computed-key writes.
func (b *binder) assignRisks(n *jsast.Node) {
	left := n.Left.Unparen()
	if left == nil {
		return
	}
	if _, ok := prototypeAssignBase(left); ok {
		b.addRisk(n, RiskProtoMutation)
		diag.ReportInfo(b.reporter, diag.CodeProto, n.Span,
			"prototype assignment relies on runtime class shims")
		return
	}
	if left.Kind == jsast.KindMember && left.Computed {
		if key := left.Property.Unparen(); key != nil && !isLiteralKey(key) {
			b.addRisk(n, RiskDynWrite)
			diag.ReportInfo(b.reporter, diag.CodeDynWrite, n.Span,
				"computed member write with a non-literal key")
		}
	}
}

func isLiteralKey(n *jsast.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case jsast.KindStringLit, jsast.KindNumberLit:
		return true
	}
	return false
}

// thisUse classifies a textual `this` against the current function stack.
func (b *binder) thisUse(n *jsast.Node) {
	kind := b.effectiveThis()
	switch kind {
	case ThisModule:
		b.addRisk(n, RiskThisTop)
		diag.ReportWarning(b.reporter, diag.CodeThisTop, n.Span,
			"this at module top level is undefined in the translation")
	case ThisOrdinary:
		diag.ReportWarning(b.reporter, diag.CodeThisTop, n.Span,
			"this inside a plain function call has no stable binding")
	}
}

// effectiveThis resolves through lexical (arrow) frames to the nearest
// real function's this kind.
func (b *binder) effectiveThis() ThisKind {
	for i := len(b.thisStack) - 1; i >= 0; i-- {
		if b.thisStack[i] != ThisLexical {
			return b.thisStack[i]
		}
	}
	return ThisModule
}

// functionThisKind decides the this kind for a non-arrow function node
// from the constructor-usage prescan.
func (b *binder) functionThisKind(n *jsast.Node) ThisKind {
	if b.ctorNodes[n.ID] {
		return ThisConstructor
	}
	if n.Name != "" && b.ctorNames[n.Name] {
		return ThisConstructor
	}
	return ThisOrdinary
}

// function opens the function scope, declares parameters, and walks the
// body under the given this kind.
func (b *binder) function(n *jsast.Node, enclosing ScopeID, this ThisKind) {
	if this == ThisConstructor {
		b.res.CtorFuncs[n.ID] = true
	}
	b.res.ThisOf[n.ID] = this

	fnScope := b.arena.newScope(ScopeFunction, enclosing, n.ID)
	b.res.ScopeOf[n.ID] = fnScope

	// A named function expression binds its own name inside its scope.
	if n.Kind == jsast.KindFunctionExpr && n.Name != "" {
		b.arena.declare(fnScope, n.Name, BindFunction, n.Span, n.ID)
	}
	for _, p := range n.Params {
		b.declarePattern(p, fnScope, BindParam)
	}

	b.thisStack = append(b.thisStack, this)
	defer func() { b.thisStack = b.thisStack[:len(b.thisStack)-1] }()

	body := n.FnBody
	if body == nil {
		return
	}
	if body.Kind == jsast.KindBlock {
		// The body block shares the function scope: parameters and body
		// vars live together. No extra block scope for single-expression
		// arrow bodies either.
		b.hoistScan(body.Body, fnScope)
		for _, s := range body.Body {
			b.stmt(s, fnScope)
		}
		return
	}
	b.expr(body, fnScope)
}

// class opens the class-body scope for method names; method bodies are
// function scopes whose parent skips the class body, so method names are
// not lexically visible inside them.
func (b *binder) class(n *jsast.Node, enclosing ScopeID) {
	if n.Super != nil {
		b.expr(n.Super, enclosing)
	}
	classScope := b.arena.newScope(ScopeClassBody, enclosing, n.ID)
	b.res.ScopeOf[n.ID] = classScope

	for _, m := range n.Body {
		if m == nil || m.Kind != jsast.KindMethodDef {
			continue
		}
		if m.Key != nil && m.Key.Kind == jsast.KindIdent {
			b.arena.declare(classScope, m.Key.Name, BindFunction, m.Span, m.ID)
		}
		if m.Computed {
			b.expr(m.Key, enclosing)
		}
		this := ThisMethod
		if m.DeclKind == "constructor" {
			this = ThisConstructor
		}
		if fn := m.Value; fn != nil {
			b.function(fn, enclosing, this)
		}
	}
}
