package analyzer

import (
	"fmt"

	"js2py/internal/diag"
	"js2py/internal/jsast"
)

// Analyze runs the binder over a parsed program. The walk is a single pass
// in source order; hoisted declarations are pre-registered when their
// function scope opens, so no fixed-point iteration is needed.
func Analyze(root *jsast.Node, reporter diag.Reporter) *Result {
	b := &binder{
		arena:    newArena(),
		reporter: reporter,
		res: &Result{
			BindingOf:  make(map[jsast.NodeID]BindingID),
			ScopeOf:    make(map[jsast.NodeID]ScopeID),
			Risks:      make(map[jsast.NodeID]RiskFlag),
			ThisOf:     make(map[jsast.NodeID]ThisKind),
			CtorFuncs:  make(map[jsast.NodeID]bool),
			Unresolved: make(map[jsast.NodeID]string),
		},
		ctorNames: make(map[string]bool),
		ctorNodes: make(map[jsast.NodeID]bool),
	}
	b.res.arena = b.arena

	b.prescan(root)

	moduleScope := b.arena.newScope(ScopeModule, NoScopeID, root.ID)
	b.res.ScopeOf[root.ID] = moduleScope
	b.thisStack = []ThisKind{ThisModule}

	b.hoistScan(root.Body, moduleScope)
	for _, stmt := range root.Body {
		b.stmt(stmt, moduleScope)
	}
	return b.res
}

type binder struct {
	arena    *arena
	res      *Result
	reporter diag.Reporter

	ctorNames map[string]bool
	ctorNodes map[jsast.NodeID]bool

	thisStack []ThisKind
}

func (b *binder) addRisk(node *jsast.Node, flag RiskFlag) {
	b.res.Risks[node.ID] |= flag
}

// ---------------------------------------------------------------- prescan

// prescan makes one cheap pass over the whole tree to classify the module
// shape and to discover which functions are used as constructors, which
// the single binding pass cannot know ahead of their textual position.
func (b *binder) prescan(root *jsast.Node) {
	sawESM := false
	sawCJS := false

	jsast.Walk(root, func(n *jsast.Node) bool {
		switch n.Kind {
		case jsast.KindImportDecl, jsast.KindExportNamed, jsast.KindExportDefault, jsast.KindExportAll:
			sawESM = true
		case jsast.KindCall:
			if callee := n.Callee.Unparen(); callee != nil && callee.Kind == jsast.KindIdent && callee.Name == "require" {
				sawCJS = true
			}
		case jsast.KindNew:
			if callee := n.Callee.Unparen(); callee != nil {
				switch callee.Kind {
				case jsast.KindIdent:
					b.ctorNames[callee.Name] = true
				case jsast.KindFunctionExpr, jsast.KindFunctionDecl:
					b.ctorNodes[callee.ID] = true
				}
			}
		case jsast.KindAssign:
			if isModuleExportsTarget(n.Left) {
				sawCJS = true
			}
			if base, ok := prototypeAssignBase(n.Left); ok {
				b.ctorNames[base] = true
				if rhs := n.Right.Unparen(); rhs != nil && rhs.Kind == jsast.KindFunctionExpr {
					b.ctorNodes[rhs.ID] = true
				}
			}
		}
		return true
	})

	switch {
	case sawESM && sawCJS:
		b.res.Shape = ShapeMixed
		diag.ReportWarning(b.reporter, diag.CodeMixedModules, root.Span,
			"file mixes ES-module and CommonJS forms; ES-module exports win")
	case sawESM:
		b.res.Shape = ShapeESM
	case sawCJS:
		b.res.Shape = ShapeCommonJS
	default:
		b.res.Shape = ShapeScript
	}
}

// isModuleExportsTarget matches `module.exports` and `exports.x` targets.
func isModuleExportsTarget(n *jsast.Node) bool {
	n = n.Unparen()
	if n == nil || n.Kind != jsast.KindMember || n.Computed {
		return false
	}
	obj := n.Object.Unparen()
	if obj == nil {
		return false
	}
	if obj.Kind == jsast.KindIdent && obj.Name == "module" &&
		n.Property != nil && n.Property.Name == "exports" {
		return true
	}
	return obj.Kind == jsast.KindIdent && obj.Name == "exports"
}

// prototypeAssignBase matches `X.prototype.Y = ...` and `X.prototype = ...`
// targets and returns X's name.
func prototypeAssignBase(n *jsast.Node) (string, bool) {
	n = n.Unparen()
	if n == nil || n.Kind != jsast.KindMember {
		return "", false
	}
	// X.prototype = ...
	if !n.Computed && n.Property != nil && n.Property.Name == "prototype" {
		if obj := n.Object.Unparen(); obj != nil && obj.Kind == jsast.KindIdent {
			return obj.Name, true
		}
	}
	// X.prototype.Y = ...
	obj := n.Object.Unparen()
	if obj != nil && obj.Kind == jsast.KindMember && !obj.Computed &&
		obj.Property != nil && obj.Property.Name == "prototype" {
		if base := obj.Object.Unparen(); base != nil && base.Kind == jsast.KindIdent {
			return base.Name, true
		}
	}
	return "", false
}

// --------------------------------------------------------------- hoisting

// hoistScan pre-declares var and function declarations into the function
// or module scope that just opened. It walks statement structure but never
// descends into nested function bodies or class bodies.
func (b *binder) hoistScan(stmts []*jsast.Node, fnScope ScopeID) {
	for _, s := range stmts {
		b.hoistStmt(s, fnScope)
	}
}

func (b *binder) hoistStmt(n *jsast.Node, fnScope ScopeID) {
	if n == nil {
		return
	}
	switch n.Kind {
	case jsast.KindVarDecl:
		if n.DeclKind != "var" {
			return
		}
		for _, d := range n.Elements {
			b.hoistPattern(d.Target, fnScope)
		}
	case jsast.KindFunctionDecl:
		if n.Name != "" {
			id := b.arena.declare(fnScope, n.Name, BindFunction, n.Span, n.ID)
			b.arena.binding(id).Hoisted = true
		}
	case jsast.KindBlock:
		b.hoistScan(n.Body, fnScope)
	case jsast.KindIf:
		b.hoistStmt(n.Cons, fnScope)
		b.hoistStmt(n.Alt, fnScope)
	case jsast.KindForC:
		if n.Init != nil && n.Init.Kind == jsast.KindVarDecl {
			b.hoistStmt(n.Init, fnScope)
		}
		b.hoistStmt(n.BodyStmt, fnScope)
	case jsast.KindForIn, jsast.KindForOf:
		if n.DeclKind == "var" {
			b.hoistPattern(n.Left, fnScope)
		}
		b.hoistStmt(n.BodyStmt, fnScope)
	case jsast.KindWhile, jsast.KindDoWhile, jsast.KindLabeled, jsast.KindWith:
		b.hoistStmt(n.BodyStmt, fnScope)
	case jsast.KindSwitch:
		for _, c := range n.Elements {
			b.hoistScan(c.Body, fnScope)
		}
	case jsast.KindTry:
		b.hoistStmt(n.BodyStmt, fnScope)
		if n.Handler != nil {
			b.hoistStmt(n.Handler.BodyStmt, fnScope)
		}
		b.hoistStmt(n.Finally, fnScope)
	case jsast.KindExportNamed, jsast.KindExportDefault:
		b.hoistStmt(n.Argument, fnScope)
	}
}

func (b *binder) hoistPattern(n *jsast.Node, fnScope ScopeID) {
	if n == nil {
		return
	}
	switch n.Kind {
	case jsast.KindIdent:
		id := b.arena.declare(fnScope, n.Name, BindVar, n.Span, n.ID)
		b.arena.binding(id).Hoisted = true
	case jsast.KindAssignPattern:
		b.hoistPattern(n.Left, fnScope)
	case jsast.KindRestElement:
		b.hoistPattern(n.Argument, fnScope)
	case jsast.KindObjectPattern, jsast.KindArrayPattern:
		for _, e := range n.Elements {
			if e == nil {
				continue
			}
			if e.Kind == jsast.KindProperty {
				b.hoistPattern(e.Value, fnScope)
			} else {
				b.hoistPattern(e, fnScope)
			}
		}
	}
}

// ------------------------------------------------------------- statements

func (b *binder) stmt(n *jsast.Node, scope ScopeID) {
	if n == nil {
		return
	}
	switch n.Kind {
	case jsast.KindVarDecl:
		b.varDecl(n, scope)

	case jsast.KindFunctionDecl:
		// The name was hoisted; bind the declaration node to it.
		if n.Name != "" {
			if id, ok := b.arena.resolveIn(b.arena.hoistTarget(scope), n.Name); ok {
				b.res.BindingOf[n.ID] = id
			}
		}
		b.function(n, scope, b.functionThisKind(n))

	case jsast.KindClassDecl:
		b.declareChecked(scope, n.Name, BindClass, n)
		b.class(n, scope)

	case jsast.KindBlock:
		inner := b.arena.newScope(ScopeBlock, scope, n.ID)
		b.res.ScopeOf[n.ID] = inner
		for _, s := range n.Body {
			b.stmt(s, inner)
		}

	case jsast.KindExprStmt:
		b.expr(n.Argument, scope)

	case jsast.KindIf:
		b.expr(n.Test, scope)
		b.stmt(n.Cons, scope)
		b.stmt(n.Alt, scope)

	case jsast.KindForC:
		headScope := scope
		if n.Init != nil && n.Init.Kind == jsast.KindVarDecl && n.Init.DeclKind != "var" {
			// let/const headers get a dedicated scope covering header+body.
			headScope = b.arena.newScope(ScopeBlock, scope, n.ID)
			b.res.ScopeOf[n.ID] = headScope
		}
		if n.Init != nil {
			if n.Init.Kind == jsast.KindVarDecl {
				b.varDecl(n.Init, headScope)
			} else {
				b.expr(n.Init, headScope)
			}
		}
		b.expr(n.Test, headScope)
		b.expr(n.Update, headScope)
		b.stmt(n.BodyStmt, headScope)

	case jsast.KindForIn, jsast.KindForOf:
		headScope := scope
		if n.DeclKind == "let" || n.DeclKind == "const" {
			headScope = b.arena.newScope(ScopeBlock, scope, n.ID)
			b.res.ScopeOf[n.ID] = headScope
		}
		b.expr(n.Right, headScope)
		if n.DeclKind != "" {
			kind := BindVar
			switch n.DeclKind {
			case "let":
				kind = BindLet
			case "const":
				kind = BindConst
			}
			target := headScope
			if kind == BindVar {
				target = b.arena.hoistTarget(headScope)
			}
			b.declarePattern(n.Left, target, kind)
		} else {
			b.assignTarget(n.Left, headScope)
		}
		b.stmt(n.BodyStmt, headScope)

	case jsast.KindWhile:
		b.expr(n.Test, scope)
		b.stmt(n.BodyStmt, scope)

	case jsast.KindDoWhile:
		b.stmt(n.BodyStmt, scope)
		b.expr(n.Test, scope)

	case jsast.KindSwitch:
		b.expr(n.Disc, scope)
		// One block scope covers every case body, matching the language.
		inner := b.arena.newScope(ScopeBlock, scope, n.ID)
		b.res.ScopeOf[n.ID] = inner
		for _, c := range n.Elements {
			b.expr(c.Test, inner)
			for _, s := range c.Body {
				b.stmt(s, inner)
			}
		}

	case jsast.KindTry:
		b.stmt(n.BodyStmt, scope)
		if h := n.Handler; h != nil {
			catchScope := b.arena.newScope(ScopeCatch, scope, h.ID)
			b.res.ScopeOf[h.ID] = catchScope
			if h.Param != nil {
				b.declarePattern(h.Param, catchScope, BindCatchParam)
			}
			b.stmt(h.BodyStmt, catchScope)
		}
		b.stmt(n.Finally, scope)

	case jsast.KindThrow, jsast.KindReturn:
		b.expr(n.Argument, scope)

	case jsast.KindLabeled:
		b.stmt(n.BodyStmt, scope)

	case jsast.KindWith:
		b.addRisk(n, RiskWith)
		diag.ReportWarning(b.reporter, diag.CodeWith, n.Span,
			"with statement makes identifier resolution ambiguous")
		b.expr(n.Object, scope)
		inner := b.arena.newScope(ScopeWith, scope, n.ID)
		b.res.ScopeOf[n.ID] = inner
		b.stmt(n.BodyStmt, inner)

	case jsast.KindImportDecl:
		for _, spec := range n.Elements {
			b.declareChecked(scope, spec.Name, BindImport, spec)
		}

	case jsast.KindExportNamed:
		if n.Argument != nil {
			b.stmt(n.Argument, scope)
		}
		for _, spec := range n.Elements {
			if n.Source == "" {
				b.reference(spec, spec.Str, scope)
			}
		}

	case jsast.KindExportDefault:
		if arg := n.Argument; arg != nil {
			if arg.Kind.IsStatement() {
				b.stmt(arg, scope)
			} else {
				b.expr(arg, scope)
			}
		}

	case jsast.KindBreak, jsast.KindContinue, jsast.KindEmpty,
		jsast.KindDebugger, jsast.KindUnsupported, jsast.KindExportAll:
		// Nothing to bind.
	}
}

func (b *binder) varDecl(n *jsast.Node, scope ScopeID) {
	kind := BindVar
	switch n.DeclKind {
	case "let":
		kind = BindLet
	case "const":
		kind = BindConst
	}
	for _, d := range n.Elements {
		if kind == BindVar {
			// Declared by the hoist scan; bind the site and check shadows.
			b.bindHoistedPattern(d.Target, scope)
		} else {
			b.declarePattern(d.Target, scope, kind)
		}
		b.expr(d.Init, scope)
	}
}

// bindHoistedPattern links a var declaration site back to its hoisted
// binding and reports block-scoped shadowing.
func (b *binder) bindHoistedPattern(n *jsast.Node, scope ScopeID) {
	if n == nil {
		return
	}
	switch n.Kind {
	case jsast.KindIdent:
		target := b.arena.hoistTarget(scope)
		if id, ok := b.arena.resolveIn(target, n.Name); ok {
			b.res.BindingOf[n.ID] = id
		}
		// An intervening block-scoped binding of the same name means the
		// var escapes past it.
		for s := scope; s != target && s != NoScopeID; s = b.arena.scope(s).Parent {
			if id, ok := b.arena.resolveIn(s, n.Name); ok && b.arena.binding(id).Kind.BlockScoped() {
				diag.ReportWarning(b.reporter, diag.CodeVarShadow, n.Span,
					fmt.Sprintf("var %q hoists past a block-scoped binding of the same name", n.Name))
			}
		}
	case jsast.KindAssignPattern:
		b.bindHoistedPattern(n.Left, scope)
		b.expr(n.Right, scope)
	case jsast.KindRestElement:
		b.bindHoistedPattern(n.Argument, scope)
	case jsast.KindObjectPattern, jsast.KindArrayPattern:
		b.patternRisk(n)
		for _, e := range n.Elements {
			if e == nil {
				continue
			}
			if e.Kind == jsast.KindProperty {
				b.bindHoistedPattern(e.Value, scope)
			} else {
				b.bindHoistedPattern(e, scope)
			}
		}
	}
}

// declareChecked declares a block-scoped name, reporting duplicates.
func (b *binder) declareChecked(scope ScopeID, name string, kind BindKind, node *jsast.Node) {
	if name == "" {
		return
	}
	if existing, ok := b.arena.resolveIn(scope, name); ok {
		eb := b.arena.binding(existing)
		// A hoisted var colliding with a later block-scoped declaration is
		// the shadow case, not a duplicate: the block-scoped form wins and
		// the collision is reported as a warning.
		if eb.Hoisted && eb.Kind == BindVar && kind.BlockScoped() {
			diag.ReportWarning(b.reporter, diag.CodeVarShadow, node.Span,
				fmt.Sprintf("%q is declared both block-scoped and as a hoisted var", name))
			eb.Kind = kind
			eb.Decl = node.Span
			eb.DeclNode = node.ID
			b.res.BindingOf[node.ID] = existing
			return
		}
		if kind.BlockScoped() || eb.Kind.BlockScoped() {
			diag.ReportError(b.reporter, diag.CodeDupLet, node.Span,
				fmt.Sprintf("%q has already been declared in this scope", name))
			b.res.BindingOf[node.ID] = existing
			return
		}
	}
	id := b.arena.declare(scope, name, kind, node.Span, node.ID)
	b.res.BindingOf[node.ID] = id
}

// declarePattern declares every name bound by a (possibly destructuring)
// pattern. Default values are visited as expressions.
func (b *binder) declarePattern(n *jsast.Node, scope ScopeID, kind BindKind) {
	if n == nil {
		return
	}
	switch n.Kind {
	case jsast.KindIdent:
		b.declareChecked(scope, n.Name, kind, n)
	case jsast.KindAssignPattern:
		b.expr(n.Right, scope)
		b.declarePattern(n.Left, scope, kind)
	case jsast.KindRestElement:
		b.declarePattern(n.Argument, scope, kind)
	case jsast.KindObjectPattern, jsast.KindArrayPattern:
		b.patternRisk(n)
		for _, e := range n.Elements {
			if e == nil {
				continue
			}
			if e.Kind == jsast.KindProperty {
				if e.Computed {
					b.expr(e.Key, scope)
				}
				b.declarePattern(e.Value, scope, kind)
			} else {
				b.declarePattern(e, scope, kind)
			}
		}
	}
}

func (b *binder) patternRisk(n *jsast.Node) {
	// Nested patterns are flagged once per pattern node.
	if _, seen := b.res.Risks[n.ID]; seen {
		return
	}
	b.addRisk(n, RiskDestructure)
	diag.ReportInfo(b.reporter, diag.CodeDestructure, n.Span,
		"destructuring pattern lowered element by element")
}
