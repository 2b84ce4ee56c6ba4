package transform

import (
	"fmt"

	"js2py/internal/analyzer"
	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/pyast"
	"js2py/internal/source"
)

// arithHelpers maps coercing arithmetic operators to runtime helpers. `/`
// is absent: JS division is always numeric, so the target operator matches.
var arithHelpers = map[string]string{
	"+": HelperPlus,
	"-": HelperMinus,
	"*": HelperMul,
	"%": HelperMod,
}

// directCompare maps operators whose target spelling matches directly.
var directCompare = map[string]string{
	"===": "==",
	"!==": "!=",
	"<":   "<",
	">":   ">",
	"<=":  "<=",
	">=":  ">=",
}

func (t *Transformer) exprBinary(c *ctx, n *jsast.Node) *pyast.Node {
	left := t.expr(c, n.Left)
	right := t.expr(c, n.Right)

	if op, ok := directCompare[n.Op]; ok {
		return (&pyast.Node{Kind: pyast.KindCompare, Op: op, Left: left, Right: right}).At(n.Span)
	}

	switch n.Op {
	case "==":
		return t.runtime.Call(HelperLooseEq, left, right).At(n.Span)
	case "!=":
		return (&pyast.Node{
			Kind:  pyast.KindUnaryOp,
			Op:    "not",
			Value: t.runtime.Call(HelperLooseEq, left, right),
		}).At(n.Span)
	case "/":
		return (&pyast.Node{Kind: pyast.KindBinOp, Op: "/", Left: left, Right: right}).At(n.Span)
	case "+", "-", "*", "%":
		// Statically numeric operands fold to the direct operator; anything
		// else goes through the coercion helper.
		if isNumericLiteral(n.Left) && isNumericLiteral(n.Right) {
			return (&pyast.Node{Kind: pyast.KindBinOp, Op: n.Op, Left: left, Right: right}).At(n.Span)
		}
		return t.runtime.Call(arithHelpers[n.Op], left, right).At(n.Span)
	case "&", "|", "^", "<<", ">>":
		return (&pyast.Node{Kind: pyast.KindBinOp, Op: n.Op, Left: left, Right: right}).At(n.Span)
	case ">>>":
		return t.runtime.Call(HelperUshr, left, right).At(n.Span)
	case "instanceof":
		return t.runtime.Call(HelperInstance, left, right).At(n.Span)
	case "in":
		return t.runtime.Call(HelperIn, left, right).At(n.Span)
	case "**":
		return (&pyast.Node{Kind: pyast.KindBinOp, Op: "**", Left: left, Right: right}).At(n.Span)
	}

	t.warn(n, diag.CodeLowering, fmt.Sprintf("binary operator %q has no lowering", n.Op))
	return t.runtime.Name(HelperUndefined)
}

func isNumericLiteral(n *jsast.Node) bool {
	n = n.Unparen()
	return n != nil && n.Kind == jsast.KindNumberLit
}

// exprLogical lowers &&, ||, and ?? to runtime helpers that return the
// selected operand rather than a boolean.
func (t *Transformer) exprLogical(c *ctx, n *jsast.Node) *pyast.Node {
	left := t.expr(c, n.Left)
	right := t.expr(c, n.Right)
	switch n.Op {
	case "&&":
		return t.runtime.Call(HelperAnd, left, right).At(n.Span)
	case "||":
		return t.runtime.Call(HelperOr, left, right).At(n.Span)
	case "??":
		return t.runtime.Call(HelperNullish, left, right).At(n.Span)
	}
	t.warn(n, diag.CodeLowering, fmt.Sprintf("logical operator %q has no lowering", n.Op))
	return t.runtime.Name(HelperUndefined)
}

func (t *Transformer) exprUnary(c *ctx, n *jsast.Node) *pyast.Node {
	switch n.Op {
	case "typeof":
		// typeof of an unresolved name answers "undefined" in the source
		// language instead of throwing; the helper receives the name as a
		// best effort and unresolved references were already diagnosed.
		return t.runtime.Call(HelperTypeof, t.expr(c, n.Argument)).At(n.Span)
	case "!":
		return (&pyast.Node{Kind: pyast.KindUnaryOp, Op: "not", Value: t.truthy(c, n.Argument)}).At(n.Span)
	case "-":
		return (&pyast.Node{Kind: pyast.KindUnaryOp, Op: "-", Value: t.expr(c, n.Argument)}).At(n.Span)
	case "+":
		return t.runtime.Call(HelperToNum, t.expr(c, n.Argument)).At(n.Span)
	case "~":
		return (&pyast.Node{Kind: pyast.KindUnaryOp, Op: "~", Value: t.runtime.Call(HelperToNum, t.expr(c, n.Argument))}).At(n.Span)
	case "void":
		return t.runtime.Call(HelperVoid, t.expr(c, n.Argument)).At(n.Span)
	case "delete":
		return t.lowerDelete(c, n)
	}
	t.warn(n, diag.CodeLowering, fmt.Sprintf("unary operator %q has no lowering", n.Op))
	return t.runtime.Name(HelperUndefined)
}

func (t *Transformer) lowerDelete(c *ctx, n *jsast.Node) *pyast.Node {
	target := n.Argument.Unparen()
	if target != nil && target.Kind == jsast.KindMember && (target.Computed || target.Property != nil) {
		obj := t.expr(c, target.Object)
		var key *pyast.Node
		if target.Computed {
			key = t.expr(c, target.Property)
		} else {
			key = pyast.NewStr(target.Property.Name)
		}
		return t.runtime.Call(HelperDelete, obj, key).At(n.Span)
	}
	t.warn(n, diag.CodeLowering, "delete of a non-member expression")
	return pyast.NewBool(true)
}

// exprUpdate lowers ++/-- in expression position: compute the old value,
// store the new one through the statement sink, and yield old or new per
// fixity.
func (t *Transformer) exprUpdate(c *ctx, n *jsast.Node) *pyast.Node {
	helper := HelperPlus
	if n.Op == "--" {
		helper = HelperMinus
	}
	target := n.Argument.Unparen()

	old := t.newTemp("tmp")
	c.lift(pyast.NewAssign(pyast.NewName(old), t.readTarget(c, target)))
	updated := t.runtime.Call(helper, pyast.NewName(old), pyast.NewNum("1"))

	if n.Prefix {
		fresh := t.newTemp("tmp")
		c.lift(pyast.NewAssign(pyast.NewName(fresh), updated))
		for _, s := range t.writeTarget(c, target, pyast.NewName(fresh), n.Span) {
			c.lift(s)
		}
		return pyast.NewName(fresh).At(n.Span)
	}
	for _, s := range t.writeTarget(c, target, updated, n.Span) {
		c.lift(s)
	}
	return pyast.NewName(old).At(n.Span)
}

// stmtUpdate lowers ++/-- in statement position without temporaries.
func (t *Transformer) stmtUpdate(c *ctx, n *jsast.Node) []*pyast.Node {
	helper := HelperPlus
	if n.Op == "--" {
		helper = HelperMinus
	}
	target := n.Argument.Unparen()
	updated := t.runtime.Call(helper, t.readTarget(c, target), pyast.NewNum("1"))
	return t.writeTarget(c, target, updated, n.Span)
}

// exprAssign lowers an assignment used as an expression: the store goes
// through the sink and the expression yields the stored value.
func (t *Transformer) exprAssign(c *ctx, n *jsast.Node) *pyast.Node {
	value := t.assignValue(c, n)
	target := n.Left.Unparen()

	if target.Kind == jsast.KindIdent {
		name := t.targetName(target)
		c.lift(pyast.NewAssign(pyast.NewName(name), value))
		return pyast.NewName(name).At(n.Span)
	}

	tmp := t.newTemp("tmp")
	c.lift(pyast.NewAssign(pyast.NewName(tmp), value))
	for _, s := range t.writeTarget(c, target, pyast.NewName(tmp), n.Span) {
		c.lift(s)
	}
	return pyast.NewName(tmp).At(n.Span)
}

// stmtAssign lowers an assignment in statement position.
func (t *Transformer) stmtAssign(c *ctx, n *jsast.Node) []*pyast.Node {
	target := n.Left.Unparen()
	if target.IsPattern() && n.Op == "=" {
		tmp := t.newTemp("tmp")
		out := []*pyast.Node{pyast.NewAssign(pyast.NewName(tmp), t.expr(c, n.Right))}
		out = append(out, t.destructure(c, target, pyast.NewName(tmp))...)
		return out
	}
	sub := *c
	if n.Op == "=" {
		sub.cjsAssignedObject = n.Right.Unparen()
	}
	return t.writeTarget(&sub, target, t.assignValue(&sub, n), n.Span)
}

// assignValue lowers the right side, folding compound operators into the
// matching coercion helper.
func (t *Transformer) assignValue(c *ctx, n *jsast.Node) *pyast.Node {
	right := t.expr(c, n.Right)
	if n.Op == "=" {
		return right
	}
	op := n.Op[:len(n.Op)-1] // strip the trailing '='
	current := t.readTarget(c, n.Left.Unparen())
	if helper, ok := arithHelpers[op]; ok {
		return t.runtime.Call(helper, current, right)
	}
	switch op {
	case "/", "&", "|", "^", "<<", ">>", "**":
		return &pyast.Node{Kind: pyast.KindBinOp, Op: op, Left: current, Right: right}
	case ">>>":
		return t.runtime.Call(HelperUshr, current, right)
	case "&&":
		return t.runtime.Call(HelperAnd, current, right)
	case "||":
		return t.runtime.Call(HelperOr, current, right)
	case "??":
		return t.runtime.Call(HelperNullish, current, right)
	}
	t.warn(n, diag.CodeLowering, fmt.Sprintf("compound assignment %q has no lowering", n.Op))
	return right
}

// readTarget lowers an assignable position as a read.
func (t *Transformer) readTarget(c *ctx, target *jsast.Node) *pyast.Node {
	if target == nil {
		return t.runtime.Name(HelperUndefined)
	}
	return t.expr(c, target)
}

// writeTarget emits the statements that store value into target.
func (t *Transformer) writeTarget(c *ctx, target *jsast.Node, value *pyast.Node, span source.Span) []*pyast.Node {
	if target == nil {
		return nil
	}
	switch target.Kind {
	case jsast.KindIdent:
		return []*pyast.Node{pyast.NewAssign(pyast.NewName(t.targetName(target)), value)}
	case jsast.KindMember:
		if isModuleExportsWrite(t.analysis, target) {
			return t.commonJSExportWrite(c, target, value)
		}
		if target.Computed {
			return []*pyast.Node{pyast.NewExprStmt(t.runtime.Call(HelperSetIndex,
				t.expr(c, target.Object), t.expr(c, target.Property), value))}
		}
		if target.Property == nil {
			return []*pyast.Node{pyast.NewExprStmt(value)}
		}
		return []*pyast.Node{pyast.NewAssign(
			pyast.NewAttr(t.expr(c, target.Object), target.Property.Name), value)}
	case jsast.KindObjectPattern, jsast.KindArrayPattern:
		tmp := t.newTemp("tmp")
		out := []*pyast.Node{pyast.NewAssign(pyast.NewName(tmp), value)}
		return append(out, t.destructure(c, target, pyast.NewName(tmp))...)
	}
	t.warn(target, diag.CodeLowering, fmt.Sprintf("unsupported assignment target %s", target.Kind))
	return []*pyast.Node{pyast.NewExprStmt(value)}
}

// targetName resolves an identifier target through the rename map.
func (t *Transformer) targetName(target *jsast.Node) string {
	if id, ok := t.analysis.BindingOf[target.ID]; ok {
		b := t.analysis.Binding(id)
		if b.Kind != analyzer.BindBuiltin {
			return t.renameBinding(id)
		}
	}
	return t.renameFree(target.Name)
}
