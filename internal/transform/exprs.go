package transform

import (
	"fmt"
	"regexp"
	"strconv"

	"js2py/internal/analyzer"
	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/pyast"
)

// pyNumberRe matches raw JS numeric literals that are already valid Python
// literals and can be copied through verbatim.
var pyNumberRe = regexp.MustCompile(`^(?:\d+|\d+\.\d*|\.\d+|\d+(?:\.\d*)?[eE][+-]?\d+|0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+)$`)

func (t *Transformer) exprNumber(c *ctx, n *jsast.Node) *pyast.Node {
	raw := n.Raw
	if !pyNumberRe.MatchString(raw) {
		// Legacy octal and other oddities: print from the parsed value.
		raw = strconv.FormatFloat(n.Num, 'g', -1, 64)
	}
	return pyast.NewNum(raw).At(n.Span)
}

func (t *Transformer) exprString(c *ctx, n *jsast.Node) *pyast.Node {
	return pyast.NewStr(n.Str).At(n.Span)
}

func (t *Transformer) exprBool(c *ctx, n *jsast.Node) *pyast.Node {
	return pyast.NewBool(n.Bool).At(n.Span)
}

func (t *Transformer) exprNull(c *ctx, n *jsast.Node) *pyast.Node {
	return pyast.NewNone().At(n.Span)
}

func (t *Transformer) exprUndefined(c *ctx, n *jsast.Node) *pyast.Node {
	return t.runtime.Name(HelperUndefined).At(n.Span)
}

func (t *Transformer) exprRegex(c *ctx, n *jsast.Node) *pyast.Node {
	return t.runtime.Call(HelperRegex, pyast.NewStr(n.Str), pyast.NewStr(n.Raw)).At(n.Span)
}

// exprTemplate lowers a template literal to a concatenation chain of
// string parts and coerced expressions.
func (t *Transformer) exprTemplate(c *ctx, n *jsast.Node) *pyast.Node {
	var acc *pyast.Node
	appendPart := func(part *pyast.Node) {
		if acc == nil {
			acc = part
			return
		}
		acc = &pyast.Node{Kind: pyast.KindBinOp, Op: "+", Left: acc, Right: part}
	}
	for i, quasi := range n.Quasis {
		if quasi != "" || (i == 0 && len(n.Elements) == 0) {
			appendPart(pyast.NewStr(quasi))
		}
		if i < len(n.Elements) {
			appendPart(t.runtime.Call(HelperToStr, t.expr(c, n.Elements[i])))
		}
	}
	if acc == nil {
		acc = pyast.NewStr("")
	}
	return acc.At(n.Span)
}

func (t *Transformer) exprIdent(c *ctx, n *jsast.Node) *pyast.Node {
	if id, ok := t.analysis.BindingOf[n.ID]; ok {
		b := t.analysis.Binding(id)
		if b.Kind == analyzer.BindBuiltin {
			return pyast.NewName(t.freeOrCJS(n.Name)).At(n.Span)
		}
		return pyast.NewName(t.renameBinding(id)).At(n.Span)
	}
	return pyast.NewName(t.freeOrCJS(n.Name)).At(n.Span)
}

// freeOrCJS maps a free name; in a CommonJS file the bare `exports` object
// reads from the conventional exports dict.
func (t *Transformer) freeOrCJS(name string) string {
	if name == "exports" &&
		(t.analysis.Shape == analyzer.ShapeCommonJS || t.analysis.Shape == analyzer.ShapeMixed) {
		return moduleExportsName
	}
	return t.renameFree(name)
}

func (t *Transformer) exprThis(c *ctx, n *jsast.Node) *pyast.Node {
	if c.selfName != "" {
		return pyast.NewName(c.selfName).At(n.Span)
	}
	return t.runtime.Name(HelperUndefined).At(n.Span)
}

func (t *Transformer) exprParen(c *ctx, n *jsast.Node) *pyast.Node {
	return t.expr(c, n.Argument)
}

func (t *Transformer) exprMember(c *ctx, n *jsast.Node) *pyast.Node {
	if obj := n.Object.Unparen(); obj != nil && obj.Kind == jsast.KindSuper {
		// super.x reads through the target's own super() machinery.
		sup := pyast.NewCall(pyast.NewName("super"))
		if n.Computed {
			return t.runtime.Call(HelperGetIndex, sup, t.expr(c, n.Property)).At(n.Span)
		}
		if n.Property == nil {
			return sup
		}
		return pyast.NewAttr(sup, n.Property.Name).At(n.Span)
	}
	if isModuleExportsRead(n) {
		return pyast.NewName(moduleExportsName).At(n.Span)
	}
	object := t.expr(c, n.Object)
	if n.Computed {
		return t.runtime.Call(HelperGetIndex, object, t.expr(c, n.Property)).At(n.Span)
	}
	if n.Property == nil {
		// Error-recovered member without a property; keep the receiver.
		return object
	}
	return pyast.NewAttr(object, n.Property.Name).At(n.Span)
}

// isModuleExportsRead matches a `module.exports` member in a CommonJS
// file, which reads the conventional exports dict.
func isModuleExportsRead(n *jsast.Node) bool {
	if n.Computed || n.Property == nil || n.Property.Name != "exports" {
		return false
	}
	obj := n.Object.Unparen()
	return obj != nil && obj.Kind == jsast.KindIdent && obj.Name == "module"
}

func (t *Transformer) exprCall(c *ctx, n *jsast.Node) *pyast.Node {
	callee := n.Callee.Unparen()

	// CommonJS require("m") becomes a hoisted import.
	if callee != nil && callee.Kind == jsast.KindIdent && callee.Name == "require" {
		if alias, ok := t.requireAlias(n); ok {
			return pyast.NewName(alias).At(n.Span)
		}
	}

	// super(...) chains to the base initializer.
	if callee != nil && callee.Kind == jsast.KindSuper {
		call := pyast.NewCall(pyast.NewAttr(pyast.NewCall(pyast.NewName("super")), "__init__"))
		call.Args = t.lowerArgs(c, n.Args)
		return call.At(n.Span)
	}

	call := pyast.NewCall(t.expr(c, n.Callee))
	call.Args = t.lowerArgs(c, n.Args)
	return call.At(n.Span)
}

func (t *Transformer) exprNew(c *ctx, n *jsast.Node) *pyast.Node {
	args := append([]*pyast.Node{t.expr(c, n.Callee)}, t.lowerArgs(c, n.Args)...)
	return t.runtime.Call(HelperNew, args...).At(n.Span)
}

// lowerArgs lowers call arguments, flattening spread elements into starred
// iterables.
func (t *Transformer) lowerArgs(c *ctx, args []*jsast.Node) []*pyast.Node {
	out := make([]*pyast.Node, 0, len(args))
	for _, a := range args {
		if a != nil && a.Kind == jsast.KindSpread {
			out = append(out, &pyast.Node{
				Kind:  pyast.KindStarred,
				Value: t.runtime.Call(HelperSpread, t.expr(c, a.Argument)),
			})
			continue
		}
		out = append(out, t.expr(c, a))
	}
	return out
}

func (t *Transformer) exprConditional(c *ctx, n *jsast.Node) *pyast.Node {
	return (&pyast.Node{
		Kind:  pyast.KindCondExpr,
		Test:  t.truthy(c, n.Test),
		Value: t.expr(c, n.Cons),
		Right: t.expr(c, n.Alt),
	}).At(n.Span)
}

// exprSequence lifts all but the last operand of a comma expression into
// the statement sink and yields the last.
func (t *Transformer) exprSequence(c *ctx, n *jsast.Node) *pyast.Node {
	t.info(n, diag.CodeSequence, "comma operator lifted to statements")
	for i, e := range n.Elements {
		if i == len(n.Elements)-1 {
			return t.expr(c, e)
		}
		c.lift(pyast.NewExprStmt(t.expr(c, e)))
	}
	return t.runtime.Name(HelperUndefined)
}

func (t *Transformer) exprObject(c *ctx, n *jsast.Node) *pyast.Node {
	hasSpread := false
	hasComputed := false
	for _, p := range n.Elements {
		if p == nil {
			continue
		}
		switch {
		case p.Kind == jsast.KindSpread:
			hasSpread = true
		case p.Kind == jsast.KindProperty && p.Computed:
			hasComputed = true
		}
	}

	if hasSpread {
		return t.objectWithSpread(c, n)
	}

	dict := &pyast.Node{Kind: pyast.KindDict}
	var computed []*jsast.Node
	for _, p := range n.Elements {
		if p == nil || p.Kind != jsast.KindProperty {
			continue
		}
		if p.Computed {
			computed = append(computed, p)
			continue
		}
		if p.DeclKind == "get" || p.DeclKind == "set" {
			t.warn(p, diag.CodeAccessor,
				fmt.Sprintf("%ster emitted as a plain property", p.DeclKind))
		}
		dict.Keys = append(dict.Keys, t.propertyKey(c, p))
		dict.Values = append(dict.Values, t.expr(c, p.Value))
	}

	if !hasComputed {
		return dict.At(n.Span)
	}

	// Computed keys: build the literal part first, then set each computed
	// entry on the temporary.
	tmp := t.newTemp("obj")
	c.lift(pyast.NewAssign(pyast.NewName(tmp), dict))
	for _, p := range computed {
		c.lift(pyast.NewExprStmt(t.runtime.Call(HelperSetIndex,
			pyast.NewName(tmp), t.expr(c, p.Key), t.expr(c, p.Value))))
	}
	return pyast.NewName(tmp).At(n.Span)
}

// objectWithSpread lowers `{...a, b: 1}` through the runtime merge helper,
// preserving insertion order.
func (t *Transformer) objectWithSpread(c *ctx, n *jsast.Node) *pyast.Node {
	var parts []*pyast.Node
	pending := &pyast.Node{Kind: pyast.KindDict}
	flush := func() {
		if len(pending.Keys) > 0 {
			parts = append(parts, pending)
			pending = &pyast.Node{Kind: pyast.KindDict}
		}
	}
	for _, p := range n.Elements {
		if p == nil {
			continue
		}
		if p.Kind == jsast.KindSpread {
			flush()
			parts = append(parts, t.expr(c, p.Argument))
			continue
		}
		if p.Computed {
			flush()
			single := &pyast.Node{Kind: pyast.KindDict}
			single.Keys = append(single.Keys, t.expr(c, p.Key))
			single.Values = append(single.Values, t.expr(c, p.Value))
			parts = append(parts, single)
			continue
		}
		pending.Keys = append(pending.Keys, t.propertyKey(c, p))
		pending.Values = append(pending.Values, t.expr(c, p.Value))
	}
	flush()
	return t.runtime.Call(HelperMerge, parts...).At(n.Span)
}

// propertyKey lowers a non-computed property key to a string (identifier
// keys) or literal.
func (t *Transformer) propertyKey(c *ctx, p *jsast.Node) *pyast.Node {
	key := p.Key
	if key == nil {
		return pyast.NewStr("")
	}
	switch key.Kind {
	case jsast.KindIdent:
		// Property names are never renamed.
		return pyast.NewStr(key.Name)
	case jsast.KindStringLit:
		return pyast.NewStr(key.Str)
	case jsast.KindNumberLit:
		return t.exprNumber(c, key)
	}
	return t.expr(c, key)
}

func (t *Transformer) exprArray(c *ctx, n *jsast.Node) *pyast.Node {
	list := &pyast.Node{Kind: pyast.KindList}
	for _, e := range n.Elements {
		if e == nil {
			t.info(n, diag.CodeSparseArray, "sparse array hole filled with the undefined sentinel")
			list.Elts = append(list.Elts, t.runtime.Name(HelperUndefined))
			continue
		}
		if e.Kind == jsast.KindSpread {
			list.Elts = append(list.Elts, &pyast.Node{
				Kind:  pyast.KindStarred,
				Value: t.runtime.Call(HelperSpread, t.expr(c, e.Argument)),
			})
			continue
		}
		list.Elts = append(list.Elts, t.expr(c, e))
	}
	return list.At(n.Span)
}

// exprSpreadMisuse fires when a spread appears outside a call, array, or
// object, which the grammar should not produce.
func (t *Transformer) exprSpreadMisuse(c *ctx, n *jsast.Node) *pyast.Node {
	t.warn(n, diag.CodeLowering, "spread element in unsupported position")
	return t.runtime.Name(HelperUndefined)
}

// truthy wraps a lowered test in the runtime truthiness helper, skipping
// it for tests that already evaluate to target booleans.
func (t *Transformer) truthy(c *ctx, test *jsast.Node) *pyast.Node {
	lowered := t.expr(c, test)
	switch lowered.Kind {
	case pyast.KindBoolLit, pyast.KindCompare:
		return lowered
	case pyast.KindUnaryOp:
		if lowered.Op == "not" {
			return lowered
		}
	}
	return t.runtime.Call(HelperTruthy, lowered)
}
