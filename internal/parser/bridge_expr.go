package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"js2py/internal/jsast"
)

func (b *bridge) expression(n *sitter.Node) *jsast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "ERROR", "comment":
		return nil

	case "identifier":
		id := b.node(jsast.KindIdent, n)
		id.Name = b.text(n)
		return id

	case "this":
		return b.node(jsast.KindThis, n)

	case "super":
		return b.node(jsast.KindSuper, n)

	case "number":
		return b.numberLiteral(n)

	case "string":
		lit := b.node(jsast.KindStringLit, n)
		lit.Str = unquoteString(b.text(n))
		return lit

	case "template_string":
		return b.templateLiteral(n)

	case "regex":
		lit := b.node(jsast.KindRegexLit, n)
		if pat := n.ChildByFieldName("pattern"); pat != nil {
			lit.Str = b.text(pat)
		}
		if flags := n.ChildByFieldName("flags"); flags != nil {
			lit.Raw = b.text(flags)
		}
		return lit

	case "true":
		lit := b.node(jsast.KindBoolLit, n)
		lit.Bool = true
		return lit

	case "false":
		return b.node(jsast.KindBoolLit, n)

	case "null":
		return b.node(jsast.KindNullLit, n)

	case "undefined":
		return b.node(jsast.KindUndefinedLit, n)

	case "parenthesized_expression":
		p := b.node(jsast.KindParen, n)
		if n.NamedChildCount() > 0 {
			p.Argument = b.expression(n.NamedChild(0))
		}
		return p

	case "member_expression":
		m := b.node(jsast.KindMember, n)
		m.Object = b.expression(n.ChildByFieldName("object"))
		if prop := n.ChildByFieldName("property"); prop != nil {
			id := b.node(jsast.KindIdent, prop)
			id.Name = b.text(prop)
			m.Property = id
		}
		return m

	case "subscript_expression":
		m := b.node(jsast.KindMember, n)
		m.Computed = true
		m.Object = b.expression(n.ChildByFieldName("object"))
		m.Property = b.expression(n.ChildByFieldName("index"))
		return m

	case "call_expression":
		call := b.node(jsast.KindCall, n)
		call.Callee = b.expression(n.ChildByFieldName("function"))
		args := n.ChildByFieldName("arguments")
		if args != nil && args.Type() == "template_string" {
			return b.unsupported(n, "tagged template")
		}
		call.Args = b.arguments(args)
		return call

	case "new_expression":
		call := b.node(jsast.KindNew, n)
		call.Callee = b.expression(n.ChildByFieldName("constructor"))
		call.Args = b.arguments(n.ChildByFieldName("arguments"))
		return call

	case "assignment_expression":
		a := b.node(jsast.KindAssign, n)
		a.Op = "="
		a.Left = b.pattern(n.ChildByFieldName("left"))
		a.Right = b.expression(n.ChildByFieldName("right"))
		return a

	case "augmented_assignment_expression":
		a := b.node(jsast.KindAssign, n)
		if op := n.ChildByFieldName("operator"); op != nil {
			a.Op = b.text(op)
		}
		a.Left = b.expression(n.ChildByFieldName("left"))
		a.Right = b.expression(n.ChildByFieldName("right"))
		return a

	case "update_expression":
		u := b.node(jsast.KindUpdate, n)
		arg := n.ChildByFieldName("argument")
		u.Argument = b.expression(arg)
		if op := n.ChildByFieldName("operator"); op != nil {
			u.Op = b.text(op)
			u.Prefix = arg != nil && op.StartByte() < arg.StartByte()
		}
		return u

	case "unary_expression":
		u := b.node(jsast.KindUnary, n)
		if op := n.ChildByFieldName("operator"); op != nil {
			u.Op = b.text(op)
		}
		u.Argument = b.expression(n.ChildByFieldName("argument"))
		return u

	case "binary_expression":
		op := ""
		if opNode := n.ChildByFieldName("operator"); opNode != nil {
			op = b.text(opNode)
		}
		kind := jsast.KindBinary
		switch op {
		case "&&", "||", "??":
			kind = jsast.KindLogical
		}
		e := b.node(kind, n)
		e.Op = op
		e.Left = b.expression(n.ChildByFieldName("left"))
		e.Right = b.expression(n.ChildByFieldName("right"))
		return e

	case "ternary_expression":
		e := b.node(jsast.KindConditional, n)
		e.Test = b.expression(n.ChildByFieldName("condition"))
		e.Cons = b.expression(n.ChildByFieldName("consequence"))
		e.Alt = b.expression(n.ChildByFieldName("alternative"))
		return e

	case "sequence_expression":
		e := b.node(jsast.KindSequence, n)
		b.flattenSequence(n, e)
		return e

	case "object":
		return b.objectLiteral(n)

	case "array":
		return b.arrayLiteral(n)

	case "spread_element":
		s := b.node(jsast.KindSpread, n)
		if n.NamedChildCount() > 0 {
			s.Argument = b.expression(n.NamedChild(0))
		}
		return s

	case "arrow_function":
		return b.arrowFunction(n)

	case "function", "function_expression":
		return b.functionLike(n, jsast.KindFunctionExpr)

	case "generator_function":
		return b.unsupported(n, "generator function")

	case "class":
		return b.classLike(n, jsast.KindClassExpr)

	case "yield_expression":
		return b.unsupported(n, "yield")

	case "await_expression":
		return b.unsupported(n, "await")
	}

	return b.unsupported(n, n.Type())
}

// flattenSequence unrolls nested comma operators left-to-right into
// e.Elements.
func (b *bridge) flattenSequence(n *sitter.Node, e *jsast.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left != nil && left.Type() == "sequence_expression" {
		b.flattenSequence(left, e)
	} else if expr := b.expression(left); expr != nil {
		e.Elements = append(e.Elements, expr)
	}
	if expr := b.expression(right); expr != nil {
		e.Elements = append(e.Elements, expr)
	}
}

func (b *bridge) arguments(n *sitter.Node) []*jsast.Node {
	if n == nil {
		return nil
	}
	var out []*jsast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if arg := b.expression(n.NamedChild(i)); arg != nil {
			out = append(out, arg)
		}
	}
	return out
}

func (b *bridge) numberLiteral(n *sitter.Node) *jsast.Node {
	lit := b.node(jsast.KindNumberLit, n)
	lit.Raw = b.text(n)
	lit.Num = parseJSNumber(lit.Raw)
	return lit
}

func (b *bridge) templateLiteral(n *sitter.Node) *jsast.Node {
	lit := b.node(jsast.KindTemplateLit, n)
	// The grammar interleaves string fragments and substitutions; the
	// quasi list must stay one longer than the expression list, with empty
	// strings where two substitutions touch.
	current := ""
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "string_fragment":
			current += unescapeJS(b.text(c))
		case "escape_sequence":
			current += unescapeJS(b.text(c))
		case "template_substitution":
			lit.Quasis = append(lit.Quasis, current)
			current = ""
			if c.NamedChildCount() > 0 {
				lit.Elements = append(lit.Elements, b.expression(c.NamedChild(0)))
			}
		}
	}
	lit.Quasis = append(lit.Quasis, current)
	return lit
}

func (b *bridge) objectLiteral(n *sitter.Node) *jsast.Node {
	obj := b.node(jsast.KindObjectLit, n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "pair":
			prop := b.node(jsast.KindProperty, c)
			prop.DeclKind = "init"
			prop.Key = b.propertyKey(c.ChildByFieldName("key"), prop)
			prop.Value = b.expression(c.ChildByFieldName("value"))
			obj.Elements = append(obj.Elements, prop)
		case "shorthand_property_identifier":
			prop := b.node(jsast.KindProperty, c)
			prop.DeclKind = "shorthand"
			id := b.node(jsast.KindIdent, c)
			id.Name = b.text(c)
			prop.Key = id
			value := b.node(jsast.KindIdent, c)
			value.Name = id.Name
			prop.Value = value
			obj.Elements = append(obj.Elements, prop)
		case "method_definition":
			prop := b.methodDefinition(c)
			switch prop.DeclKind {
			case "get", "set":
				p := b.node(jsast.KindProperty, c)
				p.DeclKind = prop.DeclKind
				p.Key = prop.Key
				p.Value = prop.Value
				p.Computed = prop.Computed
				obj.Elements = append(obj.Elements, p)
			default:
				p := b.node(jsast.KindProperty, c)
				p.DeclKind = "init"
				p.Key = prop.Key
				p.Value = prop.Value
				p.Computed = prop.Computed
				obj.Elements = append(obj.Elements, p)
			}
		case "spread_element":
			obj.Elements = append(obj.Elements, b.expression(c))
		}
	}
	return obj
}

func (b *bridge) arrayLiteral(n *sitter.Node) *jsast.Node {
	arr := b.node(jsast.KindArrayLit, n)
	// Elision holes have no named child between commas; reconstruct them by
	// scanning the raw children for adjacent commas.
	expectElement := true
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() {
			switch b.text(c) {
			case ",":
				if expectElement {
					arr.Elements = append(arr.Elements, nil) // hole
				}
				expectElement = true
			case "]":
				// Trailing `[1, , ]` style holes: a comma directly before
				// the bracket after a hole was already recorded.
			}
			continue
		}
		if c.Type() == "comment" {
			continue
		}
		arr.Elements = append(arr.Elements, b.expression(c))
		expectElement = false
	}
	return arr
}

func (b *bridge) arrowFunction(n *sitter.Node) *jsast.Node {
	fn := b.node(jsast.KindArrowFunction, n)
	if single := n.ChildByFieldName("parameter"); single != nil {
		fn.Params = []*jsast.Node{b.pattern(single)}
	} else {
		fn.Params = b.parameters(n.ChildByFieldName("parameters"))
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return fn
	}
	if body.Type() == "statement_block" {
		block := b.node(jsast.KindBlock, body)
		block.Body = b.statements(body)
		fn.FnBody = block
	} else {
		fn.FnBody = b.expression(body)
	}
	return fn
}

func (b *bridge) classLike(n *sitter.Node, kind jsast.Kind) *jsast.Node {
	cls := b.node(kind, n)
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = b.text(name)
	}
	// class_heritage wraps `extends <expr>`.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "class_heritage" && c.NamedChildCount() > 0 {
			cls.Super = b.expression(c.NamedChild(0))
		}
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "method_definition":
			cls.Body = append(cls.Body, b.methodDefinition(c))
		case "field_definition", "class_static_block", "comment":
			if c.Type() == "comment" {
				continue
			}
			cls.Body = append(cls.Body, b.unsupported(c, c.Type()))
		}
	}
	return cls
}

func (b *bridge) methodDefinition(n *sitter.Node) *jsast.Node {
	m := b.node(jsast.KindMethodDef, n)
	m.DeclKind = "method"
	m.Key = b.propertyKey(n.ChildByFieldName("name"), m)

	// Modifiers appear as anonymous leading tokens.
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			continue
		}
		switch b.text(c) {
		case "static":
			m.Static = true
		case "get":
			m.DeclKind = "get"
		case "set":
			m.DeclKind = "set"
		case "async", "*":
			return b.unsupported(n, "async or generator method")
		}
	}
	if m.Key != nil && m.Key.Kind == jsast.KindIdent && m.Key.Name == "constructor" && m.DeclKind == "method" {
		m.DeclKind = "constructor"
	}

	fn := b.node(jsast.KindFunctionExpr, n)
	fn.Params = b.parameters(n.ChildByFieldName("parameters"))
	if body := n.ChildByFieldName("body"); body != nil {
		block := b.node(jsast.KindBlock, body)
		block.Body = b.statements(body)
		fn.FnBody = block
	}
	m.Value = fn
	return m
}
