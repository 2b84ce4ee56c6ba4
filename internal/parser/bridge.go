package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/source"
)

// bridge converts a tree-sitter CST into the jsast union. It tolerates
// ERROR subtrees by skipping them; the syntax diagnostics were already
// reported by the caller.
type bridge struct {
	content  []byte
	fileID   source.FileID
	mode     Mode
	reporter diag.Reporter
}

func (b *bridge) span(n *sitter.Node) source.Span {
	return spanOf(n, b.fileID)
}

func (b *bridge) text(n *sitter.Node) string {
	return n.Content(b.content)
}

func (b *bridge) node(kind jsast.Kind, n *sitter.Node) *jsast.Node {
	return jsast.NewNode(kind, b.span(n))
}

// unsupported yields a carrier node for a construct outside the supported
// subset. The diagnostic fires in the transformer, not here, so a cached
// tree reproduces the same diagnostic sequence as a fresh parse.
func (b *bridge) unsupported(n *sitter.Node, what string) *jsast.Node {
	out := b.node(jsast.KindUnsupported, n)
	out.Raw = what
	return out
}

func (b *bridge) program(root *sitter.Node) *jsast.Node {
	prog := b.node(jsast.KindProgram, root)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if stmt := b.statement(child); stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
	}
	return prog
}

// statements flattens a statement_block (or a lone statement) into a list.
func (b *bridge) statements(n *sitter.Node) []*jsast.Node {
	if n == nil {
		return nil
	}
	if n.Type() != "statement_block" {
		if stmt := b.statement(n); stmt != nil {
			return []*jsast.Node{stmt}
		}
		return nil
	}
	var out []*jsast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if stmt := b.statement(n.NamedChild(i)); stmt != nil {
			out = append(out, stmt)
		}
	}
	return out
}

func (b *bridge) statement(n *sitter.Node) *jsast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "comment":
		return nil
	case "ERROR":
		// Tolerant recovery: the subtree was already reported.
		return nil

	case "expression_statement":
		expr := b.expression(n.NamedChild(0))
		if expr == nil {
			return nil
		}
		stmt := b.node(jsast.KindExprStmt, n)
		stmt.Argument = expr
		return stmt

	case "variable_declaration", "lexical_declaration":
		return b.varDeclaration(n)

	case "function_declaration":
		return b.functionLike(n, jsast.KindFunctionDecl)

	case "generator_function_declaration":
		return b.unsupported(n, "generator function")

	case "class_declaration":
		return b.classLike(n, jsast.KindClassDecl)

	case "statement_block":
		block := b.node(jsast.KindBlock, n)
		block.Body = b.statements(n)
		return block

	case "if_statement":
		return b.ifStatement(n)

	case "for_statement":
		return b.forStatement(n)

	case "for_in_statement":
		return b.forInStatement(n)

	case "while_statement":
		stmt := b.node(jsast.KindWhile, n)
		stmt.Test = b.condition(n.ChildByFieldName("condition"))
		stmt.BodyStmt = b.bodyStatement(n.ChildByFieldName("body"))
		return stmt

	case "do_statement":
		stmt := b.node(jsast.KindDoWhile, n)
		stmt.BodyStmt = b.bodyStatement(n.ChildByFieldName("body"))
		stmt.Test = b.condition(n.ChildByFieldName("condition"))
		return stmt

	case "switch_statement":
		return b.switchStatement(n)

	case "try_statement":
		return b.tryStatement(n)

	case "throw_statement":
		stmt := b.node(jsast.KindThrow, n)
		stmt.Argument = b.expression(n.NamedChild(0))
		return stmt

	case "return_statement":
		stmt := b.node(jsast.KindReturn, n)
		if n.NamedChildCount() > 0 {
			stmt.Argument = b.expression(n.NamedChild(0))
		}
		return stmt

	case "break_statement":
		stmt := b.node(jsast.KindBreak, n)
		if label := n.ChildByFieldName("label"); label != nil {
			stmt.Label = b.text(label)
		}
		return stmt

	case "continue_statement":
		stmt := b.node(jsast.KindContinue, n)
		if label := n.ChildByFieldName("label"); label != nil {
			stmt.Label = b.text(label)
		}
		return stmt

	case "labeled_statement":
		stmt := b.node(jsast.KindLabeled, n)
		if label := n.ChildByFieldName("label"); label != nil {
			stmt.Label = b.text(label)
		}
		stmt.BodyStmt = b.statement(n.ChildByFieldName("body"))
		return stmt

	case "with_statement":
		stmt := b.node(jsast.KindWith, n)
		stmt.Object = b.condition(n.ChildByFieldName("object"))
		stmt.BodyStmt = b.bodyStatement(n.ChildByFieldName("body"))
		return stmt

	case "empty_statement":
		return b.node(jsast.KindEmpty, n)

	case "debugger_statement":
		return b.node(jsast.KindDebugger, n)

	case "import_statement":
		return b.importStatement(n)

	case "export_statement":
		return b.exportStatement(n)
	}

	// Anything else at statement position: try it as an expression first,
	// then give up with an unsupported marker.
	if expr := b.expression(n); expr != nil {
		stmt := b.node(jsast.KindExprStmt, n)
		stmt.Argument = expr
		return stmt
	}
	return b.unsupported(n, n.Type())
}

// bodyStatement converts a loop/label body, wrapping statement lists into a
// block so that downstream stages see a single node.
func (b *bridge) bodyStatement(n *sitter.Node) *jsast.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "statement_block" {
		block := b.node(jsast.KindBlock, n)
		block.Body = b.statements(n)
		return block
	}
	return b.statement(n)
}

// condition unwraps the parenthesized_expression tree-sitter puts around
// if/while/switch heads.
func (b *bridge) condition(n *sitter.Node) *jsast.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "parenthesized_expression" && n.NamedChildCount() > 0 {
		return b.expression(n.NamedChild(0))
	}
	return b.expression(n)
}

func (b *bridge) varDeclaration(n *sitter.Node) *jsast.Node {
	decl := b.node(jsast.KindVarDecl, n)
	decl.DeclKind = "var"
	if n.Type() == "lexical_declaration" {
		// First token is the `let` or `const` keyword.
		if kw := n.Child(0); kw != nil {
			decl.DeclKind = b.text(kw)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		d := b.node(jsast.KindVarDeclarator, child)
		d.Target = b.pattern(child.ChildByFieldName("name"))
		if init := child.ChildByFieldName("value"); init != nil {
			d.Init = b.expression(init)
		}
		decl.Elements = append(decl.Elements, d)
	}
	return decl
}

func (b *bridge) ifStatement(n *sitter.Node) *jsast.Node {
	stmt := b.node(jsast.KindIf, n)
	stmt.Test = b.condition(n.ChildByFieldName("condition"))
	stmt.Cons = b.bodyStatement(n.ChildByFieldName("consequence"))
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		// alternative is an else_clause wrapping the statement.
		if alt.Type() == "else_clause" && alt.NamedChildCount() > 0 {
			stmt.Alt = b.bodyStatement(alt.NamedChild(0))
		} else {
			stmt.Alt = b.bodyStatement(alt)
		}
	}
	return stmt
}

func (b *bridge) forStatement(n *sitter.Node) *jsast.Node {
	stmt := b.node(jsast.KindForC, n)
	if init := n.ChildByFieldName("initializer"); init != nil {
		switch init.Type() {
		case "variable_declaration", "lexical_declaration":
			stmt.Init = b.varDeclaration(init)
		case "empty_statement":
		case "expression_statement":
			if init.NamedChildCount() > 0 {
				stmt.Init = b.expression(init.NamedChild(0))
			}
		default:
			stmt.Init = b.expression(init)
		}
	}
	if test := n.ChildByFieldName("condition"); test != nil && test.Type() != "empty_statement" {
		if test.Type() == "expression_statement" && test.NamedChildCount() > 0 {
			stmt.Test = b.expression(test.NamedChild(0))
		} else {
			stmt.Test = b.expression(test)
		}
	}
	if update := n.ChildByFieldName("increment"); update != nil {
		stmt.Update = b.expression(update)
	}
	stmt.BodyStmt = b.bodyStatement(n.ChildByFieldName("body"))
	return stmt
}

// forInStatement covers both for..in and for..of; the grammar shares one
// node type and distinguishes them by the operator token.
func (b *bridge) forInStatement(n *sitter.Node) *jsast.Node {
	kind := jsast.KindForIn
	if op := n.ChildByFieldName("operator"); op != nil && b.text(op) == "of" {
		kind = jsast.KindForOf
	} else if op == nil {
		// Older grammars expose the keyword as an anonymous child.
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); !c.IsNamed() && b.text(c) == "of" {
				kind = jsast.KindForOf
				break
			}
		}
	}
	stmt := b.node(kind, n)
	left := n.ChildByFieldName("left")
	stmt.Left = b.pattern(left)
	if left != nil {
		// Capture the declaration kind (`for (const x of ...)`) so the
		// analyzer scopes the loop variable correctly.
		if kw := n.ChildByFieldName("kind"); kw != nil {
			stmt.DeclKind = b.text(kw)
		} else {
			for i := 0; i < int(n.ChildCount()); i++ {
				if c := n.Child(i); !c.IsNamed() {
					switch b.text(c) {
					case "var", "let", "const":
						stmt.DeclKind = b.text(c)
					}
				}
			}
		}
	}
	stmt.Right = b.expression(n.ChildByFieldName("right"))
	stmt.BodyStmt = b.bodyStatement(n.ChildByFieldName("body"))
	return stmt
}

func (b *bridge) switchStatement(n *sitter.Node) *jsast.Node {
	stmt := b.node(jsast.KindSwitch, n)
	stmt.Disc = b.condition(n.ChildByFieldName("condition"))
	body := n.ChildByFieldName("body")
	if body == nil {
		return stmt
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "switch_case":
			sc := b.node(jsast.KindSwitchCase, c)
			sc.Test = b.expression(c.ChildByFieldName("value"))
			sc.Body = b.caseBody(c)
			stmt.Elements = append(stmt.Elements, sc)
		case "switch_default":
			sc := b.node(jsast.KindSwitchCase, c)
			sc.Body = b.caseBody(c)
			stmt.Elements = append(stmt.Elements, sc)
		}
	}
	return stmt
}

// caseBody collects the statements of a switch_case/switch_default, which
// the grammar keeps as trailing named children after the optional value.
func (b *bridge) caseBody(c *sitter.Node) []*jsast.Node {
	var out []*jsast.Node
	value := c.ChildByFieldName("value")
	for i := 0; i < int(c.NamedChildCount()); i++ {
		child := c.NamedChild(i)
		if value != nil && child.StartByte() == value.StartByte() && child.EndByte() == value.EndByte() {
			continue
		}
		if stmt := b.statement(child); stmt != nil {
			out = append(out, stmt)
		}
	}
	return out
}

func (b *bridge) tryStatement(n *sitter.Node) *jsast.Node {
	stmt := b.node(jsast.KindTry, n)
	if body := n.ChildByFieldName("body"); body != nil {
		block := b.node(jsast.KindBlock, body)
		block.Body = b.statements(body)
		stmt.BodyStmt = block
	}
	if handler := n.ChildByFieldName("handler"); handler != nil {
		clause := b.node(jsast.KindCatchClause, handler)
		if param := handler.ChildByFieldName("parameter"); param != nil {
			clause.Param = b.pattern(param)
		}
		if hbody := handler.ChildByFieldName("body"); hbody != nil {
			block := b.node(jsast.KindBlock, hbody)
			block.Body = b.statements(hbody)
			clause.BodyStmt = block
		}
		stmt.Handler = clause
	}
	if fin := n.ChildByFieldName("finalizer"); fin != nil {
		// finally_clause wraps the block.
		fbody := fin.ChildByFieldName("body")
		if fbody == nil && fin.NamedChildCount() > 0 {
			fbody = fin.NamedChild(0)
		}
		if fbody != nil {
			block := b.node(jsast.KindBlock, fbody)
			block.Body = b.statements(fbody)
			stmt.Finally = block
		}
	}
	return stmt
}

// functionLike bridges function declarations and expressions.
func (b *bridge) functionLike(n *sitter.Node, kind jsast.Kind) *jsast.Node {
	fn := b.node(kind, n)
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = b.text(name)
	}
	fn.Params = b.parameters(n.ChildByFieldName("parameters"))
	if body := n.ChildByFieldName("body"); body != nil {
		block := b.node(jsast.KindBlock, body)
		block.Body = b.statements(body)
		fn.FnBody = block
	}
	return fn
}

func (b *bridge) parameters(n *sitter.Node) []*jsast.Node {
	if n == nil {
		return nil
	}
	var out []*jsast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if p := b.pattern(n.NamedChild(i)); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// pattern bridges binding positions: identifiers, default values, rest
// elements, and destructuring patterns.
func (b *bridge) pattern(n *sitter.Node) *jsast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "property_identifier", "shorthand_property_identifier_pattern":
		id := b.node(jsast.KindIdent, n)
		id.Name = b.text(n)
		return id
	case "assignment_pattern":
		p := b.node(jsast.KindAssignPattern, n)
		p.Left = b.pattern(n.ChildByFieldName("left"))
		p.Right = b.expression(n.ChildByFieldName("right"))
		return p
	case "rest_pattern":
		p := b.node(jsast.KindRestElement, n)
		if n.NamedChildCount() > 0 {
			p.Argument = b.pattern(n.NamedChild(0))
		}
		return p
	case "object_pattern":
		p := b.node(jsast.KindObjectPattern, n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "pair_pattern":
				prop := b.node(jsast.KindProperty, c)
				prop.DeclKind = "init"
				prop.Key = b.propertyKey(c.ChildByFieldName("key"), prop)
				prop.Value = b.pattern(c.ChildByFieldName("value"))
				p.Elements = append(p.Elements, prop)
			case "shorthand_property_identifier_pattern":
				prop := b.node(jsast.KindProperty, c)
				prop.DeclKind = "shorthand"
				key := b.node(jsast.KindIdent, c)
				key.Name = b.text(c)
				value := b.node(jsast.KindIdent, c)
				value.Name = key.Name
				prop.Key = key
				prop.Value = value
				p.Elements = append(p.Elements, prop)
			case "object_assignment_pattern":
				prop := b.node(jsast.KindProperty, c)
				prop.DeclKind = "shorthand"
				ap := b.node(jsast.KindAssignPattern, c)
				ap.Left = b.pattern(c.ChildByFieldName("left"))
				ap.Right = b.expression(c.ChildByFieldName("right"))
				if ap.Left != nil && ap.Left.Kind == jsast.KindIdent {
					key := b.node(jsast.KindIdent, c)
					key.Name = ap.Left.Name
					prop.Key = key
				}
				prop.Value = ap
				p.Elements = append(p.Elements, prop)
			case "rest_pattern":
				p.Elements = append(p.Elements, b.pattern(c))
			}
		}
		return p
	case "array_pattern":
		p := b.node(jsast.KindArrayPattern, n)
		// Elision holes become nil elements so later elements keep their index.
		expectElement := true
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if !c.IsNamed() {
				if b.text(c) == "," {
					if expectElement {
						p.Elements = append(p.Elements, nil) // hole
					}
					expectElement = true
				}
				continue
			}
			p.Elements = append(p.Elements, b.pattern(c))
			expectElement = false
		}
		return p
	case "member_expression", "subscript_expression":
		// Assignment targets in for-in/of heads may be member accesses.
		return b.expression(n)
	}
	return b.expression(n)
}

// propertyKey bridges an object-literal or pattern key, marking computed
// keys on the owning property node.
func (b *bridge) propertyKey(n *sitter.Node, owner *jsast.Node) *jsast.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "computed_property_name" {
		owner.Computed = true
		if n.NamedChildCount() > 0 {
			return b.expression(n.NamedChild(0))
		}
		return nil
	}
	switch n.Type() {
	case "property_identifier", "shorthand_property_identifier", "identifier":
		id := b.node(jsast.KindIdent, n)
		id.Name = b.text(n)
		return id
	}
	return b.expression(n)
}
