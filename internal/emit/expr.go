package emit

import (
	"fmt"
	"strings"

	"js2py/internal/pyast"
)

// Operator precedence levels of the target language, loosest first. A
// child whose level is below its context gets parenthesized.
const (
	precLowest = iota
	precLambda
	precCond
	precOr
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precUnary
	precPower
	precAtom
)

var binOpPrec = map[string]int{
	"|": precBitOr, "^": precBitXor, "&": precBitAnd,
	"<<": precShift, ">>": precShift,
	"+": precAdd, "-": precAdd,
	"*": precMul, "/": precMul, "%": precMul, "//": precMul,
	"**": precPower,
}

func (e *emitter) prec(n *pyast.Node) int {
	switch n.Kind {
	case pyast.KindLambda:
		return precLambda
	case pyast.KindCondExpr:
		return precCond
	case pyast.KindBoolOp:
		if n.Op == "or" {
			return precOr
		}
		return precAnd
	case pyast.KindCompare:
		return precCompare
	case pyast.KindBinOp:
		if p, ok := binOpPrec[n.Op]; ok {
			return p
		}
		return precAdd
	case pyast.KindUnaryOp:
		if n.Op == "not" {
			return precNot
		}
		return precUnary
	}
	return precAtom
}

// expr renders an expression, parenthesizing when its precedence is below
// the context's.
func (e *emitter) expr(n *pyast.Node, context int) string {
	if n == nil {
		return "None"
	}
	s := e.exprInner(n)
	if e.prec(n) < context {
		return "(" + s + ")"
	}
	return s
}

func (e *emitter) exprInner(n *pyast.Node) string {
	switch n.Kind {
	case pyast.KindName:
		return n.Name

	case pyast.KindNumberLit:
		return n.Num

	case pyast.KindStringLit:
		return pyStr(n.Str)

	case pyast.KindBoolLit:
		if n.Bool {
			return "True"
		}
		return "False"

	case pyast.KindNoneLit:
		return "None"

	case pyast.KindAttribute:
		return e.expr(n.Value, precAtom) + "." + n.Name

	case pyast.KindSubscript:
		return e.expr(n.Value, precAtom) + "[" + e.expr(n.Index, precLowest) + "]"

	case pyast.KindCall:
		args := make([]string, 0, len(n.Args))
		for _, a := range n.Args {
			args = append(args, e.expr(a, precLowest))
		}
		return e.expr(n.Func, precAtom) + "(" + strings.Join(args, ", ") + ")"

	case pyast.KindStarred:
		return "*" + e.expr(n.Value, precUnary)

	case pyast.KindLambda:
		head := "lambda"
		if len(n.Params) > 0 {
			head += " " + e.params(n.Params)
		}
		return head + ": " + e.expr(n.Value, precLambda)

	case pyast.KindList:
		parts := make([]string, 0, len(n.Elts))
		for _, el := range n.Elts {
			parts = append(parts, e.expr(el, precLowest))
		}
		return "[" + strings.Join(parts, ", ") + "]"

	case pyast.KindTuple:
		parts := make([]string, 0, len(n.Elts))
		for _, el := range n.Elts {
			parts = append(parts, e.expr(el, precLowest))
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"

	case pyast.KindDict:
		parts := make([]string, 0, len(n.Keys))
		for i, k := range n.Keys {
			parts = append(parts, e.expr(k, precLowest)+": "+e.expr(n.Values[i], precLowest))
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case pyast.KindCondExpr:
		return e.expr(n.Value, precOr) + " if " + e.expr(n.Test, precOr) +
			" else " + e.expr(n.Right, precCond)

	case pyast.KindUnaryOp:
		if n.Op == "not" {
			return "not " + e.expr(n.Value, precNot)
		}
		return n.Op + e.expr(n.Value, precUnary)

	case pyast.KindBinOp:
		p := e.prec(n)
		return e.expr(n.Left, p) + " " + n.Op + " " + e.expr(n.Right, p+1)

	case pyast.KindCompare:
		return e.expr(n.Left, precCompare+1) + " " + n.Op + " " + e.expr(n.Right, precCompare+1)

	case pyast.KindBoolOp:
		p := e.prec(n)
		parts := make([]string, 0, len(n.Values))
		for _, v := range n.Values {
			parts = append(parts, e.expr(v, p+1))
		}
		return strings.Join(parts, " "+n.Op+" ")

	case pyast.KindFString:
		var b strings.Builder
		b.WriteString("f\"")
		for _, part := range n.Values {
			if part.Kind == pyast.KindStringLit {
				b.WriteString(escapeFStringText(part.Str))
				continue
			}
			b.WriteString("{")
			b.WriteString(e.expr(part, precLowest))
			b.WriteString("}")
		}
		b.WriteString("\"")
		return b.String()
	}
	return "None"
}

// pyStr renders a Python single-quoted string literal.
func pyStr(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, "\\x%02x", r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func escapeFStringText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "{", "{{")
	s = strings.ReplaceAll(s, "}", "}}")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
