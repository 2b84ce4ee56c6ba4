package transform

import (
	"strconv"

	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/pyast"
)

// destructure flattens a binding or assignment pattern into element-wise
// statements reading from src. Object patterns read by key, array patterns
// by index; defaults go through the runtime default helper so the
// undefined sentinel, not the target's None, triggers them.
func (t *Transformer) destructure(c *ctx, pattern *jsast.Node, src *pyast.Node) []*pyast.Node {
	var out []*pyast.Node
	t.destructureInto(c, &out, pattern, src)
	return out
}

func (t *Transformer) destructureInto(c *ctx, out *[]*pyast.Node, pattern *jsast.Node, src *pyast.Node) {
	if pattern == nil {
		return
	}
	switch pattern.Kind {
	case jsast.KindIdent:
		*out = append(*out, pyast.NewAssign(pyast.NewName(t.targetName(pattern)), src))

	case jsast.KindMember:
		*out = append(*out, t.writeTarget(c, pattern, src, pattern.Span)...)

	case jsast.KindAssignPattern:
		t.destructureInto(c, out, pattern.Left,
			t.runtime.Call(HelperDefault, src, t.expr(c, pattern.Right)))

	case jsast.KindObjectPattern:
		for _, e := range pattern.Elements {
			if e == nil {
				continue
			}
			if e.Kind == jsast.KindRestElement {
				t.warn(e, diag.CodeLowering, "object rest pattern is not translated")
				*out = append(*out, &pyast.Node{
					Kind:     pyast.KindCommentStmt,
					Span:     e.Span,
					Comments: []string{"TODO: object rest pattern"},
				})
				continue
			}
			if e.Kind != jsast.KindProperty {
				continue
			}
			var key *pyast.Node
			if e.Computed {
				key = t.expr(c, e.Key)
			} else {
				key = t.propertyKey(c, e)
			}
			t.destructureInto(c, out, e.Value, t.runtime.Call(HelperGetIndex, src, key))
		}

	case jsast.KindArrayPattern:
		for i, e := range pattern.Elements {
			if e == nil {
				continue // hole: nothing to bind
			}
			if e.Kind == jsast.KindRestElement {
				t.destructureInto(c, out, e.Argument,
					t.runtime.Call(HelperRest, src, pyast.NewNum(strconv.Itoa(i))))
				continue
			}
			t.destructureInto(c, out, e,
				t.runtime.Call(HelperGetIndex, src, pyast.NewNum(strconv.Itoa(i))))
		}

	default:
		t.warn(pattern, diag.CodeLowering, "unsupported pattern element "+pattern.Kind.String())
	}
}

// destructureSource evaluates a pattern's source once into a temporary
// whenever the target is a pattern rather than a plain identifier.
func (t *Transformer) destructureSource(c *ctx, out *[]*pyast.Node, pattern *jsast.Node, value *pyast.Node) *pyast.Node {
	if pattern.Kind == jsast.KindIdent {
		return value
	}
	tmp := t.newTemp("tmp")
	*out = append(*out, pyast.NewAssign(pyast.NewName(tmp), value))
	return pyast.NewName(tmp)
}
