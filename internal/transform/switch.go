package transform

import (
	"js2py/internal/jsast"
	"js2py/internal/pyast"
)

// stmtSwitch lowers a switch to an if/elif chain over strict equality
// against the scrutinee, evaluated once into a temporary. Fall-through is
// preserved by concatenating case bodies forward until one terminates.
// The `switch (true)` idiom skips the temporary: each case expression
// becomes a condition directly.
func (t *Transformer) stmtSwitch(c *ctx, n *jsast.Node) []*pyast.Node {
	var out []*pyast.Node
	sub := *c
	if s, ok := t.analysis.ScopeOf[n.ID]; ok {
		sub.scope = s
	}
	sub.stmts = &out

	disc := n.Disc.Unparen()
	onTrue := disc != nil && disc.Kind == jsast.KindBoolLit && disc.Bool

	var match func(test *jsast.Node) *pyast.Node
	if onTrue {
		match = func(test *jsast.Node) *pyast.Node {
			return t.truthy(&sub, test)
		}
	} else {
		tmp := t.newTemp("switch")
		out = append(out, pyast.NewAssign(pyast.NewName(tmp), t.expr(&sub, disc)))
		match = func(test *jsast.Node) *pyast.Node {
			return &pyast.Node{
				Kind:  pyast.KindCompare,
				Op:    "==",
				Left:  pyast.NewName(tmp),
				Right: t.expr(&sub, test),
			}
		}
	}

	cases := n.Elements
	if len(cases) == 0 {
		return out
	}

	var top, prev *pyast.Node
	var defaultBody []*pyast.Node
	for i, sc := range cases {
		body := t.cascadeBody(&sub, cases, i)
		if sc.Test == nil {
			defaultBody = body
			continue
		}
		branch := &pyast.Node{
			Kind: pyast.KindIf,
			Span: sc.Span,
			Test: match(sc.Test),
			Body: nonEmpty(body),
		}
		if top == nil {
			top = branch
		} else {
			prev.Orelse = []*pyast.Node{branch}
		}
		prev = branch
	}

	if top == nil {
		return append(out, defaultBody...)
	}
	if defaultBody != nil {
		prev.Orelse = defaultBody
	}
	return append(out, top)
}

// cascadeBody lowers case i's consequent plus every following case's
// consequent until a terminated body, dropping the trailing break that
// ended the cascade.
func (t *Transformer) cascadeBody(c *ctx, cases []*jsast.Node, start int) []*pyast.Node {
	var out []*pyast.Node
	for i := start; i < len(cases); i++ {
		stop := false
		for _, s := range cases[i].Body {
			if s != nil && s.Kind == jsast.KindBreak && s.Label == "" {
				stop = true
				break
			}
			t.lowerStmtInto(c, &out, s)
			if terminates(s) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
	}
	return out
}

// terminates reports whether a source statement unconditionally leaves the
// switch.
func terminates(s *jsast.Node) bool {
	if s == nil {
		return false
	}
	switch s.Kind {
	case jsast.KindReturn, jsast.KindThrow, jsast.KindContinue:
		return true
	case jsast.KindBreak:
		return s.Label == ""
	}
	return false
}
