package transform_test

import (
	"context"
	"strings"
	"testing"

	"js2py/internal/analyzer"
	"js2py/internal/diag"
	"js2py/internal/emit"
	"js2py/internal/parser"
	"js2py/internal/source"
	"js2py/internal/transform"
)

// lower runs parse → analyze → transform → emit over src and returns the
// emitted text plus the diagnostic bag.
func lower(t *testing.T, src string) (string, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.js", []byte(src))
	bag := diag.NewBag(200)
	reporter := diag.BagReporter{Bag: bag}
	parsed, err := parser.Parse(context.Background(), fs, id, parser.Options{
		Mode:     parser.ModeScript,
		Tolerant: true,
	}, reporter)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	analysis := analyzer.Analyze(parsed.Root, reporter)
	res := transform.Transform(parsed.Root, analysis, reporter)
	out := emit.Emit(res.Module, emit.Options{Runtime: res.Runtime, Exports: res.Exports})
	return out, bag
}

func TestSwitchFallThroughCascades(t *testing.T) {
	out, _ := lower(t, `
function f(x) {
  switch (x) {
    case 1:
      a();
    case 2:
      b();
      break;
    default:
      c();
  }
}`)
	// Case 1 falls through into case 2's body.
	caseOne := out[strings.Index(out, "== 1"):]
	if !strings.Contains(caseOne[:strings.Index(caseOne, "elif")], "b()") {
		t.Errorf("case 1 must cascade into b():\n%s", out)
	}
	if !strings.Contains(out, "_switch_") {
		t.Error("a non-true scrutinee needs a temporary")
	}
	if !strings.Contains(out, "else:") {
		t.Error("default must become else")
	}
}

func TestCompoundAssignment(t *testing.T) {
	out, _ := lower(t, "var x = 0; x += y; x -= 2;")
	if !strings.Contains(out, "x = js_plus(x, y)") {
		t.Errorf("+= must reuse the plus helper:\n%s", out)
	}
	if !strings.Contains(out, "x = js_minus(x, 2)") {
		t.Errorf("-= must reuse the minus helper:\n%s", out)
	}
}

func TestComputedMemberAccess(t *testing.T) {
	out, _ := lower(t, "var v = o[k]; o[k] = 1; p.q = 2;")
	if !strings.Contains(out, "js_getindex(o, k)") {
		t.Errorf("computed read must use js_getindex:\n%s", out)
	}
	if !strings.Contains(out, "js_setindex(o, k, 1)") {
		t.Errorf("computed write must use js_setindex:\n%s", out)
	}
	if !strings.Contains(out, "p.q = 2") {
		t.Errorf("plain member write stays attribute assignment:\n%s", out)
	}
}

func TestTypeofAndLooseEq(t *testing.T) {
	out, _ := lower(t, `var t1 = typeof v; var e = a == b; var s = a === b;`)
	if !strings.Contains(out, "js_typeof(v)") {
		t.Error("typeof must lower to js_typeof")
	}
	if !strings.Contains(out, "loose_eq(a, b)") {
		t.Error("== must lower to loose_eq")
	}
	if !strings.Contains(out, "a == b") {
		t.Error("=== must lower to the direct comparison")
	}
}

func TestArrowLambdaAndLiftedArrow(t *testing.T) {
	out, _ := lower(t, `
var double = (n) => n * 2;
var effectful = (n) => { log(n); return n; };
`)
	if !strings.Contains(out, "lambda n:") {
		t.Errorf("single-expression arrow should be a lambda:\n%s", out)
	}
	if !strings.Contains(out, "def _arrow_") {
		t.Errorf("block-bodied arrow must lift to a def:\n%s", out)
	}
}

func TestArrowWritingCaptureIsLifted(t *testing.T) {
	out, _ := lower(t, `
var count = 0;
var bump = () => count = count + 1;
`)
	// The capture is written, so even the expression body cannot be a
	// lambda.
	if strings.Contains(out, "lambda") {
		t.Errorf("writing arrow must not become a lambda:\n%s", out)
	}
	if !strings.Contains(out, "global count") {
		t.Errorf("written module-level capture needs a global declaration:\n%s", out)
	}
}

func TestNestedFunctionNonlocalWrite(t *testing.T) {
	out, _ := lower(t, `
function counter() {
  var n = 0;
  return function () { n = n + 1; return n; };
}`)
	if !strings.Contains(out, "nonlocal n") {
		t.Errorf("written function-level capture needs nonlocal:\n%s", out)
	}
}

func TestDestructuringDeclaration(t *testing.T) {
	out, bag := lower(t, "var {a, b: c, d = 5} = src; var [x, , y] = arr;")
	for _, want := range []string{
		"js_getindex(_tmp_1, 'a')",
		"c = js_getindex(_tmp_1, 'b')",
		"js_default(js_getindex(_tmp_1, 'd'), 5)",
		"js_getindex(_tmp_2, 0)",
		"y = js_getindex(_tmp_2, 2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.CodeDestructure {
			found = true
		}
	}
	if !found {
		t.Error("destructuring must report JSR-DESTRUCTURE")
	}
}

func TestRenamedReservedWord(t *testing.T) {
	out, bag := lower(t, "var class_ = 1; var lambda = 2; log(lambda);")
	if !strings.Contains(out, "lambda_js = 2") || !strings.Contains(out, "log(lambda_js)") {
		t.Errorf("reserved name must gain the _js suffix at every site:\n%s", out)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.CodeRename {
			found = true
		}
	}
	if !found {
		t.Error("rename must report JSR-RENAME")
	}
}

func TestRegexLiteral(t *testing.T) {
	out, _ := lower(t, `var re = /ab+c/gi;`)
	if !strings.Contains(out, "js_regex('ab+c', 'gi')") {
		t.Errorf("regex must lower to js_regex:\n%s", out)
	}
}

func TestSpreadInCallAndArray(t *testing.T) {
	out, _ := lower(t, "f(a, ...rest); var l = [1, ...more];")
	if !strings.Contains(out, "*js_spread(rest)") {
		t.Errorf("call spread must flatten:\n%s", out)
	}
	if !strings.Contains(out, "*js_spread(more)") {
		t.Errorf("array spread must flatten:\n%s", out)
	}
}

func TestPostfixIncrementExpression(t *testing.T) {
	out, _ := lower(t, "var i = 0; var old = i++;")
	// The expression yields the pre-update value via a temporary.
	if !strings.Contains(out, "_tmp_1 = i") {
		t.Errorf("postfix update needs the old-value temp:\n%s", out)
	}
	if !strings.Contains(out, "old = _tmp_1") {
		t.Errorf("expression must yield the old value:\n%s", out)
	}
}
