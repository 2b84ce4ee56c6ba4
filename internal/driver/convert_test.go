package driver_test

import (
	"context"
	"strings"
	"testing"

	"js2py/internal/diag"
	"js2py/internal/driver"
	"js2py/internal/parser"
)

func convert(t *testing.T, src string, mutate ...func(*driver.Config)) *driver.Result {
	t.Helper()
	cfg := driver.Config{
		InputPath: "input.js",
		Mode:      parser.ModeScript,
		NoCache:   true,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	res, err := driver.Convert(context.Background(), cfg, []byte(src))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	return res
}

func wantContains(t *testing.T, output string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(output, p) {
			t.Errorf("output missing %q\n--- output ---\n%s", p, output)
		}
	}
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

// S1: class + method + template literal.
func TestScenarioClassTemplate(t *testing.T) {
	res := convert(t, `
class Person {
  constructor(name) { this.name = name; }
  greet() { return `+"`Hello ${this.name}`"+`; }
}
function makePerson() { return new Person('Alice'); }
`)
	if res.Failed {
		t.Fatalf("conversion failed: %v", res.Bag.Items())
	}
	wantContains(t, res.Output,
		"class Person:",
		"def __init__(self, name):",
		"self.name = name",
		"def greet(self):",
		"return 'Hello ' + js_to_str(self.name)",
		"def makePerson():",
		"return js_new(Person, 'Alice')",
	)
}

// S2: try/catch/finally with a thrown value.
func TestScenarioTryCatchFinally(t *testing.T) {
	res := convert(t, `
function risky(fn) {
  try {
    return fn();
  } catch (err) {
    console.log(err.message);
    throw err;
  } finally {
    console.log('cleanup');
  }
}
`)
	wantContains(t, res.Output,
		"try:",
		"return fn()",
		"except JsError as _err_",
		".value",
		"console.log(err.message)",
		"raise JsError(err)",
		"finally:",
		"console.log('cleanup')",
	)
}

// S3: for..of over an array.
func TestScenarioForOf(t *testing.T) {
	res := convert(t, `
var arr = [1, 2, 3];
for (const x of arr) { console.log(x); }
`)
	wantContains(t, res.Output,
		"for x in js_iter(arr):",
		"console.log(x)",
	)
}

// S4: switch(true) cascade becomes a plain predicate chain, no temporary.
func TestScenarioSwitchTrue(t *testing.T) {
	res := convert(t, `
function grade(s) {
  switch (true) {
    case s >= 90: return 'A';
    case s >= 80: return 'B';
    default: return 'C';
  }
}
`)
	wantContains(t, res.Output,
		"if s >= 90:",
		"return 'A'",
		"elif s >= 80:",
		"return 'B'",
		"else:",
		"return 'C'",
	)
	if strings.Contains(res.Output, "_switch_") {
		t.Error("switch(true) must not introduce a scrutinee temporary")
	}
}

// S5: CommonJS interop.
func TestScenarioCommonJS(t *testing.T) {
	res := convert(t, `
const fs = require('fs');
function a() { return fs; }
function b() { return 2; }
module.exports = { a, b };
`)
	wantContains(t, res.Output,
		"import fs",
		"_module_exports",
		"_exports = _module_exports",
		"__all__ = ['a', 'b']",
	)
	if res.Exports == nil || !res.Exports.CommonJS {
		t.Fatal("exports record should be CommonJS")
	}
	if len(res.Exports.Named) != 2 {
		t.Fatalf("named exports = %+v", res.Exports.Named)
	}
}

// S6: do/while degradation with its diagnostic.
func TestScenarioDoWhile(t *testing.T) {
	res := convert(t, `
var i = 0;
do { i = i + 1; } while (i < 3);
`)
	wantContains(t, res.Output,
		"while True:",
		"break",
	)
	if !hasCode(res.Bag, diag.CodeDoWhile) {
		t.Fatal("expected JSR-DO-WHILE")
	}
}

// Property 1: determinism.
func TestDeterminism(t *testing.T) {
	src := `
class A { constructor() { this.v = [1, , 2]; } }
var x = 1 + 2;
do { x++; } while (x < 10);
var o = { a: 1, ['k' + x]: 2 };
`
	a := convert(t, src)
	b := convert(t, src)
	if a.Output != b.Output {
		t.Error("outputs differ between runs")
	}
	if len(a.Bag.Items()) != len(b.Bag.Items()) {
		t.Fatalf("diagnostic counts differ: %d vs %d", len(a.Bag.Items()), len(b.Bag.Items()))
	}
	for i := range a.Bag.Items() {
		x, y := a.Bag.Items()[i], b.Bag.Items()[i]
		if x.Code != y.Code || x.Primary != y.Primary || x.Message != y.Message {
			t.Errorf("diagnostic %d differs: %+v vs %+v", i, x, y)
		}
	}
}

// Property 2: cache round-trip; the second run reads the cache and does
// not parse.
func TestCacheRoundTrip(t *testing.T) {
	src := "var x = 1;\nfunction f(a) { return a + x; }\n"
	dir := t.TempDir()
	counter := 0
	mutate := func(cfg *driver.Config) {
		cfg.NoCache = false
		cfg.CacheDir = dir
		cfg.ParseCounter = &counter
	}
	a := convert(t, src, mutate)
	if counter != 1 {
		t.Fatalf("first run should parse once, counter = %d", counter)
	}
	if a.CacheHit {
		t.Fatal("first run cannot hit the cache")
	}
	b := convert(t, src, mutate)
	if counter != 1 {
		t.Fatalf("second run must not re-parse, counter = %d", counter)
	}
	if !b.CacheHit {
		t.Fatal("second run should hit the cache")
	}
	if a.Output != b.Output {
		t.Error("cached run output differs")
	}
}

// Property 5: strict-mode monotonicity.
func TestStrictMonotonicity(t *testing.T) {
	// A getter property warns (JSR-ACCESSOR): non-strict succeeds, strict
	// fails.
	warnSrc := "var o = { get x() { return 1; } };"
	loose := convert(t, warnSrc)
	if loose.Failed {
		t.Fatal("non-strict run with only warnings must succeed")
	}
	strict := convert(t, warnSrc, func(cfg *driver.Config) { cfg.Strict = true })
	if !strict.Failed {
		t.Fatal("strict run with warnings must fail")
	}

	// Info-only input succeeds in both modes.
	infoSrc := "var i = 0;\ndo { i = i + 1; } while (i < 3);"
	if convert(t, infoSrc).Failed {
		t.Fatal("info-only non-strict run must succeed")
	}
	if convert(t, infoSrc, func(cfg *driver.Config) { cfg.Strict = true }).Failed {
		t.Fatal("info-only strict run must succeed")
	}
}

// Property 4: diagnostic ordering by (file, location, code).
func TestDiagnosticOrdering(t *testing.T) {
	res := convert(t, `
var a = [1, , 2];
do { a = a; } while (false);
eval("x");
`)
	items := res.Bag.Items()
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		if prev.Primary.Start > cur.Primary.Start {
			t.Fatalf("diagnostics out of order: %v after %v", cur, prev)
		}
	}
}

func TestHeaderLine(t *testing.T) {
	res := convert(t, "var x = 1;")
	if !strings.HasPrefix(res.Output, "# Generated by js2py from input.js.") {
		t.Errorf("missing header, got %q", strings.SplitN(res.Output, "\n", 2)[0])
	}
	if !strings.HasSuffix(res.Output, "\n") {
		t.Error("output must end with a newline")
	}
}

func TestRuntimePreambleOnlyWhenUsed(t *testing.T) {
	// Pure numeric arithmetic in a let (which gets no hoist seed) needs no
	// helpers.
	res := convert(t, "let x = 1 + 2;")
	if strings.Contains(res.Output, "js2py_runtime") {
		t.Errorf("no runtime helper was needed:\n%s", res.Output)
	}
	res2 := convert(t, "let s = 'a' + w;")
	if !strings.Contains(res2.Output, "from js2py_runtime import") {
		t.Error("js_plus requires the preamble")
	}
}

func TestESMExports(t *testing.T) {
	res, err := driver.Convert(context.Background(), driver.Config{
		InputPath: "m.js", Mode: parser.ModeModule, NoCache: true,
	}, []byte(`
import helper from "./helper.js";
export const version = 1;
export default function main() { return helper(version); }
`))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	wantContains(t, res.Output,
		"import helper",
		"version = 1",
		"def main():",
		"_default = main",
		"_exports = {'default': _default, 'version': version}",
		"__all__ = ['version']",
	)
	if res.Exports == nil || !res.Exports.HasDefault {
		t.Fatal("default export not recorded")
	}
}

func TestUpdateExpressionStatement(t *testing.T) {
	res := convert(t, "var i = 0; i++; --i;")
	wantContains(t, res.Output,
		"i = js_plus(i, 1)",
		"i = js_minus(i, 1)",
	)
}

func TestLabeledBreakRewrite(t *testing.T) {
	res := convert(t, `
outer:
for (var i = 0; i < 3; i++) {
  for (var j = 0; j < 3; j++) {
    if (j === 2) { break outer; }
  }
}
`)
	if !hasCode(res.Bag, diag.CodeLabel) {
		t.Fatal("expected JSR-LABEL")
	}
	wantContains(t, res.Output, "_brk_outer_", "= True")
}
