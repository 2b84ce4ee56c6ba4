package transform

import (
	"sort"

	"js2py/internal/pyast"
)

// Runtime helper names. The emitted program imports these from the runtime
// facade; the core assumes their semantics and never defines them.
const (
	HelperUndefined = "undefined"
	HelperPlus      = "js_plus"
	HelperMinus     = "js_minus"
	HelperMul       = "js_mul"
	HelperMod       = "js_mod"
	HelperLooseEq   = "loose_eq"
	HelperAnd       = "js_and"
	HelperOr        = "js_or"
	HelperNullish   = "js_nullish"
	HelperTypeof    = "js_typeof"
	HelperTruthy    = "js_truthy"
	HelperToStr     = "js_to_str"
	HelperToNum     = "js_to_num"
	HelperGetIndex  = "js_getindex"
	HelperSetIndex  = "js_setindex"
	HelperDelete    = "js_delete"
	HelperNew       = "js_new"
	HelperCtor      = "js_ctor"
	HelperKeys      = "js_keys"
	HelperIter      = "js_iter"
	HelperSpread    = "js_spread"
	HelperRegex     = "js_regex"
	HelperRest      = "js_rest"
	HelperDefault   = "js_default"
	HelperVoid      = "js_void"
	HelperMerge     = "js_merge"
	HelperUshr      = "js_ushr"
	HelperInstance  = "js_instanceof"
	HelperIn        = "js_in"
	HelperError     = "JsError"

	// Facade globals: builtin objects the runtime re-exports.
	FacadeConsole = "console"
	FacadeObject  = "Object"
	FacadeArray   = "Array"
	FacadeDate    = "Date"
	FacadeJSON    = "JSON"
	FacadeMath    = "Math"
)

// facadeGlobals maps JS global names to runtime facade exports. A
// reference to one marks the helper as used so the preamble imports it.
var facadeGlobals = map[string]bool{
	FacadeConsole: true,
	FacadeObject:  true,
	FacadeArray:   true,
	FacadeDate:    true,
	FacadeJSON:    true,
	FacadeMath:    true,
}

// RuntimeModule is the module the preamble imports helpers from.
const RuntimeModule = "js2py_runtime"

// RuntimeSet tracks which runtime helpers the lowering referenced. The
// emitter inserts the import preamble iff the set is non-empty.
type RuntimeSet struct {
	used map[string]bool
}

// NewRuntimeSet creates an empty tracking set.
func NewRuntimeSet() *RuntimeSet {
	return &RuntimeSet{used: make(map[string]bool)}
}

// Use marks helper as referenced and returns its name.
func (r *RuntimeSet) Use(helper string) string {
	r.used[helper] = true
	return helper
}

// Name marks helper as referenced and returns a Name node for it.
func (r *RuntimeSet) Name(helper string) *pyast.Node {
	return pyast.NewName(r.Use(helper))
}

// Call marks helper as referenced and builds a call to it.
func (r *RuntimeSet) Call(helper string, args ...*pyast.Node) *pyast.Node {
	return pyast.NewCall(r.Name(helper), args...)
}

// Empty reports whether no helper was referenced.
func (r *RuntimeSet) Empty() bool { return len(r.used) == 0 }

// Names returns the referenced helpers sorted for deterministic output.
func (r *RuntimeSet) Names() []string {
	out := make([]string, 0, len(r.used))
	for name := range r.used {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
