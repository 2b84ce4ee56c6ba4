package analyzer

import (
	"js2py/internal/jsast"
)

// ThisKind classifies how `this` binds inside a function body.
type ThisKind uint8

const (
	ThisModule      ThisKind = iota // module top level: undefined
	ThisOrdinary                    // plain function call
	ThisMethod                      // class method: the instance
	ThisConstructor                 // constructor body or new-called function
	ThisLexical                     // arrow: inherited from the enclosing function
)

func (k ThisKind) String() string {
	switch k {
	case ThisModule:
		return "module"
	case ThisOrdinary:
		return "ordinary"
	case ThisMethod:
		return "method"
	case ThisConstructor:
		return "constructor"
	case ThisLexical:
		return "lexical"
	}
	return "unknown"
}

// RiskFlag marks a node whose semantics the translation cannot fully
// preserve.
type RiskFlag uint16

const (
	RiskThisTop RiskFlag = 1 << iota
	RiskArguments
	RiskEval
	RiskWith
	RiskDynWrite
	RiskProtoMutation
	RiskDestructure
	RiskDelete
)

// ModuleShape classifies the file's import/export style.
type ModuleShape uint8

const (
	ShapeScript ModuleShape = iota
	ShapeESM
	ShapeCommonJS
	ShapeMixed
)

func (s ModuleShape) String() string {
	switch s {
	case ShapeScript:
		return "script"
	case ShapeESM:
		return "esm"
	case ShapeCommonJS:
		return "commonjs"
	case ShapeMixed:
		return "mixed"
	}
	return "unknown"
}

// Result is the analyzer's output: the scope tree, the binding map, the
// risk set, and the module shape. It is immutable once returned.
type Result struct {
	arena *arena

	// BindingOf maps identifier reference and declaration nodes to their
	// binding.
	BindingOf map[jsast.NodeID]BindingID
	// ScopeOf maps scope-opening nodes (functions, blocks, the program) to
	// their scope id.
	ScopeOf map[jsast.NodeID]ScopeID
	// Risks maps nodes to their risk flags.
	Risks map[jsast.NodeID]RiskFlag
	// ThisOf maps function-like nodes to their this-binding kind.
	ThisOf map[jsast.NodeID]ThisKind
	// CtorFuncs marks function nodes observed to be used as constructors.
	CtorFuncs map[jsast.NodeID]bool
	// Unresolved maps reference nodes to names that resolved to nothing,
	// not even a builtin.
	Unresolved map[jsast.NodeID]string
	// Shape is the module classification.
	Shape ModuleShape
}

// Scope returns the scope record for id.
func (r *Result) Scope(id ScopeID) *Scope { return r.arena.scope(id) }

// Binding returns the binding record for id.
func (r *Result) Binding(id BindingID) *Binding { return r.arena.binding(id) }

// ScopeCount reports the number of scopes (the module scope included).
func (r *Result) ScopeCount() int { return len(r.arena.scopes) - 1 }

// BindingCount reports the number of bindings.
func (r *Result) BindingCount() int { return len(r.arena.bindings) - 1 }

// RootScope returns the module/global scope id.
func (r *Result) RootScope() ScopeID {
	if len(r.arena.scopes) > 1 {
		return ScopeID(1)
	}
	return NoScopeID
}

// HasRisk reports whether node carries flag.
func (r *Result) HasRisk(node jsast.NodeID, flag RiskFlag) bool {
	return r.Risks[node]&flag != 0
}
