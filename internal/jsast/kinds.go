package jsast

import "fmt"

// Kind discriminates the closed set of source AST node kinds. The union is
// closed: the transformer dispatches on it through a table, and any kind
// missing from the table is a lowering failure, not a silent skip.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindProgram

	// Declarations.
	KindFunctionDecl
	KindFunctionExpr
	KindArrowFunction
	KindClassDecl
	KindClassExpr
	KindMethodDef
	KindVarDecl
	KindVarDeclarator

	// Literals.
	KindNumberLit
	KindStringLit
	KindBoolLit
	KindNullLit
	KindUndefinedLit
	KindRegexLit
	KindTemplateLit

	// Expressions.
	KindIdent
	KindThis
	KindSuper
	KindMember
	KindCall
	KindNew
	KindAssign
	KindUpdate
	KindUnary
	KindBinary
	KindLogical
	KindConditional
	KindSequence
	KindObjectLit
	KindProperty
	KindArrayLit
	KindSpread
	KindRestElement
	KindAssignPattern
	KindObjectPattern
	KindArrayPattern
	KindParen

	// Statements.
	KindBlock
	KindExprStmt
	KindIf
	KindForC
	KindForIn
	KindForOf
	KindWhile
	KindDoWhile
	KindSwitch
	KindSwitchCase
	KindTry
	KindCatchClause
	KindThrow
	KindReturn
	KindBreak
	KindContinue
	KindLabeled
	KindWith
	KindEmpty
	KindDebugger
	// KindUnsupported carries a syntactically valid construct outside the
	// supported subset (generator, async, yield, await) through to the
	// transformer, which turns it into a TODO comment at the site.
	KindUnsupported

	// Modules.
	KindImportDecl
	KindImportSpec
	KindExportNamed
	KindExportDefault
	KindExportAll
	KindExportSpec

	kindCount
)

var kindNames = [...]string{
	KindInvalid:       "Invalid",
	KindProgram:       "Program",
	KindFunctionDecl:  "FunctionDecl",
	KindFunctionExpr:  "FunctionExpr",
	KindArrowFunction: "ArrowFunction",
	KindClassDecl:     "ClassDecl",
	KindClassExpr:     "ClassExpr",
	KindMethodDef:     "MethodDef",
	KindVarDecl:       "VarDecl",
	KindVarDeclarator: "VarDeclarator",
	KindNumberLit:     "NumberLit",
	KindStringLit:     "StringLit",
	KindBoolLit:       "BoolLit",
	KindNullLit:       "NullLit",
	KindUndefinedLit:  "UndefinedLit",
	KindRegexLit:      "RegexLit",
	KindTemplateLit:   "TemplateLit",
	KindIdent:         "Ident",
	KindThis:          "This",
	KindSuper:         "Super",
	KindMember:        "Member",
	KindCall:          "Call",
	KindNew:           "New",
	KindAssign:        "Assign",
	KindUpdate:        "Update",
	KindUnary:         "Unary",
	KindBinary:        "Binary",
	KindLogical:       "Logical",
	KindConditional:   "Conditional",
	KindSequence:      "Sequence",
	KindObjectLit:     "ObjectLit",
	KindProperty:      "Property",
	KindArrayLit:      "ArrayLit",
	KindSpread:        "Spread",
	KindRestElement:   "RestElement",
	KindAssignPattern: "AssignPattern",
	KindObjectPattern: "ObjectPattern",
	KindArrayPattern:  "ArrayPattern",
	KindParen:         "Paren",
	KindBlock:         "Block",
	KindExprStmt:      "ExprStmt",
	KindIf:            "If",
	KindForC:          "ForC",
	KindForIn:         "ForIn",
	KindForOf:         "ForOf",
	KindWhile:         "While",
	KindDoWhile:       "DoWhile",
	KindSwitch:        "Switch",
	KindSwitchCase:    "SwitchCase",
	KindTry:           "Try",
	KindCatchClause:   "CatchClause",
	KindThrow:         "Throw",
	KindReturn:        "Return",
	KindBreak:         "Break",
	KindContinue:      "Continue",
	KindLabeled:       "Labeled",
	KindWith:          "With",
	KindEmpty:         "Empty",
	KindDebugger:      "Debugger",
	KindUnsupported:   "Unsupported",
	KindImportDecl:    "ImportDecl",
	KindImportSpec:    "ImportSpec",
	KindExportNamed:   "ExportNamed",
	KindExportDefault: "ExportDefault",
	KindExportAll:     "ExportAll",
	KindExportSpec:    "ExportSpec",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	return m
}()

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name so cached ASTs stay readable and
// survive reordering of the enum.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("jsast: unknown kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, ok := kindByName[string(text)]
	if !ok {
		return fmt.Errorf("jsast: unknown kind %q", text)
	}
	*k = v
	return nil
}

// IsStatement reports whether the kind appears in statement position.
func (k Kind) IsStatement() bool {
	switch k {
	case KindBlock, KindExprStmt, KindIf, KindForC, KindForIn, KindForOf,
		KindWhile, KindDoWhile, KindSwitch, KindTry, KindThrow, KindReturn,
		KindBreak, KindContinue, KindLabeled, KindWith, KindEmpty, KindDebugger, KindUnsupported,
		KindVarDecl, KindFunctionDecl, KindClassDecl,
		KindImportDecl, KindExportNamed, KindExportDefault, KindExportAll:
		return true
	}
	return false
}
