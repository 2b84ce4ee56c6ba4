package pyast

import "fmt"

// Kind discriminates the closed set of target AST node kinds. The emitter
// is a straight printer over this union; it never re-derives semantics.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindModule

	// Statements.
	KindFunctionDef
	KindClassDef
	KindAssign
	KindAugAssign
	KindExprStmt
	KindIf
	KindForEach
	KindWhile
	KindTry
	KindExceptClause
	KindRaise
	KindReturn
	KindBreak
	KindContinue
	KindPass
	KindImport
	KindImportFrom
	KindGlobal
	KindNonlocal
	KindCommentStmt

	// Expressions.
	KindName
	KindAttribute
	KindSubscript
	KindCall
	KindLambda
	KindNumberLit
	KindStringLit
	KindBoolLit
	KindNoneLit
	KindFString
	KindList
	KindDict
	KindTuple
	KindCondExpr
	KindUnaryOp
	KindBinOp
	KindCompare
	KindBoolOp
	KindStarred

	kindCount
)

var kindNames = [...]string{
	KindInvalid:      "Invalid",
	KindModule:       "Module",
	KindFunctionDef:  "FunctionDef",
	KindClassDef:     "ClassDef",
	KindAssign:       "Assign",
	KindAugAssign:    "AugAssign",
	KindExprStmt:     "ExprStmt",
	KindIf:           "If",
	KindForEach:      "ForEach",
	KindWhile:        "While",
	KindTry:          "Try",
	KindExceptClause: "ExceptClause",
	KindRaise:        "Raise",
	KindReturn:       "Return",
	KindBreak:        "Break",
	KindContinue:     "Continue",
	KindPass:         "Pass",
	KindImport:       "Import",
	KindImportFrom:   "ImportFrom",
	KindGlobal:       "Global",
	KindNonlocal:     "Nonlocal",
	KindCommentStmt:  "CommentStmt",
	KindName:         "Name",
	KindAttribute:    "Attribute",
	KindSubscript:    "Subscript",
	KindCall:         "Call",
	KindLambda:       "Lambda",
	KindNumberLit:    "NumberLit",
	KindStringLit:    "StringLit",
	KindBoolLit:      "BoolLit",
	KindNoneLit:      "NoneLit",
	KindFString:      "FString",
	KindList:         "List",
	KindDict:         "Dict",
	KindTuple:        "Tuple",
	KindCondExpr:     "CondExpr",
	KindUnaryOp:      "UnaryOp",
	KindBinOp:        "BinOp",
	KindCompare:      "Compare",
	KindBoolOp:       "BoolOp",
	KindStarred:      "Starred",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsExpr reports whether the kind is an expression node.
func (k Kind) IsExpr() bool {
	return k >= KindName
}
