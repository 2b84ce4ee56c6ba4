package transform

import (
	"js2py/internal/jsast"
)

// initRules populates the dispatch tables. Every kind of the source union
// appears here or is deliberately routed through a lowering failure; the
// registry is the single place that knowledge lives.
func (t *Transformer) initRules() {
	t.stmtRules = map[jsast.Kind]stmtRule{
		jsast.KindVarDecl:       t.stmtVarDecl,
		jsast.KindFunctionDecl:  t.stmtFunctionDecl,
		jsast.KindClassDecl:     t.stmtClass,
		jsast.KindClassExpr:     t.stmtClass,
		jsast.KindBlock:         t.stmtBlock,
		jsast.KindExprStmt:      t.stmtExpr,
		jsast.KindIf:            t.stmtIf,
		jsast.KindForC:          t.stmtForC,
		jsast.KindForIn:         t.stmtForIn,
		jsast.KindForOf:         t.stmtForOf,
		jsast.KindWhile:         t.stmtWhile,
		jsast.KindDoWhile:       t.stmtDoWhile,
		jsast.KindSwitch:        t.stmtSwitch,
		jsast.KindTry:           t.stmtTry,
		jsast.KindThrow:         t.stmtThrow,
		jsast.KindReturn:        t.stmtReturn,
		jsast.KindBreak:         t.stmtBreak,
		jsast.KindContinue:      t.stmtContinue,
		jsast.KindLabeled:       t.stmtLabeled,
		jsast.KindWith:          t.stmtWith,
		jsast.KindEmpty:         t.stmtEmpty,
		jsast.KindDebugger:      t.stmtEmpty,
		jsast.KindUnsupported:   t.stmtUnsupported,
		jsast.KindImportDecl:    t.stmtImport,
		jsast.KindExportNamed:   t.stmtExportNamed,
		jsast.KindExportDefault: t.stmtExportDefault,
		jsast.KindExportAll:     t.stmtExportAll,
	}

	t.exprRules = map[jsast.Kind]exprRule{
		jsast.KindNumberLit:     t.exprNumber,
		jsast.KindStringLit:     t.exprString,
		jsast.KindBoolLit:       t.exprBool,
		jsast.KindNullLit:       t.exprNull,
		jsast.KindUndefinedLit:  t.exprUndefined,
		jsast.KindRegexLit:      t.exprRegex,
		jsast.KindTemplateLit:   t.exprTemplate,
		jsast.KindIdent:         t.exprIdent,
		jsast.KindThis:          t.exprThis,
		jsast.KindParen:         t.exprParen,
		jsast.KindMember:        t.exprMember,
		jsast.KindCall:          t.exprCall,
		jsast.KindNew:           t.exprNew,
		jsast.KindAssign:        t.exprAssign,
		jsast.KindUpdate:        t.exprUpdate,
		jsast.KindUnary:         t.exprUnary,
		jsast.KindBinary:        t.exprBinary,
		jsast.KindLogical:       t.exprLogical,
		jsast.KindConditional:   t.exprConditional,
		jsast.KindSequence:      t.exprSequence,
		jsast.KindObjectLit:     t.exprObject,
		jsast.KindArrayLit:      t.exprArray,
		jsast.KindSpread:        t.exprSpreadMisuse,
		jsast.KindFunctionExpr:  t.exprFunction,
		jsast.KindArrowFunction: t.exprArrow,
		jsast.KindClassExpr:     t.exprClass,
		jsast.KindUnsupported:   t.exprUnsupported,
	}
}
