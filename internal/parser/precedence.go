package parser

import "github.com/perlscope/perlscope/internal/token"

// Associativity of one precedence level.
type assoc int

const (
	assocLeft assoc = iota
	assocRight
	assocNone // chains are parsed left-to-right and flagged
)

// opClass says what AST shape an infix operator builds.
type opClass int

const (
	classBinary opClass = iota
	classAssign
	classComma
	classTernary
	classRange
	classMatchBind
)

// opInfo is one row of the infix operator table.
type opInfo struct {
	prec  int
	assoc assoc
	class opClass
}

// Precedence levels, loosest first. The numbering leaves gaps so levels
// read like the reference tables they mirror.
const (
	precLowOr      = 1  // or xor
	precLowAnd     = 2  // and
	precComma      = 4  // , =>
	precAssign     = 6  // = += -= ...
	precTernary    = 8  // ?:
	precRange      = 10 // .. ...
	precOrOr       = 12 // || //
	precAndAnd     = 14 // &&
	precBitOr      = 16 // | ^
	precBitAnd     = 18 // &
	precEquality   = 20 // == != <=> eq ne cmp isa
	precRelational = 22 // < > <= >= lt gt le ge
	precShift      = 24 // << >>
	precAdditive   = 26 // + - .
	precMultiply   = 28 // * / % x
	precMatch      = 30 // =~ !~
	precPower      = 34 // **
	precArrow      = 38 // -> and subscripts, handled as postfix
)

// prefix unary operators bind between multiplication and power.
const precUnary = 32

var infixOps = map[string]opInfo{
	"or":  {precLowOr, assocLeft, classBinary},
	"xor": {precLowOr, assocLeft, classBinary},
	"and": {precLowAnd, assocLeft, classBinary},

	"=":   {precAssign, assocRight, classAssign},
	"+=":  {precAssign, assocRight, classAssign},
	"-=":  {precAssign, assocRight, classAssign},
	"*=":  {precAssign, assocRight, classAssign},
	"/=":  {precAssign, assocRight, classAssign},
	".=":  {precAssign, assocRight, classAssign},
	"%=":  {precAssign, assocRight, classAssign},
	"x=":  {precAssign, assocRight, classAssign},
	"**=": {precAssign, assocRight, classAssign},
	"||=": {precAssign, assocRight, classAssign},
	"//=": {precAssign, assocRight, classAssign},
	"&&=": {precAssign, assocRight, classAssign},
	"|=":  {precAssign, assocRight, classAssign},
	"&=":  {precAssign, assocRight, classAssign},
	"^=":  {precAssign, assocRight, classAssign},
	"<<=": {precAssign, assocRight, classAssign},
	">>=": {precAssign, assocRight, classAssign},

	"..":  {precRange, assocNone, classRange},
	"...": {precRange, assocNone, classRange},

	"||": {precOrOr, assocLeft, classBinary},
	"//": {precOrOr, assocLeft, classBinary},
	"&&": {precAndAnd, assocLeft, classBinary},

	"|": {precBitOr, assocLeft, classBinary},
	"^": {precBitOr, assocLeft, classBinary},
	"&": {precBitAnd, assocLeft, classBinary},

	"==":  {precEquality, assocNone, classBinary},
	"!=":  {precEquality, assocNone, classBinary},
	"<=>": {precEquality, assocNone, classBinary},
	"eq":  {precEquality, assocNone, classBinary},
	"ne":  {precEquality, assocNone, classBinary},
	"cmp": {precEquality, assocNone, classBinary},
	"isa": {precEquality, assocNone, classBinary},

	"<":  {precRelational, assocNone, classBinary},
	">":  {precRelational, assocNone, classBinary},
	"<=": {precRelational, assocNone, classBinary},
	">=": {precRelational, assocNone, classBinary},
	"lt": {precRelational, assocNone, classBinary},
	"gt": {precRelational, assocNone, classBinary},
	"le": {precRelational, assocNone, classBinary},
	"ge": {precRelational, assocNone, classBinary},

	"<<": {precShift, assocLeft, classBinary},
	">>": {precShift, assocLeft, classBinary},

	"+": {precAdditive, assocLeft, classBinary},
	"-": {precAdditive, assocLeft, classBinary},
	".": {precAdditive, assocLeft, classBinary},

	"*": {precMultiply, assocLeft, classBinary},
	"/": {precMultiply, assocLeft, classBinary},
	"%": {precMultiply, assocLeft, classBinary},
	"x": {precMultiply, assocLeft, classBinary},

	"=~": {precMatch, assocLeft, classMatchBind},
	"!~": {precMatch, assocLeft, classMatchBind},

	"**": {precPower, assocRight, classBinary},
}

// infixFor returns the operator row for the token, or ok=false when the
// token cannot continue an expression.
func infixFor(t token.Token) (opInfo, bool) {
	switch t.Kind {
	case token.Comma, token.FatArrow:
		return opInfo{precComma, assocLeft, classComma}, true
	case token.Question:
		return opInfo{precTernary, assocRight, classTernary}, true
	case token.Operator:
		info, ok := infixOps[t.Text]
		return info, ok
	case token.Ident:
		// Word operators arrive as plain identifiers.
		info, ok := infixOps[t.Text]
		return info, ok
	}
	return opInfo{}, false
}

// isPrefixOp reports whether the token can open a unary expression.
func isPrefixOp(t token.Token) bool {
	switch t.Kind {
	case token.Operator:
		switch t.Text {
		case "!", "~", "\\", "+", "-", "++", "--":
			return true
		}
	case token.Ident:
		switch t.Text {
		case "not", "defined", "ref", "scalar", "wantarray":
			return true
		}
	}
	return false
}
