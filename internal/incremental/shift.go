package incremental

import "github.com/perlscope/perlscope/internal/ast"

// shiftSpan rewrites the span fields of one node. Auxiliary spans
// (names, phases, labels, methods) shift together with the node span so
// byte-precise navigation survives the splice.
func shiftSpan(n ast.Node, delta int) {
	switch v := n.(type) {
	case *ast.Program:
		v.Span = v.Span.Shift(delta)
	case *ast.Block:
		v.Span = v.Span.Shift(delta)
	case *ast.VariableDeclaration:
		v.Span = v.Span.Shift(delta)
	case *ast.SubDeclaration:
		v.Span = v.Span.Shift(delta)
		v.NameSpan = v.NameSpan.Shift(delta)
	case *ast.PackageDeclaration:
		v.Span = v.Span.Shift(delta)
		v.NameSpan = v.NameSpan.Shift(delta)
	case *ast.UseStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.IfStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.WhileStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.ForStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.ForeachStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.TryStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.GivenStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.WhenClause:
		v.Span = v.Span.Shift(delta)
	case *ast.PhaseBlock:
		v.Span = v.Span.Shift(delta)
		v.PhaseSpan = v.PhaseSpan.Shift(delta)
	case *ast.ExpressionStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.StatementModifier:
		v.Span = v.Span.Shift(delta)
	case *ast.ReturnStatement:
		v.Span = v.Span.Shift(delta)
	case *ast.LoopControl:
		v.Span = v.Span.Shift(delta)
	case *ast.LabeledStatement:
		v.Span = v.Span.Shift(delta)
		v.LabelSpan = v.LabelSpan.Shift(delta)
	case *ast.DataSection:
		v.Span = v.Span.Shift(delta)
	case *ast.ErrorNode:
		v.Span = v.Span.Shift(delta)
	case *ast.Identifier:
		v.Span = v.Span.Shift(delta)
	case *ast.Variable:
		v.Span = v.Span.Shift(delta)
	case *ast.Typeglob:
		v.Span = v.Span.Shift(delta)
	case *ast.NumberLiteral:
		v.Span = v.Span.Shift(delta)
	case *ast.StringLiteral:
		v.Span = v.Span.Shift(delta)
	case *ast.ListExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.ArrayRef:
		v.Span = v.Span.Shift(delta)
	case *ast.HashRef:
		v.Span = v.Span.Shift(delta)
	case *ast.BinaryExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.UnaryExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.TernaryExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.AssignExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.RangeExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.FunctionCall:
		v.Span = v.Span.Shift(delta)
		v.NameSpan = v.NameSpan.Shift(delta)
	case *ast.MethodCall:
		v.Span = v.Span.Shift(delta)
		v.MethodSpan = v.MethodSpan.Shift(delta)
	case *ast.IndexExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.DerefExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.Readline:
		v.Span = v.Span.Shift(delta)
	case *ast.RegexLiteral:
		v.Span = v.Span.Shift(delta)
	case *ast.MatchExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.SubstitutionExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.TransliterationExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.Heredoc:
		v.Span = v.Span.Shift(delta)
	case *ast.EvalExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.DoExpr:
		v.Span = v.Span.Shift(delta)
	case *ast.AnonSub:
		v.Span = v.Span.Shift(delta)
	case *ast.MissingExpr:
		v.Span = v.Span.Shift(delta)
	}
}
