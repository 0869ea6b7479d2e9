package ast

// Children returns the direct child nodes of n in source order. Nil
// children are skipped so callers never see a nil Node.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		// A nil typed pointer stored in an interface is not == nil;
		// concrete appends below only pass non-nil pointers.
		if c != nil {
			out = append(out, c)
		}
	}
	addExpr := func(e Expression) {
		if e != nil {
			out = append(out, e)
		}
	}
	addStmt := func(s Statement) {
		if s != nil {
			out = append(out, s)
		}
	}
	addBlock := func(b *Block) {
		if b != nil {
			out = append(out, b)
		}
	}

	switch v := n.(type) {
	case *Program:
		for _, s := range v.Statements {
			addStmt(s)
		}
	case *Block:
		for _, s := range v.Statements {
			addStmt(s)
		}
	case *VariableDeclaration:
		for _, vr := range v.Variables {
			if vr != nil {
				out = append(out, vr)
			}
		}
		addExpr(v.Init)
	case *SubDeclaration:
		addBlock(v.Body)
	case *PackageDeclaration:
		addBlock(v.Block)
	case *UseStatement:
		for _, a := range v.Args {
			addExpr(a)
		}
	case *IfStatement:
		addExpr(v.Cond)
		addBlock(v.Then)
		for _, e := range v.Elsifs {
			addExpr(e.Cond)
			addBlock(e.Then)
		}
		addBlock(v.Else)
	case *WhileStatement:
		addExpr(v.Cond)
		addBlock(v.Body)
	case *ForStatement:
		addExpr(v.Init)
		addExpr(v.Cond)
		addExpr(v.Update)
		addBlock(v.Body)
	case *ForeachStatement:
		addExpr(v.Var)
		addExpr(v.List)
		addBlock(v.Body)
	case *TryStatement:
		addBlock(v.Try)
		addExpr(v.CatchVar)
		addBlock(v.Catch)
		addBlock(v.Finally)
	case *GivenStatement:
		addExpr(v.Topic)
		addBlock(v.Body)
	case *WhenClause:
		addExpr(v.Match)
		addBlock(v.Body)
	case *PhaseBlock:
		addBlock(v.Body)
	case *ExpressionStatement:
		addExpr(v.Expr)
	case *StatementModifier:
		addStmt(v.Stmt)
		addExpr(v.Cond)
	case *ReturnStatement:
		addExpr(v.Value)
	case *LabeledStatement:
		addStmt(v.Stmt)
	case *ErrorNode:
		add(v.Partial)
	case *ListExpr:
		for _, e := range v.Elements {
			addExpr(e)
		}
	case *ArrayRef:
		for _, e := range v.Elements {
			addExpr(e)
		}
	case *HashRef:
		for _, e := range v.Pairs {
			addExpr(e)
		}
	case *BinaryExpr:
		addExpr(v.Left)
		addExpr(v.Right)
	case *UnaryExpr:
		addExpr(v.Operand)
	case *TernaryExpr:
		addExpr(v.Cond)
		addExpr(v.Then)
		addExpr(v.Else)
	case *AssignExpr:
		addExpr(v.LHS)
		addExpr(v.RHS)
	case *RangeExpr:
		addExpr(v.Low)
		addExpr(v.High)
	case *FunctionCall:
		for _, a := range v.Args {
			addExpr(a)
		}
	case *MethodCall:
		addExpr(v.Invocant)
		for _, a := range v.Args {
			addExpr(a)
		}
	case *IndexExpr:
		addExpr(v.Target)
		addExpr(v.Index)
	case *DerefExpr:
		addExpr(v.Operand)
	case *MatchExpr:
		addExpr(v.Target)
		addExpr(v.Regex)
	case *SubstitutionExpr:
		addExpr(v.Target)
	case *TransliterationExpr:
		addExpr(v.Target)
	case *EvalExpr:
		addBlock(v.Block)
		addExpr(v.Str)
	case *DoExpr:
		addBlock(v.Block)
	case *AnonSub:
		addBlock(v.Body)
	}
	return out
}

// Walk visits n and its descendants in depth-first source order. The
// visitor returns false to prune the subtree below the current node.
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, visit)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}

// fingerprintEntry is one entry of a tree fingerprint: the node kind
// and its span, flattened in walk order.
type fingerprintEntry struct {
	kind  Kind
	start int
	end   int
}

func fingerprint(n Node) []fingerprintEntry {
	var fp []fingerprintEntry
	Walk(n, func(c Node) bool {
		sp := c.GetSpan()
		fp = append(fp, fingerprintEntry{kind: c.Kind(), start: sp.Start, end: sp.End})
		return true
	})
	return fp
}

// StructurallyEqual reports whether two trees have identical node kinds
// and spans in walk order.
func StructurallyEqual(a, b Node) bool {
	fa, fb := fingerprint(a), fingerprint(b)
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}

// ErrorNodes collects every ErrorNode in the tree rooted at n.
func ErrorNodes(n Node) []*ErrorNode {
	var errs []*ErrorNode
	Walk(n, func(c Node) bool {
		if e, ok := c.(*ErrorNode); ok {
			errs = append(errs, e)
		}
		return true
	})
	return errs
}
