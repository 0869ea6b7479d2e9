package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlscope/perlscope/internal/position"
)

func sampleTree() *Program {
	return &Program{
		Span: position.Span{Start: 0, End: 20},
		Statements: []Statement{
			&ExpressionStatement{
				Span: position.Span{Start: 0, End: 9},
				Expr: &BinaryExpr{
					Span:  position.Span{Start: 0, End: 9},
					Op:    "+",
					Left:  &NumberLiteral{Span: position.Span{Start: 0, End: 1}, Raw: "1"},
					Right: &NumberLiteral{Span: position.Span{Start: 4, End: 5}, Raw: "2"},
				},
			},
			&ReturnStatement{
				Span:  position.Span{Start: 10, End: 19},
				Value: &Variable{Span: position.Span{Start: 17, End: 19}, Sigil: '$', Name: "x"},
			},
		},
	}
}

func TestWalkVisitsDepthFirst(t *testing.T) {
	var kinds []Kind
	Walk(sampleTree(), func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	want := []Kind{
		KindProgram,
		KindExpressionStatement, KindBinaryExpr, KindNumberLiteral, KindNumberLiteral,
		KindReturnStatement, KindVariable,
	}
	assert.Equal(t, want, kinds)
}

func TestWalkPrunes(t *testing.T) {
	count := 0
	Walk(sampleTree(), func(n Node) bool {
		count++
		return n.Kind() != KindBinaryExpr
	})
	// Pruning at the binary expression skips its two literals.
	assert.Equal(t, 5, count)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 7, Count(sampleTree()))
}

func TestStructurallyEqual(t *testing.T) {
	a := sampleTree()
	b := sampleTree()
	require.True(t, StructurallyEqual(a, b))

	// Same shape, shifted span: not equal.
	b.Statements[1].(*ReturnStatement).Span.Start++
	assert.False(t, StructurallyEqual(a, b))

	// Different kind in the same position: not equal.
	c := sampleTree()
	c.Statements[0].(*ExpressionStatement).Expr = &StringLiteral{
		Span: position.Span{Start: 0, End: 9},
	}
	assert.False(t, StructurallyEqual(a, c))
}

func TestErrorNodes(t *testing.T) {
	tree := sampleTree()
	assert.Empty(t, ErrorNodes(tree))

	tree.Statements = append(tree.Statements, &ErrorNode{
		Span:    position.Span{Start: 19, End: 20},
		Message: "broken",
	})
	errs := ErrorNodes(tree)
	require.Len(t, errs, 1)
	assert.Equal(t, "broken", errs[0].Message)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "Program", KindProgram.String())
	assert.Equal(t, "ErrorNode", KindErrorNode.String())
	assert.Equal(t, "MissingExpr", KindMissingExpr.String())
}
