package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompileExpression_AndBindsTighterThanOr builds the raw block chain for
// "a and b or c" and checks it compiles to (a and b) or c -- and is not left
// as the structurally different a and (b or c).
func TestCompileExpression_AndBindsTighterThanOr(t *testing.T) {
	trueDest := &Block{Index: 10}
	falseDest := &Block{Index: 11}

	condA := &BinaryOperator{Type: OpEqual, Left: localIdent("a"), Right: constInt(0)}
	condB := &BinaryOperator{Type: OpEqual, Left: localIdent("b"), Right: constInt(0)}
	condC := &BinaryOperator{Type: OpEqual, Left: localIdent("c"), Right: constInt(0)}

	blockA := &Block{Index: 0}
	blockB := &Block{Index: 1}
	blockC := &Block{Index: 2}

	// a and b: failing either skips straight to evaluating c.
	blockA.Warp = &ConditionalWarp{Condition: condA, TrueTarget: blockB, FalseTarget: blockC}
	blockB.Warp = &ConditionalWarp{Condition: condB, TrueTarget: trueDest, FalseTarget: blockC}
	// c stands alone against the expression's own true/false destinations.
	blockC.Warp = &ConditionalWarp{Condition: condC, TrueTarget: trueDest, FalseTarget: falseDest}

	expr := compileExpression([]*Block{blockA, blockB, blockC}, nil, trueDest, falseDest)

	or, ok := expr.(*BinaryOperator)
	require.True(t, ok)
	require.Equal(t, OpLogicalOr, or.Type)

	and, ok := or.Left.(*BinaryOperator)
	require.True(t, ok, "expected the and-chain on the left, got %T", or.Left)
	assert.Equal(t, OpLogicalAnd, and.Type)
	assert.Same(t, condA, and.Left)
	assert.Same(t, condB, and.Right)

	assert.Same(t, condC, or.Right)
}

// TestCompileExpression_OrBindsLooserThanAnd builds "a or b and c" and checks
// it compiles to a or (b and c), with the lone "a" or-term recovered via
// invert() from its negated storage.
func TestCompileExpression_OrBindsLooserThanAnd(t *testing.T) {
	trueDest := &Block{Index: 10}
	falseDest := &Block{Index: 11}

	negatedA := &BinaryOperator{Type: OpNotEqual, Left: localIdent("a"), Right: constInt(0)}
	condB := &BinaryOperator{Type: OpEqual, Left: localIdent("b"), Right: constInt(0)}
	condC := &BinaryOperator{Type: OpEqual, Left: localIdent("c"), Right: constInt(0)}

	blockA := &Block{Index: 0}
	blockB := &Block{Index: 1}
	blockC := &Block{Index: 2}

	// a's own test is stored negated (TrueTarget must stay the fallthrough),
	// so that a being truthy short-circuits straight to trueDest.
	blockA.Warp = &ConditionalWarp{Condition: negatedA, TrueTarget: blockB, FalseTarget: trueDest}
	blockB.Warp = &ConditionalWarp{Condition: condB, TrueTarget: blockC, FalseTarget: falseDest}
	blockC.Warp = &ConditionalWarp{Condition: condC, TrueTarget: trueDest, FalseTarget: falseDest}

	expr := compileExpression([]*Block{blockA, blockB, blockC}, nil, trueDest, falseDest)

	or, ok := expr.(*BinaryOperator)
	require.True(t, ok)
	require.Equal(t, OpLogicalOr, or.Type)
	assert.Equal(t, invert(negatedA), or.Left)

	and, ok := or.Right.(*BinaryOperator)
	require.True(t, ok, "expected the and-chain on the right, got %T", or.Right)
	assert.Equal(t, OpLogicalAnd, and.Type)
	assert.Same(t, condB, and.Left)
	assert.Same(t, condC, and.Right)
}

// TestGetOperator_UnconditionalTerminal covers §4.8's truthiness-based
// fallback: a block beginning a run with no condition of its own (a
// terminator's tail, or any other unconditional value producer) is
// classified by whether the value it carries is always truthy or always
// falsy, not by a branch.
func TestGetOperator_UnconditionalTerminal(t *testing.T) {
	trueTarget := &Block{Index: 10}
	falseTarget := &Block{Index: 11}

	for _, tc := range []struct {
		name string
		src  Expression
		want BinOpType
	}{
		{"truthy constant", constInt(5), OpLogicalOr},
		{"falsy constant", constInt(0), OpLogicalAnd},
		{"binary operator is always truthy", &BinaryOperator{Type: OpEqual, Left: localIdent("x"), Right: constInt(0)}, OpLogicalOr},
		{"true primitive", &Primitive{Type: PrimTrue}, OpLogicalOr},
		{"false primitive", &Primitive{Type: PrimFalse}, OpLogicalAnd},
	} {
		t.Run(tc.name, func(t *testing.T) {
			block := &Block{
				Contents: []Statement{assign(localIdent("a"), tc.src)},
				Warp:     &FlowWarp{Target: falseTarget},
			}
			assert.Equal(t, tc.want, getOperator(block, nil, trueTarget))
		})
	}
}

// TestGetOperator_UnconditionalTerminalNoAssignment covers the final
// fallback when a terminal block's own assignment has already been consumed
// (or never existed): the role comes from comparing its flow target against
// trueTarget directly.
func TestGetOperator_UnconditionalTerminalNoAssignment(t *testing.T) {
	trueTarget := &Block{Index: 10}
	falseTarget := &Block{Index: 11}

	toTrue := &Block{Warp: &FlowWarp{Target: trueTarget}}
	assert.Equal(t, OpLogicalOr, getOperator(toTrue, nil, trueTarget))

	toFalse := &Block{Warp: &FlowWarp{Target: falseTarget}}
	assert.Equal(t, OpLogicalAnd, getOperator(toFalse, nil, trueTarget))
}

// TestCompileExpression_UnconditionalLeadingTerm builds a two-block chain
// whose first block is a bare value producer (no condition) rather than a
// comparison: "5 or (x == 0)". compileExpression must classify the leading
// block as an "or" term from its truthy constant alone and fold it together
// with the comparison that follows.
func TestCompileExpression_UnconditionalLeadingTerm(t *testing.T) {
	trueDest := &Block{Index: 10}
	falseDest := &Block{Index: 11}

	five := constInt(5)
	condB := &BinaryOperator{Type: OpEqual, Left: localIdent("x"), Right: constInt(0)}

	slot := localIdent("a")

	blockA := &Block{Index: 0}
	blockB := &Block{Index: 1}

	blockA.Contents = []Statement{assign(slot, five)}
	blockA.Warp = &FlowWarp{Target: falseDest}
	blockB.Warp = &ConditionalWarp{Condition: condB, TrueTarget: trueDest, FalseTarget: falseDest}

	expr := compileExpression([]*Block{blockA, blockB}, slot, trueDest, falseDest)

	or, ok := expr.(*BinaryOperator)
	require.True(t, ok, "expected an or-expression, got %T", expr)
	assert.Equal(t, OpLogicalOr, or.Type)
	assert.Same(t, five, or.Left)
	assert.Same(t, condB, or.Right)
}

func TestInvert_ComparisonsSwapViaNegationTable(t *testing.T) {
	for _, tc := range []struct {
		name string
		from BinOpType
		to   BinOpType
	}{
		{"eq/ne", OpEqual, OpNotEqual},
		{"lt/ge", OpLessThan, OpGreaterOrEqual},
		{"le/gt", OpLessOrEqual, OpGreaterThan},
	} {
		t.Run(tc.name, func(t *testing.T) {
			left, right := localIdent("x"), constInt(0)
			original := &BinaryOperator{Type: tc.from, Left: left, Right: right}

			inverted, ok := invert(original).(*BinaryOperator)
			require.True(t, ok)
			assert.Equal(t, tc.to, inverted.Type)
			assert.Same(t, left, inverted.Left)
			assert.Same(t, right, inverted.Right)

			back, ok := invert(inverted).(*BinaryOperator)
			require.True(t, ok)
			assert.Equal(t, tc.from, back.Type)
		})
	}
}

// TestInvert_DoubleNegationCancels covers "not not x": inverting an already
// inverted (UnaryOperator{OpNot, ...}) expression unwraps it instead of
// nesting a second "not".
func TestInvert_DoubleNegationCancels(t *testing.T) {
	x := localIdent("x")
	notX := &UnaryOperator{Type: OpNot, Operand: x}

	assert.Same(t, x, invert(notX))
	assert.True(t, isInverted(notX))
	assert.False(t, isInverted(x))
}

// TestInvert_NonComparisonWrapsInNot covers "not (a and b)": an expression
// with no entry in the negation table gets wrapped in a plain OpNot rather
// than silently miscompiled.
func TestInvert_NonComparisonWrapsInNot(t *testing.T) {
	conjunction := &BinaryOperator{Type: OpLogicalAnd, Left: localIdent("a"), Right: localIdent("b")}

	inverted, ok := invert(conjunction).(*UnaryOperator)
	require.True(t, ok)
	assert.Equal(t, OpNot, inverted.Type)
	assert.Same(t, conjunction, inverted.Operand)
}
