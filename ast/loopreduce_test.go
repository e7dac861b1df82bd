package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNumericFor builds the raw blocks for:
//
//	for i = 1, 10, 1 do
//	  x = i
//	end
func TestNumericFor(t *testing.T) {
	header := &Block{Index: 0}
	body := &Block{Index: 1}
	after := &Block{Index: 2}

	i := localIdent("i")
	x := localIdent("x")

	header.Warp = &NumericLoopWarp{
		Index:    i,
		Controls: []Expression{constInt(1), constInt(10), constInt(1)},
		Body:     body,
		WayOut:   after,
	}
	body.Contents = []Statement{assign(x, i)}
	body.Warp = &JumpWarp{Target: header}
	after.Warp = &EndWarp{}

	root := &StatementsList{Contents: []Statement{header, body, after}}

	require.NoError(t, PrimaryPass(root))
	require.NoError(t, FinalPass(root))

	require.Len(t, root.Contents, 1)
	loop, ok := root.Contents[0].(*NumericFor)
	require.True(t, ok, "expected a NumericFor, got %T", root.Contents[0])
	assert.Same(t, i, loop.Variable)
	require.Len(t, loop.Expressions, 3)
	assert.Equal(t, 1, loop.Expressions[0].(*Constant).Value)
	assert.Equal(t, 10, loop.Expressions[1].(*Constant).Value)

	require.Len(t, loop.Statements.Contents, 1)
	stmt, ok := loop.Statements.Contents[0].(*Assignment)
	require.True(t, ok)
	assert.Same(t, i, stmt.Expressions[0])
}

// TestWhileWithBreak builds the raw blocks for:
//
//	while true do
//	  if x then break end
//	  y = 1
//	end
func TestWhileWithBreak(t *testing.T) {
	header := &Block{Index: 0}
	ifHead := &Block{Index: 1}
	breakBlock := &Block{Index: 2}
	tail := &Block{Index: 3}
	after := &Block{Index: 4}

	header.Warp = &FlowWarp{Target: ifHead}

	condX := &BinaryOperator{Type: OpEqual, Left: localIdent("x"), Right: constInt(0)}
	ifHead.Warp = &ConditionalWarp{Condition: condX, TrueTarget: breakBlock, FalseTarget: tail}

	breakBlock.Warp = &JumpWarp{Target: after}

	y := localIdent("y")
	tail.Contents = []Statement{assign(y, constInt(1))}
	tail.Warp = &JumpWarp{Target: header}

	after.Warp = &EndWarp{}

	root := &StatementsList{Contents: []Statement{header, ifHead, breakBlock, tail, after}}

	require.NoError(t, PrimaryPass(root))
	require.NoError(t, FinalPass(root))

	require.Len(t, root.Contents, 1)
	loop, ok := root.Contents[0].(*While)
	require.True(t, ok, "expected a While, got %T", root.Contents[0])
	prim, ok := loop.Expression.(*Primitive)
	require.True(t, ok)
	assert.Equal(t, PrimTrue, prim.Type)

	require.Len(t, loop.Statements.Contents, 2)

	ifStmt, ok := loop.Statements.Contents[0].(*If)
	require.True(t, ok, "expected an If, got %T", loop.Statements.Contents[0])
	assert.Same(t, condX, ifStmt.Expression)
	require.Len(t, ifStmt.Then.Contents, 1)
	_, isBreak := ifStmt.Then.Contents[0].(*Break)
	assert.True(t, isBreak)
	assert.Nil(t, ifStmt.Else)

	yAssign, ok := loop.Statements.Contents[1].(*Assignment)
	require.True(t, ok)
	assert.Equal(t, 1, yAssign.Expressions[0].(*Constant).Value)
}

// TestRepeatUntilWithBreak builds the raw blocks for:
//
//	repeat
//	  if skip then break end
//	  y = 1
//	until done
func TestRepeatUntilWithBreak(t *testing.T) {
	// loopHeader is the loop's own back-edge target: a trivial, content-free
	// entry block. The conditional "if skip" test is a separate block that
	// just happens to come right after it -- the back-edge must land on a
	// bare flow-through block, not on one that already carries its own
	// branch, since the reduction clones the header and overwrites the
	// clone's warp with a plain flow into the body's next block.
	loopHeader := &Block{Index: 0}
	ifHead := &Block{Index: 1}
	breakBlock := &Block{Index: 2}
	tail := &Block{Index: 3}
	condBlock := &Block{Index: 4}
	after := &Block{Index: 5}

	loopHeader.Warp = &FlowWarp{Target: ifHead}

	condSkip := &BinaryOperator{Type: OpEqual, Left: localIdent("skip"), Right: constInt(0)}
	ifHead.Warp = &ConditionalWarp{Condition: condSkip, TrueTarget: breakBlock, FalseTarget: tail}

	breakBlock.Warp = &JumpWarp{Target: after}

	y := localIdent("y")
	tail.Contents = []Statement{assign(y, constInt(1))}
	tail.Warp = &FlowWarp{Target: condBlock}

	condDone := &BinaryOperator{Type: OpEqual, Left: localIdent("done"), Right: constInt(0)}
	condBlock.Warp = &ConditionalWarp{Condition: condDone, TrueTarget: after, FalseTarget: loopHeader}

	after.Warp = &EndWarp{}

	root := &StatementsList{Contents: []Statement{loopHeader, ifHead, breakBlock, tail, condBlock, after}}

	require.NoError(t, PrimaryPass(root))
	require.NoError(t, FinalPass(root))

	require.Len(t, root.Contents, 1)
	loop, ok := root.Contents[0].(*RepeatUntil)
	require.True(t, ok, "expected a RepeatUntil, got %T", root.Contents[0])
	assert.Same(t, condDone, loop.Expression)

	require.Len(t, loop.Statements.Contents, 2)
	ifStmt, ok := loop.Statements.Contents[0].(*If)
	require.True(t, ok, "expected an If, got %T", loop.Statements.Contents[0])
	assert.Same(t, condSkip, ifStmt.Expression)
	require.Len(t, ifStmt.Then.Contents, 1)
	_, isBreak := ifStmt.Then.Contents[0].(*Break)
	assert.True(t, isBreak)

	yAssign, ok := loop.Statements.Contents[1].(*Assignment)
	require.True(t, ok)
	assert.Equal(t, 1, yAssign.Expressions[0].(*Constant).Value)
}
