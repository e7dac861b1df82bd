package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woojufon/ljd/ast"
)

// TestDecodeFunction_SimpleIfElse decodes a four-block if/else CFG from its
// wire JSON form and runs it through the full pass pipeline, the same shape
// cmd/unwarp's own unwarpOne exercises end to end.
func TestDecodeFunction_SimpleIfElse(t *testing.T) {
	raw := json.RawMessage(`{
		"name": "decideIt",
		"blocks": [
			{
				"warp": {
					"kind": "conditional",
					"condition": {
						"kind": "binop", "op": "lt",
						"left":  {"kind": "identifier", "type": "local", "name": "a"},
						"right": {"kind": "identifier", "type": "local", "name": "b"}
					},
					"true_target": 1,
					"false_target": 2
				}
			},
			{
				"contents": [
					{
						"kind": "assignment",
						"destinations": [{"kind": "identifier", "type": "local", "name": "x"}],
						"expressions": [{"kind": "constant", "value": 1}]
					}
				],
				"warp": {"kind": "jump", "target": 3}
			},
			{
				"contents": [
					{
						"kind": "assignment",
						"destinations": [{"kind": "identifier", "type": "local", "name": "x"}],
						"expressions": [{"kind": "constant", "value": 2}]
					}
				],
				"warp": {"kind": "flow", "target": 3}
			},
			{
				"warp": {"kind": "end"}
			}
		]
	}`)

	name, root, err := decodeFunction(raw)
	require.NoError(t, err)
	assert.Equal(t, "decideIt", name)

	require.NoError(t, ast.PrimaryPass(root))
	require.NoError(t, ast.FinalPass(root))

	require.Len(t, root.Contents, 1)
	ifStmt, ok := root.Contents[0].(*ast.If)
	require.True(t, ok, "expected a single If statement, got %T", root.Contents[0])

	cond, ok := ifStmt.Expression.(*ast.BinaryOperator)
	require.True(t, ok)
	assert.Equal(t, ast.OpLessThan, cond.Type)

	require.Len(t, ifStmt.Then.Contents, 1)
	require.Len(t, ifStmt.Else.Contents, 1)
}

func TestDecodeFunction_UnknownWarpKind(t *testing.T) {
	raw := json.RawMessage(`{
		"name": "bad",
		"blocks": [
			{"warp": {"kind": "goto"}}
		]
	}`)

	_, _, err := decodeFunction(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown warp kind")
}

func TestDecodeFunction_OutOfRangeBlockReference(t *testing.T) {
	raw := json.RawMessage(`{
		"name": "bad",
		"blocks": [
			{"warp": {"kind": "jump", "target": 5}}
		]
	}`)

	_, _, err := decodeFunction(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
