package main

import (
	"encoding/json"
	"fmt"

	"github.com/woojufon/ljd/ast"
)

// wireFunction is the decode shape for one function's control-flow graph: a
// flat array of blocks, warps referencing each other purely by index within
// that same array. Indices are resolved into *ast.Block pointers once, right
// after every block has been allocated.
type wireFunction struct {
	Name   string      `json:"name"`
	Blocks []wireBlock `json:"blocks"`
}

type wireBlock struct {
	FirstAddress int             `json:"first_address"`
	LastAddress  int             `json:"last_address"`
	WarpInsCount int             `json:"warp_ins_count"`
	Contents     []wireStatement `json:"contents"`
	Warp         wireWarp        `json:"warp"`
}

type wireWarp struct {
	Kind string `json:"kind"`

	Target *int `json:"target,omitempty"`

	Condition   *wireExpression `json:"condition,omitempty"`
	TrueTarget  *int            `json:"true_target,omitempty"`
	FalseTarget *int            `json:"false_target,omitempty"`

	Variables []wireExpression `json:"variables,omitempty"`
	Index     *wireExpression  `json:"index,omitempty"`
	Controls  []wireExpression `json:"controls,omitempty"`
	Body      *int             `json:"body,omitempty"`
	WayOut    *int             `json:"way_out,omitempty"`
}

type wireStatement struct {
	Kind         string           `json:"kind"`
	Destinations []wireExpression `json:"destinations,omitempty"`
	Expressions  []wireExpression `json:"expressions,omitempty"`
}

type wireExpression struct {
	Kind string `json:"kind"`

	// identifier
	IdentType string `json:"type,omitempty"`
	Slot      int    `json:"slot,omitempty"`
	Name      string `json:"name,omitempty"`

	// binop / unop
	Op    string           `json:"op,omitempty"`
	Left  *wireExpression  `json:"left,omitempty"`
	Right *wireExpression  `json:"right,omitempty"`
	Operand *wireExpression `json:"operand,omitempty"`

	// primitive / constant
	Value interface{} `json:"value,omitempty"`
}

// decodeFunction parses a single function bundle into a *ast.StatementsList
// ready for ast.PrimaryPass, plus the function's name.
func decodeFunction(raw json.RawMessage) (name string, root *ast.StatementsList, err error) {
	var wf wireFunction
	if err := json.Unmarshal(raw, &wf); err != nil {
		return "", nil, fmt.Errorf("decode function: %w", err)
	}

	blocks := make([]*ast.Block, len(wf.Blocks))
	for i, wb := range wf.Blocks {
		blocks[i] = &ast.Block{
			Index:        i,
			FirstAddress: wb.FirstAddress,
			LastAddress:  wb.LastAddress,
			WarpInsCount: wb.WarpInsCount,
		}
	}

	resolve := func(idx *int) (*ast.Block, error) {
		if idx == nil {
			return nil, fmt.Errorf("missing block reference")
		}
		if *idx < 0 || *idx >= len(blocks) {
			return nil, fmt.Errorf("block index %d out of range", *idx)
		}
		return blocks[*idx], nil
	}

	for i, wb := range wf.Blocks {
		block := blocks[i]

		contents := make([]ast.Statement, len(wb.Contents))
		for j, ws := range wb.Contents {
			stmt, err := decodeStatement(ws)
			if err != nil {
				return "", nil, fmt.Errorf("function %q block %d statement %d: %w", wf.Name, i, j, err)
			}
			contents[j] = stmt
		}
		block.Contents = contents

		warp, err := decodeWarp(wb.Warp, resolve)
		if err != nil {
			return "", nil, fmt.Errorf("function %q block %d warp: %w", wf.Name, i, err)
		}
		block.Warp = warp
	}

	contents := make([]ast.Statement, len(blocks))
	for i, b := range blocks {
		contents[i] = b
	}

	return wf.Name, &ast.StatementsList{Contents: contents}, nil
}

func decodeWarp(w wireWarp, resolve func(*int) (*ast.Block, error)) (ast.Warp, error) {
	switch w.Kind {
	case "flow":
		target, err := resolve(w.Target)
		if err != nil {
			return nil, err
		}
		return &ast.FlowWarp{Target: target}, nil

	case "jump":
		target, err := resolve(w.Target)
		if err != nil {
			return nil, err
		}
		return &ast.JumpWarp{Target: target}, nil

	case "conditional":
		if w.Condition == nil {
			return nil, fmt.Errorf("conditional warp missing condition")
		}
		cond, err := decodeExpression(*w.Condition)
		if err != nil {
			return nil, err
		}
		trueTarget, err := resolve(w.TrueTarget)
		if err != nil {
			return nil, err
		}
		falseTarget, err := resolve(w.FalseTarget)
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalWarp{Condition: cond, TrueTarget: trueTarget, FalseTarget: falseTarget}, nil

	case "iterator_loop":
		variables, err := decodeExpressions(w.Variables)
		if err != nil {
			return nil, err
		}
		controls, err := decodeExpressions(w.Controls)
		if err != nil {
			return nil, err
		}
		body, err := resolve(w.Body)
		if err != nil {
			return nil, err
		}
		wayOut, err := resolve(w.WayOut)
		if err != nil {
			return nil, err
		}
		return &ast.IteratorLoopWarp{Variables: variables, Controls: controls, Body: body, WayOut: wayOut}, nil

	case "numeric_loop":
		if w.Index == nil {
			return nil, fmt.Errorf("numeric loop warp missing index")
		}
		index, err := decodeExpression(*w.Index)
		if err != nil {
			return nil, err
		}
		controls, err := decodeExpressions(w.Controls)
		if err != nil {
			return nil, err
		}
		body, err := resolve(w.Body)
		if err != nil {
			return nil, err
		}
		wayOut, err := resolve(w.WayOut)
		if err != nil {
			return nil, err
		}
		return &ast.NumericLoopWarp{Index: index, Controls: controls, Body: body, WayOut: wayOut}, nil

	case "end":
		return &ast.EndWarp{}, nil

	default:
		return nil, fmt.Errorf("unknown warp kind %q", w.Kind)
	}
}

func decodeStatement(ws wireStatement) (ast.Statement, error) {
	switch ws.Kind {
	case "assignment":
		destinations, err := decodeExpressions(ws.Destinations)
		if err != nil {
			return nil, err
		}
		expressions, err := decodeExpressions(ws.Expressions)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Destinations: destinations, Expressions: expressions}, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", ws.Kind)
	}
}

func decodeExpressions(raws []wireExpression) ([]ast.Expression, error) {
	result := make([]ast.Expression, len(raws))
	for i, r := range raws {
		expr, err := decodeExpression(r)
		if err != nil {
			return nil, err
		}
		result[i] = expr
	}
	return result, nil
}

var identifierTypes = map[string]ast.IdentifierType{
	"local":     ast.IdentLocal,
	"slot":      ast.IdentSlot,
	"upvalue":   ast.IdentUpvalue,
	"global":    ast.IdentGlobal,
	"tableitem": ast.IdentTableItem,
}

var comparisonOps = map[string]ast.BinOpType{
	"eq": ast.OpEqual,
	"ne": ast.OpNotEqual,
	"lt": ast.OpLessThan,
	"le": ast.OpLessOrEqual,
	"gt": ast.OpGreaterThan,
	"ge": ast.OpGreaterOrEqual,
	"and": ast.OpLogicalAnd,
	"or":  ast.OpLogicalOr,
}

var unaryOps = map[string]ast.UnaryOpType{
	"not":   ast.OpNot,
	"minus": ast.OpUnaryMinus,
	"len":   ast.OpLength,
}

var primitives = map[string]ast.PrimitiveType{
	"true":  ast.PrimTrue,
	"false": ast.PrimFalse,
	"nil":   ast.PrimNil,
}

func decodeExpression(w wireExpression) (ast.Expression, error) {
	switch w.Kind {
	case "identifier":
		typ, ok := identifierTypes[w.IdentType]
		if !ok {
			return nil, fmt.Errorf("unknown identifier type %q", w.IdentType)
		}
		return &ast.Identifier{Type: typ, Slot: w.Slot, Name: w.Name}, nil

	case "binop":
		op, ok := comparisonOps[w.Op]
		if !ok {
			return nil, fmt.Errorf("unknown binary operator %q", w.Op)
		}
		if w.Left == nil || w.Right == nil {
			return nil, fmt.Errorf("binop missing operand")
		}
		left, err := decodeExpression(*w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(*w.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOperator{Type: op, Left: left, Right: right}, nil

	case "unop":
		op, ok := unaryOps[w.Op]
		if !ok {
			return nil, fmt.Errorf("unknown unary operator %q", w.Op)
		}
		if w.Operand == nil {
			return nil, fmt.Errorf("unop missing operand")
		}
		operand, err := decodeExpression(*w.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOperator{Type: op, Operand: operand}, nil

	case "primitive":
		name, _ := w.Value.(string)
		typ, ok := primitives[name]
		if !ok {
			return nil, fmt.Errorf("unknown primitive %q", w.Value)
		}
		return &ast.Primitive{Type: typ}, nil

	case "constant":
		return &ast.Constant{Value: w.Value}, nil

	default:
		return nil, fmt.Errorf("unknown expression kind %q", w.Kind)
	}
}
