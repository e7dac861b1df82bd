package ast

// tryUnwarpLogicalExpression is the §4.7 short-circuit detector. A structured
// if and a boolean expression like `local x = a and b or c` compile to
// identical branching shapes; the only distinguishing signal is what the
// branching region's trailing block(s) do and whether anything along the way
// proves the region was deliberately built to produce a value.
//
// Two routes recognize that: the fast path (getSimpleLocalAssignmentSlot)
// fires when body is exactly the false/true terminator pair, the shape a
// bare comparison like `local a = x ~= b` reduces to. Otherwise the general
// scan (scanLogicalChain) walks the whole region, rejecting outright if any
// conditional block's failure edge already lands on end while testing a
// binary operator directly -- that's a structured if's own head, not an
// expression term -- and otherwise tracking the single destination slot
// every content-bearing block must agree on. A region that only agrees on a
// slot without its own terminator pair proving it is an expression is left
// as a statement when that slot is a source-level local: rewriting
// `if cond then localx = 1 end` into `localx = cond and 1` would change what
// the program does, so without a stronger signal the conservative read wins.
func tryUnwarpLogicalExpression(start *Block, body []*Block, end, topmostEnd *Block) bool {
	if len(body) == 0 {
		return false
	}
	if !terminatesInto(body[len(body)-1], end, topmostEnd) {
		return false
	}

	if slot, ok := getSimpleLocalAssignmentSlot(body); ok {
		unwarpLogicalExpression(start, body, end, slot)
		return true
	}

	slot, sureExpression, isLocal, ok := scanLogicalChain(start, body, end)
	if !ok {
		return false
	}
	if !sureExpression && isLocal {
		return false
	}

	unwarpLogicalExpression(start, body, end, slot)
	return true
}

func terminatesInto(block *Block, end, topmostEnd *Block) bool {
	switch w := block.Warp.(type) {
	case *FlowWarp:
		return w.Target == end || w.Target == topmostEnd
	case *JumpWarp:
		return w.Target == end || w.Target == topmostEnd
	default:
		return false
	}
}

// getSimpleLocalAssignmentSlot is the fast path for recognizing a logical
// expression's terminator pair directly: body holding nothing but the
// false/true pair getTerminators looks for, with no conditional chain ahead
// of it -- the shape a single comparison like `local a = x ~= b` reduces to.
func getSimpleLocalAssignmentSlot(body []*Block) (*Identifier, bool) {
	if len(body) != 2 {
		return nil, false
	}
	trueTerm, _, _ := getTerminators(body)
	if trueTerm == nil {
		return nil, false
	}
	assign := trueTerm.Contents[0].(*Assignment)
	dest, ok := assign.Destinations[0].(*Identifier)
	if !ok {
		return nil, false
	}
	return dest, true
}

// getTerminators recognizes body's trailing false/true terminator pair: the
// second-to-last block assigning Primitive{False} and the last assigning
// Primitive{True} to their shared destination, in that order -- the tail
// every fully-reduced logical expression ends with, regardless of how long
// the preceding conditional chain runs. Returns the pair and the body with
// the pair stripped off, or (nil, nil, body) unchanged if the shape doesn't
// match.
func getTerminators(body []*Block) (trueTerm, falseTerm *Block, rest []*Block) {
	if len(body) < 2 {
		return nil, nil, body
	}

	last := body[len(body)-1]
	if len(last.Contents) != 1 {
		return nil, nil, body
	}
	lastAssign, ok := last.Contents[0].(*Assignment)
	if !ok || len(lastAssign.Destinations) != 1 || len(lastAssign.Expressions) != 1 {
		return nil, nil, body
	}
	truePrim, ok := lastAssign.Expressions[0].(*Primitive)
	if !ok || truePrim.Type != PrimTrue {
		return nil, nil, body
	}

	prev := body[len(body)-2]
	if len(prev.Contents) != 1 {
		return nil, nil, body
	}
	prevAssign, ok := prev.Contents[0].(*Assignment)
	if !ok || len(prevAssign.Destinations) != 1 || len(prevAssign.Expressions) != 1 {
		return nil, nil, body
	}
	falsePrim, ok := prevAssign.Expressions[0].(*Primitive)
	if !ok || falsePrim.Type != PrimFalse {
		return nil, nil, body
	}

	lastDest, ok := lastAssign.Destinations[0].(*Identifier)
	if !ok {
		return nil, nil, body
	}
	prevDest, ok := prevAssign.Destinations[0].(*Identifier)
	if !ok || !sameSlot(lastDest, prevDest) {
		return nil, nil, body
	}

	return last, prev, body[:len(body)-2]
}

// scanLogicalChain walks [start]+body, the general (non-fast-path) route.
// It rejects the region outright the moment a conditional block's failure
// edge lands on end while testing a binary operator directly -- that shape
// is a structured if's own head, never an expression term, since an
// expression's own chain only ever exits early to its own true/false
// terminators rather than straight past the whole region. Every other
// content-bearing block must hold exactly one single-destination assignment
// and agree with every other on which slot it targets; sureExpression
// reports whether the region's own terminator pair was found -- the only
// signal strong enough to license rewriting a local destination into an
// expression.
func scanLogicalChain(start *Block, body []*Block, end *Block) (slot *Identifier, sureExpression, isLocal, ok bool) {
	extbody := make([]*Block, 0, len(body)+1)
	extbody = append(extbody, start)
	extbody = append(extbody, body...)

	have := false

	for _, block := range extbody {
		if cond, isCond := block.Warp.(*ConditionalWarp); isCond && cond.FalseTarget == end {
			if _, isBinop := cond.Condition.(*BinaryOperator); isBinop {
				return nil, false, false, false
			}
		}

		if block == start || len(block.Contents) == 0 {
			continue
		}
		if len(block.Contents) > 1 {
			return nil, false, false, false
		}
		assign, isAssign := block.Contents[0].(*Assignment)
		if !isAssign || len(assign.Destinations) != 1 {
			return nil, false, false, false
		}
		dest, isIdent := assign.Destinations[0].(*Identifier)
		if !isIdent {
			return nil, false, false, false
		}
		if _, isCond := block.Warp.(*ConditionalWarp); isCond {
			return nil, false, false, false
		}

		if !have {
			slot = dest
			isLocal = dest.Type == IdentLocal
			have = true
		} else if !sameSlot(dest, slot) {
			return nil, false, false, false
		}
	}

	if !have {
		return nil, false, false, false
	}

	if trueTerm, _, _ := getTerminators(body); trueTerm != nil {
		sureExpression = true
	}

	return slot, sureExpression, isLocal, true
}

// unwarpLogicalExpression assembles the region's single resulting Assignment
// on start. When body ends in a recognizable terminator pair, the pair is
// stripped and its blocks stand in for the chain's own true/false exits
// (what compileExpression expects); otherwise the whole chain compiles
// straight against end, the shape a destination that never got a real
// terminator pair reduces to.
func unwarpLogicalExpression(start *Block, body []*Block, end *Block, slot *Identifier) {
	trueTerm, falseTerm, chain := getTerminators(body)

	trueTarget, falseTarget := end, end
	if trueTerm != nil {
		trueTarget, falseTarget = trueTerm, falseTerm
	}

	blocks := make([]*Block, 0, len(chain)+1)
	blocks = append(blocks, start)
	blocks = append(blocks, chain...)

	expr := compileExpression(blocks, slot, trueTarget, falseTarget)

	start.Contents = append(start.Contents, &Assignment{
		Destinations: []Expression{slot},
		Expressions:  []Expression{expr},
	})
}
