package ast

// unwarpLoops finds and reduces every loop of the given kind (repeatUntil
// selects which of §4.3's two sweeps to run) within blocks, returning the
// rewritten block list.
func unwarpLoops(blocks []*Block, repeatUntil bool) []*Block {
	loops := findAllLoops(blocks, repeatUntil)

	// Nested-break pre-pass: two discovered loops sharing a header index
	// means the inner one is a spurious artifact of a break jumping to
	// the start of the outer loop. Retarget its synthesizing jump to the
	// block preceding the outer loop's end, then discard it.
	lastStartIndex := -1
	var lastEnd *Block
	var fixed []loopBounds

	for _, lp := range loops {
		if lp.start.Index == lastStartIndex {
			if lastEnd == nil {
				panic(invariantErrorf("unwarpLoops: nested-break fixup with no outer loop"))
			}
			index := indexOfBlock(blocks, lp.end)
			warp, ok := blocks[index-1].Warp.(*JumpWarp)
			if !ok || warp.Target != lp.start {
				panic(invariantErrorf("unwarpLoops: nested-break fixup found unexpected warp shape"))
			}
			lastEndIndex := indexOfBlock(blocks, lastEnd)
			warp.Target = blocks[lastEndIndex-1]
		} else {
			fixed = append(fixed, lp)
			lastStartIndex = lp.start.Index
			lastEnd = lp.end
		}
	}

	for _, lp := range fixed {
		startIndex := indexOfBlock(blocks, lp.start)
		endIndex := indexOfBlock(blocks, lp.end)

		var body []*Block
		if repeatUntil {
			body = append([]*Block{}, blocks[startIndex:endIndex]...)
		} else {
			body = append([]*Block{}, blocks[startIndex+1:endIndex]...)
		}

		loopNode, newBody := unwarpLoop(lp.start, lp.end, body)
		body = newBody

		wrapper := &Block{
			Index:        lp.start.Index + 1,
			FirstAddress: body[0].FirstAddress,
			LastAddress:  body[len(body)-1].LastAddress,
			Contents:     []Statement{loopNode},
			Warp:         &FlowWarp{Target: lp.end},
		}

		replaceTargets(blocks, body[0], wrapper)

		body[len(body)-1].Warp = &EndWarp{}
		unwarpBreaks(lp.start, body, lp.end)

		newBlocks := make([]*Block, 0, startIndex+2+len(blocks)-endIndex)
		newBlocks = append(newBlocks, blocks[:startIndex+1]...)
		newBlocks = append(newBlocks, wrapper)
		newBlocks = append(newBlocks, blocks[endIndex:]...)
		blocks = newBlocks
	}

	return blocks
}

// unwarpLoop classifies and reduces a single discovered loop. It returns the
// new loop statement node and the (possibly rewritten, e.g. for
// repeat-until's header clone) body block list backing it.
func unwarpLoop(start, end *Block, body []*Block) (Statement, []*Block) {
	var last *Block
	if len(body) > 0 {
		last = body[len(body)-1]
	} else {
		last = start
	}

	switch w := start.Warp.(type) {
	case *IteratorLoopWarp:
		back, ok := last.Warp.(*JumpWarp)
		if !ok || back.Target != start {
			panic(invariantErrorf("iterator for: tail does not back-jump to header"))
		}
		loop := &IteratorFor{
			Identifiers: w.Variables,
			Expressions: w.Controls,
			Statements:  &StatementsList{Contents: toStatements(body)},
		}
		setFlowTo(start, body[0])
		return loop, body

	case *NumericLoopWarp:
		back, ok := last.Warp.(*JumpWarp)
		if !ok || back.Target != start {
			panic(invariantErrorf("numeric for: tail does not back-jump to header"))
		}
		loop := &NumericFor{
			Variable:    w.Index,
			Expressions: w.Controls,
			Statements:  &StatementsList{Contents: toStatements(body)},
		}
		setFlowTo(start, body[0])
		return loop, body
	}

	if back, ok := last.Warp.(*JumpWarp); ok {
		if back.Target != start {
			panic(invariantErrorf("while: tail does not back-jump to header"))
		}

		var loop *While
		if isFlow(start.Warp) {
			loop = &While{Expression: &Primitive{Type: PrimTrue}}
		} else {
			i := 0
			for ; i < len(body); i++ {
				if len(body[i].Contents) != 0 {
					panic(invariantErrorf("while: condition block carries contents before its Flow terminator"))
				}
				if isFlow(body[i].Warp) {
					break
				}
			}
			if i >= len(body) {
				panic(invariantErrorf("while: no Flow block terminates the condition"))
			}

			expression := append([]*Block{start}, body[:i]...)
			body = body[i:]

			// A break inside the condition may target the outer
			// loop's start instead of this loop's end.
			fixExpression(expression, start, end)

			true_, false_ := body[0], end
			expr := compileExpression(expression, nil, true_, false_)

			loop = &While{Expression: expr}
		}

		fixNestedIfs(&body, start)
		loop.Statements = &StatementsList{Contents: toStatements(body)}
		setFlowTo(start, body[0])
		return loop, body
	}

	cond, ok := last.Warp.(*ConditionalWarp)
	if !ok || cond.FalseTarget != start {
		panic(invariantErrorf("repeat-until: tail is not a conditional back-edge to the header"))
	}

	i := len(body) - 1
	for i >= 0 {
		block := body[i]
		if isFlow(block.Warp) {
			i++
			break
		}
		if len(block.Contents) != 0 {
			break
		}
		i--
	}
	if i < 0 {
		panic(invariantErrorf("repeat-until: no trailing expression found"))
	}

	expression := body[i:]
	body = body[:i+1]
	if len(expression) == 0 {
		panic(invariantErrorf("repeat-until: empty trailing expression"))
	}

	if first := expression[0]; isJump(first.Warp) {
		expression = expression[1:]
		body[len(body)-1].Contents = append(body[len(body)-1].Contents, &Break{})
	}

	false_ := body[0]
	trailingCond, ok := expression[len(expression)-1].Warp.(*ConditionalWarp)
	if !ok {
		panic(invariantErrorf("repeat-until: trailing expression does not end in a conditional"))
	}
	true_ := trailingCond.TrueTarget

	loop := &RepeatUntil{Expression: compileExpression(expression, nil, true_, false_)}

	// The header is a legitimate jump target (continue/back-edge): clone
	// it so the body can use the clone while outside references keep
	// seeing the original header flow into the clone.
	startCopy := &Block{
		Index:        start.Index,
		FirstAddress: start.FirstAddress,
		LastAddress:  start.LastAddress,
		Contents:     start.Contents,
		Warp:         start.Warp,
		WarpInsCount: start.WarpInsCount,
	}
	start.Contents = nil

	if len(body) > 1 {
		setFlowTo(startCopy, body[1])
	} else {
		startCopy.Warp = &EndWarp{}
	}
	setFlowTo(start, startCopy)

	body[0] = startCopy
	loop.Statements = &StatementsList{Contents: toStatements(body)}
	return loop, body
}

// fixExpression retargets any leading, content-free block of a while
// condition whose warp points further back than start: that is a stale
// break aimed at an enclosing loop's header, which must instead exit this
// loop (to end) since this loop's own reduction has not happened yet when
// the break was generated.
func fixExpression(blocks []*Block, start, end *Block) {
	for _, block := range blocks {
		if len(block.Contents) != 0 {
			break
		}
		if target := getTarget(block.Warp); target.Index < start.Index {
			setTarget(block.Warp, end)
		}
	}
}

// fixNestedIfs appends a fresh terminal block after body so that no
// remaining body block still targets start directly -- a conditional warp
// may not have equal true and false targets, so anything pointing back at
// the header gets redirected to this new tail instead.
func fixNestedIfs(body *[]*Block, start *Block) {
	blocks := *body

	last := createNextBlock(blocks[len(blocks)-1])
	if cond, ok := blocks[len(blocks)-1].Warp.(*ConditionalWarp); ok {
		cond.FalseTarget = last
	} else {
		setFlowTo(blocks[len(blocks)-1], last)
	}

	blocks = append(blocks, last)
	last.Warp = &EndWarp{}

	for _, block := range blocks[:len(blocks)-1] {
		if getTarget(block.Warp) == start {
			setTarget(block.Warp, last)
		}
	}

	*body = blocks
}

func toStatements(blocks []*Block) []Statement {
	stmts := make([]Statement, len(blocks))
	for i, b := range blocks {
		stmts[i] = b
	}
	return stmts
}
