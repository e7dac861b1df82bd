package ast

// unwarpIfs is the §4.6/§4.9 if extractor and reducer. It walks blocks from
// the front, and for each conditional (or otherwise non-Flow) head finds the
// branching end, then either folds the intervening region into a logical
// expression (§4.7) or reduces it into a structured If (§4.9), recursing
// into each half. topmostEnd is the end of the if whose branch blocks is
// (nil at the top level): each reduced if passes its own end down as
// topmostEnd when recursing into its halves, so a nested branch that jumps
// straight to that end (e.g. `if … then return else … end`) is still
// recognized as reaching "the end" rather than being treated as an
// unsupported goto.
func unwarpIfs(blocks []*Block, topmostEnd *Block) []*Block {
	var boundaries [][2]int

	startIndex := 0
	for startIndex < len(blocks)-1 {
		start := blocks[startIndex]

		if isFlow(start.Warp) {
			startIndex++
			continue
		}

		body, end, endIndex, ok := extractIfBody(startIndex, blocks, topmostEnd)
		if !ok {
			panic(unsupportedGotof("if extraction: branching end of block at source %d-%d is unreachable", start.FirstAddress, start.LastAddress))
		}

		if !tryUnwarpLogicalExpression(start, body, end, end) {
			unwarpIfStatement(start, body, end, end)
		}

		boundaries = append(boundaries, [2]int{startIndex, endIndex - 1})

		start.Warp = &FlowWarp{Target: end}
		startIndex = endIndex
	}

	return removeProcessedBlocks(blocks, boundaries)
}

// extractIfBody finds the branching end of the region starting at
// blocks[startIndex] and slices out the body between them.
func extractIfBody(startIndex int, blocks []*Block, topmostEnd *Block) (body []*Block, end *Block, endIndex int, ok bool) {
	end = findBranchingEnd(blocks[startIndex:])

	idx, found := indexOfBlockSafe(blocks, end)
	if !found {
		if end != topmostEnd {
			return nil, nil, 0, false
		}
		endIndex = len(blocks)
	} else {
		endIndex = idx
	}

	body = blocks[startIndex+1 : endIndex]
	return body, end, endIndex, true
}

// findBranchingEnd locates the earliest block reachable from blocks[0] (the
// branching head) such that some in-region block falls through into it, or
// failing that, the block with the maximum target index among the region's
// warps.
func findBranchingEnd(blocks []*Block) *Block {
	end := blocks[0]

	for _, block := range blocks {
		target := getTarget(block.Warp)

		if isFlow(block.Warp) && target == end {
			return end
		}
		if target.Index > end.Index {
			end = target
		}
	}

	return end
}

// unwarpIfStatement reduces a non-logical-expression branching region into a
// structured If, splitting body into then/else halves at the first block
// that jumps straight to the overall end, and recursing into each half.
func unwarpIfStatement(start *Block, body []*Block, end, topmostEnd *Block) {
	expression, body, falseStart := extractIfExpression(start, body, end, topmostEnd)

	node := &If{Expression: expression}

	if falseStart != end && falseStart != topmostEnd {
		elseStartIndex := indexOfBlock(body, falseStart)
		thenBody := body[:elseStartIndex]
		elseBody := body[elseStartIndex:]

		// The then-branch needs an explicit jump to skip over the
		// else-branch; the else-branch, immediately preceding the join
		// point in source order, may just fall through to it instead.
		if !terminatesInto(thenBody[len(thenBody)-1], end, topmostEnd) {
			panic(invariantErrorf("if statement: then-branch does not exit to the if's end"))
		}
		if !terminatesInto(elseBody[len(elseBody)-1], end, topmostEnd) {
			panic(invariantErrorf("if statement: else-branch does not exit to the if's end"))
		}

		thenBlocks := unwarpIfs(thenBody, topmostEnd)
		node.Then = &StatementsList{Contents: toStatements(thenBlocks)}

		elseBlocks := unwarpIfs(elseBody, topmostEnd)
		node.Else = &StatementsList{Contents: toStatements(elseBlocks)}

		thenBlocks[len(thenBlocks)-1].Warp = &EndWarp{}
		elseBlocks[len(elseBlocks)-1].Warp = &EndWarp{}
	} else {
		thenBlocks := unwarpIfs(body, topmostEnd)
		node.Then = &StatementsList{Contents: toStatements(thenBlocks)}

		warpOut := body[len(body)-1].Warp
		if _, isEnd := warpOut.(*EndWarp); !isEnd && !terminatesInto(body[len(body)-1], end, topmostEnd) {
			panic(invariantErrorf("if statement: then-only body does not exit to the if's end"))
		}

		thenBlocks[len(thenBlocks)-1].Warp = &EndWarp{}
	}

	start.Contents = append(start.Contents, node)
}

// extractIfExpression splits off the leading, content-free run of blocks
// that make up the head's own condition expression (the head itself plus
// any purely-branching blocks before the first one with real contents),
// compiles it, and reports where the false (else, or straight-to-end) path
// begins.
func extractIfExpression(start *Block, body []*Block, end, topmostEnd *Block) (Expression, []*Block, *Block) {
	i := 0
	for ; i < len(body); i++ {
		if len(body[i].Contents) != 0 {
			break
		}
	}
	if i >= len(body) {
		panic(invariantErrorf("if expression: no body block carries contents"))
	}

	expression := append([]*Block{start}, body[:i]...)
	body = body[i:]

	falses := map[*Block]bool{end: true}
	if topmostEnd != nil {
		falses[topmostEnd] = true
	}
	for j := 0; j < len(body)-1; j++ {
		jump, ok := body[j].Warp.(*JumpWarp)
		if !ok {
			continue
		}
		if jump.Target != end && jump.Target != topmostEnd {
			continue
		}
		falses[body[j+1]] = true
	}

	falseTarget, endI := searchExpressionEnd(expression, falses)
	if endI < 0 {
		panic(invariantErrorf("if expression: expression end not found"))
	}

	body = append(append([]*Block{}, expression[endI:]...), body...)
	expression = expression[:endI]
	if len(expression) == 0 {
		panic(invariantErrorf("if expression: empty condition"))
	}

	trueTarget := body[0]
	expr := compileExpression(expression, nil, trueTarget, falseTarget)

	return expr, body, falseTarget
}

// searchExpressionEnd scans expression for the run of warps targeting a
// consistent member of falses, returning that target and one past the last
// matching index.
func searchExpressionEnd(expression []*Block, falses map[*Block]bool) (*Block, int) {
	expressionEnd := -1
	var falseTarget *Block

	for i, block := range expression {
		target := getTarget(block.Warp)
		if !falses[target] {
			continue
		}
		if falseTarget == nil || target == falseTarget {
			falseTarget = target
			expressionEnd = i + 1
		} else {
			break
		}
	}

	if falseTarget == nil {
		panic(invariantErrorf("if expression: no recognized false target while scanning condition"))
	}
	return falseTarget, expressionEnd
}

// removeProcessedBlocks drops every block consumed by a reduced if/logical
// region (keeping only the region's head, which now carries the reduced
// statement and a Flow edge to the region's end).
func removeProcessedBlocks(blocks []*Block, boundaries [][2]int) []*Block {
	var remains []*Block
	lastEndIndex := -1

	for _, b := range boundaries {
		start, end := b[0], b[1]
		upToIndex := start + 1
		if start == end {
			upToIndex = start
		}
		remains = append(remains, blocks[lastEndIndex+1:upToIndex]...)
		lastEndIndex = end
	}

	remains = append(remains, blocks[lastEndIndex+1:]...)
	return remains
}

func indexOfBlockSafe(blocks []*Block, target *Block) (int, bool) {
	for i, b := range blocks {
		if b == target {
			return i, true
		}
	}
	return 0, false
}
