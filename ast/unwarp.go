package ast

// PrimaryPass runs the three structural sweeps -- non-repeat loops,
// repeat-until loops, then ifs and logical expressions -- followed by flow
// gluing, over every nested statements-list in root. It mutates root in
// place.
//
// Loops are unwarped before ifs so that a loop's internal break jumps (which
// look exactly like an escaping if-branch until the loop reducer claims
// them) are already resolved by the time the if extractor runs. Non-repeat
// loops run before repeat-until loops so that a repeat's own backward
// conditional does not get mistaken for an enclosing while's back-edge.
//
// PrimaryPass returns an error wrapping a *UnsupportedGotoError (reachable
// with errors.As) if any block's warp cannot be explained as a loop
// back-edge, a structured if exit, or a resolvable break, and one wrapping a
// *InvariantError if it detects a broken precondition in the input CFG.
// Either way the function being processed should be abandoned; there is no
// partial-success mode.
func PrimaryPass(root *StatementsList) error {
	return recoverPass("ast.PrimaryPass", func() {
		runStep(root, func(contents []*Block) []*Block {
			return unwarpLoops(contents, false)
		})
		runStep(root, func(contents []*Block) []*Block {
			return unwarpLoops(contents, true)
		})
		runStep(root, func(contents []*Block) []*Block {
			return unwarpIfs(contents, nil)
		})

		glueFlows(root)
	})
}

// FinalPass lifts the lone remaining block's contents up one level, so that
// every statements-list in root holds statement nodes directly instead of a
// single block wrapping them. Call this only after a successful PrimaryPass.
func FinalPass(root *StatementsList) error {
	return recoverPass("ast.FinalPass", func() {
		for _, list := range gatherStatementsLists(root) {
			if len(list.Contents) != 1 {
				panic(invariantErrorf("final pass: expected exactly one block, found %d", len(list.Contents)))
			}
			block, ok := list.Contents[0].(*Block)
			if !ok {
				panic(invariantErrorf("final pass: statements-list does not hold a block"))
			}
			list.Contents = block.Contents
		}
	})
}

// blocksOf returns list's contents as a []*Block, panicking with an
// invariant error if any element is not a *Block -- every step-driven
// rewrite operates purely over blocks; only FinalPass (run once, last)
// replaces blocks with real statements.
func blocksOf(list *StatementsList) []*Block {
	blocks := make([]*Block, len(list.Contents))
	for i, stmt := range list.Contents {
		block, ok := stmt.(*Block)
		if !ok {
			panic(invariantErrorf("expected a block at position %d, got %T", i, stmt))
		}
		blocks[i] = block
	}
	return blocks
}

func setBlocks(list *StatementsList, blocks []*Block) {
	contents := make([]Statement, len(blocks))
	for i, b := range blocks {
		contents[i] = b
	}
	list.Contents = contents
}

// runStep applies step to every statements-list's block contents, then
// re-derives block indices (a step may not assume stable indices across its
// own run, and may leave them wrong when it returns).
func runStep(root *StatementsList, step func(contents []*Block) []*Block) {
	for _, list := range gatherStatementsLists(root) {
		setBlocks(list, step(blocksOf(list)))
	}
	reindex(root)
}
