package ast

// glueFlows collapses every statements-list down to a single block: once
// loops and ifs are fully unwarped, every block but the last carries a Flow
// warp to the textually next block (by construction -- see ifs.go and
// loopreduce.go, which always retarget a consumed region's head to Flow(end)).
// Concatenating each block's contents into its successor and dropping the
// predecessor merges the whole list into one block holding everything.
func glueFlows(root *StatementsList) {
	for _, list := range gatherStatementsLists(root) {
		blocks := blocksOf(list)

		last := blocks[len(blocks)-1]
		if _, ok := last.Warp.(*EndWarp); !ok {
			panic(invariantErrorf("glue flows: last block does not carry an End warp"))
		}

		for i, block := range blocks[:len(blocks)-1] {
			flow, ok := block.Warp.(*FlowWarp)
			if !ok {
				panic(invariantErrorf("glue flows: block %d does not carry a Flow warp", i))
			}
			if flow.Target != blocks[i+1] {
				panic(invariantErrorf("glue flows: block %d's Flow target is not the next block", i))
			}

			flow.Target.Contents = append(append([]Statement{}, block.Contents...), flow.Target.Contents...)
			block.Contents = nil
		}

		setBlocks(list, []*Block{blocks[len(blocks)-1]})
	}
}
