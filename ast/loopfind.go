package ast

import "sort"

// loopBounds is a discovered (header, end) pair: header is the loop's first
// block (inclusive), end is the first block after the loop (exclusive).
type loopBounds struct {
	start *Block
	end   *Block
}

// findAllLoops scans blocks for back-edges and returns the discovered loops,
// sorted so inner loops precede outer ones (descending header index) -- each
// reduction then sees fully-reduced inner structure, matching loopreduce.go's
// processing order.
//
// There are no complex checks here: any Jump whose target index is <= the
// jumping block's own index is a back-edge (non-repeat mode); any
// Conditional whose FalseTarget index is <= the current index is a
// repeat-until back-edge (repeat mode). The two modes run as separate
// sweeps so a repeat's own backward conditional cannot mask (or be masked
// by) an enclosing while's back-edge.
func findAllLoops(blocks []*Block, repeatUntil bool) []loopBounds {
	var loops []loopBounds

	i := 0
	for i < len(blocks) {
		block := blocks[i]
		warp := block.Warp

		switch w := warp.(type) {
		case *FlowWarp:
			i++
			continue
		case *JumpWarp:
			if w.Target.Index <= block.Index {
				if repeatUntil {
					panic(invariantErrorf("findAllLoops: unconditional back-edge found during repeat-until sweep"))
				}
				if i >= len(blocks)-1 {
					panic(invariantErrorf("findAllLoops: back-edge at last block"))
				}
				loops = append(loops, loopBounds{start: w.Target, end: blocks[i+1]})
			}
		case *ConditionalWarp:
			if repeatUntil {
				if w.FalseTarget.Index > block.Index {
					i++
					continue
				}

				start := w.FalseTarget
				first := block
				end := block
				lastI := i

				for i < len(blocks) {
					block = blocks[i]
					warp = block.Warp

					if block != first && len(block.Contents) != 0 {
						break
					}
					if _, ok := warp.(*EndWarp); ok {
						break
					}

					target := getTarget(warp)
					if target.Index < block.Index {
						if target == start {
							start = target
							end = block
							lastI = i
						} else {
							break
						}
					}

					i++
				}

				i = lastI

				endIndex := indexOfBlock(blocks, end)
				end = blocks[endIndex+1]

				loops = append(loops, loopBounds{start: start, end: end})
			}
		}

		i++
	}

	sort.SliceStable(loops, func(a, b int) bool {
		return loops[a].start.Index < loops[b].start.Index
	})
	for l, r := 0, len(loops)-1; l < r; l, r = l+1, r-1 {
		loops[l], loops[r] = loops[r], loops[l]
	}

	return loops
}

func indexOfBlock(blocks []*Block, target *Block) int {
	for i, b := range blocks {
		if b == target {
			return i
		}
	}
	panic(invariantErrorf("indexOfBlock: target not found in block list"))
}
