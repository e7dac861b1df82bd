package ast

import "github.com/woojufon/ljd/internal/logio"

// breakKind distinguishes a break block reachable only from the jump that
// created it (breakOneUse, popped off the break-target stack as soon as one
// escaping conditional binds to it) from one with other incoming edges
// (breakInfinite, left on the stack to bind further escaping conditionals).
type breakKind int

const (
	breakInfinite breakKind = iota
	breakOneUse
)

type breakStackEntry struct {
	kind  breakKind
	block *Block
}

// breakWarnLogger receives one warning line per §9 "pray for the best"
// fallback bind. nil (the default) means such warnings are simply dropped.
var breakWarnLogger *logio.Logger

// SetBreakWarnLogger directs break-propagation fallback warnings (see §9's
// open question on the LIFO "pray for the best" heuristic) to logger.
// Passing nil silences them again. Not goroutine-safe to call concurrently
// with an in-flight PrimaryPass.
func SetBreakWarnLogger(logger *logio.Logger) {
	breakWarnLogger = logger
}

func isUnconditional(warp Warp) bool {
	switch warp.(type) {
	case *FlowWarp, *JumpWarp:
		return true
	default:
		return false
	}
}

// gatherPossibleEnds returns block plus every block reachable from it by an
// unbroken chain of plain Jumps: the set of addresses a break from this loop
// may legally land on.
func gatherPossibleEnds(block *Block) map[*Block]bool {
	ends := map[*Block]bool{block: true}
	for isJump(block.Warp) {
		block = block.Warp.(*JumpWarp).Target
		ends[block] = true
	}
	return ends
}

// unwarpBreaks retargets every jump inside a just-reduced loop body that
// escapes to nextBlock (or one of the jumps chained from it) into an
// explicit Break statement, then collapses repeated escaping conditionals
// down onto a minimal stack of synthesized break blocks, one per exit point.
func unwarpBreaks(start *Block, blocks []*Block, nextBlock *Block) []*Block {
	blocksSet := map[*Block]bool{start: true}
	for _, b := range blocks {
		blocksSet[b] = true
	}

	ends := gatherPossibleEnds(nextBlock)
	breaks := map[*Block]bool{}
	var patched []*Block

	for i, block := range blocks {
		if !isUnconditional(block.Warp) {
			patched = append(patched, block)
			continue
		}

		target := getTarget(block.Warp)
		if blocksSet[target] {
			patched = append(patched, block)
			continue
		}
		if !ends[target] {
			panic(unsupportedGotof("jump at source %d-%d leaves the loop body without reaching a recognized exit", block.FirstAddress, block.LastAddress))
		}

		if block.WarpInsCount != 0 {
			newBlock := createNextBlock(block)
			newBlock.WarpInsCount = block.WarpInsCount
			setFlowTo(block, newBlock)
			patched = append(patched, block, newBlock)
			block = newBlock
		} else {
			patched = append(patched, block)
		}

		block.Contents = append(block.Contents, &Break{})
		if i+1 == len(blocks) {
			block.Warp = &EndWarp{}
		} else {
			setFlowTo(block, blocks[i+1])
		}
		breaks[block] = true
	}

	blocks = patched
	if len(breaks) == 0 {
		return blocks
	}

	var breaksStack []breakStackEntry
	var warpsout []*Block
	var pendingBreak *breakStackEntry

	for i := len(blocks) - 1; i >= 0; i-- {
		block := blocks[i]

		if breaks[block] {
			pendingBreak = nil
			kind := breakInfinite
			if block.WarpInsCount == 0 {
				kind = breakOneUse
			}
			breaksStack = append(breaksStack, breakStackEntry{kind, block})
			continue
		}

		if _, ok := block.Warp.(*ConditionalWarp); !ok {
			if isFlow(block.Warp) {
				pendingBreak = nil
			}
			continue
		}

		target := getTarget(block.Warp)
		if blocksSet[target] {
			continue
		}
		if !ends[target] {
			panic(unsupportedGotof("conditional at source %d-%d escapes the loop without reaching a recognized exit", block.FirstAddress, block.LastAddress))
		}

		if pendingBreak == nil {
			if len(breaksStack) == 0 {
				panic(invariantErrorf("break propagation: escaping conditional with no break target on the stack"))
			}
			top := breaksStack[len(breaksStack)-1]
			setTarget(block.Warp, top.block)
			if top.kind == breakOneUse {
				breaksStack = breaksStack[:len(breaksStack)-1]
				pendingBreak = &top
				warpsout = nil
			} else {
				warpsout = append(warpsout, block)
			}
		} else {
			setTarget(block.Warp, pendingBreak.block)
			warpsout = append(warpsout, block)
		}

		if len(block.Contents) > 0 {
			pendingBreak = nil
		}
	}

	for len(breaksStack) > 0 && breaksStack[len(breaksStack)-1].kind == breakInfinite {
		breaksStack = breaksStack[:len(breaksStack)-1]
	}

	// "Pray for the best" (spec.md §9 open question): any escaping
	// conditional left unbound after the reverse walk is matched LIFO
	// against whatever remains of the break stack. This can misorder
	// breaks in pathological deeply-nested cases, so every fallback bind
	// is logged for downstream audit instead of silently guessed.
	for len(warpsout) > 0 && len(breaksStack) > 0 {
		w := warpsout[len(warpsout)-1]
		warpsout = warpsout[:len(warpsout)-1]
		b := breaksStack[len(breaksStack)-1]
		breaksStack = breaksStack[:len(breaksStack)-1]

		if breakWarnLogger != nil {
			breakWarnLogger.Printf("WARN", "break propagation: unmatched escaping conditional bound to break block by LIFO fallback; verify output")
		}

		setTarget(w.Warp, b.block)
	}

	return blocks
}
