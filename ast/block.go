package ast

// Block is a basic block: a run of statements ending in a single warp edge.
//
// Index is the block's position in its parent StatementsList. It is a
// transient invariant -- valid between passes, meaningless mid-pass -- so no
// helper in this package may compare two blocks' Index fields without first
// confirming both were re-derived by the same reindex (see unwarp.go's
// reindex). Identity is always by pointer, never by Index.
type Block struct {
	Index int

	FirstAddress int
	LastAddress  int

	Contents []Statement

	Warp Warp

	// WarpInsCount is the number of incoming edges that are not a
	// fall-through from the textually preceding block. A block with
	// WarpInsCount > 0 is a real jump target and may not be silently
	// absorbed by flow gluing or break-block splitting.
	WarpInsCount int
}

func (*Block) statementNode() {}

// Warp is the outbound edge (or pair of edges) of a Block.
type Warp interface {
	warpNode()
}

// FlowWarp is an unconditional fall-through to the textually next block.
// Target must equal the next block in the list -- this is an invariant, not
// a suggestion; see ifs.go and loopreduce.go for the code that maintains it.
type FlowWarp struct {
	Target *Block
}

func (*FlowWarp) warpNode() {}

// JumpWarp is an unconditional jump that may target any block.
type JumpWarp struct {
	Target *Block
}

func (*JumpWarp) warpNode() {}

// ConditionalWarp is a two-way branch. TrueTarget is always the fall-through
// (the textually next block); the real, only-sometimes-taken branch is
// always FalseTarget. This mirrors the single-JMP bytecode encoding: a
// "positive" test compiles to a negated test with a JMP on failure, so the
// block that follows in program order is always the true side.
type ConditionalWarp struct {
	Condition   Expression
	TrueTarget  *Block
	FalseTarget *Block
}

func (*ConditionalWarp) warpNode() {}

// IteratorLoopWarp is a generic-for loop header (`for a, b in f, s, var do`).
type IteratorLoopWarp struct {
	Variables []Expression
	Controls  []Expression
	Body      *Block
	WayOut    *Block
}

func (*IteratorLoopWarp) warpNode() {}

// NumericLoopWarp is a numeric-for loop header (`for i = a, b, c do`).
type NumericLoopWarp struct {
	Index    Expression
	Controls []Expression
	Body     *Block
	WayOut   *Block
}

func (*NumericLoopWarp) warpNode() {}

// EndWarp marks the terminal block of a StatementsList. Exactly one EndWarp
// may appear in a list, always at the last position.
type EndWarp struct{}

func (*EndWarp) warpNode() {}

// isFlow reports whether warp is an unconditional fall-through.
func isFlow(warp Warp) bool {
	_, ok := warp.(*FlowWarp)
	return ok
}

// isJump reports whether warp is an unconditional (non-fall-through) jump.
func isJump(warp Warp) bool {
	_, ok := warp.(*JumpWarp)
	return ok
}

// getTarget returns the single block warp would transfer control to along
// its "default" edge: Target for Flow/Jump, FalseTarget for Conditional
// (per the polarity documented on ConditionalWarp).
func getTarget(warp Warp) *Block {
	switch w := warp.(type) {
	case *FlowWarp:
		return w.Target
	case *JumpWarp:
		return w.Target
	case *ConditionalWarp:
		return w.FalseTarget
	default:
		panic(invariantErrorf("getTarget: unsupported warp %T", warp))
	}
}

// setTarget sets warp's "default" edge target, the dual of getTarget.
func setTarget(warp Warp, target *Block) {
	switch w := warp.(type) {
	case *FlowWarp:
		w.Target = target
	case *JumpWarp:
		w.Target = target
	case *ConditionalWarp:
		w.FalseTarget = target
	default:
		panic(invariantErrorf("setTarget: unsupported warp %T", warp))
	}
}

// setFlowTo rewrites block's warp in place to a plain fall-through to target.
func setFlowTo(block, target *Block) {
	block.Warp = &FlowWarp{Target: target}
}

// replaceTargets rewrites every warp in blocks that points at original to
// point at replacement instead -- an O(N) sweep, as recommended for an
// arena-style implementation even though this one uses pointer identity.
func replaceTargets(blocks []*Block, original, replacement *Block) {
	for _, block := range blocks {
		switch w := block.Warp.(type) {
		case *FlowWarp:
			if w.Target == original {
				w.Target = replacement
			}
		case *JumpWarp:
			if w.Target == original {
				w.Target = replacement
			}
		case *ConditionalWarp:
			if w.TrueTarget == original {
				w.TrueTarget = replacement
			}
			if w.FalseTarget == original {
				w.FalseTarget = replacement
			}
		case *EndWarp:
			// terminal, nothing to replace
		case *IteratorLoopWarp:
			if w.WayOut == original {
				w.WayOut = replacement
			}
			if w.Body == original {
				w.Body = replacement
			}
		case *NumericLoopWarp:
			if w.WayOut == original {
				w.WayOut = replacement
			}
			if w.Body == original {
				w.Body = replacement
			}
		}
	}
}

// createNextBlock synthesizes a fresh, empty, terminal block immediately
// following original in source order (used to give a conditional warp a
// distinct false target, or to carry a single synthesized Break).
func createNextBlock(original *Block) *Block {
	return &Block{
		Index:        original.Index + 1,
		FirstAddress: original.LastAddress + 1,
		LastAddress:  original.LastAddress + 1,
		WarpInsCount: original.WarpInsCount,
		Warp:         &EndWarp{},
	}
}
