package ast

// compileExpression is the §4.8 expression compiler. blocks is a flat chain
// of terminal blocks discovered by the if extractor (ifs.go) or a loop's
// condition scan (loopreduce.go): walking it, each block's ConditionalWarp
// either falls through to the next block (its TrueTarget, always -- a
// single-comparison-then-JMP bytecode encoding can only branch explicitly on
// one side) or branches out to trueTarget/falseTarget. slot, when non-nil,
// restricts which local's assignment a single-block terminal may read as its
// value (used by the local-variable fallback in the logical-expression
// detector); a nil slot takes whatever was last assigned.
//
// A block's FalseTarget identifies its role: pointing straight at trueTarget
// means the stored condition is already inverted (an "or" term -- the
// bytecode jumps out the moment the real test succeeds, so the stored
// comparison reads the negation); anything else is an "and" term sharing a
// single common failure destination (the literal falseTarget, or -- when an
// "and" run gives up partway through a longer expression like "a and b or
// c" -- a later block in the same chain marking where the next alternative
// begins). A run of consecutive blocks sharing that same role is compiled
// together with compileRun; reaching whatever follows a run only happens via
// its failure path, so a run and what follows it always combine with "or",
// regardless of the run's own internal operator.
func compileExpression(blocks []*Block, slot *Identifier, trueTarget, falseTarget *Block) Expression {
	if len(blocks) == 1 {
		return compileSubexpression(blocks[0], slot, false, trueTarget)
	}

	operator := getOperator(blocks[0], slot, trueTarget)

	var boundary *Block
	if operator == OpLogicalOr {
		boundary = trueTarget
	} else if cond, ok := blocks[0].Warp.(*ConditionalWarp); ok {
		boundary = cond.FalseTarget
	} else {
		boundary = getTarget(blocks[0].Warp)
	}

	i := 1
	for i < len(blocks) {
		cond, ok := blocks[i].Warp.(*ConditionalWarp)
		if !ok || cond.FalseTarget != boundary {
			break
		}
		i++
	}

	left := compileRun(blocks[:i], slot, operator, trueTarget)
	rest := blocks[i:]

	if len(rest) == 0 {
		return left
	}

	right := compileExpression(rest, slot, trueTarget, falseTarget)
	return &BinaryOperator{Type: OpLogicalOr, Left: left, Right: right}
}

// getOperator classifies block's contribution to an expression chain. For a
// conditional block: "or" when its real test succeeding jumps straight out
// to trueTarget (so the stored condition is the negation and must be
// inverted when read), "and" otherwise. For a terminal block with no test at
// all -- the tail of a terminator pair, or any other unconditional value
// producer beginning a run -- the classification instead comes from the
// truthiness of the value it carries: a run that begins on an
// always-truthy value can only ever be reached by an "or" (nothing past it
// would ever need evaluating on that path), and one beginning on an
// always-falsy value by an "and".
func getOperator(block *Block, slot *Identifier, trueTarget *Block) BinOpType {
	cond, ok := block.Warp.(*ConditionalWarp)
	if !ok {
		return unconditionalOperator(block, slot, trueTarget)
	}
	if cond.FalseTarget == trueTarget {
		return OpLogicalOr
	}
	return OpLogicalAnd
}

// unconditionalOperator is getOperator's §4.8 fallback for a block whose warp
// carries no condition to read the polarity from. It peeks (without
// removing) the block's last matching assignment: a numeric-zero constant or
// a T_FALSE primitive is falsy, a binary operator's result and a T_TRUE
// primitive are always truthy, and a non-numeric constant is truthy. With no
// matching assignment at all, the block is a pure control-flow pass-through,
// so its role falls back to comparing where it flows to against trueTarget.
func unconditionalOperator(block *Block, slot *Identifier, trueTarget *Block) BinOpType {
	truthy := getTarget(block.Warp) == trueTarget

	if src, ok := getLastAssignmentSource(block, slot); ok {
		switch v := src.(type) {
		case *Constant:
			truthy = !isZeroConstant(v.Value)
		case *BinaryOperator:
			truthy = true
		case *Primitive:
			truthy = v.Type == PrimTrue
		}
	}

	if truthy {
		return OpLogicalOr
	}
	return OpLogicalAnd
}

// isZeroConstant reports whether a constant's carried value is numeric zero
// -- the only falsy Constant; anything else, including a non-numeric value,
// is truthy.
func isZeroConstant(value interface{}) bool {
	switch v := value.(type) {
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0
	default:
		return false
	}
}

// compileRun combines a maximal run of same-role terminal blocks into a
// left-nested chain of operator.
func compileRun(blocks []*Block, slot *Identifier, operator BinOpType, trueTarget *Block) Expression {
	invertTerm := operator == OpLogicalOr

	expr := compileSubexpression(blocks[0], slot, invertTerm, trueTarget)
	for _, block := range blocks[1:] {
		right := compileSubexpression(block, slot, invertTerm, trueTarget)
		expr = &BinaryOperator{Type: operator, Left: expr, Right: right}
	}
	return expr
}

// compileSubexpression reads one terminal block's value: its (possibly
// inverted) stored condition when it carries one, or otherwise the source of
// its last matching assignment (the block is itself the expression's value,
// as when a logical expression's last term is a plain local load). A block
// with neither -- a terminator whose own assignment was already consumed by
// a sibling pass, or one that never carried one -- stands for whichever of
// Lua's two boolean literals matches the edge it flows out on.
func compileSubexpression(block *Block, slot *Identifier, invertTerm bool, trueTarget *Block) Expression {
	if cond, ok := block.Warp.(*ConditionalWarp); ok {
		if invertTerm {
			return invert(cond.Condition)
		}
		return cond.Condition
	}
	if _, ok := getLastAssignmentSource(block, slot); !ok {
		if getTarget(block.Warp) == trueTarget {
			return &Primitive{Type: PrimTrue}
		}
		return &Primitive{Type: PrimFalse}
	}
	return getAndRemoveLastAssignmentSource(block, slot)
}

var negationTable = map[BinOpType]BinOpType{
	OpEqual:          OpNotEqual,
	OpNotEqual:       OpEqual,
	OpLessThan:       OpGreaterOrEqual,
	OpGreaterOrEqual: OpLessThan,
	OpLessOrEqual:    OpGreaterThan,
	OpGreaterThan:    OpLessOrEqual,
}

// invert negates expr: a recognized comparison flips to its complement
// directly, an existing Not unwraps (double negation), anything else gets
// wrapped in a fresh Not.
func invert(expr Expression) Expression {
	if bin, ok := expr.(*BinaryOperator); ok {
		if opposite, ok := negationTable[bin.Type]; ok {
			return &BinaryOperator{Type: opposite, Left: bin.Left, Right: bin.Right}
		}
	}
	if un, ok := expr.(*UnaryOperator); ok && un.Type == OpNot {
		return un.Operand
	}
	return &UnaryOperator{Type: OpNot, Operand: expr}
}

func isInverted(expr Expression) bool {
	un, ok := expr.(*UnaryOperator)
	return ok && un.Type == OpNot
}

// getLastAssignmentSource returns the source of the last assignment in
// block targeting slot (or the very last assignment, if slot is nil)
// without removing it.
func getLastAssignmentSource(block *Block, slot *Identifier) (Expression, bool) {
	i := findLastAssignmentIndex(block, slot)
	if i < 0 {
		return nil, false
	}
	assign := block.Contents[i].(*Assignment)
	return assign.Expressions[len(assign.Expressions)-1], true
}

// getAndRemoveLastAssignmentSource is getLastAssignmentSource, additionally
// splicing the matched assignment out of block's contents: the statement is
// being consumed into an expression tree, not left behind as a statement.
func getAndRemoveLastAssignmentSource(block *Block, slot *Identifier) Expression {
	i := findLastAssignmentIndex(block, slot)
	if i < 0 {
		panic(invariantErrorf("expression compiler: no matching assignment in terminal block at source %d-%d", block.FirstAddress, block.LastAddress))
	}
	assign := block.Contents[i].(*Assignment)
	source := assign.Expressions[len(assign.Expressions)-1]
	block.Contents = append(block.Contents[:i:i], block.Contents[i+1:]...)
	return source
}

// sameSlot reports whether two destination identifiers refer to the same
// storage location. Type and Slot alone distinguish every identifier kind
// except IdentLocal, whose Slot is unused (always zero) since locals are
// identified by Name instead -- without the extra Name check, any two
// differently-named locals would compare equal.
func sameSlot(a, b *Identifier) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type == IdentLocal {
		return a.Name == b.Name
	}
	return a.Slot == b.Slot
}

func findLastAssignmentIndex(block *Block, slot *Identifier) int {
	for i := len(block.Contents) - 1; i >= 0; i-- {
		assign, ok := block.Contents[i].(*Assignment)
		if !ok {
			continue
		}
		if slot == nil {
			return i
		}
		dest, ok := assign.Destinations[len(assign.Destinations)-1].(*Identifier)
		if ok && sameSlot(dest, slot) {
			return i
		}
	}
	return -1
}
