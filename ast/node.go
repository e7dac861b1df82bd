package ast

// Statement is any node that can live in a StatementsList: a real statement
// once a function is fully unwarped, or (transiently, mid-pass) a *Block.
type Statement interface {
	statementNode()
}

// Expression is any node that can appear where a value is expected: a
// condition, an assignment source, an operand of a BinaryOperator/UnaryOperator.
type Expression interface {
	expressionNode()
}

// StatementsList is an ordered sequence of statements. Before FinalPass runs
// over a given list it actually holds *Block values; see Block.statementNode.
type StatementsList struct {
	Contents []Statement
}

// IdentifierType distinguishes the storage class of an Identifier.
type IdentifierType int

const (
	IdentLocal IdentifierType = iota
	IdentSlot
	IdentUpvalue
	IdentGlobal
	IdentTableItem
)

// Identifier names a storage location: a local variable, a raw VM slot
// (temporary), an upvalue, or a global. Slot identity is what the
// logical-expression detector and expression compiler pivot on: the Slot
// field, or Name for an IdentLocal (see sameSlot in expr.go).
type Identifier struct {
	Type IdentifierType
	Slot int
	Name string
}

func (*Identifier) expressionNode() {}

// Assignment assigns each of Expressions to the destination at the same
// position in Destinations.
type Assignment struct {
	Destinations []Expression
	Expressions  []Expression
}

func (*Assignment) statementNode() {}

// If is a structured conditional with an optional else branch (Else == nil
// for a then-only if).
type If struct {
	Expression Expression
	Then       *StatementsList
	Else       *StatementsList
}

func (*If) statementNode() {}

// While is a structured pre-tested loop ("while true" included, Expression a
// Primitive true in that case).
type While struct {
	Expression Expression
	Statements *StatementsList
}

func (*While) statementNode() {}

// RepeatUntil is a structured post-tested loop.
type RepeatUntil struct {
	Expression Expression
	Statements *StatementsList
}

func (*RepeatUntil) statementNode() {}

// NumericFor is `for Variable = Expressions[0], Expressions[1], Expressions[2] do ... end`.
type NumericFor struct {
	Variable    Expression
	Expressions []Expression
	Statements  *StatementsList
}

func (*NumericFor) statementNode() {}

// IteratorFor is `for Identifiers... in Expressions... do ... end`.
type IteratorFor struct {
	Identifiers []Expression
	Expressions []Expression
	Statements  *StatementsList
}

func (*IteratorFor) statementNode() {}

// Break exits the lexically innermost loop.
type Break struct{}

func (*Break) statementNode() {}

// BinOpType tags BinaryOperator. The values follow declaration order, which
// puts a tighter-binding operator below a looser one: the comparisons, then
// and, then or. No code in this package compares the values themselves.
type BinOpType int

const (
	OpEqual BinOpType = iota
	OpNotEqual
	OpLessThan
	OpLessOrEqual
	OpGreaterThan
	OpGreaterOrEqual
	OpLogicalAnd
	OpLogicalOr
)

// BinaryOperator is a two-operand expression: one of the six comparisons, or
// a reconstructed short-circuit and/or.
type BinaryOperator struct {
	Type  BinOpType
	Left  Expression
	Right Expression
}

func (*BinaryOperator) expressionNode() {}

// UnaryOpType tags UnaryOperator.
type UnaryOpType int

const (
	OpNot UnaryOpType = iota
	OpUnaryMinus
	OpLength
)

// UnaryOperator is a one-operand expression.
type UnaryOperator struct {
	Type    UnaryOpType
	Operand Expression
}

func (*UnaryOperator) expressionNode() {}

// PrimitiveType tags Primitive.
type PrimitiveType int

const (
	PrimTrue PrimitiveType = iota
	PrimFalse
	PrimNil
)

// Primitive is one of Lua's three non-numeric, non-string literal values.
type Primitive struct {
	Type PrimitiveType
}

func (*Primitive) expressionNode() {}

// Constant is any other literal value (number, string) carried opaquely.
// The expression compiler (expr.go) only ever inspects Value for the
// operator-inference truthiness check: a numeric zero is falsy, anything
// else (including a non-numeric Value) is truthy.
type Constant struct {
	Value interface{}
}

func (*Constant) expressionNode() {}
