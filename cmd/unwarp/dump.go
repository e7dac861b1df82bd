package main

import (
	"fmt"
	"strings"

	"github.com/woojufon/ljd/ast"
)

// dumpFunction renders a structured statement tree as indented pseudo-Lua.
// It exists so the CLI has something to show for its work; it is not the
// pretty-printer the ast package's doc comment defers to callers -- just
// enough structure to eyeball a function's shape and confirm the break,
// loop, and logical-expression reconstruction landed where expected.
func dumpFunction(name string, root *ast.StatementsList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function %s()\n", name)
	dumpList(&b, root, 1)
	b.WriteString("end")
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpList(b *strings.Builder, list *ast.StatementsList, depth int) {
	if list == nil {
		return
	}
	for _, stmt := range list.Contents {
		dumpStatement(b, stmt, depth)
	}
}

func dumpStatement(b *strings.Builder, stmt ast.Statement, depth int) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		indent(b, depth)
		b.WriteString(dumpExprList(s.Destinations))
		b.WriteString(" = ")
		b.WriteString(dumpExprList(s.Expressions))
		b.WriteString("\n")

	case *ast.Break:
		indent(b, depth)
		b.WriteString("break\n")

	case *ast.If:
		indent(b, depth)
		fmt.Fprintf(b, "if %s then\n", dumpExpr(s.Expression))
		dumpList(b, s.Then, depth+1)
		if s.Else != nil && len(s.Else.Contents) > 0 {
			indent(b, depth)
			b.WriteString("else\n")
			dumpList(b, s.Else, depth+1)
		}
		indent(b, depth)
		b.WriteString("end\n")

	case *ast.While:
		indent(b, depth)
		fmt.Fprintf(b, "while %s do\n", dumpExpr(s.Expression))
		dumpList(b, s.Statements, depth+1)
		indent(b, depth)
		b.WriteString("end\n")

	case *ast.RepeatUntil:
		indent(b, depth)
		b.WriteString("repeat\n")
		dumpList(b, s.Statements, depth+1)
		indent(b, depth)
		fmt.Fprintf(b, "until %s\n", dumpExpr(s.Expression))

	case *ast.NumericFor:
		indent(b, depth)
		fmt.Fprintf(b, "for %s = %s do\n", dumpExpr(s.Variable), dumpExprList(s.Expressions))
		dumpList(b, s.Statements, depth+1)
		indent(b, depth)
		b.WriteString("end\n")

	case *ast.IteratorFor:
		indent(b, depth)
		fmt.Fprintf(b, "for %s in %s do\n", dumpExprList(s.Identifiers), dumpExprList(s.Expressions))
		dumpList(b, s.Statements, depth+1)
		indent(b, depth)
		b.WriteString("end\n")

	default:
		indent(b, depth)
		fmt.Fprintf(b, "-- unrecognized statement %T\n", stmt)
	}
}

func dumpExprList(exprs []ast.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = dumpExpr(e)
	}
	return strings.Join(parts, ", ")
}

var binOpText = map[ast.BinOpType]string{
	ast.OpEqual:          "==",
	ast.OpNotEqual:       "~=",
	ast.OpLessThan:       "<",
	ast.OpLessOrEqual:    "<=",
	ast.OpGreaterThan:    ">",
	ast.OpGreaterOrEqual: ">=",
	ast.OpLogicalAnd:     "and",
	ast.OpLogicalOr:      "or",
}

var unaryOpText = map[ast.UnaryOpType]string{
	ast.OpNot:        "not ",
	ast.OpUnaryMinus: "-",
	ast.OpLength:     "#",
}

var primitiveText = map[ast.PrimitiveType]string{
	ast.PrimTrue:  "true",
	ast.PrimFalse: "false",
	ast.PrimNil:   "nil",
}

var identifierKindText = map[ast.IdentifierType]string{
	ast.IdentLocal:     "L",
	ast.IdentSlot:      "S",
	ast.IdentUpvalue:   "U",
	ast.IdentGlobal:    "G",
	ast.IdentTableItem: "T",
}

func dumpExpr(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		if e.Name != "" {
			return e.Name
		}
		return fmt.Sprintf("%s%d", identifierKindText[e.Type], e.Slot)
	case *ast.BinaryOperator:
		return fmt.Sprintf("(%s %s %s)", dumpExpr(e.Left), binOpText[e.Type], dumpExpr(e.Right))
	case *ast.UnaryOperator:
		return fmt.Sprintf("%s%s", unaryOpText[e.Type], dumpExpr(e.Operand))
	case *ast.Primitive:
		return primitiveText[e.Type]
	case *ast.Constant:
		return fmt.Sprintf("%v", e.Value)
	default:
		return fmt.Sprintf("<%T>", expr)
	}
}
