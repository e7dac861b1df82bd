// Package slotworks compacts the raw VM-slot traffic that survives
// control-flow unwarping. ast.PrimaryPass and ast.FinalPass reconstruct
// structure but never touch slot usage, so a short-circuit expression like
// `local x = a and b` typically still carries its intermediate copy through
// a temporary VM slot (`tmp = b; x = tmp`) -- a faithful translation of the
// bytecode, but not of anything a person would write. EliminateTemporary
// removes exactly that kind of dead same-slot copy.
package slotworks

import "github.com/woojufon/ljd/ast"

// EliminateTemporary compacts list's contents in place: whenever a raw
// VM-slot assignment is immediately followed by another assignment whose
// entire source is just that slot, and nothing later in the list reads the
// slot again, the two collapse into one assignment carrying the original
// source directly. This is a backward dead-store compaction over a
// statement list rather than a byte-addressable page, but it follows the
// same shape -- find the now-unreachable write, fold its neighbor over it,
// drop it. Call it (via ast.Walk) on every list of a tree PrimaryPass and
// FinalPass have already finished structuring.
func EliminateTemporary(list *ast.StatementsList) {
	contents := list.Contents
	out := make([]ast.Statement, 0, len(contents))

	for i := 0; i < len(contents); i++ {
		stmt := contents[i]

		assign, ok := stmt.(*ast.Assignment)
		if !ok || len(assign.Destinations) != 1 || len(assign.Expressions) != 1 {
			out = append(out, stmt)
			continue
		}

		dest, ok := assign.Destinations[0].(*ast.Identifier)
		if !ok || dest.Type != ast.IdentSlot {
			out = append(out, stmt)
			continue
		}

		if i+1 < len(contents) {
			if next, ok := contents[i+1].(*ast.Assignment); ok && len(next.Expressions) == 1 {
				if usesOnly(next.Expressions[0], dest) && !usedElsewhere(contents, i+2, dest) {
					next.Expressions[0] = assign.Expressions[0]
					continue
				}
			}
		}

		out = append(out, stmt)
	}

	list.Contents = out
}

func usesOnly(expr ast.Expression, dest *ast.Identifier) bool {
	ident, ok := expr.(*ast.Identifier)
	return ok && ident.Type == ast.IdentSlot && ident.Slot == dest.Slot
}

func referencesSlot(expr ast.Expression, dest *ast.Identifier) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Type == ast.IdentSlot && e.Slot == dest.Slot
	case *ast.BinaryOperator:
		return referencesSlot(e.Left, dest) || referencesSlot(e.Right, dest)
	case *ast.UnaryOperator:
		return referencesSlot(e.Operand, dest)
	default:
		return false
	}
}

func statementReferencesSlot(stmt ast.Statement, dest *ast.Identifier) bool {
	switch s := stmt.(type) {
	case *ast.Assignment:
		for _, e := range s.Expressions {
			if referencesSlot(e, dest) {
				return true
			}
		}
		for _, e := range s.Destinations {
			if referencesSlot(e, dest) {
				return true
			}
		}
	case *ast.If:
		return referencesSlot(s.Expression, dest)
	case *ast.While:
		return referencesSlot(s.Expression, dest)
	case *ast.RepeatUntil:
		return referencesSlot(s.Expression, dest)
	case *ast.NumericFor:
		if referencesSlot(s.Variable, dest) {
			return true
		}
		for _, e := range s.Expressions {
			if referencesSlot(e, dest) {
				return true
			}
		}
	case *ast.IteratorFor:
		for _, e := range s.Identifiers {
			if referencesSlot(e, dest) {
				return true
			}
		}
		for _, e := range s.Expressions {
			if referencesSlot(e, dest) {
				return true
			}
		}
	}
	return false
}

func usedElsewhere(contents []ast.Statement, from int, dest *ast.Identifier) bool {
	for i := from; i < len(contents); i++ {
		if statementReferencesSlot(contents[i], dest) {
			return true
		}
	}
	return false
}
