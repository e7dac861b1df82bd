package ast

// gatherStatementsLists performs a pre-order walk of root and returns every
// non-empty StatementsList reachable from it: the function body itself, and
// the Then/Else of every If, and the Statements of every While/RepeatUntil/
// NumericFor/IteratorFor found (including ones nested inside those, since a
// walk recurses into whatever the already-collected lists currently hold).
//
// Because this may be called again after an earlier step mutated list
// contents, it never assumes anything about block indices; it just follows
// pointers.
func gatherStatementsLists(root *StatementsList) []*StatementsList {
	var result []*StatementsList
	var walk func(list *StatementsList)

	walk = func(list *StatementsList) {
		if list == nil {
			return
		}
		if len(list.Contents) > 0 {
			result = append(result, list)
		}
		for _, stmt := range list.Contents {
			walkStatement(stmt, walk)
		}
	}

	walk(root)
	return result
}

// walkStatement descends into the nested StatementsLists (if any) owned by
// stmt, invoking into for each.
func walkStatement(stmt Statement, into func(*StatementsList)) {
	switch s := stmt.(type) {
	case *Block:
		for _, inner := range s.Contents {
			walkStatement(inner, into)
		}
	case *If:
		into(s.Then)
		into(s.Else)
	case *While:
		into(s.Statements)
	case *RepeatUntil:
		into(s.Statements)
	case *NumericFor:
		into(s.Statements)
	case *IteratorFor:
		into(s.Statements)
	}
}

// Walk invokes visit for every non-empty StatementsList reachable from root,
// pre-order. It is exported for callers that need to reach every nested
// list after FinalPass returns -- slot compaction (see package slotworks)
// and pretty-printing, neither of which this package performs itself.
func Walk(root *StatementsList, visit func(*StatementsList)) {
	for _, list := range gatherStatementsLists(root) {
		visit(list)
	}
}

// reindex rewrites block.Index to match each block's current position in
// its parent list, for every statements-list reachable from root. No step
// may assume stable indices across its own run; this is called after each
// step completes.
func reindex(root *StatementsList) {
	for _, list := range gatherStatementsLists(root) {
		for i, stmt := range list.Contents {
			if block, ok := stmt.(*Block); ok {
				block.Index = i
			}
		}
	}
}
