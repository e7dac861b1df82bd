/* Package ast holds the node vocabulary and control-flow unwarping core of a
LuaJIT bytecode decompiler.

The core takes a function-level control-flow graph whose basic blocks end in
a typed warp edge (fall-through, jump, conditional, loop header, or end of
function) and rewrites it in place into a structured statement tree: if/else,
while, repeat-until, numeric and generic for, break, and the short-circuit
logical expressions (and/or/not) that LuaJIT's bytecode compiles "and"/"or"
down into indistinguishably from real branches.

Two entry points do all the work:

	ast.PrimaryPass(root)  // loops, ifs, logical expressions, flow gluing
	ast.FinalPass(root)    // lift the lone surviving block into the statement list

Everything else in this package is a private implementation detail of those
two passes. Callers are expected to have already parsed bytecode into Blocks
and Warps (see Block and Warp below) and to run slotworks.EliminateTemporary
and a pretty-printer themselves -- this package does neither.
*/
package ast
