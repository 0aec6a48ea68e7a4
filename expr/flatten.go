// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package expr

// Flatten normalizes chained comparisons into explicit
// AND trees of elementary pairwise comparisons:
//
//	a < b < c  =>  a < b AND b < c
//
// A chain is a syntactic shape: the left-nested spine the
// upstream parser produces for consecutive comparison
// operators, plus the precedence-driven mixed-class shape
// described at reorder. An explicitly parenthesized
// comparison in operand position, as in a < (b < c), is
// not part of a chain; like every other operand it is
// opaque and carried through unchanged, so it remains a
// nested comparison and will be rejected when the result
// is evaluated.
//
// The shared middle operand of a chain appears in both
// elementary comparisons as the same sub-tree, not a
// duplicate; operands with side effects are still bound
// once upstream.
//
// The input is assumed to have passed Validate. Flatten
// does not mutate it, and Flatten is idempotent:
// re-flattening an already-flat tree returns an
// equivalent tree.
func Flatten(n Node) Node {
	n = deblock(n)
	switch n := n.(type) {
	case *Logical:
		return &Logical{Op: n.Op, Left: Flatten(n.Left), Right: Flatten(n.Right)}
	case *Not:
		return &Not{Expr: Flatten(n.Expr)}
	case *Comparison:
		return flattenChain(n)
	default:
		return n
	}
}

// reorder corrects precedence-driven shapes on mixed
// operator classes. Ordering operators bind tighter than
// the (symmetric) equality operators in the source
// syntax, so a chain segment like
//
//	c == a < b
//
// arrives as ==(c, <(a,b)) instead of the left-nested
// shape the chaining rule expects. Because equality
// operators are symmetric in their operands,
//
//	eq(c, ord(a,b))  =>  ord(eq(c,a), b)
//
// preserves the written left-to-right sequence of
// pairwise relations. The rule cascades until the right
// child is no longer an ordering comparison.
func reorder(c *Comparison) *Comparison {
	for c.Op.Equality() {
		rc, ok := c.Right.(*Comparison)
		if !ok || !rc.Op.Ordinal() {
			break
		}
		c = &Comparison{
			Op:    rc.Op,
			Left:  &Comparison{Op: c.Op, Left: c.Left, Right: rc.Left},
			Right: rc.Right,
		}
	}
	return c
}

// flattenChain expands one (possibly chained) comparison
// into a left-associative AND tree of elementary
// comparisons. The left spine is walked iteratively, so
// arbitrarily long chains do not grow the call stack.
func flattenChain(c *Comparison) Node {
	// collect the left spine in reverse chain order,
	// reordering mixed-class shapes at every level
	var ops []CmpOp
	var rhs []Node
	c = reorder(c)
	for {
		ops = append(ops, c.Op)
		rhs = append(rhs, c.Right)
		lc, ok := c.Left.(*Comparison)
		if !ok {
			break
		}
		c = reorder(lc)
	}
	if len(ops) == 1 {
		// already elementary
		return &Comparison{Op: ops[0], Left: c.Left, Right: rhs[0]}
	}
	var out Node
	left := c.Left // leftmost operand
	for i := len(ops) - 1; i >= 0; i-- {
		cmp := &Comparison{Op: ops[i], Left: left, Right: rhs[i]}
		if out == nil {
			out = cmp
		} else {
			out = And(out, cmp)
		}
		// the right operand is shared with the
		// next elementary comparison
		left = rhs[i]
	}
	return out
}
