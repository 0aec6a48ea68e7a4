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

import "testing"

func TestFlatten(t *testing.T) {
	a, b, c, d := Ident("a"), Ident("b"), Ident("c"), Ident("d")
	testcases := []struct {
		before, after Node
	}{
		{
			// already elementary
			lt(a, b),
			lt(a, b),
		},
		{
			// a < b < c => a < b AND b < c
			chain(a, []CmpOp{Less, Less}, b, c),
			And(lt(a, b), lt(b, c)),
		},
		{
			// a < b <= c > d
			chain(a, []CmpOp{Less, LessEquals, Greater}, b, c, d),
			And(And(lt(a, b), lte(b, c)), gt(c, d)),
		},
		{
			// chains inside combinators
			And(
				chain(a, []CmpOp{Less, Less}, b, c),
				gt(c, d),
			),
			And(And(lt(a, b), lt(b, c)), gt(c, d)),
		},
		{
			Negate(chain(a, []CmpOp{Greater, Greater}, b, c)),
			Negate(And(gt(a, b), gt(b, c))),
		},
		{
			// blocks unwrap at structural positions
			&Block{Body: chain(a, []CmpOp{Less, Less}, b, c)},
			And(lt(a, b), lt(b, c)),
		},
		{
			// precedence correction: 'a == b < c' arrives
			// as ==(a, <(b,c)) because ordering operators
			// bind tighter than equality operators
			eq(a, lt(b, c)),
			And(eq(a, b), lt(b, c)),
		},
		{
			// 'a < b == c < d' arrives as
			// ==( <(a,b), <(c,d) )
			eq(lt(a, b), lt(c, d)),
			And(And(lt(a, b), eq(b, c)), lt(c, d)),
		},
		{
			// strict aliases are equality-class too
			Compare(StrictEquals, a, lt(b, c)),
			And(Compare(StrictEquals, a, b), lt(b, c)),
		},
		{
			// operands are never interpreted: a comparison
			// inside a call argument is carried through
			lt(CallByName("f", eq(a, b)), c),
			lt(CallByName("f", eq(a, b)), c),
		},
		{
			// a right-nested ordering comparison is not a
			// chain shape the parser can produce; it is an
			// explicitly parenthesized operand, a < (b < c),
			// and stays opaque
			lt(a, lt(b, c)),
			lt(a, lt(b, c)),
		},
	}
	for i := range testcases {
		got := Flatten(testcases[i].before)
		if !Equivalent(got, testcases[i].after) {
			t.Errorf("case %d: %q flattens to %q, want %q",
				i, ToString(testcases[i].before), ToString(got), ToString(testcases[i].after))
		}
	}
}

// the mixed chain from a full left-to-right source
// expression 'a < b == c < d == e < f != g < h';
// ordering operators bind tighter, equality operators
// associate left, so the parser shape is
// !=( ==( ==( <(a,b), <(c,d) ), <(e,f) ), <(g,h) )
func mixedChain() Node {
	a, b, c, d := Ident("a"), Ident("b"), Ident("c"), Ident("d")
	e, f, g, h := Ident("e"), Ident("f"), Ident("g"), Ident("h")
	return neq(
		eq(
			eq(lt(a, b), lt(c, d)),
			lt(e, f),
		),
		lt(g, h),
	)
}

func TestFlattenMixedChain(t *testing.T) {
	a, b, c, d := Ident("a"), Ident("b"), Ident("c"), Ident("d")
	e, f, g, h := Ident("e"), Ident("f"), Ident("g"), Ident("h")
	want := And(
		And(
			And(
				And(
					And(
						And(lt(a, b), eq(b, c)),
						lt(c, d),
					),
					eq(d, e),
				),
				lt(e, f),
			),
			neq(f, g),
		),
		lt(g, h),
	)
	got := Flatten(mixedChain())
	if !Equivalent(got, want) {
		t.Errorf("got %q, want %q", ToString(got), ToString(want))
	}
}

func TestFlattenIdempotent(t *testing.T) {
	a, b, c := Ident("a"), Ident("b"), Ident("c")
	testcases := []Node{
		lt(a, b),
		chain(a, []CmpOp{Less, LessEquals}, b, c),
		eq(a, lt(b, c)),
		mixedChain(),
		Or(Negate(chain(a, []CmpOp{Less, Less}, b, c)), gt(a, c)),
	}
	for i := range testcases {
		once := Flatten(testcases[i])
		twice := Flatten(once)
		if !Equivalent(once, twice) {
			t.Errorf("case %d: flatten not idempotent: %q then %q",
				i, ToString(once), ToString(twice))
		}
	}
}

func TestFlattenSharesMiddleOperand(t *testing.T) {
	mid := CallByName("f", Ident("x"))
	in := chain(Ident("a"), []CmpOp{Less, Less}, mid, Ident("c"))
	out := Flatten(in).(*Logical)
	left := out.Left.(*Comparison)
	right := out.Right.(*Comparison)
	if left.Right != Node(mid) || right.Left != Node(mid) {
		t.Fatal("middle operand was duplicated instead of shared")
	}
}

func TestFlattenDoesNotMutate(t *testing.T) {
	in := chain(Ident("a"), []CmpOp{Less, Less}, Ident("b"), Ident("c"))
	snap := Copy(in)
	Flatten(in)
	if !Equivalent(in, snap) {
		t.Fatalf("input mutated: %q, want %q", ToString(in), ToString(snap))
	}
}

func TestFlattenNoNestedComparisons(t *testing.T) {
	testcases := []Node{
		chain(Ident("a"), []CmpOp{Less, Less, Less}, Ident("b"), Ident("c"), Ident("d")),
		mixedChain(),
	}
	for i := range testcases {
		var bad []Node
		walkfn(Flatten(testcases[i]), func(n Node) {
			c, ok := n.(*Comparison)
			if !ok {
				return
			}
			if _, ok := c.Left.(*Comparison); ok {
				bad = append(bad, c)
			}
			if _, ok := c.Right.(*Comparison); ok {
				bad = append(bad, c)
			}
		})
		if len(bad) > 0 {
			t.Errorf("case %d: output still contains chained comparison %q", i, ToString(bad[0]))
		}
	}
}

type visitfn func(Node)

func (f visitfn) Visit(n Node) Visitor {
	if n == nil {
		return nil
	}
	f(n)
	return f
}

func walkfn(n Node, f func(Node)) {
	Walk(visitfn(f), n)
}
