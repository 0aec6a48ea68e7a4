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

import (
	"fmt"

	"github.com/SnellerInc/cmpexpr/ord"
)

// cmpOutcome maps each comparison operator to the test of
// a three-way comparator result that implements it:
//
//	left <op> right  =>  cmp(left, right) == want   (negate=false)
//	                     cmp(left, right) != want   (negate=true)
//
// built once; consulted by the rewriter and the evaluator
var cmpOutcome = [...]struct {
	want   ord.Ordering
	negate bool
}{
	Equals:          {ord.Equal, false},
	NotEquals:       {ord.Equal, true},
	StrictEquals:    {ord.Equal, false},
	StrictNotEquals: {ord.Equal, true},
	Less:            {ord.Less, false},
	LessEquals:      {ord.Greater, true},
	Greater:         {ord.Greater, false},
	GreaterEquals:   {ord.Less, true},
}

// Outcome returns the expected three-way comparator
// result for this call, plus whether the test of that
// result is negated. The evaluated call yields
//
//	(order(left, right) == want) != negate
func (o *OrderCall) Outcome() (want ord.Ordering, negate bool) {
	e := &cmpOutcome[o.Op]
	return e.want, e.negate
}

// comparw replaces every elementary comparison with the
// comparator call that implements it; combinators pass
// through with their children rewritten, and comparison
// operands are never descended into.
type comparw struct {
	mode CallMode
	cmp  ord.Comparator
}

func (c comparw) Rewrite(n Node) Node {
	cm, ok := n.(*Comparison)
	if !ok {
		return n
	}
	return &OrderCall{
		Mode:  c.mode,
		Op:    cm.Op,
		Cmp:   c.cmp,
		Left:  cm.Left,
		Right: cm.Right,
	}
}

func (c comparw) Walk(n Node) Rewriter {
	switch n.(type) {
	case *Logical, *Not:
		return c
	}
	// operands are carried through uninterpreted
	return nil
}

// RewriteDefault validates n, flattens its comparison
// chains, and rewrites every elementary comparison into
// a call of the default structural ordering. The
// generated calls route through a helper that raises a
// diagnostic notice at evaluation time when either
// operand is a composite value.
//
// n itself is never modified; on success the result is a
// new tree that is guaranteed to evaluate to a boolean.
func RewriteDefault(n Node) (Node, error) {
	return rewriteCmp(n, NaturalCall, nil)
}

// RewriteWith is RewriteDefault with the ordering
// supplied by the comparator domain cmp instead of the
// default structural ordering. The strict-identity
// operators (===, !==) have no meaning stricter than the
// domain's own EQUAL outcome; calls generated for them
// behave as plain ==/!= and raise a notice at evaluation
// time.
func RewriteWith(n Node, cmp ord.Comparator) (Node, error) {
	if cmp == nil {
		return nil, fmt.Errorf("expr.RewriteWith: nil comparator")
	}
	return rewriteCmp(n, DomainCall, cmp)
}

func rewriteCmp(n Node, mode CallMode, cmp ord.Comparator) (Node, error) {
	if err := Validate(n); err != nil {
		return nil, err
	}
	return Rewrite(comparw{mode: mode, cmp: cmp}, Flatten(n)), nil
}

// bindrw re-binds a comparator domain onto decoded trees
type bindrw struct {
	cmp ord.Comparator
}

func (b bindrw) Rewrite(n Node) Node {
	oc, ok := n.(*OrderCall)
	if !ok || oc.Mode != DomainCall {
		return n
	}
	return &OrderCall{
		Mode:  oc.Mode,
		Op:    oc.Op,
		Cmp:   b.cmp,
		Left:  oc.Left,
		Right: oc.Right,
	}
}

func (b bindrw) Walk(n Node) Rewriter {
	switch n.(type) {
	case *Logical, *Not:
		return b
	}
	return nil
}

// BindComparator returns n with cmp bound to every
// domain-mode comparator call. Comparator handles are
// opaque and do not survive Encode, so a decoded tree
// must be re-bound before it is evaluated.
func BindComparator(n Node, cmp ord.Comparator) Node {
	return Rewrite(bindrw{cmp: cmp}, n)
}
