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

import "fmt"

// ErrorKind enumerates the ways an expression
// can fail the rewrite grammar.
type ErrorKind int

const (
	// NoComparisonFound means the expression
	// contains no comparison at all.
	NoComparisonFound ErrorKind = iota
	// InvalidRootShape means the root of the
	// expression is not a comparison or a
	// combinator, even though a comparison is
	// buried somewhere inside it.
	InvalidRootShape
	// IncompleteCombinatorBranch means a branch
	// of an AND/OR/NOT does not bottom out in
	// a comparison.
	IncompleteCombinatorBranch
	// NestedRewriteNotAllowed means an
	// already-rewritten expression appears inside
	// the rewrite target; the inner expression is
	// no longer in comparison form, so the outer
	// rewrite cannot be applied.
	NestedRewriteNotAllowed
)

func (k ErrorKind) String() string {
	switch k {
	case NoComparisonFound:
		return "no comparison found"
	case InvalidRootShape:
		return "root is not a comparison or combinator"
	case IncompleteCombinatorBranch:
		return "combinator branch contains no comparison"
	case NestedRewriteNotAllowed:
		return "nested rewritten expression"
	default:
		return "<unknown error kind>"
	}
}

// ValidationError is the error type returned from
// Validate when an expression does not satisfy the
// rewrite grammar. At is the smallest offending subtree.
type ValidationError struct {
	Kind ErrorKind
	At   Node
}

// Error implements error
func (e *ValidationError) Error() string {
	return fmt.Sprintf("cannot rewrite %q: %s", ToString(e.At), e.Kind)
}

func errv(kind ErrorKind, at Node) *ValidationError {
	return &ValidationError{Kind: kind, At: at}
}

// Validate checks that n is a rewritable comparison
// expression:
//
//  1. the expression contains at least one comparison,
//  2. every branch of every combinator (AND/OR/NOT)
//     bottoms out in a comparison, and
//  3. the root is itself a comparison or a combinator.
//
// Single-expression Blocks are unwrapped transparently
// before the rules run. An expression that nests an
// already-rewritten tree is rejected with
// NestedRewriteNotAllowed.
//
// Validation is deterministic: re-running it on the same
// input yields the same result. On failure the returned
// error is a *ValidationError citing the smallest
// offending subtree; an invalid tree is never passed
// through to rewriting.
func Validate(n Node) error {
	if at := findRewritten(n); at != nil {
		return errv(NestedRewriteNotAllowed, at)
	}
	n = deblock(n)
	switch n.(type) {
	case *Comparison:
		return nil
	case *Logical, *Not:
		return checkBranches(n)
	default:
		if containsComparison(n) {
			return errv(InvalidRootShape, n)
		}
		return errv(NoComparisonFound, n)
	}
}

// checkBranches enforces combinator completeness:
// every combinator argument must be a comparison or a
// combinator whose own arguments are complete.
// The scan is iterative; recursion depth must not be
// bound to input depth.
func checkBranches(root Node) error {
	stack := appendBranches(nil, root)
	for len(stack) > 0 {
		n := deblock(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		switch n.(type) {
		case *Comparison:
			// complete branch
		case *Logical, *Not:
			stack = appendBranches(stack, n)
		default:
			return errv(IncompleteCombinatorBranch, n)
		}
	}
	return nil
}

func appendBranches(stack []Node, n Node) []Node {
	switch n := n.(type) {
	case *Logical:
		return append(stack, n.Left, n.Right)
	case *Not:
		return append(stack, n.Expr)
	}
	return stack
}

// appendChildren pushes every child of n, including
// uninterpreted operand sub-trees
func appendChildren(stack []Node, n Node) []Node {
	switch n := n.(type) {
	case *Comparison:
		return append(stack, n.Left, n.Right)
	case *Logical:
		return append(stack, n.Left, n.Right)
	case *Not:
		return append(stack, n.Expr)
	case *Block:
		return append(stack, n.Body)
	case *Call:
		return append(stack, n.Args...)
	case *OrderCall:
		return append(stack, n.Left, n.Right)
	}
	return stack
}

// findRewritten scans the whole tree, operands included,
// for the output form of a previous rewrite
func findRewritten(root Node) Node {
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if oc, ok := n.(*OrderCall); ok {
			return oc
		}
		stack = appendChildren(stack, n)
	}
	return nil
}

func containsComparison(root Node) bool {
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if _, ok := n.(*Comparison); ok {
			return true
		}
		stack = appendChildren(stack, n)
	}
	return false
}
