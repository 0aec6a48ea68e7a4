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
	"strconv"
	"strings"

	"github.com/SnellerInc/cmpexpr/ord"

	"golang.org/x/exp/slices"
)

// Visitor is an interface that must
// be satisfied by the argument to Visit.
//
// A Visitor's Visit method is invoked for each node encountered by Walk. If
// the result visitor w is not nil, Walk visits each of the children of node
// with the visitor w, followed by a call of w.Visit(nil).
//
// (see also: ast.Visitor)
type Visitor interface {
	Visit(Node) Visitor
}

// Rewriter accepts a Node and returns
// a new node (or just its argument)
type Rewriter interface {
	// Rewrite is applied to nodes
	// in depth-first order, and each
	// node is re-written to use the
	// returned value.
	Rewrite(Node) Node

	// Walk is called during node traversal
	// and the returned Rewriter is used for
	// all the children of Node.
	// If the returned rewriter is nil,
	// then traversal does not proceed past Node.
	Walk(Node) Rewriter
}

type nonleaf interface {
	rewrite(r Rewriter) Node
}

// Rewrite recursively applies a Rewriter in depth-first order.
//
// Rewrite never mutates its input: nodes with rewritten
// children are replaced with freshly-constructed nodes.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	nl, ok := n.(nonleaf)
	if ok {
		rc := r.Walk(n)
		if rc != nil {
			n = nl.rewrite(rc)
		}
	}
	n = r.Rewrite(n)
	return n
}

// Walk traverses an AST in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w for
// each of the non-nil children of node, followed by a call of w.Visit(nil).
//
// (see also: ast.Walk)
func Walk(v Visitor, n Node) {
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

type Printable interface {
	// text should write the textual representation
	// of this node to dst, and should redact itself
	// if it is a constant and redact is true
	text(dst *strings.Builder, redact bool)
}

// Node is an expression AST node
type Node interface {
	Printable
	// Equals returns whether this node
	// is equivalent to another node.
	// Nodes are Equal if they are
	// syntactically equivalent or correspond
	// to equal numeric values.
	Equals(Node) bool

	walk(Visitor)
}

// Equal returns whether a and b are equivalent.
// a or b may be nil.
func Equal(a, b Node) bool {
	if a == nil {
		return b == nil
	}
	return b != nil && a.Equals(b)
}

// Equivalent returns whether two nodes are equivalent.
func Equivalent(a, b Node) bool {
	if a == b {
		return true
	}
	return a.Equals(b)
}

// ToString returns the string representation
// of this AST node and its children
func ToString(p Printable) string {
	if p == nil {
		return "<nil>"
	}
	var dst strings.Builder
	p.text(&dst, false)
	return dst.String()
}

// ToRedacted returns the string representation
// of this AST node and its children, but with all
// constant expressions replaced with random
// (deterministic) values.
func ToRedacted(p Printable) string {
	if p == nil {
		return "<nil>"
	}
	var dst strings.Builder
	p.text(&dst, true)
	return dst.String()
}

// CmpOp is a comparison operation type
type CmpOp int

const (
	Equals CmpOp = iota
	NotEquals

	// strict-identity aliases of
	// Equals and NotEquals

	StrictEquals
	StrictNotEquals

	// note: keep these in order
	// so that we can determine
	// quickly if we are performing
	// an ordinal comparison:

	Less
	LessEquals
	Greater
	GreaterEquals
)

func (c CmpOp) String() string {
	switch c {
	case Equals:
		return "=="
	case NotEquals:
		return "!="
	case StrictEquals:
		return "==="
	case StrictNotEquals:
		return "!=="
	case Less:
		return "<"
	case LessEquals:
		return "<="
	case Greater:
		return ">"
	case GreaterEquals:
		return ">="
	default:
		return "<unknown cmp op>"
	}
}

// Ordinal returns whether c is an
// ordering-class operator (<, <=, >, >=).
func (c CmpOp) Ordinal() bool {
	return c >= Less && c <= GreaterEquals
}

// Equality returns whether c is an
// equality-class operator, including
// the strict-identity aliases.
// Equality-class operators are symmetric
// in their operands.
func (c CmpOp) Equality() bool {
	return c >= Equals && c <= StrictNotEquals
}

// Strict returns whether c is one of the
// strict-identity aliases (===, !==).
func (c CmpOp) Strict() bool {
	return c == StrictEquals || c == StrictNotEquals
}

// Flip returns the operator that is equivalent to c if
// used with the operand order reversed.
func (c CmpOp) Flip() CmpOp {
	switch c {
	case Less:
		return Greater
	case LessEquals:
		return GreaterEquals
	case Greater:
		return Less
	case GreaterEquals:
		return LessEquals
	default:
		return c // equality-class ops are symmetric
	}
}

// Comparison is an elementary ordering or equality
// test between two operand sub-expressions.
//
// Operand sub-trees are carried through rewriting
// uninterpreted; only the comparison structure itself
// is subject to the grammar in Validate.
type Comparison struct {
	Op          CmpOp
	Left, Right Node
}

// Compare generates a comparison operation
// of the given type and with the given arguments
func Compare(op CmpOp, left, right Node) *Comparison {
	return &Comparison{Op: op, Left: left, Right: right}
}

func (c *Comparison) Equals(x Node) bool {
	ec, ok := x.(*Comparison)
	return ok && ec.Op == c.Op && c.Left.Equals(ec.Left) && c.Right.Equals(ec.Right)
}

func (c *Comparison) walk(v Visitor) {
	if c.Left != nil {
		Walk(v, c.Left)
	}
	if c.Right != nil {
		Walk(v, c.Right)
	}
}

func (c *Comparison) rewrite(r Rewriter) Node {
	return &Comparison{
		Op:    c.Op,
		Left:  Rewrite(r, c.Left),
		Right: Rewrite(r, c.Right),
	}
}

func (c *Comparison) text(dst *strings.Builder, redact bool) {
	// parenthesize a comparison operand so the printed
	// form re-associates the same way it is shaped
	if _, ok := c.Left.(*Comparison); ok {
		dst.WriteByte('(')
		c.Left.text(dst, redact)
		dst.WriteByte(')')
	} else {
		c.Left.text(dst, redact)
	}
	fmt.Fprintf(dst, " %s ", c.Op)
	if _, ok := c.Right.(*Comparison); ok {
		dst.WriteByte('(')
		c.Right.text(dst, redact)
		dst.WriteByte(')')
	} else {
		c.Right.text(dst, redact)
	}
}

// LogicalOp is a logical operation
type LogicalOp int

const (
	OpAnd LogicalOp = iota // A AND B
	OpOr                   // A OR B
)

func (l LogicalOp) String() string {
	switch l {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	}
	return "<unknown logical op>"
}

// Logical is a Node that represents
// a logical expression
type Logical struct {
	Op          LogicalOp
	Left, Right Node
}

// And yields '<left> AND <right>'
func And(left, right Node) *Logical {
	return &Logical{Op: OpAnd, Left: left, Right: right}
}

// Or yields '<left> OR <right>'
func Or(left, right Node) *Logical {
	return &Logical{Op: OpOr, Left: left, Right: right}
}

func (l *Logical) Equals(x Node) bool {
	xl, ok := x.(*Logical)
	return ok && l.Op == xl.Op && l.Left.Equals(xl.Left) && l.Right.Equals(xl.Right)
}

func (l *Logical) walk(v Visitor) {
	if l.Left != nil {
		Walk(v, l.Left)
	}
	if l.Right != nil {
		Walk(v, l.Right)
	}
}

func (l *Logical) rewrite(r Rewriter) Node {
	return &Logical{
		Op:    l.Op,
		Left:  Rewrite(r, l.Left),
		Right: Rewrite(r, l.Right),
	}
}

func (l *Logical) text(dst *strings.Builder, redact bool) {
	l.Left.text(dst, redact)
	fmt.Fprintf(dst, " %s ", l.Op)
	// without parens an infix rhs would re-associate
	if _, ok := l.Right.(*Logical); ok {
		dst.WriteByte('(')
		l.Right.text(dst, redact)
		dst.WriteByte(')')
	} else {
		l.Right.text(dst, redact)
	}
}

// Not yields
//
//	NOT (Expr)
type Not struct {
	Expr Node
}

// Negate yields 'NOT <inner>'
func Negate(inner Node) *Not {
	return &Not{Expr: inner}
}

func (n *Not) text(dst *strings.Builder, redact bool) {
	dst.WriteString("NOT (")
	n.Expr.text(dst, redact)
	dst.WriteByte(')')
}

func (n *Not) walk(v Visitor) {
	Walk(v, n.Expr)
}

func (n *Not) rewrite(r Rewriter) Node {
	return &Not{Expr: Rewrite(r, n.Expr)}
}

func (n *Not) Equals(x Node) bool {
	xn, ok := x.(*Not)
	return ok && n.Expr.Equals(xn.Expr)
}

// Block is a single-expression wrapper with no semantic
// weight (e.g. a braced block containing one expression).
// Validation and flattening unwrap Blocks transparently,
// so { a < b } behaves identically to a < b.
type Block struct {
	Body Node
}

func (b *Block) text(dst *strings.Builder, redact bool) {
	dst.WriteString("{ ")
	b.Body.text(dst, redact)
	dst.WriteString(" }")
}

func (b *Block) walk(v Visitor) {
	Walk(v, b.Body)
}

func (b *Block) rewrite(r Rewriter) Node {
	return &Block{Body: Rewrite(r, b.Body)}
}

func (b *Block) Equals(x Node) bool {
	xb, ok := x.(*Block)
	return ok && b.Body.Equals(xb.Body)
}

// deblock strips single-expression wrappers
func deblock(n Node) Node {
	for {
		b, ok := n.(*Block)
		if !ok {
			return n
		}
		n = b.Body
	}
}

type Bool bool

func (b Bool) text(dst *strings.Builder, redact bool) {
	if b {
		dst.WriteString("TRUE")
	} else {
		dst.WriteString("FALSE")
	}
}

func (b Bool) Equals(e Node) bool {
	eb, ok := e.(Bool)
	return ok && b == eb
}

func (b Bool) walk(v Visitor) {}

// String is a literal string AST node
type String string

func (s String) text(dst *strings.Builder, redact bool) {
	v := string(s)
	if redact {
		v = redactString(v)
	}
	dst.WriteString(strconv.Quote(v))
}

func (s String) walk(v Visitor) {}

func (s String) Equals(e Node) bool {
	es, ok := e.(String)
	return ok && s == es
}

// Integer is a literal integer AST node
type Integer int64

func (i Integer) text(dst *strings.Builder, redact bool) {
	var buf [32]byte
	v := int64(i)
	if redact {
		v = redactInt(v)
	}
	dst.Write(strconv.AppendInt(buf[:0], v, 10))
}

func (i Integer) walk(v Visitor) {}

func (i Integer) Equals(e Node) bool {
	ei, ok := e.(Integer)
	if ok {
		return ei == i
	}
	ef, ok := e.(Float)
	if ok {
		trunc := int64(ef)
		return float64(trunc) == float64(ef) && trunc == int64(i)
	}
	return false
}

// Float is a literal float AST node
type Float float64

func (f Float) text(dst *strings.Builder, redact bool) {
	var buf [32]byte
	v := float64(f)
	if redact {
		v = redactFloat(v)
	}
	dst.Write(strconv.AppendFloat(buf[:0], v, 'g', -1, 64))
}

func (f Float) walk(v Visitor) {}

func (f Float) Equals(e Node) bool {
	ef, ok := e.(Float)
	if ok {
		return f == ef
	}
	ei, ok := e.(Integer)
	if ok {
		return float64(f) == float64(int64(ei))
	}
	return false
}

// Ident is a top-level identifier
type Ident string

// Identifier produces an identifier
// node from an identifier string
func Identifier(x string) Ident { return Ident(x) }

func (i Ident) text(dst *strings.Builder, redact bool) {
	dst.WriteString(string(i))
}

func (i Ident) walk(v Visitor) {}

func (i Ident) Equals(x Node) bool {
	i2, ok := x.(Ident)
	return ok && i == i2
}

// Call is a call to an arbitrary function.
// It is opaque to the rewriting pass: a Call is never
// a valid rewrite target on its own, and a Call used
// as a comparison operand is carried through unchanged.
type Call struct {
	Func string // function name
	Args []Node // function arguments
}

// CallByName yields 'fn(args...)'
func CallByName(fn string, args ...Node) *Call {
	return &Call{Func: fn, Args: args}
}

func (c *Call) walk(v Visitor) {
	for i := range c.Args {
		Walk(v, c.Args[i])
	}
}

func (c *Call) rewrite(r Rewriter) Node {
	args := make([]Node, len(c.Args))
	for i := range c.Args {
		args[i] = Rewrite(r, c.Args[i])
	}
	return &Call{Func: c.Func, Args: args}
}

func (c *Call) Equals(x Node) bool {
	xc, ok := x.(*Call)
	return ok && c.Func == xc.Func &&
		slices.EqualFunc(c.Args, xc.Args, Equivalent)
}

func (c *Call) text(dst *strings.Builder, redact bool) {
	dst.WriteString(c.Func)
	dst.WriteByte('(')
	for i := range c.Args {
		if i > 0 {
			dst.WriteString(", ")
		}
		c.Args[i].text(dst, redact)
	}
	dst.WriteByte(')')
}

// CallMode selects how an OrderCall computes
// its three-way ordering.
type CallMode int

const (
	// NaturalCall evaluates via the default
	// structural ordering (ord.Natural).
	NaturalCall CallMode = iota
	// DomainCall delegates to the comparator
	// domain bound to the call.
	DomainCall
)

func (m CallMode) String() string {
	switch m {
	case NaturalCall:
		return "CMP"
	case DomainCall:
		return "ORDER"
	}
	return "<unknown call mode>"
}

// OrderCall is the rewriter's output form of an
// elementary comparison: a generated call of a three-way
// comparator on the two operands, fused with the test of
// its result against the expected Ordering (see Outcome).
//
// OrderCall nodes are only ever produced by RewriteDefault
// and RewriteWith; encountering one in rewrite input means
// the input nests an already-rewritten target, which
// Validate rejects.
type OrderCall struct {
	Mode CallMode
	// Op is the source comparison operator;
	// it selects the outcome test and, for the
	// strict-identity aliases, the comparison
	// mode diagnostics.
	Op CmpOp
	// Cmp is the comparator domain for DomainCall
	// nodes. It does not survive Encode; see
	// BindComparator.
	Cmp         ord.Comparator
	Left, Right Node
}

func (o *OrderCall) walk(v Visitor) {
	if o.Left != nil {
		Walk(v, o.Left)
	}
	if o.Right != nil {
		Walk(v, o.Right)
	}
}

func (o *OrderCall) rewrite(r Rewriter) Node {
	return &OrderCall{
		Mode:  o.Mode,
		Op:    o.Op,
		Cmp:   o.Cmp,
		Left:  Rewrite(r, o.Left),
		Right: Rewrite(r, o.Right),
	}
}

func (o *OrderCall) Equals(x Node) bool {
	xo, ok := x.(*OrderCall)
	return ok && o.Mode == xo.Mode && o.Op == xo.Op &&
		o.Left.Equals(xo.Left) && o.Right.Equals(xo.Right)
}

func (o *OrderCall) text(dst *strings.Builder, redact bool) {
	want, negate := o.Outcome()
	dst.WriteString(o.Mode.String())
	dst.WriteByte('(')
	o.Left.text(dst, redact)
	dst.WriteString(", ")
	o.Right.text(dst, redact)
	if negate {
		dst.WriteString(") != ")
	} else {
		dst.WriteString(") == ")
	}
	dst.WriteString(want.String())
}
