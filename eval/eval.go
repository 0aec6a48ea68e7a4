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

// Package eval executes rewritten comparison expressions.
//
// The rewriting pass in package expr only transforms
// trees; something still has to run them. This package is
// that consumer: it binds identifiers and functions to
// values, invokes the comparator calls the rewriter
// generated, and raises their evaluation-time notices
// through an ord.Sink.
package eval

import (
	"fmt"

	"github.com/SnellerInc/cmpexpr/expr"
	"github.com/SnellerInc/cmpexpr/ord"
)

// Func is a host function callable from a Call operand.
type Func func(args ...interface{}) (interface{}, error)

// Env supplies values for the opaque operands of a
// rewritten expression.
type Env struct {
	Vars  map[string]interface{}
	Funcs map[string]Func
}

// Evaluator executes rewritten trees against an Env.
//
// An Evaluator holds no per-run state and may be shared
// by concurrent evaluations as long as its Env and Sink
// are safe for concurrent use.
type Evaluator struct {
	Env Env
	// Notices receives evaluation-time diagnostics
	// (composite-operand comparisons under the natural
	// ordering, strict operators reinterpreted against a
	// domain comparator). A nil Notices discards them.
	Notices ord.Sink
}

// New constructs an Evaluator over env that reports
// notices to sink.
func New(env Env, sink ord.Sink) *Evaluator {
	return &Evaluator{Env: env, Notices: sink}
}

// EvalBool evaluates n and asserts the result is a
// boolean; rewritten trees always are.
func (e *Evaluator) EvalBool(n expr.Node) (bool, error) {
	v, err := e.Eval(n)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("eval: expression yields %T, not a boolean", v)
	}
	return b, nil
}

// Eval evaluates n.
//
// Operand sub-trees are evaluated at most once per Eval
// call: the middle operand shared by two comparisons of a
// flattened chain is computed once and its value reused.
func (e *Evaluator) Eval(n expr.Node) (interface{}, error) {
	s := &state{ev: e, seen: make(map[expr.Node]interface{})}
	return s.eval(n)
}

// state is the per-evaluation operand cache
type state struct {
	ev   *Evaluator
	seen map[expr.Node]interface{}
}

func (s *state) eval(n expr.Node) (interface{}, error) {
	switch n := n.(type) {
	case expr.Bool:
		return bool(n), nil
	case *expr.Block:
		return s.eval(n.Body)
	case *expr.Logical:
		return s.logical(n)
	case *expr.Not:
		inner, err := s.eval(n.Expr)
		if err != nil {
			return nil, err
		}
		b, ok := inner.(bool)
		if !ok {
			return nil, fmt.Errorf("eval: NOT of non-boolean %T", inner)
		}
		return !b, nil
	case *expr.OrderCall:
		return s.orderCall(n)
	case *expr.Comparison:
		return nil, fmt.Errorf("eval: comparison %q has not been rewritten", expr.ToString(n))
	default:
		return s.operand(n)
	}
}

func (s *state) logical(l *expr.Logical) (interface{}, error) {
	left, err := s.eval(l.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(bool)
	if !ok {
		return nil, fmt.Errorf("eval: %s of non-boolean %T", l.Op, left)
	}
	// short-circuit
	if l.Op == expr.OpAnd && !lb {
		return false, nil
	}
	if l.Op == expr.OpOr && lb {
		return true, nil
	}
	right, err := s.eval(l.Right)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(bool)
	if !ok {
		return nil, fmt.Errorf("eval: %s of non-boolean %T", l.Op, right)
	}
	return rb, nil
}

func (s *state) orderCall(c *expr.OrderCall) (interface{}, error) {
	left, err := s.operand(c.Left)
	if err != nil {
		return nil, err
	}
	right, err := s.operand(c.Right)
	if err != nil {
		return nil, err
	}
	var o ord.Ordering
	switch c.Mode {
	case expr.NaturalCall:
		nat := ord.Natural{Notices: s.ev.Notices}
		if c.Op.Strict() {
			o, err = nat.OrderStrict(left, right)
		} else {
			o, err = nat.Order(left, right)
		}
	case expr.DomainCall:
		if c.Cmp == nil {
			return nil, fmt.Errorf("eval: comparator call %q has no bound comparator", expr.ToString(c))
		}
		if c.Op.Strict() {
			s.notice("strict comparison %s reinterpreted as %s against a custom comparator",
				c.Op, plain(c.Op))
		}
		o, err = c.Cmp.Order(left, right)
	default:
		return nil, fmt.Errorf("eval: unknown call mode %d", c.Mode)
	}
	if err != nil {
		return nil, err
	}
	want, negate := c.Outcome()
	return (o == want) != negate, nil
}

func (s *state) notice(format string, args ...interface{}) {
	if s.ev.Notices != nil {
		s.ev.Notices.Notice(fmt.Sprintf(format, args...))
	}
}

func plain(op expr.CmpOp) expr.CmpOp {
	if op == expr.StrictEquals {
		return expr.Equals
	}
	return expr.NotEquals
}

// operand evaluates an uninterpreted operand sub-tree,
// caching the result by node so shared operands are
// computed once per evaluation
func (s *state) operand(n expr.Node) (interface{}, error) {
	if v, ok := s.seen[n]; ok {
		return v, nil
	}
	v, err := s.operandValue(n)
	if err != nil {
		return nil, err
	}
	s.seen[n] = v
	return v, nil
}

func (s *state) operandValue(n expr.Node) (interface{}, error) {
	switch n := n.(type) {
	case expr.Integer:
		return int64(n), nil
	case expr.Float:
		return float64(n), nil
	case expr.String:
		return string(n), nil
	case expr.Bool:
		return bool(n), nil
	case expr.Ident:
		v, ok := s.ev.Env.Vars[string(n)]
		if !ok {
			return nil, fmt.Errorf("eval: unbound identifier %q", string(n))
		}
		return v, nil
	case *expr.Block:
		return s.operand(n.Body)
	case *expr.Call:
		fn, ok := s.ev.Env.Funcs[n.Func]
		if !ok {
			return nil, fmt.Errorf("eval: unbound function %q", n.Func)
		}
		args := make([]interface{}, len(n.Args))
		for i := range n.Args {
			arg, err := s.operand(n.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return fn(args...)
	default:
		return nil, fmt.Errorf("eval: cannot evaluate operand %T", n)
	}
}
