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

// Package ord defines the three-way ordering vocabulary
// shared by the expression rewriter and its evaluator.
//
// A Comparator is the pluggable "comparator domain" that
// rewritten comparisons are evaluated against; Natural is
// the default structural ordering used when no domain
// comparator is supplied.
package ord

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Ordering is the result of a three-way comparison.
type Ordering int8

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "LESS"
	case Equal:
		return "EQUAL"
	case Greater:
		return "GREATER"
	default:
		return "<unknown ordering>"
	}
}

// From converts the sign of a conventional
// comparison result (e.g. strings.Compare)
// into an Ordering.
func From(cmp int) Ordering {
	switch {
	case cmp < 0:
		return Less
	case cmp > 0:
		return Greater
	default:
		return Equal
	}
}

// Comparator is a comparator domain: a total three-way
// ordering over the value kinds the domain claims to
// support. Order may fail on values outside that domain;
// the error propagates unchanged to whoever is evaluating
// the rewritten expression.
type Comparator interface {
	Order(left, right interface{}) (Ordering, error)
}

// ComparatorFunc adapts a function to the Comparator interface.
type ComparatorFunc func(left, right interface{}) (Ordering, error)

func (f ComparatorFunc) Order(left, right interface{}) (Ordering, error) {
	return f(left, right)
}

// Reversed returns a Comparator that yields the
// opposite ordering of c.
func Reversed(c Comparator) Comparator {
	return ComparatorFunc(func(left, right interface{}) (Ordering, error) {
		o, err := c.Order(left, right)
		return -o, err
	})
}

// kind ranks partition the natural value domain;
// values of different kinds order by rank
const (
	rankNil = iota
	rankBool
	rankInt
	rankFloat
	rankString
	rankList
	rankRecord
)

func rankOf(v interface{}) (int, bool) {
	switch v.(type) {
	case nil:
		return rankNil, true
	case bool:
		return rankBool, true
	case int, int32, int64:
		return rankInt, true
	case float32, float64:
		return rankFloat, true
	case string:
		return rankString, true
	case []interface{}:
		return rankList, true
	case map[string]interface{}:
		return rankRecord, true
	default:
		return 0, false
	}
}

func composite(rank int) bool {
	return rank == rankList || rank == rankRecord
}

func tofloat(v interface{}) float64 {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	}
	panic("tofloat: non-numeric value")
}

// Natural is the default structural comparator.
// It implements a total order over the natural value
// domain (nil, booleans, numbers, strings, lists,
// string-keyed records), ordering across kinds by a
// fixed kind precedence.
//
// When either operand is a composite value (a list or
// a record), Order reports a notice through Notices
// before returning the structural result, since field
// order in records often carries semantics that a
// structural ordering silently ignores.
type Natural struct {
	// Notices receives composite-comparison notices.
	// A nil Notices suppresses them.
	Notices Sink
}

func (n Natural) notice(format string, args ...interface{}) {
	if n.Notices != nil {
		n.Notices.Notice(fmt.Sprintf(format, args...))
	}
}

// Order computes the natural three-way ordering of left
// and right. Numbers compare by value regardless of
// integer/float representation.
func (n Natural) Order(left, right interface{}) (Ordering, error) {
	return n.order(left, right, false, true)
}

// OrderStrict is Order without numeric representation
// coercion: an integer and a float never compare Equal,
// even when they denote the same number. It is the
// ordering behind the strict-identity operators.
func (n Natural) OrderStrict(left, right interface{}) (Ordering, error) {
	return n.order(left, right, true, true)
}

func (n Natural) order(left, right interface{}, strict, outer bool) (Ordering, error) {
	lr, ok := rankOf(left)
	if !ok {
		return Equal, fmt.Errorf("ord: cannot order value of type %T", left)
	}
	rr, ok := rankOf(right)
	if !ok {
		return Equal, fmt.Errorf("ord: cannot order value of type %T", right)
	}
	if outer && (composite(lr) || composite(rr)) {
		n.notice("comparing composite values %T and %T using structural ordering", left, right)
	}
	if a, b := coarse(lr), coarse(rr); a != b {
		return From(a - b), nil
	}
	switch {
	case lr == rankNil:
		return Equal, nil
	case lr == rankBool:
		lb, rb := left.(bool), right.(bool)
		if lb == rb {
			return Equal, nil
		}
		if !lb {
			return Less, nil
		}
		return Greater, nil
	case lr == rankInt || lr == rankFloat:
		lf, rf := tofloat(left), tofloat(right)
		if lf != rf {
			return From(compareFloat(lf, rf)), nil
		}
		if strict && lr != rr {
			// same numeric value, different representation:
			// break the tie by kind rank so the order stays total
			return From(lr - rr), nil
		}
		return Equal, nil
	case lr == rankString:
		ls, rs := left.(string), right.(string)
		if ls == rs {
			return Equal, nil
		}
		if ls < rs {
			return Less, nil
		}
		return Greater, nil
	case lr == rankList:
		return n.orderList(left.([]interface{}), right.([]interface{}), strict)
	default:
		return n.orderRecord(left.(map[string]interface{}), right.(map[string]interface{}), strict)
	}
}

// coarse merges the two numeric ranks so that
// cross-representation comparisons hit the numeric path
func coarse(rank int) int {
	if rank == rankFloat {
		return rankInt
	}
	return rank
}

func compareFloat(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (n Natural) orderList(left, right []interface{}, strict bool) (Ordering, error) {
	for i := 0; i < len(left) && i < len(right); i++ {
		o, err := n.order(left[i], right[i], strict, false)
		if err != nil || o != Equal {
			return o, err
		}
	}
	return From(len(left) - len(right)), nil
}

func (n Natural) orderRecord(left, right map[string]interface{}, strict bool) (Ordering, error) {
	lk := sortedKeys(left)
	rk := sortedKeys(right)
	for i := 0; i < len(lk) && i < len(rk); i++ {
		if lk[i] != rk[i] {
			if lk[i] < rk[i] {
				return Less, nil
			}
			return Greater, nil
		}
		o, err := n.order(left[lk[i]], right[rk[i]], strict, false)
		if err != nil || o != Equal {
			return o, err
		}
	}
	return From(len(lk) - len(rk)), nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
