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
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := []Node{
		lt(Ident("a"), Ident("b")),
		chain(Integer(1), []CmpOp{Less, Less}, Integer(2), Integer(3)),
		And(lt(Ident("a"), Ident("b")), gt(Ident("c"), Ident("d"))),
		Or(
			Negate(eq(Ident("x"), Integer(0))),
			And(lt(Ident("a"), Ident("b")), neq(Ident("c"), Ident("d"))),
		),
		// blocks are unwrapped transparently
		&Block{Body: lt(Ident("a"), Ident("b"))},
		&Block{Body: &Block{Body: And(
			&Block{Body: lt(Ident("a"), Ident("b"))},
			gt(Ident("c"), Ident("d")),
		)}},
		// operands are never interpreted, even when
		// they contain odd shapes
		lt(CallByName("f", Bool(true)), Ident("b")),
		Compare(StrictNotEquals, Ident("a"), Ident("b")),
	}
	for i := range valid {
		if err := Validate(valid[i]); err != nil {
			t.Errorf("valid case %d %q: unexpected error %v", i, ToString(valid[i]), err)
		}
	}

	invalid := []struct {
		in   Node
		kind ErrorKind
		at   string // rendering of the offending subtree
	}{
		{Integer(5), NoComparisonFound, "5"},
		{Ident("x"), NoComparisonFound, "x"},
		{CallByName("f"), NoComparisonFound, "f()"},
		{
			// a comparison buried in an opaque root
			// does not make the root valid
			CallByName("my_func", lt(Ident("a"), Ident("b"))),
			InvalidRootShape,
			"my_func(a < b)",
		},
		{
			And(
				chain(Integer(1), []CmpOp{Less, Less}, Integer(2), Integer(3)),
				Bool(true),
			),
			IncompleteCombinatorBranch,
			"TRUE",
		},
		{
			Or(lt(Ident("a"), Ident("b")), Ident("ok")),
			IncompleteCombinatorBranch,
			"ok",
		},
		{
			Negate(Negate(Integer(1))),
			IncompleteCombinatorBranch,
			"1",
		},
		{
			// combinator branches must be comparisons or
			// combinators themselves, not opaque wrappers
			And(lt(Ident("a"), Ident("b")), CallByName("g", gt(Ident("c"), Ident("d")))),
			IncompleteCombinatorBranch,
			"g(c > d)",
		},
	}
	for i := range invalid {
		err := Validate(invalid[i].in)
		if err == nil {
			t.Errorf("invalid case %d %q: no error", i, ToString(invalid[i].in))
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("invalid case %d: error %v is not a *ValidationError", i, err)
			continue
		}
		if ve.Kind != invalid[i].kind {
			t.Errorf("invalid case %d %q: kind %s, want %s",
				i, ToString(invalid[i].in), ve.Kind, invalid[i].kind)
		}
		if got := ToString(ve.At); got != invalid[i].at {
			t.Errorf("invalid case %d: offending subtree %q, want %q", i, got, invalid[i].at)
		}
	}
}

func TestValidateDeterministic(t *testing.T) {
	in := And(lt(Ident("a"), Ident("b")), Bool(true))
	first := Validate(in)
	for i := 0; i < 3; i++ {
		err := Validate(in)
		if (err == nil) != (first == nil) || (err != nil && err.Error() != first.Error()) {
			t.Fatalf("validation not deterministic: %v then %v", first, err)
		}
	}
}

func TestValidateNestedRewrite(t *testing.T) {
	inner, err := RewriteDefault(lt(Ident("a"), Ident("b")))
	if err != nil {
		t.Fatal(err)
	}
	nested := []Node{
		inner,
		// a rewritten tree used as an operand of a new
		// rewrite target: the inner comparison has been
		// rewritten out of comparison form already
		Compare(Less, inner, Integer(3)),
		And(gt(Ident("c"), Ident("d")), &Block{Body: inner}),
		CallByName("f", inner),
	}
	for i := range nested {
		err := Validate(nested[i])
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Kind != NestedRewriteNotAllowed {
			t.Errorf("nested case %d: got %v, want NestedRewriteNotAllowed", i, err)
		}
	}
}

func TestValidationErrorText(t *testing.T) {
	err := Validate(Integer(5))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "no comparison found") {
		t.Errorf("unexpected error text %q", err.Error())
	}
}
