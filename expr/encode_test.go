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
	"os"
	"testing"
)

func TestEncodeRoundtrip(t *testing.T) {
	testcases := []Node{
		lt(Ident("a"), Integer(3)),
		And(
			chain(Ident("a"), []CmpOp{Less, LessEquals}, Float(2.5), Ident("c")),
			Negate(Compare(StrictNotEquals, String("s"), Bool(true))),
		),
		Or(
			lt(CallByName("f", Ident("x"), Integer(1)), Ident("y")),
			&Block{Body: gt(Ident("p"), Ident("q"))},
		),
	}
	for i := range testcases {
		buf, err := Encode(testcases[i])
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		got, err := Decode(buf)
		if err != nil {
			t.Fatalf("case %d: %v\n%s", i, err, buf)
		}
		if !Equivalent(got, testcases[i]) {
			t.Errorf("case %d: decoded %q, want %q",
				i, ToString(got), ToString(testcases[i]))
		}
	}
}

func TestEncodeIntegerPrecision(t *testing.T) {
	// integers above 2^53 are not representable as
	// float64; the decoder must not round them
	testcases := []Integer{
		Integer(1<<60 + 1),
		Integer(-(1 << 60) - 1),
		Integer(1<<63 - 1),
		Integer(-1 << 63),
	}
	for i := range testcases {
		in := eq(Ident("n"), testcases[i])
		buf, err := Encode(in)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		got, err := Decode(buf)
		if err != nil {
			t.Fatalf("case %d: %v\n%s", i, err, buf)
		}
		if !Equivalent(got, in) {
			t.Errorf("case %d: decoded %q, want %q",
				i, ToString(got), ToString(in))
		}
	}
}

func TestEncodeRewritten(t *testing.T) {
	out, err := RewriteDefault(chain(Ident("a"), []CmpOp{Less, Less}, Ident("b"), Ident("c")))
	if err != nil {
		t.Fatal(err)
	}
	buf, err := Encode(out)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !Equivalent(got, out) {
		t.Errorf("decoded %q, want %q", ToString(got), ToString(out))
	}
}

func TestDecodeFixture(t *testing.T) {
	buf, err := os.ReadFile("testdata/chain.yaml")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	want := And(
		lt(Ident("lo"), Ident("mid")),
		lt(Ident("mid"), CallByName("limit", Integer(100))),
	)
	if !Equivalent(got, want) {
		t.Errorf("fixture decodes to %q, want %q", ToString(got), ToString(want))
	}
}

func TestDecodeErrors(t *testing.T) {
	testcases := []string{
		`5`,
		`{"value": 3}`,
		`{"type": "nope"}`,
		`{"type": "int", "value": 1.5}`,
		`{"type": "cmp", "op": "<=>", "left": {"type": "int", "value": 1}, "right": {"type": "int", "value": 2}}`,
		`{"type": "logical", "op": "NAND", "left": {"type": "bool", "value": true}, "right": {"type": "bool", "value": false}}`,
	}
	for i := range testcases {
		if _, err := Decode([]byte(testcases[i])); err == nil {
			t.Errorf("case %d: Decode(%s) succeeded", i, testcases[i])
		}
	}
}
