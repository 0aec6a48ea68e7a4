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
	"bytes"
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// trees serialize as tagged objects with a "type"
// discriminator, one tag per node kind; the YAML form is
// what testdata fixtures use, and since sigs.k8s.io/yaml
// round-trips through JSON, Decode accepts either syntax

// Encode serializes n as YAML.
//
// Comparator handles on domain-mode OrderCall nodes are
// opaque and are not serialized; use BindComparator to
// re-attach a domain after Decode.
func Encode(n Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("expr.Encode: nil node")
	}
	return yaml.Marshal(encodeNode(n))
}

// Decode is the inverse of Encode; it accepts YAML or JSON.
func Decode(buf []byte) (Node, error) {
	js, err := yaml.YAMLToJSON(buf)
	if err != nil {
		return nil, fmt.Errorf("expr.Decode: %w", err)
	}
	// numbers stay json.Number so the full int64
	// range survives decoding
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("expr.Decode: %w", err)
	}
	node, err := decodeValue(v)
	if err != nil {
		return nil, fmt.Errorf("expr.Decode: %w", err)
	}
	return node, nil
}

func encodeNode(n Node) map[string]interface{} {
	switch n := n.(type) {
	case Bool:
		return tagged("bool", "value", bool(n))
	case Integer:
		return tagged("int", "value", int64(n))
	case Float:
		return tagged("float", "value", float64(n))
	case String:
		return tagged("string", "value", string(n))
	case Ident:
		return tagged("ident", "name", string(n))
	case *Block:
		return tagged("block", "body", encodeNode(n.Body))
	case *Call:
		args := make([]interface{}, len(n.Args))
		for i := range n.Args {
			args[i] = encodeNode(n.Args[i])
		}
		m := tagged("call", "func", n.Func)
		m["args"] = args
		return m
	case *Comparison:
		m := tagged("cmp", "op", n.Op.String())
		m["left"] = encodeNode(n.Left)
		m["right"] = encodeNode(n.Right)
		return m
	case *Logical:
		m := tagged("logical", "op", n.Op.String())
		m["left"] = encodeNode(n.Left)
		m["right"] = encodeNode(n.Right)
		return m
	case *Not:
		return tagged("not", "inner", encodeNode(n.Expr))
	case *OrderCall:
		m := tagged("ordercall", "op", n.Op.String())
		m["mode"] = n.Mode.String()
		m["left"] = encodeNode(n.Left)
		m["right"] = encodeNode(n.Right)
		return m
	default:
		panic(fmt.Sprintf("expr.Encode: unexpected node %T", n))
	}
}

func tagged(typ, field string, v interface{}) map[string]interface{} {
	return map[string]interface{}{"type": typ, field: v}
}

func decodeValue(v interface{}) (Node, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an object, found %T", v)
	}
	typ, ok := m["type"].(string)
	if !ok {
		return nil, fmt.Errorf("object has no type tag")
	}
	switch typ {
	case "bool":
		b, ok := m["value"].(bool)
		if !ok {
			return nil, badfield(typ, "value")
		}
		return Bool(b), nil
	case "int":
		num, ok := m["value"].(json.Number)
		if !ok {
			return nil, badfield(typ, "value")
		}
		i, err := num.Int64()
		if err != nil {
			return nil, badfield(typ, "value")
		}
		return Integer(i), nil
	case "float":
		num, ok := m["value"].(json.Number)
		if !ok {
			return nil, badfield(typ, "value")
		}
		f, err := num.Float64()
		if err != nil {
			return nil, badfield(typ, "value")
		}
		return Float(f), nil
	case "string":
		s, ok := m["value"].(string)
		if !ok {
			return nil, badfield(typ, "value")
		}
		return String(s), nil
	case "ident":
		s, ok := m["name"].(string)
		if !ok {
			return nil, badfield(typ, "name")
		}
		return Ident(s), nil
	case "block":
		body, err := decodeValue(m["body"])
		if err != nil {
			return nil, err
		}
		return &Block{Body: body}, nil
	case "call":
		fn, ok := m["func"].(string)
		if !ok {
			return nil, badfield(typ, "func")
		}
		rawargs, ok := m["args"].([]interface{})
		if !ok {
			return nil, badfield(typ, "args")
		}
		args := make([]Node, len(rawargs))
		for i := range rawargs {
			arg, err := decodeValue(rawargs[i])
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return &Call{Func: fn, Args: args}, nil
	case "cmp":
		op, err := cmpOpNamed(m["op"])
		if err != nil {
			return nil, err
		}
		left, right, err := decodeSides(m)
		if err != nil {
			return nil, err
		}
		return &Comparison{Op: op, Left: left, Right: right}, nil
	case "logical":
		var op LogicalOp
		switch m["op"] {
		case "AND":
			op = OpAnd
		case "OR":
			op = OpOr
		default:
			return nil, badfield(typ, "op")
		}
		left, right, err := decodeSides(m)
		if err != nil {
			return nil, err
		}
		return &Logical{Op: op, Left: left, Right: right}, nil
	case "not":
		inner, err := decodeValue(m["inner"])
		if err != nil {
			return nil, err
		}
		return &Not{Expr: inner}, nil
	case "ordercall":
		op, err := cmpOpNamed(m["op"])
		if err != nil {
			return nil, err
		}
		var mode CallMode
		switch m["mode"] {
		case NaturalCall.String():
			mode = NaturalCall
		case DomainCall.String():
			mode = DomainCall
		default:
			return nil, badfield(typ, "mode")
		}
		left, right, err := decodeSides(m)
		if err != nil {
			return nil, err
		}
		return &OrderCall{Mode: mode, Op: op, Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
}

func decodeSides(m map[string]interface{}) (left, right Node, err error) {
	left, err = decodeValue(m["left"])
	if err != nil {
		return nil, nil, err
	}
	right, err = decodeValue(m["right"])
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func cmpOpNamed(v interface{}) (CmpOp, error) {
	for op := Equals; op <= GreaterEquals; op++ {
		if v == op.String() {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown comparison op %v", v)
}

func badfield(typ, field string) error {
	return fmt.Errorf("node type %q: bad or missing field %q", typ, field)
}
