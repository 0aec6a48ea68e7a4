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

// Copy returns a deep copy of e.
//
// The copy is structural rather than an encode/decode
// roundtrip so that comparator handles on OrderCall
// nodes are preserved.
func Copy(e Node) Node {
	switch e := e.(type) {
	case *Comparison:
		return &Comparison{Op: e.Op, Left: Copy(e.Left), Right: Copy(e.Right)}
	case *Logical:
		return &Logical{Op: e.Op, Left: Copy(e.Left), Right: Copy(e.Right)}
	case *Not:
		return &Not{Expr: Copy(e.Expr)}
	case *Block:
		return &Block{Body: Copy(e.Body)}
	case *Call:
		args := make([]Node, len(e.Args))
		for i := range e.Args {
			args[i] = Copy(e.Args[i])
		}
		return &Call{Func: e.Func, Args: args}
	case *OrderCall:
		return &OrderCall{
			Mode:  e.Mode,
			Op:    e.Op,
			Cmp:   e.Cmp,
			Left:  Copy(e.Left),
			Right: Copy(e.Right),
		}
	default:
		// value nodes (Bool, Integer, Float, String, Ident)
		// are immutable and can be shared
		return e
	}
}
