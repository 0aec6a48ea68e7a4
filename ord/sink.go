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

package ord

import "log"

// Sink receives advisory notices raised while rewritten
// expressions are being evaluated. Notices are never
// errors: they do not change the result of the expression
// that raised them.
//
// Sinks are invoked once per offending evaluation;
// they are not buffered or de-duplicated here, so a Sink
// shared between concurrent evaluations must be safe for
// concurrent use.
type Sink interface {
	Notice(msg string)
}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(msg string)

func (f FuncSink) Notice(msg string) { f(msg) }

// NopSink discards all notices.
type NopSink struct{}

func (NopSink) Notice(string) {}

// LogSink returns a Sink that writes notices to l,
// or to the standard logger if l is nil.
func LogSink(l *log.Logger) Sink {
	if l == nil {
		return FuncSink(func(msg string) { log.Printf("notice: %s", msg) })
	}
	return FuncSink(func(msg string) { l.Printf("notice: %s", msg) })
}
