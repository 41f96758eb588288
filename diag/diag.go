// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diag holds the small error taxonomy this compiler reports
// through: a Kind tag plus a source Pos, used by package sema and package
// codegen the same way package parser's own Error type is used by package
// parser. Unlike parse.ErrorList in the teacher codebase (which collects
// every error before reporting), this compiler's policy is abort-on-first
// (spec §7), so Diagnostic itself satisfies error and there is no list.
package diag

import (
	"fmt"

	"github.com/PiJoules/c-sub000/token"
)

// Kind categorizes a Diagnostic for callers that want to branch on it; it
// is also printed as part of the Diagnostic's error text. The driver does
// not branch on it.
type Kind int

const (
	Lex Kind = iota
	Parse
	Sema
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex error"
	case Parse:
		return "parse error"
	case Sema:
		return "semantic error"
	case Unsupported:
		return "unsupported construct"
	default:
		return "error"
	}
}

// Diagnostic is one fatal compiler error, reported once and immediately
// aborting (spec §7: "no recovery, abort on first error").
type Diagnostic struct {
	Kind    Kind
	Pos     token.Pos
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Kind, d.Message)
}

// Errorf builds a Diagnostic of the given kind at pos.
func Errorf(kind Kind, pos token.Pos, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Semaf is shorthand for Errorf(Sema, ...), the overwhelming majority of
// diagnostics raised outside package parser.
func Semaf(pos token.Pos, format string, args ...interface{}) *Diagnostic {
	return Errorf(Sema, pos, format, args...)
}

// Unsupportedf is shorthand for Errorf(Unsupported, ...), used for the
// handful of constructs this compiler deliberately does not implement
// (spec §1 Non-goals, §9 design notes).
func Unsupportedf(pos token.Pos, format string, args ...interface{}) *Diagnostic {
	return Errorf(Unsupported, pos, format, args...)
}
