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

// Package driver wires package lexer, package parser, package sema, and
// package codegen into one pipeline: the whole translation unit is lexed
// and parsed first, and then each top-level node in turn is checked
// against Sema's namespaces and lowered to IR before the next node is
// checked. Parsing is not interleaved with checking and lowering. This
// plays the role the teacher's gapil/compiler.Compile function plays for
// the gapil pipeline (drive resolve-then-lower one declaration at a time),
// adapted from "collect every error, report them all" to this compiler's
// abort-on-first policy (spec §7).
package driver

import (
	"log"
	"strings"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/codegen"
	"github.com/PiJoules/c-sub000/diag"
	"github.com/PiJoules/c-sub000/lexer"
	"github.com/PiJoules/c-sub000/parser"
	"github.com/PiJoules/c-sub000/sema"
)

// Driver owns the Sema and Module state that persists across every
// top-level node of one translation unit.
type Driver struct {
	Sema   *sema.Sema
	Module *codegen.Module

	// Logger receives one DEBUG-level line per top-level node processed,
	// gated by the CLI's -v flag the same way every other package in this
	// repository defers its own verbosity decision to the caller rather
	// than reading a global flag (see cmd/ccc).
	Logger *log.Logger
}

// New returns a Driver ready to compile one translation unit into a module
// named name. emitDebug controls whether codegen attaches the debug-info
// compile unit and per-function subprograms spec §6 describes.
func New(name string, emitDebug bool, logger *log.Logger) *Driver {
	s := sema.New()
	return &Driver{
		Sema:   s,
		Module: codegen.NewModule(name, s, emitDebug),
		Logger: logger,
	}
}

// CompileSource lexes, parses, and lowers one translation unit's source
// text, returning the first fatal diagnostic encountered (spec §7: no
// recovery, abort on first error).
func (d *Driver) CompileSource(src string) error {
	lx := lexer.New(src)
	p, err := parser.New(lx)
	if err != nil {
		return err
	}
	nodes, err := p.ParseTranslationUnit()
	if err != nil {
		return err
	}
	for _, node := range nodes {
		d.Logger.Printf("[DEBUG] checking %s", dumpNode(node))
		if err := d.checkTopLevel(node); err != nil {
			return err
		}
		d.Logger.Printf("[DEBUG] lowering %s", dumpNode(node))
		if err := d.Module.LowerTopLevel(node); err != nil {
			return err
		}
	}
	return nil
}

// dumpNode renders node with ast.Fprint as a single line for the
// "checking"/"lowering" DEBUG log lines (SPEC_FULL.md §7A).
func dumpNode(node ast.TopLevel) string {
	var b strings.Builder
	ast.Fprint(&b, node)
	return strings.TrimRight(b.String(), "\n")
}

// checkTopLevel registers node's declaration into whichever of Sema's
// namespaces it belongs to (spec §3), the "Sema" half of the per-node
// Sema-then-lower step spec §2 requires run before codegen ever sees node.
func (d *Driver) checkTopLevel(node ast.TopLevel) error {
	switch n := node.(type) {
	case *ast.TypedefDecl:
		return d.Sema.DefineTypedef(n.Pos(), n.Name, n.Type)
	case *ast.StructDecl:
		return d.Sema.DeclareTag(n.Pos(), n.Type)
	case *ast.UnionDecl:
		return d.Sema.DeclareTag(n.Pos(), n.Type)
	case *ast.EnumDecl:
		return d.Sema.DeclareTag(n.Pos(), n.Type)
	case *ast.StaticAssertDecl:
		return nil
	case *ast.GlobalVarDecl:
		_, isFunc := n.Type.(*ast.FunctionType)
		return d.Sema.DeclareGlobal(n.Pos(), n.Name, n, !isFunc && n.Init != nil)
	case *ast.FunctionDef:
		return d.Sema.DeclareGlobal(n.Pos(), n.Name, n, true)
	default:
		return diag.Semaf(node.Pos(), "cannot check top-level node %T", node)
	}
}

