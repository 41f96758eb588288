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

// Package codegen lowers this compiler's ast trees to LLVM SSA IR. It
// plays the exact role the teacher's core/codegen package plays for the
// gapil compiler (a Module owning declared functions, a per-Function
// builder that hoists allocas into the entry block, lvalue/rvalue helpers)
// with github.com/llir/llvm's ir/types/constant/enum packages standing in
// for the teacher's cgo llvm/bindings/go/llvm calls (see SPEC_FULL.md §4A
// for why: that import path needs a local LLVM install and is not a
// fetchable module outside Google's own tree).
package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"

	"github.com/PiJoules/c-sub000/diag"
	"github.com/PiJoules/c-sub000/sema"
	"github.com/PiJoules/c-sub000/token"
)

// Module wraps one *ir.Module under construction, plus the bookkeeping
// this compiler's lowering needs across top-level nodes: the Sema it
// queries for type facts, the map of already-declared IR functions/
// globals (so a second reference to the same name reuses the same IR
// value instead of redeclaring it), and a struct/union LLVM-type cache
// keyed by tag (so two references to "struct Point" share one types.Type,
// matching LLVM's requirement that GEP/load/store agree on element type).
type Module struct {
	IR   *ir.Module
	sema *sema.Sema

	funcs   map[string]*ir.Func
	globals map[string]*ir.Global

	aggregateTypes map[string]*types.StructType

	debug     bool
	debugUnit *metadata.Tuple

	strCounter int
}

// NewModule returns a Module backed by a fresh *ir.Module named name,
// ready to have top-level nodes lowered into it one at a time (spec §2).
// When emitDebug is set it attaches one debug-info compile unit, matching
// spec §6's "attaches a debug-info compile unit... so call sites carry a
// debug location"; per §6, the actual line numbers this compiler emits
// are placeholders (line=0/line=1).
func NewModule(name string, s *sema.Sema, emitDebug bool) *Module {
	m := &Module{
		IR:             ir.NewModule(),
		sema:           s,
		funcs:          make(map[string]*ir.Func),
		globals:        make(map[string]*ir.Global),
		aggregateTypes: make(map[string]*types.StructType),
		debug:          emitDebug,
	}
	m.IR.SourceFilename = name
	if emitDebug {
		m.debugUnit = &metadata.Tuple{
			Fields: []metadata.Field{
				metadata.String{Value: "c-sub000"},
				metadata.String{Value: name},
			},
		}
		m.IR.NamedMetadataDefs["llvm.dbg.cu"] = &metadata.NamedMetadataDef{
			Nodes: []metadata.Node{m.debugUnit},
		}
	}
	return m
}

// subprogramFor attaches a one-entry placeholder debug subprogram node
// for fn, matching spec §6's "per-function subprograms so call sites
// carry a debug location"; this compiler records only the function's name
// and a placeholder line, not full DWARF type descriptors, since nothing
// in SPEC_FULL.md reads these back (spec §6 only requires their presence).
func (m *Module) subprogramFor(fn *ir.Func) {
	if !m.debug {
		return
	}
	sp := &metadata.Tuple{
		Fields: []metadata.Field{
			metadata.String{Value: fn.Name()},
			metadata.Int64{Value: 1},
		},
	}
	m.IR.NamedMetadataDefs["llvm.dbg.sp."+fn.Name()] = &metadata.NamedMetadataDef{
		Nodes: []metadata.Node{sp},
	}
}

// fail builds a fatal Unsupported diagnostic (spec §7's "unsupported
// construct" category: unhandled implicit-cast combinations and unhandled
// constant-eval cases).
func fail(pos token.Pos, format string, args ...interface{}) error {
	return diag.Errorf(diag.Unsupported, pos, format, args...)
}
