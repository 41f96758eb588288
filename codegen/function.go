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

package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/token"
)

// Function builds the IR body of one FunctionDef. It hoists every local
// declaration's alloca into the entry block (spec §5: "every local
// variable's alloca is hoisted into the function's entry block, regardless
// of the lexical depth its declaration appears at"), while the current
// block moves freely through whatever control-flow graph the statements
// being lowered construct.
//
// locals/allocas are cloned wholesale at every new lexical scope (a
// compound statement, or the body attached to if/while/for/switch/case),
// so a declaration in an inner scope shadows an outer one for the
// remainder of that scope without mutating the outer scope's view (spec
// §5's scoping invariant). This mirrors the teacher's core/codegen
// approach of a small builder object carrying the block cursor plus
// whatever per-function bookkeeping a statement needs, generalized here
// to carry two maps instead of one symbol table.
type Function struct {
	m      *Module
	IR     *ir.Func
	entry  *ir.Block
	cur    *ir.Block
	retTy  ast.Type
	locals map[string]ast.Type
	allocas map[string]value.Value

	breakTargets    []*ir.Block
	continueTargets []*ir.Block
}

func (m *Module) newFunction(irFn *ir.Func, retTy ast.Type) *Function {
	entry := irFn.NewBlock("entry")
	return &Function{
		m:       m,
		IR:      irFn,
		entry:   entry,
		cur:     entry,
		retTy:   retTy,
		locals:  make(map[string]ast.Type),
		allocas: make(map[string]value.Value),
	}
}

// cloneScope returns a deep-enough copy of f's locals/allocas so the
// caller can restore f's maps to their pre-scope state after the scope's
// statements have been lowered.
func (f *Function) cloneScope() (locals map[string]ast.Type, allocas map[string]value.Value) {
	locals = make(map[string]ast.Type, len(f.locals))
	for k, v := range f.locals {
		locals[k] = v
	}
	allocas = make(map[string]value.Value, len(f.allocas))
	for k, v := range f.allocas {
		allocas[k] = v
	}
	return locals, allocas
}

// withScope runs body with a cloned locals/allocas map active, then
// restores f's maps to what they were before the call, implementing the
// scope-clone invariant described on Function.
func (f *Function) withScope(body func() error) error {
	savedLocals, savedAllocas := f.locals, f.allocas
	f.locals, f.allocas = f.cloneScope()
	err := body()
	f.locals, f.allocas = savedLocals, savedAllocas
	return err
}

// declareLocal allocates entry-block storage for a new local variable name
// of type ty, records it in the current scope, and returns the alloca.
// Redeclaring a name already visible in the current scope is a sema-level
// error caught before lowering ever reaches here; the only error this
// method returns is a failure to map ty to an LLVM type.
func (f *Function) declareLocal(name string, ty ast.Type) (value.Value, error) {
	llty, err := f.m.llvmType(token.Pos{}, ty)
	if err != nil {
		return nil, err
	}
	// Allocating directly into f.entry rather than f.cur is the entire
	// hoisting mechanism: wherever lowering currently is in the CFG, the
	// storage for a new local always lands in the function's first block.
	inst := f.entry.NewAlloca(llty)
	inst.LocalName = name
	var a value.Value = inst
	f.locals[name] = ty
	f.allocas[name] = a
	return a, nil
}

// terminated reports whether f.cur already ends in a terminator (ret/br/
// switch/unreachable), so callers lowering a sequence of statements know
// not to lower anything unreachable after it (spec §5: "a block already
// terminated by an earlier return/break/continue is left alone").
func (f *Function) terminated() bool {
	return f.cur.Term != nil
}
