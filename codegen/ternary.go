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

	"github.com/PiJoules/c-sub000/ast"
	"github.com/llir/llvm/ir/value"
)

// lowerConditional lowers «cond ? then : else» with explicit basic blocks
// and a phi merging the two branches' (converted-to-a-common-type) values,
// the same structured-control-flow discipline every other branching
// construct in this package uses.
func (f *Function) lowerConditional(e *ast.Conditional) (value.Value, ast.Type, error) {
	resultTy, err := f.m.sema.InferType(e, f.locals)
	if err != nil {
		return nil, nil, err
	}
	cond, err := f.lowerBool(e.Cond)
	if err != nil {
		return nil, nil, err
	}

	thenBlk := f.IR.NewBlock("")
	elseBlk := f.IR.NewBlock("")
	mergeBlk := f.IR.NewBlock("")
	f.cur.NewCondBr(cond, thenBlk, elseBlk)

	f.cur = thenBlk
	thenVal, err := f.lowerRValueAs(e.Then, resultTy)
	if err != nil {
		return nil, nil, err
	}
	thenEndBlk := f.cur
	f.cur.NewBr(mergeBlk)

	f.cur = elseBlk
	elseVal, err := f.lowerRValueAs(e.Else, resultTy)
	if err != nil {
		return nil, nil, err
	}
	elseEndBlk := f.cur
	f.cur.NewBr(mergeBlk)

	f.cur = mergeBlk
	if resultTy == nil || isVoidType(f.m, resultTy) {
		return thenVal, resultTy, nil
	}
	phi := f.cur.NewPhi(
		ir.NewIncoming(thenVal, thenEndBlk),
		ir.NewIncoming(elseVal, elseEndBlk),
	)
	return phi, resultTy, nil
}

// lowerCast lowers an explicit C-style cast «(Type)Operand». A cast to
// void discards the operand's value entirely but still evaluates it for
// its side effects.
func (f *Function) lowerCast(e *ast.Cast) (value.Value, ast.Type, error) {
	v, srcTy, err := f.lowerRValueFull(e.Operand)
	if err != nil {
		return nil, nil, err
	}
	if isVoidType(f.m, e.Type) {
		return v, e.Type, nil
	}
	out, err := f.convert(e.Pos(), v, srcTy, e.Type)
	if err != nil {
		return nil, nil, err
	}
	return out, e.Type, nil
}
