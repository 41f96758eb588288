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
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/PiJoules/c-sub000/ast"
)

// lowerAssign lowers a plain «lhs = rhs», converting rhs to lhs's type and
// storing through lhs's address. The result value of an assignment
// expression is the (already-converted) value stored, matching C's
// "assignment is itself an expression" rule.
func (f *Function) lowerAssign(e *ast.BinOp) (value.Value, ast.Type, error) {
	lv, err := f.lowerLValue(e.LHS)
	if err != nil {
		return nil, nil, err
	}
	v, err := f.lowerRValueAs(e.RHS, lv.ty)
	if err != nil {
		return nil, nil, err
	}
	f.cur.NewStore(v, lv.addr)
	return v, lv.ty, nil
}

// lowerCompoundAssign lowers «lhs op= rhs» as load-compute-store: load
// lhs once, apply e.Op.CompoundBase() between it and rhs using the usual
// arithmetic conversions, convert the result back to lhs's type, and store
// it. The lvalue's address is computed only once, matching C's rule that
// the left operand of a compound assignment is evaluated exactly once.
func (f *Function) lowerCompoundAssign(e *ast.BinOp) (value.Value, ast.Type, error) {
	lv, err := f.lowerLValue(e.LHS)
	if err != nil {
		return nil, nil, err
	}
	old, lhsTy, err := f.loadLValue(lv)
	if err != nil {
		return nil, nil, err
	}
	base := e.Op.CompoundBase()
	if base == ast.BinAdd || base == ast.BinSub {
		if ptrTy, ok := pointerLike(lhsTy, f.m.sema); ok {
			synthetic := &ast.BinOp{LHS: e.LHS, RHS: e.RHS, Op: base}
			v, _, err := f.lowerPointerArithValues(synthetic, old, ptrTy, e.RHS)
			if err != nil {
				return nil, nil, err
			}
			f.cur.NewStore(v, lv.addr)
			return v, lhsTy, nil
		}
	}
	rhs, rhsTy, err := f.lowerRValueFull(e.RHS)
	if err != nil {
		return nil, nil, err
	}
	common := commonArith(lhsTy, rhsTy, f.m.sema)
	oldConv, err := f.convert(e.Pos(), old, lhsTy, common)
	if err != nil {
		return nil, nil, err
	}
	rhsConv, err := f.convert(e.Pos(), rhs, rhsTy, common)
	if err != nil {
		return nil, nil, err
	}
	result, err := f.arith(e.Pos(), base, oldConv, rhsConv, common)
	if err != nil {
		return nil, nil, err
	}
	final, err := f.convert(e.Pos(), result, common, lhsTy)
	if err != nil {
		return nil, nil, err
	}
	f.cur.NewStore(final, lv.addr)
	return final, lhsTy, nil
}

// lowerPointerArithValues is lowerPointerArith's logic reused for compound
// assignment, where the LHS value has already been loaded rather than
// needing to be lowered fresh.
func (f *Function) lowerPointerArithValues(e *ast.BinOp, lhs value.Value, ptrTy *ast.PointerType, rhsExpr ast.Expr) (value.Value, ast.Type, error) {
	rhs, _, err := f.lowerRValueFull(rhsExpr)
	if err != nil {
		return nil, nil, err
	}
	elemTy, err := f.m.llvmType(e.Pos(), ptrTy.Pointee)
	if err != nil {
		return nil, nil, err
	}
	idx := rhs
	if e.Op == ast.BinSub {
		idx = f.cur.NewSub(zeroLike(idx), idx)
	}
	return f.cur.NewGetElementPtr(elemTy, lhs, idx), ptrTy, nil
}

func zeroLike(v value.Value) value.Value {
	return constant.NewInt(v.Type().(*types.IntType), 0)
}
