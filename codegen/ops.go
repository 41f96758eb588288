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
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/diag"
	"github.com/PiJoules/c-sub000/sema"
	"github.com/PiJoules/c-sub000/token"
)

func (f *Function) lowerUnOp(e *ast.UnOp) (value.Value, ast.Type, error) {
	switch e.Op {
	case ast.UnaryAddr:
		lv, err := f.lowerLValue(e.Operand)
		if err != nil {
			return nil, nil, err
		}
		return lv.addr, f.m.sema.PointerTo(lv.ty, 0), nil
	case ast.UnaryDeref:
		lv, err := f.lowerLValue(e)
		if err != nil {
			return nil, nil, err
		}
		return f.loadLValue(lv)
	case ast.UnaryNot:
		v, ty, err := f.lowerRValueFull(e.Operand)
		if err != nil {
			return nil, nil, err
		}
		b, err := f.toBoolValue(v, ty)
		if err != nil {
			return nil, nil, err
		}
		neg := f.cur.NewXor(b, constant.NewInt(types.I1, 1))
		return f.zextBool(neg), f.m.sema.Builtin(ast.Bool), nil
	case ast.UnaryBitNot:
		v, ty, err := f.lowerRValueFull(e.Operand)
		if err != nil {
			return nil, nil, err
		}
		allOnes := constant.NewInt(v.Type().(*types.IntType), -1)
		return f.cur.NewXor(v, allOnes), ty, nil
	case ast.UnaryNeg:
		v, ty, err := f.lowerRValueFull(e.Operand)
		if err != nil {
			return nil, nil, err
		}
		if floatingLike(ty, f.m.sema) {
			return f.cur.NewFNeg(v), ty, nil
		}
		return f.cur.NewSub(constant.NewInt(v.Type().(*types.IntType), 0), v), ty, nil
	case ast.UnaryPreInc, ast.UnaryPreDec, ast.UnaryPostInc, ast.UnaryPostDec:
		return f.lowerIncDec(e)
	default:
		return nil, nil, fail(e.Pos(), "cannot lower unary operator %v", e.Op)
	}
}

// lowerIncDec lowers ++/-- in either fix position. A pointer operand steps
// by its pointee's size via GEP; everything else steps by the scalar unit
// (spec §5: "pointer arithmetic goes through GEP; every other `++`/`--`
// is an ordinary add/sub by one"). Post-fix forms return the value read
// before the update; pre-fix forms return the value after it.
func (f *Function) lowerIncDec(e *ast.UnOp) (value.Value, ast.Type, error) {
	lv, err := f.lowerLValue(e.Operand)
	if err != nil {
		return nil, nil, err
	}
	old, ty, err := f.loadLValue(lv)
	if err != nil {
		return nil, nil, err
	}
	dir := int64(1)
	if e.Op == ast.UnaryPreDec || e.Op == ast.UnaryPostDec {
		dir = -1
	}
	var updated value.Value
	if ptrTy, ok := pointerLike(ty, f.m.sema); ok {
		elemTy, err := f.m.llvmType(e.Pos(), ptrTy.Pointee)
		if err != nil {
			return nil, nil, err
		}
		updated = f.cur.NewGetElementPtr(elemTy, old, constant.NewInt(types.I64, dir))
	} else if floatingLike(ty, f.m.sema) {
		delta := constant.NewFloat(old.Type().(*types.FloatType), float64(dir))
		if dir > 0 {
			updated = f.cur.NewFAdd(old, delta)
		} else {
			updated = f.cur.NewFSub(old, constant.NewFloat(old.Type().(*types.FloatType), 1))
		}
	} else {
		one := constant.NewInt(old.Type().(*types.IntType), 1)
		if dir > 0 {
			updated = f.cur.NewAdd(old, one)
		} else {
			updated = f.cur.NewSub(old, one)
		}
	}
	f.cur.NewStore(updated, lv.addr)
	if e.Op == ast.UnaryPreInc || e.Op == ast.UnaryPreDec {
		return updated, ty, nil
	}
	return old, ty, nil
}

// lowerBinOp dispatches assignment (and compound assignment), comma,
// short-circuit logical operators, and the usual-arithmetic-conversion
// arithmetic/comparison operators.
func (f *Function) lowerBinOp(e *ast.BinOp) (value.Value, ast.Type, error) {
	switch {
	case e.Op == ast.BinAssign:
		return f.lowerAssign(e)
	case e.Op.IsAssign():
		return f.lowerCompoundAssign(e)
	case e.Op == ast.BinComma:
		if _, _, err := f.lowerRValueFull(e.LHS); err != nil {
			return nil, nil, err
		}
		return f.lowerRValueFull(e.RHS)
	case e.Op == ast.BinLogicalAnd || e.Op == ast.BinLogicalOr:
		v, err := f.lowerShortCircuit(e)
		if err != nil {
			return nil, nil, err
		}
		return f.zextBool(v), f.m.sema.Builtin(ast.Bool), nil
	}

	resultTy, err := f.m.sema.InferType(e, f.locals)
	if err != nil {
		return nil, nil, err
	}

	lhsTy, err := f.m.sema.InferType(e.LHS, f.locals)
	if err != nil {
		return nil, nil, err
	}
	if lp, ok := pointerLike(lhsTy, f.m.sema); ok && (e.Op == ast.BinAdd || e.Op == ast.BinSub) {
		return f.lowerPointerArith(e, lp)
	}

	lhs, lhsTy, err := f.lowerRValueFull(e.LHS)
	if err != nil {
		return nil, nil, err
	}
	rhs, rhsTy, err := f.lowerRValueFull(e.RHS)
	if err != nil {
		return nil, nil, err
	}

	if rp, ok := pointerLike(rhsTy, f.m.sema); ok && e.Op == ast.BinSub {
		if _, lhsPtr := pointerLike(lhsTy, f.m.sema); lhsPtr {
			return f.lowerPointerDiff(e.Pos(), lhs, rhs, rp)
		}
	}

	switch e.Op {
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinGt, ast.BinLe, ast.BinGe:
		if _, lp := pointerLike(lhsTy, f.m.sema); lp {
			return f.zextBool(f.comparePointers(e.Op, lhs, rhs)), resultTy, nil
		}
	}

	common := commonArith(lhsTy, rhsTy, f.m.sema)
	lhs, err = f.convert(e.Pos(), lhs, lhsTy, common)
	if err != nil {
		return nil, nil, err
	}
	rhs, err = f.convert(e.Pos(), rhs, rhsTy, common)
	if err != nil {
		return nil, nil, err
	}

	v, err := f.arith(e.Pos(), e.Op, lhs, rhs, common)
	return v, resultTy, err
}

func commonArith(a, b ast.Type, s *sema.Sema) ast.Type {
	af, aok := s.Flatten(a).(*ast.BuiltinType)
	bf, bok := s.Flatten(b).(*ast.BuiltinType)
	if aok && bok {
		if sema.IsFloating(af.Kind) && !sema.IsFloating(bf.Kind) {
			return af
		}
		if sema.IsFloating(bf.Kind) && !sema.IsFloating(af.Kind) {
			return bf
		}
		if sema.IsFloating(af.Kind) && sema.IsFloating(bf.Kind) {
			if sema.BuiltinSize(af.Kind) >= sema.BuiltinSize(bf.Kind) {
				return af
			}
			return bf
		}
		return s.Builtin(sema.UsualArithmeticConversion(af.Kind, bf.Kind))
	}
	return a
}

// arith lowers the usual-arithmetic-conversion binary operators once both
// operands already share ty, selecting the signed/unsigned/float opcode
// variant ty's signedness calls for.
func (f *Function) arith(pos token.Pos, op ast.BinaryOp, lhs, rhs value.Value, ty ast.Type) (value.Value, error) {
	isFloat := floatingLike(ty, f.m.sema)
	isSigned := signed(ty, f.m.sema)
	switch op {
	case ast.BinAdd:
		if isFloat {
			return f.cur.NewFAdd(lhs, rhs), nil
		}
		return f.cur.NewAdd(lhs, rhs), nil
	case ast.BinSub:
		if isFloat {
			return f.cur.NewFSub(lhs, rhs), nil
		}
		return f.cur.NewSub(lhs, rhs), nil
	case ast.BinMul:
		if isFloat {
			return f.cur.NewFMul(lhs, rhs), nil
		}
		return f.cur.NewMul(lhs, rhs), nil
	case ast.BinDiv:
		if isFloat {
			return f.cur.NewFDiv(lhs, rhs), nil
		}
		if isSigned {
			return f.cur.NewSDiv(lhs, rhs), nil
		}
		return f.cur.NewUDiv(lhs, rhs), nil
	case ast.BinMod:
		if isFloat {
			return f.cur.NewFRem(lhs, rhs), nil
		}
		if isSigned {
			return f.cur.NewSRem(lhs, rhs), nil
		}
		return f.cur.NewURem(lhs, rhs), nil
	case ast.BinBitAnd:
		return f.cur.NewAnd(lhs, rhs), nil
	case ast.BinBitOr:
		return f.cur.NewOr(lhs, rhs), nil
	case ast.BinBitXor:
		return f.cur.NewXor(lhs, rhs), nil
	case ast.BinShl:
		return f.cur.NewShl(lhs, rhs), nil
	case ast.BinShr:
		if isSigned {
			return f.cur.NewAShr(lhs, rhs), nil
		}
		return f.cur.NewLShr(lhs, rhs), nil
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinGt, ast.BinLe, ast.BinGe:
		if isFloat {
			return f.zextBool(f.cur.NewFCmp(floatPred(op), lhs, rhs)), nil
		}
		return f.zextBool(f.cur.NewICmp(intPred(op, isSigned), lhs, rhs)), nil
	default:
		return nil, diag.Unsupportedf(pos, "binary operator %v is not supported by this lowering", op)
	}
}

func floatPred(op ast.BinaryOp) enum.FPred {
	switch op {
	case ast.BinEq:
		return enum.FPredOEQ
	case ast.BinNe:
		return enum.FPredONE
	case ast.BinLt:
		return enum.FPredOLT
	case ast.BinGt:
		return enum.FPredOGT
	case ast.BinLe:
		return enum.FPredOLE
	default:
		return enum.FPredOGE
	}
}

func intPred(op ast.BinaryOp, isSigned bool) enum.IPred {
	switch op {
	case ast.BinEq:
		return enum.IPredEQ
	case ast.BinNe:
		return enum.IPredNE
	case ast.BinLt:
		if isSigned {
			return enum.IPredSLT
		}
		return enum.IPredULT
	case ast.BinGt:
		if isSigned {
			return enum.IPredSGT
		}
		return enum.IPredUGT
	case ast.BinLe:
		if isSigned {
			return enum.IPredSLE
		}
		return enum.IPredULE
	default:
		if isSigned {
			return enum.IPredSGE
		}
		return enum.IPredUGE
	}
}

func (f *Function) comparePointers(op ast.BinaryOp, lhs, rhs value.Value) value.Value {
	return f.cur.NewICmp(intPred(op, false), lhs, rhs)
}

// zextBool widens a raw i1 truth value to the 8-bit bool representation
// every C-typed bool rvalue must carry (spec §5: "zero-extended back to
// the 8-bit bool representation").
func (f *Function) zextBool(v value.Value) value.Value {
	return f.cur.NewZExt(v, types.I8)
}

// lowerPointerArith lowers pointer+int / int+pointer / pointer-int via GEP,
// per spec §5.
func (f *Function) lowerPointerArith(e *ast.BinOp, ptrTy *ast.PointerType) (value.Value, ast.Type, error) {
	lhs, _, err := f.lowerRValueFull(e.LHS)
	if err != nil {
		return nil, nil, err
	}
	rhs, _, err := f.lowerRValueFull(e.RHS)
	if err != nil {
		return nil, nil, err
	}
	elemTy, err := f.m.llvmType(e.Pos(), ptrTy.Pointee)
	if err != nil {
		return nil, nil, err
	}
	idx := rhs
	if _, isPtr := lhs.Type().(*types.PointerType); !isPtr {
		lhs, idx = idx, lhs
	}
	if e.Op == ast.BinSub {
		idx = f.cur.NewSub(constant.NewInt(idx.Type().(*types.IntType), 0), idx)
	}
	gep := f.cur.NewGetElementPtr(elemTy, lhs, idx)
	return gep, ptrTy, nil
}

// lowerPointerDiff lowers pointer-pointer, the byte difference divided by
// the pointee's size (spec §5).
func (f *Function) lowerPointerDiff(pos token.Pos, lhs, rhs value.Value, ptrTy *ast.PointerType) (value.Value, ast.Type, error) {
	lhsInt := f.cur.NewPtrToInt(lhs, types.I64)
	rhsInt := f.cur.NewPtrToInt(rhs, types.I64)
	diff := f.cur.NewSub(lhsInt, rhsInt)
	elemSize, err := f.m.sema.SizeOf(pos, ptrTy.Pointee)
	if err != nil {
		return nil, nil, err
	}
	if elemSize == 0 {
		elemSize = 1
	}
	result := f.cur.NewSDiv(diff, constant.NewInt(types.I64, int64(elemSize)))
	return result, f.m.sema.Builtin(ast.Long), nil
}

// lowerShortCircuit lowers && and || with explicit basic blocks: the RHS
// block is only entered when the LHS doesn't already decide the result,
// and a phi merges the two possible i1 outcomes (spec §5's "short-circuit
// evaluation").
func (f *Function) lowerShortCircuit(e *ast.BinOp) (value.Value, error) {
	lhsVal, err := f.lowerBool(e.LHS)
	if err != nil {
		return nil, err
	}
	lhsBlk := f.cur
	rhsBlk := f.IR.NewBlock("")
	mergeBlk := f.IR.NewBlock("")

	if e.Op == ast.BinLogicalAnd {
		f.cur.NewCondBr(lhsVal, rhsBlk, mergeBlk)
	} else {
		f.cur.NewCondBr(lhsVal, mergeBlk, rhsBlk)
	}

	f.cur = rhsBlk
	rhsVal, err := f.lowerBool(e.RHS)
	if err != nil {
		return nil, err
	}
	rhsEndBlk := f.cur
	f.cur.NewBr(mergeBlk)

	f.cur = mergeBlk
	phi := f.cur.NewPhi(
		ir.NewIncoming(lhsVal, lhsBlk),
		ir.NewIncoming(rhsVal, rhsEndBlk),
	)
	return phi, nil
}
