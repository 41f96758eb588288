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

package sema

import (
	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/diag"
	"github.com/PiJoules/c-sub000/token"
)

// ConstKind tags the three shapes a ConstValue can hold, per spec §4.4:
// "a tagged result — Bool, Int, or UnsignedLongLong".
type ConstKind int

const (
	ConstBool ConstKind = iota
	ConstInt
	ConstULongLong
)

// ConstValue is the result of compile-time constant evaluation.
type ConstValue struct {
	Kind ConstKind
	B    bool
	I    int64
	U    uint64
}

// Int returns v's value as a signed int64 regardless of its Kind, the
// numeric promotion spec §4.4 requires for "comparison across tagged
// kinds".
func (v ConstValue) Int() int64 {
	switch v.Kind {
	case ConstBool:
		if v.B {
			return 1
		}
		return 0
	case ConstULongLong:
		return int64(v.U)
	default:
		return v.I
	}
}

// IsZero reports whether v is the zero value of its kind, the condition
// static_assert and dead-branch elimination both test.
func (v ConstValue) IsZero() bool {
	switch v.Kind {
	case ConstBool:
		return !v.B
	case ConstULongLong:
		return v.U == 0
	default:
		return v.I == 0
	}
}

func cvInt(i int64) ConstValue   { return ConstValue{Kind: ConstInt, I: i} }
func cvBool(b bool) ConstValue   { return ConstValue{Kind: ConstBool, B: b} }
func cvULong(u uint64) ConstValue { return ConstValue{Kind: ConstULongLong, U: u} }

// ConstEval evaluates expr as a compile-time constant, per the closed set
// spec §4.4 lists: integer/bool literals, DeclRefs into enum values or
// globals with constant initializers, sizeof/alignof, unary minus, the
// binary operators ==, <, +, /, <<, >>, |, and ternary on a constant
// condition. locals may be nil; it is only consulted to infer the type of
// a sizeof/alignof operand expression. A DeclRef is resolved against enum
// values and globals only, never against locals, so a local variable is
// never a compile-time constant here.
func (s *Sema) ConstEval(expr ast.Expr, locals map[string]ast.Type) (ConstValue, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		if e.Kind == ast.UnsignedLongLong || e.Kind == ast.UnsignedLong {
			return cvULong(e.Value), nil
		}
		return cvInt(int64(e.Value)), nil
	case *ast.BoolLit:
		return cvBool(e.Value), nil
	case *ast.CharLit:
		return cvInt(int64(e.Value)), nil
	case *ast.DeclRef:
		if v, _, ok := s.LookupEnumValue(e.Name); ok {
			return cvInt(v), nil
		}
		if g, ok := s.LookupGlobal(e.Name).(*ast.GlobalVarDecl); ok && g.Init != nil {
			return s.ConstEval(g.Init, nil)
		}
		return ConstValue{}, diag.Semaf(e.Pos(), "%q is not a compile-time constant", e.Name)
	case *ast.SizeOfExpr:
		ty, err := s.operandType(e.Pos(), e.Expr, e.Type, locals)
		if err != nil {
			return ConstValue{}, err
		}
		n, err := s.SizeOf(e.Pos(), ty)
		if err != nil {
			return ConstValue{}, err
		}
		return cvULong(n), nil
	case *ast.AlignOfExpr:
		ty, err := s.operandType(e.Pos(), e.Expr, e.Type, locals)
		if err != nil {
			return ConstValue{}, err
		}
		n, err := s.AlignOf(e.Pos(), ty)
		if err != nil {
			return ConstValue{}, err
		}
		return cvULong(n), nil
	case *ast.UnOp:
		if e.Op != ast.UnaryNeg {
			return ConstValue{}, diag.Unsupportedf(e.Pos(), "unary operator is not a constant expression")
		}
		v, err := s.ConstEval(e.Operand, locals)
		if err != nil {
			return ConstValue{}, err
		}
		return cvInt(-v.Int()), nil
	case *ast.BinOp:
		return s.constEvalBinOp(e, locals)
	case *ast.Conditional:
		cond, err := s.ConstEval(e.Cond, locals)
		if err != nil {
			return ConstValue{}, err
		}
		if !cond.IsZero() {
			return s.ConstEval(e.Then, locals)
		}
		return s.ConstEval(e.Else, locals)
	default:
		return ConstValue{}, diag.Unsupportedf(expr.Pos(), "expression is not a compile-time constant")
	}
}

// constEvalBinOp evaluates the binary operators spec §4.4 lists as
// constant-foldable: ==, <, +, /, <<, >>, |. Every other BinaryOp
// (including all assignments, which have no meaning as a constant
// expression) is Unsupported here.
func (s *Sema) constEvalBinOp(e *ast.BinOp, locals map[string]ast.Type) (ConstValue, error) {
	lhs, err := s.ConstEval(e.LHS, locals)
	if err != nil {
		return ConstValue{}, err
	}
	rhs, err := s.ConstEval(e.RHS, locals)
	if err != nil {
		return ConstValue{}, err
	}
	l, r := lhs.Int(), rhs.Int()
	switch e.Op {
	case ast.BinEq:
		return cvBool(l == r), nil
	case ast.BinLt:
		return cvBool(l < r), nil
	case ast.BinAdd:
		return cvInt(l + r), nil
	case ast.BinDiv:
		if r == 0 {
			return ConstValue{}, diag.Semaf(e.Pos(), "division by zero in constant expression")
		}
		return cvInt(l / r), nil
	case ast.BinShl:
		return cvInt(l << uint(r)), nil
	case ast.BinShr:
		return cvInt(l >> uint(r)), nil
	case ast.BinBitOr:
		return cvInt(l | r), nil
	default:
		return ConstValue{}, diag.Unsupportedf(e.Pos(), "binary operator is not a constant expression")
	}
}

// operandType returns ty if set, otherwise the inferred type of expr; used
// by both SizeOfExpr and AlignOfExpr, exactly one of whose Expr/Type
// fields is ever populated (spec §3).
func (s *Sema) operandType(pos token.Pos, expr ast.Expr, ty ast.Type, locals map[string]ast.Type) (ast.Type, error) {
	if ty != nil {
		return ty, nil
	}
	return s.InferType(expr, locals)
}
