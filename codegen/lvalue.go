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
	"github.com/PiJoules/c-sub000/token"
)

// lvalue is the address this compiler's lowering computes for any
// expression that designates storage (spec §5's "lvalue/rvalue split"):
// the pointer to the value, plus the C type that pointer's pointee holds
// so the caller can load/store/GEP through it correctly.
type lvalue struct {
	addr value.Value
	ty   ast.Type
}

// lowerLValue computes the address expr designates, per spec §5. Only a
// subset of expressions are ever lvalues: a DeclRef to a variable, a
// dereference, an index, a member access, or a cast of one of those whose
// LLVM type is unchanged by the cast (parentheses leave no node of their
// own); every other expression kind is a rvalue-only construct and
// it is a sema-level error (caught before lowering) to take its address.
func (f *Function) lowerLValue(expr ast.Expr) (*lvalue, error) {
	switch e := expr.(type) {
	case *ast.DeclRef:
		return f.lvalueDeclRef(e)
	case *ast.UnOp:
		if e.Op == ast.UnaryDeref {
			ptr, err := f.lowerRValue(e.Operand)
			if err != nil {
				return nil, err
			}
			pointeeTy, err := f.m.sema.InferType(e, f.locals)
			if err != nil {
				return nil, err
			}
			return &lvalue{addr: ptr, ty: pointeeTy}, nil
		}
		return nil, fail(e.Pos(), "expression is not an lvalue")
	case *ast.IndexExpr:
		return f.lvalueIndex(e)
	case *ast.MemberAccess:
		return f.lvalueMember(e)
	case *ast.Cast:
		inner, err := f.lowerLValue(e.Operand)
		if err != nil {
			return nil, err
		}
		from, err := f.m.llvmType(e.Pos(), inner.ty)
		if err != nil {
			return nil, err
		}
		to, err := f.m.llvmType(e.Pos(), e.Type)
		if err != nil {
			return nil, err
		}
		if !from.Equal(to) {
			return nil, fail(e.Pos(), "expression is not an lvalue")
		}
		return &lvalue{addr: inner.addr, ty: e.Type}, nil
	default:
		return nil, fail(expr.Pos(), "expression is not an lvalue")
	}
}

func (f *Function) lvalueDeclRef(e *ast.DeclRef) (*lvalue, error) {
	if addr, ok := f.allocas[e.Name]; ok {
		return &lvalue{addr: addr, ty: f.locals[e.Name]}, nil
	}
	g, err := f.m.globalAddr(e.Pos(), e.Name)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// lvalueIndex computes a[i]'s address via GEP. An array-typed base is
// indexed directly (its IR value already is the aggregate, addressed via
// its own lvalue); a pointer-typed base is first loaded as a rvalue and
// then indexed from that loaded address, matching the array-to-pointer
// decay spec §5 requires everywhere but sizeof/alignof/&.
func (f *Function) lvalueIndex(e *ast.IndexExpr) (*lvalue, error) {
	baseTy, err := f.m.sema.InferType(e.Base, f.locals)
	if err != nil {
		return nil, err
	}
	idx, err := f.lowerRValue(e.Index)
	if err != nil {
		return nil, err
	}
	elemTy, err := f.m.sema.InferType(e, f.locals)
	if err != nil {
		return nil, err
	}
	llElem, err := f.m.llvmType(e.Pos(), elemTy)
	if err != nil {
		return nil, err
	}
	if _, isArray := f.m.sema.Flatten(baseTy).(*ast.ArrayType); isArray {
		base, err := f.lowerLValue(e.Base)
		if err != nil {
			return nil, err
		}
		zero := constant.NewInt(types.I64, 0)
		addr := f.cur.NewGetElementPtr(elemForGEP(f.m, base.ty), base.addr, zero, idx)
		return &lvalue{addr: addr, ty: elemTy}, nil
	}
	basePtr, err := f.lowerRValue(e.Base)
	if err != nil {
		return nil, err
	}
	addr := f.cur.NewGetElementPtr(llElem, basePtr, idx)
	return &lvalue{addr: addr, ty: elemTy}, nil
}

// elemForGEP returns the LLVM element type a GEP into a value of C type ty
// should use: the array's own LLVM type when ty is an array (so the first
// GEP index walks the array's storage, matching the [N x T]* pointer an
// array's lvalue carries), else ty's own LLVM element type.
func elemForGEP(m *Module, ty ast.Type) types.Type {
	llty, err := m.llvmType(token.Pos{}, ty)
	if err != nil {
		return types.I8
	}
	return llty
}

func (f *Function) lvalueMember(e *ast.MemberAccess) (*lvalue, error) {
	var base *lvalue
	var err error
	if e.Arrow {
		ptr, perr := f.lowerRValue(e.Base)
		if perr != nil {
			return nil, perr
		}
		baseTy, terr := f.m.sema.InferType(e.Base, f.locals)
		if terr != nil {
			return nil, terr
		}
		pt, ok := f.m.sema.Flatten(baseTy).(*ast.PointerType)
		if !ok {
			return nil, fail(e.Pos(), "-> requires a pointer operand")
		}
		base = &lvalue{addr: ptr, ty: pt.Pointee}
	} else {
		base, err = f.lowerLValue(e.Base)
		if err != nil {
			return nil, err
		}
	}
	isUnion := false
	var members []*ast.Member
	switch agg := f.m.sema.Flatten(base.ty).(type) {
	case *ast.StructType:
		members = f.membersOf(agg.Tag, agg.Members, false)
	case *ast.UnionType:
		members = f.membersOf(agg.Tag, agg.Members, true)
		isUnion = true
	default:
		return nil, fail(e.Pos(), "member access on a non-aggregate type")
	}
	for i, mem := range members {
		if mem.Name != e.Member {
			continue
		}
		if isUnion {
			llMemTy, err := f.m.llvmType(e.Pos(), mem.Type)
			if err != nil {
				return nil, err
			}
			addr := f.cur.NewBitCast(base.addr, types.NewPointer(llMemTy))
			return &lvalue{addr: addr, ty: mem.Type}, nil
		}
		aggTy, err := f.m.llvmType(e.Pos(), base.ty)
		if err != nil {
			return nil, err
		}
		zero := constant.NewInt(types.I32, 0)
		idx := constant.NewInt(types.I32, int64(i))
		addr := f.cur.NewGetElementPtr(aggTy, base.addr, zero, idx)
		return &lvalue{addr: addr, ty: mem.Type}, nil
	}
	return nil, fail(e.Pos(), "no member named %q", e.Member)
}

func (f *Function) membersOf(tag string, members []*ast.Member, isUnion bool) []*ast.Member {
	if members != nil {
		return members
	}
	if isUnion {
		if u := f.m.sema.LookupUnion(tag); u != nil {
			return u.Members
		}
		return nil
	}
	if st := f.m.sema.LookupStruct(tag); st != nil {
		return st.Members
	}
	return nil
}
