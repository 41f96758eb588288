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

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/sema"
	"github.com/PiJoules/c-sub000/token"
)

// lowerConstExpr lowers a global initializer expression to an LLVM
// constant. Unlike a function body, a global initializer can never
// reference a runtime value, so this path never touches a Function or a
// basic block; it is this compiler's separate "constant-only" lowerer
// (spec §5), sharing Sema's ConstEval for the scalar arithmetic it needs
// and adding the handful of constant forms ConstEval itself doesn't cover:
// string/initializer-list literals, address-of-global, and struct/array
// initializer lists.
func (m *Module) lowerConstExpr(expr ast.Expr, target ast.Type) (constant.Constant, error) {
	switch e := expr.(type) {
	case *ast.InitializerList:
		return m.lowerConstInitializerList(e, target)
	case *ast.StringLit:
		return m.lowerConstString(e.Value)
	case *ast.UnOp:
		if e.Op == ast.UnaryAddr {
			return m.lowerConstAddr(e.Operand)
		}
	case *ast.Cast:
		inner, err := m.lowerConstExpr(e.Operand, nil)
		if err != nil {
			return nil, err
		}
		return m.castConst(e.Pos(), inner, e.Type, target)
	}
	v, err := m.sema.ConstEval(expr, nil)
	if err != nil {
		return nil, err
	}
	return m.constValueToConstant(expr.Pos(), v, target)
}

func (m *Module) constValueToConstant(pos token.Pos, v sema.ConstValue, target ast.Type) (constant.Constant, error) {
	if target == nil {
		return constant.NewInt(types.I64, v.Int()), nil
	}
	llty, err := m.llvmType(pos, target)
	if err != nil {
		return nil, err
	}
	if it, ok := llty.(*types.IntType); ok {
		return constant.NewInt(it, v.Int()), nil
	}
	if ft, ok := llty.(*types.FloatType); ok {
		return constant.NewFloat(ft, float64(v.Int())), nil
	}
	return constant.NewInt(types.I64, v.Int()), nil
}

func (m *Module) lowerConstString(s string) (constant.Constant, error) {
	data := constant.NewCharArrayFromString(s + "\x00")
	g := m.IR.NewGlobalDef(m.newGlobalTemp(".str"), data)
	g.Immutable = true
	zero := constant.NewInt(types.I32, 0)
	return constant.NewGetElementPtr(data.Type().(*types.ArrayType), g, zero, zero), nil
}

func (m *Module) newGlobalTemp(prefix string) string {
	m.strCounter++
	return prefix + itoa(m.strCounter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// lowerConstAddr lowers «&global-name» (or «&global[N]» for a constant
// array index) into the global itself or the equivalent constant GEP, the
// only forms of address-of this compiler accepts in a global initializer.
// Member access («&global.member») is not accepted.
func (m *Module) lowerConstAddr(expr ast.Expr) (constant.Constant, error) {
	switch e := expr.(type) {
	case *ast.DeclRef:
		if fn, ok := m.funcs[e.Name]; ok {
			return fn, nil
		}
		g, err := m.getOrDeclareGlobal(e.Pos(), e.Name)
		if err != nil {
			return nil, err
		}
		return g, nil
	case *ast.IndexExpr:
		base, err := m.lowerConstAddr(e.Base)
		if err != nil {
			return nil, err
		}
		idx, err := m.sema.ConstEval(e.Index, nil)
		if err != nil {
			return nil, err
		}
		baseTy, err := m.sema.InferType(e.Base, nil)
		if err != nil {
			return nil, err
		}
		llty, err := m.llvmType(e.Pos(), baseTy)
		if err != nil {
			return nil, err
		}
		zero := constant.NewInt(types.I64, 0)
		return constant.NewGetElementPtr(llty, base, zero, constant.NewInt(types.I64, idx.Int())), nil
	default:
		return nil, fail(expr.Pos(), "address-of target is not a constant expression")
	}
}

// castConst lowers a constant cast, the compile-time analogue of convert:
// int-to-pointer is the only non-identity form spec §5 requires to work in
// a global initializer (e.g. «void *p = (void*)0x1000;»).
func (m *Module) castConst(pos token.Pos, v constant.Constant, from, to ast.Type) (constant.Constant, error) {
	if m.sema.Compatible(from, to, true) {
		return v, nil
	}
	toFlat := m.sema.Flatten(to)
	if pt, ok := toFlat.(*ast.PointerType); ok {
		llty, err := m.llvmType(pos, pt)
		if err != nil {
			return nil, err
		}
		if iv, ok := v.(*constant.Int); ok {
			if iv.X.Sign() == 0 {
				return constant.NewNull(llty.(*types.PointerType)), nil
			}
		}
		return constant.NewIntToPtr(v, llty), nil
	}
	return v, nil
}

// lowerConstInitializerList lowers a brace initializer «{ ... }» into an
// IR aggregate constant whose element order follows target's own member/
// element order, filling any members/elements the initializer leaves
// unspecified with a zero value (spec §4's "trailing members not named by
// an initializer are zero-initialized").
func (m *Module) lowerConstInitializerList(e *ast.InitializerList, target ast.Type) (constant.Constant, error) {
	flat := m.sema.Flatten(target)
	switch t := flat.(type) {
	case *ast.ArrayType:
		llElem, err := m.llvmType(e.Pos(), t.Elem)
		if err != nil {
			return nil, err
		}
		n := len(e.Elems)
		if t.Size != nil {
			if sz, err := m.sema.ConstEval(t.Size, nil); err == nil {
				n = int(sz.Int())
			}
		}
		elems := make([]constant.Constant, n)
		for i := range elems {
			if i < len(e.Elems) {
				c, err := m.lowerConstExpr(e.Elems[i].Value, t.Elem)
				if err != nil {
					return nil, err
				}
				elems[i] = c
				continue
			}
			elems[i] = constant.NewZeroInitializer(llElem)
		}
		return constant.NewArray(types.NewArray(uint64(n), llElem), elems...), nil
	case *ast.StructType:
		members := m.resolveAggregateMembers(t.Tag, false)
		if members == nil {
			members = t.Members
		}
		llAgg, err := m.llvmAggregate(e.Pos(), t.Tag, members, false)
		if err != nil {
			return nil, err
		}
		fields := make([]constant.Constant, len(members))
		for i, mem := range members {
			if i < len(e.Elems) {
				c, err := m.lowerConstExpr(e.Elems[i].Value, mem.Type)
				if err != nil {
					return nil, err
				}
				fields[i] = c
				continue
			}
			fields[i] = constant.NewZeroInitializer(llAgg.Fields[i])
		}
		return constant.NewStruct(llAgg, fields...), nil
	default:
		if len(e.Elems) == 1 {
			return m.lowerConstExpr(e.Elems[0].Value, target)
		}
		return nil, fail(e.Pos(), "initializer list used on a non-aggregate type")
	}
}
