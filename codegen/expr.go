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
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/diag"
	"github.com/PiJoules/c-sub000/sema"
	"github.com/PiJoules/c-sub000/token"
)

// lowerRValue lowers expr for its value alone, discarding the C type the
// caller would need to interpret it; used only where the caller already
// knows the expected shape (an index, a deref target, a call callee).
func (f *Function) lowerRValue(expr ast.Expr) (value.Value, error) {
	v, _, err := f.lowerRValueFull(expr)
	return v, err
}

// lowerRValueTyped lowers expr and returns its value only; the inferred C
// type that lowerRValueFull also computes is discarded.
func (f *Function) lowerRValueTyped(expr ast.Expr) (value.Value, error) {
	v, _, err := f.lowerRValueFull(expr)
	return v, err
}

// lowerRValueAs lowers expr and applies the implicit conversion spec §5
// requires to make it usable as a value of type target (an assignment,
// initializer, return, or call-argument context).
func (f *Function) lowerRValueAs(expr ast.Expr, target ast.Type) (value.Value, error) {
	v, srcTy, err := f.lowerRValueFull(expr)
	if err != nil {
		return nil, err
	}
	return f.convert(expr.Pos(), v, srcTy, target)
}

// lowerBool lowers expr to an i1, applying the implicit scalar-to-bool
// conversion every condition context (if/while/for/&&/||/ternary) uses.
func (f *Function) lowerBool(expr ast.Expr) (value.Value, error) {
	if b, ok := expr.(*ast.BinOp); ok && (b.Op == ast.BinLogicalAnd || b.Op == ast.BinLogicalOr) {
		return f.lowerShortCircuit(b)
	}
	v, ty, err := f.lowerRValueFull(expr)
	if err != nil {
		return nil, err
	}
	return f.toBoolValue(v, ty)
}

// toBoolValue computes the raw i1 truth value of v (a value of C type ty),
// the comparison-against-zero half of the implicit to-bool conversion
// spec §5 describes; the 8-bit bool representation itself is produced by
// zero-extending this result (see zextBool), never by returning v as-is,
// since the stored bool representation is not guaranteed i1.
func (f *Function) toBoolValue(v value.Value, ty ast.Type) (value.Value, error) {
	flat := f.m.sema.Flatten(ty)
	switch t := flat.(type) {
	case *ast.BuiltinType:
		if sema.IsFloating(t.Kind) {
			return f.cur.NewFCmp(enum.FPredONE, v, constant.NewFloat(v.Type().(*types.FloatType), 0)), nil
		}
		zero := constant.NewInt(v.Type().(*types.IntType), 0)
		return f.cur.NewICmp(enum.IPredNE, v, zero), nil
	case *ast.PointerType:
		zero := constant.NewNull(v.Type().(*types.PointerType))
		return f.cur.NewICmp(enum.IPredNE, v, zero), nil
	default:
		zero := constant.NewInt(v.Type().(*types.IntType), 0)
		return f.cur.NewICmp(enum.IPredNE, v, zero), nil
	}
}

// lowerRValueFull is the single dispatch point every rvalue-producing
// expression kind goes through.
func (f *Function) lowerRValueFull(expr ast.Expr) (value.Value, ast.Type, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		ty := f.m.sema.Builtin(e.Kind)
		return constant.NewInt(f.m.llvmBuiltin(e.Kind).(*types.IntType), int64(e.Value)), ty, nil
	case *ast.BoolLit:
		ty := f.m.sema.Builtin(ast.Bool)
		b := int64(0)
		if e.Value {
			b = 1
		}
		return constant.NewInt(types.I8, b), ty, nil
	case *ast.CharLit:
		ty := f.m.sema.Builtin(ast.Char)
		return constant.NewInt(types.I8, int64(e.Value)), ty, nil
	case *ast.StringLit:
		return f.lowerStringLit(e)
	case *ast.PrettyFunction:
		return f.lowerStringConst(f.IR.Name, f.m.sema.StringLiteralType())
	case *ast.DeclRef:
		return f.lowerDeclRefValue(e)
	case *ast.UnOp:
		return f.lowerUnOp(e)
	case *ast.BinOp:
		return f.lowerBinOp(e)
	case *ast.Conditional:
		return f.lowerConditional(e)
	case *ast.Cast:
		return f.lowerCast(e)
	case *ast.IndexExpr, *ast.MemberAccess:
		lv, err := f.lowerLValue(expr)
		if err != nil {
			return nil, nil, err
		}
		return f.loadLValue(lv)
	case *ast.CallExpr:
		return f.lowerCallExpr(e)
	case *ast.SizeOfExpr, *ast.AlignOfExpr:
		return f.lowerSizeAlign(expr)
	case *ast.StmtExpr:
		return f.lowerStmtExprValue(e)
	default:
		return nil, nil, fail(expr.Pos(), "cannot lower expression %T", expr)
	}
}

func (f *Function) loadLValue(lv *lvalue) (value.Value, ast.Type, error) {
	if _, isArray := f.m.sema.Flatten(lv.ty).(*ast.ArrayType); isArray {
		// An array used as a value decays to the address of its first
		// element, per spec §5's array-to-pointer decay rule.
		zero := constant.NewInt(types.I32, 0)
		arrTy, err := f.m.llvmType(token.Pos{}, lv.ty)
		if err != nil {
			return nil, nil, err
		}
		decayed := f.cur.NewGetElementPtr(arrTy, lv.addr, zero, zero)
		elemTy := f.m.sema.Flatten(lv.ty).(*ast.ArrayType).Elem
		return decayed, f.m.sema.PointerTo(elemTy, 0), nil
	}
	llty, err := f.m.llvmType(token.Pos{}, lv.ty)
	if err != nil {
		return nil, nil, err
	}
	return f.cur.NewLoad(llty, lv.addr), lv.ty, nil
}

func (f *Function) lowerDeclRefValue(e *ast.DeclRef) (value.Value, ast.Type, error) {
	// A function name used as a value (a call callee, or a function
	// pointer) is the function itself, never loaded through a pointer.
	if _, ok := f.allocas[e.Name]; !ok {
		switch g := f.m.sema.LookupGlobal(e.Name).(type) {
		case *ast.FunctionDef:
			fn, err := f.m.getOrDeclareFunc(e.Pos(), e.Name)
			return fn, g.Type, err
		case *ast.GlobalVarDecl:
			if _, isFunc := g.Type.(*ast.FunctionType); isFunc {
				fn, err := f.m.getOrDeclareFunc(e.Pos(), e.Name)
				return fn, g.Type, err
			}
		}
	}
	lv, err := f.lowerLValue(e)
	if err != nil {
		return nil, nil, err
	}
	return f.loadLValue(lv)
}

func (f *Function) lowerStringLit(e *ast.StringLit) (value.Value, ast.Type, error) {
	return f.lowerStringConst(e.Value, f.m.sema.StringLiteralType())
}

func (f *Function) lowerStringConst(s string, ty ast.Type) (value.Value, ast.Type, error) {
	data := constant.NewCharArrayFromString(s + "\x00")
	g := f.m.IR.NewGlobalDef(f.m.newGlobalTemp(".str"), data)
	g.Immutable = true
	zero := constant.NewInt(types.I32, 0)
	addr := f.cur.NewGetElementPtr(data.Type().(*types.ArrayType), g, zero, zero)
	return addr, ty, nil
}

func (f *Function) lowerSizeAlign(expr ast.Expr) (value.Value, ast.Type, error) {
	v, err := f.m.sema.ConstEval(expr, f.locals)
	if err != nil {
		return nil, nil, err
	}
	ty := f.m.sema.LookupTypedef("size_t")
	if ty == nil {
		ty = f.m.sema.Builtin(ast.UnsignedLong)
	}
	return constant.NewInt(types.I64, int64(v.U)), ty, nil
}

func (f *Function) lowerStmtExprValue(e *ast.StmtExpr) (value.Value, ast.Type, error) {
	stmts := e.Body.Stmts
	ty, err := f.m.sema.InferType(e, f.locals)
	if err != nil {
		return nil, nil, err
	}
	var result value.Value
	err = f.withScope(func() error {
		for i, s := range stmts {
			if f.terminated() {
				break
			}
			if i == len(stmts)-1 {
				if last, ok := s.(*ast.ExprStmt); ok && last.Expr != nil {
					v, _, err := f.lowerRValueFull(last.Expr)
					if err != nil {
						return err
					}
					result = v
					continue
				}
			}
			if err := f.lowerStmt(s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if result == nil {
		return constant.NewInt(types.I32, 0), ty, nil
	}
	return result, ty, nil
}

// lowerCallExpr lowers a function call, converting each argument to its
// declared parameter type and passing variadic trailing arguments as their
// own rvalue type (spec §5: default argument promotions are not modeled;
// the implementation lowers a variadic argument exactly as its natural
// type).
func (f *Function) lowerCallExpr(e *ast.CallExpr) (value.Value, ast.Type, error) {
	calleeTy, err := f.m.sema.InferType(e.Callee, f.locals)
	if err != nil {
		return nil, nil, err
	}
	ft, ok := f.m.sema.Flatten(calleeTy).(*ast.FunctionType)
	if !ok {
		if pt, isPtr := f.m.sema.Flatten(calleeTy).(*ast.PointerType); isPtr {
			if inner, isFn := f.m.sema.Flatten(pt.Pointee).(*ast.FunctionType); isFn {
				ft = inner
				ok = true
			}
		}
	}
	if !ok {
		return nil, nil, diag.Semaf(e.Pos(), "called object is not a function")
	}
	callee, err := f.lowerRValue(e.Callee)
	if err != nil {
		return nil, nil, err
	}
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		if i < len(ft.Params) {
			v, err := f.lowerRValueAs(a, ft.Params[i].Type)
			if err != nil {
				return nil, nil, err
			}
			args[i] = v
			continue
		}
		v, _, err := f.lowerRValueFull(a)
		if err != nil {
			return nil, nil, err
		}
		args[i] = v
	}
	call := f.cur.NewCall(callee, args...)
	return call, ft.Return, nil
}
