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

// InferType computes the type of expr per spec §4.4's expression-typing
// table. locals is the current lexical scope's name->Type map (nil at
// file scope, e.g. a global initializer); DeclRef resolution searches
// locals, then enum values, then globals, matching spec §4.4's resolution
// order exactly.
func (s *Sema) InferType(expr ast.Expr, locals map[string]ast.Type) (ast.Type, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return s.Builtin(e.Kind), nil
	case *ast.BoolLit:
		return s.Builtin(ast.Bool), nil
	case *ast.CharLit:
		return s.Builtin(ast.Char), nil
	case *ast.StringLit, *ast.PrettyFunction:
		return s.StringLiteralType(), nil
	case *ast.DeclRef:
		return s.inferDeclRef(e, locals)
	case *ast.SizeOfExpr, *ast.AlignOfExpr:
		if t := s.LookupTypedef("size_t"); t != nil {
			return t, nil
		}
		return s.Builtin(ast.UnsignedLong), nil
	case *ast.UnOp:
		return s.inferUnOp(e, locals)
	case *ast.BinOp:
		return s.inferBinOp(e, locals)
	case *ast.Conditional:
		return s.inferConditional(e, locals)
	case *ast.Cast:
		return e.Type, nil
	case *ast.IndexExpr:
		return s.inferIndex(e, locals)
	case *ast.MemberAccess:
		return s.inferMember(e, locals)
	case *ast.CallExpr:
		return s.inferCall(e, locals)
	case *ast.InitializerList:
		return nil, diag.Semaf(e.Pos(), "initializer list has no intrinsic type; it must be typed from its target declaration")
	case *ast.StmtExpr:
		return s.inferStmtExpr(e, locals)
	case *ast.FunctionParam:
		return e.Type, nil
	default:
		return nil, diag.Unsupportedf(expr.Pos(), "cannot infer the type of %T", expr)
	}
}

func (s *Sema) inferDeclRef(e *ast.DeclRef, locals map[string]ast.Type) (ast.Type, error) {
	if locals != nil {
		if t, ok := locals[e.Name]; ok {
			return t, nil
		}
	}
	if _, owner, ok := s.LookupEnumValue(e.Name); ok {
		return owner, nil
	}
	switch g := s.LookupGlobal(e.Name).(type) {
	case *ast.GlobalVarDecl:
		return g.Type, nil
	case *ast.FunctionDef:
		return g.Type, nil
	}
	return nil, diag.Semaf(e.Pos(), "use of undeclared identifier %q", e.Name)
}

func (s *Sema) inferUnOp(e *ast.UnOp, locals map[string]ast.Type) (ast.Type, error) {
	switch e.Op {
	case ast.UnaryNot:
		return s.Builtin(ast.Bool), nil
	case ast.UnaryAddr:
		operandTy, err := s.InferType(e.Operand, locals)
		if err != nil {
			return nil, err
		}
		return s.PointerTo(operandTy, 0), nil
	case ast.UnaryDeref:
		operandTy, err := s.InferType(e.Operand, locals)
		if err != nil {
			return nil, err
		}
		return s.pointeeOrElem(e.Pos(), operandTy)
	case ast.UnaryBitNot, ast.UnaryNeg, ast.UnaryPreInc, ast.UnaryPreDec, ast.UnaryPostInc, ast.UnaryPostDec:
		return s.InferType(e.Operand, locals)
	default:
		return nil, diag.Unsupportedf(e.Pos(), "cannot infer the type of unary operator %v", e.Op)
	}
}

// pointeeOrElem returns the type a '*' or '[]' operation yields when
// applied to ty: a pointer's pointee, or an array's element (array
// lvalues decay to their element's address, so indexing/deref through
// either shape yields the same result type).
func (s *Sema) pointeeOrElem(pos token.Pos, ty ast.Type) (ast.Type, error) {
	switch t := s.Flatten(ty).(type) {
	case *ast.PointerType:
		return t.Pointee, nil
	case *ast.ArrayType:
		return t.Elem, nil
	default:
		return nil, diag.Semaf(pos, "indirection requires a pointer or array operand")
	}
}

func (s *Sema) inferBinOp(e *ast.BinOp, locals map[string]ast.Type) (ast.Type, error) {
	if e.Op.IsAssign() {
		return s.InferType(e.LHS, locals)
	}
	if e.Op == ast.BinComma {
		return s.InferType(e.RHS, locals)
	}
	if e.Op == ast.BinLogicalAnd || e.Op == ast.BinLogicalOr {
		return s.Builtin(ast.Bool), nil
	}
	lhsTy, err := s.InferType(e.LHS, locals)
	if err != nil {
		return nil, err
	}
	rhsTy, err := s.InferType(e.RHS, locals)
	if err != nil {
		return nil, err
	}
	lhsFlat, rhsFlat := s.Flatten(lhsTy), s.Flatten(rhsTy)
	_, lhsIsPtr := lhsFlat.(*ast.PointerType)
	_, rhsIsPtr := rhsFlat.(*ast.PointerType)
	switch e.Op {
	case ast.BinAdd:
		if lhsIsPtr {
			return lhsFlat, nil
		}
		if rhsIsPtr {
			return rhsFlat, nil
		}
	case ast.BinSub:
		if lhsIsPtr && rhsIsPtr {
			return s.Builtin(ast.Long), nil
		}
		if lhsIsPtr {
			return lhsFlat, nil
		}
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinGt, ast.BinLe, ast.BinGe:
		if lhsIsPtr || rhsIsPtr {
			return s.Builtin(ast.Bool), nil
		}
		return s.Builtin(ast.Bool), nil
	}
	lb, lok := lhsFlat.(*ast.BuiltinType)
	rb, rok := rhsFlat.(*ast.BuiltinType)
	if lok && rok && IsInteger(lb.Kind) && IsInteger(rb.Kind) {
		return s.Builtin(UsualArithmeticConversion(lb.Kind, rb.Kind)), nil
	}
	if lok && IsFloating(lb.Kind) {
		return lhsFlat, nil
	}
	if rok && IsFloating(rb.Kind) {
		return rhsFlat, nil
	}
	return lhsTy, nil
}

func (s *Sema) inferConditional(e *ast.Conditional, locals map[string]ast.Type) (ast.Type, error) {
	thenTy, err := s.InferType(e.Then, locals)
	if err != nil {
		return nil, err
	}
	elseTy, err := s.InferType(e.Else, locals)
	if err != nil {
		return nil, err
	}
	thenB, thenOk := s.Flatten(thenTy).(*ast.BuiltinType)
	elseB, elseOk := s.Flatten(elseTy).(*ast.BuiltinType)
	if thenOk && elseOk && IsInteger(thenB.Kind) && IsInteger(elseB.Kind) {
		return s.Builtin(UsualArithmeticConversion(thenB.Kind, elseB.Kind)), nil
	}
	return thenTy, nil
}

func (s *Sema) inferIndex(e *ast.IndexExpr, locals map[string]ast.Type) (ast.Type, error) {
	baseTy, err := s.InferType(e.Base, locals)
	if err != nil {
		return nil, err
	}
	return s.pointeeOrElem(e.Pos(), baseTy)
}

func (s *Sema) inferMember(e *ast.MemberAccess, locals map[string]ast.Type) (ast.Type, error) {
	baseTy, err := s.InferType(e.Base, locals)
	if err != nil {
		return nil, err
	}
	agg := s.Flatten(baseTy)
	if e.Arrow {
		ptr, ok := agg.(*ast.PointerType)
		if !ok {
			return nil, diag.Semaf(e.Pos(), "-> requires a pointer operand")
		}
		agg = s.Flatten(ptr.Pointee)
	}
	members, err := s.membersOf(e.Pos(), agg)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Name == e.Member {
			return m.Type, nil
		}
	}
	return nil, diag.Semaf(e.Pos(), "no member named %q", e.Member)
}

func (s *Sema) membersOf(pos token.Pos, ty ast.Type) ([]*ast.Member, error) {
	switch t := ty.(type) {
	case *ast.StructType:
		if t.Members != nil {
			return t.Members, nil
		}
		if st := s.LookupStruct(t.Tag); st != nil {
			return st.Members, nil
		}
	case *ast.UnionType:
		if t.Members != nil {
			return t.Members, nil
		}
		if u := s.LookupUnion(t.Tag); u != nil {
			return u.Members, nil
		}
	}
	return nil, diag.Semaf(pos, "member access on a non-aggregate or incomplete type")
}

func (s *Sema) inferCall(e *ast.CallExpr, locals map[string]ast.Type) (ast.Type, error) {
	calleeTy, err := s.InferType(e.Callee, locals)
	if err != nil {
		return nil, err
	}
	switch t := s.Flatten(calleeTy).(type) {
	case *ast.FunctionType:
		return t.Return, nil
	case *ast.PointerType:
		if fn, ok := s.Flatten(t.Pointee).(*ast.FunctionType); ok {
			return fn.Return, nil
		}
	}
	return nil, diag.Semaf(e.Pos(), "called object is not a function")
}

// inferStmtExpr types a GCC statement expression: the type of its last
// ExprStmt, or void if the body is empty or ends in a non-expression
// statement (spec §4.4).
func (s *Sema) inferStmtExpr(e *ast.StmtExpr, locals map[string]ast.Type) (ast.Type, error) {
	stmts := e.Body.Stmts
	if len(stmts) == 0 {
		return s.Builtin(ast.Void), nil
	}
	last, ok := stmts[len(stmts)-1].(*ast.ExprStmt)
	if !ok || last.Expr == nil {
		return s.Builtin(ast.Void), nil
	}
	return s.InferType(last.Expr, locals)
}
