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

package ast

import "github.com/PiJoules/c-sub000/token"

// Expr is the tagged-variant root of every expression node.
type Expr interface {
	isExpr()
	Pos() token.Pos
}

type exprPos struct{ P token.Pos }

func (e exprPos) Pos() token.Pos { return e.P }

// IntLit is an integer literal, e.g. «42» or «0x2Aull». Kind records the
// builtin type the literal's suffix/magnitude resolves to.
type IntLit struct {
	exprPos
	Value uint64
	Kind  BuiltinKind
}

func (*IntLit) isExpr() {}

// BoolLit is «true» or «false».
type BoolLit struct {
	exprPos
	Value bool
}

func (*BoolLit) isExpr() {}

// CharLit is a single-character literal, e.g. «'a'».
type CharLit struct {
	exprPos
	Value byte
}

func (*CharLit) isExpr() {}

// StringLit is a (possibly multi-piece, already-concatenated) string
// literal with surrounding quotes stripped.
type StringLit struct {
	exprPos
	Value string
}

func (*StringLit) isExpr() {}

// PrettyFunction is «__PRETTY_FUNCTION__», resolved to the enclosing
// function's signature string at lowering time.
type PrettyFunction struct {
	exprPos
}

func (*PrettyFunction) isExpr() {}

// DeclRef is a reference to an identifier: a local, a global, or an enum
// value, resolved by Sema's name lookup order (locals, then enum values,
// then globals).
type DeclRef struct {
	exprPos
	Name string
}

func (*DeclRef) isExpr() {}

// SizeOfExpr is «sizeof(expr)» or «sizeof(type)»; exactly one of Expr or
// Type is set.
type SizeOfExpr struct {
	exprPos
	Expr Expr
	Type Type
}

func (*SizeOfExpr) isExpr() {}

// AlignOfExpr is «_Alignof(expr)» or «_Alignof(type)»; exactly one of Expr
// or Type is set.
type AlignOfExpr struct {
	exprPos
	Expr Expr
	Type Type
}

func (*AlignOfExpr) isExpr() {}

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	UnaryNot    UnaryOp = iota // !
	UnaryBitNot                // ~
	UnaryNeg                   // - (unary minus)
	UnaryAddr                  // &
	UnaryDeref                 // *
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

// UnOp is a unary operator applied to Operand.
type UnOp struct {
	exprPos
	Op      UnaryOp
	Operand Expr
}

func (*UnOp) isExpr() {}

// BinaryOp enumerates every binary operator, including assignment and
// compound assignment, in this compiler's closed set.
type BinaryOp int

const (
	BinMul BinaryOp = iota
	BinDiv
	BinMod
	BinAdd
	BinSub
	BinShl
	BinShr
	BinLt
	BinGt
	BinLe
	BinGe
	BinEq
	BinNe
	BinBitAnd
	BinBitXor
	BinBitOr
	BinLogicalAnd
	BinLogicalOr
	BinComma

	BinAssign
	BinMulAssign
	BinDivAssign
	BinModAssign
	BinAddAssign
	BinSubAssign
	BinShlAssign
	BinShrAssign
	BinAndAssign
	BinXorAssign
	BinOrAssign
)

// IsAssign reports whether op is a plain or compound assignment.
func (op BinaryOp) IsAssign() bool { return op >= BinAssign }

// CompoundBase returns the non-assignment operator a compound assignment
// op applies before storing, e.g. BinAddAssign -> BinAdd. It panics if op
// is BinAssign (plain assignment has no base operator) or not an
// assignment at all.
func (op BinaryOp) CompoundBase() BinaryOp {
	switch op {
	case BinMulAssign:
		return BinMul
	case BinDivAssign:
		return BinDiv
	case BinModAssign:
		return BinMod
	case BinAddAssign:
		return BinAdd
	case BinSubAssign:
		return BinSub
	case BinShlAssign:
		return BinShl
	case BinShrAssign:
		return BinShr
	case BinAndAssign:
		return BinBitAnd
	case BinXorAssign:
		return BinBitXor
	case BinOrAssign:
		return BinBitOr
	default:
		panic("CompoundBase called on a non-compound-assignment operator")
	}
}

// BinOp is a binary operator applied to LHS and RHS.
type BinOp struct {
	exprPos
	Op       BinaryOp
	LHS, RHS Expr
}

func (*BinOp) isExpr() {}

// Conditional is the ternary «cond ? then : els».
type Conditional struct {
	exprPos
	Cond, Then, Else Expr
}

func (*Conditional) isExpr() {}

// Cast is «(Type) Operand».
type Cast struct {
	exprPos
	Type    Type
	Operand Expr
}

func (*Cast) isExpr() {}

// IndexExpr is «Base[Index]».
type IndexExpr struct {
	exprPos
	Base, Index Expr
}

func (*IndexExpr) isExpr() {}

// MemberAccess is «Base.Member» or, if Arrow, «Base->Member».
type MemberAccess struct {
	exprPos
	Base   Expr
	Member string
	Arrow  bool
}

func (*MemberAccess) isExpr() {}

// CallExpr is «Callee(Args...)».
type CallExpr struct {
	exprPos
	Callee Expr
	Args   []Expr
}

func (*CallExpr) isExpr() {}

// InitializerElem is one element of an InitializerList: an optional
// designator («.Name = ») and the element's value expression.
type InitializerElem struct {
	Designator string // optional
	Value      Expr
}

// InitializerList is a brace-enclosed «{ elem, elem, ... }» initializer.
// It has no intrinsic type: Sema derives its type from the declaration it
// initializes.
type InitializerList struct {
	exprPos
	Elems []*InitializerElem
}

func (*InitializerList) isExpr() {}

// StmtExpr is a GCC statement expression «({ stmts; expr; })». Body is the
// enclosed compound statement.
type StmtExpr struct {
	exprPos
	Body *CompoundStmt
}

func (*StmtExpr) isExpr() {}

// FunctionParam is a synthesized reference to one of the enclosing
// function's parameters, created by Sema/codegen rather than the parser.
type FunctionParam struct {
	exprPos
	Name  string
	Type  Type
	Index int
}

func (*FunctionParam) isExpr() {}

// The New* functions below let package parser (and, for FunctionParam,
// package sema) build Expr nodes without reaching into the unexported
// exprPos each one embeds.

func NewIntLit(pos token.Pos, value uint64, kind BuiltinKind) *IntLit {
	return &IntLit{exprPos{pos}, value, kind}
}

func NewBoolLit(pos token.Pos, value bool) *BoolLit { return &BoolLit{exprPos{pos}, value} }

func NewCharLit(pos token.Pos, value byte) *CharLit { return &CharLit{exprPos{pos}, value} }

func NewStringLit(pos token.Pos, value string) *StringLit { return &StringLit{exprPos{pos}, value} }

func NewPrettyFunction(pos token.Pos) *PrettyFunction { return &PrettyFunction{exprPos{pos}} }

func NewDeclRef(pos token.Pos, name string) *DeclRef { return &DeclRef{exprPos{pos}, name} }

func NewSizeOfExpr(pos token.Pos, expr Expr, ty Type) *SizeOfExpr {
	return &SizeOfExpr{exprPos{pos}, expr, ty}
}

func NewAlignOfExpr(pos token.Pos, expr Expr, ty Type) *AlignOfExpr {
	return &AlignOfExpr{exprPos{pos}, expr, ty}
}

func NewUnOp(pos token.Pos, op UnaryOp, operand Expr) *UnOp {
	return &UnOp{exprPos{pos}, op, operand}
}

func NewBinOp(pos token.Pos, op BinaryOp, lhs, rhs Expr) *BinOp {
	return &BinOp{exprPos{pos}, op, lhs, rhs}
}

func NewConditional(pos token.Pos, cond, then, els Expr) *Conditional {
	return &Conditional{exprPos{pos}, cond, then, els}
}

func NewCast(pos token.Pos, ty Type, operand Expr) *Cast {
	return &Cast{exprPos{pos}, ty, operand}
}

func NewIndexExpr(pos token.Pos, base, index Expr) *IndexExpr {
	return &IndexExpr{exprPos{pos}, base, index}
}

func NewMemberAccess(pos token.Pos, base Expr, member string, arrow bool) *MemberAccess {
	return &MemberAccess{exprPos{pos}, base, member, arrow}
}

func NewCallExpr(pos token.Pos, callee Expr, args []Expr) *CallExpr {
	return &CallExpr{exprPos{pos}, callee, args}
}

func NewInitializerList(pos token.Pos, elems []*InitializerElem) *InitializerList {
	return &InitializerList{exprPos{pos}, elems}
}

func NewStmtExpr(pos token.Pos, body *CompoundStmt) *StmtExpr {
	return &StmtExpr{exprPos{pos}, body}
}

func NewFunctionParam(pos token.Pos, name string, ty Type, index int) *FunctionParam {
	return &FunctionParam{exprPos{pos}, name, ty, index}
}
