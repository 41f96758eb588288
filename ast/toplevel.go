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

// TopLevel is the tagged-variant root of every node that can appear
// directly in a translation unit.
type TopLevel interface {
	isTopLevel()
	Pos() token.Pos
}

type topPos struct{ P token.Pos }

func (t topPos) Pos() token.Pos { return t.P }

// TypedefDecl is «typedef Type Name;».
type TypedefDecl struct {
	topPos
	Name string
	Type Type
}

func (*TypedefDecl) isTopLevel() {}

// StaticAssertDecl is «_Static_assert(Cond[, Message]);».
type StaticAssertDecl struct {
	topPos
	Cond    Expr
	Message string
}

func (*StaticAssertDecl) isTopLevel() {}

// GlobalVarDecl is a file-scope variable or function declaration/definition.
// When Type is a *FunctionType this node is a function declaration
// (prototype only, Init is always nil); otherwise it is a global variable,
// which is a definition when Init != nil and a tentative declaration
// otherwise. IsStatic marks internal linkage.
type GlobalVarDecl struct {
	topPos
	Name     string
	Type     Type
	Init     Expr // optional; only meaningful for non-function Type
	IsStatic bool
	IsExtern bool
}

func (*GlobalVarDecl) isTopLevel() {}

// FunctionDef is a function definition with a body.
type FunctionDef struct {
	topPos
	Name       string
	Type       *FunctionType
	ParamNames []string
	Body       *CompoundStmt
	IsStatic   bool
	IsInline   bool
}

func (*FunctionDef) isTopLevel() {}

// StructDecl is a file-scope «struct Tag { ... };» declaration.
type StructDecl struct {
	topPos
	Type *StructType
}

func (*StructDecl) isTopLevel() {}

// UnionDecl is a file-scope «union Tag { ... };» declaration.
type UnionDecl struct {
	topPos
	Type *UnionType
}

func (*UnionDecl) isTopLevel() {}

// EnumDecl is a file-scope «enum Tag { ... };» declaration.
type EnumDecl struct {
	topPos
	Type *EnumType
}

func (*EnumDecl) isTopLevel() {}

// The New* functions below let package parser build TopLevel nodes without
// reaching into the unexported topPos each one embeds.

func NewTypedefDecl(pos token.Pos, name string, ty Type) *TypedefDecl {
	return &TypedefDecl{topPos{pos}, name, ty}
}

func NewStaticAssertDecl(pos token.Pos, cond Expr, message string) *StaticAssertDecl {
	return &StaticAssertDecl{topPos{pos}, cond, message}
}

func NewGlobalVarDecl(pos token.Pos, name string, ty Type, init Expr, isStatic, isExtern bool) *GlobalVarDecl {
	return &GlobalVarDecl{topPos{pos}, name, ty, init, isStatic, isExtern}
}

func NewFunctionDef(pos token.Pos, name string, ty *FunctionType, paramNames []string, body *CompoundStmt, isStatic, isInline bool) *FunctionDef {
	return &FunctionDef{topPos{pos}, name, ty, paramNames, body, isStatic, isInline}
}

func NewStructDecl(pos token.Pos, ty *StructType) *StructDecl { return &StructDecl{topPos{pos}, ty} }

func NewUnionDecl(pos token.Pos, ty *UnionType) *UnionDecl { return &UnionDecl{topPos{pos}, ty} }

func NewEnumDecl(pos token.Pos, ty *EnumType) *EnumDecl { return &EnumDecl{topPos{pos}, ty} }
