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

// Package ast holds the tree shapes produced by package parser and consumed
// (read-only) by packages sema and codegen: Type, Expr, Stmt, and
// TopLevel. Every tagged-variant kind here carries an unexported marker
// method (isType/isExpr/isStmt/isTopLevel) so that a switch over the
// interface is exhaustive-checkable and no other package can invent a new
// case.
package ast

// Qualifiers is a bitmask of the three C type qualifiers.
type Qualifiers uint8

const (
	QConst Qualifiers = 1 << iota
	QVolatile
	QRestrict
)

// Has reports whether all of want's bits are set in q.
func (q Qualifiers) Has(want Qualifiers) bool { return q&want == want }

// BuiltinKind enumerates every builtin scalar type this compiler knows
// about.
type BuiltinKind int

const (
	Char BuiltinKind = iota
	SignedChar
	UnsignedChar
	Short
	UnsignedShort
	Int
	UnsignedInt
	Long
	UnsignedLong
	LongLong
	UnsignedLongLong
	Float
	Double
	LongDouble
	Float128
	ComplexFloat
	ComplexDouble
	ComplexLongDouble
	Void
	Bool
	BuiltinVAList
)

// Type is the tagged-variant root of every type this compiler represents:
// Builtin, Named (typedef reference), Pointer, Array, Function, Struct,
// Union, and Enum. Every Type carries its own Qualifiers.
type Type interface {
	isType()
	Quals() Qualifiers
}

// qualified is embedded by every concrete Type to carry its qualifier bits.
type qualified struct {
	Qualifiers Qualifiers
}

// Quals returns the qualifier bitmask carried by this type.
func (q qualified) Quals() Qualifiers { return q.Qualifiers }

// BuiltinType is a scalar type named directly by a keyword, e.g. «int» or
// «unsigned long long».
type BuiltinType struct {
	qualified
	Kind BuiltinKind
}

func (*BuiltinType) isType() {}

// NamedType is a reference to a typedef name as written in source; it
// resolves to its target via Sema's typedef table. No NamedType value is
// ever stored inside a Sema table — by the time a type reaches a table it
// has been flattened to its target.
type NamedType struct {
	qualified
	Name string
}

func (*NamedType) isType() {}

// PointerType is «T*»: a pointer to the Pointee type.
type PointerType struct {
	qualified
	Pointee Type
}

func (*PointerType) isType() {}

// ArrayType is «T x[N]» or «T x[]» (Size == nil means unsized, e.g. an
// incomplete array or a function parameter written as T[]).
type ArrayType struct {
	qualified
	Elem Type
	Size Expr // optional; nil means unsized
}

func (*ArrayType) isType() {}

// Param is one parameter of a FunctionType: an optional name (empty string
// if the parameter was declared unnamed) and its Type.
type Param struct {
	Name string
	Type Type
}

// FunctionType is «Ret Name(params...)» (or «Ret Name(params..., ...)» if
// Variadic).
type FunctionType struct {
	qualified
	Return   Type
	Params   []*Param
	Variadic bool
}

func (*FunctionType) isType() {}

// Member is one field of a Struct or Union: a name, a Type, and an optional
// bitfield width expression. Bitfields are recorded but, per this
// implementation's scope, not applied to layout (see DESIGN.md).
type Member struct {
	Name     string
	Type     Type
	Bitfield Expr // optional
}

// StructType is a «struct [tag] { members }» declaration. A nil Members
// slice (as opposed to an empty, non-nil one) means this is a forward
// declaration with no body.
type StructType struct {
	qualified
	Tag     string // optional
	Members []*Member
	Packed  bool
}

func (*StructType) isType() {}

// UnionType has the same shape as StructType for a «union» declaration.
type UnionType struct {
	qualified
	Tag     string
	Members []*Member
	Packed  bool
}

func (*UnionType) isType() {}

// EnumValue is one «name [= value]» entry of an EnumType.
type EnumValue struct {
	Name  string
	Value Expr // optional
}

// EnumType is an «enum [tag] { values }» declaration. A nil Values slice
// means a forward declaration.
type EnumType struct {
	qualified
	Tag    string
	Values []*EnumValue
}

func (*EnumType) isType() {}

// NewBuiltin returns a BuiltinType of the given kind and qualifiers.
func NewBuiltin(k BuiltinKind, q Qualifiers) *BuiltinType {
	return &BuiltinType{qualified{q}, k}
}

// NewNamed returns a NamedType referencing name with the given qualifiers.
func NewNamed(name string, q Qualifiers) *NamedType {
	return &NamedType{qualified{q}, name}
}

// NewPointer returns a PointerType to pointee with the given qualifiers
// applied to the pointer itself (not to pointee).
func NewPointer(pointee Type, q Qualifiers) *PointerType {
	return &PointerType{qualified{q}, pointee}
}

// NewArray returns an ArrayType of elem with the given optional size
// expression (nil for an unsized array) and qualifiers.
func NewArray(elem Type, size Expr, q Qualifiers) *ArrayType {
	return &ArrayType{qualified{q}, elem, size}
}

// NewFunction returns a FunctionType with the given return type, ordered
// parameters, and varargs flag.
func NewFunction(ret Type, params []*Param, variadic bool) *FunctionType {
	return &FunctionType{qualified{0}, ret, params, variadic}
}

// NewStruct returns a StructType. A nil members slice means a forward
// declaration.
func NewStruct(tag string, members []*Member, packed bool, q Qualifiers) *StructType {
	return &StructType{qualified{q}, tag, members, packed}
}

// NewUnion returns a UnionType. A nil members slice means a forward
// declaration.
func NewUnion(tag string, members []*Member, packed bool, q Qualifiers) *UnionType {
	return &UnionType{qualified{q}, tag, members, packed}
}

// NewEnum returns an EnumType. A nil values slice means a forward
// declaration.
func NewEnum(tag string, values []*EnumValue, q Qualifiers) *EnumType {
	return &EnumType{qualified{q}, tag, values}
}

// WithQuals returns a shallow copy of t with its qualifier bitmask replaced
// by q. Used by the declarator parser when folding qualifier-bearing
// pointer/specifier prefixes onto an already-built Type.
func WithQuals(t Type, q Qualifiers) Type {
	switch v := t.(type) {
	case *BuiltinType:
		cp := *v
		cp.Qualifiers = q
		return &cp
	case *NamedType:
		cp := *v
		cp.Qualifiers = q
		return &cp
	case *PointerType:
		cp := *v
		cp.Qualifiers = q
		return &cp
	case *ArrayType:
		cp := *v
		cp.Qualifiers = q
		return &cp
	case *FunctionType:
		cp := *v
		cp.Qualifiers = q
		return &cp
	case *StructType:
		cp := *v
		cp.Qualifiers = q
		return &cp
	case *UnionType:
		cp := *v
		cp.Qualifiers = q
		return &cp
	case *EnumType:
		cp := *v
		cp.Qualifiers = q
		return &cp
	default:
		return t
	}
}
