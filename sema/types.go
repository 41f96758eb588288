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

// IsSigned reports whether k is a signed integer kind (Bool counts as
// unsigned: it has no negative representation).
func IsSigned(k ast.BuiltinKind) bool {
	switch k {
	case ast.SignedChar, ast.Char, ast.Short, ast.Int, ast.Long, ast.LongLong:
		return true
	default:
		return false
	}
}

// IsInteger reports whether k is one of the integer builtin kinds (the
// rank-ordered set the usual arithmetic conversions operate over).
func IsInteger(k ast.BuiltinKind) bool {
	switch k {
	case ast.Bool, ast.Char, ast.SignedChar, ast.UnsignedChar,
		ast.Short, ast.UnsignedShort, ast.Int, ast.UnsignedInt,
		ast.Long, ast.UnsignedLong, ast.LongLong, ast.UnsignedLongLong:
		return true
	default:
		return false
	}
}

// IsFloating reports whether k is one of the floating-point builtin kinds.
func IsFloating(k ast.BuiltinKind) bool {
	switch k {
	case ast.Float, ast.Double, ast.LongDouble, ast.Float128,
		ast.ComplexFloat, ast.ComplexDouble, ast.ComplexLongDouble:
		return true
	default:
		return false
	}
}

// rank orders the integer kinds per spec §4.4's "Bool < Char... < Short...
// < Int... < Long... < LongLong...".
func rank(k ast.BuiltinKind) int {
	switch k {
	case ast.Bool:
		return 0
	case ast.Char, ast.SignedChar, ast.UnsignedChar:
		return 1
	case ast.Short, ast.UnsignedShort:
		return 2
	case ast.Int, ast.UnsignedInt:
		return 3
	case ast.Long, ast.UnsignedLong:
		return 4
	case ast.LongLong, ast.UnsignedLongLong:
		return 5
	default:
		return -1
	}
}

// unsignedOf returns the unsigned counterpart of a signed integer kind
// (identity if k is already unsigned or not an integer kind).
func unsignedOf(k ast.BuiltinKind) ast.BuiltinKind {
	switch k {
	case ast.Char, ast.SignedChar:
		return ast.UnsignedChar
	case ast.Short:
		return ast.UnsignedShort
	case ast.Int:
		return ast.UnsignedInt
	case ast.Long:
		return ast.UnsignedLong
	case ast.LongLong:
		return ast.UnsignedLongLong
	default:
		return k
	}
}

// UsualArithmeticConversion implements spec §4.4's table: same rank/
// signedness rules applied to two integer BuiltinKinds, returning the
// common kind every binary arithmetic operator promotes its operands to.
func UsualArithmeticConversion(a, b ast.BuiltinKind) ast.BuiltinKind {
	if a == b {
		return a
	}
	ra, rb := rank(a), rank(b)
	if IsSigned(a) == IsSigned(b) {
		if ra >= rb {
			return a
		}
		return b
	}
	// Different signedness: the unsigned operand wins outright if its rank
	// is at least the signed operand's rank; otherwise, if the signed
	// type's size exceeds the unsigned type's, the signed type wins;
	// otherwise the unsigned counterpart of the signed type is used.
	var signed, unsigned ast.BuiltinKind
	if IsSigned(a) {
		signed, unsigned = a, b
	} else {
		signed, unsigned = b, a
	}
	if rank(unsigned) >= rank(signed) {
		return unsigned
	}
	if BuiltinSize(signed) > BuiltinSize(unsigned) {
		return signed
	}
	return unsignedOf(signed)
}

// BuiltinSize returns the host-stand-in size, in bytes, of a builtin
// scalar kind (spec §4.4: "the implementation may take them from the host
// as a stand-in"). Pointer size is reported separately by PointerSize.
func BuiltinSize(k ast.BuiltinKind) uint64 {
	switch k {
	case ast.Bool, ast.Char, ast.SignedChar, ast.UnsignedChar:
		return 1
	case ast.Short, ast.UnsignedShort:
		return 2
	case ast.Int, ast.UnsignedInt, ast.Float:
		return 4
	case ast.Long, ast.UnsignedLong, ast.Double, ast.ComplexFloat:
		return 8
	case ast.LongLong, ast.UnsignedLongLong:
		return 8
	case ast.LongDouble:
		return 16
	case ast.Float128, ast.ComplexDouble:
		return 16
	case ast.ComplexLongDouble:
		return 32
	case ast.BuiltinVAList:
		return 24 // x86-64 System V va_list struct size, used as the host stand-in
	case ast.Void:
		return 0
	default:
		return 8
	}
}

// BuiltinAlign returns the alignment, in bytes, of a builtin scalar kind.
// Alignment equals BuiltinSize for every builtin (so long double aligns to
// 16), except that a zero-sized kind such as void aligns to 1.
func BuiltinAlign(k ast.BuiltinKind) uint64 {
	switch k {
	case ast.LongDouble:
		return 16
	case ast.Void:
		return 1
	default:
		sz := BuiltinSize(k)
		if sz == 0 {
			return 1
		}
		return sz
	}
}

// PointerSize and PointerAlign are target-defined and uniform (spec
// §4.4), taken as 8 (a 64-bit host stand-in).
const PointerSize = 8
const PointerAlign = 8

// SizeOf computes sizeof(ty) per spec §4.4's layout rules.
func (s *Sema) SizeOf(pos token.Pos, ty ast.Type) (uint64, error) {
	ty = s.Flatten(ty)
	switch t := ty.(type) {
	case *ast.BuiltinType:
		return BuiltinSize(t.Kind), nil
	case *ast.PointerType:
		return PointerSize, nil
	case *ast.ArrayType:
		if t.Size == nil {
			return 0, diag.Semaf(pos, "sizeof applied to an array of unknown size")
		}
		n, err := s.ConstEval(t.Size, nil)
		if err != nil {
			return 0, err
		}
		elemSize, err := s.SizeOf(pos, t.Elem)
		if err != nil {
			return 0, err
		}
		return elemSize * uint64(n.Int()), nil
	case *ast.StructType:
		size, _, err := s.layoutAggregate(pos, t.Members, t.Tag, false)
		return size, err
	case *ast.UnionType:
		size, _, err := s.layoutAggregate(pos, t.Members, t.Tag, true)
		return size, err
	case *ast.EnumType:
		return BuiltinSize(ast.Int), nil
	case *ast.FunctionType:
		return 0, diag.Semaf(pos, "sizeof applied to a function type")
	default:
		return 0, diag.Unsupportedf(pos, "sizeof of unhandled type %T", ty)
	}
}

// AlignOf computes alignof(ty), by the same layout this compiler uses for
// SizeOf.
func (s *Sema) AlignOf(pos token.Pos, ty ast.Type) (uint64, error) {
	ty = s.Flatten(ty)
	switch t := ty.(type) {
	case *ast.BuiltinType:
		return BuiltinAlign(t.Kind), nil
	case *ast.PointerType:
		return PointerAlign, nil
	case *ast.ArrayType:
		return s.AlignOf(pos, t.Elem)
	case *ast.StructType:
		_, align, err := s.layoutAggregate(pos, t.Members, t.Tag, false)
		return align, err
	case *ast.UnionType:
		_, align, err := s.layoutAggregate(pos, t.Members, t.Tag, true)
		return align, err
	case *ast.EnumType:
		return BuiltinAlign(ast.Int), nil
	default:
		return 0, diag.Unsupportedf(pos, "alignof of unhandled type %T", ty)
	}
}

// align rounds off up to the next multiple of to (to must be nonzero).
func align(off, to uint64) uint64 {
	if to == 0 {
		return off
	}
	if rem := off % to; rem != 0 {
		return off + (to - rem)
	}
	return off
}

// layoutAggregate computes a struct's sequential, member-aligned layout or
// a union's max-of-members layout (spec §4.4). If members is nil (a
// forward declaration), it resolves the complete definition via the tag
// namespace first. Bitfield widths are recorded on ast.Member but, per
// spec §9's explicit permission, not applied to layout: every member
// occupies its full declared type's size, matching the REDESIGN FLAG that
// leaves this gap rather than inventing a per-ABI bitfield packer.
func (s *Sema) layoutAggregate(pos token.Pos, members []*ast.Member, tag string, isUnion bool) (uint64, uint64, error) {
	if members == nil {
		if tag == "" {
			return 0, 0, diag.Semaf(pos, "sizeof applied to an incomplete anonymous type")
		}
		if isUnion {
			u := s.LookupUnion(tag)
			if u == nil || u.Members == nil {
				return 0, 0, diag.Semaf(pos, "sizeof applied to incomplete union %q", tag)
			}
			members = u.Members
		} else {
			st := s.LookupStruct(tag)
			if st == nil || st.Members == nil {
				return 0, 0, diag.Semaf(pos, "sizeof applied to incomplete struct %q", tag)
			}
			members = st.Members
		}
	}
	if isUnion {
		var size, maxAlign uint64
		for _, m := range members {
			msize, err := s.SizeOf(pos, m.Type)
			if err != nil {
				return 0, 0, err
			}
			malign, err := s.AlignOf(pos, m.Type)
			if err != nil {
				return 0, 0, err
			}
			if msize > size {
				size = msize
			}
			if malign > maxAlign {
				maxAlign = malign
			}
		}
		if maxAlign == 0 {
			maxAlign = 1
		}
		return align(size, maxAlign), maxAlign, nil
	}
	var offset, maxAlign uint64
	for _, m := range members {
		malign, err := s.AlignOf(pos, m.Type)
		if err != nil {
			return 0, 0, err
		}
		msize, err := s.SizeOf(pos, m.Type)
		if err != nil {
			return 0, 0, err
		}
		offset = align(offset, malign)
		offset += msize
		if malign > maxAlign {
			maxAlign = malign
		}
	}
	if maxAlign == 0 {
		maxAlign = 1
	}
	return align(offset, maxAlign), maxAlign, nil
}

// Compatible reports whether a and b are compatible types per spec §4.4's
// recursive, qualifier-aware rules. If ignoreQuals is true, qualifier bits
// are not compared at any level (used where the caller only cares about
// structural shape, e.g. an implicit-cast target check).
func (s *Sema) Compatible(a, b ast.Type, ignoreQuals bool) bool {
	a, b = s.Flatten(a), s.Flatten(b)
	if !ignoreQuals && a.Quals() != b.Quals() {
		return false
	}
	switch at := a.(type) {
	case *ast.BuiltinType:
		bt, ok := b.(*ast.BuiltinType)
		return ok && at.Kind == bt.Kind
	case *ast.PointerType:
		bt, ok := b.(*ast.PointerType)
		return ok && s.Compatible(at.Pointee, bt.Pointee, ignoreQuals)
	case *ast.ArrayType:
		bt, ok := b.(*ast.ArrayType)
		if !ok || !s.Compatible(at.Elem, bt.Elem, ignoreQuals) {
			return false
		}
		if at.Size == nil || bt.Size == nil {
			return true
		}
		av, err1 := s.ConstEval(at.Size, nil)
		bv, err2 := s.ConstEval(bt.Size, nil)
		if err1 != nil || err2 != nil {
			return false
		}
		return av.Int() == bv.Int()
	case *ast.StructType:
		bt, ok := b.(*ast.StructType)
		return ok && s.compatibleAggregate(at.Tag, at.Members, bt.Tag, bt.Members, ignoreQuals)
	case *ast.UnionType:
		bt, ok := b.(*ast.UnionType)
		return ok && s.compatibleAggregate(at.Tag, at.Members, bt.Tag, bt.Members, ignoreQuals)
	case *ast.EnumType:
		_, ok := b.(*ast.EnumType)
		return ok
	case *ast.FunctionType:
		bt, ok := b.(*ast.FunctionType)
		if !ok || at.Variadic != bt.Variadic || len(at.Params) != len(bt.Params) {
			return false
		}
		if !s.Compatible(at.Return, bt.Return, ignoreQuals) {
			return false
		}
		for i := range at.Params {
			if !s.Compatible(at.Params[i].Type, bt.Params[i].Type, ignoreQuals) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (s *Sema) compatibleAggregate(tagA string, membersA []*ast.Member, tagB string, membersB []*ast.Member, ignoreQuals bool) bool {
	if tagA != "" || tagB != "" {
		if tagA != tagB {
			return false
		}
	}
	if membersA == nil || membersB == nil {
		return true
	}
	if len(membersA) != len(membersB) {
		return false
	}
	for i := range membersA {
		ma, mb := membersA[i], membersB[i]
		if ma.Name != "" && mb.Name != "" && ma.Name != mb.Name {
			return false
		}
		if !s.Compatible(ma.Type, mb.Type, ignoreQuals) {
			return false
		}
		if (ma.Bitfield == nil) != (mb.Bitfield == nil) {
			return false
		}
		if ma.Bitfield != nil {
			va, erra := s.ConstEval(ma.Bitfield, nil)
			vb, errb := s.ConstEval(mb.Bitfield, nil)
			if erra != nil || errb != nil || va.Int() != vb.Int() {
				return false
			}
		}
	}
	return true
}
