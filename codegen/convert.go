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
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/sema"
	"github.com/PiJoules/c-sub000/token"
)

// convert lowers the implicit (and explicit-cast) conversion from a value
// of C type from to one of C type to, per spec §5's extended implicit-
// casts table (the REDESIGN FLAG that adds float<->int, float<->float,
// and int<->enum on top of the original's narrower set). Converting a
// type to itself (by Sema's Compatible, ignoring qualifiers) is always a
// no-op.
func (f *Function) convert(pos token.Pos, v value.Value, from, to ast.Type) (value.Value, error) {
	if f.m.sema.Compatible(from, to, true) {
		return v, nil
	}
	fromFlat := f.m.sema.Flatten(from)
	toFlat := f.m.sema.Flatten(to)

	if toB, ok := toFlat.(*ast.BuiltinType); ok && toB.Kind == ast.Void {
		return v, nil
	}

	if toB, ok := toFlat.(*ast.BuiltinType); ok && toB.Kind == ast.Bool {
		b, err := f.toBoolValue(v, from)
		if err != nil {
			return nil, err
		}
		return f.zextBool(b), nil
	}

	fromInt := integerLike(fromFlat, f.m.sema)
	toInt := integerLike(toFlat, f.m.sema)
	fromFloat := floatingLike(fromFlat, f.m.sema)
	toFloat := floatingLike(toFlat, f.m.sema)
	_, fromPtr := fromFlat.(*ast.PointerType)
	toPtrTy, toPtr := toFlat.(*ast.PointerType)

	switch {
	case fromInt && toInt:
		return f.convertIntToInt(v, fromFlat, toFlat)
	case fromFloat && toFloat:
		return f.convertFloatToFloat(v, fromFlat, toFlat)
	case fromInt && toFloat:
		return f.convertIntToFloat(v, fromFlat, toFlat)
	case fromFloat && toInt:
		return f.convertFloatToInt(v, fromFlat, toFlat)
	case fromPtr && toPtr:
		llTo, err := f.m.llvmType(pos, toPtrTy)
		if err != nil {
			return nil, err
		}
		return f.cur.NewBitCast(v, llTo), nil
	case fromInt && toPtr:
		llTo, err := f.m.llvmType(pos, toPtrTy)
		if err != nil {
			return nil, err
		}
		return f.cur.NewIntToPtr(v, llTo), nil
	case fromPtr && toInt:
		llTo, err := f.m.llvmType(pos, toFlat)
		if err != nil {
			return nil, err
		}
		return f.cur.NewPtrToInt(v, llTo), nil
	case isArrayFlat(fromFlat) && toPtr:
		// Array-to-pointer decay reaching a cast/assignment context rather
		// than an ordinary rvalue load (e.g. passing an array argument to a
		// pointer parameter).
		return v, nil
	default:
		return nil, fail(pos, "no implicit conversion from %T to %T", fromFlat, toFlat)
	}
}

func isArrayFlat(ty ast.Type) bool {
	_, ok := ty.(*ast.ArrayType)
	return ok
}

func (f *Function) convertIntToInt(v value.Value, from, to ast.Type) (value.Value, error) {
	fromK, toK := builtinOrEnumKind(from), builtinOrEnumKind(to)
	fromSz, toSz := sema.BuiltinSize(fromK), sema.BuiltinSize(toK)
	toLL := f.m.llvmBuiltin(toK).(*types.IntType)
	switch {
	case fromSz == toSz:
		// int and unsigned int share one LLVM representation; only the
		// signedness Sema already tracked, not the bit pattern, changes.
		return v, nil
	case fromSz > toSz:
		return f.cur.NewTrunc(v, toLL), nil
	case sema.IsSigned(fromK):
		return f.cur.NewSExt(v, toLL), nil
	default:
		return f.cur.NewZExt(v, toLL), nil
	}
}

// builtinOrEnumKind returns the integer BuiltinKind to use for ty, treating
// an enum type as plain int (spec §4.4: "an enum's underlying
// representation is int").
func builtinOrEnumKind(ty ast.Type) ast.BuiltinKind {
	switch t := ty.(type) {
	case *ast.BuiltinType:
		return t.Kind
	case *ast.EnumType:
		return ast.Int
	default:
		return ast.Int
	}
}

func (f *Function) convertFloatToFloat(v value.Value, from, to ast.Type) (value.Value, error) {
	fromB, toB := from.(*ast.BuiltinType), to.(*ast.BuiltinType)
	toLL := f.m.llvmBuiltin(toB.Kind)
	if sema.BuiltinSize(fromB.Kind) < sema.BuiltinSize(toB.Kind) {
		return f.cur.NewFPExt(v, toLL), nil
	}
	if sema.BuiltinSize(fromB.Kind) > sema.BuiltinSize(toB.Kind) {
		return f.cur.NewFPTrunc(v, toLL), nil
	}
	return v, nil
}

func (f *Function) convertIntToFloat(v value.Value, from, to ast.Type) (value.Value, error) {
	fromK := builtinOrEnumKind(from)
	toB := to.(*ast.BuiltinType)
	toLL := f.m.llvmBuiltin(toB.Kind)
	if sema.IsSigned(fromK) {
		return f.cur.NewSIToFP(v, toLL), nil
	}
	return f.cur.NewUIToFP(v, toLL), nil
}

func (f *Function) convertFloatToInt(v value.Value, from, to ast.Type) (value.Value, error) {
	toK := builtinOrEnumKind(to)
	toLL := f.m.llvmBuiltin(toK).(*types.IntType)
	if sema.IsSigned(toK) {
		return f.cur.NewFPToSI(v, toLL), nil
	}
	return f.cur.NewFPToUI(v, toLL), nil
}
