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

package parser

import (
	"errors"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/token"
)

// specifiers accumulates the specifier/qualifier/storage-class bitset a C
// declaration's type specifier sequence builds up, in any order, before the
// declarator itself is parsed. This mirrors the original source's bitset
// record exactly (see SPEC_FULL.md), just expressed with named bool/int
// fields instead of C bitfields.
type specifiers struct {
	sawChar, sawShort, sawInt, sawSigned, sawUnsigned  bool
	sawLong                                            int // 0, 1, or 2
	sawFloat, sawDouble, sawComplex, sawVoid, sawBool   bool
	sawFloat128, sawVAList                              bool
	named                                               string // typedef name, if this specifier sequence ends in one
	tagType                                              ast.Type // struct/union/enum type, if present

	quals       ast.Qualifiers
	storage     storageClass
	isInline    bool
}

type storageClass int

const (
	scNone storageClass = iota
	scExtern
	scStatic
	scAuto
	scRegister
	scThreadLocal
)

// parseSpecifiers parses the specifier/qualifier/storage-class mix that
// opens a declaration, returning the resolved base Type plus the
// accumulated storage class and inline flag. Exactly one of a builtin
// combination, a typedef name, or an inline struct/union/enum definition
// may be present; mixing them is a fatal parse error, matching spec §4.3.
func (p *Parser) parseSpecifiers() (ast.Type, storageClass, bool, error) {
	var s specifiers
	for {
		if (p.cur.Kind == token.Struct || p.cur.Kind == token.Union || p.cur.Kind == token.Enum) && s.hasBaseSpecifier() {
			return nil, 0, false, p.errorf("struct/union/enum cannot be combined with another type specifier")
		}
		switch p.cur.Kind {
		case token.Const:
			s.quals |= ast.QConst
		case token.Volatile:
			s.quals |= ast.QVolatile
		case token.Restrict:
			s.quals |= ast.QRestrict
		case token.Extern:
			s.storage = scExtern
		case token.Static:
			s.storage = scStatic
		case token.Auto:
			s.storage = scAuto
		case token.Register:
			s.storage = scRegister
		case token.ThreadLocal:
			s.storage = scThreadLocal
		case token.Inline:
			s.isInline = true
		case token.Char:
			s.sawChar = true
		case token.Short:
			s.sawShort = true
		case token.Int:
			s.sawInt = true
		case token.Signed:
			s.sawSigned = true
		case token.Unsigned:
			s.sawUnsigned = true
		case token.Long:
			s.sawLong++
		case token.Float:
			s.sawFloat = true
		case token.Double:
			s.sawDouble = true
		case token.Complex:
			s.sawComplex = true
		case token.Void:
			s.sawVoid = true
		case token.Bool:
			s.sawBool = true
		case token.Float128:
			s.sawFloat128 = true
		case token.BuiltinVAList:
			s.sawVAList = true
		case token.Struct:
			ty, err := p.parseStructOrUnion(false)
			if err != nil {
				return nil, 0, false, err
			}
			s.tagType = ty
			goto done
		case token.Union:
			ty, err := p.parseStructOrUnion(true)
			if err != nil {
				return nil, 0, false, err
			}
			s.tagType = ty
			goto done
		case token.Enum:
			ty, err := p.parseEnum()
			if err != nil {
				return nil, 0, false, err
			}
			s.tagType = ty
			goto done
		case token.Identifier:
			if !p.isTypedefName(p.cur.Lexeme) || s.hasBaseSpecifier() {
				goto done
			}
			s.named = p.cur.Lexeme
			if err := p.advance(); err != nil {
				return nil, 0, false, err
			}
			goto done
		default:
			goto done
		}
		if err := p.advance(); err != nil {
			return nil, 0, false, err
		}
	}
done:
	ty, err := s.resolve()
	if err != nil {
		return nil, 0, false, p.errorf("%v", err)
	}
	return ty, s.storage, s.isInline, nil
}

// resolve reduces the accumulated bitset to a single ast.Type, per the
// builtin-resolution table in spec §4.3.
func (s *specifiers) resolve() (ast.Type, error) {
	if s.tagType != nil {
		return ast.WithQuals(s.tagType, s.quals), nil
	}
	if s.named != "" {
		return ast.NewNamed(s.named, s.quals), nil
	}

	switch {
	case s.sawVoid:
		return ast.NewBuiltin(ast.Void, s.quals), nil
	case s.sawBool:
		return ast.NewBuiltin(ast.Bool, s.quals), nil
	case s.sawVAList:
		return ast.NewBuiltin(ast.BuiltinVAList, s.quals), nil
	case s.sawFloat128:
		return ast.NewBuiltin(ast.Float128, s.quals), nil
	case s.sawComplex && s.sawFloat:
		return ast.NewBuiltin(ast.ComplexFloat, s.quals), nil
	case s.sawComplex && s.sawDouble && s.sawLong > 0:
		return ast.NewBuiltin(ast.ComplexLongDouble, s.quals), nil
	case s.sawComplex && s.sawDouble:
		return ast.NewBuiltin(ast.ComplexDouble, s.quals), nil
	case s.sawDouble && s.sawLong > 0:
		return ast.NewBuiltin(ast.LongDouble, s.quals), nil
	case s.sawDouble:
		return ast.NewBuiltin(ast.Double, s.quals), nil
	case s.sawFloat:
		return ast.NewBuiltin(ast.Float, s.quals), nil
	case s.sawLong >= 2:
		if s.sawUnsigned {
			return ast.NewBuiltin(ast.UnsignedLongLong, s.quals), nil
		}
		return ast.NewBuiltin(ast.LongLong, s.quals), nil
	case s.sawLong == 1:
		if s.sawUnsigned {
			return ast.NewBuiltin(ast.UnsignedLong, s.quals), nil
		}
		return ast.NewBuiltin(ast.Long, s.quals), nil
	case s.sawShort:
		if s.sawUnsigned {
			return ast.NewBuiltin(ast.UnsignedShort, s.quals), nil
		}
		return ast.NewBuiltin(ast.Short, s.quals), nil
	case s.sawChar:
		switch {
		case s.sawSigned:
			return ast.NewBuiltin(ast.SignedChar, s.quals), nil
		case s.sawUnsigned:
			return ast.NewBuiltin(ast.UnsignedChar, s.quals), nil
		default:
			return ast.NewBuiltin(ast.Char, s.quals), nil
		}
	case s.sawInt || s.sawSigned || s.sawUnsigned:
		if s.sawUnsigned {
			return ast.NewBuiltin(ast.UnsignedInt, s.quals), nil
		}
		return ast.NewBuiltin(ast.Int, s.quals), nil
	default:
		return nil, errMissingSpecifier
	}
}

var errMissingSpecifier = errors.New("declaration has no type specifier")

// hasBaseSpecifier reports whether any builtin/tag/typedef base specifier
// has already been recorded, used to stop consuming identifiers once the
// specifier sequence is syntactically complete (e.g. so "Foo bar;" doesn't
// swallow "bar" as a second base specifier).
func (s *specifiers) hasBaseSpecifier() bool {
	return s.sawChar || s.sawShort || s.sawInt || s.sawSigned || s.sawUnsigned ||
		s.sawLong > 0 || s.sawFloat || s.sawDouble || s.sawComplex || s.sawVoid ||
		s.sawBool || s.sawFloat128 || s.sawVAList || s.named != "" || s.tagType != nil
}
